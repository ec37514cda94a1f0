package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/okian/tally/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS participants (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    total_points INTEGER NOT NULL DEFAULT 0,
    created_at   INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_name ON participants(name);

CREATE TABLE IF NOT EXISTS award_events (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    participant_id   TEXT NOT NULL,
    participant_name TEXT NOT NULL,
    points           INTEGER NOT NULL,
    awarded_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_award_events_awarded_at ON award_events(awarded_at);
CREATE INDEX IF NOT EXISTS idx_award_events_participant ON award_events(participant_id);
`

// SQLiteStore implements Store on a single SQLite database.
//
// The atomic increment is a single UPDATE ... RETURNING statement, so
// concurrent claims for the same participant serialize inside the
// engine instead of racing in the caller.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path and
// ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	// modernc's driver takes pragmas in _pragma=name(value) form; the
	// busy timeout is what lets concurrent writers wait out the single
	// WAL writer instead of failing with SQLITE_BUSY.
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// CreateParticipant registers a new participant under the trimmed name.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, name string) (model.Participant, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return model.Participant{}, ErrInvalidName
	}

	p := model.Participant{
		ID:        uuid.NewString(),
		Name:      trimmed,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (id, name, total_points, created_at) VALUES (?, ?, 0, ?)`,
		p.ID, p.Name, toMillis(p.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Participant{}, ErrConflict
		}
		return model.Participant{}, fmt.Errorf("insert participant: %w", err)
	}
	return p, nil
}

// Participant looks up one participant by id.
func (s *SQLiteStore) Participant(ctx context.Context, id string) (model.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, total_points, created_at FROM participants WHERE id = ?`, id)
	return scanParticipant(row)
}

// ListParticipants returns all participants in creation order. The
// rowid tiebreak keeps ordering stable for equal timestamps.
func (s *SQLiteStore) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, total_points, created_at FROM participants ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Participant
	for rows.Next() {
		var p model.Participant
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Name, &p.TotalPoints, &createdAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.CreatedAt = fromMillis(createdAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return out, nil
}

// IncrementScore atomically adds delta to the stored score.
func (s *SQLiteStore) IncrementScore(ctx context.Context, id string, delta int) (model.Participant, error) {
	if delta < model.MinAward || delta > model.MaxAward {
		return model.Participant{}, ErrInvalidDelta
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE participants SET total_points = total_points + ? WHERE id = ?
		 RETURNING id, name, total_points, created_at`, delta, id)
	return scanParticipant(row)
}

// AppendEvent appends one award event to the log.
func (s *SQLiteStore) AppendEvent(ctx context.Context, ev model.AwardEvent) (string, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO award_events (participant_id, participant_name, points, awarded_at) VALUES (?, ?, ?, ?)`,
		ev.ParticipantID, ev.Name, ev.Points, toMillis(ev.AwardedAt),
	)
	if err != nil {
		return "", fmt.Errorf("append award event: %w", err)
	}
	eventID, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("award event id: %w", err)
	}
	return strconv.FormatInt(eventID, 10), nil
}

// RecentEvents returns up to limit events, most recent first.
func (s *SQLiteStore) RecentEvents(ctx context.Context, limit int) ([]model.AwardEvent, error) {
	return s.queryEvents(ctx,
		`SELECT id, participant_id, participant_name, points, awarded_at FROM award_events
		 ORDER BY awarded_at DESC, id DESC LIMIT ?`, limit)
}

// ParticipantEvents returns up to limit events for one participant,
// most recent first.
func (s *SQLiteStore) ParticipantEvents(ctx context.Context, id string, limit int) ([]model.AwardEvent, error) {
	return s.queryEvents(ctx,
		`SELECT id, participant_id, participant_name, points, awarded_at FROM award_events
		 WHERE participant_id = ? ORDER BY awarded_at DESC, id DESC LIMIT ?`, id, limit)
}

func (s *SQLiteStore) queryEvents(ctx context.Context, query string, args ...any) ([]model.AwardEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query award events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.AwardEvent{}
	for rows.Next() {
		var ev model.AwardEvent
		var eventID int64
		var awardedAt int64
		if err := rows.Scan(&eventID, &ev.ParticipantID, &ev.Name, &ev.Points, &awardedAt); err != nil {
			return nil, fmt.Errorf("scan award event: %w", err)
		}
		ev.ID = strconv.FormatInt(eventID, 10)
		ev.AwardedAt = fromMillis(awardedAt)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query award events: %w", err)
	}
	return out, nil
}

// Count returns the number of registered participants.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func scanParticipant(row *sql.Row) (model.Participant, error) {
	var p model.Participant
	var createdAt int64
	if err := row.Scan(&p.ID, &p.Name, &p.TotalPoints, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Participant{}, ErrNotFound
		}
		return model.Participant{}, fmt.Errorf("scan participant: %w", err)
	}
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ Store = (*SQLiteStore)(nil)
var _ Store = (*MemStore)(nil)
