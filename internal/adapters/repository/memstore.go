package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tally/internal/domain/model"
)

// MemStore implements Store with mutex-guarded in-process state.
//
// A single lock covers participants and the event log; every increment
// runs as one critical section, which is what makes it safe under
// concurrent claims for the same participant.
type MemStore struct {
	mu     sync.RWMutex
	byID   map[string]model.Participant
	byName map[string]string // trimmed name -> id
	order  []string          // ids in creation order
	events []model.AwardEvent
	closed bool

	now   func() time.Time
	newID func() string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		byID:   make(map[string]model.Participant),
		byName: make(map[string]string),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParticipant registers a new participant under the trimmed name.
func (s *MemStore) CreateParticipant(ctx context.Context, name string) (model.Participant, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return model.Participant{}, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Participant{}, ErrClosed
	}
	if _, exists := s.byName[trimmed]; exists {
		return model.Participant{}, ErrConflict
	}

	p := model.Participant{
		ID:        s.newID(),
		Name:      trimmed,
		CreatedAt: s.now().UTC(),
	}
	s.byID[p.ID] = p
	s.byName[trimmed] = p.ID
	s.order = append(s.order, p.ID)
	return p, nil
}

// Participant looks up one participant by id.
func (s *MemStore) Participant(ctx context.Context, id string) (model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return model.Participant{}, ErrNotFound
	}
	return p, nil
}

// ListParticipants returns all participants in creation order.
func (s *MemStore) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Participant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

// IncrementScore atomically adds delta to the stored score.
func (s *MemStore) IncrementScore(ctx context.Context, id string, delta int) (model.Participant, error) {
	if delta < model.MinAward || delta > model.MaxAward {
		return model.Participant{}, ErrInvalidDelta
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Participant{}, ErrClosed
	}
	p, ok := s.byID[id]
	if !ok {
		return model.Participant{}, ErrNotFound
	}
	p.TotalPoints += delta
	s.byID[id] = p
	return p, nil
}

// AppendEvent appends one award event to the log.
func (s *MemStore) AppendEvent(ctx context.Context, ev model.AwardEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	if ev.ID == "" {
		ev.ID = s.newID()
	}
	s.events = append(s.events, ev)
	return ev.ID, nil
}

// RecentEvents returns up to limit events, most recent first.
func (s *MemStore) RecentEvents(ctx context.Context, limit int) ([]model.AwardEvent, error) {
	return s.recent(limit, func(model.AwardEvent) bool { return true })
}

// ParticipantEvents returns up to limit events for one participant,
// most recent first.
func (s *MemStore) ParticipantEvents(ctx context.Context, id string, limit int) ([]model.AwardEvent, error) {
	return s.recent(limit, func(ev model.AwardEvent) bool { return ev.ParticipantID == id })
}

// recent walks the append-only log backwards so append order doubles
// as the recency order, stable for equal timestamps.
func (s *MemStore) recent(limit int, match func(model.AwardEvent) bool) ([]model.AwardEvent, error) {
	if limit <= 0 {
		return []model.AwardEvent{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AwardEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		if match(s.events[i]) {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// Count returns the number of registered participants.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Close marks the store closed; later writes fail with ErrClosed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
