// Package repository defines the record store contract and its
// in-memory and SQLite implementations.
package repository

import (
	"context"

	"github.com/okian/tally/internal/domain/model"
)

// Store provides keyed participant storage plus the append-only award
// event log. Implementations must make IncrementScore a single
// indivisible read-modify-write step; callers never read-then-write.
type Store interface {
	// CreateParticipant registers a new participant under the trimmed
	// name. Returns ErrInvalidName for empty/whitespace-only names and
	// ErrConflict when the trimmed name is already taken.
	CreateParticipant(ctx context.Context, name string) (model.Participant, error)

	// Participant looks up one participant by id.
	// Returns ErrNotFound for unknown ids.
	Participant(ctx context.Context, id string) (model.Participant, error)

	// ListParticipants returns all participants in creation order.
	// Creation order is the stable iteration order the ranking engine
	// relies on for tie-breaking.
	ListParticipants(ctx context.Context) ([]model.Participant, error)

	// IncrementScore atomically adds delta to the participant's score
	// and returns the post-increment record. Delta must lie in
	// [model.MinAward, model.MaxAward]; ErrInvalidDelta otherwise.
	// Returns ErrNotFound for unknown ids. Concurrent increments for
	// the same id must never lose an update.
	IncrementScore(ctx context.Context, id string, delta int) (model.Participant, error)

	// AppendEvent durably appends one award event and returns its id.
	// Prior events are never overwritten or reordered.
	AppendEvent(ctx context.Context, ev model.AwardEvent) (string, error)

	// RecentEvents returns up to limit award events, most recent first.
	RecentEvents(ctx context.Context, limit int) ([]model.AwardEvent, error)

	// ParticipantEvents returns up to limit award events for one
	// participant, most recent first.
	ParticipantEvents(ctx context.Context, id string, limit int) ([]model.AwardEvent, error)

	// Count returns the number of registered participants.
	Count(ctx context.Context) int

	// Close releases any resources held by the store.
	Close() error
}
