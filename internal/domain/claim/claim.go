// Package claim orchestrates a single point-award transaction: draw a
// random award, atomically increment the score, append the audit event.
package claim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

// Processor runs claims against a record store.
type Processor struct {
	store repository.Store
	// draw returns a uniform int in [0, n). Defaults to the locked
	// global source so concurrent claims are safe to draw in parallel.
	draw func(n int) int
	now  func() time.Time
}

// New creates a Processor with configuration options.
func New(store repository.Store, opts ...Option) *Processor {
	p := &Processor{
		store: store,
		draw:  rand.Intn,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Claim awards a uniform random number of points in
// [model.MinAward, model.MaxAward] to the participant.
//
// The draw happens before validation but is side-effect free; nothing
// is persisted unless the increment commits. An unknown id aborts the
// whole claim with repository.ErrNotFound and no event written. If the
// audit append fails after the increment committed, the returned error
// is a *PartialError carrying the committed result: the score is
// ground truth, the log entry is missing, and the caller must be told.
func (p *Processor) Claim(ctx context.Context, participantID string) (model.ClaimResult, error) {
	points := model.MinAward + p.draw(model.MaxAward-model.MinAward+1)

	updated, err := p.store.IncrementScore(ctx, participantID, points)
	if err != nil {
		return model.ClaimResult{}, fmt.Errorf("increment score: %w", err)
	}

	result := model.ClaimResult{Participant: updated, PointsAwarded: points}

	ev := model.AwardEvent{
		ParticipantID: updated.ID,
		Name:          updated.Name,
		Points:        points,
		AwardedAt:     p.now().UTC(),
	}
	if _, err := p.store.AppendEvent(ctx, ev); err != nil {
		metrics.RecordPartialFailure()
		return result, &PartialError{Result: result, Err: err}
	}

	metrics.RecordClaim(points)
	return result, nil
}

// PartialError reports a committed score increment whose audit append
// failed. Distinct from a plain storage failure so operators can
// reconcile the event log.
type PartialError struct {
	Result model.ClaimResult
	Err    error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("award event append failed after score commit for %s: %v",
		e.Result.Participant.ID, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }
