package service

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/pkg/logger"
)

// DefaultSeedNames returns the fixed roster installed into an empty
// store on first startup.
func DefaultSeedNames() []string {
	return []string{
		"Rahul",
		"Kamal",
		"Sanak",
		"Priya",
		"Amit",
		"Sneha",
		"Vikram",
		"Anjali",
		"Rohan",
		"Pooja",
	}
}

// seedParticipants populates an empty store with the configured
// roster. A populated store is left untouched, so restarts are
// idempotent.
func (s *Service) seedParticipants(ctx context.Context) error {
	if s.store.Count(ctx) > 0 {
		s.logger.Info(ctx, "store already seeded")
		return nil
	}

	s.logger.Info(ctx, "seeding participants", logger.Int("count", len(s.seedNames)))
	for _, name := range s.seedNames {
		if _, err := s.store.CreateParticipant(ctx, name); err != nil {
			// Conflict means another instance won the race for this name.
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			return fmt.Errorf("create %q: %w", name, err)
		}
	}
	return nil
}
