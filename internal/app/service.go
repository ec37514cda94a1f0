// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/tally/internal/adapters/hub"
	repository "github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/config"
	"github.com/okian/tally/internal/domain/claim"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/ranking"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Service wires the claim processor, ranking engine and subscription
// hub into the end-to-end sequence per claim: mutate, re-rank, fan out.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	processor *claim.Processor
	hub       *hub.Hub

	// Configuration
	storeBackend            string
	sqlitePath              string
	hubBuffer               int
	historyLimit            int
	participantHistoryLimit int
	seed                    bool
	seedNames               []string
	claimOpts               []claim.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeBackend:            config.StoreMemory,
		hubBuffer:               8,
		historyLimit:            50,
		participantHistoryLimit: 20,
		seed:                    true,
		seedNames:               DefaultSeedNames(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components and seeds an empty store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		switch s.storeBackend {
		case config.StoreSQLite:
			store, err := repository.OpenSQLite(s.sqlitePath)
			if err != nil {
				return fmt.Errorf("open sqlite store: %w", err)
			}
			s.store = store
			s.logger.Info(ctx, "using sqlite store", logger.String("path", s.sqlitePath))
		default:
			s.store = repository.NewMemStore()
			s.logger.Info(ctx, "using in-memory store")
		}
	}

	s.processor = claim.New(s.store, s.claimOpts...)
	s.hub = hub.New(
		hub.WithBufferSize(s.hubBuffer),
		hub.WithLogger(s.logger.Named("hub")),
	)

	if s.seed {
		if err := s.seedParticipants(ctx); err != nil {
			return fmt.Errorf("seed participants: %w", err)
		}
	}

	s.started = true
	metrics.UpdateParticipantCount(s.store.Count(ctx))
	s.logger.Info(ctx, "leaderboard service started",
		logger.String("store", s.storeBackend),
		logger.Int("participants", s.store.Count(ctx)),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping leaderboard service...")

	if s.hub != nil {
		_ = s.hub.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "store close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "leaderboard service stopped")
}

// Register creates a participant and fans the new leaderboard out to
// every subscriber; registration changes rank denominators too.
func (s *Service) Register(ctx context.Context, name string) (model.Participant, error) {
	p, err := s.store.CreateParticipant(ctx, name)
	if err != nil {
		return model.Participant{}, err
	}

	metrics.RecordRegistration()
	metrics.UpdateParticipantCount(s.store.Count(ctx))
	s.logger.Info(ctx, "participant registered",
		logger.String("id", p.ID),
		logger.String("name", p.Name),
	)
	s.broadcast(ctx)
	return p, nil
}

// Claim awards a random point value to the participant, then publishes
// the recomputed leaderboard.
//
// The broadcast happens only after the increment committed, so
// subscribers never see a score that is not durable. A *claim.PartialError
// (score committed, audit append failed) still broadcasts -- the score
// is ground truth -- and still propagates so the caller knows the
// event log is missing an entry.
func (s *Service) Claim(ctx context.Context, participantID string) (model.ClaimResult, error) {
	result, err := s.processor.Claim(ctx, participantID)
	if err != nil {
		var partial *claim.PartialError
		if errors.As(err, &partial) {
			s.logger.Error(ctx, "claim committed without audit event",
				logger.String("id", participantID),
				logger.Error(err),
			)
			s.broadcast(ctx)
		}
		return result, err
	}

	s.logger.Debug(ctx, "claim processed",
		logger.String("id", result.Participant.ID),
		logger.Int("points", result.PointsAwarded),
	)
	s.broadcast(ctx)
	return result, nil
}

// Leaderboard derives the ranked snapshot from current store state.
// Nothing is cached; ranks cannot drift from source data.
func (s *Service) Leaderboard(ctx context.Context) ([]model.RankedEntry, error) {
	participants, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return ranking.Rank(participants), nil
}

// History returns the most recent award events, capped by configuration.
func (s *Service) History(ctx context.Context) ([]model.AwardEvent, error) {
	return s.store.RecentEvents(ctx, s.historyLimit)
}

// ParticipantHistory returns one participant's most recent award
// events. An unknown id yields an empty history, matching the read
// semantics of the event log (the filter simply matches nothing).
func (s *Service) ParticipantHistory(ctx context.Context, participantID string) ([]model.AwardEvent, error) {
	return s.store.ParticipantEvents(ctx, participantID, s.participantHistoryLimit)
}

// Subscribe registers a live-update listener.
func (s *Service) Subscribe(ctx context.Context) *hub.Subscription {
	return s.hub.Subscribe(ctx)
}

// Unsubscribe removes a live-update listener.
func (s *Service) Unsubscribe(ctx context.Context, sub *hub.Subscription) {
	s.hub.Unsubscribe(ctx, sub)
}

// broadcast recomputes the snapshot and publishes it. Failures to read
// the store are logged, not propagated: the mutation that triggered
// the broadcast has already committed and been answered.
func (s *Service) broadcast(ctx context.Context) {
	snapshot, err := s.Leaderboard(ctx)
	if err != nil {
		s.logger.Error(ctx, "snapshot rebuild failed, broadcast skipped", logger.Error(err))
		return
	}
	s.hub.Publish(ctx, snapshot)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"store":   s.storeBackend,
	}
	if s.started {
		ctx := context.Background()
		participants := s.store.Count(ctx)
		subscribers := s.hub.Count()

		stats["participants"] = participants
		stats["subscribers"] = subscribers

		metrics.UpdateParticipantCount(participants)
		metrics.UpdateSubscriberCount(subscribers)
	}
	return stats
}
