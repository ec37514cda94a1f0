package service

import (
	repository "github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/claim"
	"github.com/okian/tally/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects a pre-built record store, overriding the backend
// selection. Mostly useful in tests.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStoreBackend selects the store backend by config name.
func WithStoreBackend(backend string) Option {
	return func(s *Service) {
		if backend != "" {
			s.storeBackend = backend
		}
	}
}

// WithSQLitePath sets the database file for the sqlite backend.
func WithSQLitePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.sqlitePath = path
		}
	}
}

// WithHubBuffer sets the per-subscriber snapshot buffer depth.
func WithHubBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.hubBuffer = size
		}
	}
}

// WithHistoryLimits caps the global and per-participant history reads.
func WithHistoryLimits(global, perParticipant int) Option {
	return func(s *Service) {
		if global > 0 {
			s.historyLimit = global
		}
		if perParticipant > 0 {
			s.participantHistoryLimit = perParticipant
		}
	}
}

// WithSeed controls whether an empty store is seeded on startup.
func WithSeed(seed bool) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithSeedNames overrides the default seed roster.
func WithSeedNames(names []string) Option {
	return func(s *Service) {
		if len(names) > 0 {
			s.seedNames = names
		}
	}
}

// WithClaimOptions forwards options to the claim processor, e.g. a
// deterministic draw in tests.
func WithClaimOptions(opts ...claim.Option) Option {
	return func(s *Service) {
		s.claimOpts = append(s.claimOpts, opts...)
	}
}
