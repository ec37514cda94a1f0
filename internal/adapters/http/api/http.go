// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/tally/internal/adapters/hub"
	repository "github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/claim"
	"github.com/okian/tally/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Register creates a participant and publishes the new leaderboard.
	Register(ctx context.Context, name string) (model.Participant, error)

	// Claim awards a random point value and publishes the new leaderboard.
	Claim(ctx context.Context, participantID string) (model.ClaimResult, error)

	// Read operations expose leaderboard and history data.
	Leaderboard(ctx context.Context) ([]model.RankedEntry, error)
	History(ctx context.Context) ([]model.AwardEvent, error)
	ParticipantHistory(ctx context.Context, participantID string) ([]model.AwardEvent, error)

	// Live-update subscriptions for the websocket channel.
	Subscribe(ctx context.Context) *hub.Subscription
	Unsubscribe(ctx context.Context, sub *hub.Subscription)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	usersHandler   *UsersHandler
	historyHandler *HistoryHandler
	liveHandler    *LiveHandler

	limiter        *clientLimiter
	allowedOrigins []string
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		usersHandler:   NewUsersHandler(deps),
		historyHandler: NewHistoryHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.liveHandler = NewLiveHandler(deps, s.allowedOrigins)
	return s
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithRateLimit enables per-client rate limiting on /api/ routes.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.limiter = newClientLimiter(rps, burst)
		}
	}
}

// WithAllowedOrigins sets the origins accepted by CORS and the
// websocket upgrade check. "*" allows any origin.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/ws", s.liveHandler.HandleLive)
	mux.HandleFunc("/api/history", s.api(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("/api/users", s.api(s.usersHandler.HandleUsers, "users"))
	mux.HandleFunc("/api/users/", s.api(s.usersHandler.HandleUserSubresource, "users_sub"))
}

// api stacks the /api/ middleware: CORS, rate limiting, metrics.
func (s *Server) api(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	h := MetricsMiddleware(next, endpoint)
	if s.limiter != nil {
		h = RateLimitMiddleware(s.limiter, h)
	}
	return CORSMiddleware(s.allowedOrigins, h)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates core error kinds into transport statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var partial *claim.PartialError
	switch {
	case errors.Is(err, repository.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_name", err)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.As(err, &partial):
		// Score committed, audit append failed. The caller must know.
		writeError(w, http.StatusInternalServerError, "partial_failure", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
