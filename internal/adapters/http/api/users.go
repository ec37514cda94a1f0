// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// UsersHandler handles participant registration, leaderboard reads,
// claims and per-participant history.
type UsersHandler struct {
	deps Dependencies
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps Dependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

// registerRequest mirrors the POST /api/users body.
type registerRequest struct {
	Name string `json:"name"`
}

// claimResponse mirrors the POST /api/users/{id}/claim body: the
// updated participant, the draw, and the leaderboard both reflecting
// the same committed state.
type claimResponse struct {
	User          model.Participant   `json:"user"`
	PointsAwarded int                 `json:"pointsAwarded"`
	Leaderboard   []model.RankedEntry `json:"leaderboard"`
}

// HandleUsers handles GET /api/users (ranked leaderboard) and
// POST /api/users (registration).
func (h *UsersHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleLeaderboard(w, r)
	case http.MethodPost:
		h.handleRegister(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *UsersHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.deps.Leaderboard(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *UsersHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	p, err := h.deps.Register(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleUserSubresource routes /api/users/{id}/claim and
// /api/users/{id}/history.
func (h *UsersHandler) HandleUserSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	participantID, action := parts[0], parts[1]

	switch {
	case action == "claim" && r.Method == http.MethodPost:
		h.handleClaim(w, r, participantID)
	case action == "history" && r.Method == http.MethodGet:
		h.handleParticipantHistory(w, r, participantID)
	default:
		http.NotFound(w, r)
	}
}

func (h *UsersHandler) handleClaim(w http.ResponseWriter, r *http.Request, participantID string) {
	result, err := h.deps.Claim(r.Context(), participantID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// The response leaderboard is derived after the commit, so it and
	// the broadcast reflect the same state.
	leaderboard, err := h.deps.Leaderboard(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claimResponse{
		User:          result.Participant,
		PointsAwarded: result.PointsAwarded,
		Leaderboard:   leaderboard,
	})
}

func (h *UsersHandler) handleParticipantHistory(w http.ResponseWriter, r *http.Request, participantID string) {
	events, err := h.deps.ParticipantHistory(r.Context(), participantID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
