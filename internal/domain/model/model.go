// Package model contains domain models passed between layers.
package model

import "time"

// Award bounds for a single claim. Every draw and every stored
// increment must fall inside [MinAward, MaxAward].
const (
	MinAward = 1
	MaxAward = 10
)

// Participant is a scoreboard member. The score only ever grows, and
// only through the claim processor's atomic increment.
type Participant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	TotalPoints int       `json:"totalPoints"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AwardEvent is the immutable audit record of one claim. The name is
// denormalized so history stays readable independent of the
// participant record.
type AwardEvent struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"userId"`
	Name          string    `json:"userName"`
	Points        int       `json:"pointsAwarded"`
	AwardedAt     time.Time `json:"timestamp"`
}

// RankedEntry is a participant annotated with its 1-based position.
// It is derived on every read and never persisted.
type RankedEntry struct {
	Participant
	Rank int `json:"rank"`
}

// ClaimResult is what a successful claim returns to the caller.
type ClaimResult struct {
	Participant   Participant `json:"user"`
	PointsAwarded int         `json:"pointsAwarded"`
}
