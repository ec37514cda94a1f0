// Package loadgen drives a running service with concurrent claim
// traffic and verifies the resulting leaderboard and audit log.
package loadgen

import "time"

// Config holds configuration for a load run
type Config struct {
	BaseURL  string        // Base URL of the service
	Claims   int           // Number of claims to submit
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Enable verbose output
	Register int           // Extra participants to register before claiming
}

// Participant mirrors the participant wire shape.
type Participant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"totalPoints"`
}

// RankedEntry mirrors a leaderboard entry.
type RankedEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"totalPoints"`
	Rank        int    `json:"rank"`
}

// AwardEvent mirrors an audit log entry.
type AwardEvent struct {
	ID            string `json:"id"`
	ParticipantID string `json:"userId"`
	Name          string `json:"userName"`
	Points        int    `json:"pointsAwarded"`
}

// ClaimResponse mirrors the claim endpoint response.
type ClaimResponse struct {
	User          Participant   `json:"user"`
	PointsAwarded int           `json:"pointsAwarded"`
	Leaderboard   []RankedEntry `json:"leaderboard"`
}

// Stats holds load run statistics
type Stats struct {
	ClaimsSubmitted   int
	ClaimsSuccessful  int
	ClaimsRateLimited int
	ClaimsFailed      int
	PointsAwarded     int64
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
