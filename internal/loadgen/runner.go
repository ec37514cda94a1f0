package loadgen

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
)

// Run executes the complete load run: health check, roster setup,
// concurrent claims, then verification against the leaderboard and
// audit log.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	log.Printf("🚀 Starting load run against %s (%d claims, %d workers)",
		config.BaseURL, config.Claims, config.Workers)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Register extra participants if requested
	if config.Register > 0 {
		log.Printf("👥 Registering %d extra participants...", config.Register)
		if err := registerParticipants(ctx, config, config.Register); err != nil {
			return fmt.Errorf("participant registration failed: %w", err)
		}
	}

	// Step 3: Fetch the roster and its pre-run totals
	roster, err := fetchRoster(ctx, config)
	if err != nil {
		return fmt.Errorf("roster fetch failed: %w", err)
	}
	if len(roster) == 0 {
		return fmt.Errorf("no participants to claim for; seed the service or use -register")
	}
	before := make(map[string]int64, len(roster))
	for _, p := range roster {
		before[p.ID] = int64(p.TotalPoints)
	}

	// Step 4: Submit claims concurrently
	awarded, err := submitClaims(ctx, config, roster, stats)
	if err != nil {
		return fmt.Errorf("claim submission failed: %w", err)
	}

	// Step 5: Fetch the final leaderboard and history
	leaderboard, err := fetchLeaderboard(ctx, config)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	history, err := fetchHistory(ctx, config)
	if err != nil {
		return fmt.Errorf("history retrieval failed: %w", err)
	}

	// Step 6: Verify results
	if err := verifyResults(config, before, awarded, leaderboard, history); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	log.Println("✅ Load run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}

	// Any 200 counts as healthy; the endpoint serves metrics text.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	log.Println("💚 Service is healthy")
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, claimsPerSecond float64

	if stats.ClaimsSubmitted > 0 {
		successRate = float64(stats.ClaimsSuccessful) / float64(stats.ClaimsSubmitted) * 100
	}
	if stats.Duration > 0 {
		claimsPerSecond = float64(stats.ClaimsSubmitted) / stats.Duration.Seconds()
	}

	log.Printf(`📊 Final statistics:
   Claims submitted:    %d
   Claims successful:   %d
   Claims rate limited: %d
   Claims failed:       %d
   Points awarded:      %d
   Duration:            %s
   Success rate:        %.1f%%
   Claims per second:   %.1f`,
		stats.ClaimsSubmitted,
		stats.ClaimsSuccessful,
		stats.ClaimsRateLimited,
		stats.ClaimsFailed,
		stats.PointsAwarded,
		stats.Duration,
		successRate,
		claimsPerSecond)
}
