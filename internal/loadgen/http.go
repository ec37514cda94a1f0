package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// getJSON performs a GET request and decodes the JSON response into v.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	if v == nil {
		return nil
	}
	return json.Unmarshal(body, v)
}

// postJSON performs a POST request with a JSON body and returns the
// raw response.
func (c *HTTPClient) postJSON(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitClaims fires claims at randomly chosen participants using a
// worker pool and tallies the outcomes.
func submitClaims(ctx context.Context, config *Config, roster []Participant, stats *Stats) (map[string]int64, error) {
	log.Printf("📤 Submitting %d claims with %d workers...", config.Claims, config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		successful  int64
		rateLimited int64
		failed      int64
		points      int64
	)

	// Awarded points per participant, reconciled against the final
	// leaderboard after the run.
	awarded := make(map[string]int64, len(roster))
	var awardedMu sync.Mutex

	jobs := make(chan string, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for id := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				url := fmt.Sprintf("%s/api/users/%s/claim", config.BaseURL, id)
				resp, err := client.postJSON(ctx, url, nil)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				body, err := readResponseBody(resp)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}

				switch resp.StatusCode {
				case http.StatusOK:
					var cr ClaimResponse
					if err := json.Unmarshal(body, &cr); err != nil {
						atomic.AddInt64(&failed, 1)
						continue
					}
					atomic.AddInt64(&successful, 1)
					atomic.AddInt64(&points, int64(cr.PointsAwarded))
					awardedMu.Lock()
					awarded[id] += int64(cr.PointsAwarded)
					awardedMu.Unlock()
				case http.StatusTooManyRequests:
					atomic.AddInt64(&rateLimited, 1)
				default:
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("claim for %s failed with status %d: %s", id, resp.StatusCode, string(body))
					}
				}
			}
		}()
	}

	for i := 0; i < config.Claims; i++ {
		target := roster[rand.Intn(len(roster))]
		select {
		case jobs <- target.ID:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return awarded, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	stats.ClaimsSubmitted = config.Claims
	stats.ClaimsSuccessful = int(successful)
	stats.ClaimsRateLimited = int(rateLimited)
	stats.ClaimsFailed = int(failed)
	stats.PointsAwarded = points

	log.Printf("✅ Claims done: %d ok, %d rate limited, %d failed", successful, rateLimited, failed)
	return awarded, nil
}

// fetchRoster retrieves the current participant list.
func fetchRoster(ctx context.Context, config *Config) ([]Participant, error) {
	client := newHTTPClient(config.Timeout)

	var entries []RankedEntry
	if err := client.getJSON(ctx, config.BaseURL+"/api/users", &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}

	roster := make([]Participant, 0, len(entries))
	for _, e := range entries {
		roster = append(roster, Participant{ID: e.ID, Name: e.Name, TotalPoints: e.TotalPoints})
	}
	return roster, nil
}

// registerParticipants adds extra load-only participants.
func registerParticipants(ctx context.Context, config *Config, n int) error {
	client := newHTTPClient(config.Timeout)
	stamp := time.Now().UnixNano()

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("loadgen-%d-%d", stamp, i)
		resp, err := client.postJSON(ctx, config.BaseURL+"/api/users", map[string]string{"name": name})
		if err != nil {
			return fmt.Errorf("failed to register %s: %w", name, err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read register response: %w", err)
		}
		if resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("register %s failed with status %d: %s", name, resp.StatusCode, string(body))
		}
	}
	return nil
}

// fetchLeaderboard retrieves the ranked leaderboard.
func fetchLeaderboard(ctx context.Context, config *Config) ([]RankedEntry, error) {
	client := newHTTPClient(config.Timeout)

	var entries []RankedEntry
	if err := client.getJSON(ctx, config.BaseURL+"/api/users", &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	return entries, nil
}

// fetchHistory retrieves the global award history feed.
func fetchHistory(ctx context.Context, config *Config) ([]AwardEvent, error) {
	client := newHTTPClient(config.Timeout)

	var events []AwardEvent
	if err := client.getJSON(ctx, config.BaseURL+"/api/history", &events); err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return events, nil
}
