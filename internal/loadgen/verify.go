package loadgen

import (
	"fmt"
	"log"
)

// verifyResults reconciles the final leaderboard against the points
// this run observed being awarded, and checks structural invariants.
func verifyResults(config *Config, before, awarded map[string]int64, leaderboard []RankedEntry, history []AwardEvent) error {
	log.Println("🔍 Verifying results...")

	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	if err := verifyOrdering(leaderboard); err != nil {
		return err
	}

	if err := verifyTotals(before, awarded, leaderboard); err != nil {
		// Concurrent external traffic makes strict reconciliation
		// impossible, so totals mismatches are reported, not fatal.
		log.Printf("⚠️  Totals reconciliation warning: %v", err)
	} else {
		log.Println("✅ Leaderboard totals match observed awards")
	}

	if len(history) > 0 {
		for _, ev := range history {
			if ev.Points < 1 || ev.Points > 10 {
				return fmt.Errorf("history event %s has out-of-range award %d", ev.ID, ev.Points)
			}
		}
		log.Printf("✅ History feed verified (%d events, all awards in range)", len(history))
	}

	displayTopPerformers(leaderboard, config.Verbose)
	return nil
}

// verifyOrdering checks that ranks are sequential and totals never
// increase down the board.
func verifyOrdering(leaderboard []RankedEntry) error {
	for i, entry := range leaderboard {
		if entry.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d, expected %d", i, entry.Rank, i+1)
		}
		if i > 0 && entry.TotalPoints > leaderboard[i-1].TotalPoints {
			return fmt.Errorf("leaderboard not sorted: entry %d has more points than entry %d", i, i-1)
		}
	}
	return nil
}

// verifyTotals checks pre-run total + observed awards == final total
// for every participant this run claimed for.
func verifyTotals(before, awarded map[string]int64, leaderboard []RankedEntry) error {
	final := make(map[string]int64, len(leaderboard))
	for _, entry := range leaderboard {
		final[entry.ID] = int64(entry.TotalPoints)
	}

	for id, pts := range awarded {
		want := before[id] + pts
		got, ok := final[id]
		if !ok {
			return fmt.Errorf("participant %s missing from final leaderboard", id)
		}
		if got != want {
			return fmt.Errorf("participant %s total is %d, expected %d (%d before + %d awarded)",
				id, got, want, before[id], pts)
		}
	}
	return nil
}

// displayTopPerformers shows the head of the final leaderboard.
func displayTopPerformers(leaderboard []RankedEntry, verbose bool) {
	topN := 10
	if len(leaderboard) < topN {
		topN = len(leaderboard)
	}

	log.Printf("🏆 Top %d on the final leaderboard:", topN)
	for i := 0; i < topN; i++ {
		entry := leaderboard[i]
		log.Printf("   %d. %s - %d points", entry.Rank, entry.Name, entry.TotalPoints)
	}

	if verbose && len(leaderboard) > 0 {
		sum := 0
		for _, entry := range leaderboard {
			sum += entry.TotalPoints
		}
		log.Printf("📊 %d participants, %d total points, %.1f average",
			len(leaderboard), sum, float64(sum)/float64(len(leaderboard)))
	}
}
