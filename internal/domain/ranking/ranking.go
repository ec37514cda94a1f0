// Package ranking turns the current participant set into an ordered,
// rank-annotated leaderboard.
package ranking

import (
	"sort"

	"github.com/okian/tally/internal/domain/model"
)

// Rank orders participants by total points descending and assigns
// 1-based ranks by position.
//
// Ordering is ordinal: participants with equal scores receive distinct
// consecutive ranks, with the tie broken by input order. Callers are
// expected to pass participants in creation order (the store's stable
// iteration order), which makes repeated calls over unchanged data
// produce identical output.
func Rank(participants []model.Participant) []model.RankedEntry {
	entries := make([]model.RankedEntry, len(participants))
	for i, p := range participants {
		entries[i] = model.RankedEntry{Participant: p}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
