package engine

import (
	"slices"
	"strings"

	"stocktake-dashboard/internal/models"
)

// Rank folds every session's checker statistics into a global leaderboard.
// Checker names match by exact string equality across sessions. The output
// is sorted by total count descending with ties broken by name ascending,
// so the result is identical for any ordering of the input sessions.
func Rank(sessions []models.Session) []models.RankEntry {
	totals := make(map[string]int)
	products := make(map[string]map[string]struct{})

	for _, s := range sessions {
		stats := ComputeStats(s)
		for name, cs := range stats.Checkers {
			totals[name] += cs.Count
			set := products[name]
			if set == nil {
				set = make(map[string]struct{})
				products[name] = set
			}
			for _, label := range cs.Products {
				set[label] = struct{}{}
			}
		}
	}

	entries := make([]models.RankEntry, 0, len(totals))
	for name, total := range totals {
		entries = append(entries, models.RankEntry{
			CheckerName:      name,
			TotalCount:       total,
			DistinctProducts: sortedSet(products[name]),
		})
	}

	slices.SortFunc(entries, func(a, b models.RankEntry) int {
		if a.TotalCount != b.TotalCount {
			return b.TotalCount - a.TotalCount
		}
		return strings.Compare(a.CheckerName, b.CheckerName)
	})
	return entries
}
