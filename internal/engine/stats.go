package engine

import (
	"sort"
	"strings"

	"stocktake-dashboard/internal/models"
)

// unknownLabel is the product label for events carrying neither a code
// nor a system id.
const unknownLabel = "Unknown"

// ProductLabel builds the display/dedup label for an event: "code (id)"
// when both identifiers are present, otherwise whichever exists alone.
func ProductLabel(ev models.CheckEvent) string {
	code := strings.TrimSpace(ev.ProductCode)
	id := strings.TrimSpace(ev.SystemID)
	switch {
	case code != "" && id != "":
		return code + " (" + id + ")"
	case code != "":
		return code
	case id != "":
		return id
	default:
		return unknownLabel
	}
}

// ComputeStats derives per-checker counts for one session. An event counts
// as checked iff its trimmed checker name is non-empty; unchecked events
// stay in Total and are reachable through Unchecked.
func ComputeStats(s models.Session) models.SessionStats {
	counts := make(map[string]int)
	products := make(map[string]map[string]struct{})
	notes := make(map[string]struct{})
	suppliers := make(map[string]struct{})

	checked := 0
	for _, ev := range s.Events {
		if n := strings.TrimSpace(ev.Notes); n != "" {
			notes[n] = struct{}{}
		}
		if st := strings.TrimSpace(ev.SupplierType); st != "" {
			suppliers[st] = struct{}{}
		}

		name := strings.TrimSpace(ev.CheckedBy)
		if name == "" {
			continue
		}
		checked++
		counts[name]++
		set := products[name]
		if set == nil {
			set = make(map[string]struct{})
			products[name] = set
		}
		set[ProductLabel(ev)] = struct{}{}
	}

	checkers := make(map[string]models.CheckerStat, len(counts))
	for name, count := range counts {
		checkers[name] = models.CheckerStat{
			Count:    count,
			Products: sortedSet(products[name]),
		}
	}

	return models.SessionStats{
		Total:            len(s.Events),
		Checked:          checked,
		DistinctCheckers: len(counts),
		Checkers:         checkers,
		Notes:            sortedSet(notes),
		SupplierTypes:    sortedSet(suppliers),
	}
}

// Unchecked returns the session's events without a checker, for the
// "unchecked items" view.
func Unchecked(s models.Session) []models.CheckEvent {
	out := make([]models.CheckEvent, 0)
	for _, ev := range s.Events {
		if strings.TrimSpace(ev.CheckedBy) == "" {
			out = append(out, ev)
		}
	}
	return out
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
