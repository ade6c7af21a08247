package engine

import (
	"sort"
	"strings"

	"stocktake-dashboard/internal/models"
)

const missingPart = "-"

// unknownDate is the session date for events without a usable date field.
const unknownDate = "Unknown"

// SessionDate derives the session-key date component: the first ten
// characters of the event date, or "Unknown".
func SessionDate(ev models.CheckEvent) string {
	d := strings.TrimSpace(ev.Date)
	if d == "" {
		return unknownDate
	}
	if len(d) > 10 {
		d = d[:10]
	}
	return d
}

// TeamTokens splits a roster field on commas and whitespace, trims each
// token, and de-duplicates preserving first-seen order. The order is NOT
// sorted: "A,B" and "B,A" produce different rosters, matching the
// upstream behavior this replaces.
func TeamTokens(teams string) []string {
	fields := strings.FieldsFunc(teams, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	seen := make(map[string]struct{}, len(fields))
	var tokens []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// SessionKey builds the composite "date|teams|pos" key for an event.
// Every event yields a key; missing parts degrade to placeholders, never
// to a rejection.
func SessionKey(ev models.CheckEvent) string {
	teamsKey := strings.Join(TeamTokens(ev.Teams), ",")
	if teamsKey == "" {
		teamsKey = missingPart
	}
	posKey := strings.TrimSpace(ev.PointOfSale)
	if posKey == "" {
		posKey = missingPart
	}
	return SessionDate(ev) + "|" + teamsKey + "|" + posKey
}

// Group partitions events into sessions in a single pass. Every input
// event lands in exactly one session. Output is sorted by date descending;
// sessions with equal dates keep first-appearance order.
func Group(events []models.CheckEvent) []models.Session {
	index := make(map[string]int)
	var sessions []models.Session

	for _, ev := range events {
		key := SessionKey(ev)
		i, ok := index[key]
		if !ok {
			posKey := strings.TrimSpace(ev.PointOfSale)
			if posKey == "" {
				posKey = missingPart
			}
			sessions = append(sessions, models.Session{
				Key:         key,
				Date:        SessionDate(ev),
				PointOfSale: posKey,
				Teams:       TeamTokens(ev.Teams),
			})
			i = len(sessions) - 1
			index[key] = i
		}
		sessions[i].Events = append(sessions[i].Events, ev)
	}

	sort.SliceStable(sessions, func(a, b int) bool {
		return sessions[a].Date > sessions[b].Date
	})
	return sessions
}
