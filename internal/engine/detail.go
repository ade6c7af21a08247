package engine

import (
	"sort"
	"strings"

	"stocktake-dashboard/internal/models"
)

// CheckerProducts builds the drill-down list for one checker: one entry
// per distinct product label across all sessions, enriched against the
// already-fetched payload cache. Enrichment is a pure lookup here; the
// cache is built by the caller's data-fetch layer. A miss produces an
// entry with no payload, which the presentation layer may render as a
// placeholder.
func CheckerProducts(sessions []models.Session, checker string, payloads map[string]models.ProductPayload) []models.ProductDetail {
	type group struct {
		first models.CheckEvent
		count int
	}
	groups := make(map[string]*group)

	for _, s := range sessions {
		for _, ev := range s.Events {
			if strings.TrimSpace(ev.CheckedBy) != checker {
				continue
			}
			label := ProductLabel(ev)
			g, ok := groups[label]
			if !ok {
				g = &group{first: ev}
				groups[label] = g
			}
			g.count++
		}
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	details := make([]models.ProductDetail, 0, len(labels))
	for _, label := range labels {
		g := groups[label]
		detail := models.ProductDetail{
			Label:      label,
			CheckCount: g.count,
			Image:      PickImage(g.first.Images),
		}
		if payload, id, ok := Resolve(EventCandidateIDs(g.first), payloads); ok {
			detail.ResolvedID = id
			detail.Payload = &payload
			if img := PickImage(payload.Images); img != "" {
				detail.Image = img
			}
		}
		details = append(details, detail)
	}
	return details
}
