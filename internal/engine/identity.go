package engine

import (
	"path"
	"regexp"
	"strings"

	"stocktake-dashboard/internal/models"
)

// dedupeKeyMaxLen bounds the last-resort stringified key.
const dedupeKeyMaxLen = 200

var (
	parentheticalRe = regexp.MustCompile(`\(([^)]*)\)`)
	digitRunRe      = regexp.MustCompile(`\b\d+\b`)
)

// CandidateIDs extracts candidate identifiers from a free-text label,
// most specific first: the first parenthetical group, then every maximal
// standalone digit run left to right, then the trimmed label itself.
// Duplicates are allowed; consumers de-dupe with a seen-set.
func CandidateIDs(label string) []string {
	var out []string
	if m := parentheticalRe.FindStringSubmatch(label); m != nil {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			out = append(out, inner)
		}
	}
	out = append(out, digitRunRe.FindAllString(label, -1)...)
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		out = append(out, trimmed)
	}
	return out
}

// EventCandidateIDs extracts candidates from a full event: explicit
// identifier fields first, then the label-derived candidates. Codes are
// tried verbatim and then lowercased; the payload cache indexes codes
// in lowercase.
func EventCandidateIDs(ev models.CheckEvent) []string {
	var out []string
	if id := strings.TrimSpace(ev.SystemID); id != "" {
		out = append(out, id)
	}
	if code := strings.TrimSpace(ev.ProductCode); code != "" {
		out = append(out, code)
		if lower := strings.ToLower(code); lower != code {
			out = append(out, lower)
		}
	}
	return append(out, CandidateIDs(ProductLabel(ev))...)
}

// DedupeKey resolves the canonical identity for an event. The priority
// chain always ends in a non-empty value, so deduplication cannot fail;
// in the worst case two id-less records collide on the stringified
// fallback, an accepted precision tradeoff.
func DedupeKey(ev models.CheckEvent) string {
	if id := strings.TrimSpace(ev.SystemID); id != "" {
		return id
	}
	if code := strings.TrimSpace(ev.ProductCode); code != "" {
		return strings.ToLower(code)
	}
	if len(ev.Images) > 0 && strings.TrimSpace(ev.Images[0]) != "" {
		return strings.TrimSpace(ev.Images[0])
	}
	return fallbackKey(ev)
}

// fallbackKey stringifies the record deterministically and truncates.
func fallbackKey(ev models.CheckEvent) string {
	parts := []string{
		ev.ProductCode, ev.SystemID, ev.CheckedBy, ev.CheckedAt, ev.Date,
		ev.PointOfSale, ev.Teams, ev.Notes, ev.SupplierType, ev.ClientName,
	}
	key := strings.Join(parts, "|")
	if len(key) > dedupeKeyMaxLen {
		key = key[:dedupeKeyMaxLen]
	}
	return key
}

// Resolve tries candidate ids against the payload cache in extraction
// order and stops at the first hit. The ordering is part of the contract:
// ids can collide across unrelated records, and order decides which wins.
func Resolve(candidates []string, payloads map[string]models.ProductPayload) (models.ProductPayload, string, bool) {
	seen := make(map[string]struct{}, len(candidates))
	for _, id := range candidates {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := payloads[id]; ok {
			return p, id, true
		}
	}
	return models.ProductPayload{}, "", false
}

// PickImage prefers the first image whose filename does not look like a
// group shot; when every filename matches, the first image wins anyway.
func PickImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	for _, img := range images {
		name := strings.ToLower(path.Base(img))
		if !strings.Contains(name, "group") {
			return img
		}
	}
	return images[0]
}
