// Package engine implements the check-session aggregation core: session
// grouping, per-checker statistics, hourly time-series bucketing, product
// identity resolution, and the global leaderboard. Every function is pure
// and deterministic over an immutable snapshot of events; callers own
// memoization, cancellation, and all I/O.
package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"stocktake-dashboard/internal/models"
)

// fieldAliases is the ordered field-resolution table for raw records.
// Upstream systems disagree on key spelling, so each logical field lists
// every alias we have seen, most specific first. The first alias whose
// value stringifies to something non-empty wins.
var fieldAliases = map[string][]string{
	"productCode":  {"productCode", "product_code", "code", "sku", "article", "reference"},
	"systemId":     {"systemId", "system_id", "itemId", "item_id", "id"},
	"checkedBy":    {"checkedBy", "checked_by", "checker", "checkedByName", "user"},
	"checkedAt":    {"checkedAt", "checked_at", "checkTime", "check_time", "timestamp"},
	"date":         {"date", "eventDate", "event_date", "createdAt", "created_at"},
	"pointOfSale":  {"pointOfSale", "point_of_sale", "pos", "store", "location"},
	"teams":        {"teams", "team", "crew"},
	"notes":        {"notes", "note", "comment", "remark"},
	"supplierType": {"supplierType", "supplier_type", "supplier"},
	"clientName":   {"clientName", "client_name", "client", "customer"},
}

// imageAliases are resolved separately: their values are lists, not
// scalars.
var imageAliases = []string{"images", "imageUrls", "image_urls", "photos"}

// Normalize maps one heterogeneous raw record onto a CheckEvent using the
// alias table. Missing fields stay empty.
func Normalize(raw map[string]any) models.CheckEvent {
	return models.CheckEvent{
		ProductCode:  ResolveField(raw, "productCode"),
		SystemID:     ResolveField(raw, "systemId"),
		CheckedBy:    ResolveField(raw, "checkedBy"),
		CheckedAt:    ResolveField(raw, "checkedAt"),
		Date:         ResolveField(raw, "date"),
		PointOfSale:  ResolveField(raw, "pointOfSale"),
		Teams:        ResolveField(raw, "teams"),
		Notes:        ResolveField(raw, "notes"),
		SupplierType: ResolveField(raw, "supplierType"),
		ClientName:   ResolveField(raw, "clientName"),
		Images:       resolveImages(raw),
	}
}

// ResolveField applies the alias table for one logical field. Unknown
// field names resolve to "".
func ResolveField(raw map[string]any, field string) string {
	for _, alias := range fieldAliases[field] {
		v, ok := raw[alias]
		if !ok {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

// FieldAliasesFor exposes the alias list for a logical field so callers
// (the CSV header mapper) can match columns against it.
func FieldAliasesFor(field string) []string {
	return fieldAliases[field]
}

// FieldNames returns the logical field names in a stable order.
func FieldNames() []string {
	names := make([]string, 0, len(fieldAliases))
	for name := range fieldAliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resolveImages(raw map[string]any) []string {
	for _, alias := range imageAliases {
		v, ok := raw[alias]
		if !ok {
			continue
		}
		switch imgs := v.(type) {
		case []string:
			if len(imgs) > 0 {
				return imgs
			}
		case []any:
			var out []string
			for _, e := range imgs {
				if s := stringify(e); s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			if s := strings.TrimSpace(imgs); s != "" {
				return []string{s}
			}
		}
	}
	return nil
}

// stringify renders a raw value as a trimmed string. Integral floats (the
// usual JSON number shape for system ids) render without a decimal point.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return stringify(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
