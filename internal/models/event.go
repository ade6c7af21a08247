package models

import "time"

// CheckEvent is one raw "item checked" record after field normalization.
// Any field may be empty: incoming records are heterogeneous and missing
// data is never an error.
type CheckEvent struct {
	ProductCode  string   `json:"product_code,omitempty"`
	SystemID     string   `json:"system_id,omitempty"`
	CheckedBy    string   `json:"checked_by,omitempty"`
	CheckedAt    string   `json:"checked_at,omitempty"`
	Date         string   `json:"date,omitempty"`
	PointOfSale  string   `json:"point_of_sale,omitempty"`
	Teams        string   `json:"teams,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	SupplierType string   `json:"supplier_type,omitempty"`
	ClientName   string   `json:"client_name,omitempty"`
	Images       []string `json:"images,omitempty"`
}

// Session is the set of events sharing one (date, team roster, point of
// sale) key. Derived statistics are computed on demand, not stored here.
type Session struct {
	Key         string       `json:"key"`
	Date        string       `json:"date"`
	PointOfSale string       `json:"point_of_sale"`
	Teams       []string     `json:"teams"`
	Events      []CheckEvent `json:"-"`
}

// SessionSummary is the list-view projection of a session.
type SessionSummary struct {
	Key              string   `json:"key"`
	Date             string   `json:"date"`
	PointOfSale      string   `json:"point_of_sale"`
	POSLabel         string   `json:"pos_label,omitempty"`
	Teams            []string `json:"teams"`
	Total            int      `json:"total"`
	Checked          int      `json:"checked"`
	DistinctCheckers int      `json:"distinct_checkers"`
}

// CheckerStat holds one checker's counts within a session. Products is the
// sorted set of distinct product labels the checker touched; re-scanning
// the same item inflates Count but not Products.
type CheckerStat struct {
	Count    int      `json:"count"`
	Products []string `json:"products"`
}

// SessionStats is the per-session aggregate.
type SessionStats struct {
	Total            int                    `json:"total"`
	Checked          int                    `json:"checked"`
	DistinctCheckers int                    `json:"distinct_checkers"`
	Checkers         map[string]CheckerStat `json:"checkers"`
	Notes            []string               `json:"notes,omitempty"`
	SupplierTypes    []string               `json:"supplier_types,omitempty"`
}

// SeriesPoint is one hourly bucket.
type SeriesPoint struct {
	HourUTC time.Time `json:"hour_utc"`
	Count   int       `json:"count"`
}

// TimeBucketSeries is a zero-filled hourly series for one chart line.
type TimeBucketSeries struct {
	ID     string        `json:"id"`
	Points []SeriesPoint `json:"points"`
}

// BucketResult carries chart series. NoData distinguishes "no parseable
// timestamps at all" from a series of all-zero buckets.
type BucketResult struct {
	Series []TimeBucketSeries `json:"series"`
	NoData bool               `json:"no_data"`
}

// RankEntry is one leaderboard row.
type RankEntry struct {
	CheckerName      string   `json:"checker_name"`
	TotalCount       int      `json:"total_count"`
	DistinctProducts []string `json:"distinct_products"`
}

// ProductPayload is an enrichment record supplied by the external
// data-fetch layer, keyed by product id in a plain map.
type ProductPayload struct {
	ID       string            `json:"id"`
	Code     string            `json:"code,omitempty"`
	Name     string            `json:"name,omitempty"`
	Images   []string          `json:"images,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ProductDetail is one row of the per-checker drill-down list. Payload is
// nil when enrichment found nothing.
type ProductDetail struct {
	Label      string          `json:"label"`
	ResolvedID string          `json:"resolved_id,omitempty"`
	Image      string          `json:"image,omitempty"`
	CheckCount int             `json:"check_count"`
	Payload    *ProductPayload `json:"payload,omitempty"`
}
