package engine

import (
	"sort"
	"strings"
	"time"

	"stocktake-dashboard/internal/models"
)

// combinedSeriesID names the single series produced when not splitting by
// checker.
const combinedSeriesID = "Checks"

// timestampLayouts are tried in order; all values are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a raw timestamp string as UTC. The second return
// is false when no layout matches; the caller drops the value rather than
// failing the whole computation.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// EventTime picks the best-available timestamp for an event: the check
// time when parseable, else the generic date field.
func EventTime(ev models.CheckEvent) (time.Time, bool) {
	if t, ok := ParseTimestamp(ev.CheckedAt); ok {
		return t, ok
	}
	return ParseTimestamp(ev.Date)
}

// BucketHourly aggregates event timestamps into zero-filled one-hour UTC
// buckets. Events without a parseable timestamp are excluded. With
// splitByChecker, one series is emitted per distinct non-empty checker,
// ids sorted ascending, all sharing the bucket range computed over every
// parseable timestamp so the x-axis lines up. Zero parseable timestamps
// yields the NoData sentinel, distinguishable from all-zero buckets.
func BucketHourly(events []models.CheckEvent, splitByChecker bool) models.BucketResult {
	type stamped struct {
		checker string
		at      time.Time
	}

	var samples []stamped
	for _, ev := range events {
		t, ok := EventTime(ev)
		if !ok {
			continue
		}
		samples = append(samples, stamped{
			checker: strings.TrimSpace(ev.CheckedBy),
			at:      t,
		})
	}
	if len(samples) == 0 {
		return models.BucketResult{NoData: true}
	}

	minT, maxT := samples[0].at, samples[0].at
	for _, s := range samples[1:] {
		if s.at.Before(minT) {
			minT = s.at
		}
		if s.at.After(maxT) {
			maxT = s.at
		}
	}

	start := minT.Truncate(time.Hour)
	end := maxT.Truncate(time.Hour)
	if !maxT.Equal(end) {
		end = end.Add(time.Hour)
	}
	buckets := int(end.Sub(start)/time.Hour) + 1

	newSeries := func(id string) models.TimeBucketSeries {
		points := make([]models.SeriesPoint, buckets)
		for i := range points {
			points[i] = models.SeriesPoint{HourUTC: start.Add(time.Duration(i) * time.Hour)}
		}
		return models.TimeBucketSeries{ID: id, Points: points}
	}
	bucketIndex := func(t time.Time) int {
		return int(t.Truncate(time.Hour).Sub(start) / time.Hour)
	}

	if !splitByChecker {
		series := newSeries(combinedSeriesID)
		for _, s := range samples {
			series.Points[bucketIndex(s.at)].Count++
		}
		return models.BucketResult{Series: []models.TimeBucketSeries{series}}
	}

	perChecker := make(map[string]models.TimeBucketSeries)
	for _, s := range samples {
		if s.checker == "" {
			continue
		}
		series, ok := perChecker[s.checker]
		if !ok {
			series = newSeries(s.checker)
		}
		series.Points[bucketIndex(s.at)].Count++
		perChecker[s.checker] = series
	}

	ids := make([]string, 0, len(perChecker))
	for id := range perChecker {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.TimeBucketSeries, 0, len(ids))
	for _, id := range ids {
		out = append(out, perChecker[id])
	}
	return models.BucketResult{Series: out}
}
