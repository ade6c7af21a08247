package services

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"stocktake-dashboard/internal/engine"
	"stocktake-dashboard/internal/models"
	"stocktake-dashboard/internal/observability"
)

const (
	batchSize    = 10000
	maxWorkers   = 10
	cacheVersion = "v1"
	cacheDir     = ".cache"
)

// EventLister is the slice of the storage layer Analytics needs.
type EventLister interface {
	ListEvents(ctx context.Context) ([]models.CheckEvent, error)
}

// PrecomputedData holds everything derived from the current event
// snapshot. It is replaced wholesale on every recompute; readers never see
// a partially updated view.
type PrecomputedData struct {
	Sessions     []models.Session
	Summaries    []models.SessionSummary
	Stats        map[string]models.SessionStats
	Leaderboard  []models.RankEntry
	LastModified time.Time
	RecordCount  int64
}

// cachedSnapshot is the on-disk cache payload: the normalized events, not
// the derived aggregates. Parsing is the expensive part; the engine stays
// the single source of derived truth.
type cachedSnapshot struct {
	Events       []models.CheckEvent
	LastModified time.Time
	RecordCount  int64
}

// Analytics owns an immutable snapshot of check events and the aggregates
// precomputed from it. The engine calls are pure; this type adds the
// locking, loading, and caching around them.
type Analytics struct {
	mu               sync.RWMutex
	events           []models.CheckEvent
	pre              *PrecomputedData
	sessionIndex     map[string]int
	posLabels        map[string]string
	payloads         map[string]models.ProductPayload
	csvPath          string
	recordsProcessed atomic.Int64
	logger           *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{
		pre:          &PrecomputedData{Stats: map[string]models.SessionStats{}},
		sessionIndex: map[string]int{},
		logger:       slog.Default(),
	}
}

// SetEvents replaces the event snapshot and recomputes every aggregate.
// Recomputation is synchronous; a caller that changes the input mid-flight
// discards the old result by calling this again.
func (a *Analytics) SetEvents(events []models.CheckEvent) {
	start := time.Now()

	sessions := engine.Group(events)
	stats := make(map[string]models.SessionStats, len(sessions))
	summaries := make([]models.SessionSummary, 0, len(sessions))
	index := make(map[string]int, len(sessions))

	a.mu.RLock()
	posLabels := a.posLabels
	a.mu.RUnlock()

	for i, s := range sessions {
		st := engine.ComputeStats(s)
		stats[s.Key] = st
		index[s.Key] = i
		summaries = append(summaries, models.SessionSummary{
			Key:              s.Key,
			Date:             s.Date,
			PointOfSale:      s.PointOfSale,
			POSLabel:         posLabels[s.PointOfSale],
			Teams:            s.Teams,
			Total:            st.Total,
			Checked:          st.Checked,
			DistinctCheckers: st.DistinctCheckers,
		})
	}

	pre := &PrecomputedData{
		Sessions:     sessions,
		Summaries:    summaries,
		Stats:        stats,
		Leaderboard:  engine.Rank(sessions),
		LastModified: time.Now(),
		RecordCount:  int64(len(events)),
	}

	a.mu.Lock()
	a.events = events
	a.pre = pre
	a.sessionIndex = index
	a.mu.Unlock()

	a.recordsProcessed.Store(int64(len(events)))
	observability.EventsLoaded.Set(float64(len(events)))
	observability.RecomputeDuration.Observe(time.Since(start).Seconds())
}

// SetPOSLabels installs the display-only point-of-sale id to label map.
// It is passed through to summaries untouched; grouping keys never use it.
func (a *Analytics) SetPOSLabels(labels map[string]string) {
	a.mu.Lock()
	a.posLabels = labels
	events := a.events
	a.mu.Unlock()
	if len(events) > 0 {
		a.SetEvents(events)
	}
}

// SetProductPayloads installs the enrichment cache built by the external
// data-fetch layer.
func (a *Analytics) SetProductPayloads(payloads map[string]models.ProductPayload) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.payloads = payloads
}

// LoadFromCSV streams a header-driven CSV of raw check records, resolves
// column names through the field alias table, and installs the resulting
// snapshot. A gob cache keyed to the file path skips re-parsing when the
// file is unchanged.
func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	a.csvPath = filename

	if cached, err := a.loadFromCache(filename); err == nil {
		if info, err := os.Stat(filename); err == nil && info.ModTime().Before(cached.LastModified) {
			a.SetEvents(cached.Events)
			a.logger.Info("loaded events from cache", "records", cached.RecordCount)
			return nil
		}
	}

	start := time.Now()
	a.logger.Info("processing event file", "filename", filename)

	events, err := a.streamParseCSV(ctx, filename)
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}
	a.SetEvents(events)

	if err := a.saveToCache(filename); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	count := a.recordsProcessed.Load()
	a.logger.Info("event file processed",
		"records", count,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(count)/duration.Seconds()))

	return nil
}

// LoadFromStore pulls the full event list from a storage backend.
func (a *Analytics) LoadFromStore(ctx context.Context, store EventLister) error {
	events, err := store.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	a.SetEvents(events)
	a.logger.Info("loaded events from store", "records", len(events))
	return nil
}

// LoadProductPayloads reads an enrichment dump (JSON array of payloads)
// and indexes it by id and by lowercased code.
func (a *Analytics) LoadProductPayloads(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read payloads: %w", err)
	}
	var payloads []models.ProductPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return fmt.Errorf("decode payloads: %w", err)
	}

	cache := make(map[string]models.ProductPayload, len(payloads)*2)
	for _, p := range payloads {
		if p.ID != "" {
			cache[p.ID] = p
		}
		if code := strings.ToLower(p.Code); code != "" {
			if _, taken := cache[code]; !taken {
				cache[code] = p
			}
		}
	}
	a.SetProductPayloads(cache)
	a.logger.Info("loaded product payloads", "count", len(payloads))
	return nil
}

// LoadPOSLabels reads a YAML map of point-of-sale ids to display labels.
func (a *Analytics) LoadPOSLabels(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read pos labels: %w", err)
	}
	var labels map[string]string
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return fmt.Errorf("decode pos labels: %w", err)
	}
	a.SetPOSLabels(labels)
	a.logger.Info("loaded point-of-sale labels", "count", len(labels))
	return nil
}

func (a *Analytics) streamParseCSV(ctx context.Context, filename string) ([]models.CheckEvent, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReaderSize(file, 1024*1024))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = canonicalColumn(h)
	}

	var events []models.CheckEvent
	batch := make([][]string, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		parsed, err := parseBatch(ctx, header, batch)
		if err != nil {
			return err
		}
		events = append(events, parsed...)
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		batch = append(batch, row)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("no records found")
	}
	return events, nil
}

// parseBatch normalizes one batch of rows with bounded workers. Results
// land at their input index so event order, which grouping depends on, is
// preserved.
func parseBatch(ctx context.Context, header []string, batch [][]string) ([]models.CheckEvent, error) {
	out := make([]models.CheckEvent, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)
	for i, row := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			out[i] = engine.Normalize(rowToRecord(header, row))
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// rowToRecord pairs CSV values with their canonicalized header names.
// Image columns hold ";"-separated URL lists.
func rowToRecord(header []string, values []string) map[string]any {
	record := make(map[string]any, len(header))
	for i, col := range header {
		if i >= len(values) {
			break
		}
		v := strings.TrimSpace(values[i])
		if v == "" {
			continue
		}
		if col == "images" {
			parts := strings.Split(v, ";")
			urls := make([]any, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					urls = append(urls, p)
				}
			}
			record[col] = urls
			continue
		}
		record[col] = v
	}
	return record
}

// canonicalColumn maps a CSV header onto the alias spelling the field
// table knows, matching case-insensitively. Unrecognized headers pass
// through and simply never resolve.
func canonicalColumn(header string) string {
	header = strings.TrimSpace(header)
	for _, field := range engine.FieldNames() {
		for _, alias := range engine.FieldAliasesFor(field) {
			if strings.EqualFold(alias, header) {
				return alias
			}
		}
	}
	for _, alias := range []string{"images", "imageUrls", "image_urls", "photos"} {
		if strings.EqualFold(alias, header) {
			return "images"
		}
	}
	return header
}

// --- cache management ---

func (a *Analytics) cacheFilename(csvPath string) string {
	return fmt.Sprintf("%s/%s_%s.gob", cacheDir, strings.ReplaceAll(csvPath, "/", "_"), cacheVersion)
}

func (a *Analytics) saveToCache(csvPath string) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	file, err := os.Create(a.cacheFilename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	a.mu.RLock()
	snapshot := cachedSnapshot{
		Events:       a.events,
		LastModified: a.pre.LastModified,
		RecordCount:  a.pre.RecordCount,
	}
	a.mu.RUnlock()

	return gob.NewEncoder(file).Encode(snapshot)
}

func (a *Analytics) loadFromCache(csvPath string) (*cachedSnapshot, error) {
	file, err := os.Open(a.cacheFilename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snapshot cachedSnapshot
	if err := gob.NewDecoder(file).Decode(&snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// --- query methods over precomputed data ---

// Sessions returns the session list view, most recent date first.
func (a *Analytics) Sessions() []models.SessionSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pre.Summaries
}

// SessionStats returns the per-checker statistics for one session key.
func (a *Analytics) SessionStats(key string) (models.SessionStats, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	st, ok := a.pre.Stats[key]
	return st, ok
}

// SessionSeries buckets one session's events into hourly chart series.
// Series are cheap next to parsing, so they are computed on demand from
// the immutable snapshot rather than precomputed per session.
func (a *Analytics) SessionSeries(key string, splitByChecker bool) (models.BucketResult, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	i, ok := a.sessionIndex[key]
	if !ok {
		return models.BucketResult{}, false
	}
	return engine.BucketHourly(a.pre.Sessions[i].Events, splitByChecker), true
}

// SessionUnchecked returns the events in a session with no checker.
func (a *Analytics) SessionUnchecked(key string) ([]models.CheckEvent, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	i, ok := a.sessionIndex[key]
	if !ok {
		return nil, false
	}
	return engine.Unchecked(a.pre.Sessions[i]), true
}

// Leaderboard returns the global checker ranking.
func (a *Analytics) Leaderboard() []models.RankEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pre.Leaderboard
}

// CheckerProducts returns the drill-down product list for one checker.
func (a *Analytics) CheckerProducts(name string) []models.ProductDetail {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return engine.CheckerProducts(a.pre.Sessions, name, a.payloads)
}

// Stats reports snapshot metadata for the admin view.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"record_count":   a.pre.RecordCount,
		"last_processed": a.pre.LastModified,
		"sessions":       len(a.pre.Sessions),
		"checkers":       len(a.pre.Leaderboard),
		"payloads":       len(a.payloads),
	}
}
