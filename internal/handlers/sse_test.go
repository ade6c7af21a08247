package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"stocktake-dashboard/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := quietLogger()

	handlers := NewSSEHandlers(analytics, logger)

	if handlers == nil {
		t.Error("NewSSEHandlers() returned nil")
	}

	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}

	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_renderSessionTable(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	testData := []models.SessionSummary{
		{
			Key:         "2024-03-01|Ali,Sara|Main Boutique",
			Date:        "2024-03-01",
			POSLabel:    "Main Boutique",
			Teams:       []string{"Ali", "Sara"},
			Total:       3,
			Checked:     2,
		},
		{
			Key:      "2024-02-28|-|Outlet",
			Date:     "2024-02-28",
			POSLabel: "Outlet",
			Total:    1,
		},
	}

	html, err := handlers.renderSessionTable(testData)
	if err != nil {
		t.Fatalf("renderSessionTable() failed: %v", err)
	}

	expectedContent := []string{
		"<table class=\"modern-table\">",
		"<thead>",
		"<th>Date</th>",
		"<th>Point of Sale</th>",
		"<th>Teams</th>",
		"<th>Checked</th>",
		"<th>Total</th>",
		"2024-03-01",
		"Main Boutique",
		"Ali, Sara",
		"2024-02-28",
		"Outlet",
	}

	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestSSEHandlers_renderSessionTable_LargeDataset(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	testData := make([]models.SessionSummary, 75)
	for i := range testData {
		testData[i] = models.SessionSummary{
			Key:   "key",
			Date:  "2024-03-01",
			Total: i,
		}
	}

	html, err := handlers.renderSessionTable(testData)
	if err != nil {
		t.Fatalf("renderSessionTable() failed: %v", err)
	}

	rowCount := strings.Count(html, "<tr")
	rowCount-- // header row
	if rowCount > maxTableRows {
		t.Errorf("expected max %d rows, got %d", maxTableRows, rowCount)
	}
}

func TestSSEHandlers_HandleSessions(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/sessions", nil)
	w := httptest.NewRecorder()

	handlers.HandleSessions(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
	}

	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected cache-control 'no-cache', got %q", cc)
	}

	body := w.Body.String()
	if body == "" {
		t.Error("response should not be empty")
	}

	if !strings.Contains(body, "<table") {
		t.Error("response should contain HTML table")
	}
}

func TestSSEHandlers_HandleLeaderboard(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/leaderboard", nil)
	w := httptest.NewRecorder()

	handlers.HandleLeaderboard(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()

	if !strings.Contains(body, "leaderboardData") {
		t.Error("response should contain leaderboardData signal")
	}

	if !strings.Contains(body, "Leaderboard data loaded") {
		t.Error("response should contain success message")
	}
}

func TestSSEHandlers_HandleSessionSeries(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	target := "/sse/series?key=" + url.QueryEscape(testSessionKey)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()

	handlers.HandleSessionSeries(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()

	if !strings.Contains(body, "seriesData") {
		t.Error("response should contain seriesData signal")
	}

	if !strings.Contains(body, "Hourly activity chart data loaded") {
		t.Error("response should contain success message")
	}
}

func TestSSEHandlers_HandleSessionSeries_UnknownKey(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/series?key=nope", nil)
	w := httptest.NewRecorder()

	handlers.HandleSessionSeries(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	if strings.Contains(body, "seriesData") {
		t.Error("unknown key should not emit a seriesData signal")
	}
	if !strings.Contains(body, "No session selected") {
		t.Error("response should contain placeholder message")
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil)
	w := httptest.NewRecorder()

	handlers.HandleRefreshAll(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()

	if !strings.Contains(body, "leaderboardData") {
		t.Error("response should contain leaderboardData signal")
	}

	if !strings.Contains(body, "<table") {
		t.Error("response should contain HTML table for sessions")
	}
}

// All SSE endpoints share the event-stream headers.
func TestSSEHandlers_HeaderConsistency(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	sseEndpoints := []struct {
		name    string
		handler http.HandlerFunc
		path    string
	}{
		{"sessions", handlers.HandleSessions, "/sse/sessions"},
		{"leaderboard", handlers.HandleLeaderboard, "/sse/leaderboard"},
		{"series", handlers.HandleSessionSeries, "/sse/series?key=" + url.QueryEscape(testSessionKey)},
		{"refresh-all", handlers.HandleRefreshAll, "/sse/refresh-all"},
	}

	for _, endpoint := range sseEndpoints {
		t.Run(endpoint.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, endpoint.path, nil)
			w := httptest.NewRecorder()

			endpoint.handler(w, req)

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("expected cache-control 'no-cache', got %q", cc)
			}

			body := w.Body.String()
			if !strings.Contains(body, "event:") || !strings.Contains(body, "data:") {
				t.Error("response should contain SSE event format")
			}
		})
	}
}

func TestSSEHandlers_TemplateEdgeCases(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), quietLogger())

	tests := []struct {
		name string
		data []models.SessionSummary
	}{
		{"empty slice", []models.SessionSummary{}},
		{"nil data", nil},
		{"single item", []models.SessionSummary{
			{Key: "2024-03-01|-|-", Date: "2024-03-01", Total: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := handlers.renderSessionTable(tt.data)

			if err != nil {
				t.Errorf("renderSessionTable should not error with %s: %v", tt.name, err)
			}

			if !strings.Contains(html, "<table") || !strings.Contains(html, "</table>") {
				t.Errorf("should produce valid table HTML for %s", tt.name)
			}
		})
	}
}
