package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"stocktake-dashboard/internal/models"
	"stocktake-dashboard/internal/services"
)

const (
	maxTableRows   = 50
	maxLeaderboard = 20
)

var sessionTableTemplate = template.Must(template.New("sessionTable").Parse(`
<div id="sessions-content">
<table class="modern-table">
<thead><tr><th>Date</th><th>Point of Sale</th><th>Teams</th><th>Checked</th><th>Total</th></tr></thead>
<tbody>
{{range $i, $item := .Data}}{{if lt $i $.MaxRows}}<tr data-session-key="{{.Key}}">
<td>{{.Date}}</td>
<td>{{.POSLabel}}</td>
<td>{{range $j, $t := .Teams}}{{if $j}}, {{end}}{{$t}}{{end}}</td>
<td><strong>{{.Checked}}</strong></td>
<td>{{.Total}}</td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

type templateData struct {
	Data    interface{}
	MaxRows int
}

func (h *SSEHandlers) renderSessionTable(data []models.SessionSummary) (string, error) {
	var buf strings.Builder

	if len(data) > maxTableRows {
		data = data[:maxTableRows]
	}

	tmplData := templateData{Data: data, MaxRows: maxTableRows}
	err := sessionTableTemplate.Execute(&buf, tmplData)
	return buf.String(), err
}

func (h *SSEHandlers) HandleSessions(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.Sessions()
	html, err := h.renderSessionTable(data)
	if err != nil {
		h.logger.Error("render session table", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.Leaderboard()
	if len(data) > maxLeaderboard {
		data = data[:maxLeaderboard]
	}
	jsonData, err := json.Marshal(map[string]any{
		"leaderboardData": data,
	})
	if err != nil {
		h.logger.Error("marshal leaderboard data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="leaderboard-content">✅ Leaderboard data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleSessionSeries(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	key := r.URL.Query().Get("key")
	split := r.URL.Query().Get("split") == "checker"

	result, found := h.analytics.SessionSeries(key, split)
	if !found {
		h.logger.Debug("series requested for unknown session", "key", key)
		sse.PatchElements(`<div id="series-content">No session selected</div>`)
		return
	}

	jsonData, err := json.Marshal(map[string]any{
		"seriesData": result,
	})
	if err != nil {
		h.logger.Error("marshal series data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="series-content">✅ Hourly activity chart data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	sessions := h.analytics.Sessions()
	html, err := h.renderSessionTable(sessions)
	if err != nil {
		h.logger.Error("render session table", "error", err)
		return
	}
	sse.PatchElements(html)

	leaderboard := h.analytics.Leaderboard()
	if len(leaderboard) > maxLeaderboard {
		leaderboard = leaderboard[:maxLeaderboard]
	}

	allSignals, err := json.Marshal(map[string]any{
		"leaderboardData": leaderboard,
	})
	if err != nil {
		h.logger.Error("marshal refresh signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
