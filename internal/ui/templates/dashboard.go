package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Stocktake Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; color: #1d2330; }
header { background: #1d2330; color: #fff; padding: 1rem 2rem; }
header h1 { margin: 0; font-size: 1.25rem; }
main { padding: 1.5rem 2rem; display: grid; gap: 1.5rem; }
.panel { background: #fff; border-radius: 8px; padding: 1rem 1.25rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.panel h2 { margin: 0 0 .75rem; font-size: 1rem; color: #4a5264; }
.modern-table { width: 100%; border-collapse: collapse; font-size: .9rem; }
.modern-table th { text-align: left; padding: .5rem; border-bottom: 2px solid #e3e6eb; color: #4a5264; }
.modern-table td { padding: .5rem; border-bottom: 1px solid #eef0f3; }
.modern-table tr:hover td { background: #f0f4ff; cursor: pointer; }
button { background: #2d5bd7; color: #fff; border: 0; border-radius: 6px; padding: .5rem 1rem; cursor: pointer; }
button:hover { background: #244aad; }
</style>
</head>
<body>
<header>
<h1>Stocktake Dashboard</h1>
</header>
<main data-signals="{leaderboardData: [], seriesData: {}}">
<div class="panel">
<button data-on-click="@get('/sse/refresh-all')">Refresh all</button>
</div>
<div class="panel" data-on-load="@get('/sse/sessions')">
<h2>Check Sessions</h2>
<div id="sessions-content">Loading sessions...</div>
</div>
<div class="panel" data-on-load="@get('/sse/leaderboard')">
<h2>Checker Leaderboard</h2>
<div id="leaderboard-content">Loading leaderboard...</div>
</div>
<div class="panel">
<h2>Hourly Activity</h2>
<div id="series-content">Select a session to see its hourly activity</div>
</div>
</main>
</body>
</html>`

// Dashboard renders the single-page dashboard shell. All data arrives
// over the SSE endpoints after load.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardHTML)
		return err
	})
}
