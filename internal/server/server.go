package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stocktake-dashboard/internal/handlers"
	"stocktake-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// REST API endpoints
	s.mux.HandleFunc("GET /api/sessions", s.apiHandlers.HandleSessions)
	s.mux.HandleFunc("GET /api/session/stats", s.apiHandlers.HandleSessionStats)
	s.mux.HandleFunc("GET /api/session/series", s.apiHandlers.HandleSessionSeries)
	s.mux.HandleFunc("GET /api/session/unchecked", s.apiHandlers.HandleSessionUnchecked)
	s.mux.HandleFunc("GET /api/leaderboard", s.apiHandlers.HandleLeaderboard)
	s.mux.HandleFunc("GET /api/checker/products", s.apiHandlers.HandleCheckerProducts)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/sessions", s.sseHandlers.HandleSessions)
	s.mux.HandleFunc("GET /sse/leaderboard", s.sseHandlers.HandleLeaderboard)
	s.mux.HandleFunc("GET /sse/series", s.sseHandlers.HandleSessionSeries)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
