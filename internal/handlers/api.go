package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"stocktake-dashboard/internal/errors"
	"stocktake-dashboard/internal/observability"
	"stocktake-dashboard/internal/services"
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleSessions(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.Sessions()

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleSessionStats(w http.ResponseWriter, r *http.Request) {

	key, ok := h.sessionKey(w, r)
	if !ok {
		return
	}

	stats, found := h.analytics.SessionStats(key)
	if !found {
		h.writeUnknownSession(w, r, key)
		return
	}

	errors.WriteSuccessWithHeaders(w, stats, cacheHeaders)
}

func (h *APIHandlers) HandleSessionSeries(w http.ResponseWriter, r *http.Request) {

	key, ok := h.sessionKey(w, r)
	if !ok {
		return
	}
	split := r.URL.Query().Get("split") == "checker"

	result, found := h.analytics.SessionSeries(key, split)
	if !found {
		h.writeUnknownSession(w, r, key)
		return
	}

	errors.WriteSuccessWithHeaders(w, result, cacheHeaders)
}

func (h *APIHandlers) HandleSessionUnchecked(w http.ResponseWriter, r *http.Request) {

	key, ok := h.sessionKey(w, r)
	if !ok {
		return
	}

	events, found := h.analytics.SessionUnchecked(key)
	if !found {
		h.writeUnknownSession(w, r, key)
		return
	}

	errors.WriteSuccessWithHeaders(w, events, cacheHeaders)
}

func (h *APIHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.Leaderboard()

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleCheckerProducts(w http.ResponseWriter, r *http.Request) {

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.BadRequest("Missing required query parameter: name"), requestID)
		return
	}

	data := h.analytics.CheckerProducts(name)

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}

// sessionKey extracts the required key parameter, writing a 400 when
// it is absent.
func (h *APIHandlers) sessionKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.URL.Query().Get("key")
	if key == "" {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.BadRequest("Missing required query parameter: key"), requestID)
		return "", false
	}
	return key, true
}

func (h *APIHandlers) writeUnknownSession(w http.ResponseWriter, r *http.Request, key string) {
	requestID := observability.GetRequestID(r.Context())
	h.logger.Debug("unknown session key", "key", key, "request_id", requestID)
	errors.WriteError(w, h.logger, errors.NotFound("Session not found"), requestID)
}
