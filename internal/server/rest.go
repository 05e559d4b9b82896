package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"sashboard/internal/logging"
	"sashboard/internal/pnl"
	"sashboard/internal/version"
)

// RestHandler serves the dashboard JSON API.
type RestHandler struct {
	Service          *Service
	Events           *EventHub
	Logger           *logging.Logger
	SessionName      string
	TradeHistoryPath string
	StartedAt        time.Time
}

type statusResponse struct {
	SessionName      string    `json:"session_name"`
	TradeHistoryPath string    `json:"trade_history_path"`
	Version          string    `json:"version"`
	StartedAt        time.Time `json:"started_at"`
	ServerTime       time.Time `json:"server_time"`
}

func (h *RestHandler) handlePnl(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, "GET")
	}
	if h.Service == nil {
		return &apiError{Status: http.StatusServiceUnavailable, Message: "report service unavailable"}
	}

	period, err := pnl.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		return &apiError{Status: http.StatusBadRequest, Message: err.Error()}
	}
	force := r.URL.Query().Get("refresh") == "1"

	report, err := h.Service.Report(r.Context(), period, force)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("report failed", map[string]string{
				"period": string(period),
				"error":  err.Error(),
			})
		}
		if errors.Is(err, r.Context().Err()) && r.Context().Err() != nil {
			return &apiError{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
		}
		return &apiError{Status: http.StatusBadGateway, Message: err.Error()}
	}

	writeJSON(w, http.StatusOK, report)
	return nil
}

func (h *RestHandler) handleStatus(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, "GET")
	}
	writeJSON(w, http.StatusOK, statusResponse{
		SessionName:      h.SessionName,
		TradeHistoryPath: h.TradeHistoryPath,
		Version:          version.Version,
		StartedAt:        h.StartedAt,
		ServerTime:       time.Now().UTC(),
	})
	return nil
}

func (h *RestHandler) handleRefresh(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodPost {
		return methodNotAllowed(w, "POST")
	}
	if h.Service == nil {
		return &apiError{Status: http.StatusServiceUnavailable, Message: "report service unavailable"}
	}

	h.Service.Invalidate()
	h.Events.Broadcast(Event{Type: EventRefresh})
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *RestHandler) handleLogs(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, "GET")
	}
	if h.Logger == nil {
		return &apiError{Status: http.StatusServiceUnavailable, Message: "logs unavailable"}
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return &apiError{Status: http.StatusBadRequest, Message: "limit must be a positive integer"}
		}
		limit = parsed
	}
	var level logging.Level
	if raw := r.URL.Query().Get("level"); raw != "" {
		parsed, ok := logging.ParseLevel(raw)
		if !ok {
			return &apiError{Status: http.StatusBadRequest, Message: "unknown log level"}
		}
		level = parsed
	}

	entries := h.Logger.Recent(limit, level)
	if entries == nil {
		entries = []logging.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
	return nil
}
