package server

import (
	"net/http"
	"time"

	"sashboard/internal/logging"
)

// RouteConfig carries the pieces the HTTP surface exposes.
type RouteConfig struct {
	Service          *Service
	Events           *EventHub
	Logger           *logging.Logger
	SessionName      string
	TradeHistoryPath string
}

// RegisterRoutes wires the dashboard UI, the JSON API, and the event
// websocket onto the mux.
func RegisterRoutes(mux *http.ServeMux, cfg RouteConfig) {
	rest := &RestHandler{
		Service:          cfg.Service,
		Events:           cfg.Events,
		Logger:           cfg.Logger,
		SessionName:      cfg.SessionName,
		TradeHistoryPath: cfg.TradeHistoryPath,
		StartedAt:        time.Now().UTC(),
	}

	wrap := func(handler apiHandler) http.Handler {
		return noStoreMiddleware(loggingMiddleware(cfg.Logger, jsonErrorMiddleware(handler)))
	}

	mux.Handle("/api/pnl", wrap(rest.handlePnl))
	mux.Handle("/api/status", wrap(rest.handleStatus))
	mux.Handle("/api/refresh", wrap(rest.handleRefresh))
	mux.Handle("/api/logs", wrap(rest.handleLogs))
	mux.Handle("/ws/events", &EventsHandler{Events: cfg.Events, Logger: cfg.Logger})
	mux.Handle("/ws/logs", &LogStreamHandler{Logger: cfg.Logger})
	mux.Handle("/", loggingMiddleware(cfg.Logger, assetHandler()))
}
