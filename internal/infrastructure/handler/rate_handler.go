package handler

import (
	"context"
	"net/http"

	"github.com/damon-houk/currency-rate-widget/internal/application/widget"
	"github.com/damon-houk/currency-rate-widget/internal/domain/service"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// SnapshotSource provides widget snapshots; *widget.Poller implements it
type SnapshotSource interface {
	Snapshot() (widget.Snapshot, bool)
	Refresh(ctx context.Context) widget.Snapshot
}

// RateHandler serves the current rate set and the widget snapshot
type RateHandler struct {
	rates  service.RatesGetter
	widget SnapshotSource
	logger logger.Logger
}

// NewRateHandler creates a new rate handler
func NewRateHandler(rates service.RatesGetter, snapshots SnapshotSource, log logger.Logger) *RateHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateHandler{
		rates:  rates,
		widget: snapshots,
		logger: log,
	}
}

// GetRates returns the rate set currently served by the cache
func (h *RateHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	rates := h.rates.GetRates(r.Context())
	if rates == nil {
		h.logger.Error("Rate source returned no rates", map[string]interface{}{
			"request_id": requestID,
		})
		sendErrorResponse(w, h.logger, "Rates unavailable",
			"No exchange rates are available right now", http.StatusServiceUnavailable, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, RatesResponse{
		BaseCode:    rates.BaseCode,
		Rates:       rates.Rates,
		LastUpdated: rates.LastUpdated,
		Source:      rates.Source,
		Fallback:    rates.IsFallback(),
	}, requestID)
}

// GetWidget returns the latest widget snapshot, refreshing once if the poller
// has not produced one yet
func (h *RateHandler) GetWidget(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	snapshot, ok := h.widget.Snapshot()
	if !ok {
		h.logger.Debug("No widget snapshot yet, refreshing", map[string]interface{}{
			"request_id": requestID,
		})
		snapshot = h.widget.Refresh(r.Context())
	}

	sendJSON(w, h.logger, http.StatusOK, snapshot, requestID)
}

// RegisterRoutes registers the rate handler routes
func (h *RateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rates", h.GetRates).Methods(http.MethodGet)
	router.HandleFunc("/widget", h.GetWidget).Methods(http.MethodGet)

	h.logger.Info("Rate routes registered", map[string]interface{}{
		"routes": []string{
			"GET /rates",
			"GET /widget",
		},
	})
}
