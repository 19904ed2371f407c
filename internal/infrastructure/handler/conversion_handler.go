// Package handler exposes the rate services over HTTP
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/damon-houk/currency-rate-widget/internal/application/service"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// ConversionHandler handles HTTP requests for currency conversion
type ConversionHandler struct {
	service *service.ConversionService
	logger  logger.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service *service.ConversionService, log logger.Logger) *ConversionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionHandler{
		service: service,
		logger:  log,
	}
}

// Convert handles GET /convert?amount=&from=&to=
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	from := service.NormalizeCurrencyCode(query.Get("from"))
	to := service.NormalizeCurrencyCode(query.Get("to"))
	rawAmount := query.Get("amount")

	h.logger.Debug("Handling convert request", map[string]interface{}{
		"request_id": requestID,
		"amount":     rawAmount,
		"from":       from,
		"to":         to,
	})

	if rawAmount == "" || from == "" || to == "" {
		sendErrorResponse(w, h.logger, "Missing parameter",
			"The 'amount', 'from' and 'to' query parameters are required", http.StatusBadRequest, requestID)
		return
	}

	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil {
		h.logger.Warn("Invalid amount", map[string]interface{}{
			"request_id": requestID,
			"amount":     rawAmount,
		})
		sendErrorResponse(w, h.logger, "Invalid amount",
			"Amount must be a number", http.StatusBadRequest, requestID)
		return
	}

	// Currency codes should be 3 characters
	if len(from) != 3 || len(to) != 3 {
		sendErrorResponse(w, h.logger, "Invalid currency code",
			"Currency codes should be 3 characters (e.g., USD, EUR, GBP)", http.StatusBadRequest, requestID)
		return
	}

	result, err := h.service.Convert(r.Context(), amount, from, to)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCurrency):
			sendErrorResponse(w, h.logger, "Unknown currency",
				err.Error(), http.StatusBadRequest, requestID)
		case errors.Is(err, service.ErrInvalidCurrencyCode), errors.Is(err, service.ErrInvalidAmount):
			sendErrorResponse(w, h.logger, "Invalid conversion request",
				err.Error(), http.StatusBadRequest, requestID)
		case errors.Is(err, service.ErrNoRates):
			h.logger.Error("No rates available for conversion", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Rates unavailable",
				"No exchange rates are available right now", http.StatusServiceUnavailable, requestID)
		default:
			h.logger.Error("Unexpected error in conversion handler", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Internal server error",
				"An unexpected error occurred. Please try again later.", http.StatusInternalServerError, requestID)
		}
		return
	}

	sendJSON(w, h.logger, http.StatusOK, ConversionResponse{
		Amount:          result.Amount,
		From:            result.From,
		To:              result.To,
		ConvertedAmount: result.ConvertedAmount,
		Rate:            result.Rate,
		BaseCode:        result.BaseCode,
		LastUpdated:     result.LastUpdated,
		Source:          result.Source,
	}, requestID)
}

// RegisterRoutes registers the conversion handler routes
func (h *ConversionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/convert", h.Convert).Methods(http.MethodGet)

	h.logger.Info("Conversion routes registered", map[string]interface{}{
		"routes": []string{
			"GET /convert",
		},
	})
}
