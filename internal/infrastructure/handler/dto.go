package handler

import (
	"time"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
)

// RatesResponse represents the response for the rates endpoint
type RatesResponse struct {
	BaseCode    string             `json:"base_code"`
	Rates       map[string]float64 `json:"rates"`
	LastUpdated time.Time          `json:"last_updated"`
	Source      entity.RateSource  `json:"source"`
	Fallback    bool               `json:"fallback"`
}

// ConversionResponse represents the response for the conversion endpoint
type ConversionResponse struct {
	Amount          float64           `json:"amount"`
	From            string            `json:"from"`
	To              string            `json:"to"`
	ConvertedAmount float64           `json:"converted_amount"`
	Rate            float64           `json:"rate"`
	BaseCode        string            `json:"base_code"`
	LastUpdated     time.Time         `json:"last_updated"`
	Source          entity.RateSource `json:"source"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
