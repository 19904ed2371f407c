package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/damon-houk/currency-rate-widget/internal/domain/entity"
	"github.com/damon-houk/currency-rate-widget/internal/domain/service"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/logger"
)

const (
	// LatestRatesURL returns the latest rates quoted against USD
	LatestRatesURL = "https://open.er-api.com/v6/latest/USD"

	// DefaultTimeout bounds a single provider request
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 1 << 20
	resultSuccess    = "success"
)

var (
	// ErrUnexpectedStatus is returned for any non-200 response
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrProviderFailure is returned when the provider answers with result != "success"
	ErrProviderFailure = errors.New("provider reported failure")
	// ErrMalformedResponse is returned when the body cannot be turned into a rate set
	ErrMalformedResponse = errors.New("malformed provider response")
)

// lastUpdateLayouts are tried in order against time_last_update_utc
var lastUpdateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Verify that ExchangeRateAPIClient implements the service.RateProvider interface
var _ service.RateProvider = (*ExchangeRateAPIClient)(nil)

// ExchangeRateAPIClient fetches the latest rates from open.er-api.com
type ExchangeRateAPIClient struct {
	url        string
	httpClient *http.Client
	logger     logger.Logger
}

// NewExchangeRateAPIClient creates a new provider client. An empty url selects
// LatestRatesURL and a nil httpClient gets one with DefaultTimeout.
func NewExchangeRateAPIClient(url string, httpClient *http.Client, log logger.Logger) *ExchangeRateAPIClient {
	if url == "" {
		url = LatestRatesURL
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ExchangeRateAPIClient{
		url:        url,
		httpClient: httpClient,
		logger:     log,
	}
}

// LatestRatesResponse represents the response structure from the provider
type LatestRatesResponse struct {
	Result             string             `json:"result"`
	ErrorType          string             `json:"error-type,omitempty"`
	BaseCode           string             `json:"base_code"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	TimeLastUpdateUTC  string             `json:"time_last_update_utc"`
	Rates              map[string]float64 `json:"rates"`
}

// FetchLatestRates performs a single request for the latest rates.
// There is no retry: callers decide what to do with a failure.
func (c *ExchangeRateAPIClient) FetchLatestRates(ctx context.Context) (*entity.ExchangeRateSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Add("Accept", "application/json")

	c.logger.Debug("Requesting latest exchange rates", map[string]interface{}{
		"url": c.url,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Exchange rate API responded", map[string]interface{}{
		"status": resp.StatusCode,
		"bytes":  len(bodyBytes),
	})

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var latest LatestRatesResponse
	if err := json.Unmarshal(bodyBytes, &latest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return latest.toRateSet()
}

func (r LatestRatesResponse) toRateSet() (*entity.ExchangeRateSet, error) {
	if r.Result != resultSuccess {
		if r.ErrorType != "" {
			return nil, fmt.Errorf("%w: %s", ErrProviderFailure, r.ErrorType)
		}
		return nil, fmt.Errorf("%w: result %q", ErrProviderFailure, r.Result)
	}

	if len(r.Rates) == 0 {
		return nil, fmt.Errorf("%w: no rates", ErrMalformedResponse)
	}

	lastUpdated, err := r.lastUpdated()
	if err != nil {
		return nil, err
	}

	rates, err := entity.NewExchangeRateSet(r.BaseCode, r.Rates, lastUpdated, entity.SourceLive)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return rates, nil
}

func (r LatestRatesResponse) lastUpdated() (time.Time, error) {
	if r.TimeLastUpdateUTC != "" {
		for _, layout := range lastUpdateLayouts {
			if t, err := time.Parse(layout, r.TimeLastUpdateUTC); err == nil {
				return t.UTC(), nil
			}
		}
	}

	if r.TimeLastUpdateUnix > 0 {
		return time.Unix(r.TimeLastUpdateUnix, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("%w: unparseable last update time %q", ErrMalformedResponse, r.TimeLastUpdateUTC)
}
