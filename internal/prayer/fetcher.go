package prayer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"praycalendar/internal/shared/config"
	"praycalendar/pkg/logger"
)

// FetchError is the typed failure a range fetch raises once retries are
// exhausted. Callers treat it as fatal for the whole request: prayer times
// must be complete and consistent for a date range, so there is no partial
// result to fall back on.
type FetchError struct {
	Attempts int
	LastErr  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream fetch failed after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *FetchError) Unwrap() error {
	return e.LastErr
}

// RangeFetcher retrieves daily prayer timings for a contiguous date range.
type RangeFetcher interface {
	FetchRange(ctx context.Context, params Params, start, end time.Time) ([]Day, error)
}

// Fetcher calls the AlAdhan calendar endpoints with retry and backoff.
type Fetcher struct {
	baseURL     string
	client      *http.Client
	maxAttempts int
	backoffBase time.Duration
	timeout     time.Duration
	logger      *logger.Logger
}

// NewFetcher builds a fetcher from the upstream configuration.
func NewFetcher(cfg config.UpstreamConfig, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetDefault()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Fetcher{
		baseURL:     cfg.BaseURL,
		client:      &http.Client{},
		maxAttempts: maxAttempts,
		backoffBase: cfg.BackoffBase,
		timeout:     cfg.RequestTimeout,
		logger:      log,
	}
}

// buildURL assembles the calendar request. Only set parameters are carried;
// the provider applies its own defaults for anything omitted.
func (f *Fetcher) buildURL(params Params, start, end time.Time) string {
	path := "/calendar"
	query := url.Values{}

	if params.Address != "" {
		path = "/calendarByAddress"
		query.Set("address", params.Address)
	} else {
		lat, lng := 0.0, 0.0
		if params.Latitude != nil {
			lat = *params.Latitude
		}
		if params.Longitude != nil {
			lng = *params.Longitude
		}
		query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
		query.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	}

	query.Set("method", strconv.Itoa(params.Method))
	query.Set("school", strconv.Itoa(params.School))
	if params.Shafaq != "" {
		query.Set("shafaq", params.Shafaq)
	}
	if params.Tune != "" {
		query.Set("tune", params.Tune)
	}
	if params.MidnightMode != nil {
		query.Set("midnightMode", strconv.Itoa(*params.MidnightMode))
	}
	if params.LatitudeAdjustmentMethod != nil {
		query.Set("latitudeAdjustmentMethod", strconv.Itoa(*params.LatitudeAdjustmentMethod))
	}
	if params.Adjustment != nil {
		query.Set("adjustment", strconv.Itoa(*params.Adjustment))
	}

	return fmt.Sprintf("%s%s/from/%s/to/%s?%s",
		f.baseURL, path,
		start.Format("02-01-2006"), end.Format("02-01-2006"),
		query.Encode())
}

// FetchRange fetches the range with up to maxAttempts tries and exponential
// backoff (1s, 2s, ...). Each attempt is individually time-bounded; a timed
// out attempt counts as a failed one. Backoff waits are context-aware, never
// busy or blocking past cancellation.
func (f *Fetcher) FetchRange(ctx context.Context, params Params, start, end time.Time) ([]Day, error) {
	reqURL := f.buildURL(params, start, end)

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := f.backoffBase << (attempt - 2)
			select {
			case <-ctx.Done():
				return nil, &FetchError{Attempts: attempt - 1, LastErr: ctx.Err()}
			case <-time.After(delay):
			}
		}

		began := time.Now()
		days, err := f.fetchOnce(ctx, reqURL)
		f.logger.LogUpstreamFetch(ctx, reqURL, attempt, time.Since(began), err)
		if err == nil {
			return days, nil
		}
		lastErr = err
	}

	return nil, &FetchError{Attempts: f.maxAttempts, LastErr: lastErr}
}

func (f *Fetcher) fetchOnce(ctx context.Context, reqURL string) ([]Day, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	var envelope CalendarResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode upstream response: %w", err)
	}

	// The provider embeds failures in the body with a 200 transport status.
	if envelope.Code != http.StatusOK {
		return nil, fmt.Errorf("upstream code %d: %s", envelope.Code, envelope.Status)
	}

	days, err := envelope.Days()
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("upstream returned no days")
	}

	return days, nil
}
