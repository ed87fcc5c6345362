package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"cityweather/internal/weather"
)

var (
	// ErrTimeout marks a fetch that exceeded the configured bound.
	ErrTimeout = errors.New("weather fetch timed out")

	errUnexpectedStatus = errors.New("unexpected status code")
	errCircuitOpen      = errors.New("circuit breaker open")
)

// FetchError is any failure talking to the weather provider, tagged with the
// city that triggered it. It is surfaced to the end user, never fatal.
type FetchError struct {
	City string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not fetch weather for %s: %v", e.City, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WttrClient fetches current-and-forecast weather from wttr.in. One GET per
// city, bounded by the HTTP client timeout, guarded by a circuit breaker.
// Failed fetches are not retried; the caller must re-invoke.
type WttrClient struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewWttrClient creates a client against the given base URL (empty means the
// public wttr.in endpoint).
func NewWttrClient(client *http.Client, baseURL string) *WttrClient {
	if baseURL == "" {
		baseURL = "https://wttr.in"
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "wttr",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &WttrClient{
		baseURL: baseURL,
		client:  client,
		circuit: cb,
	}
}

// Fetch performs the single bounded GET and decodes the j1 JSON payload.
func (c *WttrClient) Fetch(ctx context.Context, city string) (weather.Payload, error) {
	u := fmt.Sprintf("%s/%s?format=j1", c.baseURL, url.PathEscape(city))

	result, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		}

		var payload weather.Payload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decoding response body: %w", err)
		}
		return payload, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if isTimeout(err) {
			err = fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return weather.Payload{}, &FetchError{City: city, Err: err}
	}

	payload, ok := result.(weather.Payload)
	if !ok {
		return weather.Payload{}, &FetchError{City: city, Err: errors.New("unexpected result type from circuit breaker")}
	}
	return payload, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
