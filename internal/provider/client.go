// Package provider holds the outbound HTTP plumbing shared by every
// third-party API client: a single GET attempt per call, JSON decoding,
// a circuit breaker per provider, and trace propagation.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// ErrCircuitOpen is returned without touching the network while a
// provider's breaker is open.
var ErrCircuitOpen = errors.New("provider circuit open")

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 4 << 10

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	// Message is the provider's own explanation when the body carried one.
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Client performs GET requests against one provider.
type Client struct {
	name    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	tracer  trace.Tracer
}

// New constructs a Client for the named provider. Passing a nil httpClient
// uses a client without a timeout; callers bound requests through ctx.
func New(name string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up says nothing about the provider.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})

	return &Client{
		name:    name,
		http:    httpClient,
		breaker: cb,
		tracer:  otel.Tracer("weather-dashboard/provider"),
	}
}

// Name returns the provider name used in errors and spans.
func (c *Client) Name() string { return c.name }

// GetJSON issues a single GET for endpoint with the given query and decodes
// a 2xx JSON body into dst. Non-2xx answers become *StatusError.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, dst any) error {
	ctx, span := c.tracer.Start(ctx, "GET "+c.name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	err := c.getJSON(ctx, endpoint, query, dst)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, dst any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parsing %s endpoint: %w", c.name, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.http.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// 5xx counts against the breaker; 4xx is a caller problem.
		if r.StatusCode >= 500 {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})
	if resp != nil {
		defer resp.Body.Close()
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	}

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
		}
		if resp == nil {
			return fmt.Errorf("GET %s%s: %w", c.name, u.Path, stripURL(err))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Provider:   c.name,
			StatusCode: resp.StatusCode,
			Message:    readMessage(resp),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding %s response: %w", c.name, err)
	}

	return nil
}

// stripURL drops the *url.Error wrapper so API keys in the query string
// never end up in logs or user-facing messages.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// errorBody covers the error shapes of the providers we talk to.
type errorBody struct {
	Message      string   `json:"message"`
	ErrorMessage string   `json:"error_message"`
	Errors       []string `json:"errors"`
}

func readMessage(resp *http.Response) string {
	fallback := fmt.Sprintf("request failed with status code %d", resp.StatusCode)

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(payload) == 0 {
		return fallback
	}

	var body errorBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return fallback
	}

	switch {
	case body.Message != "":
		return body.Message
	case body.ErrorMessage != "":
		return body.ErrorMessage
	case len(body.Errors) > 0:
		return body.Errors[0]
	}
	return fallback
}
