// Package fetch retrieves dashboard payloads from the aggregation endpoint.
//
// A fetch first tries a plain JSON GET. When that fails for any reason it
// falls back, exactly once, to a callback script (JSONP) request against the
// same URL. Only a fallback failure is reported to the caller.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"painel/internal/core"
	applog "painel/internal/log"
)

// Query parameter names understood by the aggregation endpoint.
const (
	ParamYear     = "ano"
	ParamMonth    = "mes"
	ParamLimit    = "limit"
	ParamCallback = "callback"
)

const maxBodyBytes = 8 << 20

// Client fetches dashboard payloads. It is safe for concurrent use; calls
// are independent and may settle in any order.
type Client struct {
	endpoint        *url.URL
	http            *http.Client
	registry        *Registry
	logger          *applog.Logger
	metrics         *metrics
	now             func() time.Time
	primaryTimeout  time.Duration
	fallbackTimeout time.Duration

	scripts atomic.Int64
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client used by both transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *applog.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(applog.ComponentFetch) }
}

// WithRegisterer registers the client's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = newMetrics(reg) }
}

func WithTimeouts(primary, fallback time.Duration) Option {
	return func(c *Client) {
		if primary > 0 {
			c.primaryTimeout = primary
		}
		if fallback > 0 {
			c.fallbackTimeout = fallback
		}
	}
}

// WithClock sets the clock used to default the query year.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithRegistry shares a callback registry between clients.
func WithRegistry(r *Registry) Option {
	return func(c *Client) { c.registry = r }
}

// New returns a client for the aggregation endpoint at endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q: scheme must be http or https", endpoint)
	}

	c := &Client{
		endpoint:        u,
		http:            http.DefaultClient,
		registry:        NewRegistry(),
		logger:          applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentFetch),
		metrics:         newMetrics(nil),
		now:             time.Now,
		primaryTimeout:  10 * time.Second,
		fallbackTimeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch returns the dashboard payload for q. A zero year means the current
// one and a zero limit means core.DefaultLimit.
func (c *Client) Fetch(ctx context.Context, q core.Query) (core.Dashboard, error) {
	q = q.Normalize(c.now())
	if err := q.Validate(); err != nil {
		return core.Dashboard{}, err
	}
	u := c.RequestURL(q)
	logger := c.logger.With(applog.NewFields().WithPeriod(q.Year, q.Month, q.Limit).ToSlice()...)

	start := time.Now()
	d, err := c.fetchPrimary(ctx, u)
	c.metrics.observe(transportPrimary, err, time.Since(start).Seconds())
	if err == nil {
		logger.DebugContext(ctx, "Dashboard fetched", applog.FieldTransport, transportPrimary)
		return d, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return core.Dashboard{}, fmt.Errorf("fetch dashboard: %w", ctxErr)
	}

	var se *StatusError
	if errors.As(err, &se) {
		logger.WarnContext(ctx, "Primary transport rejected, falling back", applog.FieldStatusCode, se.Code)
	} else {
		logger.WarnContext(ctx, "Primary transport failed, falling back", applog.FieldError, err)
	}

	start = time.Now()
	d, err = c.fetchFallback(ctx, u)
	c.metrics.observe(transportFallback, err, time.Since(start).Seconds())
	if err != nil {
		logger.ErrorContext(ctx, "Fallback transport failed", applog.FieldError, err)
		return core.Dashboard{}, err
	}
	logger.InfoContext(ctx, "Dashboard fetched", applog.FieldTransport, transportFallback)
	return d, nil
}

// RequestURL builds the endpoint URL for an already normalized query. The
// month parameter is omitted for whole-year queries.
func (c *Client) RequestURL(q core.Query) *url.URL {
	u := *c.endpoint
	v := u.Query()
	v.Set(ParamYear, strconv.Itoa(q.Year))
	if q.Month > 0 {
		v.Set(ParamMonth, strconv.Itoa(q.Month))
	} else {
		v.Del(ParamMonth)
	}
	v.Set(ParamLimit, strconv.Itoa(q.Limit))
	u.RawQuery = v.Encode()
	return &u
}

// PendingCallbacks returns the number of registered fallback callbacks.
func (c *Client) PendingCallbacks() int {
	return c.registry.Len()
}

// ScriptsInFlight returns the number of fallback scripts being loaded.
func (c *Client) ScriptsInFlight() int {
	return int(c.scripts.Load())
}
