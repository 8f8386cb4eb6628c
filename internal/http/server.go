package http

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"painel/internal/core"
	applog "painel/internal/log"
	"painel/internal/middleware/ratelimit"
	"painel/internal/middleware/security"
	"painel/internal/middleware/trace"
	"painel/internal/render"
	appweb "painel/web"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"

	staticMaxAge = 3600
	readyTimeout = 5 * time.Second
)

// Fetcher loads a dashboard payload from the upstream endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, q core.Query) (core.Dashboard, error)
}

// Aggregator builds a dashboard payload from a transaction source.
type Aggregator interface {
	Dashboard(ctx context.Context, q core.Query) (core.Dashboard, error)
}

// Check is one readiness probe. A nil error means ready.
type Check func(ctx context.Context) error

type Options struct {
	Addr    string
	Fetcher Fetcher
	// Aggregator enables /exec when set.
	Aggregator Aggregator
	Renderer   render.Renderer
	Logger     *applog.Logger
	// Registry is both where the server's collectors register and what
	// /metrics serves. Nil creates a private registry.
	Registry           *prometheus.Registry
	RateLimitPerMinute int
	DefaultLimit       int
	Checks             map[string]Check
	TrustedProxies     []string
	Now                func() time.Time
}

type Server struct {
	http.Server

	fetcher      Fetcher
	aggregator   Aggregator
	renderer     render.Renderer
	logger       *applog.Logger
	limiter      *ratelimit.Limiter
	checks       map[string]Check
	defaultLimit int
	now          func() time.Time
	started      time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Shutdown releases the rate limiter along with the listener.
func NewServer(o Options) (*Server, error) {
	if o.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if o.Logger == nil {
		o.Logger = applog.Discard()
	}
	if o.Registry == nil {
		o.Registry = prometheus.NewRegistry()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = core.DefaultLimit
	}
	if o.Renderer == nil {
		h, err := render.NewHTML()
		if err != nil {
			return nil, err
		}
		o.Renderer = h
	}

	detector := security.NewDetector()
	for _, cidr := range o.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		fetcher:      o.Fetcher,
		aggregator:   o.Aggregator,
		renderer:     o.Renderer,
		logger:       o.Logger.WithComponent(applog.ComponentHTTP),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: o.RateLimitPerMinute}),
		checks:       o.Checks,
		defaultLimit: o.DefaultLimit,
		now:          o.Now,
		started:      o.Now(),
	}

	mux := http.NewServeMux()

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		s.limiter.Stop()
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))

	limited := s.limiter.Middleware(detector.ClientIP, s.onRateLimit)
	mux.Handle("GET /{$}", limited(http.HandlerFunc(s.handleIndex)))
	mux.Handle("GET /api/dashboard", limited(http.HandlerFunc(s.handleAPIDashboard)))
	if s.aggregator != nil {
		mux.Handle("GET /exec", limited(http.HandlerFunc(s.handleExec)))
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{}))

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = trace.NewMiddleware(o.Logger.WithComponent(applog.ComponentHTTP), detector.ClientIP, o.Registry).Middleware(handler)

	s.Server = http.Server{
		Addr:              o.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Covers the primary and fallback fetch of a page render.
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded")
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
