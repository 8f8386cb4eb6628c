package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"painel/internal/aggregate"
	"painel/internal/core"
	"painel/internal/fetch"
	applog "painel/internal/log"
	"painel/internal/render"
)

var errUpstream = errors.New("o serviço de dados não respondeu")

// handleIndex renders the dashboard page for the requested period.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	now := s.now()

	q, err := ParseQuery(r.URL.Query(), now, CurrentMonth, s.defaultLimit)
	if err != nil {
		sel := core.Query{Year: now.Year(), Month: int(now.Month())}
		s.writePage(w, r, http.StatusBadRequest, render.ErrorView(err, sel, now))
		return
	}

	d, err := s.fetcher.Fetch(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.ErrorContext(ctx, "Dashboard fetch failed",
			applog.NewFields().WithPeriod(q.Year, q.Month, q.Limit).WithError(err).ToSlice()...)
		s.writePage(w, r, http.StatusBadGateway, render.ErrorView(errUpstream, q, now))
		return
	}

	s.writePage(w, r, http.StatusOK, render.Build(d, q, now))
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, v render.View) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template render failed", applog.FieldError, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	NewResponse().Status(status).Body(contentTypeHTML, buf.Bytes()).Write(w)
}

// handleAPIDashboard returns the fetched payload as JSON, byte for byte
// when the fetcher kept the endpoint's response.
func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := ParseQuery(r.URL.Query(), s.now(), CurrentMonth, s.defaultLimit)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	d, err := s.fetcher.Fetch(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		applog.FromContext(ctx).ErrorContext(ctx, "Dashboard fetch failed",
			applog.NewFields().WithPeriod(q.Year, q.Month, q.Limit).WithError(err).ToSlice()...)
		BadGatewayError("dashboard endpoint unavailable").Write(w)
		return
	}

	resp := NewResponse().Header("Cache-Control", "no-store")
	if len(d.Raw) > 0 {
		resp.Body(contentTypeJSON, d.Raw)
	} else {
		resp.JSON(d)
	}
	resp.Write(w)
}

// handleExec serves the aggregated payload the way the upstream endpoint
// does: JSON, or a JSONP script when callback is given.
func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	callback := query.Get(fetch.ParamCallback)
	if callback != "" && !aggregate.ValidCallback(callback) {
		BadRequestError(aggregate.ErrInvalidCallback.Error()).Write(w)
		return
	}

	q, err := ParseQuery(query, s.now(), WholeYear, s.defaultLimit)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	d, err := s.aggregator.Dashboard(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		applog.FromContext(ctx).ErrorContext(ctx, "Aggregation failed",
			applog.NewFields().WithPeriod(q.Year, q.Month, q.Limit).WithError(err).ToSlice()...)
		BadGatewayError("transaction source unavailable").Write(w)
		return
	}

	var buf bytes.Buffer
	contentType, err := aggregate.Encode(&buf, d, callback)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Encode dashboard failed", applog.FieldError, err)
		InternalServerError("failed to encode response").Write(w)
		return
	}
	NewResponse().
		Header("Cache-Control", "no-store").
		Header("Cross-Origin-Resource-Policy", "cross-origin").
		Body(contentType, buf.Bytes()).
		Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady runs every registered readiness check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status, code := "ready", http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			s.logger.WarnContext(ctx, "Readiness check failed", "check", name, applog.FieldError, err)
			continue
		}
		checks[name] = "ok"
	}

	NewResponse().Status(code).JSON(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}
