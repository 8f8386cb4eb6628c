package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"painel/internal/aggregate"
	"painel/internal/core"
	"painel/internal/sheets/memory"
)

var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	mu      sync.Mutex
	queries []core.Query
	d       core.Dashboard
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context, q core.Query) (core.Dashboard, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.d, f.err
}

func (f *fakeFetcher) last(t *testing.T) core.Query {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		t.Fatalf("fetcher was not called")
	}
	return f.queries[len(f.queries)-1]
}

func samplePayload() core.Dashboard {
	return core.Dashboard{
		KPIs: core.KPIs{core.KPIIncome: "R$ 5.000,00", core.KPIOutcome: "R$ 1.234,56"},
		Series: core.Series{
			Months:  []string{"Jan", "Fev", "Mar"},
			Income:  []decimal.Decimal{decimal.NewFromInt(5000), decimal.Zero, decimal.NewFromInt(5000)},
			Outcome: []decimal.Decimal{decimal.NewFromInt(1000), decimal.NewFromInt(800), decimal.RequireFromString("1234.56")},
		},
		Pie: core.Pie{
			Labels: []string{"Casa", "Mercado"},
			Values: []decimal.Decimal{decimal.NewFromInt(900), decimal.RequireFromString("334.56")},
			Total:  decimal.RequireFromString("1234.56"),
		},
		Tx: []core.TxRow{{Name: "Aluguel", Date: "05/03/2026", AmountFmt: "R$ 900,00", Status: core.StatusSucceeded}},
	}
}

func newTestServer(t *testing.T, f Fetcher, agg Aggregator) *Server {
	t.Helper()
	srv, err := NewServer(Options{
		Addr:               ":0",
		Fetcher:            f,
		Aggregator:         agg,
		RateLimitPerMinute: 1000,
		Now:                func() time.Time { return testNow },
		Checks: map[string]Check{
			"source": func(context.Context) error { return nil },
		},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(srv *Server, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestNewServerRequiresFetcher(t *testing.T) {
	if _, err := NewServer(Options{}); err == nil {
		t.Fatalf("expected error without fetcher")
	}
}

func TestIndexRendersDashboard(t *testing.T) {
	f := &fakeFetcher{d: samplePayload()}
	srv := newTestServer(t, f, nil)

	rr := do(srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"R$ 5.000,00", "Aluguel", "conic-gradient", `id="kpi-outcome"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if got := f.last(t); got != (core.Query{Year: 2026, Month: 3, Limit: core.DefaultLimit}) {
		t.Fatalf("default query = %+v", got)
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Errorf("missing CSP header")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("missing request ID header")
	}
}

func TestIndexQueryParams(t *testing.T) {
	f := &fakeFetcher{d: samplePayload()}
	srv := newTestServer(t, f, nil)

	if rr := do(srv, "/?ano=2025&mes=0&limit=10"); rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := f.last(t); got != (core.Query{Year: 2025, Month: 0, Limit: 10}) {
		t.Fatalf("query = %+v", got)
	}
}

func TestIndexFetchErrorShowsBanner(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{err: errors.New("boom")}, nil)

	rr := do(srv, "/")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "banner--error") {
		t.Fatalf("error banner not rendered")
	}
	if strings.Contains(body, "boom") {
		t.Fatalf("upstream error leaked to the page")
	}
}

func TestIndexInvalidQuery(t *testing.T) {
	f := &fakeFetcher{d: samplePayload()}
	srv := newTestServer(t, f, nil)

	rr := do(srv, "/?mes=13")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rr.Code)
	}
	if len(f.queries) != 0 {
		t.Fatalf("fetcher called for an invalid query")
	}
}

func TestAPIDashboard(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{d: samplePayload()}, nil)

	rr := do(srv, "/api/dashboard?ano=2026&mes=3")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
	var got map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"kpis", "series", "pie", "tx"} {
		if _, ok := got[key]; !ok {
			t.Errorf("payload missing %q", key)
		}
	}
	if !strings.Contains(rr.Body.String(), `"total":1234.56`) {
		t.Errorf("numbers should be JSON numbers: %s", rr.Body.String())
	}
}

func TestAPIDashboardWritesPayloadAsReceived(t *testing.T) {
	body := `{"kpis":{"count":3},"series":{},"pie":{},"tx":[],"generatedAt":"2026-03-10"}`
	var d core.Dashboard
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	srv := newTestServer(t, &fakeFetcher{d: d}, nil)

	rr := do(srv, "/api/dashboard")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Body.String() != body {
		t.Errorf("body = %s, want %s", rr.Body.String(), body)
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}
}

func TestAPIDashboardErrors(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{err: errors.New("down")}, nil)

	if rr := do(srv, "/api/dashboard?limit=abc"); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid limit status=%d", rr.Code)
	}
	rr := do(srv, "/api/dashboard")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("fetch error status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error"`) {
		t.Fatalf("error body = %s", rr.Body.String())
	}
}

func execServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New(
		core.Transaction{Date: core.NewDate(2026, 1, 5), Name: "Salário", Category: "Trabalho", Amount: core.Money{Cents: 500000}, Kind: core.Income, Status: core.StatusSucceeded},
		core.Transaction{Date: core.NewDate(2026, 3, 2), Name: "Mercado", Category: "Casa", Amount: core.Money{Cents: 25050}, Kind: core.Outcome, Status: core.StatusPending},
	)
	return newTestServer(t, &fakeFetcher{}, aggregate.NewService(store, nil))
}

func TestExecJSON(t *testing.T) {
	srv := execServer(t)

	rr := do(srv, "/exec?ano=2026")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var d core.Dashboard
	if err := json.Unmarshal(rr.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(d.Tx) != 2 {
		t.Fatalf("whole year should list both transactions, got %d", len(d.Tx))
	}
	if rr.Header().Get("Content-Security-Policy") != "" {
		t.Errorf("exec responses should not carry a CSP")
	}
}

func TestExecJSONP(t *testing.T) {
	srv := execServer(t)

	rr := do(srv, "/exec?ano=2026&mes=3&callback=painel_cb_01hx")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Fatalf("content type = %q", ct)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, "/**/painel_cb_01hx({") || !strings.HasSuffix(body, ");") {
		t.Fatalf("script = %s", body)
	}
}

func TestExecRejectsBadCallback(t *testing.T) {
	srv := execServer(t)
	for _, cb := range []string{"alert(1)", "1abc", "a-b"} {
		rr := do(srv, "/exec?callback="+cb)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("callback %q status=%d", cb, rr.Code)
		}
	}
}

func TestExecDisabledWithoutAggregator(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, nil)
	if rr := do(srv, "/exec"); rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestHealthReadyAndMetrics(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{d: samplePayload()}, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := do(srv, path); rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	do(srv, "/api/dashboard")
	rr := do(srv, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "painel_http_request_duration_seconds") {
		t.Fatalf("metrics missing request histogram")
	}
}

func TestReadyReportsFailedCheck(t *testing.T) {
	srv, err := NewServer(Options{
		Fetcher: &fakeFetcher{},
		Checks: map[string]Check{
			"sqlite": func(context.Context) error { return errors.New("locked") },
			"sheets": func(context.Context) error { return nil },
		},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer srv.Shutdown(context.Background())

	rr := do(srv, "/readyz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "failed: locked") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, nil)

	rr := do(srv, "/static/dashboard.css")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if cc := rr.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=3600") {
		t.Fatalf("cache-control = %q", cc)
	}
}

func TestRateLimit(t *testing.T) {
	srv, err := NewServer(Options{Fetcher: &fakeFetcher{d: samplePayload()}, RateLimitPerMinute: 2})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer srv.Shutdown(context.Background())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(srv, "/api/dashboard").Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
	if rr := do(srv, "/healthz"); rr.Code != http.StatusOK {
		t.Fatalf("health checks are not rate limited, got %d", rr.Code)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, nil)
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("first shutdown: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}
