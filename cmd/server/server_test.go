package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Simplici0/money-model/internal/metrics"
	"github.com/Simplici0/money-model/internal/presets"
	"github.com/Simplici0/money-model/internal/seed"
	"github.com/Simplici0/money-model/internal/store"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	database, err := store.Open(filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := store.Migrate(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	catalog, err := presets.Load()
	if err != nil {
		t.Fatalf("load presets: %v", err)
	}

	if _, err := seed.Run(context.Background(), database, seed.Config{
		AdminEmail:    testAdminEmail,
		AdminPassword: testAdminPassword,
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	return &server{
		auth:      newAuthService(database, "test-secret"),
		db:        database,
		scenarios: store.NewScenarios(database),
		catalog:   catalog,
		metrics:   metrics.New(),
		log:       zap.NewNop(),
	}
}

// do sends a request through the full router, signed in unless anonymous.
func do(t *testing.T, srv *server, method, target string, form url.Values, anonymous bool) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if !anonymous {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: srv.auth.createSessionValue(testAdminEmail)})
	}

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	return rr
}

func TestHealthzIsPublic(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/healthz", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
	if rr.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected %s header to be set", requestIDHeader)
	}
}

func TestMetricsEndpointExposesEngineCounters(t *testing.T) {
	srv := newTestServer(t)

	body := `{"inputs":{"adSpend":100,"attractionOfferRevenue":300}}`
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body))
	srv.routes().ServeHTTP(httptest.NewRecorder(), req)

	rr := do(t, srv, http.MethodGet, "/metrics", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	for _, expected := range []string{"moneymodel_calculations_total 1", `route="/api/calculate"`} {
		if !strings.Contains(rr.Body.String(), expected) {
			t.Fatalf("expected metrics to contain %q, got: %s", expected, rr.Body.String())
		}
	}
}

func TestStaticAssetsAreServed(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/static/app.css", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("expected text/css content type, got %q", rr.Header().Get("Content-Type"))
	}
}
