package main

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestSessionValueRoundTrip(t *testing.T) {
	auth := newAuthService(nil, "secret")

	value := auth.createSessionValue("owner@example.com")
	email, ok := auth.verifySessionValue(value)
	if !ok || email != "owner@example.com" {
		t.Fatalf("expected valid session for owner@example.com, got %q ok=%v", email, ok)
	}

	other := newAuthService(nil, "another-secret")
	if _, ok := other.verifySessionValue(value); ok {
		t.Fatalf("expected session signed with a different secret to be rejected")
	}

	payload, _, _ := strings.Cut(value, ".")
	for _, tampered := range []string{"", payload, payload + ".zz", value + ".extra", "bm9ib2R5." + strings.Repeat("0", 64)} {
		if _, ok := auth.verifySessionValue(tampered); ok {
			t.Fatalf("expected %q to be rejected", tampered)
		}
	}
}

func TestPublicPath(t *testing.T) {
	cases := map[string]bool{
		"/login":          true,
		"/healthz":        true,
		"/metrics":        true,
		"/static/app.css": true,
		"/api/calculate":  true,
		"/":               false,
		"/scenarios":      false,
		"/scenarios/1":    false,
		"/staticfile":     false,
	}
	for path, want := range cases {
		if got := publicPath(path); got != want {
			t.Fatalf("publicPath(%q)=%v, want %v", path, got, want)
		}
	}
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/scenarios", nil, true)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestLoginSubmit(t *testing.T) {
	srv := newTestServer(t)

	bad := do(t, srv, http.MethodPost, "/login", url.Values{
		"email":    {testAdminEmail},
		"password": {"wrong"},
	}, true)
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for wrong password, got %d", bad.Code)
	}
	if !strings.Contains(bad.Body.String(), "Invalid credentials") {
		t.Fatalf("expected error message in body, got: %s", bad.Body.String())
	}

	good := do(t, srv, http.MethodPost, "/login", url.Values{
		"email":    {testAdminEmail},
		"password": {testAdminPassword},
	}, true)
	if good.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", good.Code)
	}

	var session *http.Cookie
	for _, c := range good.Result().Cookies() {
		if c.Name == sessionCookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatalf("expected %s cookie to be set", sessionCookieName)
	}
	if email, ok := srv.auth.verifySessionValue(session.Value); !ok || email != testAdminEmail {
		t.Fatalf("unexpected session cookie %q", session.Value)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/logout", nil, false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected session cookie to be cleared, got %+v", cookies)
	}
}
