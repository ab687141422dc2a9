package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultSecurityConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultSecurityConfig()
	if !cfg.EnableCORS {
		t.Error("CORS should be enabled so dashboards can scrape /status")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
	for _, m := range cfg.AllowedMethods {
		if m != http.MethodGet && m != http.MethodOptions {
			t.Errorf("unexpected allowed method %s on a read-only server", m)
		}
	}
}

func TestSecurityMiddleware_HardeningHeaders(t *testing.T) {
	t.Parallel()
	s := newTestServer(WithStatus(func() Status { return Status{Role: "coordinator"} }))

	for _, path := range []string{"/metrics", "/healthz", "/status"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		for header, want := range map[string]string{
			"X-Content-Type-Options":  "nosniff",
			"X-Frame-Options":         "DENY",
			"Referrer-Policy":         "strict-origin-when-cross-origin",
			"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		} {
			if got := rec.Header().Get(header); got != want {
				t.Errorf("%s: %s = %q, want %q", path, header, got, want)
			}
		}
	}
}

func TestSecurityMiddleware_CORS(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		cfg        SecurityConfig
		origin     string
		wantOrigin string
	}{
		{"wildcard", DefaultSecurityConfig(), "http://grafana.local", "*"},
		{"listed origin", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a", "http://b"}}, "http://b", "http://b"},
		{"unlisted origin", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a"}}, "http://evil", ""},
		{"no origin header", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a"}}, "", ""},
		{"disabled", SecurityConfig{AllowedOrigins: []string{"*"}}, "http://a", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := SecurityMiddleware(tt.cfg, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/status", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestSecurityMiddleware_Preflight(t *testing.T) {
	t.Parallel()
	called := false
	handler := SecurityMiddleware(DefaultSecurityConfig(), func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})
	req := httptest.NewRequest(http.MethodOptions, "/metrics", http.NoBody)
	req.Header.Set("Origin", "http://a")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if called {
		t.Error("preflight must not reach the route handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
}
