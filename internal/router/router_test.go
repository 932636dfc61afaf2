// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"clientportal/internal/handlers"
	"clientportal/internal/middleware"
	"clientportal/internal/portal"
	"clientportal/internal/portal/portaltest"
	"clientportal/internal/session"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

// testRouter wires the full route tree over in-memory repositories. The
// Valkey client is never dialed: requests without a session cookie do not
// reach it.
func testRouter(t *testing.T, limiter *middleware.RateLimiter) (chi.Router, *portal.Mutator) {
	t.Helper()

	mem := portaltest.NewMemory()
	clients, configs, blocks := mem.Repos()
	res := portal.NewResolver(clients, configs, blocks)
	mut := portal.NewMutator(clients, configs, blocks)

	vk := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { vk.Close() })
	sessions := session.NewStore(vk, false)

	r := New(sessions,
		handlers.NewAdmin(res, mut, nil),
		handlers.NewAuth(sessions, nil),
		handlers.NewPublic(res, nil),
		Options{LoginLimiter: limiter},
	)
	return r, mut
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Public(t *testing.T) {
	r, mut := testRouter(t, nil)
	c, err := mut.CreateClient(context.Background(), "Routed", "r@example.com")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/health", http.StatusOK, `"ok"`},
		{"/api/block-types", http.StatusOK, `"custom_link"`},
		{"/api/portal/" + c.Slug, http.StatusOK, `"` + c.Slug + `"`},
		{"/api/portal/missing", http.StatusNotFound, `"not found"`},
		{"/metrics", http.StatusOK, "go_goroutines"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(r, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %s", tt.want)
			}
		})
	}
}

func TestRoutes_SecureHeaders(t *testing.T) {
	r, _ := testRouter(t, nil)

	rec := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options: got %q", got)
	}
}

func TestRoutes_AdminRequiresSession(t *testing.T) {
	r, _ := testRouter(t, nil)

	paths := []string{"/admin/clients", "/admin/2fa/setup"}
	for _, p := range paths {
		rec := do(r, httptest.NewRequest(http.MethodGet, p, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s: got %d, want 401", p, rec.Code)
		}
	}
}

func TestRoutes_AdminRequiresCSRF(t *testing.T) {
	r, _ := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/clients", strings.NewReader(`{}`))
	rec := do(r, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("POST without token: got %d, want 403", rec.Code)
	}
}

// csrfRequest builds a POST that passes the double-submit check.
func csrfRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: "tok"})
	req.Header.Set(middleware.CSRFHeaderName, "tok")
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRoutes_LoginRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)
	r, _ := testRouter(t, limiter)

	// The body is malformed so the handler never looks up a user.
	first := do(r, csrfRequest("/admin/login", `{`))
	if first.Code != http.StatusBadRequest {
		t.Fatalf("first login: got %d, want 400", first.Code)
	}
	second := do(r, csrfRequest("/admin/login", `{`))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second login: got %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestRoutes_UnknownRoute(t *testing.T) {
	r, _ := testRouter(t, nil)
	rec := do(r, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}
