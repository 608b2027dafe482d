// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront/internal/handlers"
	"storefront/internal/i18n"
	"storefront/internal/middleware"
	"storefront/internal/session"
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

func TestHealthHandlerMethods(t *testing.T) {
	// Health endpoint only accepts GET.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health: got %d, want 200", w.Code)
	}
}

// testRouter builds the full route table with empty handler groups. Only
// routes rejected by middleware before a handler runs are safe to hit.
func testRouter(t *testing.T) http.Handler {
	t.Helper()
	orders := middleware.NewNamedRateLimiter("order", 5, time.Minute)
	logins := middleware.NewNamedRateLimiter("login", 10, time.Minute)
	t.Cleanup(orders.Stop)
	t.Cleanup(logins.Stop)

	return New(Options{
		Sessions:      session.NewStore(nil, false),
		Admin:         &handlers.Admin{},
		Auth:          &handlers.Auth{},
		Public:        &handlers.Public{},
		API:           &handlers.API{},
		OrderLimiter:  orders,
		LoginLimiter:  logins,
		DefaultLocale: i18n.SK,
	})
}

func TestRouterHealth(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing on /health")
	}
}

func TestRouterAPIRejectsAnonymous(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/api/categories/picker"},
		{"POST", "/api/categories"},
		{"PUT", "/api/categories/3"},
		{"DELETE", "/api/categories/3"},
		{"PUT", "/api/categories/3/products"},
		{"GET", "/api/products"},
		{"DELETE", "/api/products/7/images/2"},
		{"GET", "/api/orders"},
		{"PUT", "/api/orders/1/seen"},
		{"GET", "/api/posts"},
		{"POST", "/api/upload"},
	}

	h := testRouter(t)
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d, want 401", w.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != "Unauthorized" {
				t.Errorf("error: got %q, want Unauthorized", body["error"])
			}
		})
	}
}

func TestRouterAdminRedirectsToLogin(t *testing.T) {
	h := testRouter(t)
	for _, path := range []string{"/admin", "/admin/2fa", "/admin/categories", "/admin/posts", "/admin/orders"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

		if w.Code != http.StatusSeeOther {
			t.Errorf("%s: got %d, want 303", path, w.Code)
			continue
		}
		if loc := w.Header().Get("Location"); loc != "/admin/login" {
			t.Errorf("%s: redirect to %q, want /admin/login", path, loc)
		}
	}
}

func TestRouterStaticFiles(t *testing.T) {
	h := testRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/static/css/site.css", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("site.css: got %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("site.css content-type: got %q", ct)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/static/../go.mod", nil))
	if w.Code == http.StatusOK {
		t.Error("static handler must not escape the embedded directory")
	}
}

func TestRouterUploadsDisabledWithoutLocalStorage(t *testing.T) {
	h := New(Options{
		Sessions: session.NewStore(nil, false),
		Public:   &handlers.Public{},
		API:      &handlers.API{},
		Uploads:  nil,
	})
	routes, ok := h.(chi.Routes)
	if !ok {
		t.Fatal("router does not expose chi.Routes")
	}
	ctx := chi.NewRouteContext()
	if routes.Match(ctx, "GET", "/uploads/products/a.jpg") {
		t.Error("/uploads/* should not be routed when files live in a bucket")
	}
}
