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

	"courseforge/internal/content"
	"courseforge/internal/handlers"
	"courseforge/internal/i18n"
	"courseforge/internal/middleware"
	"courseforge/internal/plugins"
	"courseforge/internal/store"
)

func testRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()
	catalog, err := i18n.Load()
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	reg := plugins.NewStaticRegistry(plugins.Defaults()...)
	engine := content.New(store.NewMemory(), reg, catalog, nil, "en")
	return New(handlers.NewContent(engine), limiter)
}

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

func TestRoutesDispatch(t *testing.T) {
	h := testRouter(t, nil)

	// A full insertrecursive round trip through the router.
	body := strings.NewReader(`{"createdBy":"7f3e8a9c-0b1d-4e2f-8a3b-5c6d7e8f9a0b"}`)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/content/insertrecursive", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("insertrecursive: got %d, want 201 (%s)", w.Code, w.Body.String())
	}

	var course map[string]any
	if err := json.NewDecoder(w.Body).Decode(&course); err != nil {
		t.Fatalf("decode course: %v", err)
	}
	id, _ := course["_id"].(string)
	if id == "" {
		t.Fatal("expected the created course in the response")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/content/"+id+"/descendants", nil))
	if w.Code != http.StatusOK {
		t.Errorf("descendants: got %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/content/"+id, nil))
	if w.Code != http.StatusOK {
		t.Errorf("delete: got %d, want 200", w.Code)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	h := testRouter(t, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", w.Code)
	}
}

func TestAPIRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	h := testRouter(t, limiter)

	req := func() *http.Request {
		r := httptest.NewRequest("GET", "/api/content/3f0e8a9c-0b1d-4e2f-8a3b-5c6d7e8f9a0b/descendants", nil)
		r.RemoteAddr = "10.1.2.3:4444"
		return r
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req())
	if w.Code == http.StatusTooManyRequests {
		t.Fatal("first request must pass the limiter")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req())
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("got %d, want 429", w.Code)
	}

	// Health stays reachable regardless.
	w = httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)
	r.RemoteAddr = "10.1.2.3:4444"
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("health: got %d, want 200", w.Code)
	}
}
