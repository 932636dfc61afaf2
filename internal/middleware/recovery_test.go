// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
)

// recordingTransport keeps Sentry events in memory.
type recordingTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *recordingTransport) Configure(sentry.ClientOptions) {}
func (t *recordingTransport) Flush(time.Duration) bool { return true }
func (t *recordingTransport) FlushWithContext(context.Context) bool { return true }
func (t *recordingTransport) Close() {}
func (t *recordingTransport) SendEvent(e *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

func (t *recordingTransport) captured() []*sentry.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*sentry.Event(nil), t.events...)
}

// withTestHub attaches a hub reporting into transport to the request.
func withTestHub(t *testing.T, r *http.Request, transport *recordingTransport) *http.Request {
	t.Helper()
	client, err := sentry.NewClient(sentry.ClientOptions{Transport: transport})
	if err != nil {
		t.Fatalf("sentry.NewClient: %v", err)
	}
	hub := sentry.NewHub(client, sentry.NewScope())
	return r.WithContext(sentry.SetHubOnContext(r.Context(), hub))
}

func TestRecovererReportsPanic(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "something went wrong", "panic: something went wrong"},
		{"integer", 42, "panic: 42"},
		{"error", context.DeadlineExceeded, "panic: context deadline exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &recordingTransport{}
			handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			}))

			req := httptest.NewRequest(http.MethodPatch, "/admin/blocks/42", nil)
			req = withTestHub(t, req, transport)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusInternalServerError {
				t.Errorf("status: got %d, want 500", rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Content-Type: got %q", ct)
			}
			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("body %q: %v", rr.Body.String(), err)
			}
			if body["error"] != "Internal Server Error" {
				t.Errorf("error: got %q", body["error"])
			}

			events := transport.captured()
			if len(events) != 1 {
				t.Fatalf("sentry events: got %d, want 1", len(events))
			}
			ev := events[0]
			if len(ev.Exception) == 0 || ev.Exception[len(ev.Exception)-1].Value != tt.want {
				t.Errorf("exception: got %+v, want value %q", ev.Exception, tt.want)
			}
			if ev.Request == nil || ev.Request.Method != http.MethodPatch {
				t.Errorf("request: got %+v", ev.Request)
			}
		})
	}
}

func TestRecovererPassThrough(t *testing.T) {
	transport := &recordingTransport{}
	handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "test-value")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"1"}`))
	}))

	req := withTestHub(t, httptest.NewRequest(http.MethodPost, "/admin/clients", nil), transport)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rr.Code)
	}
	if got := rr.Header().Get("X-Custom"); got != "test-value" {
		t.Errorf("X-Custom: got %q", got)
	}
	if rr.Body.String() != `{"id":"1"}` {
		t.Errorf("body: got %q", rr.Body.String())
	}
	if n := len(transport.captured()); n != 0 {
		t.Errorf("sentry events without a panic: got %d", n)
	}
}

func TestRecovererWithoutSentry(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("no hub attached")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/portal/x", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
}
