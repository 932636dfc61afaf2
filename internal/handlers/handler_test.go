// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// The portal service runs over in-memory repositories, so these tests need
// neither PostgreSQL nor Valkey.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clientportal/internal/middleware"
	"clientportal/internal/models"
	"clientportal/internal/portal"
	"clientportal/internal/portal/portaltest"
	"clientportal/internal/session"
)

// memViews is a map-backed ViewStore with per-slug generations, like the
// Valkey view cache.
type memViews struct {
	mu    sync.Mutex
	views map[string][]byte
	gens  map[string]int64
	sets  int
}

func newMemViews() *memViews {
	return &memViews{views: make(map[string][]byte), gens: make(map[string]int64)}
}

func (m *memViews) Get(_ context.Context, slug string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.views[slug]
	return v, ok
}

func (m *memViews) Generation(_ context.Context, slug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[slug], nil
}

func (m *memViews) SetIfCurrent(_ context.Context, slug string, gen int64, view []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[slug] != gen {
		return false
	}
	m.views[slug] = view
	m.sets++
	return true
}

func (m *memViews) Invalidate(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[slug]++
	delete(m.views, slug)
	return nil
}

func (m *memViews) has(slug string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.views[slug]
	return ok
}

// fakeLogos records uploads instead of talking to S3.
type fakeLogos struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	deleted  []string
	failWith error
}

func newFakeLogos() *fakeLogos {
	return &fakeLogos{uploads: make(map[string][]byte)}
}

func (f *fakeLogos) UploadLogo(_ context.Context, clientID uuid.UUID, contentType string, body io.Reader, size int64) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://cdn.test/logos/" + clientID.String() + "/" + uuid.NewString()
	f.uploads[url] = data
	return url, nil
}

func (f *fakeLogos) DeleteByURL(_ context.Context, rawURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, rawURL)
	delete(f.uploads, rawURL)
	return nil
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Mem    *portaltest.Memory
	Views  *memViews
	Logos  *fakeLogos
	Res    *portal.Resolver
	Mut    *portal.Mutator
	Admin  *Admin
	Public *Public
}

// newTestEnv wires the portal service over fresh in-memory repositories.
// Mutations invalidate through the public handler, which owns the view cache.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := portaltest.NewMemory()
	clients, configs, blocks := mem.Repos()
	views := newMemViews()
	logos := newFakeLogos()

	res := portal.NewResolver(clients, configs, blocks)
	public := NewPublic(res, views)
	mut := portal.NewMutator(clients, configs, blocks, portal.WithInvalidator(public))

	return &testEnv{
		Mem:    mem,
		Views:  views,
		Logos:  logos,
		Res:    res,
		Mut:    mut,
		Admin:  NewAdmin(res, mut, logos),
		Public: public,
	}
}

// mustClient creates a client through the service.
func (e *testEnv) mustClient(t *testing.T, name string) *models.Client {
	t.Helper()
	c, err := e.Mut.CreateClient(context.Background(), name, "owner@example.com")
	if err != nil {
		t.Fatalf("CreateClient(%q): %v", name, err)
	}
	return c
}

// mustBlock appends a block through the service.
func (e *testEnv) mustBlock(t *testing.T, clientID uuid.UUID, title string, published bool) *models.Block {
	t.Helper()
	b, err := e.Mut.AppendBlock(context.Background(), models.NewBlock{
		ClientID:    clientID,
		Type:        models.BlockText,
		Title:       title,
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("AppendBlock(%q): %v", title, err)
	}
	return b
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// jsonRequest builds a request with an optional JSON body and id param.
func jsonRequest(t *testing.T, method, target string, body any, id string) *http.Request {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	if id != "" {
		req = withChiURLParam(req, "id", id)
	}
	return req
}

// serve runs h and returns the recorder.
func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// decode unmarshals a recorder body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func ptr[T any](v T) *T { return &v }
