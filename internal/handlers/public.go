// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"clientportal/internal/markdown"
	"clientportal/internal/metrics"
	"clientportal/internal/models"
	"clientportal/internal/portal"
)

// ViewStore caches encoded portal views by slug. Invalidate bumps the
// slug's generation, and SetIfCurrent refuses a view resolved under an
// older one. *cache.ViewCache satisfies it.
type ViewStore interface {
	Get(ctx context.Context, slug string) ([]byte, bool)
	Generation(ctx context.Context, slug string) (int64, error)
	SetIfCurrent(ctx context.Context, slug string, gen int64, view []byte) bool
	Invalidate(ctx context.Context, slug string) error
}

// Public groups handlers for the client-facing portal API. It checks the
// Valkey view cache before resolving, and concurrent misses for one slug
// share a single resolution. Public is also the portal.Invalidator for
// mutations, so a changed slug never reuses a resolution already running.
type Public struct {
	resolver *portal.Resolver
	views    ViewStore
	inflight singleflight.Group
}

// NewPublic creates a new Public handler group. views may be nil to
// disable caching.
func NewPublic(resolver *portal.Resolver, views ViewStore) *Public {
	return &Public{resolver: resolver, views: views}
}

// portalClient is the public part of a client record. The email address
// stays private.
type portalClient struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	Initial string    `json:"initial"`
}

type portalConfig struct {
	models.EffectiveConfig
	IsDark       bool `json:"is_dark"`
	UsesInitials bool `json:"uses_initials"`
}

type portalBlock struct {
	ID           uuid.UUID          `json:"id"`
	Type         models.BlockType   `json:"type"`
	Label        string             `json:"label"`
	Category     string             `json:"category"`
	Title        string             `json:"title"`
	Content      string             `json:"content"`
	ContentHTML  string             `json:"content_html"`
	Order        int                `json:"order"`
	Config       models.BlockConfig `json:"config"`
	Presentation Presentation       `json:"presentation"`
}

type portalResponse struct {
	Client portalClient  `json:"client"`
	Config portalConfig  `json:"config"`
	Blocks []portalBlock `json:"blocks"`
}

// Portal serves the resolved view of an active client by slug.
func (p *Public) Portal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := strings.ToLower(chi.URLParam(r, "slug"))

	if p.views != nil {
		if cached, ok := p.views.Get(ctx, slug); ok {
			metrics.ViewCache.WithLabelValues("hit").Inc()
			writeRaw(w, cached)
			return
		}
		metrics.ViewCache.WithLabelValues("miss").Inc()
	}

	body, err, _ := p.inflight.Do(slug, func() (any, error) {
		// The result is shared by every waiter, so it must outlive the caller.
		shared := context.WithoutCancel(ctx)
		gen, cacheable := p.generation(shared, slug)
		view, err := p.resolver.ResolveBySlug(shared, slug)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(buildPortalResponse(view))
		if err != nil {
			return nil, err
		}
		if cacheable {
			p.views.SetIfCurrent(shared, slug, gen, encoded)
		}
		return encoded, nil
	})
	if err != nil {
		if errors.Is(err, portal.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		slog.Error("resolve portal failed", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeRaw(w, body.([]byte))
}

// Invalidate drops the cached view of slug and detaches any resolution of
// it still in flight, so requests arriving afterwards resolve afresh.
func (p *Public) Invalidate(ctx context.Context, slug string) error {
	defer p.inflight.Forget(slug)
	if p.views == nil {
		return nil
	}
	return p.views.Invalidate(ctx, slug)
}

// generation reads the cache generation of slug before it is resolved. A
// view is cached only when the generation could be read.
func (p *Public) generation(ctx context.Context, slug string) (int64, bool) {
	if p.views == nil {
		return 0, false
	}
	gen, err := p.views.Generation(ctx, slug)
	if err != nil {
		slog.Warn("view generation read failed", "slug", slug, "error", err)
		return 0, false
	}
	return gen, true
}

// BlockTypes serves the catalog of block types with their presentation.
func (p *Public) BlockTypes(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		models.BlockTypeInfo
		Presentation Presentation `json:"presentation"`
	}
	out := make([]entry, 0, len(models.BlockTypes))
	for _, info := range models.BlockTypes {
		out = append(out, entry{BlockTypeInfo: info, Presentation: presentationFor(info.Type)})
	}
	writeJSON(w, http.StatusOK, out)
}

func buildPortalResponse(v *portal.View) portalResponse {
	resp := portalResponse{
		Client: portalClient{
			ID:      v.Client.ID,
			Name:    v.Client.Name,
			Slug:    v.Client.Slug,
			Initial: v.Client.Initial(),
		},
		Config: portalConfig{
			EffectiveConfig: v.Config,
			IsDark:          v.Config.IsDark(),
			UsesInitials:    v.Config.UsesInitials(),
		},
		Blocks: make([]portalBlock, 0, len(v.Blocks)),
	}
	for i := range v.Blocks {
		b := &v.Blocks[i]
		info, _ := b.Type.Info()
		html, err := markdown.ToHTML(b.Content)
		if err != nil {
			slog.Warn("render block content failed", "block", b.ID, "error", err)
		}
		resp.Blocks = append(resp.Blocks, portalBlock{
			ID:           b.ID,
			Type:         b.Type,
			Label:        info.Label,
			Category:     info.Category,
			Title:        b.Title,
			Content:      b.Content,
			ContentHTML:  html,
			Order:        b.Order,
			Config:       b.Settings(),
			Presentation: presentationFor(b.Type),
		})
	}
	return resp
}

// writeRaw writes an already-encoded JSON body.
func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
