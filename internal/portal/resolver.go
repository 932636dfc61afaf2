// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package portal implements the two services of the client portal: the
// Resolver turns a public slug into a branded view, and the Mutator applies
// admin changes to clients, their configuration and their blocks.
package portal

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"clientportal/internal/metrics"
	"clientportal/internal/models"
)

// View is the public snapshot of a client portal. It is built fresh on
// every resolution and shares no memory with the stores.
type View struct {
	Client models.Client          `json:"client"`
	Config models.EffectiveConfig `json:"config"`
	Blocks []models.Block         `json:"blocks"`
}

// AdminView is the editor's picture of a client: the stored config row as
// well as the effective one, and every block including drafts.
type AdminView struct {
	Client models.Client          `json:"client"`
	Stored *models.ClientConfig   `json:"stored_config"`
	Config models.EffectiveConfig `json:"config"`
	Blocks []models.Block         `json:"blocks"`
}

// Resolver answers read queries. It holds no state beyond its repositories
// and is safe for concurrent use.
type Resolver struct {
	clients ClientRepository
	configs ConfigRepository
	blocks  BlockRepository
}

// NewResolver creates a Resolver over the given repositories.
func NewResolver(clients ClientRepository, configs ConfigRepository, blocks BlockRepository) *Resolver {
	return &Resolver{clients: clients, configs: configs, blocks: blocks}
}

// ResolveBySlug returns the public view of the active client with the given
// slug: its effective config and its published blocks in display order.
// Unknown and inactive slugs both return ErrNotFound. Reading never creates
// a config row.
func (r *Resolver) ResolveBySlug(ctx context.Context, slug string) (*View, error) {
	v, err := r.resolveBySlug(ctx, slug)
	metrics.Resolutions.WithLabelValues(outcome(err)).Inc()
	return v, err
}

func (r *Resolver) resolveBySlug(ctx context.Context, slug string) (*View, error) {
	client, err := r.clients.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, storeError("resolve client", err)
	}
	if client == nil {
		return nil, ErrNotFound
	}

	cfg, err := r.configs.FindByClientID(ctx, client.ID)
	if err != nil {
		return nil, storeError("resolve config", err)
	}

	blocks, err := r.blocks.ListPublishedByClient(ctx, client.ID)
	if err != nil {
		return nil, storeError("resolve blocks", err)
	}

	return &View{
		Client: *client,
		Config: models.Effective(cfg),
		Blocks: snapshot(blocks),
	}, nil
}

// ResolveBlocksByClientID returns every block of a client, published or
// not, in display order. An unknown client yields an empty list.
func (r *Resolver) ResolveBlocksByClientID(ctx context.Context, clientID uuid.UUID) ([]models.Block, error) {
	blocks, err := r.blocks.ListByClient(ctx, clientID)
	if err != nil {
		return nil, storeError("list blocks", err)
	}
	return snapshot(blocks), nil
}

// ListClients returns all clients, newest first, active or not.
func (r *Resolver) ListClients(ctx context.Context) ([]models.Client, error) {
	clients, err := r.clients.List(ctx)
	if err != nil {
		return nil, storeError("list clients", err)
	}
	if clients == nil {
		return []models.Client{}, nil
	}
	return slices.Clone(clients), nil
}

// ResolveAdminView returns the editor view of a client regardless of its
// active flag.
func (r *Resolver) ResolveAdminView(ctx context.Context, clientID uuid.UUID) (*AdminView, error) {
	client, err := r.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, storeError("find client", err)
	}
	if client == nil {
		return nil, ErrNotFound
	}

	cfg, err := r.configs.FindByClientID(ctx, client.ID)
	if err != nil {
		return nil, storeError("find config", err)
	}

	blocks, err := r.blocks.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, storeError("list blocks", err)
	}

	return &AdminView{
		Client: *client,
		Stored: cfg,
		Config: models.Effective(cfg),
		Blocks: snapshot(blocks),
	}, nil
}

// snapshot copies blocks so callers can never alias repository memory.
// A nil input becomes an empty slice.
func snapshot(blocks []models.Block) []models.Block {
	out := make([]models.Block, len(blocks))
	copy(out, blocks)
	return out
}
