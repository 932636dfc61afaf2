// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"clientportal/internal/metrics"
	"clientportal/internal/models"
	"clientportal/internal/slug"
)

// Mutator applies admin changes. Every successful mutation notifies the
// Invalidator with the slug of the affected client. It is stateless apart
// from its dependencies and safe for concurrent use.
type Mutator struct {
	clients     ClientRepository
	configs     ConfigRepository
	blocks      BlockRepository
	invalidator Invalidator
	now         func() time.Time
}

// MutatorOption configures a Mutator.
type MutatorOption func(*Mutator)

// WithClock replaces time.Now as the source of slug suffixes.
func WithClock(now func() time.Time) MutatorOption {
	return func(m *Mutator) { m.now = now }
}

// WithInvalidator sets the cache to notify after mutations.
func WithInvalidator(inv Invalidator) MutatorOption {
	return func(m *Mutator) { m.invalidator = inv }
}

// NewMutator creates a Mutator over the given repositories.
func NewMutator(clients ClientRepository, configs ConfigRepository, blocks BlockRepository, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		clients: clients,
		configs: configs,
		blocks:  blocks,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateClient registers an active client with a slug derived from its
// name and a base-36 millisecond suffix, then writes its default config.
// If the config write fails the client still exists; it is returned
// together with a *PartialMutationError.
func (m *Mutator) CreateClient(ctx context.Context, name, email string) (c *models.Client, err error) {
	defer m.record("create_client", &err)

	in := newClientInput{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	c, err = m.clients.Create(ctx, in.Name, in.Email, slug.Generate(in.Name, m.now()))
	if err != nil {
		return nil, storeError("create client", err)
	}
	m.invalidate(ctx, c.Slug)

	if _, err := m.configs.Upsert(ctx, c.ID, models.DefaultConfigPatch()); err != nil {
		return c, &PartialMutationError{
			Op:        "create client",
			Completed: 1,
			Total:     2,
			Err:       storeError("create default config", err),
		}
	}
	return c, nil
}

// UpdateClient applies the set fields of patch and returns the updated
// client. The slug cannot be changed.
func (m *Mutator) UpdateClient(ctx context.Context, id uuid.UUID, patch models.ClientPatch) (c *models.Client, err error) {
	defer m.record("update_client", &err)

	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	c, err = m.findClient(ctx, id)
	if err != nil || patch.IsEmpty() {
		return c, err
	}

	if err := m.clients.Update(ctx, id, patch); err != nil {
		return nil, storeError("update client", err)
	}
	m.invalidate(ctx, c.Slug)

	return m.findClient(ctx, id)
}

// DeleteClient removes a client together with its config and all of its
// blocks in one transaction.
func (m *Mutator) DeleteClient(ctx context.Context, id uuid.UUID) (err error) {
	defer m.record("delete_client", &err)

	c, err := m.findClient(ctx, id)
	if err != nil {
		return err
	}
	if err := m.clients.Delete(ctx, id); err != nil {
		return storeError("delete client", err)
	}
	m.invalidate(ctx, c.Slug)
	return nil
}

// UpsertClientConfig writes the set fields of patch. When the client has
// no config row yet, one is created holding only those fields; the rest
// resolve to defaults on read.
func (m *Mutator) UpsertClientConfig(ctx context.Context, clientID uuid.UUID, patch models.ConfigPatch) (cfg *models.ClientConfig, err error) {
	defer m.record("upsert_config", &err)

	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	c, err := m.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	cfg, err = m.configs.Upsert(ctx, clientID, patch)
	if err != nil {
		return nil, storeError("upsert config", err)
	}
	m.invalidate(ctx, c.Slug)
	return cfg, nil
}

// CreateBlock inserts a block as given. The caller chooses its order; by
// convention that is the client's current block count (see AppendBlock).
func (m *Mutator) CreateBlock(ctx context.Context, nb models.NewBlock) (b *models.Block, err error) {
	defer m.record("create_block", &err)

	if err := validateStruct(nb); err != nil {
		return nil, err
	}
	c, err := m.findClient(ctx, nb.ClientID)
	if err != nil {
		return nil, err
	}

	b, err = m.blocks.Create(ctx, nb)
	if err != nil {
		return nil, storeError("create block", err)
	}
	m.invalidate(ctx, c.Slug)
	return b, nil
}

// AppendBlock creates a block positioned after the client's existing ones.
// The order it receives is the current block count, so gaps left by
// deletes can produce ties; ties sort by creation time.
func (m *Mutator) AppendBlock(ctx context.Context, nb models.NewBlock) (*models.Block, error) {
	n, err := m.blocks.CountByClient(ctx, nb.ClientID)
	if err != nil {
		err = storeError("count blocks", err)
		m.record("create_block", &err)
		return nil, err
	}
	nb.Order = n
	return m.CreateBlock(ctx, nb)
}

// UpdateBlock applies the set fields of patch and returns the updated block.
func (m *Mutator) UpdateBlock(ctx context.Context, id uuid.UUID, patch models.BlockPatch) (b *models.Block, err error) {
	defer m.record("update_block", &err)

	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	b, err = m.findBlock(ctx, id)
	if err != nil || patch.IsEmpty() {
		return b, err
	}

	if err := m.blocks.Update(ctx, id, patch); err != nil {
		return nil, storeError("update block", err)
	}
	m.invalidateClient(ctx, b.ClientID)

	return m.findBlock(ctx, id)
}

// SetBlockPublished moves a block between draft and published.
func (m *Mutator) SetBlockPublished(ctx context.Context, id uuid.UUID, published bool) (*models.Block, error) {
	return m.UpdateBlock(ctx, id, models.BlockPatch{IsPublished: &published})
}

// DeleteBlock removes a block. The remaining blocks keep their order
// values, so gaps may appear.
func (m *Mutator) DeleteBlock(ctx context.Context, id uuid.UUID) (err error) {
	defer m.record("delete_block", &err)

	b, err := m.findBlock(ctx, id)
	if err != nil {
		return err
	}
	if err := m.blocks.Delete(ctx, id); err != nil {
		return storeError("delete block", err)
	}
	m.invalidateClient(ctx, b.ClientID)
	return nil
}

// ReorderBlocks sets each listed block's order to its index in orderedIDs.
// The update is atomic: if any id is not a block of the client nothing
// changes and ErrNotFound is returned. Repeating a reorder is harmless.
func (m *Mutator) ReorderBlocks(ctx context.Context, clientID uuid.UUID, orderedIDs []uuid.UUID) (err error) {
	defer m.record("reorder_blocks", &err)

	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return &ValidationError{Field: "ids", Msg: fmt.Sprintf("block %s listed twice", id)}
		}
		seen[id] = struct{}{}
	}

	c, err := m.findClient(ctx, clientID)
	if err != nil {
		return err
	}
	if len(orderedIDs) == 0 {
		return nil
	}

	if err := m.blocks.Reorder(ctx, clientID, orderedIDs); err != nil {
		return storeError("reorder blocks", err)
	}
	m.invalidate(ctx, c.Slug)
	return nil
}

func (m *Mutator) findClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	c, err := m.clients.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find client", err)
	}
	if c == nil {
		return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (m *Mutator) findBlock(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	b, err := m.blocks.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find block", err)
	}
	if b == nil {
		return nil, fmt.Errorf("block %s: %w", id, ErrNotFound)
	}
	return b, nil
}

// invalidateClient looks up the slug of a block's owner before notifying.
func (m *Mutator) invalidateClient(ctx context.Context, clientID uuid.UUID) {
	if m.invalidator == nil {
		return
	}
	c, err := m.clients.FindByID(ctx, clientID)
	if err != nil || c == nil {
		slog.Warn("view invalidation skipped", "client_id", clientID, "error", err)
		return
	}
	m.invalidate(ctx, c.Slug)
}

// invalidate failures are logged, not returned: the mutation is already
// committed and the cache entry expires on its own.
func (m *Mutator) invalidate(ctx context.Context, clientSlug string) {
	if m.invalidator == nil {
		return
	}
	if err := m.invalidator.Invalidate(ctx, clientSlug); err != nil {
		slog.Warn("view invalidation failed", "slug", clientSlug, "error", err)
	}
}

func (m *Mutator) record(op string, errp *error) {
	metrics.Mutations.WithLabelValues(op, outcome(*errp)).Inc()
}

// outcome maps an error to its metrics label.
func outcome(err error) string {
	var partial *PartialMutationError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &partial):
		return metrics.OutcomePartial
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}
