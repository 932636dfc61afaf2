package portal

import (
	"context"

	"github.com/google/uuid"

	"clientportal/internal/models"
)

// The repository interfaces are satisfied by the Postgres stores in
// internal/store. Finders return (nil, nil) when nothing matches; writes by
// id return store.ErrNotFound when no row was affected.

// ClientRepository persists clients.
type ClientRepository interface {
	List(ctx context.Context) ([]models.Client, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindActiveBySlug(ctx context.Context, slug string) (*models.Client, error)
	Create(ctx context.Context, name, email, slug string) (*models.Client, error)
	Update(ctx context.Context, id uuid.UUID, patch models.ClientPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ConfigRepository persists the per-client configuration row.
type ConfigRepository interface {
	FindByClientID(ctx context.Context, clientID uuid.UUID) (*models.ClientConfig, error)
	Upsert(ctx context.Context, clientID uuid.UUID, patch models.ConfigPatch) (*models.ClientConfig, error)
}

// BlockRepository persists content blocks. List methods return blocks sorted
// by order, then created_at, then id.
type BlockRepository interface {
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Block, error)
	ListPublishedByClient(ctx context.Context, clientID uuid.UUID) ([]models.Block, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Block, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int, error)
	Create(ctx context.Context, nb models.NewBlock) (*models.Block, error)
	Update(ctx context.Context, id uuid.UUID, patch models.BlockPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, clientID uuid.UUID, ids []uuid.UUID) error
}

// Invalidator is told the slug of every client whose resolved view changed.
type Invalidator interface {
	Invalidate(ctx context.Context, slug string) error
}
