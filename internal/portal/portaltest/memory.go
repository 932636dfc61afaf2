// Package portaltest provides in-memory implementations of the portal
// repository interfaces for tests of the service and its HTTP handlers.
package portaltest

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"clientportal/internal/models"
	"clientportal/internal/store"
)

// Memory is an in-memory stand-in for the Postgres stores. It mirrors their
// contracts: (nil, nil) for missing rows on finders, store.ErrNotFound for
// writes that match nothing, store.ErrDuplicate for slug collisions.
//
// The row maps are exported for assertions; read them only while no
// repository call is in flight.
type Memory struct {
	mu      sync.Mutex
	Clients map[uuid.UUID]models.Client
	Configs map[uuid.UUID]models.ClientConfig // keyed by client id
	Blocks  map[uuid.UUID]models.Block
	clock   time.Time

	// Injected failures.
	UpsertErr error
	FindErr   error
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{
		Clients: make(map[uuid.UUID]models.Client),
		Configs: make(map[uuid.UUID]models.ClientConfig),
		Blocks:  make(map[uuid.UUID]models.Block),
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing creation times.
func (db *Memory) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

// ClientRepo, ConfigRepo and BlockRepo are views over one Memory.
type (
	ClientRepo struct{ db *Memory }
	ConfigRepo struct{ db *Memory }
	BlockRepo  struct{ db *Memory }
)

// Repos returns the three repositories backed by db.
func (db *Memory) Repos() (*ClientRepo, *ConfigRepo, *BlockRepo) {
	return &ClientRepo{db}, &ConfigRepo{db}, &BlockRepo{db}
}

func (r *ClientRepo) List(ctx context.Context) ([]models.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Client
	for _, c := range r.db.Clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.FindErr != nil {
		return nil, r.db.FindErr
	}
	c, ok := r.db.Clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ClientRepo) FindActiveBySlug(ctx context.Context, slug string) (*models.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.FindErr != nil {
		return nil, r.db.FindErr
	}
	for _, c := range r.db.Clients {
		if c.Slug == slug && c.IsActive {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ClientRepo) Create(ctx context.Context, name, email, slug string) (*models.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.Clients {
		if c.Slug == slug {
			return nil, store.ErrDuplicate
		}
	}
	c := models.Client{ID: uuid.New(), Name: name, Email: email, Slug: slug, IsActive: true, CreatedAt: r.db.tick()}
	r.db.Clients[c.ID] = c
	return &c, nil
}

func (r *ClientRepo) Update(ctx context.Context, id uuid.UUID, patch models.ClientPatch) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.Clients[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.IsActive != nil {
		c.IsActive = *patch.IsActive
	}
	r.db.Clients[id] = c
	return nil
}

func (r *ClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.Clients[id]; !ok {
		return store.ErrNotFound
	}
	for bid, b := range r.db.Blocks {
		if b.ClientID == id {
			delete(r.db.Blocks, bid)
		}
	}
	delete(r.db.Configs, id)
	delete(r.db.Clients, id)
	return nil
}

func (r *ConfigRepo) FindByClientID(ctx context.Context, clientID uuid.UUID) (*models.ClientConfig, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.Configs[clientID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ConfigRepo) Upsert(ctx context.Context, clientID uuid.UUID, patch models.ConfigPatch) (*models.ClientConfig, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.UpsertErr != nil {
		return nil, r.db.UpsertErr
	}
	if _, ok := r.db.Clients[clientID]; !ok {
		return nil, store.ErrNotFound
	}
	c, ok := r.db.Configs[clientID]
	if !ok {
		c = models.ClientConfig{ID: uuid.New(), ClientID: clientID, CreatedAt: r.db.tick()}
	}
	if patch.Theme != nil {
		v := *patch.Theme
		c.Theme = &v
	}
	if patch.Scale != nil {
		v := *patch.Scale
		c.Scale = &v
	}
	if patch.LogoURL != nil {
		v := *patch.LogoURL
		c.LogoURL = &v
	}
	if patch.PrimaryColor != nil {
		v := *patch.PrimaryColor
		c.PrimaryColor = &v
	}
	r.db.Configs[clientID] = c
	return &c, nil
}

func (r *BlockRepo) sorted(keep func(models.Block) bool) []models.Block {
	var out []models.Block
	for _, b := range r.db.Blocks {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
	return out
}

func (r *BlockRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Block, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.sorted(func(b models.Block) bool { return b.ClientID == clientID }), nil
}

func (r *BlockRepo) ListPublishedByClient(ctx context.Context, clientID uuid.UUID) ([]models.Block, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.sorted(func(b models.Block) bool { return b.ClientID == clientID && b.IsPublished }), nil
}

func (r *BlockRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.Blocks[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *BlockRepo) CountByClient(ctx context.Context, clientID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, b := range r.db.Blocks {
		if b.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

func (r *BlockRepo) Create(ctx context.Context, nb models.NewBlock) (*models.Block, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.Clients[nb.ClientID]; !ok {
		return nil, store.ErrNotFound
	}
	b := models.Block{
		ID:          uuid.New(),
		ClientID:    nb.ClientID,
		Type:        nb.Type,
		Title:       nb.Title,
		Content:     nb.Content,
		Order:       nb.Order,
		IsPublished: nb.IsPublished,
		Config:      models.NewBlockConfigJSON(nb.Config),
		CreatedAt:   r.db.tick(),
	}
	r.db.Blocks[b.ID] = b
	return &b, nil
}

func (r *BlockRepo) Update(ctx context.Context, id uuid.UUID, patch models.BlockPatch) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.Blocks[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.Type != nil {
		b.Type = *patch.Type
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Content != nil {
		b.Content = *patch.Content
	}
	if patch.Order != nil {
		b.Order = *patch.Order
	}
	if patch.IsPublished != nil {
		b.IsPublished = *patch.IsPublished
	}
	if patch.Config != nil {
		b.Config = models.NewBlockConfigJSON(*patch.Config)
	}
	r.db.Blocks[id] = b
	return nil
}

func (r *BlockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.Blocks[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.Blocks, id)
	return nil
}

// Reorder checks every id before writing so a foreign id leaves all rows
// untouched, like the rolled back transaction in the real store.
func (r *BlockRepo) Reorder(ctx context.Context, clientID uuid.UUID, ids []uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		b, ok := r.db.Blocks[id]
		if !ok || b.ClientID != clientID {
			return store.ErrNotFound
		}
	}
	for i, id := range ids {
		b := r.db.Blocks[id]
		b.Order = i
		r.db.Blocks[id] = b
	}
	return nil
}

// Invalidator records invalidated slugs.
type Invalidator struct {
	mu    sync.Mutex
	slugs []string
}

func (r *Invalidator) Invalidate(ctx context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slugs = append(r.slugs, slug)
	return nil
}

// Take returns the slugs recorded since the last call.
func (r *Invalidator) Take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.slugs
	r.slugs = nil
	return out
}

