// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"clientportal/internal/models"
)

// BlockStore handles all block-related database operations.
type BlockStore struct {
	db *sql.DB
}

// NewBlockStore creates a new BlockStore with the given database connection.
func NewBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db}
}

const blockColumns = `id, client_id, type, title, content, "order", is_published, config, created_at`

// blockOrdering sorts by position; equal positions fall back to creation
// time and then id so the sequence is stable.
const blockOrdering = ` ORDER BY "order" ASC, created_at ASC, id ASC`

func scanBlock(scanner rowScanner) (*models.Block, error) {
	var b models.Block
	err := scanner.Scan(
		&b.ID, &b.ClientID, &b.Type, &b.Title, &b.Content,
		&b.Order, &b.IsPublished, &b.Config, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BlockStore) list(ctx context.Context, q string, args ...any) ([]models.Block, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var items []models.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// ListByClient returns every block of a client, published or not.
func (s *BlockStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Block, error) {
	return s.list(ctx, `SELECT `+blockColumns+` FROM blocks WHERE client_id = $1`+blockOrdering, clientID)
}

// ListPublishedByClient returns the published blocks of a client.
func (s *BlockStore) ListPublishedByClient(ctx context.Context, clientID uuid.UUID) ([]models.Block, error) {
	return s.list(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE client_id = $1 AND is_published = TRUE`+blockOrdering,
		clientID)
}

// FindByID retrieves a block by its UUID. Returns nil if not found.
func (s *BlockStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	b, err := scanBlock(s.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find block by id: %w", err)
	}
	return b, nil
}

// CountByClient returns the number of blocks a client has.
func (s *BlockStore) CountByClient(ctx context.Context, clientID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocks WHERE client_id = $1`, clientID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count blocks: %w", err)
	}
	return n, nil
}

// Create inserts a block as given and returns it with the generated ID.
func (s *BlockStore) Create(ctx context.Context, nb models.NewBlock) (*models.Block, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO blocks (client_id, type, title, content, "order", is_published, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+blockColumns,
		nb.ClientID, string(nb.Type), nb.Title, nb.Content, nb.Order, nb.IsPublished,
		models.NewBlockConfigJSON(nb.Config),
	)
	b, err := scanBlock(row)
	if err != nil {
		return nil, fmt.Errorf("create block: %w", mapError(err))
	}
	return b, nil
}

// Update applies the non-nil fields of patch to the block.
func (s *BlockStore) Update(ctx context.Context, id uuid.UUID, patch models.BlockPatch) error {
	var set assignments
	if patch.Type != nil {
		set.add("type", string(*patch.Type))
	}
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Content != nil {
		set.add("content", *patch.Content)
	}
	if patch.Order != nil {
		set.add(`"order"`, *patch.Order)
	}
	if patch.IsPublished != nil {
		set.add("is_published", *patch.IsPublished)
	}
	if patch.Config != nil {
		set.add("config", models.NewBlockConfigJSON(*patch.Config))
	}
	if set.empty() {
		return nil
	}

	q, args := set.update("blocks", "id", id)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update block: %w", err)
	}
	return affectedOne(res, "update block")
}

// Delete removes a block by ID. Remaining blocks keep their order values.
func (s *BlockStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return affectedOne(res, "delete block")
}

// Reorder sets each block's order to its index in ids, in one transaction.
// If any id does not belong to the client the transaction is rolled back
// and ErrNotFound is returned.
func (s *BlockStore) Reorder(ctx context.Context, clientID uuid.UUID, ids []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE blocks SET "order" = $1 WHERE id = $2 AND client_id = $3`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		res, err := stmt.ExecContext(ctx, i, id, clientID)
		if err != nil {
			return fmt.Errorf("reorder block %s: %w", id, err)
		}
		if err := affectedOne(res, "reorder block"); err != nil {
			return err
		}
	}

	return tx.Commit()
}
