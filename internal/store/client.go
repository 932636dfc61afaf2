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

// ClientStore handles all client-related database operations.
type ClientStore struct {
	db *sql.DB
}

// NewClientStore creates a new ClientStore with the given database connection.
func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

const clientColumns = `id, name, email, slug, is_active, created_at`

// scanClient scans a row into a Client struct.
func scanClient(scanner rowScanner) (*models.Client, error) {
	var c models.Client
	if err := scanner.Scan(&c.ID, &c.Name, &c.Email, &c.Slug, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all clients, newest first.
func (s *ClientStore) List(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var items []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a client by its UUID, active or not. Returns nil if not found.
func (s *ClientStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find client by id: %w", err)
	}
	return c, nil
}

// FindActiveBySlug retrieves an active client by its slug. Inactive clients
// are not returned. Returns nil if not found.
func (s *ClientStore) FindActiveBySlug(ctx context.Context, slug string) (*models.Client, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE slug = $1 AND is_active = TRUE`, slug)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find client by slug: %w", err)
	}
	return c, nil
}

// Create inserts an active client and returns it with the generated ID.
// A slug collision returns an error wrapping ErrDuplicate.
func (s *ClientStore) Create(ctx context.Context, name, email, slug string) (*models.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO clients (name, email, slug, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING `+clientColumns,
		name, email, slug,
	)
	c, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", mapError(err))
	}
	return c, nil
}

// Update applies the non-nil fields of patch to the client.
func (s *ClientStore) Update(ctx context.Context, id uuid.UUID, patch models.ClientPatch) error {
	var set assignments
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Email != nil {
		set.add("email", *patch.Email)
	}
	if patch.IsActive != nil {
		set.add("is_active", *patch.IsActive)
	}
	if set.empty() {
		return nil
	}

	q, args := set.update("clients", "id", id)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update client: %w", mapError(err))
	}
	return affectedOne(res, "update client")
}

// Delete removes a client together with its config and blocks in one
// transaction.
func (s *ClientStore) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE client_id = $1`, id); err != nil {
		return fmt.Errorf("delete client blocks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM client_config WHERE client_id = $1`, id); err != nil {
		return fmt.Errorf("delete client config: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if err := affectedOne(res, "delete client"); err != nil {
		return err
	}

	return tx.Commit()
}

// affectedOne returns ErrNotFound when res reports zero affected rows.
func affectedOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
