// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"clientportal/internal/models"
)

// ConfigStore handles the per-client configuration row.
type ConfigStore struct {
	db *sql.DB
}

// NewConfigStore creates a new ConfigStore with the given database connection.
func NewConfigStore(db *sql.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

const configColumns = `id, client_id, theme, scale, logo_url, primary_color, created_at`

func scanConfig(scanner rowScanner) (*models.ClientConfig, error) {
	var c models.ClientConfig
	err := scanner.Scan(&c.ID, &c.ClientID, &c.Theme, &c.Scale, &c.LogoURL, &c.PrimaryColor, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByClientID returns the stored config of a client. Returns nil if the
// client has no config row.
func (s *ConfigStore) FindByClientID(ctx context.Context, clientID uuid.UUID) (*models.ClientConfig, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+configColumns+` FROM client_config WHERE client_id = $1`, clientID)
	c, err := scanConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find client config: %w", err)
	}
	return c, nil
}

// Upsert writes the set fields of patch in a single statement. A missing row
// is inserted with only those fields; the others stay NULL. An existing row
// has only those fields overwritten. An unknown client returns an error
// wrapping ErrNotFound.
func (s *ConfigStore) Upsert(ctx context.Context, clientID uuid.UUID, patch models.ConfigPatch) (*models.ClientConfig, error) {
	cols := []string{"client_id"}
	args := []any{clientID}
	add := func(col string, v any) {
		cols = append(cols, col)
		args = append(args, v)
	}
	if patch.Theme != nil {
		add("theme", string(*patch.Theme))
	}
	if patch.Scale != nil {
		add("scale", *patch.Scale)
	}
	if patch.LogoURL != nil {
		add("logo_url", *patch.LogoURL)
	}
	if patch.PrimaryColor != nil {
		add("primary_color", *patch.PrimaryColor)
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	// With an empty patch the conflict arm rewrites client_id so that
	// RETURNING still yields the existing row.
	updates := []string{"client_id = EXCLUDED.client_id"}
	for _, col := range cols[1:] {
		updates = append(updates, col+" = EXCLUDED."+col)
	}

	q := `INSERT INTO client_config (` + strings.Join(cols, ", ") + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		ON CONFLICT (client_id) DO UPDATE SET ` + strings.Join(updates, ", ") + `
		RETURNING ` + configColumns

	c, err := scanConfig(s.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, fmt.Errorf("upsert client config: %w", mapError(err))
	}
	return c, nil
}
