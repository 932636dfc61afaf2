// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Client is a tenant of the portal. Its slug is the only public lookup key
// and never changes after creation.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Initial returns the upper-cased first letter of the client name, shown in
// place of a logo when the config has no logo URL.
func (c *Client) Initial() string {
	for _, r := range c.Name {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// ClientPatch carries a partial client update. Nil fields are left untouched.
// The slug is intentionally absent: it is immutable.
type ClientPatch struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=320"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// IsEmpty reports whether the patch sets no field.
func (p ClientPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.IsActive == nil
}
