// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BlockConfig holds the optional per-block settings stored in the JSONB
// config column. Icon and colours are cosmetic overrides.
type BlockConfig struct {
	Icon       string `json:"icon,omitempty"`
	BgColor    string `json:"bg_color,omitempty"`
	TextColor  string `json:"text_color,omitempty"`
	LinkURL    string `json:"link_url,omitempty" validate:"omitempty,max=2048"`
	VideoEmbed string `json:"video_embed,omitempty" validate:"omitempty,max=2048"`
	IsToggle   bool   `json:"is_toggle,omitempty"`
}

// BlockConfigJSON is the column type of Block.Config. It scans from and
// writes to JSONB through database/sql.
type BlockConfigJSON = datatypes.JSONType[BlockConfig]

// NewBlockConfigJSON wraps a BlockConfig for storage.
func NewBlockConfigJSON(cfg BlockConfig) BlockConfigJSON {
	return datatypes.NewJSONType(cfg)
}

// Block is one unit of content on a client page. Unpublished blocks are
// drafts: visible to the admin, hidden from the public page.
type Block struct {
	ID          uuid.UUID       `json:"id"`
	ClientID    uuid.UUID       `json:"client_id"`
	Type        BlockType       `json:"type"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Order       int             `json:"order"`
	IsPublished bool            `json:"is_published"`
	Config      BlockConfigJSON `json:"config"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Settings returns the decoded block config.
func (b *Block) Settings() BlockConfig {
	return b.Config.Data()
}

// IsToggle reports whether the block expands in place instead of linking out.
func (b *Block) IsToggle() bool {
	return b.Config.Data().IsToggle
}

// HasLink reports whether the block opens an external link.
func (b *Block) HasLink() bool {
	return b.Config.Data().LinkURL != ""
}

// NewBlock is the input of a block insert. Order is supplied by the caller;
// appending uses the current block count.
type NewBlock struct {
	ClientID    uuid.UUID   `json:"client_id" validate:"required"`
	Type        BlockType   `json:"type" validate:"required,blocktype"`
	Title       string      `json:"title" validate:"max=300"`
	Content     string      `json:"content" validate:"max=100000"`
	Order       int         `json:"order" validate:"min=0"`
	IsPublished bool        `json:"is_published"`
	Config      BlockConfig `json:"config"`
}

// BlockPatch carries a partial block update. Nil fields are left untouched.
type BlockPatch struct {
	Type        *BlockType   `json:"type,omitempty" validate:"omitempty,blocktype"`
	Title       *string      `json:"title,omitempty" validate:"omitempty,max=300"`
	Content     *string      `json:"content,omitempty" validate:"omitempty,max=100000"`
	Order       *int         `json:"order,omitempty" validate:"omitempty,min=0"`
	IsPublished *bool        `json:"is_published,omitempty"`
	Config      *BlockConfig `json:"config,omitempty"`
}

// IsEmpty reports whether the patch sets no field.
func (p BlockPatch) IsEmpty() bool {
	return p.Type == nil && p.Title == nil && p.Content == nil &&
		p.Order == nil && p.IsPublished == nil && p.Config == nil
}
