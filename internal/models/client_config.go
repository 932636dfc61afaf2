// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Theme is the colour scheme of a client page.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Defaults applied to a client whose config row, or one of its fields, is missing.
const (
	DefaultTheme        = ThemeDark
	DefaultScale        = 100
	DefaultLogoURL      = ""
	DefaultPrimaryColor = "#6366f1"

	MinScale = 20
	MaxScale = 100
)

// ClientConfig is the stored presentation config of a client (at most one
// per client). Fields are nullable: a row created through an upsert only
// holds what the caller supplied.
type ClientConfig struct {
	ID           uuid.UUID `json:"id"`
	ClientID     uuid.UUID `json:"client_id"`
	Theme        *Theme    `json:"theme"`
	Scale        *int      `json:"scale"`
	LogoURL      *string   `json:"logo_url"`
	PrimaryColor *string   `json:"primary_color"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConfigPatch carries a partial config update or the fields of a new row.
type ConfigPatch struct {
	Theme        *Theme  `json:"theme,omitempty" validate:"omitempty,oneof=dark light"`
	Scale        *int    `json:"scale,omitempty" validate:"omitempty,min=20,max=100"`
	LogoURL      *string `json:"logo_url,omitempty" validate:"omitempty,max=2048"`
	PrimaryColor *string `json:"primary_color,omitempty" validate:"omitempty,max=64"`
}

// IsEmpty reports whether the patch sets no field.
func (p ConfigPatch) IsEmpty() bool {
	return p.Theme == nil && p.Scale == nil && p.LogoURL == nil && p.PrimaryColor == nil
}

// DefaultConfigPatch is the full config written alongside a new client.
func DefaultConfigPatch() ConfigPatch {
	theme := DefaultTheme
	scale := DefaultScale
	logo := DefaultLogoURL
	color := DefaultPrimaryColor
	return ConfigPatch{Theme: &theme, Scale: &scale, LogoURL: &logo, PrimaryColor: &color}
}

// EffectiveConfig is the config a client page is displayed with, after
// defaults have been applied.
type EffectiveConfig struct {
	Theme        Theme  `json:"theme"`
	Scale        int    `json:"scale"`
	LogoURL      string `json:"logo_url"`
	PrimaryColor string `json:"primary_color"`
}

// Effective merges a stored config (possibly nil) with the defaults. Any
// theme other than light resolves to dark, and a zero scale resolves to the
// default scale.
func Effective(cfg *ClientConfig) EffectiveConfig {
	eff := EffectiveConfig{
		Theme:        DefaultTheme,
		Scale:        DefaultScale,
		LogoURL:      DefaultLogoURL,
		PrimaryColor: DefaultPrimaryColor,
	}
	if cfg == nil {
		return eff
	}
	if cfg.Theme != nil && *cfg.Theme == ThemeLight {
		eff.Theme = ThemeLight
	}
	if cfg.Scale != nil && *cfg.Scale != 0 {
		eff.Scale = *cfg.Scale
	}
	if cfg.LogoURL != nil {
		eff.LogoURL = *cfg.LogoURL
	}
	if cfg.PrimaryColor != nil && *cfg.PrimaryColor != "" {
		eff.PrimaryColor = *cfg.PrimaryColor
	}
	return eff
}

// IsDark reports whether the page uses the dark theme.
func (e EffectiveConfig) IsDark() bool {
	return e.Theme != ThemeLight
}

// UsesInitials reports whether the page shows the client initial instead of a logo.
func (e EffectiveConfig) UsesInitials() bool {
	return e.LogoURL == ""
}
