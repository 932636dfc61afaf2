// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives the public URL identifier of a client from its name.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// whitespaceRun matches one or more whitespace characters.
	whitespaceRun = regexp.MustCompile(`\s+`)
	// disallowed matches anything outside lower-case ASCII letters, digits and hyphens.
	disallowed = regexp.MustCompile(`[^a-z0-9-]`)
)

// Base lower-cases s, turns each whitespace run into a single hyphen and
// drops every character outside [a-z0-9-]. Hyphens are neither collapsed
// nor trimmed, so "Rock & Roll" becomes "rock--roll".
func Base(s string) string {
	result := strings.ToLower(s)
	result = whitespaceRun.ReplaceAllString(result, "-")
	result = disallowed.ReplaceAllString(result, "")
	return result
}

// Suffix returns the base-36 encoding of t in Unix milliseconds.
func Suffix(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 36)
}

// Generate returns Base(name) followed by a hyphen and Suffix(now).
// Example: Generate("Ana Silva", t) → "ana-silva-m1x2y3z4".
//
// The suffix makes collisions unlikely but does not rule them out; the
// clients table enforces uniqueness.
func Generate(name string, now time.Time) string {
	return Base(name) + "-" + Suffix(now)
}
