// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package portal

import (
	"errors"
	"fmt"

	"clientportal/internal/store"
)

var (
	// ErrNotFound means the slug or id does not resolve. For slug lookups
	// an inactive client is indistinguishable from an absent one.
	ErrNotFound = errors.New("portal: not found")

	// ErrConflict means a uniqueness rule was violated, such as a slug
	// collision on client creation.
	ErrConflict = errors.New("portal: conflict")

	// ErrPersistence wraps any failure of the underlying store. The cause
	// stays in the chain.
	ErrPersistence = errors.New("portal: persistence failure")
)

// ValidationError reports input rejected before storage was touched.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// PartialMutationError reports a multi-step mutation of which only the
// first Completed of Total steps were applied.
type PartialMutationError struct {
	Op        string
	Completed int
	Total     int
	Err       error
}

func (e *PartialMutationError) Error() string {
	return fmt.Sprintf("%s: partially applied (%d of %d steps): %v", e.Op, e.Completed, e.Total, e.Err)
}

func (e *PartialMutationError) Unwrap() error {
	return e.Err
}

// storeError translates a store failure into the portal taxonomy.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
