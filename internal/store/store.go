// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all portal entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
// Finders return (nil, nil) when no row matches; writes by id return
// ErrNotFound when no row was affected.
package store

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by updates and deletes that matched no row.
	ErrNotFound = errors.New("store: no rows affected")

	// ErrDuplicate is returned when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("store: duplicate key")
)

// SQLSTATE codes translated by mapError.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapError translates driver errors into store sentinels. The original
// error stays in the chain.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return errors.Join(ErrDuplicate, err)
	case pgForeignKeyViolation:
		return errors.Join(ErrNotFound, err)
	}
	return err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// assignments accumulates the SET clause of a partial UPDATE. Placeholders
// are numbered in the order columns are added.
type assignments struct {
	cols []string
	args []any
}

// add appends "col = $n" with the given value.
func (a *assignments) add(col string, v any) {
	a.args = append(a.args, v)
	a.cols = append(a.cols, col+" = $"+strconv.Itoa(len(a.args)))
}

// empty reports whether no column was added.
func (a *assignments) empty() bool {
	return len(a.cols) == 0
}

// update builds "UPDATE table SET ... WHERE whereCol = $n" and returns the
// query with its arguments, the where value last.
func (a *assignments) update(table, whereCol string, whereVal any) (string, []any) {
	args := append(a.args, whereVal)
	q := "UPDATE " + table + " SET " + strings.Join(a.cols, ", ") +
		" WHERE " + whereCol + " = $" + strconv.Itoa(len(args))
	return q, args
}
