// Package store provides data access for documents and their version
// history in PostgreSQL. Stores are constructed over a DBTX so the same
// code runs against the pool or inside a transaction; mutations that must
// be atomic (a document write plus its version append) are composed by the
// service layer within a single transaction.
package store

import (
	"database/sql"
	"errors"
)

// DBTX is the subset of database operations stores need. Both *sql.DB and
// *sql.Tx satisfy it.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// isNoRows reports whether err is the no-rows sentinel from QueryRow.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
