// Package database defines the dialect-agnostic adapter contract.
//
// A generic access layer expands placeholders itself and hands fully
// expanded statements to an Adapter. Each engine provides one Adapter
// implementation; callers only hold the interface.
package database

import (
	"context"
	"regexp"
)

// Adapter defines the database adapter interface.
//
// An Adapter owns exactly one live connection and is not safe for concurrent
// use. Entering an Adapter from two goroutines at once fails with
// ErrConcurrentUse instead of interleaving statements on the connection.
type Adapter interface {
	// EscapeValue quotes a raw string as a dialect string literal.
	EscapeValue(raw string) string

	// EscapeIdentifier quotes a raw identifier.
	EscapeIdentifier(raw string) string

	// PlaceholderIgnorePattern matches the spans of query text (string
	// literals, quoted identifiers, comments) where placeholder markers
	// must not be substituted.
	PlaceholderIgnorePattern() *regexp.Regexp

	// Execute runs one fully expanded statement.
	Execute(ctx context.Context, query string) (Result, error)

	// Transform rewrites a query for the given pagination phase.
	//
	// PrepareTotal returns ErrNotApplicable together with the unchanged
	// query when the statement cannot be paginated, so the caller can still
	// run it as a plain selection. The query returned for RetrieveTotal must
	// be the very next statement executed on the adapter after the prepared
	// query; anything in between yields an undefined total.
	Transform(query string, phase Phase) (string, error)

	// Begin starts a transaction on the live connection.
	Begin(ctx context.Context) error

	// Commit commits the active transaction.
	Commit() error

	// Rollback rolls back the active transaction.
	Rollback() error

	// LastError returns the error recorded by the last failing call, or nil
	// when the last statement succeeded.
	LastError() *Error

	// LastQuery returns the text of the last submitted statement.
	LastQuery() string

	// Dialect returns the SQL dialect.
	Dialect() SQLDialect

	// Close releases the live connection.
	Close() error
}

// Splitter is implemented by adapters that can cut a script into single
// statements using their own quoting rules.
type Splitter interface {
	SplitStatements(script string) ([]string, error)
}

// ErrorKeeper is implemented by adapters that keep an error state, so
// failures detected outside the adapter can be recorded in it as well.
type ErrorKeeper interface {
	RecordError(e *Error) error
}

// Phase selects a step of the two-phase total-rows protocol.
type Phase string

const (
	// PrepareTotal asks the engine to also compute the total number of
	// matching rows while running the paginated query.
	PrepareTotal Phase = "prepare-total"
	// RetrieveTotal reads back the total computed by the prepared query.
	RetrieveTotal Phase = "retrieve-total"
)

// SQLDialect represents a SQL dialect.
type SQLDialect string

const (
	// MySQL dialect.
	MySQL SQLDialect = "mysql"
	// SQLite dialect.
	SQLite SQLDialect = "sqlite"
)
