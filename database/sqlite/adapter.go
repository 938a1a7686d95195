// Package sqlite implements SQLite database adapter.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/dbsimple/dbsimple-go/internal/debug"
	"github.com/dbsimple/dbsimple-go/internal/pool"
	sqlite3 "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver opened by default.
	DriverName = "sqlite3"

	contextDriver     = "driver"
	contextConnection = "new connection"

	versionQuery = "SELECT sqlite_version()"
)

func init() {
	open := func(ctx context.Context, desc database.Descriptor, opts ...database.Option) (database.Adapter, error) {
		a, err := Open(ctx, desc, opts...)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	database.Register("sqlite", open)
	database.Register("sqlite3", open)
}

// Adapter implements the database.Adapter interface for SQLite.
type Adapter struct {
	guard database.Guard
	errs  database.ErrorState

	desc    database.Descriptor
	opts    database.Options
	handle  *pool.Handle
	conn    *sql.Conn
	tx      *sql.Tx
	version string

	lastQuery string
}

// Open opens the database file named by desc.Database and returns a ready
// adapter. ":memory:" opens a private in-memory database.
func Open(ctx context.Context, desc database.Descriptor, opts ...database.Option) (*Adapter, error) {
	o := database.ApplyOptions(DriverName, opts...)
	a := &Adapter{
		desc: desc.Clone(),
		opts: o,
		errs: database.NewErrorState(o.Recorder),
	}

	if !database.DriverAvailable(o.DriverName) {
		return nil, a.errs.Record(database.NewError(database.KindConfiguration, database.NoCode,
			fmt.Sprintf("database/sql driver %q is not registered", o.DriverName), contextDriver, nil))
	}

	dsn, err := DSN(a.desc)
	if err != nil {
		return nil, a.errs.Record(database.NewError(database.KindDescriptor, database.NoCode, "", contextConnection, err))
	}

	if err := a.connect(ctx, dsn); err != nil {
		return nil, err
	}

	if err := a.conn.QueryRowContext(ctx, versionQuery).Scan(&a.version); err != nil {
		debug.Debug("failed to read sqlite version", "error", err)
	}
	debug.Debug("sqlite connected",
		"database", a.desc.Database,
		"persistent", a.handle.Persistent(),
		"version", a.version)

	return a, nil
}

func (a *Adapter) connect(ctx context.Context, dsn string) error {
	handle, err := a.opts.Acquire(dsn, a.desc.Persist)
	if err != nil {
		return a.connectionError(err)
	}

	if a.desc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.desc.Timeout)
		defer cancel()
	}

	conn, err := handle.Conn(ctx)
	if err == nil {
		err = setup(ctx, conn, a.desc)
		if err != nil {
			conn.Close()
		}
	}
	if err != nil {
		_ = handle.Release()
		return a.connectionError(err)
	}

	a.handle = handle
	a.conn = conn
	return nil
}

// setup pings the connection and applies the per-connection pragmas.
func setup(ctx context.Context, conn *sql.Conn, desc database.Descriptor) error {
	if err := conn.PingContext(ctx); err != nil {
		return err
	}
	// Enable foreign keys (disabled by default in SQLite)
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if desc.Encoding != "" {
		if _, err := conn.ExecContext(ctx, "PRAGMA encoding = "+escapeQuotes(desc.Encoding)); err != nil {
			return fmt.Errorf("failed to set encoding: %w", err)
		}
	}
	return nil
}

func (a *Adapter) connectionError(err error) error {
	code, msg := nativeError(err)
	return a.errs.Record(database.NewError(database.KindConnection, code, msg, contextConnection, err))
}

func (a *Adapter) enter(label string) error {
	if err := a.guard.Enter(); err != nil {
		return err
	}
	if a.conn == nil {
		a.guard.Leave()
		return a.errs.Record(database.NewError(database.KindConnection, database.NoCode, "", label, database.ErrNotConnected))
	}
	return nil
}

func (a *Adapter) querier() database.Querier {
	if a.tx != nil {
		return a.tx
	}
	return a.conn
}

// LastError returns the error recorded by the last failing call.
func (a *Adapter) LastError() *database.Error {
	return a.errs.LastError()
}

// RecordError stores e as the last error.
func (a *Adapter) RecordError(e *database.Error) error {
	return a.errs.Record(e)
}

// LastQuery returns the last submitted statement.
func (a *Adapter) LastQuery() string {
	return a.lastQuery
}

// Dialect returns the SQL dialect.
func (a *Adapter) Dialect() database.SQLDialect {
	return database.SQLite
}

// ServerVersion returns the SQLite library version.
func (a *Adapter) ServerVersion() string {
	return a.version
}

// Close rolls back an open transaction and releases the connection.
func (a *Adapter) Close() error {
	if err := a.guard.Enter(); err != nil {
		return err
	}
	defer a.guard.Leave()

	if a.conn == nil {
		return nil
	}

	var errs []error
	if a.tx != nil {
		if err := a.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("failed to roll back open transaction: %w", err))
		}
		a.tx = nil
	}
	if err := a.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
	}
	if err := a.handle.Release(); err != nil {
		errs = append(errs, fmt.Errorf("failed to release database: %w", err))
	}
	a.conn = nil

	debug.Debug("sqlite connection closed", "database", a.desc.Database)
	return errors.Join(errs...)
}

// nativeError extracts the extended result code and message.
func nativeError(err error) (int, string) {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return int(se.ExtendedCode), se.Error()
	}
	return database.NoCode, err.Error()
}

var (
	_ database.Adapter     = (*Adapter)(nil)
	_ database.Splitter    = (*Adapter)(nil)
	_ database.ErrorKeeper = (*Adapter)(nil)
)
