// Package mysql implements MySQL database adapter.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/dbsimple/dbsimple-go/internal/debug"
	"github.com/dbsimple/dbsimple-go/internal/pool"
	gomysql "github.com/go-sql-driver/mysql"
)

const (
	// DriverName is the database/sql driver opened by default.
	DriverName = "mysql"

	contextDriver     = "driver"
	contextConnection = "new connection"
)

func init() {
	open := func(ctx context.Context, desc database.Descriptor, opts ...database.Option) (database.Adapter, error) {
		a, err := Open(ctx, desc, opts...)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	database.Register("mysql", open)
	database.Register("mypdo", open)
}

// Adapter implements the database.Adapter interface for MySQL.
//
// It owns one live connection for its whole lifetime, so connection-scoped
// server state such as LAST_INSERT_ID() and FOUND_ROWS() carries from one
// call to the next.
type Adapter struct {
	guard database.Guard
	errs  database.ErrorState

	desc   database.Descriptor
	opts   database.Options
	handle *pool.Handle
	conn   *sql.Conn
	tx     *sql.Tx
	server serverInfo

	lastQuery    string
	totalPending bool
	warned       bool
}

// Open connects to MySQL and returns a ready adapter.
//
// The socket transport is used when desc.Socket is set, otherwise the host
// transport; a descriptor with neither fails with a descriptor error before
// anything is dialed.
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

	a.probeServer(ctx)
	debug.Debug("mysql connected",
		"transport", transport(a.desc),
		"database", a.desc.Database,
		"persistent", a.handle.Persistent(),
		"server", a.server.raw)

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
		if err = conn.PingContext(ctx); err != nil {
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

func (a *Adapter) connectionError(err error) error {
	code, msg := nativeError(err)
	return a.errs.Record(database.NewError(database.KindConnection, code, msg, contextConnection, err))
}

// enter guards a call against concurrent use and use after Close.
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

// querier routes statements through the open transaction, if any.
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
	return database.MySQL
}

// ServerVersion returns the version string reported by the server.
func (a *Adapter) ServerVersion() string {
	return a.server.raw
}

// Close rolls back an open transaction and releases the live connection.
// Calls after Close fail with database.ErrNotConnected.
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
	a.totalPending = false

	debug.Debug("mysql connection closed", "database", a.desc.Database)
	return errors.Join(errs...)
}

// nativeError extracts the server error number and message.
func nativeError(err error) (int, string) {
	var me *gomysql.MySQLError
	if errors.As(err, &me) {
		return int(me.Number), me.Message
	}
	return database.NoCode, err.Error()
}

// Ensure Adapter implements the database interfaces.
var (
	_ database.Adapter     = (*Adapter)(nil)
	_ database.Splitter    = (*Adapter)(nil)
	_ database.ErrorKeeper = (*Adapter)(nil)
)
