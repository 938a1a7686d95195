package sqlite

import (
	"context"
	"database/sql"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/dbsimple/dbsimple-go/internal/debug"
)

const (
	contextBegin    = "begin"
	contextCommit   = "commit"
	contextRollback = "rollback"
)

// Begin starts a deferred transaction on the live connection.
func (a *Adapter) Begin(ctx context.Context) error {
	if err := a.enter(contextBegin); err != nil {
		return err
	}
	defer a.guard.Leave()

	if a.tx != nil {
		return a.txError(contextBegin, database.ErrTransactionActive)
	}

	tx, err := a.conn.BeginTx(ctx, nil)
	if err != nil {
		return a.txError(contextBegin, err)
	}
	a.tx = tx
	a.errs.Reset()
	debug.Debug("sqlite transaction started")
	return nil
}

// Commit commits the active transaction.
func (a *Adapter) Commit() error {
	if err := a.enter(contextCommit); err != nil {
		return err
	}
	defer a.guard.Leave()

	tx, err := a.takeTx(contextCommit)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return a.txError(contextCommit, err)
	}
	a.errs.Reset()
	debug.Debug("sqlite transaction committed")
	return nil
}

// Rollback rolls back the active transaction.
func (a *Adapter) Rollback() error {
	if err := a.enter(contextRollback); err != nil {
		return err
	}
	defer a.guard.Leave()

	tx, err := a.takeTx(contextRollback)
	if err != nil {
		return err
	}
	if err := tx.Rollback(); err != nil {
		return a.txError(contextRollback, err)
	}
	a.errs.Reset()
	debug.Debug("sqlite transaction rolled back")
	return nil
}

// takeTx detaches the active transaction. The adapter leaves transaction
// mode whether or not finishing it succeeds.
func (a *Adapter) takeTx(label string) (*sql.Tx, error) {
	if a.tx == nil {
		return nil, a.txError(label, database.ErrNoTransaction)
	}
	tx := a.tx
	a.tx = nil
	return tx, nil
}

func (a *Adapter) txError(label string, err error) error {
	code, msg := nativeError(err)
	return a.errs.Record(database.NewError(database.KindTransaction, code, msg, label, err))
}
