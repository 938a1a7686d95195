package mysql

import (
	"context"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/dbsimple/dbsimple-go/internal/debug"
)

const (
	contextBegin    = "begin"
	contextCommit   = "commit"
	contextRollback = "rollback"
)

// Begin starts a transaction on the live connection.
func (a *Adapter) Begin(ctx context.Context) error {
	if err := a.enter(contextBegin); err != nil {
		return err
	}
	defer a.guard.Leave()

	a.totalPending = false
	if a.tx != nil {
		return a.txError(contextBegin, database.ErrTransactionActive)
	}

	tx, err := a.conn.BeginTx(ctx, nil)
	if err != nil {
		return a.txError(contextBegin, err)
	}
	a.tx = tx
	a.errs.Reset()
	debug.Debug("mysql transaction started")
	return nil
}

// Commit commits the active transaction.
func (a *Adapter) Commit() error {
	return a.finish(contextCommit)
}

// Rollback rolls back the active transaction.
func (a *Adapter) Rollback() error {
	return a.finish(contextRollback)
}

func (a *Adapter) finish(label string) error {
	if err := a.enter(label); err != nil {
		return err
	}
	defer a.guard.Leave()

	a.totalPending = false
	if a.tx == nil {
		return a.txError(label, database.ErrNoTransaction)
	}

	tx := a.tx
	a.tx = nil

	var err error
	if label == contextCommit {
		err = tx.Commit()
	} else {
		err = tx.Rollback()
	}
	if err != nil {
		return a.txError(label, err)
	}

	a.errs.Reset()
	debug.Debug("mysql transaction finished", "action", label)
	return nil
}

func (a *Adapter) txError(label string, err error) error {
	code, msg := nativeError(err)
	return a.errs.Record(database.NewError(database.KindTransaction, code, msg, label, err))
}
