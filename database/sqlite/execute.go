package sqlite

import (
	"context"
	"time"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/dbsimple/dbsimple-go/internal/debug"
)

// rowCountQuery reads the number of rows changed by the last DML statement.
// DDL leaves it untouched.
const rowCountQuery = "SELECT changes()"

// Execute runs one fully expanded statement on the live connection.
func (a *Adapter) Execute(ctx context.Context, query string) (database.Result, error) {
	if err := a.enter(query); err != nil {
		return database.Result{}, err
	}
	defer a.guard.Leave()

	a.lastQuery = query
	started := time.Now()

	res, err := database.Run(ctx, a.querier(), query, rowCountQuery)
	debug.Statement(string(database.SQLite), query, res.Kind.String(), started, err)
	if err != nil {
		code, msg := nativeError(err)
		return database.Result{}, a.errs.Record(database.NewError(database.KindStatement, code, msg, query, err))
	}

	a.errs.Reset()
	return res, nil
}
