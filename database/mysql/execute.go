package mysql

import (
	"context"
	"regexp"
	"time"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/dbsimple/dbsimple-go/internal/debug"
)

// rowCountQuery reads the affected-row counter of the previous statement.
const rowCountQuery = "SELECT ROW_COUNT()"

// preparedPattern matches a selection carrying SQL_CALC_FOUND_ROWS right
// after its leading SELECT, the only place the server honours it.
var preparedPattern = regexp.MustCompile(`(?is)^\s*SELECT\s+SQL_CALC_FOUND_ROWS\b`)

// Execute runs one fully expanded statement on the live connection.
//
// An INSERT returns the last insert id, a statement without result columns
// returns the affected-row count and anything else returns its rows. On
// failure the server error is recorded with the statement as context and
// returned as a *database.Error of kind KindStatement.
func (a *Adapter) Execute(ctx context.Context, query string) (database.Result, error) {
	if err := a.enter(query); err != nil {
		return database.Result{}, err
	}
	defer a.guard.Leave()

	a.lastQuery = query
	started := time.Now()

	res, err := database.Run(ctx, a.querier(), query, rowCountQuery)
	debug.Statement(string(database.MySQL), query, res.Kind.String(), started, err)
	if err != nil {
		a.totalPending = false
		code, msg := nativeError(err)
		return database.Result{}, a.errs.Record(database.NewError(database.KindStatement, code, msg, query, err))
	}

	a.errs.Reset()
	a.totalPending = res.Kind == database.KindRows && preparedPattern.MatchString(query)
	return res, nil
}
