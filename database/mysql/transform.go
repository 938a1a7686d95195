package mysql

import (
	"regexp"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/dbsimple/dbsimple-go/internal/debug"
)

const (
	calcFoundRows  = " SQL_CALC_FOUND_ROWS"
	foundRowsQuery = "SELECT FOUND_ROWS()"
)

var selectPrefix = regexp.MustCompile(`(?i)^\s*SELECT\b`)

// Transform rewrites query for a pagination phase.
//
// PrepareTotal inserts SQL_CALC_FOUND_ROWS right after the leading SELECT
// and leaves the rest untouched; other statements yield
// database.ErrNotApplicable with the query unchanged.
//
// RetrieveTotal returns SELECT FOUND_ROWS(). It must run as the very next
// statement after the prepared query, because the server keeps the total
// per connection and any statement in between replaces it. Asking for it
// when the last statement was not a successful SQL_CALC_FOUND_ROWS
// selection fails with database.ErrPaginationOrder.
func (a *Adapter) Transform(query string, phase database.Phase) (string, error) {
	switch phase {
	case database.PrepareTotal:
		loc := selectPrefix.FindStringIndex(query)
		if loc == nil {
			return query, database.ErrNotApplicable
		}
		if preparedPattern.MatchString(query) {
			return query, nil
		}
		a.warnDeprecatedCalc()
		return query[:loc[1]] + calcFoundRows + query[loc[1]:], nil

	case database.RetrieveTotal:
		if err := a.enter(foundRowsQuery); err != nil {
			return "", err
		}
		defer a.guard.Leave()

		if !a.totalPending {
			return "", a.errs.Record(database.NewError(database.KindStatement, database.NoCode, "",
				foundRowsQuery, database.ErrPaginationOrder))
		}
		return foundRowsQuery, nil
	}

	return query, database.ErrNotApplicable
}

func (a *Adapter) warnDeprecatedCalc() {
	if a.warned || !a.server.deprecatesCalcFoundRows() {
		return
	}
	a.warned = true
	debug.Warn("SQL_CALC_FOUND_ROWS is deprecated on this server", "server", a.server.raw)
}
