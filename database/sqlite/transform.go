package sqlite

import (
	"regexp"
	"strings"

	"github.com/dbsimple/dbsimple-go/database"
)

var (
	selectPrefix = regexp.MustCompile(`(?i)^\s*(?:SELECT|WITH)\b`)
	limitKeyword = regexp.MustCompile(`(?i)\bLIMIT\b`)
)

// Transform rewrites query for a pagination phase.
//
// SQLite has no server-side found-rows counter, so PrepareTotal leaves a
// selection untouched and RetrieveTotal counts the rows of the same
// selection without its outermost LIMIT clause. Both phases decline other
// statements with database.ErrNotApplicable.
func (a *Adapter) Transform(query string, phase database.Phase) (string, error) {
	if !selectPrefix.MatchString(query) {
		return query, database.ErrNotApplicable
	}

	switch phase {
	case database.PrepareTotal:
		return query, nil
	case database.RetrieveTotal:
		return countQuery(query), nil
	}
	return query, database.ErrNotApplicable
}

func countQuery(query string) string {
	q := strings.TrimSpace(query)
	masked, err := grammar.Mask(q)
	if err != nil {
		masked = q
	}

	// Drop trailing comments and semicolons so the closing parenthesis
	// stays outside any comment.
	end := len(strings.TrimRight(masked, "; \t\r\n"))
	if i := outerLimit(masked[:end]); i >= 0 {
		end = len(strings.TrimRight(masked[:i], " \t\r\n"))
	}
	return "SELECT COUNT(*) FROM (" + q[:end] + ")"
}

// outerLimit returns the offset of the LIMIT keyword outside every
// parenthesis, or -1. LIMIT is the last clause of a select, so that one
// applies to the whole statement.
func outerLimit(masked string) int {
	found, depth, pos := -1, 0, 0
	for _, loc := range limitKeyword.FindAllStringIndex(masked, -1) {
		for ; pos < loc[0]; pos++ {
			switch masked[pos] {
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		if depth == 0 {
			found = loc[0]
		}
	}
	return found
}
