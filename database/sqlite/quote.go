package sqlite

import (
	"regexp"
	"strings"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/dbsimple/dbsimple-go/internal/sqltext"
)

var grammar = sqltext.MustNew(
	[]sqltext.Rule{
		{Name: "SingleQuoted", Pattern: `'(?:[^']|'')*'`},
		{Name: "DoubleQuoted", Pattern: `"(?:[^"]|"")*"`},
		{Name: "Backticked", Pattern: "`(?:[^`]|``)*`"},
		{Name: "Bracketed", Pattern: `\[[^\]]*\]`},
		{Name: "BlockComment", Pattern: `/\*(?s:.*?)\*/`},
	},
	[]sqltext.Rule{
		{Name: "DashComment", Pattern: `--[^\n]*`},
	},
)

// EscapeValue quotes raw as a SQLite string literal.
func (a *Adapter) EscapeValue(raw string) string {
	return escapeQuotes(raw)
}

// QuoteValue renders any Go value as a SQLite literal.
func (a *Adapter) QuoteValue(v any) string {
	return database.QuoteValue(a.EscapeValue, v)
}

// EscapeIdentifier wraps raw in double quotes, doubling embedded quotes.
func (a *Adapter) EscapeIdentifier(raw string) string {
	return `"` + strings.ReplaceAll(raw, `"`, `""`) + `"`
}

// PlaceholderIgnorePattern matches string literals, the three identifier
// quoting styles and block comments.
func (a *Adapter) PlaceholderIgnorePattern() *regexp.Regexp {
	return grammar.Pattern()
}

// SplitStatements cuts a script into statements.
func (a *Adapter) SplitStatements(script string) ([]string, error) {
	return grammar.Split(script)
}

func escapeQuotes(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
