package mysql

import (
	"regexp"
	"strings"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/dbsimple/dbsimple-go/internal/sqltext"
)

var grammar = sqltext.MustNew(
	[]sqltext.Rule{
		{Name: "DoubleQuoted", Pattern: `"(?:[^"\\]|\\(?s:.))*"`},
		{Name: "SingleQuoted", Pattern: `'(?:[^'\\]|\\(?s:.))*'`},
		{Name: "Backticked", Pattern: "`(?:[^`]|``)*`"},
		{Name: "BlockComment", Pattern: `/\*(?s:.*?)\*/`},
	},
	[]sqltext.Rule{
		{Name: "DashComment", Pattern: `--[ \t][^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
	},
)

// EscapeValue quotes raw as a MySQL string literal.
//
// Backslash escapes are used unless the session runs with
// NO_BACKSLASH_ESCAPES, in which case only quotes are doubled.
func (a *Adapter) EscapeValue(raw string) string {
	if a.server.noBackslashEscapes {
		return escapeQuotes(raw)
	}
	return escapeBackslash(raw)
}

// QuoteValue renders any Go value as a MySQL literal.
func (a *Adapter) QuoteValue(v any) string {
	return database.QuoteValue(a.EscapeValue, v)
}

// EscapeIdentifier wraps raw in backticks, doubling embedded backticks.
func (a *Adapter) EscapeIdentifier(raw string) string {
	return "`" + strings.ReplaceAll(raw, "`", "``") + "`"
}

// PlaceholderIgnorePattern matches double- and single-quoted strings with
// backslash escapes, backtick identifiers and block comments.
func (a *Adapter) PlaceholderIgnorePattern() *regexp.Regexp {
	return grammar.Pattern()
}

// SplitStatements cuts a script into statements. Dash and hash comments are
// honored in addition to the placeholder ignore spans.
func (a *Adapter) SplitStatements(script string) ([]string, error) {
	return grammar.Split(script)
}

// escapeBackslash follows mysql_real_escape_string. Only ASCII bytes are
// rewritten, so UTF-8 input stays intact.
func escapeBackslash(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\x1a':
			b.WriteString(`\Z`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func escapeQuotes(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
