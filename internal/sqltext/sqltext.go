// Package sqltext describes the spans of SQL text that are opaque to
// placeholder expansion and statement splitting: string literals, quoted
// identifiers and comments.
package sqltext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Rule names one kind of opaque span. Pattern uses Go regexp syntax and must
// match the whole span, delimiters included.
type Rule struct {
	Name    string
	Pattern string
}

// Grammar is a dialect's set of opaque spans.
type Grammar struct {
	pattern  *regexp.Regexp
	lexer    *lexer.StatefulDefinition
	comments map[lexer.TokenType]bool
	quoted   map[lexer.TokenType]bool
	sep      lexer.TokenType
}

// New builds a grammar. ignore lists the spans skipped by placeholder
// expansion; comments lists further comment forms that only matter when
// splitting scripts.
func New(ignore, comments []Rule) (*Grammar, error) {
	if len(ignore) == 0 {
		return nil, fmt.Errorf("grammar needs at least one rule")
	}

	alts := make([]string, len(ignore))
	for i, r := range ignore {
		alts[i] = "(?:" + r.Pattern + ")"
	}
	pattern, err := regexp.Compile(strings.Join(alts, "|"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile ignore pattern: %w", err)
	}

	rules := make([]lexer.SimpleRule, 0, len(ignore)+len(comments)+3)
	for _, r := range ignore {
		rules = append(rules, lexer.SimpleRule{Name: r.Name, Pattern: r.Pattern})
	}
	for _, r := range comments {
		rules = append(rules, lexer.SimpleRule{Name: r.Name, Pattern: r.Pattern})
	}
	rules = append(rules,
		lexer.SimpleRule{Name: "Separator", Pattern: `;`},
		lexer.SimpleRule{Name: "Text", Pattern: "[^;'\"`/\\[#-]+"},
		lexer.SimpleRule{Name: "Char", Pattern: `(?s:.)`},
	)

	def, err := lexer.NewSimple(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build lexer: %w", err)
	}

	symbols := def.Symbols()
	commentTypes := make(map[lexer.TokenType]bool)
	quotedTypes := make(map[lexer.TokenType]bool)
	for _, r := range ignore {
		if strings.Contains(r.Name, "Comment") {
			commentTypes[symbols[r.Name]] = true
		} else {
			quotedTypes[symbols[r.Name]] = true
		}
	}
	for _, r := range comments {
		commentTypes[symbols[r.Name]] = true
	}

	return &Grammar{
		pattern:  pattern,
		lexer:    def,
		comments: commentTypes,
		quoted:   quotedTypes,
		sep:      symbols["Separator"],
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(ignore, comments []Rule) *Grammar {
	g, err := New(ignore, comments)
	if err != nil {
		panic(err)
	}
	return g
}

// Pattern returns a regexp matching any ignored span.
func (g *Grammar) Pattern() *regexp.Regexp {
	return g.pattern
}

// Mask returns text with every comment blanked out and every quoted span
// filled with underscores. The result has the same byte length as text, so
// offsets found in it apply to text.
func (g *Grammar) Mask(text string) (string, error) {
	tokens, err := g.tokens(text)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, tok := range tokens {
		switch {
		case g.comments[tok.Type]:
			b.WriteString(strings.Repeat(" ", len(tok.Value)))
		case g.quoted[tok.Type]:
			b.WriteString(strings.Repeat("_", len(tok.Value)))
		default:
			b.WriteString(tok.Value)
		}
	}
	return b.String(), nil
}

func (g *Grammar) tokens(text string) ([]lexer.Token, error) {
	lex, err := g.lexer.LexString("", text)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize script: %w", err)
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize script: %w", err)
	}
	if n := len(tokens); n > 0 && tokens[n-1].EOF() {
		tokens = tokens[:n-1]
	}
	return tokens, nil
}

// Split cuts a script into statements at semicolons outside opaque spans.
// Statements made only of whitespace and comments are dropped.
func (g *Grammar) Split(script string) ([]string, error) {
	tokens, err := g.tokens(script)
	if err != nil {
		return nil, err
	}

	var (
		out     []string
		current strings.Builder
		hasCode bool
	)
	flush := func() {
		if hasCode {
			out = append(out, strings.TrimSpace(current.String()))
		}
		current.Reset()
		hasCode = false
	}

	for _, tok := range tokens {
		if tok.Type == g.sep {
			flush()
			continue
		}
		current.WriteString(tok.Value)
		if !g.comments[tok.Type] && strings.TrimSpace(tok.Value) != "" {
			hasCode = true
		}
	}
	flush()

	return out, nil
}
