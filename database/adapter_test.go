package database

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAdapter answers Execute from a table of canned results.
type scriptedAdapter struct {
	results   map[string]Result
	executed  []string
	transform func(query string, phase Phase) (string, error)
	lastErr   *Error
}

func (s *scriptedAdapter) EscapeValue(raw string) string      { return "'" + raw + "'" }
func (s *scriptedAdapter) EscapeIdentifier(raw string) string { return `"` + raw + `"` }
func (s *scriptedAdapter) PlaceholderIgnorePattern() *regexp.Regexp {
	return regexp.MustCompile(`'[^']*'`)
}

func (s *scriptedAdapter) Execute(_ context.Context, query string) (Result, error) {
	s.executed = append(s.executed, query)
	res, ok := s.results[query]
	if !ok {
		return Result{}, NewError(KindStatement, 1, "unexpected query", query, nil)
	}
	return res, nil
}

func (s *scriptedAdapter) Transform(query string, phase Phase) (string, error) {
	return s.transform(query, phase)
}

func (s *scriptedAdapter) Begin(context.Context) error { return nil }
func (s *scriptedAdapter) Commit() error               { return nil }
func (s *scriptedAdapter) Rollback() error             { return nil }
func (s *scriptedAdapter) LastError() *Error           { return s.lastErr }
func (s *scriptedAdapter) LastQuery() string           { return "" }
func (s *scriptedAdapter) Dialect() SQLDialect         { return "scripted" }
func (s *scriptedAdapter) Close() error                { return nil }

func (s *scriptedAdapter) RecordError(e *Error) error {
	s.lastErr = e
	return e
}

func rowsOf(column string, values ...any) Result {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = NewRow([]string{column}, []any{v})
	}
	return Result{Kind: KindRows, Columns: []string{column}, Rows: rows}
}

func TestPaginate(t *testing.T) {
	ctx := context.Background()

	t.Run("two phases", func(t *testing.T) {
		a := &scriptedAdapter{
			results: map[string]Result{
				"SELECT CALC id FROM t LIMIT 2": rowsOf("id", "1", "2"),
				"TOTAL":                         rowsOf("n", "9"),
			},
			transform: func(query string, phase Phase) (string, error) {
				if phase == PrepareTotal {
					return strings.Replace(query, "SELECT", "SELECT CALC", 1), nil
				}
				return "TOTAL", nil
			},
		}

		res, total, err := Paginate(ctx, a, "SELECT id FROM t LIMIT 2")
		require.NoError(t, err)
		assert.Equal(t, int64(9), total)
		assert.Len(t, res.Rows, 2)
		assert.Equal(t, []string{"SELECT CALC id FROM t LIMIT 2", "TOTAL"}, a.executed)
	})

	t.Run("not applicable runs query plainly", func(t *testing.T) {
		a := &scriptedAdapter{
			results: map[string]Result{"SHOW TABLES": rowsOf("name", "a", "b", "c")},
			transform: func(query string, _ Phase) (string, error) {
				return query, ErrNotApplicable
			},
		}

		res, total, err := Paginate(ctx, a, "SHOW TABLES")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, res.Rows, 3)
	})

	t.Run("retrieve failure", func(t *testing.T) {
		a := &scriptedAdapter{
			results: map[string]Result{"SELECT 1": rowsOf("1", int64(1))},
			transform: func(query string, phase Phase) (string, error) {
				if phase == PrepareTotal {
					return query, nil
				}
				return "", ErrPaginationOrder
			},
		}

		_, _, err := Paginate(ctx, a, "SELECT 1")
		assert.ErrorIs(t, err, ErrPaginationOrder)
	})

	t.Run("unreadable total", func(t *testing.T) {
		a := &scriptedAdapter{
			results: map[string]Result{
				"SELECT 1": rowsOf("1", int64(1)),
				"TOTAL":    {Kind: KindRowCount},
			},
			transform: func(query string, phase Phase) (string, error) {
				if phase == PrepareTotal {
					return query, nil
				}
				return "TOTAL", nil
			},
		}

		_, _, err := Paginate(ctx, a, "SELECT 1")
		assert.True(t, errors.Is(err, ErrStatement))
		require.NotNil(t, a.LastError())
		assert.Equal(t, "TOTAL", a.LastError().Context)
	})
}

func TestRegistry(t *testing.T) {
	opened := 0
	Register("Scripted-Test", func(ctx context.Context, desc Descriptor, opts ...Option) (Adapter, error) {
		opened++
		return &scriptedAdapter{}, nil
	})

	assert.Contains(t, Schemes(), "scripted-test")

	a, err := Open(context.Background(), Descriptor{Scheme: "SCRIPTED-TEST"})
	require.NoError(t, err)
	assert.Equal(t, SQLDialect("scripted"), a.Dialect())
	assert.Equal(t, 1, opened)

	assert.Panics(t, func() {
		Register("scripted-test", func(context.Context, Descriptor, ...Option) (Adapter, error) { return nil, nil })
	})
	assert.Panics(t, func() { Register("nil-open", nil) })

	_, err = Open(context.Background(), Descriptor{Scheme: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "driver", e.Context)
	assert.Contains(t, e.Message, "scripted-test")
}
