package database

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// ResultKind tells which variant a Result holds.
type ResultKind int

const (
	// KindInsertID is the last auto-generated id after an INSERT.
	KindInsertID ResultKind = iota + 1
	// KindRowCount is the affected-row count of a statement without columns.
	KindRowCount
	// KindRows is a materialized selection.
	KindRows
)

func (k ResultKind) String() string {
	switch k {
	case KindInsertID:
		return "insert-id"
	case KindRowCount:
		return "row-count"
	case KindRows:
		return "rows"
	default:
		return fmt.Sprintf("result(%d)", int(k))
	}
}

// Result is the outcome of one executed statement.
type Result struct {
	Kind         ResultKind
	InsertID     int64
	RowsAffected int64
	// Columns are the result-set column names in order. Only set for KindRows.
	Columns []string
	Rows    []Row
}

// Value returns the variant held by r: an int64 for KindInsertID and
// KindRowCount, []Row for KindRows.
func (r Result) Value() any {
	switch r.Kind {
	case KindInsertID:
		return r.InsertID
	case KindRowCount:
		return r.RowsAffected
	default:
		return r.Rows
	}
}

// Scalar returns the first column of the only row of a selection as an int64.
// It is used to read back single-value queries such as row totals.
func (r Result) Scalar() (int64, error) {
	if r.Kind != KindRows {
		return 0, fmt.Errorf("expected a selection, got %s", r.Kind)
	}
	if len(r.Rows) != 1 || r.Rows[0].Len() == 0 {
		return 0, fmt.Errorf("expected one row with one column, got %d rows", len(r.Rows))
	}
	v := r.Rows[0].Values()[0]
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("failed to convert %v to integer: %w", v, err)
	}
	return n, nil
}

// Row maps column names to values and keeps result-set column order.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow builds a row from parallel column and value slices. A repeated
// column name keeps its first position and takes the later value.
func NewRow(columns []string, values []any) Row {
	r := Row{
		keys:   make([]string, 0, len(columns)),
		values: make(map[string]any, len(columns)),
	}
	for i, col := range columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.Set(col, v)
	}
	return r
}

// Set assigns a column value, appending the column if it is new.
func (r *Row) Set(col string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[col]; !ok {
		r.keys = append(r.keys, col)
	}
	r.values[col] = v
}

// Get returns the value of a column.
func (r Row) Get(col string) (any, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Keys returns the column names in order.
func (r Row) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Values returns the values in column order.
func (r Row) Values() []any {
	out := make([]any, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.values[k]
	}
	return out
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.keys)
}

// Map returns an unordered copy of the row.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the row as an object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal column %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
