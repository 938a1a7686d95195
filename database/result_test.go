package database

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRow(t *testing.T) {
	t.Run("keeps column order", func(t *testing.T) {
		row := NewRow([]string{"z", "a", "m"}, []any{1, "two", nil})

		assert.Equal(t, []string{"z", "a", "m"}, row.Keys())
		assert.Equal(t, []any{1, "two", nil}, row.Values())
		assert.Equal(t, 3, row.Len())

		v, ok := row.Get("a")
		assert.True(t, ok)
		assert.Equal(t, "two", v)

		_, ok = row.Get("missing")
		assert.False(t, ok)
	})

	t.Run("duplicate column keeps first position and last value", func(t *testing.T) {
		row := NewRow([]string{"id", "name", "id"}, []any{1, "ann", 2})

		assert.Equal(t, []string{"id", "name"}, row.Keys())
		assert.Equal(t, []any{2, "ann"}, row.Values())
	})

	t.Run("short value slice", func(t *testing.T) {
		row := NewRow([]string{"a", "b"}, []any{1})
		assert.Equal(t, []any{1, nil}, row.Values())
	})
}

func TestRowSetOnZeroValue(t *testing.T) {
	var row Row
	row.Set("a", 1)
	row.Set("b", 2)
	row.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, row.Keys())
	assert.Equal(t, map[string]any{"a": 3, "b": 2}, row.Map())
}

func TestRowMarshalJSON(t *testing.T) {
	row := NewRow([]string{"z", "a", "n"}, []any{"x", 1, nil})

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"x","a":1,"n":null}`, string(data))

	data, err = json.Marshal([]Row{row, NewRow(nil, nil)})
	require.NoError(t, err)
	assert.Equal(t, `[{"z":"x","a":1,"n":null},{}]`, string(data))
}

func TestResultValue(t *testing.T) {
	assert.Equal(t, int64(7), Result{Kind: KindInsertID, InsertID: 7}.Value())
	assert.Equal(t, int64(3), Result{Kind: KindRowCount, RowsAffected: 3}.Value())

	rows := []Row{NewRow([]string{"a"}, []any{1})}
	assert.Equal(t, rows, Result{Kind: KindRows, Rows: rows}.Value())
}

func TestResultScalar(t *testing.T) {
	tests := []struct {
		name    string
		result  Result
		want    int64
		wantErr bool
	}{
		{
			name:   "string value",
			result: Result{Kind: KindRows, Rows: []Row{NewRow([]string{"FOUND_ROWS()"}, []any{"42"})}},
			want:   42,
		},
		{
			name:   "integer value",
			result: Result{Kind: KindRows, Rows: []Row{NewRow([]string{"COUNT(*)"}, []any{int64(5)})}},
			want:   5,
		},
		{
			name:    "not a selection",
			result:  Result{Kind: KindRowCount, RowsAffected: 1},
			wantErr: true,
		},
		{
			name:    "no rows",
			result:  Result{Kind: KindRows, Rows: []Row{}},
			wantErr: true,
		},
		{
			name:    "not a number",
			result:  Result{Kind: KindRows, Rows: []Row{NewRow([]string{"v"}, []any{"abc"})}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.result.Scalar()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResultKindString(t *testing.T) {
	assert.Equal(t, "insert-id", KindInsertID.String())
	assert.Equal(t, "row-count", KindRowCount.String())
	assert.Equal(t, "rows", KindRows.String())
}
