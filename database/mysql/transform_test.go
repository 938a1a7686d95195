package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dbsimple/dbsimple-go/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformPrepareTotal(t *testing.T) {
	a := &Adapter{}

	tests := []struct {
		name    string
		query   string
		want    string
		wantErr error
	}{
		{
			name:  "select",
			query: "SELECT foo FROM t WHERE x=1",
			want:  "SELECT SQL_CALC_FOUND_ROWS foo FROM t WHERE x=1",
		},
		{
			name:  "leading whitespace and lowercase",
			query: "\n  select * from t limit 10",
			want:  "\n  select SQL_CALC_FOUND_ROWS * from t limit 10",
		},
		{
			name:  "already prepared",
			query: "SELECT SQL_CALC_FOUND_ROWS * FROM t",
			want:  "SELECT SQL_CALC_FOUND_ROWS * FROM t",
		},
		{
			name:  "directive inside a literal",
			query: "SELECT id FROM t WHERE note = 'SQL_CALC_FOUND_ROWS' LIMIT 1",
			want:  "SELECT SQL_CALC_FOUND_ROWS id FROM t WHERE note = 'SQL_CALC_FOUND_ROWS' LIMIT 1",
		},
		{
			name:  "directive inside a comment",
			query: "SELECT /* SQL_CALC_FOUND_ROWS */ id FROM t",
			want:  "SELECT SQL_CALC_FOUND_ROWS /* SQL_CALC_FOUND_ROWS */ id FROM t",
		},
		{
			name:    "update",
			query:   "UPDATE t SET a = 1",
			want:    "UPDATE t SET a = 1",
			wantErr: database.ErrNotApplicable,
		},
		{
			name:    "selector column is not a select",
			query:   "SELECTOR FROM t",
			want:    "SELECTOR FROM t",
			wantErr: database.ErrNotApplicable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Transform(tt.query, database.PrepareTotal)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformUnknownPhase(t *testing.T) {
	got, err := (&Adapter{}).Transform("SELECT 1", database.Phase("explain"))
	assert.ErrorIs(t, err, database.ErrNotApplicable)
	assert.Equal(t, "SELECT 1", got)
}

func TestTotalFlow(t *testing.T) {
	ctx := context.Background()
	a, mock := newMockAdapter(t, testDescriptor("total_flow"), "10.11.6-MariaDB", "")

	prepared, err := a.Transform("SELECT id FROM t LIMIT 2", database.PrepareTotal)
	require.NoError(t, err)
	require.Equal(t, "SELECT SQL_CALC_FOUND_ROWS id FROM t LIMIT 2", prepared)

	mock.ExpectQuery(prepared).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))
	mock.ExpectQuery(foundRowsQuery).WillReturnRows(sqlmock.NewRows([]string{"FOUND_ROWS()"}).AddRow(int64(17)))

	res, err := a.Execute(ctx, prepared)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)

	totalQuery, err := a.Transform(prepared, database.RetrieveTotal)
	require.NoError(t, err)
	assert.Equal(t, "SELECT FOUND_ROWS()", totalQuery)

	total, err := a.Execute(ctx, totalQuery)
	require.NoError(t, err)
	n, err := total.Scalar()
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)

	// The total has been consumed.
	_, err = a.Transform(prepared, database.RetrieveTotal)
	assert.ErrorIs(t, err, database.ErrPaginationOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTotalOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("without prepared query", func(t *testing.T) {
		a, _ := newMockAdapter(t, testDescriptor("total_none"), "8.0.36", "")

		_, err := a.Transform("SELECT 1", database.RetrieveTotal)
		require.Error(t, err)
		assert.True(t, errors.Is(err, database.ErrStatement))
		assert.True(t, errors.Is(err, database.ErrPaginationOrder))
		assert.Equal(t, foundRowsQuery, a.LastError().Context)
	})

	t.Run("statement in between", func(t *testing.T) {
		a, mock := newMockAdapter(t, testDescriptor("total_between"), "8.0.36", "")
		prepared := "SELECT SQL_CALC_FOUND_ROWS id FROM t LIMIT 1"
		mock.ExpectQuery(prepared).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectQuery("SELECT NOW()").WillReturnRows(sqlmock.NewRows([]string{"NOW()"}).AddRow("2024-01-01 00:00:00"))

		_, err := a.Execute(ctx, prepared)
		require.NoError(t, err)
		_, err = a.Execute(ctx, "SELECT NOW()")
		require.NoError(t, err)

		_, err = a.Transform(prepared, database.RetrieveTotal)
		assert.ErrorIs(t, err, database.ErrPaginationOrder)
	})

	t.Run("unprepared selection mentioning the directive", func(t *testing.T) {
		a, mock := newMockAdapter(t, testDescriptor("total_literal"), "8.0.36", "")
		query := "SELECT id FROM t WHERE note = 'SQL_CALC_FOUND_ROWS' LIMIT 1"
		mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

		_, err := a.Execute(ctx, query)
		require.NoError(t, err)

		_, err = a.Transform(query, database.RetrieveTotal)
		assert.ErrorIs(t, err, database.ErrPaginationOrder)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPaginate(t *testing.T) {
	ctx := context.Background()

	t.Run("select", func(t *testing.T) {
		a, mock := newMockAdapter(t, testDescriptor("paginate_select"), "8.0.36", "")
		mock.ExpectQuery("SELECT SQL_CALC_FOUND_ROWS name FROM users LIMIT 1").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow([]byte("ann")))
		mock.ExpectQuery(foundRowsQuery).WillReturnRows(sqlmock.NewRows([]string{"FOUND_ROWS()"}).AddRow([]byte("3")))

		res, total, err := database.Paginate(ctx, a, "SELECT name FROM users LIMIT 1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, res.Rows, 1)
		v, _ := res.Rows[0].Get("name")
		assert.Equal(t, "ann", v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not applicable", func(t *testing.T) {
		a, mock := newMockAdapter(t, testDescriptor("paginate_show"), "8.0.36", "")
		mock.ExpectQuery("SHOW TABLES").WillReturnRows(sqlmock.NewRows([]string{"Tables_in_app"}).AddRow("a").AddRow("b"))

		res, total, err := database.Paginate(ctx, a, "SHOW TABLES")
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, res.Rows, 2)
	})

	t.Run("unreadable total is recorded", func(t *testing.T) {
		a, mock := newMockAdapter(t, testDescriptor("paginate_unreadable"), "8.0.36", "")
		mock.ExpectQuery("SELECT SQL_CALC_FOUND_ROWS name FROM users LIMIT 1").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow([]byte("ann")))
		mock.ExpectQuery(foundRowsQuery).WillReturnRows(sqlmock.NewRows([]string{"FOUND_ROWS()"}).AddRow([]byte("many")))

		_, _, err := database.Paginate(ctx, a, "SELECT name FROM users LIMIT 1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, database.ErrStatement))

		last := a.LastError()
		require.NotNil(t, last)
		assert.Equal(t, foundRowsQuery, last.Context)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
