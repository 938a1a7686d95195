package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform(t *testing.T) {
	a := &Adapter{}

	got, err := a.Transform("SELECT id FROM t LIMIT 5", database.PrepareTotal)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t LIMIT 5", got)

	got, err = a.Transform("UPDATE t SET a = 1", database.PrepareTotal)
	assert.ErrorIs(t, err, database.ErrNotApplicable)
	assert.Equal(t, "UPDATE t SET a = 1", got)

	_, err = a.Transform("DELETE FROM t", database.RetrieveTotal)
	assert.ErrorIs(t, err, database.ErrNotApplicable)
}

func TestCountQuery(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{
			query: "SELECT id FROM t ORDER BY id LIMIT 10",
			want:  "SELECT COUNT(*) FROM (SELECT id FROM t ORDER BY id)",
		},
		{
			query: "select id from t limit 10 offset 20;",
			want:  "SELECT COUNT(*) FROM (select id from t)",
		},
		{
			query: "SELECT id FROM t LIMIT 20, 10",
			want:  "SELECT COUNT(*) FROM (SELECT id FROM t)",
		},
		{
			query: "SELECT * FROM (SELECT id FROM t LIMIT 3) x",
			want:  "SELECT COUNT(*) FROM (SELECT * FROM (SELECT id FROM t LIMIT 3) x)",
		},
		{
			query: "SELECT id FROM t WHERE note = 'LIMIT 1' AND id > 2",
			want:  "SELECT COUNT(*) FROM (SELECT id FROM t WHERE note = 'LIMIT 1' AND id > 2)",
		},
		{
			query: "SELECT id FROM t LIMIT (SELECT n FROM page) OFFSET (SELECT o FROM page)",
			want:  "SELECT COUNT(*) FROM (SELECT id FROM t)",
		},
		{
			query: "SELECT id FROM t WHERE id IN (SELECT id FROM u LIMIT 5)",
			want:  "SELECT COUNT(*) FROM (SELECT id FROM t WHERE id IN (SELECT id FROM u LIMIT 5))",
		},
		{
			query: "SELECT id FROM t WHERE id IN (SELECT id FROM u LIMIT 5) LIMIT abs(-2)",
			want:  "SELECT COUNT(*) FROM (SELECT id FROM t WHERE id IN (SELECT id FROM u LIMIT 5))",
		},
		{
			query: "SELECT \"(\" AS p FROM t -- don't (\nLIMIT 2",
			want:  "SELECT COUNT(*) FROM (SELECT \"(\" AS p FROM t)",
		},
		{
			query: "SELECT id FROM t WHERE note = ';' -- trailing\n;",
			want:  "SELECT COUNT(*) FROM (SELECT id FROM t WHERE note = ';')",
		},
		{
			query: "WITH x AS (SELECT 1) SELECT * FROM x",
			want:  "SELECT COUNT(*) FROM (WITH x AS (SELECT 1) SELECT * FROM x)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, countQuery(tt.query))
		})
	}
}

func TestPaginate(t *testing.T) {
	a := openMemory(t)
	seed(t, a)
	for i := 0; i < 7; i++ {
		mustExec(t, a, fmt.Sprintf("INSERT INTO users (name) VALUES ('user%d')", i))
	}

	res, total, err := database.Paginate(context.Background(), a, "SELECT name FROM users ORDER BY id LIMIT 3 OFFSET 2")
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, res.Rows, 3)
	v, _ := res.Rows[0].Get("name")
	assert.Equal(t, "user2", v)

	res, total, err = database.Paginate(context.Background(), a, "SELECT name FROM users ORDER BY id LIMIT (SELECT 2)")
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Len(t, res.Rows, 2)

	res, total, err = database.Paginate(context.Background(), a, "PRAGMA table_info(users)")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, res.Rows, 2)
}
