package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

// Querier is satisfied by *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var insertPattern = regexp.MustCompile(`(?is)^\s*INSERT\s+`)

// IsInsert reports whether query starts with the INSERT keyword, ignoring
// case and leading whitespace.
func IsInsert(query string) bool {
	return insertPattern.MatchString(query)
}

// Run executes one statement on q and shapes its result.
//
// The statement kind is decided in a fixed order: INSERT text yields the
// last insert id; a result without columns yields the affected-row count,
// read back with rowCountQuery on the same connection; anything else is a
// selection. An INSERT ... SELECT therefore counts as an insert.
func Run(ctx context.Context, q Querier, query, rowCountQuery string) (Result, error) {
	if IsInsert(query) {
		res, err := q.ExecContext(ctx, query)
		if err != nil {
			return Result{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return Result{}, fmt.Errorf("failed to read insert id: %w", err)
		}
		return Result{Kind: KindInsertID, InsertID: id}, nil
	}

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return Result{}, err
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return Result{}, fmt.Errorf("failed to get columns: %w", err)
	}

	if len(columns) == 0 {
		// Some drivers only run the statement while stepping the cursor.
		for rows.Next() {
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return Result{}, err
		}
		if err := rows.Close(); err != nil {
			return Result{}, err
		}

		var affected int64
		if err := q.QueryRowContext(ctx, rowCountQuery).Scan(&affected); err != nil {
			return Result{}, fmt.Errorf("failed to read affected rows: %w", err)
		}
		return Result{Kind: KindRowCount, RowsAffected: affected}, nil
	}

	return collectRows(rows, columns)
}

// collectRows materializes every row and closes the cursor.
func collectRows(rows *sql.Rows, columns []string) (Result, error) {
	defer rows.Close()

	resultRows := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return Result{}, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, val := range values {
			if b, ok := val.([]byte); ok {
				values[i] = string(b)
			}
		}
		resultRows = append(resultRows, NewRow(columns, values))
	}

	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("error iterating rows: %w", err)
	}

	if err := rows.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close cursor: %w", err)
	}

	return Result{
		Kind:    KindRows,
		Columns: columns,
		Rows:    resultRows,
	}, nil
}
