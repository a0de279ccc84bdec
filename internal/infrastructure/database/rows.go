package database

import (
	"context"
	"database/sql"
)

// Row is one result row keyed by column name.
//
// Text values arrive from the drivers as []byte and are converted to string.
type Row map[string]any

// querier is the statement surface shared by *sql.Conn and Session. Both
// facades hand one to the executor and the schema ensurer.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// fetchRows runs query with positionally bound params and materializes every
// row. It returns nil (not an empty slice) when the statement yields no rows.
func fetchRows(ctx context.Context, q querier, query string, params []any) ([]Row, error) {
	rows, err := q.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // Close error is surfaced by rows.Err

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, name := range columns {
			row[name] = normalizeValue(values[i])
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// normalizeValue converts driver byte slices to strings.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// legacyShape applies the historical sync result contract: nil for no rows,
// the bare Row for exactly one row, and the slice otherwise.
func legacyShape(rows []Row) any {
	switch len(rows) {
	case 0:
		return nil
	case 1:
		return rows[0]
	default:
		return rows
	}
}
