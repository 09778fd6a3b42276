package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Insert adds one row to table, binding values positionally in the table's
// declared column order. It returns the new row's rowid. The write stays
// uncommitted until Commit.
//
// When table belongs to the store's schema set the number of values is
// checked against its column count before anything is sent to SQLite.
func (s *Store) Insert(ctx context.Context, table string, values ...any) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if t, ok := s.set.Table(table); ok && len(values) != len(t.Columns) {
		return 0, &QueryError{
			Op:    "insert",
			Table: table,
			Err:   fmt.Errorf("got %d values for %d columns", len(values), len(t.Columns)),
		}
	}
	if len(values) == 0 {
		return 0, &QueryError{Op: "insert", Table: table, Err: errors.New("no values")}
	}

	if err := s.begin(ctx); err != nil {
		return 0, &QueryError{Op: "insert", Table: table, Err: err}
	}

	query := fmt.Sprintf("insert into %s values (%s)", table, placeholders(len(values)))
	result, err := s.conn.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, &QueryError{Op: "insert", Table: table, Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, &QueryError{Op: "insert", Table: table, Err: err}
	}
	return id, nil
}

// Count returns the number of rows in table matching where. An empty where
// counts every row.
func (s *Store) Count(ctx context.Context, table, where string, params ...any) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}

	var n int64
	err := s.conn.QueryRowContext(ctx, selectQuery("count(*)", table, where), params...).Scan(&n)
	if err != nil {
		return 0, &QueryError{Op: "count", Table: table, Err: err}
	}
	return n, nil
}

// Select runs "select projection from table [where ...]" and returns a lazy,
// forward-only iterator over the result. The caller must Close it.
func (s *Store) Select(ctx context.Context, projection, table, where string, params ...any) (*Rows, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.query(ctx, "select", projection, table, where, params)
}

// SelectOne returns the first column of the first matching row. It returns
// ErrNotFound when nothing matches, never a nil placeholder.
func (s *Store) SelectOne(ctx context.Context, projection, table, where string, params ...any) (any, error) {
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.query(ctx, "select_one", projection, table, where, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, &QueryError{Op: "select_one", Table: table, Err: ErrNotFound}
	}

	values, err := rows.Values()
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

func (s *Store) query(ctx context.Context, op, projection, table, where string, params []any) (*Rows, error) {
	rows, err := s.conn.QueryContext(ctx, selectQuery(projection, table, where), params...)
	if err != nil {
		return nil, &QueryError{Op: op, Table: table, Err: err}
	}

	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, &QueryError{Op: op, Table: table, Err: err}
	}

	return &Rows{rows: rows, op: op, table: table, columns: cols, decode: s.decode}, nil
}

// Update applies assignments ("ready = 1, path = ?") to every row matching
// where. params bind the placeholders of assignments first, then where.
// The write stays uncommitted until Commit.
func (s *Store) Update(ctx context.Context, table, assignments, where string, params ...any) error {
	if s.closed {
		return ErrClosed
	}
	if strings.TrimSpace(where) == "" {
		return &QueryError{Op: "update", Table: table, Err: errors.New("empty where clause")}
	}

	if err := s.begin(ctx); err != nil {
		return &QueryError{Op: "update", Table: table, Err: err}
	}

	query := fmt.Sprintf("update %s set %s where %s", table, assignments, where)
	if _, err := s.conn.ExecContext(ctx, query, params...); err != nil {
		return &QueryError{Op: "update", Table: table, Err: err}
	}
	return nil
}

// Delete removes every row matching where. The write stays uncommitted until
// Commit.
func (s *Store) Delete(ctx context.Context, table, where string, params ...any) error {
	if s.closed {
		return ErrClosed
	}
	if strings.TrimSpace(where) == "" {
		return &QueryError{Op: "delete", Table: table, Err: errors.New("empty where clause")}
	}

	if err := s.begin(ctx); err != nil {
		return &QueryError{Op: "delete", Table: table, Err: err}
	}

	query := fmt.Sprintf("delete from %s where %s", table, where)
	if _, err := s.conn.ExecContext(ctx, query, params...); err != nil {
		return &QueryError{Op: "delete", Table: table, Err: err}
	}
	return nil
}

func selectQuery(projection, table, where string) string {
	query := fmt.Sprintf("select %s from %s", projection, table)
	if strings.TrimSpace(where) != "" {
		query += " where " + where
	}
	return query
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
