package store

import (
	"database/sql"
	"iter"
)

// Rows is a lazy, forward-only iterator over a Select result. It is not
// restartable; run Select again to read the rows a second time. Text values
// pass through the store's DecodePolicy.
//
// An open Rows holds a read lock on the database file. Close it promptly.
type Rows struct {
	rows    *sql.Rows
	op      string
	table   string
	columns []string
	decode  DecodePolicy
	err     error
}

// Columns returns the result column names.
func (r *Rows) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Next advances to the next row. It returns false at the end of the result
// or on error; check Err afterwards.
func (r *Rows) Next() bool {
	if r.err != nil {
		return false
	}
	return r.rows.Next()
}

// Values returns the current row as an ordered tuple matching the projection.
func (r *Rows) Values() ([]any, error) {
	values := make([]any, len(r.columns))
	ptrs := make([]any, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, r.fail(err)
	}

	for i, v := range values {
		decoded, err := r.decode.value(v)
		if err != nil {
			return nil, r.fail(err)
		}
		values[i] = decoded
	}
	return values, nil
}

// Scan copies the current row into dest, like sql.Rows.Scan. Destinations of
// type *string pass through the DecodePolicy.
func (r *Rows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return r.fail(err)
	}
	for _, d := range dest {
		sp, ok := d.(*string)
		if !ok {
			continue
		}
		decoded, err := r.decode.text(*sp)
		if err != nil {
			return r.fail(err)
		}
		*sp = decoded
	}
	return nil
}

// Err returns the error, if any, that stopped iteration.
func (r *Rows) Err() error {
	if r.err != nil {
		return r.err
	}
	if err := r.rows.Err(); err != nil {
		return &QueryError{Op: r.op, Table: r.table, Err: err}
	}
	return nil
}

// Close releases the result and its read lock. Calling it more than once is
// safe.
func (r *Rows) Close() error {
	return r.rows.Close()
}

// All iterates the remaining rows and closes r when done. Iteration stops at
// the first error, which is yielded with a nil row.
func (r *Rows) All() iter.Seq2[[]any, error] {
	return func(yield func([]any, error) bool) {
		defer r.Close()
		for r.Next() {
			values, err := r.Values()
			if !yield(values, err) || err != nil {
				return
			}
		}
		if err := r.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func (r *Rows) fail(err error) error {
	r.err = &QueryError{Op: r.op, Table: r.table, Err: err}
	return r.err
}
