package store

import (
	"context"
	"fmt"

	"github.com/roach88/ripdb/internal/schema"
)

// GetConfig returns the value stored for key. The bool is false when the key
// is absent; a missing key is not an error.
func (s *Store) GetConfig(ctx context.Context, key string) (string, bool, error) {
	if s.closed {
		return "", false, ErrClosed
	}

	rows, err := s.query(ctx, "get_config", "value", schema.TableConfig, "key = ?", []any{key})
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return "", false, rows.Err()
	}

	var value *string
	if err := rows.Scan(&value); err != nil {
		return "", false, err
	}
	if value == nil {
		return "", true, nil
	}

	decoded, err := s.decode.text(*value)
	if err != nil {
		return "", false, &QueryError{Op: "get_config", Table: schema.TableConfig, Err: err}
	}
	return decoded, true, nil
}

// SetConfig stores value under key, replacing any previous value, and
// commits immediately. Pending writes from earlier calls are committed with
// it.
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	if s.closed {
		return ErrClosed
	}

	if err := s.begin(ctx); err != nil {
		return &QueryError{Op: "set_config", Table: schema.TableConfig, Err: err}
	}

	_, err := s.conn.ExecContext(ctx,
		"insert or replace into config (key, value) values (?, ?)", key, value)
	if err != nil {
		return &QueryError{Op: "set_config", Table: schema.TableConfig, Err: err}
	}

	if err := s.Commit(ctx); err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}
