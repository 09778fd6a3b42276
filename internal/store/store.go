package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/roach88/ripdb/internal/schema"
)

// DefaultBusyTimeout is how long SQLite itself waits on a lock before a
// statement fails with SQLITE_BUSY.
const DefaultBusyTimeout = 5 * time.Second

// Store is the process's handle on one database file.
type Store struct {
	db   *sql.DB
	conn *sql.Conn // the only connection; all statements run here
	path string
	id   string

	set         *schema.Set
	committer   *Committer
	decode      DecodePolicy
	log         *slog.Logger
	journalMode string
	busyTimeout time.Duration
	foreignKeys bool

	inTx   bool
	closed bool
}

// Option configures a Store at Open.
type Option func(*Store)

// WithSchema sets the tables and indexes applied at open. Defaults to
// schema.Default().
func WithSchema(set *schema.Set) Option {
	return func(s *Store) {
		s.set = set
	}
}

// WithRetryPolicy sets the commit retry policy. Defaults to
// DefaultRetryPolicy().
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Store) {
		s.committer = NewCommitter(p, nil)
	}
}

// WithDecodePolicy sets how invalid UTF-8 in TEXT values is handled.
// Defaults to DecodeIgnore.
func WithDecodePolicy(p DecodePolicy) Option {
	return func(s *Store) {
		s.decode = p
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithJournalMode sets PRAGMA journal_mode (wal, delete, truncate, ...).
func WithJournalMode(mode string) Option {
	return func(s *Store) {
		s.journalMode = mode
	}
}

// WithBusyTimeout sets PRAGMA busy_timeout. Zero makes lock conflicts fail
// immediately, leaving all waiting to the commit retry policy.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.busyTimeout = d
	}
}

// WithForeignKeys turns PRAGMA foreign_keys on or off.
func WithForeignKeys(on bool) Option {
	return func(s *Store) {
		s.foreignKeys = on
	}
}

// Open opens or creates the database file at path, applies the schema set and
// commits. Any failure closes the handle; the returned error is fatal for
// startup.
//
// Open is idempotent: every statement it applies uses "if not exists", so
// repeated opens by repeated process launches neither fail nor duplicate
// structures.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:        path,
		id:          uuid.Must(uuid.NewV7()).String(),
		decode:      DecodeIgnore,
		journalMode: "wal",
		busyTimeout: DefaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "db", "store", s.id)

	if s.committer == nil {
		s.committer = NewCommitter(DefaultRetryPolicy(), s.log)
	} else {
		s.committer.log = s.log
	}
	if err := s.committer.policy.Validate(); err != nil {
		return nil, err
	}

	if s.set == nil {
		set, err := schema.Default()
		if err != nil {
			return nil, fmt.Errorf("default schema: %w", err)
		}
		s.set = set
	}

	if _, err := os.Stat(path); err == nil {
		s.log.Debug("connecting to database file", "path", path)
	} else {
		s.log.Debug("database file not found, creating", "path", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; the Store pins a single connection so that
	// transaction state lives on a known connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	s.conn = conn

	if err := s.applyPragmas(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := s.applySchema(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s.log.Debug("database ready", "path", path,
		"tables", len(s.set.Tables()), "indexes", len(s.set.Indexes()))
	return s, nil
}

// Close rolls back uncommitted writes and closes the connection. Calling it
// more than once is safe.
func (s *Store) Close() error {
	if s.closed || s.db == nil {
		return nil
	}
	s.closed = true

	var errs []error
	if s.inTx {
		s.log.Warn("closing with uncommitted writes, rolling back")
		if _, err := s.conn.ExecContext(context.Background(), "rollback"); err != nil {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
		s.inTx = false
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ID returns the instance id attached to this Store's log lines.
func (s *Store) ID() string {
	return s.id
}

// Schema returns the schema set applied at open.
func (s *Store) Schema() *schema.Set {
	return s.set
}

// InTransaction reports whether uncommitted writes are pending.
func (s *Store) InTransaction() bool {
	return s.inTx
}

// Commit makes pending writes durable, retrying lock contention according to
// the store's RetryPolicy. It is a no-op when nothing is pending.
func (s *Store) Commit(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if !s.inTx {
		return nil
	}

	_, err := s.committer.Run(ctx, func(ctx context.Context) error {
		_, err := s.conn.ExecContext(ctx, "commit")
		return err
	})
	if err != nil {
		// A busy commit keeps the transaction; other failures may have
		// rolled it back. Ask SQLite which one happened.
		s.syncTxState(ctx)
		return fmt.Errorf("commit: %w", err)
	}

	s.inTx = false
	return nil
}

// Rollback discards pending writes. It is a no-op when nothing is pending.
func (s *Store) Rollback(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if !s.inTx {
		return nil
	}
	if _, err := s.conn.ExecContext(ctx, "rollback"); err != nil {
		s.syncTxState(ctx)
		return fmt.Errorf("rollback: %w", err)
	}
	s.inTx = false
	return nil
}

// begin opens the write transaction if none is pending.
func (s *Store) begin(ctx context.Context) error {
	if s.inTx {
		return nil
	}
	if _, err := s.conn.ExecContext(ctx, "begin"); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	s.inTx = true
	return nil
}

// syncTxState reads SQLite's autocommit flag to learn whether a transaction
// survived a failed statement.
func (s *Store) syncTxState(ctx context.Context) {
	_ = s.conn.Raw(func(driverConn any) error {
		if c, ok := driverConn.(*sqlite3.SQLiteConn); ok {
			s.inTx = !c.AutoCommit()
		}
		return nil
	})
}

// applyPragmas sets connection configuration.
func (s *Store) applyPragmas(ctx context.Context) error {
	fk := "OFF"
	if s.foreignKeys {
		fk = "ON"
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds()),
		fmt.Sprintf("PRAGMA foreign_keys = %s", fk),
	}
	if s.journalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA journal_mode = %s", strings.ToUpper(s.journalMode)))
	}

	for _, pragma := range pragmas {
		if _, err := s.conn.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates every table, then every index, in one transaction.
// This function is idempotent.
func (s *Store) applySchema(ctx context.Context) error {
	if err := s.begin(ctx); err != nil {
		return err
	}

	for _, stmt := range s.set.Statements() {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w\n%s", err, stmt)
		}
	}

	return s.Commit(ctx)
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.conn.QueryRowContext(context.Background(), query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
