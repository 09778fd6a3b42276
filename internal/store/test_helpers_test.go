package store

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
)

// createTestStore opens a store on a fresh file in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return openTestStore(t, filepath.Join(t.TempDir(), "test.db"), opts...)
}

// openTestStore opens a store on path and closes it at test cleanup.
func openTestStore(t *testing.T, path string, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	s, err := Open(context.Background(), path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// logBuffer collects debug-level log output for assertions.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *logBuffer) logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(b, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// albumRow returns a full albums row for name.
func albumRow(name string) []any {
	return []any{
		name, "http://example.com/" + name, "example.com",
		0, 1, int64(0), "/tmp/" + name, int64(100), int64(100), int64(100),
		0, "", 0, "{}",
	}
}

// urlRow returns a full urls row.
func urlRow(albumID int64, index int, url string) []any {
	return []any{albumID, index, url, "", "image", "{}", int64(1700000000)}
}
