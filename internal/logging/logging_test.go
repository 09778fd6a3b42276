package logging

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, slog.LevelInfo)

	log.Info("failed to commit, retrying", "attempt", 2)
	log.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "failed to commit, retrying")
	assert.Contains(t, out, "attempt=2")
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "\x1b[", "no color codes off a terminal")
}

func TestNewWriter_LevelVar(t *testing.T) {
	var buf bytes.Buffer
	level := &slog.LevelVar{}
	level.Set(slog.LevelWarn)
	log := NewWriter(&buf, level)

	log.Info("quiet")
	assert.Empty(t, buf.String())

	level.Set(slog.LevelDebug)
	log.Debug("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNewWriter_DropsTimeUnderSystemd(t *testing.T) {
	t.Setenv("JOURNAL_STREAM", "8:1234")
	var buf bytes.Buffer
	NewWriter(&buf, slog.LevelInfo).Info("msg")

	assert.Equal(t, "level=INFO msg=msg\n", buf.String())
}

func TestNewWriter_FileNotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	defer f.Close()

	NewWriter(f, slog.LevelInfo).Info("to file", "db", "x.db")

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), `msg="to file" db=x.db`)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(t.Context(), slog.LevelError))
}
