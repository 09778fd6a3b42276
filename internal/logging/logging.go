// Package logging builds the slog.Logger shared by the CLI and the store.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// TimeFormat is time.TimeOnly plus milliseconds.
const TimeFormat = "15:04:05.000"

// New returns a logger writing to stderr at the given level.
func New(level slog.Leveler) *slog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter returns a colored tint logger when w is a terminal and a plain
// slog text logger otherwise.
func NewWriter(w io.Writer, level slog.Leveler) *slog.Logger {
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		return slog.New(tint.NewHandler(colorable.NewColorable(f), &tint.Options{
			Level:      level,
			TimeFormat: TimeFormat,
		}))
	}

	// systemd stamps its own time.
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
