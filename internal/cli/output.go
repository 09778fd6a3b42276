package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roach88/ripdb/internal/schema"
	"github.com/roach88/ripdb/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failed (row not found, lock contention)
	ExitCommandError = 2 // Command error (bad config, schema, arguments, statement)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// RowSet is the JSON payload of a select.
type RowSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Rows outputs a result set: a tab-aligned table in text mode.
func (f *OutputFormatter) Rows(rs RowSet) error {
	if f.Format == "json" {
		if rs.Rows == nil {
			rs.Rows = [][]any{}
		}
		return f.Success(rs)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	for i, col := range rs.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)
	for _, row := range rs.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, textValue(v))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func textValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("x'%x'", v)
	default:
		return fmt.Sprint(v)
	}
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail reports err through the formatter and returns the matching ExitError.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := classify(err)

	message := err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		message = loadErr.Message
	}

	_ = f.Error(code, message, details(err))
	return WrapExitError(exit, code, err)
}

// classify maps an error to its error code and exit code.
func classify(err error) (string, int) {
	var (
		loadErr   *LoadError
		decodeErr *store.DecodeError
		queryErr  *store.QueryError
		exitErr   *ExitError
	)
	switch {
	case errors.As(err, &loadErr):
		return loadErr.Code, ExitCommandError
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeRowNotFound, ExitFailure
	case errors.Is(err, store.ErrLockContention):
		return ErrCodeLockContention, ExitFailure
	case errors.As(err, &decodeErr):
		return ErrCodeDecode, ExitFailure
	case schema.IsSchemaError(err):
		return ErrCodeSchemaInvalid, ExitCommandError
	case errors.As(err, &queryErr):
		return ErrCodeQueryFailed, ExitCommandError
	case errors.As(err, &exitErr):
		return ErrCodeUsage, exitErr.Code
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}

// details returns structured context for the JSON error payload.
func details(err error) any {
	var queryErr *store.QueryError
	if errors.As(err, &queryErr) {
		return map[string]string{"op": queryErr.Op, "table": queryErr.Table}
	}
	var lockErr *store.LockContentionError
	if errors.As(err, &lockErr) {
		return map[string]int{"attempts": lockErr.Attempts}
	}
	return nil
}
