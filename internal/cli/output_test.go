package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ripdb/internal/schema"
	"github.com/roach88/ripdb/internal/store"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(CountResult{Table: "albums", Count: 3})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"table": "albums", "count": float64(3)}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	require.NoError(t, formatter.Error(ErrCodeQueryFailed, "no such table: nope", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E010", resp.Error.Code)
	assert.Equal(t, "no such table: nope", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Error("E001", "something broke", map[string]string{"op": "insert"}))
	assert.Equal(t, "Error [E001]: something broke\n", buf.String())

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error("E001", "something broke", map[string]string{"op": "insert"}))
	assert.Contains(t, buf.String(), "Details: map[op:insert]")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Opened %s", "test.db")

			assert.Empty(t, out.String(), "diagnostics never go to stdout")
			if tt.wantLog {
				assert.Equal(t, "Opened test.db\n", errOut.String())
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestOutputFormatter_RowsText(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Rows(RowSet{
		Columns: []string{"host", "available", "message"},
		Rows: [][]any{
			{"example.com", int64(1), nil},
			{"a.io", int64(0), []byte{0xca, 0xfe}},
		},
	})
	require.NoError(t, err)

	want := "host         available  message\n" +
		"example.com  1          NULL\n" +
		"a.io         0          x'cafe'\n"
	assert.Equal(t, want, buf.String())
}

func TestOutputFormatter_RowsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Rows(RowSet{Columns: []string{"url"}}))

	var resp struct {
		Status string `json:"status"`
		Data   RowSet `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, []string{"url"}, resp.Data.Columns)
	assert.NotNil(t, resp.Data.Rows, "an empty result is [] rather than null")
	assert.Empty(t, resp.Data.Rows)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		exit int
	}{
		{"not found", fmt.Errorf("config key %q: %w", "k", store.ErrNotFound), ErrCodeRowNotFound, ExitFailure},
		{"contention", &store.LockContentionError{Attempts: 3}, ErrCodeLockContention, ExitFailure},
		{"decode", &store.QueryError{Op: "select", Table: "t", Err: &store.DecodeError{Value: []byte{0xff}}}, ErrCodeDecode, ExitFailure},
		{"query", &store.QueryError{Op: "insert", Table: "t", Err: errors.New("boom")}, ErrCodeQueryFailed, ExitCommandError},
		{"schema", &schema.SchemaError{Table: "t", Message: "bad"}, ErrCodeSchemaInvalid, ExitCommandError},
		{"load", &LoadError{Code: ErrCodeNotFound, Message: "missing"}, ErrCodeNotFound, ExitCommandError},
		{"other", errors.New("boom"), ErrCodeGeneric, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.exit, exit)
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	cause := &store.QueryError{Op: "insert", Table: "sites", Err: errors.New("UNIQUE constraint failed")}
	err := formatter.Fail(cause)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, cause)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeQueryFailed, resp.Error.Code)
	assert.Equal(t, map[string]any{"op": "insert", "table": "sites"}, resp.Error.Details)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitFailure, "x", errors.New("y")))))
}
