package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/ripdb/internal/compiler"
	"github.com/roach88/ripdb/internal/schema"
)

// LoadError represents an error that occurred while loading a schema file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadSchema compiles the CUE declaration file at path. An empty path returns
// the built-in schema.
func LoadSchema(path string) (*schema.Set, error) {
	if path == "" {
		return schema.Default()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema file not found: %s", path), Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading schema file: %v", err), Err: err}
	}

	value := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err), Err: err}
	}

	set, err := compiler.CompileSchema(value)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return set, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeSchemaInvalid,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
			Err:     err,
		}
	}
	return &LoadError{Code: ErrCodeSchemaInvalid, Message: err.Error(), Err: err}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeConfig        = "E002" // Invalid configuration
	ErrCodeUsage         = "E003" // Invalid arguments
	ErrCodeLoadFailed    = "E004" // Schema file read failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeSchemaInvalid = "E008" // Table or index declaration rejected
	ErrCodeOpenFailed    = "E009" // Store could not be opened

	// Store operation errors
	ErrCodeQueryFailed    = "E010" // Statement rejected by SQLite
	ErrCodeRowNotFound    = "E011" // No matching row
	ErrCodeLockContention = "E012" // Commit gave up under lock contention
	ErrCodeDecode         = "E013" // Invalid UTF-8 under the strict decode policy
)
