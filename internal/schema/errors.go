package schema

import (
	"errors"
	"fmt"
)

// SchemaError reports a table or index description that cannot be compiled.
// It is fatal at store open time.
type SchemaError struct {
	Table   string // table (or index) being compiled
	Clause  string // offending clause, empty when the whole description is at fault
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Clause != "" {
		return fmt.Sprintf("schema %s: %s: %q", e.Table, e.Message, e.Clause)
	}
	return fmt.Sprintf("schema %s: %s", e.Table, e.Message)
}

// IsSchemaError reports whether err is, or wraps, a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

func schemaErr(table, clause, format string, args ...any) *SchemaError {
	return &SchemaError{
		Table:   table,
		Clause:  clause,
		Message: fmt.Sprintf(format, args...),
	}
}
