// Package compiler turns CUE schema declarations into a schema.Set.
//
// A declaration file has the form:
//
//	tables: {
//		albums: "name text, url text, primary key(name)"
//		urls:   "albumid integer, url text"
//	}
//	indexes: [
//		{table: "urls", columns: "albumid"},
//		{table: "albums", columns: "url", name: "albums_by_url"},
//	]
//
// Tables are created in declaration order. indexes is optional.
package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/ripdb/internal/schema"
)

// CompileSchema parses a CUE value holding tables and indexes into a Set.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`tables: t: "id integer, primary key(id)"`)
//	set, err := CompileSchema(v)
func CompileSchema(v cue.Value) (*schema.Set, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	set := schema.NewSet()

	tablesVal := v.LookupPath(cue.ParsePath("tables"))
	if !tablesVal.Exists() {
		return nil, &CompileError{
			Field:   "tables",
			Message: "tables is required",
			Pos:     v.Pos(),
		}
	}
	if err := parseTables(set, tablesVal); err != nil {
		return nil, err
	}
	if len(set.Tables()) == 0 {
		return nil, &CompileError{
			Field:   "tables",
			Message: "at least one table is required",
			Pos:     tablesVal.Pos(),
		}
	}

	indexesVal := v.LookupPath(cue.ParsePath("indexes"))
	if indexesVal.Exists() {
		if err := parseIndexes(set, indexesVal); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func parseTables(set *schema.Set, v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		desc, err := iter.Value().String()
		if err != nil {
			return &CompileError{
				Field:   "tables." + name,
				Message: "table description must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		if _, err := set.AddTable(name, desc); err != nil {
			return schemaError("tables."+name, iter.Value().Pos(), err)
		}
	}
	return nil
}

func parseIndexes(set *schema.Set, v cue.Value) error {
	list, err := v.List()
	if err != nil {
		return &CompileError{
			Field:   "indexes",
			Message: "indexes must be a list",
			Pos:     v.Pos(),
		}
	}

	for i := 0; list.Next(); i++ {
		field := fmt.Sprintf("indexes[%d]", i)
		item := list.Value()

		table, err := requiredString(item, field, "table")
		if err != nil {
			return err
		}
		columns, err := requiredString(item, field, "columns")
		if err != nil {
			return err
		}
		name := ""
		if nameVal := item.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
			if name, err = nameVal.String(); err != nil {
				return formatCUEError(err)
			}
		}

		if _, err := set.AddIndex(table, columns, name); err != nil {
			return schemaError(field, item.Pos(), err)
		}
	}
	return nil
}

func requiredString(v cue.Value, field, key string) (string, error) {
	val := v.LookupPath(cue.ParsePath(key))
	if !val.Exists() {
		return "", &CompileError{
			Field:   field + "." + key,
			Message: key + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError is a declaration error with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Err     error // underlying *schema.SchemaError, if any
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// schemaError positions a *schema.SchemaError at the declaring CUE value.
func schemaError(field string, pos token.Pos, err error) error {
	var se *schema.SchemaError
	if !errors.As(err, &se) {
		return err
	}
	return &CompileError{Field: field, Message: se.Error(), Pos: pos, Err: se}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := cueerrors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
