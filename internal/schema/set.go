package schema

import (
	"fmt"
	"strings"
)

// IndexMode selects which declared indexes a Set applies.
type IndexMode string

const (
	// IndexAll applies every declared index.
	IndexAll IndexMode = "all"
	// IndexLastPerTable applies only the last index declared for each table.
	// This reproduces stores whose index declarations were keyed by table
	// name, where later entries replaced earlier ones.
	IndexLastPerTable IndexMode = "last-per-table"
)

// ParseIndexMode parses a mode name. The empty string means IndexAll.
func ParseIndexMode(s string) (IndexMode, error) {
	switch IndexMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", IndexAll:
		return IndexAll, nil
	case IndexLastPerTable:
		return IndexLastPerTable, nil
	default:
		return "", fmt.Errorf("unknown index mode %q (want %s or %s)", s, IndexAll, IndexLastPerTable)
	}
}

// Set is an ordered collection of tables and indexes. Table and index names
// are unique within a Set; declaration order is preserved so the emitted
// statements are deterministic.
type Set struct {
	Mode IndexMode

	tables  []*TableSchema
	byName  map[string]*TableSchema
	indexes []IndexDef
}

// NewSet returns an empty Set applying every index.
func NewSet() *Set {
	return &Set{
		Mode:   IndexAll,
		byName: make(map[string]*TableSchema),
	}
}

// AddTable compiles and registers a table.
func (s *Set) AddTable(name, desc string) (*TableSchema, error) {
	if _, dup := s.byName[strings.ToLower(name)]; dup {
		return nil, schemaErr(name, "", "table declared twice")
	}
	t, err := CompileTable(name, desc)
	if err != nil {
		return nil, err
	}
	s.tables = append(s.tables, t)
	s.byName[strings.ToLower(name)] = t
	return t, nil
}

// AddIndex builds and registers an index on a table already in the Set.
// Declaring two indexes with the same name is an error rather than a silent
// replacement.
func (s *Set) AddIndex(table, columns, name string) (IndexDef, error) {
	ix, err := NewIndex(table, columns, name)
	if err != nil {
		return IndexDef{}, err
	}

	t, ok := s.Table(table)
	if !ok {
		return IndexDef{}, schemaErr(ix.Name, "", "index on undeclared table %s", table)
	}
	if err := ix.validateAgainst(t); err != nil {
		return IndexDef{}, err
	}

	for _, existing := range s.indexes {
		if strings.EqualFold(existing.Name, ix.Name) {
			return IndexDef{}, schemaErr(ix.Name, "", "index declared twice")
		}
	}

	s.indexes = append(s.indexes, ix)
	return ix, nil
}

// Table looks up a table by name (case-insensitive).
func (s *Set) Table(name string) (*TableSchema, bool) {
	t, ok := s.byName[strings.ToLower(name)]
	return t, ok
}

// Tables returns the tables in declaration order.
func (s *Set) Tables() []*TableSchema {
	return append([]*TableSchema(nil), s.tables...)
}

// Indexes returns the indexes the Set applies under its Mode, in declaration
// order.
func (s *Set) Indexes() []IndexDef {
	if s.Mode != IndexLastPerTable {
		return append([]IndexDef(nil), s.indexes...)
	}

	last := make(map[string]int)
	for i, ix := range s.indexes {
		last[strings.ToLower(ix.Table)] = i
	}
	var out []IndexDef
	for i, ix := range s.indexes {
		if last[strings.ToLower(ix.Table)] == i {
			out = append(out, ix)
		}
	}
	return out
}

// Statements returns every DDL statement of the Set: tables first, then
// indexes.
func (s *Set) Statements() []string {
	indexes := s.Indexes()
	stmts := make([]string, 0, len(s.tables)+len(indexes))
	for _, t := range s.tables {
		stmts = append(stmts, t.DDL())
	}
	for _, ix := range indexes {
		stmts = append(stmts, ix.DDL())
	}
	return stmts
}

// Script returns Statements as one SQL script, each statement terminated by
// a semicolon and separated by a blank line.
func (s *Set) Script() string {
	var b strings.Builder
	for i, stmt := range s.Statements() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	return b.String()
}
