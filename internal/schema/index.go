package schema

import (
	"fmt"
	"strings"
)

// IndexDef is a single-table index. Name defaults to the table name and the
// columns joined with underscores.
type IndexDef struct {
	Name    string   `json:"name"`
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}

// NewIndex builds an IndexDef from a comma-separated column list. An empty
// name derives one: ("albums", "host,created") becomes "albums_host_created".
func NewIndex(table, columns, name string) (IndexDef, error) {
	if !identRe.MatchString(table) {
		return IndexDef{}, schemaErr(table, "", "table name is not an identifier")
	}

	var cols []string
	for _, c := range strings.Split(columns, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !identRe.MatchString(c) {
			return IndexDef{}, schemaErr(table, columns, "index column %q is not an identifier", c)
		}
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return IndexDef{}, schemaErr(table, columns, "index has no columns")
	}

	if name == "" {
		name = table + "_" + strings.Join(cols, "_")
	} else if !identRe.MatchString(name) {
		return IndexDef{}, schemaErr(table, name, "index name is not an identifier")
	}

	return IndexDef{Name: name, Table: table, Columns: cols}, nil
}

// DDL returns the "create index if not exists" statement.
func (ix IndexDef) DDL() string {
	return fmt.Sprintf("create index if not exists %s on %s(%s)",
		ix.Name, ix.Table, strings.Join(ix.Columns, ", "))
}

// validateAgainst checks that every index column exists on the table.
func (ix IndexDef) validateAgainst(t *TableSchema) error {
	for _, c := range ix.Columns {
		if _, ok := t.Column(c); !ok {
			return schemaErr(ix.Name, c, "index column not declared on table %s", t.Name)
		}
	}
	return nil
}
