package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// KeyKind classifies a table constraint clause.
type KeyKind string

const (
	KeyPrimary KeyKind = "primary"
	KeyForeign KeyKind = "foreign"
	KeyUnique  KeyKind = "unique"
	KeyCheck   KeyKind = "check"
	// KeyOther is any clause that follows the first table constraint but
	// does not start with a constraint keyword. It is passed through as-is.
	KeyOther KeyKind = "other"
)

// ColumnDef is one column of a table. Type is opaque and may carry column
// constraints ("text primary key").
type ColumnDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// KeyConstraint is one table constraint, kept as a single unsplit clause.
type KeyConstraint struct {
	Kind       KeyKind  `json:"kind"`
	Clause     string   `json:"clause"`
	Columns    []string `json:"columns,omitempty"`
	RefTable   string   `json:"ref_table,omitempty"`
	RefColumns []string `json:"ref_columns,omitempty"`
}

// TableSchema is a compiled table. It is immutable once returned by
// CompileTable.
type TableSchema struct {
	Name    string          `json:"name"`
	Columns []ColumnDef     `json:"columns"`
	Keys    []KeyConstraint `json:"keys,omitempty"`
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var (
	primaryRe = regexp.MustCompile(`(?is)^primary\s+key\s*\(([^)]*)\)`)
	uniqueRe  = regexp.MustCompile(`(?is)^unique\s*\(([^)]*)\)`)
	foreignRe = regexp.MustCompile(`(?is)^foreign\s+key\s*\(([^)]*)\)\s*references\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?:\(([^)]*)\))?`)
)

// keyTokens are the leading tokens that open the constraint group.
var keyTokens = map[string]KeyKind{
	"primary": KeyPrimary,
	"foreign": KeyForeign,
	"unique":  KeyUnique,
	"check":   KeyCheck,
}

// CompileTable compiles a flat description into a TableSchema.
//
// Returns *SchemaError if the name is not an identifier, a clause is empty,
// parentheses or quotes never balance, a key clause is malformed, a column
// repeats, or a key names a column the table does not declare.
func CompileTable(name, desc string) (*TableSchema, error) {
	if !identRe.MatchString(name) {
		return nil, schemaErr(name, "", "table name is not an identifier")
	}
	if strings.TrimSpace(desc) == "" {
		return nil, schemaErr(name, "", "empty description")
	}

	clauses, err := splitClauses(name, desc)
	if err != nil {
		return nil, err
	}

	t := &TableSchema{Name: name}
	seen := make(map[string]bool)
	inKeys := false

	for _, clause := range clauses {
		if clause == "" {
			return nil, schemaErr(name, clause, "empty clause")
		}

		kind, isKey := keyTokens[leadingToken(clause)]
		if isKey {
			inKeys = true
		}

		if !inKeys {
			col, err := parseColumn(name, clause)
			if err != nil {
				return nil, err
			}
			lower := strings.ToLower(col.Name)
			if seen[lower] {
				return nil, schemaErr(name, clause, "duplicate column %s", col.Name)
			}
			seen[lower] = true
			t.Columns = append(t.Columns, col)
			continue
		}

		if !isKey {
			kind = KeyOther
		}
		key, err := parseKey(name, kind, clause)
		if err != nil {
			return nil, err
		}
		t.Keys = append(t.Keys, key)
	}

	if len(t.Columns) == 0 {
		return nil, schemaErr(name, "", "no columns declared")
	}

	for _, key := range t.Keys {
		for _, col := range key.Columns {
			if !seen[strings.ToLower(col)] {
				return nil, schemaErr(name, key.Clause, "key references unknown column %s", col)
			}
		}
	}

	return t, nil
}

func parseColumn(table, clause string) (ColumnDef, error) {
	fields := strings.Fields(clause)
	if len(fields) == 0 {
		return ColumnDef{}, schemaErr(table, clause, "column has no name")
	}
	colName := fields[0]
	if !identRe.MatchString(colName) {
		return ColumnDef{}, schemaErr(table, clause, "column name %q is not an identifier", colName)
	}
	return ColumnDef{
		Name: colName,
		Type: strings.TrimSpace(strings.TrimPrefix(clause, colName)),
	}, nil
}

func parseKey(table string, kind KeyKind, clause string) (KeyConstraint, error) {
	key := KeyConstraint{Kind: kind, Clause: clause}

	switch kind {
	case KeyPrimary:
		m := primaryRe.FindStringSubmatch(clause)
		if m == nil {
			return key, schemaErr(table, clause, "primary key needs a column list")
		}
		key.Columns = splitList(m[1])
	case KeyUnique:
		m := uniqueRe.FindStringSubmatch(clause)
		if m == nil {
			return key, schemaErr(table, clause, "unique constraint needs a column list")
		}
		key.Columns = splitList(m[1])
	case KeyForeign:
		m := foreignRe.FindStringSubmatch(clause)
		if m == nil {
			return key, schemaErr(table, clause, "foreign key needs a column list and a references clause")
		}
		key.Columns = splitList(m[1])
		key.RefTable = m[2]
		key.RefColumns = splitList(m[3])
		if len(key.RefColumns) > 0 && len(key.RefColumns) != len(key.Columns) {
			return key, schemaErr(table, clause, "foreign key has %d columns but references %d",
				len(key.Columns), len(key.RefColumns))
		}
	}

	if (kind == KeyPrimary || kind == KeyUnique || kind == KeyForeign) && len(key.Columns) == 0 {
		return key, schemaErr(table, clause, "%s key has an empty column list", kind)
	}

	return key, nil
}

// Column returns the column with the given name (case-insensitive).
func (t *TableSchema) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// ColumnNames returns the column names in declaration order.
func (t *TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the primary key columns, whether declared as a table
// constraint or inline on a column. Nil means the table only has rowid.
func (t *TableSchema) PrimaryKey() []string {
	for _, k := range t.Keys {
		if k.Kind == KeyPrimary {
			return append([]string(nil), k.Columns...)
		}
	}
	for _, c := range t.Columns {
		if strings.Contains(strings.ToLower(c.Type), "primary key") {
			return []string{c.Name}
		}
	}
	return nil
}

// DDL returns the "create table if not exists" statement for the table.
// Column lines are laid out in a fixed-width column so the output is stable
// and readable; the layout has no meaning to SQLite.
func (t *TableSchema) DDL() string {
	lines := make([]string, 0, len(t.Columns)+len(t.Keys))
	for _, c := range t.Columns {
		lines = append(lines, strings.TrimRight(fmt.Sprintf("  %-16s %s", c.Name, c.Type), " "))
	}
	for _, k := range t.Keys {
		lines = append(lines, "  "+k.Clause)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "create table if not exists %s (\n", t.Name)
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")
	return b.String()
}
