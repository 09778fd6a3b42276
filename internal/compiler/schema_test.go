package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ripdb/internal/schema"
)

func TestCompileSchemaBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		tables: {
			t: "id integer, name text, primary key(id)"
			u: "tid integer, label text, foreign key(tid) references t(id)"
		}
		indexes: [
			{table: "u", columns: "tid"},
			{table: "t", columns: "name", name: "t_by_name"},
		]
	`)
	require.NoError(t, v.Err())

	set, err := CompileSchema(v)
	require.NoError(t, err)

	tables := set.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "t", tables[0].Name)
	assert.Equal(t, "u", tables[1].Name)
	assert.Equal(t, []string{"id", "name"}, tables[0].ColumnNames())
	assert.Len(t, tables[0].Keys, 1)

	indexes := set.Indexes()
	require.Len(t, indexes, 2)
	assert.Equal(t, "u_tid", indexes[0].Name)
	assert.Equal(t, "t_by_name", indexes[1].Name)
}

func TestCompileSchemaWithoutIndexes(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`tables: config: "key text, value text, primary key(key)"`)

	set, err := CompileSchema(v)
	require.NoError(t, err)
	assert.Len(t, set.Tables(), 1)
	assert.Empty(t, set.Indexes())
	assert.Len(t, set.Statements(), 1)
}

func TestCompileSchemaDefaultTablesRoundTrip(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		tables: {
			urls: "albumid integer, i_index integer, url text, primary key(albumid, i_index)"
		}
	`)

	set, err := CompileSchema(v)
	require.NoError(t, err)

	urls, ok := set.Table("urls")
	require.True(t, ok)
	assert.Equal(t, []string{"albumid", "i_index"}, urls.PrimaryKey())
}

func TestCompileSchemaMissingTables(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`indexes: []`)

	_, err := CompileSchema(v)
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "tables", compileErr.Field)
	assert.Contains(t, compileErr.Message, "required")
}

func TestCompileSchemaEmptyTables(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`tables: {}`)

	_, err := CompileSchema(v)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Contains(t, compileErr.Message, "at least one table")
}

func TestCompileSchemaNonStringDescription(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`tables: t: 42`)

	_, err := CompileSchema(v)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "tables.t", compileErr.Field)
}

func TestCompileSchemaInvalidDescription(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`tables: t: "id integer, primary key(id"`, cue.Filename("bad.cue"))

	_, err := CompileSchema(v)
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "tables.t", compileErr.Field)
	assert.True(t, compileErr.Pos.IsValid())
	assert.Contains(t, err.Error(), "bad.cue:1:")

	// The schema error stays reachable.
	assert.True(t, schema.IsSchemaError(err))
}

func TestCompileSchemaIndexErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "undeclared table",
			src:   `tables: t: "id integer"` + "\n" + `indexes: [{table: "nope", columns: "id"}]`,
			field: "indexes[0]",
		},
		{
			name:  "unknown column",
			src:   `tables: t: "id integer"` + "\n" + `indexes: [{table: "t", columns: "status"}]`,
			field: "indexes[0]",
		},
		{
			name:  "missing columns",
			src:   `tables: t: "id integer"` + "\n" + `indexes: [{table: "t"}]`,
			field: "indexes[0].columns",
		},
		{
			name:  "duplicate name",
			src:   `tables: t: "id integer"` + "\n" + `indexes: [{table: "t", columns: "id"}, {table: "t", columns: "id"}]`,
			field: "indexes[1]",
		},
		{
			name:  "not a list",
			src:   `tables: t: "id integer"` + "\n" + `indexes: {a: 1}`,
			field: "indexes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := cuecontext.New().CompileString(tt.src)
			require.NoError(t, v.Err())

			_, err := CompileSchema(v)
			var compileErr *CompileError
			require.ErrorAs(t, err, &compileErr)
			assert.Equal(t, tt.field, compileErr.Field)
		})
	}
}

func TestCompileSchemaCUEError(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`tables: t: "a" & "b"`)

	_, err := CompileSchema(v)
	require.Error(t, err)
}
