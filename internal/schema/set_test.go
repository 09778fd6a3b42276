package schema

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestNewIndex_DerivesName(t *testing.T) {
	ix, err := NewIndex("albums", "host, created", "")
	require.NoError(t, err)
	assert.Equal(t, "albums_host_created", ix.Name)
	assert.Equal(t, []string{"host", "created"}, ix.Columns)
	assert.Equal(t, "create index if not exists albums_host_created on albums(host, created)", ix.DDL())
}

func TestNewIndex_ExplicitName(t *testing.T) {
	ix, err := NewIndex("albums", "views", "by_views")
	require.NoError(t, err)
	assert.Equal(t, "create index if not exists by_views on albums(views)", ix.DDL())
}

func TestNewIndex_Errors(t *testing.T) {
	_, err := NewIndex("albums", " , ", "")
	assert.True(t, IsSchemaError(err))

	_, err = NewIndex("albums", "host; drop table albums", "")
	assert.True(t, IsSchemaError(err))

	_, err = NewIndex("albums", "host", "bad-name")
	assert.True(t, IsSchemaError(err))
}

func TestSet_RejectsDuplicateTable(t *testing.T) {
	s := NewSet()
	_, err := s.AddTable("t", "a integer")
	require.NoError(t, err)

	_, err = s.AddTable("T", "b integer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared twice")
}

func TestSet_AddIndexValidatesTableAndColumns(t *testing.T) {
	s := NewSet()
	_, err := s.AddTable("t", "a integer, b text")
	require.NoError(t, err)

	_, err = s.AddIndex("missing", "a", "")
	assert.ErrorContains(t, err, "undeclared table")

	_, err = s.AddIndex("t", "status", "")
	assert.ErrorContains(t, err, "not declared on table t")

	_, err = s.AddIndex("t", "a", "")
	require.NoError(t, err)

	_, err = s.AddIndex("t", "b", "t_a")
	assert.ErrorContains(t, err, "index declared twice")
}

func TestSet_IndexModes(t *testing.T) {
	s := NewSet()
	_, err := s.AddTable("t", "a integer, b integer")
	require.NoError(t, err)
	_, err = s.AddTable("u", "c integer")
	require.NoError(t, err)
	for _, ix := range [][2]string{{"t", "a"}, {"u", "c"}, {"t", "b"}} {
		_, err := s.AddIndex(ix[0], ix[1], "")
		require.NoError(t, err)
	}

	var names []string
	for _, ix := range s.Indexes() {
		names = append(names, ix.Name)
	}
	assert.Equal(t, []string{"t_a", "u_c", "t_b"}, names)

	s.Mode = IndexLastPerTable
	names = nil
	for _, ix := range s.Indexes() {
		names = append(names, ix.Name)
	}
	assert.Equal(t, []string{"u_c", "t_b"}, names)
}

func TestParseIndexMode(t *testing.T) {
	m, err := ParseIndexMode("")
	require.NoError(t, err)
	assert.Equal(t, IndexAll, m)

	m, err = ParseIndexMode("Last-Per-Table")
	require.NoError(t, err)
	assert.Equal(t, IndexLastPerTable, m)

	_, err = ParseIndexMode("some")
	assert.Error(t, err)
}

func TestDefault_Tables(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	var names []string
	for _, table := range s.Tables() {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{"albums", "medias", "urls", "metadata", "sites", "config"}, names)

	tests := []struct {
		table string
		pk    []string
		cols  int
	}{
		{TableAlbums, []string{"name"}, 14},
		{TableMedias, []string{"albumid", "i_index"}, 14},
		{TableURLs, nil, 7},
		{TableMetadata, []string{"albumid", "key"}, 3},
		{TableSites, []string{"host"}, 3},
		{TableConfig, []string{"key"}, 2},
	}
	for _, tt := range tests {
		table, ok := s.Table(tt.table)
		require.True(t, ok, tt.table)
		assert.Equal(t, tt.pk, table.PrimaryKey(), tt.table)
		assert.Len(t, table.Columns, tt.cols, tt.table)
	}

	assert.Len(t, s.Indexes(), 9)
}

func TestDefault_Script(t *testing.T) {
	s := MustDefault()
	newGoldie(t).Assert(t, "default_schema", []byte(s.Script()))
}

func TestDefault_ScriptLastPerTable(t *testing.T) {
	s := MustDefault()
	s.Mode = IndexLastPerTable
	assert.Len(t, s.Indexes(), 3)
	newGoldie(t).Assert(t, "default_schema_last_per_table", []byte(s.Script()))
}
