package schema

import "strings"

// Table names of the default set.
const (
	TableAlbums   = "albums"
	TableMedias   = "medias"
	TableURLs     = "urls"
	TableMetadata = "metadata"
	TableSites    = "sites"
	TableConfig   = "config"
)

// declaredTables lists the downloader's tables in creation order. albums
// must precede the tables whose foreign keys reference it.
var declaredTables = []struct {
	name string
	desc []string
}{
	{TableAlbums, []string{
		"name       text primary key",
		"url        text",
		"host       text",
		"ready      integer",
		"pending    integer",
		"filesize   integer",
		"path       text",
		"created    integer",
		"modified   integer",
		"accessed   integer",
		"count      integer",
		"zip        text",
		"views      integer",
		"metadata   text",
	}},
	{TableMedias, []string{
		"albumid    integer",
		"i_index    integer",
		"url        text",
		"downloaded integer",
		"saveas     text",
		"type       text",
		"path       text",
		"width      integer",
		"height     integer",
		"filesize   integer",
		"thumb      text",
		"t_width    integer",
		"t_height   integer",
		"metadata   text",
		"foreign key(albumid) references albums(rowid)",
		"primary key(albumid, i_index)",
	}},
	{TableURLs, []string{
		"albumid  integer",
		"i_index  integer",
		"url      text",
		"saveas   text",
		"type     text",
		"metadata text",
		"added    integer",
	}},
	{TableMetadata, []string{
		"albumid integer",
		"key     text",
		"value   text",
		"foreign key(albumid) references albums(rowid)",
		"primary key(albumid, key)",
	}},
	{TableSites, []string{
		"host      text primary key",
		"available integer",
		"message   text",
	}},
	{TableConfig, []string{
		"key   text primary key",
		"value text",
	}},
}

// declaredIndexes lists (table, columns) pairs in declaration order.
var declaredIndexes = [][2]string{
	{TableAlbums, "ready"},
	{TableAlbums, "host"},
	{TableAlbums, "created"},
	{TableAlbums, "accessed"},
	{TableAlbums, "views"},
	{TableMedias, "albumid"},
	{TableMedias, "path"},
	{TableMedias, "url"},
	{TableConfig, "key"},
}

// Default returns the downloader's schema set.
func Default() (*Set, error) {
	s := NewSet()
	for _, t := range declaredTables {
		if _, err := s.AddTable(t.name, strings.Join(t.desc, ",")); err != nil {
			return nil, err
		}
	}
	for _, ix := range declaredIndexes {
		if _, err := s.AddIndex(ix[0], ix[1], ""); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustDefault is like Default but panics on error. The declarations are
// static, so an error here is a programming mistake.
func MustDefault() *Set {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}
