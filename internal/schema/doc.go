// Package schema compiles flat table descriptions into SQLite DDL.
//
// A description is the column/constraint list of a table written as one
// comma-separated string, for example:
//
//	albumid integer, i_index integer, url text,
//	foreign key(albumid) references albums(rowid),
//	primary key(albumid, i_index)
//
// The first clauses are columns. Starting from the first clause whose leading
// token is primary, foreign, unique or check, every remaining clause is a
// table constraint. Commas inside parentheses or quotes never split a clause.
//
// Compilation is pure: nothing here touches a database. Every statement
// produced uses "if not exists" so applying a Set twice is a no-op.
//
// Set holds the tables and indexes an application declares. Default returns
// the set used by the downloader (albums, medias, urls, metadata, sites,
// config).
package schema
