//go:build !sqlite_fts5

package schema

// The sneakers_fts virtual table needs FTS5 compiled into the bundled
// SQLite, which mattn/go-sqlite3 only includes under the sqlite_fts5
// build tag. Without it every open fails at runtime with
// "no such module: fts5", so fail the build instead.
//
// Build and test with:
//
//	go build -tags sqlite_fts5 ./...
//	go test -tags sqlite_fts5 ./...
var _ = sneakerdb_requires_building_with_tags_sqlite_fts5
