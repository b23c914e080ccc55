// Package search exposes relevance-ranked full-text queries over the
// sneakers_fts index.
//
// The index is declared in external content mode over the sneakers
// table with a porter/unicode61 tokenizer, so queries match stemmed and
// diacritic-stripped variants of catalog terms. Ranking is the bm25
// weighting persisted by the schema: name 5.0, brand 3.0, silhouette
// 2.0, colorway 1.0, sku 1.0.
package search

import (
	"context"
	"database/sql"
	"fmt"

	cerrors "github.com/alexpicon/sneakerdb/internal/errors"
	"github.com/alexpicon/sneakerdb/pkg/types"
)

// DefaultLimit caps result sets when the caller passes limit <= 0.
const DefaultLimit = 25

// Index runs queries against sneakers_fts. Reads go to the read pool;
// maintenance commands go through the single write connection.
type Index struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// NewIndex creates an Index over the store's connections.
func NewIndex(readDB, writeDB *sql.DB) *Index {
	return &Index{readDB: readDB, writeDB: writeDB}
}

// Query returns up to limit SKUs matching text, best match first.
// Scores are positive and descending (negated SQLite rank).
func (ix *Index) Query(ctx context.Context, text string, limit int) ([]types.SearchResult, error) {
	match := BuildMatchQuery(text)
	if match == "" {
		return nil, cerrors.NewValidationError(cerrors.CodeEmptyQuery, "search query must contain at least one term")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := ix.readDB.QueryContext(ctx,
		`SELECT sku, rank FROM sneakers_fts WHERE sneakers_fts MATCH ? ORDER BY rank LIMIT ?`,
		match, limit)
	if err != nil {
		return nil, cerrors.NewSearchError(cerrors.CodeQuerySyntax,
			fmt.Sprintf("full-text query failed for %q", text), err)
	}
	defer rows.Close()

	var results []types.SearchResult
	for rows.Next() {
		var r types.SearchResult
		var rank float64
		if err := rows.Scan(&r.SKU, &rank); err != nil {
			return nil, cerrors.NewInternalError("failed to scan search result", err)
		}
		r.Score = -rank
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.NewInternalError("search result scan failed", err)
	}
	return results, nil
}

// Rebuild repopulates the whole index from the sneakers table. This is
// the bulk-load and recovery path; per-row writes keep the index in
// sync on their own.
func (ix *Index) Rebuild(ctx context.Context) error {
	if _, err := ix.writeDB.ExecContext(ctx,
		`INSERT INTO sneakers_fts(sneakers_fts) VALUES('rebuild')`); err != nil {
		return cerrors.NewSearchError(cerrors.CodeIndexCorrupted, "failed to rebuild search index", err)
	}
	return nil
}

// Optimize merges the index's b-trees into a single one. Worth running
// after a bulk load.
func (ix *Index) Optimize(ctx context.Context) error {
	if _, err := ix.writeDB.ExecContext(ctx,
		`INSERT INTO sneakers_fts(sneakers_fts) VALUES('optimize')`); err != nil {
		return cerrors.NewSearchError(cerrors.CodeIndexCorrupted, "failed to optimize search index", err)
	}
	return nil
}

// IntegrityCheck verifies the index against its external content table.
// Returns an INDEX_CORRUPTED error when they have diverged.
func (ix *Index) IntegrityCheck(ctx context.Context) error {
	// The command is phrased as an INSERT, so it must go through the
	// writable connection even though it only reads.
	if _, err := ix.writeDB.ExecContext(ctx,
		`INSERT INTO sneakers_fts(sneakers_fts, rank) VALUES('integrity-check', 1)`); err != nil {
		return cerrors.NewSearchError(cerrors.CodeIndexCorrupted, "search index out of sync with sneakers", err)
	}
	return nil
}
