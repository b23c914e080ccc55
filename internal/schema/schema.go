// Package schema holds the authoritative DDL for the sneaker catalog.
//
// The table layout is a fixed external contract: brands and genders are
// reference tables, sneakers is the catalog keyed by SKU, images_360
// holds ordered rotation frames, and sneakers_fts is an external-content
// FTS5 index over the searchable text columns.
package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// DDL creates every catalog table. All statements are idempotent so the
// script can run against an existing database without clobbering data.
const DDL = `
CREATE TABLE IF NOT EXISTS brands (
    brand TEXT NOT NULL PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS genders (
    gender TEXT NOT NULL PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS sneakers (
    sku                  TEXT NOT NULL PRIMARY KEY,
    brand                TEXT NOT NULL REFERENCES brands(brand),
    colorway             TEXT,
    estimatedMarketValue INTEGER,
    gender               TEXT NOT NULL REFERENCES genders(gender),
    image_original       TEXT,
    image_small          TEXT,
    image_thumbnail      TEXT,
    link_flightClub      TEXT,
    link_goat            TEXT,
    link_stadiumGoods    TEXT,
    link_stockX          TEXT,
    name                 TEXT,
    releaseDate          DATE,
    releaseYear          INTEGER CHECK (releaseYear >= 0),
    retailPrice          INTEGER,
    silhouette           TEXT,
    story                TEXT
);

CREATE TABLE IF NOT EXISTS images_360 (
    sku      TEXT NOT NULL REFERENCES sneakers(sku),
    position INTEGER NOT NULL,
    image    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_images_360_sku ON images_360(sku, position);

CREATE VIRTUAL TABLE IF NOT EXISTS sneakers_fts USING fts5(
    name, brand, silhouette, colorway, sku,
    content='sneakers',
    tokenize='porter unicode61 remove_diacritics 2'
);
`

// RankConfig persists the default bm25 weighting for sneakers_fts.
// Weights are per column, in declaration order: name matches count five
// times a colorway or SKU match, brand three times, silhouette twice.
// This is a fixed configuration, not a tunable.
const RankConfig = `INSERT INTO sneakers_fts(sneakers_fts, rank) VALUES('rank', 'bm25(5.0, 3.0, 2.0, 1.0, 1.0)')`

// Apply creates the catalog schema and persists the FTS rank
// configuration. Safe to call on every open.
func Apply(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, DDL); err != nil {
		return fmt.Errorf("schema: failed to create tables: %w", err)
	}
	if _, err := db.ExecContext(ctx, RankConfig); err != nil {
		return fmt.Errorf("schema: failed to configure fts rank: %w", err)
	}
	return nil
}

// Tables lists every table the schema owns, in dependency order.
func Tables() []string {
	return []string{"brands", "genders", "sneakers", "images_360", "sneakers_fts"}
}
