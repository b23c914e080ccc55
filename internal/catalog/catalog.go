// Package catalog implements the sneaker catalog store on SQLite.
//
// A Store holds two connections to the same database file: a single
// write connection (all writes serialize through it, one transaction at
// a time) and a read-only pool for concurrent lookups. Every write that
// touches searchable text maintains the sneakers_fts external-content
// index inside the same transaction, so a committed row and its index
// entry can never diverge.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/alexpicon/sneakerdb/internal/bloom"
	cerrors "github.com/alexpicon/sneakerdb/internal/errors"
	"github.com/alexpicon/sneakerdb/internal/schema"
)

// Options tune store-level behavior.
type Options struct {
	// ExpectedSKUs sizes the bloom filter used to short-circuit lookups
	// of keys that were never inserted.
	ExpectedSKUs int

	// BloomFPR is the target false positive rate for the SKU filter.
	BloomFPR float64
}

// DefaultOptions returns options suitable for a full catalog dump.
func DefaultOptions() Options {
	return Options{
		ExpectedSKUs: 50000,
		BloomFPR:     0.01,
	}
}

// Store is the SQLite-backed sneaker catalog.
type Store struct {
	db     *sql.DB // Write connection (single writer)
	readDB *sql.DB // Read connection pool (concurrent readers)
	dbPath string
	mu     sync.Mutex // Serializes write transactions

	// SKU membership fast path. Deletes leave it stale-positive, which
	// only costs a read that returns no rows.
	skuFilter *bloom.Filter

	getSneakerStmt *sql.Stmt
	listImagesStmt *sql.Stmt
}

// Open opens (creating if necessary) the catalog database at dbPath.
func Open(dbPath string) (*Store, error) {
	return OpenWithOptions(dbPath, DefaultOptions())
}

// OpenWithOptions opens the catalog with explicit options.
func OpenWithOptions(dbPath string, opts Options) (*Store, error) {
	// Write connection: single writer with WAL mode and enforced FKs.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Create the schema before the read pool touches the file.
	if err := schema.Apply(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: failed to initialize schema: %w", err)
	}

	// Read connection pool: concurrent readers via read-only mode.
	readDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&mode=ro")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(4)
	readDB.SetMaxIdleConns(4)
	readDB.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{
		db:     db,
		readDB: readDB,
		dbPath: dbPath,
	}

	if err := s.warmSKUFilter(opts); err != nil {
		readDB.Close()
		db.Close()
		return nil, err
	}

	if err := s.prepareStatements(); err != nil {
		readDB.Close()
		db.Close()
		return nil, err
	}

	return s, nil
}

// warmSKUFilter loads every existing SKU into the bloom filter.
func (s *Store) warmSKUFilter(opts Options) error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sneakers`).Scan(&count); err != nil {
		return fmt.Errorf("catalog: failed to count sneakers: %w", err)
	}

	expected := opts.ExpectedSKUs
	if count*2 > expected {
		expected = count * 2
	}
	s.skuFilter = bloom.New(expected, opts.BloomFPR)

	rows, err := s.db.Query(`SELECT sku FROM sneakers`)
	if err != nil {
		return fmt.Errorf("catalog: failed to scan SKUs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return fmt.Errorf("catalog: failed to scan SKU: %w", err)
		}
		s.skuFilter.Add(sku)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("catalog: SKU scan failed: %w", err)
	}

	if count > 0 {
		log.Printf("catalog: warmed SKU filter with %d keys", count)
	}
	return nil
}

func (s *Store) prepareStatements() error {
	getStmt, err := s.readDB.Prepare(selectSneakerSQL + ` WHERE sku = ?`)
	if err != nil {
		return fmt.Errorf("catalog: failed to prepare get statement: %w", err)
	}
	s.getSneakerStmt = getStmt

	imagesStmt, err := s.readDB.Prepare(
		`SELECT sku, position, image FROM images_360 WHERE sku = ? ORDER BY position ASC`)
	if err != nil {
		getStmt.Close()
		return fmt.Errorf("catalog: failed to prepare images statement: %w", err)
	}
	s.listImagesStmt = imagesStmt

	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Reader returns the read-only connection pool.
func (s *Store) Reader() *sql.DB {
	return s.readDB
}

// Writer returns the single write connection.
func (s *Store) Writer() *sql.DB {
	return s.db
}

// Close closes both connections.
func (s *Store) Close() error {
	if s.getSneakerStmt != nil {
		s.getSneakerStmt.Close()
	}
	if s.listImagesStmt != nil {
		s.listImagesStmt.Close()
	}
	var firstErr error
	if err := s.readDB.Close(); err != nil {
		firstErr = err
	}
	if err := s.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// mapSQLiteError translates sqlite3 constraint failures into the
// structured catalog error codes callers match on.
func mapSQLiteError(op string, err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		switch serr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return cerrors.Wrap(cerrors.ErrCategoryCatalog, cerrors.CodeForeignKey, op, err)
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return cerrors.Wrap(cerrors.ErrCategoryCatalog, cerrors.CodeDuplicateKey, op, err)
		case sqlite3.ErrConstraintCheck:
			return cerrors.Wrap(cerrors.ErrCategoryValidation, cerrors.CodeInvalidReleaseYear, op, err)
		}
	}
	return cerrors.NewInternalError(op, err)
}
