package catalog

import (
	"context"
	"database/sql"
	"fmt"

	cerrors "github.com/alexpicon/sneakerdb/internal/errors"
	"github.com/alexpicon/sneakerdb/pkg/types"
)

const sneakerColumns = `sku, brand, colorway, estimatedMarketValue, gender,
	image_original, image_small, image_thumbnail,
	link_flightClub, link_goat, link_stadiumGoods, link_stockX,
	name, releaseDate, releaseYear, retailPrice, silhouette, story`

// Optional columns come back as ''/0 so Sneaker round-trips without
// pointer fields.
const selectSneakerSQL = `SELECT sku, brand, COALESCE(colorway, ''),
	COALESCE(estimatedMarketValue, 0), gender,
	COALESCE(image_original, ''), COALESCE(image_small, ''), COALESCE(image_thumbnail, ''),
	COALESCE(link_flightClub, ''), COALESCE(link_goat, ''),
	COALESCE(link_stadiumGoods, ''), COALESCE(link_stockX, ''),
	COALESCE(name, ''), COALESCE(releaseDate, ''), COALESCE(releaseYear, 0),
	COALESCE(retailPrice, 0), COALESCE(silhouette, ''), COALESCE(story, '')
	FROM sneakers`

const insertSneakerSQL = `INSERT INTO sneakers (` + sneakerColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const upsertSneakerSQL = insertSneakerSQL + ` ON CONFLICT(sku) DO UPDATE SET
	brand = excluded.brand,
	colorway = excluded.colorway,
	estimatedMarketValue = excluded.estimatedMarketValue,
	gender = excluded.gender,
	image_original = excluded.image_original,
	image_small = excluded.image_small,
	image_thumbnail = excluded.image_thumbnail,
	link_flightClub = excluded.link_flightClub,
	link_goat = excluded.link_goat,
	link_stadiumGoods = excluded.link_stadiumGoods,
	link_stockX = excluded.link_stockX,
	name = excluded.name,
	releaseDate = excluded.releaseDate,
	releaseYear = excluded.releaseYear,
	retailPrice = excluded.retailPrice,
	silhouette = excluded.silhouette,
	story = excluded.story`

// ftsInsertSQL indexes a committed sneaker row. The index is in external
// content mode, so the row is addressed by the content table's rowid.
const ftsInsertSQL = `INSERT INTO sneakers_fts(rowid, name, brand, silhouette, colorway, sku)
	SELECT rowid, name, brand, silhouette, colorway, sku FROM sneakers WHERE sku = ?`

// ftsDeleteSQL removes a row's tokens from the index. External-content
// deletes must replay the old column values, so this runs while the row
// still exists. A no-op when the SKU is absent.
const ftsDeleteSQL = `INSERT INTO sneakers_fts(sneakers_fts, rowid, name, brand, silhouette, colorway, sku)
	SELECT 'delete', rowid, name, brand, silhouette, colorway, sku FROM sneakers WHERE sku = ?`

// validate rejects sneakers the schema would not accept, before the
// write transaction starts.
func validate(s *types.Sneaker) error {
	if s.SKU == "" {
		return cerrors.NewValidationError(cerrors.CodeEmptySKU, "sneaker SKU must not be empty")
	}
	if s.ReleaseYear < 0 {
		return cerrors.NewValidationError(cerrors.CodeInvalidReleaseYear,
			fmt.Sprintf("releaseYear must be >= 0, got %d", s.ReleaseYear))
	}
	return nil
}

// insertArgs flattens a sneaker into bind arguments, storing empty
// optional fields as NULL the way the original catalog dump does.
func insertArgs(s *types.Sneaker) []interface{} {
	return []interface{}{
		s.SKU,
		s.Brand,
		nullString(s.Colorway),
		nullInt(s.EstimatedMarketValue),
		s.Gender,
		nullString(s.ImageOriginal),
		nullString(s.ImageSmall),
		nullString(s.ImageThumbnail),
		nullString(s.LinkFlightClub),
		nullString(s.LinkGoat),
		nullString(s.LinkStadiumGoods),
		nullString(s.LinkStockX),
		nullString(s.Name),
		nullString(s.ReleaseDate),
		nullInt(s.ReleaseYear),
		nullInt(s.RetailPrice),
		nullString(s.Silhouette),
		nullString(s.Story),
	}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(i int) interface{} {
	if i == 0 {
		return nil
	}
	return i
}

// Insert adds a new sneaker. Fails with DUPLICATE_KEY when the SKU
// exists, FOREIGN_KEY when the brand or gender is unknown, and
// INVALID_RELEASE_YEAR when releaseYear is negative.
func (s *Store) Insert(ctx context.Context, sneaker *types.Sneaker) error {
	return s.InsertEntry(ctx, &types.Entry{Sneaker: *sneaker})
}

// InsertEntry adds a sneaker together with its 360 image sequence in a
// single transaction, indexing the row as part of the same commit.
func (s *Store) InsertEntry(ctx context.Context, entry *types.Entry) error {
	sneaker := &entry.Sneaker
	if err := validate(sneaker); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertSneakerSQL, insertArgs(sneaker)...); err != nil {
		return mapSQLiteError("failed to insert sneaker "+sneaker.SKU, err)
	}
	if _, err := tx.ExecContext(ctx, ftsInsertSQL, sneaker.SKU); err != nil {
		return mapSQLiteError("failed to index sneaker "+sneaker.SKU, err)
	}
	for _, img := range entry.Images {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO images_360 (sku, position, image) VALUES (?, ?, ?)`,
			sneaker.SKU, img.Position, img.Image); err != nil {
			return mapSQLiteError("failed to insert 360 image for "+sneaker.SKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapSQLiteError("failed to commit insert of "+sneaker.SKU, err)
	}

	s.skuFilter.Add(sneaker.SKU)
	return nil
}

// Upsert inserts the sneaker or replaces an existing row with the same
// SKU, refreshing its index entry either way. Image sequences are left
// untouched.
func (s *Store) Upsert(ctx context.Context, sneaker *types.Sneaker) error {
	if err := validate(sneaker); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	// Drop the old tokens first; a no-op for a fresh SKU.
	if _, err := tx.ExecContext(ctx, ftsDeleteSQL, sneaker.SKU); err != nil {
		return mapSQLiteError("failed to unindex sneaker "+sneaker.SKU, err)
	}
	if _, err := tx.ExecContext(ctx, upsertSneakerSQL, insertArgs(sneaker)...); err != nil {
		return mapSQLiteError("failed to upsert sneaker "+sneaker.SKU, err)
	}
	if _, err := tx.ExecContext(ctx, ftsInsertSQL, sneaker.SKU); err != nil {
		return mapSQLiteError("failed to index sneaker "+sneaker.SKU, err)
	}

	if err := tx.Commit(); err != nil {
		return mapSQLiteError("failed to commit upsert of "+sneaker.SKU, err)
	}

	s.skuFilter.Add(sneaker.SKU)
	return nil
}

// Delete removes a sneaker, its 360 image rows, and its index entry in
// one transaction. Returns NOT_FOUND when the SKU does not exist.
func (s *Store) Delete(ctx context.Context, sku string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	// Unindex while the row's old values are still readable.
	if _, err := tx.ExecContext(ctx, ftsDeleteSQL, sku); err != nil {
		return mapSQLiteError("failed to unindex sneaker "+sku, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM images_360 WHERE sku = ?`, sku); err != nil {
		return mapSQLiteError("failed to delete 360 images for "+sku, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sneakers WHERE sku = ?`, sku)
	if err != nil {
		return mapSQLiteError("failed to delete sneaker "+sku, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return cerrors.NewInternalError("failed to read rows affected", err)
	}
	if affected == 0 {
		return cerrors.NewNotFoundError("sneaker not found: " + sku)
	}

	if err := tx.Commit(); err != nil {
		return mapSQLiteError("failed to commit delete of "+sku, err)
	}

	// The bloom filter cannot forget the SKU; lookups just fall through
	// to a read that finds nothing.
	return nil
}

// GetBySKU returns the full sneaker record, or NOT_FOUND.
func (s *Store) GetBySKU(ctx context.Context, sku string) (*types.Sneaker, error) {
	if !s.skuFilter.Contains(sku) {
		return nil, cerrors.NewNotFoundError("sneaker not found: " + sku)
	}

	row := s.getSneakerStmt.QueryRowContext(ctx, sku)
	sneaker, err := scanSneaker(row)
	if err == sql.ErrNoRows {
		return nil, cerrors.NewNotFoundError("sneaker not found: " + sku)
	}
	if err != nil {
		return nil, cerrors.NewInternalError("failed to get sneaker "+sku, err)
	}
	return sneaker, nil
}

// SKUExists reports whether a sneaker with the given SKU exists.
func (s *Store) SKUExists(ctx context.Context, sku string) (bool, error) {
	if !s.skuFilter.Contains(sku) {
		return false, nil
	}
	var one int
	err := s.readDB.QueryRowContext(ctx, `SELECT 1 FROM sneakers WHERE sku = ?`, sku).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, cerrors.NewInternalError("failed to check SKU "+sku, err)
	}
	return true, nil
}

// Count returns the number of sneakers in the catalog.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.readDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM sneakers`).Scan(&count); err != nil {
		return 0, cerrors.NewInternalError("failed to count sneakers", err)
	}
	return count, nil
}

// ListImages returns the 360 frames for a SKU ordered by position,
// ascending. Returns NOT_FOUND for an unknown SKU and an empty slice for
// a sneaker without a rotation sequence.
func (s *Store) ListImages(ctx context.Context, sku string) ([]types.Image360, error) {
	exists, err := s.SKUExists(ctx, sku)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, cerrors.NewNotFoundError("sneaker not found: " + sku)
	}

	rows, err := s.listImagesStmt.QueryContext(ctx, sku)
	if err != nil {
		return nil, cerrors.NewInternalError("failed to list 360 images for "+sku, err)
	}
	defer rows.Close()

	var images []types.Image360
	for rows.Next() {
		var img types.Image360
		if err := rows.Scan(&img.SKU, &img.Position, &img.Image); err != nil {
			return nil, cerrors.NewInternalError("failed to scan 360 image", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.NewInternalError("360 image scan failed", err)
	}
	return images, nil
}

// ForEachEntry streams every catalog entry in SKU order. Used by the
// export path; fn returning an error stops the scan.
func (s *Store) ForEachEntry(ctx context.Context, fn func(*types.Entry) error) error {
	rows, err := s.readDB.QueryContext(ctx, selectSneakerSQL+` ORDER BY sku`)
	if err != nil {
		return cerrors.NewInternalError("failed to scan sneakers", err)
	}
	defer rows.Close()

	for rows.Next() {
		sneaker, err := scanSneaker(rows)
		if err != nil {
			return cerrors.NewInternalError("failed to scan sneaker", err)
		}
		images, err := s.ListImages(ctx, sneaker.SKU)
		if err != nil {
			return err
		}
		if err := fn(&types.Entry{Sneaker: *sneaker, Images: images}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return cerrors.NewInternalError("sneaker scan failed", err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSneaker(row scanner) (*types.Sneaker, error) {
	var s types.Sneaker
	err := row.Scan(
		&s.SKU,
		&s.Brand,
		&s.Colorway,
		&s.EstimatedMarketValue,
		&s.Gender,
		&s.ImageOriginal,
		&s.ImageSmall,
		&s.ImageThumbnail,
		&s.LinkFlightClub,
		&s.LinkGoat,
		&s.LinkStadiumGoods,
		&s.LinkStockX,
		&s.Name,
		&s.ReleaseDate,
		&s.ReleaseYear,
		&s.RetailPrice,
		&s.Silhouette,
		&s.Story,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
