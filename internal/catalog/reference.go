package catalog

import (
	"context"
	"database/sql"

	cerrors "github.com/alexpicon/sneakerdb/internal/errors"
)

// Reference data: brands and genders are lookup tables keyed by name,
// created before any sneaker that uses them and rarely modified.

// InsertBrand adds a brand. Fails with DUPLICATE_KEY when it exists.
func (s *Store) InsertBrand(ctx context.Context, brand string) error {
	return s.insertReference(ctx, "brands", "brand", brand)
}

// InsertGender adds a gender. Fails with DUPLICATE_KEY when it exists.
func (s *Store) InsertGender(ctx context.Context, gender string) error {
	return s.insertReference(ctx, "genders", "gender", gender)
}

// InsertBrands bulk-loads brands, ignoring ones already present.
func (s *Store) InsertBrands(ctx context.Context, brands []string) error {
	return s.insertReferences(ctx, "brands", "brand", brands)
}

// InsertGenders bulk-loads genders, ignoring ones already present.
func (s *Store) InsertGenders(ctx context.Context, genders []string) error {
	return s.insertReferences(ctx, "genders", "gender", genders)
}

// ListBrands returns all brands in lexical order.
func (s *Store) ListBrands(ctx context.Context) ([]string, error) {
	return s.listReference(ctx, "brands", "brand")
}

// ListGenders returns all genders in lexical order.
func (s *Store) ListGenders(ctx context.Context) ([]string, error) {
	return s.listReference(ctx, "genders", "gender")
}

// BrandExists reports whether a brand is registered.
func (s *Store) BrandExists(ctx context.Context, brand string) (bool, error) {
	return s.referenceExists(ctx, "brands", "brand", brand)
}

// GenderExists reports whether a gender is registered.
func (s *Store) GenderExists(ctx context.Context, gender string) (bool, error) {
	return s.referenceExists(ctx, "genders", "gender", gender)
}

// DeleteBrand removes a brand. Fails with FOREIGN_KEY while any sneaker
// still references it, NOT_FOUND when it does not exist.
func (s *Store) DeleteBrand(ctx context.Context, brand string) error {
	return s.deleteReference(ctx, "brands", "brand", brand)
}

// DeleteGender removes a gender under the same rules as DeleteBrand.
func (s *Store) DeleteGender(ctx context.Context, gender string) error {
	return s.deleteReference(ctx, "genders", "gender", gender)
}

// Table and column names below are compile-time constants from the
// callers above, never user input.

func (s *Store) insertReference(ctx context.Context, table, column, value string) error {
	if value == "" {
		return cerrors.NewValidationError(cerrors.CodeEmptyName, column+" must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO `+table+`(`+column+`) VALUES(?)`, value)
	if err != nil {
		return mapSQLiteError("failed to insert "+column+" "+value, err)
	}
	return nil
}

func (s *Store) insertReferences(ctx context.Context, table, column string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO `+table+`(`+column+`) VALUES(?)`)
	if err != nil {
		return cerrors.NewInternalError("failed to prepare "+table+" insert", err)
	}
	defer stmt.Close()

	for _, v := range values {
		if v == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, v); err != nil {
			return mapSQLiteError("failed to insert "+column+" "+v, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return mapSQLiteError("failed to commit "+table+" load", err)
	}
	return nil
}

func (s *Store) listReference(ctx context.Context, table, column string) ([]string, error) {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT `+column+` FROM `+table+` ORDER BY `+column)
	if err != nil {
		return nil, cerrors.NewInternalError("failed to list "+table, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, cerrors.NewInternalError("failed to scan "+column, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, cerrors.NewInternalError(table+" scan failed", err)
	}
	return values, nil
}

func (s *Store) referenceExists(ctx context.Context, table, column, value string) (bool, error) {
	var one int
	err := s.readDB.QueryRowContext(ctx,
		`SELECT 1 FROM `+table+` WHERE `+column+` = ?`, value).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, cerrors.NewInternalError("failed to check "+column+" "+value, err)
	}
	return true, nil
}

func (s *Store) deleteReference(ctx context.Context, table, column, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+column+` = ?`, value)
	if err != nil {
		return mapSQLiteError("failed to delete "+column+" "+value, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return cerrors.NewInternalError("failed to read rows affected", err)
	}
	if affected == 0 {
		return cerrors.NewNotFoundError(column + " not found: " + value)
	}
	return nil
}
