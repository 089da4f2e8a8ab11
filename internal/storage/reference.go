package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olist-data/refinery/internal/model"
)

// SaveReferences upserts canonical geographic records. Rebuilding the
// reference replaces existing rows for the same prefixes.
func (s *SQLiteStorage) SaveReferences(ctx context.Context, refs []model.ZipCodeReference) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReferences(refs); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO zip_code_reference (
			postal_prefix, state, canonical_city,
			mean_lat, mean_lon, lat_std, lon_std,
			min_lat, max_lat, min_lon, max_lon,
			lat_spread_km, lon_spread_km,
			city_variations, sample_count, quality
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, ref := range refs {
		if _, err := stmt.ExecContext(ctx,
			ref.PostalPrefix, ref.State, ref.CanonicalCity,
			ref.MeanLat, ref.MeanLon, ref.LatStd, ref.LonStd,
			ref.MinLat, ref.MaxLat, ref.MinLon, ref.MaxLon,
			ref.LatSpreadKm, ref.LonSpreadKm,
			ref.CityVariations, ref.SampleCount, string(ref.Quality),
		); err != nil {
			return fmt.Errorf("failed to save reference %s: %w", ref.PostalPrefix, err)
		}
	}

	return tx.Commit()
}

const referenceColumns = `
	postal_prefix, state, canonical_city,
	mean_lat, mean_lon, lat_std, lon_std,
	min_lat, max_lat, min_lon, max_lon,
	lat_spread_km, lon_spread_km,
	city_variations, sample_count, quality
`

// GetReference fetches the canonical record for one postal prefix.
func (s *SQLiteStorage) GetReference(ctx context.Context, postalPrefix string) (*model.ZipCodeReference, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(postalPrefix, "postalPrefix"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+referenceColumns+` FROM zip_code_reference WHERE postal_prefix = ?`,
		postalPrefix)

	ref, err := scanReference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reference %s: %w", postalPrefix, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reference: %w", err)
	}
	return ref, nil
}

// GetReferences loads the whole reference keyed by postal prefix.
func (s *SQLiteStorage) GetReferences(ctx context.Context) (map[string]model.ZipCodeReference, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+referenceColumns+` FROM zip_code_reference ORDER BY postal_prefix`)
	if err != nil {
		return nil, fmt.Errorf("failed to query references: %w", err)
	}
	defer func() { _ = rows.Close() }()

	refs := make(map[string]model.ZipCodeReference)
	for rows.Next() {
		ref, scanErr := scanReference(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan reference: %w", scanErr)
		}
		refs[ref.PostalPrefix] = *ref
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate references: %w", err)
	}

	return refs, nil
}

// CountReferences returns the number of stored reference rows.
func (s *SQLiteStorage) CountReferences(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM zip_code_reference`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count references: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReference(row rowScanner) (*model.ZipCodeReference, error) {
	var ref model.ZipCodeReference
	var quality string
	err := row.Scan(
		&ref.PostalPrefix, &ref.State, &ref.CanonicalCity,
		&ref.MeanLat, &ref.MeanLon, &ref.LatStd, &ref.LonStd,
		&ref.MinLat, &ref.MaxLat, &ref.MinLon, &ref.MaxLon,
		&ref.LatSpreadKm, &ref.LonSpreadKm,
		&ref.CityVariations, &ref.SampleCount, &quality,
	)
	if err != nil {
		return nil, err
	}
	ref.Quality = model.QualityScore(quality)
	return &ref, nil
}
