package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olist-data/refinery/internal/model"
)

// SaveEntities upserts standardized entities. Re-running standardization
// overwrites the previous result for the same IDs.
func (s *SQLiteStorage) SaveEntities(ctx context.Context, entities []model.Entity) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntities(entities); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO entities (
			id, unique_id, entity_type, postal_prefix, city_raw, state,
			standardized_city, status,
			lat, lon, lat_std, lon_std, geo_quality, geo_sample_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entities {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.UniqueID, string(e.Type), e.PostalPrefix, e.CityRaw, e.State,
			e.StandardizedCity, string(e.Status),
			nullFloat(e.Lat), nullFloat(e.Lon), nullFloat(e.LatStd), nullFloat(e.LonStd),
			string(e.GeoQuality), e.GeoSampleCount,
		); err != nil {
			return fmt.Errorf("failed to save entity %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

const entityColumns = `
	id, unique_id, entity_type, postal_prefix, city_raw, state,
	standardized_city, status,
	lat, lon, lat_std, lon_std, geo_quality, geo_sample_count
`

// GetEntityByID fetches a single entity.
func (s *SQLiteStorage) GetEntityByID(ctx context.Context, id string) (*model.Entity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE id = ?`, id)

	entity, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return entity, nil
}

// GetEntitiesByType fetches all entities of one type in ID order.
func (s *SQLiteStorage) GetEntitiesByType(ctx context.Context, entityType model.EntityType) ([]model.Entity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(string(entityType), "entityType"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE entity_type = ? ORDER BY id`,
		string(entityType))
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entities []model.Entity
	for rows.Next() {
		entity, scanErr := scanEntity(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", scanErr)
		}
		entities = append(entities, *entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}

	return entities, nil
}

// GetStandardizationStats recomputes per-status counts for one entity type
// from the stored rows.
func (s *SQLiteStorage) GetStandardizationStats(ctx context.Context, entityType model.EntityType) (*model.StandardizationStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(string(entityType), "entityType"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM entities
		WHERE entity_type = ?
		GROUP BY status
	`, string(entityType))
	if err != nil {
		return nil, fmt.Errorf("failed to query standardization stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &model.StandardizationStats{EntityType: entityType}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.Total += count
		switch model.StandardizationStatus(status) {
		case model.StatusCorrected:
			stats.Corrected = count
		case model.StatusUnchanged:
			stats.Unchanged = count
		case model.StatusUnmatched:
			stats.Unmatched = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stats rows: %w", err)
	}

	return stats, nil
}

func scanEntity(row rowScanner) (*model.Entity, error) {
	var e model.Entity
	var entityType, status, quality string
	var lat, lon, latStd, lonStd sql.NullFloat64
	err := row.Scan(
		&e.ID, &e.UniqueID, &entityType, &e.PostalPrefix, &e.CityRaw, &e.State,
		&e.StandardizedCity, &status,
		&lat, &lon, &latStd, &lonStd, &quality, &e.GeoSampleCount,
	)
	if err != nil {
		return nil, err
	}
	e.Type = model.EntityType(entityType)
	e.Status = model.StandardizationStatus(status)
	e.GeoQuality = model.QualityScore(quality)
	e.Lat = floatPtr(lat)
	e.Lon = floatPtr(lon)
	e.LatStd = floatPtr(latStd)
	e.LonStd = floatPtr(lonStd)
	return &e, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
