package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Geographic reference and entity tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS zip_code_reference (
					postal_prefix TEXT PRIMARY KEY,
					state TEXT,
					canonical_city TEXT NOT NULL,
					mean_lat REAL NOT NULL,
					mean_lon REAL NOT NULL,
					lat_std REAL NOT NULL DEFAULT 0,
					lon_std REAL NOT NULL DEFAULT 0,
					min_lat REAL NOT NULL,
					max_lat REAL NOT NULL,
					min_lon REAL NOT NULL,
					max_lon REAL NOT NULL,
					lat_spread_km REAL NOT NULL DEFAULT 0,
					lon_spread_km REAL NOT NULL DEFAULT 0,
					city_variations INTEGER NOT NULL DEFAULT 1,
					sample_count INTEGER NOT NULL,
					quality TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_reference_quality ON zip_code_reference(quality)`,

				`CREATE TABLE IF NOT EXISTS entities (
					id TEXT PRIMARY KEY,
					unique_id TEXT,
					entity_type TEXT NOT NULL,
					postal_prefix TEXT NOT NULL,
					city_raw TEXT,
					state TEXT,
					standardized_city TEXT,
					status TEXT,
					lat REAL,
					lon REAL,
					lat_std REAL,
					lon_std REAL,
					geo_quality TEXT,
					geo_sample_count INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_entities_type ON entities(entity_type)`,
				`CREATE INDEX idx_entities_prefix ON entities(postal_prefix)`,
				`CREATE INDEX idx_entities_status ON entities(status)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Reconciliation and anomaly tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS reconciliation_records (
					order_id TEXT PRIMARY KEY,
					items_total REAL NOT NULL,
					payments_total REAL NOT NULL,
					delta REAL NOT NULL,
					kind TEXT NOT NULL DEFAULT '',
					resolution TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_reconciliation_kind ON reconciliation_records(kind)`,

				`CREATE TABLE IF NOT EXISTS anomaly_records (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					entity_type TEXT NOT NULL,
					entity_id TEXT NOT NULL,
					kind TEXT NOT NULL,
					severity TEXT NOT NULL,
					detail TEXT,
					resolved INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(entity_type, entity_id, kind)
				)`,
				`CREATE INDEX idx_anomalies_kind ON anomaly_records(kind)`,
				`CREATE INDEX idx_anomalies_severity ON anomaly_records(severity)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Quality report history",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS quality_reports (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					generated_at DATETIME NOT NULL,
					total_anomalies INTEGER NOT NULL,
					total_resolved INTEGER NOT NULL,
					payload TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_reports_generated ON quality_reports(generated_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
