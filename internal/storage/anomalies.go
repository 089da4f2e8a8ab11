package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/olist-data/refinery/internal/model"
	"github.com/olist-data/refinery/internal/service"
)

// SaveAnomalies upserts anomaly records. One row per (entity type, entity,
// kind); re-running an analysis refreshes rather than duplicates.
func (s *SQLiteStorage) SaveAnomalies(ctx context.Context, records []model.AnomalyRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAnomalies(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO anomaly_records (entity_type, entity_id, kind, severity, detail, resolved)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, entity_id, kind) DO UPDATE SET
			severity = excluded.severity,
			detail = excluded.detail,
			resolved = excluded.resolved
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			string(rec.EntityType), rec.EntityID, string(rec.Kind),
			string(rec.Severity), rec.Detail, rec.Resolved,
		); err != nil {
			return fmt.Errorf("failed to save anomaly for %s: %w", rec.EntityID, err)
		}
	}

	return tx.Commit()
}

// GetAnomalies returns anomaly records matching the filter, ordered by
// (entity id, kind) so results are stable across runs.
func (s *SQLiteStorage) GetAnomalies(ctx context.Context, filter service.AnomalyFilter) ([]model.AnomalyRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any
	if filter.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, string(filter.EntityType))
	}
	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Severity != "" {
		conditions = append(conditions, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.Unresolved {
		conditions = append(conditions, "resolved = 0")
	}

	query := `SELECT entity_type, entity_id, kind, severity, detail, resolved FROM anomaly_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY entity_id, kind"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomalies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.AnomalyRecord
	for rows.Next() {
		var rec model.AnomalyRecord
		var entityType, kind, severity string
		if err := rows.Scan(&entityType, &rec.EntityID, &kind, &severity, &rec.Detail, &rec.Resolved); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly: %w", err)
		}
		rec.EntityType = model.EntityType(entityType)
		rec.Kind = model.AnomalyKind(kind)
		rec.Severity = model.Severity(severity)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate anomalies: %w", err)
	}

	return records, nil
}
