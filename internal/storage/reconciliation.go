package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olist-data/refinery/internal/model"
)

// SaveReconciliations upserts per-order reconciliation results.
func (s *SQLiteStorage) SaveReconciliations(ctx context.Context, records []model.ReconciliationRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReconciliations(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO reconciliation_records (
			order_id, items_total, payments_total, delta, kind, resolution
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.OrderID, rec.ItemsTotal, rec.PaymentsTotal, rec.Delta,
			string(rec.Kind), string(rec.Resolution),
		); err != nil {
			return fmt.Errorf("failed to save reconciliation %s: %w", rec.OrderID, err)
		}
	}

	return tx.Commit()
}

// GetReconciliation fetches the result for one order.
func (s *SQLiteStorage) GetReconciliation(ctx context.Context, orderID string) (*model.ReconciliationRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(orderID, "orderID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT order_id, items_total, payments_total, delta, kind, resolution
		FROM reconciliation_records WHERE order_id = ?
	`, orderID)

	rec, err := scanReconciliation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reconciliation %s: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciliation: %w", err)
	}
	return rec, nil
}

// GetFlaggedReconciliations returns every order that matched an anomaly
// rule, in order ID order.
func (s *SQLiteStorage) GetFlaggedReconciliations(ctx context.Context) ([]model.ReconciliationRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, items_total, payments_total, delta, kind, resolution
		FROM reconciliation_records
		WHERE kind != ''
		ORDER BY order_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.ReconciliationRecord
	for rows.Next() {
		rec, scanErr := scanReconciliation(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan reconciliation: %w", scanErr)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reconciliations: %w", err)
	}

	return records, nil
}

func scanReconciliation(row rowScanner) (*model.ReconciliationRecord, error) {
	var rec model.ReconciliationRecord
	var kind, resolution string
	err := row.Scan(&rec.OrderID, &rec.ItemsTotal, &rec.PaymentsTotal, &rec.Delta, &kind, &resolution)
	if err != nil {
		return nil, err
	}
	rec.Kind = model.AnomalyKind(kind)
	rec.Resolution = model.ResolutionAction(resolution)
	return &rec, nil
}
