package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/olist-data/refinery/internal/model"
)

// SaveReport appends a quality report to the history and returns its row ID.
// The full report is stored as JSON so the structure can evolve without
// schema churn; the headline counts are lifted into columns for querying.
func (s *SQLiteStorage) SaveReport(ctx context.Context, report *model.QualityReport) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if report == nil {
		return 0, fmt.Errorf("%w: report", ErrNilParameter)
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO quality_reports (generated_at, total_anomalies, total_resolved, payload)
		VALUES (?, ?, ?, ?)
	`, report.GeneratedAt, report.TotalAnomalies, report.TotalResolved, string(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report id: %w", err)
	}
	return id, nil
}

// GetLatestReport fetches the most recently generated report.
func (s *SQLiteStorage) GetLatestReport(ctx context.Context) (*model.QualityReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM quality_reports
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quality report: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.QualityReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}
