package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olist-data/refinery/internal/model"
)

func TestSaveAndGetLatestReport(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	older := &model.QualityReport{
		GeneratedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		TotalAnomalies: 10,
		TotalResolved:  4,
		KindCounts: []model.KindCount{
			{Kind: model.AnomalyMissingPayment, Count: 10},
		},
	}
	newer := &model.QualityReport{
		GeneratedAt:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		TotalAnomalies: 6,
		TotalResolved:  2,
		KindCounts: []model.KindCount{
			{Kind: model.AnomalyInstallmentError, Count: 2},
			{Kind: model.AnomalyMissingPayment, Count: 4},
		},
		Scores: []model.TableScore{
			{EntityType: model.EntityCustomer, Records: 98, Skipped: 2, Completeness: 0.98, Uniqueness: 1, Consistency: 0.8469},
		},
	}

	if _, err := store.SaveReport(ctx, older); err != nil {
		t.Fatalf("Failed to save report: %v", err)
	}
	id, err := store.SaveReport(ctx, newer)
	if err != nil {
		t.Fatalf("Failed to save report: %v", err)
	}
	if id <= 0 {
		t.Errorf("Report ID = %d, want positive", id)
	}

	got, err := store.GetLatestReport(ctx)
	if err != nil {
		t.Fatalf("Failed to get latest report: %v", err)
	}
	if !got.GeneratedAt.Equal(newer.GeneratedAt) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, newer.GeneratedAt)
	}
	if got.TotalAnomalies != 6 {
		t.Errorf("TotalAnomalies = %d, want 6", got.TotalAnomalies)
	}
	if len(got.KindCounts) != 2 || got.KindCounts[0].Kind != model.AnomalyInstallmentError {
		t.Errorf("KindCounts did not round-trip: %+v", got.KindCounts)
	}
	if len(got.Scores) != 1 || got.Scores[0].Consistency != 0.8469 {
		t.Errorf("Scores did not round-trip: %+v", got.Scores)
	}
}

func TestGetLatestReport_Empty(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetLatestReport(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSaveReport_NilReport(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	if _, err := store.SaveReport(context.Background(), nil); err == nil {
		t.Error("Expected error for nil report, got nil")
	}
}
