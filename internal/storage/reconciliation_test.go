package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/olist-data/refinery/internal/model"
	"github.com/olist-data/refinery/internal/service"
)

func TestSaveAndGetReconciliation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	records := []model.ReconciliationRecord{
		{OrderID: "o1", ItemsTotal: 140.40, PaymentsTotal: 140.40},
		{OrderID: "o2", ItemsTotal: 150.00, PaymentsTotal: 150.00, Kind: model.AnomalyInstallmentError, Resolution: model.ResolutionSetInstallments},
		{OrderID: "o3", ItemsTotal: 99.90, PaymentsTotal: 0, Delta: -99.90, Kind: model.AnomalyMissingPayment},
	}
	if err := store.SaveReconciliations(ctx, records); err != nil {
		t.Fatalf("Failed to save reconciliations: %v", err)
	}

	got, err := store.GetReconciliation(ctx, "o2")
	if err != nil {
		t.Fatalf("Failed to get reconciliation: %v", err)
	}
	if got.Kind != model.AnomalyInstallmentError {
		t.Errorf("Kind = %q, want %q", got.Kind, model.AnomalyInstallmentError)
	}
	if got.Resolution != model.ResolutionSetInstallments {
		t.Errorf("Resolution = %q, want %q", got.Resolution, model.ResolutionSetInstallments)
	}

	clean, err := store.GetReconciliation(ctx, "o1")
	if err != nil {
		t.Fatalf("Failed to get reconciliation: %v", err)
	}
	if !clean.Reconciled() {
		t.Errorf("Order o1 should be reconciled, got kind %q", clean.Kind)
	}
}

func TestGetFlaggedReconciliations(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	records := []model.ReconciliationRecord{
		{OrderID: "o3", ItemsTotal: 99.90, Kind: model.AnomalyMissingPayment},
		{OrderID: "o1", ItemsTotal: 140.40, PaymentsTotal: 140.40},
		{OrderID: "o2", ItemsTotal: 10, PaymentsTotal: 10.50, Delta: 0.50, Kind: model.AnomalyTaxDiscrepancy},
	}
	if err := store.SaveReconciliations(ctx, records); err != nil {
		t.Fatalf("Failed to save reconciliations: %v", err)
	}

	flagged, err := store.GetFlaggedReconciliations(ctx)
	if err != nil {
		t.Fatalf("Failed to get flagged reconciliations: %v", err)
	}
	if len(flagged) != 2 {
		t.Fatalf("Got %d flagged records, want 2", len(flagged))
	}
	if flagged[0].OrderID != "o2" || flagged[1].OrderID != "o3" {
		t.Errorf("Flagged records not ordered: %s, %s", flagged[0].OrderID, flagged[1].OrderID)
	}
}

func TestGetReconciliation_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetReconciliation(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSaveAndGetAnomalies(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	records := []model.AnomalyRecord{
		{EntityType: model.EntityProduct, EntityID: "p1", Kind: model.AnomalyImplausibleDensity, Severity: model.SeverityWarning, Detail: "density 5000.00 g/cm3", Resolved: true},
		{EntityType: model.EntityReview, EntityID: "r1", Kind: model.AnomalyReviewBeforeOrder, Severity: model.SeverityCritical},
		{EntityType: model.EntitySeller, EntityID: "s1", Kind: model.AnomalyCityTooShort, Severity: model.SeverityWarning},
	}
	if err := store.SaveAnomalies(ctx, records); err != nil {
		t.Fatalf("Failed to save anomalies: %v", err)
	}

	all, err := store.GetAnomalies(ctx, service.AnomalyFilter{})
	if err != nil {
		t.Fatalf("Failed to get anomalies: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Got %d anomalies, want 3", len(all))
	}

	critical, err := store.GetAnomalies(ctx, service.AnomalyFilter{Severity: model.SeverityCritical, Unresolved: true})
	if err != nil {
		t.Fatalf("Failed to filter anomalies: %v", err)
	}
	if len(critical) != 1 || critical[0].EntityID != "r1" {
		t.Errorf("Critical filter returned %+v, want r1 only", critical)
	}

	products, err := store.GetAnomalies(ctx, service.AnomalyFilter{EntityType: model.EntityProduct})
	if err != nil {
		t.Fatalf("Failed to filter anomalies: %v", err)
	}
	if len(products) != 1 || !products[0].Resolved {
		t.Errorf("Product filter returned %+v, want one resolved record", products)
	}
}

func TestSaveAnomalies_UpsertRefreshesRecord(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rec := model.AnomalyRecord{
		EntityType: model.EntityProduct,
		EntityID:   "p1",
		Kind:       model.AnomalyImplausibleDensity,
		Severity:   model.SeverityWarning,
	}
	if err := store.SaveAnomalies(ctx, []model.AnomalyRecord{rec}); err != nil {
		t.Fatalf("Failed to save anomaly: %v", err)
	}

	// Re-running the analysis with a fix applied updates the same row.
	rec.Resolved = true
	rec.Detail = "unit correction applied"
	if err := store.SaveAnomalies(ctx, []model.AnomalyRecord{rec}); err != nil {
		t.Fatalf("Failed to re-save anomaly: %v", err)
	}

	all, err := store.GetAnomalies(ctx, service.AnomalyFilter{Kind: model.AnomalyImplausibleDensity})
	if err != nil {
		t.Fatalf("Failed to get anomalies: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Got %d records, want 1", len(all))
	}
	if !all[0].Resolved {
		t.Error("Record was not refreshed to resolved")
	}
}

func TestGetAnomalies_Limit(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	records := []model.AnomalyRecord{
		{EntityType: model.EntityReview, EntityID: "r1", Kind: model.AnomalySilentReview, Severity: model.SeverityInfo},
		{EntityType: model.EntityReview, EntityID: "r2", Kind: model.AnomalySilentReview, Severity: model.SeverityInfo},
		{EntityType: model.EntityReview, EntityID: "r3", Kind: model.AnomalySilentReview, Severity: model.SeverityInfo},
	}
	if err := store.SaveAnomalies(ctx, records); err != nil {
		t.Fatalf("Failed to save anomalies: %v", err)
	}

	limited, err := store.GetAnomalies(ctx, service.AnomalyFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Failed to get anomalies: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Got %d records, want 2", len(limited))
	}
}
