package report

import (
	"testing"
	"time"

	"github.com/olist-data/refinery/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func testInput() Input {
	return Input{
		Anomalies: []model.AnomalyRecord{
			{EntityType: model.EntityReview, EntityID: "r2", Kind: model.AnomalyReviewBeforeOrder, Severity: model.SeverityCritical},
			{EntityType: model.EntityProduct, EntityID: "p1", Kind: model.AnomalyImplausibleDensity, Severity: model.SeverityWarning, Resolved: true},
			{EntityType: model.EntityReview, EntityID: "r1", Kind: model.AnomalyReviewBeforeOrder, Severity: model.SeverityCritical},
			{EntityType: model.EntitySeller, EntityID: "s1", Kind: model.AnomalyCityTooShort, Severity: model.SeverityWarning},
		},
		Reconciliations: []model.ReconciliationRecord{
			{OrderID: "o1"},
			{OrderID: "o2", Kind: model.AnomalyMissingPayment},
			{OrderID: "o3", Kind: model.AnomalyInstallmentError, Resolution: model.ResolutionSetInstallments},
		},
		Standardization: []model.StandardizationStats{
			{EntityType: model.EntitySeller, Total: 10, Corrected: 2, Unmatched: 1, Unchanged: 7},
			{EntityType: model.EntityCustomer, Total: 100, Corrected: 10, Unmatched: 5, Unchanged: 85},
		},
		Tables: []model.TableStats{
			{EntityType: model.EntityCustomer, Records: 98, Skipped: 2, Duplicates: 0, Anomalous: 15},
			{EntityType: model.EntityOrder, Records: 3, Skipped: 0, Duplicates: 0, Anomalous: 2},
		},
	}
}

func TestAggregator_Aggregate(t *testing.T) {
	a := NewAggregatorAt(fixedNow)
	report := a.Aggregate(testInput())

	assert.Equal(t, fixedNow(), report.GeneratedAt)
	// Four direct anomalies plus two flagged reconciliations.
	assert.Equal(t, 6, report.TotalAnomalies)
	// The density correction and the installment fix were resolved.
	assert.Equal(t, 2, report.TotalResolved)

	wantKinds := []model.KindCount{
		{Kind: model.AnomalyCityTooShort, Count: 1},
		{Kind: model.AnomalyImplausibleDensity, Count: 1},
		{Kind: model.AnomalyInstallmentError, Count: 1},
		{Kind: model.AnomalyMissingPayment, Count: 1},
		{Kind: model.AnomalyReviewBeforeOrder, Count: 2},
	}
	assert.Equal(t, wantKinds, report.KindCounts)
}

func TestAggregator_UnresolvedCriticalSorted(t *testing.T) {
	a := NewAggregatorAt(fixedNow)
	report := a.Aggregate(testInput())

	require.Len(t, report.UnresolvedCritical, 3)
	assert.Equal(t, "o2", report.UnresolvedCritical[0].EntityID)
	assert.Equal(t, "r1", report.UnresolvedCritical[1].EntityID)
	assert.Equal(t, "r2", report.UnresolvedCritical[2].EntityID)
}

func TestAggregator_Scores(t *testing.T) {
	a := NewAggregatorAt(fixedNow)
	report := a.Aggregate(testInput())

	require.Len(t, report.Scores, 2)
	// Sorted by entity type: customer before order.
	customer := report.Scores[0]
	assert.Equal(t, model.EntityCustomer, customer.EntityType)
	assert.InDelta(t, 0.98, customer.Completeness, 1e-9)
	assert.InDelta(t, 1.0, customer.Uniqueness, 1e-9)
	assert.InDelta(t, 0.8469, customer.Consistency, 1e-9)

	order := report.Scores[1]
	assert.Equal(t, model.EntityOrder, order.EntityType)
	assert.InDelta(t, 1.0, order.Completeness, 1e-9)
}

func TestAggregator_StandardizationSorted(t *testing.T) {
	a := NewAggregatorAt(fixedNow)
	report := a.Aggregate(testInput())

	require.Len(t, report.Standardization, 2)
	assert.Equal(t, model.EntityCustomer, report.Standardization[0].EntityType)
	assert.Equal(t, model.EntitySeller, report.Standardization[1].EntityType)
}

func TestAggregator_Deterministic(t *testing.T) {
	a := NewAggregatorAt(fixedNow)
	first := a.Aggregate(testInput())
	second := a.Aggregate(testInput())
	assert.Equal(t, first, second)
}

func TestAggregator_NoDoubleCountingWithPreEmittedRecords(t *testing.T) {
	a := NewAggregatorAt(fixedNow)

	in := Input{
		Anomalies: []model.AnomalyRecord{
			{EntityType: model.EntityOrder, EntityID: "o2", Kind: model.AnomalyMissingPayment, Severity: model.SeverityCritical, Detail: "delivered without payment"},
		},
		Reconciliations: []model.ReconciliationRecord{
			{OrderID: "o2", Kind: model.AnomalyMissingPayment},
		},
	}

	report := a.Aggregate(in)
	assert.Equal(t, 1, report.TotalAnomalies)
	require.Len(t, report.KindCounts, 1)
	assert.Equal(t, 1, report.KindCounts[0].Count)
}

func TestAggregator_EmptyInputStillReports(t *testing.T) {
	a := NewAggregatorAt(fixedNow)
	report := a.Aggregate(Input{})

	assert.Equal(t, 0, report.TotalAnomalies)
	assert.Empty(t, report.KindCounts)
	assert.Empty(t, report.UnresolvedCritical)
}
