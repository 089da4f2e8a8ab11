// Package report merges anomaly and reconciliation outputs into the final
// machine-readable quality report.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/olist-data/refinery/internal/model"
)

// Input is everything a run produced that the report is derived from.
type Input struct {
	Anomalies       []model.AnomalyRecord
	Reconciliations []model.ReconciliationRecord
	Standardization []model.StandardizationStats
	Tables          []model.TableStats
}

// Aggregator produces deterministic quality reports: the same input always
// yields the same ordering and the same scores.
type Aggregator struct {
	now func() time.Time
}

// NewAggregator creates an aggregator using wall-clock time.
func NewAggregator() *Aggregator {
	return &Aggregator{now: time.Now}
}

// NewAggregatorAt pins the report timestamp, for tests.
func NewAggregatorAt(now func() time.Time) *Aggregator {
	return &Aggregator{now: now}
}

// reconciliationSeverity maps the mutually exclusive reconciliation kinds to
// report severities.
var reconciliationSeverity = map[model.AnomalyKind]model.Severity{
	model.AnomalyMissingPayment:       model.SeverityCritical,
	model.AnomalyZeroValueVoucher:     model.SeverityInfo,
	model.AnomalyInstallmentError:     model.SeverityWarning,
	model.AnomalyUndefinedPaymentType: model.SeverityInfo,
	model.AnomalyTaxDiscrepancy:       model.SeverityInfo,
}

// Aggregate merges every anomaly stream into one report. The report is
// always produced, even when some records were skipped or left unresolved.
func (a *Aggregator) Aggregate(in Input) model.QualityReport {
	anomalies := make([]model.AnomalyRecord, 0, len(in.Anomalies)+len(in.Reconciliations))
	anomalies = append(anomalies, in.Anomalies...)

	type pair struct {
		id   string
		kind model.AnomalyKind
	}
	seen := make(map[pair]struct{}, len(anomalies))
	for _, rec := range anomalies {
		seen[pair{id: rec.EntityID, kind: rec.Kind}] = struct{}{}
	}

	// Flagged reconciliation records join the anomaly stream so kind counts
	// and the critical list cover financial rules too. Orders whose anomaly
	// record was already emitted alongside the reconciliation are not
	// counted twice.
	for _, rec := range in.Reconciliations {
		if rec.Reconciled() {
			continue
		}
		if _, dup := seen[pair{id: rec.OrderID, kind: rec.Kind}]; dup {
			continue
		}
		anomalies = append(anomalies, model.AnomalyRecord{
			EntityType: model.EntityOrder,
			EntityID:   rec.OrderID,
			Kind:       rec.Kind,
			Severity:   reconciliationSeverity[rec.Kind],
			Resolved:   rec.Resolution != "",
		})
	}

	report := model.QualityReport{
		GeneratedAt:    a.now(),
		TotalAnomalies: len(anomalies),
	}

	counts := make(map[model.AnomalyKind]int)
	for _, rec := range anomalies {
		counts[rec.Kind]++
		if rec.Resolved {
			report.TotalResolved++
		}
		if rec.Severity == model.SeverityCritical && !rec.Resolved {
			report.UnresolvedCritical = append(report.UnresolvedCritical, rec)
		}
	}

	report.KindCounts = make([]model.KindCount, 0, len(counts))
	for kind, count := range counts {
		report.KindCounts = append(report.KindCounts, model.KindCount{Kind: kind, Count: count})
	}
	sort.Slice(report.KindCounts, func(i, j int) bool {
		return report.KindCounts[i].Kind < report.KindCounts[j].Kind
	})

	sort.Slice(report.UnresolvedCritical, func(i, j int) bool {
		a, b := report.UnresolvedCritical[i], report.UnresolvedCritical[j]
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		return a.Kind < b.Kind
	})

	report.Scores = scores(in.Tables)

	report.Standardization = append([]model.StandardizationStats(nil), in.Standardization...)
	sort.Slice(report.Standardization, func(i, j int) bool {
		return report.Standardization[i].EntityType < report.Standardization[j].EntityType
	})

	return report
}

// scores derives completeness, uniqueness and consistency in [0, 1] from
// raw table counts.
func scores(tables []model.TableStats) []model.TableScore {
	out := make([]model.TableScore, 0, len(tables))
	for _, t := range tables {
		score := model.TableScore{
			EntityType:   t.EntityType,
			Records:      t.Records,
			Skipped:      t.Skipped,
			Completeness: 1,
			Uniqueness:   1,
			Consistency:  1,
		}
		if total := t.Records + t.Skipped; total > 0 {
			score.Completeness = round4(float64(t.Records) / float64(total))
		}
		if t.Records > 0 {
			score.Uniqueness = round4(float64(t.Records-t.Duplicates) / float64(t.Records))
			score.Consistency = round4(float64(t.Records-t.Anomalous) / float64(t.Records))
		}
		out = append(out, score)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EntityType < out[j].EntityType
	})
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
