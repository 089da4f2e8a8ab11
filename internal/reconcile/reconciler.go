package reconcile

import (
	"fmt"
	"math"

	"github.com/olist-data/refinery/internal/common"
	"github.com/olist-data/refinery/internal/model"
)

// Reconciler classifies orders against the rule table.
type Reconciler struct {
	config Config
}

// NewReconciler creates a reconciler with the given thresholds.
func NewReconciler(config Config) *Reconciler {
	return &Reconciler{config: config}
}

// Result is everything one order's reconciliation produced. Payments holds
// rewritten copies when a technical resolution applied; the caller's input
// slices are never mutated.
type Result struct {
	Record            model.ReconciliationRecord
	Payments          []model.Payment
	Anomalies         []model.AnomalyRecord
	DuplicatesDropped int
}

// Reconcile produces exactly one ReconciliationRecord for the order.
// Duplicate item and payment rows (same sequence key) are dropped keep-first
// before totals are computed, and the drop is documented. An order without
// an ID is a structural error.
func (r *Reconciler) Reconcile(order model.Order, items []model.OrderItem, payments []model.Payment) (Result, error) {
	if order.ID == "" {
		return Result{}, common.StructuralError("order_id")
	}

	l := &ledger{order: order}
	var dropped int
	l.items, dropped = dedupItems(items)

	result := Result{DuplicatesDropped: dropped}
	l.payments, dropped = dedupPayments(payments)
	result.DuplicatesDropped += dropped

	for _, it := range l.items {
		l.itemsTotal += it.Total()
	}
	for _, p := range l.payments {
		l.paymentsTotal += p.Value
	}

	record := model.ReconciliationRecord{
		OrderID:       order.ID,
		ItemsTotal:    l.itemsTotal,
		PaymentsTotal: l.paymentsTotal,
		Delta:         l.delta(),
	}

	for _, rl := range rules {
		if !rl.matches(l, r.config) {
			continue
		}
		out := rl.decide(l, r.config)
		record.Kind = out.kind
		record.Resolution = out.resolution
		if out.apply != nil {
			out.apply(l)
		}
		result.Anomalies = append(result.Anomalies, model.AnomalyRecord{
			EntityType: model.EntityOrder,
			EntityID:   order.ID,
			Kind:       out.kind,
			Severity:   out.severity,
			Detail:     out.detail,
			Resolved:   out.apply != nil,
		})
		break
	}

	// A residual delta that matched no rule is documented, never raised.
	if record.Kind == "" && math.Abs(record.Delta) > r.config.AmountTolerance {
		result.Anomalies = append(result.Anomalies, model.AnomalyRecord{
			EntityType: model.EntityOrder,
			EntityID:   order.ID,
			Kind:       model.AnomalyAmountMismatch,
			Severity:   model.SeverityWarning,
			Detail:     fmt.Sprintf("items %.2f vs payments %.2f", record.ItemsTotal, record.PaymentsTotal),
		})
	}

	if result.DuplicatesDropped > 0 {
		result.Anomalies = append(result.Anomalies, model.AnomalyRecord{
			EntityType: model.EntityOrder,
			EntityID:   order.ID,
			Kind:       model.AnomalyDuplicateRows,
			Severity:   model.SeverityWarning,
			Detail:     fmt.Sprintf("%d duplicate item/payment rows dropped", result.DuplicatesDropped),
			Resolved:   true,
		})
	}

	result.Record = record
	result.Payments = l.payments
	return result, nil
}

// StructuralAnomalies scans whole orders for shapes that a per-order
// reconciliation cannot express: shipped orders that lost their items and
// orders split across an implausible number of payment rows.
func (r *Reconciler) StructuralAnomalies(order model.Order, items []model.OrderItem, payments []model.Payment) []model.AnomalyRecord {
	var records []model.AnomalyRecord

	if order.Status == model.OrderShipped && len(items) == 0 {
		records = append(records, model.AnomalyRecord{
			EntityType: model.EntityOrder,
			EntityID:   order.ID,
			Kind:       model.AnomalyCorruptedOrder,
			Severity:   model.SeverityCritical,
			Detail:     "shipped order with no item rows",
		})
	}

	if len(payments) > r.config.FragmentedPaymentsAbove {
		records = append(records, model.AnomalyRecord{
			EntityType: model.EntityOrder,
			EntityID:   order.ID,
			Kind:       model.AnomalyFragmentedVouchers,
			Severity:   model.SeverityInfo,
			Detail:     fmt.Sprintf("order paid across %d payment rows", len(payments)),
		})
	}

	return records
}

func dedupItems(items []model.OrderItem) ([]model.OrderItem, int) {
	seen := make(map[int]struct{}, len(items))
	out := make([]model.OrderItem, 0, len(items))
	dropped := 0
	for _, it := range items {
		if _, dup := seen[it.ItemSeq]; dup {
			dropped++
			continue
		}
		seen[it.ItemSeq] = struct{}{}
		out = append(out, it)
	}
	return out, dropped
}

func dedupPayments(payments []model.Payment) ([]model.Payment, int) {
	seen := make(map[int]struct{}, len(payments))
	out := make([]model.Payment, 0, len(payments))
	dropped := 0
	for _, p := range payments {
		if _, dup := seen[p.Seq]; dup {
			dropped++
			continue
		}
		seen[p.Seq] = struct{}{}
		out = append(out, p)
	}
	return out, dropped
}
