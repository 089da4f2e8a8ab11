// Package reconcile matches order item totals against payment totals and
// classifies every order with an ordered, first-match-wins rule table.
package reconcile

import (
	"fmt"
	"math"

	"github.com/olist-data/refinery/internal/model"
)

// Config holds the reconciliation thresholds. The tolerance and tax ratio
// are empirically chosen and deliberately configurable, not invariants.
type Config struct {
	// AmountTolerance is the largest absolute delta still considered equal.
	AmountTolerance float64
	// TaxRatioMax caps delta/items_total for a positive delta to still be
	// classified as tax-driven.
	TaxRatioMax float64
	// FragmentedPaymentsAbove flags orders paid in more than this many rows.
	FragmentedPaymentsAbove int
}

// DefaultConfig returns the default reconciliation thresholds.
func DefaultConfig() Config {
	return Config{
		AmountTolerance:         0.01,
		TaxRatioMax:             0.10,
		FragmentedPaymentsAbove: 10,
	}
}

// ledger is one order with its materialized totals, the unit every rule
// evaluates against.
type ledger struct {
	order         model.Order
	items         []model.OrderItem
	payments      []model.Payment
	itemsTotal    float64
	paymentsTotal float64
}

// delta is payments minus items: positive when the customer paid more than
// the items and freight sum to, as taxes would cause.
func (l *ledger) delta() float64 {
	return l.paymentsTotal - l.itemsTotal
}

// outcome is what a matched rule decides for the order.
type outcome struct {
	kind       model.AnomalyKind
	severity   model.Severity
	resolution model.ResolutionAction
	detail     string
	apply      func(l *ledger) // rewrites payment fields; nil for documented-only kinds
}

// rule is one predicate→outcome pair. Rules are evaluated top to bottom and
// the first match wins, so the kinds stay mutually exclusive.
type rule struct {
	name    string
	matches func(l *ledger, cfg Config) bool
	decide  func(l *ledger, cfg Config) outcome
}

var rules = []rule{
	{
		name: "missing_payment",
		matches: func(l *ledger, _ Config) bool {
			return l.itemsTotal > 0 && l.paymentsTotal == 0 && l.order.Status == model.OrderDelivered
		},
		decide: func(l *ledger, _ Config) outcome {
			return outcome{
				kind:     model.AnomalyMissingPayment,
				severity: model.SeverityCritical,
				detail:   fmt.Sprintf("delivered order with items total %.2f and no payment", l.itemsTotal),
			}
		},
	},
	{
		name: "zero_value_voucher",
		matches: func(l *ledger, _ Config) bool {
			return len(l.payments) == 1 &&
				l.payments[0].Value == 0 &&
				l.payments[0].Type == model.PaymentVoucher
		},
		decide: func(_ *ledger, _ Config) outcome {
			return outcome{
				kind:     model.AnomalyZeroValueVoucher,
				severity: model.SeverityInfo,
				detail:   "single zero-value voucher payment, legitimate",
			}
		},
	},
	{
		name: "installment_error",
		matches: func(l *ledger, _ Config) bool {
			for _, p := range l.payments {
				if p.Type == model.PaymentCreditCard && p.Installments == 0 {
					return true
				}
			}
			return false
		},
		decide: func(_ *ledger, _ Config) outcome {
			return outcome{
				kind:       model.AnomalyInstallmentError,
				severity:   model.SeverityWarning,
				resolution: model.ResolutionSetInstallments,
				detail:     "credit card payment with zero installments",
				apply: func(l *ledger) {
					for i := range l.payments {
						if l.payments[i].Type == model.PaymentCreditCard && l.payments[i].Installments == 0 {
							l.payments[i].Installments = 1
						}
					}
				},
			}
		},
	},
	{
		name: "undefined_payment_type",
		matches: func(l *ledger, _ Config) bool {
			for _, p := range l.payments {
				if p.Type == model.PaymentNotDefined {
					return true
				}
			}
			return false
		},
		decide: func(_ *ledger, _ Config) outcome {
			return outcome{
				kind:       model.AnomalyUndefinedPaymentType,
				severity:   model.SeverityInfo,
				resolution: model.ResolutionRewriteType,
				detail:     "payment type not_defined rewritten to voucher",
				apply: func(l *ledger) {
					for i := range l.payments {
						if l.payments[i].Type == model.PaymentNotDefined {
							l.payments[i].Type = model.PaymentVoucher
						}
					}
				},
			}
		},
	},
	{
		name: "tax_discrepancy",
		matches: func(l *ledger, cfg Config) bool {
			d := l.delta()
			return math.Abs(d) > cfg.AmountTolerance &&
				d > 0 &&
				l.itemsTotal > 0 &&
				d/l.itemsTotal <= cfg.TaxRatioMax
		},
		decide: func(l *ledger, _ Config) outcome {
			return outcome{
				kind:     model.AnomalyTaxDiscrepancy,
				severity: model.SeverityInfo,
				detail:   fmt.Sprintf("payments exceed items by %.2f, consistent with untracked tax", l.delta()),
			}
		},
	},
}
