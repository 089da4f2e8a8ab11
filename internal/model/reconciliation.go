package model

// AnomalyKind names a documented consistency rule that a record failed.
type AnomalyKind string

// Financial reconciliation kinds, mutually exclusive per order.
const (
	AnomalyMissingPayment       AnomalyKind = "missing_payment"
	AnomalyZeroValueVoucher     AnomalyKind = "zero_value_voucher"
	AnomalyInstallmentError     AnomalyKind = "installment_error"
	AnomalyUndefinedPaymentType AnomalyKind = "undefined_payment_type"
	AnomalyTaxDiscrepancy       AnomalyKind = "tax_discrepancy"
)

// Structural and geographic kinds emitted outside the reconciliation table.
const (
	AnomalyAmountMismatch      AnomalyKind = "amount_mismatch"
	AnomalyCorruptedOrder      AnomalyKind = "corrupted_order"
	AnomalyDuplicateRows       AnomalyKind = "duplicate_rows"
	AnomalyFragmentedVouchers  AnomalyKind = "fragmented_vouchers"
	AnomalyCityNumeric         AnomalyKind = "city_numeric"
	AnomalyCityContainsSlash   AnomalyKind = "city_contains_slash"
	AnomalyCityContainsComma   AnomalyKind = "city_contains_comma"
	AnomalyCityContainsCountry AnomalyKind = "city_contains_country"
	AnomalyCityTooShort        AnomalyKind = "city_too_short"
	AnomalyCityExtraSpaces     AnomalyKind = "city_extra_spaces"
)

// Product and review kinds.
const (
	AnomalyMissingDimensions   AnomalyKind = "missing_dimensions"
	AnomalyImplausibleDensity  AnomalyKind = "implausible_density"
	AnomalyReviewBeforeOrder   AnomalyKind = "review_before_purchase"
	AnomalySilentReview        AnomalyKind = "silent_review"
	AnomalyLateSellerResponse  AnomalyKind = "late_seller_response"
	AnomalyNoSellerResponse    AnomalyKind = "no_seller_response"
	AnomalyNegativeAfterCancel AnomalyKind = "negative_review_after_cancellation"
)

// ResolutionAction is a deterministic fix applied to a flagged record.
type ResolutionAction string

// Resolution action constants. Only technical fixes rewrite fields; every
// other anomaly is documented, never silently altered.
const (
	ResolutionSetInstallments ResolutionAction = "set_installments_to_one"
	ResolutionRewriteType     ResolutionAction = "rewrite_type_to_voucher"
	ResolutionUnitCorrection  ResolutionAction = "unit_correction"
)

// ReconciliationRecord is the result of matching one order's item totals
// against its payment totals. Exactly one is produced per order.
type ReconciliationRecord struct {
	OrderID       string
	ItemsTotal    float64
	PaymentsTotal float64
	Delta         float64 // payments minus items
	Kind          AnomalyKind      // empty when reconciled
	Resolution    ResolutionAction // empty when nothing was rewritten
}

// Reconciled reports whether the order matched no anomaly rule.
func (r ReconciliationRecord) Reconciled() bool {
	return r.Kind == ""
}
