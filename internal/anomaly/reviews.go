package anomaly

import (
	"fmt"
	"time"

	"github.com/olist-data/refinery/internal/common"
	"github.com/olist-data/refinery/internal/model"
)

// ReviewConfig holds the review timing thresholds.
type ReviewConfig struct {
	// Grace absorbs small clock skew before a review counts as created
	// before its order.
	Grace time.Duration
	// LateResponse is how long a seller may take before the answer counts
	// as late.
	LateResponse time.Duration
	// NegativeScoreMax is the highest score still considered negative.
	NegativeScoreMax int
}

// DefaultReviewConfig returns the default review thresholds.
func DefaultReviewConfig() ReviewConfig {
	return ReviewConfig{
		Grace:            time.Hour,
		LateResponse:     30 * 24 * time.Hour,
		NegativeScoreMax: 2,
	}
}

// ReviewAnalyzer validates review timing against the order each review
// belongs to.
type ReviewAnalyzer struct {
	config ReviewConfig
}

// NewReviewAnalyzer creates an analyzer with the given thresholds.
func NewReviewAnalyzer(config ReviewConfig) *ReviewAnalyzer {
	return &ReviewAnalyzer{config: config}
}

// Analyze checks one review joined to its order. A nil order limits the
// checks to those that need no order context. A review without an ID is a
// structural error.
func (a *ReviewAnalyzer) Analyze(rv model.Review, ord *model.Order) ([]model.AnomalyRecord, error) {
	if rv.ID == "" {
		return nil, common.StructuralError("review_id")
	}

	var records []model.AnomalyRecord
	flag := func(kind model.AnomalyKind, severity model.Severity, detail string) {
		records = append(records, model.AnomalyRecord{
			EntityType: model.EntityReview,
			EntityID:   rv.ID,
			Kind:       kind,
			Severity:   severity,
			Detail:     detail,
		})
	}

	if ord != nil {
		// Reviews predating their purchase point at data or timezone
		// corruption; documented, never auto-resolved.
		if rv.CreatedAt.Before(ord.PurchasedAt.Add(-a.config.Grace)) {
			flag(model.AnomalyReviewBeforeOrder, model.SeverityCritical,
				fmt.Sprintf("review created %s before purchase %s",
					rv.CreatedAt.Format(time.DateOnly), ord.PurchasedAt.Format(time.DateOnly)))
		}

		if ord.Status == model.OrderCanceled && rv.Score <= a.config.NegativeScoreMax {
			flag(model.AnomalyNegativeAfterCancel, model.SeverityWarning,
				fmt.Sprintf("score %d on canceled order %s", rv.Score, ord.ID))
		}
	}

	if rv.Silent() {
		flag(model.AnomalySilentReview, model.SeverityInfo, "no comment title or message")
	}

	switch {
	case rv.AnsweredAt == nil:
		flag(model.AnomalyNoSellerResponse, model.SeverityInfo, "seller never answered")
	case rv.AnsweredAt.Sub(rv.CreatedAt) > a.config.LateResponse:
		flag(model.AnomalyLateSellerResponse, model.SeverityInfo,
			fmt.Sprintf("seller answered after %.0f days", rv.AnsweredAt.Sub(rv.CreatedAt).Hours()/24))
	}

	return records, nil
}
