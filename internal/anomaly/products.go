// Package anomaly validates product measurements and review timing against
// documented plausibility rules.
package anomaly

import (
	"fmt"

	"github.com/olist-data/refinery/internal/common"
	"github.com/olist-data/refinery/internal/model"
)

// ProductConfig bounds the plausible density band in g/cm³. The bounds are
// empirical and configurable, not invariants.
type ProductConfig struct {
	DensityMin float64
	DensityMax float64
}

// DefaultProductConfig returns the default density band.
func DefaultProductConfig() ProductConfig {
	return ProductConfig{
		DensityMin: 0.01,
		DensityMax: 50,
	}
}

// digitalCategories hints that a product may legitimately lack physical
// dimensions.
var digitalCategories = map[string]struct{}{
	"cds_dvds_musicals":     {},
	"dvds_blu_ray":          {},
	"electronics":           {},
	"audio":                 {},
	"telephony":             {},
	"computers":             {},
	"computers_accessories": {},
	"pc_gamer":              {},
}

// IsDigitalCategory reports whether the category suggests a digital good.
func IsDigitalCategory(category string) bool {
	_, ok := digitalCategories[category]
	return ok
}

// unitHypothesis is one candidate explanation for an implausible density:
// a dimension or weight recorded in the wrong unit.
type unitHypothesis struct {
	name   string
	rescue func(p model.Product) model.Product
}

// unitHypotheses are tried in order; the first whose corrected density falls
// inside the plausible band wins.
var unitHypotheses = []unitHypothesis{
	{
		name: "dimensions recorded in mm",
		rescue: func(p model.Product) model.Product {
			p.LengthCm /= 10
			p.HeightCm /= 10
			p.WidthCm /= 10
			return p
		},
	},
	{
		name: "dimensions under-recorded by 10x",
		rescue: func(p model.Product) model.Product {
			p.LengthCm *= 10
			p.HeightCm *= 10
			p.WidthCm *= 10
			return p
		},
	},
	{
		name: "weight recorded in kg",
		rescue: func(p model.Product) model.Product {
			p.WeightG *= 1000
			return p
		},
	},
	{
		name: "weight recorded in mg",
		rescue: func(p model.Product) model.Product {
			p.WeightG /= 1000
			return p
		},
	},
}

// ProductAnalyzer flags implausible product measurements and attempts
// deterministic unit corrections.
type ProductAnalyzer struct {
	config ProductConfig
}

// NewProductAnalyzer creates an analyzer with the given density band.
func NewProductAnalyzer(config ProductConfig) *ProductAnalyzer {
	return &ProductAnalyzer{config: config}
}

// Analyze checks one product and returns the (possibly unit-corrected)
// product plus any anomaly records. The input is never mutated; corrections
// land on the returned copy so the raw values stay auditable. A product
// without an ID is a structural error.
func (a *ProductAnalyzer) Analyze(p model.Product) (model.Product, []model.AnomalyRecord, error) {
	if p.ID == "" {
		return p, nil, common.StructuralError("product_id")
	}

	var records []model.AnomalyRecord

	if p.LengthCm <= 0 && p.HeightCm <= 0 && p.WidthCm <= 0 && p.WeightG <= 0 {
		severity := model.SeverityWarning
		if IsDigitalCategory(p.Category) {
			severity = model.SeverityInfo
		}
		records = append(records, model.AnomalyRecord{
			EntityType: model.EntityProduct,
			EntityID:   p.ID,
			Kind:       model.AnomalyMissingDimensions,
			Severity:   severity,
			Detail:     fmt.Sprintf("no physical dimensions, category %q", p.Category),
		})
		return p, records, nil
	}

	density := p.Density()
	if density == 0 || a.plausible(density) {
		return p, records, nil
	}

	for _, h := range unitHypotheses {
		corrected := h.rescue(p)
		if a.plausible(corrected.Density()) {
			records = append(records, model.AnomalyRecord{
				EntityType: model.EntityProduct,
				EntityID:   p.ID,
				Kind:       model.AnomalyImplausibleDensity,
				Severity:   model.SeverityWarning,
				Detail:     fmt.Sprintf("density %.3f g/cm³ corrected: %s", density, h.name),
				Resolved:   true,
			})
			return corrected, records, nil
		}
	}

	// Every hypothesis failed: leave the product flagged, uncorrected.
	records = append(records, model.AnomalyRecord{
		EntityType: model.EntityProduct,
		EntityID:   p.ID,
		Kind:       model.AnomalyImplausibleDensity,
		Severity:   model.SeverityWarning,
		Detail:     fmt.Sprintf("density %.3f g/cm³ outside [%.2f, %.2f], no unit hypothesis fits", density, a.config.DensityMin, a.config.DensityMax),
	})
	return p, records, nil
}

func (a *ProductAnalyzer) plausible(density float64) bool {
	return density >= a.config.DensityMin && density <= a.config.DensityMax
}
