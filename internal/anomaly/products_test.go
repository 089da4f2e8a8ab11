package anomaly

import (
	"testing"

	"github.com/olist-data/refinery/internal/common"
	"github.com/olist-data/refinery/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductAnalyzer_MissingDimensions(t *testing.T) {
	a := NewProductAnalyzer(DefaultProductConfig())

	t.Run("physical category is a warning", func(t *testing.T) {
		p := model.Product{ID: "p1", Category: "moveis_decoracao"}
		_, records, err := a.Analyze(p)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, model.AnomalyMissingDimensions, records[0].Kind)
		assert.Equal(t, model.SeverityWarning, records[0].Severity)
		assert.False(t, records[0].Resolved)
	})

	t.Run("digital category is informational", func(t *testing.T) {
		p := model.Product{ID: "p2", Category: "computers_accessories"}
		_, records, err := a.Analyze(p)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, model.SeverityInfo, records[0].Severity)
	})
}

func TestProductAnalyzer_PlausibleProductPassesClean(t *testing.T) {
	a := NewProductAnalyzer(DefaultProductConfig())

	// 1000 cm³ at 500 g is 0.5 g/cm³, well inside the band.
	p := model.Product{ID: "p3", Category: "cama_mesa_banho", LengthCm: 10, HeightCm: 10, WidthCm: 10, WeightG: 500}
	got, records, err := a.Analyze(p)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, p, got)
}

func TestProductAnalyzer_UnitCorrection(t *testing.T) {
	a := NewProductAnalyzer(DefaultProductConfig())

	t.Run("dimensions in mm corrected", func(t *testing.T) {
		// 100x100x100 recorded in mm for a 500 g product: raw density
		// 0.0005 g/cm³. As 10x10x10 cm it is 0.5 g/cm³.
		p := model.Product{ID: "p4", Category: "esporte_lazer", LengthCm: 100, HeightCm: 100, WidthCm: 100, WeightG: 500}
		got, records, err := a.Analyze(p)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, model.AnomalyImplausibleDensity, records[0].Kind)
		assert.True(t, records[0].Resolved)
		assert.InDelta(t, 10, got.LengthCm, 1e-9)
		assert.InDelta(t, 0.5, got.Density(), 1e-9)
		// Input untouched.
		assert.InDelta(t, 100, p.LengthCm, 1e-9)
	})

	t.Run("under-scaled weight rescued", func(t *testing.T) {
		// 2 in the grams field for a 40x30x20 box: raw density is far
		// below the band; a unit correction brings it to ~0.083 g/cm³.
		p := model.Product{ID: "p5", Category: "bebes", LengthCm: 40, HeightCm: 30, WidthCm: 20, WeightG: 2}
		got, records, err := a.Analyze(p)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].Resolved)
		assert.InDelta(t, 0.0833, got.Density(), 0.001)
	})

	t.Run("unrescuable density stays flagged", func(t *testing.T) {
		// 1 cm³ at 100 kg: 100000 g/cm³ raw. Scaling by 1000 in either
		// direction still misses the band, so the product is documented
		// uncorrected.
		p := model.Product{ID: "p6", Category: "ferramentas", LengthCm: 1, HeightCm: 1, WidthCm: 1, WeightG: 100000}
		got, records, err := a.Analyze(p)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, model.AnomalyImplausibleDensity, records[0].Kind)
		assert.False(t, records[0].Resolved)
		assert.Equal(t, p, got)
	})
}

func TestProductAnalyzer_CorrectedValueInsideBand(t *testing.T) {
	cfg := DefaultProductConfig()
	a := NewProductAnalyzer(cfg)

	p := model.Product{ID: "p7", Category: "esporte_lazer", LengthCm: 100, HeightCm: 100, WidthCm: 100, WeightG: 500}
	got, records, err := a.Analyze(p)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.True(t, records[0].Resolved)

	density := got.Density()
	assert.GreaterOrEqual(t, density, cfg.DensityMin)
	assert.LessOrEqual(t, density, cfg.DensityMax)
}

func TestProductAnalyzer_MissingIDIsStructural(t *testing.T) {
	a := NewProductAnalyzer(DefaultProductConfig())
	_, _, err := a.Analyze(model.Product{Category: "brinquedos"})
	require.Error(t, err)
	assert.True(t, common.IsStructural(err))
}
