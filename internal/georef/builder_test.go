package georef

import (
	"testing"

	"github.com/olist-data/refinery/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(prefix, city string, lat, lon float64) model.GeoSample {
	return model.GeoSample{PostalPrefix: prefix, CityRaw: city, State: "SP", Lat: lat, Lon: lon}
}

func TestBuilder_Build(t *testing.T) {
	tests := []struct {
		name          string
		samples       []model.GeoSample
		wantPrefixes  int
		wantCity      map[string]string
		wantCount     map[string]int
		wantQuality   map[string]model.QualityScore
		wantDuplicate int
		wantSkipped   int
	}{
		{
			name: "mode wins for canonical city",
			samples: []model.GeoSample{
				sample("01310", "Sao Paulo", -23.56, -46.63),
				sample("01310", "São Paulo", -23.55, -46.64),
				sample("01310", "Sao Paulo", -23.57, -46.65),
			},
			wantPrefixes: 1,
			wantCity:     map[string]string{"01310": "Sao Paulo"},
			wantCount:    map[string]int{"01310": 3},
			wantQuality:  map[string]model.QualityScore{"01310": model.QualityLow},
		},
		{
			name: "tie breaks to first seen variant",
			samples: []model.GeoSample{
				sample("04001", "sao paulo", -23.57, -46.64),
				sample("04001", "São Paulo", -23.58, -46.65),
			},
			wantPrefixes: 1,
			wantCity:     map[string]string{"04001": "sao paulo"},
			wantCount:    map[string]int{"04001": 2},
		},
		{
			name: "exact duplicates removed before aggregation",
			samples: []model.GeoSample{
				sample("01310", "Sao Paulo", -23.56, -46.63),
				sample("01310", "Sao Paulo", -23.56, -46.63),
				sample("01310", "Sao Paulo", -23.56, -46.63),
				sample("01310", "Osasco", -23.53, -46.79),
				sample("01310", "Osasco", -23.52, -46.78),
			},
			wantPrefixes: 1,
			// After dedup Sao Paulo has one sample and Osasco two.
			wantCity:      map[string]string{"01310": "Osasco"},
			wantCount:     map[string]int{"01310": 3},
			wantDuplicate: 2,
		},
		{
			name: "single sample prefix kept with zero std and low quality",
			samples: []model.GeoSample{
				sample("99999", "Recanto", -15.80, -47.86),
			},
			wantPrefixes: 1,
			wantCity:     map[string]string{"99999": "Recanto"},
			wantCount:    map[string]int{"99999": 1},
			wantQuality:  map[string]model.QualityScore{"99999": model.QualityLow},
		},
		{
			name: "missing prefix skipped not dropped silently",
			samples: []model.GeoSample{
				sample("", "Nowhere", 0, 0),
				sample("01310", "Sao Paulo", -23.56, -46.63),
			},
			wantPrefixes: 1,
			wantCity:     map[string]string{"01310": "Sao Paulo"},
			wantCount:    map[string]int{"01310": 1},
			wantSkipped:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(DefaultConfig())
			refs, stats := b.Build(tt.samples)

			require.Len(t, refs, tt.wantPrefixes)
			assert.Equal(t, tt.wantPrefixes, stats.Prefixes)
			assert.Equal(t, tt.wantDuplicate, stats.Duplicates)
			assert.Equal(t, tt.wantSkipped, stats.Skipped)

			byPrefix := make(map[string]model.ZipCodeReference)
			for _, ref := range refs {
				_, dup := byPrefix[ref.PostalPrefix]
				require.False(t, dup, "prefix %s appears twice", ref.PostalPrefix)
				byPrefix[ref.PostalPrefix] = ref
			}

			for prefix, city := range tt.wantCity {
				assert.Equal(t, city, byPrefix[prefix].CanonicalCity)
			}
			for prefix, count := range tt.wantCount {
				assert.Equal(t, count, byPrefix[prefix].SampleCount)
			}
			for prefix, quality := range tt.wantQuality {
				assert.Equal(t, quality, byPrefix[prefix].Quality)
			}
		})
	}
}

func TestBuilder_OneRowPerPrefix(t *testing.T) {
	samples := []model.GeoSample{
		sample("01310", "Sao Paulo", -23.56, -46.63),
		sample("20040", "Rio de Janeiro", -22.90, -43.18),
		sample("01310", "São Paulo", -23.55, -46.64),
		sample("30130", "Belo Horizonte", -19.92, -43.94),
		sample("20040", "rio de janeiro", -22.91, -43.17),
	}

	refs, stats := NewBuilder(DefaultConfig()).Build(samples)

	require.Len(t, refs, 3)
	assert.Equal(t, 3, stats.Prefixes)

	// Output preserves first-seen prefix order.
	assert.Equal(t, "01310", refs[0].PostalPrefix)
	assert.Equal(t, "20040", refs[1].PostalPrefix)
	assert.Equal(t, "30130", refs[2].PostalPrefix)
}

func TestBuilder_Determinism(t *testing.T) {
	samples := []model.GeoSample{
		sample("01310", "Sao Paulo", -23.56, -46.63),
		sample("01310", "São Paulo", -23.55, -46.64),
		sample("01310", "Sao Paulo", -23.57, -46.65),
		sample("01310", "São Paulo", -23.54, -46.66),
	}

	b := NewBuilder(DefaultConfig())
	first, _ := b.Build(samples)
	second, _ := b.Build(samples)

	require.Equal(t, first, second)
	// Tied modes resolve to the variant seen first.
	assert.Equal(t, "Sao Paulo", first[0].CanonicalCity)
}

func TestBuilder_Statistics(t *testing.T) {
	samples := []model.GeoSample{
		sample("01310", "Sao Paulo", -23.50, -46.60),
		sample("01310", "Sao Paulo", -23.70, -46.80),
	}

	refs, _ := NewBuilder(DefaultConfig()).Build(samples)
	require.Len(t, refs, 1)
	ref := refs[0]

	assert.InDelta(t, -23.60, ref.MeanLat, 1e-9)
	assert.InDelta(t, -46.70, ref.MeanLon, 1e-9)
	// Population std of {-23.50, -23.70} is 0.10.
	assert.InDelta(t, 0.10, ref.LatStd, 1e-9)
	assert.InDelta(t, 0.10, ref.LonStd, 1e-9)
	assert.InDelta(t, 0.20*111, ref.LatSpreadKm, 0.01)
	assert.Equal(t, 2, ref.SampleCount)
	assert.Equal(t, 1, ref.CityVariations)
}

func TestBuilder_QualityBuckets(t *testing.T) {
	b := NewBuilder(DefaultConfig())

	assert.Equal(t, model.QualityLow, b.quality(1))
	assert.Equal(t, model.QualityLow, b.quality(4))
	assert.Equal(t, model.QualityMedium, b.quality(5))
	assert.Equal(t, model.QualityMedium, b.quality(20))
	assert.Equal(t, model.QualityHigh, b.quality(21))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{MediumMin: 0, HighAbove: 20}.Validate())
	assert.Error(t, Config{MediumMin: 10, HighAbove: 5}.Validate())
}
