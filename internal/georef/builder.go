package georef

import (
	"math"

	"github.com/olist-data/refinery/internal/common"
	"github.com/olist-data/refinery/internal/model"
)

// kmPerLatDegree is the approximate surface distance of one degree of
// latitude. Longitude spread is scaled by cos(mean latitude).
const kmPerLatDegree = 111.0

// Config holds the quality bucket thresholds. Sample counts below MediumMin
// score low, counts above HighAbove score high, everything between scores
// medium.
type Config struct {
	MediumMin int
	HighAbove int
}

// DefaultConfig returns the default quality bucket thresholds.
func DefaultConfig() Config {
	return Config{
		MediumMin: 5,
		HighAbove: 20,
	}
}

// BuildStats counts what happened to the raw samples during a build.
type BuildStats struct {
	TotalSamples int
	Duplicates   int
	Skipped      int
	Prefixes     int
}

// Builder collapses raw geolocation samples into one canonical reference
// record per postal prefix.
type Builder struct {
	config Config
}

// NewBuilder creates a builder with the given thresholds.
func NewBuilder(config Config) *Builder {
	return &Builder{config: config}
}

// sampleKey identifies an exact duplicate tuple.
type sampleKey struct {
	prefix string
	city   string
	lat    float64
	lon    float64
}

// prefixGroup accumulates the deduplicated samples for one postal prefix in
// input order, so mode tie-breaks stay deterministic.
type prefixGroup struct {
	state      string
	samples    []model.GeoSample
	cityCounts map[string]int
	cityOrder  []string
}

// Build aggregates samples into exactly one reference row per distinct
// postal prefix, in first-seen prefix order. Samples without a postal prefix
// are skipped and counted; no prefix is ever dropped, even with a single
// sample.
func (b *Builder) Build(samples []model.GeoSample) ([]model.ZipCodeReference, BuildStats) {
	stats := BuildStats{TotalSamples: len(samples)}

	groups := make(map[string]*prefixGroup)
	order := make([]string, 0)
	seen := make(map[sampleKey]struct{}, len(samples))

	for _, s := range samples {
		if s.PostalPrefix == "" {
			stats.Skipped++
			continue
		}

		key := sampleKey{prefix: s.PostalPrefix, city: s.CityRaw, lat: s.Lat, lon: s.Lon}
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		g, ok := groups[s.PostalPrefix]
		if !ok {
			g = &prefixGroup{
				state:      s.State,
				cityCounts: make(map[string]int),
			}
			groups[s.PostalPrefix] = g
			order = append(order, s.PostalPrefix)
		}

		g.samples = append(g.samples, s)
		if _, known := g.cityCounts[s.CityRaw]; !known {
			g.cityOrder = append(g.cityOrder, s.CityRaw)
		}
		g.cityCounts[s.CityRaw]++
	}

	refs := make([]model.ZipCodeReference, 0, len(order))
	for _, prefix := range order {
		refs = append(refs, b.aggregate(prefix, groups[prefix]))
	}
	stats.Prefixes = len(refs)

	return refs, stats
}

// aggregate collapses one prefix group into its canonical record.
func (b *Builder) aggregate(prefix string, g *prefixGroup) model.ZipCodeReference {
	ref := model.ZipCodeReference{
		PostalPrefix:   prefix,
		State:          g.state,
		CanonicalCity:  canonicalCity(g),
		CityVariations: len(g.cityOrder),
		SampleCount:    len(g.samples),
		Quality:        b.quality(len(g.samples)),
	}

	ref.MinLat, ref.MaxLat = math.Inf(1), math.Inf(-1)
	ref.MinLon, ref.MaxLon = math.Inf(1), math.Inf(-1)

	var sumLat, sumLon float64
	for _, s := range g.samples {
		sumLat += s.Lat
		sumLon += s.Lon
		ref.MinLat = math.Min(ref.MinLat, s.Lat)
		ref.MaxLat = math.Max(ref.MaxLat, s.Lat)
		ref.MinLon = math.Min(ref.MinLon, s.Lon)
		ref.MaxLon = math.Max(ref.MaxLon, s.Lon)
	}

	n := float64(len(g.samples))
	ref.MeanLat = sumLat / n
	ref.MeanLon = sumLon / n

	// Population standard deviation; 0 for a single sample.
	var varLat, varLon float64
	for _, s := range g.samples {
		varLat += (s.Lat - ref.MeanLat) * (s.Lat - ref.MeanLat)
		varLon += (s.Lon - ref.MeanLon) * (s.Lon - ref.MeanLon)
	}
	ref.LatStd = math.Sqrt(varLat / n)
	ref.LonStd = math.Sqrt(varLon / n)

	ref.LatSpreadKm = round2((ref.MaxLat - ref.MinLat) * kmPerLatDegree)
	ref.LonSpreadKm = round2((ref.MaxLon - ref.MinLon) * kmPerLatDegree * math.Cos(ref.MeanLat*math.Pi/180))

	return ref
}

// canonicalCity returns the most frequent raw city variant. Ties break to
// the variant that appeared first in input order.
func canonicalCity(g *prefixGroup) string {
	best := ""
	bestCount := 0
	for _, city := range g.cityOrder {
		if g.cityCounts[city] > bestCount {
			best = city
			bestCount = g.cityCounts[city]
		}
	}
	return best
}

func (b *Builder) quality(count int) model.QualityScore {
	switch {
	case count > b.config.HighAbove:
		return model.QualityHigh
	case count >= b.config.MediumMin:
		return model.QualityMedium
	default:
		return model.QualityLow
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Validate checks the threshold configuration.
func (c Config) Validate() error {
	if c.MediumMin < 1 || c.HighAbove < c.MediumMin {
		return common.ErrInvalidConfig
	}
	return nil
}
