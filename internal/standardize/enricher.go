package standardize

import "github.com/olist-data/refinery/internal/model"

// Enricher joins standardized entities to their reference coordinates and
// attaches the reference's quality score and dispersion as a geographic
// confidence signal.
type Enricher struct {
	refs map[string]model.ZipCodeReference
}

// NewEnricher indexes the reference rows by postal prefix.
func NewEnricher(refs []model.ZipCodeReference) *Enricher {
	index := make(map[string]model.ZipCodeReference, len(refs))
	for _, ref := range refs {
		index[ref.PostalPrefix] = ref
	}
	return &Enricher{refs: index}
}

// Enrich returns a copy of the entity with coordinates attached. Unmatched
// entities keep nil coordinates; positions are never interpolated or
// guessed.
func (en *Enricher) Enrich(e model.Entity) model.Entity {
	ref, ok := en.refs[e.PostalPrefix]
	if !ok || e.Status == model.StatusUnmatched {
		e.Lat, e.Lon = nil, nil
		e.LatStd, e.LonStd = nil, nil
		e.GeoQuality = ""
		e.GeoSampleCount = 0
		return e
	}

	lat, lon := ref.MeanLat, ref.MeanLon
	latStd, lonStd := ref.LatStd, ref.LonStd
	e.Lat, e.Lon = &lat, &lon
	e.LatStd, e.LonStd = &latStd, &lonStd
	e.GeoQuality = ref.Quality
	e.GeoSampleCount = ref.SampleCount
	return e
}

// EnrichAll enriches a batch in place order.
func (en *Enricher) EnrichAll(entities []model.Entity) []model.Entity {
	out := make([]model.Entity, 0, len(entities))
	for _, e := range entities {
		out = append(out, en.Enrich(e))
	}
	return out
}
