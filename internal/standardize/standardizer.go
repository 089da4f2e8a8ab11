// Package standardize rewrites entity city names against the canonical
// geographic reference and enriches entities with reference coordinates.
package standardize

import (
	"github.com/olist-data/refinery/internal/common"
	"github.com/olist-data/refinery/internal/georef"
	"github.com/olist-data/refinery/internal/model"
)

// Standardizer looks up entities in an injected read-only reference map, so
// it is reentrant and testable with synthetic references.
type Standardizer struct {
	refs map[string]model.ZipCodeReference
}

// NewStandardizer indexes the reference rows by postal prefix.
func NewStandardizer(refs []model.ZipCodeReference) *Standardizer {
	index := make(map[string]model.ZipCodeReference, len(refs))
	for _, ref := range refs {
		index[ref.PostalPrefix] = ref
	}
	return &Standardizer{refs: index}
}

// Standardize returns a copy of the entity with its standardization fields
// set. The raw city is never overwritten. An entity without a postal prefix
// is a structural error and is not processed.
func (s *Standardizer) Standardize(e model.Entity) (model.Entity, error) {
	if e.PostalPrefix == "" {
		return e, common.StructuralError("postal_prefix")
	}

	ref, ok := s.refs[e.PostalPrefix]
	if !ok {
		// Never fabricate a value for an unmatched prefix.
		e.Status = model.StatusUnmatched
		e.StandardizedCity = ""
		return e, nil
	}

	if georef.NormalizeCity(e.EffectiveCity()) == georef.NormalizeCity(ref.CanonicalCity) {
		e.Status = model.StatusUnchanged
		return e, nil
	}

	// Store the reference's canonical casing, not the entity's raw casing.
	e.StandardizedCity = ref.CanonicalCity
	e.Status = model.StatusCorrected
	return e, nil
}

// StandardizeAll processes a batch of entities of one type, skipping
// structurally invalid records and tallying the outcome per status.
func (s *Standardizer) StandardizeAll(entities []model.Entity) ([]model.Entity, model.StandardizationStats) {
	stats := model.StandardizationStats{Total: len(entities)}
	if len(entities) > 0 {
		stats.EntityType = entities[0].Type
	}

	out := make([]model.Entity, 0, len(entities))
	for _, e := range entities {
		std, err := s.Standardize(e)
		if err != nil {
			stats.Skipped++
			continue
		}
		switch std.Status {
		case model.StatusCorrected:
			stats.Corrected++
		case model.StatusUnmatched:
			stats.Unmatched++
		case model.StatusUnchanged:
			stats.Unchanged++
		}
		out = append(out, std)
	}
	return out, stats
}
