// Package storage provides the data persistence layer for the refinery.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/olist-data/refinery/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrNotFound       = errors.New("record not found")
	ErrInvalidRecord  = errors.New("invalid record")
	ErrInvalidQuality = errors.New("invalid quality score")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateReferences validates a slice of zip code references.
func validateReferences(refs []model.ZipCodeReference) error {
	if refs == nil {
		return fmt.Errorf("%w: refs", ErrNilParameter)
	}
	if len(refs) == 0 {
		return fmt.Errorf("%w: refs", ErrEmptySlice)
	}
	for i, ref := range refs {
		if err := validateReference(&ref); err != nil {
			return fmt.Errorf("reference at index %d: %w", i, err)
		}
	}
	return nil
}

func validateReference(ref *model.ZipCodeReference) error {
	if strings.TrimSpace(ref.PostalPrefix) == "" {
		return fmt.Errorf("%w: missing postal prefix", ErrInvalidRecord)
	}
	if strings.TrimSpace(ref.CanonicalCity) == "" {
		return fmt.Errorf("%w: missing canonical city", ErrInvalidRecord)
	}
	switch ref.Quality {
	case model.QualityLow, model.QualityMedium, model.QualityHigh:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidQuality, ref.Quality)
	}
	if ref.SampleCount < 1 {
		return fmt.Errorf("%w: sample count must be positive", ErrInvalidRecord)
	}
	return nil
}

// validateEntities validates a slice of entities.
func validateEntities(entities []model.Entity) error {
	if entities == nil {
		return fmt.Errorf("%w: entities", ErrNilParameter)
	}
	if len(entities) == 0 {
		return fmt.Errorf("%w: entities", ErrEmptySlice)
	}
	for i, e := range entities {
		if strings.TrimSpace(e.ID) == "" {
			return fmt.Errorf("entity at index %d: %w: missing id", i, ErrInvalidRecord)
		}
		if e.Type == "" {
			return fmt.Errorf("entity at index %d: %w: missing type", i, ErrInvalidRecord)
		}
	}
	return nil
}

// validateReconciliations validates a slice of reconciliation records.
func validateReconciliations(records []model.ReconciliationRecord) error {
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}
	for i, rec := range records {
		if strings.TrimSpace(rec.OrderID) == "" {
			return fmt.Errorf("record at index %d: %w: missing order id", i, ErrInvalidRecord)
		}
	}
	return nil
}

// validateAnomalies validates a slice of anomaly records.
func validateAnomalies(records []model.AnomalyRecord) error {
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}
	for i, rec := range records {
		if strings.TrimSpace(rec.EntityID) == "" {
			return fmt.Errorf("record at index %d: %w: missing entity id", i, ErrInvalidRecord)
		}
		if rec.Kind == "" {
			return fmt.Errorf("record at index %d: %w: missing kind", i, ErrInvalidRecord)
		}
	}
	return nil
}
