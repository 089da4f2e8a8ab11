// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/olist-data/refinery/internal/model"
)

// AnomalyFilter defines filtering options for anomaly queries.
type AnomalyFilter struct {
	EntityType model.EntityType
	Kind       model.AnomalyKind
	Severity   model.Severity
	Unresolved bool
	Limit      int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Geographic reference operations
	SaveReferences(ctx context.Context, refs []model.ZipCodeReference) error
	GetReference(ctx context.Context, postalPrefix string) (*model.ZipCodeReference, error)
	GetReferences(ctx context.Context) (map[string]model.ZipCodeReference, error)
	CountReferences(ctx context.Context) (int, error)

	// Entity operations
	SaveEntities(ctx context.Context, entities []model.Entity) error
	GetEntityByID(ctx context.Context, id string) (*model.Entity, error)
	GetEntitiesByType(ctx context.Context, entityType model.EntityType) ([]model.Entity, error)
	GetStandardizationStats(ctx context.Context, entityType model.EntityType) (*model.StandardizationStats, error)

	// Reconciliation operations
	SaveReconciliations(ctx context.Context, records []model.ReconciliationRecord) error
	GetReconciliation(ctx context.Context, orderID string) (*model.ReconciliationRecord, error)
	GetFlaggedReconciliations(ctx context.Context) ([]model.ReconciliationRecord, error)

	// Anomaly operations
	SaveAnomalies(ctx context.Context, records []model.AnomalyRecord) error
	GetAnomalies(ctx context.Context, filter AnomalyFilter) ([]model.AnomalyRecord, error)

	// Report operations
	SaveReport(ctx context.Context, report *model.QualityReport) (int64, error)
	GetLatestReport(ctx context.Context) (*model.QualityReport, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
