// Package engine orchestrates the full data quality run: reference building,
// standardization, reconciliation, catalog analysis and report generation.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/olist-data/refinery/internal/anomaly"
	"github.com/olist-data/refinery/internal/georef"
	"github.com/olist-data/refinery/internal/ingest"
	"github.com/olist-data/refinery/internal/model"
	"github.com/olist-data/refinery/internal/reconcile"
	"github.com/olist-data/refinery/internal/report"
	"github.com/olist-data/refinery/internal/service"
	"github.com/olist-data/refinery/internal/standardize"
)

// DataPaths locates the raw CSV files of one dataset drop.
type DataPaths struct {
	Geolocation  string
	Customers    string
	Sellers      string
	Orders       string
	OrderItems   string
	Payments     string
	Products     string
	Reviews      string
	Translations string
}

// Config holds configuration options for the pipeline.
type Config struct {
	Paths     DataPaths
	Reference georef.Config
	Reconcile reconcile.Config
	Product   anomaly.ProductConfig
	Review    anomaly.ReviewConfig
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Reference: georef.DefaultConfig(),
		Reconcile: reconcile.DefaultConfig(),
		Product:   anomaly.DefaultProductConfig(),
		Review:    anomaly.DefaultReviewConfig(),
	}
}

// Pipeline runs the processing stages against one storage instance. Stages
// can run individually; Run executes all of them in dependency order.
type Pipeline struct {
	storage service.Storage
	config  Config
}

// New creates a pipeline with the given dependencies.
func New(storage service.Storage, config Config) *Pipeline {
	return &Pipeline{
		storage: storage,
		config:  config,
	}
}

// BuildReference collapses the raw geolocation samples into the canonical
// reference and persists it.
func (p *Pipeline) BuildReference(ctx context.Context) (georef.BuildStats, error) {
	if err := p.config.Reference.Validate(); err != nil {
		return georef.BuildStats{}, fmt.Errorf("invalid reference config: %w", err)
	}
	slog.Info("Building geographic reference", "source", p.config.Paths.Geolocation)

	samples, skipped, err := ingest.LoadGeoSamples(p.config.Paths.Geolocation)
	if err != nil {
		return georef.BuildStats{}, fmt.Errorf("failed to load geolocation samples: %w", err)
	}

	builder := georef.NewBuilder(p.config.Reference)
	refs, stats := builder.Build(samples)
	stats.Skipped += skipped

	if len(refs) > 0 {
		if err := p.storage.SaveReferences(ctx, refs); err != nil {
			return stats, fmt.Errorf("failed to save references: %w", err)
		}
	}

	slog.Info("Reference built",
		"prefixes", stats.Prefixes,
		"samples", stats.TotalSamples,
		"duplicates", stats.Duplicates,
		"skipped", stats.Skipped)
	return stats, nil
}

// StandardizeSummary counts one entity table's pass through standardization.
type StandardizeSummary struct {
	Stats     model.StandardizationStats
	Records   int
	Anomalies int
	Skipped   int
}

// Standardize rewrites customer and seller city names against the stored
// reference, enriches them with coordinates and flags malformed city names.
func (p *Pipeline) Standardize(ctx context.Context) ([]StandardizeSummary, error) {
	refs, err := p.loadReferences(ctx)
	if err != nil {
		return nil, err
	}

	standardizer := standardize.NewStandardizer(refs)
	enricher := standardize.NewEnricher(refs)

	sources := []struct {
		load func(string) ([]model.Entity, int, error)
		name string
		path string
	}{
		{name: "customers", path: p.config.Paths.Customers, load: ingest.LoadCustomers},
		{name: "sellers", path: p.config.Paths.Sellers, load: ingest.LoadSellers},
	}

	summaries := make([]StandardizeSummary, 0, len(sources))
	for _, src := range sources {
		entities, skipped, loadErr := src.load(src.path)
		if loadErr != nil {
			return nil, fmt.Errorf("failed to load %s: %w", src.name, loadErr)
		}

		standardized, stats := standardizer.StandardizeAll(entities)
		standardized = enricher.EnrichAll(standardized)
		stats.Skipped += skipped

		var anomalies []model.AnomalyRecord
		for _, e := range standardized {
			anomalies = append(anomalies, standardize.CityShapeAnomalies(e)...)
		}

		if len(standardized) > 0 {
			if err := p.storage.SaveEntities(ctx, standardized); err != nil {
				return nil, fmt.Errorf("failed to save %s: %w", src.name, err)
			}
		}
		if len(anomalies) > 0 {
			if err := p.storage.SaveAnomalies(ctx, anomalies); err != nil {
				return nil, fmt.Errorf("failed to save %s anomalies: %w", src.name, err)
			}
		}

		slog.Info("Standardized entities",
			"table", src.name,
			"total", stats.Total,
			"corrected", stats.Corrected,
			"unmatched", stats.Unmatched,
			"city_anomalies", len(anomalies))
		summaries = append(summaries, StandardizeSummary{
			Stats:     stats,
			Records:   len(standardized),
			Anomalies: len(anomalies),
			Skipped:   skipped,
		})
	}

	return summaries, nil
}

// ReconcileSummary counts one pass of financial reconciliation.
type ReconcileSummary struct {
	Orders     int
	Flagged    int
	Resolved   int
	Duplicates int
	Skipped    int
}

// Reconcile matches every order's item totals against its payments and
// persists one record per order plus the anomalies found along the way.
func (p *Pipeline) Reconcile(ctx context.Context) (ReconcileSummary, error) {
	var summary ReconcileSummary

	orders, skippedOrders, err := ingest.LoadOrders(p.config.Paths.Orders)
	if err != nil {
		return summary, fmt.Errorf("failed to load orders: %w", err)
	}
	items, skippedItems, err := ingest.LoadOrderItems(p.config.Paths.OrderItems)
	if err != nil {
		return summary, fmt.Errorf("failed to load order items: %w", err)
	}
	payments, skippedPayments, err := ingest.LoadPayments(p.config.Paths.Payments)
	if err != nil {
		return summary, fmt.Errorf("failed to load payments: %w", err)
	}
	summary.Skipped = skippedOrders + skippedItems + skippedPayments

	itemsByOrder := make(map[string][]model.OrderItem, len(orders))
	for _, it := range items {
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], it)
	}
	paymentsByOrder := make(map[string][]model.Payment, len(orders))
	for _, pay := range payments {
		paymentsByOrder[pay.OrderID] = append(paymentsByOrder[pay.OrderID], pay)
	}

	reconciler := reconcile.NewReconciler(p.config.Reconcile)
	records := make([]model.ReconciliationRecord, 0, len(orders))
	var anomalies []model.AnomalyRecord

	for _, order := range orders {
		result, recErr := reconciler.Reconcile(order, itemsByOrder[order.ID], paymentsByOrder[order.ID])
		if recErr != nil {
			summary.Skipped++
			continue
		}

		summary.Orders++
		summary.Duplicates += result.DuplicatesDropped
		if !result.Record.Reconciled() {
			summary.Flagged++
		}
		if result.Record.Resolution != "" {
			summary.Resolved++
		}

		records = append(records, result.Record)
		anomalies = append(anomalies, result.Anomalies...)
		anomalies = append(anomalies, reconciler.StructuralAnomalies(order, itemsByOrder[order.ID], paymentsByOrder[order.ID])...)
	}

	if len(records) > 0 {
		if err := p.storage.SaveReconciliations(ctx, records); err != nil {
			return summary, fmt.Errorf("failed to save reconciliations: %w", err)
		}
	}
	if len(anomalies) > 0 {
		if err := p.storage.SaveAnomalies(ctx, anomalies); err != nil {
			return summary, fmt.Errorf("failed to save reconciliation anomalies: %w", err)
		}
	}

	slog.Info("Reconciled orders",
		"orders", summary.Orders,
		"flagged", summary.Flagged,
		"resolved", summary.Resolved,
		"duplicates_dropped", summary.Duplicates)
	return summary, nil
}

// AnalyzeSummary counts one catalog analysis pass.
type AnalyzeSummary struct {
	Products        int
	Reviews         int
	Anomalies       int
	Resolved        int
	Skipped         int
	OrphanedReviews int
}

// Analyze runs the product measurement checks and the review timeline
// checks and persists everything they flag.
func (p *Pipeline) Analyze(ctx context.Context) (AnalyzeSummary, error) {
	var summary AnalyzeSummary

	products, skippedProducts, err := ingest.LoadProducts(p.config.Paths.Products)
	if err != nil {
		return summary, fmt.Errorf("failed to load products: %w", err)
	}
	translations, _, err := ingest.LoadCategoryTranslations(p.config.Paths.Translations)
	if err != nil {
		return summary, fmt.Errorf("failed to load category translations: %w", err)
	}
	summary.Skipped += skippedProducts

	analyzer := anomaly.NewProductAnalyzer(p.config.Product)
	var records []model.AnomalyRecord

	for _, product := range products {
		_, found, analyzeErr := analyzer.Analyze(product)
		if analyzeErr != nil {
			summary.Skipped++
			continue
		}
		summary.Products++
		for i := range found {
			// English category names read better in report details.
			if english, ok := translations[product.Category]; ok && found[i].Detail != "" {
				found[i].Detail += " (category " + english + ")"
			}
			if found[i].Resolved {
				summary.Resolved++
			}
		}
		records = append(records, found...)
	}

	orders, _, err := ingest.LoadOrders(p.config.Paths.Orders)
	if err != nil {
		return summary, fmt.Errorf("failed to load orders: %w", err)
	}
	ordersByID := make(map[string]model.Order, len(orders))
	for _, o := range orders {
		ordersByID[o.ID] = o
	}

	reviews, skippedReviews, err := ingest.LoadReviews(p.config.Paths.Reviews)
	if err != nil {
		return summary, fmt.Errorf("failed to load reviews: %w", err)
	}
	summary.Skipped += skippedReviews

	reviewAnalyzer := anomaly.NewReviewAnalyzer(p.config.Review)
	for _, review := range reviews {
		var order *model.Order
		if o, ok := ordersByID[review.OrderID]; ok {
			order = &o
		} else {
			summary.OrphanedReviews++
		}
		found, analyzeErr := reviewAnalyzer.Analyze(review, order)
		if analyzeErr != nil {
			summary.Skipped++
			continue
		}
		summary.Reviews++
		records = append(records, found...)
	}

	summary.Anomalies = len(records)
	if len(records) > 0 {
		if err := p.storage.SaveAnomalies(ctx, records); err != nil {
			return summary, fmt.Errorf("failed to save analysis anomalies: %w", err)
		}
	}

	slog.Info("Analyzed catalog",
		"products", summary.Products,
		"reviews", summary.Reviews,
		"anomalies", summary.Anomalies,
		"resolved", summary.Resolved)
	return summary, nil
}

// Report aggregates everything persisted so far into a quality report and
// appends it to the report history. When tables is nil the per-table counts
// are derived from storage, without ingestion skip counts.
func (p *Pipeline) Report(ctx context.Context, tables []model.TableStats) (*model.QualityReport, error) {
	anomalies, err := p.storage.GetAnomalies(ctx, service.AnomalyFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load anomalies: %w", err)
	}
	reconciliations, err := p.storage.GetFlaggedReconciliations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reconciliations: %w", err)
	}

	var standardization []model.StandardizationStats
	for _, entityType := range []model.EntityType{model.EntityCustomer, model.EntitySeller} {
		stats, statsErr := p.storage.GetStandardizationStats(ctx, entityType)
		if statsErr != nil {
			return nil, fmt.Errorf("failed to load standardization stats: %w", statsErr)
		}
		if stats.Total > 0 {
			standardization = append(standardization, *stats)
		}
	}

	if tables == nil {
		tables, err = p.deriveTables(ctx, anomalies)
		if err != nil {
			return nil, err
		}
	}

	aggregator := report.NewAggregator()
	result := aggregator.Aggregate(report.Input{
		Anomalies:       anomalies,
		Reconciliations: reconciliations,
		Standardization: standardization,
		Tables:          tables,
	})

	if _, err := p.storage.SaveReport(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	slog.Info("Report generated",
		"anomalies", result.TotalAnomalies,
		"resolved", result.TotalResolved,
		"unresolved_critical", len(result.UnresolvedCritical))
	return &result, nil
}

// Run executes every stage in dependency order and returns the final report.
func (p *Pipeline) Run(ctx context.Context) (*model.QualityReport, error) {
	if _, err := p.BuildReference(ctx); err != nil {
		return nil, err
	}

	standardized, err := p.Standardize(ctx)
	if err != nil {
		return nil, err
	}
	reconciled, err := p.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	analyzed, err := p.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	anomalies, err := p.storage.GetAnomalies(ctx, service.AnomalyFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load anomalies: %w", err)
	}
	anomalous := anomalousByType(anomalies)

	tables := make([]model.TableStats, 0, 4)
	for _, s := range standardized {
		tables = append(tables, model.TableStats{
			EntityType: s.Stats.EntityType,
			Records:    s.Records,
			Skipped:    s.Stats.Skipped,
			Anomalous:  anomalous[s.Stats.EntityType],
		})
	}
	tables = append(tables, model.TableStats{
		EntityType: model.EntityOrder,
		Records:    reconciled.Orders,
		Skipped:    reconciled.Skipped,
		Duplicates: reconciled.Duplicates,
		Anomalous:  anomalous[model.EntityOrder],
	})
	tables = append(tables, model.TableStats{
		EntityType: model.EntityProduct,
		Records:    analyzed.Products,
		Anomalous:  anomalous[model.EntityProduct],
	})
	tables = append(tables, model.TableStats{
		EntityType: model.EntityReview,
		Records:    analyzed.Reviews,
		Anomalous:  anomalous[model.EntityReview],
	})

	return p.Report(ctx, tables)
}

func (p *Pipeline) loadReferences(ctx context.Context) ([]model.ZipCodeReference, error) {
	byPrefix, err := p.storage.GetReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load references: %w", err)
	}
	if len(byPrefix) == 0 {
		return nil, fmt.Errorf("geographic reference is empty - run the reference stage first")
	}

	refs := make([]model.ZipCodeReference, 0, len(byPrefix))
	for _, ref := range byPrefix {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].PostalPrefix < refs[j].PostalPrefix })
	return refs, nil
}

// anomalousByType counts distinct flagged entities per type.
func anomalousByType(records []model.AnomalyRecord) map[model.EntityType]int {
	type key struct {
		entityType model.EntityType
		id         string
	}
	seen := make(map[key]struct{}, len(records))
	counts := make(map[model.EntityType]int)
	for _, rec := range records {
		k := key{entityType: rec.EntityType, id: rec.EntityID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		counts[rec.EntityType]++
	}
	return counts
}

// deriveTables rebuilds per-table counts from storage when a full run's
// in-memory counts are not available.
func (p *Pipeline) deriveTables(ctx context.Context, anomalies []model.AnomalyRecord) ([]model.TableStats, error) {
	anomalous := anomalousByType(anomalies)

	var tables []model.TableStats
	for _, entityType := range []model.EntityType{model.EntityCustomer, model.EntitySeller} {
		entities, err := p.storage.GetEntitiesByType(ctx, entityType)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s entities: %w", entityType, err)
		}
		if len(entities) == 0 {
			continue
		}
		tables = append(tables, model.TableStats{
			EntityType: entityType,
			Records:    len(entities),
			Anomalous:  anomalous[entityType],
		})
	}
	return tables, nil
}
