package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/olist-data/refinery/internal/config"
	"github.com/olist-data/refinery/internal/engine"
	"github.com/olist-data/refinery/internal/service"
	"github.com/olist-data/refinery/internal/storage"
	"github.com/spf13/viper"
)

// Conventional file names of the raw dataset drop.
const (
	geolocationFile  = "olist_geolocation_dataset.csv"
	customersFile    = "olist_customers_dataset.csv"
	sellersFile      = "olist_sellers_dataset.csv"
	ordersFile       = "olist_orders_dataset.csv"
	orderItemsFile   = "olist_order_items_dataset.csv"
	paymentsFile     = "olist_order_payments_dataset.csv"
	productsFile     = "olist_products_dataset.csv"
	reviewsFile      = "olist_order_reviews_dataset.csv"
	translationsFile = "product_category_name_translation.csv"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/refinery/refinery.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// pipelineConfig assembles the engine configuration from viper. Threshold
// keys fall back to the engine defaults when unset.
func pipelineConfig() engine.Config {
	cfg := engine.DefaultConfig()

	dataDir := config.ExpandPath(viper.GetString("data.dir"))
	cfg.Paths = engine.DataPaths{
		Geolocation:  filepath.Join(dataDir, geolocationFile),
		Customers:    filepath.Join(dataDir, customersFile),
		Sellers:      filepath.Join(dataDir, sellersFile),
		Orders:       filepath.Join(dataDir, ordersFile),
		OrderItems:   filepath.Join(dataDir, orderItemsFile),
		Payments:     filepath.Join(dataDir, paymentsFile),
		Products:     filepath.Join(dataDir, productsFile),
		Reviews:      filepath.Join(dataDir, reviewsFile),
		Translations: filepath.Join(dataDir, translationsFile),
	}

	if v := viper.GetInt("reference.medium_min"); v > 0 {
		cfg.Reference.MediumMin = v
	}
	if v := viper.GetInt("reference.high_above"); v > 0 {
		cfg.Reference.HighAbove = v
	}
	if v := viper.GetFloat64("reconcile.amount_tolerance"); v > 0 {
		cfg.Reconcile.AmountTolerance = v
	}
	if v := viper.GetFloat64("reconcile.tax_ratio_max"); v > 0 {
		cfg.Reconcile.TaxRatioMax = v
	}
	if v := viper.GetInt("reconcile.fragmented_payments_above"); v > 0 {
		cfg.Reconcile.FragmentedPaymentsAbove = v
	}
	if v := viper.GetFloat64("product.density_min"); v > 0 {
		cfg.Product.DensityMin = v
	}
	if v := viper.GetFloat64("product.density_max"); v > 0 {
		cfg.Product.DensityMax = v
	}
	if v := viper.GetDuration("review.grace"); v > 0 {
		cfg.Review.Grace = v
	}
	if v := viper.GetInt("review.late_response_days"); v > 0 {
		cfg.Review.LateResponse = time.Duration(v) * 24 * time.Hour
	}

	return cfg
}
