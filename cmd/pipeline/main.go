package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/application/export"
	"github.com/salesintel/pipeline/internal/application/pipeline"
	"github.com/salesintel/pipeline/internal/infrastructure/config"
	"github.com/salesintel/pipeline/internal/infrastructure/logger"
	"github.com/salesintel/pipeline/internal/infrastructure/persistence"
	"github.com/salesintel/pipeline/internal/infrastructure/source"
)

// Exit codes: 0 clean success, 3 completed with warnings, 1 failed.
func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath    string
		customersFile string
		ordersFile    string
		outputDir     string
		storeFlag     string
		clearStore    bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file (default: search standard locations)")
	flag.StringVar(&customersFile, "customers", "", "Customers CSV file (overrides input.customers_file)")
	flag.StringVar(&ordersFile, "orders", "", "Orders XML file (overrides input.orders_file)")
	flag.StringVar(&outputDir, "output", "", "Artifact directory (overrides output.directory)")
	flag.StringVar(&storeFlag, "store", "", "Override store.enabled: true or false")
	flag.BoolVar(&clearStore, "clear-store", false, "Delete existing store rows before loading")
	flag.Parse()

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	if customersFile != "" {
		cfg.Input.CustomersFile = customersFile
	}
	if ordersFile != "" {
		cfg.Input.OrdersFile = ordersFile
	}
	if outputDir != "" {
		cfg.Output.Directory = outputDir
	}
	if storeFlag != "" {
		enabled, err := strconv.ParseBool(storeFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -store value %q: want true or false\n", storeFlag)
			flag.Usage()
			return 1
		}
		cfg.Store.Enabled = enabled
	}

	// Flag overrides can flip the store on, so validate again
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting sales pipeline",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("customers_file", cfg.Input.CustomersFile),
		zap.String("orders_file", cfg.Input.OrdersFile),
		zap.String("output_dir", cfg.Output.Directory),
		zap.Bool("store_enabled", cfg.Store.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	customers := source.NewCustomerCSVReader(cfg.Input.CustomersFile, log)
	orders := source.NewOrderXMLReader(cfg.Input.OrdersFile, cfg.Input.MaxRowErrors, log)
	artifacts := export.NewExporter(cfg.Output.Directory, time.Now(), log)

	var store *pipeline.Store
	if cfg.Store.Enabled {
		gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
		db, err := persistence.NewDatabaseWithLogger(&cfg.Store, gormLog)
		if err != nil {
			log.Error("failed to connect to store", zap.Error(err))
			return 1
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("error closing store", zap.Error(err))
			}
		}()

		// Postgres schemas come from the versioned migrations; sqlite is
		// created in-process.
		if cfg.Store.Driver == "sqlite" {
			if err := db.AutoMigrate(); err != nil {
				log.Error("failed to create sqlite schema", zap.Error(err))
				return 1
			}
		}
		log.Info("store connected", zap.String("driver", cfg.Store.Driver))

		store = &pipeline.Store{
			Customers:  persistence.NewGormCustomerRepository(db.DB, cfg.Store.BatchSize),
			Orders:     persistence.NewGormOrderRepository(db.DB, cfg.Store.BatchSize),
			Analytics:  persistence.NewGormAnalyticsRepository(db.DB),
			ClearFirst: clearStore,
		}
	}

	svc := pipeline.NewService(cfg, customers, orders, artifacts, store, log)

	result, err := svc.Run(ctx)
	if err != nil {
		log.Error("pipeline run failed", zap.Error(err))
		return 1
	}

	if result.Status == pipeline.StatusCompletedWithWarnings {
		return 3
	}
	return 0
}
