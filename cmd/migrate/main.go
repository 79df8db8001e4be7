package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/infrastructure/config"
	"github.com/salesintel/pipeline/internal/infrastructure/logger"
	"github.com/salesintel/pipeline/internal/infrastructure/migration"
)

func main() {
	var (
		configPath     string
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&configPath, "config", "", "Path to config file (default: search standard locations)")
	flag.StringVar(&migrationsPath, "path", "migrations", "Path to migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("failed to resolve migrations path", zap.Error(err))
	}
	migrationsPath = absPath

	log.Info("migration tool started",
		zap.String("command", command),
		zap.String("migrations_path", migrationsPath),
	)

	// create and list work on the migrations directory alone
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("migration name required. usage: migrate create <name>")
		}
		mf, err := migration.CreateMigration(migrationsPath, strings.Join(args[1:], " "))
		if err != nil {
			log.Fatal("failed to create migration", zap.Error(err))
		}
		log.Info("migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return

	case "list":
		migrations, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			log.Fatal("failed to list migrations", zap.Error(err))
		}
		if len(migrations) == 0 {
			log.Info("no migrations found")
			return
		}
		log.Info("available migrations", zap.Int("count", len(migrations)))
		for _, m := range migrations {
			fmt.Println("  -", m)
		}
		return
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	if !cfg.Store.Enabled {
		log.Fatal("store is disabled; set store.enabled before migrating")
	}
	if cfg.Store.Driver != "postgres" {
		log.Fatal("migrations need the postgres driver; sqlite schemas are created in-process",
			zap.String("driver", cfg.Store.Driver))
	}

	db, err := sql.Open("postgres", cfg.Store.DSN())
	if err != nil {
		log.Fatal("failed to connect to store", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping store", zap.Error(err))
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("migration up failed", zap.Error(err))
		}

	case "down":
		if len(args) < 2 {
			log.Fatal("step count required. usage: migrate down <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			log.Fatal("invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(-n); err != nil {
			log.Fatal("migration down failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("failed to read version", zap.Error(err))
		}
		if version == 0 {
			log.Info("no migrations applied")
		} else {
			log.Info("current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("version required. usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("invalid version number", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("force version failed", zap.Error(err))
		}

	default:
		log.Error("unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Sales pipeline store migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up               Apply all pending migrations
  down <n>         Roll back the last n migrations
  version          Show current migration version
  force <version>  Force set migration version (recover a dirty state)
  create <name>    Create a new up/down migration pair
  list             List available migrations

Flags:
  -config string     Path to config file (default: search standard locations)
  -path string       Path to migrations directory (default: migrations)
  -log-level string  Log level: debug, info, warn, error (default: info)

The store connection comes from config.toml and PIPELINE_STORE_* environment
variables; PIPELINE_STORE_USER and PIPELINE_STORE_PASSWORD are environment-only.
The store must be enabled and postgres-flavored.

Examples:
  migrate up
  migrate down 1
  migrate create add_order_indexes
  migrate version`)
}
