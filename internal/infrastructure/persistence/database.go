package persistence

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salesintel/pipeline/internal/infrastructure/config"
	"github.com/salesintel/pipeline/internal/infrastructure/persistence/models"
)

// Database holds the store connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// NewDatabase creates a silent store connection for the configured driver
func NewDatabase(cfg *config.StoreConfig) (*Database, error) {
	return newDatabase(cfg, logger.Default.LogMode(logger.Silent))
}

// NewDatabaseWithLogger creates a store connection that logs through the
// given GORM logger, typically the zap adapter from the logger package
func NewDatabaseWithLogger(cfg *config.StoreConfig, gormLog logger.Interface) (*Database, error) {
	return newDatabase(cfg, gormLog)
}

func newDatabase(cfg *config.StoreConfig, gormLog logger.Interface) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLog,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	return &Database{DB: db}, nil
}

// Close closes the store connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the store connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Transaction executes a function within a database transaction
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}

// AutoMigrate creates the customers and orders tables from the persistence
// models. Postgres deployments use the versioned SQL migrations instead;
// this covers sqlite, where no migration tooling runs.
func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(&models.CustomerModel{}, &models.OrderModel{})
}
