package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App    AppConfig
	Log    LogConfig
	Input  InputConfig
	Output OutputConfig
	Store  StoreConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// InputConfig holds source file settings
type InputConfig struct {
	CustomersFile string
	OrdersFile    string
	DateLayouts   []string // tried in order when parsing order_date_time
	MaxRowErrors  int      // cap on per-row source errors kept for reporting
}

// OutputConfig holds artifact output settings
type OutputConfig struct {
	Directory string
	Formats   []string // any of: csv, json, excel, summary
}

// FormatEnabled reports whether the named artifact format is configured
func (o *OutputConfig) FormatEnabled(name string) bool {
	for _, f := range o.Formats {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// StoreConfig holds relational store settings. User and Password are never
// read from the config file: environment variables only.
type StoreConfig struct {
	Enabled         bool
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite database file
	BatchSize       int    // rows per insert batch
	TopCustomerDays int    // lookback window for the top-customers query
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PIPELINE_ prefix (e.g., PIPELINE_STORE_HOST)
// 2. config.toml
// 3. Built-in defaults
//
// Store credentials are the exception: PIPELINE_STORE_USER and
// PIPELINE_STORE_PASSWORD are read from the environment only, never from the
// file, and never defaulted.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An explicit file must
// exist; with an empty path the standard locations are searched and a missing
// file falls back to defaults and environment variables.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/salespipe")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("PIPELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Input: InputConfig{
			CustomersFile: v.GetString("input.customers_file"),
			OrdersFile:    v.GetString("input.orders_file"),
			DateLayouts:   v.GetStringSlice("input.date_layouts"),
			MaxRowErrors:  v.GetInt("input.max_row_errors"),
		},
		Output: OutputConfig{
			Directory: v.GetString("output.directory"),
			Formats:   v.GetStringSlice("output.formats"),
		},
		Store: StoreConfig{
			Enabled:         v.GetBool("store.enabled"),
			Driver:          v.GetString("store.driver"),
			Host:            v.GetString("store.host"),
			Port:            v.GetInt("store.port"),
			User:            os.Getenv("PIPELINE_STORE_USER"),
			Password:        os.Getenv("PIPELINE_STORE_PASSWORD"),
			DBName:          v.GetString("store.dbname"),
			SSLMode:         v.GetString("store.sslmode"),
			Path:            v.GetString("store.path"),
			BatchSize:       v.GetInt("store.batch_size"),
			TopCustomerDays: v.GetInt("store.top_customer_days"),
			MaxOpenConns:    v.GetInt("store.max_open_conns"),
			MaxIdleConns:    v.GetInt("store.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("store.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("store.conn_max_idle_time"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "salespipe"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Input.CustomersFile == "" {
		cfg.Input.CustomersFile = "data/customers.csv"
	}
	if cfg.Input.OrdersFile == "" {
		cfg.Input.OrdersFile = "data/orders.xml"
	}
	if len(cfg.Input.DateLayouts) == 0 {
		cfg.Input.DateLayouts = []string{
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05Z07:00",
			"2006-01-02T15:04:05",
			"2006/01/02 15:04:05",
			"02-01-2006 15:04:05",
			"2006-01-02",
		}
	}
	if cfg.Input.MaxRowErrors == 0 {
		cfg.Input.MaxRowErrors = 100
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "output"
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []string{"csv", "json", "excel", "summary"}
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "postgres"
	}
	if cfg.Store.Host == "" {
		cfg.Store.Host = "localhost"
	}
	if cfg.Store.Port == 0 {
		cfg.Store.Port = 5432
	}
	if cfg.Store.DBName == "" {
		cfg.Store.DBName = "salesdb"
	}
	if cfg.Store.SSLMode == "" {
		cfg.Store.SSLMode = "disable"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "salespipe.db"
	}
	if cfg.Store.BatchSize == 0 {
		cfg.Store.BatchSize = 500
	}
	if cfg.Store.TopCustomerDays == 0 {
		cfg.Store.TopCustomerDays = 30
	}
	if cfg.Store.MaxOpenConns == 0 {
		cfg.Store.MaxOpenConns = 25
	}
	if cfg.Store.MaxIdleConns == 0 {
		cfg.Store.MaxIdleConns = 5
	}
	if cfg.Store.ConnMaxLifetime == 0 {
		cfg.Store.ConnMaxLifetime = 60
	}
	if cfg.Store.ConnMaxIdleTime == 0 {
		cfg.Store.ConnMaxIdleTime = 30
	}
}

// Validate checks the configuration for unusable values. Load calls it;
// callers that mutate the config afterwards (flag overrides) call it again.
func (c *Config) Validate() error {
	for _, f := range c.Output.Formats {
		switch strings.ToLower(f) {
		case "csv", "json", "excel", "summary":
		default:
			return fmt.Errorf("output.formats contains unknown format %q", f)
		}
	}

	if c.Store.MaxOpenConns <= 0 {
		return fmt.Errorf("store.max_open_conns must be positive")
	}
	if c.Store.MaxIdleConns < 0 {
		return fmt.Errorf("store.max_idle_conns cannot be negative")
	}
	if c.Store.MaxIdleConns > c.Store.MaxOpenConns {
		return fmt.Errorf("store.max_idle_conns (%d) cannot exceed store.max_open_conns (%d)",
			c.Store.MaxIdleConns, c.Store.MaxOpenConns)
	}
	if c.Store.BatchSize <= 0 {
		return fmt.Errorf("store.batch_size must be positive")
	}
	if c.Store.TopCustomerDays <= 0 {
		return fmt.Errorf("store.top_customer_days must be positive")
	}

	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("store.driver must be 'postgres' or 'sqlite', got %q", c.Store.Driver)
	}

	if c.Store.Enabled && c.Store.Driver == "postgres" {
		if isPlaceholder(c.Store.User) {
			return fmt.Errorf("PIPELINE_STORE_USER must be set in the environment (not a placeholder) when the store is enabled")
		}
		if isPlaceholder(c.Store.Password) {
			return fmt.Errorf("PIPELINE_STORE_PASSWORD must be set in the environment (not a placeholder) when the store is enabled")
		}
	}

	if c.App.Env == "production" && c.Store.Enabled && c.Store.Driver == "postgres" {
		if c.Store.SSLMode == "disable" {
			return fmt.Errorf("store.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// isPlaceholder reports whether a credential value is absent or is an
// unedited template value such as "YOUR_PASSWORD" or "REPLACE_ME".
func isPlaceholder(value string) bool {
	v := strings.ToUpper(strings.TrimSpace(value))
	return v == "" || strings.HasPrefix(v, "YOUR_") || strings.Contains(v, "REPLACE")
}

// DSN returns the postgres connection string with properly escaped values
func (s *StoreConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.User, s.Password),
		Host:   fmt.Sprintf("%s:%d", s.Host, s.Port),
		Path:   s.DBName,
	}
	q := u.Query()
	q.Set("sslmode", s.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
