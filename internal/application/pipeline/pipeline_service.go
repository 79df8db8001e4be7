package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	analyticsapp "github.com/salesintel/pipeline/internal/application/analytics"
	"github.com/salesintel/pipeline/internal/application/cleaning"
	"github.com/salesintel/pipeline/internal/application/export"
	"github.com/salesintel/pipeline/internal/domain/analytics"
	"github.com/salesintel/pipeline/internal/domain/customer"
	"github.com/salesintel/pipeline/internal/domain/order"
	"github.com/salesintel/pipeline/internal/infrastructure/config"
)

// CustomerSource loads raw customer records
type CustomerSource interface {
	Read(ctx context.Context) ([]customer.RawRecord, error)
}

// OrderSource loads raw order line items. The int reports how many malformed
// entries the source skipped.
type OrderSource interface {
	Read(ctx context.Context) ([]order.RawLineItem, int, error)
}

// CustomerStore persists cleaned customers
type CustomerStore interface {
	UpsertBatch(ctx context.Context, customers []customer.Customer) error
	DeleteAll(ctx context.Context) error
}

// OrderStore persists cleaned line items
type OrderStore interface {
	InsertBatch(ctx context.Context, items []order.LineItem) error
	DeleteAll(ctx context.Context) error
}

// ArtifactWriter writes run artifacts. *export.Exporter satisfies it.
type ArtifactWriter interface {
	WriteCleanCustomers(customers []customer.Customer) (string, error)
	WriteCleanOrders(items []order.LineItem) (string, error)
	WriteInvalidOrders(rejected []order.RejectedLineItem) (string, error)
	WriteKPIReport(doc export.KPIDocument) (string, error)
	WriteWorkbook(report *analytics.Report) (string, error)
	WriteSummary(doc export.KPIDocument) (string, error)
	WriteRepeatCustomers(repeats []analytics.RepeatCustomer) (string, error)
	WriteMonthlyTrends(trends []analytics.MonthlyTrend) (string, error)
	WriteRegionalRevenue(regions []analytics.RegionRevenue) (string, error)
	WriteTopCustomers(top []analytics.TopCustomer) (string, error)
}

// Store bundles the relational half of a run. A nil *Store disables store
// loading and the store-side KPIs.
type Store struct {
	Customers CustomerStore
	Orders    OrderStore
	Analytics analytics.StoreRepository

	// ClearFirst deletes existing rows before loading
	ClearFirst bool
}

// Status is the outcome of one run
type Status string

const (
	StatusSucceeded             Status = "succeeded"
	StatusCompletedWithWarnings Status = "completed_with_warnings"
	StatusFailed                Status = "failed"
)

// Result summarizes one pipeline run
type Result struct {
	RunID              string                 `json:"run_id"`
	Status             Status                 `json:"status"`
	CustomerStats      cleaning.CustomerStats `json:"customer_stats"`
	OrderStats         cleaning.OrderStats    `json:"order_stats"`
	UnmatchedLineItems int                    `json:"unmatched_line_items"`
	Report             *analytics.Report      `json:"report,omitempty"`
	Artifacts          []string               `json:"artifacts"`
	Warnings           []string               `json:"warnings"`
	Duration           time.Duration          `json:"duration"`
}

func (r *Result) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Service runs the batch pipeline end to end: load, clean, merge, aggregate,
// export, and optionally load the relational store.
type Service struct {
	cfg             *config.Config
	customers       CustomerSource
	orders          OrderSource
	artifacts       ArtifactWriter
	store           *Store
	customerCleaner *cleaning.CustomerCleaner
	orderCleaner    *cleaning.OrderCleaner
	merger          *analyticsapp.MergeService
	calculator      *analyticsapp.KPIService
	logger          *zap.Logger
}

// NewService creates a new Service. The cleaning and aggregation stages are
// built here from config; only the edges (sources, artifacts, store) are
// injected.
func NewService(
	cfg *config.Config,
	customers CustomerSource,
	orders OrderSource,
	artifacts ArtifactWriter,
	store *Store,
	logger *zap.Logger,
) *Service {
	return &Service{
		cfg:             cfg,
		customers:       customers,
		orders:          orders,
		artifacts:       artifacts,
		store:           store,
		customerCleaner: cleaning.NewCustomerCleaner(logger),
		orderCleaner:    cleaning.NewOrderCleaner(cfg.Input.DateLayouts, logger),
		merger:          analyticsapp.NewMergeService(logger),
		calculator:      analyticsapp.NewKPIService(logger),
		logger:          logger,
	}
}

// Run executes one batch run. A non-nil error means the run failed; rejected
// records, unmatched line items, skipped source entries and failed artifacts
// only degrade the result to StatusCompletedWithWarnings.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:     uuid.New().String(),
		Status:    StatusSucceeded,
		Artifacts: make([]string, 0),
		Warnings:  make([]string, 0),
	}
	defer func() { result.Duration = time.Since(start) }()

	log := s.logger.With(zap.String("run_id", result.RunID))
	log.Info("pipeline run started")

	rawCustomers, err := s.customers.Read(ctx)
	if err != nil {
		result.Status = StatusFailed
		return result, fmt.Errorf("load customers: %w", err)
	}
	rawItems, skipped, err := s.orders.Read(ctx)
	if err != nil {
		result.Status = StatusFailed
		return result, fmt.Errorf("load orders: %w", err)
	}
	if skipped > 0 {
		result.addWarning("%d malformed order entries skipped at source", skipped)
	}

	cleanCustomers, customerStats := s.customerCleaner.Clean(rawCustomers)
	result.CustomerStats = customerStats
	if customerStats.RowsDropped > 0 {
		result.addWarning("%d customer rows dropped during cleaning", customerStats.RowsDropped)
	}

	cleanItems, rejected, orderStats := s.orderCleaner.Clean(rawItems)
	result.OrderStats = orderStats
	if orderStats.InvalidCount > 0 {
		result.addWarning("%d order line items rejected during cleaning", orderStats.InvalidCount)
	}

	merged, unmatched := s.merger.Merge(cleanCustomers, cleanItems)
	result.UnmatchedLineItems = unmatched
	if unmatched > 0 {
		result.addWarning("%d line items have no matching customer", unmatched)
	}

	result.Report = s.calculator.Calculate(merged)

	doc := export.KPIDocument{
		RunID:              result.RunID,
		GeneratedAt:        start.UTC(),
		CustomerStats:      customerStats,
		OrderStats:         orderStats,
		UnmatchedLineItems: unmatched,
		Report:             result.Report,
	}
	s.exportArtifacts(log, result, cleanCustomers, cleanItems, rejected, doc)

	if s.store != nil {
		// A store failure is a run failure: partial durable state is worse
		// than a failed artifact.
		if err := s.loadStore(ctx, log, cleanCustomers, cleanItems); err != nil {
			result.Status = StatusFailed
			return result, fmt.Errorf("load store: %w", err)
		}
		s.exportStoreKPIs(ctx, log, result)
	}

	if len(result.Warnings) > 0 {
		result.Status = StatusCompletedWithWarnings
	}

	log.Info("pipeline run finished",
		zap.String("status", string(result.Status)),
		zap.Int("artifacts", len(result.Artifacts)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

// exportArtifacts writes the enabled in-memory artifacts. Failures are
// isolated per artifact: each one becomes a warning, the rest still write.
func (s *Service) exportArtifacts(
	log *zap.Logger,
	result *Result,
	customers []customer.Customer,
	items []order.LineItem,
	rejected []order.RejectedLineItem,
	doc export.KPIDocument,
) {
	writes := []struct {
		name    string
		enabled bool
		write   func() (string, error)
	}{
		{"clean_customers", s.cfg.Output.FormatEnabled("csv"), func() (string, error) {
			return s.artifacts.WriteCleanCustomers(customers)
		}},
		{"clean_orders", s.cfg.Output.FormatEnabled("csv"), func() (string, error) {
			return s.artifacts.WriteCleanOrders(items)
		}},
		{"invalid_orders", s.cfg.Output.FormatEnabled("csv") && len(rejected) > 0, func() (string, error) {
			return s.artifacts.WriteInvalidOrders(rejected)
		}},
		{"kpi_report", s.cfg.Output.FormatEnabled("json"), func() (string, error) {
			return s.artifacts.WriteKPIReport(doc)
		}},
		{"sales_report", s.cfg.Output.FormatEnabled("excel"), func() (string, error) {
			return s.artifacts.WriteWorkbook(doc.Report)
		}},
		{"summary_report", s.cfg.Output.FormatEnabled("summary"), func() (string, error) {
			return s.artifacts.WriteSummary(doc)
		}},
	}

	for _, w := range writes {
		if !w.enabled {
			continue
		}
		path, err := w.write()
		if err != nil {
			log.Warn("artifact write failed", zap.String("artifact", w.name), zap.Error(err))
			result.addWarning("artifact %s failed: %v", w.name, err)
			continue
		}
		result.Artifacts = append(result.Artifacts, path)
	}
}

func (s *Service) loadStore(ctx context.Context, log *zap.Logger, customers []customer.Customer, items []order.LineItem) error {
	if s.store.ClearFirst {
		if err := s.store.Orders.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear orders: %w", err)
		}
		if err := s.store.Customers.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear customers: %w", err)
		}
		log.Info("store cleared")
	}

	if err := s.store.Customers.UpsertBatch(ctx, customers); err != nil {
		return fmt.Errorf("upsert customers: %w", err)
	}
	if err := s.store.Orders.InsertBatch(ctx, items); err != nil {
		return fmt.Errorf("insert orders: %w", err)
	}

	log.Info("store loaded",
		zap.Int("customers", len(customers)),
		zap.Int("line_items", len(items)))

	return nil
}

// exportStoreKPIs computes the store-side KPIs and writes them as CSV.
// Failures here are warnings: the durable state is already correct.
func (s *Service) exportStoreKPIs(ctx context.Context, log *zap.Logger, result *Result) {
	queries := []struct {
		name  string
		write func() (string, error)
	}{
		{"repeat_customers", func() (string, error) {
			rows, err := s.store.Analytics.RepeatCustomers(ctx)
			if err != nil {
				return "", err
			}
			return s.artifacts.WriteRepeatCustomers(rows)
		}},
		{"monthly_trends", func() (string, error) {
			rows, err := s.store.Analytics.MonthlyTrends(ctx)
			if err != nil {
				return "", err
			}
			return s.artifacts.WriteMonthlyTrends(rows)
		}},
		{"regional_revenue", func() (string, error) {
			rows, err := s.store.Analytics.RevenueByRegion(ctx)
			if err != nil {
				return "", err
			}
			return s.artifacts.WriteRegionalRevenue(rows)
		}},
		{"top_customers", func() (string, error) {
			rows, err := s.store.Analytics.TopCustomersSince(ctx, s.cfg.Store.TopCustomerDays)
			if err != nil {
				return "", err
			}
			return s.artifacts.WriteTopCustomers(rows)
		}},
	}

	for _, q := range queries {
		path, err := q.write()
		if err != nil {
			log.Warn("store kpi failed", zap.String("kpi", q.name), zap.Error(err))
			result.addWarning("store kpi %s failed: %v", q.name, err)
			continue
		}
		result.Artifacts = append(result.Artifacts, path)
	}
}
