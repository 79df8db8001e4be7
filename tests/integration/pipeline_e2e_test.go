package integration

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/application/export"
	"github.com/salesintel/pipeline/internal/application/pipeline"
	"github.com/salesintel/pipeline/internal/infrastructure/config"
	"github.com/salesintel/pipeline/internal/infrastructure/persistence"
	"github.com/salesintel/pipeline/internal/infrastructure/source"
)

// customersCSV has five rows: three good customers, one duplicate id and one
// row without a mobile number.
const customersCSV = `customer_id,customer_name,mobile_number,region
C1,Alice,9000000001,north
C2,Bob,9000000002,North
C3,Cara,9000000003,South
C1,Duplicate Alice,9000000008,West
C4,Dave,,East
`

// ordersXML has eight records: five good line items across four orders (O1
// spans two), one with sku_count 0, one whose mobile matches no customer,
// and one missing its sku_id element entirely.
const ordersXML = `<?xml version="1.0" encoding="UTF-8"?>
<orders>
  <order>
    <order_id>O1</order_id>
    <mobile_number>9000000001</mobile_number>
    <sku_id>SKU-A</sku_id>
    <sku_count>2</sku_count>
    <total_amount>500.00</total_amount>
    <order_date_time>2024-03-15 10:30:00</order_date_time>
  </order>
  <order>
    <order_id>O1</order_id>
    <mobile_number>9000000001</mobile_number>
    <sku_id>SKU-B</sku_id>
    <sku_count>1</sku_count>
    <total_amount>500.00</total_amount>
    <order_date_time>2024-03-15 10:30:00</order_date_time>
  </order>
  <order>
    <order_id>O2</order_id>
    <mobile_number>9000000001</mobile_number>
    <sku_id>SKU-C</sku_id>
    <sku_count>1</sku_count>
    <total_amount>300.00</total_amount>
    <order_date_time>2024-03-20 09:00:00</order_date_time>
  </order>
  <order>
    <order_id>O3</order_id>
    <mobile_number>9000000002</mobile_number>
    <sku_id>SKU-A</sku_id>
    <sku_count>1</sku_count>
    <total_amount>200.00</total_amount>
    <order_date_time>2024-04-02 14:00:00</order_date_time>
  </order>
  <order>
    <order_id>O4</order_id>
    <mobile_number>9000000003</mobile_number>
    <sku_id>SKU-D</sku_id>
    <sku_count>2</sku_count>
    <total_amount>400.00</total_amount>
    <order_date_time>2024-04-05 16:00:00</order_date_time>
  </order>
  <order>
    <order_id>O5</order_id>
    <mobile_number>9000000001</mobile_number>
    <sku_id>SKU-E</sku_id>
    <sku_count>0</sku_count>
    <total_amount>100.00</total_amount>
    <order_date_time>2024-04-06 10:00:00</order_date_time>
  </order>
  <order>
    <order_id>O6</order_id>
    <mobile_number>9999999999</mobile_number>
    <sku_id>SKU-F</sku_id>
    <sku_count>1</sku_count>
    <total_amount>150.00</total_amount>
    <order_date_time>2024-04-07 11:00:00</order_date_time>
  </order>
  <order>
    <order_id>O7</order_id>
    <mobile_number>9000000002</mobile_number>
    <sku_count>1</sku_count>
    <total_amount>75.00</total_amount>
    <order_date_time>2024-04-08 12:00:00</order_date_time>
  </order>
</orders>
`

// e2eSetup wires a complete pipeline against fixture files and a real
// PostgreSQL container.
type e2eSetup struct {
	DB        *TestDB
	Config    *config.Config
	Service   *pipeline.Service
	Customers *persistence.GormCustomerRepository
	Orders    *persistence.GormOrderRepository
	OutputDir string
}

func newE2ESetup(t *testing.T) *e2eSetup {
	t.Helper()

	tdb := NewTestDB(t)

	dir := t.TempDir()
	customersPath := filepath.Join(dir, "customers.csv")
	ordersPath := filepath.Join(dir, "orders.xml")
	outputDir := filepath.Join(dir, "output")
	require.NoError(t, os.WriteFile(customersPath, []byte(customersCSV), 0o644))
	require.NoError(t, os.WriteFile(ordersPath, []byte(ordersXML), 0o644))

	cfg := &config.Config{
		App: config.AppConfig{Name: "salespipe", Env: "test"},
		Input: config.InputConfig{
			CustomersFile: customersPath,
			OrdersFile:    ordersPath,
			MaxRowErrors:  100,
		},
		Output: config.OutputConfig{
			Directory: outputDir,
			Formats:   []string{"csv", "json", "excel", "summary"},
		},
		Store: config.StoreConfig{
			Enabled:         true,
			Driver:          "postgres",
			BatchSize:       100,
			TopCustomerDays: 30,
		},
	}

	logger := zap.NewNop()
	customersRepo := persistence.NewGormCustomerRepository(tdb.DB, cfg.Store.BatchSize)
	ordersRepo := persistence.NewGormOrderRepository(tdb.DB, cfg.Store.BatchSize)

	svc := pipeline.NewService(
		cfg,
		source.NewCustomerCSVReader(customersPath, logger),
		source.NewOrderXMLReader(ordersPath, cfg.Input.MaxRowErrors, logger),
		export.NewExporter(outputDir, time.Now(), logger),
		&pipeline.Store{
			Customers:  customersRepo,
			Orders:     ordersRepo,
			Analytics:  persistence.NewGormAnalyticsRepository(tdb.DB),
			ClearFirst: true,
		},
		logger,
	)

	return &e2eSetup{
		DB:        tdb,
		Config:    cfg,
		Service:   svc,
		Customers: customersRepo,
		Orders:    ordersRepo,
		OutputDir: outputDir,
	}
}

// artifactByPrefix returns the artifact path whose filename starts with the
// given prefix, failing the test when none or several match.
func artifactByPrefix(t *testing.T, artifacts []string, prefix string) string {
	t.Helper()

	var matches []string
	for _, path := range artifacts {
		if strings.HasPrefix(filepath.Base(path), prefix+"_") {
			matches = append(matches, path)
		}
	}
	require.Len(t, matches, 1, "expected exactly one %s artifact", prefix)
	return matches[0]
}

func readCSVArtifact(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestE2E_FullPipelineRun(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E integration test in short mode")
	}

	setup := newE2ESetup(t)
	ctx := context.Background()

	result, err := setup.Service.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, result)

	t.Run("run degrades to warnings instead of failing", func(t *testing.T) {
		assert.Equal(t, pipeline.StatusCompletedWithWarnings, result.Status)
		assert.NotEmpty(t, result.RunID)

		// One warning each for the skipped source record, the dropped
		// customer rows, the rejected line item and the unmatched mobile.
		assert.Len(t, result.Warnings, 4)

		assert.Equal(t, 5, result.CustomerStats.OriginalCount)
		assert.Equal(t, 3, result.CustomerStats.FinalCount)
		assert.Equal(t, 1, result.CustomerStats.DuplicatesRemoved)
		assert.Equal(t, 2, result.CustomerStats.RowsDropped)

		assert.Equal(t, 7, result.OrderStats.OriginalCount)
		assert.Equal(t, 6, result.OrderStats.ValidCount)
		assert.Equal(t, 1, result.OrderStats.InvalidCount)
		assert.Equal(t, 1, result.OrderStats.NonPositiveSkuCount)
		assert.Equal(t, 1, result.UnmatchedLineItems)
	})

	t.Run("in-memory report deduplicates order totals", func(t *testing.T) {
		report := result.Report
		require.NotNil(t, report)

		assert.Equal(t, 3, report.CustomerMetrics.TotalCustomers)

		// The unmatched order is still an order: it counts here even though
		// it carries no customer attributes.
		assert.Equal(t, 5, report.OrderMetrics.TotalOrders)
		assert.Equal(t, 6, report.OrderMetrics.TotalOrderLineItems)
		assert.True(t, report.RevenueMetrics.TotalRevenue.Equal(decimal.NewFromInt(1550)),
			"total revenue = %s", report.RevenueMetrics.TotalRevenue)

		assert.Equal(t, 2, report.RegionalMetrics.RegionsCount)
		assert.Equal(t, "North", report.RegionalMetrics.TopRevenueRegion)

		require.NotEmpty(t, report.TopPerformers.TopCustomers)
		assert.Equal(t, "C1", report.TopPerformers.TopCustomers[0].CustomerID)
		assert.True(t, report.TopPerformers.TopCustomerRevenue.Equal(decimal.NewFromInt(800)),
			"top customer revenue = %s", report.TopPerformers.TopCustomerRevenue)
	})

	t.Run("every enabled artifact lands on disk", func(t *testing.T) {
		require.Len(t, result.Artifacts, 10)
		for _, path := range result.Artifacts {
			info, err := os.Stat(path)
			require.NoError(t, err, "artifact %s missing", path)
			assert.Greater(t, info.Size(), int64(0), "artifact %s is empty", path)
		}

		prefixes := []string{
			"clean_customers", "clean_orders", "invalid_orders",
			"kpi_report", "sales_report", "summary_report",
			"repeat_customers", "monthly_trends", "regional_revenue", "top_customers",
		}
		for _, prefix := range prefixes {
			artifactByPrefix(t, result.Artifacts, prefix)
		}
	})

	t.Run("clean sets land in the store", func(t *testing.T) {
		customerCount, err := setup.Customers.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), customerCount)

		// All six surviving line items load, the unmatched one included.
		orderCount, err := setup.Orders.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(6), orderCount)
	})

	t.Run("store KPI artifacts read back", func(t *testing.T) {
		repeats := readCSVArtifact(t, artifactByPrefix(t, result.Artifacts, "repeat_customers"))
		require.Len(t, repeats, 2)
		assert.Equal(t, "C1", repeats[1][0])
		assert.Equal(t, "2", repeats[1][3])

		trends := readCSVArtifact(t, artifactByPrefix(t, result.Artifacts, "monthly_trends"))
		require.Len(t, trends, 3)
		assert.Equal(t, []string{"2024", "3", "2"}, trends[1][:3])
		march := decimal.RequireFromString(trends[1][3])
		assert.True(t, march.Equal(decimal.NewFromInt(800)), "march revenue = %s", march)
		assert.Equal(t, []string{"2024", "4", "3"}, trends[2][:3])

		// Fixture dates are far outside the lookback window, so the top
		// customers artifact holds only its header.
		top := readCSVArtifact(t, artifactByPrefix(t, result.Artifacts, "top_customers"))
		assert.Len(t, top, 1)
	})

	t.Run("rerun with clear keeps the store idempotent", func(t *testing.T) {
		again, err := setup.Service.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, pipeline.StatusCompletedWithWarnings, again.Status)

		customerCount, err := setup.Customers.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), customerCount)

		orderCount, err := setup.Orders.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(6), orderCount)
	})
}
