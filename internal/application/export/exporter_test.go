package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/domain/analytics"
)

// exporterRunTime keeps artifact names deterministic across the package tests
var exporterRunTime = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func newTestExporter(t *testing.T) (*Exporter, string) {
	t.Helper()
	dir := t.TempDir()
	return NewExporter(dir, exporterRunTime, zap.NewNop()), dir
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func sampleReport() *analytics.Report {
	hour := 14
	first := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	last := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	return &analytics.Report{
		CustomerMetrics: analytics.CustomerMetrics{
			TotalCustomers:        1,
			AvgOrdersPerCustomer:  2,
			AvgRevenuePerCustomer: decimal.NewFromInt(800),
			AvgItemsPerCustomer:   3,
			CustomerDetails: []analytics.CustomerDetail{{
				CustomerID:    "C1",
				TotalOrders:   2,
				TotalRevenue:  decimal.NewFromInt(800),
				TotalItems:    3,
				AvgOrderValue: decimal.NewFromInt(400),
			}},
		},
		OrderMetrics: analytics.OrderMetrics{
			TotalOrders:         2,
			TotalOrderLineItems: 3,
			AvgItemsPerOrder:    1.5,
			AvgQuantityPerOrder: 1.5,
			AvgOrderValue:       decimal.NewFromInt(400),
			MinOrderValue:       decimal.NewFromInt(300),
			MaxOrderValue:       decimal.NewFromInt(500),
			MedianOrderValue:    decimal.NewFromInt(400),
		},
		RevenueMetrics: analytics.RevenueMetrics{
			TotalRevenue:       decimal.NewFromInt(800),
			AvgRevenuePerOrder: decimal.NewFromInt(400),
			TotalItemsSold:     3,
			AvgRevenuePerItem:  decimal.RequireFromString("266.67"),
		},
		ProductMetrics: analytics.ProductMetrics{
			TotalUniqueSKUs:     2,
			MostSoldSKU:         "SKU-A",
			MostSoldSKUQuantity: 2,
			AvgQuantityPerSKU:   1.5,
			SKUPerformance: []analytics.SKUPerformance{
				{SkuID: "SKU-A", TotalQuantitySold: 2, OrdersCount: 2, LineItems: 2},
				{SkuID: "SKU-B", TotalQuantitySold: 1, OrdersCount: 1, LineItems: 1},
			},
		},
		RegionalMetrics: analytics.RegionalMetrics{
			RegionsCount:     1,
			TopRevenueRegion: "North",
			RegionalBreakdown: []analytics.RegionBreakdown{{
				Region:                "North",
				TotalOrders:           2,
				TotalCustomers:        1,
				TotalRevenue:          decimal.NewFromInt(800),
				AvgRevenuePerCustomer: decimal.NewFromInt(800),
			}},
		},
		TemporalMetrics: analytics.TemporalMetrics{
			DateRange:        analytics.DateRange{FirstOrder: &first, LastOrder: &last},
			MonthlyBreakdown: []analytics.MonthlyBucket{{Year: 2024, Month: 3, OrderCount: 2}},
			WeekdayBreakdown: []analytics.WeekdayBucket{{Weekday: "Friday", OrderCount: 2}},
			HourlyBreakdown:  []analytics.HourlyBucket{{Hour: 14, OrderCount: 2}},
			BusiestHour:      &hour,
			BusiestWeekday:   "Friday",
		},
		TopPerformers: analytics.TopPerformers{
			TopCustomers: []analytics.TopPerformer{{
				CustomerID:   "C1",
				CustomerName: "Alice",
				Region:       "North",
				TotalRevenue: decimal.NewFromInt(800),
				TotalOrders:  2,
			}},
			TopCustomerRevenue: decimal.NewFromInt(800),
		},
	}
}

func TestExporter_CreateFile(t *testing.T) {
	t.Run("creates the output directory on demand", func(t *testing.T) {
		base := t.TempDir()
		e := NewExporter(filepath.Join(base, "outputs", "nested"), exporterRunTime, zap.NewNop())

		path, err := e.WriteCleanCustomers(nil)
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("fails when the output directory cannot be created", func(t *testing.T) {
		base := t.TempDir()
		blocked := filepath.Join(base, "occupied")
		require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

		e := NewExporter(filepath.Join(blocked, "outputs"), exporterRunTime, zap.NewNop())
		_, err := e.WriteCleanCustomers(nil)
		assert.Error(t, err)
	})
}
