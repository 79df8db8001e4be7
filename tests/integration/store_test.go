package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesintel/pipeline/internal/domain/customer"
	"github.com/salesintel/pipeline/internal/domain/order"
	"github.com/salesintel/pipeline/internal/infrastructure/persistence"
	"github.com/salesintel/pipeline/internal/infrastructure/persistence/models"
)

func storeCustomer(id, name, mobile, region string) customer.Customer {
	return customer.Customer{
		CustomerID:   id,
		CustomerName: name,
		MobileNumber: mobile,
		Region:       region,
	}
}

func storeLineItem(orderID, mobile, sku string, qty int, amount string, at *time.Time) order.LineItem {
	li := order.LineItem{
		OrderID:      orderID,
		MobileNumber: mobile,
		SkuID:        sku,
		SkuCount:     qty,
		TotalAmount:  decimal.RequireFromString(amount),
	}
	li.SetOrderDateTime(at)
	return li
}

func orderedAt(year int, month time.Month, day, hour int) *time.Time {
	ts := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &ts
}

func daysAgo(n int) *time.Time {
	ts := time.Now().UTC().AddDate(0, 0, -n)
	return &ts
}

func TestCustomerRepository_UpsertBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	repo := persistence.NewGormCustomerRepository(tdb.DB, 100)
	ctx := context.Background()

	require.NoError(t, repo.UpsertBatch(ctx, []customer.Customer{
		storeCustomer("C1", "Alice", "9000000001", "North"),
		storeCustomer("C2", "Bob", "9000000002", "South"),
	}))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Reloading refreshes mutable fields instead of duplicating rows
	require.NoError(t, repo.UpsertBatch(ctx, []customer.Customer{
		storeCustomer("C1", "Alice Chen", "9000000001", "East"),
		storeCustomer("C3", "Cara", "9000000003", "South"),
	}))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	var m models.CustomerModel
	require.NoError(t, tdb.DB.Where("customer_id = ?", "C1").First(&m).Error)
	assert.Equal(t, "Alice Chen", m.CustomerName)
	assert.Equal(t, "East", m.Region)
	assert.Equal(t, "9000000001", m.MobileNumber)

	// Empty input is a no-op
	require.NoError(t, repo.UpsertBatch(ctx, nil))

	require.NoError(t, repo.DeleteAll(ctx))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestOrderRepository_InsertBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	repo := persistence.NewGormOrderRepository(tdb.DB, 100)
	ctx := context.Background()

	items := []order.LineItem{
		storeLineItem("O1", "9000000001", "SKU-A", 2, "500.00", orderedAt(2024, time.March, 15, 10)),
		storeLineItem("O1", "9000000001", "SKU-B", 1, "500.00", orderedAt(2024, time.March, 15, 10)),
		storeLineItem("O2", "9000000001", "SKU-C", 3, "300.00", nil),
	}
	require.NoError(t, repo.InsertBatch(ctx, items))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// Unparseable source dates land as NULL
	var undated int64
	require.NoError(t, tdb.DB.Model(&models.OrderModel{}).
		Where("order_date_time IS NULL").Count(&undated).Error)
	assert.Equal(t, int64(1), undated)

	// Append-only: reinserting a line item adds a new row
	require.NoError(t, repo.InsertBatch(ctx, items[2:]))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	require.NoError(t, repo.DeleteAll(ctx))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAnalyticsRepository_KPIs(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	ctx := context.Background()

	customersRepo := persistence.NewGormCustomerRepository(tdb.DB, 100)
	ordersRepo := persistence.NewGormOrderRepository(tdb.DB, 100)
	analyticsRepo := persistence.NewGormAnalyticsRepository(tdb.DB)

	seed := func() {
		tdb.CleanTables()
		require.NoError(t, customersRepo.UpsertBatch(ctx, []customer.Customer{
			storeCustomer("C1", "Alice", "9000000001", "North"),
			storeCustomer("C2", "Bob", "9000000002", "North"),
			storeCustomer("C3", "Cara", "9000000003", "South"),
		}))
		require.NoError(t, ordersRepo.InsertBatch(ctx, []order.LineItem{
			// O1 carries its order total on both line items; every
			// aggregate must count it once
			storeLineItem("O1", "9000000001", "SKU-A", 2, "500.00", orderedAt(2024, time.March, 15, 10)),
			storeLineItem("O1", "9000000001", "SKU-B", 1, "500.00", orderedAt(2024, time.March, 15, 10)),
			storeLineItem("O2", "9000000001", "SKU-C", 1, "300.00", orderedAt(2024, time.March, 20, 9)),
			storeLineItem("O3", "9000000002", "SKU-A", 1, "200.00", orderedAt(2024, time.April, 2, 14)),
			storeLineItem("O4", "9000000003", "SKU-D", 2, "400.00", orderedAt(2024, time.April, 5, 16)),
		}))
	}

	t.Run("repeat customers need more than one distinct order", func(t *testing.T) {
		seed()

		repeats, err := analyticsRepo.RepeatCustomers(ctx)
		require.NoError(t, err)

		require.Len(t, repeats, 1)
		assert.Equal(t, "C1", repeats[0].CustomerID)
		assert.Equal(t, "Alice", repeats[0].CustomerName)
		assert.Equal(t, "North", repeats[0].Region)
		assert.Equal(t, int64(2), repeats[0].OrderCount)
	})

	t.Run("monthly trends deduplicate orders and skip undated rows", func(t *testing.T) {
		seed()
		require.NoError(t, ordersRepo.InsertBatch(ctx, []order.LineItem{
			storeLineItem("O5", "9000000001", "SKU-E", 1, "999.00", nil),
		}))

		trends, err := analyticsRepo.MonthlyTrends(ctx)
		require.NoError(t, err)
		require.Len(t, trends, 2)

		march := trends[0]
		assert.Equal(t, 2024, march.Year)
		assert.Equal(t, 3, march.Month)
		assert.Equal(t, int64(2), march.OrderCount)
		assert.True(t, march.TotalRevenue.Equal(decimal.NewFromInt(800)), "march revenue = %s", march.TotalRevenue)
		assert.True(t, march.AvgOrderValue.Equal(decimal.NewFromInt(400)), "march avg = %s", march.AvgOrderValue)

		april := trends[1]
		assert.Equal(t, 2024, april.Year)
		assert.Equal(t, 4, april.Month)
		assert.Equal(t, int64(2), april.OrderCount)
		assert.True(t, april.TotalRevenue.Equal(decimal.NewFromInt(600)), "april revenue = %s", april.TotalRevenue)
	})

	t.Run("regional revenue joins customers to deduplicated orders", func(t *testing.T) {
		seed()

		regions, err := analyticsRepo.RevenueByRegion(ctx)
		require.NoError(t, err)
		require.Len(t, regions, 2)

		north := regions[0]
		assert.Equal(t, "North", north.Region)
		assert.Equal(t, int64(2), north.CustomerCount)
		assert.Equal(t, int64(3), north.OrderCount)
		assert.True(t, north.TotalRevenue.Equal(decimal.NewFromInt(1000)), "north revenue = %s", north.TotalRevenue)

		south := regions[1]
		assert.Equal(t, "South", south.Region)
		assert.Equal(t, int64(1), south.CustomerCount)
		assert.Equal(t, int64(1), south.OrderCount)
		assert.True(t, south.TotalRevenue.Equal(decimal.NewFromInt(400)), "south revenue = %s", south.TotalRevenue)
		assert.True(t, south.AvgOrderValue.Equal(decimal.NewFromInt(400)), "south avg = %s", south.AvgOrderValue)
	})

	t.Run("top customers rank recent spend", func(t *testing.T) {
		tdb.CleanTables()
		require.NoError(t, customersRepo.UpsertBatch(ctx, []customer.Customer{
			storeCustomer("C1", "Alice", "9000000001", "North"),
			storeCustomer("C2", "Bob", "9000000002", "South"),
		}))
		require.NoError(t, ordersRepo.InsertBatch(ctx, []order.LineItem{
			storeLineItem("O1", "9000000001", "SKU-A", 2, "500.00", daysAgo(5)),
			storeLineItem("O1", "9000000001", "SKU-B", 1, "500.00", daysAgo(5)),
			storeLineItem("O2", "9000000001", "SKU-C", 1, "300.00", daysAgo(10)),
			storeLineItem("O3", "9000000002", "SKU-D", 1, "900.00", daysAgo(3)),
			// Outside the lookback window and undated: both excluded
			storeLineItem("O4", "9000000001", "SKU-E", 1, "9999.00", daysAgo(60)),
			storeLineItem("O5", "9000000002", "SKU-F", 1, "50.00", nil),
		}))

		top, err := analyticsRepo.TopCustomersSince(ctx, 30)
		require.NoError(t, err)
		require.Len(t, top, 2)

		assert.Equal(t, "C2", top[0].CustomerID)
		assert.Equal(t, int64(1), top[0].OrderCount)
		assert.True(t, top[0].TotalSpent.Equal(decimal.NewFromInt(900)), "c2 spend = %s", top[0].TotalSpent)

		assert.Equal(t, "C1", top[1].CustomerID)
		assert.Equal(t, int64(2), top[1].OrderCount)
		assert.True(t, top[1].TotalSpent.Equal(decimal.NewFromInt(800)), "c1 spend = %s", top[1].TotalSpent)
		assert.True(t, top[1].AvgOrderValue.Equal(decimal.NewFromInt(400)), "c1 avg = %s", top[1].AvgOrderValue)
		require.NotNil(t, top[1].LastOrderDate)
	})
}
