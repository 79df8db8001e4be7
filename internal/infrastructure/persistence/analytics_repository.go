package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesintel/pipeline/internal/domain/analytics"
)

// GormAnalyticsRepository implements analytics.StoreRepository using GORM.
//
// total_amount repeats on every line item of an order, so every revenue
// query first collapses orders to one row per order_id (MIN picks the
// representative values) and aggregates over that.
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// RepeatCustomers returns customers with more than one distinct order,
// ordered by order count descending
func (r *GormAnalyticsRepository) RepeatCustomers(ctx context.Context) ([]analytics.RepeatCustomer, error) {
	type repeatResult struct {
		CustomerID   string
		CustomerName string
		Region       string
		OrderCount   int64
	}

	var results []repeatResult

	err := r.db.WithContext(ctx).Table("customers c").
		Select(`
			c.customer_id,
			c.customer_name,
			c.region,
			COUNT(DISTINCT o.order_id) as order_count
		`).
		Joins("JOIN orders o ON o.mobile_number = c.mobile_number").
		Group("c.customer_id, c.customer_name, c.region").
		Having("COUNT(DISTINCT o.order_id) > 1").
		Order("order_count DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	customers := make([]analytics.RepeatCustomer, len(results))
	for i, res := range results {
		customers[i] = analytics.RepeatCustomer{
			CustomerID:   res.CustomerID,
			CustomerName: res.CustomerName,
			Region:       res.Region,
			OrderCount:   res.OrderCount,
		}
	}

	return customers, nil
}

// MonthlyTrends returns order count, revenue and average order value per
// calendar month, ascending. Orders without a date are excluded before
// deduplication so a null bucket cannot appear.
func (r *GormAnalyticsRepository) MonthlyTrends(ctx context.Context) ([]analytics.MonthlyTrend, error) {
	type monthlyResult struct {
		Year          int
		Month         int
		OrderCount    int64
		TotalRevenue  decimal.Decimal
		AvgOrderValue decimal.Decimal
	}

	var results []monthlyResult

	sub := r.db.Table("orders").
		Select("order_id, MIN(order_date_time) AS order_date_time, MIN(total_amount) AS total_amount").
		Where("order_date_time IS NOT NULL").
		Group("order_id")

	yearExpr, monthExpr := r.yearMonthExprs()

	err := r.db.WithContext(ctx).Table("(?) AS d", sub).
		Select(fmt.Sprintf(`
			%s AS year,
			%s AS month,
			COUNT(d.order_id) AS order_count,
			SUM(d.total_amount) AS total_revenue,
			AVG(d.total_amount) AS avg_order_value
		`, yearExpr, monthExpr)).
		Group("year, month").
		Order("year, month").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	trends := make([]analytics.MonthlyTrend, len(results))
	for i, res := range results {
		trends[i] = analytics.MonthlyTrend{
			Year:          res.Year,
			Month:         res.Month,
			OrderCount:    res.OrderCount,
			TotalRevenue:  res.TotalRevenue,
			AvgOrderValue: res.AvgOrderValue,
		}
	}

	return trends, nil
}

// yearMonthExprs returns the dialect's expressions for extracting the year
// and month of the deduplicated order timestamp.
func (r *GormAnalyticsRepository) yearMonthExprs() (string, string) {
	if r.db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%Y', d.order_date_time) AS INTEGER)",
			"CAST(strftime('%m', d.order_date_time) AS INTEGER)"
	}
	return "CAST(EXTRACT(YEAR FROM d.order_date_time) AS INTEGER)",
		"CAST(EXTRACT(MONTH FROM d.order_date_time) AS INTEGER)"
}

// RevenueByRegion returns customer count, order count, revenue and average
// order value per region, by revenue descending
func (r *GormAnalyticsRepository) RevenueByRegion(ctx context.Context) ([]analytics.RegionRevenue, error) {
	type regionResult struct {
		Region        string
		CustomerCount int64
		OrderCount    int64
		TotalRevenue  decimal.Decimal
		AvgOrderValue decimal.Decimal
	}

	var results []regionResult

	sub := r.db.Table("orders").
		Select("order_id, mobile_number, MIN(total_amount) AS total_amount").
		Group("order_id, mobile_number")

	err := r.db.WithContext(ctx).Table("customers c").
		Select(`
			c.region,
			COUNT(DISTINCT c.customer_id) AS customer_count,
			COUNT(d.order_id) AS order_count,
			SUM(d.total_amount) AS total_revenue,
			AVG(d.total_amount) AS avg_order_value
		`).
		Joins("JOIN (?) d ON d.mobile_number = c.mobile_number", sub).
		Group("c.region").
		Order("total_revenue DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	regions := make([]analytics.RegionRevenue, len(results))
	for i, res := range results {
		regions[i] = analytics.RegionRevenue{
			Region:        res.Region,
			CustomerCount: res.CustomerCount,
			OrderCount:    res.OrderCount,
			TotalRevenue:  res.TotalRevenue,
			AvgOrderValue: res.AvgOrderValue,
		}
	}

	return regions, nil
}

// TopCustomersSince ranks customers by total spend over orders placed in the
// last `days` days, descending. The date filter also drops undated orders.
func (r *GormAnalyticsRepository) TopCustomersSince(ctx context.Context, days int) ([]analytics.TopCustomer, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	type topResult struct {
		CustomerID    string
		CustomerName  string
		Region        string
		OrderCount    int64
		TotalSpent    decimal.Decimal
		AvgOrderValue decimal.Decimal
		LastOrderDate *time.Time
	}

	var results []topResult

	sub := r.db.Table("orders").
		Select("order_id, mobile_number, MIN(order_date_time) AS order_date_time, MIN(total_amount) AS total_amount").
		Where("order_date_time >= ?", cutoff).
		Group("order_id, mobile_number")

	err := r.db.WithContext(ctx).Table("customers c").
		Select(`
			c.customer_id,
			c.customer_name,
			c.region,
			COUNT(d.order_id) AS order_count,
			SUM(d.total_amount) AS total_spent,
			AVG(d.total_amount) AS avg_order_value,
			MAX(d.order_date_time) AS last_order_date
		`).
		Joins("JOIN (?) d ON d.mobile_number = c.mobile_number", sub).
		Group("c.customer_id, c.customer_name, c.region").
		Order("total_spent DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	customers := make([]analytics.TopCustomer, len(results))
	for i, res := range results {
		customers[i] = analytics.TopCustomer{
			CustomerID:    res.CustomerID,
			CustomerName:  res.CustomerName,
			Region:        res.Region,
			OrderCount:    res.OrderCount,
			TotalSpent:    res.TotalSpent,
			AvgOrderValue: res.AvgOrderValue,
			LastOrderDate: res.LastOrderDate,
		}
	}

	return customers, nil
}
