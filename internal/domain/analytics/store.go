package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RepeatCustomer is a customer with more than one distinct order
type RepeatCustomer struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Region       string `json:"region"`
	OrderCount   int64  `json:"order_count"`
}

// MonthlyTrend aggregates deduplicated orders for one calendar month
type MonthlyTrend struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	OrderCount    int64           `json:"order_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// RegionRevenue aggregates deduplicated orders for one region
type RegionRevenue struct {
	Region        string          `json:"region"`
	CustomerCount int64           `json:"customer_count"`
	OrderCount    int64           `json:"order_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// TopCustomer ranks one customer by spend within a lookback window
type TopCustomer struct {
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Region        string          `json:"region"`
	OrderCount    int64           `json:"order_count"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	LastOrderDate *time.Time      `json:"last_order_date"`
}

// StoreRepository defines KPI queries answered by the relational store.
// Every revenue figure must come from orders deduplicated by order_id
// (one representative total_amount per order) before aggregation.
type StoreRepository interface {
	// RepeatCustomers returns customers with more than one distinct order,
	// ordered by order count descending
	RepeatCustomers(ctx context.Context) ([]RepeatCustomer, error)

	// MonthlyTrends returns order count, revenue and average order value per
	// calendar month, ascending. Orders without a date are excluded.
	MonthlyTrends(ctx context.Context) ([]MonthlyTrend, error)

	// RevenueByRegion returns customer count, order count, revenue and
	// average order value per region, by revenue descending
	RevenueByRegion(ctx context.Context) ([]RegionRevenue, error)

	// TopCustomersSince ranks customers by total spend over orders placed in
	// the last `days` days, descending
	TopCustomersSince(ctx context.Context, days int) ([]TopCustomer, error)
}
