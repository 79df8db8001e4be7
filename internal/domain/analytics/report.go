package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report bundles every KPI group computed from one merged dataset.
// All order-level revenue figures in it are order-deduplicated: reduced to one
// row per order id before summing, never summed across raw line items.
type Report struct {
	CustomerMetrics CustomerMetrics `json:"customer_metrics"`
	OrderMetrics    OrderMetrics    `json:"order_metrics"`
	RevenueMetrics  RevenueMetrics  `json:"revenue_metrics"`
	ProductMetrics  ProductMetrics  `json:"product_metrics"`
	RegionalMetrics RegionalMetrics `json:"regional_metrics"`
	TemporalMetrics TemporalMetrics `json:"temporal_metrics"`
	TopPerformers   TopPerformers   `json:"top_performers"`
}

// CustomerDetail is one row of the per-customer breakdown
type CustomerDetail struct {
	CustomerID    string          `json:"customer_id"`
	TotalOrders   int             `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalItems    int             `json:"total_items"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// CustomerMetrics aggregates purchasing behaviour per customer.
// Line items without a matched customer are excluded here.
type CustomerMetrics struct {
	TotalCustomers        int              `json:"total_customers"`
	AvgOrdersPerCustomer  float64          `json:"avg_orders_per_customer"`
	AvgRevenuePerCustomer decimal.Decimal  `json:"avg_revenue_per_customer"`
	AvgItemsPerCustomer   float64          `json:"avg_items_per_customer"`
	CustomerDetails       []CustomerDetail `json:"customer_details"`
}

// OrderMetrics aggregates over the distinct order population
type OrderMetrics struct {
	TotalOrders         int             `json:"total_orders"`
	TotalOrderLineItems int             `json:"total_order_line_items"`
	AvgItemsPerOrder    float64         `json:"avg_items_per_order"`
	AvgQuantityPerOrder float64         `json:"avg_quantity_per_order"`
	AvgOrderValue       decimal.Decimal `json:"avg_order_value"`
	MinOrderValue       decimal.Decimal `json:"min_order_value"`
	MaxOrderValue       decimal.Decimal `json:"max_order_value"`
	MedianOrderValue    decimal.Decimal `json:"median_order_value"`
}

// RevenueMetrics reports totals across the whole dataset. TotalItemsSold sums
// sku_count across ALL line items since quantity is line-item-granular.
type RevenueMetrics struct {
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	AvgRevenuePerOrder decimal.Decimal `json:"avg_revenue_per_order"`
	TotalItemsSold     int             `json:"total_items_sold"`
	AvgRevenuePerItem  decimal.Decimal `json:"avg_revenue_per_item"`
}

// SKUPerformance is one row of the per-SKU breakdown
type SKUPerformance struct {
	SkuID             string `json:"sku_id"`
	TotalQuantitySold int    `json:"total_quantity_sold"`
	OrdersCount       int    `json:"orders_count"`
	LineItems         int    `json:"line_items"`
}

// ProductMetrics aggregates per SKU. SKUPerformance holds the top 10 by
// quantity sold, descending.
type ProductMetrics struct {
	TotalUniqueSKUs     int              `json:"total_unique_skus"`
	MostSoldSKU         string           `json:"most_sold_sku"`
	MostSoldSKUQuantity int              `json:"most_sold_sku_quantity"`
	AvgQuantityPerSKU   float64          `json:"avg_quantity_per_sku"`
	SKUPerformance      []SKUPerformance `json:"sku_performance"`
}

// RegionBreakdown is one row of the per-region breakdown. TotalRevenue
// deduplicates orders within the region before summing.
type RegionBreakdown struct {
	Region                string          `json:"region"`
	TotalOrders           int             `json:"total_orders"`
	TotalCustomers        int             `json:"total_customers"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	AvgRevenuePerCustomer decimal.Decimal `json:"avg_revenue_per_customer"`
}

// RegionalMetrics aggregates per region, ranked by revenue descending.
// Line items without a matched customer carry no region and are excluded.
type RegionalMetrics struct {
	RegionsCount      int               `json:"regions_count"`
	TopRevenueRegion  string            `json:"top_revenue_region"`
	RegionalBreakdown []RegionBreakdown `json:"regional_breakdown"`
}

// DateRange spans the earliest and latest parsed order timestamps.
// Both ends are nil when no line item carries a parseable date.
type DateRange struct {
	FirstOrder *time.Time `json:"first_order"`
	LastOrder  *time.Time `json:"last_order"`
}

// MonthlyBucket counts distinct orders placed in one calendar month
type MonthlyBucket struct {
	Year       int `json:"year"`
	Month      int `json:"month"`
	OrderCount int `json:"order_count"`
}

// WeekdayBucket counts distinct orders placed on one weekday
type WeekdayBucket struct {
	Weekday    string `json:"weekday"`
	OrderCount int    `json:"order_count"`
}

// HourlyBucket counts distinct orders placed in one hour of the day
type HourlyBucket struct {
	Hour       int `json:"hour"`
	OrderCount int `json:"order_count"`
}

// TemporalMetrics buckets distinct-order counts by month, weekday and hour.
// Line items with nil timestamps are excluded from every bucket and from the
// date range; BusiestHour is nil when no bucket exists.
type TemporalMetrics struct {
	DateRange        DateRange       `json:"date_range"`
	MonthlyBreakdown []MonthlyBucket `json:"monthly_breakdown"`
	WeekdayBreakdown []WeekdayBucket `json:"weekday_breakdown"`
	HourlyBreakdown  []HourlyBucket  `json:"hourly_breakdown"`
	BusiestHour      *int            `json:"busiest_hour"`
	BusiestWeekday   string          `json:"busiest_weekday"`
}

// TopPerformer is one customer in the revenue ranking
type TopPerformer struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Region       string          `json:"region"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalOrders  int             `json:"total_orders"`
}

// TopPerformers ranks customers by order-deduplicated revenue
type TopPerformers struct {
	TopCustomers       []TopPerformer  `json:"top_5_customers"`
	TopCustomerRevenue decimal.Decimal `json:"top_customer_revenue"`
}
