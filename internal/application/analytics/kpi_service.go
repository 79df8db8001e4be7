package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/domain/analytics"
)

// weekdayOrder fixes weekday buckets to calendar order, Monday first
var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// KPIService computes the full KPI report from the merged dataset.
//
// Revenue rule applied throughout: total_amount repeats on every line item of
// an order, so order-level figures reduce to one row per order id (first
// occurrence) before aggregating. Quantity stays line-item-granular.
//
// Unmatched line items are real orders: they count in order, revenue, product
// and temporal metrics, but carry no customer attributes and are left out of
// customer, regional and top-performer groupings.
type KPIService struct {
	logger *zap.Logger
}

// NewKPIService creates a new KPIService
func NewKPIService(logger *zap.Logger) *KPIService {
	return &KPIService{logger: logger}
}

// Calculate produces every KPI group. An empty input yields a report of
// zero/empty values, never a panic.
func (s *KPIService) Calculate(merged []analytics.MergedLineItem) *analytics.Report {
	orders := rollupOrders(merged)
	customers := rollupCustomers(merged)

	report := &analytics.Report{
		CustomerMetrics: s.customerMetrics(customers),
		OrderMetrics:    s.orderMetrics(merged, orders),
		RevenueMetrics:  s.revenueMetrics(merged, orders),
		ProductMetrics:  s.productMetrics(merged),
		RegionalMetrics: s.regionalMetrics(merged),
		TemporalMetrics: s.temporalMetrics(merged),
		TopPerformers:   s.topPerformers(customers),
	}

	s.logger.Info("kpi report calculated",
		zap.Int("line_items", len(merged)),
		zap.Int("distinct_orders", len(orders)),
		zap.Int("customers", len(customers)))

	return report
}

// orderRollup is one distinct order reduced to a single row. total is the
// first occurrence of total_amount for the order id.
type orderRollup struct {
	orderID  string
	total    decimal.Decimal
	skus     map[string]struct{}
	quantity int
}

func rollupOrders(merged []analytics.MergedLineItem) []*orderRollup {
	index := make(map[string]*orderRollup, len(merged))
	rollups := make([]*orderRollup, 0, len(merged))

	for _, row := range merged {
		r, ok := index[row.OrderID]
		if !ok {
			r = &orderRollup{
				orderID: row.OrderID,
				total:   row.TotalAmount,
				skus:    make(map[string]struct{}),
			}
			index[row.OrderID] = r
			rollups = append(rollups, r)
		}
		r.skus[row.SkuID] = struct{}{}
		r.quantity += row.SkuCount
	}

	return rollups
}

// customerRollup is one matched customer reduced to a single row. revenue is
// order-deduplicated; items counts every line.
type customerRollup struct {
	customerID string
	name       string
	region     string
	orders     map[string]struct{}
	revenue    decimal.Decimal
	items      int
}

func rollupCustomers(merged []analytics.MergedLineItem) []*customerRollup {
	index := make(map[string]*customerRollup)
	rollups := make([]*customerRollup, 0)

	for _, row := range merged {
		if !row.Matched {
			continue
		}
		r, ok := index[row.CustomerID]
		if !ok {
			r = &customerRollup{
				customerID: row.CustomerID,
				name:       row.CustomerName,
				region:     row.Region,
				orders:     make(map[string]struct{}),
			}
			index[row.CustomerID] = r
			rollups = append(rollups, r)
		}
		if _, seen := r.orders[row.OrderID]; !seen {
			r.orders[row.OrderID] = struct{}{}
			r.revenue = r.revenue.Add(row.TotalAmount)
		}
		r.items++
	}

	return rollups
}

// customerMetrics reports per-customer purchasing behaviour. The detail
// table is sorted by customer id ascending.
func (s *KPIService) customerMetrics(rollups []*customerRollup) analytics.CustomerMetrics {
	metrics := analytics.CustomerMetrics{
		CustomerDetails: make([]analytics.CustomerDetail, 0, len(rollups)),
	}
	if len(rollups) == 0 {
		return metrics
	}

	sorted := make([]*customerRollup, len(rollups))
	copy(sorted, rollups)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].customerID < sorted[j].customerID
	})

	totalOrders := 0
	totalItems := 0
	totalRevenue := decimal.Zero

	for _, r := range sorted {
		orderCount := len(r.orders)
		totalOrders += orderCount
		totalItems += r.items
		totalRevenue = totalRevenue.Add(r.revenue)

		metrics.CustomerDetails = append(metrics.CustomerDetails, analytics.CustomerDetail{
			CustomerID:    r.customerID,
			TotalOrders:   orderCount,
			TotalRevenue:  r.revenue,
			TotalItems:    r.items,
			AvgOrderValue: r.revenue.Div(decimal.NewFromInt(int64(orderCount))),
		})
	}

	n := len(sorted)
	metrics.TotalCustomers = n
	metrics.AvgOrdersPerCustomer = float64(totalOrders) / float64(n)
	metrics.AvgRevenuePerCustomer = totalRevenue.Div(decimal.NewFromInt(int64(n)))
	metrics.AvgItemsPerCustomer = float64(totalItems) / float64(n)

	return metrics
}

// orderMetrics reports over the distinct order population. Items per order
// means distinct SKUs in the order.
func (s *KPIService) orderMetrics(merged []analytics.MergedLineItem, orders []*orderRollup) analytics.OrderMetrics {
	metrics := analytics.OrderMetrics{TotalOrderLineItems: len(merged)}
	if len(orders) == 0 {
		return metrics
	}

	totals := make([]decimal.Decimal, 0, len(orders))
	skuSum := 0
	quantitySum := 0
	valueSum := decimal.Zero

	for _, r := range orders {
		totals = append(totals, r.total)
		skuSum += len(r.skus)
		quantitySum += r.quantity
		valueSum = valueSum.Add(r.total)
	}

	sort.Slice(totals, func(i, j int) bool { return totals[i].LessThan(totals[j]) })

	n := len(orders)
	metrics.TotalOrders = n
	metrics.AvgItemsPerOrder = float64(skuSum) / float64(n)
	metrics.AvgQuantityPerOrder = float64(quantitySum) / float64(n)
	metrics.AvgOrderValue = valueSum.Div(decimal.NewFromInt(int64(n)))
	metrics.MinOrderValue = totals[0]
	metrics.MaxOrderValue = totals[n-1]
	metrics.MedianOrderValue = median(totals)

	return metrics
}

// median expects values already sorted ascending. An even population takes
// the mean of the two middle values.
func median(sorted []decimal.Decimal) decimal.Decimal {
	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
}

func (s *KPIService) revenueMetrics(merged []analytics.MergedLineItem, orders []*orderRollup) analytics.RevenueMetrics {
	metrics := analytics.RevenueMetrics{}

	for _, r := range orders {
		metrics.TotalRevenue = metrics.TotalRevenue.Add(r.total)
	}
	for _, row := range merged {
		metrics.TotalItemsSold += row.SkuCount
	}

	if len(orders) > 0 {
		metrics.AvgRevenuePerOrder = metrics.TotalRevenue.Div(decimal.NewFromInt(int64(len(orders))))
	}
	if metrics.TotalItemsSold > 0 {
		metrics.AvgRevenuePerItem = metrics.TotalRevenue.Div(decimal.NewFromInt(int64(metrics.TotalItemsSold)))
	}

	return metrics
}

// skuRollup is one SKU reduced to a single row. quantity sums sku_count over
// every line naming the SKU.
type skuRollup struct {
	skuID    string
	quantity int
	orders   map[string]struct{}
	lines    int
}

// productMetrics reports per-SKU sales. The performance table holds the top
// ten by quantity sold descending; first-seen order breaks ties.
func (s *KPIService) productMetrics(merged []analytics.MergedLineItem) analytics.ProductMetrics {
	index := make(map[string]*skuRollup)
	rollups := make([]*skuRollup, 0)

	for _, row := range merged {
		r, ok := index[row.SkuID]
		if !ok {
			r = &skuRollup{skuID: row.SkuID, orders: make(map[string]struct{})}
			index[row.SkuID] = r
			rollups = append(rollups, r)
		}
		r.quantity += row.SkuCount
		r.orders[row.OrderID] = struct{}{}
		r.lines++
	}

	metrics := analytics.ProductMetrics{
		SKUPerformance: make([]analytics.SKUPerformance, 0, 10),
	}
	if len(rollups) == 0 {
		return metrics
	}

	sort.SliceStable(rollups, func(i, j int) bool {
		return rollups[i].quantity > rollups[j].quantity
	})

	quantitySum := 0
	for _, r := range rollups {
		quantitySum += r.quantity
	}

	metrics.TotalUniqueSKUs = len(rollups)
	metrics.MostSoldSKU = rollups[0].skuID
	metrics.MostSoldSKUQuantity = rollups[0].quantity
	metrics.AvgQuantityPerSKU = float64(quantitySum) / float64(len(rollups))

	top := rollups
	if len(top) > 10 {
		top = top[:10]
	}
	for _, r := range top {
		metrics.SKUPerformance = append(metrics.SKUPerformance, analytics.SKUPerformance{
			SkuID:             r.skuID,
			TotalQuantitySold: r.quantity,
			OrdersCount:       len(r.orders),
			LineItems:         r.lines,
		})
	}

	return metrics
}

// regionRollup is one region reduced to a single row. revenue deduplicates
// orders within the region before summing.
type regionRollup struct {
	region    string
	orders    map[string]struct{}
	customers map[string]struct{}
	revenue   decimal.Decimal
}

// regionalMetrics reports per-region sales over matched line items, ranked
// by revenue descending; first-seen order breaks ties.
func (s *KPIService) regionalMetrics(merged []analytics.MergedLineItem) analytics.RegionalMetrics {
	index := make(map[string]*regionRollup)
	rollups := make([]*regionRollup, 0)

	for _, row := range merged {
		if !row.Matched {
			continue
		}
		r, ok := index[row.Region]
		if !ok {
			r = &regionRollup{
				region:    row.Region,
				orders:    make(map[string]struct{}),
				customers: make(map[string]struct{}),
			}
			index[row.Region] = r
			rollups = append(rollups, r)
		}
		if _, seen := r.orders[row.OrderID]; !seen {
			r.orders[row.OrderID] = struct{}{}
			r.revenue = r.revenue.Add(row.TotalAmount)
		}
		r.customers[row.CustomerID] = struct{}{}
	}

	metrics := analytics.RegionalMetrics{
		RegionalBreakdown: make([]analytics.RegionBreakdown, 0, len(rollups)),
	}
	if len(rollups) == 0 {
		return metrics
	}

	sort.SliceStable(rollups, func(i, j int) bool {
		return rollups[i].revenue.GreaterThan(rollups[j].revenue)
	})

	for _, r := range rollups {
		metrics.RegionalBreakdown = append(metrics.RegionalBreakdown, analytics.RegionBreakdown{
			Region:                r.region,
			TotalOrders:           len(r.orders),
			TotalCustomers:        len(r.customers),
			TotalRevenue:          r.revenue,
			AvgRevenuePerCustomer: r.revenue.Div(decimal.NewFromInt(int64(len(r.customers)))),
		})
	}

	metrics.RegionsCount = len(rollups)
	metrics.TopRevenueRegion = rollups[0].region

	return metrics
}

// temporalMetrics buckets distinct-order counts by month, weekday and hour
// over line items with a parsed timestamp. Ties on the busiest bucket go to
// the first one in bucket order.
func (s *KPIService) temporalMetrics(merged []analytics.MergedLineItem) analytics.TemporalMetrics {
	type monthKey struct {
		year  int
		month int
	}

	monthly := make(map[monthKey]map[string]struct{})
	weekday := make(map[string]map[string]struct{})
	hourly := make(map[int]map[string]struct{})

	metrics := analytics.TemporalMetrics{
		MonthlyBreakdown: make([]analytics.MonthlyBucket, 0),
		WeekdayBreakdown: make([]analytics.WeekdayBucket, 0),
		HourlyBreakdown:  make([]analytics.HourlyBucket, 0),
	}

	for _, row := range merged {
		if row.OrderDateTime == nil {
			continue
		}
		ts := *row.OrderDateTime
		if metrics.DateRange.FirstOrder == nil || ts.Before(*metrics.DateRange.FirstOrder) {
			first := ts
			metrics.DateRange.FirstOrder = &first
		}
		if metrics.DateRange.LastOrder == nil || ts.After(*metrics.DateRange.LastOrder) {
			last := ts
			metrics.DateRange.LastOrder = &last
		}

		mk := monthKey{year: row.Year, month: row.Month}
		if monthly[mk] == nil {
			monthly[mk] = make(map[string]struct{})
		}
		monthly[mk][row.OrderID] = struct{}{}

		if weekday[row.Weekday] == nil {
			weekday[row.Weekday] = make(map[string]struct{})
		}
		weekday[row.Weekday][row.OrderID] = struct{}{}

		if hourly[row.Hour] == nil {
			hourly[row.Hour] = make(map[string]struct{})
		}
		hourly[row.Hour][row.OrderID] = struct{}{}
	}

	monthKeys := make([]monthKey, 0, len(monthly))
	for k := range monthly {
		monthKeys = append(monthKeys, k)
	}
	sort.Slice(monthKeys, func(i, j int) bool {
		if monthKeys[i].year != monthKeys[j].year {
			return monthKeys[i].year < monthKeys[j].year
		}
		return monthKeys[i].month < monthKeys[j].month
	})
	for _, k := range monthKeys {
		metrics.MonthlyBreakdown = append(metrics.MonthlyBreakdown, analytics.MonthlyBucket{
			Year:       k.year,
			Month:      k.month,
			OrderCount: len(monthly[k]),
		})
	}

	busiestDay := 0
	for _, day := range weekdayOrder {
		orders, ok := weekday[day]
		if !ok {
			continue
		}
		metrics.WeekdayBreakdown = append(metrics.WeekdayBreakdown, analytics.WeekdayBucket{
			Weekday:    day,
			OrderCount: len(orders),
		})
		if len(orders) > busiestDay {
			busiestDay = len(orders)
			metrics.BusiestWeekday = day
		}
	}

	hours := make([]int, 0, len(hourly))
	for h := range hourly {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	busiestHour := 0
	for _, h := range hours {
		count := len(hourly[h])
		metrics.HourlyBreakdown = append(metrics.HourlyBreakdown, analytics.HourlyBucket{
			Hour:       h,
			OrderCount: count,
		})
		if count > busiestHour {
			busiestHour = count
			hour := h
			metrics.BusiestHour = &hour
		}
	}

	return metrics
}

// topPerformers ranks matched customers by order-deduplicated revenue
// descending; first-seen order breaks ties.
func (s *KPIService) topPerformers(rollups []*customerRollup) analytics.TopPerformers {
	metrics := analytics.TopPerformers{
		TopCustomers: make([]analytics.TopPerformer, 0, 5),
	}
	if len(rollups) == 0 {
		return metrics
	}

	ranked := make([]*customerRollup, len(rollups))
	copy(ranked, rollups)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].revenue.GreaterThan(ranked[j].revenue)
	})

	metrics.TopCustomerRevenue = ranked[0].revenue

	top := ranked
	if len(top) > 5 {
		top = top[:5]
	}
	for _, r := range top {
		metrics.TopCustomers = append(metrics.TopCustomers, analytics.TopPerformer{
			CustomerID:   r.customerID,
			CustomerName: r.name,
			Region:       r.region,
			TotalRevenue: r.revenue,
			TotalOrders:  len(r.orders),
		})
	}

	return metrics
}
