package export

import (
	"strconv"
	"strings"

	"github.com/salesintel/pipeline/internal/domain/analytics"
	"github.com/salesintel/pipeline/internal/domain/customer"
	"github.com/salesintel/pipeline/internal/domain/order"
)

// WriteCleanCustomers writes the cleaned customer set
func (e *Exporter) WriteCleanCustomers(customers []customer.Customer) (string, error) {
	header := []string{"customer_id", "customer_name", "mobile_number", "region"}
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{c.CustomerID, c.CustomerName, c.MobileNumber, c.Region})
	}
	return e.writeCSV(e.filename("clean_customers", "csv"), header, rows)
}

// WriteCleanOrders writes the cleaned line items with their derived calendar
// columns. Line items without a parsed timestamp leave the date cells empty.
func (e *Exporter) WriteCleanOrders(items []order.LineItem) (string, error) {
	header := []string{
		"order_id", "mobile_number", "order_date_time", "sku_id",
		"sku_count", "total_amount", "order_year", "order_month",
		"order_day", "order_hour", "order_weekday",
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := []string{
			item.OrderID,
			item.MobileNumber,
			formatTimestamp(item.OrderDateTime),
			item.SkuID,
			strconv.Itoa(item.SkuCount),
			item.TotalAmount.String(),
			"", "", "", "", "",
		}
		if item.OrderDateTime != nil {
			row[6] = strconv.Itoa(item.Year)
			row[7] = strconv.Itoa(item.Month)
			row[8] = strconv.Itoa(item.Day)
			row[9] = strconv.Itoa(item.Hour)
			row[10] = item.Weekday
		}
		rows = append(rows, row)
	}
	return e.writeCSV(e.filename("clean_orders", "csv"), header, rows)
}

// WriteInvalidOrders writes rejected line items with their raw field values
// and every reason that matched, joined by ";".
func (e *Exporter) WriteInvalidOrders(rejected []order.RejectedLineItem) (string, error) {
	header := []string{
		"order_id", "mobile_number", "order_date_time", "sku_id",
		"sku_count", "total_amount", "reject_reasons",
	}
	rows := make([][]string, 0, len(rejected))
	for _, r := range rejected {
		reasons := make([]string, 0, len(r.Reasons))
		for _, reason := range r.Reasons {
			reasons = append(reasons, string(reason))
		}
		rows = append(rows, []string{
			r.OrderID,
			r.MobileNumber,
			r.OrderDateTime,
			r.SkuID,
			r.SkuCount,
			r.TotalAmount,
			strings.Join(reasons, ";"),
		})
	}
	return e.writeCSV(e.filename("invalid_orders", "csv"), header, rows)
}

// WriteRepeatCustomers writes the store-side repeat customer KPI
func (e *Exporter) WriteRepeatCustomers(repeats []analytics.RepeatCustomer) (string, error) {
	header := []string{"customer_id", "customer_name", "region", "order_count"}
	rows := make([][]string, 0, len(repeats))
	for _, r := range repeats {
		rows = append(rows, []string{
			r.CustomerID,
			r.CustomerName,
			r.Region,
			strconv.FormatInt(r.OrderCount, 10),
		})
	}
	return e.writeCSV(e.filename("repeat_customers", "csv"), header, rows)
}

// WriteMonthlyTrends writes the store-side monthly trend KPI
func (e *Exporter) WriteMonthlyTrends(trends []analytics.MonthlyTrend) (string, error) {
	header := []string{"year", "month", "order_count", "total_revenue", "avg_order_value"}
	rows := make([][]string, 0, len(trends))
	for _, t := range trends {
		rows = append(rows, []string{
			strconv.Itoa(t.Year),
			strconv.Itoa(t.Month),
			strconv.FormatInt(t.OrderCount, 10),
			t.TotalRevenue.String(),
			t.AvgOrderValue.String(),
		})
	}
	return e.writeCSV(e.filename("monthly_trends", "csv"), header, rows)
}

// WriteRegionalRevenue writes the store-side regional revenue KPI
func (e *Exporter) WriteRegionalRevenue(regions []analytics.RegionRevenue) (string, error) {
	header := []string{"region", "customer_count", "order_count", "total_revenue", "avg_order_value"}
	rows := make([][]string, 0, len(regions))
	for _, r := range regions {
		rows = append(rows, []string{
			r.Region,
			strconv.FormatInt(r.CustomerCount, 10),
			strconv.FormatInt(r.OrderCount, 10),
			r.TotalRevenue.String(),
			r.AvgOrderValue.String(),
		})
	}
	return e.writeCSV(e.filename("regional_revenue", "csv"), header, rows)
}

// WriteTopCustomers writes the store-side top customer KPI
func (e *Exporter) WriteTopCustomers(top []analytics.TopCustomer) (string, error) {
	header := []string{
		"customer_id", "customer_name", "region", "order_count",
		"total_spent", "avg_order_value", "last_order_date",
	}
	rows := make([][]string, 0, len(top))
	for _, t := range top {
		rows = append(rows, []string{
			t.CustomerID,
			t.CustomerName,
			t.Region,
			strconv.FormatInt(t.OrderCount, 10),
			t.TotalSpent.String(),
			t.AvgOrderValue.String(),
			formatTimestamp(t.LastOrderDate),
		})
	}
	return e.writeCSV(e.filename("top_customers", "csv"), header, rows)
}
