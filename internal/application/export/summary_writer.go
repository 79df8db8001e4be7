package export

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// WriteSummary writes the human-readable run summary: cleaning stats,
// headline KPIs and the top customer.
func (e *Exporter) WriteSummary(doc KPIDocument) (string, error) {
	name := e.filename("summary_report", "txt")
	report := doc.Report
	ruler := strings.Repeat("=", 80)
	divider := strings.Repeat("-", 80)

	lines := []string{
		ruler,
		"SALES DATA PIPELINE - SUMMARY REPORT",
		ruler,
		fmt.Sprintf("Run ID:    %s", doc.RunID),
		fmt.Sprintf("Generated: %s", doc.GeneratedAt.Format(timestampLayout)),
		"",
		"DATA QUALITY SUMMARY",
		divider,
		"",
		"Customer Data:",
		fmt.Sprintf("  Original Records: %d", doc.CustomerStats.OriginalCount),
		fmt.Sprintf("  Clean Records: %d", doc.CustomerStats.FinalCount),
		fmt.Sprintf("  Duplicates Removed: %d", doc.CustomerStats.DuplicatesRemoved),
		fmt.Sprintf("  Rows Dropped: %d", doc.CustomerStats.RowsDropped),
		"",
		"Order Data:",
		fmt.Sprintf("  Original Records: %d", doc.OrderStats.OriginalCount),
		fmt.Sprintf("  Valid Records: %d", doc.OrderStats.ValidCount),
		fmt.Sprintf("  Invalid Records: %d", doc.OrderStats.InvalidCount),
		fmt.Sprintf("    - Missing SKU Count: %d", doc.OrderStats.MissingSkuCount),
		fmt.Sprintf("    - Non-Positive SKU Count: %d", doc.OrderStats.NonPositiveSkuCount),
		fmt.Sprintf("    - Negative Amount: %d", doc.OrderStats.NegativeAmount),
		fmt.Sprintf("    - Missing Key Fields: %d", doc.OrderStats.MissingKeyFields),
		fmt.Sprintf("  Unparseable Dates: %d", doc.OrderStats.UnparseableDates),
		"",
		fmt.Sprintf("Unmatched Line Items: %d", doc.UnmatchedLineItems),
		"",
		ruler,
		"KEY PERFORMANCE INDICATORS",
		ruler,
		"",
		"CUSTOMER METRICS:",
		fmt.Sprintf("  Total Customers: %d", report.CustomerMetrics.TotalCustomers),
		fmt.Sprintf("  Avg Orders per Customer: %.2f", report.CustomerMetrics.AvgOrdersPerCustomer),
		fmt.Sprintf("  Avg Revenue per Customer: %s", report.CustomerMetrics.AvgRevenuePerCustomer.StringFixed(2)),
		"",
		"ORDER METRICS:",
		fmt.Sprintf("  Total Orders: %d", report.OrderMetrics.TotalOrders),
		fmt.Sprintf("  Avg Order Value: %s", report.OrderMetrics.AvgOrderValue.StringFixed(2)),
		fmt.Sprintf("  Order Value Range: %s - %s",
			report.OrderMetrics.MinOrderValue.StringFixed(2),
			report.OrderMetrics.MaxOrderValue.StringFixed(2)),
		"",
		"REVENUE METRICS:",
		fmt.Sprintf("  Total Revenue: %s", report.RevenueMetrics.TotalRevenue.StringFixed(2)),
		fmt.Sprintf("  Total Items Sold: %d", report.RevenueMetrics.TotalItemsSold),
		"",
		"PRODUCT METRICS:",
		fmt.Sprintf("  Total Unique SKUs: %d", report.ProductMetrics.TotalUniqueSKUs),
		fmt.Sprintf("  Most Sold SKU: %s (Qty: %d)",
			orNA(report.ProductMetrics.MostSoldSKU),
			report.ProductMetrics.MostSoldSKUQuantity),
		"",
		"REGIONAL METRICS:",
		fmt.Sprintf("  Top Revenue Region: %s", orNA(report.RegionalMetrics.TopRevenueRegion)),
		"",
		"TEMPORAL METRICS:",
		fmt.Sprintf("  Busiest Hour: %s", formatHour(report.TemporalMetrics.BusiestHour)),
		fmt.Sprintf("  Busiest Weekday: %s", orNA(report.TemporalMetrics.BusiestWeekday)),
		"",
		"TOP CUSTOMER:",
	}

	if len(report.TopPerformers.TopCustomers) > 0 {
		top := report.TopPerformers.TopCustomers[0]
		lines = append(lines, fmt.Sprintf("  %s - %s (%d orders)",
			top.CustomerName, top.TotalRevenue.StringFixed(2), top.TotalOrders))
	} else {
		lines = append(lines, "  N/A")
	}

	lines = append(lines, "", ruler, "END OF REPORT", ruler, "")

	path, f, err := e.createFile(name)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(strings.Join(lines, "\n")); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	e.logger.Info("artifact written", zap.String("path", path))

	return path, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatHour(hour *int) string {
	if hour == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d:00", *hour)
}
