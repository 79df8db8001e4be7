package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/domain/analytics"
)

// WriteWorkbook writes the KPI report as a five-sheet spreadsheet: Summary,
// Customer Details, SKU Performance, Regional Revenue, Top Customers.
func (e *Exporter) WriteWorkbook(report *analytics.Report) (string, error) {
	name := e.filename("sales_report", "xlsx")

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return "", fmt.Errorf("rename summary sheet: %w", err)
	}

	summaryRows := [][]any{
		{"Total Customers", report.CustomerMetrics.TotalCustomers},
		{"Avg Orders per Customer", report.CustomerMetrics.AvgOrdersPerCustomer},
		{"Avg Revenue per Customer", report.CustomerMetrics.AvgRevenuePerCustomer.InexactFloat64()},
		{"Total Orders", report.OrderMetrics.TotalOrders},
		{"Avg Order Value", report.OrderMetrics.AvgOrderValue.InexactFloat64()},
		{"Total Revenue", report.RevenueMetrics.TotalRevenue.InexactFloat64()},
		{"Total Items Sold", report.RevenueMetrics.TotalItemsSold},
		{"Total Unique SKUs", report.ProductMetrics.TotalUniqueSKUs},
		{"Most Sold SKU", report.ProductMetrics.MostSoldSKU},
	}
	writeSheet(f, "Summary", headerStyle, []string{"Metric", "Value"}, summaryRows)

	customerRows := make([][]any, 0, len(report.CustomerMetrics.CustomerDetails))
	for _, d := range report.CustomerMetrics.CustomerDetails {
		customerRows = append(customerRows, []any{
			d.CustomerID, d.TotalOrders, d.TotalRevenue.InexactFloat64(),
			d.TotalItems, d.AvgOrderValue.InexactFloat64(),
		})
	}
	skuRows := make([][]any, 0, len(report.ProductMetrics.SKUPerformance))
	for _, p := range report.ProductMetrics.SKUPerformance {
		skuRows = append(skuRows, []any{p.SkuID, p.TotalQuantitySold, p.OrdersCount, p.LineItems})
	}
	regionRows := make([][]any, 0, len(report.RegionalMetrics.RegionalBreakdown))
	for _, r := range report.RegionalMetrics.RegionalBreakdown {
		regionRows = append(regionRows, []any{
			r.Region, r.TotalOrders, r.TotalCustomers,
			r.TotalRevenue.InexactFloat64(), r.AvgRevenuePerCustomer.InexactFloat64(),
		})
	}
	topRows := make([][]any, 0, len(report.TopPerformers.TopCustomers))
	for _, t := range report.TopPerformers.TopCustomers {
		topRows = append(topRows, []any{
			t.CustomerID, t.CustomerName, t.Region,
			t.TotalRevenue.InexactFloat64(), t.TotalOrders,
		})
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{"Customer Details",
			[]string{"customer_id", "total_orders", "total_revenue", "total_items", "avg_order_value"},
			customerRows},
		{"SKU Performance",
			[]string{"sku_id", "total_quantity_sold", "orders_count", "line_items"},
			skuRows},
		{"Regional Revenue",
			[]string{"region", "total_orders", "total_customers", "total_revenue", "avg_revenue_per_customer"},
			regionRows},
		{"Top Customers",
			[]string{"customer_id", "customer_name", "region", "total_revenue", "total_orders"},
			topRows},
	}
	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return "", fmt.Errorf("create sheet %s: %w", sheet.name, err)
		}
		writeSheet(f, sheet.name, headerStyle, sheet.headers, sheet.rows)
	}

	path, out, err := e.createFile(name)
	if err != nil {
		return "", err
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	e.logger.Info("artifact written",
		zap.String("path", path),
		zap.Int("sheets", len(sheets)+1))

	return path, nil
}

// writeSheet fills one sheet: styled header row, data rows, column widths
// sized to the longest cell and capped at 50.
func writeSheet(f *excelize.File, sheet string, headerStyle int, headers []string, rows [][]any) {
	widths := make([]float64, len(headers))

	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
		widths[i] = float64(len(h))
	}

	for rowIdx, row := range rows {
		for i, value := range row {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, rowIdx+2), value)
			if w := float64(len(fmt.Sprint(value))); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width += 2
		if width > 50 {
			width = 50
		}
		f.SetColWidth(sheet, col, col, width)
	}
}
