package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesintel/pipeline/internal/application/cleaning"
	"github.com/salesintel/pipeline/internal/domain/analytics"
)

func TestExporter_WriteSummary(t *testing.T) {
	t.Run("renders cleaning stats and headline KPIs", func(t *testing.T) {
		e, _ := newTestExporter(t)

		path, err := e.WriteSummary(KPIDocument{
			RunID:       "run-1",
			GeneratedAt: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
			CustomerStats: cleaning.CustomerStats{
				OriginalCount: 5, FinalCount: 4, DuplicatesRemoved: 1, RowsDropped: 1,
			},
			OrderStats: cleaning.OrderStats{
				OriginalCount: 10, ValidCount: 8, InvalidCount: 2, MissingSkuCount: 2,
			},
			UnmatchedLineItems: 1,
			Report:             sampleReport(),
		})
		require.NoError(t, err)
		assert.Equal(t, "summary_report_20240315_143000.txt", filepath.Base(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		text := string(data)

		assert.Contains(t, text, "SALES DATA PIPELINE - SUMMARY REPORT")
		assert.Contains(t, text, "Generated: 2024-03-15 14:30:00")
		assert.Contains(t, text, "Original Records: 5")
		assert.Contains(t, text, "Duplicates Removed: 1")
		assert.Contains(t, text, "- Missing SKU Count: 2")
		assert.Contains(t, text, "Unmatched Line Items: 1")
		assert.Contains(t, text, "Total Revenue: 800.00")
		assert.Contains(t, text, "Order Value Range: 300.00 - 500.00")
		assert.Contains(t, text, "Most Sold SKU: SKU-A (Qty: 2)")
		assert.Contains(t, text, "Top Revenue Region: North")
		assert.Contains(t, text, "Busiest Hour: 14:00")
		assert.Contains(t, text, "Alice - 800.00 (2 orders)")
	})

	t.Run("falls back to N/A on an empty report", func(t *testing.T) {
		e, _ := newTestExporter(t)

		path, err := e.WriteSummary(KPIDocument{
			RunID:       "run-2",
			GeneratedAt: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
			Report:      &analytics.Report{},
		})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		text := string(data)

		assert.Contains(t, text, "Most Sold SKU: N/A (Qty: 0)")
		assert.Contains(t, text, "Top Revenue Region: N/A")
		assert.Contains(t, text, "Busiest Hour: N/A")
		assert.Contains(t, text, "Busiest Weekday: N/A")
		assert.Contains(t, text, "TOP CUSTOMER:\n  N/A")
	})
}
