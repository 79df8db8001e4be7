package cleaning

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/domain/order"
)

// defaultDateLayouts mirrors the input.date_layouts config default for
// callers that pass none.
var defaultDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"02-01-2006 15:04:05",
	"2006-01-02",
}

// OrderStats summarizes one order cleaning pass. The per-reason counters may
// overlap when a record fails several predicates; ValidCount plus
// InvalidCount always equals OriginalCount.
type OrderStats struct {
	OriginalCount       int `json:"original_count"`
	ValidCount          int `json:"valid_count"`
	InvalidCount        int `json:"invalid_count"`
	MissingSkuCount     int `json:"rows_with_missing_sku_count"`
	NonPositiveSkuCount int `json:"rows_with_non_positive_sku_count"`
	NegativeAmount      int `json:"rows_with_negative_amount"`
	MissingKeyFields    int `json:"rows_with_missing_key_fields"`
	UnparseableDates    int `json:"rows_with_unparseable_dates"`
}

// OrderCleaner coerces, validates and types raw order line items, splitting
// them into a clean set and a rejected set kept for review.
type OrderCleaner struct {
	layouts []string
	logger  *zap.Logger
}

// NewOrderCleaner creates a new OrderCleaner. Date layouts are tried in
// order when parsing order_date_time; empty falls back to the defaults.
func NewOrderCleaner(layouts []string, logger *zap.Logger) *OrderCleaner {
	if len(layouts) == 0 {
		layouts = defaultDateLayouts
	}
	return &OrderCleaner{layouts: layouts, logger: logger}
}

// Clean partitions raw line items into clean and rejected sets.
//
// A record is rejected when any of four predicates matches on the coerced
// values: missing sku_count, sku_count <= 0, total_amount < 0, or a missing
// order_id/mobile_number/sku_id. A rejected record carries every reason it
// matched. Negative amounts are review candidates, never netted or zeroed.
//
// Surviving records get their timestamp parsed and calendar fields derived;
// an unparseable date keeps the record (nil timestamp) and bumps a counter.
func (c *OrderCleaner) Clean(raw []order.RawLineItem) ([]order.LineItem, []order.RejectedLineItem, OrderStats) {
	stats := OrderStats{OriginalCount: len(raw)}

	c.logger.Info("cleaning order line items", zap.Int("records", len(raw)))

	clean := make([]order.LineItem, 0, len(raw))
	rejected := make([]order.RejectedLineItem, 0)

	for _, rec := range raw {
		skuCount, skuCountOK := coerceSkuCount(rec.SkuCount)
		amount, amountOK := coerceAmount(rec.TotalAmount)

		var reasons []order.RejectReason
		if !skuCountOK {
			reasons = append(reasons, order.ReasonMissingSkuCount)
			stats.MissingSkuCount++
		}
		if skuCountOK && skuCount <= 0 {
			// Evaluated on the coerced float: 0.5 is positive here and only
			// truncates to 0 at final normalization.
			reasons = append(reasons, order.ReasonNonPositiveSkuCount)
			stats.NonPositiveSkuCount++
		}
		if amountOK && amount.IsNegative() {
			reasons = append(reasons, order.ReasonNegativeTotalAmount)
			stats.NegativeAmount++
		}
		if missing(rec.OrderID) || missing(rec.MobileNumber) || missing(rec.SkuID) {
			reasons = append(reasons, order.ReasonMissingKeyFields)
			stats.MissingKeyFields++
		}

		if len(reasons) > 0 {
			rejected = append(rejected, order.RejectedLineItem{
				RawLineItem: rec,
				Reasons:     reasons,
			})
			continue
		}

		item := order.LineItem{
			OrderID:      rec.OrderID,
			MobileNumber: strings.TrimSpace(rec.MobileNumber),
			SkuID:        rec.SkuID,
			SkuCount:     int(skuCount),
			TotalAmount:  amount,
		}

		ts, ok := c.parseDate(rec.OrderDateTime)
		if !ok {
			stats.UnparseableDates++
		}
		item.SetOrderDateTime(ts)

		clean = append(clean, item)
	}

	stats.ValidCount = len(clean)
	stats.InvalidCount = len(rejected)

	if stats.MissingSkuCount > 0 {
		c.logger.Warn("line items with missing or non-numeric sku_count",
			zap.Int("count", stats.MissingSkuCount))
	}
	if stats.NonPositiveSkuCount > 0 {
		c.logger.Warn("line items with non-positive sku_count",
			zap.Int("count", stats.NonPositiveSkuCount))
	}
	if stats.NegativeAmount > 0 {
		c.logger.Warn("line items with negative total_amount, kept for review",
			zap.Int("count", stats.NegativeAmount))
	}
	if stats.MissingKeyFields > 0 {
		c.logger.Warn("line items with missing key fields",
			zap.Int("count", stats.MissingKeyFields))
	}
	if stats.UnparseableDates > 0 {
		c.logger.Warn("line items with unparseable order_date_time, kept without a timestamp",
			zap.Int("count", stats.UnparseableDates))
	}

	c.logger.Info("order cleaning complete",
		zap.Int("original_count", stats.OriginalCount),
		zap.Int("valid_count", stats.ValidCount),
		zap.Int("invalid_count", stats.InvalidCount))

	return clean, rejected, stats
}

// parseDate tries each configured layout in order. The bool is false when no
// layout matched or the value is empty.
func (c *OrderCleaner) parseDate(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	for _, layout := range c.layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts, true
		}
	}
	return nil, false
}

// coerceSkuCount parses a count in float syntax. NaN, infinities and
// unparseable values are missing.
func coerceSkuCount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// coerceAmount parses a decimal amount. Unparseable values are missing and
// contribute zero if the record survives validation.
func coerceAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func missing(s string) bool {
	return strings.TrimSpace(s) == ""
}
