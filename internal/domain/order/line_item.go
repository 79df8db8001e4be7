package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawLineItem is one order line item exactly as loaded from a source, every
// field an uninterpreted string. One order spans many line items that all
// repeat the order's id, timestamp and total amount.
type RawLineItem struct {
	OrderID       string
	MobileNumber  string
	OrderDateTime string
	SkuID         string
	SkuCount      string
	TotalAmount   string
}

// LineItem is a cleaned, typed order line item.
//
// TotalAmount is the ORDER total repeated on every line item of that order,
// not a per-line amount: any aggregate over orders must reduce to one row per
// OrderID before summing it, or revenue is counted once per line.
type LineItem struct {
	OrderID      string          `json:"order_id"`
	MobileNumber string          `json:"mobile_number"`
	SkuID        string          `json:"sku_id"`
	SkuCount     int             `json:"sku_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`

	// OrderDateTime is nil when the source value did not parse. Such line
	// items stay in the clean set but are excluded from date-keyed aggregates.
	OrderDateTime *time.Time `json:"order_date_time"`

	// Calendar fields derived once during cleaning; zero values when
	// OrderDateTime is nil.
	Year    int    `json:"order_year"`
	Month   int    `json:"order_month"`
	Day     int    `json:"order_day"`
	Hour    int    `json:"order_hour"`
	Weekday string `json:"order_weekday"`
}

// SetOrderDateTime sets the timestamp and derives the calendar fields from
// it. A nil timestamp clears them.
func (li *LineItem) SetOrderDateTime(t *time.Time) {
	li.OrderDateTime = t
	if t == nil {
		li.Year, li.Month, li.Day, li.Hour = 0, 0, 0, 0
		li.Weekday = ""
		return
	}
	li.Year = t.Year()
	li.Month = int(t.Month())
	li.Day = t.Day()
	li.Hour = t.Hour()
	li.Weekday = t.Weekday().String()
}

// RejectReason identifies a validity predicate a line item failed
type RejectReason string

const (
	ReasonMissingSkuCount     RejectReason = "missing_sku_count"
	ReasonNonPositiveSkuCount RejectReason = "non_positive_sku_count"
	ReasonNegativeTotalAmount RejectReason = "negative_total_amount"
	ReasonMissingKeyFields    RejectReason = "missing_key_fields"
)

// RejectedLineItem is a line item that failed validation, kept for manual
// review with every reason it matched. A record matching several predicates
// appears once.
type RejectedLineItem struct {
	RawLineItem
	Reasons []RejectReason
}

// HasReason reports whether the record was rejected for the given reason.
func (r RejectedLineItem) HasReason(reason RejectReason) bool {
	for _, got := range r.Reasons {
		if got == reason {
			return true
		}
	}
	return false
}
