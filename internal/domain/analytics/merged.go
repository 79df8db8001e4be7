package analytics

import "github.com/salesintel/pipeline/internal/domain/order"

// MergedLineItem is one clean order line item joined to its customer by mobile
// number. Matched is false when no customer carries the item's mobile number;
// the item is preserved with empty customer fields rather than dropped.
type MergedLineItem struct {
	order.LineItem
	CustomerID   string
	CustomerName string
	Region       string
	Matched      bool
}
