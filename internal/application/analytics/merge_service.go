package analytics

import (
	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/domain/analytics"
	"github.com/salesintel/pipeline/internal/domain/customer"
	"github.com/salesintel/pipeline/internal/domain/order"
)

// MergeService joins clean order line items to clean customers
type MergeService struct {
	logger *zap.Logger
}

// NewMergeService creates a new MergeService
func NewMergeService(logger *zap.Logger) *MergeService {
	return &MergeService{logger: logger}
}

// Merge left-joins line items onto customers by mobile number. Every line
// item survives: items whose mobile number matches no customer come back
// with Matched false and empty customer fields. The second return is the
// unmatched count.
//
// Cleaning guarantees customer ids are unique; should two customers still
// share a mobile number, the first one wins.
func (s *MergeService) Merge(customers []customer.Customer, items []order.LineItem) ([]analytics.MergedLineItem, int) {
	byMobile := make(map[string]customer.Customer, len(customers))
	for _, c := range customers {
		if _, ok := byMobile[c.MobileNumber]; !ok {
			byMobile[c.MobileNumber] = c
		}
	}

	merged := make([]analytics.MergedLineItem, 0, len(items))
	unmatched := 0

	for _, item := range items {
		row := analytics.MergedLineItem{LineItem: item}
		if c, ok := byMobile[item.MobileNumber]; ok {
			row.CustomerID = c.CustomerID
			row.CustomerName = c.CustomerName
			row.Region = c.Region
			row.Matched = true
		} else {
			unmatched++
		}
		merged = append(merged, row)
	}

	if unmatched > 0 {
		s.logger.Warn("line items without a matching customer",
			zap.Int("count", unmatched))
	}

	s.logger.Info("merged customers and order line items",
		zap.Int("customers", len(customers)),
		zap.Int("line_items", len(items)),
		zap.Int("unmatched", unmatched))

	return merged, unmatched
}
