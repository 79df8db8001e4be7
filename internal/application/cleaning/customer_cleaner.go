package cleaning

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/salesintel/pipeline/internal/domain/customer"
)

// CustomerStats summarizes one customer cleaning pass
type CustomerStats struct {
	OriginalCount     int `json:"original_count"`
	FinalCount        int `json:"final_count"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	RowsDropped       int `json:"rows_dropped"`
}

// CustomerCleaner deduplicates, validates and normalizes raw customer records
type CustomerCleaner struct {
	titler cases.Caser
	logger *zap.Logger
}

// NewCustomerCleaner creates a new CustomerCleaner
func NewCustomerCleaner(logger *zap.Logger) *CustomerCleaner {
	return &CustomerCleaner{
		titler: cases.Title(language.English),
		logger: logger,
	}
}

// Clean produces the clean customer set from raw records:
//  1. drop duplicate customer_id keeping first-seen
//  2. drop records missing customer_id or mobile_number
//  3. fill missing customer_name/region with "Unknown"
//  4. trim mobile_number, trim and title-case region
//
// RowsDropped counts every record that did not survive, duplicates included.
func (c *CustomerCleaner) Clean(raw []customer.RawRecord) ([]customer.Customer, CustomerStats) {
	stats := CustomerStats{OriginalCount: len(raw)}

	c.logger.Info("cleaning customers", zap.Int("records", len(raw)))

	seen := make(map[string]struct{}, len(raw))
	clean := make([]customer.Customer, 0, len(raw))

	for _, rec := range raw {
		id := strings.TrimSpace(rec.CustomerID)
		mobile := strings.TrimSpace(rec.MobileNumber)

		// Records without an id cannot be duplicates of each other; they
		// fall through to the missing-field drop.
		if id != "" {
			if _, dup := seen[id]; dup {
				stats.DuplicatesRemoved++
				continue
			}
			seen[id] = struct{}{}
		}

		if id == "" || mobile == "" {
			continue
		}

		name := strings.TrimSpace(rec.CustomerName)
		if name == "" {
			name = "Unknown"
		}
		region := strings.TrimSpace(rec.Region)
		if region == "" {
			region = "Unknown"
		}

		clean = append(clean, customer.Customer{
			CustomerID:   id,
			CustomerName: name,
			MobileNumber: mobile,
			Region:       c.titler.String(region),
		})
	}

	stats.FinalCount = len(clean)
	stats.RowsDropped = stats.OriginalCount - stats.FinalCount

	c.logger.Info("customer cleaning complete",
		zap.Int("original_count", stats.OriginalCount),
		zap.Int("final_count", stats.FinalCount),
		zap.Int("duplicates_removed", stats.DuplicatesRemoved),
		zap.Int("rows_dropped", stats.RowsDropped))

	return clean, stats
}
