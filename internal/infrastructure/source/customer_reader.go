package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/domain/customer"
)

// customerColumns are the columns a customers file must provide.
var customerColumns = []string{"customer_id", "customer_name", "mobile_number", "region"}

// CustomerCSVReader loads raw customer records from a headed CSV file.
type CustomerCSVReader struct {
	path   string
	logger *zap.Logger
}

// NewCustomerCSVReader creates a reader for the customers file at path
func NewCustomerCSVReader(path string, logger *zap.Logger) *CustomerCSVReader {
	return &CustomerCSVReader{
		path:   path,
		logger: logger,
	}
}

// Read parses the customers file into raw records. Rows are carried as-is;
// field-level validation happens during cleaning.
func (r *CustomerCSVReader) Read(ctx context.Context) ([]customer.RawRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open customers file: %w", err)
	}
	defer f.Close()

	records, err := r.parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("customers file %s: %w", r.path, err)
	}

	r.logger.Info("loaded customer records",
		zap.String("file", r.path),
		zap.Int("records", len(records)),
	)

	return records, nil
}

func (r *CustomerCSVReader) parse(ctx context.Context, src io.Reader) ([]customer.RawRecord, error) {
	parser, err := NewCSVParser(src)
	if err != nil {
		return nil, err
	}

	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.ValidateHeaders(customerColumns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var records []customer.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}

		records = append(records, customer.RawRecord{
			CustomerID:   row.Get("customer_id"),
			CustomerName: row.Get("customer_name"),
			MobileNumber: row.Get("mobile_number"),
			Region:       row.Get("region"),
		})
	}

	return records, nil
}
