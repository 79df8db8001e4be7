package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/salesintel/pipeline/internal/domain/order"
)

// orderElement mirrors one <order> element of the orders file. Pointer
// fields distinguish an absent child element from one that is present but
// empty.
type orderElement struct {
	OrderID       *string `xml:"order_id"`
	MobileNumber  *string `xml:"mobile_number"`
	SkuID         *string `xml:"sku_id"`
	SkuCount      *string `xml:"sku_count"`
	TotalAmount   *string `xml:"total_amount"`
	OrderDateTime *string `xml:"order_date_time"`
}

// toRawLineItem converts the element to a raw line item and reports which
// required child elements were absent. Absent elements map to empty strings
// so the caller can still inspect the partial record.
func (el *orderElement) toRawLineItem() (order.RawLineItem, []string) {
	var missing []string
	deref := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return *v
	}

	item := order.RawLineItem{
		OrderID:       deref("order_id", el.OrderID),
		MobileNumber:  deref("mobile_number", el.MobileNumber),
		SkuID:         deref("sku_id", el.SkuID),
		SkuCount:      deref("sku_count", el.SkuCount),
		TotalAmount:   deref("total_amount", el.TotalAmount),
		OrderDateTime: deref("order_date_time", el.OrderDateTime),
	}

	return item, missing
}

// OrderXMLReader loads raw order line items from an XML file shaped as a
// flat list of <order> elements under a single root.
type OrderXMLReader struct {
	path      string
	maxErrors int
	logger    *zap.Logger
}

// NewOrderXMLReader creates a reader for the orders file at path. maxErrors
// caps how many skipped-record details are retained and logged.
func NewOrderXMLReader(path string, maxErrors int, logger *zap.Logger) *OrderXMLReader {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &OrderXMLReader{
		path:      path,
		maxErrors: maxErrors,
		logger:    logger,
	}
}

// Read parses the orders file into raw line items. Records missing any
// required child element are skipped and counted; values are carried as
// strings and coerced during cleaning. A syntax error anywhere in the
// document aborts the read.
func (r *OrderXMLReader) Read(ctx context.Context) ([]order.RawLineItem, int, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, 0, fmt.Errorf("open orders file: %w", err)
	}
	defer f.Close()

	items, skipped, err := r.parse(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("orders file %s: %w", r.path, err)
	}

	r.logger.Info("loaded order line items",
		zap.String("file", r.path),
		zap.Int("records", len(items)),
		zap.Int("unique_orders", countUniqueOrders(items)),
		zap.Int("skipped", skipped),
	)

	return items, skipped, nil
}

func (r *OrderXMLReader) parse(ctx context.Context, src io.Reader) ([]order.RawLineItem, int, error) {
	dec := xml.NewDecoder(src)

	var (
		items   []order.RawLineItem
		skipped int
		index   int
		depth   int
		sawRoot bool
	)
	errs := NewErrorCollection(r.maxErrors)

	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("malformed XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			// Only direct children of the root count as records.
			if depth == 1 && t.Name.Local == "order" {
				index++
				var el orderElement
				if err := dec.DecodeElement(&el, &t); err != nil {
					return nil, 0, fmt.Errorf("malformed XML at record %d: %w", index, err)
				}

				item, missing := el.toRawLineItem()
				if len(missing) > 0 {
					skipped++
					errs.AddMissingElements(index, missing...)
					if skipped <= r.maxErrors {
						r.logger.Warn("skipping malformed order record",
							zap.Int("record", index),
							zap.Strings("missing", missing),
						)
					}
					continue
				}

				items = append(items, item)
				continue
			}
			depth++
			sawRoot = true
		case xml.EndElement:
			depth--
		}
	}

	if !sawRoot {
		return nil, 0, ErrEmptyFile
	}

	if errs.IsTruncated() {
		r.logger.Warn("skipped-record details truncated",
			zap.Int("skipped", skipped),
			zap.Int("reported", errs.Count()),
		)
	}

	return items, skipped, nil
}

// countUniqueOrders returns the number of distinct non-empty order IDs.
func countUniqueOrders(items []order.RawLineItem) int {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.OrderID == "" {
			continue
		}
		seen[it.OrderID] = struct{}{}
	}
	return len(seen)
}
