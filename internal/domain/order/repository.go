package order

import "context"

// Repository defines the persistence interface for cleaned order line items
type Repository interface {
	// InsertBatch appends line items. The whole batch commits or rolls back
	// together; there is no upsert since line items have no natural key.
	InsertBatch(ctx context.Context, items []LineItem) error

	// Count returns the number of stored line items
	Count(ctx context.Context) (int64, error)

	// DeleteAll removes every stored line item
	DeleteAll(ctx context.Context) error
}
