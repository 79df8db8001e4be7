package customer

import "context"

// Repository defines the persistence interface for cleaned customers
type Repository interface {
	// UpsertBatch saves customers keyed by customer_id: new IDs are inserted,
	// existing IDs have their name, mobile number, region and update timestamp
	// overwritten. The whole batch commits or rolls back together.
	UpsertBatch(ctx context.Context, customers []Customer) error

	// Count returns the number of stored customers
	Count(ctx context.Context) (int64, error)

	// DeleteAll removes every stored customer
	DeleteAll(ctx context.Context) error
}
