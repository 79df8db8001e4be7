package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/salesintel/pipeline/internal/domain/order"
	"github.com/salesintel/pipeline/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB, batchSize int) *GormOrderRepository {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &GormOrderRepository{db: db, batchSize: batchSize}
}

// InsertBatch appends the line items in batches inside a single transaction.
// Rows are append-only under a surrogate key; the whole batch lands or none
// of it does.
func (r *GormOrderRepository) InsertBatch(ctx context.Context, items []order.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	orderModels := make([]*models.OrderModel, len(items))
	for i, li := range items {
		orderModels[i] = models.OrderModelFromDomain(li)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(orderModels, r.batchSize).Error
	})
}

// Count returns the number of stored order line items
func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteAll removes every stored order line item
func (r *GormOrderRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.OrderModel{}).Error
}
