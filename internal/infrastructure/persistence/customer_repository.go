package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salesintel/pipeline/internal/domain/customer"
	"github.com/salesintel/pipeline/internal/infrastructure/persistence/models"
)

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB, batchSize int) *GormCustomerRepository {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &GormCustomerRepository{db: db, batchSize: batchSize}
}

// UpsertBatch writes the customers in batches inside a single transaction.
// A customer_id conflict updates name, mobile number, region and updated_at,
// so reloading a refreshed extract refreshes existing rows. The whole batch
// lands or none of it does.
func (r *GormCustomerRepository) UpsertBatch(ctx context.Context, customers []customer.Customer) error {
	if len(customers) == 0 {
		return nil
	}

	customerModels := make([]*models.CustomerModel, len(customers))
	for i, c := range customers {
		customerModels[i] = models.CustomerModelFromDomain(c)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_name",
				"mobile_number",
				"region",
				"updated_at",
			}),
		}).CreateInBatches(customerModels, r.batchSize).Error
	})
}

// Count returns the number of stored customers
func (r *GormCustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteAll removes every stored customer
func (r *GormCustomerRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.CustomerModel{}).Error
}
