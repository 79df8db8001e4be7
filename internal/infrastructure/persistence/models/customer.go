package models

import (
	"time"

	"github.com/salesintel/pipeline/internal/domain/customer"
)

// CustomerModel is the persistence model for a cleaned customer record.
// customer_id is the natural primary key; reloading the same customer
// updates the row in place.
type CustomerModel struct {
	CustomerID   string    `gorm:"type:varchar(50);primaryKey"`
	CustomerName string    `gorm:"type:varchar(100);not null;index:idx_customers_name"`
	MobileNumber string    `gorm:"type:varchar(20);not null;index:idx_customers_mobile"`
	Region       string    `gorm:"type:varchar(50);not null;index:idx_customers_region"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *CustomerModel) ToDomain() customer.Customer {
	return customer.Customer{
		CustomerID:   m.CustomerID,
		CustomerName: m.CustomerName,
		MobileNumber: m.MobileNumber,
		Region:       m.Region,
	}
}

// FromDomain populates the persistence model from a domain Customer.
func (m *CustomerModel) FromDomain(c customer.Customer) {
	m.CustomerID = c.CustomerID
	m.CustomerName = c.CustomerName
	m.MobileNumber = c.MobileNumber
	m.Region = c.Region
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer.
func CustomerModelFromDomain(c customer.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
