package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/salesintel/pipeline/internal/domain/order"
)

// OrderModel is the persistence model for a cleaned order line item. Rows
// are append-only under a surrogate key; order_id repeats across the line
// items of one order, so store-side aggregates deduplicate by order_id.
type OrderModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	OrderID      string `gorm:"type:varchar(50);not null;index:idx_orders_order_id"`
	MobileNumber string `gorm:"type:varchar(20);not null;index:idx_orders_mobile;index:idx_orders_mobile_date,priority:1"`

	// OrderDateTime is null for line items whose source timestamp did not
	// parse; date-keyed store queries filter those out.
	OrderDateTime *time.Time      `gorm:"index:idx_orders_date;index:idx_orders_mobile_date,priority:2"`
	SkuID         string          `gorm:"type:varchar(50);not null;index:idx_orders_sku"`
	SkuCount      int             `gorm:"not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *OrderModel) ToDomain() order.LineItem {
	li := order.LineItem{
		OrderID:      m.OrderID,
		MobileNumber: m.MobileNumber,
		SkuID:        m.SkuID,
		SkuCount:     m.SkuCount,
		TotalAmount:  m.TotalAmount,
	}
	li.SetOrderDateTime(m.OrderDateTime)
	return li
}

// FromDomain populates the persistence model from a domain LineItem.
func (m *OrderModel) FromDomain(li order.LineItem) {
	m.OrderID = li.OrderID
	m.MobileNumber = li.MobileNumber
	m.OrderDateTime = li.OrderDateTime
	m.SkuID = li.SkuID
	m.SkuCount = li.SkuCount
	m.TotalAmount = li.TotalAmount
}

// OrderModelFromDomain creates a new persistence model from a domain LineItem.
func OrderModelFromDomain(li order.LineItem) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(li)
	return m
}
