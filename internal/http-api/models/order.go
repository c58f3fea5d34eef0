package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses. Transitions are enforced in the order service,
// not by the database.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID         string      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string      `gorm:"not null;index" json:"user_id"`
	Status     string      `gorm:"default:'pending';not null" json:"status"`
	TotalCents int64       `gorm:"not null" json:"total_cents"`
	Currency   string      `gorm:"default:'usd';not null" json:"currency"`
	Items      []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderItem snapshots the unit price at purchase time so later product
// edits do not rewrite order history.
type OrderItem struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	OrderID        string `gorm:"not null;index" json:"order_id"`
	ProductID      string `gorm:"not null" json:"product_id"`
	ProductName    string `gorm:"not null" json:"product_name"`
	UnitPriceCents int64  `gorm:"not null" json:"unit_price_cents"`
	Quantity       int    `gorm:"not null" json:"quantity"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return
}

func (Order) TableName() string {
	return "orders"
}

func (OrderItem) TableName() string {
	return "order_items"
}
