package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Storefront order statuses.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderCancelled = "cancelled"
)

// Order is placed by a visitor of the public storefront. It reserves nothing:
// stock moves only when staff confirm it into a Sale.
type Order struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DisplayID     string    `gorm:"uniqueIndex;not null"`
	CustomerName  string    `gorm:"not null"`
	CustomerPhone string    `gorm:"not null"`
	Address       *string
	Note          *string
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending'"`
	SaleID        *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}
