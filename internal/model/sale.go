package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the header of a retail transaction.
// Status: "completed" | "voided". PaymentMethod: "cash" | "installment".
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DisplayID     string          `gorm:"uniqueIndex;not null"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	OperatorID    uuid.UUID       `gorm:"type:uuid;not null"`
	Tier          string          `gorm:"type:varchar(20);not null;default:'retail'"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Cost          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Profit        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Change        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Remaining     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'completed'"`
	Note          *string
	OrderID       *uuid.UUID `gorm:"type:uuid;index"` // set when confirmed from a storefront order
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items    []SaleItem `gorm:"foreignKey:SaleID"`
	Customer *Customer  `gorm:"foreignKey:CustomerID"`
	Operator *User      `gorm:"foreignKey:OperatorID"`
}

// SaleItem snapshots product prices at the time of sale.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"not null"`
	Quantity  int             `gorm:"not null"`
	BuyPrice  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SalePrice decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}
