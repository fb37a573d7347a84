package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item or a spare part used in repairs.
// Stock is guarded by a CHECK (stock >= 0) constraint; decrements go through
// ProductRepository.DecrementStockTx.
type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code          string    `gorm:"uniqueIndex;not null"`
	Name          string    `gorm:"index;not null"`
	Description   *string
	Category      string          `gorm:"not null;default:'general'"`
	BuyPrice      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ResellerPrice decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	MemberPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Stock         int             `gorm:"not null;default:0;check:stock >= 0"`
	MinStock      int             `gorm:"not null;default:1"`
	ImageURL      *string
	SupplierID    *uuid.UUID `gorm:"type:uuid;index"`
	Active        bool       `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

// ProductPriceHistory records each price change of a product. Rows are append-only.
type ProductPriceHistory struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BuyBefore   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	BuyAfter    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SaleBefore  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SaleAfter   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ChangedByID *uuid.UUID      `gorm:"type:uuid"`
	Reason      string          `gorm:"not null;default:'manual'"`
	CreatedAt   time.Time
}

func (ProductPriceHistory) TableName() string { return "product_price_history" }
