package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement kinds.
const (
	MovementSale          = "sale"
	MovementSaleVoid      = "sale_void"
	MovementServicePart   = "service_part"
	MovementServiceReturn = "service_return"
	MovementAdjustment    = "adjustment"
)

// StockMovement records every change to a product's stock.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind        string    `gorm:"not null"`
	Quantity    int       `gorm:"not null"` // positive = in, negative = out
	StockBefore int       `gorm:"not null"`
	StockAfter  int       `gorm:"not null"`
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid;index"` // sale or service transaction id
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
