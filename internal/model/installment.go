package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment statuses. "cancelled" is set when the source sale is voided.
const (
	InstallmentUnpaid    = "unpaid"
	InstallmentPaid      = "paid"
	InstallmentCancelled = "cancelled"
)

// Installment sources.
const (
	SourceSale    = "sale"
	SourceService = "service"
)

// Installment (piutang) is a customer's open balance on one transaction.
// DisplayID equals the source transaction's display id and is unique, so a
// re-billed transaction updates its installment instead of adding another.
type Installment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DisplayID  string          `gorm:"uniqueIndex;not null"`
	SourceType string          `gorm:"type:varchar(20);not null"`
	SourceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Total      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// InitialPaid is the amount tendered at checkout; Paid includes later payments.
	InitialPaid decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Paid        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Remaining   decimal.Decimal `gorm:"type:decimal(14,2);not null;check:remaining >= 0"`
	Status      string          `gorm:"type:varchar(20);not null;default:'unpaid'"`
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Payments []InstallmentPayment `gorm:"foreignKey:InstallmentID"`
	Customer *Customer            `gorm:"foreignKey:CustomerID"`
}

// InstallmentPayment is one entry of an installment's payment history.
type InstallmentPayment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InstallmentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Method          string          `gorm:"type:varchar(20);not null"`
	RemainingBefore decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	RemainingAfter  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Note            *string
	ReceivedByID    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
}
