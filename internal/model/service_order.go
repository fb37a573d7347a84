package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service entry statuses.
const (
	ServiceReceived   = "received"
	ServiceInProgress = "in_progress"
	ServiceDone       = "done"
	ServiceTaken      = "taken"
	ServiceCancelled  = "cancelled"
)

// ServiceEntry is a repair work order taken at the counter.
type ServiceEntry struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DisplayID     string     `gorm:"uniqueIndex;not null"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName  string     `gorm:"not null"`
	CustomerPhone *string
	DeviceBrand   string `gorm:"not null"`
	DeviceModel   string `gorm:"not null"`
	IMEI          *string
	Complaint     string `gorm:"not null"`
	Accessories   *string
	EstimatedCost decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TechnicianID  *uuid.UUID      `gorm:"type:uuid;index"`
	Status        string          `gorm:"type:varchar(20);not null;default:'received'"`
	ReceivedByID  uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Transaction *ServiceTransaction `gorm:"foreignKey:ServiceEntryID"`
}

// ServiceTransaction is the bill of a service entry. At most one per entry;
// re-billing revises it in place and bumps Revision.
type ServiceTransaction struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DisplayID      string          `gorm:"uniqueIndex;not null"`
	ServiceEntryID uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index"`
	OperatorID     uuid.UUID       `gorm:"type:uuid;not null"`
	ServiceFee     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Cost           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Profit         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Change         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Remaining      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	PaymentMethod  string          `gorm:"type:varchar(20);not null"`
	Revision       int             `gorm:"not null;default:1"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Parts []ServicePart `gorm:"foreignKey:ServiceTransactionID"`
	Entry *ServiceEntry `gorm:"foreignKey:ServiceEntryID"`
}

// ServicePart is a spare part consumed by a repair.
type ServicePart struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ServiceTransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID            uuid.UUID       `gorm:"type:uuid;not null"`
	Name                 string          `gorm:"not null"`
	Quantity             int             `gorm:"not null"`
	BuyPrice             decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SalePrice            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Subtotal             decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}
