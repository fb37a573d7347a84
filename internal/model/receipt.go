package model

import (
	"time"

	"github.com/google/uuid"
)

// Receipt statuses.
const (
	ReceiptPending   = "pending"
	ReceiptGenerated = "generated"
	ReceiptSent      = "sent"
	ReceiptError     = "error"
)

// Receipt tracks the rendered PDF of a sale or service bill and its delivery.
// Status: "pending" | "generated" | "sent" | "error"
type Receipt struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SourceType string    `gorm:"type:varchar(20);not null"`
	SourceID   uuid.UUID `gorm:"type:uuid;not null;index"`
	DisplayID  string    `gorm:"not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'"`
	// PDFPath is relative to RECEIPT_STORAGE_PATH
	PDFPath *string
	Email   *string
	// Retry fields, used by the retry cron to re-attempt failed email delivery
	RetryCount  int `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
