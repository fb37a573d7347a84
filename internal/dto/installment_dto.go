package dto

import "github.com/shopspring/decimal"

type InstallmentFilter struct {
	Status     string `form:"status"` // unpaid | paid | cancelled | all (default unpaid)
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	PageQuery
}

type AddPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Method string          `json:"method" validate:"required,oneof=cash transfer"`
	Note   *string         `json:"note"   validate:"omitempty,max=255"`
}

type InstallmentPaymentResponse struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	RemainingBefore decimal.Decimal `json:"remaining_before"`
	RemainingAfter  decimal.Decimal `json:"remaining_after"`
	Note            *string         `json:"note"`
	ReceivedByID    string          `json:"received_by_id"`
	CreatedAt       string          `json:"created_at"`
}

type InstallmentResponse struct {
	ID           string                       `json:"id"`
	DisplayID    string                       `json:"display_id"`
	SourceType   string                       `json:"source_type"`
	SourceID     string                       `json:"source_id"`
	CustomerID   string                       `json:"customer_id"`
	CustomerName string                       `json:"customer_name"`
	Total        decimal.Decimal              `json:"total"`
	Paid         decimal.Decimal              `json:"paid"`
	Remaining    decimal.Decimal              `json:"remaining"`
	Status       string                       `json:"status"`
	Payments     []InstallmentPaymentResponse `json:"payments,omitempty"`
	CreatedAt    string                       `json:"created_at"`
}
