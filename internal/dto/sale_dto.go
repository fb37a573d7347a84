package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from query string of GET /v1/sales.
type SaleFilter struct {
	From       string `form:"from"`                     // YYYY-MM-DD; empty = today
	To         string `form:"to"`                       // YYYY-MM-DD; empty = From
	Status     string `form:"status,default=completed"` // completed | voided | all
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	PageQuery
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type CheckoutRequest struct {
	CustomerID    *string           `json:"customer_id"    validate:"omitempty,uuid"`
	Tier          string            `json:"tier"           validate:"omitempty,oneof=retail reseller member"`
	Items         []CartItemRequest `json:"items"          validate:"required,min=1,dive"`
	Discount      decimal.Decimal   `json:"discount"       validate:"min=0"`
	Paid          decimal.Decimal   `json:"paid"           validate:"min=0"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash installment"`
	Note          *string           `json:"note"           validate:"omitempty,max=500"`
	// CustomerEmail: optional, when present the receipt worker mails the PDF.
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
}

// PreviewRequest prices a cart without writing anything.
type PreviewRequest struct {
	CustomerID *string           `json:"customer_id" validate:"omitempty,uuid"`
	Tier       string            `json:"tier"        validate:"omitempty,oneof=retail reseller member"`
	Items      []CartItemRequest `json:"items"       validate:"required,min=1,dive"`
	Discount   decimal.Decimal   `json:"discount"    validate:"min=0"`
	Paid       decimal.Decimal   `json:"paid"        validate:"min=0"`
}

type VoidSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type PreviewResponse struct {
	Tier      string          `json:"tier"`
	Lines     []LineResponse  `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
	Change    decimal.Decimal `json:"change"`
	Remaining decimal.Decimal `json:"remaining"`
}

type SaleResponse struct {
	ID            string          `json:"id"`
	DisplayID     string          `json:"display_id"`
	CustomerID    *string         `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	OperatorID    string          `json:"operator_id"`
	Tier          string          `json:"tier"`
	Items         []LineResponse  `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Cost          decimal.Decimal `json:"cost"`
	Profit        decimal.Decimal `json:"profit"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Change        decimal.Decimal `json:"change"`
	Remaining     decimal.Decimal `json:"remaining"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	InstallmentID *string         `json:"installment_id"`
	CreatedAt     string          `json:"created_at"`
}
