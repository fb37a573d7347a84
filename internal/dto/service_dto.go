package dto

import "github.com/shopspring/decimal"

type CreateServiceEntryRequest struct {
	CustomerID    *string         `json:"customer_id"    validate:"omitempty,uuid"`
	CustomerName  string          `json:"customer_name"  validate:"required,min=2,max=120"`
	CustomerPhone *string         `json:"customer_phone" validate:"omitempty,min=6,max=20"`
	DeviceBrand   string          `json:"device_brand"   validate:"required,max=60"`
	DeviceModel   string          `json:"device_model"   validate:"required,max=80"`
	IMEI          *string         `json:"imei"           validate:"omitempty,min=8,max=20"`
	Complaint     string          `json:"complaint"      validate:"required,min=3"`
	Accessories   *string         `json:"accessories"`
	EstimatedCost decimal.Decimal `json:"estimated_cost" validate:"min=0"`
	TechnicianID  *string         `json:"technician_id"  validate:"omitempty,uuid"`
}

type UpdateServiceEntryRequest struct {
	Complaint     *string          `json:"complaint"      validate:"omitempty,min=3"`
	Accessories   *string          `json:"accessories"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost"`
	TechnicianID  *string          `json:"technician_id"  validate:"omitempty,uuid"`
}

type UpdateServiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=received in_progress done taken cancelled"`
}

type ServiceEntryFilter struct {
	Status string `form:"status"`
	Search string `form:"q"`
	PageQuery
}

type BillServiceRequest struct {
	ServiceFee    decimal.Decimal   `json:"service_fee"    validate:"min=0"`
	Parts         []CartItemRequest `json:"parts"          validate:"omitempty,dive"`
	Discount      decimal.Decimal   `json:"discount"       validate:"min=0"`
	Paid          decimal.Decimal   `json:"paid"           validate:"min=0"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash installment"`
	CustomerEmail *string           `json:"customer_email" validate:"omitempty,email"`
}

type ServiceEntryResponse struct {
	ID            string                      `json:"id"`
	DisplayID     string                      `json:"display_id"`
	CustomerID    *string                     `json:"customer_id"`
	CustomerName  string                      `json:"customer_name"`
	CustomerPhone *string                     `json:"customer_phone"`
	DeviceBrand   string                      `json:"device_brand"`
	DeviceModel   string                      `json:"device_model"`
	IMEI          *string                     `json:"imei"`
	Complaint     string                      `json:"complaint"`
	Accessories   *string                     `json:"accessories"`
	EstimatedCost decimal.Decimal             `json:"estimated_cost"`
	TechnicianID  *string                     `json:"technician_id"`
	Status        string                      `json:"status"`
	Transaction   *ServiceTransactionResponse `json:"transaction,omitempty"`
	CreatedAt     string                      `json:"created_at"`
}

type ServiceTransactionResponse struct {
	ID             string          `json:"id"`
	DisplayID      string          `json:"display_id"`
	ServiceEntryID string          `json:"service_entry_id"`
	ServiceFee     decimal.Decimal `json:"service_fee"`
	Parts          []LineResponse  `json:"parts"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	Cost           decimal.Decimal `json:"cost"`
	Profit         decimal.Decimal `json:"profit"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Change         decimal.Decimal `json:"change"`
	Remaining      decimal.Decimal `json:"remaining"`
	PaymentMethod  string          `json:"payment_method"`
	Revision       int             `json:"revision"`
	InstallmentID  *string         `json:"installment_id"`
	UpdatedAt      string          `json:"updated_at"`
}
