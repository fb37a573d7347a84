package dto

import "github.com/shopspring/decimal"

type CreateOrderRequest struct {
	CustomerName  string            `json:"customer_name"  validate:"required,min=2,max=120"`
	CustomerPhone string            `json:"customer_phone" validate:"required,min=6,max=20"`
	Address       *string           `json:"address"        validate:"omitempty,max=255"`
	Note          *string           `json:"note"           validate:"omitempty,max=500"`
	Items         []CartItemRequest `json:"items"          validate:"required,min=1,max=50,dive"`
}

type ConfirmOrderRequest struct {
	CustomerID    *string         `json:"customer_id"    validate:"omitempty,uuid"`
	Paid          decimal.Decimal `json:"paid"           validate:"min=0"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash installment"`
}

type OrderFilter struct {
	Status string `form:"status"`
	PageQuery
}

type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	DisplayID     string              `json:"display_id"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Address       *string             `json:"address"`
	Note          *string             `json:"note"`
	Items         []OrderItemResponse `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	Status        string              `json:"status"`
	SaleID        *string             `json:"sale_id"`
	CreatedAt     string              `json:"created_at"`
}

// StoreProductResponse is the public view of a product: retail price only, no cost.
type StoreProductResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Available int             `json:"available"`
	ImageURL  *string         `json:"image_url"`
}
