package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Code          string          `json:"code"           validate:"required,min=3,max=40"`
	Name          string          `json:"name"           validate:"required,min=2,max=120"`
	Description   *string         `json:"description"`
	Category      string          `json:"category"       validate:"omitempty,max=60"`
	BuyPrice      decimal.Decimal `json:"buy_price"      validate:"min=0"`
	SalePrice     decimal.Decimal `json:"sale_price"     validate:"required,gt=0"`
	ResellerPrice decimal.Decimal `json:"reseller_price" validate:"min=0"`
	MemberPrice   decimal.Decimal `json:"member_price"   validate:"min=0"`
	Stock         int             `json:"stock"          validate:"min=0"`
	MinStock      int             `json:"min_stock"      validate:"min=0"`
	ImageURL      *string         `json:"image_url"      validate:"omitempty,url"`
	SupplierID    *string         `json:"supplier_id"    validate:"omitempty,uuid"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"           validate:"omitempty,min=2,max=120"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"       validate:"omitempty,max=60"`
	BuyPrice      *decimal.Decimal `json:"buy_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	ResellerPrice *decimal.Decimal `json:"reseller_price"`
	MemberPrice   *decimal.Decimal `json:"member_price"`
	MinStock      *int             `json:"min_stock"      validate:"omitempty,min=0"`
	ImageURL      *string          `json:"image_url"      validate:"omitempty,url"`
	SupplierID    *string          `json:"supplier_id"    validate:"omitempty,uuid"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Code       string `form:"code"`
	Name       string `form:"name"`
	Category   string `form:"category"`
	SupplierID string `form:"supplier_id"`
	Active     string `form:"active"` // "false" | "all" | default active only
	LowStock   bool   `form:"low_stock"`
	PageQuery
}

type StockMovementFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Kind      string `form:"kind"`
	PageQuery
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Category      string          `json:"category"`
	BuyPrice      decimal.Decimal `json:"buy_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	ResellerPrice decimal.Decimal `json:"reseller_price"`
	MemberPrice   decimal.Decimal `json:"member_price"`
	Stock         int             `json:"stock"`
	MinStock      int             `json:"min_stock"`
	ImageURL      *string         `json:"image_url"`
	SupplierID    *string         `json:"supplier_id"`
	Active        bool            `json:"active"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Kind        string  `json:"kind"`
	Quantity    int     `json:"quantity"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Reason      string  `json:"reason"`
	ReferenceID *string `json:"reference_id"`
	CreatedAt   string  `json:"created_at"`
}

type PriceHistoryResponse struct {
	ID         string          `json:"id"`
	BuyBefore  decimal.Decimal `json:"buy_before"`
	BuyAfter   decimal.Decimal `json:"buy_after"`
	SaleBefore decimal.Decimal `json:"sale_before"`
	SaleAfter  decimal.Decimal `json:"sale_after"`
	Reason     string          `json:"reason"`
	CreatedAt  string          `json:"created_at"`
}

type LowStockAlert struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
}
