package service

import (
	"context"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/middleware"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/realtime"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService defines the business logic contract for the catalog.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ListResponse[dto.ProductResponse], error)
	Update(ctx context.Context, sess middleware.Session, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	AdjustStock(ctx context.Context, sess middleware.Session, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	LowStock(ctx context.Context) ([]dto.LowStockAlert, error)
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.ListResponse[dto.StockMovementResponse], error)
	ListPriceHistory(ctx context.Context, id uuid.UUID, page dto.PageQuery) (*dto.ListResponse[dto.PriceHistoryResponse], error)
}

type productService struct {
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	movements repository.StockMovementRepository
	ledger    stockLedger
	pub       realtime.Publisher
	catalog   CatalogCache
}

func NewProductService(
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	movements repository.StockMovementRepository,
	pub realtime.Publisher,
	catalog CatalogCache,
) ProductService {
	return &productService{
		products:  products,
		suppliers: suppliers,
		movements: movements,
		ledger:    stockLedger{products: products, movements: movements},
		pub:       pub,
		catalog:   catalog,
	}
}

func (s *productService) changed(ctx context.Context, action string, id uuid.UUID) {
	invalidateCatalog(ctx, s.catalog)
	realtime.Notify(ctx, s.pub, realtime.Changed("products", action, id.String()))
}

func (s *productService) supplierID(ctx context.Context, raw *string) (*uuid.UUID, error) {
	id, err := parseOptionalID(raw, "supplier_id")
	if err != nil || id == nil {
		return id, err
	}
	if _, err := s.suppliers.FindByID(ctx, *id); err != nil {
		return nil, err
	}
	return id, nil
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	supplierID, err := s.supplierID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	category := req.Category
	if category == "" {
		category = "general"
	}
	p := &model.Product{
		ID:            uuid.New(),
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		Category:      category,
		BuyPrice:      req.BuyPrice,
		SalePrice:     req.SalePrice,
		ResellerPrice: req.ResellerPrice,
		MemberPrice:   req.MemberPrice,
		Stock:         req.Stock,
		MinStock:      req.MinStock,
		ImageURL:      req.ImageURL,
		SupplierID:    supplierID,
		Active:        true,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.changed(ctx, realtime.ActionInsert, p.ID)
	return toProductResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ListResponse[dto.ProductResponse], error) {
	filter.Normalize()
	rows, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toProductResponse(&rows[i]))
	}
	return &dto.ListResponse[dto.ProductResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Update saves descriptive fields, then applies a price change (if any) in
// its own transaction together with the price history row.
func (s *productService) Update(ctx context.Context, sess middleware.Session, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	prices := []*decimal.Decimal{req.BuyPrice, req.SalePrice, req.ResellerPrice, req.MemberPrice}
	for _, v := range prices {
		if v != nil && v.IsNegative() {
			return nil, apierror.Validation("prices cannot be negative")
		}
	}
	if req.SalePrice != nil && !req.SalePrice.IsPositive() {
		return nil, apierror.Validation("sale_price must be greater than zero")
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}
	if req.SupplierID != nil {
		if p.SupplierID, err = s.supplierID(ctx, req.SupplierID); err != nil {
			return nil, err
		}
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}

	if req.BuyPrice != nil || req.SalePrice != nil || req.ResellerPrice != nil || req.MemberPrice != nil {
		err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
			locked, err := s.products.FindForUpdateTx(tx, id)
			if err != nil {
				return err
			}
			before := *locked
			if req.BuyPrice != nil {
				locked.BuyPrice = *req.BuyPrice
			}
			if req.SalePrice != nil {
				locked.SalePrice = *req.SalePrice
			}
			if req.ResellerPrice != nil {
				locked.ResellerPrice = *req.ResellerPrice
			}
			if req.MemberPrice != nil {
				locked.MemberPrice = *req.MemberPrice
			}
			if err := s.products.UpdatePricesTx(tx, locked); err != nil {
				return err
			}
			p.BuyPrice, p.SalePrice = locked.BuyPrice, locked.SalePrice
			p.ResellerPrice, p.MemberPrice = locked.ResellerPrice, locked.MemberPrice
			p.Stock = locked.Stock

			if before.BuyPrice.Equal(locked.BuyPrice) && before.SalePrice.Equal(locked.SalePrice) {
				return nil
			}
			operator := sess.UserID
			return s.products.CreatePriceHistoryTx(tx, &model.ProductPriceHistory{
				ID:          uuid.New(),
				ProductID:   id,
				BuyBefore:   before.BuyPrice,
				BuyAfter:    locked.BuyPrice,
				SaleBefore:  before.SalePrice,
				SaleAfter:   locked.SalePrice,
				ChangedByID: &operator,
				Reason:      "manual",
				CreatedAt:   time.Now(),
			})
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("product", p.Code).Str("sale_price", p.SalePrice.StringFixed(2)).Msg("product prices updated")
	}

	s.changed(ctx, realtime.ActionUpdate, p.ID)
	return toProductResponse(p), nil
}

func (s *productService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.products.SetActive(ctx, id, active); err != nil {
		return err
	}
	action := realtime.ActionUpdate
	if !active {
		action = realtime.ActionDelete
	}
	s.changed(ctx, action, id)
	return nil
}

// AdjustStock applies a manual correction. A negative delta goes through the
// same conditional decrement as a sale, so it cannot drive stock below zero.
func (s *productService) AdjustStock(ctx context.Context, sess middleware.Session, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	if req.Delta == 0 {
		return nil, apierror.Validation("delta must not be zero")
	}
	reason := req.Reason + " (" + sess.Username + ")"
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if req.Delta < 0 {
			return s.ledger.take(tx, id, -req.Delta, model.MovementAdjustment, reason, nil)
		}
		return s.ledger.put(tx, id, req.Delta, model.MovementAdjustment, reason, nil)
	})
	if err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Info().Str("product", p.Code).Int("delta", req.Delta).Int("stock", p.Stock).Msg("stock adjusted")
	s.changed(ctx, realtime.ActionUpdate, id)
	return toProductResponse(p), nil
}

func (s *productService) LowStock(ctx context.Context) ([]dto.LowStockAlert, error) {
	rows, err := s.products.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockAlert, 0, len(rows))
	for _, p := range rows {
		out = append(out, dto.LowStockAlert{ProductID: p.ID.String(), Name: p.Name, Stock: p.Stock, MinStock: p.MinStock})
	}
	return out, nil
}

func (s *productService) ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.ListResponse[dto.StockMovementResponse], error) {
	filter.Normalize()
	rows, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(rows))
	for _, m := range rows {
		r := dto.StockMovementResponse{
			ID:          m.ID.String(),
			ProductID:   m.ProductID.String(),
			Kind:        m.Kind,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		}
		if m.Product != nil {
			r.ProductName = m.Product.Name
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			r.ReferenceID = &ref
		}
		out = append(out, r)
	}
	return &dto.ListResponse[dto.StockMovementResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) ListPriceHistory(ctx context.Context, id uuid.UUID, page dto.PageQuery) (*dto.ListResponse[dto.PriceHistoryResponse], error) {
	page.Normalize()
	rows, total, err := s.products.ListPriceHistory(ctx, id, page.Page, page.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceHistoryResponse, 0, len(rows))
	for _, h := range rows {
		out = append(out, dto.PriceHistoryResponse{
			ID:         h.ID.String(),
			BuyBefore:  h.BuyBefore,
			BuyAfter:   h.BuyAfter,
			SaleBefore: h.SaleBefore,
			SaleAfter:  h.SaleAfter,
			Reason:     h.Reason,
			CreatedAt:  h.CreatedAt.Format(time.RFC3339),
		})
	}
	return &dto.ListResponse[dto.PriceHistoryResponse]{Data: out, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

func toProductResponse(p *model.Product) *dto.ProductResponse {
	r := &dto.ProductResponse{
		ID:            p.ID.String(),
		Code:          p.Code,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		BuyPrice:      p.BuyPrice,
		SalePrice:     p.SalePrice,
		ResellerPrice: p.ResellerPrice,
		MemberPrice:   p.MemberPrice,
		Stock:         p.Stock,
		MinStock:      p.MinStock,
		ImageURL:      p.ImageURL,
		Active:        p.Active,
	}
	if p.SupplierID != nil {
		id := p.SupplierID.String()
		r.SupplierID = &id
	}
	return r
}
