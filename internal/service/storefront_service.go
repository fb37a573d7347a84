package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

// CatalogCache is satisfied by *infra.Cache.
type CatalogCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Flush(ctx context.Context) error
}

// invalidateCatalog drops every cached storefront page. A failure only
// means visitors see stale data until the TTL runs out.
func invalidateCatalog(ctx context.Context, c CatalogCache) {
	if c == nil {
		return
	}
	if err := c.Flush(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog cache flush failed")
	}
}

// StorefrontService serves the public catalog.
type StorefrontService interface {
	Products(ctx context.Context, filter dto.ProductFilter) (*dto.ListResponse[dto.StoreProductResponse], error)
	ProductByCode(ctx context.Context, code string) (*dto.StoreProductResponse, error)
}

type storefrontService struct {
	products repository.ProductRepository
	cache    CatalogCache
	ttl      time.Duration
}

func NewStorefrontService(products repository.ProductRepository, cache CatalogCache, ttl time.Duration) StorefrontService {
	return &storefrontService{products: products, cache: cache, ttl: ttl}
}

// cached returns the value stored under key or computes, stores and returns
// it. Cache errors fall through to the database.
func cached[T any](ctx context.Context, c CatalogCache, ttl time.Duration, key string, load func() (T, error)) (T, error) {
	var v T
	if c != nil {
		raw, ok, err := c.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		if ok && json.Unmarshal(raw, &v) == nil {
			return v, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if c != nil {
		if raw, err := json.Marshal(v); err == nil {
			if err := c.Set(ctx, key, raw, ttl); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
			}
		}
	}
	return v, nil
}

func (s *storefrontService) Products(ctx context.Context, filter dto.ProductFilter) (*dto.ListResponse[dto.StoreProductResponse], error) {
	filter.Normalize()
	// only active products are ever public
	filter.Active = ""
	filter.Code = ""
	filter.SupplierID = ""
	filter.LowStock = false

	key := fmt.Sprintf("products:%s:%s:%d:%d", filter.Category, filter.Name, filter.Page, filter.Limit)
	return cached(ctx, s.cache, s.ttl, key, func() (*dto.ListResponse[dto.StoreProductResponse], error) {
		rows, total, err := s.products.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		out := make([]dto.StoreProductResponse, 0, len(rows))
		for i := range rows {
			out = append(out, toStoreProduct(&rows[i]))
		}
		return &dto.ListResponse[dto.StoreProductResponse]{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
	})
}

func (s *storefrontService) ProductByCode(ctx context.Context, code string) (*dto.StoreProductResponse, error) {
	return cached(ctx, s.cache, s.ttl, "product:"+code, func() (*dto.StoreProductResponse, error) {
		p, err := s.products.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		r := toStoreProduct(p)
		return &r, nil
	})
}

func toStoreProduct(p *model.Product) dto.StoreProductResponse {
	return dto.StoreProductResponse{
		ID:        p.ID.String(),
		Code:      p.Code,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.SalePrice,
		Available: p.Stock,
		ImageURL:  p.ImageURL,
	}
}
