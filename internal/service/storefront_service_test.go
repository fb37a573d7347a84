package service

import (
	"context"
	"testing"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProducts counts list calls that reach the repository.
type countingProducts struct {
	*stubProductRepo
	lists int
}

func (r *countingProducts) List(ctx context.Context, f dto.ProductFilter) ([]model.Product, int64, error) {
	r.lists++
	return r.stubProductRepo.List(ctx, f)
}

func TestStorefront_ServesFromCache(t *testing.T) {
	products := &countingProducts{stubProductRepo: newStubProductRepo()}
	products.add("CSE-01", "Silicone case", 15000, 35000, 4)
	cache := newStubCache()
	svc := NewStorefrontService(products, cache, 0)
	ctx := context.Background()

	first, err := svc.Products(ctx, dto.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, first.Data, 1)
	assert.True(t, first.Data[0].Price.Equal(d(35000)))

	second, err := svc.Products(ctx, dto.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, 1, products.lists)

	// a stock change flushes the catalog
	invalidateCatalog(ctx, cache)
	_, err = svc.Products(ctx, dto.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, products.lists)
}

func TestStorefront_PrivateFiltersIgnored(t *testing.T) {
	products := &countingProducts{stubProductRepo: newStubProductRepo()}
	p := products.add("CSE-01", "Silicone case", 15000, 35000, 4)
	p.Active = false
	svc := NewStorefrontService(products, nil, 0)

	res, err := svc.Products(context.Background(), dto.ProductFilter{Active: "all"})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
}
