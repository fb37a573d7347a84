package handler

import (
	"net/http"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// StorefrontHandler serves the public website. Nothing here needs a token.
type StorefrontHandler struct {
	catalog service.StorefrontService
	content service.ContentService
	orders  service.OrderService
}

func NewStorefrontHandler(catalog service.StorefrontService, content service.ContentService, orders service.OrderService) *StorefrontHandler {
	return &StorefrontHandler{catalog: catalog, content: content, orders: orders}
}

// Products godoc
// @Summary      Public catalog
// @Description  Active products with their public price. Cached in redis.
// @Tags         storefront
// @Produce      json
// @Param        name     query string false "Name contains"
// @Param        category query string false "Category"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Page size (default 50)"
// @Success      200 {object} dto.ListResponse[dto.StoreProductResponse]
// @Router       /v1/store/products [get]
func (h *StorefrontHandler) Products(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.catalog.Products(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProductByCode godoc
// @Summary      Look up a product by code
// @Tags         storefront
// @Produce      json
// @Param        code path string true "Product code"
// @Success      200 {object} dto.StoreProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/store/products/{code} [get]
func (h *StorefrontHandler) ProductByCode(c *gin.Context) {
	resp, err := h.catalog.ProductByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorefrontHandler) News(c *gin.Context) {
	resp, err := h.content.ListNews(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorefrontHandler) NewsBySlug(c *gin.Context) {
	resp, err := h.content.NewsBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorefrontHandler) Ads(c *gin.Context) {
	resp, err := h.content.ListAds(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorefrontHandler) Settings(c *gin.Context) {
	resp, err := h.content.Settings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PlaceOrder godoc
// @Summary      Place a storefront order
// @Description  Stock is checked but not reserved. A cashier confirms the order into a sale.
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateOrderRequest true "Order"
// @Success      201  {object} dto.OrderResponse
// @Failure      409  {object} apierror.APIError "not enough stock"
// @Failure      429  {object} apierror.APIError
// @Router       /v1/store/orders [post]
func (h *StorefrontHandler) PlaceOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.orders.Place(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
