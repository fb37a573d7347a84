package handler

import (
	"net/http"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// OrdersHandler is the staff side of storefront orders.
type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary      Confirm an order into a sale
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Order ID"
// @Param        body body dto.ConfirmOrderRequest true "Tender"
// @Success      201  {object} dto.SaleResponse
// @Failure      409  {object} apierror.APIError "not pending or stock gone"
// @Router       /v1/orders/{id}/confirm [post]
func (h *OrdersHandler) Confirm(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ConfirmOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess, ok := session(c)
	if !ok {
		return
	}
	resp, err := h.svc.Confirm(c.Request.Context(), sess, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrdersHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sess, ok := session(c)
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), sess, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
