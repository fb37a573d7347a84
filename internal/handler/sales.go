package handler

import (
	"net/http"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Preview godoc
// @Summary      Price a cart
// @Description  Applies tier pricing, discount and tender without writing anything.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.PreviewRequest true "Cart"
// @Success      200  {object} dto.PreviewResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/sales/preview [post]
func (h *SalesHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Preview(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Checkout godoc
// @Summary      Record a sale
// @Description  One transaction: header, items, conditional stock decrements, movements and the installment for any balance. The receipt is rendered asynchronously.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CheckoutRequest true "Sale"
// @Success      201  {object} dto.SaleResponse
// @Failure      409  {object} apierror.APIError "stock taken by a concurrent sale"
// @Failure      422  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess, ok := session(c)
	if !ok {
		return
	}
	resp, err := h.svc.Checkout(c.Request.Context(), sess, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Void godoc
// @Summary      Void a sale
// @Description  Restores stock and cancels the installment. Rejected once the installment has payments.
// @Tags         sales
// @Accept       json
// @Security     BearerAuth
// @Param        id   path     string              true "Sale ID"
// @Param        body body     dto.VoidSaleRequest true "Reason"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) Void(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.VoidSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess, ok := session(c)
	if !ok {
		return
	}
	if err := h.svc.Void(c.Request.Context(), sess, id, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        from        query string false "YYYY-MM-DD (default today)"
// @Param        to          query string false "YYYY-MM-DD (default from)"
// @Param        status      query string false "completed | voided | all"
// @Param        customer_id query string false "Customer ID"
// @Success      200 {object} dto.ListResponse[dto.SaleResponse]
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
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

func (h *SalesHandler) Get(c *gin.Context) {
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
