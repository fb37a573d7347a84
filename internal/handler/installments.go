package handler

import (
	"net/http"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type InstallmentsHandler struct{ svc service.InstallmentService }

func NewInstallmentsHandler(svc service.InstallmentService) *InstallmentsHandler {
	return &InstallmentsHandler{svc: svc}
}

// List godoc
// @Summary      List installments
// @Tags         installments
// @Produce      json
// @Security     BearerAuth
// @Param        status      query string false "unpaid | paid | cancelled | all (default unpaid)"
// @Param        customer_id query string false "Customer ID"
// @Success      200 {object} dto.ListResponse[dto.InstallmentResponse]
// @Router       /v1/installments [get]
func (h *InstallmentsHandler) List(c *gin.Context) {
	var filter dto.InstallmentFilter
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

func (h *InstallmentsHandler) Get(c *gin.Context) {
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

// AddPayment godoc
// @Summary      Record an installment payment
// @Tags         installments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Installment ID"
// @Param        body body dto.AddPaymentRequest true "Payment"
// @Success      200  {object} dto.InstallmentResponse
// @Failure      422  {object} apierror.APIError "amount <= 0 or above remaining"
// @Router       /v1/installments/{id}/payments [post]
func (h *InstallmentsHandler) AddPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AddPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess, ok := session(c)
	if !ok {
		return
	}
	resp, err := h.svc.AddPayment(c.Request.Context(), sess, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
