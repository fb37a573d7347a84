package handler

import (
	"net/http"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ServicesHandler serves repair work orders.
type ServicesHandler struct{ svc service.ServiceOrderService }

func NewServicesHandler(svc service.ServiceOrderService) *ServicesHandler {
	return &ServicesHandler{svc: svc}
}

// Create godoc
// @Summary      Receive a device for repair
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateServiceEntryRequest true "Intake"
// @Success      201  {object} dto.ServiceEntryResponse
// @Router       /v1/services [post]
func (h *ServicesHandler) Create(c *gin.Context) {
	var req dto.CreateServiceEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess, ok := session(c)
	if !ok {
		return
	}
	resp, err := h.svc.CreateEntry(c.Request.Context(), sess, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ServicesHandler) List(c *gin.Context) {
	var filter dto.ServiceEntryFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListEntries(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServicesHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetEntry(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServicesHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateServiceEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateEntry(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary      Move a work order through its workflow
// @Description  received → in_progress → done → taken; cancelled from any state before taken.
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Service entry ID"
// @Param        body body dto.UpdateServiceStatusRequest true "Next status"
// @Success      200  {object} dto.ServiceEntryResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/services/{id}/status [patch]
func (h *ServicesHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateServiceStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess, ok := session(c)
	if !ok {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), sess, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Bill godoc
// @Summary      Bill or revise a repair
// @Description  The first call writes the service transaction. Later calls revise it in place: old parts return to stock, the new parts are taken and the installment is refreshed.
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Service entry ID"
// @Param        body body dto.BillServiceRequest true "Fee, parts and tender"
// @Success      200  {object} dto.ServiceTransactionResponse
// @Failure      409  {object} apierror.APIError "entry closed or installment already paid into"
// @Router       /v1/services/{id}/bill [post]
func (h *ServicesHandler) Bill(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.BillServiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess, ok := session(c)
	if !ok {
		return
	}
	resp, err := h.svc.Bill(c.Request.Context(), sess, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServicesHandler) Transaction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
