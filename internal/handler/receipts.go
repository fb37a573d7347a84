package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/model"
	"github.com/cellkom/poscellkom-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReceiptsHandler struct{ svc service.ReceiptService }

func NewReceiptsHandler(svc service.ReceiptService) *ReceiptsHandler {
	return &ReceiptsHandler{svc: svc}
}

// receiptSources maps the URL segment to a receipt source type.
var receiptSources = map[string]string{
	"sales":    model.SourceSale,
	"services": model.SourceService,
}

func receiptTarget(c *gin.Context) (string, uuid.UUID, bool) {
	source, ok := receiptSources[c.Param("source")]
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, apierror.New("unknown receipt source"))
		return "", uuid.Nil, false
	}
	raw := strings.TrimSuffix(c.Param("id"), ".pdf")
	id, err := uuid.Parse(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("invalid id"))
		return "", uuid.Nil, false
	}
	return source, id, true
}

// PDF godoc
// @Summary      Download a receipt
// @Description  Renders the receipt on demand. The trailing .pdf is optional.
// @Tags         receipts
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        source path string true "sales | services"
// @Param        id     path string true "Sale or service transaction ID"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/receipts/{source}/{id} [get]
func (h *ReceiptsHandler) PDF(c *gin.Context) {
	source, id, ok := receiptTarget(c)
	if !ok {
		return
	}
	pdf, displayID, err := h.svc.PDF(c.Request.Context(), source, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, displayID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *ReceiptsHandler) Status(c *gin.Context) {
	source, id, ok := receiptTarget(c)
	if !ok {
		return
	}
	resp, err := h.svc.Status(c.Request.Context(), source, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resend godoc
// @Summary      Queue the receipt e-mail again
// @Description  Uses the given address, or the one stored on the receipt.
// @Tags         receipts
// @Accept       json
// @Security     BearerAuth
// @Param        source path string true "sales | services"
// @Param        id     path string true "Sale or service transaction ID"
// @Param        body   body dto.ResendReceiptRequest false "Override address"
// @Success      202
// @Failure      422 {object} apierror.APIError "no address known"
// @Router       /v1/receipts/{source}/{id}/resend [post]
func (h *ReceiptsHandler) Resend(c *gin.Context) {
	source, id, ok := receiptTarget(c)
	if !ok {
		return
	}
	var req dto.ResendReceiptRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Resend(c.Request.Context(), source, id, req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
