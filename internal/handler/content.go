package handler

import (
	"net/http"

	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ContentHandler is the admin side of news, ads and shop settings.
// The public read side lives in StorefrontHandler.
type ContentHandler struct{ svc service.ContentService }

func NewContentHandler(svc service.ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// CreateNews godoc
// @Summary      Write a news post
// @Description  The slug is derived from the title. Setting published stamps published_at.
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.NewsRequest true "Post"
// @Success      201  {object} dto.NewsResponse
// @Failure      409  {object} apierror.APIError "slug taken"
// @Router       /v1/news [post]
func (h *ContentHandler) CreateNews(c *gin.Context) {
	var req dto.NewsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess, ok := session(c)
	if !ok {
		return
	}
	resp, err := h.svc.CreateNews(c.Request.Context(), sess, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ContentHandler) UpdateNews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.NewsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateNews(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContentHandler) DeleteNews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteNews(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContentHandler) GetNews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetNews(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListNews returns drafts and published posts alike.
func (h *ContentHandler) ListNews(c *gin.Context) {
	resp, err := h.svc.ListNews(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContentHandler) CreateAd(c *gin.Context) {
	var req dto.AdRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateAd(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ContentHandler) UpdateAd(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AdRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateAd(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContentHandler) DeleteAd(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteAd(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContentHandler) ListAds(c *gin.Context) {
	resp, err := h.svc.ListAds(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateSettings godoc
// @Summary      Change shop settings
// @Description  Keys: store_name, address, phone, receipt_footer. Unknown keys are rejected.
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.UpdateSettingsRequest true "Values"
// @Success      200  {object} map[string]string
// @Failure      422  {object} apierror.APIError
// @Router       /v1/settings [put]
func (h *ContentHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
