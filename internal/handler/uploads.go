package handler

import (
	"net/http"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"
	"github.com/cellkom/poscellkom-sub000/internal/dto"
	"github.com/cellkom/poscellkom-sub000/internal/infra"

	"github.com/gin-gonic/gin"
)

type UploadsHandler struct{ storage *infra.Storage }

func NewUploadsHandler(storage *infra.Storage) *UploadsHandler {
	return &UploadsHandler{storage: storage}
}

// Upload godoc
// @Summary      Upload an image
// @Description  Stores a product, news or ad image and returns its public URL. Max 5 MB; jpeg, png, webp or gif.
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        folder formData string true "products | news | ads"
// @Param        file   formData file   true "Image"
// @Success      201 {object} dto.UploadResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/uploads [post]
func (h *UploadsHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, infra.MaxUploadBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("multipart field \"file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, apierror.Server("open upload", err))
		return
	}
	defer f.Close()

	url, err := h.storage.Save(c.PostForm("folder"), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.UploadResponse{URL: url})
}
