package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	"github.com/noah-isme/carbon-tracker-api/internal/service"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
	"github.com/noah-isme/carbon-tracker-api/pkg/response"
)

// ContentHandler exposes educational content endpoints.
type ContentHandler struct {
	service *service.ContentService
}

// NewContentHandler constructs the handler.
func NewContentHandler(svc *service.ContentService) *ContentHandler {
	return &ContentHandler{service: svc}
}

// List godoc
// @Summary List educational content
// @Tags Content
// @Produce json
// @Param content_type query string false "Filter by type (tip, article, guide)"
// @Param category_id query int false "Filter by category"
// @Success 200 {object} response.Envelope
// @Router /content [get]
func (h *ContentHandler) List(c *gin.Context) {
	filter := models.ContentFilter{
		ContentType: models.ContentType(strings.TrimSpace(c.Query("content_type"))),
		CategoryID:  queryInt(c, "category_id", 0),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 20),
	}

	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Content detail
// @Tags Content
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /content/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// Image godoc
// @Summary Content image
// @Tags Content
// @Produce image/*
// @Param id path string true "Content ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /content/{id}/image [get]
func (h *ContentHandler) Image(c *gin.Context) {
	image, mime, err := h.service.Image(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Data(http.StatusOK, mime, image)
}

// Create godoc
// @Summary Create educational content
// @Description Multipart form with a JSON-compatible field set and optional image part
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/content [post]
func (h *ContentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := dto.CreateContentRequest{
		Title:          c.PostForm("title"),
		Description:    c.PostForm("description"),
		ContentType:    c.PostForm("content_type"),
		EmissionsLevel: c.PostForm("emissions_level"),
	}
	if raw := c.PostForm("category_id"); raw != "" {
		id := queryIntValue(raw)
		if id == 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "category_id must be numeric"))
			return
		}
		req.CategoryID = &id
	}

	image, err := formImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.service.Create(c.Request.Context(), claims.UserID, req, image)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// Update godoc
// @Summary Update educational content
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/content/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	req := dto.UpdateContentRequest{
		Title:          c.PostForm("title"),
		Description:    c.PostForm("description"),
		ContentType:    c.PostForm("content_type"),
		EmissionsLevel: c.PostForm("emissions_level"),
		RemoveImage:    c.PostForm("remove_image") == "true",
	}
	if raw := c.PostForm("category_id"); raw != "" {
		id := queryIntValue(raw)
		if id == 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "category_id must be numeric"))
			return
		}
		req.CategoryID = &id
	}

	image, err := formImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req, image)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete educational content
// @Tags Admin
// @Produce json
// @Param id path string true "Content ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/content/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func formImage(c *gin.Context) ([]byte, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// absent image part is fine, the field is optional
		return nil, nil
	}
	src, err := fileHeader.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open image")
	}
	defer src.Close()

	image, err := io.ReadAll(src)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read image")
	}
	return image, nil
}

func queryIntValue(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
