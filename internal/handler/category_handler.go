package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
	"github.com/noah-isme/carbon-tracker-api/pkg/response"
)

type categoryLister interface {
	List(ctx context.Context) ([]models.EmissionCategory, error)
}

// CategoryHandler serves the emission category reference data.
type CategoryHandler struct {
	categories categoryLister
}

// NewCategoryHandler constructs the handler.
func NewCategoryHandler(categories categoryLister) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List godoc
// @Summary Emission categories
// @Description Reference list of the six categories with their units
// @Tags Calculator
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load categories"))
		return
	}

	response.JSON(c, http.StatusOK, categories, nil)
}
