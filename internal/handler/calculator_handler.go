package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/service"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
	"github.com/noah-isme/carbon-tracker-api/pkg/response"
)

// CalculatorHandler exposes the footprint calculator endpoint.
type CalculatorHandler struct {
	service *service.CalculatorService
}

// NewCalculatorHandler constructs the handler.
func NewCalculatorHandler(svc *service.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{service: svc}
}

// Calculate godoc
// @Summary Submit consumption and compute emissions
// @Description Compute CO2e per category, classify the total and persist the record
// @Tags Calculator
// @Accept json
// @Produce json
// @Param payload body dto.CalculateRequest true "Consumption entries"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calculate [post]
func (h *CalculatorHandler) Calculate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid calculation payload"))
		return
	}

	result, err := h.service.Calculate(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
