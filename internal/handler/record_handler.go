package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	"github.com/noah-isme/carbon-tracker-api/internal/service"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
	"github.com/noah-isme/carbon-tracker-api/pkg/response"
)

// RecordHandler exposes emission record endpoints for users and admins.
type RecordHandler struct {
	service *service.RecordService
}

// NewRecordHandler constructs the handler.
func NewRecordHandler(svc *service.RecordService) *RecordHandler {
	return &RecordHandler{service: svc}
}

// History godoc
// @Summary Own record history
// @Tags Records
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /records [get]
func (h *RecordHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	records, pagination, err := h.service.History(c.Request.Context(), claims.UserID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, records, pagination)
}

// Detail godoc
// @Summary Record detail with category breakdown
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/{id} [get]
func (h *RecordHandler) Detail(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a record
// @Description Remove a record together with its details and report
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AdminList godoc
// @Summary List records across users
// @Tags Admin
// @Produce json
// @Param user_id query string false "Filter by user"
// @Param department query string false "Filter by department"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param level query string false "Filter by level (Low, Medium, High)"
// @Success 200 {object} response.Envelope
// @Router /admin/records [get]
func (h *RecordHandler) AdminList(c *gin.Context) {
	filter, err := recordFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	rows, pagination, err := h.service.AdminList(c.Request.Context(), *filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, pagination)
}

// Export godoc
// @Summary Export filtered records as CSV
// @Tags Admin
// @Produce text/csv
// @Success 200 {file} binary
// @Router /admin/records/export [get]
func (h *RecordHandler) Export(c *gin.Context) {
	filter, err := recordFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, filename, err := h.service.ExportCSV(c.Request.Context(), *filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/csv", payload)
}

func recordFilterFromQuery(c *gin.Context) (*models.RecordFilter, error) {
	filter := models.RecordFilter{
		UserID:     strings.TrimSpace(c.Query("user_id")),
		Department: strings.TrimSpace(c.Query("department")),
		Level:      emissions.Level(strings.TrimSpace(c.Query("level"))),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
	}

	if raw := strings.TrimSpace(c.Query("date_from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = &parsed
	}
	if raw := strings.TrimSpace(c.Query("date_to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date_to must be YYYY-MM-DD")
		}
		filter.DateTo = &parsed
	}
	return &filter, nil
}
