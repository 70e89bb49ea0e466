package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/middleware"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
)

type fakeDashboardSrv struct {
	resp *dto.DashboardResponse
	hit  bool
	err  error
	tips []dto.TipItem
}

func (f *fakeDashboardSrv) Summary(context.Context, string) (*dto.DashboardResponse, bool, error) {
	return f.resp, f.hit, f.err
}

func (f *fakeDashboardSrv) PersonalizedTips(context.Context, string) ([]dto.TipItem, error) {
	return f.tips, f.err
}

type responseEnvelope struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

func authedRouter(claims *models.JWTClaims, register func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ResponseMeta())
	if claims != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserKey, claims)
			c.Next()
		})
	}
	register(r)
	return r
}

func TestDashboardHandlerRequiresAuth(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{})
	r := authedRouter(nil, func(r *gin.Engine) { r.GET("/dashboard", handler.Summary) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerReportsCacheHit(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{
		resp: &dto.DashboardResponse{CurrentMonth: 42, CurrentLevel: "Low"},
		hit:  true,
	})
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleUser}
	r := authedRouter(claims, func(r *gin.Engine) { r.GET("/dashboard", handler.Summary) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	payload := envelope.Data.(map[string]interface{})
	assert.Equal(t, "Low", payload["current_level"])
}

func TestDashboardHandlerTips(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{
		tips: []dto.TipItem{{ID: "c1", Title: "Switch to LED"}},
	})
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleUser}
	r := authedRouter(claims, func(r *gin.Engine) { r.GET("/tips/personalized", handler.Tips) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tips/personalized", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	tips := envelope.Data.([]interface{})
	assert.Len(t, tips, 1)
}
