package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
)

func galleryTestContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/gallery", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestGalleryHandlerCreateMissingTitle(t *testing.T) {
	svc := service.NewGalleryService(nil, nil, time.Minute, validator.New(), zap.NewNop())
	handler := NewGalleryHandler(svc, service.NewMetricsService())

	c, rec := galleryTestContext(t, `{"image_url":"https://cdn.example.com/a.jpg","school_name":"Hillside"}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "school-1", Role: models.RoleSchool})

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title")
}

func TestGalleryHandlerCreateUnauthenticated(t *testing.T) {
	svc := service.NewGalleryService(nil, nil, time.Minute, validator.New(), zap.NewNop())
	handler := NewGalleryHandler(svc, service.NewMetricsService())

	c, rec := galleryTestContext(t, `{"title":"Sports Day"}`)

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGalleryHandlerCreateMalformedJSON(t *testing.T) {
	svc := service.NewGalleryService(nil, nil, time.Minute, validator.New(), zap.NewNop())
	handler := NewGalleryHandler(svc, service.NewMetricsService())

	c, rec := galleryTestContext(t, `{"title": `)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "school-1", Role: models.RoleSchool})

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
