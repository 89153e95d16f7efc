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

	"github.com/noah-isme/lms-api/internal/service"
)

func TestAuthHandlerLoginMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewAuthService(nil, validator.New(), zap.NewNop(), service.AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour,
	})
	handler := NewAuthHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerLogoutUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewAuthService(nil, validator.New(), zap.NewNop(), service.AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour,
	})
	handler := NewAuthHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(`{"refresh_token":"tok"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Logout(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
