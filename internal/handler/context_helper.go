package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func parsePage(c *gin.Context) (page, size int) {
	page, size = 1, 20
	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = p
	}
	if s, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		size = s
	}
	return page, size
}

// parseSort reads the sortBy/order query pair. The older sort alias is
// still accepted for clients that predate the rename.
func parseSort(c *gin.Context) (sortBy, sortOrder string) {
	sortBy = c.Query("sortBy")
	if sortBy == "" {
		sortBy = c.Query("sort")
	}
	return sortBy, c.Query("order")
}

func parseStatus(c *gin.Context) *models.Status {
	raw := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	if raw == "" {
		return nil
	}
	status := models.Status(raw)
	if !status.Valid() {
		return nil
	}
	return &status
}
