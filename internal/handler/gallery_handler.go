package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// GalleryHandler wires HTTP endpoints to the gallery service.
type GalleryHandler struct {
	service *service.GalleryService
	metrics *service.MetricsService
}

// NewGalleryHandler creates a new handler.
func NewGalleryHandler(svc *service.GalleryService, metrics *service.MetricsService) *GalleryHandler {
	return &GalleryHandler{service: svc, metrics: metrics}
}

// ListPublic godoc
// @Summary Public gallery listing
// @Description Approved gallery images, cached per page
// @Tags Gallery
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gallery [get]
func (h *GalleryHandler) ListPublic(c *gin.Context) {
	page, size := parsePage(c)

	start := time.Now()
	images, pagination, cacheHit, err := h.service.ListPublic(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCacheOperation(cacheHit, time.Since(start))
	middleware.SetCacheHit(c, cacheHit)

	response.JSON(c, http.StatusOK, "gallery retrieved", images, pagination, middleware.ExtractMeta(c))
}

// List godoc
// @Summary List gallery images for moderation
// @Tags Gallery
// @Security BearerAuth
// @Produce json
// @Param status query string false "Moderation status"
// @Success 200 {object} response.Envelope
// @Router /gallery/manage [get]
func (h *GalleryHandler) List(c *gin.Context) {
	var filter models.GalleryFilter
	filter.Status = parseStatus(c)
	filter.SchoolName = strings.TrimSpace(c.Query("school"))
	filter.UploadedBy = c.Query("uploadedBy")
	filter.Page, filter.PageSize = parsePage(c)
	filter.SortBy, filter.SortOrder = parseSort(c)

	images, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "gallery retrieved", images, pagination)
}

// Get godoc
// @Summary Get a gallery image
// @Tags Gallery
// @Produce json
// @Param id path string true "Image ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /gallery/{id} [get]
func (h *GalleryHandler) Get(c *gin.Context) {
	image, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "image retrieved", image)
}

// Create godoc
// @Summary Upload a gallery image
// @Tags Gallery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateGalleryImageRequest true "Image payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /gallery [post]
func (h *GalleryHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateGalleryImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid gallery payload"))
		return
	}

	image, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "image uploaded", image)
}

// Update godoc
// @Summary Edit a gallery image
// @Tags Gallery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Image ID"
// @Param payload body service.UpdateGalleryImageRequest true "Image payload"
// @Success 200 {object} response.Envelope
// @Router /gallery/{id} [put]
func (h *GalleryHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateGalleryImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid gallery payload"))
		return
	}

	image, err := h.service.Update(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "image updated", image)
}

// Approve godoc
// @Summary Approve a pending image
// @Tags Gallery
// @Security BearerAuth
// @Produce json
// @Param id path string true "Image ID"
// @Success 200 {object} response.Envelope
// @Router /gallery/{id}/approve [post]
func (h *GalleryHandler) Approve(c *gin.Context) {
	image, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "image approved", image)
}

// Reject godoc
// @Summary Reject a pending image
// @Tags Gallery
// @Security BearerAuth
// @Produce json
// @Param id path string true "Image ID"
// @Success 200 {object} response.Envelope
// @Router /gallery/{id}/reject [post]
func (h *GalleryHandler) Reject(c *gin.Context) {
	image, err := h.service.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "image rejected", image)
}

// Delete godoc
// @Summary Move an image to the recycle bin
// @Tags Gallery
// @Security BearerAuth
// @Produce json
// @Param id path string true "Image ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /gallery/{id} [delete]
func (h *GalleryHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	bin, err := h.service.SoftDelete(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "image moved to recycle bin", bin)
}

// ListBin godoc
// @Summary List the gallery recycle bin
// @Tags Gallery
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gallery/bin [get]
func (h *GalleryHandler) ListBin(c *gin.Context) {
	items, err := h.service.ListBin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "recycle bin retrieved", items)
}

// Restore godoc
// @Summary Restore an image from the recycle bin
// @Tags Gallery
// @Security BearerAuth
// @Produce json
// @Param id path string true "Recycle bin entry ID"
// @Success 200 {object} response.Envelope
// @Router /gallery/bin/{id}/restore [post]
func (h *GalleryHandler) Restore(c *gin.Context) {
	image, err := h.service.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "image restored", image)
}

// Purge godoc
// @Summary Permanently delete a recycle bin entry
// @Tags Gallery
// @Security BearerAuth
// @Param id path string true "Recycle bin entry ID"
// @Success 204 "No Content"
// @Router /gallery/bin/{id} [delete]
func (h *GalleryHandler) Purge(c *gin.Context) {
	if err := h.service.Purge(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
