package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// VideoHandler wires HTTP endpoints to the video service.
type VideoHandler struct {
	service *service.VideoService
}

// NewVideoHandler creates a new handler.
func NewVideoHandler(svc *service.VideoService) *VideoHandler {
	return &VideoHandler{service: svc}
}

// List godoc
// @Summary List course videos
// @Description Anonymous callers see approved videos only; staff may filter by status
// @Tags Videos
// @Produce json
// @Param status query string false "Moderation status"
// @Param search query string false "Search course name or description"
// @Success 200 {object} response.Envelope
// @Router /videos [get]
func (h *VideoHandler) List(c *gin.Context) {
	var filter models.VideoFilter
	filter.Status = parseStatus(c)
	if claimsFromContext(c) == nil {
		approved := models.StatusApproved
		filter.Status = &approved
	}
	filter.UploadedBy = c.Query("uploadedBy")
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = parsePage(c)
	filter.SortBy, filter.SortOrder = parseSort(c)

	videos, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "videos retrieved", videos, pagination)
}

// Get godoc
// @Summary Get a course video
// @Tags Videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /videos/{id} [get]
func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video retrieved", video)
}

// Create godoc
// @Summary Upload a course video
// @Tags Videos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateVideoRequest true "Video payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /videos [post]
func (h *VideoHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid video payload"))
		return
	}

	video, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "video uploaded", video)
}

// Update godoc
// @Summary Edit a course video
// @Tags Videos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Video ID"
// @Param payload body service.UpdateVideoRequest true "Video payload"
// @Success 200 {object} response.Envelope
// @Router /videos/{id} [put]
func (h *VideoHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid video payload"))
		return
	}

	video, err := h.service.Update(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video updated", video)
}

// Approve godoc
// @Summary Approve a pending video
// @Tags Videos
// @Security BearerAuth
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} response.Envelope
// @Router /videos/{id}/approve [post]
func (h *VideoHandler) Approve(c *gin.Context) {
	video, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video approved", video)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject godoc
// @Summary Reject a pending video
// @Tags Videos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Video ID"
// @Param payload body rejectRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /videos/{id}/reject [post]
func (h *VideoHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rejection payload"))
		return
	}

	video, err := h.service.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video rejected", video)
}

// Delete godoc
// @Summary Move a video to the recycle bin
// @Tags Videos
// @Security BearerAuth
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /videos/{id} [delete]
func (h *VideoHandler) Delete(c *gin.Context) {
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
	response.OK(c, "video moved to recycle bin", bin)
}

// ListBin godoc
// @Summary List the video recycle bin
// @Tags Videos
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /videos/bin [get]
func (h *VideoHandler) ListBin(c *gin.Context) {
	items, err := h.service.ListBin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "recycle bin retrieved", items)
}

// Restore godoc
// @Summary Restore a video from the recycle bin
// @Tags Videos
// @Security BearerAuth
// @Produce json
// @Param id path string true "Recycle bin entry ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /videos/bin/{id}/restore [post]
func (h *VideoHandler) Restore(c *gin.Context) {
	video, err := h.service.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video restored", video)
}

// Purge godoc
// @Summary Permanently delete a recycle bin entry
// @Tags Videos
// @Security BearerAuth
// @Param id path string true "Recycle bin entry ID"
// @Success 204 "No Content"
// @Router /videos/bin/{id} [delete]
func (h *VideoHandler) Purge(c *gin.Context) {
	if err := h.service.Purge(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
