package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// WatchedVideoHandler wires HTTP endpoints to the watch-history service.
type WatchedVideoHandler struct {
	service *service.WatchedVideoService
}

// NewWatchedVideoHandler creates a new handler.
func NewWatchedVideoHandler(svc *service.WatchedVideoService) *WatchedVideoHandler {
	return &WatchedVideoHandler{service: svc}
}

// MarkWatched godoc
// @Summary Mark a video as watched
// @Description Records the calling user's watch; marking twice is a no-op
// @Tags Videos
// @Security BearerAuth
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /videos/{id}/watched [post]
func (h *WatchedVideoHandler) MarkWatched(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	watched, created, err := h.service.MarkWatched(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, "marked as watched", watched)
		return
	}
	response.OK(c, "already watched", watched)
}

// Watchers godoc
// @Summary List users who watched a video
// @Tags Videos
// @Security BearerAuth
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} response.Envelope
// @Router /videos/{id}/watchers [get]
func (h *WatchedVideoHandler) Watchers(c *gin.Context) {
	watchers, err := h.service.Watchers(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "watchers retrieved", watchers)
}

// Watched godoc
// @Summary List the calling user's watched videos
// @Tags Videos
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /videos/watched [get]
func (h *WatchedVideoHandler) Watched(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.service.Watched(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "watched videos retrieved", entries)
}
