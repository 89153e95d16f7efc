package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// SettingHandler wires HTTP endpoints to the video settings service.
type SettingHandler struct {
	service *service.SettingService
}

// NewSettingHandler creates a new handler.
func NewSettingHandler(svc *service.SettingService) *SettingHandler {
	return &SettingHandler{service: svc}
}

// Create godoc
// @Summary Create the video upload policy
// @Description Only one settings row may exist; a second create conflicts
// @Tags Settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.VideoSettingRequest true "Settings payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /settings/video [post]
func (h *SettingHandler) Create(c *gin.Context) {
	var req service.VideoSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid video setting payload"))
		return
	}

	setting, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "video setting created", setting)
}

// Get godoc
// @Summary Get the video upload policy
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /settings/video [get]
func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video setting retrieved", setting)
}

// GetByID godoc
// @Summary Get a video settings row
// @Tags Settings
// @Produce json
// @Param id path string true "Setting ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /settings/video/{id} [get]
func (h *SettingHandler) GetByID(c *gin.Context) {
	setting, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video setting retrieved", setting)
}

// Update godoc
// @Summary Edit the video upload policy
// @Tags Settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Setting ID"
// @Param payload body service.VideoSettingRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /settings/video/{id} [put]
func (h *SettingHandler) Update(c *gin.Context) {
	var req service.VideoSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid video setting payload"))
		return
	}

	setting, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video setting updated", setting)
}

// Delete godoc
// @Summary Delete a video settings row
// @Tags Settings
// @Security BearerAuth
// @Produce json
// @Param id path string true "Setting ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /settings/video/{id} [delete]
func (h *SettingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video setting deleted", nil)
}
