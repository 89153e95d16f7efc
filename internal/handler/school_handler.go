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

// SchoolHandler wires HTTP endpoints to the school service.
type SchoolHandler struct {
	service *service.SchoolService
}

// NewSchoolHandler creates a new handler.
func NewSchoolHandler(svc *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{service: svc}
}

// List godoc
// @Summary List school registrations
// @Tags Schools
// @Security BearerAuth
// @Produce json
// @Param status query string false "Moderation status"
// @Success 200 {object} response.Envelope
// @Router /schools [get]
func (h *SchoolHandler) List(c *gin.Context) {
	var filter models.SchoolFilter
	filter.Status = parseStatus(c)
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = parsePage(c)
	filter.SortBy, filter.SortOrder = parseSort(c)

	schools, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "schools retrieved", schools, pagination)
}

// Get godoc
// @Summary Get a school registration
// @Tags Schools
// @Security BearerAuth
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schools/{id} [get]
func (h *SchoolHandler) Get(c *gin.Context) {
	school, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "school retrieved", school)
}

// Register godoc
// @Summary Register a partner school
// @Description Public registration; entries await admin approval
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body service.RegisterSchoolRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schools [post]
func (h *SchoolHandler) Register(c *gin.Context) {
	var req service.RegisterSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school payload"))
		return
	}

	school, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "school registered", school)
}

// Update godoc
// @Summary Edit a school registration
// @Tags Schools
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param payload body service.UpdateSchoolRequest true "School payload"
// @Success 200 {object} response.Envelope
// @Router /schools/{id} [put]
func (h *SchoolHandler) Update(c *gin.Context) {
	var req service.UpdateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school payload"))
		return
	}

	school, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "school updated", school)
}

// Approve godoc
// @Summary Approve a school registration
// @Tags Schools
// @Security BearerAuth
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{id}/approve [post]
func (h *SchoolHandler) Approve(c *gin.Context) {
	school, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "school approved", school)
}

// Reject godoc
// @Summary Reject a school registration
// @Tags Schools
// @Security BearerAuth
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{id}/reject [post]
func (h *SchoolHandler) Reject(c *gin.Context) {
	school, err := h.service.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "school rejected", school)
}

// Delete godoc
// @Summary Delete a school registration
// @Tags Schools
// @Security BearerAuth
// @Param id path string true "School ID"
// @Success 204 "No Content"
// @Router /schools/{id} [delete]
func (h *SchoolHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
