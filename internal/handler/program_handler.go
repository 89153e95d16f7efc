package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// ProgramHandler wires HTTP endpoints to the programme request service.
type ProgramHandler struct {
	service *service.ProgramService
}

// NewProgramHandler creates a new handler.
func NewProgramHandler(svc *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{service: svc}
}

// Submit godoc
// @Summary Request a teaching programme
// @Description Files a programme application for the calling school, pending admin review
// @Tags Programs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.RequestProgramRequest true "Programme request payload"
// @Success 201 {object} response.Envelope
// @Router /programs [post]
func (h *ProgramHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RequestProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program request payload"))
		return
	}

	request, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "program request submitted", request)
}

// List godoc
// @Summary List programme requests
// @Description Schools see their own submissions; admins see the pending queue
// @Tags Programs
// @Security BearerAuth
// @Produce json
// @Param status query string false "Moderation status (admin only)"
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.ProgramRequestFilter
	filter.Status = parseStatus(c)
	filter.Page, filter.PageSize = parsePage(c)

	requests, pagination, err := h.service.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "program requests retrieved", requests, pagination)
}

// Approve godoc
// @Summary Approve a programme request
// @Tags Programs
// @Security BearerAuth
// @Produce json
// @Param id path string true "Program request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{id}/approve [post]
func (h *ProgramHandler) Approve(c *gin.Context) {
	request, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "program request approved", request)
}

// Reject godoc
// @Summary Reject a programme request
// @Tags Programs
// @Security BearerAuth
// @Produce json
// @Param id path string true "Program request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{id}/reject [post]
func (h *ProgramHandler) Reject(c *gin.Context) {
	request, err := h.service.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "program request rejected", request)
}
