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

// InvoiceHandler wires HTTP endpoints to the invoice service.
type InvoiceHandler struct {
	service *service.InvoiceService
}

// NewInvoiceHandler creates a new handler.
func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: svc}
}

// List godoc
// @Summary List invoices
// @Description Admins see all invoices; instructors see their own
// @Tags Invoices
// @Security BearerAuth
// @Produce json
// @Param status query string false "Invoice status"
// @Success 200 {object} response.Envelope
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.InvoiceFilter
	if claims.Role != models.RoleAdmin {
		filter.InstructorID = claims.UserID
	}
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		status := models.InvoiceStatus(raw)
		filter.Status = &status
	}
	filter.Page, filter.PageSize = parsePage(c)
	filter.SortBy, filter.SortOrder = parseSort(c)

	invoices, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "invoices retrieved", invoices, pagination)
}

// Get godoc
// @Summary Get an invoice
// @Tags Invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "invoice retrieved", invoice)
}

// Create godoc
// @Summary Submit an invoice
// @Tags Invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateInvoiceRequest true "Invoice payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invoice payload"))
		return
	}

	invoice, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "invoice submitted", invoice)
}

// Approve godoc
// @Summary Approve a pending invoice
// @Description Approval queues PDF rendering and email dispatch
// @Tags Invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /invoices/{id}/approve [post]
func (h *InvoiceHandler) Approve(c *gin.Context) {
	invoice, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "invoice approved", invoice)
}

// Reject godoc
// @Summary Reject a pending invoice
// @Tags Invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payload body rejectRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /invoices/{id}/reject [post]
func (h *InvoiceHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rejection payload"))
		return
	}

	invoice, err := h.service.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "invoice rejected", invoice)
}

// Delete godoc
// @Summary Delete a pending invoice
// @Tags Invoices
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 204 "No Content"
// @Failure 409 {object} response.Envelope
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
