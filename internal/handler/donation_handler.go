package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// webhookSignatureHeader carries the HMAC signature on gateway callbacks.
const webhookSignatureHeader = "X-Payment-Signature"

// DonationHandler wires HTTP endpoints to the donation service.
type DonationHandler struct {
	service *service.DonationService
}

// NewDonationHandler creates a new handler.
func NewDonationHandler(svc *service.DonationService) *DonationHandler {
	return &DonationHandler{service: svc}
}

// Checkout godoc
// @Summary Start a donation
// @Description Opens a payment session; the donation stays pending until the gateway webhook settles it
// @Tags Donations
// @Accept json
// @Produce json
// @Param payload body service.CheckoutRequest true "Donation payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /donations/checkout [post]
func (h *DonationHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid donation payload"))
		return
	}

	var donorID *string
	if claims := claimsFromContext(c); claims != nil {
		donorID = &claims.UserID
	}

	res, err := h.service.Checkout(c.Request.Context(), donorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "donation session opened", res)
}

// Webhook godoc
// @Summary Payment gateway webhook
// @Description Verifies the HMAC signature and settles the referenced donation
// @Tags Donations
// @Accept json
// @Produce json
// @Param X-Payment-Signature header string true "HMAC signature"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /donations/webhook [post]
func (h *DonationHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable webhook body"))
		return
	}

	signature := c.GetHeader(webhookSignatureHeader)
	if err := h.service.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "webhook processed", nil)
}

// Get godoc
// @Summary Get a donation by payment session
// @Tags Donations
// @Security BearerAuth
// @Produce json
// @Param session path string true "Payment session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donations/{session} [get]
func (h *DonationHandler) Get(c *gin.Context) {
	donation, err := h.service.Get(c.Request.Context(), c.Param("session"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "donation retrieved", donation)
}

// List godoc
// @Summary List donations
// @Tags Donations
// @Security BearerAuth
// @Produce json
// @Param status query string false "Donation status"
// @Success 200 {object} response.Envelope
// @Router /donations [get]
func (h *DonationHandler) List(c *gin.Context) {
	var filter models.DonationFilter
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		status := models.DonationStatus(raw)
		filter.Status = &status
	}
	filter.Page, filter.PageSize = parsePage(c)
	filter.SortBy, filter.SortOrder = parseSort(c)

	donations, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "donations retrieved", donations, pagination)
}

// Total godoc
// @Summary Total raised
// @Tags Donations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /donations/total [get]
func (h *DonationHandler) Total(c *gin.Context) {
	total, err := h.service.TotalRaisedCents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "total retrieved", gin.H{"total_cents": total})
}

// ExportCSV godoc
// @Summary Export donations as CSV
// @Tags Donations
// @Security BearerAuth
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Router /donations/export [get]
func (h *DonationHandler) ExportCSV(c *gin.Context) {
	raw, err := h.service.ExportCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := "donations-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", raw)
}
