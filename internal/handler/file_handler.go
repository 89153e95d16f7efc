package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
	"github.com/noah-isme/lms-api/pkg/storage"
)

// FileHandler issues and honours signed download links for privately
// stored assets (currently invoice PDFs).
type FileHandler struct {
	invoices *service.InvoiceService
	files    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	basePath string
}

func NewFileHandler(invoices *service.InvoiceService, files *storage.LocalStorage, signer *storage.SignedURLSigner, basePath string) *FileHandler {
	return &FileHandler{invoices: invoices, files: files, signer: signer, basePath: basePath}
}

// InvoiceDownload godoc
// @Summary Issue a signed download link for an invoice PDF
// @Tags Invoices
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id}/download [get]
func (h *FileHandler) InvoiceDownload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invoice, err := h.invoices.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	if invoice.PDFURL == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "invoice pdf not rendered yet"))
		return
	}

	relPath := fmt.Sprintf("invoices/%s.pdf", invoice.InvoiceNumber)
	token, expiresAt, err := h.signer.Generate(invoice.ID, relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link"))
		return
	}

	response.OK(c, "download link issued", gin.H{
		"download_url": h.basePath + "/files/" + token,
		"expires_at":   expiresAt,
	})
}

// Serve godoc
// @Summary Stream a signed asset
// @Tags Invoices
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /files/{token} [get]
func (h *FileHandler) Serve(c *gin.Context) {
	_, relPath, _, err := h.signer.Parse(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token"))
		return
	}

	file, err := h.files.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat file"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name()))
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}
