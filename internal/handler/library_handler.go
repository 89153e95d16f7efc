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

// LibraryHandler wires HTTP endpoints to the library service.
type LibraryHandler struct {
	service *service.LibraryService
}

// NewLibraryHandler creates a new handler.
func NewLibraryHandler(svc *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{service: svc}
}

func libraryFilter(c *gin.Context) models.LibraryFilter {
	var filter models.LibraryFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Title = strings.TrimSpace(c.Query("title"))
	filter.Author = strings.TrimSpace(c.Query("author"))
	filter.Subject = strings.TrimSpace(c.Query("subject"))
	filter.Keyword = strings.TrimSpace(c.Query("keyword"))
	filter.Status = parseStatus(c)
	if claimsFromContext(c) == nil {
		approved := models.StatusApproved
		filter.Status = &approved
	}
	filter.Page, filter.PageSize = parsePage(c)
	filter.SortBy, filter.SortOrder = parseSort(c)
	return filter
}

// ListBooks godoc
// @Summary Search library books
// @Description Search spans title, author, subject and keywords; anonymous callers see approved books only
// @Tags Library
// @Produce json
// @Param search query string false "Free text search"
// @Param keyword query string false "Exact keyword match"
// @Success 200 {object} response.Envelope
// @Router /library/books [get]
func (h *LibraryHandler) ListBooks(c *gin.Context) {
	books, pagination, err := h.service.ListBooks(c.Request.Context(), libraryFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "books retrieved", books, pagination)
}

// GetBook godoc
// @Summary Get a library book
// @Tags Library
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /library/books/{id} [get]
func (h *LibraryHandler) GetBook(c *gin.Context) {
	book, err := h.service.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "book retrieved", book)
}

// CreateBook godoc
// @Summary Add a library book
// @Tags Library
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateLibraryBookRequest true "Book payload"
// @Success 201 {object} response.Envelope
// @Router /library/books [post]
func (h *LibraryHandler) CreateBook(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateLibraryBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid book payload"))
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "book added", book)
}

// UpdateBook godoc
// @Summary Edit a library book
// @Tags Library
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param payload body service.CreateLibraryBookRequest true "Book payload"
// @Success 200 {object} response.Envelope
// @Router /library/books/{id} [put]
func (h *LibraryHandler) UpdateBook(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateLibraryBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid book payload"))
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "book updated", book)
}

// ApproveBook godoc
// @Summary Approve a pending book
// @Tags Library
// @Security BearerAuth
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Router /library/books/{id}/approve [post]
func (h *LibraryHandler) ApproveBook(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	book, err := h.service.ApproveBook(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "book approved", book)
}

// RejectBook godoc
// @Summary Reject a pending book
// @Tags Library
// @Security BearerAuth
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Router /library/books/{id}/reject [post]
func (h *LibraryHandler) RejectBook(c *gin.Context) {
	book, err := h.service.RejectBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "book rejected", book)
}

// DeleteBook godoc
// @Summary Move a book to the recycle bin
// @Tags Library
// @Security BearerAuth
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /library/books/{id} [delete]
func (h *LibraryHandler) DeleteBook(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	bin, err := h.service.SoftDeleteBook(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "book moved to recycle bin", bin)
}

// ListBookBin godoc
// @Summary List the book recycle bin
// @Tags Library
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /library/books/bin [get]
func (h *LibraryHandler) ListBookBin(c *gin.Context) {
	items, err := h.service.ListBookBin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "recycle bin retrieved", items)
}

// RestoreBook godoc
// @Summary Restore a book from the recycle bin
// @Tags Library
// @Security BearerAuth
// @Produce json
// @Param id path string true "Recycle bin entry ID"
// @Success 200 {object} response.Envelope
// @Router /library/books/bin/{id}/restore [post]
func (h *LibraryHandler) RestoreBook(c *gin.Context) {
	book, err := h.service.RestoreBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "book restored", book)
}

// PurgeBook godoc
// @Summary Permanently delete a book recycle bin entry
// @Tags Library
// @Security BearerAuth
// @Param id path string true "Recycle bin entry ID"
// @Success 204 "No Content"
// @Router /library/books/bin/{id} [delete]
func (h *LibraryHandler) PurgeBook(c *gin.Context) {
	if err := h.service.PurgeBook(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListVideos godoc
// @Summary Search library videos
// @Tags Library
// @Produce json
// @Param search query string false "Free text search"
// @Success 200 {object} response.Envelope
// @Router /library/videos [get]
func (h *LibraryHandler) ListVideos(c *gin.Context) {
	videos, pagination, err := h.service.ListVideos(c.Request.Context(), libraryFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "videos retrieved", videos, pagination)
}

// GetVideo godoc
// @Summary Get a library video
// @Tags Library
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /library/videos/{id} [get]
func (h *LibraryHandler) GetVideo(c *gin.Context) {
	video, err := h.service.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video retrieved", video)
}

// CreateVideo godoc
// @Summary Add a library video
// @Description Library videos are admin uploads and go live immediately
// @Tags Library
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateLibraryVideoRequest true "Video payload"
// @Success 201 {object} response.Envelope
// @Router /library/videos [post]
func (h *LibraryHandler) CreateVideo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateLibraryVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid video payload"))
		return
	}

	video, err := h.service.CreateVideo(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "video added", video)
}

// UpdateVideo godoc
// @Summary Edit a library video
// @Tags Library
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Video ID"
// @Param payload body service.CreateLibraryVideoRequest true "Video payload"
// @Success 200 {object} response.Envelope
// @Router /library/videos/{id} [put]
func (h *LibraryHandler) UpdateVideo(c *gin.Context) {
	var req service.CreateLibraryVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid video payload"))
		return
	}

	video, err := h.service.UpdateVideo(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video updated", video)
}

// DeleteVideo godoc
// @Summary Move a library video to the recycle bin
// @Tags Library
// @Security BearerAuth
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} response.Envelope
// @Router /library/videos/{id} [delete]
func (h *LibraryHandler) DeleteVideo(c *gin.Context) {
	bin, err := h.service.SoftDeleteVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video moved to recycle bin", bin)
}

// ListVideoBin godoc
// @Summary List the library video recycle bin
// @Tags Library
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /library/videos/bin [get]
func (h *LibraryHandler) ListVideoBin(c *gin.Context) {
	items, err := h.service.ListVideoBin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "recycle bin retrieved", items)
}

// RestoreVideo godoc
// @Summary Restore a library video from the recycle bin
// @Tags Library
// @Security BearerAuth
// @Produce json
// @Param id path string true "Recycle bin entry ID"
// @Success 200 {object} response.Envelope
// @Router /library/videos/bin/{id}/restore [post]
func (h *LibraryHandler) RestoreVideo(c *gin.Context) {
	video, err := h.service.RestoreVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "video restored", video)
}

// PurgeVideo godoc
// @Summary Permanently delete a library video recycle bin entry
// @Tags Library
// @Security BearerAuth
// @Param id path string true "Recycle bin entry ID"
// @Success 204 "No Content"
// @Router /library/videos/bin/{id} [delete]
func (h *LibraryHandler) PurgeVideo(c *gin.Context) {
	if err := h.service.PurgeVideo(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
