package models

import (
	"time"

	"github.com/lib/pq"
)

// LibraryBook is an uploaded PDF book in the library catalogue.
type LibraryBook struct {
	ID            string         `db:"id" json:"id"`
	Title         string         `db:"title" json:"title"`
	Author        string         `db:"author" json:"author"`
	Subject       string         `db:"subject" json:"subject"`
	Keywords      pq.StringArray `db:"keywords" json:"keywords"`
	PDFURL        string         `db:"pdf_url" json:"pdf_url"`
	CoverImageURL string         `db:"cover_image_url" json:"cover_image_url"`
	Description   string         `db:"description" json:"description"`
	Status        Status         `db:"status" json:"status"`
	ApprovedBy    *string        `db:"approved_by" json:"approved_by,omitempty"`
	UploadedBy    string         `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// LibraryVideo is a video resource in the library catalogue. Unlike books,
// library videos are approved at creation time.
type LibraryVideo struct {
	ID            string         `db:"id" json:"id"`
	Title         string         `db:"title" json:"title"`
	Author        string         `db:"author" json:"author"`
	Subject       string         `db:"subject" json:"subject"`
	Keywords      pq.StringArray `db:"keywords" json:"keywords"`
	VideoURL      string         `db:"video_url" json:"video_url"`
	CoverImageURL string         `db:"cover_image_url" json:"cover_image_url"`
	Description   string         `db:"description" json:"description"`
	Status        Status         `db:"status" json:"status"`
	UploadedBy    string         `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// LibraryBookBinItem is a soft-deleted library book.
type LibraryBookBinItem struct {
	ID             string         `db:"id" json:"id"`
	OriginalBookID string         `db:"original_book_id" json:"original_book_id"`
	Title          string         `db:"title" json:"title"`
	Author         string         `db:"author" json:"author"`
	Subject        string         `db:"subject" json:"subject"`
	Keywords       pq.StringArray `db:"keywords" json:"keywords"`
	PDFURL         string         `db:"pdf_url" json:"pdf_url"`
	CoverImageURL  string         `db:"cover_image_url" json:"cover_image_url"`
	Description    string         `db:"description" json:"description"`
	Status         Status         `db:"status" json:"status"`
	UploadedBy     string         `db:"uploaded_by" json:"uploaded_by"`
	DeletedAt      time.Time      `db:"deleted_at" json:"deleted_at"`
}

// LibraryVideoBinItem is a soft-deleted library video.
type LibraryVideoBinItem struct {
	ID              string         `db:"id" json:"id"`
	OriginalVideoID string         `db:"original_video_id" json:"original_video_id"`
	Title           string         `db:"title" json:"title"`
	Author          string         `db:"author" json:"author"`
	Subject         string         `db:"subject" json:"subject"`
	Keywords        pq.StringArray `db:"keywords" json:"keywords"`
	VideoURL        string         `db:"video_url" json:"video_url"`
	CoverImageURL   string         `db:"cover_image_url" json:"cover_image_url"`
	Description     string         `db:"description" json:"description"`
	Status          Status         `db:"status" json:"status"`
	UploadedBy      string         `db:"uploaded_by" json:"uploaded_by"`
	DeletedAt       time.Time      `db:"deleted_at" json:"deleted_at"`
}

// LibraryFilter narrows library searches. Search uses the full-text index;
// the per-field filters use case-insensitive substring match; Keyword
// matches against the keyword set. Filters combine with AND.
type LibraryFilter struct {
	Search    string
	Title     string
	Author    string
	Subject   string
	Keyword   string
	Status    *Status
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
