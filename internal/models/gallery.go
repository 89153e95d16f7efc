package models

import "time"

// GalleryImage is a school gallery photo subject to moderation.
type GalleryImage struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	SchoolName string    `db:"school_name" json:"school_name"`
	Status     Status    `db:"status" json:"status"`
	UploadedBy string    `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GalleryFilter narrows gallery listings.
type GalleryFilter struct {
	Status     *Status
	SchoolName string
	UploadedBy string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// GalleryBinItem is a soft-deleted gallery image held in the recycle bin.
type GalleryBinItem struct {
	ID              string    `db:"id" json:"id"`
	OriginalImageID string    `db:"original_image_id" json:"original_image_id"`
	Title           string    `db:"title" json:"title"`
	ImageURL        string    `db:"image_url" json:"image_url"`
	SchoolName      string    `db:"school_name" json:"school_name"`
	Status          Status    `db:"status" json:"status"`
	UploadedBy      string    `db:"uploaded_by" json:"uploaded_by"`
	DeletedAt       time.Time `db:"deleted_at" json:"deleted_at"`
}
