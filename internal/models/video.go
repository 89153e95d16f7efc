package models

import "time"

// Video is an instructor course video awaiting or past moderation.
type Video struct {
	ID              string     `db:"id" json:"id"`
	CourseName      string     `db:"course_name" json:"course_name"`
	CourseContent   string     `db:"course_content" json:"course_content"`
	VideoURL        string     `db:"video_url" json:"video_url"`
	ThumbnailURL    string     `db:"thumbnail_url" json:"thumbnail_url"`
	Description     string     `db:"description" json:"description"`
	Status          Status     `db:"status" json:"status"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	RejectedAt      *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	ApprovedAt      *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	UploadedBy      string     `db:"uploaded_by" json:"uploaded_by"`
	Sequence        int        `db:"sequence" json:"sequence"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// VideoBinItem is a soft-deleted video held in the recycle bin.
type VideoBinItem struct {
	ID              string    `db:"id" json:"id"`
	OriginalVideoID string    `db:"original_video_id" json:"original_video_id"`
	CourseName      string    `db:"course_name" json:"course_name"`
	CourseContent   string    `db:"course_content" json:"course_content"`
	VideoURL        string    `db:"video_url" json:"video_url"`
	ThumbnailURL    string    `db:"thumbnail_url" json:"thumbnail_url"`
	Description     string    `db:"description" json:"description"`
	Status          Status    `db:"status" json:"status"`
	UploadedBy      string    `db:"uploaded_by" json:"uploaded_by"`
	DeletedAt       time.Time `db:"deleted_at" json:"deleted_at"`
}

// VideoFilter narrows video listings.
type VideoFilter struct {
	Status     *Status
	UploadedBy string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
