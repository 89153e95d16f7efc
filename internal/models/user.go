package models

import "time"

// UserRole enumerates the RBAC roles. Admins moderate, instructors
// upload course content and invoices, schools manage gallery and
// library uploads, users consume.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleSchool     UserRole = "SCHOOL"
	RoleUser       UserRole = "USER"
)

// User is an account row.
type User struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Role            UserRole   `db:"role" json:"role"`
	SchoolID        *string    `db:"school_id" json:"school_id,omitempty"`
	Phone           string     `db:"phone" json:"phone,omitempty"`
	Address         string     `db:"address" json:"address,omitempty"`
	Bio             string     `db:"bio" json:"bio,omitempty"`
	ProfileImageURL string     `db:"profile_image_url" json:"profile_image_url,omitempty"`
	Approved        bool       `db:"approved" json:"approved"`
	Active          bool       `db:"active" json:"active"`
	LastLogin       *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter narrows account listings.
type UserFilter struct {
	Role      *UserRole
	Approved  *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination is the list-response page descriptor.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
