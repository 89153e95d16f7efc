package models

import "time"

// School is a partner school registration request and its moderation state.
type School struct {
	ID           string    `db:"id" json:"id"`
	SchoolName   string    `db:"school_name" json:"school_name"`
	SchoolCode   string    `db:"school_code" json:"school_code"`
	HeadOfSchool string    `db:"head_of_school" json:"head_of_school"`
	Address      string    `db:"address" json:"address"`
	Contact      string    `db:"contact" json:"contact"`
	Message      *string   `db:"message" json:"message,omitempty"`
	Status       Status    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SchoolFilter narrows school listings.
type SchoolFilter struct {
	Status    *Status
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
