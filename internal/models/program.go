package models

import "time"

// ProgramRequest is a school's application for a teaching programme and
// its moderation state.
type ProgramRequest struct {
	ID               string    `db:"id" json:"id"`
	SchoolID         string    `db:"school_id" json:"school_id"`
	SchoolName       string    `db:"school_name" json:"school_name"`
	ContactPerson    string    `db:"contact_person" json:"contact_person"`
	Email            string    `db:"email" json:"email"`
	Phone            string    `db:"phone" json:"phone"`
	ProgramRequested string    `db:"program_requested" json:"program_requested"`
	Message          *string   `db:"message" json:"message,omitempty"`
	Status           Status    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramRequestFilter narrows programme request listings.
type ProgramRequestFilter struct {
	SchoolID string
	Status   *Status
	Page     int
	PageSize int
}
