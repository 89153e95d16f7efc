package models

import "time"

// DonationStatus is the payment state of a donation.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "PENDING"
	DonationStatusSucceeded DonationStatus = "SUCCEEDED"
	DonationStatusFailed    DonationStatus = "FAILED"
)

// Donation records a donor contribution processed via the payment gateway.
type Donation struct {
	ID          string         `db:"id" json:"id"`
	DonorID     *string        `db:"donor_id" json:"donor_id,omitempty"`
	DonorName   string         `db:"donor_name" json:"donor_name"`
	AmountCents int64          `db:"amount_cents" json:"amount_cents"`
	Currency    string         `db:"currency" json:"currency"`
	Message     string         `db:"message" json:"message,omitempty"`
	Status      DonationStatus `db:"status" json:"status"`
	SessionID   string         `db:"session_id" json:"session_id"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// DonationFilter narrows donation listings.
type DonationFilter struct {
	Status    *DonationStatus
	DonorID   string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
