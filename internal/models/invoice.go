package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// InvoiceStatus is the invoice lifecycle state.
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "PENDING"
	InvoiceStatusApproved InvoiceStatus = "APPROVED"
	InvoiceStatusRejected InvoiceStatus = "REJECTED"
	InvoiceStatusPaid     InvoiceStatus = "PAID"
)

// InvoiceService is one billed line item on an invoice.
type InvoiceService struct {
	Title    string  `json:"title"`
	Duration string  `json:"duration"`
	Rate     float64 `json:"rate_per_video"`
	Amount   float64 `json:"total_amount"`
}

// InvoiceServices is the jsonb-backed list of invoice line items.
type InvoiceServices []InvoiceService

// Value implements driver.Valuer.
func (s InvoiceServices) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *InvoiceServices) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = nil
		return nil
	}
	return fmt.Errorf("unsupported invoice services source %T", src)
}

// Party holds billing identity details embedded on an invoice.
type Party struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	GSTNumber string `json:"gst_number,omitempty"`
}

// Value implements driver.Valuer.
func (p Party) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *Party) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = Party{}
		return nil
	}
	return fmt.Errorf("unsupported party source %T", src)
}

// Invoice is an instructor payout invoice.
type Invoice struct {
	ID              string          `db:"id" json:"id"`
	InvoiceNumber   string          `db:"invoice_number" json:"invoice_number"`
	InstructorID    string          `db:"instructor_id" json:"instructor_id"`
	Instructor      Party           `db:"instructor_details" json:"instructor_details"`
	Company         Party           `db:"company_details" json:"company_details"`
	Services        InvoiceServices `db:"services" json:"services"`
	SubTotal        float64         `db:"sub_total" json:"sub_total"`
	TaxRate         float64         `db:"tax_rate" json:"tax_rate"`
	TaxAmount       float64         `db:"tax_amount" json:"tax_amount"`
	Discount        float64         `db:"discount" json:"discount"`
	GrandTotal      float64         `db:"grand_total" json:"grand_total"`
	Status          InvoiceStatus   `db:"status" json:"status"`
	RejectionReason *string         `db:"rejection_reason" json:"rejection_reason,omitempty"`
	DecidedAt       *time.Time      `db:"decided_at" json:"decided_at,omitempty"`
	Notes           string          `db:"notes" json:"notes,omitempty"`
	Email           string          `db:"email" json:"email"`
	PDFURL          *string         `db:"pdf_url" json:"pdf_url,omitempty"`
	DueDate         time.Time       `db:"due_date" json:"due_date"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	InstructorID string
	Status       *InvoiceStatus
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
