package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// InvoiceLine is one billed item on an invoice.
type InvoiceLine struct {
	Title    string
	Duration string
	Rate     float64
	Amount   float64
}

// InvoiceDocument carries everything needed to render an invoice PDF.
type InvoiceDocument struct {
	Number          string
	Date            time.Time
	DueDate         time.Time
	CompanyName     string
	CompanyEmail    string
	CompanyAddress  string
	InstructorName  string
	InstructorEmail string
	Lines           []InvoiceLine
	SubTotal        float64
	TaxRate         float64
	TaxAmount       float64
	Discount        float64
	GrandTotal      float64
	Status          string
	DecisionDate    *time.Time
	RejectionReason string
	Notes           string
}

// InvoicePDF renders invoice documents.
type InvoicePDF struct{}

// NewInvoicePDF constructs an invoice PDF renderer.
func NewInvoicePDF() *InvoicePDF {
	return &InvoicePDF{}
}

// Render produces the PDF bytes for the given invoice.
func (e *InvoicePDF) Render(doc InvoiceDocument) ([]byte, error) {
	if doc.Number == "" {
		return nil, fmt.Errorf("invoice number required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Invoice ID: %s", doc.Number), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Date: %s    Due: %s",
		doc.Date.Format("2006-01-02"), doc.DueDate.Format("2006-01-02")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, title, "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
	}

	section("Company Details")
	pdf.CellFormat(0, 6, fmt.Sprintf("Name: %s", orNA(doc.CompanyName)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Email: %s", orNA(doc.CompanyEmail)), "", 1, "", false, 0, "")
	if doc.CompanyAddress != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Address: %s", doc.CompanyAddress), "", 1, "", false, 0, "")
	}
	pdf.Ln(2)

	section("Instructor Details")
	pdf.CellFormat(0, 6, fmt.Sprintf("Name: %s", orNA(doc.InstructorName)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Email: %s", orNA(doc.InstructorEmail)), "", 1, "", false, 0, "")
	pdf.Ln(2)

	section("Services")
	pdf.SetFont("Arial", "B", 10)
	widths := []float64{80, 30, 40, 40}
	headers := []string{"Title", "Duration", "Rate", "Amount"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, line := range doc.Lines {
		pdf.CellFormat(widths[0], 7, line.Title, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, line.Duration, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.2f", line.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", line.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Subtotal: %.2f", doc.SubTotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Tax (%.1f%%): %.2f", doc.TaxRate, doc.TaxAmount), "", 1, "R", false, 0, "")
	if doc.Discount > 0 {
		pdf.CellFormat(0, 6, fmt.Sprintf("Discount: -%.2f", doc.Discount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Grand Total: %.2f", doc.GrandTotal), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	section("Status")
	statusLine := fmt.Sprintf("Status: %s", doc.Status)
	if doc.DecisionDate != nil {
		statusLine += fmt.Sprintf(" (%s)", doc.DecisionDate.Format("2006-01-02"))
	}
	pdf.CellFormat(0, 6, statusLine, "", 1, "", false, 0, "")
	if doc.RejectionReason != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Rejection Reason: %s", doc.RejectionReason), "", 1, "", false, 0, "")
	}

	if doc.Notes != "" {
		pdf.Ln(2)
		section("Notes")
		pdf.MultiCell(0, 6, doc.Notes, "", "", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
