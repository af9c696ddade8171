// Package receipt renders purchase receipts as PDF documents.
package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/fitcoach/backend/internal/domain/shared/valueobject"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
)

// ContentType is the MIME type of rendered receipts
const ContentType = "application/pdf"

// Line is one purchased item
type Line struct {
	Description string
	Quantity    int64
	Amount      valueobject.Money
}

// Receipt is the data printed on a receipt
type Receipt struct {
	Reference          string
	IssuedAt           time.Time
	CustomerEmail      string
	Lines              []Line
	Total              valueobject.Money
	Subscription       bool
	GiftRecipientEmail string
}

// Filename returns the attachment and archive file name
func (r Receipt) Filename() string {
	return fmt.Sprintf("receipt-%s.pdf", r.Reference)
}

// Renderer lays out receipts on A4 pages
type Renderer struct {
	businessName string
	footer       string
	locale       language.Tag
	compress     bool
}

// Option configures a Renderer
type Option func(*Renderer)

// WithFooter sets the line printed under the totals
func WithFooter(footer string) Option {
	return func(r *Renderer) { r.footer = footer }
}

// WithLocale sets the locale used to format amounts
func WithLocale(tag language.Tag) Option {
	return func(r *Renderer) { r.locale = tag }
}

// WithoutCompression leaves page streams uncompressed
func WithoutCompression() Option {
	return func(r *Renderer) { r.compress = false }
}

// NewRenderer creates a renderer printing businessName in the header
func NewRenderer(businessName string, opts ...Option) *Renderer {
	r := &Renderer{
		businessName: businessName,
		footer:       "Thank you for training with us.",
		locale:       language.English,
		compress:     true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the PDF bytes for rec
func (r *Renderer) Render(rec Receipt) ([]byte, error) {
	if rec.Reference == "" {
		return nil, errors.New("receipt: reference is required")
	}
	if len(rec.Lines) == 0 {
		return nil, errors.New("receipt: at least one line is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(rec.IssuedAt)
	pdf.SetModificationDate(rec.IssuedAt)
	pdf.SetTitle("Receipt "+rec.Reference, true)
	pdf.SetAuthor(r.businessName, true)
	// core fonts are cp1252; accented names would otherwise print as mojibake
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(r.businessName), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, "Receipt "+rec.Reference, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+rec.IssuedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	if rec.CustomerEmail != "" {
		pdf.CellFormat(0, 6, tr("Billed to: "+rec.CustomerEmail), "", 1, "L", false, 0, "")
	}
	if rec.GiftRecipientEmail != "" {
		pdf.CellFormat(0, 6, tr("Gift for: "+rec.GiftRecipientEmail), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(110, 8, "Item", "B", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "B", 0, "R", true, 0, "")
	pdf.CellFormat(45, 8, "Amount", "B", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, line := range rec.Lines {
		pdf.CellFormat(110, 8, tr(line.Description), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", line.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(45, 8, tr(line.Amount.Format(r.locale)), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(135, 10, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(45, 10, tr(rec.Total.Format(r.locale)), "T", 1, "R", false, 0, "")

	if rec.Subscription {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 6, "Recurring subscription. Renews automatically until cancelled.", "", 1, "L", false, 0, "")
	}
	if r.footer != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(r.footer), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt: render failed: %w", err)
	}
	return buf.Bytes(), nil
}
