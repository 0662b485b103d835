package infra

// pdf.go — invoice receipt generation using go-pdf/fpdf.
// Renders an A5 receipt with:
//   - Clinic name header
//   - Invoice number, status and timestamp
//   - Patient line (when the invoice names one)
//   - Line items (description, qty, unit price, line total)
//   - Discount and tax figures
//   - Bold total plus the payments already applied
//
// The output file is saved to storagePath/invoice_{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clinipos/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateInvoicePDF renders an invoice (with preloaded lines and payments)
// to a PDF receipt. Returns the absolute path of the generated file.
func GenerateInvoicePDF(inv *model.Invoice, clinicName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("invoice_%s.pdf", strings.ReplaceAll(inv.InvoiceNo, "/", "_"))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, clinicName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Invoice info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, inv.InvoiceNo, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4, inv.InvoiceAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if inv.Patient != nil {
		pdf.CellFormat(contentW, 4,
			fmt.Sprintf("Patient: %s %s (%s)", inv.Patient.FirstName, inv.Patient.LastName, inv.Patient.MRN),
			"", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Line items ───────────────────────────────────────────────────────────
	col1 := contentW * 0.46 // description
	col2 := contentW * 0.12 // qty
	col3 := contentW * 0.20 // unit price
	col4 := contentW * 0.22 // line total

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for i := range inv.Lines {
		line := &inv.Lines[i]
		desc := line.Description
		if len(desc) > 28 {
			desc = desc[:27] + "…"
		}
		pdf.CellFormat(col1, 5, desc, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, line.Qty.String(), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, line.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, line.LineTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(col1+col2+col3, 5, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 5, inv.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	if !inv.DiscountTotal.IsZero() {
		pdf.CellFormat(col1+col2+col3, 5, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, "-"+inv.DiscountTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !inv.TaxTotal.IsZero() {
		pdf.CellFormat(col1+col2+col3, 5, "Tax:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, inv.TaxTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1+col2+col3, 7, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 7, inv.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Payments ─────────────────────────────────────────────────────────────
	if len(inv.Payments) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 8)
		for i := range inv.Payments {
			p := &inv.Payments[i]
			label := fmt.Sprintf("Paid (%s):", p.Method)
			pdf.CellFormat(col1+col2+col3, 4, label, "", 0, "L", false, 0, "")
			pdf.CellFormat(col4, 4, p.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "Thank you for your visit", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
