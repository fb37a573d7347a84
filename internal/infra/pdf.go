package infra

// pdf.go renders thermal-paper receipts (74mm wide) with go-pdf/fpdf.
// Layout: store header, display id and timestamp, item table, totals,
// tendered amount with change or remaining balance, footer.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptLine is one printed row.
type ReceiptLine struct {
	Name     string
	Quantity int
	Subtotal decimal.Decimal
}

// ReceiptDoc carries everything printed on a receipt. Services build it
// from a sale or a service transaction.
type ReceiptDoc struct {
	StoreName string
	Header    string // address / phone line under the store name
	Footer    string
	Title     string // "Sales receipt" | "Service receipt"
	DisplayID string
	IssuedAt  time.Time
	Customer  string
	Extra     []string // e.g. device and IMEI on service receipts
	Lines     []ReceiptLine
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Change    decimal.Decimal
	Remaining decimal.Decimal
	Method    string
	Voided    bool
}

const receiptWidth = 74.0

// RenderReceiptPDF writes the receipt to w.
func RenderReceiptPDF(w io.Writer, doc ReceiptDoc) error {
	// Height grows with the number of rows so long receipts do not paginate.
	height := 95.0 + float64(len(doc.Lines)+len(doc.Extra))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: receiptWidth, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(doc.StoreName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	if doc.Header != "" {
		pdf.CellFormat(contentW, 4, tr(doc.Header), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, doc.DisplayID, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, doc.IssuedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if doc.Customer != "" {
		pdf.CellFormat(contentW, 4, tr("Customer: "+doc.Customer), "", 1, "L", false, 0, "")
	}
	for _, e := range doc.Extra {
		pdf.CellFormat(contentW, 4, tr(e), "", 1, "L", false, 0, "")
	}
	if doc.Voided {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "*** VOID ***", "", 1, "C", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ─────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, l := range doc.Lines {
		name := l.Name
		if r := []rune(name); len(r) > 22 {
			name = string(r[:21]) + "."
		}
		pdf.CellFormat(col1, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", l.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, Money(l.Subtotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	row := func(label string, v decimal.Decimal) {
		pdf.CellFormat(col1+col2, 4, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, Money(v), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7)
	row("Subtotal:", doc.Subtotal)
	if !doc.Discount.IsZero() {
		row("Discount:", doc.Discount.Neg())
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, Money(doc.Total), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	row("Paid ("+doc.Method+"):", doc.Paid)
	if doc.Change.IsPositive() {
		row("Change:", doc.Change)
	}
	if doc.Remaining.IsPositive() {
		pdf.SetFont("Helvetica", "B", 7)
		row("Balance due:", doc.Remaining)
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	if doc.Footer != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.MultiCell(contentW, 4, tr(doc.Footer), "", "C", false)
	}

	return pdf.Output(w)
}

// WriteReceiptPDF renders doc into dir/<display id>.pdf and returns the file name.
func WriteReceiptPDF(doc ReceiptDoc, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	name := doc.DisplayID + ".pdf"
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := RenderReceiptPDF(f, doc); err != nil {
		f.Close()
		return "", fmt.Errorf("pdf: render: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return name, nil
}

// Money formats an amount with thousands separators and no decimals when
// the amount is whole, e.g. 1.250.000 (rupiah style) or 12.500,50.
func Money(d decimal.Decimal) string {
	neg := d.IsNegative()
	d = d.Abs()
	whole := d.Truncate(0)
	frac := d.Sub(whole)

	s := whole.String()
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, s[i])
	}
	res := "Rp " + string(out)
	if !frac.IsZero() {
		res += fmt.Sprintf(",%02d", frac.Shift(2).Round(0).IntPart())
	}
	if neg {
		res = "-" + res
	}
	return res
}
