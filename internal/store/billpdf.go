package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// WriteBillPDF renders an archival PDF copy of a bill record into dir and
// returns its path. The page is sized like the physical ticket (80mm wide)
// so the archive mirrors what the customer received.
func WriteBillPDF(record BillRecord, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create bill PDF directory: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 80, Ht: 200},
	})
	pdf.SetMargins(4, 6, 4)
	pdf.AddPage()

	pdf.SetFont("Courier", "B", 11)
	pdf.CellFormat(0, 5, "BILL", "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "", 9)
	if record.Location != "" {
		pdf.CellFormat(0, 4, record.Location, "", 1, "L", false, 0, "")
	}
	if record.Table != "" {
		pdf.CellFormat(0, 4, "TABLE: "+record.Table, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 4, record.PrintedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, item := range record.Items {
		label := fmt.Sprintf("%dx %s", item.Quantity, item.Name)
		pdf.CellFormat(50, 4, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 4, item.LineTotal().StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Courier", "B", 9)
	pdf.CellFormat(50, 4, "SUBTOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 4, record.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	if !record.Surcharge.IsZero() {
		pdf.CellFormat(50, 4, "SURCHARGE", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 4, record.Surcharge.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.CellFormat(50, 4, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 4, record.Total.StringFixed(2), "", 1, "R", false, 0, "")

	path := filepath.Join(dir, fmt.Sprintf("bill_%s.pdf", record.ID))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write bill PDF: %w", err)
	}
	return path, nil
}
