package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/hylee/internal/archive"
)

// PDFWriter renders a year as a printable digest, one heading per day.
//
// The built-in Helvetica only covers cp1252, so Czech letters outside it are
// approximated. Set FontPath to a UTF-8 TrueType font for faithful output.
type PDFWriter struct {
	Dir      string
	Prefix   string
	FontPath string
}

// Path returns the file a year is written to.
func (w *PDFWriter) Path(year int) string {
	prefix := w.Prefix
	if prefix == "" {
		prefix = "hyena_"
	}
	return filepath.Join(w.Dir, prefix+strconv.Itoa(year)+".pdf")
}

// SaveYear implements archive.Sink.
func (w *PDFWriter) SaveYear(_ context.Context, rec archive.YearRecord) error {
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	pdf := w.build(rec)
	if err := pdf.OutputFileAndClose(w.Path(rec.Year)); err != nil {
		return fmt.Errorf("write pdf %d: %w", rec.Year, err)
	}
	return nil
}

func (w *PDFWriter) build(rec archive.YearRecord) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if w.FontPath != "" {
		family = "body"
		pdf.AddUTF8Font(family, "", w.FontPath)
		pdf.AddUTF8Font(family, "B", w.FontPath)
		tr = func(s string) string { return s }
	}
	pdf.SetTitle(fmt.Sprintf("Hyena %d", rec.Year), true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(family, "", 8)
		pdf.CellFormat(0, 8, strconv.Itoa(pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Hyena %d", rec.Year)), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%d dnů, %d zpráv", len(rec.Days), rec.Days.Bulletins())), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, day := range rec.Days.Dates() {
		pdf.SetFont(family, "B", 12)
		pdf.CellFormat(0, 8, day, "", 1, "L", false, 0, "")
		pdf.SetFont(family, "", 10)
		for _, b := range rec.Days[day] {
			pdf.MultiCell(0, 5, tr("- "+b), "", "L", false)
			pdf.Ln(1)
		}
		pdf.Ln(3)
	}
	return pdf
}
