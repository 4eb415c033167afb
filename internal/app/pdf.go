package app

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// writeReportPDF renders the extraction results as a simple PDF: one heading
// per message, the body in a monospaced block and the signature shaded below
// it. Core fonts cover cp1252 only, so text goes through the translator.
func writeReportPDF(results []Result, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Signature extraction", true)
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	withSig := 0
	for _, r := range results {
		if r.Outcome.HasSignature {
			withSig++
		}
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Signature extraction", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Messages: %d, with signature: %d", len(results), withSig), "", 1, "L", false, 0, "")

	for _, r := range results {
		pdf.Ln(4)
		title := r.Message.Source
		if s := strings.TrimSpace(r.Message.Subject); s != "" {
			title += ": " + s
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, tr(title), "", "L", false)
		if r.Message.From != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("From: "+r.Message.From), "", "L", false)
		}

		pdf.SetFont("Courier", "", 9)
		pdf.MultiCell(0, 4, tr(r.Outcome.Body), "", "L", false)
		pdf.Ln(2)
		if r.Outcome.HasSignature {
			pdf.SetFillColor(235, 235, 235)
			pdf.MultiCell(0, 4, tr(r.Outcome.Signature), "L", "L", true)
		} else {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 5, "no signature", "", 1, "L", false, 0, "")
		}
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}
