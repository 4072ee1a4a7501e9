package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/profpocket/pocket-api/internal/models"
)

// RenderClassReportPDF lays out a class report as a one-page summary:
// the health block, the note counts, the top needs table and the
// suggestion list.
func RenderClassReportPDF(report *models.ClassReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf requires a report")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(report.ClassName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	generated := time.UnixMilli(report.GeneratedAt).UTC().Format("2006-01-02 15:04")
	pdf.CellFormat(0, 6, "Generated "+generated+" UTC", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Health %d/100  -  trend %s", report.Health, report.Trend), "", 1, "", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	counts := report.Last30Counts
	pdf.CellFormat(0, 7, fmt.Sprintf("Last 30 days: %d evolution, %d need, %d repertoire, %d plan",
		counts.Evolution, counts.Need, counts.Repertoire, counts.Plan), "", 1, "", false, 0, "")
	pdf.Ln(3)

	if len(report.TopNeeds) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(120, 8, "Student", "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 8, "Need notes (14 days)", "1", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, need := range report.TopNeeds {
			pdf.CellFormat(120, 7, need.StudentName, "1", 0, "", false, 0, "")
			pdf.CellFormat(70, 7, fmt.Sprintf("%d", need.Count), "1", 1, "C", false, 0, "")
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 8, "Suggestions", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, suggestion := range report.Suggestions {
		pdf.MultiCell(0, 6, "- "+suggestion, "", "", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
