package reporter

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

// ExportPDF writes the report as a printable PDF: a header page with run
// totals followed by one table section per duplicate group.
func ExportPDF(report Report, filename string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Image Duplicate Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Image Duplicate Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Generated: %s", report.Timestamp), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	summary := [][2]string{
		{"Images analyzed", fmt.Sprintf("%d", report.TotalFiles)},
		{"Fingerprint", fmt.Sprintf("%s (%d bits)", report.Algorithm, report.Bits)},
		{"Visual duplicate groups", fmt.Sprintf("%d", len(report.VisualGroups))},
		{"Similar name pairs", fmt.Sprintf("%d", len(report.SimilarPairs))},
		{"Analysis duration", fmt.Sprintf("%.2fs", report.AnalysisDuration)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range summary {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, row[1], "1", 1, "L", false, 0, "")
	}

	for i, group := range report.VisualGroups {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Group %d: %s (%d files, max distance %d)",
			i+1, group.BaseName, len(group.Files), group.MaxDistance), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(90, 6, "File", "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, "Size", "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, "Digest", "1", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, f := range group.Files {
			pdf.CellFormat(90, 6, truncate(f.Name, 55), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, formatSize(f.Size), "1", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, truncate(f.Digest, 40), "1", 1, "L", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filename); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
