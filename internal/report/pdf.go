package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// BuildWeeklyPDF renders w as a single A4 page. Core fonts only cover
// Latin-1, so units are written as "kg CO2".
func BuildWeeklyPDF(w Weekly) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Weekly Carbon Footprint")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("User: %s", w.UserID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", w.View.Today))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", w.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Today: %.2f kg CO2", w.View.TodayTotal))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("This week: %.2f kg CO2", w.View.WeekTotal))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Lifetime: %.2f kg CO2 (weekly average %.2f)", w.Stats.TotalKg, w.Stats.WeeklyAverageKg))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Trees needed: %d", w.Stats.TreesNeeded))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Day", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "kg CO2", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, d := range w.View.WeeklySeries {
		pdf.CellFormat(40, 6, d.Date.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", d.Kg), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(w.Activities) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(30, 6, "Date", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Category", "1", 0, "C", false, 0, "")
		pdf.CellFormat(90, 6, "Activity", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "kg CO2", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, a := range w.Activities {
			pdf.CellFormat(30, 6, a.Date.String(), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, string(a.Category), "1", 0, "L", false, 0, "")
			pdf.CellFormat(90, 6, describe(a), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", a.Emission), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}
