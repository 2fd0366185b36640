package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX export.
const (
	SheetSummary    = "summary"
	SheetDaily      = "daily"
	SheetActivities = "activities"
)

// BuildWeeklyXLSX renders w as a workbook with summary, daily and activities sheets.
func BuildWeeklyXLSX(w Weekly) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("naming summary sheet: %w", err)
	}
	for _, name := range []string{SheetDaily, SheetActivities} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("creating %s sheet: %w", name, err)
		}
	}

	_ = f.SetCellValue(SheetSummary, "A1", "Weekly Carbon Footprint")
	_ = f.SetCellValue(SheetSummary, "A3", "User")
	_ = f.SetCellValue(SheetSummary, "B3", w.UserID)
	_ = f.SetCellValue(SheetSummary, "A4", "Date")
	_ = f.SetCellValue(SheetSummary, "B4", w.View.Today.String())
	_ = f.SetCellValue(SheetSummary, "A5", "Generated")
	_ = f.SetCellValue(SheetSummary, "B5", w.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(SheetSummary, "A6", "Today (kg CO2)")
	_ = f.SetCellValue(SheetSummary, "B6", w.View.TodayTotal)
	_ = f.SetCellValue(SheetSummary, "A7", "Week (kg CO2)")
	_ = f.SetCellValue(SheetSummary, "B7", w.View.WeekTotal)
	_ = f.SetCellValue(SheetSummary, "A8", "Lifetime (kg CO2)")
	_ = f.SetCellValue(SheetSummary, "B8", w.Stats.TotalKg)
	_ = f.SetCellValue(SheetSummary, "A9", "Weekly average (kg CO2)")
	_ = f.SetCellValue(SheetSummary, "B9", w.Stats.WeeklyAverageKg)
	_ = f.SetCellValue(SheetSummary, "A10", "Trees needed")
	_ = f.SetCellValue(SheetSummary, "B10", w.Stats.TreesNeeded)
	_ = f.SetCellValue(SheetSummary, "A11", "Streak (days)")
	_ = f.SetCellValue(SheetSummary, "B11", w.Stats.Streak)

	_ = f.SetCellValue(SheetSummary, "A13", "Category")
	_ = f.SetCellValue(SheetSummary, "B13", "Today (kg CO2)")
	for i, c := range w.Categories() {
		row := i + 14
		_ = f.SetCellValue(SheetSummary, fmt.Sprintf("A%d", row), string(c.Category))
		_ = f.SetCellValue(SheetSummary, fmt.Sprintf("B%d", row), c.Kg)
	}

	_ = f.SetCellValue(SheetDaily, "A1", "Day")
	_ = f.SetCellValue(SheetDaily, "B1", "kg CO2")
	for i, d := range w.View.WeeklySeries {
		row := i + 2
		_ = f.SetCellValue(SheetDaily, fmt.Sprintf("A%d", row), d.Date.String())
		_ = f.SetCellValue(SheetDaily, fmt.Sprintf("B%d", row), d.Kg)
	}

	_ = f.SetCellValue(SheetActivities, "A1", "ID")
	_ = f.SetCellValue(SheetActivities, "B1", "Date")
	_ = f.SetCellValue(SheetActivities, "C1", "Category")
	_ = f.SetCellValue(SheetActivities, "D1", "Activity")
	_ = f.SetCellValue(SheetActivities, "E1", "kg CO2")
	for i, a := range w.Activities {
		row := i + 2
		_ = f.SetCellValue(SheetActivities, fmt.Sprintf("A%d", row), string(a.ID))
		_ = f.SetCellValue(SheetActivities, fmt.Sprintf("B%d", row), a.Date.String())
		_ = f.SetCellValue(SheetActivities, fmt.Sprintf("C%d", row), string(a.Category))
		_ = f.SetCellValue(SheetActivities, fmt.Sprintf("D%d", row), describe(a))
		_ = f.SetCellValue(SheetActivities, fmt.Sprintf("E%d", row), a.Emission)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
