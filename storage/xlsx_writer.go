package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"nypd-dashboard/models"
)

// Sheet names of the summary workbook, in order.
const (
	SheetOverview  = "Overview"
	SheetOffenses  = "Offenses"
	SheetBoroughs  = "Boroughs"
	SheetPrecincts = "Precincts"
	SheetHourly    = "Hourly"
	SheetWeekdays  = "Weekdays"
	SheetMissing   = "Missing"
)

// WriteSummaryXLSX writes s as a workbook with one sheet per aggregate.
func WriteSummaryXLSX(w io.Writer, s *models.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
	}{
		{SheetOverview, []interface{}{"Metric", "Value"}, [][]interface{}{
			{"Rows", s.Rows},
			{"Columns", s.Columns},
			{"Dropped without location", s.DroppedRows},
		}},
		{SheetOffenses, []interface{}{"Offense", "Complaints"}, countRows(s.TopOffenses)},
		{SheetBoroughs, []interface{}{"Borough", "Complaints"}, countRows(s.Boroughs)},
		{SheetPrecincts, []interface{}{"Precinct", "Complaints"}, countRows(s.Precincts)},
		{SheetHourly, []interface{}{"Hour", "Complaints"}, hourRows(s.Hourly)},
		{SheetWeekdays, []interface{}{"Weekday", "Complaints"}, countRows(s.Weekdays)},
		{SheetMissing, []interface{}{"Column", "Missing", "Percent"}, missingRows(s.Missing)},
	}

	for _, sh := range sheets {
		if sh.name != SheetOverview {
			if _, err := f.NewSheet(sh.name); err != nil {
				return fmt.Errorf("xlsx: add sheet %s: %w", sh.name, err)
			}
		}
		if err := writeSheet(f, sh.name, sh.header, sh.rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

// SaveSummaryXLSX writes the summary workbook to path.
func SaveSummaryXLSX(path string, s *models.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("xlsx: create file %q: %w", path, err)
	}
	if err := WriteSummaryXLSX(out, s); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", sheet, i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}

func countRows(counts []models.CategoryCount) [][]interface{} {
	out := make([][]interface{}, len(counts))
	for i, c := range counts {
		out[i] = []interface{}{c.Category, c.Count}
	}
	return out
}

func hourRows(hours []models.HourCount) [][]interface{} {
	out := make([][]interface{}, len(hours))
	for i, h := range hours {
		out[i] = []interface{}{h.Hour, h.Count}
	}
	return out
}

func missingRows(stats []models.MissingStat) [][]interface{} {
	out := make([][]interface{}, len(stats))
	for i, s := range stats {
		out[i] = []interface{}{s.Column, s.Missing, s.Percent}
	}
	return out
}
