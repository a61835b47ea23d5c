package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	reportSheet  = "Documents"
	summarySheet = "Summary"
)

var reportHeader = []any{"File", "Status", "Method", "Headings", "Duration (ms)", "Error kind", "Error", "Output"}

// WriteReport saves a spreadsheet describing the run: one row per processed
// document plus a summary sheet.
func WriteReport(path string, s *Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(reportSheet, "A1", "H1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, r := range s.Results {
		status := "ok"
		var msg string
		if r.Err != nil {
			status = "failed"
			msg = r.Err.Error()
		}
		row := []any{r.Name, status, r.Method, r.Headings, r.Duration.Milliseconds(), string(r.Kind), msg, r.OutputPath}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(reportSheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(reportSheet, "G", "H", 60); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	summary := [][]any{
		{"Run ID", s.RunID.String()},
		{"Input", s.InputDir},
		{"Output", s.OutputDir},
		{"Workers", s.Workers},
		{"Documents", s.Total},
		{"Succeeded", s.Succeeded},
		{"Failed", s.Failed()},
		{"Skipped", s.Skipped},
		{"Elapsed (ms)", s.Elapsed.Milliseconds()},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}
