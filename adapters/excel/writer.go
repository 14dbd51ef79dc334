package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a report workbook
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// ReportWriter writes sheets into an xlsx workbook
type ReportWriter struct {
	sheets []Sheet
}

// NewReportWriter creates a writer for the given sheets, in order
func NewReportWriter(sheets ...Sheet) *ReportWriter {
	return &ReportWriter{sheets: sheets}
}

// Workbook builds the workbook in memory; the caller closes it
func (w *ReportWriter) Workbook() (*excelize.File, error) {
	if len(w.sheets) == 0 {
		return nil, fmt.Errorf("report has no sheets")
	}

	f := excelize.NewFile()
	for i, sheet := range w.sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeSheet(f, sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write sheet %s: %w", sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// SaveAs writes the workbook to path
func (w *ReportWriter) SaveAs(path string) error {
	f, err := w.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	for i, h := range sheet.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet.Name, cell, h); err != nil {
			return err
		}
	}
	for r, row := range sheet.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet.Name, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
