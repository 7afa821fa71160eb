// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

const (
	documentsSheet = "Documents"
	failedSheet    = "Failed"
)

// WriteXLSX writes the batch outcomes as a workbook with a Documents and a
// Failed sheet.
func WriteXLSX(path string, report clinical.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	// the default workbook starts with Sheet1
	if err := f.SetSheetName("Sheet1", documentsSheet); err != nil {
		return fmt.Errorf("xlsx rename sheet: %w", err)
	}
	if _, err := f.NewSheet(failedSheet); err != nil {
		return fmt.Errorf("xlsx new sheet: %w", err)
	}

	writeRow(f, documentsSheet, 1, "File", "Document Type", "Confidence", "Chunks", "Folder")
	for i, d := range report.Processed {
		writeRow(f, documentsSheet, i+2, d.File, string(d.Type), d.Confidence, d.Chunks, filepath.Base(d.Folder))
	}
	_ = f.SetColWidth(documentsSheet, "A", "A", 40)
	_ = f.SetColWidth(documentsSheet, "B", "B", 20)
	_ = f.SetColWidth(documentsSheet, "C", "D", 12)
	_ = f.SetColWidth(documentsSheet, "E", "E", 48)

	writeRow(f, failedSheet, 1, "File", "Error")
	for i, fd := range report.Failed {
		writeRow(f, failedSheet, i+2, fd.File, fd.Error)
	}
	_ = f.SetColWidth(failedSheet, "A", "A", 40)
	_ = f.SetColWidth(failedSheet, "B", "B", 80)

	idx, _ := f.GetSheetIndex(documentsSheet)
	f.SetActiveSheet(idx)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("xlsx dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
