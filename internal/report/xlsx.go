package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"vpnvalidator/internal/pipeline"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// BuildXLSX renders a batch result into an XLSX workbook: one row per
// document on the results sheet plus an aggregate summary sheet.
func BuildXLSX(result *pipeline.BatchResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeResults(f, result); err != nil {
		return nil, err
	}
	if err := writeSummary(f, result.Summary); err != nil {
		return nil, err
	}

	// excelize creates "Sheet1" by default; drop it so the workbook
	// opens on the results sheet.
	_ = f.DeleteSheet("Sheet1")
	idx, _ := f.GetSheetIndex(resultsSheet)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeResults(f *excelize.File, result *pipeline.BatchResult) error {
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return fmt.Errorf("creating results sheet: %w", err)
	}

	headers := []string{
		"Document", "Run ID", "Status", "Valid", "Document Type",
		"Signatures", "Confidence", "Completeness", "Processing Time (s)", "Issues",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(resultsSheet, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for rowIdx, run := range result.Runs {
		row := rowIdx + 2
		write := func(col int, v interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(resultsSheet, cell, v)
		}

		write(1, run.Document)
		write(2, run.ID.String())
		write(9, run.ElapsedSeconds)
		if run.Verdict == nil {
			write(3, "error")
			write(4, false)
			continue
		}
		write(3, string(run.Verdict.Status))
		write(4, run.Verdict.IsValid)
		write(5, string(run.Verdict.DocumentType))
		write(6, run.Verdict.SignatureCount)
		write(7, run.Verdict.Confidence)
		write(8, run.Verdict.FieldCompleteness)
		write(10, strings.Join(run.Verdict.Issues, "; "))
	}
	return nil
}

func writeSummary(f *excelize.File, summary pipeline.BatchSummary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	rows := []struct {
		label string
		value interface{}
	}{
		{"Total documents", summary.Total},
		{"Approved", summary.Approved},
		{"Rejected", summary.Rejected},
		{"Errors", summary.Errors},
		{"Approval rate", summary.ApprovalRate},
		{"Average processing time (s)", summary.AvgElapsedSeconds},
		{"Generated at", summary.Timestamp.Format("2006-01-02 15:04:05")},
	}
	for i, r := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(summarySheet, labelCell, r.label); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		if err := f.SetCellValue(summarySheet, valueCell, r.value); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return nil
}
