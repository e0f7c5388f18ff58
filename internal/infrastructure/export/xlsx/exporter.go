package xlsx

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/render"
)

const (
	historySheet    = "History"
	parametersSheet = "Parameters"
)

var historyHeader = []string{"Report ID", "Date", "Risk Score", "Badge", "Overall Risk", "Summary"}

var historyColumnWidths = []float64{12, 22, 12, 14, 14, 60}

var parametersHeader = []string{"Report ID", "Parameter", "Value"}

// Exporter writes analysis history as a two-sheet workbook.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(w io.Writer, rows []domain.HistoryEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(historySheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	if _, err := f.NewSheet(parametersSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := writeHeader(f, historySheet, historyHeader, headerStyle); err != nil {
		return err
	}
	if err := writeHeader(f, parametersSheet, parametersHeader, headerStyle); err != nil {
		return err
	}
	for i, width := range historyColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(historySheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	paramRow := 2
	for i, entry := range rows {
		badge := render.RiskBadge(entry.RiskScore)
		date := ""
		if !entry.CreatedAt.IsZero() {
			date = entry.CreatedAt.Format("2006-01-02 15:04")
		}
		values := []any{
			entry.ID.String(),
			date,
			entry.RiskScore,
			badge.Label,
			entry.OverallRisk,
			strings.TrimSpace(entry.Analysis.Summary),
		}
		if err := writeRow(f, historySheet, i+2, values); err != nil {
			return err
		}

		names := make([]string, 0, len(entry.Parameters))
		for name := range entry.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := writeRow(f, parametersSheet, paramRow, []any{entry.ID.String(), name, entry.Parameters[name]}); err != nil {
				return err
			}
			paramRow++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
