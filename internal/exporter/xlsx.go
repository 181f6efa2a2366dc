package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"mnavcli/internal/services"
)

// XLSXExporter writes valuation workbooks with a company sheet and a
// summary sheet.
type XLSXExporter struct {
	dir    string
	logger *slog.Logger
}

// NewXLSXExporter creates an exporter writing into dir.
func NewXLSXExporter(dir string, logger *slog.Logger) *XLSXExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXExporter{dir: dir, logger: logger.With(slog.String("component", "exporter.xlsx"))}
}

const (
	companySheet = "Companies"
	summarySheet = "Summary"
)

// Export writes the workbook and returns the file path.
func (e *XLSXExporter) Export(set services.ValuationSet) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create exports directory: %w", err)
	}
	path := filepath.Join(e.dir, fmt.Sprintf("mnav_%s.xlsx", set.AsOf.UTC().Format("20060102_150405")))

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(companySheet)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create style: %w", err)
	}

	for col, header := range tableHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(companySheet, cell, header); err != nil {
			return "", fmt.Errorf("failed to write header: %w", err)
		}
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(tableHeaders), 1)
	f.SetCellStyle(companySheet, "A1", lastCol, headerStyle)

	for i, v := range set.Valuations {
		row := i + 2
		values := []interface{}{
			v.Ticker, v.TreasuryAsset,
			nullableCell(v.MarketCap), string(v.MarketCapSource),
			v.CryptoNAV, nullableCell(v.MNAV),
			v.OfficialMNAV, v.PendingMerger,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(companySheet, cell, value); err != nil {
				return "", fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"As Of", set.AsOf.UTC().Format("2006-01-02 15:04:05 UTC")},
		{"Companies", len(set.Valuations)},
		{"Aggregated", set.Stats.Count},
		{"Median mNAV", set.Stats.Median},
		{"Average mNAV", set.Stats.Average},
	}
	for i, pair := range summary {
		rowCell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, rowCell, &pair); err != nil {
			return "", fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("xlsx export written",
		slog.String("path", path),
		slog.Int("rows", len(set.Valuations)))
	return path, nil
}

// nullableCell maps a missing figure to an empty cell instead of zero.
func nullableCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
