package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mnavcli/internal/services"
)

// CSVExporter writes valuation tables as CSV files under a base directory.
type CSVExporter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVExporter creates an exporter writing into dir.
func NewCSVExporter(dir string, logger *slog.Logger) *CSVExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVExporter{dir: dir, logger: logger.With(slog.String("component", "exporter.csv"))}
}

// Export writes the per-company table and returns the file path. The file
// name carries the run's as-of timestamp.
func (e *CSVExporter) Export(set services.ValuationSet) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create exports directory: %w", err)
	}
	path := filepath.Join(e.dir, fmt.Sprintf("mnav_%s.csv", set.AsOf.UTC().Format("20060102_150405")))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	// UTF-8 BOM so Excel opens the file correctly.
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(tableHeaders); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	rows := tableRows(set)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv flush failed: %w", err)
	}

	e.logger.Info("csv export written",
		slog.String("path", path),
		slog.Int("rows", len(rows)))
	return path, nil
}
