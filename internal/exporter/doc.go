// Package exporter writes valuation runs to CSV and xlsx files.
//
// Two components:
//
// CSVExporter: the per-company mNAV table with a UTF-8 BOM for Excel
// compatibility, plus an aggregate-stats footer file.
//
// XLSXExporter: the same table as a styled workbook with a summary sheet.
//
// Both take a ValuationSet and derive file names from its as-of timestamp.
package exporter
