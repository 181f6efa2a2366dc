package exporter

import (
	"fmt"

	"mnavcli/internal/services"
)

// tableHeaders is the column layout shared by the CSV and xlsx exports.
var tableHeaders = []string{
	"Ticker", "Treasury Asset", "Market Cap (USD)", "Cap Source",
	"Crypto NAV (USD)", "mNAV", "Official", "Pending Merger",
}

// tableRows flattens a valuation set into string records.
func tableRows(set services.ValuationSet) [][]string {
	rows := make([][]string, 0, len(set.Valuations))
	for _, v := range set.Valuations {
		rows = append(rows, []string{
			v.Ticker,
			v.TreasuryAsset,
			formatNullable(v.MarketCap, "%.0f"),
			string(v.MarketCapSource),
			fmt.Sprintf("%.0f", v.CryptoNAV),
			formatNullable(v.MNAV, "%.4f"),
			formatBool(v.OfficialMNAV),
			formatBool(v.PendingMerger),
		})
	}
	return rows
}

// formatNullable renders a nullable figure, empty when absent.
func formatNullable(v *float64, format string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(format, *v)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
