package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"mnavcli/pkg/contracts/domain"
)

// SheetsLoader reads the tracked-company roster from a Google Sheet.
//
// Expected column layout (one company per row, header row excluded by the
// read range):
//
//	A  Ticker          B  Name             C  Exchange
//	D  Currency        E  TreasuryAsset    F  Holdings
//	G  SharesForMNAV   H  CashReserves     I  TotalDebt
//	J  PreferredEquity K  RestrictedCash   L  OtherInvestments
//	M  OfficialMNAV    N  PendingMerger    O  DetailsJSON
//
// Column O carries the nested structures (secondary holdings, crypto
// investments, convertible notes, warrants) as a JSON object, which keeps
// the sheet editable by hand while still round-tripping the full model.
type SheetsLoader struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
	logger        *slog.Logger
}

// companyDetails is the schema of the DetailsJSON column.
type companyDetails struct {
	SecondaryHoldings []domain.SecondaryHolding  `json:"secondary_holdings,omitempty"`
	CryptoInvestments []domain.CryptoInvestment  `json:"crypto_investments,omitempty"`
	ConvertibleNotes  []domain.ConvertibleNote   `json:"convertible_notes,omitempty"`
	Warrants          []domain.Warrant           `json:"warrants,omitempty"`
}

// NewSheetsLoader builds a loader over the Sheets API using the given
// credentials option.
func NewSheetsLoader(ctx context.Context, credentials option.ClientOption, spreadsheetID, readRange string, logger *slog.Logger) (*SheetsLoader, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	service, err := sheets.NewService(ctx, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetsLoader{
		service:       service,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		logger:        logger.With(slog.String("component", "registry.sheets")),
	}, nil
}

// Load fetches and parses the company roster. Rows that fail to parse are
// skipped with a warning so one malformed row cannot take down the whole
// roster.
func (l *SheetsLoader) Load(ctx context.Context) ([]domain.Company, error) {
	resp, err := l.service.Spreadsheets.Values.Get(l.spreadsheetID, l.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read company sheet: %w", err)
	}

	companies := make([]domain.Company, 0, len(resp.Values))
	for i, row := range resp.Values {
		company, err := parseCompanyRow(row)
		if err != nil {
			l.logger.WarnContext(ctx, "skipping malformed company row",
				slog.Int("row", i+2), // read range starts at row 2
				slog.String("error", err.Error()),
			)
			continue
		}
		companies = append(companies, company)
	}

	l.logger.InfoContext(ctx, "company roster loaded from sheet",
		slog.Int("rows", len(resp.Values)),
		slog.Int("companies", len(companies)),
	)
	return companies, nil
}

func parseCompanyRow(row []interface{}) (domain.Company, error) {
	var c domain.Company

	c.Ticker = strings.ToUpper(strings.TrimSpace(cellString(row, 0)))
	if c.Ticker == "" {
		return c, fmt.Errorf("missing ticker")
	}
	c.Name = cellString(row, 1)
	c.Exchange = cellString(row, 2)
	c.Currency = strings.ToUpper(cellString(row, 3))
	c.TreasuryAsset = strings.ToUpper(cellString(row, 4))
	if c.TreasuryAsset == "" {
		return c, fmt.Errorf("missing treasury asset")
	}

	var err error
	if c.Holdings, err = cellFloat(row, 5); err != nil {
		return c, fmt.Errorf("holdings: %w", err)
	}
	if c.SharesForMNAV, err = cellFloat(row, 6); err != nil {
		return c, fmt.Errorf("shares_for_mnav: %w", err)
	}
	if c.CashReserves, err = cellFloat(row, 7); err != nil {
		return c, fmt.Errorf("cash_reserves: %w", err)
	}
	if c.TotalDebt, err = cellFloat(row, 8); err != nil {
		return c, fmt.Errorf("total_debt: %w", err)
	}
	if c.PreferredEquity, err = cellFloat(row, 9); err != nil {
		return c, fmt.Errorf("preferred_equity: %w", err)
	}
	if c.RestrictedCash, err = cellFloat(row, 10); err != nil {
		return c, fmt.Errorf("restricted_cash: %w", err)
	}
	if c.OtherInvestments, err = cellFloat(row, 11); err != nil {
		return c, fmt.Errorf("other_investments: %w", err)
	}

	if raw := cellString(row, 12); raw != "" {
		official, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return c, fmt.Errorf("official_mnav: %w", err)
		}
		c.OfficialMNAV = &official
	}
	c.PendingMerger = cellBool(row, 13)

	if raw := cellString(row, 14); raw != "" {
		var details companyDetails
		if err := json.Unmarshal([]byte(raw), &details); err != nil {
			return c, fmt.Errorf("details json: %w", err)
		}
		c.SecondaryHoldings = details.SecondaryHoldings
		c.CryptoInvestments = details.CryptoInvestments
		c.ConvertibleNotes = details.ConvertibleNotes
		c.Warrants = details.Warrants
	}

	return c, nil
}

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	s, _ := row[idx].(string)
	return strings.TrimSpace(s)
}

// cellFloat parses a numeric cell, tolerating thousands separators and
// treating empty cells as zero.
func cellFloat(row []interface{}, idx int) (float64, error) {
	raw := cellString(row, idx)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

func cellBool(row []interface{}, idx int) bool {
	switch strings.ToLower(cellString(row, idx)) {
	case "true", "yes", "1":
		return true
	}
	return false
}
