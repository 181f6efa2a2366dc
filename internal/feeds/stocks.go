package feeds

import (
	"context"
	"net/url"
	"strings"

	"mnavcli/internal/config"
	"mnavcli/pkg/contracts/domain"
)

// StockFeed fetches equity quotes.
//
// Upstream contract: GET {base}/v1/quotes?tickers=MSTR,SMLR returning
//
//	{"quotes":[{"ticker":"MSTR","price":368.4,"market_cap":104300000000}]}
//
// Price is in the ticker's trading currency; market_cap, when the upstream
// reports one, is USD.
type StockFeed struct {
	client *client
}

// NewStockFeed creates a client for the stock quote endpoint.
func NewStockFeed(cfg config.FeedEndpoint) *StockFeed {
	return &StockFeed{client: newClient(cfg)}
}

type stockResponse struct {
	Quotes []struct {
		Ticker    string  `json:"ticker"`
		Price     float64 `json:"price"`
		MarketCap float64 `json:"market_cap"`
	} `json:"quotes"`
}

// Fetch returns quotes for the requested tickers. Tickers without a positive
// price are dropped.
func (f *StockFeed) Fetch(ctx context.Context, tickers []string) (map[string]domain.StockQuote, error) {
	if len(tickers) == 0 {
		return map[string]domain.StockQuote{}, nil
	}

	var resp stockResponse
	query := url.Values{"tickers": {strings.Join(tickers, ",")}}
	if err := f.client.getJSON(ctx, "/v1/quotes", query, &resp); err != nil {
		return nil, err
	}

	quotes := make(map[string]domain.StockQuote, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.Price <= 0 {
			continue
		}
		quotes[strings.ToUpper(q.Ticker)] = domain.StockQuote{
			Price:     q.Price,
			MarketCap: q.MarketCap,
		}
	}
	return quotes, nil
}
