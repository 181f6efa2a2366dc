package feeds

import (
	"context"
	"net/url"
	"strings"

	"mnavcli/internal/config"
	"mnavcli/pkg/contracts/domain"
)

// CryptoFeed fetches USD spot prices for crypto assets.
//
// Upstream contract: GET {base}/v1/prices?symbols=BTC,ETH returning
//
//	{"prices":{"BTC":{"usd":109234.5},"ETH":{"usd":2571.2}}}
type CryptoFeed struct {
	client *client
}

// NewCryptoFeed creates a client for the crypto price endpoint.
func NewCryptoFeed(cfg config.FeedEndpoint) *CryptoFeed {
	return &CryptoFeed{client: newClient(cfg)}
}

type cryptoResponse struct {
	Prices map[string]struct {
		USD float64 `json:"usd"`
	} `json:"prices"`
}

// Fetch returns spot prices for the requested asset symbols. Assets the
// upstream does not know are simply absent from the result.
func (f *CryptoFeed) Fetch(ctx context.Context, assets []string) (map[string]domain.CryptoPrice, error) {
	if len(assets) == 0 {
		return map[string]domain.CryptoPrice{}, nil
	}

	var resp cryptoResponse
	query := url.Values{"symbols": {strings.Join(assets, ",")}}
	if err := f.client.getJSON(ctx, "/v1/prices", query, &resp); err != nil {
		return nil, err
	}

	prices := make(map[string]domain.CryptoPrice, len(resp.Prices))
	for symbol, p := range resp.Prices {
		if p.USD <= 0 {
			continue
		}
		prices[strings.ToUpper(symbol)] = domain.CryptoPrice{Price: p.USD}
	}
	return prices, nil
}
