package feeds

import (
	"context"
	"net/url"
	"strings"

	"mnavcli/internal/config"
	"mnavcli/pkg/contracts/domain"
)

// LSTFeed fetches live liquid-staking-token exchange rates.
//
// Upstream contract: GET {base}/v1/staking-rates?ids=jito-sol,marinade-sol
// returning
//
//	{"rates":{"jito-sol":{"exchange_rate":1.21}}}
//
// The rate is units of the underlying asset per staking token.
type LSTFeed struct {
	client *client
}

// NewLSTFeed creates a client for the staking-rate endpoint.
func NewLSTFeed(cfg config.FeedEndpoint) *LSTFeed {
	return &LSTFeed{client: newClient(cfg)}
}

type lstResponse struct {
	Rates map[string]struct {
		ExchangeRate float64 `json:"exchange_rate"`
	} `json:"rates"`
}

// Fetch returns exchange rates for the requested staking-configuration IDs.
func (f *LSTFeed) Fetch(ctx context.Context, configIDs []string) (map[string]domain.LSTRate, error) {
	if len(configIDs) == 0 {
		return map[string]domain.LSTRate{}, nil
	}

	var resp lstResponse
	query := url.Values{"ids": {strings.Join(configIDs, ",")}}
	if err := f.client.getJSON(ctx, "/v1/staking-rates", query, &resp); err != nil {
		return nil, err
	}

	rates := make(map[string]domain.LSTRate, len(resp.Rates))
	for id, r := range resp.Rates {
		if r.ExchangeRate <= 0 {
			continue
		}
		rates[strings.ToLower(id)] = domain.LSTRate{ExchangeRate: r.ExchangeRate}
	}
	return rates, nil
}
