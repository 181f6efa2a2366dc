package feeds

import (
	"context"
	"net/url"
	"strings"

	"mnavcli/internal/config"
)

// ForexFeed fetches USD-base exchange rates.
//
// Upstream contract: GET {base}/v1/rates?base=USD&symbols=JPY,CAD returning
//
//	{"base":"USD","rates":{"JPY":130.2,"CAD":1.25}}
//
// Rates are units of the quoted currency per USD, matching the snapshot
// convention.
type ForexFeed struct {
	client *client
}

// NewForexFeed creates a client for the forex endpoint.
func NewForexFeed(cfg config.FeedEndpoint) *ForexFeed {
	return &ForexFeed{client: newClient(cfg)}
}

type forexResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Fetch returns units-per-USD rates for the requested currency codes.
// Non-positive rates are dropped; USD never needs fetching.
func (f *ForexFeed) Fetch(ctx context.Context, currencies []string) (map[string]float64, error) {
	wanted := make([]string, 0, len(currencies))
	for _, code := range currencies {
		code = strings.ToUpper(code)
		if code == "" || code == "USD" {
			continue
		}
		wanted = append(wanted, code)
	}
	if len(wanted) == 0 {
		return map[string]float64{}, nil
	}

	var resp forexResponse
	query := url.Values{
		"base":    {"USD"},
		"symbols": {strings.Join(wanted, ",")},
	}
	if err := f.client.getJSON(ctx, "/v1/rates", query, &resp); err != nil {
		return nil, err
	}

	rates := make(map[string]float64, len(resp.Rates))
	for code, r := range resp.Rates {
		if r <= 0 {
			continue
		}
		rates[strings.ToUpper(code)] = r
	}
	return rates, nil
}
