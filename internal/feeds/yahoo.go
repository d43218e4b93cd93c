package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/internal/prices"
)

// YahooFetcher reads quotes from the Yahoo Finance chart API.
type YahooFetcher struct {
	client  *http.Client
	baseURL string
}

// NewYahooFetcher creates a fetcher for baseURL, or the public chart API
// when baseURL is empty.
func NewYahooFetcher(client *http.Client, baseURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &YahooFetcher{client: client, baseURL: baseURL}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartMeta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	PreviousClose      float64 `json:"previousClose"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
}

// Fetch returns the latest quote for symbol over a two day daily range.
func (f *YahooFetcher) Fetch(ctx context.Context, symbol string) (prices.Snapshot, error) {
	u := f.baseURL + url.PathEscape(symbol) + "?interval=1d&range=2d"
	body, err := get(ctx, f.client, u)
	if err != nil {
		return prices.Snapshot{}, err
	}
	return parseChart(body)
}

// parseChart picks the price as regularMarketPrice, falling back to
// previousClose, and the reference as chartPreviousClose, falling back to
// previousClose. Change is only reported when the reference is positive.
func parseChart(body []byte) (prices.Snapshot, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return prices.Snapshot{}, fmt.Errorf("decode chart: %w", err)
	}
	if resp.Chart.Error != nil {
		return prices.Snapshot{}, fmt.Errorf("%w: %s", apperrors.ErrPriceUnavailable, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return prices.Snapshot{}, fmt.Errorf("%w: empty chart result", apperrors.ErrPriceUnavailable)
	}

	meta := resp.Chart.Result[0].Meta
	price := firstPositive(meta.RegularMarketPrice, meta.PreviousClose)
	if price <= 0 {
		return prices.Snapshot{}, fmt.Errorf("%w: no market price", apperrors.ErrPriceUnavailable)
	}

	snap := prices.Snapshot{Price: price, Source: prices.SourceYahoo}
	if prev := firstPositive(meta.ChartPreviousClose, meta.PreviousClose); prev > 0 {
		snap.Change = price - prev
		snap.ChangePct = snap.Change / prev * 100
		snap.HasChange = true
	}
	return snap, nil
}

func firstPositive(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
