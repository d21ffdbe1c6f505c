// Package pricing keeps the USD quote of the ledger asset fresh.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paydash/backend/internal/config"
	"github.com/paydash/backend/internal/models"
)

const apiKeyHeader = "x-cg-demo-api-key"

// Client reads spot prices from a CoinGecko-compatible simple price endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(cfg config.PricingConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
	}
}

type simplePrice struct {
	USD       *json.Number `json:"usd"`
	Change24h *float64     `json:"usd_24h_change"`
}

// Fetch returns the current USD quote for asset. FetchedAt is left for the caller to stamp.
func (c *Client) Fetch(ctx context.Context, asset string) (*models.PriceQuote, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	q := url.Values{}
	q.Set("ids", asset)
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("price source returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload map[string]simplePrice
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	entry, ok := payload[asset]
	if !ok || entry.USD == nil {
		return nil, fmt.Errorf("price source has no usd price for %q", asset)
	}
	price, err := decimal.NewFromString(entry.USD.String())
	if err != nil {
		return nil, fmt.Errorf("invalid usd price %q: %w", entry.USD.String(), err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("negative usd price for %q", asset)
	}

	return &models.PriceQuote{
		Asset:            asset,
		PriceUSD:         price,
		ChangePercent24h: entry.Change24h,
	}, nil
}
