package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is an append-only USD quote for a single asset. Newer quotes supersede older ones.
type PriceQuote struct {
	ID               string          `json:"id" db:"id"`
	Asset            string          `json:"asset" db:"asset"`
	PriceUSD         decimal.Decimal `json:"priceUsd" db:"price_usd"`
	ChangePercent24h *float64        `json:"changePercent24h" db:"change_percent_24h"`
	FetchedAt        time.Time       `json:"fetchedAt" db:"fetched_at"`
}

// IsStale reports whether the quote is older than threshold at now.
func (q PriceQuote) IsStale(now time.Time, threshold time.Duration) bool {
	return now.Sub(q.FetchedAt) > threshold
}
