package store

import (
	"context"
	"database/sql"

	"github.com/paydash/backend/internal/models"
)

// LatestPriceQuote returns the most recently fetched quote for asset.
func (s *Store) LatestPriceQuote(ctx context.Context, asset string) (*models.PriceQuote, error) {
	var (
		q      models.PriceQuote
		change sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, asset, price_usd, change_percent_24h, fetched_at
		FROM price_quotes
		WHERE asset = $1
		ORDER BY fetched_at DESC
		LIMIT 1`, asset).Scan(&q.ID, &q.Asset, &q.PriceUSD, &change, &q.FetchedAt)
	if err != nil {
		return nil, wrap("failed to get latest price quote", err)
	}
	if change.Valid {
		v := change.Float64
		q.ChangePercent24h = &v
	}
	return &q, nil
}

// InsertPriceQuote appends a quote. Quotes are never updated.
func (s *Store) InsertPriceQuote(ctx context.Context, q *models.PriceQuote) error {
	var change sql.NullFloat64
	if q.ChangePercent24h != nil {
		change = sql.NullFloat64{Float64: *q.ChangePercent24h, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO price_quotes (id, asset, price_usd, change_percent_24h, fetched_at) VALUES ($1, $2, $3, $4, $5)",
		q.ID, q.Asset, q.PriceUSD, change, q.FetchedAt)
	if err != nil {
		return wrap("failed to insert price quote", err)
	}
	return nil
}
