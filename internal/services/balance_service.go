package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/cache"
	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/pricing"
)

type LedgerReader interface {
	ListLedger(ctx context.Context, orgID string) ([]models.Transaction, error)
}

type QuoteProvider interface {
	CurrentQuote(ctx context.Context) (*models.PriceQuote, bool, error)
}

// LedgerTotals are the signed sums of an organization's ledger. Failed entries are ignored.
type LedgerTotals struct {
	Available  decimal.Decimal
	Pending    decimal.Decimal
	// PendingOut is the unsigned sum of outbound entries not yet posted.
	PendingOut decimal.Decimal
}

// Spendable is the posted balance less outbound transfers still in flight.
func (t LedgerTotals) Spendable() decimal.Decimal {
	return t.Available.Sub(t.PendingOut)
}

// SumLedger computes available (posted) and pending totals as inbound minus outbound.
func SumLedger(txs []models.Transaction) LedgerTotals {
	totals := LedgerTotals{Available: decimal.Zero, Pending: decimal.Zero, PendingOut: decimal.Zero}
	for _, tx := range txs {
		switch tx.Status {
		case models.StatusPosted:
			totals.Available = totals.Available.Add(tx.Signed())
		case models.StatusPending:
			totals.Pending = totals.Pending.Add(tx.Signed())
			if tx.Direction == models.DirectionOut {
				totals.PendingOut = totals.PendingOut.Add(tx.Amount)
			}
		}
	}
	return totals
}

// Balance is the organization balance valued at the current quote.
type Balance struct {
	Available        decimal.Decimal
	Pending          decimal.Decimal
	Currency         string
	PriceUSD         decimal.Decimal
	TotalUSD         decimal.Decimal
	ChangePercent24h *float64
	PriceStale       bool
	AsOf             time.Time
}

type BalanceService struct {
	ledger   LedgerReader
	prices   QuoteProvider
	currency string
	clock    cache.Clock
	logger   *zap.Logger
}

func NewBalanceService(ledger LedgerReader, prices QuoteProvider, currency string, clock cache.Clock, logger *zap.Logger) *BalanceService {
	if clock == nil {
		clock = cache.SystemClock{}
	}
	return &BalanceService{
		ledger:   ledger,
		prices:   prices,
		currency: currency,
		clock:    clock,
		logger:   logger,
	}
}

// ComputeBalance sums the full ledger and values it in USD. A price failure never fails
// the call: the newest stored quote is used, and without any quote the price is zero.
func (s *BalanceService) ComputeBalance(ctx context.Context, orgID string) (*Balance, error) {
	quote, stale, err := s.prices.CurrentQuote(ctx)
	if err != nil {
		if !errors.Is(err, pricing.ErrNoQuote) {
			s.logger.Warn("price lookup failed", zap.String("org_id", orgID), zap.Error(err))
		} else {
			s.logger.Warn("no price quote available, reporting zero price", zap.String("org_id", orgID))
		}
		quote = nil
	}

	txs, err := s.ledger.ListLedger(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	totals := SumLedger(txs)

	b := &Balance{
		Available: totals.Available,
		Pending:   totals.Pending,
		Currency:  s.currency,
		PriceUSD:  decimal.Zero,
		AsOf:      s.clock.Now().UTC(),
	}
	if quote != nil {
		b.PriceUSD = quote.PriceUSD
		b.ChangePercent24h = quote.ChangePercent24h
		b.PriceStale = stale
	}
	b.TotalUSD = b.Available.Add(b.Pending).Mul(b.PriceUSD)

	return b, nil
}
