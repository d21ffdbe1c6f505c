package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/cache"
	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/store"
)

// ErrNoQuote is returned when the source is unreachable and no quote was ever stored.
var ErrNoQuote = errors.New("no price quote available")

type Source interface {
	Fetch(ctx context.Context, asset string) (*models.PriceQuote, error)
}

type QuoteStore interface {
	LatestPriceQuote(ctx context.Context, asset string) (*models.PriceQuote, error)
	InsertPriceQuote(ctx context.Context, q *models.PriceQuote) error
}

// Service resolves the current quote of one asset through cache, store and source.
type Service struct {
	asset     string
	threshold time.Duration
	source    Source
	quotes    QuoteStore
	cache     cache.Cache
	clock     cache.Clock
	logger    *zap.Logger
}

type Options struct {
	Asset            string
	RefreshThreshold time.Duration
	Clock            cache.Clock
}

func NewService(opts Options, source Source, quotes QuoteStore, c cache.Cache, logger *zap.Logger) *Service {
	if opts.Clock == nil {
		opts.Clock = cache.SystemClock{}
	}
	if opts.RefreshThreshold <= 0 {
		opts.RefreshThreshold = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		asset:     opts.Asset,
		threshold: opts.RefreshThreshold,
		source:    source,
		quotes:    quotes,
		cache:     c,
		clock:     opts.Clock,
		logger:    logger.With(zap.String("asset", opts.Asset)),
	}
}

func (s *Service) Asset() string { return s.asset }

func (s *Service) cacheKey() string { return "price:v1:" + s.asset }

// CurrentQuote returns a quote no older than the refresh threshold when one can be
// obtained. If the source fails it falls back to the newest stored quote and reports
// stale=true. Concurrent callers that all see a stale quote each refresh it.
func (s *Service) CurrentQuote(ctx context.Context) (*models.PriceQuote, bool, error) {
	now := s.clock.Now()

	if q := s.cached(ctx); q != nil && !q.IsStale(now, s.threshold) {
		return q, false, nil
	}

	latest, err := s.quotes.LatestPriceQuote(ctx, s.asset)
	switch {
	case err == nil:
		if !latest.IsStale(now, s.threshold) {
			s.remember(ctx, latest, now)
			return latest, false, nil
		}
	case errors.Is(err, store.ErrNotFound):
		latest = nil
	default:
		s.logger.Warn("failed to load stored price quote", zap.Error(err))
		latest = nil
	}

	fresh, fetchErr := s.refresh(ctx, now)
	if fetchErr == nil {
		return fresh, false, nil
	}

	if latest != nil {
		s.logger.Warn("price refresh failed, serving stale quote",
			zap.Error(fetchErr),
			zap.Time("fetched_at", latest.FetchedAt))
		return latest, true, nil
	}
	return nil, false, fmt.Errorf("%w: %v", ErrNoQuote, fetchErr)
}

func (s *Service) refresh(ctx context.Context, now time.Time) (*models.PriceQuote, error) {
	q, err := s.source.Fetch(ctx, s.asset)
	if err != nil {
		return nil, err
	}
	q.ID = uuid.NewString()
	q.Asset = s.asset
	q.FetchedAt = now.UTC()

	if err := s.quotes.InsertPriceQuote(ctx, q); err != nil {
		s.logger.Warn("failed to persist price quote", zap.Error(err))
	}
	s.remember(ctx, q, now)

	s.logger.Debug("price quote refreshed", zap.String("price_usd", q.PriceUSD.String()))
	return q, nil
}

func (s *Service) cached(ctx context.Context) *models.PriceQuote {
	if s.cache == nil {
		return nil
	}
	raw, ok, err := s.cache.Get(ctx, s.cacheKey())
	if err != nil {
		s.logger.Warn("price cache read failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var q models.PriceQuote
	if err := json.Unmarshal(raw, &q); err != nil {
		s.logger.Warn("discarding undecodable cached quote", zap.Error(err))
		return nil
	}
	return &q
}

// remember caches q until it turns stale.
func (s *Service) remember(ctx context.Context, q *models.PriceQuote, now time.Time) {
	if s.cache == nil {
		return
	}
	ttl := q.FetchedAt.Add(s.threshold).Sub(now)
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(), raw, ttl); err != nil {
		s.logger.Warn("price cache write failed", zap.Error(err))
	}
}
