package usecase

import (
	"context"
	"fmt"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	"CryptoBrain/internal/services/analytics"
	"CryptoBrain/internal/services/indicators"
	"CryptoBrain/pkg/logger"
)

type RegimeUseCase struct {
	store domrepo.CandleStore
	log   *logger.Logger
}

func NewRegimeUseCase(store domrepo.CandleStore, log *logger.Logger) *RegimeUseCase {
	return &RegimeUseCase{store: store, log: log}
}

// DetectRegime classifies the latest n candles of one timeframe.
func (u *RegimeUseCase) DetectRegime(ctx context.Context, symbol string, tf domrepo.Timeframe, n int) (models.Regime, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return models.Regime{}, fmt.Errorf("%w: %q", domrepo.ErrUnknownTimeframe, tf)
	}
	candles, err := u.store.LoadCandles(ctx, symbol, tf, n)
	if err != nil {
		return models.Regime{}, fmt.Errorf("regime %s %s: %w", symbol, tf, err)
	}
	if len(candles) == 0 {
		return models.Regime{}, fmt.Errorf("regime %s %s: %w", symbol, tf, domrepo.ErrNoCandles)
	}
	return analytics.DetectRegime(tf.String(), indicators.Compute(candles)), nil
}

// MarketRegime votes the regimes of the regime timeframes into one market
// structure. Timeframes without data are left out of the vote.
func (u *RegimeUseCase) MarketRegime(ctx context.Context, symbol string, n int) (models.MultiTimeframeRegime, error) {
	set := loadSeries(ctx, u.store, symbol, sameLimit(domrepo.RegimeTimeframes, n))
	if len(set.series) == 0 {
		if err := set.firstErr(domrepo.ErrStoreUnavailable); err != nil {
			return models.MultiTimeframeRegime{}, fmt.Errorf("market regime %s: %w", symbol, err)
		}
		return models.MultiTimeframeRegime{}, fmt.Errorf("market regime %s: %w", symbol, domrepo.ErrNoCandles)
	}
	for tf, err := range set.errs {
		u.log.Warn("regime timeframe skipped", logger.String("symbol", symbol), logger.String("tf", tf.String()), logger.Error(err))
	}

	regimes := make([]models.Regime, 0, len(set.series))
	for _, tf := range domrepo.RegimeTimeframes {
		if candles, ok := set.series[tf]; ok {
			regimes = append(regimes, analytics.DetectRegime(tf.String(), indicators.Compute(candles)))
		}
	}
	return analytics.AggregateRegimes(symbol, regimes), nil
}
