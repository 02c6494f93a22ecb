package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	"CryptoBrain/internal/services/analytics"
	"CryptoBrain/internal/services/indicators"
	"CryptoBrain/pkg/cache"
	"CryptoBrain/pkg/logger"
)

type AnalysisConfig struct {
	Timeframes []domrepo.Timeframe
	Candles    int
	CacheTTL   time.Duration
}

// AnalysisUseCase evaluates every configured timeframe of a symbol and
// combines them into a confluence call.
type AnalysisUseCase struct {
	store     domrepo.CandleStore
	cache     cache.Service
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
	cfg       AnalysisConfig
}

func NewAnalysisUseCase(store domrepo.CandleStore, c cache.Service, pub domrepo.EventPublisher, m domrepo.Metrics, log *logger.Logger, cfg AnalysisConfig) *AnalysisUseCase {
	if len(cfg.Timeframes) == 0 {
		cfg.Timeframes = domrepo.AllTimeframes
	}
	if cfg.Candles <= 0 {
		cfg.Candles = 200
	}
	return &AnalysisUseCase{store: store, cache: c, publisher: pub, metrics: m, log: log, cfg: cfg}
}

// AnalyzeTimeframe computes one timeframe's signal from its candles.
func AnalyzeTimeframe(tf domrepo.Timeframe, candles []models.Candle) models.TimeframeSignal {
	return analytics.AnalyzeTimeframe(tf.String(), indicators.Compute(candles))
}

// AnalyzeAllTimeframes returns the cached analysis when fresh, unless refresh
// is set. Timeframes that fail to load are listed in Errors and left out of
// the vote. Timeframes with no candles are skipped; when none has data the
// result is the conservative WAIT. Only a store failure with no data is an
// error.
func (u *AnalysisUseCase) AnalyzeAllTimeframes(ctx context.Context, symbol string, refresh bool) (*models.MultiTimeframeAnalysis, error) {
	key := cache.Key("confluence", symbol)
	if !refresh && u.cache != nil {
		var cached models.MultiTimeframeAnalysis
		if err := u.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			u.log.Warn("confluence cache read failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}

	start := time.Now()
	set := loadSeries(ctx, u.store, symbol, sameLimit(u.cfg.Timeframes, u.cfg.Candles))
	if len(set.series) == 0 {
		if err := set.firstErr(domrepo.ErrStoreUnavailable); err != nil {
			u.metrics.RecordError("analysis_load")
			return nil, fmt.Errorf("analyze %s: %w", symbol, err)
		}
	}
	for tf, err := range set.errs {
		u.log.Warn("timeframe skipped", logger.String("symbol", symbol), logger.String("tf", tf.String()), logger.Error(err))
	}

	signals := make([]models.TimeframeSignal, 0, len(set.series))
	for _, tf := range u.cfg.Timeframes {
		if candles, ok := set.series[tf]; ok {
			signals = append(signals, AnalyzeTimeframe(tf, candles))
		}
	}
	out := analytics.BuildAnalysis(symbol, signals, set.errStrings())
	elapsed := time.Since(start)
	u.metrics.RecordAnalysis(symbol, out.Confluence.Overall, elapsed.Seconds())
	u.log.Debug("confluence computed",
		logger.String("symbol", symbol),
		logger.String("signal", string(out.Confluence.Overall)),
		logger.Int("timeframes", len(signals)),
		logger.Duration("duration_ms", elapsed),
	)

	if u.cache != nil && u.cfg.CacheTTL > 0 && len(signals) > 0 {
		if err := u.cache.Set(ctx, key, out, u.cfg.CacheTTL); err != nil {
			u.log.Warn("confluence cache write failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}
	if err := u.publisher.PublishConfluence(ctx, out); err != nil {
		u.metrics.RecordError("publish_confluence")
		u.log.Warn("confluence publish failed", logger.String("symbol", symbol), logger.Error(err))
	}
	return out, nil
}

// Technicals returns the latest-bar indicator readout for one timeframe.
func (u *AnalysisUseCase) Technicals(ctx context.Context, symbol string, tf domrepo.Timeframe, n int) (models.TechnicalSnapshot, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return models.TechnicalSnapshot{}, fmt.Errorf("%w: %q", domrepo.ErrUnknownTimeframe, tf)
	}
	candles, err := u.store.LoadCandles(ctx, symbol, tf, n)
	if err != nil {
		return models.TechnicalSnapshot{}, fmt.Errorf("technicals %s %s: %w", symbol, tf, err)
	}
	if len(candles) == 0 {
		return models.TechnicalSnapshot{}, fmt.Errorf("technicals %s %s: %w", symbol, tf, domrepo.ErrNoCandles)
	}
	return indicators.Snapshot(symbol, tf.String(), indicators.Compute(candles)), nil
}
