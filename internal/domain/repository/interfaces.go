package repository

import (
	"context"
	"errors"

	"CryptoBrain/internal/domain/models"
)

var (
	ErrPatternNotFound  = errors.New("pattern not found")
	ErrMiningInProgress = errors.New("mining pass already running")
	ErrStoreUnavailable = errors.New("candle store unavailable")
	ErrNoCandles        = errors.New("no candles for symbol")
)

// CandleStore provides read-only access to stored OHLCV series.
// An empty result with nil error means no data for that series.
type CandleStore interface {
	LoadCandles(ctx context.Context, symbol string, tf Timeframe, limit int) ([]models.Candle, error)
}

// PatternStore persists candidate patterns keyed by pattern_id.
type PatternStore interface {
	Upsert(ctx context.Context, patterns []models.CandidatePattern) error
	Get(ctx context.Context, id string) (models.CandidatePattern, error)
	// ListActive returns the active patterns of symbol, or of every symbol
	// when symbol is empty.
	ListActive(ctx context.Context, symbol string) ([]models.CandidatePattern, error)
	TopActive(ctx context.Context, minTrades, limit int) ([]models.CandidatePattern, error)
}

// EventPublisher emits analysis and mining events to downstream consumers.
type EventPublisher interface {
	PublishPatterns(ctx context.Context, result *models.MiningResult) error
	PublishConfluence(ctx context.Context, analysis *models.MultiTimeframeAnalysis) error
	Close() error
}

// ParamsStore keeps the tuned AdaptiveParameters between passes.
type ParamsStore interface {
	LoadParams(ctx context.Context) (models.AdaptiveParameters, bool, error)
	SaveParams(ctx context.Context, p models.AdaptiveParameters) error
}

type Metrics interface {
	RecordAnalysis(symbol string, overall models.Action, seconds float64)
	RecordMining(symbol string, discovered, accepted, deactivated int, seconds float64)
	RecordThreshold(minWinRate float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
