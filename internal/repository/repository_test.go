package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	"CryptoBrain/pkg/cache"
	pkgkafka "CryptoBrain/pkg/kafka"
)

func samplePattern() models.CandidatePattern {
	return models.CandidatePattern{
		ID:         "BTC/USDT-mtf-1717200000",
		Symbol:     "BTC/USDT",
		Name:       "Multi-TF Pattern (1h+4h)",
		Kind:       models.KindMTFConfluence,
		Timeframes: []string{"1h", "4h"},
		Conditions: []models.Condition{
			{Timeframe: "1h", Feature: "rsi", Operator: models.OpBetween, Min: 25, Max: 35, Weight: 1},
			{Timeframe: "4h", Feature: "ema_aligned", Operator: models.OpEqual, Value: 1, Weight: 0.5},
		},
		ProfitTarget: 1.5,
		StopLoss:     0.75,
		Lookahead:    10,
		DiscoveredAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Performance: models.Performance{
			WinRate: 0.7, TotalTrades: 20, Wins: 14, Losses: 5, Neutral: 1,
			AvgProfitPct: 0.8, ConfidenceScore: 0.66,
		},
		Active: true,
	}
}

func TestPatternRowRoundTrip(t *testing.T) {
	p := samplePattern()
	r, err := toRow(p)
	require.NoError(t, err)
	assert.JSONEq(t, `["1h","4h"]`, r.Timeframes)
	assert.Len(t, r.values(), len(r.dest()))

	back, err := r.pattern()
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestPatternRowRejectsBadJSON(t *testing.T) {
	r, err := toRow(samplePattern())
	require.NoError(t, err)
	r.Conditions = "{"
	_, err = r.pattern()
	assert.Error(t, err)
}

func TestSchemaNamesTables(t *testing.T) {
	stmts := Schema("candles_x", "patterns_x")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "candles_x")
	assert.Contains(t, stmts[1], "ReplacingMergeTree(updated_at)")
	for _, col := range strings.Split(patternColumns, ",") {
		assert.Contains(t, stmts[1], strings.TrimSpace(col))
	}
}

func TestReverseCandles(t *testing.T) {
	cs := []models.Candle{{Close: 3}, {Close: 2}, {Close: 1}}
	reverseCandles(cs)
	assert.Equal(t, []float64{1, 2, 3}, []float64{cs[0].Close, cs[1].Close, cs[2].Close})
}

type flakyStore struct {
	calls int
	err   error
}

func (s *flakyStore) LoadCandles(context.Context, string, domrepo.Timeframe, int) ([]models.Candle, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []models.Candle{{Close: 1}}, nil
}

func TestBreakerTripsAfterFailures(t *testing.T) {
	next := &flakyStore{err: errors.New("connection refused")}
	b := NewBreakerCandleStore(next, BreakerConfig{MaxRequests: 1, Timeout: time.Minute, FailureRatio: 0.6, MinRequests: 3}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.LoadCandles(ctx, "BTC/USDT", domrepo.TF1h, 10)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domrepo.ErrStoreUnavailable)
	}
	assert.Equal(t, "open", b.State())

	_, err := b.LoadCandles(ctx, "BTC/USDT", domrepo.TF1h, 10)
	assert.ErrorIs(t, err, domrepo.ErrStoreUnavailable)
	assert.Equal(t, 3, next.calls)
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	next := &flakyStore{err: context.Canceled}
	b := NewBreakerCandleStore(next, BreakerConfig{FailureRatio: 0.5, MinRequests: 1}, nil)
	for i := 0; i < 5; i++ {
		_, err := b.LoadCandles(context.Background(), "BTC/USDT", domrepo.TF1h, 10)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", b.State())

	next.err = nil
	got, err := b.LoadCandles(context.Background(), "BTC/USDT", domrepo.TF1h, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

type memWriter struct{ msgs []kafka.Message }

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error { return nil }

func TestKafkaEventPublisherKeysBySymbol(t *testing.T) {
	w := &memWriter{}
	pub := NewKafkaEventPublisher(pkgkafka.NewProducerWithWriter(w, "none"), EventTopics{Patterns: "p", Confluence: "c"})
	ctx := context.Background()

	require.NoError(t, pub.PublishPatterns(ctx, &models.MiningResult{RunID: "r1", Symbol: "ETH/USDT", TotalDiscovered: 2}))
	require.NoError(t, pub.PublishConfluence(ctx, &models.MultiTimeframeAnalysis{Symbol: "BTC/USDT"}))
	require.NoError(t, pub.PublishPatterns(ctx, nil))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "p", w.msgs[0].Topic)
	assert.Equal(t, "ETH/USDT", string(w.msgs[0].Key))
	var got models.MiningResult
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "r1", got.RunID)
	assert.Equal(t, 2, got.TotalDiscovered)
	assert.Equal(t, "c", w.msgs[1].Topic)
	assert.Equal(t, "BTC/USDT", string(w.msgs[1].Key))
	assert.NoError(t, pub.Close())
}

func TestCacheParamsStore(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	s := NewCacheParamsStore(mem)
	ctx := context.Background()

	_, ok, err := s.LoadParams(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	p := models.DefaultAdaptiveParameters()
	p.MinWinRate = 0.68
	p.TunedOn = "abc"
	require.NoError(t, s.SaveParams(ctx, p))

	got, ok, err := s.LoadParams(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, p, got)
}
