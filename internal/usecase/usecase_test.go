package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	"CryptoBrain/internal/services/brain"
	"CryptoBrain/internal/services/mining"
	"CryptoBrain/pkg/cache"
)

func newAnalysis(store domrepo.CandleStore, c cache.Service, pub *fakePublisher, m *fakeMetrics) *AnalysisUseCase {
	return NewAnalysisUseCase(store, c, pub, m, testLogger(), AnalysisConfig{
		Timeframes: domrepo.AllTimeframes,
		Candles:    120,
		CacheTTL:   time.Minute,
	})
}

func TestAnalyzeAllTimeframesOmitsFailedTimeframe(t *testing.T) {
	store := newFakeStore().fill(domrepo.AllTimeframes, 150, 0.002)
	store.errs[domrepo.TF1m] = errors.New("timeout")
	mem := cache.NewMemoryCache()
	defer mem.Close()
	pub, m := &fakePublisher{}, newFakeMetrics()
	uc := newAnalysis(store, mem, pub, m)
	ctx := context.Background()

	got, err := uc.AnalyzeAllTimeframes(ctx, "BTC/USDT", false)
	require.NoError(t, err)
	assert.Len(t, got.Signals, 6)
	assert.Equal(t, 6, got.Confluence.Total)
	assert.Contains(t, got.Errors, "1m")
	assert.Equal(t, 120, store.limits[domrepo.TF4h])
	for _, s := range got.Signals {
		assert.NotEqual(t, "1m", s.Timeframe)
		assert.Equal(t, 120, s.Candles)
	}
	assert.Len(t, pub.confluence, 1)
	assert.Equal(t, 1, m.analyses)

	calls := store.calls
	again, err := uc.AnalyzeAllTimeframes(ctx, "BTC/USDT", false)
	require.NoError(t, err)
	assert.Equal(t, calls, store.calls, "second call is served from cache")
	assert.Equal(t, got.Confluence.Overall, again.Confluence.Overall)

	_, err = uc.AnalyzeAllTimeframes(ctx, "BTC/USDT", true)
	require.NoError(t, err)
	assert.Greater(t, store.calls, calls)
}

func TestAnalyzeAllTimeframesFailures(t *testing.T) {
	ctx := context.Background()

	down := newFakeStore()
	for _, tf := range domrepo.AllTimeframes {
		down.errs[tf] = errors.New("refused")
	}
	down.errs[domrepo.TF1h] = domrepo.ErrStoreUnavailable
	m := newFakeMetrics()
	_, err := newAnalysis(down, nil, &fakePublisher{}, m).AnalyzeAllTimeframes(ctx, "BTC/USDT", false)
	assert.ErrorIs(t, err, domrepo.ErrStoreUnavailable)
	assert.Equal(t, 1, m.errors["analysis_load"])
}

func TestAnalyzeAllTimeframesWithoutCandlesWaits(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()
	store := newFakeStore()
	uc := newAnalysis(store, c, &fakePublisher{}, newFakeMetrics())
	ctx := context.Background()

	got, err := uc.AnalyzeAllTimeframes(ctx, "BTC/USDT", false)
	require.NoError(t, err)
	assert.Equal(t, models.ActionWait, got.Confluence.Overall)
	assert.InDelta(t, 30, got.Confluence.Confidence, 1e-9)
	assert.Zero(t, got.Confluence.Total)
	assert.Empty(t, got.Signals)
	assert.Empty(t, got.Errors)

	store.fill([]domrepo.Timeframe{domrepo.TF1h}, 80, 0.001)
	got, err = uc.AnalyzeAllTimeframes(ctx, "BTC/USDT", false)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Confluence.Total, "an empty result is not cached")
}

func TestAnalyzeAllTimeframesPublishFailureIsNotFatal(t *testing.T) {
	store := newFakeStore().fill([]domrepo.Timeframe{domrepo.TF1h}, 80, 0.001)
	m := newFakeMetrics()
	uc := newAnalysis(store, nil, &fakePublisher{err: errors.New("broker down")}, m)
	got, err := uc.AnalyzeAllTimeframes(context.Background(), "ETH/USDT", false)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Confluence.Total)
	assert.Equal(t, 1, m.errors["publish_confluence"])
}

func TestTechnicals(t *testing.T) {
	store := newFakeStore().fill([]domrepo.Timeframe{domrepo.TF1h}, 100, 0.001)
	uc := newAnalysis(store, nil, &fakePublisher{}, newFakeMetrics())
	ctx := context.Background()

	snap, err := uc.Technicals(ctx, "BTC/USDT", domrepo.TF1h, 100)
	require.NoError(t, err)
	assert.Equal(t, "1h", snap.Timeframe)
	assert.Greater(t, snap.Close, 0.0)
	assert.GreaterOrEqual(t, snap.RSI, 0.0)
	assert.LessOrEqual(t, snap.RSI, 100.0)
	assert.Greater(t, snap.RealizedVol, 0.0)

	_, err = uc.Technicals(ctx, "BTC/USDT", "2h", 100)
	assert.ErrorIs(t, err, domrepo.ErrUnknownTimeframe)
	_, err = uc.Technicals(ctx, "BTC/USDT", domrepo.TF4h, 100)
	assert.ErrorIs(t, err, domrepo.ErrNoCandles)
}

func TestMarketRegime(t *testing.T) {
	store := newFakeStore().fill(domrepo.RegimeTimeframes, 120, 0.002)
	uc := NewRegimeUseCase(store, testLogger())
	ctx := context.Background()

	mr, err := uc.MarketRegime(ctx, "BTC/USDT", 100)
	require.NoError(t, err)
	assert.Len(t, mr.Regimes, len(domrepo.RegimeTimeframes))
	assert.NotEmpty(t, mr.Overall)

	r, err := uc.DetectRegime(ctx, "BTC/USDT", domrepo.TF15m, 100)
	require.NoError(t, err)
	assert.Equal(t, "15m", r.Timeframe)

	_, err = NewRegimeUseCase(newFakeStore(), testLogger()).MarketRegime(ctx, "BTC/USDT", 100)
	assert.ErrorIs(t, err, domrepo.ErrNoCandles)
}

func weakPattern(id string) models.CandidatePattern {
	return models.CandidatePattern{
		ID:          id,
		Symbol:      "BTC/USDT",
		Name:        id,
		Kind:        models.KindVolumeSpike,
		Timeframes:  []string{"1h"},
		Active:      true,
		Performance: models.Performance{WinRate: 0.5, TotalTrades: 20, Wins: 10, Losses: 10},
	}
}

type miningFixture struct {
	uc       *MiningUseCase
	store    *fakeStore
	patterns *fakePatterns
	params   *fakeParams
	pub      *fakePublisher
	metrics  *fakeMetrics
	locks    *cache.MemoryCache
}

func newMiningFixture(t *testing.T) *miningFixture {
	f := &miningFixture{
		store:    newFakeStore().fill([]domrepo.Timeframe{domrepo.TF1h, domrepo.TF4h}, 30, 0.001),
		patterns: newFakePatterns(weakPattern("a"), weakPattern("b")),
		params:   &fakeParams{},
		pub:      &fakePublisher{},
		metrics:  newFakeMetrics(),
		locks:    cache.NewMemoryCache(),
	}
	t.Cleanup(func() { f.locks.Close() })
	f.uc = NewMiningUseCase(f.store, f.patterns, f.params, f.locks, f.pub, f.metrics,
		mining.NewMiner(), testLogger(), MiningConfig{
			Symbols:    []string{"BTC/USDT"},
			Timeframes: []domrepo.Timeframe{domrepo.TF1h, domrepo.TF4h},
			MaxCandles: 500,
			LockTTL:    time.Minute,
		})
	return f
}

func TestMinePatternsTunesAndDeactivates(t *testing.T) {
	f := newMiningFixture(t)
	ctx := context.Background()

	res, err := f.uc.MinePatterns(ctx, "BTC/USDT", 30)
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 0, res.TotalDiscovered)
	assert.InDelta(t, 0.60, res.Threshold, 1e-9)
	assert.ElementsMatch(t, []string{"a", "b"}, res.Deactivated)
	assert.Empty(t, res.Active)
	assert.Equal(t, 1, f.params.saves)
	assert.InDelta(t, 0.60, f.metrics.threshold, 1e-9)
	assert.Len(t, f.pub.patterns, 1)
	assert.Equal(t, 500, f.store.limits[domrepo.TF1h], "30 days of 1h is capped")
	assert.Equal(t, 180, f.store.limits[domrepo.TF4h])

	stored, err := f.patterns.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, stored.Active)

	again, err := f.uc.MinePatterns(ctx, "BTC/USDT", 30)
	require.NoError(t, err)
	assert.InDelta(t, 0.60, again.Threshold, 1e-9)
	assert.Empty(t, again.Deactivated)
	assert.Equal(t, 1, f.params.saves, "unchanged snapshot is not re-tuned")

	token, err := f.locks.TryLock(ctx, miningLockKey, time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token, "lock is released after a pass")
}

func TestMineAllTunesOnceAcrossSymbols(t *testing.T) {
	f := newMiningFixture(t)
	strong := func(id, symbol string) models.CandidatePattern {
		p := weakPattern(id)
		p.Symbol = symbol
		p.Performance = models.Performance{WinRate: 0.9, TotalTrades: 20, Wins: 18, Losses: 2}
		return p
	}
	f.patterns.byID = map[string]models.CandidatePattern{
		"btc": strong("btc", "BTC/USDT"),
		"eth": strong("eth", "ETH/USDT"),
	}
	f.uc.cfg.Symbols = []string{"BTC/USDT", "ETH/USDT"}
	ctx := context.Background()

	for run := 0; run < 3; run++ {
		require.NoError(t, f.uc.MineAll(ctx))
	}
	assert.Equal(t, 1, f.params.saves, "unchanged active set is tuned once")
	assert.InDelta(t, 0.70, f.params.p.MinWinRate, 1e-9)
	assert.Len(t, f.pub.patterns, 6)
	assert.Equal(t, "ETH/USDT", f.pub.patterns[1].Symbol)
	require.Len(t, f.pub.patterns[1].Active, 1)
	assert.Equal(t, "eth", f.pub.patterns[1].Active[0].ID)
}

func TestMinePatternsHonoursSharedLock(t *testing.T) {
	f := newMiningFixture(t)
	ctx := context.Background()
	token, err := f.locks.TryLock(ctx, miningLockKey, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = f.uc.MinePatterns(ctx, "BTC/USDT", 30)
	assert.ErrorIs(t, err, domrepo.ErrMiningInProgress)
	assert.NoError(t, f.uc.MineAll(ctx), "in-progress symbols are skipped")
	assert.Equal(t, 0, f.metrics.minings)
}

func TestMinePatternsRequiresEveryTimeframe(t *testing.T) {
	f := newMiningFixture(t)
	f.store.errs[domrepo.TF4h] = errors.New("timeout")
	_, err := f.uc.MinePatterns(context.Background(), "BTC/USDT", 30)
	require.Error(t, err)
	assert.Equal(t, 1, f.metrics.errors["mining"])
	assert.Equal(t, 0, f.params.saves)
}

func TestGetActivePatterns(t *testing.T) {
	f := newMiningFixture(t)
	strong := weakPattern("c")
	strong.Performance = models.Performance{WinRate: 0.8, TotalTrades: 15}
	f.patterns.byID["c"] = strong

	got, err := f.uc.GetActivePatterns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, [2]int{10, activeListSize}, f.patterns.topArgs)
}

type recordingRequests struct {
	topic string
	key   string
	value interface{}
}

func (r *recordingRequests) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	r.topic, r.key, r.value = topic, string(key), value
	return nil
}

func TestEnqueue(t *testing.T) {
	f := newMiningFixture(t)
	req := models.MineRequest{Symbol: "SOL/USDT", LookbackDays: 30}
	assert.Error(t, f.uc.Enqueue(context.Background(), req))

	rec := &recordingRequests{}
	f.uc.cfg.RequestTopic = "mine"
	f.uc.SetRequestPublisher(rec)
	require.NoError(t, f.uc.Enqueue(context.Background(), req))
	assert.Equal(t, "mine", rec.topic)
	assert.Equal(t, "SOL/USDT", rec.key)
	assert.Equal(t, req, rec.value)
}

type stubMiner struct {
	symbol string
	days   int
	err    error
}

func (s *stubMiner) MinePatterns(_ context.Context, symbol string, days int) (*models.MiningResult, error) {
	s.symbol, s.days = symbol, days
	if s.err != nil {
		return nil, s.err
	}
	return &models.MiningResult{RunID: "r", Symbol: symbol}, nil
}

func TestMineRequestHandler(t *testing.T) {
	m := &stubMiner{}
	metrics := newFakeMetrics()
	h := NewMineRequestHandler("mine", m, metrics, testLogger())
	ctx := context.Background()
	assert.Equal(t, "mine", h.Topic())

	require.NoError(t, h.Handle(ctx, []byte(`{"symbol":"BTC/USDT"}`)))
	assert.Equal(t, "BTC/USDT", m.symbol)
	assert.Equal(t, 90, m.days)

	assert.Error(t, h.Handle(ctx, []byte(`{`)))
	assert.Equal(t, 1, metrics.errors["consumer_unmarshal"])
	assert.Error(t, h.Handle(ctx, []byte(`{"lookback_days":10}`)))

	m.err = domrepo.ErrMiningInProgress
	assert.NoError(t, h.Handle(ctx, []byte(`{"symbol":"BTC/USDT","lookback_days":14}`)))
	assert.Equal(t, 14, m.days)

	m.err = errors.New("store down")
	assert.Error(t, h.Handle(ctx, []byte(`{"symbol":"BTC/USDT"}`)))
}

func TestBrainReportDegrades(t *testing.T) {
	store := newFakeStore().fill(domrepo.AllTimeframes, 120, 0.002)
	pats := newFakePatterns(weakPattern("a"))
	analysis := newAnalysis(store, nil, &fakePublisher{}, newFakeMetrics())
	uc := NewBrainUseCase(analysis, NewRegimeUseCase(store, testLogger()), pats,
		failingAlt{}, failingAdvisor{}, testLogger(), BrainConfig{})
	uc.now = func() time.Time { return time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC) }

	r, err := uc.Report(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseBullEarly, r.Cycle.Phase)
	assert.Equal(t, "BTC SEASON", r.AltSeason.Status)
	assert.Equal(t, 1, r.TotalPatterns)
	assert.NotEmpty(t, r.Strategy.Name, "static advisor fills in")
	assert.Len(t, r.Regime.Regimes, len(domrepo.RegimeTimeframes))

	want := brain.Decide(brain.Inputs{
		Confluence: r.Analysis.Confluence,
		Phase:      r.Cycle.Phase,
		Structure:  r.Regime.Overall,
	})
	assert.Equal(t, want, r.Decision)
	assert.GreaterOrEqual(t, r.Decision.Score, 25)
	assert.Contains(t, r.Prompt, "SYSTEM RECOMMENDATION")
	assert.Contains(t, r.Prompt, "BTC/USDT")

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"ai_prompt"`)
}

func TestBrainReportNeedsAnalysis(t *testing.T) {
	down := newFakeStore()
	for _, tf := range domrepo.AllTimeframes {
		down.errs[tf] = domrepo.ErrStoreUnavailable
	}
	uc := NewBrainUseCase(newAnalysis(down, nil, &fakePublisher{}, newFakeMetrics()),
		NewRegimeUseCase(down, testLogger()), newFakePatterns(),
		brain.StaticAltSeason(70), brain.NewStaticAdvisor(), testLogger(), BrainConfig{})
	_, err := uc.Report(context.Background(), "BTC/USDT")
	assert.ErrorIs(t, err, domrepo.ErrStoreUnavailable)
}

func TestBrainReportWithoutCandlesWaits(t *testing.T) {
	uc := NewBrainUseCase(newAnalysis(newFakeStore(), nil, &fakePublisher{}, newFakeMetrics()),
		NewRegimeUseCase(newFakeStore(), testLogger()), newFakePatterns(),
		brain.StaticAltSeason(70), brain.NewStaticAdvisor(), testLogger(), BrainConfig{})
	r, err := uc.Report(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, models.ActionWait, r.Analysis.Confluence.Overall)
	assert.Equal(t, models.StructureMixed, r.Regime.Overall)
}

func TestMergeByIDAndSummaries(t *testing.T) {
	stored := []models.CandidatePattern{weakPattern("a"), weakPattern("b")}
	fresh := weakPattern("b")
	fresh.Performance.WinRate = 0.9
	merged := mergeByID(stored, []models.CandidatePattern{fresh, weakPattern("c")})
	require.Len(t, merged, 3)
	assert.Equal(t, 0.9, merged[1].Performance.WinRate)

	sum := summaries(withoutIDs(merged, []string{"c"}), 1)
	require.Len(t, sum, 1)
	assert.Equal(t, "b", sum[0].ID)
}
