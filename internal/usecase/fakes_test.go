package usecase

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	"CryptoBrain/pkg/logger"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func waveCandles(n int, step time.Duration, drift float64) []models.Candle {
	out := make([]models.Candle, n)
	price := 100.0
	for i := range out {
		open := price
		price = price*(1+drift) + math.Sin(float64(i)/3)*0.4
		out[i] = models.Candle{
			Bucket: t0.Add(time.Duration(i) * step),
			Open:   open,
			High:   math.Max(open, price) + 0.3,
			Low:    math.Min(open, price) - 0.3,
			Close:  price,
			Volume: 100 + float64(i%7)*10,
		}
	}
	return out
}

type fakeStore struct {
	mu     sync.Mutex
	series map[domrepo.Timeframe][]models.Candle
	errs   map[domrepo.Timeframe]error
	calls  int
	limits map[domrepo.Timeframe]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		series: map[domrepo.Timeframe][]models.Candle{},
		errs:   map[domrepo.Timeframe]error{},
		limits: map[domrepo.Timeframe]int{},
	}
}

func (s *fakeStore) fill(tfs []domrepo.Timeframe, n int, drift float64) *fakeStore {
	for _, tf := range tfs {
		s.series[tf] = waveCandles(n, tf.Duration(), drift)
	}
	return s
}

func (s *fakeStore) LoadCandles(_ context.Context, _ string, tf domrepo.Timeframe, limit int) ([]models.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.limits[tf] = limit
	if err := s.errs[tf]; err != nil {
		return nil, err
	}
	cs := s.series[tf]
	if len(cs) > limit {
		cs = cs[len(cs)-limit:]
	}
	return cs, nil
}

type fakePatterns struct {
	mu      sync.Mutex
	byID    map[string]models.CandidatePattern
	upserts [][]models.CandidatePattern
	listErr error
	topArgs [2]int
}

func newFakePatterns(ps ...models.CandidatePattern) *fakePatterns {
	f := &fakePatterns{byID: map[string]models.CandidatePattern{}}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePatterns) Upsert(_ context.Context, ps []models.CandidatePattern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, ps)
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return nil
}

func (f *fakePatterns) Get(_ context.Context, id string) (models.CandidatePattern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return p, domrepo.ErrPatternNotFound
	}
	return p, nil
}

func (f *fakePatterns) active(keep func(models.CandidatePattern) bool) []models.CandidatePattern {
	var out []models.CandidatePattern
	for _, p := range f.byID {
		if p.Active && keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakePatterns) ListActive(_ context.Context, symbol string) ([]models.CandidatePattern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.active(func(p models.CandidatePattern) bool { return symbol == "" || p.Symbol == symbol }), nil
}

func (f *fakePatterns) TopActive(_ context.Context, minTrades, limit int) ([]models.CandidatePattern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topArgs = [2]int{minTrades, limit}
	return f.active(func(p models.CandidatePattern) bool { return p.Performance.TotalTrades >= minTrades }), nil
}

type fakeParams struct {
	p     models.AdaptiveParameters
	ok    bool
	saves int
}

func (f *fakeParams) LoadParams(context.Context) (models.AdaptiveParameters, bool, error) {
	return f.p, f.ok, nil
}

func (f *fakeParams) SaveParams(_ context.Context, p models.AdaptiveParameters) error {
	f.p, f.ok = p, true
	f.saves++
	return nil
}

type fakePublisher struct {
	mu         sync.Mutex
	patterns   []*models.MiningResult
	confluence []*models.MultiTimeframeAnalysis
	err        error
}

func (f *fakePublisher) PublishPatterns(_ context.Context, r *models.MiningResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, r)
	return f.err
}

func (f *fakePublisher) PublishConfluence(_ context.Context, a *models.MultiTimeframeAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confluence = append(f.confluence, a)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu        sync.Mutex
	analyses  int
	minings   int
	threshold float64
	errors    map[string]int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{errors: map[string]int{}} }

func (m *fakeMetrics) RecordAnalysis(string, models.Action, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses++
}

func (m *fakeMetrics) RecordMining(string, int, int, int, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minings++
}

func (m *fakeMetrics) RecordThreshold(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = v
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

type failingAlt struct{}

func (failingAlt) AltSeason(context.Context) (models.AltSeason, error) {
	return models.AltSeason{}, errors.New("index feed down")
}

type failingAdvisor struct{}

func (failingAdvisor) Recommend(context.Context, models.StrategyInput) (models.StrategyAdvice, error) {
	return models.StrategyAdvice{}, errors.New("advisor down")
}

func testLogger() *logger.Logger { return logger.Nop() }
