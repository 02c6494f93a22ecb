package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	"CryptoBrain/internal/services/mining"
	"CryptoBrain/pkg/cache"
	"CryptoBrain/pkg/logger"
)

const (
	miningLockKey  = "lock:mining"
	activeListSize = 10
)

// RequestPublisher enqueues mine requests for the background consumer.
type RequestPublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

type MiningConfig struct {
	Symbols      []string
	Timeframes   []domrepo.Timeframe
	LookbackDays int
	MaxCandles   int
	LockTTL      time.Duration
	Defaults     models.AdaptiveParameters
	RequestTopic string
}

// MiningUseCase runs serialized mining + tuning passes. A pass holds an
// in-process mutex and a shared cache lock, so only one runs per deployment.
type MiningUseCase struct {
	store     domrepo.CandleStore
	patterns  domrepo.PatternStore
	params    domrepo.ParamsStore
	locks     cache.Service
	publisher domrepo.EventPublisher
	requests  RequestPublisher
	metrics   domrepo.Metrics
	miner     *mining.Miner
	log       *logger.Logger
	cfg       MiningConfig
	now       func() time.Time

	mu sync.Mutex
}

func NewMiningUseCase(
	store domrepo.CandleStore,
	patterns domrepo.PatternStore,
	params domrepo.ParamsStore,
	locks cache.Service,
	pub domrepo.EventPublisher,
	m domrepo.Metrics,
	miner *mining.Miner,
	log *logger.Logger,
	cfg MiningConfig,
) *MiningUseCase {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 90
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Minute
	}
	if cfg.Defaults.MinTrades == 0 {
		cfg.Defaults = models.DefaultAdaptiveParameters()
	}
	return &MiningUseCase{
		store: store, patterns: patterns, params: params, locks: locks,
		publisher: pub, metrics: m, miner: miner, log: log, cfg: cfg, now: time.Now,
	}
}

// SetRequestPublisher enables Enqueue.
func (u *MiningUseCase) SetRequestPublisher(p RequestPublisher) { u.requests = p }

// Enqueue hands a mine request to the background consumer.
func (u *MiningUseCase) Enqueue(ctx context.Context, req models.MineRequest) error {
	if u.requests == nil || u.cfg.RequestTopic == "" {
		return fmt.Errorf("enqueue mine %s: no request queue configured", req.Symbol)
	}
	if err := u.requests.Publish(ctx, u.cfg.RequestTopic, []byte(req.Symbol), req); err != nil {
		return fmt.Errorf("enqueue mine %s: %w", req.Symbol, err)
	}
	return nil
}

// Params returns the stored parameters, or the configured defaults.
func (u *MiningUseCase) Params(ctx context.Context) (models.AdaptiveParameters, error) {
	p, ok, err := u.params.LoadParams(ctx)
	if err != nil {
		return models.AdaptiveParameters{}, err
	}
	if !ok {
		return u.cfg.Defaults, nil
	}
	return p, nil
}

// MinePatterns runs one mining + tuning pass for symbol. It returns
// ErrMiningInProgress when another pass holds the lock.
func (u *MiningUseCase) MinePatterns(ctx context.Context, symbol string, lookbackDays int) (*models.MiningResult, error) {
	if !u.mu.TryLock() {
		return nil, domrepo.ErrMiningInProgress
	}
	defer u.mu.Unlock()

	token, err := u.locks.TryLock(ctx, miningLockKey, u.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire mining lock: %w", err)
	}
	if token == "" {
		return nil, domrepo.ErrMiningInProgress
	}
	defer func() {
		if err := u.locks.Unlock(context.Background(), miningLockKey, token); err != nil {
			u.log.Warn("mining lock release failed", logger.Error(err))
		}
	}()

	if lookbackDays <= 0 {
		lookbackDays = u.cfg.LookbackDays
	}
	start := u.now()
	res, err := u.mine(ctx, symbol, lookbackDays, start)
	if err != nil {
		u.metrics.RecordError("mining")
		return nil, err
	}
	res.Duration = time.Since(start)

	u.metrics.RecordMining(symbol, res.TotalDiscovered, len(res.Active), len(res.Deactivated), res.Duration.Seconds())
	u.metrics.RecordThreshold(res.Threshold)
	u.log.Info("mining pass complete",
		logger.String("run_id", res.RunID),
		logger.String("symbol", symbol),
		logger.Int("accepted", res.TotalDiscovered),
		logger.Int("active", len(res.Active)),
		logger.Int("deactivated", len(res.Deactivated)),
		logger.Float64("min_win_rate", res.Threshold),
		logger.Duration("duration_ms", res.Duration),
	)
	if err := u.publisher.PublishPatterns(ctx, res); err != nil {
		u.metrics.RecordError("publish_patterns")
		u.log.Warn("pattern publish failed", logger.String("run_id", res.RunID), logger.Error(err))
	}
	return res, nil
}

func (u *MiningUseCase) mine(ctx context.Context, symbol string, lookbackDays int, start time.Time) (*models.MiningResult, error) {
	runID := uuid.NewString()
	params, err := u.Params(ctx)
	if err != nil {
		return nil, fmt.Errorf("mine %s: %w", symbol, err)
	}

	limits := make(map[domrepo.Timeframe]int, len(u.cfg.Timeframes))
	for _, tf := range u.cfg.Timeframes {
		n := domrepo.CandlesForDays(tf, lookbackDays)
		if u.cfg.MaxCandles > 0 && n > u.cfg.MaxCandles {
			n = u.cfg.MaxCandles
		}
		limits[tf] = n
	}
	set := loadSeries(ctx, u.store, symbol, limits)
	if len(set.errs) > 0 {
		// every mining timeframe must load
		return nil, fmt.Errorf("mine %s: %w", symbol, set.firstErr(domrepo.ErrStoreUnavailable))
	}
	if len(set.series) == 0 {
		return nil, fmt.Errorf("mine %s: %w", symbol, domrepo.ErrNoCandles)
	}

	mined := u.miner.Mine(symbol, set.series, params)
	accepted := make([]models.CandidatePattern, 0, len(mined.Discovered)+len(mined.Legacy))
	accepted = append(accepted, mined.Discovered...)
	accepted = append(accepted, mined.Legacy...)
	if err := u.patterns.Upsert(ctx, accepted); err != nil {
		return nil, fmt.Errorf("store patterns: %w", err)
	}

	// min_win_rate is shared by every symbol, so the tuner sees the whole active set
	stored, err := u.patterns.ListActive(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list active patterns: %w", err)
	}
	active := mergeByID(stored, accepted)

	tuned := mining.Tune(params, active)
	deactivated := make([]string, 0, len(tuned.Deactivated))
	if !tuned.Skipped {
		if err := u.patterns.Upsert(ctx, tuned.Deactivated); err != nil {
			return nil, fmt.Errorf("store deactivations: %w", err)
		}
		if err := u.params.SaveParams(ctx, tuned.Params); err != nil {
			return nil, fmt.Errorf("save params: %w", err)
		}
		for _, p := range tuned.Deactivated {
			deactivated = append(deactivated, p.ID)
		}
		if tuned.Params.MinWinRate != params.MinWinRate {
			u.log.Info("min win rate tuned",
				logger.Float64("from", params.MinWinRate),
				logger.Float64("to", tuned.Params.MinWinRate),
				logger.Float64("avg_win_rate", tuned.AvgWinRate),
				logger.Int("sampled", tuned.Sampled),
			)
		}
	}

	return &models.MiningResult{
		RunID:           runID,
		Symbol:          symbol,
		StartedAt:       start.UTC(),
		Discovered:      mined.Discovered,
		Legacy:          mined.Legacy,
		Active:          summaries(withoutIDs(ofSymbol(active, symbol), deactivated), 0),
		Deactivated:     deactivated,
		TotalDiscovered: len(accepted),
		Threshold:       tuned.Params.MinWinRate,
		Params:          tuned.Params,
	}, nil
}

// MineAll runs a pass for every configured symbol. A symbol that is already
// being mined elsewhere is skipped.
func (u *MiningUseCase) MineAll(ctx context.Context) error {
	var errs []error
	for _, symbol := range u.cfg.Symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, err := u.MinePatterns(ctx, symbol, u.cfg.LookbackDays)
		switch {
		case errors.Is(err, domrepo.ErrMiningInProgress):
			u.log.Info("mining skipped, pass in progress", logger.String("symbol", symbol))
		case err != nil:
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetActivePatterns returns the best active patterns with at least minTrades
// validated trades, by win rate.
func (u *MiningUseCase) GetActivePatterns(ctx context.Context, minTrades int) ([]models.PatternSummary, error) {
	ps, err := u.patterns.TopActive(ctx, minTrades, activeListSize)
	if err != nil {
		return nil, fmt.Errorf("active patterns: %w", err)
	}
	return summaries(ps, activeListSize), nil
}

// mergeByID overlays fresh patterns on the stored set so a pass sees its own
// writes even before the store has merged them.
func mergeByID(stored, fresh []models.CandidatePattern) []models.CandidatePattern {
	idx := make(map[string]int, len(stored)+len(fresh))
	out := make([]models.CandidatePattern, 0, len(stored)+len(fresh))
	for _, set := range [][]models.CandidatePattern{stored, fresh} {
		for _, p := range set {
			if i, ok := idx[p.ID]; ok {
				out[i] = p
				continue
			}
			idx[p.ID] = len(out)
			out = append(out, p)
		}
	}
	return out
}

func ofSymbol(ps []models.CandidatePattern, symbol string) []models.CandidatePattern {
	out := make([]models.CandidatePattern, 0, len(ps))
	for _, p := range ps {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	return out
}

func withoutIDs(ps []models.CandidatePattern, ids []string) []models.CandidatePattern {
	if len(ids) == 0 {
		return ps
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]models.CandidatePattern, 0, len(ps))
	for _, p := range ps {
		if _, ok := drop[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// summaries sorts active patterns by win rate, then trades, and keeps at most
// limit of them. limit <= 0 keeps all.
func summaries(ps []models.CandidatePattern, limit int) []models.PatternSummary {
	out := make([]models.PatternSummary, 0, len(ps))
	for _, p := range ps {
		if p.Active {
			out = append(out, p.Summary())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].TotalTrades > out[j].TotalTrades
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
