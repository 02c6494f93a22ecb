package mining

import (
	"fmt"
	"math"
	"strings"
	"time"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/domain/repository"
	"CryptoBrain/internal/services/indicators"
)

const (
	defaultTrainFraction = 0.7
	minPatternTimeframes = 2
	minPatternConditions = 3
	targetFromGain       = 0.8
	maxProfitTarget      = 5.0
	patternStopLoss      = 2.0
)

// Result is one mining pass. Only accepted patterns are returned; they are
// marked active.
type Result struct {
	Discovered []models.CandidatePattern
	Legacy     []models.CandidatePattern
	Setups     int
	Candidates int
	Boundary   time.Time
}

// Option configures a Miner.
type Option func(*Miner)

// WithTrainFraction sets the share of the base series used for discovery.
func WithTrainFraction(f float64) Option {
	return func(m *Miner) {
		if f > 0 && f < 1 {
			m.trainFraction = f
		}
	}
}

// WithClock overrides the discovery timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Miner) {
		if now != nil {
			m.now = now
		}
	}
}

// Miner discovers multi-timeframe setups on a training partition and
// re-validates them on the candles after it.
type Miner struct {
	trainFraction float64
	now           func() time.Time
}

func NewMiner(opts ...Option) *Miner {
	m := &Miner{trainFraction: defaultTrainFraction, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mine runs one pass over the given series. It is pure: nothing is stored and
// params are only read.
func (m *Miner) Mine(symbol string, series map[repository.Timeframe][]models.Candle, params models.AdaptiveParameters) Result {
	now := m.now().UTC()
	frames := make(map[string]*indicators.FeatureFrame, len(series))
	for tf, candles := range series {
		ff := indicators.ComputeFeatures(candles)
		if ff.Augmented {
			frames[tf.String()] = ff
		}
	}

	var res Result
	if len(frames) >= minPatternTimeframes {
		res = m.mineConfluence(symbol, frames, params, now)
	}
	for _, tf := range legacyTimeframes {
		ff, ok := frames[tf.String()]
		if !ok {
			continue
		}
		for _, p := range mineLegacy(symbol, tf.String(), ff, now) {
			if params.Accepts(p.Performance) {
				p.Active = true
				res.Legacy = append(res.Legacy, p)
			}
		}
	}
	return res
}

func (m *Miner) mineConfluence(symbol string, frames map[string]*indicators.FeatureFrame, params models.AdaptiveParameters, now time.Time) Result {
	var res Result
	base := baseFrame(frames)
	n := base.Len()
	trainEnd := int(float64(n) * m.trainFraction)
	if trainEnd <= 0 || trainEnd >= n {
		return res
	}
	res.Boundary = base.Candles[trainEnd].Bucket

	setups := findSetups(base, frames, trainEnd, params.ProfitThreshold)
	res.Setups = len(setups)
	seen := make(map[string]struct{}, len(setups))
	for _, s := range setups {
		p, ok := assemble(symbol, s, frames, now)
		if !ok {
			continue
		}
		sig := signature(p.Conditions)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		res.Candidates++

		p.Performance = validate(p, frames, res.Boundary)
		if params.Accepts(p.Performance) {
			p.Active = true
			res.Discovered = append(res.Discovered, p)
		}
	}
	return res
}

// baseFrame is 1h when loaded, otherwise the longest loaded timeframe.
func baseFrame(frames map[string]*indicators.FeatureFrame) *indicators.FeatureFrame {
	if ff, ok := frames[repository.TF1h.String()]; ok {
		return ff
	}
	var best *indicators.FeatureFrame
	var bestDur time.Duration
	for _, tf := range repository.AllTimeframes {
		ff, ok := frames[tf.String()]
		if ok && tf.Duration() > bestDur {
			best, bestDur = ff, tf.Duration()
		}
	}
	return best
}

// assemble groups the conditions seen at a setup into a pattern. Timeframes
// keep the canonical order, so the first one is the lowest resolution with
// conditions.
func assemble(symbol string, s Setup, frames map[string]*indicators.FeatureFrame, now time.Time) (models.CandidatePattern, bool) {
	var tfs []string
	var conds []models.Condition
	for _, tf := range repository.AllTimeframes {
		idx, ok := s.Snapshot[tf.String()]
		if !ok {
			continue
		}
		c := extractConditions(tf.String(), frames[tf.String()], idx)
		if len(c) == 0 {
			continue
		}
		tfs = append(tfs, tf.String())
		conds = append(conds, c...)
	}
	if len(tfs) < minPatternTimeframes || len(conds) < minPatternConditions {
		return models.CandidatePattern{}, false
	}
	return models.CandidatePattern{
		ID:           fmt.Sprintf("mtf_confluence_%s_%d_%d", idSymbol(symbol), int(s.MaxGain*10), s.Time.Unix()),
		Symbol:       symbol,
		Name:         fmt.Sprintf("Multi-TF Pattern (%s)", strings.Join(tfs, "+")),
		Kind:         models.KindMTFConfluence,
		Timeframes:   tfs,
		Conditions:   conds,
		ProfitTarget: math.Min(s.MaxGain*targetFromGain, maxProfitTarget),
		StopLoss:     patternStopLoss,
		Lookahead:    validationLookahead,
		DiscoveredAt: now,
	}, true
}

func signature(conds []models.Condition) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	return strings.Join(parts, ";")
}
