package mining

import (
	"math"
	"sort"
	"time"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/domain/repository"
	"CryptoBrain/internal/services/indicators"
)

// Outcome of one simulated trade.
type Outcome string

const (
	OutcomeWin     Outcome = "WIN"
	OutcomeLoss    Outcome = "LOSS"
	OutcomeNeutral Outcome = "NEUTRAL"
)

const (
	validationLookahead = 10
	validationWarmup    = indicators.MaxLookback
)

// outcomeRule grades a trade entered at the close of candle i. Strict rules
// need the move to exceed the level, the others to reach it.
type outcomeRule struct {
	Lookahead int
	Target    float64
	Stop      float64
	Strict    bool
}

func (r outcomeRule) evaluate(candles []models.Candle, i int) (Outcome, float64, bool) {
	gain, drawdown, ok := forwardMove(candles, i, r.Lookahead)
	if !ok {
		return "", 0, false
	}
	reached := func(move, level float64) bool {
		if r.Strict {
			return move > level
		}
		return move >= level
	}
	switch {
	case reached(gain, r.Target):
		return OutcomeWin, gain, true
	case reached(drawdown, r.Stop):
		return OutcomeLoss, -drawdown, true
	default:
		return OutcomeNeutral, 0, true
	}
}

type tally struct {
	wins, losses, neutral int
	winGain               float64
}

func (t *tally) add(o Outcome, profit float64) {
	switch o {
	case OutcomeWin:
		t.wins++
		t.winGain += profit
	case OutcomeLoss:
		t.losses++
	case OutcomeNeutral:
		t.neutral++
	}
}

func (t tally) signals() int { return t.wins + t.losses + t.neutral }

// performance turns the tally into win statistics. Neutral trades are
// excluded from the denominator; no decided trades gives a zero rate.
func (t tally) performance() models.Performance {
	perf := models.Performance{Wins: t.wins, Losses: t.losses, Neutral: t.neutral}
	decided := t.wins + t.losses
	if decided == 0 {
		return perf
	}
	perf.TotalTrades = decided
	perf.WinRate = float64(t.wins) / float64(decided)
	perf.ConfidenceScore = perf.WinRate * 100
	if t.wins > 0 {
		perf.AvgProfitPct = t.winGain / float64(t.wins)
	}
	return perf
}

// closedIndex returns the last candle of width d that has closed by t, or -1.
func closedIndex(candles []models.Candle, d time.Duration, t time.Time) int {
	if d <= 0 {
		return -1
	}
	return sort.Search(len(candles), func(k int) bool { return candles[k].Bucket.Add(d).After(t) }) - 1
}

// validate replays a pattern over the primary timeframe from the given time
// onwards. Other timeframes are read at their last candle closed by the
// entry candle's close.
func validate(p models.CandidatePattern, frames map[string]*indicators.FeatureFrame, from time.Time) models.Performance {
	primary, ok := frames[p.PrimaryTimeframe()]
	if !ok || !primary.Augmented || len(p.Conditions) == 0 {
		return models.Performance{}
	}
	rule := outcomeRule{Lookahead: p.Lookahead, Target: p.ProfitTarget, Stop: p.StopLoss}
	if rule.Lookahead <= 0 {
		rule.Lookahead = validationLookahead
	}
	candles := primary.Candles
	step := repository.Timeframe(p.PrimaryTimeframe()).Duration()
	start := sort.Search(len(candles), func(k int) bool { return !candles[k].Bucket.Before(from) })
	if start < validationWarmup {
		start = validationWarmup
	}

	var t tally
	for i := start; i+rule.Lookahead < len(candles); i++ {
		closeAt := candles[i].Bucket.Add(step)
		lookup := func(c models.Condition) float64 {
			ff, ok := frames[c.Timeframe]
			if !ok {
				return math.NaN()
			}
			if c.Timeframe == p.PrimaryTimeframe() {
				return ff.Feature(c.Feature, i)
			}
			return ff.Feature(c.Feature, closedIndex(ff.Candles, repository.Timeframe(c.Timeframe).Duration(), closeAt))
		}
		if !matches(p.Conditions, lookup) {
			continue
		}
		if o, profit, ok := rule.evaluate(candles, i); ok {
			t.add(o, profit)
		}
	}
	return t.performance()
}
