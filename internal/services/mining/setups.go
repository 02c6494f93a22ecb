package mining

import (
	"sort"
	"time"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/services/indicators"
)

const (
	setupHistory     = 50
	setupFuture      = 50
	setupForward     = 25
	setupRewardRisk  = 1.5
	maxSetups        = 50
	minSnapshotFrame = 2
)

// Setup is a historically profitable entry on the base timeframe together
// with the nearest candle index on every other loaded timeframe.
type Setup struct {
	Index       int
	Time        time.Time
	EntryPrice  float64
	MaxGain     float64
	MaxDrawdown float64
	Snapshot    map[string]int
}

// forwardMove is the best high and worst low over the next horizon candles,
// in percent of the close at i. ok is false when the horizon runs past the end.
func forwardMove(candles []models.Candle, i, horizon int) (gain, drawdown float64, ok bool) {
	if i < 0 || i+horizon >= len(candles) || horizon <= 0 {
		return 0, 0, false
	}
	entry := candles[i].Close
	if entry <= 0 {
		return 0, 0, false
	}
	hi, lo := candles[i+1].High, candles[i+1].Low
	for j := i + 2; j <= i+horizon; j++ {
		if candles[j].High > hi {
			hi = candles[j].High
		}
		if candles[j].Low < lo {
			lo = candles[j].Low
		}
	}
	return (hi - entry) / entry * 100, (entry - lo) / entry * 100, true
}

// nearestIndex returns the candle whose bucket is closest to t; ties keep the
// earlier candle. -1 on empty input.
func nearestIndex(candles []models.Candle, t time.Time) int {
	n := len(candles)
	if n == 0 {
		return -1
	}
	j := sort.Search(n, func(k int) bool { return !candles[k].Bucket.Before(t) })
	switch {
	case j == 0:
		return 0
	case j == n:
		return n - 1
	}
	if candles[j].Bucket.Sub(t) < t.Sub(candles[j-1].Bucket) {
		return j
	}
	return j - 1
}

// findSetups scans base indices with enough history and future whose forward
// window closes before trainEnd. Results are sorted by gain, best first.
func findSetups(base *indicators.FeatureFrame, frames map[string]*indicators.FeatureFrame, trainEnd int, threshold float64) []Setup {
	var out []Setup
	candles := base.Candles
	for i := setupHistory; i < len(candles)-setupFuture; i++ {
		if i+setupForward >= trainEnd {
			break
		}
		gain, drawdown, ok := forwardMove(candles, i, setupForward)
		if !ok {
			continue
		}
		if gain < threshold || gain <= setupRewardRisk*drawdown {
			continue
		}
		snap := make(map[string]int, len(frames))
		for tf, ff := range frames {
			if idx := nearestIndex(ff.Candles, candles[i].Bucket); idx >= 0 {
				snap[tf] = idx
			}
		}
		if len(snap) < minSnapshotFrame {
			continue
		}
		out = append(out, Setup{
			Index:       i,
			Time:        candles[i].Bucket,
			EntryPrice:  candles[i].Close,
			MaxGain:     gain,
			MaxDrawdown: drawdown,
			Snapshot:    snap,
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].MaxGain > out[b].MaxGain })
	if len(out) > maxSetups {
		out = out[:maxSetups]
	}
	return out
}
