package analytics

import (
	"math"
	"time"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/services/indicators"
)

const (
	regimeWindow        = 20
	regimeVolWindow     = 50
	volatileRatio       = 1.5
	volatileRange       = 0.05
	trendingScore       = 0.6
	rangingRange        = 0.03
	maxRegimeConfidence = 95.0
)

var structureStrategy = map[models.MarketStructure]string{
	models.StructureStrongUptrend:   "Ride momentum. Buy dips. Hold winners. Increase leverage.",
	models.StructureStrongDowntrend: "Stay defensive. Wait for reversal. Minimal exposure.",
	models.StructureRanging:         "Mean reversion plays. Buy support, sell resistance. Lower leverage.",
	models.StructureMixed:           "Wait for clarity. Reduce position sizes. Be selective.",
}

// DetectRegime classifies the latest window of a frame. Rules are checked in
// order: VOLATILE, TRENDING_UP, TRENDING_DOWN, RANGING, then MIXED.
func DetectRegime(timeframe string, f *indicators.Frame) models.Regime {
	out := models.Regime{Timeframe: timeframe, Label: models.RegimeUnknown, Description: "Not enough history"}
	n := f.Len()
	if !f.Augmented || n < indicators.MaxLookback {
		return out
	}
	last := f.Last()
	price := f.Close[last]
	ema20, ema50, atr := f.EMA20[last], f.EMA50[last], f.ATR14[last]
	if price <= 0 || math.IsNaN(ema20) || math.IsNaN(ema50) || math.IsNaN(atr) {
		return out
	}

	var hh, hl, lh, ll int
	for i := n - regimeWindow; i < n; i++ {
		if i < 1 {
			continue
		}
		switch {
		case f.High[i] > f.High[i-1]:
			hh++
		case f.High[i] < f.High[i-1]:
			lh++
		}
		switch {
		case f.Low[i] > f.Low[i-1]:
			hl++
		case f.Low[i] < f.Low[i-1]:
			ll++
		}
	}
	upScore := float64(hh+hl) / float64(2*regimeWindow)
	downScore := float64(lh+ll) / float64(2*regimeWindow)

	recentVol := atr / price
	volRatio := 1.0
	if avg := averageVolatility(f); avg > 0 {
		volRatio = recentVol / avg
	}

	hi, lo := math.Inf(-1), math.Inf(1)
	for i := n - regimeWindow; i < n; i++ {
		hi = math.Max(hi, f.High[i])
		lo = math.Min(lo, f.Low[i])
	}
	priceRange := (hi - lo) / price

	out.Volatility = recentVol
	out.VolatilityRatio = volRatio
	out.PriceRangePct = priceRange * 100

	switch {
	case volRatio > volatileRatio && priceRange > volatileRange:
		out.Label = models.RegimeVolatile
		out.Confidence = math.Min(volRatio*50, maxRegimeConfidence)
		out.Description = "Volatility expanding with a wide range"
	case upScore >= trendingScore && price > ema20 && price > ema50 && ema20 > ema50:
		out.Label = models.RegimeTrendingUp
		out.TrendStrength = upScore * 100
		out.Confidence = math.Min(upScore*100, maxRegimeConfidence)
		out.Description = "Higher highs and higher lows above rising EMAs"
	case downScore >= trendingScore && price < ema20 && price < ema50 && ema20 < ema50:
		out.Label = models.RegimeTrendingDown
		out.TrendStrength = -downScore * 100
		out.Confidence = math.Min(downScore*100, maxRegimeConfidence)
		out.Description = "Lower highs and lower lows below falling EMAs"
	case priceRange < rangingRange:
		out.Label = models.RegimeRanging
		out.Confidence = (1 - priceRange/rangingRange) * 80
		out.Description = "Tight range, no directional structure"
	default:
		out.Label = models.RegimeMixed
		out.TrendStrength = (upScore - downScore) * 50
		out.Confidence = 40
		out.Description = "No dominant structure"
	}
	return out
}

// averageVolatility is mean ATR over mean close for the trailing window,
// skipping ATR warmup entries.
func averageVolatility(f *indicators.Frame) float64 {
	n := f.Len()
	start := n - regimeVolWindow
	if start < 0 {
		start = 0
	}
	var atrSum, closeSum float64
	var atrN int
	for i := start; i < n; i++ {
		closeSum += f.Close[i]
		if !math.IsNaN(f.ATR14[i]) {
			atrSum += f.ATR14[i]
			atrN++
		}
	}
	if atrN == 0 || closeSum == 0 {
		return 0
	}
	return (atrSum / float64(atrN)) / (closeSum / float64(n-start))
}

// AggregateRegimes votes the per-timeframe regimes into one market structure.
// The result is descriptive and never feeds the confluence computation.
func AggregateRegimes(symbol string, regimes []models.Regime) models.MultiTimeframeRegime {
	out := models.MultiTimeframeRegime{
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		Overall:   models.StructureMixed,
		Regimes:   regimes,
	}
	total := len(regimes)
	if total == 0 {
		out.Strategy = structureStrategy[out.Overall]
		return out
	}
	var up, down, ranging int
	for _, r := range regimes {
		switch r.Label {
		case models.RegimeTrendingUp:
			up++
		case models.RegimeTrendingDown:
			down++
		case models.RegimeRanging:
			ranging++
		}
	}
	switch {
	case atLeast(up, total, 3, 5):
		out.Overall = models.StructureStrongUptrend
	case atLeast(down, total, 3, 5):
		out.Overall = models.StructureStrongDowntrend
	case atLeast(ranging, total, 1, 2):
		out.Overall = models.StructureRanging
	}
	out.Strategy = structureStrategy[out.Overall]
	out.Alignment = float64(max(up, down, ranging)) / float64(total) * 100
	return out
}

// atLeast reports count/total >= num/den without floating point.
func atLeast(count, total, num, den int) bool {
	return count*den >= total*num
}
