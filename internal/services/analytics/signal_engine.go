package analytics

import (
	"math"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/services/indicators"
)

const (
	overboughtRSI  = 70.0
	supportBand    = 1.01
	resistanceBand = 0.99
)

// AnalyzeTimeframe derives the trend ladder and the BUY/SELL/WAIT call for
// one timeframe. Frames shorter than the max lookback give UNKNOWN/WAIT.
func AnalyzeTimeframe(timeframe string, f *indicators.Frame) models.TimeframeSignal {
	out := models.TimeframeSignal{
		Timeframe: timeframe,
		Trend:     models.TrendUnknown,
		Signal:    models.ActionWait,
		Candles:   f.Len(),
	}
	last := f.Last()
	if last >= 0 {
		out.CurrentPrice = f.Candles[last].Close
	}
	if !f.Augmented || f.Len() < indicators.MaxLookback {
		return out
	}

	price := f.Close[last]
	ema9, ema20, ema50 := f.EMA9[last], f.EMA20[last], f.EMA50[last]
	rsi := f.RSI14[last]
	support, resistance := f.Support[last], f.Resistance[last]
	if math.IsNaN(ema9) || math.IsNaN(ema20) || math.IsNaN(ema50) || math.IsNaN(rsi) {
		return out
	}

	out.Trend, out.Strength = trendLadder(price, ema9, ema20, ema50)
	out.RSI = rsi
	out.Support = indicators.Finite(support)
	out.Resistance = indicators.Finite(resistance)
	out.Signal = decideSignal(out.Trend, rsi, price, support, resistance)
	return out
}

// decideSignal maps a trend rung to BUY/SELL/WAIT. RANGING trades the
// levels: BUY within 1% above support, SELL within 1% below resistance.
func decideSignal(trend models.Trend, rsi, price, support, resistance float64) models.Action {
	switch {
	case trend.IsUp() && rsi < overboughtRSI:
		return models.ActionBuy
	case trend.IsDown():
		return models.ActionSell
	case trend == models.TrendRanging:
		switch {
		case !math.IsNaN(support) && price < support*supportBand:
			return models.ActionBuy
		case !math.IsNaN(resistance) && price > resistance*resistanceBand:
			return models.ActionSell
		}
	}
	return models.ActionWait
}

func trendLadder(price, ema9, ema20, ema50 float64) (models.Trend, float64) {
	switch {
	case price > ema9 && ema9 > ema20 && ema20 > ema50:
		return models.TrendStrongUp, 90
	case price > ema20 && ema20 > ema50:
		return models.TrendUp, 70
	case price > ema50:
		return models.TrendWeakUp, 50
	case price < ema9 && ema9 < ema20 && ema20 < ema50:
		return models.TrendStrongDown, -90
	case price < ema20 && ema20 < ema50:
		return models.TrendDown, -70
	case price < ema50:
		return models.TrendWeakDown, -50
	default:
		return models.TrendRanging, 0
	}
}
