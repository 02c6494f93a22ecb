package analytics

import (
	"fmt"
	"math"
	"time"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/domain/repository"
)

const (
	planEnterLong = "ENTER_LONG"
	planWait      = "WAIT"
)

// CalculateConfluence aggregates per-timeframe signals. Thresholds are
// inclusive fractions of the signals present; absent timeframes do not count.
func CalculateConfluence(signals []models.TimeframeSignal) models.Confluence {
	out := models.Confluence{Total: len(signals)}
	var strength float64
	for _, s := range signals {
		switch s.Signal {
		case models.ActionBuy, models.ActionStrongBuy:
			out.BuyCount++
		case models.ActionSell:
			out.SellCount++
		default:
			out.WaitCount++
		}
		switch {
		case s.Trend.IsUp():
			out.UptrendCount++
		case s.Trend.IsDown():
			out.DowntrendCount++
		}
		strength += s.Strength
	}

	n := out.Total
	if n == 0 {
		out.Overall = models.ActionWait
		out.Confidence = 30
		out.Reasoning = "Insufficient alignment across timeframes."
		return out
	}
	out.AvgStrength = strength / float64(n)
	out.AlignmentScore = float64(max(out.BuyCount, out.SellCount)) / float64(n) * 100
	buyFrac := float64(out.BuyCount) / float64(n)
	sellFrac := float64(out.SellCount) / float64(n)

	switch {
	case atLeast(out.BuyCount, n, 3, 5) && atLeast(out.UptrendCount, n, 3, 5):
		out.Overall = models.ActionStrongBuy
		out.Confidence = buyFrac * 100
		out.Reasoning = fmt.Sprintf("%d/%d timeframes bullish. Strong multi-TF alignment.", out.BuyCount, n)
	case atLeast(out.BuyCount, n, 2, 5) && atLeast(out.UptrendCount, n, 1, 2):
		out.Overall = models.ActionBuy
		out.Confidence = buyFrac * 80
		out.Reasoning = fmt.Sprintf("%d/%d timeframes bullish. Good confluence.", out.BuyCount, n)
	case atLeast(out.SellCount, n, 3, 5):
		out.Overall = models.ActionSell
		out.Confidence = sellFrac * 100
		out.Reasoning = fmt.Sprintf("%d/%d timeframes bearish. Avoid longs.", out.SellCount, n)
	case atLeast(out.WaitCount, n, 1, 2):
		out.Overall = models.ActionWait
		out.Confidence = 40
		out.Reasoning = "Mixed signals across timeframes. No clear direction."
	default:
		out.Overall = models.ActionWait
		out.Confidence = 30
		out.Reasoning = "Insufficient alignment across timeframes."
	}
	return out
}

// BestEntryTimeframe is the BUY timeframe with the largest absolute strength;
// ties keep the earlier timeframe. Empty when nothing signals BUY.
func BestEntryTimeframe(signals []models.TimeframeSignal) string {
	best, score := "", 0.0
	for _, s := range signals {
		if s.Signal != models.ActionBuy {
			continue
		}
		if v := math.Abs(s.Strength); v > score {
			best, score = s.Timeframe, v
		}
	}
	return best
}

// BuildTradingPlan turns a bullish confluence into an entry on the 5m price,
// a stop at 5m support and a target at 1h resistance. Missing timeframes
// leave the matching level at zero.
func BuildTradingPlan(signals []models.TimeframeSignal, c models.Confluence) models.TradingPlan {
	plan := models.TradingPlan{
		Action:     planWait,
		Confidence: c.Confidence,
		Reasoning:  c.Reasoning,
	}
	if !c.Overall.IsBullish() {
		return plan
	}
	plan.Action = planEnterLong
	plan.Alignment = c.AlignmentScore
	for _, s := range signals {
		switch s.Timeframe {
		case repository.TF5m.String():
			plan.EntryPrice = s.CurrentPrice
			plan.StopLoss = s.Support
		case repository.TF1h.String():
			plan.TakeProfit = s.Resistance
		}
	}
	return plan
}

// BuildAnalysis assembles the full multi-timeframe result from signals that
// were computed for the timeframes that had data.
func BuildAnalysis(symbol string, signals []models.TimeframeSignal, errs map[string]string) *models.MultiTimeframeAnalysis {
	c := CalculateConfluence(signals)
	out := &models.MultiTimeframeAnalysis{
		Symbol:     symbol,
		Timestamp:  time.Now().UTC(),
		Signals:    signals,
		Confluence: c,
		Plan:       BuildTradingPlan(signals, c),
	}
	if c.Overall.IsBullish() {
		out.BestEntry = BestEntryTimeframe(signals)
	}
	if len(errs) > 0 {
		out.Errors = errs
	}
	return out
}
