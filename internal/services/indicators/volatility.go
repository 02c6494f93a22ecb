package indicators

import (
	"math"
	"time"
)

// realizedWindow is the number of returns behind the snapshot volatility.
const realizedWindow = 30

// LogReturns is ln(c[i]/c[i-1]); non-positive prices give 0.
// The result is one shorter than closes, or nil.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility is the annualized sample deviation of the last window
// returns. Zero when there are fewer than window returns.
func RealizedVolatility(returns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(returns) < window || barsPerYear <= 0 {
		return 0
	}
	var sum, sum2 float64
	for _, r := range returns[len(returns)-window:] {
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}

// BarsPerYear counts bars of the given width in a 365-day year.
func BarsPerYear(bar time.Duration) float64 {
	if bar <= 0 {
		return 0
	}
	return float64(365*24*time.Hour) / float64(bar)
}
