package analytics

import (
	"math"
	"testing"

	"CryptoBrain/internal/domain/models"
)

// zigzagUptrend climbs 0.2% per bar with a +/-0.4% alternation, ending on
// an up bar. RSI settles in the low 60s.
func zigzagUptrend(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		side := -1.0
		if i%2 == (n-1)%2 {
			side = 1
		}
		out[i] = 100 * math.Pow(1.002, float64(i)) * (1 + 0.004*side)
	}
	return out
}

func TestAnalyzeShortInputIsUnknown(t *testing.T) {
	s := AnalyzeTimeframe("5m", frame(geometric(49, 100, 1.001)))
	if s.Trend != models.TrendUnknown || s.Signal != models.ActionWait || s.Strength != 0 {
		t.Fatalf("got %+v", s)
	}
	if s.Candles != 49 {
		t.Fatalf("candles = %d", s.Candles)
	}
}

func TestAnalyzeConstantGrowth(t *testing.T) {
	// Every delta is a gain, so RSI is exactly 100 and the overbought guard
	// holds the signal at WAIT despite the strong trend.
	s := AnalyzeTimeframe("1h", frame(geometric(60, 100, 1.001)))
	if s.Trend != models.TrendStrongUp || s.Strength != 90 {
		t.Fatalf("trend = %s/%v, want STRONG_UPTREND/90", s.Trend, s.Strength)
	}
	if s.RSI != 100 {
		t.Fatalf("rsi = %v, want 100", s.RSI)
	}
	if s.Signal != models.ActionWait {
		t.Fatalf("signal = %s, want WAIT", s.Signal)
	}
}

func TestAnalyzeZigzagUptrendBuys(t *testing.T) {
	s := AnalyzeTimeframe("1h", frame(zigzagUptrend(60)))
	if s.Trend != models.TrendStrongUp {
		t.Fatalf("trend = %s, want STRONG_UPTREND", s.Trend)
	}
	if s.RSI >= 70 || s.RSI <= 50 {
		t.Fatalf("rsi = %v, want between 50 and 70", s.RSI)
	}
	if s.Signal != models.ActionBuy {
		t.Fatalf("signal = %s, want BUY", s.Signal)
	}
	if s.Support <= 0 || s.Resistance <= s.Support {
		t.Fatalf("levels = %v/%v", s.Support, s.Resistance)
	}
}

func TestAnalyzeDeclineSells(t *testing.T) {
	s := AnalyzeTimeframe("1h", frame(geometric(60, 100, 0.999)))
	if s.Trend != models.TrendStrongDown || s.Strength != -90 {
		t.Fatalf("trend = %s/%v", s.Trend, s.Strength)
	}
	if s.Signal != models.ActionSell {
		t.Fatalf("signal = %s, want SELL", s.Signal)
	}
}

func TestDecideSignal(t *testing.T) {
	cases := []struct {
		name  string
		trend models.Trend
		rsi   float64
		price float64
		want  models.Action
	}{
		{"uptrend", models.TrendUp, 55, 100, models.ActionBuy},
		{"weak uptrend", models.TrendWeakUp, 55, 100, models.ActionBuy},
		{"overbought", models.TrendStrongUp, 70, 100, models.ActionWait},
		{"weak downtrend", models.TrendWeakDown, 20, 100, models.ActionSell},
		{"ranging at support", models.TrendRanging, 50, 90.5, models.ActionBuy},
		{"ranging at resistance", models.TrendRanging, 50, 109.5, models.ActionSell},
		{"ranging mid", models.TrendRanging, 50, 100, models.ActionWait},
		{"unknown", models.TrendUnknown, 50, 100, models.ActionWait},
	}
	for _, tc := range cases {
		if got := decideSignal(tc.trend, tc.rsi, tc.price, 90, 110); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestTrendLadderEqualPricesRange(t *testing.T) {
	if trend, strength := trendLadder(100, 100, 100, 100); trend != models.TrendRanging || strength != 0 {
		t.Fatalf("got %s/%v", trend, strength)
	}
	if trend, _ := trendLadder(101, 102, 100, 99); trend != models.TrendUp {
		t.Fatalf("got %s, want UPTREND", trend)
	}
}

func TestSevenIdenticalUptrendsAreStrongBuy(t *testing.T) {
	closes := zigzagUptrend(80)
	var in []models.TimeframeSignal
	for _, tf := range []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d"} {
		in = append(in, AnalyzeTimeframe(tf, frame(closes)))
	}
	c := CalculateConfluence(in)
	if c.Overall != models.ActionStrongBuy {
		t.Fatalf("overall = %s, want STRONG_BUY", c.Overall)
	}
	if c.AlignmentScore != 100 || c.Confidence != 100 {
		t.Fatalf("alignment/confidence = %v/%v", c.AlignmentScore, c.Confidence)
	}
}
