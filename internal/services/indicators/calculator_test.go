package indicators

import (
	"math"
	"testing"
	"time"

	"CryptoBrain/internal/domain/models"
)

func candlesFromCloses(closes []float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		out[i] = models.Candle{
			Bucket: t0.Add(time.Duration(i) * time.Hour),
			Open:   open,
			High:   math.Max(open, c) * 1.001,
			Low:    math.Min(open, c) * 0.999,
			Close:  c,
			Volume: 100,
		}
	}
	return out
}

func lcgCloses(n int) []float64 {
	out := make([]float64, n)
	seed := uint32(7)
	price := 100.0
	for i := range out {
		seed = seed*1664525 + 1013904223
		step := (float64(seed%2001) - 1000) / 1000 * 0.02
		price *= 1 + step
		out[i] = price
	}
	return out
}

func TestComputeShortInputIsUnaugmented(t *testing.T) {
	f := Compute(candlesFromCloses(lcgCloses(MaxLookback - 1)))
	if f.Augmented {
		t.Fatalf("expected unaugmented frame")
	}
	if f.EMA9 != nil || f.RSI14 != nil || f.Support != nil {
		t.Fatalf("expected nil columns on short input")
	}
	if f.Len() != MaxLookback-1 {
		t.Fatalf("candles must be kept, got %d", f.Len())
	}
}

func TestComputeMarksWarmupAsNaN(t *testing.T) {
	f := Compute(candlesFromCloses(lcgCloses(60)))
	if !f.Augmented {
		t.Fatalf("expected augmented frame")
	}
	cases := []struct {
		name  string
		col   []float64
		first int
	}{
		{"ema9", f.EMA9, 8},
		{"ema50", f.EMA50, 49},
		{"rsi14", f.RSI14, 14},
		{"macd", f.MACD, 25},
		{"macd_signal", f.MACDSignal, 33},
		{"bb_middle", f.BBMiddle, 19},
		{"atr14", f.ATR14, 13},
		{"volume_ratio", f.VolumeRatio, 19},
		{"support", f.Support, 19},
	}
	for _, tc := range cases {
		if len(tc.col) != 60 {
			t.Fatalf("%s: len %d", tc.name, len(tc.col))
		}
		for i := 0; i < tc.first; i++ {
			if !math.IsNaN(tc.col[i]) {
				t.Fatalf("%s[%d] = %v, want NaN", tc.name, i, tc.col[i])
			}
		}
		if math.IsNaN(tc.col[tc.first]) {
			t.Fatalf("%s[%d] is NaN, want value", tc.name, tc.first)
		}
	}
}

func TestEMASeededFromFirstValue(t *testing.T) {
	got := EMA([]float64{10, 20, 20}, 3)
	if got[0] != 10 {
		t.Fatalf("seed = %v, want 10", got[0])
	}
	if got[1] != 15 {
		t.Fatalf("ema[1] = %v, want 15", got[1])
	}
	if got[2] != 17.5 {
		t.Fatalf("ema[2] = %v, want 17.5", got[2])
	}
}

func TestRSIStaysInBounds(t *testing.T) {
	rsi := RSI(lcgCloses(500), PeriodRSI)
	for i, v := range rsi {
		if i < PeriodRSI {
			continue
		}
		if math.IsNaN(v) || v < 0 || v > 100 {
			t.Fatalf("rsi[%d] = %v out of [0,100]", i, v)
		}
	}
}

func TestRSIIsHundredWithoutLosses(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi := RSI(closes, PeriodRSI)
	for i := PeriodRSI; i < len(rsi); i++ {
		if rsi[i] != 100 {
			t.Fatalf("rsi[%d] = %v, want 100", i, rsi[i])
		}
	}
}

func TestRSIFlatSeriesIsNeutral(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 42
	}
	if got := RSI(closes, PeriodRSI)[29]; got != 50 {
		t.Fatalf("flat rsi = %v, want 50", got)
	}
}

func TestRSIKnownValue(t *testing.T) {
	// 14 deltas: seven +2 and seven -1 -> avg gain 1, avg loss 0.5 -> rsi 66.67
	closes := []float64{100}
	for i := 0; i < 7; i++ {
		closes = append(closes, closes[len(closes)-1]+2, closes[len(closes)-1]+1)
	}
	for i := 2; i < len(closes); i += 2 {
		closes[i] = closes[i-1] - 1
	}
	got := RSI(closes, PeriodRSI)[14]
	if math.Abs(got-200.0/3) > 1e-9 {
		t.Fatalf("rsi = %v, want 66.67", got)
	}
}

func TestLevelsAverageThreeExtremes(t *testing.T) {
	lows := make([]float64, 20)
	highs := make([]float64, 20)
	for i := range lows {
		lows[i] = float64(20 - i)
		highs[i] = float64(i + 1)
	}
	support, resistance := Levels(lows, highs, 20, 3)
	if support[19] != 2 {
		t.Fatalf("support = %v, want 2", support[19])
	}
	if resistance[19] != 19 {
		t.Fatalf("resistance = %v, want 19", resistance[19])
	}
	if !math.IsNaN(support[18]) {
		t.Fatalf("support before window must be NaN")
	}
}

func TestVolumeRatioZeroVolumeIsNeutral(t *testing.T) {
	candles := candlesFromCloses(lcgCloses(60))
	for i := range candles {
		candles[i].Volume = 0
	}
	f := Compute(candles)
	if got := f.VolumeRatio[59]; got != 1 {
		t.Fatalf("volume ratio = %v, want 1", got)
	}
}

func TestTrueRangeUsesPreviousClose(t *testing.T) {
	high := []float64{11, 12}
	low := []float64{9, 11.5}
	closes := []float64{10, 11.8}
	tr := TrueRange(high, low, closes)
	if tr[0] != 2 {
		t.Fatalf("tr[0] = %v, want 2", tr[0])
	}
	if tr[1] != 2 {
		t.Fatalf("tr[1] = %v, want 2 (gap from previous close)", tr[1])
	}
}

func TestBollingerFlatSeriesCollapses(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 10
	}
	up, mid, lo := Bollinger(closes, 20, 2)
	if math.Abs(mid[29]-10) > 1e-9 || math.Abs(up[29]-10) > 1e-6 || math.Abs(lo[29]-10) > 1e-6 {
		t.Fatalf("bands = %v/%v/%v, want 10", up[29], mid[29], lo[29])
	}
}
