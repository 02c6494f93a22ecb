package analytics

import (
	"math"
	"testing"
	"time"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/services/indicators"
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

func geometric(n int, start, step float64) []float64 {
	out := make([]float64, n)
	out[0] = start
	for i := 1; i < n; i++ {
		out[i] = out[i-1] * step
	}
	return out
}

func frame(closes []float64) *indicators.Frame {
	return indicators.Compute(candlesFromCloses(closes))
}

func TestRegimeFlatSeriesIsRanging(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	r := DetectRegime("1h", frame(closes))
	if r.Label != models.RegimeRanging {
		t.Fatalf("label = %s, want RANGING", r.Label)
	}
	if r.PriceRangePct >= 3 {
		t.Fatalf("range = %v%%", r.PriceRangePct)
	}
}

func TestRegimeSteadyClimbIsTrendingUp(t *testing.T) {
	r := DetectRegime("1h", frame(geometric(60, 100, 1.001)))
	if r.Label != models.RegimeTrendingUp {
		t.Fatalf("label = %s, want TRENDING_UP", r.Label)
	}
	if r.TrendStrength != 100 || r.Confidence != 95 {
		t.Fatalf("strength/confidence = %v/%v, want 100/95", r.TrendStrength, r.Confidence)
	}
}

func TestRegimeSteadyDeclineIsTrendingDown(t *testing.T) {
	r := DetectRegime("1h", frame(geometric(60, 100, 0.999)))
	if r.Label != models.RegimeTrendingDown {
		t.Fatalf("label = %s, want TRENDING_DOWN", r.Label)
	}
	if r.TrendStrength != -100 {
		t.Fatalf("strength = %v, want -100", r.TrendStrength)
	}
}

func TestRegimeVolatileTakesPrecedenceOverTrend(t *testing.T) {
	// Calm climb followed by an accelerating run: the structure is a clean
	// uptrend above both EMAs, and the ATR ratio and range are both expanded.
	closes := geometric(80, 100, 1.001)
	closes = append(closes, geometric(21, closes[79], 1.01)[1:]...)
	r := DetectRegime("1h", frame(closes))
	if r.Label != models.RegimeVolatile {
		t.Fatalf("label = %s, want VOLATILE", r.Label)
	}
	if r.VolatilityRatio <= 1.5 || r.PriceRangePct <= 5 {
		t.Fatalf("ratio/range = %v/%v", r.VolatilityRatio, r.PriceRangePct)
	}
	if r.Confidence > 95 {
		t.Fatalf("confidence %v above cap", r.Confidence)
	}
}

func TestRegimeShortInputIsUnknown(t *testing.T) {
	r := DetectRegime("1h", frame(geometric(30, 100, 1.001)))
	if r.Label != models.RegimeUnknown || r.Confidence != 0 {
		t.Fatalf("got %+v", r)
	}
}

func TestAggregateRegimesVote(t *testing.T) {
	up := models.Regime{Label: models.RegimeTrendingUp}
	rng := models.Regime{Label: models.RegimeRanging}
	mixed := models.Regime{Label: models.RegimeMixed}

	m := AggregateRegimes("BTCUSDT", []models.Regime{up, up, up, rng, mixed})
	if m.Overall != models.StructureStrongUptrend || m.Alignment != 60 {
		t.Fatalf("got %s/%v", m.Overall, m.Alignment)
	}
	m = AggregateRegimes("BTCUSDT", []models.Regime{up, rng, rng, mixed})
	if m.Overall != models.StructureRanging {
		t.Fatalf("got %s, want RANGING_MARKET", m.Overall)
	}
	m = AggregateRegimes("BTCUSDT", nil)
	if m.Overall != models.StructureMixed || m.Strategy == "" {
		t.Fatalf("empty vote = %+v", m)
	}
}
