package indicators

import (
	"math"

	"CryptoBrain/internal/domain/models"

	"github.com/markcheno/go-talib"
)

// Feature names addressable by pattern conditions.
const (
	FeatureClose          = "close"
	FeatureRSI            = "rsi_14"
	FeatureVolumeRatio    = "volume_ratio"
	FeatureVolumeSpike    = "volume_spike"
	FeatureEMAAlignment   = "ema_alignment"
	FeatureNearSupport    = "near_support"
	FeatureNearResistance = "near_resistance"
	FeatureBBPosition     = "bb_position"
	FeatureMACDHist       = "macd_hist"
	FeatureBodySize       = "body_size"
	FeatureUpperWick      = "upper_wick"
	FeatureLowerWick      = "lower_wick"
	FeatureCandleType     = "candle_type"
	FeatureEMA20Bounce    = "ema_20_bounce"
	FeatureEMA50Bounce    = "ema_50_bounce"
	FeatureRSIOversold    = "rsi_oversold"
)

const (
	volumeSpikeRatio   = 2.0
	nearSupportBand    = 1.02
	nearResistanceBand = 0.98
	emaTouchBand       = 1.005
	oversoldRSI        = 30.0
)

// FeatureFrame extends Frame with the columns used by the pattern miner.
type FeatureFrame struct {
	*Frame

	SMA9  []float64
	SMA21 []float64
	SMA50 []float64

	BodySize  []float64
	UpperWick []float64
	LowerWick []float64
	// CandleType is 1 for a bullish bar, -1 bearish, 0 doji-flat.
	CandleType []float64

	// RollingSupport/RollingResistance are the plain 20-candle min low / max high.
	RollingSupport    []float64
	RollingResistance []float64

	VolumeSpike    []float64
	NearSupport    []float64
	NearResistance []float64
	BBPosition     []float64
	EMAAlignment   []float64
	EMA20Bounce    []float64
	EMA50Bounce    []float64
	RSIOversold    []float64
}

// ComputeFeatures builds the extended miner frame. Short input yields an
// unaugmented frame, as with Compute.
func ComputeFeatures(candles []models.Candle) *FeatureFrame {
	ff := &FeatureFrame{Frame: Compute(candles)}
	if !ff.Augmented {
		return ff
	}
	f := ff.Frame
	n := f.Len()

	ff.SMA9 = SMA(f.Close, 9)
	ff.SMA21 = SMA(f.Close, 21)
	ff.SMA50 = SMA(f.Close, 50)
	ff.RollingSupport = maskHead(talib.Min(f.Low, PeriodLevels), PeriodLevels-1)
	ff.RollingResistance = maskHead(talib.Max(f.High, PeriodLevels), PeriodLevels-1)

	ff.BodySize = make([]float64, n)
	ff.UpperWick = make([]float64, n)
	ff.LowerWick = make([]float64, n)
	ff.CandleType = make([]float64, n)
	ff.VolumeSpike = nanSlice(n)
	ff.NearSupport = nanSlice(n)
	ff.NearResistance = nanSlice(n)
	ff.BBPosition = nanSlice(n)
	ff.EMAAlignment = nanSlice(n)
	ff.EMA20Bounce = nanSlice(n)
	ff.EMA50Bounce = nanSlice(n)
	ff.RSIOversold = nanSlice(n)

	for i := 0; i < n; i++ {
		o, h, l, c := f.Open[i], f.High[i], f.Low[i], f.Close[i]
		ff.BodySize[i] = math.Abs(c - o)
		ff.UpperWick[i] = h - math.Max(o, c)
		ff.LowerWick[i] = math.Min(o, c) - l
		switch {
		case c > o:
			ff.CandleType[i] = 1
		case c < o:
			ff.CandleType[i] = -1
		}

		if v := f.VolumeRatio[i]; !math.IsNaN(v) {
			ff.VolumeSpike[i] = flag(v > volumeSpikeRatio)
		}
		if s := ff.RollingSupport[i]; !math.IsNaN(s) {
			ff.NearSupport[i] = flag(l <= s*nearSupportBand)
		}
		if r := ff.RollingResistance[i]; !math.IsNaN(r) {
			ff.NearResistance[i] = flag(h >= r*nearResistanceBand)
		}
		if up, lo := f.BBUpper[i], f.BBLower[i]; !math.IsNaN(up) && !math.IsNaN(lo) {
			if width := up - lo; width > 0 {
				ff.BBPosition[i] = (c - lo) / width
			} else {
				ff.BBPosition[i] = 0.5
			}
		}
		if a, b := f.EMA9[i], f.EMA21[i]; !math.IsNaN(a) && !math.IsNaN(b) {
			ff.EMAAlignment[i] = flag(a > b)
		}
		if e := f.EMA20[i]; !math.IsNaN(e) {
			ff.EMA20Bounce[i] = flag(bounce(c, l, e))
		}
		if e := f.EMA50[i]; !math.IsNaN(e) {
			ff.EMA50Bounce[i] = flag(bounce(c, l, e))
			if r := f.RSI14[i]; !math.IsNaN(r) {
				ff.RSIOversold[i] = flag(r < oversoldRSI && c > e)
			}
		}
	}
	return ff
}

// bounce is a close above the EMA after the low tagged it.
func bounce(close, low, ema float64) bool {
	return close > ema && low <= ema*emaTouchBand && close > low
}

// Feature returns a named feature at index i, NaN when unknown or out of range.
func (ff *FeatureFrame) Feature(name string, i int) float64 {
	if !ff.Augmented || i < 0 || i >= ff.Len() {
		return math.NaN()
	}
	col := ff.column(name)
	if col == nil {
		return math.NaN()
	}
	return col[i]
}

func (ff *FeatureFrame) column(name string) []float64 {
	switch name {
	case FeatureClose:
		return ff.Close
	case FeatureRSI:
		return ff.RSI14
	case FeatureVolumeRatio:
		return ff.VolumeRatio
	case FeatureVolumeSpike:
		return ff.VolumeSpike
	case FeatureEMAAlignment:
		return ff.EMAAlignment
	case FeatureNearSupport:
		return ff.NearSupport
	case FeatureNearResistance:
		return ff.NearResistance
	case FeatureBBPosition:
		return ff.BBPosition
	case FeatureMACDHist:
		return ff.MACDHist
	case FeatureBodySize:
		return ff.BodySize
	case FeatureUpperWick:
		return ff.UpperWick
	case FeatureLowerWick:
		return ff.LowerWick
	case FeatureCandleType:
		return ff.CandleType
	case FeatureEMA20Bounce:
		return ff.EMA20Bounce
	case FeatureEMA50Bounce:
		return ff.EMA50Bounce
	case FeatureRSIOversold:
		return ff.RSIOversold
	}
	return nil
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
