package indicators

import (
	"math"
	"sort"

	"CryptoBrain/internal/domain/models"

	"github.com/markcheno/go-talib"
)

// Lookback periods.
const (
	PeriodEMAFast   = 9
	PeriodEMAMid    = 20
	PeriodEMAAlign  = 21
	PeriodEMASlow   = 50
	PeriodRSI       = 14
	PeriodMACDFast  = 12
	PeriodMACDSlow  = 26
	PeriodMACDSig   = 9
	PeriodBollinger = 20
	BollingerK      = 2.0
	PeriodATR       = 14
	PeriodVolume    = 20
	PeriodLevels    = 20
	levelsExtremes  = 3

	// MaxLookback is the largest lookback; shorter input is not augmented.
	MaxLookback = PeriodEMASlow
)

// Frame is a candle series with column-oriented derived fields.
// Every column has len(Candles) entries; NaN marks insufficient history.
// When Augmented is false all columns are nil.
type Frame struct {
	Candles   []models.Candle
	Augmented bool

	Close []float64
	High  []float64
	Low   []float64
	Open  []float64

	EMA9  []float64
	EMA20 []float64
	EMA21 []float64
	EMA50 []float64

	RSI14 []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	BBUpper  []float64
	BBMiddle []float64
	BBLower  []float64

	ATR14 []float64

	VolumeSMA   []float64
	VolumeRatio []float64

	// Support and Resistance are the mean of the 3 lowest lows / highest highs over 20 candles.
	Support    []float64
	Resistance []float64
}

// Len is the number of candles in the frame.
func (f *Frame) Len() int { return len(f.Candles) }

// Last is the index of the latest candle, -1 when empty.
func (f *Frame) Last() int { return len(f.Candles) - 1 }

// Compute builds the core indicator frame. Input shorter than MaxLookback
// yields an unaugmented frame; callers check Augmented before reading columns.
func Compute(candles []models.Candle) *Frame {
	f := &Frame{Candles: candles}
	if len(candles) < MaxLookback {
		return f
	}
	n := len(candles)
	f.Open = make([]float64, n)
	f.High = make([]float64, n)
	f.Low = make([]float64, n)
	f.Close = make([]float64, n)
	vol := make([]float64, n)
	for i, c := range candles {
		f.Open[i], f.High[i], f.Low[i], f.Close[i], vol[i] = c.Open, c.High, c.Low, c.Close, c.Volume
	}

	f.EMA9 = maskHead(EMA(f.Close, PeriodEMAFast), PeriodEMAFast-1)
	f.EMA20 = maskHead(EMA(f.Close, PeriodEMAMid), PeriodEMAMid-1)
	f.EMA21 = maskHead(EMA(f.Close, PeriodEMAAlign), PeriodEMAAlign-1)
	f.EMA50 = maskHead(EMA(f.Close, PeriodEMASlow), PeriodEMASlow-1)
	f.RSI14 = RSI(f.Close, PeriodRSI)
	f.MACD, f.MACDSignal, f.MACDHist = MACD(f.Close, PeriodMACDFast, PeriodMACDSlow, PeriodMACDSig)
	f.BBUpper, f.BBMiddle, f.BBLower = Bollinger(f.Close, PeriodBollinger, BollingerK)
	f.ATR14 = ATR(f.High, f.Low, f.Close, PeriodATR)
	f.VolumeSMA = SMA(vol, PeriodVolume)
	f.VolumeRatio = make([]float64, n)
	for i := range vol {
		switch {
		case math.IsNaN(f.VolumeSMA[i]):
			f.VolumeRatio[i] = math.NaN()
		case f.VolumeSMA[i] == 0:
			f.VolumeRatio[i] = 1.0
		default:
			f.VolumeRatio[i] = vol[i] / f.VolumeSMA[i]
		}
	}
	f.Support, f.Resistance = Levels(f.Low, f.High, PeriodLevels, levelsExtremes)
	f.Augmented = true
	return f
}

// EMA seeds from the first value and smooths with alpha = 2/(period+1).
// No masking is applied.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || period <= 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// SMA is the rolling mean; the first period-1 entries are NaN.
func SMA(values []float64, period int) []float64 {
	if len(values) < period || period <= 0 {
		return nanSlice(len(values))
	}
	return maskHead(talib.Sma(values, period), period-1)
}

// RSI uses simple rolling means of gains and losses over period deltas.
// Average loss of zero yields 100 (50 when gains are zero as well).
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) <= period || period <= 0 {
		return out
	}
	for i := period; i < len(closes); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - closes[j-1]
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}
		out[i] = rsiValue(gain/float64(period), loss/float64(period))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// MACD returns line, signal and histogram. The line is NaN before slow-1,
// the signal and histogram before slow+signal-2.
func MACD(closes []float64, fast, slow, signal int) ([]float64, []float64, []float64) {
	n := len(closes)
	ef, es := EMA(closes, fast), EMA(closes, slow)
	line := make([]float64, n)
	for i := range closes {
		line[i] = ef[i] - es[i]
	}
	sig := EMA(line, signal)
	hist := make([]float64, n)
	for i := range line {
		hist[i] = line[i] - sig[i]
	}
	return maskHead(line, slow-1), maskHead(sig, slow+signal-2), maskHead(hist, slow+signal-2)
}

// Bollinger returns upper, middle and lower bands over a simple moving average.
func Bollinger(closes []float64, period int, k float64) ([]float64, []float64, []float64) {
	if len(closes) < period {
		return nanSlice(len(closes)), nanSlice(len(closes)), nanSlice(len(closes))
	}
	upper, middle, lower := talib.BBands(closes, period, k, k, talib.SMA)
	return maskHead(upper, period-1), maskHead(middle, period-1), maskHead(lower, period-1)
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|); the first bar uses high-low.
func TrueRange(high, low, close []float64) []float64 {
	if len(close) == 0 {
		return nil
	}
	tr := talib.TRange(high, low, close)
	tr[0] = high[0] - low[0]
	return tr
}

// ATR is the rolling mean of the true range.
func ATR(high, low, close []float64, period int) []float64 {
	return SMA(TrueRange(high, low, close), period)
}

// Levels returns the mean of the k lowest lows and k highest highs in each trailing window.
func Levels(lows, highs []float64, window, k int) ([]float64, []float64) {
	n := len(lows)
	support, resistance := nanSlice(n), nanSlice(n)
	if n < window || k <= 0 || k > window {
		return support, resistance
	}
	lo := make([]float64, window)
	hi := make([]float64, window)
	for i := window - 1; i < n; i++ {
		copy(lo, lows[i-window+1:i+1])
		copy(hi, highs[i-window+1:i+1])
		sort.Float64s(lo)
		sort.Float64s(hi)
		support[i] = mean(lo[:k])
		resistance[i] = mean(hi[window-k:])
	}
	return support, resistance
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

func maskHead(v []float64, n int) []float64 {
	for i := 0; i < n && i < len(v); i++ {
		v[i] = math.NaN()
	}
	return v
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
