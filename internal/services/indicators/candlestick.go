package indicators

import (
	"math"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/domain/repository"
)

const (
	BiasBullish = "BULLISH"
	BiasBearish = "BEARISH"
	BiasNeutral = "NEUTRAL"

	CrossGolden  = "GOLDEN_CROSS"
	CrossDeath   = "DEATH_CROSS"
	CrossBullish = "BULLISH"
	CrossBearish = "BEARISH"

	BandAboveUpper = "ABOVE_UPPER"
	BandBelowLower = "BELOW_LOWER"
	BandUpperHalf  = "UPPER_HALF"
	BandLowerHalf  = "LOWER_HALF"
)

// candlestickWindow is how many trailing bars are scanned for shapes.
const candlestickWindow = 3

// DetectCandlesticks scans the last bars for single- and two-bar shapes.
// Fewer than three candles returns nothing and a neutral bias.
func DetectCandlesticks(candles []models.Candle) ([]models.CandlestickPattern, string) {
	if len(candles) < candlestickWindow {
		return nil, BiasNeutral
	}
	var found []models.CandlestickPattern
	start := len(candles) - candlestickWindow
	for i := start; i < len(candles); i++ {
		c := candles[i]
		offset := len(candles) - 1 - i
		body := math.Abs(c.Close - c.Open)
		upper := c.High - math.Max(c.Open, c.Close)
		lower := math.Min(c.Open, c.Close) - c.Low
		rng := c.High - c.Low
		bullish := c.Close > c.Open

		switch {
		case rng > 0 && body < 0.1*rng:
			found = append(found, models.CandlestickPattern{Name: "DOJI", Bias: BiasNeutral, Offset: offset})
		case body > 0 && lower > 2*body && upper < 0.3*body && bullish:
			found = append(found, models.CandlestickPattern{Name: "HAMMER", Bias: BiasBullish, Offset: offset})
		case body > 0 && upper > 2*body && lower < 0.3*body && bullish:
			found = append(found, models.CandlestickPattern{Name: "INVERTED_HAMMER", Bias: BiasBullish, Offset: offset})
		case body > 0 && upper > 2*body && lower < 0.3*body && !bullish:
			found = append(found, models.CandlestickPattern{Name: "SHOOTING_STAR", Bias: BiasBearish, Offset: offset})
		}

		if i == start {
			continue
		}
		p := candles[i-1]
		switch {
		case p.Close < p.Open && bullish && c.Open <= p.Close && c.Close >= p.Open:
			found = append(found, models.CandlestickPattern{Name: "BULLISH_ENGULFING", Bias: BiasBullish, Offset: offset})
		case p.Close > p.Open && !bullish && c.Open >= p.Close && c.Close <= p.Open:
			found = append(found, models.CandlestickPattern{Name: "BEARISH_ENGULFING", Bias: BiasBearish, Offset: offset})
		}
	}

	var bulls, bears int
	for _, p := range found {
		switch p.Bias {
		case BiasBullish:
			bulls++
		case BiasBearish:
			bears++
		}
	}
	switch {
	case bulls > bears:
		return found, BiasBullish
	case bears > bulls:
		return found, BiasBearish
	default:
		return found, BiasNeutral
	}
}

// Crossover classifies the EMA9/EMA21 relationship at the last bar.
func Crossover(f *Frame) string {
	last := f.Last()
	if !f.Augmented || last < 1 {
		return ""
	}
	fast, slow := f.EMA9[last], f.EMA21[last]
	pf, ps := f.EMA9[last-1], f.EMA21[last-1]
	if anyNaN(fast, slow, pf, ps) {
		return ""
	}
	switch {
	case pf <= ps && fast > slow:
		return CrossGolden
	case pf >= ps && fast < slow:
		return CrossDeath
	case fast > slow:
		return CrossBullish
	default:
		return CrossBearish
	}
}

// BandPosition places the last close relative to the Bollinger bands.
func BandPosition(f *Frame) string {
	last := f.Last()
	if !f.Augmented || last < 0 {
		return ""
	}
	c, up, mid, lo := f.Close[last], f.BBUpper[last], f.BBMiddle[last], f.BBLower[last]
	if anyNaN(up, mid, lo) {
		return ""
	}
	switch {
	case c > up:
		return BandAboveUpper
	case c < lo:
		return BandBelowLower
	case c >= mid:
		return BandUpperHalf
	default:
		return BandLowerHalf
	}
}

// Snapshot reads the latest bar of a frame into a TechnicalSnapshot.
func Snapshot(symbol, timeframe string, f *Frame) models.TechnicalSnapshot {
	out := models.TechnicalSnapshot{Symbol: symbol, Timeframe: timeframe}
	patterns, bias := DetectCandlesticks(f.Candles)
	out.Candlesticks, out.CandlestickBias = patterns, bias
	last := f.Last()
	if !f.Augmented || last < 0 {
		return out
	}
	out.Close = f.Close[last]
	out.RSI = Finite(f.RSI14[last])
	out.MACD = Finite(f.MACD[last])
	out.MACDSignal = Finite(f.MACDSignal[last])
	out.MACDHist = Finite(f.MACDHist[last])
	out.BollingerUpper = Finite(f.BBUpper[last])
	out.BollingerMiddle = Finite(f.BBMiddle[last])
	out.BollingerLower = Finite(f.BBLower[last])
	out.BollingerPosition = BandPosition(f)
	out.ATR = Finite(f.ATR14[last])
	out.VolumeRatio = Finite(f.VolumeRatio[last])
	out.Crossover = Crossover(f)
	bars := BarsPerYear(repository.Timeframe(timeframe).Duration())
	out.RealizedVol = RealizedVolatility(LogReturns(f.Close), realizedWindow, bars)
	return out
}

// Finite maps NaN and Inf to zero for transport; never use it inside the math.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func anyNaN(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
