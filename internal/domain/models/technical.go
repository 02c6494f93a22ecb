package models

// CandlestickPattern is a single-bar or two-bar shape found in the latest candles.
type CandlestickPattern struct {
	Name   string `json:"name"`
	Bias   string `json:"bias"`
	Offset int    `json:"offset"`
}

// TechnicalSnapshot is the latest-bar indicator readout for one timeframe.
type TechnicalSnapshot struct {
	Symbol            string               `json:"symbol"`
	Timeframe         string               `json:"timeframe"`
	Close             float64              `json:"close"`
	RSI               float64              `json:"rsi"`
	MACD              float64              `json:"macd"`
	MACDSignal        float64              `json:"macd_signal"`
	MACDHist          float64              `json:"macd_hist"`
	BollingerUpper    float64              `json:"bb_upper"`
	BollingerMiddle   float64              `json:"bb_middle"`
	BollingerLower    float64              `json:"bb_lower"`
	BollingerPosition string               `json:"bb_position"`
	ATR               float64              `json:"atr"`
	VolumeRatio       float64              `json:"volume_ratio"`
	RealizedVol       float64              `json:"realized_volatility"`
	Crossover         string               `json:"ema_crossover"`
	Candlesticks      []CandlestickPattern `json:"candlestick_patterns"`
	CandlestickBias   string               `json:"candlestick_bias"`
}
