package models

import "strings"

// Trend is the per-timeframe trend ladder label.
type Trend string

const (
	TrendStrongUp   Trend = "STRONG_UPTREND"
	TrendUp         Trend = "UPTREND"
	TrendWeakUp     Trend = "WEAK_UPTREND"
	TrendStrongDown Trend = "STRONG_DOWNTREND"
	TrendDown       Trend = "DOWNTREND"
	TrendWeakDown   Trend = "WEAK_DOWNTREND"
	TrendRanging    Trend = "RANGING"
	TrendUnknown    Trend = "UNKNOWN"
)

// IsUp reports whether the label is any of the uptrend rungs.
func (t Trend) IsUp() bool { return strings.Contains(string(t), "UPTREND") }

// IsDown reports whether the label is any of the downtrend rungs.
func (t Trend) IsDown() bool { return strings.Contains(string(t), "DOWNTREND") }

// Action is a trading signal emitted by the signal, confluence and decision layers.
type Action string

const (
	ActionStrongBuy    Action = "STRONG_BUY"
	ActionBuy          Action = "BUY"
	ActionSell         Action = "SELL"
	ActionWait         Action = "WAIT"
	ActionWaitForSetup Action = "WAIT_FOR_SETUP"
)

// IsBullish is true for BUY and STRONG_BUY.
func (a Action) IsBullish() bool { return a == ActionBuy || a == ActionStrongBuy }

// TimeframeSignal is derived fresh on every evaluation; stored copies are cache only.
type TimeframeSignal struct {
	Timeframe    string  `json:"timeframe"`
	Trend        Trend   `json:"trend"`
	Strength     float64 `json:"strength"`
	Signal       Action  `json:"signal"`
	RSI          float64 `json:"rsi"`
	Support      float64 `json:"support"`
	Resistance   float64 `json:"resistance"`
	CurrentPrice float64 `json:"current_price"`
	Candles      int     `json:"candles"`
}
