package models

import "time"

// Confluence aggregates a set of TimeframeSignals into one call.
type Confluence struct {
	Overall        Action  `json:"overall_signal"`
	Confidence     float64 `json:"confidence"`
	AlignmentScore float64 `json:"alignment_score"`
	BuyCount       int     `json:"buy_count"`
	SellCount      int     `json:"sell_count"`
	WaitCount      int     `json:"wait_count"`
	UptrendCount   int     `json:"uptrend_count"`
	DowntrendCount int     `json:"downtrend_count"`
	Total          int     `json:"total_timeframes"`
	AvgStrength    float64 `json:"avg_strength"`
	Reasoning      string  `json:"reasoning"`
}

// TradingPlan is the entry/stop/target suggestion derived from a confluence.
type TradingPlan struct {
	Action     string  `json:"action"`
	EntryPrice float64 `json:"entry_price,omitempty"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	TakeProfit float64 `json:"take_profit,omitempty"`
	Confidence float64 `json:"confidence"`
	Alignment  float64 `json:"alignment"`
	Reasoning  string  `json:"reasoning"`
}

// MultiTimeframeAnalysis is the result of analyzing every configured timeframe for a symbol.
type MultiTimeframeAnalysis struct {
	Symbol     string            `json:"symbol"`
	Timestamp  time.Time         `json:"timestamp"`
	Signals    []TimeframeSignal `json:"signals"`
	Confluence Confluence        `json:"confluence"`
	BestEntry  string            `json:"best_entry_timeframe,omitempty"`
	Plan       TradingPlan       `json:"trading_plan"`
	Errors     map[string]string `json:"errors,omitempty"`
}
