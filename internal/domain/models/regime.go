package models

import "time"

// RegimeLabel classifies market behaviour over a window.
type RegimeLabel string

const (
	RegimeTrendingUp   RegimeLabel = "TRENDING_UP"
	RegimeTrendingDown RegimeLabel = "TRENDING_DOWN"
	RegimeRanging      RegimeLabel = "RANGING"
	RegimeVolatile     RegimeLabel = "VOLATILE"
	RegimeMixed        RegimeLabel = "MIXED"
	RegimeUnknown      RegimeLabel = "UNKNOWN"
)

type Regime struct {
	Timeframe       string      `json:"timeframe,omitempty"`
	Label           RegimeLabel `json:"label"`
	TrendStrength   float64     `json:"trend_strength"`
	Volatility      float64     `json:"volatility"`
	VolatilityRatio float64     `json:"volatility_ratio"`
	PriceRangePct   float64     `json:"price_range_pct"`
	Confidence      float64     `json:"confidence"`
	Description     string      `json:"description"`
}

// MarketStructure is the cross-timeframe regime vote. Descriptive only.
type MarketStructure string

const (
	StructureStrongUptrend   MarketStructure = "STRONG_UPTREND"
	StructureStrongDowntrend MarketStructure = "STRONG_DOWNTREND"
	StructureRanging         MarketStructure = "RANGING_MARKET"
	StructureMixed           MarketStructure = "MIXED_SIGNALS"
)

type MultiTimeframeRegime struct {
	Symbol    string          `json:"symbol"`
	Timestamp time.Time       `json:"timestamp"`
	Overall   MarketStructure `json:"overall"`
	Strategy  string          `json:"strategy"`
	Alignment float64         `json:"alignment"`
	Regimes   []Regime        `json:"regimes"`
}
