package models

import (
	"fmt"
	"math"
	"time"
)

// Operator is a Condition comparison.
type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpEqual        Operator = "=="
	OpBetween      Operator = "between"
)

// equalTolerance is the slack used by OpEqual on float features.
const equalTolerance = 0.1

// Condition is one entry rule of a CandidatePattern. Immutable once attached.
type Condition struct {
	Timeframe string   `json:"timeframe"`
	Feature   string   `json:"feature"`
	Operator  Operator `json:"operator"`
	Value     float64  `json:"value,omitempty"`
	Min       float64  `json:"min,omitempty"`
	Max       float64  `json:"max,omitempty"`
	Weight    float64  `json:"weight"`
}

// Eval reports whether v satisfies the condition. NaN never matches.
func (c Condition) Eval(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	switch c.Operator {
	case OpGreater:
		return v > c.Value
	case OpGreaterEqual:
		return v >= c.Value
	case OpEqual:
		return math.Abs(v-c.Value) < equalTolerance
	case OpBetween:
		return v >= c.Min && v <= c.Max
	default:
		return false
	}
}

func (c Condition) String() string {
	if c.Operator == OpBetween {
		return fmt.Sprintf("%s %s between %.2f-%.2f", c.Timeframe, c.Feature, c.Min, c.Max)
	}
	return fmt.Sprintf("%s %s %s %.2f", c.Timeframe, c.Feature, c.Operator, c.Value)
}

// PatternKind distinguishes mined multi-timeframe setups from the fixed single-timeframe rules.
type PatternKind string

const (
	KindMTFConfluence PatternKind = "mtf_confluence"
	KindVolumeSpike   PatternKind = "volume_spike"
	KindEMABounce     PatternKind = "ema_bounce"
	KindRSIOversold   PatternKind = "rsi_oversold"
)

// Performance is attached by validation.
type Performance struct {
	WinRate         float64 `json:"win_rate"`
	TotalTrades     int     `json:"total_trades"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	Neutral         int     `json:"neutral"`
	AvgProfitPct    float64 `json:"avg_profit_pct"`
	ConfidenceScore float64 `json:"confidence_score"`
}

type CandidatePattern struct {
	ID           string      `json:"pattern_id"`
	Symbol       string      `json:"symbol"`
	Name         string      `json:"pattern_name"`
	Kind         PatternKind `json:"kind"`
	Timeframes   []string    `json:"timeframes"`
	Conditions   []Condition `json:"conditions"`
	ProfitTarget float64     `json:"profit_target"`
	StopLoss     float64     `json:"stop_loss"`
	Lookahead    int         `json:"lookahead"`
	DiscoveredAt time.Time   `json:"discovered_at"`
	Performance  Performance `json:"performance"`
	Active       bool        `json:"is_active"`
}

// PrimaryTimeframe is the timeframe validation scans on.
func (p CandidatePattern) PrimaryTimeframe() string {
	if len(p.Timeframes) == 0 {
		return ""
	}
	return p.Timeframes[0]
}

// PatternSummary is the read model for active pattern listings.
type PatternSummary struct {
	ID           string   `json:"pattern_id"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"pattern_name"`
	Timeframes   []string `json:"timeframes"`
	WinRate      float64  `json:"win_rate"`
	TotalTrades  int      `json:"total_trades"`
	AvgProfitPct float64  `json:"avg_profit_pct"`
	Confidence   float64  `json:"confidence_score"`
}

func (p CandidatePattern) Summary() PatternSummary {
	return PatternSummary{
		ID:           p.ID,
		Symbol:       p.Symbol,
		Name:         p.Name,
		Timeframes:   p.Timeframes,
		WinRate:      p.Performance.WinRate,
		TotalTrades:  p.Performance.TotalTrades,
		AvgProfitPct: p.Performance.AvgProfitPct,
		Confidence:   p.Performance.ConfidenceScore,
	}
}

// AdaptiveParameters is read by the miner and written only by the tuner.
// It is passed by value; callers keep the returned copy.
type AdaptiveParameters struct {
	MinWinRate       float64 `json:"min_win_rate" yaml:"min_win_rate"`
	MinTrades        int     `json:"min_trades" yaml:"min_trades"`
	ProfitThreshold  float64 `json:"profit_threshold" yaml:"profit_threshold"`
	// ConfluenceWeight is reserved for scoring multi-timeframe agreement. It
	// is configured and persisted but no miner rule reads it; the tuner
	// carries it through unchanged.
	ConfluenceWeight float64 `json:"confluence_weight" yaml:"confluence_weight"`
	// TunedOn fingerprints the performance snapshot of the last tuning pass.
	TunedOn string `json:"tuned_on,omitempty" yaml:"-"`
}

func DefaultAdaptiveParameters() AdaptiveParameters {
	return AdaptiveParameters{
		MinWinRate:       0.65,
		MinTrades:        10,
		ProfitThreshold:  1.5,
		ConfluenceWeight: 0.3,
	}
}

// Accepts applies the acceptance rule to a validated performance.
func (p AdaptiveParameters) Accepts(perf Performance) bool {
	return perf.TotalTrades >= p.MinTrades && perf.WinRate >= p.MinWinRate
}

// MiningResult is the outcome of one mining + tuning pass for a symbol.
type MiningResult struct {
	RunID           string             `json:"run_id"`
	Symbol          string             `json:"symbol"`
	StartedAt       time.Time          `json:"started_at"`
	Duration        time.Duration      `json:"duration"`
	Discovered      []CandidatePattern `json:"mtf_patterns"`
	Legacy          []CandidatePattern `json:"legacy_patterns"`
	Active          []PatternSummary   `json:"active_patterns"`
	Deactivated     []string           `json:"deactivated,omitempty"`
	TotalDiscovered int                `json:"total_discovered"`
	Threshold       float64            `json:"performance_threshold"`
	Params          AdaptiveParameters `json:"params"`
}
