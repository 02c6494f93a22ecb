package models

import "time"

// AltSeason is supplied by an external collaborator.
type AltSeason struct {
	Index  float64 `json:"index"`
	Status string  `json:"status"`
}

// StrategyInput is what a StrategyAdvisor sees.
type StrategyInput struct {
	Phase            CyclePhase
	DaysSinceHalving int
	Alignment        float64
	AvgStrength      float64
	Structure        MarketStructure
	BestPattern      *PatternSummary
}

// StrategyAdvice is supplied by the external strategy lookup.
type StrategyAdvice struct {
	Name            string  `json:"name"`
	LeverageMin     int     `json:"leverage_min"`
	LeverageMax     int     `json:"leverage_max"`
	HoldTime        string  `json:"hold_time"`
	TargetProfitMin float64 `json:"target_profit_min"`
	TargetProfitMax float64 `json:"target_profit_max"`
	Reasoning       string  `json:"reasoning"`
}

// RecommendedLeverage is the midpoint of the leverage range.
func (s StrategyAdvice) RecommendedLeverage() int { return (s.LeverageMin + s.LeverageMax) / 2 }

// Decision is the scored master recommendation.
type Decision struct {
	Action     Action   `json:"action"`
	Confidence float64  `json:"confidence"`
	Score      int      `json:"score"`
	Reasons    []string `json:"reasons"`
	Reasoning  string   `json:"reasoning"`
}

// BrainReport bundles every input to the decision plus the exported prompt.
type BrainReport struct {
	Symbol        string                 `json:"symbol"`
	Timestamp     time.Time              `json:"timestamp"`
	Cycle         CycleInfo              `json:"cycle"`
	AltSeason     AltSeason              `json:"alt_season"`
	Analysis      MultiTimeframeAnalysis `json:"multi_timeframe"`
	Regime        MultiTimeframeRegime   `json:"regime"`
	Patterns      []PatternSummary       `json:"patterns"`
	TotalPatterns int                    `json:"total_patterns"`
	Strategy      StrategyAdvice         `json:"strategy"`
	Decision      Decision               `json:"decision"`
	Prompt        string                 `json:"ai_prompt,omitempty"`
}
