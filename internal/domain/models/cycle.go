package models

import "time"

// CyclePhase is the position within the four-year halving cycle.
type CyclePhase string

const (
	PhasePostHalving  CyclePhase = "POST_HALVING_ACCUMULATION"
	PhaseBullEarly    CyclePhase = "BULL_MARKET_PHASE_1"
	PhaseBullParabola CyclePhase = "BULL_MARKET_PARABOLIC"
	PhaseDistribution CyclePhase = "DISTRIBUTION_TOP"
	PhaseBear         CyclePhase = "BEAR_MARKET"
)

// IsBull is true for the two bull-market phases.
func (p CyclePhase) IsBull() bool { return p == PhaseBullEarly || p == PhaseBullParabola }

type CycleInfo struct {
	Phase            CyclePhase `json:"phase"`
	LastHalving      time.Time  `json:"last_halving"`
	NextHalving      time.Time  `json:"next_halving"`
	DaysSinceHalving int        `json:"days_since_halving"`
	DaysUntilHalving int        `json:"days_until_halving"`
	ProgressPct      float64    `json:"cycle_progress_pct"`
	Description      string     `json:"description"`
	Strategy         string     `json:"strategy"`
	AltBehavior      string     `json:"altcoin_behavior"`
}
