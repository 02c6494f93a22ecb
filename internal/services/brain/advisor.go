package brain

import (
	"context"
	"fmt"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/domain/service"
)

const (
	StrategyScalp    = "SCALP"
	StrategySwing    = "SWING"
	StrategyPosition = "POSITION"

	// upgradeWinRate lifts a scalp to a swing when the best pattern wins this often.
	upgradeWinRate = 0.80
)

var (
	_ service.StrategyAdvisor = (*StaticAdvisor)(nil)
	_ service.AltSeasonSource = StaticAltSeason(0)
)

// StaticAdvisor is the built-in strategy table used when no external
// advisor is configured.
type StaticAdvisor struct{}

func NewStaticAdvisor() *StaticAdvisor { return &StaticAdvisor{} }

func (a *StaticAdvisor) Recommend(_ context.Context, in models.StrategyInput) (models.StrategyAdvice, error) {
	s := selectStrategy(in)
	if bp := in.BestPattern; bp != nil && bp.WinRate >= upgradeWinRate && s.Name == StrategyScalp {
		s.Name = StrategySwing
		s.LeverageMin += 5
		s.LeverageMax += 10
		s.Reasoning += fmt.Sprintf(" Upgraded to SWING: %s has %.0f%% win rate.", bp.Name, bp.WinRate*100)
	}
	return s, nil
}

func advice(name string, levMin, levMax int, hold string, tpMin, tpMax float64, reasoning string) models.StrategyAdvice {
	return models.StrategyAdvice{
		Name:            name,
		LeverageMin:     levMin,
		LeverageMax:     levMax,
		HoldTime:        hold,
		TargetProfitMin: tpMin,
		TargetProfitMax: tpMax,
		Reasoning:       reasoning,
	}
}

func selectStrategy(in models.StrategyInput) models.StrategyAdvice {
	switch in.Phase {
	case models.PhaseBullEarly, models.PhaseBullParabola:
		if in.Alignment >= 75 && in.AvgStrength > 60 {
			if in.Structure == models.StructureStrongUptrend {
				return advice(StrategyPosition, 25, 50, "days", 10, 50,
					fmt.Sprintf("Bull market + strong multi-TF trend. Hold for major move. Day %d post-halving = prime time.", in.DaysSinceHalving))
			}
			return advice(StrategySwing, 15, 30, "hours", 3, 10, "Bull market but mixed timeframes. Swing trade for good R:R.")
		}
		return advice(StrategyScalp, 5, 15, "minutes", 0.5, 2, "Bull market but low confluence. Quick scalps only.")
	case models.PhasePostHalving:
		if in.Alignment >= 70 {
			return advice(StrategySwing, 10, 25, "hours", 2, 8, "Post-halving accumulation. Patient swings with decent confluence.")
		}
		return advice(StrategyScalp, 5, 15, "minutes", 0.5, 2, "Post-halving but ranging. Scalp only when clear setups.")
	case models.PhaseDistribution, models.PhaseBear:
		return advice(StrategyScalp, 5, 10, "minutes", 0.5, 1.5, fmt.Sprintf("%s: Defensive mode. Quick scalps only, low leverage.", in.Phase))
	}

	switch {
	case in.Structure == models.StructureRanging:
		return advice(StrategySwing, 10, 20, "hours", 2, 5, "Ranging market. Mean reversion swings.")
	case in.Alignment >= 70:
		return advice(StrategySwing, 15, 30, "hours", 3, 10, "Good multi-TF confluence. Swing for solid gains.")
	default:
		return advice(StrategyScalp, 5, 15, "minutes", 0.5, 2, "No clear edge. Scalp when opportunity appears.")
	}
}

// StaticAltSeason reports a fixed index.
type StaticAltSeason float64

func (s StaticAltSeason) AltSeason(context.Context) (models.AltSeason, error) {
	return models.AltSeason{Index: float64(s), Status: AltSeasonStatus(float64(s))}, nil
}
