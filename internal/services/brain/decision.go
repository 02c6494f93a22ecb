package brain

import (
	"fmt"
	"math"
	"strings"

	"CryptoBrain/internal/domain/models"
)

const (
	scoreConfluence = 30
	scoreBullPhase  = 25
	scoreAltSeason  = 20
	scoreUptrend    = 15
	scoreAlignment  = 10

	altSeasonActive   = 60.0
	alignmentHigh     = 70.0
	strongBuyScore    = 70
	buyScore          = 50
	waitForSetupScore = 30
	maxConfidence     = 95
)

// ReasonSeparator joins decision reasons.
const ReasonSeparator = " • "

const noEdge = "No clear edge detected"

// Inputs are the facts the master decision scores.
type Inputs struct {
	Confluence models.Confluence
	Phase      models.CyclePhase
	AltIndex   float64
	Structure  models.MarketStructure
}

// Decide scores the inputs and maps the score to an action. Higher is more bullish.
func Decide(in Inputs) models.Decision {
	var (
		score   int
		reasons []string
	)
	if in.Confluence.Overall.IsBullish() {
		score += scoreConfluence
		reasons = append(reasons, fmt.Sprintf("Multi-TF %s", in.Confluence.Overall))
	}
	if in.Phase.IsBull() {
		score += scoreBullPhase
		reasons = append(reasons, "Bull cycle phase")
	}
	if in.AltIndex > altSeasonActive {
		score += scoreAltSeason
		reasons = append(reasons, fmt.Sprintf("Alt season active (%.0f%%)", in.AltIndex))
	}
	if in.Structure == models.StructureStrongUptrend {
		score += scoreUptrend
		reasons = append(reasons, "Strong uptrend regime")
	}
	if in.Confluence.AlignmentScore > alignmentHigh {
		score += scoreAlignment
		reasons = append(reasons, fmt.Sprintf("High TF alignment (%.0f%%)", in.Confluence.AlignmentScore))
	}

	d := models.Decision{Score: score, Reasons: reasons}
	switch {
	case score >= strongBuyScore:
		d.Action = models.ActionStrongBuy
		d.Confidence = math.Min(float64(score), maxConfidence)
	case score >= buyScore:
		d.Action = models.ActionBuy
		d.Confidence = float64(score)
	case score >= waitForSetupScore:
		d.Action = models.ActionWaitForSetup
		d.Confidence = 50
	default:
		d.Action = models.ActionWait
		d.Confidence = 30
	}
	if len(reasons) == 0 {
		d.Reasoning = noEdge
	} else {
		d.Reasoning = strings.Join(reasons, ReasonSeparator)
	}
	return d
}

// AltSeasonStatus labels an alt-season index.
func AltSeasonStatus(index float64) string {
	switch {
	case index > 75:
		return "ALT SEASON"
	case index > 50:
		return "MIXED"
	default:
		return "BTC SEASON"
	}
}
