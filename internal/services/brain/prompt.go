package brain

import (
	"fmt"
	"strings"

	"CryptoBrain/internal/domain/models"
)

// promptPatterns caps the best-pattern lines in a prompt.
const promptPatterns = 3

// BuildPrompt renders a report as plain text for an external decision-maker.
func BuildPrompt(r models.BrainReport) string {
	var b strings.Builder
	c := r.Analysis.Confluence
	total := c.Total

	fmt.Fprintf(&b, "You are an expert crypto trader analyzing %s perpetual futures.\n\n", r.Symbol)

	b.WriteString("MACRO CONTEXT (Bitcoin 4-Year Cycle):\n")
	fmt.Fprintf(&b, "- Current Phase: %s\n", r.Cycle.Phase)
	fmt.Fprintf(&b, "- Days Since Halving: %d\n", r.Cycle.DaysSinceHalving)
	fmt.Fprintf(&b, "- Cycle Progress: %.1f%%\n", r.Cycle.ProgressPct)
	fmt.Fprintf(&b, "- Historical Pattern: %s\n", r.Cycle.Description)
	fmt.Fprintf(&b, "- Recommended Approach: %s\n\n", r.Cycle.Strategy)

	b.WriteString("ALTCOIN SEASON:\n")
	fmt.Fprintf(&b, "- Altcoin Season Index: %.1f%%\n", r.AltSeason.Index)
	fmt.Fprintf(&b, "- Market Status: %s\n\n", r.AltSeason.Status)

	b.WriteString("MULTI-TIMEFRAME ANALYSIS:\n")
	fmt.Fprintf(&b, "- Overall Signal: %s\n", c.Overall)
	fmt.Fprintf(&b, "- Confidence: %.0f%%\n", c.Confidence)
	fmt.Fprintf(&b, "- Timeframe Alignment: %.0f%%\n", c.AlignmentScore)
	fmt.Fprintf(&b, "- Analysis: %s\n", c.Reasoning)
	fmt.Fprintf(&b, "- Bullish Timeframes: %d/%d\n", c.BuyCount, total)
	fmt.Fprintf(&b, "- Trending Up Timeframes: %d/%d\n\n", c.UptrendCount, total)

	b.WriteString("MARKET REGIME:\n")
	fmt.Fprintf(&b, "- Current Regime: %s\n", r.Regime.Overall)
	fmt.Fprintf(&b, "- Optimal Strategy: %s\n", r.Regime.Strategy)
	fmt.Fprintf(&b, "- Regime Alignment: %.0f%%\n\n", r.Regime.Alignment)

	b.WriteString("PATTERN ANALYSIS:\n")
	fmt.Fprintf(&b, "- Known Patterns: %d\n", r.TotalPatterns)
	b.WriteString("- Best Performing Patterns:\n")
	for i, p := range r.Patterns {
		if i == promptPatterns {
			break
		}
		fmt.Fprintf(&b, "  • %s: %.0f%% win rate over %d trades\n", p.Name, p.WinRate*100, p.TotalTrades)
	}
	b.WriteString("\n")

	s := r.Strategy
	b.WriteString("RECOMMENDED STRATEGY:\n")
	fmt.Fprintf(&b, "- Type: %s\n", s.Name)
	fmt.Fprintf(&b, "- Leverage Range: %d-%dx\n", s.LeverageMin, s.LeverageMax)
	fmt.Fprintf(&b, "- Recommended Leverage: %dx\n", s.RecommendedLeverage())
	fmt.Fprintf(&b, "- Expected Hold Time: %s\n", s.HoldTime)
	fmt.Fprintf(&b, "- Target Profit: %g-%g%%\n", s.TargetProfitMin, s.TargetProfitMax)
	fmt.Fprintf(&b, "- Strategic Reasoning: %s\n\n", s.Reasoning)

	d := r.Decision
	b.WriteString("SYSTEM RECOMMENDATION:\n")
	fmt.Fprintf(&b, "- Action: %s\n", d.Action)
	fmt.Fprintf(&b, "- Confidence: %.0f%%\n", d.Confidence)
	fmt.Fprintf(&b, "- Score: %d/100\n", d.Score)
	fmt.Fprintf(&b, "- Reasoning: %s\n\n", d.Reasoning)

	b.WriteString("Based on this complete multi-dimensional analysis, provide your final trading decision with specific entry, stop-loss, and take-profit levels.\n")
	return b.String()
}
