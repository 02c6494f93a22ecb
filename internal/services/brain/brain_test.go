package brain

import (
	"context"
	"strings"
	"testing"
	"time"

	"CryptoBrain/internal/domain/models"
)

func TestDecideFullScore(t *testing.T) {
	d := Decide(Inputs{
		Confluence: models.Confluence{Overall: models.ActionStrongBuy, AlignmentScore: 85.7},
		Phase:      models.PhaseBullParabola,
		AltIndex:   72,
		Structure:  models.StructureStrongUptrend,
	})
	if d.Score != 100 || d.Action != models.ActionStrongBuy || d.Confidence != 95 {
		t.Fatalf("got %+v", d)
	}
	want := "Multi-TF STRONG_BUY • Bull cycle phase • Alt season active (72%) • Strong uptrend regime • High TF alignment (86%)"
	if d.Reasoning != want {
		t.Fatalf("reasoning = %q", d.Reasoning)
	}
}

func TestDecideLadder(t *testing.T) {
	cases := []struct {
		name   string
		in     Inputs
		action models.Action
		conf   float64
		score  int
	}{
		{
			name:   "buy at fifty five",
			in:     Inputs{Confluence: models.Confluence{Overall: models.ActionBuy}, Phase: models.PhaseBullEarly},
			action: models.ActionBuy, conf: 55, score: 55,
		},
		{
			name:   "wait for setup at thirty",
			in:     Inputs{Confluence: models.Confluence{Overall: models.ActionBuy}, Phase: models.PhaseBear},
			action: models.ActionWaitForSetup, conf: 50, score: 30,
		},
		{
			name:   "alt index sixty is not active",
			in:     Inputs{AltIndex: 60, Confluence: models.Confluence{AlignmentScore: 70}},
			action: models.ActionWait, conf: 30, score: 0,
		},
		{
			name:   "exactly seventy is strong buy",
			in:     Inputs{Confluence: models.Confluence{Overall: models.ActionBuy}, Phase: models.PhaseBullEarly, Structure: models.StructureStrongUptrend},
			action: models.ActionStrongBuy, conf: 70, score: 70,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(tc.in)
			if d.Action != tc.action || d.Confidence != tc.conf || d.Score != tc.score {
				t.Fatalf("got %+v", d)
			}
		})
	}
}

func TestDecideNoEdge(t *testing.T) {
	d := Decide(Inputs{Confluence: models.Confluence{Overall: models.ActionSell}})
	if d.Reasoning != "No clear edge detected" || len(d.Reasons) != 0 {
		t.Fatalf("got %+v", d)
	}
}

func TestAltSeasonStatus(t *testing.T) {
	for idx, want := range map[float64]string{80: "ALT SEASON", 75: "MIXED", 51: "MIXED", 50: "BTC SEASON"} {
		if got := AltSeasonStatus(idx); got != want {
			t.Fatalf("%v: got %s, want %s", idx, got, want)
		}
	}
}

func TestStaticAdvisor(t *testing.T) {
	a := NewStaticAdvisor()
	ctx := context.Background()

	s, _ := a.Recommend(ctx, models.StrategyInput{
		Phase: models.PhaseBullEarly, Alignment: 80, AvgStrength: 70,
		Structure: models.StructureStrongUptrend, DaysSinceHalving: 400,
	})
	if s.Name != StrategyPosition || s.RecommendedLeverage() != 37 || !strings.Contains(s.Reasoning, "Day 400") {
		t.Fatalf("got %+v", s)
	}

	s, _ = a.Recommend(ctx, models.StrategyInput{Phase: models.PhaseBear})
	if s.Name != StrategyScalp || s.LeverageMax != 10 {
		t.Fatalf("got %+v", s)
	}

	best := &models.PatternSummary{Name: "Multi-TF Pattern (1h+4h)", WinRate: 0.82}
	s, _ = a.Recommend(ctx, models.StrategyInput{Phase: models.PhasePostHalving, BestPattern: best})
	if s.Name != StrategySwing || s.LeverageMin != 10 || s.LeverageMax != 25 {
		t.Fatalf("upgrade: got %+v", s)
	}
	if !strings.Contains(s.Reasoning, "82% win rate") {
		t.Fatalf("reasoning = %q", s.Reasoning)
	}
}

func TestStaticAltSeason(t *testing.T) {
	got, err := StaticAltSeason(78).AltSeason(context.Background())
	if err != nil || got.Index != 78 || got.Status != "ALT SEASON" {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestBuildPromptSections(t *testing.T) {
	r := models.BrainReport{
		Symbol:    "BTC/USDT",
		Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Cycle:     models.CycleInfo{Phase: models.PhaseBullEarly, DaysSinceHalving: 408, ProgressPct: 27.9},
		AltSeason: models.AltSeason{Index: 42, Status: "BTC SEASON"},
		Analysis: models.MultiTimeframeAnalysis{Confluence: models.Confluence{
			Overall: models.ActionBuy, Total: 7, BuyCount: 4, UptrendCount: 5,
		}},
		Regime: models.MultiTimeframeRegime{Overall: models.StructureMixed},
		Patterns: []models.PatternSummary{
			{Name: "a", WinRate: 0.9, TotalTrades: 12},
			{Name: "b", WinRate: 0.8, TotalTrades: 11},
			{Name: "c", WinRate: 0.7, TotalTrades: 10},
			{Name: "d", WinRate: 0.66, TotalTrades: 10},
		},
		TotalPatterns: 4,
		Strategy:      models.StrategyAdvice{Name: StrategySwing, LeverageMin: 15, LeverageMax: 30, TargetProfitMin: 3, TargetProfitMax: 10},
		Decision:      models.Decision{Action: models.ActionBuy, Confidence: 55, Score: 55},
	}
	p := BuildPrompt(r)
	for _, section := range []string{
		"MACRO CONTEXT", "ALTCOIN SEASON", "MULTI-TIMEFRAME ANALYSIS", "MARKET REGIME",
		"PATTERN ANALYSIS", "RECOMMENDED STRATEGY", "SYSTEM RECOMMENDATION",
	} {
		if !strings.Contains(p, section) {
			t.Fatalf("prompt missing %s", section)
		}
	}
	for _, line := range []string{
		"BTC/USDT perpetual", "Bullish Timeframes: 4/7", "Cycle Progress: 27.9%",
		"• a: 90% win rate over 12 trades", "Leverage Range: 15-30x",
		"Recommended Leverage: 22x", "Target Profit: 3-10%", "Score: 55/100",
	} {
		if !strings.Contains(p, line) {
			t.Fatalf("prompt missing %q:\n%s", line, p)
		}
	}
	if strings.Contains(p, "• d:") {
		t.Fatalf("prompt lists more than three patterns")
	}
}
