package usecase

import (
	"context"
	"fmt"
	"time"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	domsvc "CryptoBrain/internal/domain/service"
	"CryptoBrain/internal/services/brain"
	"CryptoBrain/internal/services/cycle"
	"CryptoBrain/pkg/logger"
)

type BrainConfig struct {
	RegimeCandles int
	TopPatterns   int
}

// BrainUseCase assembles the master report: cycle, alt season, confluence,
// regime, known patterns and strategy feed one scored decision and a prompt.
// Only the confluence analysis is required; every other input degrades.
type BrainUseCase struct {
	analysis *AnalysisUseCase
	regime   *RegimeUseCase
	patterns domrepo.PatternStore
	alt      domsvc.AltSeasonSource
	advisor  domsvc.StrategyAdvisor
	log      *logger.Logger
	cfg      BrainConfig
	now      func() time.Time
}

func NewBrainUseCase(
	analysis *AnalysisUseCase,
	regime *RegimeUseCase,
	patterns domrepo.PatternStore,
	alt domsvc.AltSeasonSource,
	advisor domsvc.StrategyAdvisor,
	log *logger.Logger,
	cfg BrainConfig,
) *BrainUseCase {
	if cfg.RegimeCandles <= 0 {
		cfg.RegimeCandles = 200
	}
	if cfg.TopPatterns <= 0 {
		cfg.TopPatterns = activeListSize
	}
	return &BrainUseCase{
		analysis: analysis, regime: regime, patterns: patterns,
		alt: alt, advisor: advisor, log: log, cfg: cfg, now: time.Now,
	}
}

func (u *BrainUseCase) Report(ctx context.Context, symbol string) (*models.BrainReport, error) {
	mtf, err := u.analysis.AnalyzeAllTimeframes(ctx, symbol, false)
	if err != nil {
		return nil, fmt.Errorf("brain %s: %w", symbol, err)
	}
	now := u.now().UTC()
	r := &models.BrainReport{Symbol: symbol, Timestamp: now, Analysis: *mtf}

	if info, ok := cycle.Position(now); ok {
		r.Cycle = info
	}

	r.Regime, err = u.regime.MarketRegime(ctx, symbol, u.cfg.RegimeCandles)
	if err != nil {
		u.log.Warn("brain regime unavailable", logger.String("symbol", symbol), logger.Error(err))
		r.Regime = models.MultiTimeframeRegime{Symbol: symbol, Timestamp: now, Overall: models.StructureMixed}
	}

	r.AltSeason, err = u.alt.AltSeason(ctx)
	if err != nil {
		u.log.Warn("alt season unavailable", logger.Error(err))
		r.AltSeason = models.AltSeason{Status: brain.AltSeasonStatus(0)}
	}

	stored, err := u.patterns.ListActive(ctx, symbol)
	if err != nil {
		u.log.Warn("brain patterns unavailable", logger.String("symbol", symbol), logger.Error(err))
	}
	all := summaries(stored, 0)
	r.TotalPatterns = len(all)
	if len(all) > u.cfg.TopPatterns {
		all = all[:u.cfg.TopPatterns]
	}
	r.Patterns = all

	in := models.StrategyInput{
		Phase:            r.Cycle.Phase,
		DaysSinceHalving: r.Cycle.DaysSinceHalving,
		Alignment:        mtf.Confluence.AlignmentScore,
		AvgStrength:      mtf.Confluence.AvgStrength,
		Structure:        r.Regime.Overall,
	}
	if len(all) > 0 {
		best := all[0]
		in.BestPattern = &best
	}
	r.Strategy, err = u.advisor.Recommend(ctx, in)
	if err != nil {
		u.log.Warn("strategy advisor failed, using static table", logger.Error(err))
		r.Strategy, _ = brain.NewStaticAdvisor().Recommend(ctx, in)
	}

	r.Decision = brain.Decide(brain.Inputs{
		Confluence: mtf.Confluence,
		Phase:      r.Cycle.Phase,
		AltIndex:   r.AltSeason.Index,
		Structure:  r.Regime.Overall,
	})
	r.Prompt = brain.BuildPrompt(*r)

	u.log.Info("brain decision",
		logger.String("symbol", symbol),
		logger.String("action", string(r.Decision.Action)),
		logger.Int("score", r.Decision.Score),
		logger.String("strategy", r.Strategy.Name),
	)
	return r, nil
}
