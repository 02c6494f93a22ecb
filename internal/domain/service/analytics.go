package service

import (
	"context"

	"CryptoBrain/internal/domain/models"
)

// AltSeasonSource reports the altcoin season index (0-100).
type AltSeasonSource interface {
	AltSeason(ctx context.Context) (models.AltSeason, error)
}

// StrategyAdvisor picks a trading style for the current context.
type StrategyAdvisor interface {
	Recommend(ctx context.Context, in models.StrategyInput) (models.StrategyAdvice, error)
}
