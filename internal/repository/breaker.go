package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	applogger "CryptoBrain/pkg/logger"
)

var _ domrepo.CandleStore = (*BreakerCandleStore)(nil)

type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// BreakerCandleStore fails fast with ErrStoreUnavailable while the wrapped
// store keeps erroring.
type BreakerCandleStore struct {
	next domrepo.CandleStore
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerCandleStore(next domrepo.CandleStore, cfg BreakerConfig, l *applogger.Logger) *BreakerCandleStore {
	if l == nil {
		l = applogger.Nop()
	}
	if cfg.Name == "" {
		cfg.Name = "candle-store"
	}
	st := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.Requests < cfg.MinRequests {
				return false
			}
			return float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
		},
		// Caller cancellations say nothing about the store.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("circuit breaker state change",
				applogger.String("breaker", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()),
			)
		},
	}
	return &BreakerCandleStore{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerCandleStore) LoadCandles(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) ([]models.Candle, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.LoadCandles(ctx, symbol, tf, limit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", domrepo.ErrStoreUnavailable, err)
		}
		return nil, err
	}
	candles, _ := res.([]models.Candle)
	return candles, nil
}

// State reports the breaker state name.
func (b *BreakerCandleStore) State() string { return b.cb.State().String() }
