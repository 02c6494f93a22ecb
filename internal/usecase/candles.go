package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
)

// seriesSet is the joined result of a concurrent per-timeframe load.
// Timeframes with no candles are absent from both maps.
type seriesSet struct {
	series map[domrepo.Timeframe][]models.Candle
	errs   map[domrepo.Timeframe]error
}

// errStrings renders load failures for the analysis payload.
func (s seriesSet) errStrings() map[string]string {
	if len(s.errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(s.errs))
	for tf, err := range s.errs {
		out[tf.String()] = err.Error()
	}
	return out
}

// firstErr returns any load error, preferring one that wraps target.
func (s seriesSet) firstErr(target error) error {
	var first error
	for _, err := range s.errs {
		if first == nil {
			first = err
		}
		if target != nil && errors.Is(err, target) {
			return err
		}
	}
	return first
}

// loadSeries loads every timeframe in limits concurrently, one goroutine per
// timeframe, and joins before returning.
func loadSeries(ctx context.Context, store domrepo.CandleStore, symbol string, limits map[domrepo.Timeframe]int) seriesSet {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = seriesSet{
			series: make(map[domrepo.Timeframe][]models.Candle, len(limits)),
			errs:   make(map[domrepo.Timeframe]error),
		}
	)
	for tf, limit := range limits {
		wg.Add(1)
		go func(tf domrepo.Timeframe, limit int) {
			defer wg.Done()
			candles, err := store.LoadCandles(ctx, symbol, tf, limit)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				out.errs[tf] = fmt.Errorf("load %s %s: %w", symbol, tf, err)
			case len(candles) > 0:
				out.series[tf] = candles
			}
		}(tf, limit)
	}
	wg.Wait()
	return out
}

func sameLimit(tfs []domrepo.Timeframe, n int) map[domrepo.Timeframe]int {
	out := make(map[domrepo.Timeframe]int, len(tfs))
	for _, tf := range tfs {
		out[tf] = n
	}
	return out
}
