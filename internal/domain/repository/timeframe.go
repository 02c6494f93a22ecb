package repository

import (
	"errors"
	"fmt"
	"time"
)

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

var ErrUnknownTimeframe = errors.New("unknown timeframe")

// AllTimeframes is the confluence timeframe list, lowest resolution last.
var AllTimeframes = []Timeframe{TF1m, TF5m, TF15m, TF30m, TF1h, TF4h, TF1d}

// RegimeTimeframes is the subset used for the cross-timeframe regime vote.
var RegimeTimeframes = []Timeframe{TF1m, TF5m, TF15m, TF1h, TF4h}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := durations[tf]
	return ok
}

var durations = map[Timeframe]time.Duration{
	TF1m:  time.Minute,
	TF5m:  5 * time.Minute,
	TF15m: 15 * time.Minute,
	TF30m: 30 * time.Minute,
	TF1h:  time.Hour,
	TF4h:  4 * time.Hour,
	TF1d:  24 * time.Hour,
}

// Duration is the bucket width. Zero for unknown timeframes.
func (tf Timeframe) Duration() time.Duration { return durations[tf] }

func (tf Timeframe) String() string { return string(tf) }

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1h }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !IsValidTimeframe(tf) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
	}
	return tf, nil
}

// ParseTimeframes validates a configured list, keeping order.
func ParseTimeframes(raw []string) ([]Timeframe, error) {
	out := make([]Timeframe, 0, len(raw))
	for _, s := range raw {
		tf, err := ParseTimeframe(s)
		if err != nil {
			return nil, err
		}
		out = append(out, tf)
	}
	return out, nil
}

// CandlesForDays is the number of buckets of tf covering days.
func CandlesForDays(tf Timeframe, days int) int {
	d := tf.Duration()
	if d <= 0 || days <= 0 {
		return 0
	}
	return int(time.Duration(days) * 24 * time.Hour / d)
}
