package cycle

import (
	"testing"
	"time"

	"CryptoBrain/internal/domain/models"
)

func TestPhaseBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want models.CyclePhase
	}{
		{0, models.PhasePostHalving},
		{179, models.PhasePostHalving},
		{180, models.PhaseBullEarly},
		{539, models.PhaseBullEarly},
		{540, models.PhaseBullParabola},
		{729, models.PhaseBullParabola},
		{730, models.PhaseDistribution},
		{899, models.PhaseDistribution},
		{900, models.PhaseBear},
		{1400, models.PhaseBear},
	}
	for _, tc := range cases {
		if got := PhaseFor(tc.days); got != tc.want {
			t.Fatalf("days %d: got %s, want %s", tc.days, got, tc.want)
		}
	}
}

func TestPositionAfterLatestHalving(t *testing.T) {
	now := time.Date(2025, time.April, 19, 12, 0, 0, 0, time.UTC)
	info, ok := Position(now)
	if !ok {
		t.Fatalf("expected a position")
	}
	if !info.LastHalving.Equal(date(2024, time.April, 19)) || !info.NextHalving.Equal(date(2028, time.April, 1)) {
		t.Fatalf("halvings = %v / %v", info.LastHalving, info.NextHalving)
	}
	if info.DaysSinceHalving != 365 {
		t.Fatalf("days since = %d, want 365", info.DaysSinceHalving)
	}
	if info.Phase != models.PhaseBullEarly || !info.Phase.IsBull() {
		t.Fatalf("phase = %s", info.Phase)
	}
	if info.ProgressPct <= 0 || info.ProgressPct >= 100 {
		t.Fatalf("progress = %v", info.ProgressPct)
	}
	if info.Strategy == "" || info.Description == "" {
		t.Fatalf("phase text missing: %+v", info)
	}
}

func TestPositionBeforeFirstHalving(t *testing.T) {
	if _, ok := Position(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)); ok {
		t.Fatalf("no cycle before the first halving")
	}
}

func TestPositionPastProjectedHalving(t *testing.T) {
	info, ok := Position(time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC))
	if !ok || !info.LastHalving.Equal(date(2028, time.April, 1)) {
		t.Fatalf("got %+v", info)
	}
	if !info.NextHalving.IsZero() || info.ProgressPct != 0 {
		t.Fatalf("no next halving expected: %+v", info)
	}
}
