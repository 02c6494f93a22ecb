package cycle

import (
	"time"

	"CryptoBrain/internal/domain/models"
)

// Halvings lists past and the next projected block reward halvings.
var Halvings = []time.Time{
	date(2012, time.November, 28),
	date(2016, time.July, 9),
	date(2020, time.May, 11),
	date(2024, time.April, 19),
	date(2028, time.April, 1),
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type phaseInfo struct {
	phase       models.CyclePhase
	until       int
	description string
	strategy    string
	alts        string
}

// phases are ordered by the exclusive day bound since the last halving.
var phases = []phaseInfo{
	{
		phase:       models.PhasePostHalving,
		until:       180,
		description: "Early post-halving. Market absorbing supply shock. Accumulation phase.",
		strategy:    "Conservative. Build positions. Wait for confirmation. Low leverage.",
		alts:        "Alts lag BTC. Patience required.",
	},
	{
		phase:       models.PhaseBullEarly,
		until:       540,
		description: "Bull market begins. BTC breaks ATH. Momentum building.",
		strategy:    "Aggressive. Ride trends. Higher leverage OK. Hold winners.",
		alts:        "Alts start moving. Follow BTC with lag. Bluechips lead.",
	},
	{
		phase:       models.PhaseBullParabola,
		until:       730,
		description: "Parabolic phase. Peak euphoria. Alt season typically occurs here.",
		strategy:    "Maximum aggression but watch for top signals. Take profits.",
		alts:        "Alt season. Broad gains, small caps outperform.",
	},
	{
		phase:       models.PhaseDistribution,
		until:       900,
		description: "Market topping. Distribution phase. Volatility increases.",
		strategy:    "Defensive. Take profits. Reduce leverage. Expect fake-outs.",
		alts:        "Alts peak and start declining. Rotate profits back to stables/BTC.",
	},
	{
		phase:       models.PhaseBear,
		until:       -1,
		description: "Bear market. Downtrend. Capitulation events possible.",
		strategy:    "Cash heavy. Small positions. Wait for cycle bottom. No leverage.",
		alts:        "Alts bleed badly. Survive mode.",
	},
}

// PhaseFor maps days since the last halving to a phase.
func PhaseFor(days int) models.CyclePhase { return lookup(days).phase }

func lookup(days int) phaseInfo {
	for _, p := range phases {
		if p.until < 0 || days < p.until {
			return p
		}
	}
	return phases[len(phases)-1]
}

// Position locates now in the halving cycle. ok is false before the first halving.
func Position(now time.Time) (models.CycleInfo, bool) {
	now = now.UTC()
	last, next := -1, -1
	for i, h := range Halvings {
		if !h.After(now) {
			last = i
			if i+1 < len(Halvings) {
				next = i + 1
			} else {
				next = -1
			}
		}
	}
	if last < 0 {
		return models.CycleInfo{}, false
	}

	info := models.CycleInfo{
		LastHalving:      Halvings[last],
		DaysSinceHalving: daysBetween(Halvings[last], now),
	}
	if next >= 0 {
		info.NextHalving = Halvings[next]
		info.DaysUntilHalving = daysBetween(now, Halvings[next])
		if span := info.DaysSinceHalving + info.DaysUntilHalving; span > 0 {
			info.ProgressPct = float64(info.DaysSinceHalving) / float64(span) * 100
		}
	}
	p := lookup(info.DaysSinceHalving)
	info.Phase = p.phase
	info.Description = p.description
	info.Strategy = p.strategy
	info.AltBehavior = p.alts
	return info, true
}

// daysBetween counts whole days from a to b.
func daysBetween(a, b time.Time) int { return int(b.Sub(a).Hours() / 24) }
