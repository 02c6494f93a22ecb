package mining

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"CryptoBrain/internal/domain/models"
)

const (
	raiseAbove   = 0.75
	lowerBelow   = 0.60
	tuneStep     = 0.05
	winRateCap   = 0.85
	winRateFloor = 0.55
)

// TuneResult reports one tuner pass.
type TuneResult struct {
	Params      models.AdaptiveParameters
	Deactivated []models.CandidatePattern
	AvgWinRate  float64
	Sampled     int
	// Skipped is set when the snapshot was already tuned against.
	Skipped bool
}

// Tune moves min_win_rate from the mean win rate of active patterns with
// enough trades, then deactivates the ones below the new threshold. A second
// call over the same active set is a no-op.
func Tune(params models.AdaptiveParameters, patterns []models.CandidatePattern) TuneResult {
	res := TuneResult{Params: params}
	before := fingerprint(patterns)
	if alreadyTuned(params.TunedOn, before) {
		res.Skipped = true
		return res
	}

	var sum float64
	for _, p := range patterns {
		if p.Active && p.Performance.TotalTrades >= params.MinTrades {
			sum += p.Performance.WinRate
			res.Sampled++
		}
	}
	if res.Sampled > 0 {
		res.AvgWinRate = sum / float64(res.Sampled)
		switch {
		case res.AvgWinRate >= raiseAbove:
			res.Params.MinWinRate = round2(math.Min(params.MinWinRate+tuneStep, winRateCap))
		case res.AvgWinRate < lowerBelow:
			res.Params.MinWinRate = round2(math.Max(params.MinWinRate-tuneStep, winRateFloor))
		}
	}

	after := make([]models.CandidatePattern, len(patterns))
	copy(after, patterns)
	for i, p := range after {
		if p.Active && p.Performance.TotalTrades >= res.Params.MinTrades && p.Performance.WinRate < res.Params.MinWinRate {
			after[i].Active = false
			res.Deactivated = append(res.Deactivated, after[i])
		}
	}
	res.Params.TunedOn = before + fingerprintSep + fingerprint(after)
	return res
}

const fingerprintSep = "/"

// alreadyTuned matches either the snapshot last tuned against or the one it
// produced, so callers may pass the stored set before or after persisting
// deactivations.
func alreadyTuned(tunedOn, current string) bool {
	if tunedOn == "" {
		return false
	}
	for _, fp := range strings.Split(tunedOn, fingerprintSep) {
		if fp == current {
			return true
		}
	}
	return false
}

// fingerprint hashes the active patterns' performance so a repeated pass
// over unchanged data can be detected.
func fingerprint(patterns []models.CandidatePattern) string {
	lines := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !p.Active {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s|%.6f|%d", p.ID, p.Performance.WinRate, p.Performance.TotalTrades))
	}
	sort.Strings(lines)
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:8])
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
