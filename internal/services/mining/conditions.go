package mining

import (
	"math"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/services/indicators"
)

const (
	volumeRatioFloor = 1.5
	recoveryRSIMin   = 25.0
	recoveryRSIMax   = 45.0

	weightVolume      = 1.0
	weightRecoveryRSI = 0.8
	weightEMABullish  = 0.7
	weightNearSupport = 0.9

	// matchRatio is the share of condition weight that must hold for a match.
	matchRatio    = 0.7
	weightEpsilon = 1e-9
)

// extractConditions reads the indicator state of one timeframe at index i
// and emits the conditions it satisfies.
func extractConditions(tf string, ff *indicators.FeatureFrame, i int) []models.Condition {
	var out []models.Condition
	if v := ff.Feature(indicators.FeatureVolumeRatio, i); !math.IsNaN(v) && v > volumeRatioFloor {
		out = append(out, models.Condition{
			Timeframe: tf, Feature: indicators.FeatureVolumeRatio,
			Operator: models.OpGreater, Value: volumeRatioFloor, Weight: weightVolume,
		})
	}
	if v := ff.Feature(indicators.FeatureRSI, i); !math.IsNaN(v) && v >= recoveryRSIMin && v <= recoveryRSIMax {
		out = append(out, models.Condition{
			Timeframe: tf, Feature: indicators.FeatureRSI,
			Operator: models.OpBetween, Min: recoveryRSIMin, Max: recoveryRSIMax, Weight: weightRecoveryRSI,
		})
	}
	if v := ff.Feature(indicators.FeatureEMAAlignment, i); v == 1 {
		out = append(out, models.Condition{
			Timeframe: tf, Feature: indicators.FeatureEMAAlignment,
			Operator: models.OpEqual, Value: 1, Weight: weightEMABullish,
		})
	}
	if v := ff.Feature(indicators.FeatureNearSupport, i); v == 1 {
		out = append(out, models.Condition{
			Timeframe: tf, Feature: indicators.FeatureNearSupport,
			Operator: models.OpEqual, Value: 1, Weight: weightNearSupport,
		})
	}
	return out
}

// lookupFunc returns the value of a condition's feature at the moment being
// evaluated, NaN when the timeframe is unavailable.
type lookupFunc func(c models.Condition) float64

// matches reports whether the satisfied weight reaches matchRatio of the total.
func matches(conds []models.Condition, lookup lookupFunc) bool {
	var total, hit float64
	for _, c := range conds {
		total += c.Weight
		if c.Eval(lookup(c)) {
			hit += c.Weight
		}
	}
	if total <= 0 {
		return false
	}
	return hit >= matchRatio*total-weightEpsilon
}
