package mining

import (
	"fmt"
	"strings"
	"time"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/domain/repository"
	"CryptoBrain/internal/services/indicators"
)

// legacyTimeframes are scanned by the fixed single-timeframe rules.
var legacyTimeframes = []repository.Timeframe{repository.TF1h, repository.TF4h}

type legacyRule struct {
	id         string
	kind       models.PatternKind
	name       string
	condition  models.Condition
	outcome    outcomeRule
	minSignals int
}

var legacyRules = []legacyRule{
	{
		kind:       models.KindVolumeSpike,
		id:         "volume_spike",
		name:       "Volume Spike 2.0x Pattern",
		condition:  models.Condition{Feature: indicators.FeatureVolumeRatio, Operator: models.OpGreater, Value: 2.0, Weight: 1},
		outcome:    outcomeRule{Lookahead: 5, Target: 2.0, Stop: 1.0, Strict: true},
		minSignals: 20,
	},
	{
		kind:       models.KindEMABounce,
		id:         "ema_20_bounce",
		name:       "EMA-20 Bounce in Uptrend",
		condition:  models.Condition{Feature: indicators.FeatureEMA20Bounce, Operator: models.OpEqual, Value: 1, Weight: 1},
		outcome:    outcomeRule{Lookahead: 5, Target: 1.5, Stop: 1.0, Strict: true},
		minSignals: 10,
	},
	{
		kind:       models.KindEMABounce,
		id:         "ema_50_bounce",
		name:       "EMA-50 Bounce in Uptrend",
		condition:  models.Condition{Feature: indicators.FeatureEMA50Bounce, Operator: models.OpEqual, Value: 1, Weight: 1},
		outcome:    outcomeRule{Lookahead: 5, Target: 1.5, Stop: 1.0, Strict: true},
		minSignals: 10,
	},
	{
		kind:       models.KindRSIOversold,
		id:         "rsi_oversold",
		name:       "RSI Oversold (<30) in Uptrend",
		condition:  models.Condition{Feature: indicators.FeatureRSIOversold, Operator: models.OpEqual, Value: 1, Weight: 1},
		outcome:    outcomeRule{Lookahead: 10, Target: 2.0, Stop: 1.5, Strict: true},
		minSignals: 10,
	},
}

// mineLegacy runs every fixed rule over the full window of one timeframe and
// returns the rules that fired often enough, with their performance.
func mineLegacy(symbol, tf string, ff *indicators.FeatureFrame, now time.Time) []models.CandidatePattern {
	if !ff.Augmented {
		return nil
	}
	var out []models.CandidatePattern
	for _, r := range legacyRules {
		cond := r.condition
		cond.Timeframe = tf
		var t tally
		fired := 0
		for i := 0; i < ff.Len(); i++ {
			if !cond.Eval(ff.Feature(cond.Feature, i)) {
				continue
			}
			fired++
			if o, profit, ok := r.outcome.evaluate(ff.Candles, i); ok {
				t.add(o, profit)
			}
		}
		if fired < r.minSignals {
			continue
		}
		out = append(out, models.CandidatePattern{
			ID:           fmt.Sprintf("%s_%s_%s", r.id, idSymbol(symbol), tf),
			Symbol:       symbol,
			Name:         r.name,
			Kind:         r.kind,
			Timeframes:   []string{tf},
			Conditions:   []models.Condition{cond},
			ProfitTarget: r.outcome.Target,
			StopLoss:     r.outcome.Stop,
			Lookahead:    r.outcome.Lookahead,
			DiscoveredAt: now,
			Performance:  t.performance(),
		})
	}
	return out
}

var idReplacer = strings.NewReplacer("/", "", "-", "", " ", "")

func idSymbol(symbol string) string {
	return strings.ToLower(idReplacer.Replace(symbol))
}
