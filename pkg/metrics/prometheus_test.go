package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"CryptoBrain/internal/domain/models"
)

func TestRecorder(t *testing.T) {
	r := NewWith(prometheus.NewRegistry())

	r.RecordAnalysis("BTC/USDT", models.ActionStrongBuy, 0.2)
	r.RecordAnalysis("BTC/USDT", models.ActionStrongBuy, 0.3)
	r.RecordMining("BTC/USDT", 5, 2, 1, 12)
	r.RecordThreshold(0.7)
	r.RecordError("candles")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.analyses.WithLabelValues("BTC/USDT", "STRONG_BUY")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.discovered.WithLabelValues("BTC/USDT")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.accepted.WithLabelValues("BTC/USDT")))
	assert.Equal(t, 0.7, testutil.ToFloat64(r.minWinRate))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("candles")))
}
