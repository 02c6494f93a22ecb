package logger

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestCollectorFoldsRepeatedErrors(t *testing.T) {
	pub := &capturePublisher{}
	var buf bytes.Buffer
	log := NewWriter(&buf)
	log.AddCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		MinLevel:       zerolog.WarnLevel,
		Topic:          "logs",
		Publisher:      pub,
	})

	for i := 0; i < 3; i++ {
		log.Error("load candles failed", String("symbol", "BTC/USDT"))
	}
	log.Info("not collected")
	log.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	require.Len(t, pub.batches[0], 1)
	e := pub.batches[0][0]
	assert.Equal(t, "logs", pub.topic)
	assert.Equal(t, 3, e.Count)
	assert.Equal(t, "error", e.Level)
	assert.Equal(t, "BTC/USDT", e.Fields["symbol"])
	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
}

func TestWithStampsFields(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf).With(String("component", "miner")).Info("done", Float64("win_rate", 0.7))
	assert.Contains(t, buf.String(), `"component":"miner"`)
	assert.Contains(t, buf.String(), `"win_rate":0.7`)
}
