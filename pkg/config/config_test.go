package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoBrain/internal/domain/repository"
)

const sample = `
environment: production
log:
  level: debug
  format: console
analysis:
  symbols: [BTC/USDT, ETH/USDT]
  timeframes: [15m, 1h, 4h]
  cache_ttl: 1m
mining:
  schedule: "0 0 * * * *"
  params:
    min_win_rate: 0.7
    min_trades: 12
kafka:
  enabled: true
  brokers: [kafka:9092]
`

func TestParseOverDefaults(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "stdout", c.Log.Output)
	assert.Equal(t, []repository.Timeframe{repository.TF15m, repository.TF1h, repository.TF4h}, c.Timeframes())
	assert.Equal(t, time.Minute, c.Analysis.CacheTTL)
	assert.Equal(t, 0.7, c.Mining.Params.MinWinRate)
	assert.Equal(t, 12, c.Mining.Params.MinTrades)
	assert.Equal(t, 1.5, c.Mining.Params.ProfitThreshold)
	assert.Equal(t, 8080, c.Server.Port)
}

func TestValidateCollectsErrors(t *testing.T) {
	_, err := Parse([]byte("environment: x\nanalysis:\n  timeframes: [2h]\n  candles: 10\nmining:\n  train_fraction: 1\n"))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "unknown timeframe")
	assert.Contains(t, msg, "analysis.candles")
	assert.Contains(t, msg, "train_fraction")
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	env := map[string]string{
		"SYMBOLS":       "SOL/USDT, ,ADA/USDT",
		"KAFKA_BROKERS": "a:9092,b:9092",
		"REDIS_ADDR":    "redis:6379",
		"LOG_LEVEL":     "warn",
	}
	c.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, []string{"SOL/USDT", "ADA/USDT"}, c.Analysis.Symbols)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "warn", c.Log.Level)
	assert.NoError(t, c.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Analysis.Symbols, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
