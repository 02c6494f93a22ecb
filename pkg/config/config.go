package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"CryptoBrain/internal/domain/models"
	"CryptoBrain/internal/domain/repository"
	"CryptoBrain/pkg/logger"
)

type Config struct {
	Environment string        `yaml:"environment"`
	Log         logger.Config `yaml:"log"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		RateLimit       float64       `yaml:"rate_limit"`
		RateBurst       int           `yaml:"rate_burst"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		CandleTable      string        `yaml:"candle_table"`
		PatternTable     string        `yaml:"pattern_table"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix"`
		L1TTL    time.Duration `yaml:"l1_ttl"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		Compression string   `yaml:"compression"`
		Topics      struct {
			Patterns     string `yaml:"patterns"`
			Confluence   string `yaml:"confluence"`
			MineRequests string `yaml:"mine_requests"`
			Logs         string `yaml:"logs"`
			DLQ          string `yaml:"dlq"`
		} `yaml:"topics"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Analysis struct {
		Symbols    []string      `yaml:"symbols"`
		Timeframes []string      `yaml:"timeframes"`
		Candles    int           `yaml:"candles"`
		CacheTTL   time.Duration `yaml:"cache_ttl"`
		StreamTick time.Duration `yaml:"stream_interval"`
	} `yaml:"analysis"`
	Mining struct {
		Timeframes    []string                  `yaml:"timeframes"`
		LookbackDays  int                       `yaml:"lookback_days"`
		MaxCandles    int                       `yaml:"max_candles"`
		TrainFraction float64                   `yaml:"train_fraction"`
		Schedule      string                    `yaml:"schedule"`
		LockTTL       time.Duration             `yaml:"lock_ttl"`
		Timeout       time.Duration             `yaml:"timeout"`
		Params        models.AdaptiveParameters `yaml:"params"`
	} `yaml:"mining"`
	Breaker struct {
		MaxRequests  uint32        `yaml:"max_requests"`
		Interval     time.Duration `yaml:"interval"`
		Timeout      time.Duration `yaml:"timeout"`
		FailureRatio float64       `yaml:"failure_ratio"`
		MinRequests  uint32        `yaml:"min_requests"`
	} `yaml:"breaker"`
	Brain struct {
		AltSeasonIndex float64 `yaml:"alt_season_index"`
		TopPatterns    int     `yaml:"top_patterns"`
	} `yaml:"brain"`
}

// Default is the configuration used when a field is left out of the file.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.Log = logger.Config{Level: "info", Format: "json", Output: "stdout"}

	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.RateLimit = 20
	c.Server.RateBurst = 40
	c.Server.AllowOrigins = []string{"*"}
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"

	c.ClickHouse.Host = "localhost"
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "default"
	c.ClickHouse.User = "default"
	c.ClickHouse.DialTimeout = 5 * time.Second
	c.ClickHouse.ReadTimeout = 30 * time.Second
	c.ClickHouse.CandleTable = "candles"
	c.ClickHouse.PatternTable = "candidate_patterns"

	c.Redis.Addr = "localhost:6379"
	c.Redis.Prefix = "cryptobrain"
	c.Redis.L1TTL = 30 * time.Second

	c.Kafka.Brokers = []string{"localhost:9092"}
	c.Kafka.Compression = "gzip"
	c.Kafka.Topics.Patterns = "cryptobrain.patterns"
	c.Kafka.Topics.Confluence = "cryptobrain.confluence"
	c.Kafka.Topics.MineRequests = "cryptobrain.mine-requests"
	c.Kafka.Topics.Logs = "cryptobrain.logs"
	c.Kafka.Topics.DLQ = "cryptobrain.dlq"
	c.Kafka.Consumer.GroupID = "cryptobrain"
	c.Kafka.Consumer.Workers = 2
	c.Kafka.Consumer.RetryMax = 3
	c.Kafka.Consumer.BackoffMin = 100 * time.Millisecond
	c.Kafka.Consumer.BackoffMax = 5 * time.Second

	c.Analysis.Symbols = []string{"BTC/USDT"}
	c.Analysis.Timeframes = []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d"}
	c.Analysis.Candles = 200
	c.Analysis.CacheTTL = 30 * time.Second
	c.Analysis.StreamTick = 15 * time.Second

	c.Mining.Timeframes = []string{"15m", "1h", "4h", "1d"}
	c.Mining.LookbackDays = 90
	c.Mining.MaxCandles = 20000
	c.Mining.TrainFraction = 0.7
	c.Mining.Schedule = "0 0 */6 * * *"
	c.Mining.LockTTL = 30 * time.Minute
	c.Mining.Timeout = 20 * time.Minute
	c.Mining.Params = models.DefaultAdaptiveParameters()

	c.Breaker.MaxRequests = 1
	c.Breaker.Interval = time.Minute
	c.Breaker.Timeout = 30 * time.Second
	c.Breaker.FailureRatio = 0.6
	c.Breaker.MinRequests = 5

	c.Brain.AltSeasonIndex = 50
	c.Brain.TopPatterns = 10
	return c
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads the file, then applies environment overrides.
// An empty path means defaults plus environment.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		var err error
		if c, err = Load(path); err != nil {
			return nil, err
		}
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("SYMBOLS"); v != "" {
		c.Analysis.Symbols = splitList(v)
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Timeframes returns the parsed analysis timeframes.
func (c *Config) Timeframes() []repository.Timeframe {
	tfs, _ := repository.ParseTimeframes(c.Analysis.Timeframes)
	return tfs
}

// MiningTimeframes returns the parsed mining timeframes.
func (c *Config) MiningTimeframes() []repository.Timeframe {
	tfs, _ := repository.ParseTimeframes(c.Mining.Timeframes)
	return tfs
}

func (c *Config) Validate() error {
	var errs []error
	if c.Environment == "" {
		errs = append(errs, errors.New("environment is required"))
	}
	if len(c.Analysis.Symbols) == 0 {
		errs = append(errs, errors.New("analysis.symbols cannot be empty"))
	}
	if len(c.Analysis.Timeframes) == 0 {
		errs = append(errs, errors.New("analysis.timeframes cannot be empty"))
	} else if _, err := repository.ParseTimeframes(c.Analysis.Timeframes); err != nil {
		errs = append(errs, fmt.Errorf("analysis.timeframes: %w", err))
	}
	if c.Analysis.Candles < 50 {
		errs = append(errs, fmt.Errorf("analysis.candles must be at least 50, got %d", c.Analysis.Candles))
	}
	if _, err := repository.ParseTimeframes(c.Mining.Timeframes); err != nil || len(c.Mining.Timeframes) < 2 {
		errs = append(errs, fmt.Errorf("mining.timeframes needs at least two valid timeframes: %v", c.Mining.Timeframes))
	}
	if f := c.Mining.TrainFraction; f <= 0 || f >= 1 {
		errs = append(errs, fmt.Errorf("mining.train_fraction must be in (0,1), got %v", f))
	}
	if p := c.Mining.Params; p.MinWinRate <= 0 || p.MinWinRate > 1 || p.MinTrades < 1 {
		errs = append(errs, fmt.Errorf("mining.params out of range: win rate %v, trades %d", p.MinWinRate, p.MinTrades))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers required when kafka is enabled"))
	}
	if c.ClickHouse.Host == "" {
		errs = append(errs, errors.New("clickhouse.host is required"))
	}
	return errors.Join(errs...)
}
