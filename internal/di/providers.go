package di

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	domrepo "CryptoBrain/internal/domain/repository"
	"CryptoBrain/internal/handler/api"
	internalrepo "CryptoBrain/internal/repository"
	"CryptoBrain/internal/services/brain"
	"CryptoBrain/internal/services/mining"
	"CryptoBrain/internal/usecase"
	"CryptoBrain/pkg/cache"
	pkgch "CryptoBrain/pkg/clickhouse"
	"CryptoBrain/pkg/config"
	xhttp "CryptoBrain/pkg/http"
	pkgkafka "CryptoBrain/pkg/kafka"
	"CryptoBrain/pkg/logger"
	"CryptoBrain/pkg/metrics"
	"CryptoBrain/pkg/scheduler"
	"CryptoBrain/pkg/server"
)

// Container holds the wired usecases. The CLI uses them directly; serve
// runs App.
type Container struct {
	App      *server.App
	Log      *logger.Logger
	Analysis *usecase.AnalysisUseCase
	Regime   *usecase.RegimeUseCase
	Brain    *usecase.BrainUseCase
	Mining   *usecase.MiningUseCase
	Closers  []server.Closer
}

// Close releases every client in reverse order of creation. Only needed
// when App.Run was not called.
func (c *Container) Close() {
	for i := len(c.Closers) - 1; i >= 0; i-- {
		if err := c.Closers[i].Close(); err != nil {
			c.Log.Warn("close error", logger.String("component", c.Closers[i].Name), logger.Error(err))
		}
	}
}

func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient connects and applies the schema.
func ProvideClickHouseClient(cfg *config.Config, log *logger.Logger) (*pkgch.Client, error) {
	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithAsyncInsert(ch.AsyncInsert, true),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Migrate(ctx, internalrepo.Schema(ch.CandleTable, ch.PatternTable)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	log.Info("clickhouse ready",
		logger.String("host", ch.Host),
		logger.String("database", ch.Database),
	)
	return client, nil
}

// ProvideCache returns Redis behind an in-process L1 when Redis is enabled,
// otherwise a memory cache.
func ProvideCache(cfg *config.Config, log *logger.Logger) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		log.Info("redis disabled, using memory cache")
		return cache.NewMemoryCache(), nil
	}
	r, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	log.Info("redis cache ready", logger.String("addr", cfg.Redis.Addr))
	return cache.NewLayeredCache(r, cache.WithLayeredMemoryTTL(cfg.Redis.L1TTL)), nil
}

// ProvideKafkaProducer returns nil when Kafka is disabled. When enabled it
// also ships aggregated warn/error logs to the logs topic.
func ProvideKafkaProducer(cfg *config.Config, log *logger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	if cfg.Kafka.Topics.Logs != "" {
		log.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			MinLevel:       zerolog.WarnLevel,
			Topic:          cfg.Kafka.Topics.Logs,
			Publisher:      producer,
		})
	}
	log.Info("kafka producer ready", logger.Strings("brokers", cfg.Kafka.Brokers))
	return producer, nil
}

func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.EventPublisher {
	if producer == nil {
		return internalrepo.NopPublisher{}
	}
	return internalrepo.NewKafkaEventPublisher(producer, internalrepo.EventTopics{
		Patterns:   cfg.Kafka.Topics.Patterns,
		Confluence: cfg.Kafka.Topics.Confluence,
	})
}

// ProvideKafkaConsumer returns nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, log *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	kc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(kc.GroupID),
		pkgkafka.WithConsumerWorkers(kc.Workers),
		pkgkafka.WithConsumerRetry(kc.RetryMax, kc.BackoffMin, kc.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Topics.DLQ),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithHook(pkgkafka.NewHookChain(pkgkafka.TraceHook{}, pkgkafka.LogHook{Log: log}))
	return consumer, nil
}

// ProvideCandleStore reads candles from ClickHouse behind a circuit breaker.
func ProvideCandleStore(ch *pkgch.Client, cfg *config.Config, log *logger.Logger) domrepo.CandleStore {
	b := cfg.Breaker
	return internalrepo.NewBreakerCandleStore(
		internalrepo.NewCHCandleStore(ch, cfg.ClickHouse.CandleTable, log),
		internalrepo.BreakerConfig{
			Name:         "candle-store",
			MaxRequests:  b.MaxRequests,
			Interval:     b.Interval,
			Timeout:      b.Timeout,
			FailureRatio: b.FailureRatio,
			MinRequests:  b.MinRequests,
		},
		log,
	)
}

func ProvidePatternStore(ch *pkgch.Client, cfg *config.Config, log *logger.Logger) domrepo.PatternStore {
	return internalrepo.NewCHPatternStore(ch, cfg.ClickHouse.PatternTable, log)
}

func ProvideParamsStore(c cache.Service) domrepo.ParamsStore {
	return internalrepo.NewCacheParamsStore(c)
}

func ProvideMiner(cfg *config.Config) *mining.Miner {
	return mining.NewMiner(mining.WithTrainFraction(cfg.Mining.TrainFraction))
}

func ProvideAnalysisUseCase(
	store domrepo.CandleStore,
	c cache.Service,
	pub domrepo.EventPublisher,
	m domrepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(store, c, pub, m, log, usecase.AnalysisConfig{
		Timeframes: cfg.Timeframes(),
		Candles:    cfg.Analysis.Candles,
		CacheTTL:   cfg.Analysis.CacheTTL,
	})
}

func ProvideRegimeUseCase(store domrepo.CandleStore, log *logger.Logger) *usecase.RegimeUseCase {
	return usecase.NewRegimeUseCase(store, log)
}

func ProvideMiningUseCase(
	store domrepo.CandleStore,
	patterns domrepo.PatternStore,
	params domrepo.ParamsStore,
	c cache.Service,
	pub domrepo.EventPublisher,
	producer *pkgkafka.Producer,
	m domrepo.Metrics,
	miner *mining.Miner,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.MiningUseCase {
	u := usecase.NewMiningUseCase(store, patterns, params, c, pub, m, miner, log, usecase.MiningConfig{
		Symbols:      cfg.Analysis.Symbols,
		Timeframes:   cfg.MiningTimeframes(),
		LookbackDays: cfg.Mining.LookbackDays,
		MaxCandles:   cfg.Mining.MaxCandles,
		LockTTL:      cfg.Mining.LockTTL,
		Defaults:     cfg.Mining.Params,
		RequestTopic: cfg.Kafka.Topics.MineRequests,
	})
	if producer != nil {
		u.SetRequestPublisher(producer)
	}
	return u
}

func ProvideBrainUseCase(
	analysis *usecase.AnalysisUseCase,
	regime *usecase.RegimeUseCase,
	patterns domrepo.PatternStore,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.BrainUseCase {
	return usecase.NewBrainUseCase(analysis, regime, patterns,
		brain.StaticAltSeason(cfg.Brain.AltSeasonIndex), brain.NewStaticAdvisor(), log,
		usecase.BrainConfig{RegimeCandles: cfg.Analysis.Candles, TopPatterns: cfg.Brain.TopPatterns})
}

func ProvideHTTPServer(
	cfg *config.Config,
	log *logger.Logger,
	analysis *usecase.AnalysisUseCase,
	regime *usecase.RegimeUseCase,
	brainUC *usecase.BrainUseCase,
	miningUC *usecase.MiningUseCase,
) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(log,
		[]xhttp.Handler{
			api.NewSignalsHandler(analysis, regime, brainUC),
			api.NewPatternsHandler(miningUC),
			api.NewStreamHandler(analysis, cfg.Analysis.StreamTick, cfg.Server.AllowOrigins, log),
		},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.AllowOrigins...),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
	)
}

// ProvideClosers lists the shared clients in creation order.
func ProvideClosers(
	ch *pkgch.Client,
	c cache.Service,
	pub domrepo.EventPublisher,
	producer *pkgkafka.Producer,
	log *logger.Logger,
) []server.Closer {
	closers := []server.Closer{
		{Name: "clickhouse", Close: ch.Close},
		{Name: "cache", Close: c.Close},
	}
	if producer != nil {
		// the event publisher owns the producer
		closers = append(closers,
			server.Closer{Name: "kafka producer", Close: pub.Close},
			server.Closer{Name: "log collector", Close: func() error {
				log.RemoveCollector()
				return nil
			}},
		)
	}
	return closers
}

// ProvideApp schedules periodic mining and consumes queued mine requests.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	miningUC *usecase.MiningUseCase,
	m domrepo.Metrics,
	closers []server.Closer,
) *server.App {
	var handlers []pkgkafka.MessageHandler
	if consumer != nil {
		handlers = append(handlers, usecase.NewMineRequestHandler(cfg.Kafka.Topics.MineRequests, miningUC, m, log))
	}
	jobs := []server.Job{{Name: "mine-patterns", Spec: cfg.Mining.Schedule, Task: miningUC.MineAll}}
	return server.New(log, srv, consumer, handlers, scheduler.New(log, cfg.Mining.Timeout), jobs, closers,
		server.Options{ShutdownTimeout: cfg.Server.ShutdownTimeout})
}

func ProvideContainer(
	app *server.App,
	log *logger.Logger,
	analysis *usecase.AnalysisUseCase,
	regime *usecase.RegimeUseCase,
	brainUC *usecase.BrainUseCase,
	miningUC *usecase.MiningUseCase,
	closers []server.Closer,
) *Container {
	return &Container{
		App: app, Log: log,
		Analysis: analysis, Regime: regime, Brain: brainUC, Mining: miningUC,
		Closers: closers,
	}
}
