package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	"CryptoBrain/pkg/logger"
)

// MessageHandler handles messages from one topic.
type MessageHandler interface {
	Topic() string
	Handle(ctx context.Context, data []byte) error
}

// Consumer reads registered topics and fans messages out to a worker pool.
// At most one message per (topic, partition) is in flight.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *logger.Logger
	hook     ConsumerHook
	readers  map[string]*kafka.Reader
	handlers map[string]MessageHandler
	dlq      *kafka.Writer

	msgs     chan kafka.Message
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewConsumer(log *logger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "cryptobrain",
		WorkerCount: 1,
		BufferSize:  10,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	initConsumerMetrics()

	c := &Consumer{
		cfg:      cfg,
		log:      log,
		hook:     NoopHook{},
		readers:  make(map[string]*kafka.Reader),
		handlers: make(map[string]MessageHandler),
		msgs:     make(chan kafka.Message, cfg.BufferSize),
		stop:     make(chan struct{}),
		locks:    make(map[string]*sync.Mutex),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}, AllowAutoTopicCreation: true}
	}
	return c, nil
}

// WithHook replaces the lifecycle hook.
func (c *Consumer) WithHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

// RegisterHandler must be called before Start.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	if _, ok := c.handlers[h.Topic()]; ok {
		c.log.Warn("kafka handler already registered", logger.String("topic", h.Topic()))
		return
	}
	c.handlers[h.Topic()] = h
}

func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return errors.New("no handlers registered")
	}
	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
	}
	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go c.worker()
	}
	for topic, r := range c.readers {
		c.wg.Add(1)
		go c.read(topic, r)
	}
	c.log.Info("kafka consumer started",
		logger.Int("workers", c.cfg.WorkerCount),
		logger.String("group", c.cfg.GroupID),
		logger.Int("topics", len(c.readers)),
	)
	return nil
}

// Stop waits for in-flight messages or ctx, whichever comes first.
func (c *Consumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stop)
		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
		}
		for topic, r := range c.readers {
			if cerr := r.Close(); cerr != nil {
				c.log.Warn("close kafka reader", logger.String("topic", topic), logger.Error(cerr))
			}
		}
		if c.dlq != nil {
			_ = c.dlq.Close()
		}
	})
	return err
}

func (c *Consumer) read(topic string, r *kafka.Reader) {
	defer c.wg.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-c.stop
		cancel()
	}()

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("kafka fetch failed", logger.String("topic", topic), logger.Error(err))
			select {
			case <-time.After(time.Second):
				continue
			case <-c.stop:
				return
			}
		}
		select {
		case c.msgs <- msg:
			queueDepth.WithLabelValues(topic).Set(float64(len(c.msgs)))
		case <-c.stop:
			return
		}
	}
}

func (c *Consumer) worker() {
	defer c.wg.Done()
	for {
		select {
		case msg := <-c.msgs:
			c.process(msg)
		case <-c.stop:
			return
		}
	}
}

func (c *Consumer) process(km kafka.Message) {
	start := time.Now()
	handler := c.handlers[km.Topic]
	if handler == nil {
		return
	}
	l := c.partitionLock(km.Topic, km.Partition)
	l.Lock()
	defer l.Unlock()

	err := c.handleWithRetry(handler, km)
	result := "ok"
	if err != nil {
		result = "error"
		c.log.Error("kafka handler exhausted retries",
			logger.String("topic", km.Topic),
			logger.Int64("offset", km.Offset),
			logger.Error(err),
		)
		if c.dlq != nil {
			result = "dlq"
			if derr := c.dlq.WriteMessages(context.Background(), kafka.Message{
				Topic:   c.cfg.DLQTopic,
				Key:     km.Key,
				Value:   km.Value,
				Headers: append(km.Headers, kafka.Header{Key: "source_topic", Value: []byte(km.Topic)}),
			}); derr != nil {
				c.log.Error("kafka dlq write failed", logger.String("topic", c.cfg.DLQTopic), logger.Error(derr))
			}
		}
	}
	// Commit after success or after a DLQ hand-off so poison messages do not loop.
	if err == nil || c.dlq != nil {
		if r := c.readers[km.Topic]; r != nil {
			c.commit(r, km)
		}
	}
	handled.WithLabelValues(km.Topic, result).Inc()
	handleLatency.WithLabelValues(km.Topic).Observe(time.Since(start).Seconds())
}

func (c *Consumer) handleWithRetry(h MessageHandler, km kafka.Message) (err error) {
	for attempt := 1; ; attempt++ {
		err = c.handleOnce(h, km)
		if err == nil || attempt > c.cfg.RetryMax {
			return err
		}
		select {
		case <-time.After(backoff(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)):
		case <-c.stop:
			return err
		}
	}
}

func (c *Consumer) handleOnce(h MessageHandler, km kafka.Message) (err error) {
	ctx, data, err := c.hook.BeforeHandle(context.Background(), km.Topic, km, km.Value)
	if err != nil {
		c.hook.AfterHandle(ctx, km.Topic, km, err)
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		c.hook.AfterHandle(ctx, km.Topic, km, err)
	}()
	return h.Handle(ctx, data)
}

func (c *Consumer) commit(r *kafka.Reader, km kafka.Message) {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = r.CommitMessages(ctx, km)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(backoff(50*time.Millisecond, 500*time.Millisecond, attempt))
	}
	c.log.Error("kafka commit failed", logger.String("topic", km.Topic), logger.Int64("offset", km.Offset), logger.Error(err))
}

func (c *Consumer) partitionLock(topic string, partition int) *sync.Mutex {
	key := fmt.Sprintf("%s/%d", topic, partition)
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// backoff is exponential from min, capped at max, with up to 50% jitter removed.
func backoff(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	d := max
	if attempt < 32 {
		if exp := min << uint(attempt-1); exp > 0 && exp < max {
			d = exp
		}
	}
	if half := int64(d) / 2; half > 0 {
		d -= time.Duration(rand.Int63n(half))
	}
	return d
}

var (
	queueDepth    *prometheus.GaugeVec
	handled       *prometheus.CounterVec
	handleLatency *prometheus.HistogramVec
	consumerOnce  sync.Once
)

func initConsumerMetrics() {
	consumerOnce.Do(func() {
		queueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cryptobrain_kafka_consumer_queue_depth",
			Help: "Messages waiting for a worker",
		}, []string{"topic"})
		handled = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptobrain_kafka_consumer_messages_total",
			Help: "Messages handled by result",
		}, []string{"topic", "result"})
		handleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: "cryptobrain_kafka_consumer_handle_seconds",
			Help: "Handling time per message",
		}, []string{"topic"})
	})
}
