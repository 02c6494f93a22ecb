package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"CryptoBrain/pkg/logger"
)

// TraceHeader carries a correlation id across producer and consumer.
const TraceHeader = "trace_id"

// ConsumerHook wraps message handling. BeforeHandle may rewrite the context
// or payload; an error from it skips the handler and counts as a failure.
type ConsumerHook interface {
	BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, []byte, error)
	AfterHandle(ctx context.Context, topic string, km kafka.Message, err error)
}

type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, _ string, _ kafka.Message, data []byte) (context.Context, []byte, error) {
	return ctx, data, nil
}

func (NoopHook) AfterHandle(context.Context, string, kafka.Message, error) {}

// HookError classifies failures raised by hooks.
type HookError struct {
	Code string
	Err  error
}

func (e *HookError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *HookError) Unwrap() error { return e.Err }

// HookChain applies hooks in order before handling and in reverse after.
// A panicking hook becomes a HookError.
type HookChain struct {
	hooks []ConsumerHook
}

func NewHookChain(hooks ...ConsumerHook) *HookChain {
	c := &HookChain{}
	for _, h := range hooks {
		if h != nil {
			c.hooks = append(c.hooks, h)
		}
	}
	return c
}

func (c *HookChain) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (rctx context.Context, rdata []byte, err error) {
	rctx, rdata = ctx, data
	for _, h := range c.hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = &HookError{Code: "ERR_PANIC", Err: fmt.Errorf("hook panic: %v", r)}
				}
			}()
			rctx, rdata, err = h.BeforeHandle(rctx, topic, km, rdata)
		}()
		if err != nil {
			return ctx, data, err
		}
	}
	return rctx, rdata, nil
}

func (c *HookChain) AfterHandle(ctx context.Context, topic string, km kafka.Message, err error) {
	for i := len(c.hooks) - 1; i >= 0; i-- {
		func() {
			defer func() { _ = recover() }()
			c.hooks[i].AfterHandle(ctx, topic, km, err)
		}()
	}
}

type ctxKey string

const (
	ctxStartTime ctxKey = "kafka_start_time"
	ctxTraceID   ctxKey = "kafka_trace_id"
)

// WithTraceID stores a correlation id on ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxTraceID, id)
}

func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(ctxTraceID).(string)
	return id
}

func headerValue(km kafka.Message, key string) string {
	for _, h := range km.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// TraceHook lifts the trace header into ctx, minting one when absent.
type TraceHook struct{}

func (TraceHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, []byte, error) {
	id := headerValue(km, TraceHeader)
	if id == "" {
		id = uuid.NewString()
	}
	ctx = WithTraceID(ctx, id)
	return context.WithValue(ctx, ctxStartTime, time.Now()), data, nil
}

func (TraceHook) AfterHandle(context.Context, string, kafka.Message, error) {}

// LogHook logs every handled message with its outcome and latency.
type LogHook struct {
	Log *logger.Logger
}

func (h LogHook) BeforeHandle(ctx context.Context, _ string, _ kafka.Message, data []byte) (context.Context, []byte, error) {
	return ctx, data, nil
}

func (h LogHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, err error) {
	fields := []logger.Field{
		logger.String("topic", topic),
		logger.Int("partition", km.Partition),
		logger.Int64("offset", km.Offset),
		logger.String("trace_id", TraceID(ctx)),
	}
	if start, ok := ctx.Value(ctxStartTime).(time.Time); ok {
		fields = append(fields, logger.Duration("latency_ms", time.Since(start)))
	}
	if err != nil {
		h.Log.Warn("kafka message failed", append(fields, logger.Error(err))...)
		return
	}
	h.Log.Debug("kafka message handled", fields...)
}
