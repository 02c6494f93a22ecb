package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	pkgkafka "CryptoBrain/pkg/kafka"
	"CryptoBrain/pkg/logger"
)

var _ pkgkafka.MessageHandler = (*MineRequestHandler)(nil)

type miner interface {
	MinePatterns(ctx context.Context, symbol string, lookbackDays int) (*models.MiningResult, error)
}

// MineRequestHandler consumes queued mine requests: {symbol, lookback_days}.
type MineRequestHandler struct {
	topic   string
	mining  miner
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewMineRequestHandler(topic string, m miner, metrics domrepo.Metrics, log *logger.Logger) *MineRequestHandler {
	return &MineRequestHandler{topic: topic, mining: m, metrics: metrics, log: log}
}

func (h *MineRequestHandler) Topic() string { return h.topic }

// Handle runs the pass. A request that meets a pass already in progress is
// dropped; the running pass covers it.
func (h *MineRequestHandler) Handle(ctx context.Context, b []byte) error {
	var req models.MineRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode mine request: %w", err)
	}
	if err := defaults.Set(&req); err != nil {
		return fmt.Errorf("mine request defaults: %w", err)
	}
	if req.Symbol == "" {
		h.metrics.RecordError("consumer_invalid")
		return errors.New("mine request without symbol")
	}

	start := time.Now()
	res, err := h.mining.MinePatterns(ctx, req.Symbol, req.LookbackDays)
	h.metrics.RecordLatency("mine_request_seconds", time.Since(start).Seconds())
	if errors.Is(err, domrepo.ErrMiningInProgress) {
		h.log.Info("mine request dropped, pass in progress",
			logger.String("symbol", req.Symbol),
			logger.String("trace_id", pkgkafka.TraceID(ctx)),
		)
		return nil
	}
	if err != nil {
		return err
	}
	h.log.Info("mine request done",
		logger.String("symbol", req.Symbol),
		logger.String("run_id", res.RunID),
		logger.String("trace_id", pkgkafka.TraceID(ctx)),
	)
	return nil
}
