package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	pkgch "CryptoBrain/pkg/clickhouse"
	applogger "CryptoBrain/pkg/logger"
)

var _ domrepo.CandleStore = (*CHCandleStore)(nil)

// CHCandleStore reads OHLCV series from ClickHouse.
type CHCandleStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client, table string, l *applogger.Logger) *CHCandleStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHCandleStore{db: ch.DB(), table: table, l: l}
}

// LoadCandles returns the latest limit candles in ascending bucket order.
func (s *CHCandleStore) LoadCandles(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) ([]models.Candle, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("%w: %q", domrepo.ErrUnknownTimeframe, tf)
	}
	if limit <= 0 {
		return nil, nil
	}
	start := time.Now()
	const qtpl = `
        SELECT bucket, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND timeframe = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), symbol, string(tf), limit)
	if err != nil {
		s.l.Error("clickhouse load_candles query error",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("load candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, limit)
	for rows.Next() {
		c := models.Candle{Symbol: symbol}
		if err := rows.Scan(&c.Bucket, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	reverseCandles(out)

	s.l.Debug("clickhouse load_candles ok",
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func reverseCandles(cs []models.Candle) {
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
}
