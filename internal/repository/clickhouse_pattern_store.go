package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	pkgch "CryptoBrain/pkg/clickhouse"
	applogger "CryptoBrain/pkg/logger"
)

var _ domrepo.PatternStore = (*CHPatternStore)(nil)

const patternColumns = `pattern_id, symbol, pattern_name, kind, timeframes, conditions,
    profit_target, stop_loss, lookahead, discovered_at,
    win_rate, total_trades, wins, losses, neutral, avg_profit_pct, confidence_score, is_active`

// CHPatternStore keeps candidate patterns in a ReplacingMergeTree keyed by
// pattern_id. The newest updated_at wins, so Upsert is an insert.
type CHPatternStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
	now   func() time.Time
}

func NewCHPatternStore(ch *pkgch.Client, table string, l *applogger.Logger) *CHPatternStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHPatternStore{db: ch.DB(), table: table, l: l, now: time.Now}
}

// patternRow is the flat column layout of one pattern.
type patternRow struct {
	ID           string
	Symbol       string
	Name         string
	Kind         string
	Timeframes   string
	Conditions   string
	ProfitTarget float64
	StopLoss     float64
	Lookahead    int32
	DiscoveredAt time.Time
	WinRate      float64
	TotalTrades  int32
	Wins         int32
	Losses       int32
	Neutral      int32
	AvgProfitPct float64
	Confidence   float64
	Active       bool
}

func toRow(p models.CandidatePattern) (patternRow, error) {
	tfs, err := json.Marshal(p.Timeframes)
	if err != nil {
		return patternRow{}, fmt.Errorf("encode timeframes: %w", err)
	}
	conds, err := json.Marshal(p.Conditions)
	if err != nil {
		return patternRow{}, fmt.Errorf("encode conditions: %w", err)
	}
	perf := p.Performance
	return patternRow{
		ID:           p.ID,
		Symbol:       p.Symbol,
		Name:         p.Name,
		Kind:         string(p.Kind),
		Timeframes:   string(tfs),
		Conditions:   string(conds),
		ProfitTarget: p.ProfitTarget,
		StopLoss:     p.StopLoss,
		Lookahead:    int32(p.Lookahead),
		DiscoveredAt: p.DiscoveredAt.UTC(),
		WinRate:      perf.WinRate,
		TotalTrades:  int32(perf.TotalTrades),
		Wins:         int32(perf.Wins),
		Losses:       int32(perf.Losses),
		Neutral:      int32(perf.Neutral),
		AvgProfitPct: perf.AvgProfitPct,
		Confidence:   perf.ConfidenceScore,
		Active:       p.Active,
	}, nil
}

func (r patternRow) pattern() (models.CandidatePattern, error) {
	p := models.CandidatePattern{
		ID:           r.ID,
		Symbol:       r.Symbol,
		Name:         r.Name,
		Kind:         models.PatternKind(r.Kind),
		ProfitTarget: r.ProfitTarget,
		StopLoss:     r.StopLoss,
		Lookahead:    int(r.Lookahead),
		DiscoveredAt: r.DiscoveredAt,
		Active:       r.Active,
		Performance: models.Performance{
			WinRate:         r.WinRate,
			TotalTrades:     int(r.TotalTrades),
			Wins:            int(r.Wins),
			Losses:          int(r.Losses),
			Neutral:         int(r.Neutral),
			AvgProfitPct:    r.AvgProfitPct,
			ConfidenceScore: r.Confidence,
		},
	}
	if err := json.Unmarshal([]byte(r.Timeframes), &p.Timeframes); err != nil {
		return p, fmt.Errorf("decode timeframes of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Conditions), &p.Conditions); err != nil {
		return p, fmt.Errorf("decode conditions of %s: %w", r.ID, err)
	}
	return p, nil
}

func (r *patternRow) dest() []interface{} {
	return []interface{}{
		&r.ID, &r.Symbol, &r.Name, &r.Kind, &r.Timeframes, &r.Conditions,
		&r.ProfitTarget, &r.StopLoss, &r.Lookahead, &r.DiscoveredAt,
		&r.WinRate, &r.TotalTrades, &r.Wins, &r.Losses, &r.Neutral, &r.AvgProfitPct, &r.Confidence, &r.Active,
	}
}

func (r patternRow) values() []interface{} {
	return []interface{}{
		r.ID, r.Symbol, r.Name, r.Kind, r.Timeframes, r.Conditions,
		r.ProfitTarget, r.StopLoss, r.Lookahead, r.DiscoveredAt,
		r.WinRate, r.TotalTrades, r.Wins, r.Losses, r.Neutral, r.AvgProfitPct, r.Confidence, r.Active,
	}
}

// Upsert writes all patterns in one batch.
func (s *CHPatternStore) Upsert(ctx context.Context, patterns []models.CandidatePattern) error {
	if len(patterns) == 0 {
		return nil
	}
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s, updated_at)", s.table, patternColumns))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	updated := s.now().UTC()
	for _, p := range patterns {
		r, err := toRow(p)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, append(r.values(), updated)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append pattern %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		s.l.Error("clickhouse upsert_patterns error", applogger.Int("rows", len(patterns)), applogger.Error(err))
		return fmt.Errorf("commit batch: %w", err)
	}
	s.l.Info("clickhouse upsert_patterns ok",
		applogger.Int("rows", len(patterns)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHPatternStore) Get(ctx context.Context, id string) (models.CandidatePattern, error) {
	q := fmt.Sprintf("SELECT %s FROM %s FINAL WHERE pattern_id = ? LIMIT 1", patternColumns, s.table)
	var r patternRow
	if err := s.db.QueryRowContext(ctx, q, id).Scan(r.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CandidatePattern{}, fmt.Errorf("%w: %s", domrepo.ErrPatternNotFound, id)
		}
		return models.CandidatePattern{}, fmt.Errorf("get pattern: %w", err)
	}
	return r.pattern()
}

// ListActive returns the active patterns of symbol, best first. An empty
// symbol lists every symbol.
func (s *CHPatternStore) ListActive(ctx context.Context, symbol string) ([]models.CandidatePattern, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s FINAL
        WHERE (? = '' OR symbol = ?) AND is_active
        ORDER BY win_rate DESC, total_trades DESC`, patternColumns, s.table)
	return s.query(ctx, "list_active", q, symbol, symbol)
}

// TopActive returns active patterns of every symbol with at least minTrades
// validated trades, best win rate first.
func (s *CHPatternStore) TopActive(ctx context.Context, minTrades, limit int) ([]models.CandidatePattern, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s FINAL
        WHERE is_active AND total_trades >= ?
        ORDER BY win_rate DESC, total_trades DESC
        LIMIT ?`, patternColumns, s.table)
	return s.query(ctx, "top_active", q, minTrades, limit)
}

func (s *CHPatternStore) query(ctx context.Context, op, q string, args ...interface{}) ([]models.CandidatePattern, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse pattern query error", applogger.String("op", op), applogger.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.CandidatePattern
	for rows.Next() {
		var r patternRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		p, err := r.pattern()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
