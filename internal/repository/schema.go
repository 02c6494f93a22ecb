package repository

import "fmt"

// Schema returns the DDL for the candle and pattern tables.
// Candles are written by the ingestion side; this service only reads them.
func Schema(candleTable, patternTable string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    symbol    LowCardinality(String),
    timeframe LowCardinality(String),
    bucket    DateTime,
    open      Float64,
    high      Float64,
    low       Float64,
    close     Float64,
    volume    Float64
) ENGINE = ReplacingMergeTree
PARTITION BY toYYYYMM(bucket)
ORDER BY (symbol, timeframe, bucket)`, candleTable),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    pattern_id       String,
    symbol           LowCardinality(String),
    pattern_name     String,
    kind             LowCardinality(String),
    timeframes       String,
    conditions       String,
    profit_target    Float64,
    stop_loss        Float64,
    lookahead        Int32,
    discovered_at    DateTime64(3),
    win_rate         Float64,
    total_trades     Int32,
    wins             Int32,
    losses           Int32,
    neutral          Int32,
    avg_profit_pct   Float64,
    confidence_score Float64,
    is_active        Bool,
    updated_at       DateTime64(3)
) ENGINE = ReplacingMergeTree(updated_at)
ORDER BY pattern_id`, patternTable),
	}
}
