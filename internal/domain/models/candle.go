package models

import "time"

// Candle is one OHLCV bucket. Sequences are ordered by Bucket ascending.
type Candle struct {
	Bucket time.Time `json:"bucket"`
	Symbol string    `json:"symbol,omitempty"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}
