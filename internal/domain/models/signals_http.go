package models

// Requests for analysis HTTP endpoints.

type ConfluenceRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Refresh bool   `query:"refresh" json:"refresh"`
}

type RegimeRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"omitempty,oneof=1m 5m 15m 30m 1h 4h 1d all"`
	N      int    `query:"n" json:"n" default:"200" validate:"gte=50,lte=5000"`
}

type TechnicalRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 15m 30m 1h 4h 1d"`
	N      int    `query:"n" json:"n" default:"200" validate:"gte=50,lte=5000"`
}

type MineRequest struct {
	Symbol       string `query:"symbol" json:"symbol" validate:"required"`
	LookbackDays int    `query:"lookback_days" json:"lookback_days" default:"90" validate:"gte=7,lte=730"`
	Async        bool   `query:"async" json:"async"`
}

type ActivePatternsRequest struct {
	MinTrades int `query:"min_trades" json:"min_trades" default:"10" validate:"gte=0,lte=100000"`
}

type BrainRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}
