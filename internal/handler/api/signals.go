package api

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
	xhttp "CryptoBrain/pkg/http"
)

type Analyzer interface {
	AnalyzeAllTimeframes(ctx context.Context, symbol string, refresh bool) (*models.MultiTimeframeAnalysis, error)
	Technicals(ctx context.Context, symbol string, tf domrepo.Timeframe, n int) (models.TechnicalSnapshot, error)
}

type RegimeDetector interface {
	DetectRegime(ctx context.Context, symbol string, tf domrepo.Timeframe, n int) (models.Regime, error)
	MarketRegime(ctx context.Context, symbol string, n int) (models.MultiTimeframeRegime, error)
}

type BrainReporter interface {
	Report(ctx context.Context, symbol string) (*models.BrainReport, error)
}

// SignalsHandler serves the read-only analysis endpoints.
type SignalsHandler struct {
	analysis Analyzer
	regime   RegimeDetector
	brain    BrainReporter
}

func NewSignalsHandler(analysis Analyzer, regime RegimeDetector, brain BrainReporter) *SignalsHandler {
	return &SignalsHandler{analysis: analysis, regime: regime, brain: brain}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/confluence", h.Confluence)
	g.GET("/regime", h.Regime)
	g.GET("/technicals", h.Technicals)
	g.GET("/brain", h.Brain)
}

// Confluence serves the multi-timeframe analysis of one symbol.
func (h *SignalsHandler) Confluence(c echo.Context) error {
	var req models.ConfluenceRequest
	if err := xhttp.ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	res, err := h.analysis.AnalyzeAllTimeframes(c.Request().Context(), req.Symbol, req.Refresh)
	if err != nil {
		return appError(err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

// Regime serves one timeframe, or the cross-timeframe vote with tf=all.
func (h *SignalsHandler) Regime(c echo.Context) error {
	var req models.RegimeRequest
	if err := xhttp.ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if strings.EqualFold(req.TF, "all") {
		res, err := h.regime.MarketRegime(ctx, req.Symbol, req.N)
		if err != nil {
			return appError(err)
		}
		return xhttp.SuccessResponse(c, res)
	}
	res, err := h.regime.DetectRegime(ctx, req.Symbol, domrepo.NormalizeTimeframe(req.TF), req.N)
	if err != nil {
		return appError(err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Technicals(c echo.Context) error {
	var req models.TechnicalRequest
	if err := xhttp.ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	res, err := h.analysis.Technicals(c.Request().Context(), req.Symbol, domrepo.NormalizeTimeframe(req.TF), req.N)
	if err != nil {
		return appError(err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Brain(c echo.Context) error {
	var req models.BrainRequest
	if err := xhttp.ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	res, err := h.brain.Report(c.Request().Context(), req.Symbol)
	if err != nil {
		return appError(err)
	}
	return xhttp.SuccessResponse(c, res)
}
