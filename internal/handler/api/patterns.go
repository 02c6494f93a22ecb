package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"CryptoBrain/internal/domain/models"
	xhttp "CryptoBrain/pkg/http"
)

type PatternMiner interface {
	MinePatterns(ctx context.Context, symbol string, lookbackDays int) (*models.MiningResult, error)
	GetActivePatterns(ctx context.Context, minTrades int) ([]models.PatternSummary, error)
	Enqueue(ctx context.Context, req models.MineRequest) error
}

type PatternsHandler struct {
	mining PatternMiner
}

func NewPatternsHandler(mining PatternMiner) *PatternsHandler {
	return &PatternsHandler{mining: mining}
}

func (h *PatternsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/patterns")
	g.POST("/mine", h.Mine)
	g.GET("/active", h.Active)
}

// Mine runs a pass inline, or queues it when async is set.
func (h *PatternsHandler) Mine(c echo.Context) error {
	var req models.MineRequest
	if err := xhttp.ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if req.Async {
		if err := h.mining.Enqueue(ctx, req); err != nil {
			return appError(err)
		}
		return xhttp.AcceptedResponse(c, req)
	}
	res, err := h.mining.MinePatterns(ctx, req.Symbol, req.LookbackDays)
	if err != nil {
		return appError(err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PatternsHandler) Active(c echo.Context) error {
	var req models.ActivePatternsRequest
	if err := xhttp.ReadAndValidateRequest(c, &req); err != nil {
		return err
	}
	rows, err := h.mining.GetActivePatterns(c.Request().Context(), req.MinTrades)
	if err != nil {
		return appError(err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
