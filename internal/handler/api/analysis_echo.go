// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	"StockSage/internal/usecase"
	xhttp "StockSage/pkg/http"
	xlogger "StockSage/pkg/logger"
)

// AnalysisEchoHandler implements the Echo-based HTTP handlers.
type AnalysisEchoHandler struct {
	logger    *xlogger.Logger
	analyzer  *usecase.AnalyzerUseCase
	watchlist *usecase.WatchlistUseCase
	trainer   *usecase.TrainUseCase
	bars      domrepo.BarStore
}

func NewAnalysisEchoHandler(
	logger *xlogger.Logger,
	analyzer *usecase.AnalyzerUseCase,
	watchlist *usecase.WatchlistUseCase,
	trainer *usecase.TrainUseCase,
	bars domrepo.BarStore,
) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{
		logger:    logger,
		analyzer:  analyzer,
		watchlist: watchlist,
		trainer:   trainer,
		bars:      bars,
	}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.POST("/chart-data", h.ChartData)
	g.POST("/realtime", h.Realtime)
	g.POST("/train", h.Train)
	g.GET("/symbols", h.Symbols)
	g.GET("/watchlist", h.Watchlist)
}

func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Analyze(c.Request().Context(), req)
	if err != nil {
		return h.dataError(c, "analyze", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) ChartData(c echo.Context) error {
	req := &models.ChartDataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.ChartData(c.Request().Context(), req)
	if err != nil {
		return h.dataError(c, "chart-data", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Realtime(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Quote(c.Request().Context(), req)
	if err != nil {
		return h.dataError(c, "realtime", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Train(c echo.Context) error {
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.trainer.Train(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			return xhttp.AppErrorResponse(c,
				xhttp.BadRequestErrorf("not enough history to train %s", req.Symbol).WithError(err))
		}
		return h.dataError(c, "train", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Symbols(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.watchlist.Symbols())
}

func (h *AnalysisEchoHandler) Watchlist(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.watchlist.Watchlist(c.Request().Context()))
}

func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.bars != nil {
		if err := h.bars.Health(c.Request().Context()); err != nil {
			status["bar_store"] = err.Error()
		} else {
			status["bar_store"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *AnalysisEchoHandler) dataError(c echo.Context, op, symbol string, err error) error {
	h.logger.Error(op+" usecase error",
		xlogger.String("symbol", symbol),
		xlogger.Error(err),
	)
	if errors.Is(err, models.ErrDataUnavailable) {
		return xhttp.AppErrorResponse(c,
			xhttp.NotFoundErrorf("no data found for %s", symbol).WithError(err))
	}
	return xhttp.AppErrorResponse(c, err)
}
