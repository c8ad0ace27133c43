package usecase

import (
	"context"
	"fmt"
	"strings"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
)

// TrainUseCase triggers an explicit model retrain for a symbol.
type TrainUseCase struct {
	history   domsvc.HistoryProvider
	predictor domsvc.Predictor
}

func NewTrainUseCase(history domsvc.HistoryProvider, predictor domsvc.Predictor) *TrainUseCase {
	return &TrainUseCase{history: history, predictor: predictor}
}

func (uc *TrainUseCase) Train(ctx context.Context, req *models.TrainRequest) (*models.TrainReport, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	tf := domrepo.NormalizeTimeframe(req.Timeframe)

	series, err := uc.history.FetchHistory(ctx, symbol, tf)
	if err != nil {
		return nil, err
	}
	if series.Empty() {
		return nil, fmt.Errorf("train %s: %w", symbol, models.ErrDataUnavailable)
	}
	return uc.predictor.Train(ctx, symbol, series)
}
