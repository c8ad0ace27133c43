package service

import (
	"context"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
)

// HistoryProvider fetches daily OHLCV history for a symbol. An empty
// series means "no data", not an error.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string, tf domrepo.Timeframe) (*models.Series, error)
}

// QuoteProvider fetches a real-time snapshot for a symbol.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// AdvisoryProvider generates a best-effort directional opinion from the
// recent price window and the technical signal snapshot. Strictly
// advisory: the pipeline must produce a result without it.
type AdvisoryProvider interface {
	Generate(ctx context.Context, symbol string, recent *models.Series, signals *models.TechnicalSignals) (*models.AdvisoryOpinion, error)
}

// Predictor runs the per-symbol model lifecycle: train on demand,
// persist, reload and invoke.
type Predictor interface {
	Predict(ctx context.Context, symbol string, series *models.Series, signals *models.TechnicalSignals, useAdvisory bool) *models.Prediction
	Train(ctx context.Context, symbol string, series *models.Series) (*models.TrainReport, error)
}
