package usecase

import (
	"context"
	"strings"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	applogger "StockSage/pkg/logger"
)

// WatchlistUseCase serves the configured symbol universe and the quick
// per-symbol view of it. Failures are carried per entry so one broken
// symbol never empties the whole list.
type WatchlistUseCase struct {
	analyzer *AnalyzerUseCase
	symbols  []models.SymbolInfo
	watched  []models.SymbolInfo
	log      *applogger.Logger
}

func NewWatchlistUseCase(analyzer *AnalyzerUseCase, symbols, watched []models.SymbolInfo, log *applogger.Logger) *WatchlistUseCase {
	return &WatchlistUseCase{analyzer: analyzer, symbols: symbols, watched: watched, log: log}
}

// Symbols returns the supported symbol universe.
func (uc *WatchlistUseCase) Symbols() []models.SymbolInfo {
	return uc.symbols
}

// Watchlist enriches each watched symbol with its current price and a
// quick one-month analysis.
func (uc *WatchlistUseCase) Watchlist(ctx context.Context) []models.WatchlistEntry {
	out := make([]models.WatchlistEntry, 0, len(uc.watched))
	for _, info := range uc.watched {
		out = append(out, uc.entry(ctx, info))
	}
	return out
}

func (uc *WatchlistUseCase) entry(ctx context.Context, info models.SymbolInfo) models.WatchlistEntry {
	symbol := strings.ToUpper(info.Symbol)
	e := models.WatchlistEntry{Symbol: symbol, Name: info.Name, Recommendation: models.VerdictHold}

	if quote := uc.analyzer.lookupQuote(ctx, symbol); quote != nil {
		e.CurrentPrice = quote.LastPrice
		e.PriceChange = quote.Change
		e.PriceChangePct = quote.ChangePercent
		e.DataSource = sourceRealtime
	}

	series, err := uc.analyzer.history.FetchHistory(ctx, symbol, domrepo.TF1m)
	if err != nil || series.Empty() {
		if err != nil {
			uc.log.Warn("watchlist fetch failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			e.Err = err.Error()
		}
		return e
	}
	if e.CurrentPrice == 0 {
		e.CurrentPrice = series.Last().Close
		if series.Len() > 1 {
			prev := series.Bars[series.Len()-2].Close
			e.PriceChange = e.CurrentPrice - prev
			if prev != 0 {
				e.PriceChangePct = e.PriceChange / prev * 100
			}
		}
		e.DataSource = sourceHistorical
	}

	signals, err := uc.analyzer.computeSignals(symbol, series)
	if err != nil {
		e.Err = err.Error()
		e.Prediction = models.NoPrediction(err.Error())
		return e
	}
	e.Prediction = uc.analyzer.predictor.Predict(ctx, symbol, series, signals, true)
	e.Recommendation = uc.analyzer.engine.Generate(signals, e.Prediction).Verdict
	return e
}
