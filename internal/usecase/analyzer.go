// Package usecase wires the analysis pipeline: market data in, signals
// and prediction out, recommendation attached, result cached and
// published downstream.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
	"StockSage/internal/service/finnhub"
	"StockSage/internal/service/metrics"
	"StockSage/internal/services/indicators"
	"StockSage/internal/services/recommend"
	pkgcache "StockSage/pkg/cache"
	applogger "StockSage/pkg/logger"
)

const (
	analysisCacheTTL = 5 * time.Minute
	// A streamed trade older than this falls back to the REST quote.
	streamFreshness = 2 * time.Minute

	sourceRealtime   = "finnhub (real-time)"
	sourceHistorical = "historical"
)

// AnalyzerUseCase runs the full per-symbol analysis.
type AnalyzerUseCase struct {
	history   domsvc.HistoryProvider
	quotes    domsvc.QuoteProvider
	stream    *finnhub.Stream
	predictor domsvc.Predictor
	engine    *recommend.Engine
	cache     pkgcache.Service
	publisher domrepo.EventPublisher
	log       *applogger.Logger
	now       func() time.Time
}

// NewAnalyzerUseCase builds the analyzer. stream and publisher are
// optional; nil disables streamed quotes and event publishing.
func NewAnalyzerUseCase(
	history domsvc.HistoryProvider,
	quotes domsvc.QuoteProvider,
	stream *finnhub.Stream,
	predictor domsvc.Predictor,
	engine *recommend.Engine,
	cache pkgcache.Service,
	publisher domrepo.EventPublisher,
	log *applogger.Logger,
) *AnalyzerUseCase {
	return &AnalyzerUseCase{
		history:   history,
		quotes:    quotes,
		stream:    stream,
		predictor: predictor,
		engine:    engine,
		cache:     cache,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Analyze produces the full analysis for one symbol. The result is
// structurally complete even under partial failure: indicator errors
// yield an empty analysis with a HOLD recommendation instead of a
// failed request.
func (uc *AnalyzerUseCase) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalysisResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	tf := domrepo.NormalizeTimeframe(req.Timeframe)
	start := uc.now()

	cacheKey := fmt.Sprintf("analyze:%s:%s:%t:%t", symbol, tf, req.RealtimeOn(), req.AdvisorOn())
	var cached models.AnalysisResult
	if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	series, err := uc.history.FetchHistory(ctx, symbol, tf)
	if err != nil {
		return nil, err
	}
	if series.Empty() {
		return nil, fmt.Errorf("analyze %s: %w", symbol, models.ErrDataUnavailable)
	}

	result := &models.AnalysisResult{Symbol: symbol, DataSource: sourceHistorical}
	if req.RealtimeOn() {
		result.DataSource = sourceRealtime
		if quote := uc.lookupQuote(ctx, symbol); quote != nil {
			result.Realtime = quote
			quote.MergeIntoLatest(series, uc.now())
		}
	}
	result.CurrentPrice = series.Last().Close

	signals, err := uc.computeSignals(symbol, series)
	if err != nil {
		result.Err = err.Error()
		result.Analysis = &models.TechnicalSignals{}
		result.Prediction = models.NoPrediction(err.Error())
		result.Recommendation = &models.Recommendation{
			Verdict:    models.VerdictHold,
			Confidence: 0,
			Reasons:    []string{"Analysis error occurred"},
		}
		return result, nil
	}
	result.Analysis = signals

	result.Prediction = uc.predictor.Predict(ctx, symbol, series, signals, req.AdvisorOn())
	result.Recommendation = uc.engine.Generate(signals, result.Prediction)

	uc.publish(ctx, symbol, result)
	if err := uc.cache.Set(ctx, cacheKey, result, analysisCacheTTL); err != nil {
		uc.log.Warn("analysis cache write failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
	metrics.AnalysisDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	return result, nil
}

// Quote returns the real-time snapshot for one symbol, preferring the
// WebSocket stream when it has a fresh trade.
func (uc *AnalyzerUseCase) Quote(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if quote := uc.streamedQuote(symbol); quote != nil {
		return quote, nil
	}
	return uc.quotes.FetchQuote(ctx, symbol)
}

// ChartData returns the plot-ready series with indicator overlays.
func (uc *AnalyzerUseCase) ChartData(ctx context.Context, req *models.ChartDataRequest) (*models.ChartData, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	tf := domrepo.NormalizeTimeframe(req.Timeframe)

	series, err := uc.history.FetchHistory(ctx, symbol, tf)
	if err != nil {
		return nil, err
	}
	if series.Empty() {
		return nil, fmt.Errorf("chart data %s: %w", symbol, models.ErrDataUnavailable)
	}
	if req.RealtimeOn() {
		if quote := uc.lookupQuote(ctx, symbol); quote != nil {
			quote.MergeIntoLatest(series, uc.now())
		}
	}
	return buildChartData(series), nil
}

func (uc *AnalyzerUseCase) computeSignals(symbol string, series *models.Series) (*models.TechnicalSignals, error) {
	signals, err := indicators.Compute(series)
	if err != nil {
		uc.log.Warn("technical analysis failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, err
	}
	return signals, nil
}

func (uc *AnalyzerUseCase) lookupQuote(ctx context.Context, symbol string) *models.Quote {
	if quote := uc.streamedQuote(symbol); quote != nil {
		return quote
	}
	quote, err := uc.quotes.FetchQuote(ctx, symbol)
	if err != nil {
		if !errors.Is(err, models.ErrDataUnavailable) {
			uc.log.Warn("quote fetch failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil
	}
	return quote
}

func (uc *AnalyzerUseCase) streamedQuote(symbol string) *models.Quote {
	if uc.stream == nil {
		return nil
	}
	trade, ok := uc.stream.Latest(symbol)
	if !ok || uc.now().Sub(trade.At) > streamFreshness {
		return nil
	}
	return &models.Quote{
		Symbol:    symbol,
		LastPrice: trade.Price,
		Volume:    trade.Volume,
		Timestamp: trade.At,
		Source:    "finnhub (stream)",
	}
}

func (uc *AnalyzerUseCase) publish(ctx context.Context, symbol string, result *models.AnalysisResult) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, symbol, result); err != nil {
		uc.log.Warn("recommendation publish failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
}

func buildChartData(series *models.Series) *models.ChartData {
	n := series.Len()
	cd := &models.ChartData{
		Dates:  make([]string, n),
		Open:   make([]float64, n),
		High:   make([]float64, n),
		Low:    make([]float64, n),
		Close:  make([]float64, n),
		Volume: make([]float64, n),
	}
	for i, b := range series.Bars {
		cd.Dates[i] = b.Date.Format("2006-01-02")
		cd.Open[i] = b.Open
		cd.High[i] = b.High
		cd.Low[i] = b.Low
		cd.Close[i] = b.Close
		cd.Volume[i] = b.Volume
	}

	closes := series.Closes()
	cd.SMA20 = nullable(indicators.SMA(closes, 20))
	cd.SMA50 = nullable(indicators.SMA(closes, 50))
	if n >= 200 {
		cd.SMA200 = nullable(indicators.SMA(closes, 200))
	}
	upper, lower := indicators.Bollinger(closes, 20, 2.0)
	cd.UpperBand = nullable(upper)
	cd.LowerBand = nullable(lower)
	cd.RSI = nullable(indicators.RSI(closes, 14))
	cd.Levels = indicators.Levels(series)
	return cd
}

// nullable converts NaN gaps into JSON nulls.
func nullable(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i := range vals {
		if vals[i] == vals[i] {
			v := vals[i]
			out[i] = &v
		}
	}
	return out
}
