package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	"StockSage/internal/services/recommend"
	pkgcache "StockSage/pkg/cache"
	applogger "StockSage/pkg/logger"
)

type stubHistory struct {
	series *models.Series
	err    error
	calls  int
}

func (h *stubHistory) FetchHistory(context.Context, string, domrepo.Timeframe) (*models.Series, error) {
	h.calls++
	return h.series, h.err
}

type stubQuotes struct {
	quote *models.Quote
	err   error
}

func (q *stubQuotes) FetchQuote(context.Context, string) (*models.Quote, error) {
	return q.quote, q.err
}

type stubPredictor struct {
	pred *models.Prediction
}

func (p *stubPredictor) Predict(context.Context, string, *models.Series, *models.TechnicalSignals, bool) *models.Prediction {
	return p.pred
}

func (p *stubPredictor) Train(context.Context, string, *models.Series) (*models.TrainReport, error) {
	return nil, errors.New("not implemented")
}

type stubPublisher struct {
	keys []string
}

func (p *stubPublisher) Publish(_ context.Context, key string, _ interface{}) error {
	p.keys = append(p.keys, key)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testSeries(n int) *models.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := 100 + 3*math.Sin(float64(i)/4) + float64(i)*0.1
		bars[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 5000 + float64(i%5)*200,
		}
	}
	return &models.Series{Symbol: "RELIANCE.NS", Bars: bars}
}

func newTestAnalyzer(history *stubHistory, quotes *stubQuotes, pub *stubPublisher, t *testing.T) *AnalyzerUseCase {
	pred := &models.Prediction{
		Source:     models.SourceModel,
		Direction:  models.DirectionUp,
		Confidence: 0.8,
		Sources:    []string{"model"},
	}
	var publisher domrepo.EventPublisher
	if pub != nil {
		publisher = pub
	}
	return NewAnalyzerUseCase(
		history,
		quotes,
		nil,
		&stubPredictor{pred: pred},
		recommend.NewEngine(),
		pkgcache.NewMemoryCache(),
		publisher,
		testLogger(t),
	)
}

func offPtr() *bool { off := false; return &off }

func TestAnalyzeFullResult(t *testing.T) {
	history := &stubHistory{series: testSeries(120)}
	pub := &stubPublisher{}
	uc := newTestAnalyzer(history, &stubQuotes{err: models.ErrDataUnavailable}, pub, t)

	req := &models.AnalyzeRequest{Symbol: "reliance.ns", Timeframe: "1y", UseRealtime: offPtr(), UseAdvisor: offPtr()}
	result, err := uc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Symbol != "RELIANCE.NS" {
		t.Fatalf("symbol not normalized: %q", result.Symbol)
	}
	if result.DataSource != sourceHistorical {
		t.Fatalf("expected historical source, got %q", result.DataSource)
	}
	if result.CurrentPrice != history.series.Last().Close {
		t.Fatalf("current price %v != last close", result.CurrentPrice)
	}
	if result.Analysis == nil || result.Analysis.Empty() {
		t.Fatalf("expected computed signals")
	}
	if result.Prediction == nil || result.Prediction.Source != models.SourceModel {
		t.Fatalf("unexpected prediction %+v", result.Prediction)
	}
	if result.Recommendation == nil || len(result.Recommendation.Reasons) == 0 {
		t.Fatalf("expected populated recommendation")
	}
	if len(pub.keys) != 1 || pub.keys[0] != "RELIANCE.NS" {
		t.Fatalf("expected one published event, got %v", pub.keys)
	}
}

func TestAnalyzeServesFromCache(t *testing.T) {
	history := &stubHistory{series: testSeries(120)}
	uc := newTestAnalyzer(history, &stubQuotes{err: models.ErrDataUnavailable}, nil, t)

	req := &models.AnalyzeRequest{Symbol: "RELIANCE.NS", Timeframe: "1y", UseRealtime: offPtr(), UseAdvisor: offPtr()}
	first, err := uc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}

	// The upstream breaking no longer matters within the cache window.
	history.err = errors.New("provider down")
	second, err := uc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("cached analyze: %v", err)
	}
	if second.CurrentPrice != first.CurrentPrice {
		t.Fatalf("cached result diverged: %v vs %v", second.CurrentPrice, first.CurrentPrice)
	}
	if history.calls != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", history.calls)
	}
}

func TestAnalyzeEmptySeries(t *testing.T) {
	uc := newTestAnalyzer(&stubHistory{series: &models.Series{}}, &stubQuotes{}, nil, t)
	req := &models.AnalyzeRequest{Symbol: "RELIANCE.NS", UseRealtime: offPtr(), UseAdvisor: offPtr()}
	_, err := uc.Analyze(context.Background(), req)
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestAnalyzePartialFailure(t *testing.T) {
	// A non-finite close breaks the indicator pass; the response is still
	// structurally complete with a HOLD fallback.
	series := testSeries(60)
	series.Bars[30].Close = math.NaN()
	uc := newTestAnalyzer(&stubHistory{series: series}, &stubQuotes{}, nil, t)

	req := &models.AnalyzeRequest{Symbol: "RELIANCE.NS", UseRealtime: offPtr(), UseAdvisor: offPtr()}
	result, err := uc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("partial failure must not fail the request: %v", err)
	}
	if result.Err == "" {
		t.Fatalf("expected error text on the result")
	}
	if result.Analysis == nil || !result.Analysis.Empty() {
		t.Fatalf("expected empty analysis section, got %+v", result.Analysis)
	}
	if result.Prediction.Source != models.SourceNone {
		t.Fatalf("expected no prediction, got %+v", result.Prediction)
	}
	rec := result.Recommendation
	if rec.Verdict != models.VerdictHold || rec.Confidence != 0 {
		t.Fatalf("expected HOLD/0 fallback, got %+v", rec)
	}
	if len(rec.Reasons) != 1 || rec.Reasons[0] != "Analysis error occurred" {
		t.Fatalf("unexpected reasons %v", rec.Reasons)
	}
}

func TestAnalyzeRealtimeMergesQuote(t *testing.T) {
	series := testSeries(60)
	quote := &models.Quote{Symbol: "RELIANCE.NS", LastPrice: 250, Source: "finnhub"}
	uc := newTestAnalyzer(&stubHistory{series: series}, &stubQuotes{quote: quote}, nil, t)
	uc.now = func() time.Time { return series.Last().Date }

	req := &models.AnalyzeRequest{Symbol: "RELIANCE.NS", UseAdvisor: offPtr()}
	result, err := uc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.DataSource != sourceRealtime {
		t.Fatalf("expected realtime source, got %q", result.DataSource)
	}
	if result.Realtime == nil || result.CurrentPrice != 250 {
		t.Fatalf("quote not merged into latest bar: %+v", result)
	}
}

func TestQuoteFallsBackToREST(t *testing.T) {
	want := &models.Quote{Symbol: "TCS.NS", LastPrice: 3500}
	uc := newTestAnalyzer(&stubHistory{}, &stubQuotes{quote: want}, nil, t)

	got, err := uc.Quote(context.Background(), &models.QuoteRequest{Symbol: "tcs.ns"})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if got.LastPrice != want.LastPrice {
		t.Fatalf("unexpected quote %+v", got)
	}
}

func TestChartDataOverlays(t *testing.T) {
	uc := newTestAnalyzer(&stubHistory{series: testSeries(250)}, &stubQuotes{}, nil, t)

	cd, err := uc.ChartData(context.Background(), &models.ChartDataRequest{Symbol: "RELIANCE.NS", UseRealtime: offPtr()})
	if err != nil {
		t.Fatalf("chart data: %v", err)
	}
	if len(cd.Dates) != 250 || len(cd.Close) != 250 {
		t.Fatalf("expected 250 points, got %d", len(cd.Dates))
	}
	if len(cd.SMA20) != 250 || cd.SMA20[0] != nil || cd.SMA20[19] == nil {
		t.Fatalf("SMA20 overlay misaligned")
	}
	if cd.SMA200 == nil || cd.SMA200[199] == nil {
		t.Fatalf("expected SMA200 overlay for 250 bars")
	}
}

func TestChartDataOmitsSMA200WhenShort(t *testing.T) {
	uc := newTestAnalyzer(&stubHistory{series: testSeries(120)}, &stubQuotes{}, nil, t)
	cd, err := uc.ChartData(context.Background(), &models.ChartDataRequest{Symbol: "RELIANCE.NS", UseRealtime: offPtr()})
	if err != nil {
		t.Fatalf("chart data: %v", err)
	}
	if cd.SMA200 != nil {
		t.Fatalf("SMA200 overlay must be absent below 200 bars")
	}
}

func TestNullableConvertsGaps(t *testing.T) {
	out := nullable([]float64{math.NaN(), 1.5})
	if out[0] != nil {
		t.Fatalf("NaN must map to nil")
	}
	if out[1] == nil || *out[1] != 1.5 {
		t.Fatalf("finite value lost: %v", out[1])
	}
}
