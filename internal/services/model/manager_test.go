package model

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	applogger "StockSage/pkg/logger"
)

// memStore is an in-memory ArtifactStore for lifecycle tests.
type memStore struct {
	bundles map[string]map[domrepo.ArtifactKind][]byte
	writes  int
}

func newMemStore() *memStore {
	return &memStore{bundles: make(map[string]map[domrepo.ArtifactKind][]byte)}
}

func (s *memStore) Exists(_ context.Context, symbol string) (bool, error) {
	_, ok := s.bundles[symbol]
	return ok, nil
}

func (s *memStore) WriteAll(_ context.Context, symbol string, artifacts map[domrepo.ArtifactKind][]byte) error {
	cp := make(map[domrepo.ArtifactKind][]byte, len(artifacts))
	for kind, data := range artifacts {
		cp[kind] = append([]byte(nil), data...)
	}
	s.bundles[symbol] = cp
	s.writes++
	return nil
}

func (s *memStore) ReadAll(_ context.Context, symbol string) (map[domrepo.ArtifactKind][]byte, error) {
	bundle, ok := s.bundles[symbol]
	if !ok {
		return nil, errors.New("memstore: no artifacts")
	}
	return bundle, nil
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// walkSeries produces a deterministic oscillating price walk so both
// direction labels occur in training.
func walkSeries(n int) *models.Series {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	price := 100.0
	for i := range bars {
		price *= 1 + 0.01*math.Sin(float64(i)*1.3)
		bars[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 10000 + float64(i%11)*500,
		}
	}
	return &models.Series{Symbol: "RELIANCE.NS", Bars: bars}
}

func TestTrainInsufficientRows(t *testing.T) {
	m := NewManager(newMemStore(), nil, testLogger(t))
	_, err := m.Train(context.Background(), "RELIANCE.NS", walkSeries(99))
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData at 99 rows, got %v", err)
	}
}

func TestTrainPersistsBundle(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, nil, testLogger(t))

	report, err := m.Train(context.Background(), "RELIANCE.NS", walkSeries(120))
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if report.Symbol != "RELIANCE.NS" || report.DataPoints != 120 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.DirectionAccuracy < 0 || report.DirectionAccuracy > 1 {
		t.Fatalf("accuracy out of range: %v", report.DirectionAccuracy)
	}
	if _, err := time.Parse("2006-01-02", report.TrainedAt); err != nil {
		t.Fatalf("training date %q: %v", report.TrainedAt, err)
	}

	raw, err := store.ReadAll(context.Background(), "RELIANCE.NS")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	bundle, err := DecodeBundle(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bundle.RunID == "" {
		t.Fatalf("expected run ID on persisted bundle")
	}
	if len(bundle.FeatureSet) != len(bundle.Scaler.Min) || len(bundle.FeatureSet) != len(bundle.Direction.Weights) {
		t.Fatalf("artifact widths disagree: %d features", len(bundle.FeatureSet))
	}
}

func TestTrainMinimumBoundary(t *testing.T) {
	m := NewManager(newMemStore(), nil, testLogger(t))
	if _, err := m.Train(context.Background(), "TCS.NS", walkSeries(100)); err != nil {
		t.Fatalf("100 usable rows must train: %v", err)
	}
}

func TestPredictTrainsOnDemand(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, nil, testLogger(t))

	pred := m.Predict(context.Background(), "INFY.NS", walkSeries(150), nil, false)
	if pred.Source != models.SourceModel {
		t.Fatalf("expected model prediction, got %+v", pred)
	}
	if pred.Direction != models.DirectionUp && pred.Direction != models.DirectionDown {
		t.Fatalf("unexpected direction %q", pred.Direction)
	}
	if pred.Confidence <= 0 || pred.Confidence > confidenceCap {
		t.Fatalf("confidence %v out of range", pred.Confidence)
	}
	if store.writes != 1 {
		t.Fatalf("expected exactly one on-demand training run, got %d", store.writes)
	}
	if len(pred.Sources) != 1 || pred.Sources[0] != "model" {
		t.Fatalf("unexpected sources %v", pred.Sources)
	}

	// A second prediction reuses the persisted artifacts.
	m.Predict(context.Background(), "INFY.NS", walkSeries(150), nil, false)
	if store.writes != 1 {
		t.Fatalf("cached artifacts must not retrain, got %d writes", store.writes)
	}
}

func TestPredictEmptySeries(t *testing.T) {
	m := NewManager(newMemStore(), nil, testLogger(t))
	pred := m.Predict(context.Background(), "INFY.NS", &models.Series{}, nil, false)
	if pred.Source != models.SourceNone || pred.Direction != models.DirectionUnknown {
		t.Fatalf("expected well-formed unknown result, got %+v", pred)
	}
	if pred.Err == "" {
		t.Fatalf("expected failure text on no-prediction result")
	}
}

func TestBoostConfidence(t *testing.T) {
	up := true
	signals := &models.TechnicalSignals{
		MovingAverages: &models.MovingAverages{GoldenCross: true, PriceAboveSMA200: &up},
		RSI:            &models.RSISignals{Value: 25, Oversold: true},
		MACD:           &models.MACDSignals{AboveSignal: true, Positive: true},
	}

	got := boostConfidence(models.DirectionUp, 0.60, signals)
	if math.Abs(got-0.80) > 1e-9 {
		t.Fatalf("expected 0.60+0.10+0.05+0.05, got %v", got)
	}
	if got < 0.60 {
		t.Fatalf("boost must never reduce confidence")
	}

	// Cap binds before the full boost lands.
	if got := boostConfidence(models.DirectionUp, 0.93, signals); got != confidenceCap {
		t.Fatalf("expected cap %v, got %v", confidenceCap, got)
	}

	// Bullish signals never touch a bearish prediction.
	if got := boostConfidence(models.DirectionDown, 0.60, signals); got != 0.60 {
		t.Fatalf("direction-mismatched signals must not boost, got %v", got)
	}

	if got := boostConfidence(models.DirectionUp, 0.60, nil); got != 0.60 {
		t.Fatalf("nil signals must not boost, got %v", got)
	}
}

// stubAdvisor returns a fixed opinion or error.
type stubAdvisor struct {
	opinion *models.AdvisoryOpinion
	err     error
}

func (a *stubAdvisor) Generate(context.Context, string, *models.Series, *models.TechnicalSignals) (*models.AdvisoryOpinion, error) {
	return a.opinion, a.err
}

func TestPredictCombinesAdvisoryAgreement(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, nil, testLogger(t))
	base := m.Predict(context.Background(), "INFY.NS", walkSeries(150), nil, false)

	advisor := &stubAdvisor{opinion: &models.AdvisoryOpinion{Direction: base.Direction, Confidence: 0.7}}
	m = NewManager(store, advisor, testLogger(t))
	pred := m.Predict(context.Background(), "INFY.NS", walkSeries(150), nil, true)

	if pred.Combined == nil {
		t.Fatalf("expected combined view when both sources answered")
	}
	if pred.Combined.Direction != base.Direction {
		t.Fatalf("agreement must keep the shared direction")
	}
	want := math.Min(confidenceCap, base.Confidence+0.10)
	if math.Abs(pred.Combined.Confidence-want) > 1e-9 {
		t.Fatalf("agreement confidence %v, want %v", pred.Combined.Confidence, want)
	}
	if len(pred.Sources) != 2 {
		t.Fatalf("expected both sources recorded, got %v", pred.Sources)
	}
}

func TestPredictAdvisoryFallback(t *testing.T) {
	// Too few rows to train, so the model path fails and the advisory
	// opinion alone becomes the result.
	advisor := &stubAdvisor{opinion: &models.AdvisoryOpinion{Direction: models.DirectionUp, Confidence: 0.65}}
	m := NewManager(newMemStore(), advisor, testLogger(t))

	pred := m.Predict(context.Background(), "INFY.NS", walkSeries(50), nil, true)
	if pred.Source != models.SourceAdvisory {
		t.Fatalf("expected advisory fallback, got %+v", pred)
	}
	if pred.Direction != models.DirectionUp || pred.Confidence != 0.65 {
		t.Fatalf("fallback must carry the opinion, got %+v", pred)
	}
	if len(pred.Sources) != 1 || pred.Sources[0] != "advisory" {
		t.Fatalf("unexpected sources %v", pred.Sources)
	}
}

func TestPredictAdvisoryErrorIgnored(t *testing.T) {
	advisor := &stubAdvisor{err: errors.New("offline")}
	m := NewManager(newMemStore(), advisor, testLogger(t))

	pred := m.Predict(context.Background(), "INFY.NS", walkSeries(150), nil, true)
	if pred.Source != models.SourceModel {
		t.Fatalf("advisor failure must not disturb the model result, got %+v", pred)
	}
	if pred.Advisory != nil || pred.Combined != nil {
		t.Fatalf("failed advisory must leave no trace, got %+v", pred)
	}
}
