package model

import (
	"context"
	"fmt"
	"math"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
	"StockSage/internal/service/metrics"
	"StockSage/internal/services/features"
	applogger "StockSage/pkg/logger"
)

// MinTrainingRows is the minimum number of usable feature rows required
// before a model can be trained.
const MinTrainingRows = 100

const confidenceCap = 0.95

// Manager owns the per-symbol model lifecycle: it trains on demand when
// artifacts are missing, persists them as one bundle, and reloads them
// for inference. Prediction never raises past this type; failures come
// back as a well-formed unknown result.
type Manager struct {
	store   domrepo.ArtifactStore
	advisor domsvc.AdvisoryProvider
	log     *applogger.Logger
	now     func() time.Time
}

// NewManager builds a Manager. advisor may be nil to disable advisory
// opinions entirely.
func NewManager(store domrepo.ArtifactStore, advisor domsvc.AdvisoryProvider, log *applogger.Logger) *Manager {
	return &Manager{store: store, advisor: advisor, log: log, now: time.Now}
}

var _ domsvc.Predictor = (*Manager)(nil)

// Train fits fresh artifacts for the symbol and persists them as one
// bundle, replacing any previous run. The split is chronological: the
// test partition is strictly the most recent fifth of rows.
func (m *Manager) Train(ctx context.Context, symbol string, series *models.Series) (*models.TrainReport, error) {
	start := m.now()
	frame, err := features.Build(series)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", symbol, err)
	}
	n := frame.NumRows()
	if n < MinTrainingRows {
		return nil, fmt.Errorf("train %s: %d usable rows, need %d: %w",
			symbol, n, MinTrainingRows, models.ErrInsufficientData)
	}

	testN := (n + 4) / 5
	trainN := n - testN
	trainRows, testRows := frame.Rows[:trainN], frame.Rows[trainN:]
	dirTrain, dirTest := frame.TargetDirection[:trainN], frame.TargetDirection[trainN:]
	retTrain := frame.TargetReturn[:trainN]

	scaler := &MinMaxScaler{}
	if err := scaler.Fit(trainRows); err != nil {
		return nil, fmt.Errorf("train %s: %w", symbol, err)
	}
	trainScaled, err := scaler.TransformAll(trainRows)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", symbol, err)
	}
	testScaled, err := scaler.TransformAll(testRows)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", symbol, err)
	}

	classifier := &LogisticClassifier{}
	if err := classifier.Fit(trainScaled, dirTrain); err != nil {
		return nil, fmt.Errorf("train %s: %w", symbol, err)
	}
	regressor := &ReturnRegressor{}
	if err := regressor.Fit(trainScaled, retTrain); err != nil {
		return nil, fmt.Errorf("train %s: %w", symbol, err)
	}
	accuracy := classifier.Accuracy(testScaled, dirTest)

	bundle := &Bundle{
		RunID:      newRunID(symbol, start),
		Direction:  classifier,
		Return:     regressor,
		Scaler:     scaler,
		FeatureSet: frame.Names,
	}
	encoded, err := bundle.Encode()
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", symbol, err)
	}
	if err := m.store.WriteAll(ctx, symbol, encoded); err != nil {
		return nil, fmt.Errorf("train %s: persist artifacts: %w", symbol, err)
	}

	metrics.TrainingRuns.WithLabelValues(symbol).Inc()
	metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	m.log.Info("model trained",
		applogger.String("symbol", symbol),
		applogger.Int("rows", n),
		applogger.Any("accuracy", accuracy),
		applogger.Duration("duration_ms", time.Since(start)),
	)

	return &models.TrainReport{
		Symbol:            symbol,
		DirectionAccuracy: accuracy,
		DataPoints:        n,
		Features:          frame.Names,
		TrainedAt:         start.Format("2006-01-02"),
	}, nil
}

// Predict runs the full lifecycle for one request: ensure artifacts,
// infer, boost with technical signals, and optionally fold in the
// advisory opinion. The advisory result alone becomes the prediction
// when the model path failed but the advisor answered.
func (m *Manager) Predict(ctx context.Context, symbol string, series *models.Series, signals *models.TechnicalSignals, useAdvisory bool) *models.Prediction {
	if series.Empty() {
		return models.NoPrediction(models.ErrDataUnavailable.Error())
	}

	pred, err := m.modelPredict(ctx, symbol, series, signals)
	if err != nil {
		metrics.PredictionErrors.WithLabelValues(symbol).Inc()
		m.log.Warn("model prediction failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		pred = models.NoPrediction(err.Error())
	}

	if useAdvisory && m.advisor != nil {
		m.applyAdvisory(ctx, symbol, series, signals, pred)
	}
	return pred
}

func (m *Manager) modelPredict(ctx context.Context, symbol string, series *models.Series, signals *models.TechnicalSignals) (*models.Prediction, error) {
	exists, err := m.store.Exists(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("check artifacts %s: %w", symbol, err)
	}
	if !exists {
		if _, err := m.Train(ctx, symbol, series); err != nil {
			return nil, err
		}
	}

	raw, err := m.store.ReadAll(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("read artifacts %s: %w", symbol, err)
	}
	bundle, err := DecodeBundle(raw)
	if err != nil {
		return nil, fmt.Errorf("load artifacts %s: %w", symbol, err)
	}

	frame, err := features.Build(series)
	if err != nil {
		return nil, err
	}
	if frame.NumRows() == 0 {
		return nil, fmt.Errorf("predict %s: no usable feature rows: %w", symbol, models.ErrInsufficientData)
	}

	row, err := selectFeatures(frame, bundle.FeatureSet)
	if err != nil {
		return nil, err
	}
	refill(row, bundle.FeatureSet)

	scaled, err := bundle.Scaler.Transform(row)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}
	refill(scaled, bundle.FeatureSet)

	pDown, pUp, err := bundle.Direction.Proba(scaled)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}
	predictedReturn, err := bundle.Return.Predict(scaled)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}

	direction := models.DirectionDown
	confidence := pDown
	if pUp > 0.5 {
		direction = models.DirectionUp
		confidence = pUp
	}
	confidence = boostConfidence(direction, confidence, signals)

	return &models.Prediction{
		Source:          models.SourceModel,
		Direction:       direction,
		Confidence:      round2(confidence),
		PredictedReturn: round2(predictedReturn * 100),
		Sources:         []string{"model"},
	}, nil
}

// selectFeatures reorders the latest feature row into the persisted
// feature-list order. A name the live pipeline no longer produces means
// the artifacts belong to an incompatible feature set.
func selectFeatures(frame *features.Frame, names []string) ([]float64, error) {
	idx := make(map[string]int, len(frame.Names))
	for i, n := range frame.Names {
		idx[n] = i
	}
	latest := frame.Latest()
	row := make([]float64, len(names))
	for j, n := range names {
		i, ok := idx[n]
		if !ok {
			return nil, fmt.Errorf("feature %q not produced by pipeline: %w", n, models.ErrArtifactMismatch)
		}
		row[j] = latest[i]
	}
	return row, nil
}

func refill(row []float64, names []string) {
	for j, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			row[j] = features.FillValue(names[j], math.NaN())
		}
	}
}

// boostConfidence nudges confidence up when strong technical signals
// agree with the predicted direction. Boosts never flip the direction
// and the total is capped.
func boostConfidence(direction models.Direction, confidence float64, signals *models.TechnicalSignals) float64 {
	if signals == nil {
		return confidence
	}
	ma := signals.MovingAverages
	rsi := signals.RSI
	macd := signals.MACD

	boost := func(amount float64) {
		confidence = math.Min(confidence+amount, confidenceCap)
	}
	switch direction {
	case models.DirectionUp:
		if ma != nil && ma.GoldenCross {
			boost(0.10)
		}
		if rsi != nil && rsi.Oversold {
			boost(0.05)
		}
		if macd != nil && macd.AboveSignal && macd.Positive {
			boost(0.05)
		}
	case models.DirectionDown:
		if ma != nil && ma.DeathCross {
			boost(0.10)
		}
		if rsi != nil && rsi.Overbought {
			boost(0.05)
		}
		if macd != nil && !macd.AboveSignal && !macd.Positive {
			boost(0.05)
		}
	}
	return confidence
}

func (m *Manager) applyAdvisory(ctx context.Context, symbol string, series *models.Series, signals *models.TechnicalSignals, pred *models.Prediction) {
	opinion, err := m.advisor.Generate(ctx, symbol, series, signals)
	if err != nil {
		m.log.Warn("advisory opinion failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return
	}
	if opinion == nil || opinion.Direction == models.DirectionUnknown {
		return
	}

	pred.Advisory = opinion
	if pred.Source == models.SourceModel {
		pred.Sources = []string{"model", "advisory"}
		pred.Combined = combine(pred, opinion)
		return
	}

	// Model path failed: the advisory opinion alone becomes the result.
	pred.Source = models.SourceAdvisory
	pred.Direction = opinion.Direction
	pred.Confidence = opinion.Confidence
	pred.Combined = &models.CombinedView{Direction: opinion.Direction, Confidence: opinion.Confidence}
	pred.Sources = []string{"advisory"}
}

// combine merges model and advisory opinions: agreement raises the
// confidence, disagreement defers to the more confident side.
func combine(pred *models.Prediction, opinion *models.AdvisoryOpinion) *models.CombinedView {
	if pred.Direction == opinion.Direction {
		return &models.CombinedView{
			Direction:  pred.Direction,
			Confidence: math.Min(confidenceCap, pred.Confidence+0.10),
		}
	}
	if pred.Confidence >= opinion.Confidence {
		return &models.CombinedView{Direction: pred.Direction, Confidence: pred.Confidence}
	}
	return &models.CombinedView{Direction: opinion.Direction, Confidence: opinion.Confidence}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
