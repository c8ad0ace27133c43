package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockSage/internal/domain/models"
)

func syntheticSeries(n int) *models.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := 100 + 5*math.Sin(float64(i)/3) + float64(i)*0.05
		bars[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000 + float64(i%7)*50,
		}
	}
	return &models.Series{Symbol: "TEST", Bars: bars}
}

func TestBuildEmptySeries(t *testing.T) {
	_, err := Build(&models.Series{Symbol: "TEST"})
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestBuildNonFiniteInput(t *testing.T) {
	s := syntheticSeries(30)
	s.Bars[5].Volume = math.Inf(1)
	_, err := Build(s)
	if !errors.Is(err, models.ErrFeatureComputation) {
		t.Fatalf("expected ErrFeatureComputation, got %v", err)
	}
}

func TestBuildRowsAllFinite(t *testing.T) {
	s := syntheticSeries(120)
	frame, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if frame.NumRows() != 120 {
		t.Fatalf("expected one row per bar after fills, got %d", frame.NumRows())
	}
	if len(frame.Names) != len(ModelFeatures) {
		t.Fatalf("unexpected feature count %d", len(frame.Names))
	}
	for i, row := range frame.Rows {
		if len(row) != len(ModelFeatures) {
			t.Fatalf("row %d: width %d", i, len(row))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("row %d feature %s: non-finite %v", i, ModelFeatures[j], v)
			}
		}
	}
	if len(frame.TargetReturn) != frame.NumRows() || len(frame.TargetDirection) != frame.NumRows() {
		t.Fatalf("targets must align with rows")
	}
}

func TestBuildTargets(t *testing.T) {
	s := syntheticSeries(5)
	closes := []float64{100, 102, 101, 103, 103}
	for i, c := range closes {
		s.Bars[i].Close = c
	}
	frame, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if frame.NumRows() != 5 {
		t.Fatalf("expected 5 rows, got %d", frame.NumRows())
	}
	wantDir := []float64{1, 0, 1, 0, 0}
	for i, want := range wantDir {
		if frame.TargetDirection[i] != want {
			t.Fatalf("row %d: direction %v, want %v", i, frame.TargetDirection[i], want)
		}
	}
	if math.Abs(frame.TargetReturn[0]-0.02) > 1e-9 {
		t.Fatalf("row 0: target return %v, want next-day 0.02", frame.TargetReturn[0])
	}
	if frame.TargetReturn[4] != 0 {
		t.Fatalf("final row has no next day, target return must fill to 0, got %v", frame.TargetReturn[4])
	}
}

func TestLatestRow(t *testing.T) {
	frame, err := Build(syntheticSeries(60))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	latest := frame.Latest()
	last := frame.Rows[frame.NumRows()-1]
	for j := range latest {
		if latest[j] != last[j] {
			t.Fatalf("Latest diverges from final row at %d", j)
		}
	}
}

func TestFillValue(t *testing.T) {
	cases := []struct {
		name    string
		colMean float64
		want    float64
	}{
		{"price_sma_20_ratio", math.NaN(), 1.0},
		{"return_5d", math.NaN(), 0.0},
		{"volatility_10d", math.NaN(), 0.01},
		{"momentum_20d", math.NaN(), 0.0},
		{"volume_zscore", 3.5, 3.5},
		{"volume_zscore", math.NaN(), 0.0},
	}
	for _, c := range cases {
		if got := FillValue(c.name, c.colMean); got != c.want {
			t.Fatalf("FillValue(%q, %v) = %v, want %v", c.name, c.colMean, got, c.want)
		}
	}
}
