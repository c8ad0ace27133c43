package features

import (
	"fmt"
	"math"
	"strings"

	"StockSage/internal/domain/models"
)

// ModelFeatures is the ordered feature-name list fed to the models. The
// order is part of the artifact contract: a persisted model is only valid
// together with the feature list it was trained on.
var ModelFeatures = []string{
	"return_1d", "return_2d", "return_3d", "return_5d", "return_10d",
	"price_sma_5_ratio", "price_sma_10_ratio", "price_sma_20_ratio", "price_sma_50_ratio",
	"volatility_5d", "volatility_10d", "volatility_20d",
	"volume_change", "volume_ratio_5", "volume_ratio_10",
	"momentum_5d", "momentum_10d", "momentum_20d",
}

// Frame is the feature matrix derived from one series. Rows align
// one-to-one with the surviving bars; TargetReturn/TargetDirection are
// populated for training and ignored at inference time.
type Frame struct {
	Names           []string
	Rows            [][]float64
	TargetReturn    []float64
	TargetDirection []float64
}

// NumRows returns the number of usable feature rows.
func (f *Frame) NumRows() int { return len(f.Rows) }

// Latest returns the most recent feature row.
func (f *Frame) Latest() []float64 { return f.Rows[len(f.Rows)-1] }

// Build derives the feature matrix from a raw series. All transforms are
// rolling with no look-ahead; non-finite cells are filled per feature
// family and any row still carrying a non-finite value afterwards is
// dropped.
func Build(s *models.Series) (*Frame, error) {
	if s.Empty() {
		return nil, fmt.Errorf("build features: %w", models.ErrDataUnavailable)
	}
	if !s.Valid() {
		return nil, fmt.Errorf("build features: non-finite input column: %w", models.ErrFeatureComputation)
	}

	closes := s.Closes()
	volumes := s.Volumes()
	n := len(closes)

	ret := pctChange(closes)
	cols := map[string][]float64{
		"return_1d":  shift(ret, 1),
		"return_2d":  shift(ret, 2),
		"return_3d":  shift(ret, 3),
		"return_5d":  shift(ret, 5),
		"return_10d": shift(ret, 10),

		"price_sma_5_ratio":  ratio(closes, rollMean(closes, 5)),
		"price_sma_10_ratio": ratio(closes, rollMean(closes, 10)),
		"price_sma_20_ratio": ratio(closes, rollMean(closes, 20)),
		"price_sma_50_ratio": ratio(closes, rollMean(closes, 50)),

		"volatility_5d":  rollStd(ret, 5),
		"volatility_10d": rollStd(ret, 10),
		"volatility_20d": rollStd(ret, 20),

		"volume_change":   pctChange(volumes),
		"volume_ratio_5":  ratio(volumes, rollMean(volumes, 5)),
		"volume_ratio_10": ratio(volumes, rollMean(volumes, 10)),

		"momentum_5d":  diff(closes, 5),
		"momentum_10d": diff(closes, 10),
		"momentum_20d": diff(closes, 20),
	}

	// Fill per feature family, in priority order.
	for name, col := range cols {
		fillColumn(name, col)
	}

	targetReturn := shift(ret, -1)
	for i, v := range targetReturn {
		if !isFinite(v) {
			targetReturn[i] = 0
		}
	}
	targetDirection := make([]float64, n)
	for i, v := range targetReturn {
		if v > 0 {
			targetDirection[i] = 1
		}
	}

	frame := &Frame{Names: ModelFeatures}
	for i := 0; i < n; i++ {
		row := make([]float64, len(ModelFeatures))
		ok := true
		for j, name := range ModelFeatures {
			v := cols[name][i]
			if !isFinite(v) {
				ok = false
				break
			}
			row[j] = v
		}
		if !ok {
			continue
		}
		frame.Rows = append(frame.Rows, row)
		frame.TargetReturn = append(frame.TargetReturn, targetReturn[i])
		frame.TargetDirection = append(frame.TargetDirection, targetDirection[i])
	}
	return frame, nil
}

// FillValue returns the neutral fill for a feature, keyed by substring
// match on its name. colMean is the fallback for unmatched families.
func FillValue(name string, colMean float64) float64 {
	switch {
	case strings.Contains(name, "ratio"):
		return 1.0
	case strings.Contains(name, "return"):
		return 0.0
	case strings.Contains(name, "volatility"):
		return 0.01
	case strings.Contains(name, "momentum"):
		return 0.0
	case isFinite(colMean):
		return colMean
	default:
		return 0.0
	}
}

func fillColumn(name string, col []float64) {
	switch {
	case strings.Contains(name, "ratio"):
		fillWith(col, 1.0)
	case strings.Contains(name, "return"):
		fillWith(col, 0.0)
	case strings.Contains(name, "volatility"):
		m := finiteMean(col)
		if !isFinite(m) {
			m = 0.01
		}
		fillWith(col, m)
	case strings.Contains(name, "momentum"):
		fillWith(col, 0.0)
	default:
		m := finiteMean(col)
		if !isFinite(m) {
			m = 0.0
		}
		fillWith(col, m)
	}
}

func fillWith(col []float64, v float64) {
	for i := range col {
		if !isFinite(col[i]) {
			col[i] = v
		}
	}
}

func finiteMean(col []float64) float64 {
	sum, count := 0.0, 0
	for _, v := range col {
		if isFinite(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// pctChange returns v[i]/v[i-1] - 1 with NaN at index 0 and on zero
// denominators.
func pctChange(vals []float64) []float64 {
	out := nanSlice(len(vals))
	for i := 1; i < len(vals); i++ {
		if vals[i-1] == 0 {
			continue
		}
		out[i] = vals[i]/vals[i-1] - 1
	}
	return out
}

// shift moves values forward by k (k<0 pulls future values back, used
// only for target construction).
func shift(vals []float64, k int) []float64 {
	out := nanSlice(len(vals))
	for i := range vals {
		src := i - k
		if src >= 0 && src < len(vals) {
			out[i] = vals[src]
		}
	}
	return out
}

func diff(vals []float64, k int) []float64 {
	out := nanSlice(len(vals))
	for i := k; i < len(vals); i++ {
		out[i] = vals[i] - vals[i-k]
	}
	return out
}

func rollMean(vals []float64, window int) []float64 {
	out := nanSlice(len(vals))
	if window <= 0 || len(vals) < window {
		return out
	}
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= window {
			sum -= vals[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollStd is the rolling sample standard deviation over the valid suffix
// of vals.
func rollStd(vals []float64, window int) []float64 {
	out := nanSlice(len(vals))
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			continue
		}
		sum, count := 0.0, 0
		for j := lo; j <= i; j++ {
			if !isFinite(vals[j]) {
				count = -1
				break
			}
			sum += vals[j]
			count++
		}
		if count < 2 {
			continue
		}
		mean := sum / float64(count)
		var ss float64
		for j := lo; j <= i; j++ {
			d := vals[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(count-1))
	}
	return out
}

// ratio divides num by den elementwise, NaN on zero/invalid denominators.
func ratio(num, den []float64) []float64 {
	out := nanSlice(len(num))
	for i := range num {
		if !isFinite(den[i]) || den[i] == 0 {
			continue
		}
		v := num[i] / den[i]
		if isFinite(v) {
			out[i] = v
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
