package model

import (
	"fmt"
	"math"
)

// MinMaxScaler rescales each feature into [0,1] using the min/max
// observed on the training partition. The fitted statistics are part of
// the persisted artifact bundle and are never refit at inference time.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// Fit computes per-column min/max over rows.
func (s *MinMaxScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("scaler fit: no rows")
	}
	width := len(rows[0])
	s.Min = make([]float64, width)
	s.Max = make([]float64, width)
	for j := 0; j < width; j++ {
		s.Min[j] = math.Inf(1)
		s.Max[j] = math.Inf(-1)
	}
	for _, row := range rows {
		for j, v := range row {
			s.Min[j] = math.Min(s.Min[j], v)
			s.Max[j] = math.Max(s.Max[j], v)
		}
	}
	return nil
}

// Transform scales one row in place-free fashion. Constant columns
// (min == max) map to zero.
func (s *MinMaxScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Min) {
		return nil, fmt.Errorf("scaler transform: width %d != fitted %d", len(row), len(s.Min))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		span := s.Max[j] - s.Min[j]
		if span == 0 {
			out[j] = 0
			continue
		}
		out[j] = (v - s.Min[j]) / span
	}
	return out, nil
}

// TransformAll scales every row.
func (s *MinMaxScaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// Inverse maps a scaled row back to original units.
func (s *MinMaxScaler) Inverse(row []float64) ([]float64, error) {
	if len(row) != len(s.Min) {
		return nil, fmt.Errorf("scaler inverse: width %d != fitted %d", len(row), len(s.Min))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		span := s.Max[j] - s.Min[j]
		if span == 0 {
			out[j] = s.Min[j]
			continue
		}
		out[j] = v*span + s.Min[j]
	}
	return out, nil
}
