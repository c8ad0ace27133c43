package model

import (
	"math"
	"testing"
)

func TestScalerRoundTrip(t *testing.T) {
	rows := [][]float64{
		{1.0, 10, 7},
		{2.0, 10, -3},
		{4.0, 10, 0},
	}
	s := &MinMaxScaler{}
	if err := s.Fit(rows); err != nil {
		t.Fatalf("fit: %v", err)
	}
	for _, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			t.Fatalf("transform: %v", err)
		}
		for j, v := range scaled {
			if v < 0 || v > 1 {
				t.Fatalf("column %d: scaled value %v outside [0,1]", j, v)
			}
		}
		back, err := s.Inverse(scaled)
		if err != nil {
			t.Fatalf("inverse: %v", err)
		}
		for j := range row {
			if math.Abs(back[j]-row[j]) > 1e-9 {
				t.Fatalf("column %d: round trip %v != %v", j, back[j], row[j])
			}
		}
	}
}

func TestScalerConstantColumn(t *testing.T) {
	s := &MinMaxScaler{}
	if err := s.Fit([][]float64{{5, 1}, {5, 2}}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	scaled, err := s.Transform([]float64{5, 1.5})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if scaled[0] != 0 {
		t.Fatalf("constant column should scale to 0, got %v", scaled[0])
	}
	back, err := s.Inverse(scaled)
	if err != nil {
		t.Fatalf("inverse: %v", err)
	}
	if back[0] != 5 {
		t.Fatalf("constant column should invert to its value, got %v", back[0])
	}
}

func TestScalerWidthMismatch(t *testing.T) {
	s := &MinMaxScaler{}
	if err := s.Fit([][]float64{{1, 2}}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := s.Transform([]float64{1}); err == nil {
		t.Fatalf("expected width error")
	}
	if _, err := s.Inverse([]float64{1, 2, 3}); err == nil {
		t.Fatalf("expected width error")
	}
}

func TestScalerNoRows(t *testing.T) {
	s := &MinMaxScaler{}
	if err := s.Fit(nil); err == nil {
		t.Fatalf("expected error for empty fit")
	}
}
