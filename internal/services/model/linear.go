package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const ridgeLambda = 1e-3

// ReturnRegressor predicts the next-day return as a ridge-regularized
// linear model solved in closed form.
type ReturnRegressor struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Fit solves (X'X + lambda*I) w = X'y with an intercept column.
func (m *ReturnRegressor) Fit(rows [][]float64, targets []float64) error {
	if len(rows) == 0 || len(rows) != len(targets) {
		return fmt.Errorf("regressor fit: %d rows vs %d targets", len(rows), len(targets))
	}
	n := len(rows)
	width := len(rows[0]) + 1 // intercept

	x := mat.NewDense(n, width, nil)
	for i, row := range rows {
		x.Set(i, 0, 1)
		for j, v := range row {
			x.Set(i, j+1, v)
		}
	}
	y := mat.NewVecDense(n, append([]float64(nil), targets...))

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for j := 0; j < width; j++ {
		xtx.Set(j, j, xtx.At(j, j)+ridgeLambda)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var w mat.VecDense
	if err := w.SolveVec(&xtx, &xty); err != nil {
		return fmt.Errorf("regressor fit: solve: %w", err)
	}

	m.Bias = w.AtVec(0)
	m.Weights = make([]float64, width-1)
	for j := 1; j < width; j++ {
		m.Weights[j-1] = w.AtVec(j)
	}
	return nil
}

// Predict returns the point estimate for one scaled row.
func (m *ReturnRegressor) Predict(row []float64) (float64, error) {
	if len(row) != len(m.Weights) {
		return 0, fmt.Errorf("regressor predict: width %d != trained %d", len(row), len(m.Weights))
	}
	return floats.Dot(m.Weights, row) + m.Bias, nil
}
