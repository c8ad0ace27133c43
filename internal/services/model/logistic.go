package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	logitEpochs       = 400
	logitLearningRate = 0.1
	logitL2           = 1e-4
)

// LogisticClassifier is a binary direction classifier (1 = up) trained by
// full-batch gradient descent on scaled features.
type LogisticClassifier struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Fit trains on rows/labels (labels in {0,1}).
func (m *LogisticClassifier) Fit(rows [][]float64, labels []float64) error {
	if len(rows) == 0 || len(rows) != len(labels) {
		return fmt.Errorf("logistic fit: %d rows vs %d labels", len(rows), len(labels))
	}
	width := len(rows[0])
	m.Weights = make([]float64, width)
	m.Bias = 0

	grad := make([]float64, width)
	n := float64(len(rows))
	for epoch := 0; epoch < logitEpochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0
		for i, row := range rows {
			p := sigmoid(floats.Dot(m.Weights, row) + m.Bias)
			err := p - labels[i]
			floats.AddScaled(grad, err, row)
			gradBias += err
		}
		for j := range m.Weights {
			m.Weights[j] -= logitLearningRate * (grad[j]/n + logitL2*m.Weights[j])
		}
		m.Bias -= logitLearningRate * gradBias / n
	}
	return nil
}

// Proba returns (pDown, pUp) for one scaled row.
func (m *LogisticClassifier) Proba(row []float64) (float64, float64, error) {
	if len(row) != len(m.Weights) {
		return 0, 0, fmt.Errorf("logistic proba: width %d != trained %d", len(row), len(m.Weights))
	}
	pUp := sigmoid(floats.Dot(m.Weights, row) + m.Bias)
	return 1 - pUp, pUp, nil
}

// Accuracy scores the classifier on a held-out partition at a 0.5
// threshold.
func (m *LogisticClassifier) Accuracy(rows [][]float64, labels []float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	correct := 0
	for i, row := range rows {
		_, pUp, err := m.Proba(row)
		if err != nil {
			return 0
		}
		pred := 0.0
		if pUp > 0.5 {
			pred = 1
		}
		if pred == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
