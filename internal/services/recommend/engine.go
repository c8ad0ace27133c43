// Package recommend fuses the technical-signal snapshot and the price
// prediction into a single buy/sell/hold verdict with supporting reasons.
package recommend

import (
	"math"
	"sort"

	"StockSage/internal/domain/models"
)

const (
	strongThreshold  = 0.7
	holdFloor        = 0.5
	maxReasons       = 5
	insufficientData = "Insufficient data for analysis"
)

// Engine scores signal snapshots against the fusion rule table. It is
// stateless and safe for concurrent use.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Generate produces the verdict for one analysis. Identical inputs
// always yield the identical recommendation.
func (e *Engine) Generate(sig *models.TechnicalSignals, pred *models.Prediction) *models.Recommendation {
	if sig.Empty() {
		return &models.Recommendation{
			Verdict:    models.VerdictHold,
			Confidence: 0,
			Reasons:    []string{insufficientData},
		}
	}

	var buy, sell, hold int
	var reasons []string
	for _, r := range scoringRules {
		for _, c := range r(sig, pred) {
			switch c.class {
			case classBuy:
				buy += c.weight
			case classSell:
				sell += c.weight
			case classHold:
				hold += c.weight
			}
			reasons = append(reasons, c.reason)
		}
	}

	total := buy + sell + hold
	if total == 0 {
		total = 1
	}
	buyConf := float64(buy) / float64(total)
	sellConf := float64(sell) / float64(total)
	holdConf := float64(hold) / float64(total)

	var verdict models.Verdict
	var confidence float64
	switch {
	case buyConf > sellConf && buyConf > holdConf:
		verdict = models.VerdictBuy
		if buyConf > strongThreshold {
			verdict = models.VerdictStrongBuy
		}
		confidence = buyConf
	case sellConf > buyConf && sellConf > holdConf:
		verdict = models.VerdictSell
		if sellConf > strongThreshold {
			verdict = models.VerdictStrongSell
		}
		confidence = sellConf
	default:
		verdict = models.VerdictHold
		confidence = math.Max(holdConf, holdFloor)
	}

	if len(reasons) > maxReasons {
		sort.SliceStable(reasons, func(i, j int) bool {
			return len(reasons[i]) > len(reasons[j])
		})
		reasons = reasons[:maxReasons]
	}

	return &models.Recommendation{
		Verdict:    verdict,
		Confidence: int(math.Round(confidence * 100)),
		Reasons:    reasons,
	}
}
