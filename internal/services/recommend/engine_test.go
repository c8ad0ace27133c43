package recommend

import (
	"reflect"
	"testing"

	"StockSage/internal/domain/models"
)

func flag(b bool) *bool { return &b }

func bullishSignals() *models.TechnicalSignals {
	return &models.TechnicalSignals{
		MovingAverages: &models.MovingAverages{
			PriceAboveSMA20:  true,
			PriceAboveSMA50:  true,
			PriceAboveSMA200: flag(true),
			SMA20AboveSMA50:  true,
			SMA50AboveSMA200: flag(true),
			GoldenCross:      true,
		},
		MACD:       &models.MACDSignals{AboveSignal: true, Positive: true},
		RSI:        &models.RSISignals{Value: 25, Oversold: true},
		Stochastic: &models.StochasticSignals{K: 15, D: 18, Oversold: true},
		Bollinger:  &models.BollingerSignals{NearLower: true},
	}
}

func bearishSignals() *models.TechnicalSignals {
	return &models.TechnicalSignals{
		MovingAverages: &models.MovingAverages{
			PriceAboveSMA200: flag(false),
			SMA50AboveSMA200: flag(false),
			DeathCross:       true,
		},
		MACD:       &models.MACDSignals{},
		RSI:        &models.RSISignals{Value: 78, Overbought: true},
		Stochastic: &models.StochasticSignals{K: 85, D: 82, Overbought: true},
		Bollinger:  &models.BollingerSignals{NearUpper: true},
	}
}

func TestGenerateAllBullish(t *testing.T) {
	pred := &models.Prediction{Direction: models.DirectionUp, Confidence: 0.9}
	rec := NewEngine().Generate(bullishSignals(), pred)
	if rec.Verdict != models.VerdictStrongBuy {
		t.Fatalf("expected STRONG BUY, got %q", rec.Verdict)
	}
	if rec.Confidence <= 70 {
		t.Fatalf("uniformly bullish signals should clear 70, got %d", rec.Confidence)
	}
}

func TestGenerateAllBearish(t *testing.T) {
	pred := &models.Prediction{Direction: models.DirectionDown, Confidence: 0.9}
	rec := NewEngine().Generate(bearishSignals(), pred)
	if rec.Verdict != models.VerdictStrongSell {
		t.Fatalf("expected STRONG SELL, got %q", rec.Verdict)
	}
	if rec.Confidence <= 70 {
		t.Fatalf("uniformly bearish signals should clear 70, got %d", rec.Confidence)
	}
}

func TestGenerateEmptySignals(t *testing.T) {
	rec := NewEngine().Generate(&models.TechnicalSignals{}, nil)
	if rec.Verdict != models.VerdictHold || rec.Confidence != 0 {
		t.Fatalf("expected HOLD/0 on empty signals, got %+v", rec)
	}
	if len(rec.Reasons) != 1 || rec.Reasons[0] != insufficientData {
		t.Fatalf("unexpected reasons %v", rec.Reasons)
	}
}

func TestGenerateNoContributions(t *testing.T) {
	// A neutral stochastic emits no vote; with no prediction the scores
	// stay zero and the call defaults to a 50% hold.
	sig := &models.TechnicalSignals{Stochastic: &models.StochasticSignals{K: 50, D: 50}}
	rec := NewEngine().Generate(sig, nil)
	if rec.Verdict != models.VerdictHold {
		t.Fatalf("expected HOLD, got %q", rec.Verdict)
	}
	if rec.Confidence != 50 {
		t.Fatalf("expected hold floor confidence 50, got %d", rec.Confidence)
	}
	if len(rec.Reasons) != 0 {
		t.Fatalf("expected no reasons, got %v", rec.Reasons)
	}
}

func TestGenerateUncertainPrediction(t *testing.T) {
	sig := &models.TechnicalSignals{Stochastic: &models.StochasticSignals{K: 50, D: 50}}
	pred := &models.Prediction{Direction: models.DirectionUp, Confidence: 0.5}
	rec := NewEngine().Generate(sig, pred)
	if rec.Verdict != models.VerdictHold {
		t.Fatalf("low-confidence prediction must hold, got %q", rec.Verdict)
	}
	if len(rec.Reasons) != 1 || rec.Reasons[0] != "AI prediction is uncertain" {
		t.Fatalf("unexpected reasons %v", rec.Reasons)
	}
}

func TestGenerateCombinedViewWins(t *testing.T) {
	sig := &models.TechnicalSignals{Stochastic: &models.StochasticSignals{K: 50, D: 50}}
	pred := &models.Prediction{
		Direction:  models.DirectionDown,
		Confidence: 0.9,
		Combined:   &models.CombinedView{Direction: models.DirectionUp, Confidence: 0.9},
	}
	rec := NewEngine().Generate(sig, pred)
	if rec.Verdict != models.VerdictStrongBuy {
		t.Fatalf("combined view must override the raw direction, got %q", rec.Verdict)
	}
	if len(rec.Reasons) != 1 || rec.Reasons[0] != "AI predicts upward movement with 0.90 confidence" {
		t.Fatalf("unexpected reasons %v", rec.Reasons)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	pred := &models.Prediction{Direction: models.DirectionUp, Confidence: 0.9}
	a := NewEngine().Generate(bullishSignals(), pred)
	b := NewEngine().Generate(bullishSignals(), pred)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical inputs diverged: %+v vs %+v", a, b)
	}
}

func TestGenerateReasonTruncation(t *testing.T) {
	pred := &models.Prediction{Direction: models.DirectionUp, Confidence: 0.9}
	rec := NewEngine().Generate(bullishSignals(), pred)
	if len(rec.Reasons) != maxReasons {
		t.Fatalf("expected %d reasons, got %d", maxReasons, len(rec.Reasons))
	}
	for i := 1; i < len(rec.Reasons); i++ {
		if len(rec.Reasons[i]) > len(rec.Reasons[i-1]) {
			t.Fatalf("reasons not ordered longest first: %v", rec.Reasons)
		}
	}
}
