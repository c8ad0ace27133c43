package recommend

import (
	"fmt"

	"StockSage/internal/domain/models"
)

type scoreClass int

const (
	classBuy scoreClass = iota
	classSell
	classHold
)

// contribution is one weighted vote produced by a rule, together with
// the human-readable reason that justifies it.
type contribution struct {
	class  scoreClass
	weight int
	reason string
}

// rule inspects the signal snapshot and prediction and emits zero or
// more contributions. Rules never mutate their inputs.
type rule func(sig *models.TechnicalSignals, pred *models.Prediction) []contribution

func one(class scoreClass, weight int, reason string) []contribution {
	return []contribution{{class: class, weight: weight, reason: reason}}
}

func either(cond bool, weight int, bullish, bearish string) []contribution {
	if cond {
		return one(classBuy, weight, bullish)
	}
	return one(classSell, weight, bearish)
}

// scoringRules is the full fusion table. Order matters only for reason
// ordering before truncation; scores are order-independent.
var scoringRules = []rule{
	movingAverageRules,
	macdRules,
	rsiRules,
	stochasticRules,
	bollingerRules,
	predictionRules,
}

func movingAverageRules(sig *models.TechnicalSignals, _ *models.Prediction) []contribution {
	ma := sig.MovingAverages
	if ma == nil {
		return nil
	}
	var out []contribution
	out = append(out, either(ma.PriceAboveSMA20, 1,
		"Price is above 20-day SMA (bullish)",
		"Price is below 20-day SMA (bearish)")...)
	out = append(out, either(ma.PriceAboveSMA50, 1,
		"Price is above 50-day SMA (bullish)",
		"Price is below 50-day SMA (bearish)")...)
	if ma.PriceAboveSMA200 != nil {
		out = append(out, either(*ma.PriceAboveSMA200, 2,
			"Price is above 200-day SMA (strongly bullish)",
			"Price is below 200-day SMA (strongly bearish)")...)
	}
	out = append(out, either(ma.SMA20AboveSMA50, 1,
		"20-day SMA is above 50-day SMA (bullish)",
		"20-day SMA is below 50-day SMA (bearish)")...)
	if ma.SMA50AboveSMA200 != nil {
		out = append(out, either(*ma.SMA50AboveSMA200, 2,
			"50-day SMA is above 200-day SMA (strongly bullish)",
			"50-day SMA is below 200-day SMA (strongly bearish)")...)
	}
	if ma.GoldenCross {
		out = append(out, one(classBuy, 3, "Golden Cross detected (very bullish)")...)
	}
	if ma.DeathCross {
		out = append(out, one(classSell, 3, "Death Cross detected (very bearish)")...)
	}
	return out
}

func macdRules(sig *models.TechnicalSignals, _ *models.Prediction) []contribution {
	macd := sig.MACD
	if macd == nil {
		return nil
	}
	var out []contribution
	out = append(out, either(macd.AboveSignal, 2,
		"MACD is above signal line (bullish)",
		"MACD is below signal line (bearish)")...)
	out = append(out, either(macd.Positive, 1,
		"MACD is positive (bullish)",
		"MACD is negative (bearish)")...)
	return out
}

func rsiRules(sig *models.TechnicalSignals, _ *models.Prediction) []contribution {
	rsi := sig.RSI
	if rsi == nil {
		return nil
	}
	switch {
	case rsi.Overbought:
		return one(classSell, 3, fmt.Sprintf("RSI is overbought at %.2f (strongly bearish)", rsi.Value))
	case rsi.Oversold:
		return one(classBuy, 3, fmt.Sprintf("RSI is oversold at %.2f (strongly bullish)", rsi.Value))
	case rsi.Value > 50:
		return one(classBuy, 1, fmt.Sprintf("RSI is bullish at %.2f", rsi.Value))
	default:
		return one(classSell, 1, fmt.Sprintf("RSI is bearish at %.2f", rsi.Value))
	}
}

func stochasticRules(sig *models.TechnicalSignals, _ *models.Prediction) []contribution {
	stoch := sig.Stochastic
	if stoch == nil {
		return nil
	}
	switch {
	case stoch.Overbought:
		return one(classSell, 2, "Stochastic Oscillator is overbought (bearish)")
	case stoch.Oversold:
		return one(classBuy, 2, "Stochastic Oscillator is oversold (bullish)")
	}
	return nil
}

func bollingerRules(sig *models.TechnicalSignals, _ *models.Prediction) []contribution {
	bb := sig.Bollinger
	if bb == nil {
		return nil
	}
	switch {
	case bb.NearUpper:
		return one(classSell, 2, "Price is near upper Bollinger Band (potential reversal)")
	case bb.NearLower:
		return one(classBuy, 2, "Price is near lower Bollinger Band (potential reversal)")
	}
	return nil
}

// predictionRules folds in the model/advisory view. The combined view
// wins when both sources contributed; a failed or uncertain prediction
// still votes, but only for holding.
func predictionRules(_ *models.TechnicalSignals, pred *models.Prediction) []contribution {
	if pred == nil {
		return nil
	}
	direction, confidence := pred.Direction, pred.Confidence
	if pred.Combined != nil {
		direction, confidence = pred.Combined.Direction, pred.Combined.Confidence
	}
	switch {
	case direction == models.DirectionUp && confidence > 0.6:
		return one(classBuy, int(confidence*5),
			fmt.Sprintf("AI predicts upward movement with %.2f confidence", confidence))
	case direction == models.DirectionDown && confidence > 0.6:
		return one(classSell, int(confidence*5),
			fmt.Sprintf("AI predicts downward movement with %.2f confidence", confidence))
	default:
		return one(classHold, 2, "AI prediction is uncertain")
	}
}
