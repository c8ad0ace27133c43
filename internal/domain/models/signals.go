package models

// MovingAverages holds the current moving-average values and the trend
// flags derived from them. SMA200-dependent fields are nil when the series
// is shorter than 200 bars; cross flags stay false in that case.
type MovingAverages struct {
	SMA20  float64  `json:"sma_20"`
	SMA50  float64  `json:"sma_50"`
	SMA200 *float64 `json:"sma_200"`
	EMA12  float64  `json:"ema_12"`
	EMA26  float64  `json:"ema_26"`

	PriceAboveSMA20  bool  `json:"price_above_sma_20"`
	PriceAboveSMA50  bool  `json:"price_above_sma_50"`
	PriceAboveSMA200 *bool `json:"price_above_sma_200"`
	SMA20AboveSMA50  bool  `json:"sma_20_above_sma_50"`
	SMA50AboveSMA200 *bool `json:"sma_50_above_sma_200"`
	GoldenCross      bool  `json:"golden_cross"`
	DeathCross       bool  `json:"death_cross"`
}

// MACDSignals holds MACD line, signal line, histogram and derived flags.
type MACDSignals struct {
	MACD        float64 `json:"macd"`
	Signal      float64 `json:"signal"`
	Histogram   float64 `json:"histogram"`
	AboveSignal bool    `json:"macd_above_signal"`
	Positive    bool    `json:"macd_positive"`
}

// RSISignals holds the RSI value and overbought/oversold flags.
type RSISignals struct {
	Value      float64 `json:"value"`
	Overbought bool    `json:"overbought"`
	Oversold   bool    `json:"oversold"`
}

// StochasticSignals holds stochastic %K/%D and overbought/oversold flags.
type StochasticSignals struct {
	K          float64 `json:"k"`
	D          float64 `json:"d"`
	Overbought bool    `json:"overbought"`
	Oversold   bool    `json:"oversold"`
}

// BollingerSignals holds band values and proximity flags.
type BollingerSignals struct {
	Upper     float64 `json:"upper"`
	Lower     float64 `json:"lower"`
	PercentB  float64 `json:"percent_b"`
	NearUpper bool    `json:"near_upper"`
	NearLower bool    `json:"near_lower"`
}

// TechnicalSignals is the full indicator snapshot at the latest bar.
// Sections are nil when the series is too short for that indicator;
// the whole snapshot is never persisted, it is recomputed per request.
type TechnicalSignals struct {
	MovingAverages *MovingAverages    `json:"moving_averages,omitempty"`
	MACD           *MACDSignals       `json:"macd,omitempty"`
	RSI            *RSISignals        `json:"rsi,omitempty"`
	Stochastic     *StochasticSignals `json:"stochastic,omitempty"`
	Bollinger      *BollingerSignals  `json:"bollinger_bands,omitempty"`
	OBV            *float64           `json:"obv,omitempty"`
}

// Empty reports whether no indicator section could be computed.
func (t *TechnicalSignals) Empty() bool {
	if t == nil {
		return true
	}
	return t.MovingAverages == nil && t.MACD == nil && t.RSI == nil &&
		t.Stochastic == nil && t.Bollinger == nil && t.OBV == nil
}

// PriceLevels holds support/resistance zones extracted from pivot clusters.
type PriceLevels struct {
	Resistance []float64 `json:"resistance_levels"`
	Support    []float64 `json:"support_levels"`
}
