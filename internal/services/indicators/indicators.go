package indicators

import (
	"fmt"
	"math"

	"StockSage/internal/domain/models"
)

// Indicator windows and thresholds. These mirror the standard parameter
// choices for daily bars.
const (
	smaShort  = 20
	smaMid    = 50
	smaLong   = 200
	emaFast   = 12
	emaSlow   = 26
	macdSpan  = 9
	rsiWindow = 14
	stochK    = 14
	stochD    = 3
	bbWindow  = 20
	bbStdDev  = 2.0

	rsiOverbought   = 70
	rsiOversold     = 30
	stochOverbought = 80
	stochOversold   = 20
	bandProximity   = 0.05
)

// Compute builds the technical signal snapshot at the latest bar. It is a
// pure function of the series: indicators whose window exceeds the series
// length are omitted rather than failing the whole call.
func Compute(s *models.Series) (*models.TechnicalSignals, error) {
	if s.Empty() {
		return nil, fmt.Errorf("compute indicators: %w", models.ErrDataUnavailable)
	}
	if !s.Valid() {
		return nil, fmt.Errorf("compute indicators: non-finite input column: %w", models.ErrFeatureComputation)
	}

	closes := s.Closes()
	n := len(closes)
	last := s.Last()
	out := &models.TechnicalSignals{}

	if n >= smaMid {
		out.MovingAverages = movingAverages(closes, last.Close)
	}
	if n >= emaSlow+macdSpan-1 {
		out.MACD = macdSignals(closes)
	}
	if n > rsiWindow {
		out.RSI = rsiSignals(closes)
	}
	if n >= stochK+stochD-1 {
		out.Stochastic = stochasticSignals(s)
	}
	if n >= bbWindow {
		out.Bollinger = bollingerSignals(closes, last.Close)
	}
	obv := onBalanceVolume(s)
	out.OBV = &obv

	return out, nil
}

func movingAverages(closes []float64, price float64) *models.MovingAverages {
	sma20 := SMA(closes, smaShort)
	sma50 := SMA(closes, smaMid)
	ema12 := EMA(closes, emaFast)
	ema26 := EMA(closes, emaSlow)

	ma := &models.MovingAverages{
		SMA20:           latest(sma20),
		SMA50:           latest(sma50),
		EMA12:           latest(ema12),
		EMA26:           latest(ema26),
		PriceAboveSMA20: price > latest(sma20),
		PriceAboveSMA50: price > latest(sma50),
		SMA20AboveSMA50: latest(sma20) > latest(sma50),
	}

	if len(closes) >= smaLong {
		sma200 := SMA(closes, smaLong)
		v := latest(sma200)
		above := price > v
		midAbove := latest(sma50) > v
		ma.SMA200 = &v
		ma.PriceAboveSMA200 = &above
		ma.SMA50AboveSMA200 = &midAbove
		ma.GoldenCross, ma.DeathCross = detectCross(sma50, sma200)
	}
	return ma
}

// detectCross needs two consecutive valid SMA pairs: a golden cross is
// mid <= long at t-1 and mid > long at t; a death cross is the mirror.
// Any missing value yields no signal.
func detectCross(mid, long []float64) (golden, death bool) {
	n := len(mid)
	if n < 2 || len(long) < 2 {
		return false, false
	}
	prevMid, prevLong := mid[n-2], long[len(long)-2]
	curMid, curLong := mid[n-1], long[len(long)-1]
	for _, v := range [...]float64{prevMid, prevLong, curMid, curLong} {
		if math.IsNaN(v) {
			return false, false
		}
	}
	prevAbove := prevMid > prevLong
	curAbove := curMid > curLong
	return !prevAbove && curAbove, prevAbove && !curAbove
}

func macdSignals(closes []float64) *models.MACDSignals {
	line, signal, hist := MACD(closes, emaFast, emaSlow, macdSpan)
	m := latest(line)
	sig := latest(signal)
	return &models.MACDSignals{
		MACD:        m,
		Signal:      sig,
		Histogram:   latest(hist),
		AboveSignal: m > sig,
		Positive:    m > 0,
	}
}

func rsiSignals(closes []float64) *models.RSISignals {
	v := latest(RSI(closes, rsiWindow))
	return &models.RSISignals{
		Value:      v,
		Overbought: v > rsiOverbought,
		Oversold:   v < rsiOversold,
	}
}

func stochasticSignals(s *models.Series) *models.StochasticSignals {
	k, d := Stochastic(s.Bars, stochK, stochD)
	kv := latest(k)
	return &models.StochasticSignals{
		K:          kv,
		D:          latest(d),
		Overbought: kv > stochOverbought,
		Oversold:   kv < stochOversold,
	}
}

func bollingerSignals(closes []float64, price float64) *models.BollingerSignals {
	upper, lower := Bollinger(closes, bbWindow, bbStdDev)
	u := latest(upper)
	l := latest(lower)
	pctB := 0.0
	if u != l {
		pctB = (price - l) / (u - l)
	}
	return &models.BollingerSignals{
		Upper:     u,
		Lower:     l,
		PercentB:  pctB,
		NearUpper: price > u*(1-bandProximity),
		NearLower: price < l*(1+bandProximity),
	}
}

// SMA returns the simple moving average series, NaN-padded until the
// window is filled.
func SMA(vals []float64, window int) []float64 {
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

// EMA returns the exponential moving average series seeded with the SMA
// of the first window.
func EMA(vals []float64, window int) []float64 {
	out := nanSlice(len(vals))
	if window <= 0 || len(vals) < window {
		return out
	}
	seed := 0.0
	for _, v := range vals[:window] {
		seed += v
	}
	seed /= float64(window)
	out[window-1] = seed
	alpha := 2.0 / (float64(window) + 1.0)
	prev := seed
	for i := window; i < len(vals); i++ {
		prev = alpha*vals[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// MACD returns the MACD line, its signal line and the histogram.
func MACD(closes []float64, fast, slow, span int) (line, signal, hist []float64) {
	efast := EMA(closes, fast)
	eslow := EMA(closes, slow)
	line = nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(efast[i]) && !math.IsNaN(eslow[i]) {
			line[i] = efast[i] - eslow[i]
		}
	}
	signal = emaOfValid(line, span)
	hist = nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(line[i]) && !math.IsNaN(signal[i]) {
			hist[i] = line[i] - signal[i]
		}
	}
	return line, signal, hist
}

// RSI returns the Wilder-smoothed relative strength index.
func RSI(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) <= window {
		return out
	}
	var gain, loss float64
	for i := 1; i <= window; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(window)
	avgLoss := loss / float64(window)
	out[window] = rsiValue(avgGain, avgLoss)
	for i := window + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(window-1) + g) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + l) / float64(window)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Stochastic returns %K over kWindow and %D as an SMA(dWindow) of %K.
func Stochastic(bars []models.Bar, kWindow, dWindow int) (k, d []float64) {
	k = nanSlice(len(bars))
	for i := kWindow - 1; i < len(bars); i++ {
		hi := math.Inf(-1)
		lo := math.Inf(1)
		for j := i - kWindow + 1; j <= i; j++ {
			hi = math.Max(hi, bars[j].High)
			lo = math.Min(lo, bars[j].Low)
		}
		if hi == lo {
			k[i] = 50
			continue
		}
		k[i] = (bars[i].Close - lo) / (hi - lo) * 100
	}
	d = smaOfValid(k, dWindow)
	return k, d
}

// Bollinger returns the upper and lower bands (SMA +- stdDev sigma).
func Bollinger(closes []float64, window int, stdDev float64) (upper, lower []float64) {
	mid := SMA(closes, window)
	upper = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	for i := window - 1; i < len(closes); i++ {
		var ss float64
		for j := i - window + 1; j <= i; j++ {
			d := closes[j] - mid[i]
			ss += d * d
		}
		sigma := math.Sqrt(ss / float64(window))
		upper[i] = mid[i] + stdDev*sigma
		lower[i] = mid[i] - stdDev*sigma
	}
	return upper, lower
}

func onBalanceVolume(s *models.Series) float64 {
	obv := 0.0
	for i := 1; i < len(s.Bars); i++ {
		switch {
		case s.Bars[i].Close > s.Bars[i-1].Close:
			obv += s.Bars[i].Volume
		case s.Bars[i].Close < s.Bars[i-1].Close:
			obv -= s.Bars[i].Volume
		}
	}
	return obv
}

// emaOfValid applies an EMA over the valid (non-NaN) suffix of vals.
func emaOfValid(vals []float64, window int) []float64 {
	start := firstValid(vals)
	out := nanSlice(len(vals))
	if start < 0 || len(vals)-start < window {
		return out
	}
	sub := EMA(vals[start:], window)
	copy(out[start:], sub)
	return out
}

func smaOfValid(vals []float64, window int) []float64 {
	start := firstValid(vals)
	out := nanSlice(len(vals))
	if start < 0 || len(vals)-start < window {
		return out
	}
	sub := SMA(vals[start:], window)
	copy(out[start:], sub)
	return out
}

func firstValid(vals []float64) int {
	for i, v := range vals {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

func latest(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	return vals[len(vals)-1]
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
