package models

// AnalysisResult is the full response of one analysis request. It is
// always structurally complete: under partial failure Analysis stays
// empty, Prediction carries an unknown/0 result and Recommendation falls
// back to HOLD, with the failure text in Err.
type AnalysisResult struct {
	Symbol         string            `json:"symbol"`
	CurrentPrice   float64           `json:"current_price"`
	Realtime       *Quote            `json:"realtime,omitempty"`
	Analysis       *TechnicalSignals `json:"analysis"`
	Prediction     *Prediction       `json:"prediction"`
	Recommendation *Recommendation   `json:"recommendation"`
	DataSource     string            `json:"data_source"`
	Err            string            `json:"error,omitempty"`
}

// ChartData is the plot-ready view of a series with indicator overlays.
type ChartData struct {
	Dates  []string  `json:"dates"`
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`

	// Overlay columns are nil-padded where the indicator is not yet
	// defined, so they marshal as JSON nulls aligned with Dates.
	SMA20     []*float64   `json:"sma_20,omitempty"`
	SMA50     []*float64   `json:"sma_50,omitempty"`
	SMA200    []*float64   `json:"sma_200,omitempty"`
	UpperBand []*float64   `json:"upper_band,omitempty"`
	LowerBand []*float64   `json:"lower_band,omitempty"`
	RSI       []*float64   `json:"rsi,omitempty"`
	Levels    *PriceLevels `json:"levels,omitempty"`
}

// WatchlistEntry is one symbol's quick view in the watchlist response.
type WatchlistEntry struct {
	Symbol         string      `json:"symbol"`
	Name           string      `json:"name"`
	CurrentPrice   float64     `json:"current_price,omitempty"`
	PriceChange    float64     `json:"price_change,omitempty"`
	PriceChangePct float64     `json:"price_change_pct,omitempty"`
	DataSource     string      `json:"data_source,omitempty"`
	Prediction     *Prediction `json:"prediction,omitempty"`
	Recommendation Verdict     `json:"recommendation,omitempty"`
	Err            string      `json:"error,omitempty"`
}

// SymbolInfo is a tradable symbol with a display name.
type SymbolInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
