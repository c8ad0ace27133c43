package models

// Requests for analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Symbol      string `query:"symbol" json:"symbol" validate:"required"`
	Timeframe   string `query:"timeframe" json:"timeframe" default:"1y" validate:"oneof=1d 1w 1m 3m 6m 1y 2y 5y"`
	UseRealtime *bool  `query:"use_realtime" json:"use_realtime"`
	UseAdvisor  *bool  `query:"use_ai" json:"use_ai"`
}

type ChartDataRequest struct {
	Symbol      string `query:"symbol" json:"symbol" validate:"required"`
	Timeframe   string `query:"timeframe" json:"timeframe" default:"1y" validate:"oneof=1d 1w 1m 3m 6m 1y 2y 5y"`
	UseRealtime *bool  `query:"use_realtime" json:"use_realtime"`
}

type QuoteRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type TrainRequest struct {
	Symbol    string `query:"symbol" json:"symbol" validate:"required"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"2y" validate:"oneof=6m 1y 2y 5y"`
}

// RealtimeOn reports whether real-time augmentation was requested
// (defaults to true when unset).
func (r *AnalyzeRequest) RealtimeOn() bool { return r.UseRealtime == nil || *r.UseRealtime }

// AdvisorOn reports whether the advisory opinion was requested
// (defaults to true when unset).
func (r *AnalyzeRequest) AdvisorOn() bool { return r.UseAdvisor == nil || *r.UseAdvisor }

// RealtimeOn on chart requests, same default as analyze.
func (r *ChartDataRequest) RealtimeOn() bool { return r.UseRealtime == nil || *r.UseRealtime }
