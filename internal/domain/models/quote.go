package models

import "time"

// Quote is a real-time snapshot for one symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	LastPrice     float64   `json:"last_price"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	PrevClose     float64   `json:"close"`
	Volume        float64   `json:"volume"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
}

// MergeIntoLatest folds the quote into today's bar of the series: the
// close is replaced, high/low extend to max/min against the prior values,
// and volume is replaced when the quote carries one. When the series'
// last bar is not from today a new bar is appended instead.
func (q *Quote) MergeIntoLatest(s *Series, now time.Time) {
	if q == nil || s.Empty() || q.LastPrice <= 0 {
		return
	}
	last := &s.Bars[len(s.Bars)-1]
	if !sameDay(last.Date, now) {
		s.Bars = append(s.Bars, Bar{
			Date:   now,
			Open:   q.Open,
			High:   q.High,
			Low:    q.Low,
			Close:  q.LastPrice,
			Volume: q.Volume,
		})
		return
	}
	last.Close = q.LastPrice
	if q.High > last.High {
		last.High = q.High
	}
	if q.Low > 0 && q.Low < last.Low {
		last.Low = q.Low
	}
	if q.Volume > 0 {
		last.Volume = q.Volume
	}
}
