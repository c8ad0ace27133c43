package models

import (
	"math"
	"sort"
	"time"
)

// Bar is a single daily OHLCV record.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ascending-by-date sequence of bars for one symbol.
// Normalize must be called after ingestion; all downstream pipelines
// assume strictly increasing dates with no duplicates.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

func (s *Series) Len() int { return len(s.Bars) }

func (s *Series) Empty() bool { return s == nil || len(s.Bars) == 0 }

// Last returns the most recent bar. Callers must check Empty first.
func (s *Series) Last() Bar { return s.Bars[len(s.Bars)-1] }

// Closes returns the close column.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volume column.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Normalize sorts bars by date and drops duplicate dates, keeping the
// last-seen bar for each date.
func (s *Series) Normalize() {
	if len(s.Bars) < 2 {
		return
	}
	sort.SliceStable(s.Bars, func(i, j int) bool {
		return s.Bars[i].Date.Before(s.Bars[j].Date)
	})
	out := s.Bars[:0]
	for _, b := range s.Bars {
		if len(out) > 0 && sameDay(out[len(out)-1].Date, b.Date) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	s.Bars = out
}

// Valid reports whether every price/volume field is finite.
func (s *Series) Valid() bool {
	for _, b := range s.Bars {
		for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
