package models

import (
	"math"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeSortsAndDedupes(t *testing.T) {
	s := &Series{Bars: []Bar{
		{Date: day(3), Close: 103},
		{Date: day(1), Close: 101},
		{Date: day(2), Close: 102},
		{Date: day(1), Close: 111}, // later bar for the same day wins
	}}
	s.Normalize()

	if s.Len() != 3 {
		t.Fatalf("expected 3 bars after dedupe, got %d", s.Len())
	}
	if s.Bars[0].Close != 111 {
		t.Fatalf("duplicate day must keep the last-seen bar, got %v", s.Bars[0].Close)
	}
	for i := 1; i < s.Len(); i++ {
		if !s.Bars[i-1].Date.Before(s.Bars[i].Date) {
			t.Fatalf("bars not strictly ascending at %d", i)
		}
	}
}

func TestSeriesValid(t *testing.T) {
	s := &Series{Bars: []Bar{{Date: day(1), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}}}
	if !s.Valid() {
		t.Fatalf("finite series must be valid")
	}
	s.Bars[0].High = math.Inf(1)
	if s.Valid() {
		t.Fatalf("infinite field must invalidate the series")
	}
}

func TestMergeIntoLatestSameDay(t *testing.T) {
	s := &Series{Bars: []Bar{{Date: day(1), Open: 100, High: 104, Low: 98, Close: 102, Volume: 500}}}
	q := &Quote{LastPrice: 106, High: 107, Low: 99, Volume: 800}

	q.MergeIntoLatest(s, day(1).Add(15*time.Hour))
	if s.Len() != 1 {
		t.Fatalf("same-day merge must not append, got %d bars", s.Len())
	}
	b := s.Bars[0]
	if b.Close != 106 || b.High != 107 || b.Low != 98 || b.Volume != 800 {
		t.Fatalf("unexpected merged bar %+v", b)
	}
}

func TestMergeIntoLatestNewDay(t *testing.T) {
	s := &Series{Bars: []Bar{{Date: day(1), Close: 102}}}
	q := &Quote{LastPrice: 106, Open: 103, High: 107, Low: 101, Volume: 800}

	q.MergeIntoLatest(s, day(2).Add(10*time.Hour))
	if s.Len() != 2 {
		t.Fatalf("new-day merge must append, got %d bars", s.Len())
	}
	if s.Last().Close != 106 || s.Last().Open != 103 {
		t.Fatalf("unexpected appended bar %+v", s.Last())
	}
}

func TestMergeIntoLatestIgnoresBadQuote(t *testing.T) {
	s := &Series{Bars: []Bar{{Date: day(1), Close: 102}}}
	(&Quote{LastPrice: 0}).MergeIntoLatest(s, day(1))
	if s.Last().Close != 102 {
		t.Fatalf("zero-price quote must be ignored")
	}

	var q *Quote
	q.MergeIntoLatest(s, day(1)) // nil receiver is a no-op
}

func TestTechnicalSignalsEmpty(t *testing.T) {
	var sig *TechnicalSignals
	if !sig.Empty() {
		t.Fatalf("nil snapshot is empty")
	}
	if !(&TechnicalSignals{}).Empty() {
		t.Fatalf("zero snapshot is empty")
	}
	obv := 1.0
	if (&TechnicalSignals{OBV: &obv}).Empty() {
		t.Fatalf("snapshot with any section is not empty")
	}
}
