package model

import "time"

// Bar represents a single daily candlestick session.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool { return b.Close < b.Open }

// BarSeries holds the ordered daily history for one instrument,
// ascending by date with no duplicate dates. Detectors never mutate it.
type BarSeries struct {
	InstrumentID string
	Name         string
	Bars         []Bar
	FetchedAt    time.Time
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar. The caller must ensure the series is non-empty.
func (s *BarSeries) Last() Bar { return s.Bars[len(s.Bars)-1] }
