package model

import "time"

// PatternMatch asserts that a strategy's full ordered stage sequence was found
// ending at MatchDate. Immutable once created.
type PatternMatch struct {
	InstrumentID string             `json:"instrument_id"`
	Name         string             `json:"name"`
	StrategyID   string             `json:"strategy_id"`
	MatchDate    time.Time          `json:"match_date"`
	WindowDates  []time.Time        `json:"window_dates,omitempty"` // stage boundary dates, oldest first
	Score        int                `json:"score"`                  // 0~100
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	Tags         map[string]string  `json:"tags,omitempty"` // non-numeric detail, e.g. limit-up shape
}

// InstrumentError records one instrument that could not be screened.
type InstrumentError struct {
	InstrumentID string `json:"instrument_id"`
	Reason       string `json:"reason"`
}

// ScreeningResult is the final output of one screening run.
// Matches keep universe order, strategy-declaration order within an instrument.
type ScreeningResult struct {
	RunID        string            `json:"run_id"`
	RunDate      time.Time         `json:"run_date"`
	UniverseSize int               `json:"universe_size"`
	Matches      []PatternMatch    `json:"matches"`
	Errors       []InstrumentError `json:"errors,omitempty"`
	Elapsed      time.Duration     `json:"elapsed"`
}

// MatchesByStrategy groups matches by strategy ID, preserving order.
func (r *ScreeningResult) MatchesByStrategy() map[string][]PatternMatch {
	out := make(map[string][]PatternMatch)
	for _, m := range r.Matches {
		out[m.StrategyID] = append(out[m.StrategyID], m)
	}
	return out
}
