package strategy

import "StockScreener/internal/model"

// Strategy IDs, in declaration order.
const (
	StrategyReversal       = "reversal"
	StrategyVolumeBreakout = "volume_breakout"
	StrategyShrinkBreakout = "shrink_breakout"
)

// DisplayName returns the Chinese report name for a strategy ID.
func DisplayName(id string) string {
	switch id {
	case StrategyReversal:
		return "三日反转"
	case StrategyVolumeBreakout:
		return "放量突破"
	case StrategyShrinkBreakout:
		return "缩量突破"
	}
	return id
}

// Detector classifies a series evaluated at its most recent bar.
// Implementations are pure and stateless: for a fixed series and config the
// result is identical across repeated evaluations, and a valid-shaped series
// always yields a definite match-or-nil, never a panic.
type Detector interface {
	ID() string
	// MinBars is the fewest bars the detector can possibly match on.
	MinBars(cfg *Config) int
	Evaluate(series *model.BarSeries, cfg *Config) *model.PatternMatch
}

// Detectors returns the three detectors in declaration order.
func Detectors() []Detector {
	return []Detector{Reversal{}, VolumeBreakout{}, ShrinkBreakout{}}
}

// EvaluateAll runs every detector against the series and returns the produced
// matches in declaration order. Detectors do not interfere with each other.
func EvaluateAll(series *model.BarSeries, cfg *Config) []model.PatternMatch {
	var matches []model.PatternMatch
	for _, d := range Detectors() {
		if m := d.Evaluate(series, cfg); m != nil {
			matches = append(matches, *m)
		}
	}
	return matches
}

// MinBarsRequired returns the smallest series length any detector can work
// with; shorter series cannot match any strategy.
func MinBarsRequired(cfg *Config) int {
	min := 0
	for _, d := range Detectors() {
		if n := d.MinBars(cfg); min == 0 || n < min {
			min = n
		}
	}
	return min
}

// linearMap maps value from [low, high] onto [scoreLow, scoreHigh], clamped.
func linearMap(value, low, high, scoreLow, scoreHigh float64) float64 {
	if high == low {
		if value >= high {
			return scoreHigh
		}
		return scoreLow
	}
	ratio := (value - low) / (high - low)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return scoreLow + ratio*(scoreHigh-scoreLow)
}

func clampScore(score float64) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return int(score + 0.5)
}
