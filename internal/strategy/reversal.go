package strategy

import (
	"time"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// Reversal detects the three-day reversal shape: a small bearish bar, a larger
// bearish bar, then a bar that opens at or below the second close and reverses
// bullishly above it, all after a net-declining prefix.
type Reversal struct{}

func (Reversal) ID() string { return StrategyReversal }

func (Reversal) MinBars(cfg *Config) int { return 3 + cfg.Reversal.LookbackBars }

func (r Reversal) Evaluate(series *model.BarSeries, cfg *Config) *model.PatternMatch {
	rc := cfg.Reversal
	n := series.Len()
	if n < r.MinBars(cfg) {
		return nil
	}

	b1 := series.Bars[n-3]
	b2 := series.Bars[n-2]
	b3 := series.Bars[n-1]
	if b1.Open == 0 || b2.Open == 0 || b2.Close == 0 || b3.Open == 0 {
		return nil
	}

	// Prior downtrend: closes net negative over the lookback prefix.
	prefix := series.Bars[n-3-rc.LookbackBars : n-3]
	priorDecline := calculator.NetCloseChange(prefix)
	if priorDecline >= 0 || -priorDecline < rc.PriorDeclinePct {
		return nil
	}

	// b1: small bearish body.
	b1Body := calculator.BodyRatio(b1)
	if !b1.Bearish() || b1Body >= rc.SmallBodyRatio {
		return nil
	}

	// b2: bearish with a decline larger than both the threshold and b1's.
	b2Body := calculator.BodyRatio(b2)
	if !b2.Bearish() || b2Body <= rc.LargeDeclinePct || b2Body <= b1Body {
		return nil
	}

	// b3: gap-down or flat open, bullish close above b2's close.
	gapDown := calculator.ChangePct(b2.Close, b3.Open)
	if gapDown > 0 {
		return nil
	}
	if !b3.Bullish() || b3.Close <= b2.Close {
		return nil
	}

	// Wick filter: long upper shadows on any of the three bars kill the signal.
	maxShadow := calculator.UpperShadowRatio(b1)
	if s := calculator.UpperShadowRatio(b2); s > maxShadow {
		maxShadow = s
	}
	if s := calculator.UpperShadowRatio(b3); s > maxShadow {
		maxShadow = s
	}
	if maxShadow > rc.MaxUpperShadowRatio {
		return nil
	}

	b3Strength := calculator.ChangePct(b2.Close, b3.Close)
	b3Change := calculator.ChangePct(b3.Open, b3.Close)
	bearContrast := 0.0
	if b1Body > 0 {
		bearContrast = b2Body / b1Body
	}
	b2Gap := calculator.ChangePct(b1.Close, b2.Open)
	notEngulfed := !(b2.High >= b1.High && b2.Low <= b1.Low)
	aboveB1Open := 0.0
	if b3.Close > b1.Open {
		aboveB1Open = 1.0
	}

	return &model.PatternMatch{
		InstrumentID: series.InstrumentID,
		Name:         series.Name,
		StrategyID:   StrategyReversal,
		MatchDate:    b3.Date,
		WindowDates:  []time.Time{b1.Date, b2.Date, b3.Date},
		Score:        reversalScore(b2Body, gapDown, b3Change, bearContrast, b2Gap, maxShadow, notEngulfed),
		Metrics: map[string]float64{
			"b1_body_ratio":    b1Body,
			"b2_body_ratio":    b2Body,
			"b3_strength":      b3Strength,
			"gap_down":         gapDown,
			"bear_contrast":    bearContrast,
			"max_upper_shadow": maxShadow,
			"prior_decline":    priorDecline,
			"above_b1_open":    aboveB1Open,
		},
	}
}

// reversalScore grades a confirmed reversal 0~100 from a base of 40.
func reversalScore(b2Body, gapDown, b3Change, contrast, b2Gap, maxShadow float64, notEngulfed bool) int {
	score := 40.0
	if extra := b2Body*100 - 3; extra > 0 {
		if extra > 5 {
			extra = 5
		}
		score += extra * 2
	}
	if g := -gapDown * 100; g > 0 {
		if g > 3 {
			g = 3
		}
		score += g * 2
	}
	if notEngulfed {
		score += 8
	}
	if b2Gap < 0 {
		g := -b2Gap * 100
		if g > 2 {
			g = 2
		}
		score += g * 5
	}
	switch {
	case b3Change <= 0.03:
		score += 8
	case b3Change <= 0.05:
		score += 4
	}
	if c := contrast - 1.5; c > 0 {
		if c > 3 {
			c = 3
		}
		score += c * 3.33
	}
	switch {
	case maxShadow <= 0.10:
		score += 8
	case maxShadow <= 0.20:
		score += 5
	case maxShadow <= 0.30:
		score += 2
	}
	return clampScore(score)
}
