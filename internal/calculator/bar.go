package calculator

import "StockScreener/internal/model"

// ChangePct returns the fractional change from prev to cur. Returns 0 when prev is 0.
func ChangePct(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev
}

// BodyRatio returns the bar's body size relative to its open, as a fraction.
func BodyRatio(b model.Bar) float64 {
	if b.Open == 0 {
		return 0
	}
	r := (b.Close - b.Open) / b.Open
	if r < 0 {
		r = -r
	}
	return r
}

// BodyToRangeRatio returns the body size relative to the full high-low range.
// A one-tick bar (zero range) yields 0.
func BodyToRangeRatio(b model.Bar) float64 {
	total := b.High - b.Low
	if total == 0 {
		return 0
	}
	body := b.Close - b.Open
	if body < 0 {
		body = -body
	}
	return body / total
}

// UpperShadowRatio returns the upper wick's share of the full bar range, 0~1.
func UpperShadowRatio(b model.Bar) float64 {
	total := b.High - b.Low
	if total == 0 {
		return 0
	}
	bodyTop := b.Open
	if b.Close > bodyTop {
		bodyTop = b.Close
	}
	return (b.High - bodyTop) / total
}

// RangeRatio returns the bar's high-low range relative to its close,
// the per-bar volatility measure used by consolidation stages.
func RangeRatio(b model.Bar) float64 {
	if b.Close == 0 {
		return 0
	}
	return (b.High - b.Low) / b.Close
}

// NetCloseChange returns the fractional close-to-close change across the
// given bars, first to last. Returns 0 for fewer than 2 bars.
func NetCloseChange(bars []model.Bar) float64 {
	if len(bars) < 2 {
		return 0
	}
	return ChangePct(bars[0].Close, bars[len(bars)-1].Close)
}
