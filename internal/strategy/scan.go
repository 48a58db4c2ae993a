package strategy

import (
	"math"
	"strings"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// baseParams are the stage thresholds shared by the two breakout detectors.
type baseParams struct {
	minDeclineBars       int
	declinePct           float64
	volatilityRatio      float64
	minConsolidationBars int
	limitUpPct           float64
	limitUpChiNextPct    float64
	limitUpTolerance     float64
}

// baseStages marks the boundaries found by the shared forward scan.
type baseStages struct {
	consolStart int // first consolidation bar
	limitUpIdx  int // the single limit-up bar
	consolLow   float64
	declinePct  float64 // realized net decline, positive fraction
}

// limitUpCap returns the instrument's daily price-move cap. ChiNext listings
// (3xxxxx) trade under a wider cap than the main boards.
func limitUpCap(instrumentID string, p baseParams) float64 {
	if strings.HasPrefix(instrumentID, "3") {
		return p.limitUpChiNextPct
	}
	return p.limitUpPct
}

// isLimitUp reports whether the bar closed within tolerance of the daily cap
// above the prior close.
func isLimitUp(b model.Bar, prevClose float64, capPct float64, tolerance float64) bool {
	if prevClose == 0 {
		return false
	}
	change := calculator.ChangePct(prevClose, b.Close)
	return math.Abs(change-capPct) <= tolerance
}

// scanBaseStages runs the shared Decline -> Consolidation -> LimitUp forward
// pass over the window. One pass, no backtracking: a stage commits on the
// first bar satisfying the next stage's entry condition after the stage's
// minimum length, and any violation afterwards rejects the whole window.
func scanBaseStages(w []model.Bar, instrumentID string, p baseParams) (baseStages, bool) {
	capPct := limitUpCap(instrumentID, p)

	// Stage 1: decline. Commits when a calm bar appears after the minimum
	// length with the net decline threshold met.
	consolStart := -1
	for i := p.minDeclineBars; i < len(w); i++ {
		if calculator.RangeRatio(w[i]) >= p.volatilityRatio {
			continue
		}
		if net := calculator.NetCloseChange(w[:i]); net <= -p.declinePct {
			consolStart = i
			break
		}
	}
	if consolStart < 0 {
		return baseStages{}, false
	}
	realizedDecline := -calculator.NetCloseChange(w[:consolStart])

	// Stage 2: consolidation. Every bar stays below the volatility ceiling
	// until a limit-up bar commits the next stage.
	consolLow := math.Inf(1)
	limitUpIdx := -1
	for i := consolStart; i < len(w); i++ {
		if i-consolStart >= p.minConsolidationBars && isLimitUp(w[i], w[i-1].Close, capPct, p.limitUpTolerance) {
			limitUpIdx = i
			break
		}
		if calculator.RangeRatio(w[i]) >= p.volatilityRatio {
			return baseStages{}, false
		}
		if w[i].Low < consolLow {
			consolLow = w[i].Low
		}
	}
	if limitUpIdx < 0 {
		return baseStages{}, false
	}

	return baseStages{
		consolStart: consolStart,
		limitUpIdx:  limitUpIdx,
		consolLow:   consolLow,
		declinePct:  realizedDecline,
	}, true
}

// trailWindow returns the trailing evaluation window of at most n bars.
func trailWindow(bars []model.Bar, n int) []model.Bar {
	if len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}
