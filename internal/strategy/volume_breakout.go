package strategy

import (
	"time"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// VolumeBreakout detects the five-stage sequence
// decline -> consolidation -> limit-up -> pullback -> volume-confirmed breakout,
// evaluated at the most recent bar.
type VolumeBreakout struct{}

func (VolumeBreakout) ID() string { return StrategyVolumeBreakout }

func (VolumeBreakout) MinBars(cfg *Config) int {
	v := cfg.VolumeBreakout
	return v.MinDeclineBars + v.MinConsolidationBars + 1 + v.MinPullbackBars + 1
}

func (d VolumeBreakout) Evaluate(series *model.BarSeries, cfg *Config) *model.PatternMatch {
	vc := cfg.VolumeBreakout
	if series.Len() < d.MinBars(cfg) {
		return nil
	}
	w := trailWindow(series.Bars, vc.WindowBars)

	// The breakout must land on the series' most recent bar, and it must be bullish.
	breakoutIdx := len(w) - 1
	bk := w[breakoutIdx]
	if !bk.Bullish() {
		return nil
	}

	base, ok := scanBaseStages(w, series.InstrumentID, baseParams{
		minDeclineBars:       vc.MinDeclineBars,
		declinePct:           vc.DeclinePct,
		volatilityRatio:      vc.VolatilityRatio,
		minConsolidationBars: vc.MinConsolidationBars,
		limitUpPct:           vc.LimitUpPct,
		limitUpChiNextPct:    vc.LimitUpChiNextPct,
		limitUpTolerance:     vc.LimitUpTolerance,
	})
	if !ok {
		return nil
	}

	// Stage 3 extras: the limit-up bar must be a genuine bullish bar, not a
	// one-tick board that never traded through its range.
	lu := w[base.limitUpIdx]
	luBody := calculator.BodyToRangeRatio(lu)
	if !lu.Bullish() || luBody < vc.LimitUpBodyRatio {
		return nil
	}

	// Stage 4: pullback between limit-up and breakout.
	pullStart := base.limitUpIdx + 1
	pullback := w[pullStart:breakoutIdx]
	if len(pullback) < vc.MinPullbackBars {
		return nil
	}
	retraced := false
	pullVolume := 0.0
	for _, b := range pullback {
		if b.Close < base.consolLow {
			return nil // closed through the pre-limit-up floor
		}
		if b.Close < lu.Close {
			retraced = true
		}
		pullVolume += b.Volume
	}
	if !retraced {
		return nil
	}
	preAvgVolume := calculator.TrailingAvgVolume(w[:base.limitUpIdx], vc.TrailingVolumeBars)
	if preAvgVolume == 0 {
		return nil
	}
	pullVolRatio := pullVolume / float64(len(pullback)) / preAvgVolume
	if pullVolRatio >= 1 {
		return nil
	}

	// Stage 5: breakout above the limit-up high on expanded volume.
	if bk.Close <= lu.High {
		return nil
	}
	trailAvg := calculator.TrailingAvgVolume(w[:breakoutIdx], vc.TrailingVolumeBars)
	if trailAvg == 0 {
		return nil
	}
	bkVolRatio := bk.Volume / trailAvg
	if bkVolRatio < vc.VolumeExpandRatio {
		return nil
	}

	luChange := calculator.ChangePct(w[base.limitUpIdx-1].Close, lu.Close)
	luVolRatio := calculator.VolumeRatio(w, base.limitUpIdx, vc.TrailingVolumeBars)
	bkStrength := calculator.ChangePct(lu.High, bk.Close)
	bkBody := calculator.BodyToRangeRatio(bk)
	pullTightness := closeAmplitude(pullback)

	return &model.PatternMatch{
		InstrumentID: series.InstrumentID,
		Name:         series.Name,
		StrategyID:   StrategyVolumeBreakout,
		MatchDate:    bk.Date,
		WindowDates: []time.Time{
			w[0].Date, w[base.consolStart].Date, lu.Date, w[pullStart].Date, bk.Date,
		},
		Score: volumeBreakoutScore(base.declinePct, base.limitUpIdx-base.consolStart,
			luBody, luVolRatio, pullTightness, len(pullback), bkVolRatio, bkBody),
		Metrics: map[string]float64{
			"decline_pct":           base.declinePct,
			"consolidation_bars":    float64(base.limitUpIdx - base.consolStart),
			"limit_up_change":       luChange,
			"limit_up_body_ratio":   luBody,
			"limit_up_volume_ratio": luVolRatio,
			"pullback_bars":         float64(len(pullback)),
			"pullback_volume_ratio": pullVolRatio,
			"pullback_amplitude":    pullTightness,
			"breakout_volume_ratio": bkVolRatio,
			"breakout_strength":     bkStrength,
		},
	}
}

// closeAmplitude returns (max close - min close) / mean close over the bars.
func closeAmplitude(bars []model.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	min, max, sum := bars[0].Close, bars[0].Close, 0.0
	for _, b := range bars {
		if b.Close < min {
			min = b.Close
		}
		if b.Close > max {
			max = b.Close
		}
		sum += b.Close
	}
	mean := sum / float64(len(bars))
	if mean == 0 {
		return 0
	}
	return (max - min) / mean
}

// volumeBreakoutScore grades a confirmed breakout 0~100 across seven aspects.
func volumeBreakoutScore(declinePct float64, consolBars int, luBody, luVol, pullAmp float64, pullBars int, bkVol, bkBody float64) int {
	score := 0.0
	score += linearMap(declinePct*100, 8, 40, 0, 15)
	score += linearMap(float64(consolBars), 6, 40, 0, 10)
	score += linearMap(luBody, 0.6, 1.0, 0, 10)
	score += linearMap(luVol, 1, 4, 0, 10)
	amp := pullAmp * 100
	if amp <= 5 {
		score += 15
	} else if amp <= 10 {
		score += linearMap(amp, 10, 5, 0, 15)
	}
	score += linearMap(float64(pullBars), 3, 15, 0, 10)
	score += linearMap(bkVol, 1, 3, 0, 15)
	score += linearMap(bkBody, 0.3, 0.9, 0, 15)
	return clampScore(score)
}
