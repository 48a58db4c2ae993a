package strategy

import (
	"time"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// ShrinkBreakout detects the five-stage sequence
// decline -> consolidation -> limit-up -> second consolidation on drying volume
// -> low-volume breakout. It models a breakout after selling pressure has been
// absorbed rather than one announced by a volume surge.
type ShrinkBreakout struct{}

func (ShrinkBreakout) ID() string { return StrategyShrinkBreakout }

func (ShrinkBreakout) MinBars(cfg *Config) int {
	s := cfg.ShrinkBreakout
	min := s.MinDeclineBars + s.MinConsolidationBars + 1 + s.MinSecondConsolBars + 1
	if m := s.VolumeMALong + 1; m > min {
		min = m
	}
	return min
}

func (d ShrinkBreakout) Evaluate(series *model.BarSeries, cfg *Config) *model.PatternMatch {
	sc := cfg.ShrinkBreakout
	if series.Len() < d.MinBars(cfg) {
		return nil
	}
	w := trailWindow(series.Bars, sc.WindowBars)

	breakoutIdx := len(w) - 1
	bk := w[breakoutIdx]
	if !bk.Bullish() {
		return nil
	}

	base, ok := scanBaseStages(w, series.InstrumentID, baseParams{
		minDeclineBars:       sc.MinDeclineBars,
		declinePct:           sc.DeclinePct,
		volatilityRatio:      sc.VolatilityRatio,
		minConsolidationBars: sc.MinConsolidationBars,
		limitUpPct:           sc.LimitUpPct,
		limitUpChiNextPct:    sc.LimitUpChiNextPct,
		limitUpTolerance:     sc.LimitUpTolerance,
	})
	if !ok {
		return nil
	}
	lu := w[base.limitUpIdx]

	// Stage 4': second consolidation. Range-bound, closes holding the
	// limit-up close, per-bar volume capped by the shrunk baseline.
	secondStart := base.limitUpIdx + 1
	second := w[secondStart:breakoutIdx]
	if len(second) < sc.MinSecondConsolBars {
		return nil
	}
	preAvgVolume := calculator.TrailingAvgVolume(w[:base.limitUpIdx], sc.TrailingVolumeBars)
	if preAvgVolume == 0 {
		return nil
	}
	maxClose := second[0].Close
	shrunkVolume := 0.0
	for _, b := range second {
		if calculator.RangeRatio(b) >= sc.VolatilityRatio {
			return nil
		}
		if b.Close < lu.Close {
			return nil // support broken
		}
		if b.Volume > sc.VolumeShrinkRatio*preAvgVolume {
			return nil
		}
		if b.Close > maxClose {
			maxClose = b.Close
		}
		shrunkVolume += b.Volume
	}
	shrunkBaseline := shrunkVolume / float64(len(second))
	if shrunkBaseline == 0 {
		return nil
	}

	// Stage 5': breakout above the second consolidation on modest volume.
	if bk.Close <= maxClose {
		return nil
	}
	if bk.Volume < sc.BreakoutVolumeFloor*shrunkBaseline {
		return nil
	}

	// Volume dry-up confirmation: short volume MA under the long one.
	maShort := calculator.TrailingAvgVolume(w[:breakoutIdx+1], sc.VolumeMAShort)
	maLong := calculator.TrailingAvgVolume(w[:breakoutIdx+1], sc.VolumeMALong)
	if maLong == 0 || maShort >= maLong {
		return nil
	}
	volMARatio := maShort / maLong

	luChange := calculator.ChangePct(w[base.limitUpIdx-1].Close, lu.Close)
	secondAmp := closeAmplitude(second)
	bkChange := calculator.ChangePct(bk.Open, bk.Close)
	shape := limitUpShape(lu)

	return &model.PatternMatch{
		InstrumentID: series.InstrumentID,
		Name:         series.Name,
		StrategyID:   StrategyShrinkBreakout,
		MatchDate:    bk.Date,
		WindowDates: []time.Time{
			w[0].Date, w[base.consolStart].Date, lu.Date, w[secondStart].Date, bk.Date,
		},
		Score: shrinkBreakoutScore(base.declinePct, base.limitUpIdx-base.consolStart,
			shape, secondAmp, volMARatio, bkChange),
		Metrics: map[string]float64{
			"decline_pct":           base.declinePct,
			"consolidation_bars":    float64(base.limitUpIdx - base.consolStart),
			"limit_up_change":       luChange,
			"second_consol_bars":    float64(len(second)),
			"second_consol_amp":     secondAmp,
			"breakout_volume_ratio": bk.Volume / shrunkBaseline,
			"volume_ma_ratio":       volMARatio,
			"breakout_change":       bkChange,
		},
		Tags: map[string]string{
			"limit_up_shape": shape,
		},
	}
}

// limitUpShape classifies how the limit-up session traded.
func limitUpShape(b model.Bar) string {
	switch {
	case b.Open == b.Close && b.Close == b.High:
		return "一字板"
	case b.Open == b.Low && b.Close == b.High:
		return "T字板"
	default:
		return "普通涨停"
	}
}

// shrinkBreakoutScore grades a confirmed shrink breakout 0~100 from a base of 40.
func shrinkBreakoutScore(declinePct float64, consolBars int, shape string, secondAmp, volMARatio, bkChange float64) int {
	score := 40.0
	score += linearMap(float64(consolBars), 6, 40, 0, 10)
	score += linearMap(declinePct*100, 8, 30, 0, 10)
	if shape == "一字板" || shape == "T字板" {
		score += 8
	} else {
		score += 5
	}
	amp := secondAmp * 100
	switch {
	case amp < 5:
		score += 8
	case amp < 8:
		score += 5
	case amp < 10:
		score += 3
	}
	switch {
	case volMARatio < 0.5:
		score += 10
	case volMARatio < 0.6:
		score += 8
	case volMARatio < 0.7:
		score += 6
	case volMARatio < 0.8:
		score += 4
	case volMARatio < 0.9:
		score += 2
	}
	change := bkChange * 100
	if change >= 2 && change <= 5 {
		score += 8
	} else if change > 5 && change <= 8 {
		score += 5
	}
	score += 6 // support held through the second consolidation
	return clampScore(score)
}
