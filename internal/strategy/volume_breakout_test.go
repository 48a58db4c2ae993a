package strategy

import (
	"math"
	"testing"
)

func TestVolumeBreakout_Fires(t *testing.T) {
	cfg := DefaultConfig()
	series := volumeBreakoutFixture()
	m := (VolumeBreakout{}).Evaluate(series, cfg)
	if m == nil {
		t.Fatal("expected a match")
	}
	if !m.MatchDate.Equal(series.Last().Date) {
		t.Errorf("match date %v, want breakout bar %v", m.MatchDate, series.Last().Date)
	}
	if len(m.WindowDates) != 5 {
		t.Errorf("expected 5 stage dates, got %d", len(m.WindowDates))
	}
	checks := map[string]float64{
		"decline_pct":           0.08,
		"consolidation_bars":    6,
		"limit_up_change":       0.10,
		"pullback_bars":         4,
		"pullback_volume_ratio": 0.6,
		"breakout_volume_ratio": 2.2,
	}
	for name, want := range checks {
		if got := m.Metrics[name]; math.Abs(got-want) > 1e-6 {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestVolumeBreakout_ExpandRatioMonotonic(t *testing.T) {
	// Tightening volume_expand_ratio must never turn a non-match into a match.
	series := volumeBreakoutFixture()
	matchedBefore := true
	for ratio := 1.0; ratio <= 4.0; ratio += 0.25 {
		cfg := DefaultConfig()
		cfg.VolumeBreakout.VolumeExpandRatio = ratio
		matched := (VolumeBreakout{}).Evaluate(series, cfg) != nil
		if matched && !matchedBefore {
			t.Fatalf("non-match at a looser ratio became a match at %v", ratio)
		}
		matchedBefore = matched
	}
	loose := DefaultConfig()
	loose.VolumeBreakout.VolumeExpandRatio = 1.0
	if (VolumeBreakout{}).Evaluate(series, loose) == nil {
		t.Error("expected a match at ratio 1.0")
	}
	tight := DefaultConfig()
	tight.VolumeBreakout.VolumeExpandRatio = 3.0
	if (VolumeBreakout{}).Evaluate(series, tight) != nil {
		t.Error("expected no match at ratio 3.0 (breakout volume is 2.2x)")
	}
}

func TestVolumeBreakout_StageRejections(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("pullback closes through the floor", func(t *testing.T) {
		series := volumeBreakoutFixture()
		b := &series.Bars[14] // second pullback bar
		b.Close = 9.0         // below the 9.15 consolidation low
		b.Open, b.High, b.Low = 9.2, 9.25, 8.95
		if (VolumeBreakout{}).Evaluate(series, cfg) != nil {
			t.Error("expected rejection on floor violation")
		}
	})

	t.Run("breakout below limit-up high", func(t *testing.T) {
		series := volumeBreakoutFixture()
		b := &series.Bars[17]
		b.Close = 10.1 // under the 10.15 limit-up high
		b.High = 10.12
		if (VolumeBreakout{}).Evaluate(series, cfg) != nil {
			t.Error("expected rejection without a true breakout")
		}
	})

	t.Run("pullback volume not contracted", func(t *testing.T) {
		series := volumeBreakoutFixture()
		for i := 13; i <= 16; i++ {
			series.Bars[i].Volume = 1500
		}
		if (VolumeBreakout{}).Evaluate(series, cfg) != nil {
			t.Error("expected rejection when pullback volume expands")
		}
	})

	t.Run("one-tick limit-up board", func(t *testing.T) {
		series := volumeBreakoutFixture()
		b := &series.Bars[12]
		b.Open, b.High, b.Low, b.Close = 10.12, 10.12, 10.12, 10.12
		if (VolumeBreakout{}).Evaluate(series, cfg) != nil {
			t.Error("expected rejection of a board that never traded its range")
		}
	})

	t.Run("no decline stage", func(t *testing.T) {
		series := volumeBreakoutFixture()
		for i := 0; i < 6; i++ {
			series.Bars[i] = wideBar(9.3, 2000)
			series.Bars[i].Date = testEpoch.AddDate(0, 0, i)
		}
		if (VolumeBreakout{}).Evaluate(series, cfg) != nil {
			t.Error("expected rejection without the decline stage")
		}
	})
}

func TestVolumeBreakout_ChiNextCap(t *testing.T) {
	cfg := DefaultConfig()
	series := volumeBreakoutFixture()
	// Same prices under a ChiNext code: +10% is nowhere near the 20% cap.
	series.InstrumentID = "300002"
	if (VolumeBreakout{}).Evaluate(series, cfg) != nil {
		t.Error("expected no match for a ChiNext code at a main-board cap move")
	}
}
