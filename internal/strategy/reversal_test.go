package strategy

import (
	"math"
	"testing"

	"StockScreener/internal/model"
)

func TestReversal_Fires(t *testing.T) {
	cfg := DefaultConfig()
	series := reversalFixture()
	m := Reversal{}.Evaluate(series, cfg)
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.StrategyID != StrategyReversal {
		t.Errorf("strategy = %s", m.StrategyID)
	}
	if !m.MatchDate.Equal(series.Last().Date) {
		t.Errorf("match date %v, want last bar %v", m.MatchDate, series.Last().Date)
	}
	if len(m.WindowDates) != 3 {
		t.Errorf("expected 3 window dates, got %d", len(m.WindowDates))
	}
	if got := m.Metrics["b1_body_ratio"]; math.Abs(got-0.02) > 1e-9 {
		t.Errorf("b1_body_ratio = %v, want 0.02", got)
	}
	// b3 closed at 9.6, below b1's open of 10.0: weak signal only.
	if m.Metrics["above_b1_open"] != 0 {
		t.Error("expected above_b1_open = 0")
	}
	if m.Score <= 0 || m.Score > 100 {
		t.Errorf("score out of range: %d", m.Score)
	}
}

func TestReversal_NoFireWhenB3ClosesBelowB2Close(t *testing.T) {
	cfg := DefaultConfig()
	series := reversalFixture()
	// Same shape but the third bar closes at 9.05, below b2's 9.2 close.
	last := len(series.Bars) - 1
	series.Bars[last].Close = 9.05
	series.Bars[last].High = 9.12
	if m := (Reversal{}).Evaluate(series, cfg); m != nil {
		t.Fatal("expected no match when b3 fails the reversal strength test")
	}
}

func TestReversal_NoFireWithoutPriorDowntrend(t *testing.T) {
	cfg := DefaultConfig()
	series := reversalFixture()
	// Rising prefix kills the setup.
	for i, c := range []float64{10.0, 10.1, 10.2, 10.3, 10.4} {
		series.Bars[i] = flatBar(c, 1000)
		series.Bars[i].Date = testEpoch.AddDate(0, 0, i)
	}
	if m := (Reversal{}).Evaluate(series, cfg); m != nil {
		t.Fatal("expected no match without a declining prefix")
	}
}

func TestReversal_StageRejections(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name   string
		mutate func(bars []model.Bar)
	}{
		{"b1 bullish", func(b []model.Bar) {
			b[5].Open, b[5].Close = 9.8, 10.0
		}},
		{"b1 body too large", func(b []model.Bar) {
			b[5].Close = 9.6 // 4% body
			b[5].Low = 9.55
		}},
		{"b2 decline smaller than b1", func(b []model.Bar) {
			b[6].Close = 9.65 // 1.5% body, under b1's implied magnitude ordering
			b[6].Low = 9.6
		}},
		{"b3 gaps up", func(b []model.Bar) {
			b[7].Open = 9.3 // above b2's 9.2 close
		}},
		{"long upper shadow", func(b []model.Bar) {
			b[7].High = 11.0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := reversalFixture()
			tt.mutate(series.Bars)
			if m := (Reversal{}).Evaluate(series, cfg); m != nil {
				t.Errorf("expected no match")
			}
		})
	}
}

func TestReversal_StrongSignalMetric(t *testing.T) {
	cfg := DefaultConfig()
	series := reversalFixture()
	// Push b3's close above b1's open: still one match, stronger metric.
	last := len(series.Bars) - 1
	series.Bars[last].Close = 10.05
	series.Bars[last].High = 10.1
	m := Reversal{}.Evaluate(series, cfg)
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Metrics["above_b1_open"] != 1 {
		t.Error("expected above_b1_open = 1")
	}
}
