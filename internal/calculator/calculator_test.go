package calculator

import (
	"math"
	"testing"

	"StockScreener/internal/model"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCalculateSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}

	ma, err := CalculateSMA(values, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(ma, 5) {
		t.Errorf("SMA(3) = %v, want 5", ma)
	}

	if _, err := CalculateSMA(values, 0); err == nil {
		t.Error("expected error for zero period")
	}
	if _, err := CalculateSMA(values[:2], 3); err == nil {
		t.Error("expected error for short input")
	}
}

func TestBarRatios(t *testing.T) {
	b := model.Bar{Open: 10.0, High: 10.5, Low: 9.5, Close: 10.2}

	if got := BodyRatio(b); !almostEqual(got, 0.02) {
		t.Errorf("BodyRatio = %v, want 0.02", got)
	}
	if got := BodyToRangeRatio(b); !almostEqual(got, 0.2) {
		t.Errorf("BodyToRangeRatio = %v, want 0.2", got)
	}
	if got := UpperShadowRatio(b); !almostEqual(got, 0.3) {
		t.Errorf("UpperShadowRatio = %v, want 0.3", got)
	}
	if got := RangeRatio(b); !almostEqual(got, 1.0/10.2) {
		t.Errorf("RangeRatio = %v, want %v", got, 1.0/10.2)
	}

	oneTick := model.Bar{Open: 10, High: 10, Low: 10, Close: 10}
	if got := BodyToRangeRatio(oneTick); got != 0 {
		t.Errorf("one-tick BodyToRangeRatio = %v, want 0", got)
	}
	if got := UpperShadowRatio(oneTick); got != 0 {
		t.Errorf("one-tick UpperShadowRatio = %v, want 0", got)
	}
}

func TestChangePct(t *testing.T) {
	if got := ChangePct(10, 11); !almostEqual(got, 0.1) {
		t.Errorf("ChangePct = %v, want 0.1", got)
	}
	if got := ChangePct(0, 11); got != 0 {
		t.Errorf("ChangePct with zero prev = %v, want 0", got)
	}
}

func TestNetCloseChange(t *testing.T) {
	bars := []model.Bar{{Close: 10}, {Close: 9.5}, {Close: 9.2}}
	if got := NetCloseChange(bars); !almostEqual(got, -0.08) {
		t.Errorf("NetCloseChange = %v, want -0.08", got)
	}
	if got := NetCloseChange(bars[:1]); got != 0 {
		t.Errorf("NetCloseChange single bar = %v, want 0", got)
	}
}

func TestTrailingAvgVolume(t *testing.T) {
	bars := []model.Bar{{Volume: 100}, {Volume: 200}, {Volume: 300}, {Volume: 400}}

	if got := TrailingAvgVolume(bars, 2); !almostEqual(got, 350) {
		t.Errorf("TrailingAvgVolume(2) = %v, want 350", got)
	}
	if got := TrailingAvgVolume(bars, 5); got != 0 {
		t.Errorf("TrailingAvgVolume over short input = %v, want 0", got)
	}
}

func TestVolumeRatio(t *testing.T) {
	bars := []model.Bar{{Volume: 100}, {Volume: 100}, {Volume: 100}, {Volume: 250}}

	if got := VolumeRatio(bars, 3, 3); !almostEqual(got, 2.5) {
		t.Errorf("VolumeRatio = %v, want 2.5", got)
	}
	if got := VolumeRatio(bars, 0, 3); got != 0 {
		t.Errorf("VolumeRatio at index 0 = %v, want 0", got)
	}
}
