package calculator

import (
	"errors"

	"StockScreener/internal/model"
)

// CalculateSMA computes the simple moving average of the given values over the specified period.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// TrailingAvgVolume returns the average volume of the last n bars of the slice.
// Returns 0 when fewer than n bars are available or n <= 0.
func TrailingAvgVolume(bars []model.Bar, n int) float64 {
	if n <= 0 || len(bars) < n {
		return 0
	}
	ma, err := CalculateSMA(extractVolumes(bars), n)
	if err != nil {
		return 0
	}
	return ma
}

// VolumeRatio returns a bar's volume divided by the trailing average volume of
// the n bars preceding it within the series, 0 when the average is unavailable.
func VolumeRatio(bars []model.Bar, idx, n int) float64 {
	if idx <= 0 || idx >= len(bars) {
		return 0
	}
	avg := TrailingAvgVolume(bars[:idx], n)
	if avg == 0 {
		return 0
	}
	return bars[idx].Volume / avg
}

func extractVolumes(bars []model.Bar) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}
