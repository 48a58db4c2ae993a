package collector

import (
	"context"
	"fmt"
	"time"

	"StockScreener/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Instruments []model.Instrument
	Series      map[string]*model.BarSeries
	UniverseErr error
	SeriesErrs  map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) ListInstruments(_ context.Context) ([]model.Instrument, error) {
	if m.UniverseErr != nil {
		return nil, m.UniverseErr
	}
	return m.Instruments, nil
}

func (m *MockFetcher) GetSeries(_ context.Context, instrumentID string, lookbackBars int) (*model.BarSeries, error) {
	if err, ok := m.SeriesErrs[instrumentID]; ok {
		return nil, err
	}
	if s, ok := m.Series[instrumentID]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("mock: no series for %s", instrumentID)
}

// GenerateMockBars builds a gently drifting synthetic series around basePrice.
func GenerateMockBars(basePrice float64, count int) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Date:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
