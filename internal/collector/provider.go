package collector

import (
	"context"

	"StockScreener/internal/model"
)

// UniverseProvider lists the instruments a screening run will examine.
type UniverseProvider interface {
	ListInstruments(ctx context.Context) ([]model.Instrument, error)
}

// SeriesProvider fetches the daily bar history of a single instrument,
// oldest bar first.
type SeriesProvider interface {
	GetSeries(ctx context.Context, instrumentID string, lookbackBars int) (*model.BarSeries, error)
	Name() string
}
