package screener

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"StockScreener/internal/collector"
	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

const (
	defaultConcurrency   = 8
	defaultFetchTimeout  = 15 * time.Second
	defaultLookbackBars  = 200
	defaultProgressEvery = 200
)

// Screener runs every registered detector over a full instrument universe.
type Screener struct {
	Universe collector.UniverseProvider
	Series   collector.SeriesProvider
	Config   *strategy.Config

	Concurrency   int
	FetchTimeout  time.Duration
	LookbackBars  int
	ProgressEvery int
}

// New creates a Screener with default run parameters.
func New(universe collector.UniverseProvider, series collector.SeriesProvider, cfg *strategy.Config) *Screener {
	return &Screener{
		Universe:      universe,
		Series:        series,
		Config:        cfg,
		Concurrency:   defaultConcurrency,
		FetchTimeout:  defaultFetchTimeout,
		LookbackBars:  defaultLookbackBars,
		ProgressEvery: defaultProgressEvery,
	}
}

// Run screens the whole universe and returns the aggregated result. A
// universe listing failure is fatal and yields no partial result. Failures
// on individual instruments are collected and the run continues.
func (s *Screener) Run(ctx context.Context) (*model.ScreeningResult, error) {
	if err := s.Config.Validate(); err != nil {
		return nil, fmt.Errorf("pattern config: %w", err)
	}
	start := time.Now()

	instruments, err := s.Universe.ListInstruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list universe: %w", err)
	}
	log.Info().Int("universe", len(instruments)).Msg("screening run started")

	workers := s.Concurrency
	if workers < 1 {
		workers = 1
	}
	minBars := strategy.MinBarsRequired(s.Config)

	// Results are indexed by universe position so the final ordering does
	// not depend on worker completion order.
	matches := make([][]model.PatternMatch, len(instruments))
	instErrs := make([]*model.InstrumentError, len(instruments))

	jobs := make(chan int)
	var wg sync.WaitGroup
	var done int64
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				s.screenOne(ctx, instruments[idx], minBars, &matches[idx], &instErrs[idx])
				if n := atomic.AddInt64(&done, 1); s.ProgressEvery > 0 && n%int64(s.ProgressEvery) == 0 {
					log.Info().Int64("screened", n).Int("universe", len(instruments)).Msg("progress")
				}
			}
		}()
	}

dispatch:
	for idx := range instruments {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agg := NewAggregator()
	for idx := range instruments {
		for _, m := range matches[idx] {
			agg.Add(m)
		}
	}
	var errs []model.InstrumentError
	for _, e := range instErrs {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	result := agg.Finalize(len(instruments), errs, time.Since(start))
	log.Info().
		Str("run_id", result.RunID).
		Int("matches", len(result.Matches)).
		Int("errors", len(result.Errors)).
		Dur("elapsed", result.Elapsed).
		Msg("screening run finished")
	return result, nil
}

func (s *Screener) screenOne(ctx context.Context, inst model.Instrument, minBars int, out *[]model.PatternMatch, instErr **model.InstrumentError) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	defer cancel()

	series, err := s.Series.GetSeries(fetchCtx, inst.ID, s.LookbackBars)
	if err != nil {
		*instErr = &model.InstrumentError{InstrumentID: inst.ID, Reason: err.Error()}
		return
	}
	if series.Len() < minBars {
		*instErr = &model.InstrumentError{
			InstrumentID: inst.ID,
			Reason:       fmt.Sprintf("insufficient history: %d bars", series.Len()),
		}
		return
	}
	if series.Name == "" {
		series.Name = inst.Name
	}
	*out = strategy.EvaluateAll(series, s.Config)
}
