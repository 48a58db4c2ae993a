package screener

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"StockScreener/internal/model"
)

// Aggregator collects pattern matches from concurrent workers and drops
// exact duplicates. A duplicate is the same instrument, strategy and match
// date; re-adding one is a no-op.
type Aggregator struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	matches []model.PatternMatch
}

func NewAggregator() *Aggregator {
	return &Aggregator{seen: make(map[string]struct{})}
}

func (a *Aggregator) Add(m model.PatternMatch) {
	key := fmt.Sprintf("%s|%s|%s", m.InstrumentID, m.StrategyID, m.MatchDate.Format("2006-01-02"))
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, dup := a.seen[key]; dup {
		return
	}
	a.seen[key] = struct{}{}
	a.matches = append(a.matches, m)
}

// Finalize stamps run identity onto the collected matches.
func (a *Aggregator) Finalize(universeSize int, errs []model.InstrumentError, elapsed time.Duration) *model.ScreeningResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &model.ScreeningResult{
		RunID:        uuid.NewString(),
		RunDate:      time.Now(),
		UniverseSize: universeSize,
		Matches:      a.matches,
		Errors:       errs,
		Elapsed:      elapsed,
	}
}
