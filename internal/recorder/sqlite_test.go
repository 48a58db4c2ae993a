package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer r.Close()

	result := &model.ScreeningResult{
		RunID:        "run-1",
		RunDate:      time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC),
		UniverseSize: 100,
		Matches: []model.PatternMatch{
			{
				InstrumentID: "600001",
				Name:         "测试一",
				StrategyID:   "reversal",
				MatchDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				WindowDates: []time.Time{
					time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
					time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
					time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				},
				Score:   72,
				Metrics: map[string]float64{"b1_body_ratio": 0.02},
			},
			{
				InstrumentID: "300001",
				Name:         "测试二",
				StrategyID:   "shrink_breakout",
				MatchDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Score:        65,
				Tags:         map[string]string{"limit_up_shape": "普通涨停"},
			},
		},
		Errors:  []model.InstrumentError{{InstrumentID: "000001", Reason: "timeout"}},
		Elapsed: 90 * time.Second,
	}
	require.NoError(t, r.RecordRun(result))

	var matchCount, errorCount int
	require.NoError(t, r.db.QueryRow(
		`SELECT match_count, error_count FROM screening_runs WHERE run_id = ?`, "run-1",
	).Scan(&matchCount, &errorCount))
	require.Equal(t, 2, matchCount)
	require.Equal(t, 1, errorCount)

	var dates string
	require.NoError(t, r.db.QueryRow(
		`SELECT window_dates FROM pattern_matches WHERE instrument_id = ?`, "600001",
	).Scan(&dates))
	require.Equal(t, "2024-02-28,2024-02-29,2024-03-01", dates)

	var rows int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM instrument_errors`).Scan(&rows))
	require.Equal(t, 1, rows)

	// Same run id again must not half-write a duplicate.
	require.Error(t, r.RecordRun(result))
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM pattern_matches`).Scan(&rows))
	require.Equal(t, 2, rows)
}
