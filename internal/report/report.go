package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

// Writer renders a screening result to CSV, JSON and Markdown files under Dir.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer { return &Writer{Dir: dir} }

// WriteAll writes one CSV per strategy with hits, latest_results.json and
// results.md. It returns the paths of the files written.
func (w *Writer) WriteAll(result *model.ScreeningResult) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	stamp := result.RunDate.Format("20060102_150405")
	byStrategy := result.MatchesByStrategy()

	var files []string
	for _, id := range []string{strategy.StrategyReversal, strategy.StrategyVolumeBreakout, strategy.StrategyShrinkBreakout} {
		matches := byStrategy[id]
		if len(matches) == 0 {
			continue
		}
		path := filepath.Join(w.Dir, fmt.Sprintf("%s_%s.csv", id, stamp))
		if err := writeCSV(path, matches); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, path)
	}

	jsonPath := filepath.Join(w.Dir, "latest_results.json")
	if err := writeJSON(jsonPath, result, byStrategy); err != nil {
		return nil, fmt.Errorf("write %s: %w", jsonPath, err)
	}
	files = append(files, jsonPath)

	mdPath := filepath.Join(w.Dir, "results.md")
	if err := os.WriteFile(mdPath, []byte(FormatMarkdown(result)), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", mdPath, err)
	}
	files = append(files, mdPath)

	log.Info().Strs("files", files).Msg("report files written")
	return files, nil
}

// writeCSV emits one row per match: identity columns first, then the
// strategy's metric columns in sorted key order.
func writeCSV(path string, matches []model.PatternMatch) error {
	keys := metricKeys(matches)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// UTF-8 BOM so spreadsheet apps pick up the Chinese names.
	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	header := append([]string{"代码", "名称", "信号日期", "评分"}, keys...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range matches {
		row := []string{m.InstrumentID, m.Name, m.MatchDate.Format("2006-01-02"), strconv.Itoa(m.Score)}
		for _, k := range keys {
			row = append(row, strconv.FormatFloat(m.Metrics[k], 'f', 4, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func metricKeys(matches []model.PatternMatch) []string {
	set := map[string]struct{}{}
	for _, m := range matches {
		for k := range m.Metrics {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// jsonReport mirrors the layout downstream agents consume.
type jsonReport struct {
	RunID          string              `json:"run_id"`
	Timestamp      string              `json:"timestamp"`
	TotalScanned   int                 `json:"total_scanned"`
	ElapsedSeconds float64             `json:"elapsed_seconds"`
	Strategies     map[string]jsonHits `json:"strategies"`
	ErrorCount     int                 `json:"error_count"`
}

type jsonHits struct {
	Count   int                  `json:"count"`
	Results []model.PatternMatch `json:"results"`
}

func writeJSON(path string, result *model.ScreeningResult, byStrategy map[string][]model.PatternMatch) error {
	rep := jsonReport{
		RunID:          result.RunID,
		Timestamp:      result.RunDate.Format("20060102_150405"),
		TotalScanned:   result.UniverseSize,
		ElapsedSeconds: result.Elapsed.Seconds(),
		Strategies:     make(map[string]jsonHits, 3),
		ErrorCount:     len(result.Errors),
	}
	for _, id := range []string{strategy.StrategyReversal, strategy.StrategyVolumeBreakout, strategy.StrategyShrinkBreakout} {
		hits := byStrategy[id]
		rep.Strategies[id] = jsonHits{Count: len(hits), Results: hits}
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
