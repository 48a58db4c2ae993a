package notifier

import (
	"strings"
	"testing"
	"time"

	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

func TestFormatScreeningReport(t *testing.T) {
	result := &model.ScreeningResult{
		RunDate:      time.Date(2024, 3, 8, 15, 35, 0, 0, time.UTC),
		UniverseSize: 2500,
		Matches: []model.PatternMatch{
			{InstrumentID: "600001", Name: "甲股份", StrategyID: strategy.StrategyReversal, Score: 72},
			{InstrumentID: "600001", Name: "甲股份", StrategyID: strategy.StrategyVolumeBreakout, Score: 81},
			{InstrumentID: "300002", Name: "乙科技", StrategyID: strategy.StrategyShrinkBreakout, Score: 65},
		},
		Errors:  []model.InstrumentError{{InstrumentID: "000001", Reason: "timeout"}},
		Elapsed: 95 * time.Second,
	}
	msg := FormatScreeningReport(result)

	for _, want := range []string{
		"A股多策略选股",
		"扫描 2500 只",
		"拉取失败 1 只",
		"三日反转: 1 只",
		"多策略共振 (1只)",
		"600001 甲股份 → 三日反转 + 放量突破",
		"评分前五",
		"不构成投资建议",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}

	// Highest score listed first in the top block.
	topIdx := strings.Index(msg, "评分前五")
	if !strings.Contains(msg[topIdx:], "[放量突破] 81分") {
		t.Error("top block missing the best score")
	}
}

func TestFormatScreeningReport_NoHits(t *testing.T) {
	msg := FormatScreeningReport(&model.ScreeningResult{RunDate: time.Now(), UniverseSize: 10})
	if !strings.Contains(msg, "今日无命中") {
		t.Error("expected the no-hit line")
	}
}

func TestFormatStatus(t *testing.T) {
	if msg := FormatStatus(nil); !strings.Contains(msg, "尚未完成任何筛选") {
		t.Errorf("unexpected empty-status message: %s", msg)
	}
	last := &model.ScreeningResult{
		RunDate:      time.Date(2024, 3, 8, 15, 35, 0, 0, time.UTC),
		UniverseSize: 2500,
		Elapsed:      90 * time.Second,
	}
	msg := FormatStatus(last)
	if !strings.Contains(msg, "2024-03-08 15:35") || !strings.Contains(msg, "扫描: 2500 只") {
		t.Errorf("unexpected status message: %s", msg)
	}
}
