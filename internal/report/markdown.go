package report

import (
	"fmt"
	"sort"
	"strings"

	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

// FormatMarkdown renders the full Chinese screening report: overview table,
// multi-strategy resonance, per-strategy hit tables and the risk note.
func FormatMarkdown(result *model.ScreeningResult) string {
	byStrategy := result.MatchesByStrategy()
	order := []string{strategy.StrategyReversal, strategy.StrategyVolumeBreakout, strategy.StrategyShrinkBreakout}

	var b strings.Builder
	b.WriteString("## A股多策略选股结果\n\n")
	fmt.Fprintf(&b, "**筛选时间**: %s\n", result.RunDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**扫描股票**: %d 只 | **耗时**: %.1f秒\n\n", result.UniverseSize, result.Elapsed.Seconds())

	b.WriteString("### 总览\n\n")
	b.WriteString("| 策略 | 命中数 |\n|------|--------|\n")
	for _, id := range order {
		fmt.Fprintf(&b, "| %s | %d |\n", strategy.DisplayName(id), len(byStrategy[id]))
	}
	b.WriteString("\n")

	writeResonance(&b, result)

	for i, id := range order {
		matches := byStrategy[id]
		if len(matches) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### 策略%s: %s\n\n", []string{"一", "二", "三"}[i], strategy.DisplayName(id))
		switch id {
		case strategy.StrategyReversal:
			b.WriteString("| 代码 | 名称 | 前置跌幅 | 信号日期 | 评分 |\n")
			b.WriteString("|------|------|----------|----------|------|\n")
			for _, m := range matches {
				fmt.Fprintf(&b, "| %s | %s | %+.1f%% | %s | %d |\n",
					m.InstrumentID, m.Name, m.Metrics["prior_decline"]*100,
					m.MatchDate.Format("2006-01-02"), m.Score)
			}
		case strategy.StrategyVolumeBreakout:
			b.WriteString("| 代码 | 名称 | 涨停日期 | 回踩天数 | 突破量比 | 评分 |\n")
			b.WriteString("|------|------|----------|----------|----------|------|\n")
			for _, m := range matches {
				fmt.Fprintf(&b, "| %s | %s | %s | %.0f天 | %.2fx | %d |\n",
					m.InstrumentID, m.Name, limitUpDate(m), m.Metrics["pullback_bars"],
					m.Metrics["breakout_volume_ratio"], m.Score)
			}
		case strategy.StrategyShrinkBreakout:
			b.WriteString("| 代码 | 名称 | 涨停日期 | 涨停形态 | MA5/MA10 | 评分 |\n")
			b.WriteString("|------|------|----------|----------|----------|------|\n")
			for _, m := range matches {
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %.4f | %d |\n",
					m.InstrumentID, m.Name, limitUpDate(m), m.Tags["limit_up_shape"],
					m.Metrics["volume_ma_ratio"], m.Score)
			}
		}
		b.WriteString("\n")
	}

	if len(result.Matches) == 0 {
		b.WriteString("今日没有符合条件的股票。\n\n")
	}

	b.WriteString("---\n*本工具仅供学习研究使用，不构成任何投资建议。股市有风险，投资需谨慎。*\n")
	return b.String()
}

// limitUpDate is the third stage boundary for the breakout strategies.
func limitUpDate(m model.PatternMatch) string {
	if len(m.WindowDates) >= 3 {
		return m.WindowDates[2].Format("2006-01-02")
	}
	return ""
}

// ResonanceEntry is one instrument hit by several strategies at once.
type ResonanceEntry struct {
	InstrumentID string
	Name         string
	Strategies   []string // display names, declaration order
	Scores       []int
}

// Resonance returns the instruments hit by two or more strategies, most
// strategies first, universe order within a tie.
func Resonance(result *model.ScreeningResult) []ResonanceEntry {
	index := map[string]int{}
	var entries []ResonanceEntry
	for _, m := range result.Matches {
		i, ok := index[m.InstrumentID]
		if !ok {
			i = len(entries)
			index[m.InstrumentID] = i
			entries = append(entries, ResonanceEntry{InstrumentID: m.InstrumentID, Name: m.Name})
		}
		entries[i].Strategies = append(entries[i].Strategies, strategy.DisplayName(m.StrategyID))
		entries[i].Scores = append(entries[i].Scores, m.Score)
	}
	multi := entries[:0]
	for _, e := range entries {
		if len(e.Strategies) >= 2 {
			multi = append(multi, e)
		}
	}
	sort.SliceStable(multi, func(i, j int) bool {
		return len(multi[i].Strategies) > len(multi[j].Strategies)
	})
	return multi
}

func writeResonance(b *strings.Builder, result *model.ScreeningResult) {
	multi := Resonance(result)
	if len(multi) == 0 {
		b.WriteString("多策略共振: 无\n\n")
		return
	}
	fmt.Fprintf(b, "### 多策略共振（%d只）\n\n", len(multi))
	b.WriteString("| 代码 | 名称 | 命中策略 | 各策略评分 |\n")
	b.WriteString("|------|------|----------|------------|\n")
	for _, e := range multi {
		scores := make([]string, len(e.Strategies))
		for i, s := range e.Strategies {
			scores[i] = fmt.Sprintf("%s:%d", s, e.Scores[i])
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			e.InstrumentID, e.Name, strings.Join(e.Strategies, ", "), strings.Join(scores, ", "))
	}
	b.WriteString("\n")
}
