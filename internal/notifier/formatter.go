package notifier

import (
	"fmt"
	"sort"
	"strings"

	"StockScreener/internal/model"
	"StockScreener/internal/report"
	"StockScreener/internal/strategy"
)

// FormatScreeningReport formats a finished run into a Telegram HTML message.
func FormatScreeningReport(result *model.ScreeningResult) string {
	byStrategy := result.MatchesByStrategy()
	order := []string{strategy.StrategyReversal, strategy.StrategyVolumeBreakout, strategy.StrategyShrinkBreakout}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>A股多策略选股</b> | %s\n\n", result.RunDate.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("扫描 %d 只，耗时 %.0f秒\n", result.UniverseSize, result.Elapsed.Seconds()))
	if len(result.Errors) > 0 {
		b.WriteString(fmt.Sprintf("拉取失败 %d 只\n", len(result.Errors)))
	}
	b.WriteString("\n<b>总览:</b>\n")
	for _, id := range order {
		b.WriteString(fmt.Sprintf("  %s: %d 只\n", strategy.DisplayName(id), len(byStrategy[id])))
	}

	if multi := report.Resonance(result); len(multi) > 0 {
		b.WriteString(fmt.Sprintf("\n🎯 <b>多策略共振 (%d只):</b>\n", len(multi)))
		for _, e := range multi {
			b.WriteString(fmt.Sprintf("  %s %s → %s\n", e.InstrumentID, e.Name, strings.Join(e.Strategies, " + ")))
		}
	}

	for _, id := range order {
		matches := byStrategy[id]
		if len(matches) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n<b>%s (%d只):</b>\n", strategy.DisplayName(id), len(matches)))
		for i, m := range matches {
			if i == 10 {
				b.WriteString(fmt.Sprintf("  … 另有 %d 只\n", len(matches)-10))
				break
			}
			b.WriteString(fmt.Sprintf("  %s %s 评分%d\n", m.InstrumentID, m.Name, m.Score))
		}
	}

	if top := topScored(result.Matches, 5); len(top) > 0 {
		b.WriteString("\n⭐ <b>评分前五:</b>\n")
		for _, m := range top {
			b.WriteString(fmt.Sprintf("  %s %s [%s] %d分\n",
				m.InstrumentID, m.Name, strategy.DisplayName(m.StrategyID), m.Score))
		}
	} else {
		b.WriteString("\n今日无命中。\n")
	}

	b.WriteString("\n⚠️ 仅供研究参考，不构成投资建议")
	return b.String()
}

// topScored returns the n highest-scoring matches, stable on ties.
func topScored(matches []model.PatternMatch, n int) []model.PatternMatch {
	sorted := make([]model.PatternMatch, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FormatStatus summarizes the most recent run for the /status command.
func FormatStatus(last *model.ScreeningResult) string {
	if last == nil {
		return "📦 <b>状态</b>\n\n尚未完成任何筛选。"
	}
	var b strings.Builder
	b.WriteString("📦 <b>状态</b>\n\n")
	b.WriteString(fmt.Sprintf("上次运行: %s\n", last.RunDate.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("扫描: %d 只 | 命中: %d | 失败: %d\n",
		last.UniverseSize, len(last.Matches), len(last.Errors)))
	b.WriteString(fmt.Sprintf("耗时: %.0f秒\n", last.Elapsed.Seconds()))
	return b.String()
}
