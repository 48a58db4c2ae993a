package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
	"StockScreener/internal/recorder"
	"StockScreener/internal/report"
	"StockScreener/internal/screener"
)

// Notifier is the outbound message channel, usually Telegram.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NameResolver refreshes display names for matched instruments. Ids it cannot
// resolve are absent from the returned map.
type NameResolver interface {
	LatestNames(ctx context.Context, ids []string) map[string]string
}

// Scheduler runs the daily screening task and serves chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Screener *screener.Screener
	Notifier Notifier
	Recorder recorder.Recorder
	Reports  *report.Writer
	Names    NameResolver
	Ctx      context.Context

	mu   sync.Mutex
	last *model.ScreeningResult
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, scr *screener.Screener, n Notifier, rec recorder.Recorder, rep *report.Writer) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Screener: scr,
		Notifier: n,
		Recorder: rec,
		Reports:  rep,
		Ctx:      ctx,
	}
}

// RegisterAll registers the daily post-close screening task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyScreen); err != nil {
		return fmt.Errorf("register daily screen: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the screening task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyScreen()
}

func (s *Scheduler) dailyScreen() {
	log.Info().Msg("running daily screen")
	result, err := s.Screener.Run(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("daily screen failed")
		s.trySend(fmt.Sprintf("❌ 筛选失败: %v", err))
		return
	}

	s.refreshNames(result)

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	s.trySend(notifier.FormatScreeningReport(result))

	if s.Reports != nil {
		if _, err := s.Reports.WriteAll(result); err != nil {
			log.Error().Err(err).Msg("write report files")
		}
	}
	if err := s.Recorder.RecordRun(result); err != nil {
		log.Error().Err(err).Msg("record run")
	}
}

// refreshNames replaces match names with the current display names, so that
// renamed stocks report under the name they trade as today. Unresolved ids
// keep whatever name the kline feed returned.
func (s *Scheduler) refreshNames(result *model.ScreeningResult) {
	if s.Names == nil || len(result.Matches) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(result.Matches))
	ids := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		if _, ok := seen[m.InstrumentID]; ok {
			continue
		}
		seen[m.InstrumentID] = struct{}{}
		ids = append(ids, m.InstrumentID)
	}
	names := s.Names.LatestNames(s.Ctx, ids)
	if len(names) == 0 {
		return
	}
	for i := range result.Matches {
		if name, ok := names[result.Matches[i].InstrumentID]; ok {
			result.Matches[i].Name = name
		}
	}
}

// LastResult returns the most recent completed run, or nil.
func (s *Scheduler) LastResult() *model.ScreeningResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "立即筛选", "/run":
		s.dailyScreen()
		return ""
	case "查看结果", "/latest":
		last := s.LastResult()
		if last == nil {
			return "尚未完成任何筛选，发送 /run 立即运行。"
		}
		return notifier.FormatScreeningReport(last)
	case "查看状态", "/status":
		return notifier.FormatStatus(s.LastResult())
	default:
		return "可用命令:\n• /run 立即筛选\n• /latest 查看结果\n• /status 查看状态"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
