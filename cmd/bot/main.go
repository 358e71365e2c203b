package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"experiment-bot/internal/analytics"
	"experiment-bot/internal/buildcache"
	"experiment-bot/internal/buildsource"
	"experiment-bot/internal/config"
	"experiment-bot/internal/scheduler"
	"experiment-bot/internal/storage"
	"experiment-bot/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logrus.Warnf(".env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		logrus.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := buildsource.New(cfg.BuildsAPIURL, cfg.HTTPTimeout, newBuildCache(ctx, cfg))

	var rec storage.Recorder
	if cfg.UsageLogPath != "" {
		fr, err := storage.NewFileRecorder(cfg.UsageLogPath)
		if err != nil {
			logrus.Warnf("failed to init usage log: %v", err)
		} else {
			rec = fr
		}
	}

	sessions := telegram.NewSessions(cfg.SessionTTL)

	bot, err := telegram.New(cfg.TelegramBotToken, telegram.Options{
		Builds:    source,
		Sessions:  sessions,
		Recorder:  rec,
		ParseMode: cfg.MessageParseMode,
	})
	if err != nil {
		logrus.Fatalf("failed to create bot: %v", err)
	}

	sched := scheduler.New()
	if err := sched.Add("session-sweep", cfg.SessionSweepSchedule, func(context.Context) error {
		if n := sessions.Sweep(); n > 0 {
			logrus.Infof("dropped %d idle browsing sessions, %d left", n, sessions.Len())
		}
		return nil
	}); err != nil {
		logrus.Fatalf("failed to schedule session sweep: %v", err)
	}
	if cfg.AdminUserID != 0 && rec != nil {
		if err := sched.Add("daily-report", cfg.DailyReportSchedule, func(context.Context) error {
			events, err := rec.Load()
			if err != nil {
				return err
			}
			stats := analytics.AnalyzeDay(events, time.Now().UTC())
			return bot.SendText(cfg.AdminUserID, stats.FormatReport())
		}); err != nil {
			logrus.Fatalf("failed to schedule daily report: %v", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	bot.Start(ctx)
}

func newBuildCache(ctx context.Context, cfg *config.Config) buildcache.Cache {
	if cfg.RedisURL != "" {
		rc, err := buildcache.NewRedis(cfg.RedisURL, cfg.BuildCacheTTL)
		if err != nil {
			logrus.Warnf("redis cache disabled: %v", err)
		} else if err := rc.Ping(ctx); err != nil {
			logrus.Warnf("redis cache unreachable, falling back to memory: %v", err)
		} else {
			return rc
		}
	}
	return buildcache.NewMemory(cfg.BuildCacheTTL)
}
