// Package main is the bot entry point: it wires the store, the
// progression engine, the Telegram transport and the report scheduler,
// then polls for updates until interrupted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cookie-hub/cookie-growth-bot/config"
	"github.com/cookie-hub/cookie-growth-bot/internal/application/command"
	"github.com/cookie-hub/cookie-growth-bot/internal/application/query"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/external/telegram"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/persistence/postgres"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/persistence/redis"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/scheduler"
	"github.com/cookie-hub/cookie-growth-bot/internal/infrastructure/scheduler/jobs"
	healthhttp "github.com/cookie-hub/cookie-growth-bot/internal/interface/http"
	tginterface "github.com/cookie-hub/cookie-growth-bot/internal/interface/telegram"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("starting",
		slog.String("app", cfg.App.Name),
		slog.String("env", string(cfg.App.Environment)),
		slog.String("timezone", cfg.App.Timezone))

	content, err := config.LoadContent(cfg.App.ContentPath)
	if err != nil {
		return err
	}
	logger.Info("content loaded",
		slog.Int("achievements", len(content.Catalog.Achievements)),
		slog.Int("badges", len(content.Catalog.Badges)),
		slog.Int("cards", len(content.Catalog.Cards)),
		slog.Int("daily_limit", content.Catalog.DailyLimit))

	// ── Storage ────────────────────────────────────────────────────────────

	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return err
	}
	logger.Info("database ready")

	users := postgres.NewUserRepo(conn)
	chats := postgres.NewChatRepo(conn)
	events := postgres.NewEventRepo(conn)
	achievements := postgres.NewAchievementRepo(conn)
	badges := postgres.NewBadgeRepo(conn)
	cards := postgres.NewCardRepo(conn)

	var leaderboardCache query.LeaderboardCache
	if !cfg.Redis.Disabled {
		client, err := redis.NewClient(ctx, redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// The cache is an optimization; never refuse to start over it.
			logger.Warn("redis unavailable, leaderboard cache disabled",
				slog.String("error", err.Error()))
		} else {
			defer client.Close()
			leaderboardCache = redis.NewLeaderboardCache(client, cfg.Redis.CacheTTL, logger)
			logger.Info("leaderboard cache enabled")
		}
	}

	// ── Transport and engine ───────────────────────────────────────────────

	tgClient := telegram.NewClient(telegram.ClientConfig{
		Token:   cfg.Telegram.Token,
		BaseURL: cfg.Telegram.BaseURL,
		Logger:  logger,
	})
	notifier := tginterface.NewNotifier(tgClient)

	recordMessage := command.NewRecordMessageHandler(command.RecordMessageDeps{
		Users:        users,
		Chats:        chats,
		Events:       events,
		Achievements: achievements,
		Badges:       badges,
		Catalog:      content.Catalog,
		Notifier:     notifier,
		Location:     cfg.App.Location,
		Logger:       logger,
	})
	buyCard := command.NewBuyCardHandler(users, cards, content.Catalog, notifier, logger)
	leaderboard := query.NewLeaderboardHandler(events, leaderboardCache, logger)
	memberStats := query.NewMemberStatsHandler(users, events, achievements, badges, cards, content.Catalog, cfg.App.Location)
	dailyReport := query.NewDailyReportHandler(events, chats, cfg.App.Location)

	// ── Scheduler ──────────────────────────────────────────────────────────

	sched := scheduler.New(scheduler.Config{Logger: logger, Timezone: cfg.App.Location})
	reportJob := jobs.NewDailyReportJob(dailyReport, notifier, logger)
	if err := sched.Register(reportJob, scheduler.DailyAt(cfg.Scheduler.ReportHour, cfg.Scheduler.ReportMinute, cfg.App.Location)); err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Error("scheduler stop failed", slog.String("error", err.Error()))
		}
	}()

	// ── Health endpoint ────────────────────────────────────────────────────

	if cfg.App.HealthAddr != "" {
		healthCfg := healthhttp.DefaultConfig()
		healthCfg.Addr = cfg.App.HealthAddr
		healthCfg.Logger = logger
		health := healthhttp.NewServer(healthCfg)
		health.AddCheck("postgres", conn.Ping)
		health.AddCheck("telegram", func(ctx context.Context) error {
			_, err := tgClient.GetMe(ctx)
			return err
		})
		_ = health.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
			defer cancel()
			if err := health.Shutdown(shutdownCtx); err != nil {
				logger.Error("health server shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	// ── Bot loop ───────────────────────────────────────────────────────────

	botCfg := tginterface.DefaultBotConfig()
	botCfg.PollingTimeout = cfg.Telegram.PollingTimeout
	botCfg.Phrases = content.Phrases
	botCfg.Logger = logger

	bot := tginterface.NewBot(tgClient, botCfg, tginterface.BotDependencies{
		RecordMessage: recordMessage,
		BuyCard:       buyCard,
		Leaderboard:   leaderboard,
		MemberStats:   memberStats,
		DailyReport:   dailyReport,
		Catalog:       content.Catalog,
		Location:      cfg.App.Location,
	})

	return bot.Start(ctx)
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
