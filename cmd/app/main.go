// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"vaccine-tracker-bot/internal/application"
	"vaccine-tracker-bot/internal/config"
	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"
	"vaccine-tracker-bot/internal/infra/adapters/chart"
	"vaccine-tracker-bot/internal/infra/adapters/feed"
	tele "vaccine-tracker-bot/internal/infra/adapters/telegram"
	"vaccine-tracker-bot/internal/infra/i18n"
	"vaccine-tracker-bot/internal/infra/logging"
	"vaccine-tracker-bot/internal/infra/metrics"
	red "vaccine-tracker-bot/internal/infra/redis"
	"vaccine-tracker-bot/internal/infra/sched"
	"vaccine-tracker-bot/internal/infra/scheduler"
	"vaccine-tracker-bot/internal/infra/web"
	"vaccine-tracker-bot/internal/region"
	"vaccine-tracker-bot/internal/stats"
	"vaccine-tracker-bot/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, logging bot without a token)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("bot stopped")
	}
	logger.Info().Msg("shutdown complete")
}

func run(cfg *config.Config, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return fmt.Errorf("schedule timezone: %w", err)
	}
	trigger := model.DailyTrigger{Hour: *cfg.Schedule.Hour, Minute: *cfg.Schedule.Minute, Location: loc}

	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.I18n.Lang)
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}
	regions := region.NewDefaultResolver()

	// ---- Redis (optional unless it backs the registry) ----
	var redisClient *red.Client
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
	}

	// ---- Registry store ----
	stores, err := openStores(ctx, cfg, redisClient, logger)
	if err != nil {
		return err
	}
	defer stores.Close()
	registryUC := usecase.NewRegistryUseCase(stores.registry, stores.locker, cfg.Store.Retries, logger)
	subs, err := registryUC.Load(ctx)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	logger.Info().Int("subscribers", len(subs)).Str("backend", cfg.Store.Backend).Msg("registry loaded")

	// ---- Feed, charts and reports ----
	httpClient := feed.NewClient(cfg.Feed.Timeout, cfg.Feed.UserAgent)
	doses := feed.NewDoseFeed(httpClient, cfg.Feed.CSVURL, logger)
	population, err := feed.NewPopulationScraper(httpClient, cfg.Feed.PopulationURL, cfg.Feed.PopulationRegex, cfg.Feed.Population, logger)
	if err != nil {
		return fmt.Errorf("population source: %w", err)
	}
	renderer, err := chart.NewURLRenderer(cfg.Charts.BaseURL, loc, logger)
	if err != nil {
		return fmt.Errorf("charts: %w", err)
	}
	reportUC := usecase.NewReportUseCase(doses, population, renderer, regions, translator, usecase.ReportOptions{
		Projection: stats.ProjectionConfig{
			Threshold:             cfg.Projection.Threshold,
			DosesPerPerson:        cfg.Projection.DosesPerPerson,
			IncludeBoosters:       cfg.Projection.IncludeBoosters,
			IncludePriorInfection: cfg.Projection.IncludePriorInfection,
		},
		CacheTTL:     cfg.Feed.CacheTTL,
		FetchTimeout: cfg.Feed.Timeout,
		Location:     loc,
	}, logger)

	// ---- Telegram ----
	facade := application.NewBotFacade(reportUC, registryUC, regions, translator, trigger)
	var (
		deliverer adapter.Deliverer
		bot       *tele.RealTelegramBotAdapter
	)
	if cfg.Bot.Token == "" {
		logger.Warn().Msg("no bot token, deliveries are logged only")
		deliverer = tele.NewNoopBotAdapter(logger)
	} else {
		var limiter tele.RateLimiter
		if redisClient != nil {
			limiter = red.NewRateLimiter(redisClient)
		}
		bot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, limiter, translator, logger)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		if cfg.Bot.Mode != "" && cfg.Bot.Mode != "polling" {
			logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
		}
		deliverer = bot
	}

	// ---- Daily schedule ----
	notifUC := usecase.NewNotificationUseCase(reportUC, regions, deliverer, translator, loc, logger)
	daily := scheduler.NewScheduler(trigger, cfg.Schedule.TickInterval, cfg.Schedule.JobTimeout, notifUC, logger, cfg.Runtime.Dev)
	daily.Rebuild(subs)
	registryUC.SetListener(daily)

	// ---- Admin HTTP ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.Secure, cfg.Admin.SessionTTL)
	admin := web.NewServer(reportUC, registryUC, regions, cfg.Admin.APIKey, auth, logger)

	g, gctx := errgroup.WithContext(ctx)
	daily.Start(gctx)
	defer daily.Stop()

	g.Go(func() error {
		return sched.NewRefreshWorker(trigger, cfg.Feed.RefreshLead, reportUC, logger).Run(gctx)
	})
	g.Go(func() error { return admin.Start(cfg.Admin.Port) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return admin.Shutdown(shutdownCtx)
	})
	if bot != nil {
		g.Go(func() error { return bot.StartPolling(gctx) })
	}

	logger.Info().
		Str("trigger", facade.TriggerLabel()).
		Int("admin_port", cfg.Admin.Port).
		Msg("bot started")
	return g.Wait()
}
