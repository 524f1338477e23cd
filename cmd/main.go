package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkarpenko/stock_profit_service/config"
	"github.com/mkarpenko/stock_profit_service/data"
	"github.com/mkarpenko/stock_profit_service/data/cache"
	pgRepository "github.com/mkarpenko/stock_profit_service/data/repository/postgres"
	"github.com/mkarpenko/stock_profit_service/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/mkarpenko/stock_profit_service/internal/externalApi/marketDataApi"
	"github.com/mkarpenko/stock_profit_service/internal/generator"
	"github.com/mkarpenko/stock_profit_service/internal/notifier/telegram"
	"github.com/mkarpenko/stock_profit_service/internal/profit"
	"github.com/mkarpenko/stock_profit_service/internal/reportGenerator/xlsxGenerator"
	"github.com/mkarpenko/stock_profit_service/internal/scheduler"
	"github.com/mkarpenko/stock_profit_service/internal/service/portfolioService"
	"github.com/mkarpenko/stock_profit_service/internal/transport/kafka"
	"github.com/mkarpenko/stock_profit_service/internal/transport/rest"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := pgRepository.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	marketApi := marketDataApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	calculator, err := profit.NewCalculator(cfg.ProfitScale)
	if err != nil {
		log.Fatalf("create calculator error: %s", err)
	}

	historyGenerator := generator.New()

	var cloudStorage portfolioService.CloudStorage
	if cfg.GoogleDrive.Enabled {
		cloudStorage = googleDriveApi.New(ctx, cfg)
	}

	var notifier portfolioService.Notifier
	if cfg.Telegram.Enabled {
		notifier = telegram.New(cfg)
	}

	portfolioSrv := portfolioService.New(
		cfg,
		pgRepo,
		redisCache,
		calculator,
		historyGenerator,
		marketApi,
		reportGenerator,
		cloudStorage,
		notifier,
	)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh quote cache", portfolioSrv.RefreshQuoteCache, cfg.Jobs.RefreshQuoteInterval, true)
	if cfg.Jobs.DailyReportCrontab != "" {
		sched.NewCrontabJob("daily report", portfolioSrv.SendDailyReport, cfg.Jobs.DailyReportCrontab, false)
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg, portfolioSrv)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				slog.Error("kafka consumer stopped", slog.String("err", err.Error()))
			}
		}()
	}

	ctrl := rest.NewController(portfolioSrv)
	server := rest.NewServer(cfg, ctrl)
	server.Start()
	defer server.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
