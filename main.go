package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/hwnotify/internal/config"
	"github.com/example/hwnotify/internal/database"
	"github.com/example/hwnotify/internal/dispatcher"
	"github.com/example/hwnotify/internal/excel"
	"github.com/example/hwnotify/internal/logger"
	"github.com/example/hwnotify/internal/push"
	"github.com/example/hwnotify/internal/scheduler"
	"github.com/example/hwnotify/internal/server"
)

func main() {
	importFile := flag.String("import", "", "import homework tasks from an .xlsx or .csv file and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		// No logger yet; exit immediately.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := database.Connect(cfg.DatabaseURL, cfg.DBPath); err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if *importFile != "" {
		runImport(log, *importFile)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway, err := buildGateway(ctx, cfg)
	if err != nil {
		// Surfaced once at process start, never lazily on first send.
		log.Fatal("failed to construct push gateway",
			zap.String("backend", cfg.PushBackend),
			zap.Error(err),
		)
	}

	d := dispatcher.New(
		database.NewUserRepository(),
		database.NewTaskRepository(),
		gateway,
		log,
		dispatcher.Options{
			Location:    cfg.Location(),
			Policy:      dispatcher.Policy(cfg.AggregationPolicy),
			DueWindow:   time.Duration(cfg.DueWindowDays) * 24 * time.Hour,
			UserTimeout: cfg.UserTimeout,
		},
	)

	log.Info("homework notifier starting",
		zap.String("mode", cfg.RunMode),
		zap.String("backend", gateway.Name()),
		zap.String("timezone", cfg.Timezone),
		zap.String("policy", cfg.AggregationPolicy),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	switch cfg.RunMode {
	case config.RunModeHTTP:
		srv := server.New(d, log, cfg.TriggerToken)
		go func() {
			if err := srv.Run(cfg.HTTPAddr); err != nil {
				log.Fatal("http server failed", zap.Error(err))
			}
		}()
		sig := <-sigChan
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()

	default: // config.RunModeInterval
		sched := scheduler.New(d, cfg.Location(), log)
		if err := sched.Start(ctx); err != nil {
			log.Fatal("failed to start scheduler", zap.Error(err))
		}
		sig := <-sigChan
		log.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		sched.Stop()
	}
}

// buildGateway constructs the push backend selected by configuration.
func buildGateway(ctx context.Context, cfg config.Config) (push.Gateway, error) {
	switch cfg.PushBackend {
	case config.BackendOneSignal:
		return push.NewOneSignalGateway(cfg.OneSignalAppID, cfg.OneSignalAPIKey)
	case config.BackendTelegram:
		return push.NewTelegramGateway(cfg.TelegramToken)
	default:
		return push.NewFCMGateway(ctx, cfg.FirebaseCredentials)
	}
}

func runImport(log *zap.Logger, path string) {
	importCfg := excel.DefaultImportConfig()
	importCfg.FilePath = path

	result, err := excel.ImportTasks(importCfg)
	if err != nil {
		log.Fatal("import failed", zap.Error(err))
	}
	for _, msg := range result.Errors {
		log.Warn("import row skipped", zap.String("reason", msg))
	}
	log.Info("import finished",
		zap.Int("processed", result.TotalProcessed),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
}
