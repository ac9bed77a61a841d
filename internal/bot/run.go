package bot

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sleepymaid/sleepymaid/internal/config"
	"github.com/sleepymaid/sleepymaid/internal/logger"
)

// Run starts the named service from the global registry and blocks until
// SIGINT or SIGTERM. It returns the process exit code.
func Run(name, version string) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	log, closeLog, err := logger.New(logger.Options{
		Env:        cfg.Env,
		File:       cfg.LogFile,
		WebhookURL: cfg.WebhookURL,
		Level:      cfg.LogLevel,
	})
	if err != nil {
		slog.Error("failed to create logger", "error", err)
		return 1
	}
	defer closeLog()
	slog.SetDefault(log)

	svc, ok := Lookup(name)
	if !ok {
		log.Error("unknown service", "service", name)
		return 1
	}

	log.Info("starting "+name, "version", version, "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := NewBot(cfg, svc, log)
	if err := b.Start(ctx); err != nil {
		log.Error("failed to start bot", "error", err)
		b.Stop()
		return 1
	}

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		log.Error("failed to shutdown", "error", err)
	}

	log.Info("completed bot shutdown")
	return 0
}
