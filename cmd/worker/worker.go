package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"portfolio/config"
	"portfolio/internal/notify"
	"portfolio/internal/queue"
	"portfolio/pkg/logger"
	"portfolio/pkg/metrics"
	pkgotel "portfolio/pkg/otel"
	"portfolio/storage"
)

func main() {
	if err := config.Init(); err != nil {
		panic(err)
	}

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// 消费端需要从 AMQP header 里取出 trace context
	pkgotel.InitPropagator()

	if err := metrics.InitMetrics(config.Cfg.ServiceName + "-worker"); err != nil {
		logger.Logger.Warn("Failed to initialize contact metrics", zap.Error(err))
	}

	mailCfg := notify.MailConfigFromEnv()
	if err := mailCfg.Validate(); err != nil {
		logger.Logger.Fatal("Owner mail is not configured", zap.Error(err))
	}

	if err := storage.InitWorker(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	notifier := notify.NewMailNotifier(mailCfg)

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	if err := queue.StartContactSubmittedConsumer(ctx, notifier); err != nil && ctx.Err() == nil {
		logger.Logger.Error("Contact consumer stopped", zap.Error(err))
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}
