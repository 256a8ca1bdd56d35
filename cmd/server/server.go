package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"

	"portfolio/config"
	"portfolio/internal/cache"
	"portfolio/internal/handler"
	"portfolio/internal/middleware"
	"portfolio/internal/queue"
	"portfolio/internal/repository"
	"portfolio/internal/router"
	"portfolio/internal/service"
	"portfolio/pkg/logger"
	"portfolio/pkg/metrics"
	pkgotel "portfolio/pkg/otel"
	"portfolio/pkg/snowflake"
	"portfolio/storage"
	"portfolio/storage/database"
	"portfolio/storage/mq"
	"portfolio/storage/redis"
)

func main() {
	if err := config.Init(); err != nil {
		panic(err)
	}

	// 日志部分
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

	// OTel 要在存储层和中间件之前，指标才会挂到真实的 MeterProvider 上
	if config.Cfg.OTelEnabled {
		shutdown, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
			ServiceName:    config.Cfg.ServiceName,
			ServiceVersion: config.Cfg.ServiceVersion,
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.OTelEndpoint,
			SampleRatio:    config.Cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry, continuing without export", zap.Error(err))
			pkgotel.InitPropagator()
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
				}
			}()
		}
	} else {
		pkgotel.InitPropagator()
	}

	if err := metrics.InitMetrics(config.Cfg.ServiceName); err != nil {
		logger.Logger.Warn("Failed to initialize contact metrics", zap.Error(err))
	}

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 初始化存储层，记得关闭外部连接
	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	// 提交成功后的 hook：页面缓存失效、事件投递，依赖不可用时跳过
	var hooks []service.SubmitHook
	if redis.Ready() {
		hooks = append(hooks, cache.NewRedisPageInvalidator(config.Cfg.ContactPageCacheKeys))
	}
	if mq.Ready() {
		hooks = append(hooks, queue.NewContactPublisher())
	}

	store := repository.NewGormMessageStore(database.DB())
	contactService := service.NewContactService(store, hooks...)

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
		zap.Int("submit_hooks", len(hooks)),
	)

	tracer, tracingMiddleware := middleware.NewServerTracerConfig()

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)
	h := server.Default(
		server.WithHostPorts(addr),
		server.WithReadTimeout(10*time.Second),
		server.WithWriteTimeout(10*time.Second),
		server.WithMaxRequestBodySize(64*1024),
		tracer,
	)
	h.Use(tracingMiddleware)

	router.Register(h, router.Handlers{
		Contact:   handler.NewContactHandler(contactService),
		Health:    handler.NewHealthHandler(database.Ping),
		RateLimit: middleware.ContactRateLimitMiddleware(),
	})

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
