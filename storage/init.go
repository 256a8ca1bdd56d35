package storage

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"portfolio/config"
	pkgdb "portfolio/pkg/database"
	"portfolio/pkg/logger"
	pkgmq "portfolio/pkg/mq"
	pkgredis "portfolio/pkg/redis"
	"portfolio/storage/database"
	"portfolio/storage/mq"
	"portfolio/storage/redis"
)

// Init 初始化存储层。数据库是必需的；Redis 和 RabbitMQ 只服务于
// 限流、页面缓存失效和事件投递，连不上时告警并降级。
func Init() error {
	initMetrics()

	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		logger.Logger.Warn("Redis unavailable, rate limiting and page cache invalidation disabled", zap.Error(err))
	}

	if err := mq.Init(); err != nil {
		logger.Logger.Warn("RabbitMQ unavailable, contact events will not be published", zap.Error(err))
	}

	return nil
}

// InitWorker worker 依赖 Redis（幂等）和 RabbitMQ（消费），都必须可用
func InitWorker() error {
	initMetrics()

	if err := redis.Init(); err != nil {
		return err
	}

	return mq.Init()
}

func initMetrics() {
	meter := otel.Meter(config.Cfg.ServiceName)

	if err := pkgdb.InitDatabaseMetrics(meter); err != nil {
		logger.Logger.Warn("Failed to init database metrics", zap.Error(err))
	}
	if err := pkgredis.InitRedisMetrics(meter); err != nil {
		logger.Logger.Warn("Failed to init redis metrics", zap.Error(err))
	}
	if err := pkgmq.InitMQMetrics(meter); err != nil {
		logger.Logger.Warn("Failed to init mq metrics", zap.Error(err))
	}
}
