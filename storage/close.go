package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"portfolio/pkg/logger"
	"portfolio/storage/database"
	"portfolio/storage/mq"
	"portfolio/storage/redis"
)

// closeTimeout 三个连接共用的关闭预算
const closeTimeout = 15 * time.Second

type closer struct {
	name  string
	close func(context.Context) error
}

// 先停投递和消费，再关缓存，数据库最后
var closers = []closer{
	{name: "rabbitmq", close: mq.Close},
	{name: "redis", close: redis.Close},
	{name: "postgres", close: database.Close},
}

// Close 依次关闭所有连接，单个失败不影响后面的关闭，返回合并后的错误
func Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	return closeAll(ctx, closers)
}

func closeAll(ctx context.Context, list []closer) error {
	var errs []error
	for _, c := range list {
		start := time.Now()
		if err := c.close(ctx); err != nil {
			logger.Logger.Error("Failed to close storage connection",
				zap.String("backend", c.name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
			continue
		}
		logger.Logger.Debug("Storage connection closed",
			zap.String("backend", c.name),
			zap.Duration("took", time.Since(start)),
		)
	}

	if len(errs) == 0 {
		logger.Logger.Info("Storage connections closed")
	}
	return errors.Join(errs...)
}
