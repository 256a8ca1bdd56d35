package cache

import (
	"context"
	"fmt"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio/internal/model"
	"portfolio/pkg/logger"
	"portfolio/storage/redis"
)

// KeyDeleter 是 redis.Client 上 DEL 的那部分
type KeyDeleter interface {
	Del(ctx context.Context, keys ...string) *redislib.IntCmd
}

// PageInvalidator 提交成功后删除渲染好的联系页缓存
type PageInvalidator struct {
	client  KeyDeleter
	breaker *CircuitBreaker
	keys    []string
}

// NewPageInvalidator keys 已带前缀
func NewPageInvalidator(client KeyDeleter, breaker *CircuitBreaker, keys ...string) *PageInvalidator {
	return &PageInvalidator{client: client, breaker: breaker, keys: keys}
}

// NewRedisPageInvalidator 使用全局 Redis 客户端，pages 为不带前缀的 key
func NewRedisPageInvalidator(pages []string) *PageInvalidator {
	keys := make([]string, 0, len(pages))
	for _, p := range pages {
		if p != "" {
			keys = append(keys, redis.Key(p))
		}
	}
	return NewPageInvalidator(redis.Client(), RedisBreaker, keys...)
}

func (p *PageInvalidator) Name() string {
	return "page_cache_invalidation"
}

// AfterSubmit 实现 service.SubmitHook
func (p *PageInvalidator) AfterSubmit(ctx context.Context, _ *model.ContactMessage) error {
	if len(p.keys) == 0 {
		return nil
	}

	var deleted int64
	err := p.breaker.Call(ctx, func(ctx context.Context) error {
		n, err := p.client.Del(ctx, p.keys...).Result()
		deleted = n
		return err
	})
	if err != nil {
		return fmt.Errorf("invalidate page cache: %w", err)
	}

	logger.Logger.Debug("Page cache invalidated",
		zap.Strings("keys", p.keys),
		zap.Int64("deleted", deleted),
	)
	return nil
}
