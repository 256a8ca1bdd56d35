package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio/config"
	"portfolio/pkg/errors"
	"portfolio/pkg/logger"
	"portfolio/pkg/response"
	"portfolio/storage/redis"
	"portfolio/utils"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 限流键前缀
	KeyPrefix string
	// 时间窗口（秒）
	Window int
	// 时间窗口内最大请求数
	MaxRequests int
	// 超过限制后禁止访问的时长（秒）
	BlockDuration int
}

// ContactRateLimitConfig 联系表单按 IP 限流，默认 60 秒 5 次，超限封禁 10 分钟
func ContactRateLimitConfig() RateLimitConfig {
	cfg := config.Cfg
	return RateLimitConfig{
		KeyPrefix:     "contact:rate",
		Window:        cfg.RateLimitWindowSeconds,
		MaxRequests:   cfg.RateLimitMaxRequests,
		BlockDuration: cfg.RateLimitBlockSeconds,
	}
}

// Limiter 限流存储，id 为客户端标识（IP 哈希）
type Limiter interface {
	IsBlocked(ctx context.Context, id string) (bool, error)
	Allow(ctx context.Context, id string) (allowed bool, count int, err error)
	Block(ctx context.Context, id string) error
}

// RedisRateLimiter 基于 zset 的滑动窗口限流
type RedisRateLimiter struct {
	client redislib.Cmdable
	config RateLimitConfig
	now    func() time.Time
}

func NewRedisRateLimiter(client redislib.Cmdable, config RateLimitConfig) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, config: config, now: time.Now}
}

func (rl *RedisRateLimiter) key(id string) string {
	return redis.Key(rl.config.KeyPrefix, id)
}

func (rl *RedisRateLimiter) blockKey(id string) string {
	return redis.Key(rl.config.KeyPrefix, "block", id)
}

// Allow 先清理窗口外的记录，再记入本次请求并统计窗口内请求数
func (rl *RedisRateLimiter) Allow(ctx context.Context, id string) (bool, int, error) {
	key := rl.key(id)
	now := rl.now()
	windowStart := now.Add(-time.Duration(rl.config.Window) * time.Second)

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	zcardCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, time.Duration(rl.config.Window+10)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	return count <= rl.config.MaxRequests, count, nil
}

func (rl *RedisRateLimiter) Block(ctx context.Context, id string) error {
	return rl.client.Set(ctx, rl.blockKey(id), "1", time.Duration(rl.config.BlockDuration)*time.Second).Err()
}

func (rl *RedisRateLimiter) IsBlocked(ctx context.Context, id string) (bool, error) {
	n, err := rl.client.Exists(ctx, rl.blockKey(id)).Result()
	return n > 0, err
}

// RateLimitMiddleware 按客户端 IP 哈希限流。Redis 出错时放行，
// 联系表单不能因为限流存储故障而不可用。
func RateLimitMiddleware(cfg RateLimitConfig, limiter Limiter) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := utils.HashIP(c.ClientIP())

		blocked, err := limiter.IsBlocked(ctx, id)
		if err != nil {
			logger.Logger.Warn("Failed to check block status, allowing request", zap.Error(err))
			c.Next(ctx)
			return
		}
		if blocked {
			c.Header("Retry-After", strconv.Itoa(cfg.BlockDuration))
			response.AbortWithError(ctx, c, errors.TooManyRequests)
			return
		}

		allowed, count, err := limiter.Allow(ctx, id)
		if err != nil {
			logger.Logger.Warn("Failed to check rate limit, allowing request", zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Duration(cfg.Window)*time.Second).Unix(), 10))

		if !allowed {
			if err := limiter.Block(ctx, id); err != nil {
				logger.Logger.Warn("Failed to block client", zap.Error(err))
			}
			logger.Logger.Info("Contact rate limit exceeded", zap.String("client", id[:12]))

			c.Header("Retry-After", strconv.Itoa(cfg.BlockDuration))
			response.AbortWithError(ctx, c, errors.TooManyRequests)
			return
		}

		c.Next(ctx)
	}
}

// ContactRateLimitMiddleware 限流关闭或 Redis 未就绪时返回直通中间件
func ContactRateLimitMiddleware() app.HandlerFunc {
	if !config.Cfg.RateLimitEnabled || !redis.Ready() {
		logger.Logger.Warn("Contact rate limiting disabled")
		return func(ctx context.Context, c *app.RequestContext) {
			c.Next(ctx)
		}
	}

	cfg := ContactRateLimitConfig()
	return RateLimitMiddleware(cfg, NewRedisRateLimiter(redis.Client(), cfg))
}
