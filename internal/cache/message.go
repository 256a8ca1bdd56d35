package cache

import (
	"context"
	"fmt"
	"time"

	"portfolio/storage/redis"
)

const (
	messageProcessedPrefix = "mq:processed"
	processedTTL           = 24 * time.Hour
)

// TryMarkMessageProcessing 用 SETNX 标记消息正在处理。
// 返回 true 表示首次处理，false 表示重复投递或正在处理。
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}

	ok, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return ok, nil
}

// UnmarkMessageProcessing 处理失败时删除标记，允许重试
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	return redis.Client().Del(ctx, redis.Key(messageProcessedPrefix, messageID)).Err()
}

// MarkMessageProcessed 处理成功后更新标记并延长 TTL
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = processedTTL
	}
	return redis.Client().Set(ctx, redis.Key(messageProcessedPrefix, messageID), "completed", ttl).Err()
}

// MessageDeduper 把上面三个函数包装成 queue 使用的接口
type MessageDeduper struct{}

func (MessageDeduper) TryMark(ctx context.Context, messageID string) (bool, error) {
	return TryMarkMessageProcessing(ctx, messageID, processedTTL)
}

func (MessageDeduper) Unmark(ctx context.Context, messageID string) error {
	return UnmarkMessageProcessing(ctx, messageID)
}

func (MessageDeduper) MarkDone(ctx context.Context, messageID string) error {
	return MarkMessageProcessed(ctx, messageID, 2*processedTTL)
}
