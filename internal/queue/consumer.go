package queue

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"portfolio/internal/cache"
	"portfolio/internal/model"
	"portfolio/internal/notify"
	"portfolio/pkg/errors"
	"portfolio/pkg/logger"
	"portfolio/storage/mq"
)

// OwnerNotifier 把新的联系消息通知给站长
type OwnerNotifier interface {
	NotifyOwner(ctx context.Context, msg model.ContactSubmittedMessage) error
}

// Deduper 消息幂等标记
type Deduper interface {
	TryMark(ctx context.Context, messageID string) (bool, error)
	Unmark(ctx context.Context, messageID string) error
	MarkDone(ctx context.Context, messageID string) error
}

// StartContactSubmittedConsumer 启动站长通知消费者，阻塞到 ctx 取消
func StartContactSubmittedConsumer(ctx context.Context, notifier OwnerNotifier) error {
	h := &contactSubmittedHandler{notifier: notifier, dedupe: cache.MessageDeduper{}}

	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.ContactSubmittedQueue,
		ConsumerTag:   "contact_submitted_consumer",
		PrefetchCount: 10,
		Handler:       h.handle,
	})
}

type contactSubmittedHandler struct {
	notifier OwnerNotifier
	dedupe   Deduper
}

func (h *contactSubmittedHandler) handle(ctx context.Context, body []byte) error {
	var msg model.ContactSubmittedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// 无法解析的消息重试也没有意义
		return &errors.SkipMessageError{Reason: fmt.Sprintf("malformed contact submitted message: %v", err)}
	}

	if msg.MessageID != "" {
		first, err := h.dedupe.TryMark(ctx, msg.MessageID)
		if err != nil {
			// 幂等检查失败时继续处理，可能重复发信
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !first {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}
	}

	if err := h.notifier.NotifyOwner(ctx, msg); err != nil {
		if msg.MessageID != "" {
			if uerr := h.dedupe.Unmark(ctx, msg.MessageID); uerr != nil {
				logger.Logger.Warn("Failed to unmark message",
					zap.String("message_id", msg.MessageID),
					zap.Error(uerr),
				)
			}
		}
		// 配置缺失不会自己恢复，重新入队只会原地打转
		if stderrors.Is(err, notify.ErrNotConfigured) {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("owner notification disabled: %v", err)}
		}
		return fmt.Errorf("failed to notify owner: %w", err)
	}

	if msg.MessageID != "" {
		if err := h.dedupe.MarkDone(ctx, msg.MessageID); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}
	}

	logger.Logger.Info("Owner notified of contact message",
		zap.String("message_id", msg.MessageID),
		zap.String("contact_id", msg.ContactID),
	)
	return nil
}
