package mq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"portfolio/config"
	pkgerrors "portfolio/pkg/errors"
	"portfolio/pkg/logger"
	pkgmq "portfolio/pkg/mq"
)

// MessageHandler 处理一条消息体。返回 SkipMessageError 表示直接 ack，
// 其它错误会 nack 并重新入队。
type MessageHandler func(ctx context.Context, body []byte) error

type ConsumeOptions struct {
	Handler       MessageHandler
	Queue         string
	ConsumerTag   string
	PrefetchCount int
}

// Consume 阻塞消费直到 ctx 取消或 channel 关闭
func Consume(ctx context.Context, opts ConsumeOptions) error {
	c := Connection()
	if c == nil {
		return fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if opts.PrefetchCount > 0 {
		if err := ch.Qos(opts.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	msgs, err := ch.Consume(
		opts.Queue,
		opts.ConsumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Logger.Info("Started consuming messages",
		zap.String("queue", opts.Queue),
		zap.String("consumer_tag", opts.ConsumerTag),
		zap.Int("prefetch_count", opts.PrefetchCount),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Logger.Info("Stopping consumer", zap.String("queue", opts.Queue))
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel of queue %s closed", opts.Queue)
			}
			handleDelivery(ctx, opts, msg)
		}
	}
}

func handleDelivery(ctx context.Context, opts ConsumeOptions, msg amqp.Delivery) {
	start := time.Now()
	msgCtx, span := pkgmq.StartDeliverySpan(ctx, config.Cfg.ServiceName, msg)

	err := opts.Handler(msgCtx, msg.Body)

	var skip *pkgerrors.SkipMessageError
	switch {
	case err == nil:
		_ = msg.Ack(false)
		pkgmq.EndDeliverySpan(msgCtx, span, msg.RoutingKey, "ack", nil, time.Since(start))
	case errors.As(err, &skip):
		logger.Logger.Info("Skipping message",
			zap.String("queue", opts.Queue),
			zap.String("reason", skip.Reason),
		)
		_ = msg.Ack(false)
		pkgmq.EndDeliverySpan(msgCtx, span, msg.RoutingKey, "skip", nil, time.Since(start))
	default:
		logger.Logger.Error("Failed to process message",
			zap.String("queue", opts.Queue),
			zap.String("consumer_tag", opts.ConsumerTag),
			zap.Error(err),
		)
		_ = msg.Nack(false, true)
		pkgmq.EndDeliverySpan(msgCtx, span, msg.RoutingKey, "requeue", err, time.Since(start))
	}
}
