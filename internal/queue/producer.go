package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"portfolio/internal/model"
	"portfolio/pkg/logger"
	"portfolio/pkg/snowflake"
	"portfolio/storage/mq"
)

// PublishFunc 发布一条 JSON 消息，默认是 mq.PublishMessage
type PublishFunc func(ctx context.Context, exchange, routingKey, messageID string, body interface{}) error

// ContactPublisher 联系消息落库后投递 contact.submitted 事件
type ContactPublisher struct {
	publish PublishFunc
	nextID  func(prefix string) (string, error)
}

func NewContactPublisher() *ContactPublisher {
	return &ContactPublisher{publish: mq.PublishMessage, nextID: snowflake.MessageID}
}

func (p *ContactPublisher) Name() string {
	return "contact_submitted_event"
}

// AfterSubmit 实现 service.SubmitHook
func (p *ContactPublisher) AfterSubmit(ctx context.Context, msg *model.ContactMessage) error {
	messageID, err := p.nextID("contact_submitted")
	if err != nil {
		return fmt.Errorf("failed to generate message ID: %w", err)
	}

	event := model.NewContactSubmittedMessage(messageID, msg)
	if err := p.publish(ctx, mq.ContactExchange, mq.ContactSubmittedKey, messageID, event); err != nil {
		return fmt.Errorf("publish %s: %w", mq.ContactSubmittedKey, err)
	}

	logger.Logger.Info("Published contact submitted event",
		zap.String("message_id", messageID),
		zap.String("contact_id", event.ContactID),
	)
	return nil
}
