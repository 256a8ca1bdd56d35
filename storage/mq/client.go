package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"portfolio/config"
	"portfolio/pkg/logger"
)

// 联系消息事件拓扑
const (
	ContactExchange       = "contact.events"
	ContactSubmittedKey   = "contact.submitted"
	ContactSubmittedQueue = "contact.submitted"
)

var (
	conn     *amqp.Connection
	connMu   sync.RWMutex
	initOnce sync.Once
	initErr  error
)

// Init 建立连接并声明交换机、队列
func Init() error {
	initOnce.Do(func() {
		c, err := amqp.Dial(config.Cfg.GetRabbitMQURL())
		if err != nil {
			initErr = fmt.Errorf("failed to dial rabbitmq: %w", err)
			return
		}

		if err := declareTopology(c); err != nil {
			_ = c.Close()
			initErr = err
			return
		}

		connMu.Lock()
		conn = c
		connMu.Unlock()

		logger.Logger.Info("RabbitMQ initialized successfully",
			zap.String("exchange", ContactExchange),
			zap.String("queue", ContactSubmittedQueue),
		)
	})

	return initErr
}

func declareTopology(c *amqp.Connection) error {
	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(ContactExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", ContactExchange, err)
	}

	if _, err := ch.QueueDeclare(ContactSubmittedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", ContactSubmittedQueue, err)
	}

	if err := ch.QueueBind(ContactSubmittedQueue, ContactSubmittedKey, ContactExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", ContactSubmittedQueue, err)
	}

	return nil
}

func Connection() *amqp.Connection {
	connMu.RLock()
	defer connMu.RUnlock()
	return conn
}

// Ready 连接是否可用，事件发布在未就绪时直接跳过
func Ready() bool {
	c := Connection()
	return c != nil && !c.IsClosed()
}

func Close(ctx context.Context) error {
	connMu.Lock()
	c := conn
	conn = nil
	connMu.Unlock()

	if c == nil {
		return nil
	}

	pubMutex.Lock()
	if publisherCh != nil {
		_ = publisherCh.Close()
		publisherCh = nil
	}
	pubMutex.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- c.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
