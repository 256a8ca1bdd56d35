package mq

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	mqMessagesTotal   metric.Int64Counter
	mqMessageDuration metric.Float64Histogram
)

// InitMQMetrics 初始化 RabbitMQ 指标
func InitMQMetrics(meter metric.Meter) error {
	var err error

	mqMessagesTotal, err = meter.Int64Counter(
		"mq.messages.total",
		metric.WithDescription("Total number of RabbitMQ messages published or handled"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return err
	}

	mqMessageDuration, err = meter.Float64Histogram(
		"mq.message.duration",
		metric.WithDescription("RabbitMQ publish / handle duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	return err
}

// Publisher 是 *amqp.Channel 上发布所需的那部分
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// InstrumentedChannel 发布时创建 span，并把 trace 上下文写进消息头
type InstrumentedChannel struct {
	ch          Publisher
	serviceName string
	tracer      trace.Tracer
}

func NewInstrumentedChannel(ch Publisher, serviceName string) *InstrumentedChannel {
	return &InstrumentedChannel{
		ch:          ch,
		serviceName: serviceName,
		tracer:      otel.Tracer(serviceName + ".rabbitmq"),
	}
}

// PublishWithContext 发布消息并添加追踪
func (ic *InstrumentedChannel) PublishWithContext(
	ctx context.Context,
	exchange, routingKey string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	start := time.Now()

	ctx, span := ic.tracer.Start(ctx, "rabbitmq.publish "+routingKey,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingOperationPublish,
			semconv.MessagingRabbitmqDestinationRoutingKey(routingKey),
			attribute.String("messaging.rabbitmq.exchange", exchange),
			semconv.MessagingMessageID(msg.MessageId),
		),
	)
	defer span.End()

	headers := make(amqp.Table, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	otel.GetTextMapPropagator().Inject(ctx, &MessageHeaderCarrier{Headers: headers})
	msg.Headers = headers

	err := ic.ch.PublishWithContext(ctx, exchange, routingKey, mandatory, immediate, msg)

	status := "success"
	if err != nil {
		status = "error"
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	record(ctx, "publish", routingKey, status, time.Since(start))

	return err
}

// StartDeliverySpan 从消息头恢复上游 trace，并为消息处理开启 span
func StartDeliverySpan(ctx context.Context, serviceName string, d amqp.Delivery) (context.Context, trace.Span) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, &MessageHeaderCarrier{Headers: d.Headers})

	return otel.Tracer(serviceName+".rabbitmq").Start(ctx, "rabbitmq.process "+d.RoutingKey,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingOperationProcess,
			semconv.MessagingRabbitmqDestinationRoutingKey(d.RoutingKey),
			attribute.String("messaging.rabbitmq.exchange", d.Exchange),
			semconv.MessagingMessageID(d.MessageId),
		),
	)
}

// EndDeliverySpan 结束处理 span，status 为 ack / skip / requeue / drop
func EndDeliverySpan(ctx context.Context, span trace.Span, routingKey, status string, err error, elapsed time.Duration) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.String("messaging.status", status))
	span.End()

	record(ctx, "process", routingKey, status, elapsed)
}

func record(ctx context.Context, operation, routingKey, status string, elapsed time.Duration) {
	if mqMessagesTotal == nil || mqMessageDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
		attribute.String("messaging.status", status),
	)
	mqMessagesTotal.Add(ctx, 1, attrs)
	mqMessageDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// MessageHeaderCarrier 实现 propagation.TextMapCarrier 接口
type MessageHeaderCarrier struct {
	Headers amqp.Table
}

func (m *MessageHeaderCarrier) Get(key string) string {
	if val, ok := m.Headers[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func (m *MessageHeaderCarrier) Set(key, value string) {
	if m.Headers == nil {
		m.Headers = make(amqp.Table)
	}
	m.Headers[key] = value
}

func (m *MessageHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(m.Headers))
	for k := range m.Headers {
		keys = append(keys, k)
	}
	return keys
}
