package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	redisCommandsTotal   metric.Int64Counter
	redisCommandDuration metric.Float64Histogram
)

// InitRedisMetrics 初始化 Redis 指标
func InitRedisMetrics(meter metric.Meter) error {
	var err error

	redisCommandsTotal, err = meter.Int64Counter(
		"redis.commands.total",
		metric.WithDescription("Total number of Redis commands"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return err
	}

	redisCommandDuration, err = meter.Float64Histogram(
		"redis.command.duration",
		metric.WithDescription("Redis command duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0),
	)
	return err
}

// TracingHook 为每条 Redis 命令创建 span。限流 key 里只有 IP 哈希，
// 记录 key 名不会泄露访客信息，但命令参数（页面内容等）不记录。
type TracingHook struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

func NewTracingHook(serviceName string, db int) *TracingHook {
	return &TracingHook{
		tracer: otel.Tracer(serviceName + ".redis"),
		attrs: []attribute.KeyValue{
			semconv.DBSystemRedis,
			semconv.DBRedisDBIndex(db),
		},
	}
}

func (th *TracingHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (th *TracingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		ctx, span := th.tracer.Start(ctx, "redis."+cmd.Name(),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(th.attrs...),
		)
		defer span.End()

		span.SetAttributes(semconv.DBOperation(cmd.Name()))
		if key, ok := firstKey(cmd.Args()); ok {
			span.SetAttributes(attribute.String("redis.key", key))
		}

		start := time.Now()
		err := next(ctx, cmd)
		th.finish(ctx, span, cmd.Name(), err, time.Since(start))
		return err
	}
}

func (th *TracingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		ctx, span := th.tracer.Start(ctx, "redis.pipeline",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(th.attrs...),
		)
		defer span.End()

		span.SetAttributes(attribute.Int("redis.pipeline.count", len(cmds)))

		start := time.Now()
		err := next(ctx, cmds)
		th.finish(ctx, span, "pipeline", err, time.Since(start))
		return err
	}
}

func (th *TracingHook) finish(ctx context.Context, span trace.Span, command string, err error, elapsed time.Duration) {
	status := "success"
	switch {
	case errors.Is(err, redis.Nil):
		status = "not_found"
		span.SetStatus(codes.Ok, "key not found")
	case err != nil:
		status = "error"
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	default:
		span.SetStatus(codes.Ok, "")
	}

	if redisCommandsTotal == nil || redisCommandDuration == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("redis.command", command),
		attribute.String("redis.status", status),
	)
	redisCommandsTotal.Add(ctx, 1, attrs)
	redisCommandDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func firstKey(args []interface{}) (string, bool) {
	if len(args) < 2 {
		return "", false
	}
	key, ok := args[1].(string)
	if !ok {
		return "", false
	}
	if len(key) > 100 {
		key = key[:100] + "..."
	}
	return key, true
}
