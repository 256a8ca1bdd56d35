package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	instanceKeySpan  = "otel:span"
	instanceKeyStart = "otel:start_time"
)

var (
	dbQueriesTotal  metric.Int64Counter
	dbQueryDuration metric.Float64Histogram
)

// InitDatabaseMetrics 初始化数据库指标，未调用时插件只产生 span
func InitDatabaseMetrics(meter metric.Meter) error {
	var err error

	dbQueriesTotal, err = meter.Int64Counter(
		"db.queries.total",
		metric.WithDescription("Total number of database statements"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return err
	}

	dbQueryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database statement duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	return err
}

// PluginConfig 插件配置
type PluginConfig struct {
	ServiceName  string
	MaxSQLLength int
}

// OTELPlugin GORM OpenTelemetry 插件。联系消息表只有写入，
// 所以只挂 create 和 raw（迁移、readyz 探活）两类回调。
type OTELPlugin struct {
	tracer trace.Tracer
	config PluginConfig
}

func NewOTELPlugin(config PluginConfig) *OTELPlugin {
	if config.ServiceName == "" {
		config.ServiceName = "portfolio"
	}
	if config.MaxSQLLength <= 0 {
		config.MaxSQLLength = 500
	}

	return &OTELPlugin{
		tracer: otel.Tracer(config.ServiceName + ".gorm"),
		config: config,
	}
}

func (p *OTELPlugin) Name() string {
	return "otel_plugin"
}

// Initialize 注册回调
func (p *OTELPlugin) Initialize(db *gorm.DB) error {
	callbacks := db.Callback()

	if err := callbacks.Create().Before("gorm:create").Register("otel:before_create", p.before("db.insert")); err != nil {
		return err
	}
	if err := callbacks.Create().After("gorm:create").Register("otel:after_create", p.after("db.insert")); err != nil {
		return err
	}
	if err := callbacks.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("db.raw")); err != nil {
		return err
	}
	return callbacks.Raw().After("gorm:raw").Register("otel:after_raw", p.after("db.raw"))
}

func (p *OTELPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx, span := p.tracer.Start(db.Statement.Context, operation,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemPostgreSQL,
				semconv.DBOperation(operation),
				attribute.String("db.table", db.Statement.Table),
			),
		)

		db.InstanceSet(instanceKeyStart, time.Now())
		db.InstanceSet(instanceKeySpan, span)
		db.Statement.Context = ctx
	}
}

func (p *OTELPlugin) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(instanceKeySpan)
		if !ok {
			return
		}
		span, ok := v.(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		// SQL 只在执行后才完整，参数不记录
		span.SetAttributes(
			semconv.DBStatement(truncate(db.Statement.SQL.String(), p.config.MaxSQLLength)),
			attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
		)

		status := "success"
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			status = "error"
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		} else {
			span.SetStatus(codes.Ok, "")
		}

		var elapsed float64
		if start, ok := db.InstanceGet(instanceKeyStart); ok {
			if t, ok := start.(time.Time); ok {
				elapsed = time.Since(t).Seconds()
			}
		}
		recordQuery(db.Statement.Context, operation, status, elapsed)
	}
}

func recordQuery(ctx context.Context, operation, status string, seconds float64) {
	if dbQueriesTotal == nil || dbQueryDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.status", status),
	)
	dbQueriesTotal.Add(ctx, 1, attrs)
	dbQueryDuration.Record(ctx, seconds, attrs)
}

func truncate(sql string, max int) string {
	sql = strings.TrimSpace(sql)
	if len(sql) > max {
		return sql[:max] + "..."
	}
	return sql
}

// WithDefaultOTELPlugin 为 GORM 添加 OpenTelemetry 插件
func WithDefaultOTELPlugin(db *gorm.DB, serviceName string) error {
	return db.Use(NewOTELPlugin(PluginConfig{ServiceName: serviceName}))
}
