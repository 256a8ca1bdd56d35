package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 联系表单业务指标
type OTelMetrics struct {
	SubmissionsTotal   metric.Int64Counter
	SubmitDuration     metric.Float64Histogram
	HookFailuresTotal  metric.Int64Counter
	NotificationsTotal metric.Int64Counter
}

var (
	metrics  *OTelMetrics
	initOnce sync.Once
	initErr  error
)

// InitMetrics 用全局 MeterProvider 创建指标。OTel 未启用时是 noop provider。
func InitMetrics(serviceName string) error {
	initOnce.Do(func() {
		initErr = initMetrics(otel.Meter(serviceName))
	})
	return initErr
}

func initMetrics(meter metric.Meter) error {
	m := &OTelMetrics{}
	var err error

	m.SubmissionsTotal, err = meter.Int64Counter(
		"contact_submissions_total",
		metric.WithDescription("Total number of contact form submissions by outcome"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return err
	}

	m.SubmitDuration, err = meter.Float64Histogram(
		"contact_submit_duration_seconds",
		metric.WithDescription("Time spent validating and storing a contact submission"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.HookFailuresTotal, err = meter.Int64Counter(
		"contact_hook_failures_total",
		metric.WithDescription("Post-submit hooks that returned an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	m.NotificationsTotal, err = meter.Int64Counter(
		"contact_owner_notifications_total",
		metric.WithDescription("Owner notification mails by status"),
		metric.WithUnit("{mail}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 未初始化时返回 nil，所有 Record 方法都接受 nil 接收者
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordSubmission 记录一次提交，outcome 为 accepted / rejected / failed
func (m *OTelMetrics) RecordSubmission(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.SubmissionsTotal.Add(ctx, 1, attrs)
	m.SubmitDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *OTelMetrics) RecordHookFailure(ctx context.Context, hook string) {
	if m == nil {
		return
	}
	m.HookFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("hook", hook)))
}

func (m *OTelMetrics) RecordNotification(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
