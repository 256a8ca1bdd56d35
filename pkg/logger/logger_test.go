package logger

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext_AddsTraceIDs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := Logger
	Logger = zap.New(core)
	defer func() { Logger = prev }()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	WithContext(ctx).Info("with span")
	WithContext(context.Background()).Info("without span")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != traceID.String() || fields["span_id"] != spanID.String() {
		t.Errorf("fields = %v", fields)
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Error("no trace_id expected without a span")
	}
}

func TestParseZapLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"Error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseZapLevel(in); got != want {
			t.Errorf("parseZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
