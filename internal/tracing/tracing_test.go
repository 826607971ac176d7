package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tessark/gurl/internal/config"
	"github.com/tessark/gurl/internal/httpwire"
)

func TestInitDisabled(t *testing.T) {
	p, err := Init(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if p.Tracer() == nil {
		t.Fatalf("disabled provider must still return a tracer")
	}
	if p.ShouldPropagate() {
		t.Fatalf("propagation should default to off")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestInitRejectsUnknownProtocol(t *testing.T) {
	_, err := Init(context.Background(), config.TracingConfig{
		Endpoint: "localhost:4317",
		Protocol: "carrier-pigeon",
	})
	if err == nil {
		t.Fatalf("expected error for unsupported protocol")
	}
}

func TestInitRejectsBadSampleRate(t *testing.T) {
	_, err := Init(context.Background(), config.TracingConfig{
		Endpoint:   "localhost:4317",
		SampleRate: 2.0,
	})
	if err == nil {
		t.Fatalf("expected error for out-of-range sample rate")
	}
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *Provider
	if p.Tracer() == nil {
		t.Fatalf("nil provider must return a no-op tracer")
	}
	if p.ShouldPropagate() {
		t.Fatalf("nil provider must not propagate")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown on nil provider failed: %v", err)
	}
}

func TestInjectHeaders(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	header := &httpwire.Header{}
	InjectHeaders(ctx, header)

	if !header.Has("traceparent") {
		t.Fatalf("expected traceparent header, got %v", header.Fields())
	}
}
