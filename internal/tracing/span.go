package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tessark/gurl/internal/httpwire"
)

// StartRequestSpan starts a client span for one request attempt.
func StartRequestSpan(ctx context.Context, tracer trace.Tracer, method, url string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, method+" "+url,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", url),
	)
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// headerCarrier adapts the wire header collection to the OTel
// TextMapCarrier interface.
type headerCarrier struct {
	header *httpwire.Header
}

func (c headerCarrier) Get(key string) string {
	v, _ := c.header.Get(key)
	return v
}

func (c headerCarrier) Set(key, value string) {
	c.header.Add(key, value)
}

func (c headerCarrier) Keys() []string {
	fields := c.header.Fields()
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Name)
	}
	return keys
}

// InjectHeaders injects W3C trace context into the outgoing request
// headers.
func InjectHeaders(ctx context.Context, header *httpwire.Header) {
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{header: header})
}
