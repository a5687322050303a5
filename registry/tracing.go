// Tracing wrapper for channel registries.
package registry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vinayprograms/uibridge/registry"

// TracedRegistry wraps a Registry with OpenTelemetry spans around
// Publish, Subscribe and handler delivery.
type TracedRegistry struct {
	inner  Registry
	tracer trace.Tracer
}

// WithTracing wraps a registry with tracing instrumentation.
func WithTracing(r Registry) Registry {
	return &TracedRegistry{
		inner:  r,
		tracer: otel.Tracer(tracerName),
	}
}

// Subscribe implements Registry with a traced handler.
func (t *TracedRegistry) Subscribe(topic string, h Handler) (Subscription, error) {
	_, span := t.tracer.Start(context.Background(), "registry.subscribe",
		trace.WithAttributes(attribute.String("topic", topic)))

	traced := func(msg *Message) {
		_, dspan := t.tracer.Start(context.Background(), "registry.deliver",
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("topic", msg.Topic),
				attribute.Int("payload_bytes", len(msg.Data)),
			))
		h(msg)
		dspan.End()
	}

	sub, err := t.inner.Subscribe(topic, traced)
	endSpan(span, err)
	return sub, err
}

// Publish implements Registry with tracing.
func (t *TracedRegistry) Publish(topic string, data []byte) error {
	_, span := t.tracer.Start(context.Background(), "registry.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("topic", topic),
			attribute.Int("payload_bytes", len(data)),
		))

	err := t.inner.Publish(topic, data)
	endSpan(span, err)
	return err
}

// Close implements Registry.
func (t *TracedRegistry) Close() error {
	return t.inner.Close()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
