package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrierReadsOnlyStringValues(t *testing.T) {
	headers := amqp.Table{"x-delay": int64(5000)}
	carrier := headerCarrier(headers)

	carrier.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	if got := carrier.Get("traceparent"); got != "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01" {
		t.Errorf("Get(traceparent) = %q", got)
	}
	if got := carrier.Get("x-delay"); got != "" {
		t.Errorf("non-string header must read as empty, got %q", got)
	}
	if got := carrier.Get("missing"); got != "" {
		t.Errorf("missing header must read as empty, got %q", got)
	}
	if got := len(carrier.Keys()); got != 2 {
		t.Errorf("Keys() length = %d, want 2", got)
	}

	// The carrier writes through to the underlying table the publisher sends.
	if _, ok := headers["traceparent"]; !ok {
		t.Error("Set must land in the amqp.Table itself")
	}
}

func TestTraceContextSurvivesMessageHeaders(t *testing.T) {
	in := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x0a, 0xf7, 0x65, 0x19, 0x16, 0xcd, 0x43, 0xdd, 0x84, 0x48, 0xeb, 0x21, 0x1c, 0x80, 0x31, 0x9c},
		SpanID:     trace.SpanID{0xb7, 0xad, 0x6b, 0x71, 0x69, 0x20, 0x33, 0x31},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), in)

	headers := make(amqp.Table)
	prop := propagation.TraceContext{}
	prop.Inject(ctx, headerCarrier(headers))

	out := trace.SpanContextFromContext(prop.Extract(context.Background(), headerCarrier(headers)))
	if out.TraceID() != in.TraceID() {
		t.Errorf("trace id = %s, want %s", out.TraceID(), in.TraceID())
	}
	if out.SpanID() != in.SpanID() {
		t.Errorf("span id = %s, want %s", out.SpanID(), in.SpanID())
	}
	if !out.IsSampled() {
		t.Error("sampled flag must survive the headers")
	}
}
