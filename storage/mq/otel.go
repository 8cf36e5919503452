package mq

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"OnDuty/config"
)

var (
	mqMessagesTotal   metric.Int64Counter
	mqMessageDuration metric.Float64Histogram
	mqPublishErrors   metric.Int64Counter

	telemetryOnce sync.Once
	mqTracer      trace.Tracer
)

// initTelemetry builds the broker instruments lazily on the first publish or
// consume, so both the scheduler and the worker get them without an extra
// init step. An instrument error must not break messaging; the no-op meter
// steps in instead.
func initTelemetry() {
	telemetryOnce.Do(func() {
		serviceName := config.Cfg.ServiceName
		mqTracer = otel.Tracer(serviceName + ".rabbitmq")

		meter := otel.Meter(serviceName)
		var err error
		mqMessagesTotal, err = meter.Int64Counter(
			"mq.messages.total",
			metric.WithDescription("Total number of broker messages"),
			metric.WithUnit("{message}"),
		)
		if err == nil {
			mqMessageDuration, err = meter.Float64Histogram(
				"mq.message.duration",
				metric.WithDescription("Broker message handling duration"),
				metric.WithUnit("s"),
				metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30),
			)
		}
		if err == nil {
			mqPublishErrors, err = meter.Int64Counter(
				"mq.publish.errors",
				metric.WithDescription("Number of broker publish errors"),
				metric.WithUnit("{error}"),
			)
		}
		if err != nil {
			nm := noop.NewMeterProvider().Meter(serviceName)
			mqMessagesTotal, _ = nm.Int64Counter("mq.messages.total")
			mqMessageDuration, _ = nm.Float64Histogram("mq.message.duration")
			mqPublishErrors, _ = nm.Int64Counter("mq.publish.errors")
		}
	})
}

// startPublishSpan opens the producer span and injects its context into the
// message headers, so the worker's consume span joins the same trace.
func startPublishSpan(ctx context.Context, exchange, routingKey string, headers amqp.Table) (context.Context, trace.Span, amqp.Table) {
	initTelemetry()

	ctx, span := mqTracer.Start(ctx, "mq.publish."+routingKey,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			attribute.String("messaging.rabbitmq.exchange", exchange),
			attribute.String("messaging.rabbitmq.routing_key", routingKey),
		),
	)

	if headers == nil {
		headers = make(amqp.Table)
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(headers))
	return ctx, span, headers
}

func finishPublishSpan(ctx context.Context, span trace.Span, routingKey string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		mqPublishErrors.Add(ctx, 1)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	labels := metric.WithAttributes(
		semconv.MessagingSystem("rabbitmq"),
		attribute.String("messaging.operation", "publish"),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
		attribute.String("messaging.status", status),
	)
	mqMessagesTotal.Add(ctx, 1, labels)
	mqMessageDuration.Record(ctx, time.Since(start).Seconds(), labels)
}

// startConsumeSpan extracts the producer's trace context from the delivery
// headers and opens the consumer span under it.
func startConsumeSpan(queue string, headers amqp.Table) (context.Context, trace.Span) {
	initTelemetry()

	ctx := otel.GetTextMapPropagator().Extract(context.Background(), headerCarrier(headers))
	return mqTracer.Start(ctx, "mq.consume."+queue,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			attribute.String("messaging.rabbitmq.queue", queue),
			attribute.String("messaging.operation", "process"),
		),
	)
}

func finishConsumeSpan(ctx context.Context, span trace.Span, queue string, start time.Time, outcome string, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.String("messaging.outcome", outcome))
	span.End()

	labels := metric.WithAttributes(
		semconv.MessagingSystem("rabbitmq"),
		attribute.String("messaging.operation", "process"),
		attribute.String("messaging.rabbitmq.queue", queue),
		attribute.String("messaging.status", outcome),
	)
	mqMessagesTotal.Add(ctx, 1, labels)
	mqMessageDuration.Record(ctx, time.Since(start).Seconds(), labels)
}

// headerCarrier adapts amqp.Table to the propagation carrier contract.
// Non-string header values are invisible to it.
type headerCarrier amqp.Table

func (c headerCarrier) Get(key string) string {
	if val, ok := c[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	c[key] = value
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
