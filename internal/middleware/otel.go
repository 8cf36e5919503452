package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"OnDuty/config"
)

var (
	httpRequestTotal   metric.Int64Counter
	httpDuration       metric.Float64Histogram
	httpResponseSize   metric.Int64Histogram
	httpActiveRequests metric.Int64UpDownCounter
)

// initTelemetryMetrics creates the HTTP server instruments. Safe before the
// meter provider is installed: the global meter delegates lazily.
func initTelemetryMetrics() error {
	meter := otel.Meter(config.Cfg.ServiceName)

	var err error
	if httpRequestTotal, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}
	if httpDuration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return err
	}
	if httpResponseSize, err = meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("HTTP response size"),
		metric.WithUnit("By"),
	); err != nil {
		return err
	}
	if httpActiveRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}
	return nil
}

// NewServerTracer returns the Hertz server option and matching middleware
// that continue incoming trace context through request handling.
func NewServerTracer() (hertzconfig.Option, app.HandlerFunc) {
	tracer, cfg := hertztracing.NewServerTracer()
	return tracer, hertztracing.ServerMiddleware(cfg)
}

// TelemetryMiddleware records per-request metrics and decorates the active
// server span. Span creation itself belongs to the tracing middleware from
// NewServerTracer, so this layer never opens its own.
func TelemetryMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		httpActiveRequests.Add(ctx, 1)

		method := cleanUTF8(string(c.Method()))
		route := cleanUTF8(string(c.Path()))

		span := trace.SpanFromContext(ctx)
		if requestID := c.GetHeader("X-Request-Id"); len(requestID) > 0 {
			span.SetAttributes(attribute.String("http.request_id", cleanUTF8(string(requestID))))
		}
		if employeeID := c.GetString(IdentityKey); employeeID != "" {
			span.SetAttributes(attribute.String("enduser.id", cleanUTF8(employeeID)))
		}

		c.Next(ctx)

		status := c.Response.StatusCode()
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}

		labels := metric.WithAttributes(
			semconv.HTTPMethod(method),
			semconv.HTTPRoute(route),
			semconv.HTTPStatusCode(status),
		)
		httpRequestTotal.Add(ctx, 1, labels)
		httpDuration.Record(ctx, time.Since(start).Seconds(), labels)
		if size := int64(len(c.Response.Body())); size > 0 {
			httpResponseSize.Record(ctx, size, labels)
		}
		httpActiveRequests.Add(ctx, -1)
	}
}

// cleanUTF8 scrubs user-controlled strings so invalid byte sequences cannot
// break attribute serialization.
func cleanUTF8(val string) string {
	return strings.ToValidUTF8(val, "")
}
