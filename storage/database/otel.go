package database

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const maxRecordedSQLLength = 500

var (
	dbQueriesTotal  metric.Int64Counter
	dbQueryDuration metric.Float64Histogram
)

// telemetryPlugin traces every gorm operation as a client span and counts
// queries by operation and outcome. Statement text is attached in the after
// callback, once gorm has actually built it, and never includes bound
// parameters.
type telemetryPlugin struct {
	tracer trace.Tracer
}

func newTelemetryPlugin(serviceName string) (*telemetryPlugin, error) {
	meter := otel.Meter(serviceName)

	var err error
	if dbQueriesTotal, err = meter.Int64Counter(
		"db.queries.total",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	); err != nil {
		return nil, err
	}
	if dbQueryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5),
	); err != nil {
		return nil, err
	}

	return &telemetryPlugin{tracer: otel.Tracer(serviceName + ".gorm")}, nil
}

func (p *telemetryPlugin) Name() string {
	return "onduty:telemetry"
}

func (p *telemetryPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	for _, step := range []error{
		cb.Create().Before("gorm:create").Register("telemetry:before_create", p.before("db.create")),
		cb.Create().After("gorm:create").Register("telemetry:after_create", p.after("db.create")),
		cb.Query().Before("gorm:query").Register("telemetry:before_select", p.before("db.select")),
		cb.Query().After("gorm:query").Register("telemetry:after_select", p.after("db.select")),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", p.before("db.update")),
		cb.Update().After("gorm:update").Register("telemetry:after_update", p.after("db.update")),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", p.before("db.delete")),
		cb.Delete().After("gorm:delete").Register("telemetry:after_delete", p.after("db.delete")),
		cb.Row().Before("gorm:row").Register("telemetry:before_row", p.before("db.row")),
		cb.Row().After("gorm:row").Register("telemetry:after_row", p.after("db.row")),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", p.before("db.raw")),
		cb.Raw().After("gorm:raw").Register("telemetry:after_raw", p.after("db.raw")),
	} {
		if step != nil {
			return step
		}
	}
	return nil
}

func (p *telemetryPlugin) before(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx, span := p.tracer.Start(db.Statement.Context, op,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(semconv.DBSystemPostgreSQL),
		)
		db.InstanceSet("telemetry:span", span)
		db.InstanceSet("telemetry:start", time.Now())
		db.Statement.Context = ctx
	}
}

func (p *telemetryPlugin) after(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		spanVal, ok := db.InstanceGet("telemetry:span")
		if !ok {
			return
		}
		span, ok := spanVal.(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		if table := db.Statement.Table; table != "" {
			span.SetAttributes(attribute.String("db.table", table))
		}
		if sql := db.Statement.SQL.String(); sql != "" {
			span.SetAttributes(semconv.DBStatement(truncateSQL(sql)))
		}
		if db.Statement.RowsAffected >= 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		}

		status := "success"
		switch {
		case db.Error == nil:
			span.SetStatus(codes.Ok, "")
		case db.Error == gorm.ErrRecordNotFound:
			span.SetStatus(codes.Ok, "record not found")
		default:
			status = "error"
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}

		if startVal, ok := db.InstanceGet("telemetry:start"); ok {
			if start, ok := startVal.(time.Time); ok {
				labels := metric.WithAttributes(
					attribute.String("db.operation", op),
					attribute.String("db.status", status),
				)
				ctx := db.Statement.Context
				dbQueriesTotal.Add(ctx, 1, labels)
				dbQueryDuration.Record(ctx, time.Since(start).Seconds(), labels)
			}
		}
	}
}

func truncateSQL(sql string) string {
	if len(sql) > maxRecordedSQLLength {
		return sql[:maxRecordedSQLLength] + "..."
	}
	return sql
}
