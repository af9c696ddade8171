package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// DBTracing instruments a gorm handle with otelgorm spans and flags slow
// statements
type DBTracing struct {
	dbName        string
	slowThreshold time.Duration
	logger        *zap.Logger
	provider      trace.TracerProvider
}

// DBTracingOption configures DBTracing
type DBTracingOption func(*DBTracing)

// WithTracerProvider overrides the global tracer provider
func WithTracerProvider(tp trace.TracerProvider) DBTracingOption {
	return func(d *DBTracing) { d.provider = tp }
}

// NewDBTracing creates the plugin. A zero threshold uses 200ms.
func NewDBTracing(dbName string, slowThreshold time.Duration, logger *zap.Logger, opts ...DBTracingOption) *DBTracing {
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowQueryThreshold
	}
	d := &DBTracing{dbName: dbName, slowThreshold: slowThreshold, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type queryStartKey struct{}

// Register installs otelgorm and the timing callbacks on db. Query
// variables are never attached to spans.
func (d *DBTracing) Register(db *gorm.DB) error {
	opts := []otelgorm.Option{
		otelgorm.WithDBName(d.dbName),
		otelgorm.WithoutQueryVariables(),
	}
	if d.provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(d.provider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	if err := errors.Join(
		cb.Create().Before("gorm:create").Register("fitcoach_timing:before_create", d.before),
		cb.Create().After("gorm:create").Register("fitcoach_timing:after_create", d.after),
		cb.Query().Before("gorm:query").Register("fitcoach_timing:before_query", d.before),
		cb.Query().After("gorm:query").Register("fitcoach_timing:after_query", d.after),
		cb.Update().Before("gorm:update").Register("fitcoach_timing:before_update", d.before),
		cb.Update().After("gorm:update").Register("fitcoach_timing:after_update", d.after),
		cb.Delete().Before("gorm:delete").Register("fitcoach_timing:before_delete", d.before),
		cb.Delete().After("gorm:delete").Register("fitcoach_timing:after_delete", d.after),
		cb.Row().Before("gorm:row").Register("fitcoach_timing:before_row", d.before),
		cb.Row().After("gorm:row").Register("fitcoach_timing:after_row", d.after),
		cb.Raw().Before("gorm:raw").Register("fitcoach_timing:before_raw", d.before),
		cb.Raw().After("gorm:raw").Register("fitcoach_timing:after_raw", d.after),
	); err != nil {
		return err
	}

	d.logger.Info("Database tracing enabled",
		zap.String("db_system", d.dbName),
		zap.Duration("slow_query_threshold", d.slowThreshold),
	)
	return nil
}

func (d *DBTracing) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (d *DBTracing) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	recording := span.IsRecording()
	if recording && db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed < d.slowThreshold {
		return
	}

	if recording {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	d.logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", db.Statement.RowsAffected),
	)
}
