package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBDurationBuckets are histogram boundaries for query latency, in seconds.
var DBDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

var (
	attrDBOperation = attribute.Key("db.operation")
	attrDBTable     = attribute.Key("db.table")
	attrDBState     = attribute.Key("state")
)

// DBMetrics records query counts, latency and connection pool usage.
type DBMetrics struct {
	queries       *Counter
	duration      *Histogram
	slowQueries   *Counter
	slowThreshold time.Duration
	registration  metric.Registration
}

// NewDBMetrics creates the query instruments and, when sqlDB is non-nil,
// an observable gauge reporting its pool state on every collection.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, slowThreshold time.Duration) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}

	queries, err := NewCounter(meter, "db_query_total", "Database queries by operation", "{query}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	slowQueries, err := NewCounter(meter, "db_slow_query_total", "Queries slower than the slow threshold", "{query}")
	if err != nil {
		return nil, err
	}

	m := &DBMetrics{
		queries:       queries,
		duration:      duration,
		slowQueries:   slowQueries,
		slowThreshold: slowThreshold,
	}
	if sqlDB == nil {
		return m, nil
	}

	pool, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}
	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(pool, int64(stats.Idle), metric.WithAttributes(attrDBState.String("idle")))
		o.ObserveInt64(pool, int64(stats.InUse), metric.WithAttributes(attrDBState.String("in_use")))
		o.ObserveInt64(pool, int64(stats.MaxOpenConnections), metric.WithAttributes(attrDBState.String("max")))
		return nil
	}, pool)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordQuery records one finished statement.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, elapsed time.Duration) {
	op := attrDBOperation.String(operation)
	m.queries.Inc(ctx, op)
	m.duration.RecordDuration(ctx, elapsed, op)
	if elapsed > m.slowThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueries.Inc(ctx, attrDBTable.String(table))
	}
}

// Close unregisters the pool gauge callback.
func (m *DBMetrics) Close() error {
	if m == nil || m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

// DBMetricsPlugin is a gorm.Plugin timing every statement.
type DBMetricsPlugin struct {
	metrics *DBMetrics
}

// NewDBMetricsPlugin wraps metrics as a gorm plugin.
func NewDBMetricsPlugin(metrics *DBMetrics) *DBMetricsPlugin {
	return &DBMetricsPlugin{metrics: metrics}
}

// Name implements gorm.Plugin.
func (p *DBMetricsPlugin) Name() string { return "storefront:db_metrics" }

type queryStartKey struct{}

// Initialize implements gorm.Plugin.
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	start := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		tx.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
	}
	finish := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			ctx := tx.Statement.Context
			began, ok := ctx.Value(queryStartKey{}).(time.Time)
			if !ok {
				return
			}
			op := operation
			if op == "" {
				op = operationOf(tx.Statement.SQL.String())
			}
			p.metrics.RecordQuery(ctx, op, tx.Statement.Table, time.Since(began))
		}
	}

	cb := db.Callback()
	for _, reg := range []error{
		cb.Create().Before("gorm:create").Register("db_metrics:before_create", start),
		cb.Query().Before("gorm:query").Register("db_metrics:before_query", start),
		cb.Update().Before("gorm:update").Register("db_metrics:before_update", start),
		cb.Delete().Before("gorm:delete").Register("db_metrics:before_delete", start),
		cb.Raw().Before("gorm:raw").Register("db_metrics:before_raw", start),
		cb.Create().After("gorm:create").Register("db_metrics:after_create", finish("INSERT")),
		cb.Query().After("gorm:query").Register("db_metrics:after_query", finish("SELECT")),
		cb.Update().After("gorm:update").Register("db_metrics:after_update", finish("UPDATE")),
		cb.Delete().After("gorm:delete").Register("db_metrics:after_delete", finish("DELETE")),
		cb.Raw().After("gorm:raw").Register("db_metrics:after_raw", finish("")),
	} {
		if reg != nil {
			return reg
		}
	}
	return nil
}

func operationOf(sqlText string) string {
	sqlText = strings.ToUpper(strings.TrimSpace(sqlText))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sqlText, op) {
			return op
		}
	}
	return "OTHER"
}

// RegisterDBMetrics installs query and pool metrics on db. It returns nil
// metrics when the meter provider is disabled.
func RegisterDBMetrics(db *gorm.DB, mp *MeterProvider, slowThreshold time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	if mp == nil || !mp.IsEnabled() {
		logger.Debug("Meter provider disabled, skipping database metrics")
		return nil, nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	metrics, err := NewDBMetrics(mp.Meter("db.client"), sqlDB, slowThreshold)
	if err != nil {
		return nil, err
	}
	if err := db.Use(NewDBMetricsPlugin(metrics)); err != nil {
		_ = metrics.Close()
		return nil, err
	}
	logger.Info("Database metrics registered", zap.Duration("slow_threshold", slowThreshold))
	return metrics, nil
}
