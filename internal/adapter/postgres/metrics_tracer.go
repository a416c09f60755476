package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// QueryObserver records query timings. *metrics.DatabaseMetrics satisfies it.
type QueryObserver interface {
	ObserveQuery(driver, operation string, d time.Duration, err error)
}

// MetricsTracer implements pgx.QueryTracer and reports every query to an
// observer, labelled by its leading SQL keyword.
type MetricsTracer struct {
	observer QueryObserver
}

var _ pgx.QueryTracer = (*MetricsTracer)(nil)

func NewMetricsTracer(observer QueryObserver) *MetricsTracer {
	return &MetricsTracer{observer: observer}
}

type queryContextKey struct{}

type queryContext struct {
	start     time.Time
	operation string
}

func (t *MetricsTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryContextKey{}, queryContext{
		start:     time.Now(),
		operation: operationName(data.SQL),
	})
}

func (t *MetricsTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qctx, ok := ctx.Value(queryContextKey{}).(queryContext)
	if !ok {
		return
	}
	t.observer.ObserveQuery("postgres", qctx.operation, time.Since(qctx.start), data.Err)
}

// operationName keeps label cardinality low by using only the first keyword.
func operationName(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
