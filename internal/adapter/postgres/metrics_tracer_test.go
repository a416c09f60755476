package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedQuery struct {
	driver    string
	operation string
	err       error
}

type recordingObserver struct {
	queries []recordedQuery
}

func (r *recordingObserver) ObserveQuery(driver, operation string, _ time.Duration, err error) {
	r.queries = append(r.queries, recordedQuery{driver: driver, operation: operation, err: err})
}

func TestOperationName(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT 1", "select"},
		{"\n\t\tINSERT INTO snippets", "insert"},
		{"delete from snippets", "delete"},
		{"", "unknown"},
		{"   ", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, operationName(tt.sql), "sql %q", tt.sql)
	}
}

func TestMetricsTracer_ReportsQueries(t *testing.T) {
	observer := &recordingObserver{}
	tracer := NewMetricsTracer(observer)
	boom := errors.New("boom")

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "DELETE FROM snippets"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: boom})

	require.Len(t, observer.queries, 1)
	assert.Equal(t, recordedQuery{driver: "postgres", operation: "delete", err: boom}, observer.queries[0])
}

func TestMetricsTracer_IgnoresUntracedContext(t *testing.T) {
	observer := &recordingObserver{}
	tracer := NewMetricsTracer(observer)

	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})

	assert.Empty(t, observer.queries)
}

func TestExtractSSLMode(t *testing.T) {
	assert.Equal(t, "disable", extractSSLMode("postgres://u:p@localhost/db?sslmode=disable"))
	assert.Equal(t, "prefer (default)", extractSSLMode("postgres://u:p@localhost/db"))
	assert.Equal(t, "unknown", extractSSLMode("://bad"))
}
