package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/binp/internal/domain"
)

// mockSnippetRepo implements domain.SnippetRepository for tests.
type mockSnippetRepo struct {
	createFn        func(ctx context.Context, snippet *domain.Snippet) error
	getByIDFn       func(ctx context.Context, id string) (*domain.Snippet, error)
	deleteFn        func(ctx context.Context, id string) error
	deleteExpiredFn func(ctx context.Context, now time.Time) ([]string, error)

	mu    sync.Mutex
	reads int
}

func (m *mockSnippetRepo) Create(ctx context.Context, snippet *domain.Snippet) error {
	if m.createFn != nil {
		return m.createFn(ctx, snippet)
	}
	return nil
}

func (m *mockSnippetRepo) GetByID(ctx context.Context, id string) (*domain.Snippet, error) {
	m.mu.Lock()
	m.reads++
	m.mu.Unlock()
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrSnippetNotFound
}

func (m *mockSnippetRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockSnippetRepo) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, now)
	}
	return nil, nil
}

func (m *mockSnippetRepo) readCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// recordingCacheMetrics counts cache events per layer.
type recordingCacheMetrics struct {
	mu            sync.Mutex
	hits          map[string]int
	misses        map[string]int
	invalidations int
	entries       int
}

func newRecordingCacheMetrics() *recordingCacheMetrics {
	return &recordingCacheMetrics{hits: map[string]int{}, misses: map[string]int{}}
}

func (r *recordingCacheMetrics) Hit(layer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits[layer]++
}

func (r *recordingCacheMetrics) Miss(layer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses[layer]++
}

func (r *recordingCacheMetrics) Invalidated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidations++
}

func (r *recordingCacheMetrics) SetEntries(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = n
}

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}
