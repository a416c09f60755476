package style

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"darkMode":"media","content":["./a"],"plugins":[]}`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *StyleConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *StyleConfig) { changes <- cfg })
	}()

	// Give the watcher time to register before touching the file.
	time.Sleep(100 * time.Millisecond)

	// An invalid intermediate write is skipped.
	require.NoError(t, os.WriteFile(path, []byte(`{"darkMode":"auto"}`), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"darkMode":"selector","content":["./b"],"plugins":[]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	select {
	case cfg := <-changes:
		assert.Equal(t, DarkModeSelector, cfg.DarkMode.Strategy)
		assert.Equal(t, []string{"./b"}, cfg.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "style.json"), func(*StyleConfig) {})
	assert.Error(t, err)
}
