package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesExtension(t *testing.T) {
	tests := []struct {
		path string
		exts []string
		want bool
	}{
		{"src/Main.kt", nil, true},
		{"src/Main.kt", []string{"kt"}, true},
		{"src/Main.kt", []string{".kt"}, true},
		{"src/Main.KT", []string{"kt"}, true},
		{"src/Main.java", []string{"kt", "xml"}, false},
		{"Makefile", []string{"kt"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesExtension(tt.path, tt.exts))
		})
	}
}

func TestRelevant(t *testing.T) {
	w := New(Config{Extensions: []string{"txt"}}, nil)

	assert.True(t, w.relevant(fsnotify.Event{Name: "/p/a.txt", Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "/p/a.txt", Op: fsnotify.Remove}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/p/a.txt", Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/p/.a.txt", Op: fsnotify.Write}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/p/a.go", Op: fsnotify.Write}))
}

func TestExcluded(t *testing.T) {
	w := New(Config{Exclude: []string{"/p/build/reports"}}, nil)

	assert.True(t, w.excluded("/p/build/reports"))
	assert.True(t, w.excluded("/p/build/reports/lint-results.html"))
	assert.False(t, w.excluded("/p/build"))
	assert.False(t, w.excluded("/p/build/reports-old/x.html"))
	assert.False(t, w.excluded("/p/src/a.txt"))
}

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) action(_ context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changed)
	return nil
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		out = append(out, c...)
	}
	return out
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "reports"), 0o755))

	rec := &recorder{}
	w := New(Config{
		Dirs:       []string{dir},
		Exclude:    []string{filepath.Join(dir, "reports")},
		Extensions: []string{"txt"},
		Debounce:   20 * time.Millisecond,
	}, rec.action)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	target := filepath.Join(dir, "src", "a.txt")
	// the watcher may not be registered yet; keep touching until it fires
	require.Eventually(t, func() bool {
		_ = os.WriteFile(target, []byte("x\n"), 0o644)
		_ = os.WriteFile(filepath.Join(dir, "src", "ignored.go"), []byte("x\n"), 0o644)
		_ = os.WriteFile(filepath.Join(dir, "reports", "r.txt"), []byte("x\n"), 0o644)
		return len(rec.all()) > 0
	}, 5*time.Second, 50*time.Millisecond)

	assert.Contains(t, rec.all(), target)
	assert.NotContains(t, rec.all(), filepath.Join(dir, "src", "ignored.go"))
	assert.NotContains(t, rec.all(), filepath.Join(dir, "reports", "r.txt"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w := New(Config{Dirs: []string{filepath.Join(t.TempDir(), "missing")}}, func(context.Context, []string) error { return nil })
	err := w.Run(context.Background())
	require.Error(t, err)
}
