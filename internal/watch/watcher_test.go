package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	calls chan []string
	err   error
}

func newRecorder() *recorder {
	return &recorder{calls: make(chan []string, 16)}
}

func (r *recorder) rebuild(_ context.Context, changed []string) error {
	r.calls <- changed
	return r.err
}

func (r *recorder) next(t *testing.T) []string {
	t.Helper()
	select {
	case c := <-r.calls:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild")
		return nil
	}
}

func (r *recorder) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case c := <-r.calls:
		t.Fatalf("unexpected rebuild for %v", c)
	case <-time.After(wait):
	}
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func startWatcher(t *testing.T, dir string, r *recorder) *Watcher {
	t.Helper()
	w, err := New(dir, 50*time.Millisecond, r.rebuild)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_RebuildsOnSlideChange(t *testing.T) {
	dir := t.TempDir()
	r := newRecorder()
	w := startWatcher(t, dir, r)
	assert.True(t, w.IsWatching())

	path := write(t, dir, "001-intro.html", "<html></html>")
	changed := r.next(t)
	assert.Equal(t, []string{path}, changed)

	stats := w.GetStats()
	assert.Equal(t, 1, stats.Rebuilds)
	assert.Equal(t, path, stats.LastEventPath)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	r := newRecorder()
	startWatcher(t, dir, r)

	a := write(t, dir, "001-a.html", "1")
	for i := 0; i < 5; i++ {
		write(t, dir, "001-a.html", "again")
	}
	b := write(t, dir, "002-b.md", "# B")

	assert.Equal(t, []string{a, b}, r.next(t))
	r.none(t, 300*time.Millisecond)
}

func TestWatcher_IgnoresGeneratedFiles(t *testing.T) {
	dir := t.TempDir()
	r := newRecorder()
	startWatcher(t, dir, r)

	write(t, dir, "index.html", "<html></html>")
	write(t, dir, "slides_metadata.json", "{}")
	write(t, dir, ".001-a.html.123.tmp", "x")
	write(t, dir, "notes.txt", "x")
	r.none(t, 300*time.Millisecond)
}

func TestWatcher_RemovalTriggersRebuild(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "003-gone.html", "x")

	r := newRecorder()
	w := startWatcher(t, dir, r)

	require.NoError(t, os.Remove(path))
	assert.Equal(t, []string{path}, r.next(t))
	assert.Equal(t, 1, w.GetStats().FilesDeleted)
}

func TestWatcher_RebuildErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	r := newRecorder()
	r.err = errors.New("duplicate slide")
	w := startWatcher(t, dir, r)

	write(t, dir, "001-a.html", "1")
	r.next(t)
	write(t, dir, "002-b.html", "2")
	r.next(t)

	stats := w.GetStats()
	assert.Equal(t, 2, stats.Rebuilds)
	assert.Equal(t, 2, stats.Errors)
}

func TestWatcher_Trigger(t *testing.T) {
	dir := t.TempDir()
	r := newRecorder()
	w, err := New(dir, 0, r.rebuild)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Trigger(context.Background()))
	assert.Nil(t, r.next(t))
	assert.Equal(t, DefaultDebounce, w.debounce)

	missing, err := New(filepath.Join(dir, "nope"), 0, r.rebuild)
	require.NoError(t, err)
	defer missing.Stop()
	assert.Error(t, missing.Trigger(context.Background()))
	assert.Error(t, missing.Start(context.Background()))
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	r := newRecorder()
	w, err := New(dir, 50*time.Millisecond, r.rebuild)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not exit")
	}
	w.Stop()
}

func TestNew_RequiresRebuild(t *testing.T) {
	_, err := New(t.TempDir(), 0, nil)
	assert.Error(t, err)
}
