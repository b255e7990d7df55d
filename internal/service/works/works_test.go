package works

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"portfolio/internal/logger"
	"portfolio/internal/model"
	"portfolio/internal/repository/sqlite"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.NewLogger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// ========================================
// FileSource
// ========================================

func TestFileSource_YAMLList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.yaml")
	writeFile(t, path, `
- title: One
  imageUrl: /img/1.jpg
  url: /work/1
- imageUrl: "  /img/2.jpg  "
  url: /work/2
`)

	items, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "One", items[0].Title)
	assert.Equal(t, "/img/1.jpg", items[0].ImageURL)
	assert.Equal(t, "/img/2.jpg", items[1].ImageURL)
	assert.Equal(t, 1, items[1].Position)
}

func TestFileSource_YAMLMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.yaml")
	writeFile(t, path, "works:\n  - imageUrl: a.jpg\n    url: /a\n")

	items, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/a", items[0].URL)
}

func TestFileSource_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.json")
	writeFile(t, path, `[{"imageUrl":"a.jpg","url":"/a"},{"imageUrl":"","url":"/skip"},{"imageUrl":"b.jpg","url":"/b"}]`)

	items, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a.jpg", items[0].ImageURL)
	assert.Equal(t, "b.jpg", items[1].ImageURL)
}

func TestFileSource_MissingUsesDefaults(t *testing.T) {
	items, err := NewFileSource(filepath.Join(t.TempDir(), "nope.yaml")).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkItems(), items)
}

func TestFileSource_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.yaml")
	writeFile(t, path, "")

	items, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileSource_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.yaml")
	writeFile(t, path, "just a string")

	_, err := NewFileSource(path).Load(context.Background())
	assert.Error(t, err)
}

// ========================================
// RemoteSource
// ========================================

func TestRemoteSource_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"imageUrl":"https://cdn.test/1.jpg","url":"https://site.test/1"}]`))
	}))
	defer srv.Close()

	items, err := NewRemoteSource(srv.URL, srv.Client(), time.Second).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://cdn.test/1.jpg", items[0].ImageURL)
}

func TestRemoteSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRemoteSource(srv.URL, nil, time.Second).Load(context.Background())
	assert.ErrorContains(t, err, "502")
}

func TestRemoteSource_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := NewRemoteSource(srv.URL, nil, time.Second).Load(context.Background())
	assert.Error(t, err)
}

// ========================================
// CachedSource
// ========================================

type stubSource struct {
	items []model.WorkItem
	err   error
}

func (s *stubSource) Load(ctx context.Context) ([]model.WorkItem, error) { return s.items, s.err }
func (s *stubSource) Name() string                                       { return "stub" }

func newRepo(t *testing.T) *sqlite.WorkItemRepository {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlite.NewWorkItemRepository(db)
}

func TestCachedSource_StoresAndFallsBack(t *testing.T) {
	repo := newRepo(t)
	stub := &stubSource{items: []model.WorkItem{{ImageURL: "a.jpg", URL: "/a"}, {ImageURL: "b.jpg"}}}
	src := NewCachedSource(stub, repo, newTestLogger(t))

	items, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	stub.items, stub.err = nil, errors.New("offline")

	items, err = src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a.jpg", items[0].ImageURL)
	assert.Equal(t, "/a", items[0].URL)
}

func TestCachedSource_EmptyCacheFails(t *testing.T) {
	src := NewCachedSource(&stubSource{err: errors.New("offline")}, newRepo(t), newTestLogger(t))

	_, err := src.Load(context.Background())
	assert.ErrorContains(t, err, "offline")
}

func TestCachedSource_EmptyResultNotCached(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.ReplaceAll([]model.WorkItem{{ImageURL: "keep.jpg"}}))

	items, err := NewCachedSource(&stubSource{}, repo, newTestLogger(t)).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// ========================================
// Watcher
// ========================================

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "works.yaml")
	writeFile(t, path, "[]")

	changed := make(chan struct{}, 8)
	w := NewWatcher(path, 20*time.Millisecond, func() { changed <- struct{}{} }, newTestLogger(t))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "other.yaml"), "ignored")
	writeFile(t, path, "- imageUrl: a.jpg\n")

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report change")
	}
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "works.yaml")
	writeFile(t, path, "[]")

	var calls atomic.Int32
	w := NewWatcher(path, 200*time.Millisecond, func() { calls.Add(1) }, newTestLogger(t))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		writeFile(t, path, "[]")
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "works.yaml"), 0, func() {}, newTestLogger(t))
	w.Stop()

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()

	select {
	case <-w.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing", "works.yaml"), 0, func() {}, newTestLogger(t))
	assert.Error(t, w.Start(context.Background()))
}
