package works

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"portfolio/internal/logger"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls onChange after the works file is written, created, renamed
// or removed. The file's directory is watched so atomic replaces are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *logger.Logger

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher prepares a watcher for path. It does not start watching.
func NewWatcher(path string, debounce time.Duration, onChange func(), logger *logger.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins watching. It is non-blocking; events are handled on a
// goroutine that ends on Stop or when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.watcher = fw
	w.running = true
	go w.run(ctx)

	w.logger.Info("Watching works file %s", w.path)
	return nil
}

// Stop ends the watch loop and waits for it. Safe to call more than once and
// before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if !running {
		return
	}

	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

// Done is closed when the watch loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Works watcher error: %v", err)
		case <-fire:
			fire = nil
			w.onChange()
		}
	}
}
