package oracle

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits after the last change to a
// model file before reloading it.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc receives a freshly built model after its file changed.
type ReloadFunc func(path string, m *Model)

// Watcher reloads model files through a ModelLoader when they change on
// disk. Directories are watched rather than files so that editors that save
// by rename are seen.
type Watcher struct {
	loader   *ModelLoader
	logger   *zap.Logger
	onReload ReloadFunc
	debounce time.Duration

	fsw  *fsnotify.Watcher
	stop chan struct{}
	wg   sync.WaitGroup

	mu     sync.Mutex
	paths  map[string]bool
	timers map[string]*time.Timer
}

// NewWatcher creates a watcher that reports reloads to onReload.
func NewWatcher(loader *ModelLoader, logger *zap.Logger, onReload ReloadFunc) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create model watcher")
	}

	return &Watcher{
		loader:   loader,
		logger:   logger,
		onReload: onReload,
		debounce: DefaultDebounce,
		fsw:      fsw,
		stop:     make(chan struct{}),
		paths:    make(map[string]bool),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Add starts watching the model file at path.
func (w *Watcher) Add(path string) error {
	path = w.loader.ResolvePath(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.paths[path] {
		return nil
	}

	if err := w.fsw.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "watch %s", path)
	}

	w.paths[path] = true

	return nil
}

// Start processes file events until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()

		for {
			select {
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					w.schedule(filepath.Clean(event.Name))
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}

				w.logger.Warn("Model watcher error", zap.Error(err))
			case <-w.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends event processing and releases the underlying watcher.
func (w *Watcher) Stop() error {
	close(w.stop)
	w.wg.Wait()

	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()

	return w.fsw.Close()
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.paths[path] {
		return
	}

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() { w.reload(path) })
}

func (w *Watcher) reload(path string) {
	m, err := w.loader.Reload(path)
	if err != nil {
		w.logger.Warn("Failed to reload type model", zap.String("path", path), zap.Error(err))

		return
	}

	w.logger.Info("Reloaded type model", zap.String("path", path))

	if w.onReload != nil {
		w.onReload(path, m)
	}
}
