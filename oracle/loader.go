package oracle

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ModelLoader loads type models from disk and caches them by absolute path.
// Relative paths resolve against the workspace root.
type ModelLoader struct {
	logger *zap.Logger

	// mu protects root and cache.
	mu sync.RWMutex

	// root is the workspace root directory.
	root string

	// cache maps absolute model paths to built models.
	cache map[string]*Model
}

// NewModelLoader creates a loader rooted at root.
func NewModelLoader(logger *zap.Logger, root string) *ModelLoader {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ModelLoader{
		logger: logger,
		root:   root,
		cache:  make(map[string]*Model),
	}
}

// Load returns the model at path, building it on first use. An empty path
// is the builtin JDK subset.
func (l *ModelLoader) Load(path string) (*Model, error) {
	if path == "" {
		return Builtin(), nil
	}

	path = l.ResolvePath(path)

	l.mu.RLock()
	if m, ok := l.cache[path]; ok {
		l.mu.RUnlock()
		return m, nil
	}
	l.mu.RUnlock()

	m, err := LoadModelFile(path)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Loaded type model",
		zap.String("path", path),
		zap.Int("types", len(m.order)),
		zap.Int("files", len(m.files)))

	l.mu.Lock()
	l.cache[path] = m
	l.mu.Unlock()

	return m, nil
}

// ResolvePath makes path absolute against the workspace root.
func (l *ModelLoader) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	l.mu.RLock()
	root := l.root
	l.mu.RUnlock()

	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		}
	}

	return filepath.Join(root, path)
}

// Reload drops the cached model at path and builds it again. The cached
// model is kept when the new one fails to load.
func (l *ModelLoader) Reload(path string) (*Model, error) {
	path = l.ResolvePath(path)

	m, err := LoadModelFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reload type model")
	}

	l.mu.Lock()
	l.cache[path] = m
	l.mu.Unlock()

	return m, nil
}

// Invalidate removes a model from the cache.
func (l *ModelLoader) Invalidate(path string) {
	path = l.ResolvePath(path)

	l.mu.Lock()
	delete(l.cache, path)
	l.mu.Unlock()
}

// InvalidateAll clears all cached models.
func (l *ModelLoader) InvalidateAll() {
	l.mu.Lock()
	l.cache = make(map[string]*Model)
	l.mu.Unlock()
}

// SetRoot updates the workspace root directory.
func (l *ModelLoader) SetRoot(root string) {
	l.mu.Lock()
	l.root = root
	l.mu.Unlock()
}

// Root returns the workspace root directory.
func (l *ModelLoader) Root() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.root
}
