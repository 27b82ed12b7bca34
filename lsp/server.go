// Package lsp implements a Language Server Protocol server offering
// type-directed Java member completion.
package lsp

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/oracle"
)

// Server implements the LSP Server interface.
type Server struct {
	client protocol.Client
	logger *zap.Logger

	// Document state
	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document

	// Config and model selection, guarded by mu.
	config        *javacomplete.Config
	explicitCfg   bool
	modelOverride string

	// Type models are loaded lazily and shared across documents.
	loader  *oracle.ModelLoader
	watch   bool
	watcher *oracle.Watcher

	// Server state
	initialized   bool
	shutdown      bool
	workspaceRoot string
}

// Document represents an open document in the server.
type Document struct {
	URI     protocol.DocumentURI
	Path    string
	Version int32
	Content string
}

// Option configures a Server.
type Option func(*Server)

// WithModel makes every document use the type model at path, regardless of
// the workspace config.
func WithModel(path string) Option {
	return func(s *Server) {
		s.modelOverride = path
	}
}

// WithConfig uses cfg instead of discovering .javacomplete.yaml from the
// workspace root.
func WithConfig(cfg *javacomplete.Config) Option {
	return func(s *Server) {
		s.config = cfg
		s.explicitCfg = true
	}
}

// WithWatch reloads model files when they change on disk.
func WithWatch(enabled bool) Option {
	return func(s *Server) {
		s.watch = enabled
	}
}

// NewServer creates a new LSP server.
func NewServer(client protocol.Client, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		client:    client,
		logger:    logger,
		documents: make(map[protocol.DocumentURI]*Document),
		config:    javacomplete.DefaultConfig(),
		loader:    oracle.NewModelLoader(logger, ""),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize", zap.String("rootURI", string(params.RootURI)))

	root := ""
	if params.RootURI != "" {
		root = URIToPath(params.RootURI)
	} else if params.RootPath != "" {
		root = params.RootPath
	}

	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()

	if root != "" {
		s.logger.Info("Workspace root", zap.String("root", root))
		s.loader.SetRoot(root)
		s.reloadConfig()
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Full document sync - client sends entire content on change
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: false},
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{".", ":"},
				ResolveProvider:   false,
			},
			HoverProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "javacomplete-lsp",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(ctx context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	if !s.watch {
		return nil
	}

	w, err := oracle.NewWatcher(s.loader, s.logger, s.onModelReload)
	if err != nil {
		s.logger.Warn("Model watching disabled", zap.Error(err))

		return nil
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	w.Start(context.WithoutCancel(ctx))

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")

	s.mu.Lock()
	s.shutdown = true
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		if err := w.Stop(); err != nil {
			s.logger.Warn("Failed to stop model watcher", zap.Error(err))
		}
	}

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")
	// The main loop should handle exiting after this
	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	doc := &Document{
		URI:     params.TextDocument.URI,
		Path:    URIToPath(params.TextDocument.URI),
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
	}

	s.mu.Lock()
	s.documents[params.TextDocument.URI] = doc
	s.mu.Unlock()

	s.checkModel(ctx, doc)

	return nil
}

// DidChange handles textDocument/didChange notifications.
func (s *Server) DidChange(_ context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.logger.Debug("DidChange",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int32("version", params.TextDocument.Version))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(params.TextDocument.URI)))

		return nil
	}

	// Full sync - take the last content change (should only be one with full sync)
	if len(params.ContentChanges) > 0 {
		// Replaced, not mutated: in-flight completions keep their copy.
		next := *doc
		next.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
		next.Version = params.TextDocument.Version
		s.documents[params.TextDocument.URI] = &next
	}

	return nil
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("DidClose", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()

	// Clear diagnostics for closed document
	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("Failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave notifications.
func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Info("DidSave", zap.String("uri", string(params.TextDocument.URI)))

	if doc, ok := s.getDocument(params.TextDocument.URI); ok {
		s.checkModel(ctx, doc)
	}

	return nil
}

// getDocument returns a document by URI (read-locked).
func (s *Server) getDocument(uri protocol.DocumentURI) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[uri]

	return doc, ok
}

// modelPathFor returns the model file that serves path; "" is the builtin
// JDK subset.
func (s *Server) modelPathFor(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.modelOverride != "" {
		return s.modelOverride
	}

	return s.config.ModelFor(path)
}

// completionConfig returns the current completion settings.
func (s *Server) completionConfig() javacomplete.CompletionConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.config.Completion
}

// loadModel loads the model for doc and registers it with the watcher.
func (s *Server) loadModel(doc *Document) (*oracle.Model, error) {
	path := s.modelPathFor(doc.Path)

	m, err := s.loader.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load model for %s", doc.Path)
	}

	s.mu.RLock()
	w := s.watcher
	s.mu.RUnlock()

	if w != nil && path != "" {
		if err := w.Add(path); err != nil {
			s.logger.Warn("Failed to watch model", zap.String("path", path), zap.Error(err))
		}
	}

	return m, nil
}

// reloadConfig re-reads .javacomplete.yaml from the workspace root unless
// a config was supplied explicitly.
func (s *Server) reloadConfig() {
	s.mu.RLock()
	root, explicit := s.workspaceRoot, s.explicitCfg
	s.mu.RUnlock()

	if explicit || root == "" {
		return
	}

	cfg, err := javacomplete.LoadConfig(root)

	switch {
	case errors.Is(err, javacomplete.ErrConfigNotFound):
		cfg = javacomplete.DefaultConfig()
	case err != nil:
		s.logger.Warn("Failed to load config, using defaults", zap.Error(err))

		cfg = javacomplete.DefaultConfig()
	default:
		s.logger.Info("Loaded config", zap.String("dir", cfg.Dir()))
	}

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	s.loader.InvalidateAll()
}

// onModelReload republishes diagnostics once a watched model changes.
func (s *Server) onModelReload(path string, _ *oracle.Model) {
	s.logger.Info("Type model changed", zap.String("path", path))
	s.refreshDiagnostics(context.Background())
}

// refreshDiagnostics rechecks the model of every open document.
func (s *Server) refreshDiagnostics(ctx context.Context) {
	s.mu.RLock()
	docs := make([]*Document, 0, len(s.documents))

	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	for _, doc := range docs {
		s.checkModel(ctx, doc)
	}
}
