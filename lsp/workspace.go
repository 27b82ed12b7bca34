package lsp

import (
	"context"
	"path/filepath"
	"slices"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/javacomplete"
)

// DidChangeConfiguration handles workspace/didChangeConfiguration by
// re-reading .javacomplete.yaml.
func (s *Server) DidChangeConfiguration(ctx context.Context, _ *protocol.DidChangeConfigurationParams) error {
	s.logger.Info("DidChangeConfiguration")

	s.reloadConfig()
	s.refreshDiagnostics(ctx)

	return nil
}

// DidChangeWatchedFiles handles workspace/didChangeWatchedFiles. Changed
// model files are dropped from the cache; a changed config file is re-read.
func (s *Server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	configChanged := false

	for _, change := range params.Changes {
		path := URIToPath(change.URI)

		s.logger.Debug("Watched file changed",
			zap.String("path", path),
			zap.Any("type", change.Type))

		if slices.Contains(javacomplete.DefaultConfigNames, filepath.Base(path)) {
			configChanged = true

			continue
		}

		s.loader.Invalidate(path)
	}

	if configChanged {
		s.reloadConfig()
	}

	if len(params.Changes) > 0 {
		s.refreshDiagnostics(ctx)
	}

	return nil
}
