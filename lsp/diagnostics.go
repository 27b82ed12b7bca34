package lsp

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/javacomplete/oracle"
)

const diagnosticSource = "javacomplete"

// checkModel loads the type model serving doc and publishes its problems
// as diagnostics, or clears them when the model is valid.
func (s *Server) checkModel(ctx context.Context, doc *Document) {
	_, err := s.loadModel(doc)

	diagnostics := modelDiagnostics(err)
	if len(diagnostics) > 0 {
		s.logger.Warn("Type model unavailable",
			zap.String("path", doc.Path),
			zap.Error(err))
	}

	err = s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     uint32(doc.Version), //nolint:gosec // LSP version numbers are always non-negative
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.logger.Error("Failed to publish diagnostics", zap.Error(err))
	}
}

// modelDiagnostics converts a model load error to diagnostics anchored at
// the top of the document: one per validation problem, or one for the
// whole error.
func modelDiagnostics(err error) []protocol.Diagnostic {
	if err == nil {
		return []protocol.Diagnostic{}
	}

	var verr *oracle.ValidationError
	if !errors.As(err, &verr) || len(verr.Problems) == 0 {
		return []protocol.Diagnostic{modelDiagnostic(err.Error())}
	}

	diagnostics := make([]protocol.Diagnostic, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		diagnostics = append(diagnostics, modelDiagnostic(p.Error()))
	}

	return diagnostics
}

func modelDiagnostic(message string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    protocol.Range{},
		Severity: protocol.DiagnosticSeverityError,
		Source:   diagnosticSource,
		Message:  "type model: " + message,
	}
}
