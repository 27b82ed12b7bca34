package lsp

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/model"
	"github.com/rlch/javacomplete/oracle"
)

// Hover handles textDocument/hover requests by showing the static type of
// the qualifier expression under the cursor.
func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.logger.Debug("Hover",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	m, err := s.loadModel(doc)
	if err != nil {
		return nil, nil //nolint:nilnil
	}

	pos := toPosition(doc.Content, params.Position)
	line := lineOf(doc.Content, pos.Line)
	end := identEnd(line, pos.Column)

	syntax, err := javacomplete.ParseType(javacomplete.ExprBeforeCursor(line, end))
	if err != nil {
		return nil, nil //nolint:nilnil
	}

	snap := oracle.NewSnapshot(m).WithDocument(doc.Path, doc.Content)

	t, err := snap.ResolveType(ctx, &model.Operand{
		Span:   model.Span{File: doc.Path, Pos: pos},
		Syntax: syntax,
	})
	if err != nil {
		s.logger.Debug("Hover type unresolved", zap.Error(err))

		return nil, nil //nolint:nilnil
	}

	if other, ok := t.(*model.OtherType); ok && !model.IsPrimitive(other.Name) {
		return nil, nil //nolint:nilnil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: markdownCodeBlock(t.String()),
		},
	}, nil
}

// identEnd advances col past the rest of the identifier it sits in.
func identEnd(line string, col int) int {
	col = min(max(col, 0), len(line))

	for col < len(line) {
		r, size := utf8.DecodeRuneInString(line[col:])
		if !javacomplete.IsIdentifierPart(r) {
			break
		}

		col += size
	}

	return col
}

func lineOf(content string, line int) string {
	for range line {
		nl := strings.IndexByte(content, '\n')
		if nl < 0 {
			return ""
		}

		content = content[nl+1:]
	}

	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[:nl]
	}

	return strings.TrimSuffix(content, "\r")
}
