package lsp

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/javacomplete/complete"
	"github.com/rlch/javacomplete/model"
	"github.com/rlch/javacomplete/oracle"
)

// maxSortPriority bounds the priorities folded into SortText.
const maxSortPriority = 999

// Completion handles textDocument/completion requests.
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	s.logger.Debug("Completion",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	m, err := s.loadModel(doc)
	if err != nil {
		s.logger.Warn("No type model for completion", zap.String("path", doc.Path), zap.Error(err))

		return &protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil
	}

	snap := oracle.NewSnapshot(m).WithDocument(doc.Path, doc.Content)
	pos := toPosition(doc.Content, params.Position)
	query := complete.NewQuery(doc.Path, doc.Content, pos, complete.IsJavaCompletionChar)

	result := complete.New(snap, s.logger, s.completionConfig()).Complete(ctx, query)

	s.logger.Debug("Completion result",
		zap.String("prefix", query.Prefix),
		zap.Int("items", len(result.Items)),
		zap.Bool("trimmed", result.Trimmed))

	return toCompletionList(result), nil
}

// CompletionResolve returns the item unchanged; items are complete when
// first sent.
func (s *Server) CompletionResolve(_ context.Context, item *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	return item, nil
}

// toCompletionList converts a ranked result. Clients re-sort by SortText,
// which encodes the priority and then the rank.
func toCompletionList(r *model.Result) *protocol.CompletionList {
	items := make([]protocol.CompletionItem, 0, len(r.Items))
	for i, item := range r.Items {
		items = append(items, toCompletionItem(item, i))
	}

	return &protocol.CompletionList{
		IsIncomplete: r.Trimmed,
		Items:        items,
	}
}

func toCompletionItem(item model.CompletionItem, rank int) protocol.CompletionItem {
	out := protocol.CompletionItem{
		Label:      item.Label,
		Kind:       completionKind(item.Kind),
		Detail:     item.Detail,
		InsertText: item.InsertText,
		FilterText: item.Label,
		SortText:   sortText(item.SortPriority, rank),
	}

	if len(item.Overloads) > 1 {
		signatures := make([]string, len(item.Overloads))
		for i, m := range item.Overloads {
			signatures[i] = m.Detail()
		}

		out.Documentation = &protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: markdownCodeBlock(strings.Join(signatures, "\n")),
		}
	}

	return out
}

// sortText orders higher priorities first, then by rank within the result.
func sortText(priority, rank int) string {
	priority = min(max(priority, 0), maxSortPriority)

	return fmt.Sprintf("%03d_%05d", maxSortPriority-priority, rank)
}

func completionKind(k model.ItemKind) protocol.CompletionItemKind {
	switch k {
	case model.ItemMethod:
		return protocol.CompletionItemKindMethod
	case model.ItemField:
		return protocol.CompletionItemKindField
	case model.ItemVariable:
		return protocol.CompletionItemKindVariable
	case model.ItemClass:
		return protocol.CompletionItemKindClass
	case model.ItemInterface:
		return protocol.CompletionItemKindInterface
	case model.ItemEnum:
		return protocol.CompletionItemKindEnum
	case model.ItemTypeParameter:
		return protocol.CompletionItemKindTypeParameter
	case model.ItemConstructor:
		return protocol.CompletionItemKindConstructor
	case model.ItemKeyword:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindText
	}
}

func markdownCodeBlock(code string) string {
	return "```java\n" + code + "\n```"
}
