package complete

import (
	"context"
	"slices"

	"github.com/rlch/javacomplete/engine"
	"github.com/rlch/javacomplete/match"
	"github.com/rlch/javacomplete/model"
)

// Request is the input shared by the identifier sources.
type Request struct {
	Scope         *model.Scope
	File          string
	Prefix        string
	EndsWithParen bool
}

// Source contributes items for an unqualified identifier.
type Source interface {
	Name() string
	Complete(ctx context.Context, req Request) ([]model.CompletionItem, error)
}

// ScopeSource offers locals, members of the enclosing types and type
// variables in scope.
type ScopeSource struct {
	Oracle Oracle
}

func (ScopeSource) Name() string { return "scope" }

func (s ScopeSource) Complete(ctx context.Context, req Request) ([]model.CompletionItem, error) {
	var items []model.CompletionItem

	seen := make(map[string]bool)

	// Later locals shadow earlier ones.
	for i := len(req.Scope.Locals) - 1; i >= 0; i-- {
		v := req.Scope.Locals[i]
		if seen[v.Name] {
			continue
		}

		seen[v.Name] = true

		level := match.Score(v.Name, req.Prefix)
		if !level.Matched() {
			continue
		}

		detail := ""
		if v.Type != nil {
			detail = v.Type.String()
		}

		items = append(items, scoredItem(v.Name, model.ItemVariable, detail, level))
	}

	for _, tv := range req.Scope.TypeVars {
		level := match.Score(tv.Name, req.Prefix)
		if !level.Matched() {
			continue
		}

		items = append(items, scoredItem(tv.Name, model.ItemTypeParameter, typeVarDetail(tv), level))
	}

	members, err := s.Oracle.ScopeMembers(ctx, req.Scope)
	if err != nil {
		return nil, err
	}

	return append(items, memberItems(members, req)...), nil
}

// StaticImportSource offers members brought in by static imports.
type StaticImportSource struct {
	Oracle Oracle
}

func (StaticImportSource) Name() string { return "static_import" }

func (s StaticImportSource) Complete(ctx context.Context, req Request) ([]model.CompletionItem, error) {
	members, err := s.Oracle.StaticImportMembers(ctx, req.File)
	if err != nil {
		return nil, err
	}

	return memberItems(members, req), nil
}

// ClassNameSource offers every accessible top-level type by simple name.
type ClassNameSource struct {
	Oracle Oracle
}

func (ClassNameSource) Name() string { return "class_name" }

func (s ClassNameSource) Complete(ctx context.Context, req Request) ([]model.CompletionItem, error) {
	types, err := s.Oracle.TypeIndex(ctx)
	if err != nil {
		return nil, err
	}

	var items []model.CompletionItem

	for i, t := range types {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if t.Enclosing != nil || !s.Oracle.IsTypeAccessible(req.Scope, t) {
			continue
		}

		level := match.Score(t.SimpleName(), req.Prefix)
		if !level.Matched() {
			continue
		}

		items = append(items, scoredItem(t.SimpleName(), model.ItemKindForType(t), t.QualifiedName, level))
	}

	return items, nil
}

// KeywordSource offers the Java keywords that fit the enclosing context.
type KeywordSource struct{}

func (KeywordSource) Name() string { return "keyword" }

var (
	topLevelKeywords = []string{
		"abstract", "class", "enum", "final", "import", "interface", "package", "public",
	}
	classBodyKeywords = []string{
		"abstract", "boolean", "byte", "char", "class", "double", "enum", "final", "float",
		"int", "interface", "long", "native", "private", "protected", "public", "short",
		"static", "synchronized", "transient", "void", "volatile",
	}
	statementKeywords = []string{
		"assert", "boolean", "break", "byte", "case", "catch", "char", "continue", "default",
		"do", "double", "else", "false", "final", "finally", "float", "for", "if",
		"instanceof", "int", "long", "new", "null", "return", "short", "switch", "synchronized",
		"throw", "true", "try", "var", "while", "yield",
	}
	instanceKeywords = []string{"super", "this"}
)

func (KeywordSource) Complete(_ context.Context, req Request) ([]model.CompletionItem, error) {
	keywords := topLevelKeywords

	if req.Scope.Enclosing != nil {
		keywords = slices.Concat(classBodyKeywords, statementKeywords)
		if !req.Scope.Static {
			keywords = append(keywords, instanceKeywords...)
		}
	}

	seen := make(map[string]bool, len(keywords))
	items := make([]model.CompletionItem, 0, len(keywords))

	for _, kw := range keywords {
		if seen[kw] {
			continue
		}

		seen[kw] = true

		level := match.Score(kw, req.Prefix)
		if !level.Matched() {
			continue
		}

		items = append(items, scoredItem(kw, model.ItemKeyword, "keyword", level))
	}

	return items, nil
}

// memberItems scores members against the prefix and groups method
// overloads into single items.
func memberItems(members []*model.Member, req Request) []model.CompletionItem {
	candidates := make([]engine.Candidate, 0, len(members))

	for _, m := range members {
		level := match.Score(m.Name, req.Prefix)
		if !level.Matched() {
			continue
		}

		candidates = append(candidates, engine.Candidate{Member: m, Level: level})
	}

	if len(candidates) == 0 {
		return nil
	}

	return engine.Assemble(engine.GroupCandidates(candidates), engine.AssembleOptions{
		Call:          true,
		EndsWithParen: req.EndsWithParen,
	}).Items
}

func scoredItem(label string, kind model.ItemKind, detail string, level match.Level) model.CompletionItem {
	return model.CompletionItem{
		Label:        label,
		InsertText:   label,
		Kind:         kind,
		Detail:       detail,
		SortPriority: engine.Priority(level, kind),
		MatchLevel:   level,
	}
}

func typeVarDetail(tv *model.TypeVariable) string {
	if tv.Upper == nil {
		return "type parameter"
	}

	return "type parameter extends " + tv.Upper.String()
}
