// Package oracle is an in-memory compiler front-end for the completion
// engine. A Model holds type declarations and per-file contexts loaded from
// YAML; a Snapshot pairs a model with open document texts and answers type,
// scope and member queries over them.
package oracle

import (
	"context"
	"maps"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/engine"
	"github.com/rlch/javacomplete/model"
)

// Snapshot is an immutable view of a model and a set of documents. Every
// method is safe for concurrent use; WithDocument returns a new snapshot.
type Snapshot struct {
	model *Model
	docs  map[string]string
}

// NewSnapshot creates a snapshot over m with no open documents. A nil model
// means the builtin JDK subset.
func NewSnapshot(m *Model) *Snapshot {
	if m == nil {
		m = Builtin()
	}

	return &Snapshot{model: m, docs: map[string]string{}}
}

// Model returns the snapshot's type model.
func (s *Snapshot) Model() *Model {
	return s.model
}

// WithModel returns a copy of s over a different model.
func (s *Snapshot) WithModel(m *Model) *Snapshot {
	return &Snapshot{model: m, docs: s.docs}
}

// WithDocument returns a copy of s with the text of path replaced.
func (s *Snapshot) WithDocument(path, text string) *Snapshot {
	docs := maps.Clone(s.docs)
	docs[path] = text

	return &Snapshot{model: s.model, docs: docs}
}

// WithoutDocument returns a copy of s with path closed.
func (s *Snapshot) WithoutDocument(path string) *Snapshot {
	if _, ok := s.docs[path]; !ok {
		return s
	}

	docs := maps.Clone(s.docs)
	delete(docs, path)

	return &Snapshot{model: s.model, docs: docs}
}

// Document returns the open text of path.
func (s *Snapshot) Document(path string) (string, bool) {
	text, ok := s.docs[path]

	return text, ok
}

// fileFor returns the model's context for path, or one derived from the
// package and import declarations of the open document.
func (s *Snapshot) fileFor(path string) *fileInfo {
	if f := s.model.fileFor(path); f != nil {
		return f
	}

	text := s.docs[path]

	return parseHeader(path, text)
}

// PathAt returns the innermost completable node ending at pos. Text that is
// not a qualifier expression yields an identifier node for the trailing
// name.
func (s *Snapshot) PathAt(_ context.Context, file string, pos model.Position) (model.Node, error) {
	text, ok := s.docs[file]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFile, "%s", file)
	}

	span := model.Span{File: file, Pos: pos}
	before := javacomplete.ExprBeforeCursor(lineAt(text, pos.Line), pos.Column)

	cursor, err := javacomplete.ParseCursorExpr(before)
	if err != nil {
		return &model.Identifier{Span: span, Name: trailingName(before)}, nil
	}

	var qualifier *model.Operand
	if cursor.Qualifier != nil {
		qualifier = &model.Operand{Span: span, Syntax: cursor.Qualifier}
	}

	switch cursor.Kind {
	case javacomplete.CursorReference:
		return &model.MemberReference{Span: span, Qualifier: qualifier, Name: cursor.Name}, nil
	case javacomplete.CursorSelect:
		return &model.MemberSelect{Span: span, Qualifier: qualifier, Name: cursor.Name}, nil
	default:
		return &model.Identifier{Span: span, Name: cursor.Name}, nil
	}
}

// Scope returns the lexical scope at node.
func (s *Snapshot) Scope(_ context.Context, node model.Node) (*model.Scope, error) {
	loc := node.Location()

	return s.fileFor(loc.File).scopeAt(loc.Pos.Line), nil
}

// ResolveType returns the static type of an operand. Names that resolve to
// nothing have an OtherType, as a compiler's error type would.
func (s *Snapshot) ResolveType(ctx context.Context, node model.Node) (model.Type, error) {
	t, _, err := s.resolveNode(ctx, node)

	return t, err
}

// Element returns the element an operand denotes: a TypeElement for type
// names (and a synthetic one for array types), a Variable for locals and
// this, a Member for fields.
func (s *Snapshot) Element(ctx context.Context, node model.Node) (model.Element, error) {
	_, el, err := s.resolveNode(ctx, node)

	return el, err
}

// AllMembers returns the members of elem including inherited ones.
func (s *Snapshot) AllMembers(ctx context.Context, elem *model.TypeElement) ([]*model.Member, error) {
	return s.model.allMembers(ctx, elem)
}

// IsAccessible reports whether member, accessed through site, is visible
// from scope.
func (s *Snapshot) IsAccessible(scope *model.Scope, member *model.Member, site *model.DeclaredType) bool {
	return s.model.isAccessible(scope, member, site)
}

// IsTypeAccessible reports whether t can be named from scope.
func (s *Snapshot) IsTypeAccessible(scope *model.Scope, t *model.TypeElement) bool {
	return s.model.isTypeAccessible(scope, t)
}

// ScopeMembers returns the members of the enclosing types that an
// unqualified name can reach from scope, innermost type first. A static
// context only reaches static members and member types.
func (s *Snapshot) ScopeMembers(ctx context.Context, scope *model.Scope) ([]*model.Member, error) {
	var out []*model.Member

	seen := make(map[string]bool)
	static := scope.Static

	for e := scope.Enclosing; e != nil; e = e.Enclosing {
		members, err := s.model.allMembers(ctx, e)
		if err != nil {
			return nil, err
		}

		for _, m := range members {
			if m.Kind == model.Constructor || (static && !m.IsStatic() && m.Kind != model.NestedType) {
				continue
			}

			if !s.model.isAccessible(scope, m, nil) {
				continue
			}

			key := hidingKey(m)
			if seen[key] {
				continue
			}

			seen[key] = true
			out = append(out, m)
		}

		if e.Modifiers.Has(model.Static) || e.Kind != model.Class {
			static = true
		}
	}

	return out, nil
}

// StaticImportMembers returns the members brought into scope by the static
// imports of file.
func (s *Snapshot) StaticImportMembers(ctx context.Context, file string) ([]*model.Member, error) {
	f := s.fileFor(file)
	scope := &model.Scope{File: f.path, Package: f.pkg}

	var out []*model.Member

	seen := make(map[*model.Member]bool)

	for _, imp := range f.staticImports {
		var (
			owner *model.TypeElement
			name  string
		)

		if strings.HasSuffix(imp, ".*") {
			owner = s.model.types[strings.TrimSuffix(imp, ".*")]
		} else if i := strings.LastIndexByte(imp, '.'); i > 0 {
			owner, name = s.model.types[imp[:i]], imp[i+1:]
		}

		if owner == nil {
			continue
		}

		members, err := s.model.allMembers(ctx, owner)
		if err != nil {
			return nil, err
		}

		for _, m := range members {
			if !m.IsStatic() || m.Kind == model.Constructor || (name != "" && m.Name != name) {
				continue
			}

			if seen[m] || !s.model.isAccessible(scope, m, nil) {
				continue
			}

			seen[m] = true
			out = append(out, m)
		}
	}

	return out, nil
}

// TypeIndex returns every known type ordered by qualified name.
func (s *Snapshot) TypeIndex(ctx context.Context) ([]*model.TypeElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.model.order, nil
}

func (s *Snapshot) resolveNode(ctx context.Context, node model.Node) (model.Type, model.Element, error) {
	op, ok := node.(*model.Operand)
	if !ok || op.Syntax == nil {
		return &model.OtherType{Name: "<none>"}, nil, nil
	}

	loc := op.Location()
	f := s.fileFor(loc.File)
	scope := f.scopeAt(loc.Pos.Line)

	return s.resolveOperand(ctx, f, scope, op.Syntax)
}

// resolveOperand follows Java's reclassification of dotted names: the first
// segment is a variable if one is in scope, otherwise the longest prefix
// naming a type is taken and the remaining segments are its static fields.
func (s *Snapshot) resolveOperand(
	ctx context.Context,
	f *fileInfo,
	scope *model.Scope,
	expr *javacomplete.TypeExpr,
) (model.Type, model.Element, error) {
	unresolved := &model.OtherType{Name: expr.String()}

	if expr.Wildcard != nil {
		return unresolved, nil, nil
	}

	c := &typeContext{
		m:         s.model,
		pkg:       f.pkg,
		imports:   f.imports,
		enclosing: scope.Enclosing,
		vars:      scope.TypeVars,
	}

	plain := expr.IsPlainName()

	if plain {
		t, el, ok, err := s.resolveVariable(ctx, f, scope, expr.Names[0])
		if err != nil {
			return nil, nil, err
		}

		if ok {
			return s.selectFields(ctx, scope, t, el, expr.Names[1:], false)
		}
	}

	if t, err := c.resolve(expr); err == nil {
		return t, typeElementOf(t), nil
	}

	if !plain {
		return unresolved, nil, nil
	}

	for i := len(expr.Names) - 1; i >= 1; i-- {
		elem := c.lookupType(strings.Join(expr.Names[:i], "."))
		if elem == nil {
			continue
		}

		return s.selectFields(ctx, scope, &model.DeclaredType{Element: elem}, elem, expr.Names[i:], true)
	}

	return unresolved, nil, nil
}

// resolveVariable finds a local, this, a field of an enclosing type or a
// statically imported field named name.
func (s *Snapshot) resolveVariable(
	ctx context.Context,
	f *fileInfo,
	scope *model.Scope,
	name string,
) (model.Type, model.Element, bool, error) {
	for i := len(scope.Locals) - 1; i >= 0; i-- {
		if v := scope.Locals[i]; v.Name == name {
			return v.Type, v, true, nil
		}
	}

	if name == "this" && scope.Enclosing != nil && !scope.Static {
		t := scope.Enclosing.AsType()

		return t, &model.Variable{Name: "this", Type: t}, true, nil
	}

	members, err := s.ScopeMembers(ctx, scope)
	if err != nil {
		return nil, nil, false, err
	}

	for _, m := range members {
		if m.Kind == model.Field && m.Name == name {
			return m.Type, m, true, nil
		}
	}

	imported, err := s.StaticImportMembers(ctx, f.path)
	if err != nil {
		return nil, nil, false, err
	}

	for _, m := range imported {
		if m.Kind == model.Field && m.Name == name {
			return m.Type, m, true, nil
		}
	}

	return nil, nil, false, nil
}

// selectFields applies a chain of field accesses to t. The first access is
// restricted to static fields when t was named as a type.
func (s *Snapshot) selectFields(
	ctx context.Context,
	scope *model.Scope,
	t model.Type,
	el model.Element,
	names []string,
	static bool,
) (model.Type, model.Element, error) {
	for _, name := range names {
		next, field, err := s.field(ctx, scope, t, name, static)
		if err != nil {
			return nil, nil, err
		}

		if field == nil {
			return &model.OtherType{Name: name}, nil, nil
		}

		t, el, static = next, field, false
	}

	return t, el, nil
}

func (s *Snapshot) field(
	ctx context.Context,
	scope *model.Scope,
	t model.Type,
	name string,
	static bool,
) (model.Type, *model.Member, error) {
	target, err := engine.Classify(t)
	if err != nil {
		return nil, nil, err
	}

	switch target.Shape {
	case engine.ShapeArray:
		if static {
			return nil, nil, nil
		}

		for _, m := range engine.ArrayMembers(target.Array) {
			if m.Kind == model.Field && m.Name == name {
				return m.Type, m, nil
			}
		}

		return nil, nil, nil
	case engine.ShapeDeclared:
	default:
		return nil, nil, nil
	}

	site := target.Declared

	members, err := s.model.allMembers(ctx, site.Element)
	if err != nil {
		return nil, nil, err
	}

	for _, m := range members {
		if m.Kind != model.Field || m.Name != name || (static && !m.IsStatic()) {
			continue
		}

		if !s.model.isAccessible(scope, m, site) {
			continue
		}

		return s.model.fieldType(site, m), m, nil
	}

	return nil, nil, nil
}

// typeElementOf returns the element a type name denotes. Array types get a
// synthetic element so that T[]::new is completed in a static context.
func typeElementOf(t model.Type) model.Element {
	switch t := t.(type) {
	case *model.DeclaredType:
		return t.Element
	case *model.ArrayType:
		return &model.TypeElement{QualifiedName: t.String()}
	default:
		return nil
	}
}

func lineAt(text string, line int) string {
	for i := 0; i < line; i++ {
		nl := strings.IndexByte(text, '\n')
		if nl < 0 {
			return ""
		}

		text = text[nl+1:]
	}

	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[:nl]
	}

	return strings.TrimSuffix(text, "\r")
}

func trailingName(text string) string {
	runes := []rune(text)

	i := len(runes)
	for i > 0 && javacomplete.IsIdentifierPart(runes[i-1]) {
		i--
	}

	return string(runes[i:])
}
