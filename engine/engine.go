// Package engine resolves the type of a completion qualifier, enumerates the
// members visible on it, groups overloads and assembles ranked items.
//
// The engine holds no mutable state: one Engine may serve concurrent queries
// as long as the Oracle it wraps is safe for concurrent reads.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/match"
	"github.com/rlch/javacomplete/model"
)

// Oracle is the compiler front-end the engine consults. Implementations
// answer from a read-only snapshot.
type Oracle interface {
	// ResolveType returns the static type of an expression node.
	ResolveType(ctx context.Context, node model.Node) (model.Type, error)

	// Scope returns the lexical scope at a node.
	Scope(ctx context.Context, node model.Node) (*model.Scope, error)

	// IsAccessible reports whether member, accessed through site, is
	// visible from scope.
	IsAccessible(scope *model.Scope, member *model.Member, site *model.DeclaredType) bool

	// AllMembers returns the members of elem including inherited ones.
	AllMembers(ctx context.Context, elem *model.TypeElement) ([]*model.Member, error)

	// Element returns the element a node denotes, or nil for expressions
	// that denote no element.
	Element(ctx context.Context, node model.Node) (model.Element, error)
}

// Engine completes members of a qualifier expression.
type Engine struct {
	oracle Oracle
	logger *zap.Logger
}

// New creates an engine over oracle.
func New(oracle Oracle, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{oracle: oracle, logger: logger}
}

// Options are the query-level inputs shared by the entry points.
type Options struct {
	EndsWithParen bool
	Limits        javacomplete.CompletionConfig
}

// CompleteMemberReference completes Qualifier::name. Only methods are
// offered; a qualifier that names a type also gets the "new" item.
func (e *Engine) CompleteMemberReference(ctx context.Context, ref *model.MemberReference, opts Options) (*model.Result, error) {
	if ref.Qualifier == nil {
		return model.Empty, nil
	}

	e.logger.Debug("Completing methods of member reference",
		zap.String("qualifier", ref.Qualifier.Text()),
		zap.String("partial", ref.Name))

	return e.completeQualified(ctx, ref.Qualifier, ref.Name, MethodsOnly, opts)
}

// CompleteMemberSelect completes Qualifier.name with methods, fields and
// nested types.
func (e *Engine) CompleteMemberSelect(ctx context.Context, sel *model.MemberSelect, opts Options) (*model.Result, error) {
	if sel.Qualifier == nil {
		return model.Empty, nil
	}

	e.logger.Debug("Completing members of member select",
		zap.String("qualifier", sel.Qualifier.Text()),
		zap.String("partial", sel.Name))

	return e.completeQualified(ctx, sel.Qualifier, sel.Name, AllKinds, opts)
}

func (e *Engine) completeQualified(
	ctx context.Context,
	qualifier *model.Operand,
	partial string,
	mode Mode,
	opts Options,
) (*model.Result, error) {
	element, err := e.oracle.Element(ctx, qualifier)
	if err != nil {
		return nil, err
	}

	_, static := element.(*model.TypeElement)

	scope, err := e.oracle.Scope(ctx, qualifier)
	if err != nil {
		return nil, err
	}

	t, err := e.oracle.ResolveType(ctx, qualifier)
	if err != nil {
		return nil, err
	}

	req := Request{
		Scope:  scope,
		Prefix: partial,
		Mode:   mode,
		Static: static,
	}

	return e.CompleteType(ctx, t, req, opts)
}

// CompleteType dispatches on the shape of t and completes its members.
func (e *Engine) CompleteType(ctx context.Context, t model.Type, req Request, opts Options) (*model.Result, error) {
	target, err := Classify(t)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Classified qualifier type",
		zap.Stringer("shape", target.Shape),
		zap.Bool("static", req.Static),
		zap.Stringer("mode", req.Mode))

	switch target.Shape {
	case ShapeArray:
		return e.completeArray(target.Array, req, opts), nil
	case ShapeDeclared:
		return e.completeDeclared(ctx, target.Declared, req, opts)
	default:
		return model.Empty, nil
	}
}

// ArrayMembers returns the members an array type declares itself: the
// length field and clone(). Neither has a declaring element.
func ArrayMembers(t *model.ArrayType) []*model.Member {
	return []*model.Member{
		{
			Name:      "length",
			Kind:      model.Field,
			Modifiers: model.Public | model.Final,
			Type:      &model.OtherType{Name: "int"},
		},
		{
			Name:      "clone",
			Kind:      model.Method,
			Modifiers: model.Public,
			Signature: &model.Signature{Return: t},
		},
	}
}

// completeArray offers T[]::new for a static method reference and the array
// members for an instance member select. Other array queries produce a
// valid result with no items.
func (e *Engine) completeArray(array *model.ArrayType, req Request, opts Options) *model.Result {
	var groups []Group

	if req.Mode == AllKinds && !req.Static {
		var candidates []Candidate

		for _, m := range ArrayMembers(array) {
			if level := match.Score(m.Name, req.Prefix); level != match.NoMatch {
				candidates = append(candidates, Candidate{Member: m, Level: level})
			}
		}

		groups = GroupCandidates(candidates)
	}

	return Assemble(groups, AssembleOptions{
		Static:        req.Static && req.Mode == MethodsOnly,
		Prefix:        req.Prefix,
		Call:          req.Mode == AllKinds,
		EndsWithParen: opts.EndsWithParen,
		Limits:        opts.Limits,
	})
}

func (e *Engine) completeDeclared(ctx context.Context, site *model.DeclaredType, req Request, opts Options) (*model.Result, error) {
	candidates, err := e.Enumerate(ctx, site, req)
	if err != nil {
		return nil, err
	}

	groups := GroupCandidates(candidates)

	e.logger.Debug("Enumerated members",
		zap.String("type", site.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("groups", len(groups)))

	return Assemble(groups, AssembleOptions{
		Static:        req.Static && req.Mode == MethodsOnly,
		Prefix:        req.Prefix,
		Call:          req.Mode == AllKinds,
		EndsWithParen: opts.EndsWithParen,
		Limits:        opts.Limits,
	}), nil
}
