// Package complete turns a cursor position into a ranked completion result.
// It locates the node at the cursor, dispatches member references and
// member selects to the engine and runs the identifier sources otherwise.
package complete

import (
	"context"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/engine"
	"github.com/rlch/javacomplete/model"
)

// Oracle is the engine's oracle plus the lookups the identifier sources and
// node location need.
type Oracle interface {
	engine.Oracle

	// PathAt returns the innermost completable node at pos in file.
	PathAt(ctx context.Context, file string, pos model.Position) (model.Node, error)

	// ScopeMembers returns the members of the enclosing types reachable by
	// an unqualified name.
	ScopeMembers(ctx context.Context, scope *model.Scope) ([]*model.Member, error)

	// StaticImportMembers returns the members imported statically by file.
	StaticImportMembers(ctx context.Context, file string) ([]*model.Member, error)

	// TypeIndex returns every known type.
	TypeIndex(ctx context.Context) ([]*model.TypeElement, error)

	// IsTypeAccessible reports whether t can be named from scope.
	IsTypeAccessible(scope *model.Scope, t *model.TypeElement) bool
}

// Orchestrator answers completion queries against one oracle snapshot.
type Orchestrator struct {
	oracle Oracle
	engine *engine.Engine
	logger *zap.Logger
	config javacomplete.CompletionConfig

	scope    Source
	statics  Source
	classes  Source
	keywords Source
}

// New creates an orchestrator over oracle.
func New(oracle Oracle, logger *zap.Logger, config javacomplete.CompletionConfig) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		oracle:   oracle,
		engine:   engine.New(oracle, logger),
		logger:   logger,
		config:   config,
		scope:    ScopeSource{Oracle: oracle},
		statics:  StaticImportSource{Oracle: oracle},
		classes:  ClassNameSource{Oracle: oracle},
		keywords: KeywordSource{},
	}
}

// Complete computes the completion result for q. It never fails: errors and
// panics are logged once and yield model.Empty, and cancellation yields
// model.Empty silently.
func (o *Orchestrator) Complete(ctx context.Context, q Query) (result *model.Result) {
	start := time.Now()
	mode := "none"
	outcome := outcomeOK

	defer func() {
		if r := recover(); r != nil {
			o.logFailure(errors.Newf("panic: %v", r), q)

			result, outcome = model.Empty, outcomeFailed
		}

		QueryDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
		QueriesTotal.WithLabelValues(mode, outcome).Inc()

		if outcome == outcomeOK {
			ItemsReturned.Observe(float64(len(result.Items)))
		}
	}()

	node, err := o.oracle.PathAt(ctx, q.File, q.Position)
	if err == nil {
		mode = nodeMode(node)
		result, err = o.dispatch(ctx, node, q)
	}

	switch {
	case isCancellation(ctx, err):
		outcome = outcomeCancelled

		return model.Empty
	case err != nil:
		o.logFailure(err, q)
		outcome = outcomeFailed

		return model.Empty
	case result.IsEmpty():
		outcome = outcomeEmpty
	}

	return result
}

func (o *Orchestrator) dispatch(ctx context.Context, node model.Node, q Query) (*model.Result, error) {
	opts := engine.Options{EndsWithParen: q.EndsWithParen, Limits: o.config}

	switch n := node.(type) {
	case *model.MemberReference:
		return o.engine.CompleteMemberReference(ctx, n, opts)
	case *model.MemberSelect:
		return o.engine.CompleteMemberSelect(ctx, n, opts)
	case *model.Identifier:
		return o.completeIdentifier(ctx, n, q)
	default:
		return model.Empty, nil
	}
}

func (o *Orchestrator) completeIdentifier(ctx context.Context, ident *model.Identifier, q Query) (*model.Result, error) {
	scope, err := o.oracle.Scope(ctx, ident)
	if err != nil {
		return nil, err
	}

	req := Request{
		Scope:         scope,
		File:          q.File,
		Prefix:        ident.Name,
		EndsWithParen: q.EndsWithParen,
	}

	var items []model.CompletionItem

	run := func(src Source) error {
		found, err := src.Complete(ctx, req)
		if err != nil {
			return errors.Wrapf(err, "%s source", src.Name())
		}

		o.logger.Debug("Identifier source",
			zap.String("source", src.Name()),
			zap.Int("items", len(found)))

		items = mergeItems(items, found)

		return nil
	}

	if err := run(o.scope); err != nil {
		return nil, err
	}

	if err := run(o.statics); err != nil {
		return nil, err
	}

	if o.wantClassNames(ident.Name, len(items)) {
		if err := run(o.classes); err != nil {
			return nil, err
		}
	}

	if err := run(o.keywords); err != nil {
		return nil, err
	}

	return engine.Finish(items, o.config), nil
}

// wantClassNames gates the class-name source: it only runs while the result
// has room and the prefix looks like a type name, unless lower-case
// prefixes are allowed to match types too.
func (o *Orchestrator) wantClassNames(prefix string, have int) bool {
	if !o.config.TrimToMax || have >= o.config.MaxItems {
		return false
	}

	if o.config.MatchAllLowerCase {
		return true
	}

	r, _ := utf8.DecodeRuneInString(prefix)

	return prefix != "" && unicode.IsUpper(r)
}

func (o *Orchestrator) logFailure(err error, q Query) {
	o.logger.Error("Unable to compute completions",
		zap.String("file", q.File),
		zap.Int("line", q.Position.Line),
		zap.Int("column", q.Position.Column),
		zap.Error(err))
}

// mergeItems appends the items of next whose label and kind are not already
// present.
func mergeItems(items, next []model.CompletionItem) []model.CompletionItem {
	type key struct {
		label string
		kind  model.ItemKind
	}

	seen := make(map[key]bool, len(items))
	for _, it := range items {
		seen[key{it.Label, it.Kind}] = true
	}

	for _, it := range next {
		k := key{it.Label, it.Kind}
		if seen[k] {
			continue
		}

		seen[k] = true
		items = append(items, it)
	}

	return items
}

func isCancellation(ctx context.Context, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return ctx.Err() != nil
}

func nodeMode(node model.Node) string {
	switch node.(type) {
	case *model.MemberReference:
		return "reference"
	case *model.MemberSelect:
		return "select"
	case *model.Identifier:
		return "identifier"
	default:
		return "none"
	}
}
