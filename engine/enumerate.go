package engine

import (
	"context"

	"github.com/rlch/javacomplete/match"
	"github.com/rlch/javacomplete/model"
)

// cancelCheckInterval is how many members are filtered between checks of
// the query context.
const cancelCheckInterval = 16

// Mode selects which member kinds a completion accepts.
type Mode int

const (
	// MethodsOnly accepts only methods; method references cannot target
	// fields or types.
	MethodsOnly Mode = iota
	// AllKinds accepts methods, fields and nested types.
	AllKinds
)

func (m Mode) String() string {
	if m == MethodsOnly {
		return "methods"
	}

	return "all"
}

// Request carries the per-query filter inputs.
type Request struct {
	Scope  *model.Scope
	Prefix string
	Mode   Mode
	// Static is set when the qualifier denotes a type rather than an instance.
	Static bool
}

// Candidate is a member that survived filtering, with its match tier.
type Candidate struct {
	Member *model.Member
	Level  match.Level
}

// Enumerate walks every member reachable on site and keeps those that match
// the prefix, suit the mode, are accessible from the scope and fit the
// static context. Output order follows the oracle and carries no meaning.
func (e *Engine) Enumerate(ctx context.Context, site *model.DeclaredType, req Request) ([]Candidate, error) {
	members, err := e.oracle.AllMembers(ctx, site.Element)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(members))

	for i, m := range members {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		level := match.Score(m.Name, req.Prefix)
		if level == match.NoMatch {
			continue
		}

		if !acceptsKind(req.Mode, m.Kind) {
			continue
		}

		if !e.oracle.IsAccessible(req.Scope, m, site) {
			continue
		}

		if !fitsStaticContext(req, m) {
			continue
		}

		candidates = append(candidates, Candidate{Member: m, Level: level})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return candidates, nil
}

func acceptsKind(mode Mode, kind model.MemberKind) bool {
	switch mode {
	case MethodsOnly:
		return kind == model.Method
	default:
		return kind == model.Method || kind == model.Field || kind == model.NestedType
	}
}

func fitsStaticContext(req Request, m *model.Member) bool {
	if !req.Static {
		return !m.IsStatic()
	}

	// Type.member outside a method reference only reaches static members;
	// Type::method also names instance methods (String::length).
	if req.Mode == AllKinds {
		return m.IsStatic() || m.Kind == model.NestedType
	}

	return true
}
