package oracle

import (
	"context"

	"github.com/rlch/javacomplete/model"
)

// allMembers returns the members of elem and everything it inherits, most
// derived first. Superclasses are walked before interfaces so that a class
// method wins over an interface default of the same signature. Supertype
// constructors and private members are not inherited, nor are static
// interface methods.
func (m *Model) allMembers(ctx context.Context, elem *model.TypeElement) ([]*model.Member, error) {
	var (
		out     []*model.Member
		seen    = make(map[string]bool)
		visited = make(map[*model.TypeElement]bool)
		ifaces  []*model.TypeElement
	)

	collect := func(e *model.TypeElement) {
		inherited := e != elem

		for _, mem := range e.Members {
			if inherited && !inheritable(e, mem) {
				continue
			}

			key := hidingKey(mem)
			if seen[key] {
				continue
			}

			seen[key] = true
			out = append(out, mem)
		}
	}

	for e := elem; e != nil && !visited[e]; e = m.superclass(e) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		visited[e] = true
		collect(e)

		for _, it := range e.Interfaces {
			ifaces = append(ifaces, it.Element)
		}
	}

	for len(ifaces) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e := ifaces[0]
		ifaces = ifaces[1:]

		if e == nil || visited[e] {
			continue
		}

		visited[e] = true
		collect(e)

		for _, it := range e.Interfaces {
			ifaces = append(ifaces, it.Element)
		}
	}

	return out, nil
}

// superclass returns the class e extends, Object for types that name none,
// and nil for Object itself.
func (m *Model) superclass(e *model.TypeElement) *model.TypeElement {
	if e.Superclass != nil {
		return e.Superclass.Element
	}

	if e == m.object {
		return nil
	}

	return m.object
}

func inheritable(from *model.TypeElement, mem *model.Member) bool {
	switch {
	case mem.Kind == model.Constructor:
		return false
	case mem.Modifiers.Has(model.Private):
		return false
	case from.Kind == model.Interface && mem.Kind == model.Method && mem.IsStatic():
		return false
	default:
		return true
	}
}

// hidingKey groups members that override or hide one another: methods by
// erased signature, fields and member types by name.
func hidingKey(mem *model.Member) string {
	switch mem.Kind {
	case model.Method, model.Constructor:
		return mem.Key()
	default:
		return mem.Kind.String() + ":" + mem.Name
	}
}

// isAccessible applies the Java access rules to mem, accessed through site
// from code in scope.
func (m *Model) isAccessible(scope *model.Scope, mem *model.Member, site *model.DeclaredType) bool {
	decl := mem.Declaring
	if decl == nil || mem.Modifiers.Has(model.Public) {
		return true
	}

	var enclosing *model.TypeElement

	pkg := ""
	if scope != nil {
		enclosing = scope.Enclosing
		pkg = scope.Package
	}

	if mem.Modifiers.Has(model.Private) {
		return enclosing != nil && enclosing.Outermost() == decl.Outermost()
	}

	if pkg == decl.Package() {
		return true
	}

	if !mem.Modifiers.Has(model.Protected) {
		return false
	}

	for e := enclosing; e != nil; e = e.Enclosing {
		if !m.isSubclass(e, decl) {
			continue
		}

		// Protected instance members of another package are only reachable
		// through the accessing class or its subclasses.
		if mem.IsStatic() || mem.Kind == model.NestedType || site == nil || site.Element == nil {
			return true
		}

		if m.isSubclass(site.Element, e) {
			return true
		}
	}

	return false
}

// isTypeAccessible reports whether a type may be named from scope.
func (m *Model) isTypeAccessible(scope *model.Scope, t *model.TypeElement) bool {
	for e := t; e != nil; e = e.Enclosing {
		if e.Modifiers.Has(model.Private) {
			return scope != nil && scope.Enclosing != nil && scope.Enclosing.Outermost() == t.Outermost()
		}

		if !e.Modifiers.Has(model.Public) && (scope == nil || scope.Package != t.Package()) {
			return false
		}
	}

	return true
}
