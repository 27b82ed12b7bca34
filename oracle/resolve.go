package oracle

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/model"
)

// typeContext resolves type names the way a Java compilation unit does.
type typeContext struct {
	m         *Model
	pkg       string
	imports   []string
	enclosing *model.TypeElement
	// vars are the type variables in scope, innermost last.
	vars []*model.TypeVariable
}

// withVars returns a copy of c with extra type variables in scope. A static
// context hides the type parameters of the enclosing type.
func (c *typeContext) withVars(static bool, extra []*model.TypeVariable) *typeContext {
	cc := *c
	if static {
		cc.vars = visibleTypeParams(c.enclosing, true)
	}

	cc.vars = append(slices.Clone(cc.vars), extra...)

	return &cc
}

func (c *typeContext) lookupVar(name string) *model.TypeVariable {
	for i := len(c.vars) - 1; i >= 0; i-- {
		if c.vars[i].Name == name {
			return c.vars[i]
		}
	}

	return nil
}

func (c *typeContext) resolveText(text string) (model.Type, error) {
	expr, err := javacomplete.ParseType(text)
	if err != nil {
		return nil, err
	}

	return c.resolve(expr)
}

// resolve turns a parsed type expression into a type. Wildcards resolve to
// their upper bound.
func (c *typeContext) resolve(expr *javacomplete.TypeExpr) (model.Type, error) {
	if w := expr.Wildcard; w != nil {
		if w.Kind == "extends" && w.Bound != nil {
			return c.resolve(w.Bound)
		}

		return c.m.objectType(), nil
	}

	var t model.Type

	name := expr.Name()

	switch {
	case len(expr.Names) == 1 && len(expr.Args) == 0:
		if tv := c.lookupVar(name); tv != nil {
			t = tv

			break
		}

		if model.IsPrimitive(name) {
			t = &model.OtherType{Name: name}

			break
		}

		fallthrough
	default:
		elem := c.lookupType(name)
		if elem == nil {
			return nil, errors.Wrapf(ErrUnknownType, "%s", name)
		}

		dt := &model.DeclaredType{Element: elem}

		if len(expr.Args) > 0 {
			if len(expr.Args) != len(elem.TypeParams) {
				return nil, errors.Newf("%s takes %d type arguments, got %d",
					elem.QualifiedName, len(elem.TypeParams), len(expr.Args))
			}

			for _, a := range expr.Args {
				at, err := c.resolve(a)
				if err != nil {
					return nil, err
				}

				dt.Args = append(dt.Args, at)
			}
		}

		t = dt
	}

	for range expr.Dims {
		t = &model.ArrayType{Elem: t}
	}

	return t, nil
}

// lookupType resolves a simple or dotted type name.
func (c *typeContext) lookupType(name string) *model.TypeElement {
	segs := strings.Split(name, ".")

	if t := c.lookupSimple(segs[0]); t != nil {
		if inner := c.m.descend(t, segs[1:]); inner != nil {
			return inner
		}
	}

	for i := len(segs); i > 1; i-- {
		if t := c.m.types[strings.Join(segs[:i], ".")]; t != nil {
			return c.m.descend(t, segs[i:])
		}
	}

	return nil
}

// lookupSimple applies Java's order for simple type names: enclosing and
// member types, single-type imports, the current package, on-demand imports,
// java.lang and finally the unnamed package.
func (c *typeContext) lookupSimple(name string) *model.TypeElement {
	for e := c.enclosing; e != nil; e = e.Enclosing {
		if e.SimpleName() == name {
			return e
		}

		if t := c.m.memberType(e, name); t != nil {
			return t
		}
	}

	for _, imp := range c.imports {
		if !strings.HasSuffix(imp, ".*") && lastSegment(imp) == name {
			if t := c.m.types[imp]; t != nil {
				return t
			}
		}
	}

	if t := c.m.types[qualify(c.pkg, name)]; t != nil {
		return t
	}

	for _, imp := range c.imports {
		if strings.HasSuffix(imp, ".*") {
			if t := c.m.types[strings.TrimSuffix(imp, "*")+name]; t != nil {
				return t
			}
		}
	}

	if t := c.m.types["java.lang."+name]; t != nil {
		return t
	}

	return c.m.types[name]
}

// memberType finds a member type of e, including ones inherited from its
// supertypes.
func (m *Model) memberType(e *model.TypeElement, name string) *model.TypeElement {
	seen := make(map[*model.TypeElement]bool)

	var find func(*model.TypeElement) *model.TypeElement
	find = func(e *model.TypeElement) *model.TypeElement {
		if e == nil || seen[e] {
			return nil
		}

		seen[e] = true

		if t := m.types[e.QualifiedName+"."+name]; t != nil {
			return t
		}

		for _, st := range m.supertypes(e) {
			if t := find(st.Element); t != nil {
				return t
			}
		}

		return nil
	}

	return find(e)
}

func (m *Model) descend(t *model.TypeElement, names []string) *model.TypeElement {
	for _, n := range names {
		t = m.memberType(t, n)
		if t == nil {
			return nil
		}
	}

	return t
}

// visibleTypeParams returns the type variables usable inside elem, outermost
// first. A static context hides elem's own parameters; a static or
// non-class type hides those of its enclosing types.
func visibleTypeParams(elem *model.TypeElement, static bool) []*model.TypeVariable {
	var chain [][]*model.TypeVariable

	for e := elem; e != nil; e = e.Enclosing {
		if !static {
			chain = append(chain, e.TypeParams)
		}

		if e.Modifiers.Has(model.Static) || e.Kind != model.Class {
			static = true
		}
	}

	var vars []*model.TypeVariable
	for i := len(chain) - 1; i >= 0; i-- {
		vars = append(vars, chain[i]...)
	}

	return vars
}

// supertypes returns the direct supertypes of e. Every type but Object has
// Object as a supertype when it declares no superclass.
func (m *Model) supertypes(e *model.TypeElement) []*model.DeclaredType {
	out := make([]*model.DeclaredType, 0, 1+len(e.Interfaces))

	switch {
	case e.Superclass != nil:
		out = append(out, e.Superclass)
	case m.object != nil && e != m.object:
		out = append(out, &model.DeclaredType{Element: m.object})
	}

	return append(out, e.Interfaces...)
}

// isSubclass reports whether sub is sup or inherits from it.
func (m *Model) isSubclass(sub, sup *model.TypeElement) bool {
	seen := make(map[*model.TypeElement]bool)

	var walk func(*model.TypeElement) bool
	walk = func(e *model.TypeElement) bool {
		if e == sup {
			return true
		}

		if e == nil || seen[e] {
			return false
		}

		seen[e] = true

		for _, st := range m.supertypes(e) {
			if walk(st.Element) {
				return true
			}
		}

		return false
	}

	return walk(sub)
}

// asSuper views t as an instance of target, carrying type arguments
// through the supertype chain. It returns nil when target is not a
// supertype of t.
func (m *Model) asSuper(t *model.DeclaredType, target *model.TypeElement) *model.DeclaredType {
	seen := make(map[*model.TypeElement]bool)

	var walk func(*model.DeclaredType) *model.DeclaredType
	walk = func(t *model.DeclaredType) *model.DeclaredType {
		if t.Element == target {
			return t
		}

		if seen[t.Element] {
			return nil
		}

		seen[t.Element] = true
		b := bindingsOf(t)

		for _, st := range m.supertypes(t.Element) {
			sub, _ := subst(st, b).(*model.DeclaredType)
			if sub == nil {
				continue
			}

			if r := walk(sub); r != nil {
				return r
			}
		}

		return nil
	}

	if t == nil || t.Element == nil {
		return nil
	}

	return walk(t)
}

// fieldType returns the type of a field seen through site.
func (m *Model) fieldType(site *model.DeclaredType, field *model.Member) model.Type {
	return subst(field.Type, bindingsOf(m.asSuper(site, field.Declaring)))
}

type bindings map[*model.TypeVariable]model.Type

func bindingsOf(t *model.DeclaredType) bindings {
	if t == nil || t.Element == nil || len(t.Args) == 0 || len(t.Args) != len(t.Element.TypeParams) {
		return nil
	}

	b := make(bindings, len(t.Args))
	for i, tv := range t.Element.TypeParams {
		b[tv] = t.Args[i]
	}

	return b
}

func subst(t model.Type, b bindings) model.Type {
	if len(b) == 0 {
		return t
	}

	switch t := t.(type) {
	case *model.TypeVariable:
		if r, ok := b[t]; ok {
			return r
		}

		return t
	case *model.ArrayType:
		return &model.ArrayType{Elem: subst(t.Elem, b)}
	case *model.DeclaredType:
		if len(t.Args) == 0 {
			return t
		}

		args := make([]model.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = subst(a, b)
		}

		return &model.DeclaredType{Element: t.Element, Args: args}
	default:
		return t
	}
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}

	return pkg + "." + name
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}

	return name
}
