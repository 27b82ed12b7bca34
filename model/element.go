package model

import (
	"strings"
)

// Modifier is a set of Java declaration modifiers.
type Modifier uint16

// Modifiers.
const (
	Public Modifier = 1 << iota
	Protected
	Private
	Static
	Abstract
	Final
	Default
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{Public, "public"},
	{Protected, "protected"},
	{Private, "private"},
	{Static, "static"},
	{Abstract, "abstract"},
	{Final, "final"},
	{Default, "default"},
}

// Has reports whether every modifier in x is set.
func (m Modifier) Has(x Modifier) bool {
	return m&x == x
}

func (m Modifier) String() string {
	var parts []string

	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			parts = append(parts, mn.name)
		}
	}

	return strings.Join(parts, " ")
}

// ParseModifier returns the modifier named s.
func ParseModifier(s string) (Modifier, bool) {
	for _, mn := range modifierNames {
		if mn.name == s {
			return mn.mod, true
		}
	}

	return 0, false
}

// TypeKind is the kind of a type declaration.
type TypeKind int

// Type declaration kinds.
const (
	Class TypeKind = iota
	Interface
	Enum
	Annotation
)

func (k TypeKind) String() string {
	switch k {
	case Class:
		return "class"
	case Interface:
		return "interface"
	case Enum:
		return "enum"
	case Annotation:
		return "annotation"
	default:
		return "unknown"
	}
}

// MemberKind is the kind of a type member.
type MemberKind int

// Member kinds.
const (
	Method MemberKind = iota
	Field
	Constructor
	NestedType
	OtherMember
)

func (k MemberKind) String() string {
	switch k {
	case Method:
		return "method"
	case Field:
		return "field"
	case Constructor:
		return "constructor"
	case NestedType:
		return "type"
	default:
		return "other"
	}
}

// Element is a named program element. It is a closed set: *TypeElement,
// *Member and *Variable.
type Element interface {
	ElementName() string
	isElement()
}

// TypeElement is a class, interface, enum or annotation declaration.
type TypeElement struct {
	QualifiedName string
	Kind          TypeKind
	Modifiers     Modifier
	TypeParams    []*TypeVariable
	Superclass    *DeclaredType
	Interfaces    []*DeclaredType
	Members       []*Member
	// Enclosing is the declaring type of a nested type, nil at top level.
	Enclosing *TypeElement
}

// Member is a method, field, constructor or nested type of a TypeElement.
type Member struct {
	Name      string
	Kind      MemberKind
	Declaring *TypeElement
	Modifiers Modifier
	// Signature is set for methods and constructors.
	Signature *Signature
	// Type is the field type, or the declared type of a nested type.
	Type Type
}

// Signature is a method or constructor signature.
type Signature struct {
	TypeParams []*TypeVariable
	Params     []Type
	Return     Type
}

// Variable is a local variable or parameter in scope.
type Variable struct {
	Name string
	Type Type
}

func (*TypeElement) isElement() {}
func (*Member) isElement()      {}
func (*Variable) isElement()    {}

// ElementName returns the qualified name.
func (e *TypeElement) ElementName() string { return e.QualifiedName }

// ElementName returns the simple member name.
func (m *Member) ElementName() string { return m.Name }

// ElementName returns the variable name.
func (v *Variable) ElementName() string { return v.Name }

// SimpleName returns the last segment of the qualified name.
func (e *TypeElement) SimpleName() string {
	if i := strings.LastIndexByte(e.QualifiedName, '.'); i >= 0 {
		return e.QualifiedName[i+1:]
	}

	return e.QualifiedName
}

// Package returns the package of the outermost enclosing type.
func (e *TypeElement) Package() string {
	top := e.Outermost()
	if i := strings.LastIndexByte(top.QualifiedName, '.'); i >= 0 {
		return top.QualifiedName[:i]
	}

	return ""
}

// Outermost returns the top-level type that (transitively) encloses e.
func (e *TypeElement) Outermost() *TypeElement {
	top := e
	for top.Enclosing != nil {
		top = top.Enclosing
	}

	return top
}

// AsType returns the generic type of e, parameterized by its own type
// variables.
func (e *TypeElement) AsType() *DeclaredType {
	args := make([]Type, len(e.TypeParams))
	for i, tp := range e.TypeParams {
		args[i] = tp
	}

	return &DeclaredType{Element: e, Args: args}
}

// IsStatic reports whether the member carries the static modifier.
func (m *Member) IsStatic() bool {
	return m.Modifiers.Has(Static)
}

// Key identifies a member up to overloading: name plus erased parameter
// list for methods and constructors, name alone otherwise.
func (m *Member) Key() string {
	if m.Signature == nil {
		return m.Kind.String() + ":" + m.Name
	}

	params := make([]string, len(m.Signature.Params))
	for i, p := range m.Signature.Params {
		params[i] = Erasure(p)
	}

	return m.Kind.String() + ":" + m.Name + "(" + strings.Join(params, ",") + ")"
}

// Detail renders a short, user-facing description of the member.
func (m *Member) Detail() string {
	switch m.Kind {
	case Method, Constructor:
		if m.Signature == nil {
			return m.Name + "()"
		}

		params := make([]string, len(m.Signature.Params))
		for i, p := range m.Signature.Params {
			params[i] = SimpleString(p)
		}

		sig := m.Name + "(" + strings.Join(params, ", ") + ")"
		if m.Kind == Method && m.Signature.Return != nil {
			sig = SimpleString(m.Signature.Return) + " " + sig
		}

		return sig
	case Field:
		return SimpleString(m.Type) + " " + m.Name
	case NestedType:
		if dt, ok := m.Type.(*DeclaredType); ok && dt.Element != nil {
			return dt.Element.QualifiedName
		}

		return m.Name
	default:
		return m.Name
	}
}

// Erasure returns the erased name of t: type arguments dropped and type
// variables replaced by the erasure of their bound.
func Erasure(t Type) string {
	seen := map[*TypeVariable]bool{}

	var erase func(Type) string
	erase = func(t Type) string {
		switch t := t.(type) {
		case nil:
			return "java.lang.Object"
		case *ArrayType:
			return erase(t.Elem) + "[]"
		case *DeclaredType:
			if t.Element == nil {
				return "java.lang.Object"
			}

			return t.Element.QualifiedName
		case *TypeVariable:
			if t.Upper == nil || seen[t] {
				return "java.lang.Object"
			}

			seen[t] = true

			return erase(t.Upper)
		default:
			return t.String()
		}
	}

	return erase(t)
}

// Position is a cursor position. Line and Column are 0-based; Offset is the
// absolute character offset in the document.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Scope is the lexical context at a syntax node.
type Scope struct {
	File      string
	Package   string
	Enclosing *TypeElement
	Static    bool
	Locals    []*Variable
	TypeVars  []*TypeVariable
}
