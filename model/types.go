// Package model holds the compiler-facing data model shared by the oracle,
// the completion engine and its callers: resolved types, elements, syntax
// nodes, scopes and completion items. Values are built per snapshot and are
// read-only afterwards.
package model

import (
	"strings"
)

// Type is a resolved static type. It is a closed set: *ArrayType,
// *TypeVariable, *DeclaredType and *OtherType.
type Type interface {
	String() string
	isType()
}

// ArrayType is T[].
type ArrayType struct {
	Elem Type
}

// TypeVariable is a type parameter such as T in List<T>. Upper is nil when
// the variable has no usable bound.
type TypeVariable struct {
	Name  string
	Upper Type
}

// DeclaredType is a class, interface or enum type with its type arguments.
type DeclaredType struct {
	Element *TypeElement
	Args    []Type
}

// OtherType covers primitives, void, null and unresolvable types.
type OtherType struct {
	Name string
}

func (*ArrayType) isType()    {}
func (*TypeVariable) isType() {}
func (*DeclaredType) isType() {}
func (*OtherType) isType()    {}

func (t *ArrayType) String() string {
	if t.Elem == nil {
		return "[]"
	}

	return t.Elem.String() + "[]"
}

func (t *TypeVariable) String() string { return t.Name }

func (t *DeclaredType) String() string {
	if t.Element == nil {
		return "<unknown>"
	}

	if len(t.Args) == 0 {
		return t.Element.QualifiedName
	}

	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}

	return t.Element.QualifiedName + "<" + strings.Join(args, ", ") + ">"
}

func (t *OtherType) String() string { return t.Name }

// SimpleString renders t with simple type names, as shown to users.
func SimpleString(t Type) string {
	switch t := t.(type) {
	case nil:
		return ""
	case *ArrayType:
		return SimpleString(t.Elem) + "[]"
	case *DeclaredType:
		if t.Element == nil {
			return t.String()
		}

		if len(t.Args) == 0 {
			return t.Element.SimpleName()
		}

		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = SimpleString(a)
		}

		return t.Element.SimpleName() + "<" + strings.Join(args, ", ") + ">"
	default:
		return t.String()
	}
}

// Primitive type names, plus void.
var primitives = map[string]bool{
	"boolean": true,
	"byte":    true,
	"char":    true,
	"short":   true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
	"void":    true,
}

// IsPrimitive reports whether name is a Java primitive type or void.
func IsPrimitive(name string) bool {
	return primitives[name]
}
