package model

import (
	"github.com/rlch/javacomplete"
)

// Node is a syntax node at or around the cursor. It is a closed set:
// *Operand, *MemberReference, *MemberSelect and *Identifier.
type Node interface {
	Location() Span
	isNode()
}

// Span places a node in a document.
type Span struct {
	File string
	Pos  Position
}

// Location returns s itself so that embedding a Span satisfies Node.
func (s Span) Location() Span { return s }

// Operand is a qualifier expression: a name, a dotted chain or a type.
type Operand struct {
	Span
	Syntax *javacomplete.TypeExpr
}

// MemberReference is Qualifier::Name, with Name possibly partial or empty.
type MemberReference struct {
	Span
	Qualifier *Operand
	Name      string
}

// MemberSelect is Qualifier.Name, with Name possibly partial or empty.
type MemberSelect struct {
	Span
	Qualifier *Operand
	Name      string
}

// Identifier is a bare, possibly partial or empty, name.
type Identifier struct {
	Span
	Name string
}

func (*Operand) isNode()         {}
func (*MemberReference) isNode() {}
func (*MemberSelect) isNode()    {}
func (*Identifier) isNode()      {}

// Text returns the source form of the operand.
func (o *Operand) Text() string {
	if o == nil || o.Syntax == nil {
		return ""
	}

	return o.Syntax.String()
}
