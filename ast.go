// Package javacomplete provides configuration and the Java type-expression
// grammar used by the member completion engine and its reference oracle.
package javacomplete

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Expr is a qualifier expression optionally followed by a method reference,
// e.g. "List<String>::" or "names::ad".
type Expr struct {
	Pos     lexer.Position
	Operand *TypeExpr `parser:"@@"`
	Ref     *Ref      `parser:"@@?"`
}

// Ref is the "::name" tail of a method reference. Name may be empty.
type Ref struct {
	Name string `parser:"'::' @Ident?"`
}

// TypeExpr is a dotted name with optional type arguments and array
// dimensions, or a wildcard inside type arguments.
type TypeExpr struct {
	Pos      lexer.Position
	Wildcard *Wildcard  `parser:"  @@"`
	Names    []string   `parser:"| @Ident ( '.' @Ident )*"`
	Args     []*TypeExpr `parser:"  ( '<' ( @@ ( ',' @@ )* )? '>' )?"`
	Dims     []string   `parser:"  ( @'[' ']' )*"`
}

// Wildcard is ?, ? extends T or ? super T.
type Wildcard struct {
	Mark  string    `parser:"@'?'"`
	Kind  string    `parser:"( @( 'extends' | 'super' )"`
	Bound *TypeExpr `parser:"  @@ )?"`
}

// Name returns the dotted name of the expression.
func (t *TypeExpr) Name() string {
	return strings.Join(t.Names, ".")
}

// IsSimpleName reports whether t is a single identifier with no type
// arguments or dimensions.
func (t *TypeExpr) IsSimpleName() bool {
	return t.Wildcard == nil && len(t.Names) == 1 && len(t.Args) == 0 && len(t.Dims) == 0
}

// IsPlainName reports whether t is a dotted name with no type arguments or
// dimensions.
func (t *TypeExpr) IsPlainName() bool {
	return t.Wildcard == nil && len(t.Names) > 0 && len(t.Args) == 0 && len(t.Dims) == 0
}

// String returns the canonical source form of t.
func (t *TypeExpr) String() string {
	if t == nil {
		return ""
	}

	var b strings.Builder

	if t.Wildcard != nil {
		b.WriteString("?")

		if t.Wildcard.Kind != "" && t.Wildcard.Bound != nil {
			b.WriteString(" " + t.Wildcard.Kind + " " + t.Wildcard.Bound.String())
		}

		return b.String()
	}

	b.WriteString(t.Name())

	if len(t.Args) > 0 {
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}

		b.WriteString("<" + strings.Join(args, ", ") + ">")
	}

	for range t.Dims {
		b.WriteString("[]")
	}

	return b.String()
}

// Qualifier returns t without its last name segment, or nil when t has a
// single segment.
func (t *TypeExpr) Qualifier() *TypeExpr {
	if len(t.Names) < 2 {
		return nil
	}

	return &TypeExpr{Pos: t.Pos, Names: t.Names[:len(t.Names)-1]}
}

// CursorKind classifies the expression that ends at the cursor.
type CursorKind int

// Cursor expression kinds.
const (
	// CursorIdentifier is a bare (possibly empty) name.
	CursorIdentifier CursorKind = iota
	// CursorSelect is qualifier.name.
	CursorSelect
	// CursorReference is qualifier::name.
	CursorReference
)

func (k CursorKind) String() string {
	switch k {
	case CursorSelect:
		return "select"
	case CursorReference:
		return "reference"
	default:
		return "identifier"
	}
}

// CursorExpr is the completable expression ending at the cursor. Qualifier
// is nil for identifiers and for selects/references on an expression the
// grammar does not cover (a call result, a literal).
type CursorExpr struct {
	Kind      CursorKind
	Qualifier *TypeExpr
	Name      string
}
