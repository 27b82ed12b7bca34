package javacomplete

import (
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/cockroachdb/errors"
)

var (
	exprParser = participle.MustBuild[Expr](
		participle.Lexer(exprLexer),
		participle.Elide("Whitespace"),
	)

	typeParser = participle.MustBuild[TypeExpr](
		participle.Lexer(exprLexer),
		participle.Elide("Whitespace"),
	)
)

// ParseExpr parses a qualifier expression with an optional "::name" tail.
// Parsers are safe for concurrent use.
func ParseExpr(text string) (*Expr, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyExpr
	}

	expr, err := exprParser.ParseString("", text)
	if err != nil {
		return nil, errors.Wrapf(err, "parse expression %q", text)
	}

	return expr, nil
}

// ParseType parses a single type expression such as
// "java.util.Map<K, java.util.List<V>>[]".
func ParseType(text string) (*TypeExpr, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyExpr
	}

	t, err := typeParser.ParseString("", text)
	if err != nil {
		return nil, errors.Wrapf(err, "parse type %q", text)
	}

	return t, nil
}

// ParseCursorExpr classifies the text returned by ExprBeforeCursor.
//
//	""                -> identifier ""
//	"fo"              -> identifier "fo"
//	"list.si"         -> select list . si
//	"list."           -> select list . ""
//	"List<String>::"  -> reference List<String> :: ""
//	".foo"            -> select <unknown> . foo
func ParseCursorExpr(text string) (*CursorExpr, error) {
	text = strings.TrimSpace(text)

	switch {
	case text == "":
		return &CursorExpr{Kind: CursorIdentifier}, nil
	case strings.HasPrefix(text, "::"):
		return &CursorExpr{Kind: CursorReference, Name: trailingIdent(text)}, nil
	case strings.HasPrefix(text, "."):
		return &CursorExpr{Kind: CursorSelect, Name: trailingIdent(text)}, nil
	}

	if strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "::") {
		qualifier, err := ParseType(strings.TrimSuffix(text, "."))
		if err != nil {
			return nil, err
		}

		return &CursorExpr{Kind: CursorSelect, Qualifier: qualifier}, nil
	}

	expr, err := ParseExpr(text)
	if err != nil {
		return nil, err
	}

	switch {
	case expr.Ref != nil:
		return &CursorExpr{Kind: CursorReference, Qualifier: expr.Operand, Name: expr.Ref.Name}, nil
	case expr.Operand.IsSimpleName():
		return &CursorExpr{Kind: CursorIdentifier, Name: expr.Operand.Names[0]}, nil
	case expr.Operand.IsPlainName():
		names := expr.Operand.Names

		return &CursorExpr{
			Kind:      CursorSelect,
			Qualifier: expr.Operand.Qualifier(),
			Name:      names[len(names)-1],
		}, nil
	default:
		// A complete type such as List<String> has nothing to complete.
		return &CursorExpr{Kind: CursorIdentifier}, nil
	}
}

func trailingIdent(text string) string {
	i := len(text)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		if !IsIdentifierPart(r) {
			break
		}

		i -= size
	}

	return text[i:]
}
