package javacomplete

import (
	"unicode"

	"github.com/alecthomas/participle/v2/lexer"
)

// exprLexer tokenizes Java type and qualifier expressions.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Ident", Pattern: `[\p{L}_$][\p{L}\p{N}_$]*`},
	{Name: "Punct", Pattern: `::|[.<>,\[\]?]`},
})

// IsIdentifierStart reports whether r may start a Java identifier.
func IsIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

// IsIdentifierPart reports whether r may appear in a Java identifier.
func IsIdentifierPart(r rune) bool {
	return IsIdentifierStart(r) || unicode.IsDigit(r)
}

// ExprBeforeCursor returns the qualifier expression text that ends at col
// (a byte offset into line). It scans back over identifiers, '.', "::" and
// array brackets; commas, '?' and whitespace are only accepted inside type
// arguments.
func ExprBeforeCursor(line string, col int) string {
	col = min(max(col, 0), len(line))
	runes := []rune(line[:col])

	depth := 0
	start := len(runes)

	for i := len(runes) - 1; i >= 0; i-- {
		r := runes[i]

		switch {
		case IsIdentifierPart(r), r == '.', r == ':', r == '[', r == ']':
		case r == '>':
			depth++
		case r == '<':
			if depth == 0 {
				return string(runes[start:])
			}

			depth--
		case depth > 0 && (r == ',' || r == '?' || r == ' ' || r == '\t'):
		default:
			return string(runes[start:])
		}

		start = i
	}

	return string(runes[start:])
}
