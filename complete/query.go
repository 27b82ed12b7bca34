package complete

import (
	"strings"
	"unicode/utf8"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/model"
)

// Query is one completion request against a document.
type Query struct {
	File     string
	Content  string
	Position model.Position
	// Prefix is the run of completion characters ending at the cursor. It is
	// reported to callers for display and logging; candidates are matched
	// against the name of the node under the cursor instead.
	Prefix string
	// EndsWithParen is set when the identifier under the cursor is already
	// followed by '('.
	EndsWithParen bool
}

// IsJavaCompletionChar is the default prefix predicate: identifier parts
// and '.'.
func IsJavaCompletionChar(r rune) bool {
	return javacomplete.IsIdentifierPart(r) || r == '.'
}

// NewQuery builds a query for the cursor at pos in content. isPrefixChar
// selects the characters that make up Query.Prefix; nil means
// IsJavaCompletionChar. The predicate does not change which items a query
// returns.
func NewQuery(file, content string, pos model.Position, isPrefixChar func(rune) bool) Query {
	if isPrefixChar == nil {
		isPrefixChar = IsJavaCompletionChar
	}

	line := lineText(content, pos.Line)
	col := min(max(pos.Column, 0), len(line))

	return Query{
		File:          file,
		Content:       content,
		Position:      pos,
		Prefix:        prefixBefore(line[:col], isPrefixChar),
		EndsWithParen: endsWithParen(line[col:]),
	}
}

func prefixBefore(text string, isPrefixChar func(rune) bool) string {
	start := len(text)

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !isPrefixChar(r) {
			break
		}

		start -= size
	}

	return text[start:]
}

// endsWithParen skips the rest of the identifier under the cursor and
// reports whether '(' comes next.
func endsWithParen(rest string) bool {
	rest = strings.TrimLeftFunc(rest, javacomplete.IsIdentifierPart)

	return strings.HasPrefix(rest, "(")
}

func lineText(content string, line int) string {
	for i := 0; i < line; i++ {
		nl := strings.IndexByte(content, '\n')
		if nl < 0 {
			return ""
		}

		content = content[nl+1:]
	}

	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[:nl]
	}

	return strings.TrimSuffix(content, "\r")
}
