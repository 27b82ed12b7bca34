package lsp

import (
	"net/url"
	"strings"
	"unicode/utf16"

	"go.lsp.dev/protocol"

	"github.com/rlch/javacomplete/model"
)

// URIToPath converts a document URI to a file system path.
func URIToPath(uri protocol.DocumentURI) string {
	u, err := url.Parse(string(uri))
	if err != nil {
		// Fallback: strip file:// prefix
		return strings.TrimPrefix(string(uri), "file://")
	}

	if u.Scheme == "file" {
		return u.Path
	}

	return string(uri)
}

// PathToURI converts a file system path to a document URI.
func PathToURI(path string) protocol.DocumentURI {
	return protocol.DocumentURI("file://" + path)
}

// toPosition converts an LSP position, whose character is counted in UTF-16
// code units, to a byte-based position in content.
func toPosition(content string, pos protocol.Position) model.Position {
	offset := 0
	rest := content

	for range pos.Line {
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			offset += len(rest)
			rest = ""

			break
		}

		offset += nl + 1
		rest = rest[nl+1:]
	}

	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}

	col := byteColumn(rest, pos.Character)

	return model.Position{
		Line:   int(pos.Line),
		Column: col,
		Offset: offset + col,
	}
}

// byteColumn maps a UTF-16 offset in line to a byte offset, clamped to the
// line length.
func byteColumn(line string, character uint32) int {
	units := 0

	for i, r := range line {
		if units >= int(character) {
			return i
		}

		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}

		units += n
	}

	return len(line)
}
