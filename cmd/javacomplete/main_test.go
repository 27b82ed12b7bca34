package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/match"
	"github.com/rlch/javacomplete/model"
	"github.com/rlch/javacomplete/oracle"
)

const mainJava = "import java.util.*;\nclass Main {\n  Object o = List<String>::\n}\n"

func newSession(t *testing.T, text string) *session {
	t.Helper()

	file := "/src/Main.java"

	return &session{
		file:   file,
		text:   text,
		snap:   oracle.NewSnapshot(oracle.Builtin()).WithDocument(file, text),
		config: javacomplete.DefaultCompletionConfig(),
		logger: zap.NewNop(),
	}
}

func sampleItems() []model.CompletionItem {
	return []model.CompletionItem{
		{Label: "size", InsertText: "size()", Kind: model.ItemMethod, Detail: "int size()", SortPriority: 37, MatchLevel: match.Prefix},
		{Label: "SIZE", InsertText: "SIZE", Kind: model.ItemField, Detail: "int", SortPriority: 28, MatchLevel: match.CaseInsensitivePrefix},
		{Label: "new", InsertText: "new", Kind: model.ItemKeyword, SortPriority: 100, MatchLevel: match.Exact},
	}
}

func TestCursorPosition(t *testing.T) {
	t.Parallel()

	text := "ab\r\nπx = 1;\nlast"

	tests := []struct {
		name      string
		line, col int
		want      model.Position
	}{
		{"start", 1, 1, model.Position{Line: 0, Column: 0, Offset: 0}},
		{"crlf line end", 1, 9, model.Position{Line: 0, Column: 2, Offset: 2}},
		{"multibyte", 2, 2, model.Position{Line: 1, Column: 2, Offset: 6}},
		{"last line", 3, 5, model.Position{Line: 2, Column: 4, Offset: 17}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := cursorPosition(text, tt.line, tt.col)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("cursorPosition() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCursorPosition_Invalid(t *testing.T) {
	t.Parallel()

	_, err := cursorPosition("x", 0, 1)
	require.ErrorIs(t, err, ErrBadCursor)

	_, err = cursorPosition("x", 3, 1)
	require.Error(t, err)
}

func TestWithLine(t *testing.T) {
	t.Parallel()

	text, offset := withLine("a\nbb\nc", 1, "XYZ")
	assert.Equal(t, "a\nXYZ\nc", text)
	assert.Equal(t, 2, offset)

	text, offset = withLine("a", 2, "q")
	assert.Equal(t, "a\n\nq", text)
	assert.Equal(t, 3, offset)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"size", "SIZE", "new"}},
		{`kind == "method"`, []string{"size"}},
		{`priority >= 30 && level != "EXACT"`, []string{"size"}},
		{`label startsWith "S" || kind == "keyword"`, []string{"SIZE", "new"}},
		{`insert endsWith "()"`, []string{"size"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()

			f, err := compileFilter(tt.expr)
			require.NoError(t, err)

			got, err := f.Apply(sampleItems())
			require.NoError(t, err)

			labels := make([]string, len(got))
			for i, it := range got {
				labels[i] = it.Label
			}

			assert.Equal(t, tt.want, labels)
		})
	}
}

func TestFilter_CompileErrors(t *testing.T) {
	t.Parallel()

	_, err := compileFilter("priority +")
	require.Error(t, err)

	_, err = compileFilter(`label + "x"`)
	require.Error(t, err, "non-boolean expressions are rejected at compile time")

	_, err = compileFilter("unknownField == 1")
	require.Error(t, err)
}

func TestWriteTable_Plain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := writeTable(&buf, DefaultStyles(), sampleItems(), true, true)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Contains(t, lines[1], "size")
	assert.Contains(t, lines[1], "PREFIX")
	assert.Contains(t, lines[3], "keyword")
	assert.Contains(t, lines[4], "(trimmed)")
}

func TestWriteTable_Styled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := writeTable(&buf, DefaultStyles(), sampleItems(), false, false)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "LABEL")
	assert.Contains(t, out, "size")
	assert.NotContains(t, out, "showing the first")
}

func TestSession_CompleteAt(t *testing.T) {
	t.Parallel()

	s := newSession(t, mainJava)

	pos, err := cursorPosition(mainJava, 3, len("  Object o = List<String>::")+1)
	require.NoError(t, err)

	q, result := s.completeAt(context.Background(), s.text, pos)
	require.False(t, result.IsEmpty())
	assert.Empty(t, q.Prefix)
	require.NotEmpty(t, result.Items)
	assert.Equal(t, "new", result.Items[0].Label)

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, q, result, result.Items))

	var got jsonResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got.Line)
	assert.False(t, got.Empty)
	assert.Equal(t, "new", got.Items[0].Label)
	assert.Equal(t, "keyword", got.Items[0].Kind)
}

func TestExplorer_RefreshAndAccept(t *testing.T) {
	t.Parallel()

	s := newSession(t, "import java.util.*;\nclass Main {\n\n}\n")

	e := newExplorer(context.Background(), s, 2, "  Object o = List<String>::isEm")
	require.NotEmpty(t, e.result.Items)
	assert.Equal(t, "new", e.result.Items[0].Label)

	e.selected = -1
	for i, it := range e.result.Items {
		if it.Label == "isEmpty" {
			e.selected = i
		}
	}
	require.GreaterOrEqual(t, e.selected, 0, "isEmpty offered")

	e.accept()
	assert.Equal(t, "  Object o = List<String>::isEmpty", e.input.Value())

	view := e.View()
	assert.Contains(t, view, "javacomplete explore")
}

func TestCheckModel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, checkModel(&buf, "<builtin>", oracle.Builtin(), nil))
	assert.Contains(t, buf.String(), "<builtin>")
	assert.Contains(t, buf.String(), "types")

	buf.Reset()

	path := filepath.Join("..", "..", "oracle", "testdata", "invalid.yaml")
	m, err := oracle.LoadModelFile(path)
	require.Error(t, checkModel(&buf, path, m, err))
	assert.Contains(t, buf.String(), "problems")
	assert.Contains(t, buf.String(), "com.example.Nope")
}
