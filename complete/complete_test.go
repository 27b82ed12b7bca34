package complete_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/complete"
	"github.com/rlch/javacomplete/engine"
	"github.com/rlch/javacomplete/match"
	"github.com/rlch/javacomplete/model"
	"github.com/rlch/javacomplete/oracle"
)

const canvasPath = "src/com/example/app/Canvas.java"

func labels(r *model.Result) []string {
	out := make([]string, len(r.Items))
	for i, item := range r.Items {
		out[i] = item.Label
	}

	return out
}

func itemByLabel(t *testing.T, r *model.Result, label string) model.CompletionItem {
	t.Helper()

	for _, item := range r.Items {
		if item.Label == label {
			return item
		}
	}

	t.Fatalf("no item %q in %v", label, labels(r))

	return model.CompletionItem{}
}

// canvasSnapshot opens a Canvas.java document whose lines are all blank
// except those given.
func canvasSnapshot(t *testing.T, lines map[int]string) *oracle.Snapshot {
	t.Helper()

	m, err := oracle.LoadModelFile(filepath.Join("..", "oracle", "testdata", "shapes.yaml"))
	require.NoError(t, err)

	text := make([]string, 41)
	text[0] = "package com.example.app;"

	for i, l := range lines {
		text[i] = l
	}

	return oracle.NewSnapshot(m).WithDocument(canvasPath, strings.Join(text, "\n"))
}

func query(snap *oracle.Snapshot, file string, line int, col int) complete.Query {
	text, _ := snap.Document(file)

	return complete.NewQuery(file, text, model.Position{Line: line, Column: col}, nil)
}

// queryAtEnd places the cursor at the end of line.
func queryAtEnd(snap *oracle.Snapshot, file string, line int) complete.Query {
	text, _ := snap.Document(file)

	return query(snap, file, line, len(strings.Split(text, "\n")[line]))
}

func newObserved(snap complete.Oracle, cfg javacomplete.CompletionConfig) (*complete.Orchestrator, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)

	return complete.New(snap, zap.New(core), cfg), logs
}

func TestNewQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		content   string
		pos       model.Position
		predicate func(rune) bool
		prefix    string
		paren     bool
	}{
		{
			name:    "dotted prefix",
			content: "x = names.is",
			pos:     model.Position{Column: 12},
			prefix:  "names.is",
		},
		{
			name:    "paren after identifier rest",
			content: "foo.barBaz();",
			pos:     model.Position{Column: 7},
			prefix:  "foo.bar",
			paren:   true,
		},
		{
			name:      "identifier predicate",
			content:   "foo.bar",
			pos:       model.Position{Column: 7},
			predicate: javacomplete.IsIdentifierPart,
			prefix:    "bar",
		},
		{
			name:    "second line with CRLF",
			content: "a\r\n  List::ma (",
			pos:     model.Position{Line: 1, Column: 10},
			prefix:  "ma",
		},
		{
			name:    "column past end",
			content: "val",
			pos:     model.Position{Column: 99},
			prefix:  "val",
		},
		{
			name:    "line past end",
			content: "val",
			pos:     model.Position{Line: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := complete.NewQuery("F.java", tt.content, tt.pos, tt.predicate)
			assert.Equal(t, tt.prefix, q.Prefix)
			assert.Equal(t, tt.paren, q.EndsWithParen)
			assert.Equal(t, tt.pos, q.Position)
		})
	}
}

func TestIsJavaCompletionChar(t *testing.T) {
	t.Parallel()

	for _, r := range "aZ_$9.é" {
		assert.True(t, complete.IsJavaCompletionChar(r), string(r))
	}

	for _, r := range " :(<[" {
		assert.False(t, complete.IsJavaCompletionChar(r), string(r))
	}
}

func TestComplete_MemberReferenceBuiltin(t *testing.T) {
	t.Parallel()

	snap := oracle.NewSnapshot(nil).WithDocument("Main.java",
		"import java.util.*;\nclass Main {\n  Runnable r = List<String>::\n}\n")

	o, logs := newObserved(snap, javacomplete.DefaultCompletionConfig())
	r := o.Complete(context.Background(), queryAtEnd(snap, "Main.java", 2))

	require.False(t, r.IsEmpty())
	require.NotEmpty(t, r.Items)
	assert.Equal(t, "new", r.Items[0].Label)
	assert.Equal(t, engine.NewKeywordPriority, r.Items[0].SortPriority)

	got := labels(r)
	for _, name := range []string{"size", "add", "get", "of"} {
		n := 0

		for _, l := range got {
			if l == name {
				n++
			}
		}

		assert.Equal(t, 1, n, name)
	}

	assert.GreaterOrEqual(t, len(itemByLabel(t, r, "add").Overloads), 2)
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestComplete_MemberSelect(t *testing.T) {
	t.Parallel()

	snap := canvasSnapshot(t, map[int]string{
		5: "    box.ite",
		6: "    names.isEm(",
		7: "    Shape.",
	})
	o := complete.New(snap, nil, javacomplete.DefaultCompletionConfig())
	ctx := context.Background()

	r := o.Complete(ctx, queryAtEnd(snap, canvasPath, 5))
	assert.Equal(t, []string{"item", "items"}, labels(r))
	assert.Equal(t, model.ItemField, r.Items[0].Kind)

	// The cursor sits before the existing '('.
	q := query(snap, canvasPath, 6, len("    names.isEm"))
	assert.True(t, q.EndsWithParen)

	r = o.Complete(ctx, q)
	item := itemByLabel(t, r, "isEmpty")
	assert.Equal(t, "isEmpty", item.InsertText)

	// A type qualifier keeps statics and member types, and gets no "new".
	r = o.Complete(ctx, queryAtEnd(snap, canvasPath, 7))
	got := labels(r)
	assert.Contains(t, got, "ORIGIN")
	assert.Contains(t, got, "registry")
	assert.Contains(t, got, "Point")
	assert.NotContains(t, got, "new")
	assert.NotContains(t, got, "area")
	assert.Equal(t, "registry()", itemByLabel(t, r, "registry").InsertText)
}

func TestComplete_Identifier(t *testing.T) {
	t.Parallel()

	snap := canvasSnapshot(t, map[int]string{
		5:  "    nam",
		6:  "    wi",
		12: "    sha",
		33: "    wi",
		34: "    ar",
	})
	o := complete.New(snap, nil, javacomplete.DefaultCompletionConfig())
	ctx := context.Background()

	r := o.Complete(ctx, queryAtEnd(snap, canvasPath, 5))
	require.GreaterOrEqual(t, len(r.Items), 2)
	assert.Equal(t, []string{"names", "name"}, labels(r)[:2])
	assert.Equal(t, model.ItemVariable, r.Items[0].Kind)
	assert.Equal(t, "java.util.List<java.lang.String>", r.Items[0].Detail)
	assert.Equal(t, model.ItemField, r.Items[1].Kind)

	r = o.Complete(ctx, queryAtEnd(snap, canvasPath, 6))
	assert.Contains(t, labels(r), "width")

	// Inside the generic block the local and its type variable are visible.
	r = o.Complete(ctx, queryAtEnd(snap, canvasPath, 12))
	shape := itemByLabel(t, r, "shape")
	assert.Equal(t, model.ItemVariable, shape.Kind)

	// The static block cannot reach instance members.
	r = o.Complete(ctx, queryAtEnd(snap, canvasPath, 33))
	assert.NotContains(t, labels(r), "width")
	assert.Contains(t, labels(r), "while")

	r = o.Complete(ctx, queryAtEnd(snap, canvasPath, 34))
	assert.Equal(t, "args", r.Items[0].Label)
	assert.NotContains(t, labels(r), "area")
}

func TestComplete_StaticImports(t *testing.T) {
	t.Parallel()

	snap := canvasSnapshot(t, map[int]string{
		5: "    ma",
		6: "    parse",
	})
	o := complete.New(snap, nil, javacomplete.DefaultCompletionConfig())
	ctx := context.Background()

	// Math.max and Integer.max collapse into one item; the two
	// max(int, int) overloads share a signature and appear once.
	r := o.Complete(ctx, queryAtEnd(snap, canvasPath, 5))
	maxItem := itemByLabel(t, r, "max")
	assert.Equal(t, model.ItemMethod, maxItem.Kind)
	assert.Len(t, maxItem.Overloads, 3)

	r = o.Complete(ctx, queryAtEnd(snap, canvasPath, 6))
	parse := itemByLabel(t, r, "parseInt")
	assert.Equal(t, "parseInt(", parse.InsertText)
	assert.Len(t, parse.Overloads, 2)
}

func TestComplete_ClassNames(t *testing.T) {
	t.Parallel()

	snap := canvasSnapshot(t, map[int]string{
		5: "    Ci",
		6: "    ci",
		7: "    Int",
	})
	ctx := context.Background()

	o := complete.New(snap, nil, javacomplete.DefaultCompletionConfig())

	r := o.Complete(ctx, queryAtEnd(snap, canvasPath, 5))
	circle := itemByLabel(t, r, "Circle")
	assert.Equal(t, model.ItemClass, circle.Kind)
	assert.Equal(t, "com.example.shapes.Circle", circle.Detail)
	assert.Equal(t, match.Prefix, circle.MatchLevel)

	// Lower-case prefixes skip class names by default.
	r = o.Complete(ctx, queryAtEnd(snap, canvasPath, 6))
	assert.NotContains(t, labels(r), "Circle")

	// Package-private types of other packages are not offered.
	r = o.Complete(ctx, queryAtEnd(snap, canvasPath, 7))
	assert.Contains(t, labels(r), "Integer")
	assert.NotContains(t, labels(r), "Internal")

	cfg := javacomplete.DefaultCompletionConfig()
	cfg.MatchAllLowerCase = true
	lower := complete.New(snap, nil, cfg)

	r = lower.Complete(ctx, queryAtEnd(snap, canvasPath, 6))
	assert.Equal(t, match.CaseInsensitivePrefix, itemByLabel(t, r, "Circle").MatchLevel)

	// Without a ceiling the class-name source never runs.
	cfg = javacomplete.DefaultCompletionConfig()
	cfg.TrimToMax = false
	untrimmed := complete.New(snap, nil, cfg)

	r = untrimmed.Complete(ctx, queryAtEnd(snap, canvasPath, 5))
	assert.NotContains(t, labels(r), "Circle")
}

func TestComplete_Trimmed(t *testing.T) {
	t.Parallel()

	snap := canvasSnapshot(t, map[int]string{5: "    "})

	cfg := javacomplete.DefaultCompletionConfig()
	cfg.MaxItems = 5

	o := complete.New(snap, nil, cfg)
	r := o.Complete(context.Background(), queryAtEnd(snap, canvasPath, 5))

	assert.Len(t, r.Items, 5)
	assert.True(t, r.Trimmed)

	for i := 1; i < len(r.Items); i++ {
		assert.GreaterOrEqual(t, r.Items[i-1].SortPriority, r.Items[i].SortPriority)
	}
}

type brokenOracle struct {
	complete.Oracle

	err error
}

func (b brokenOracle) PathAt(context.Context, string, model.Position) (model.Node, error) {
	if b.err != nil {
		return nil, b.err
	}

	panic("oracle exploded")
}

func TestComplete_FailureLoggedOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		oracle complete.Oracle
	}{
		{name: "error", oracle: brokenOracle{err: errors.New("index corrupt")}},
		{name: "panic", oracle: brokenOracle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o, logs := newObserved(tt.oracle, javacomplete.DefaultCompletionConfig())
			r := o.Complete(context.Background(), complete.Query{File: "F.java"})

			assert.True(t, r.IsEmpty())

			failures := logs.FilterLevelExact(zapcore.ErrorLevel)
			require.Equal(t, 1, failures.Len())
			assert.Equal(t, "Unable to compute completions", failures.All()[0].Message)
		})
	}
}

func TestComplete_UnknownDocument(t *testing.T) {
	t.Parallel()

	o, logs := newObserved(oracle.NewSnapshot(nil), javacomplete.DefaultCompletionConfig())
	r := o.Complete(context.Background(), complete.Query{File: "Missing.java"})

	assert.True(t, r.IsEmpty())
	assert.Equal(t, 1, logs.FilterMessage("Unable to compute completions").Len())
}

// assertCancellationUnlogged fails if any entry, at any level, reports a
// cancelled query.
func assertCancellationUnlogged(t *testing.T, logs *observer.ObservedLogs) {
	t.Helper()

	for _, entry := range logs.All() {
		assert.Less(t, entry.Level, zapcore.WarnLevel, entry.Message)
		assert.NotContains(t, strings.ToLower(entry.Message), "cancel")

		for _, field := range entry.Context {
			if err, ok := field.Interface.(error); ok {
				assert.NotErrorIs(t, err, context.Canceled, entry.Message)
			}
		}
	}
}

func TestComplete_Cancelled(t *testing.T) {
	t.Parallel()

	snap := canvasSnapshot(t, map[int]string{5: "    names."})
	o, logs := newObserved(snap, javacomplete.DefaultCompletionConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := o.Complete(ctx, queryAtEnd(snap, canvasPath, 5))

	assert.Same(t, model.Empty, r)
	assertCancellationUnlogged(t, logs)

	canceled := complete.Query{File: "F.java"}
	o, logs = newObserved(brokenOracle{err: errors.Wrap(context.Canceled, "lookup")}, javacomplete.DefaultCompletionConfig())
	r = o.Complete(context.Background(), canceled)

	assert.Same(t, model.Empty, r)
	assert.Zero(t, logs.Len())
}

// cancellingSnapshot cancels the query from inside member enumeration.
type cancellingSnapshot struct {
	*oracle.Snapshot

	cancel context.CancelFunc
	checks int
}

func (c *cancellingSnapshot) IsAccessible(scope *model.Scope, member *model.Member, site *model.DeclaredType) bool {
	c.checks++
	if c.checks == 3 {
		c.cancel()
	}

	return c.Snapshot.IsAccessible(scope, member, site)
}

func TestComplete_CancelledDuringEnumeration(t *testing.T) {
	t.Parallel()

	snap := canvasSnapshot(t, map[int]string{5: "    names."})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelling := &cancellingSnapshot{Snapshot: snap, cancel: cancel}
	o, logs := newObserved(cancelling, javacomplete.DefaultCompletionConfig())

	r := o.Complete(ctx, queryAtEnd(snap, canvasPath, 5))

	assert.Same(t, model.Empty, r)
	assert.Empty(t, r.Items)
	assert.GreaterOrEqual(t, cancelling.checks, 3)
	assertCancellationUnlogged(t, logs)
}

func TestComplete_ArrayMemberSelect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want []string
	}{
		{"    grid.", []string{"length", "clone"}},
		{"    grid.le", []string{"length"}},
		{"    grid.zzzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			snap := canvasSnapshot(t, map[int]string{5: tt.line})
			o := complete.New(snap, nil, javacomplete.DefaultCompletionConfig())

			r := o.Complete(context.Background(), queryAtEnd(snap, canvasPath, 5))
			require.NotSame(t, model.Empty, r)
			assert.Equal(t, tt.want, labels(r))
		})
	}
}

func TestComplete_PrefixPredicateDoesNotFilter(t *testing.T) {
	t.Parallel()

	snap := canvasSnapshot(t, map[int]string{5: "    names.is"})
	o := complete.New(snap, nil, javacomplete.DefaultCompletionConfig())
	text, _ := snap.Document(canvasPath)
	pos := model.Position{Line: 5, Column: len("    names.is")}

	dotted := complete.NewQuery(canvasPath, text, pos, nil)
	ident := complete.NewQuery(canvasPath, text, pos, javacomplete.IsIdentifierPart)
	require.Equal(t, "names.is", dotted.Prefix)
	require.Equal(t, "is", ident.Prefix)

	ctx := context.Background()
	assert.Equal(t, labels(o.Complete(ctx, dotted)), labels(o.Complete(ctx, ident)))
	assert.Contains(t, labels(o.Complete(ctx, ident)), "isEmpty")
}

func TestComplete_ZeroItemsIsNotEmpty(t *testing.T) {
	t.Parallel()

	snap := canvasSnapshot(t, map[int]string{5: "    names.zzzz"})
	o := complete.New(snap, nil, javacomplete.DefaultCompletionConfig())

	r := o.Complete(context.Background(), queryAtEnd(snap, canvasPath, 5))
	assert.False(t, r.IsEmpty())
	assert.Empty(t, r.Items)
}
