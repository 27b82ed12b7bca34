package oracle_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/model"
	"github.com/rlch/javacomplete/oracle"
)

func operandAt(t *testing.T, file string, line int, text string) *model.Operand {
	t.Helper()

	expr, err := javacomplete.ParseType(text)
	require.NoError(t, err)

	return &model.Operand{
		Span:   model.Span{File: file, Pos: model.Position{Line: line}},
		Syntax: expr,
	}
}

func TestSnapshot_ResolveType(t *testing.T) {
	t.Parallel()

	snap := oracle.NewSnapshot(loadShapes(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		line    int
		operand string
		want    string
		element any
	}{
		{"local", 0, "names", "java.util.List<java.lang.String>", &model.Variable{}},
		{"type with arguments", 0, "List<String>", "java.util.List<java.lang.String>", &model.TypeElement{}},
		{"raw type", 0, "Shape", "com.example.shapes.Shape", &model.TypeElement{}},
		{"qualified type", 0, "java.util.ArrayList", "java.util.ArrayList", &model.TypeElement{}},
		{"member type", 0, "Map.Entry<String, Integer>", "java.util.Map.Entry<java.lang.String, java.lang.Integer>", &model.TypeElement{}},
		{"inherited member type", 0, "Circle.Point", "com.example.shapes.Shape.Point", &model.TypeElement{}},
		{"substituted field", 0, "box.item", "com.example.shapes.Circle", &model.Member{}},
		{"substituted generic field", 0, "box.items", "java.util.List<com.example.shapes.Circle>", &model.Member{}},
		{"static field", 0, "Shape.ORIGIN", "com.example.shapes.Shape.Point", &model.Member{}},
		{"field chain", 0, "Shape.ORIGIN.x", "int", &model.Member{}},
		{"java.lang static field", 0, "System.out", "java.io.PrintStream", &model.Member{}},
		{"nested array", 0, "grid", "int[][]", &model.Variable{}},
		{"array length", 0, "grid.length", "int", &model.Member{}},
		{"array type", 0, "int[]", "int[]", &model.TypeElement{}},
		{"this", 0, "this", "com.example.app.Canvas", &model.Variable{}},
		{"own private field", 0, "width", "int", &model.Member{}},
		{"inherited field", 0, "sides", "int", &model.Member{}},
		{"statically imported field", 0, "PI", "double", &model.Member{}},
		{"scoped type variable", 14, "shape", "S", &model.Variable{}},
		{"scoped local", 14, "counter", "int", &model.Variable{}},
		{"out of scope local", 0, "counter", "counter", nil},
		{"unknown name", 0, "Nope", "Nope", nil},
		{"unknown field", 0, "names.nope", "nope", nil},
		{"private field of another class", 0, "box.item.radius", "radius", nil},
		{"this in static scope", 34, "this", "this", nil},
		{"instance field in static scope", 34, "width", "width", nil},
		{"static scope local", 34, "args", "java.lang.String[]", &model.Variable{}},
		{"primitive", 0, "int", "int", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			op := operandAt(t, canvasPath, tt.line, tt.operand)

			typ, err := snap.ResolveType(ctx, op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, typ.String())

			el, err := snap.Element(ctx, op)
			require.NoError(t, err)

			if tt.element == nil {
				assert.Nil(t, el)
			} else {
				assert.IsType(t, tt.element, el)
			}
		})
	}
}

func TestSnapshot_TypeVariableBound(t *testing.T) {
	t.Parallel()

	snap := oracle.NewSnapshot(loadShapes(t))

	typ, err := snap.ResolveType(context.Background(), operandAt(t, canvasPath, 14, "shape"))
	require.NoError(t, err)

	tv, ok := typ.(*model.TypeVariable)
	require.True(t, ok)
	assert.Equal(t, "com.example.shapes.Circle", tv.Upper.String())
}

func TestSnapshot_Scope(t *testing.T) {
	t.Parallel()

	m := loadShapes(t)
	snap := oracle.NewSnapshot(m)
	ctx := context.Background()

	scope, err := snap.Scope(ctx, &model.Identifier{Span: model.Span{File: "/work/" + canvasPath}})
	require.NoError(t, err)
	assert.Equal(t, "com.example.app", scope.Package)
	assert.Same(t, m.Type("com.example.app.Canvas"), scope.Enclosing)
	assert.False(t, scope.Static)
	assert.Len(t, scope.Locals, 4)

	scope, err = snap.Scope(ctx, &model.Identifier{Span: model.Span{File: canvasPath, Pos: model.Position{Line: 14}}})
	require.NoError(t, err)
	assert.Len(t, scope.Locals, 6)
	require.Len(t, scope.TypeVars, 1)
	assert.Equal(t, "S", scope.TypeVars[0].Name)

	scope, err = snap.Scope(ctx, &model.Identifier{Span: model.Span{File: canvasPath, Pos: model.Position{Line: 34}}})
	require.NoError(t, err)
	assert.True(t, scope.Static)
}

func TestSnapshot_ScopeFromHeader(t *testing.T) {
	t.Parallel()

	const path = "Other.java"

	snap := oracle.NewSnapshot(loadShapes(t)).WithDocument(path, `package com.example.shapes;

import java.util.*;
import static java.lang.Math.*;

class Other {}
`)
	ctx := context.Background()

	scope, err := snap.Scope(ctx, &model.Identifier{Span: model.Span{File: path}})
	require.NoError(t, err)
	assert.Equal(t, "com.example.shapes", scope.Package)

	typ, err := snap.ResolveType(ctx, operandAt(t, path, 0, "ArrayList<Circle>"))
	require.NoError(t, err)
	assert.Equal(t, "java.util.ArrayList<com.example.shapes.Circle>", typ.String())

	imported, err := snap.StaticImportMembers(ctx, path)
	require.NoError(t, err)
	assert.Contains(t, memberNames(imported), "abs")
	assert.Contains(t, memberNames(imported), "PI")
}

func TestSnapshot_AllMembers(t *testing.T) {
	t.Parallel()

	m := loadShapes(t)
	snap := oracle.NewSnapshot(m)
	ctx := context.Background()

	t.Run("class", func(t *testing.T) {
		t.Parallel()

		members, err := snap.AllMembers(ctx, m.Type("com.example.shapes.Circle"))
		require.NoError(t, err)

		area := findMembers(members, "area")
		require.Len(t, area, 1)
		assert.Equal(t, "com.example.shapes.Circle", area[0].Declaring.QualifiedName)

		assert.Len(t, findMembers(members, "describe"), 2)
		assert.Len(t, findMembers(members, "Point"), 1)
		assert.Len(t, findMembers(members, "toString"), 1)
		assert.Len(t, findMembers(members, "radius"), 1, "own private members are included")
		assert.Empty(t, findMembers(members, "secret"), "private members are not inherited")
		assert.Empty(t, findMembers(members, "Shape"), "constructors are not inherited")
		assert.Empty(t, findMembers(members, "Object"))
		assert.Len(t, findMembers(members, "Circle"), 1)
	})

	t.Run("generic class over interfaces", func(t *testing.T) {
		t.Parallel()

		members, err := snap.AllMembers(ctx, m.Type("java.util.ArrayList"))
		require.NoError(t, err)

		size := findMembers(members, "size")
		require.Len(t, size, 2)
		kinds := []model.MemberKind{size[0].Kind, size[1].Kind}
		assert.ElementsMatch(t, []model.MemberKind{model.Field, model.Method}, kinds)

		add := findMembers(members, "add")
		require.Len(t, add, 2)

		for _, a := range add {
			if len(a.Signature.Params) == 1 {
				assert.Equal(t, "java.util.ArrayList", a.Declaring.QualifiedName)
			}
		}

		assert.Empty(t, findMembers(members, "of"), "static interface methods are not inherited")
		assert.Len(t, findMembers(members, "iterator"), 1)
		assert.Len(t, findMembers(members, "forEach"), 1)
	})

	t.Run("interface", func(t *testing.T) {
		t.Parallel()

		members, err := snap.AllMembers(ctx, m.Type("java.util.List"))
		require.NoError(t, err)

		assert.Len(t, findMembers(members, "of"), 3, "own static methods are members")
		assert.Len(t, findMembers(members, "add"), 2)
		assert.Len(t, findMembers(members, "size"), 1)
		assert.Len(t, findMembers(members, "hashCode"), 1)
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := snap.AllMembers(cctx, m.Type("java.util.ArrayList"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSnapshot_AllMembers_Cycle(t *testing.T) {
	t.Parallel()

	m, err := oracle.ParseModel([]byte(`
types:
  - {name: a.A, superclass: a.B, members: [{name: fromA}]}
  - {name: a.B, superclass: a.A, members: [{name: fromB}]}
`))
	require.NoError(t, err)

	members, err := oracle.NewSnapshot(m).AllMembers(context.Background(), m.Type("a.A"))
	require.NoError(t, err)
	assert.Equal(t, []string{"fromA", "fromB"}, memberNames(members))
}

func TestSnapshot_IsAccessible(t *testing.T) {
	t.Parallel()

	m := loadShapes(t)
	snap := oracle.NewSnapshot(m)

	shape := m.Type("com.example.shapes.Shape")
	canvas := m.Type("com.example.app.Canvas")
	circle := m.Type("com.example.shapes.Circle")
	point := m.Type("com.example.shapes.Shape.Point")

	member := func(name string) *model.Member {
		found := findMembers(shape.Members, name)
		require.Len(t, found, 1, name)

		return found[0]
	}

	fromApp := &model.Scope{Package: "com.example.app", Enclosing: canvas}
	fromShapes := &model.Scope{Package: "com.example.shapes", Enclosing: circle}
	fromPoint := &model.Scope{Package: "com.example.shapes", Enclosing: point}

	tests := []struct {
		name   string
		scope  *model.Scope
		member string
		site   *model.DeclaredType
		want   bool
	}{
		{"public", fromApp, "sides", nil, true},
		{"protected through subclass", fromApp, "name", canvas.AsType(), true},
		{"protected through superclass", fromApp, "name", shape.AsType(), false},
		{"protected method through subclass", fromApp, "validate", canvas.AsType(), true},
		{"package-private from other package", fromApp, "count", nil, false},
		{"package-private from same package", fromShapes, "count", nil, true},
		{"protected from same package", fromShapes, "name", shape.AsType(), true},
		{"private from other type", fromShapes, "secret", nil, false},
		{"private from nested type", fromPoint, "secret", nil, true},
		{"private from nowhere", nil, "secret", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, snap.IsAccessible(tt.scope, member(tt.member), tt.site))
		})
	}

	internal := m.Type("com.example.shapes.Internal")
	assert.False(t, snap.IsTypeAccessible(fromApp, internal))
	assert.True(t, snap.IsTypeAccessible(fromShapes, internal))
	assert.True(t, snap.IsTypeAccessible(fromApp, point))
}

func TestSnapshot_ScopeMembers(t *testing.T) {
	t.Parallel()

	snap := oracle.NewSnapshot(loadShapes(t))
	ctx := context.Background()

	instance, err := snap.Scope(ctx, &model.Identifier{Span: model.Span{File: canvasPath}})
	require.NoError(t, err)

	members, err := snap.ScopeMembers(ctx, instance)
	require.NoError(t, err)

	names := memberNames(members)
	for _, want := range []string{"width", "render", "main", "area", "getRadius", "describe", "sides", "name", "validate", "ORIGIN", "Point"} {
		assert.Contains(t, names, want)
	}

	for _, absent := range []string{"radius", "secret", "count", "Canvas"} {
		assert.NotContains(t, names, absent)
	}

	static, err := snap.Scope(ctx, &model.Identifier{Span: model.Span{File: canvasPath, Pos: model.Position{Line: 34}}})
	require.NoError(t, err)

	members, err = snap.ScopeMembers(ctx, static)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main", "ORIGIN", "registry", "Point"}, memberNames(members))
}

func TestSnapshot_StaticImportMembers(t *testing.T) {
	t.Parallel()

	snap := oracle.NewSnapshot(loadShapes(t))

	members, err := snap.StaticImportMembers(context.Background(), canvasPath)
	require.NoError(t, err)

	names := memberNames(members)
	assert.Len(t, findMembers(members, "max"), 3+1)
	assert.Contains(t, names, "PI")
	assert.Contains(t, names, "MAX_VALUE")
	assert.Contains(t, names, "parseInt")
	assert.NotContains(t, names, "abs")
	assert.NotContains(t, names, "intValue")
	assert.NotContains(t, names, "Integer")
}

func TestSnapshot_PathAt(t *testing.T) {
	t.Parallel()

	const doc = "class Canvas {\n" +
		"  void f() {\n" +
		"    names.forEach(System.out::pri\n" +
		"    Shape.ORIGIN.\n" +
		"    var x = fo\n" +
		"    go(\n" +
		"    Map<String, List<Integer>>::\n" +
		"  }\n"

	snap := oracle.NewSnapshot(loadShapes(t)).WithDocument(canvasPath, doc)
	ctx := context.Background()

	at := func(line int, col int) model.Node {
		node, err := snap.PathAt(ctx, canvasPath, model.Position{Line: line, Column: col})
		require.NoError(t, err)

		return node
	}

	ref, ok := at(2, 33).(*model.MemberReference)
	require.True(t, ok)
	assert.Equal(t, "System.out", ref.Qualifier.Text())
	assert.Equal(t, "pri", ref.Name)
	assert.Equal(t, canvasPath, ref.Location().File)
	assert.Equal(t, 2, ref.Location().Pos.Line)

	sel, ok := at(3, 17).(*model.MemberSelect)
	require.True(t, ok)
	assert.Equal(t, "Shape.ORIGIN", sel.Qualifier.Text())
	assert.Empty(t, sel.Name)

	id, ok := at(4, 14).(*model.Identifier)
	require.True(t, ok)
	assert.Equal(t, "fo", id.Name)

	id, ok = at(5, 7).(*model.Identifier)
	require.True(t, ok)
	assert.Empty(t, id.Name)

	ref, ok = at(6, 32).(*model.MemberReference)
	require.True(t, ok)
	assert.Equal(t, "Map<String, List<Integer>>", ref.Qualifier.Text())

	_, err := snap.PathAt(ctx, "Unknown.java", model.Position{})
	assert.True(t, errors.Is(err, oracle.ErrUnknownFile))
}

func TestSnapshot_WithDocument(t *testing.T) {
	t.Parallel()

	base := oracle.NewSnapshot(nil)
	next := base.WithDocument("A.java", "class A {}")

	_, ok := base.Document("A.java")
	assert.False(t, ok)

	text, ok := next.Document("A.java")
	assert.True(t, ok)
	assert.Equal(t, "class A {}", text)

	closed := next.WithoutDocument("A.java")
	_, ok = closed.Document("A.java")
	assert.False(t, ok)

	_, ok = next.Document("A.java")
	assert.True(t, ok)

	assert.Same(t, oracle.Builtin(), base.Model())
}
