package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rlch/javacomplete/model"
)

func fixture() (list, str *model.TypeElement, e *model.TypeVariable) {
	str = &model.TypeElement{QualifiedName: "java.lang.String", Kind: model.Class}
	e = &model.TypeVariable{Name: "E"}
	list = &model.TypeElement{
		QualifiedName: "java.util.List",
		Kind:          model.Interface,
		TypeParams:    []*model.TypeVariable{e},
	}

	return list, str, e
}

func TestMember_KeyAndDetail(t *testing.T) {
	t.Parallel()

	list, str, e := fixture()
	listOfE := &model.DeclaredType{Element: list, Args: []model.Type{e}}
	intType := &model.OtherType{Name: "int"}

	add := &model.Member{
		Name:      "add",
		Kind:      model.Method,
		Declaring: list,
		Modifiers: model.Public | model.Abstract,
		Signature: &model.Signature{
			Params: []model.Type{intType, e},
			Return: &model.OtherType{Name: "void"},
		},
	}
	addAll := &model.Member{
		Name:      "addAll",
		Kind:      model.Method,
		Declaring: list,
		Signature: &model.Signature{
			Params: []model.Type{listOfE},
			Return: &model.OtherType{Name: "boolean"},
		},
	}
	field := &model.Member{
		Name:      "CASE_INSENSITIVE_ORDER",
		Kind:      model.Field,
		Declaring: str,
		Modifiers: model.Public | model.Static | model.Final,
		Type:      &model.ArrayType{Elem: str.AsType()},
	}

	assert.Equal(t, "method:add(int,java.lang.Object)", add.Key())
	assert.Equal(t, "void add(int, E)", add.Detail())
	assert.Equal(t, "method:addAll(java.util.List)", addAll.Key())
	assert.Equal(t, "boolean addAll(List<E>)", addAll.Detail())
	assert.Equal(t, "field:CASE_INSENSITIVE_ORDER", field.Key())
	assert.Equal(t, "String[] CASE_INSENSITIVE_ORDER", field.Detail())
	assert.True(t, field.IsStatic())
	assert.False(t, add.IsStatic())
}

func TestErasure(t *testing.T) {
	t.Parallel()

	list, str, _ := fixture()

	bounded := &model.TypeVariable{Name: "T", Upper: str.AsType()}
	loop := &model.TypeVariable{Name: "L"}
	loop.Upper = loop

	tests := []struct {
		name string
		t    model.Type
		want string
	}{
		{"nil", nil, "java.lang.Object"},
		{"declared", &model.DeclaredType{Element: list, Args: []model.Type{str.AsType()}}, "java.util.List"},
		{"array", &model.ArrayType{Elem: bounded}, "java.lang.String[]"},
		{"unbounded", &model.TypeVariable{Name: "U"}, "java.lang.Object"},
		{"cyclic bound", loop, "java.lang.Object"},
		{"primitive", &model.OtherType{Name: "long"}, "long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, model.Erasure(tt.t))
		})
	}
}

func TestTypeStrings(t *testing.T) {
	t.Parallel()

	list, str, _ := fixture()
	listOfStrings := &model.DeclaredType{Element: list, Args: []model.Type{str.AsType()}}

	assert.Equal(t, "java.util.List<java.lang.String>", listOfStrings.String())
	assert.Equal(t, "List<String>", model.SimpleString(listOfStrings))
	assert.Equal(t, "List<String>[]", model.SimpleString(&model.ArrayType{Elem: listOfStrings}))
	assert.Equal(t, "<unknown>", (&model.DeclaredType{}).String())
}

func TestTypeElement_Names(t *testing.T) {
	t.Parallel()

	outer := &model.TypeElement{QualifiedName: "com.example.Shape"}
	inner := &model.TypeElement{QualifiedName: "com.example.Shape.Point", Enclosing: outer}

	assert.Equal(t, "Point", inner.SimpleName())
	assert.Equal(t, "com.example", inner.Package())
	assert.Same(t, outer, inner.Outermost())
	assert.Equal(t, model.ItemClass, model.ItemKindForType(inner))
}

func TestModifier(t *testing.T) {
	t.Parallel()

	m := model.Public | model.Static | model.Final
	assert.Equal(t, "public static final", m.String())
	assert.True(t, m.Has(model.Public|model.Static))
	assert.False(t, m.Has(model.Private))

	got, ok := model.ParseModifier("protected")
	assert.True(t, ok)
	assert.Equal(t, model.Protected, got)

	_, ok = model.ParseModifier("pubic")
	assert.False(t, ok)
}

func TestResult_EmptyIsIdentity(t *testing.T) {
	t.Parallel()

	assert.True(t, model.Empty.IsEmpty())

	r := model.NewResult(nil)
	assert.False(t, r.IsEmpty())
	assert.NotNil(t, r.Items)
	assert.Empty(t, r.Items)
}
