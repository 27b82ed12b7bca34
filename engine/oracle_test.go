package engine_test

import (
	"context"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/model"
)

// fakeOracle answers from fixed maps keyed by operand text.
type fakeOracle struct {
	types    map[string]model.Type
	elements map[string]model.Element
	members  map[*model.TypeElement][]*model.Member
	scope    *model.Scope
	calls    int
}

func (f *fakeOracle) ResolveType(_ context.Context, node model.Node) (model.Type, error) {
	return f.types[operandText(node)], nil
}

func (f *fakeOracle) Scope(context.Context, model.Node) (*model.Scope, error) {
	return f.scope, nil
}

func (f *fakeOracle) IsAccessible(scope *model.Scope, member *model.Member, _ *model.DeclaredType) bool {
	if member.Modifiers.Has(model.Private) {
		return scope != nil && scope.Enclosing == member.Declaring
	}

	return true
}

func (f *fakeOracle) AllMembers(_ context.Context, elem *model.TypeElement) ([]*model.Member, error) {
	f.calls++

	return f.members[elem], nil
}

func (f *fakeOracle) Element(_ context.Context, node model.Node) (model.Element, error) {
	return f.elements[operandText(node)], nil
}

func operandText(node model.Node) string {
	if op, ok := node.(*model.Operand); ok {
		return op.Text()
	}

	return ""
}

func operand(text string) *model.Operand {
	expr, err := javacomplete.ParseType(text)
	if err != nil {
		panic(err)
	}

	return &model.Operand{Syntax: expr}
}

// fixture is a small slice of java.util with an overloaded add.
type fixture struct {
	oracle *fakeOracle
	object *model.TypeElement
	list   *model.TypeElement
	str    *model.TypeElement
	main   *model.TypeElement
}

func newFixture() *fixture {
	object := &model.TypeElement{QualifiedName: "java.lang.Object", Modifiers: model.Public}
	str := &model.TypeElement{QualifiedName: "java.lang.String", Modifiers: model.Public | model.Final}
	e := &model.TypeVariable{Name: "E"}
	list := &model.TypeElement{
		QualifiedName: "java.util.List",
		Kind:          model.Interface,
		Modifiers:     model.Public,
		TypeParams:    []*model.TypeVariable{e},
	}
	main := &model.TypeElement{QualifiedName: "com.example.Main", Modifiers: model.Public}

	intType := &model.OtherType{Name: "int"}
	boolType := &model.OtherType{Name: "boolean"}
	objType := &model.DeclaredType{Element: object}

	method := func(decl *model.TypeElement, name string, mods model.Modifier, ret model.Type, params ...model.Type) *model.Member {
		return &model.Member{
			Name:      name,
			Kind:      model.Method,
			Declaring: decl,
			Modifiers: mods,
			Signature: &model.Signature{Params: params, Return: ret},
		}
	}

	objectMembers := []*model.Member{
		method(object, "toString", model.Public, &model.DeclaredType{Element: str}),
		method(object, "hashCode", model.Public, intType),
		method(object, "equals", model.Public, boolType, objType),
		method(object, "getClass", model.Public|model.Final, &model.OtherType{Name: "Class<?>"}),
	}

	listMembers := append([]*model.Member{
		method(list, "size", model.Public|model.Abstract, intType),
		method(list, "isEmpty", model.Public|model.Abstract, boolType),
		method(list, "add", model.Public|model.Abstract, boolType, e),
		method(list, "add", model.Public|model.Abstract, &model.OtherType{Name: "void"}, intType, e),
		method(list, "get", model.Public|model.Abstract, e, intType),
		method(list, "of", model.Public|model.Static, list.AsType()),
		method(list, "rangeCheck", model.Private, &model.OtherType{Name: "void"}, intType),
		{Name: "EMPTY_MARKER", Kind: model.Field, Declaring: list, Modifiers: model.Public | model.Static | model.Final, Type: intType},
		{Name: "List", Kind: model.Constructor, Declaring: list, Modifiers: model.Public, Signature: &model.Signature{}},
	}, objectMembers...)

	listOfString := &model.DeclaredType{Element: list, Args: []model.Type{&model.DeclaredType{Element: str}}}
	bounded := &model.TypeVariable{Name: "T", Upper: listOfString}
	chained := &model.TypeVariable{Name: "U", Upper: bounded}

	oracle := &fakeOracle{
		types: map[string]model.Type{
			"List<String>": listOfString,
			"names":        listOfString,
			"int[]":        &model.ArrayType{Elem: intType},
			"arr":          &model.ArrayType{Elem: intType},
			"t":            bounded,
			"u":            chained,
			"n":            intType,
		},
		elements: map[string]model.Element{
			"List<String>": list,
			"int[]":        &model.TypeElement{QualifiedName: "int[]"},
			"names":        &model.Variable{Name: "names", Type: listOfString},
			"arr":          &model.Variable{Name: "arr"},
			"t":            &model.Variable{Name: "t", Type: bounded},
			"u":            &model.Variable{Name: "u", Type: chained},
		},
		members: map[*model.TypeElement][]*model.Member{
			list:   listMembers,
			object: objectMembers,
		},
		scope: &model.Scope{Package: "com.example", Enclosing: main},
	}

	return &fixture{oracle: oracle, object: object, list: list, str: str, main: main}
}

// cancellingOracle cancels the query once it has answered a number of
// accessibility checks.
type cancellingOracle struct {
	*fakeOracle

	cancel context.CancelFunc
	after  int
	checks int
}

func (c *cancellingOracle) IsAccessible(scope *model.Scope, member *model.Member, site *model.DeclaredType) bool {
	c.checks++
	if c.checks == c.after {
		c.cancel()
	}

	return c.fakeOracle.IsAccessible(scope, member, site)
}
