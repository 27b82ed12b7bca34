package oracle

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/rlch/javacomplete/model"
)

//go:embed jdk.yaml
var jdkYAML []byte

const objectName = "java.lang.Object"

// Model is an immutable set of type declarations and per-file contexts.
// It is safe for concurrent use.
type Model struct {
	types  map[string]*model.TypeElement
	order  []*model.TypeElement
	files  []*fileInfo
	object *model.TypeElement
}

// ValidationError lists every problem found while building a model.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.Error()
	}

	return strings.Join(lines, "\n")
}

var jdkDoc = sync.OnceValues(func() (*modelDoc, error) {
	var doc modelDoc

	err := yaml.Unmarshal(jdkYAML, &doc)
	if err != nil {
		return nil, errors.Wrap(err, "decode embedded jdk model")
	}

	return &doc, nil
})

var builtin = sync.OnceValue(func() *Model {
	doc, err := jdkDoc()
	if err != nil {
		panic(err)
	}

	m, err := build([]*modelDoc{doc})
	if err != nil {
		panic(err)
	}

	return m
})

// Builtin returns the embedded JDK subset model.
func Builtin() *Model {
	return builtin()
}

// LoadModelFile reads and builds the model at path.
func LoadModelFile(path string) (*Model, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "read type model")
	}

	m, err := ParseModel(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load type model %s", path)
	}

	return m, nil
}

// LoadModel reads a YAML type model from r.
func LoadModel(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read type model")
	}

	return ParseModel(data)
}

// ParseModel builds a model from YAML. The embedded JDK subset is included
// unless the document sets "jdk: false".
func ParseModel(data []byte) (*Model, error) {
	var doc modelDoc

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode type model")
	}

	docs := make([]*modelDoc, 0, 2)

	if doc.JDK == nil || *doc.JDK {
		jdk, err := jdkDoc()
		if err != nil {
			return nil, err
		}

		docs = append(docs, jdk)
	}

	return build(append(docs, &doc))
}

// Type returns the type with the given qualified name, or nil.
func (m *Model) Type(name string) *model.TypeElement {
	return m.types[name]
}

// Types returns every type ordered by qualified name.
func (m *Model) Types() []*model.TypeElement {
	return m.order
}

// Files returns the paths of the files the model describes.
func (m *Model) Files() []string {
	paths := make([]string, len(m.files))
	for i, f := range m.files {
		paths[i] = f.path
	}

	return paths
}

// fileFor returns the file whose path equals path or is its longest
// slash-separated suffix.
func (m *Model) fileFor(path string) *fileInfo {
	path = filepath.ToSlash(path)

	var best *fileInfo

	for _, f := range m.files {
		switch {
		case f.path == path:
			return f
		case strings.HasSuffix(path, "/"+f.path):
			if best == nil || len(f.path) > len(best.path) {
				best = f
			}
		}
	}

	return best
}

// pendingType is a registered type whose references are not yet resolved.
type pendingType struct {
	spec *typeSpec
	elem *model.TypeElement
	doc  *modelDoc
}

type builder struct {
	m        *Model
	pending  []pendingType
	problems []error
}

func build(docs []*modelDoc) (*Model, error) {
	b := &builder{m: &Model{types: make(map[string]*model.TypeElement)}}

	for _, doc := range docs {
		for i := range doc.Types {
			b.register(doc, &doc.Types[i], nil)
		}
	}

	b.m.object = b.m.types[objectName]

	for _, p := range b.pending {
		b.link(p)
	}

	for _, doc := range docs {
		for i := range doc.Files {
			b.addFile(doc, &doc.Files[i])
		}
	}

	if len(b.problems) > 0 {
		return nil, errors.Mark(&ValidationError{Problems: b.problems}, ErrInvalidModel)
	}

	b.m.order = make([]*model.TypeElement, 0, len(b.m.types))
	for _, t := range b.m.types {
		b.m.order = append(b.m.order, t)
	}

	slices.SortFunc(b.m.order, func(a, b *model.TypeElement) int {
		return strings.Compare(a.QualifiedName, b.QualifiedName)
	})

	return b.m, nil
}

func (b *builder) problemf(format string, args ...any) {
	b.problems = append(b.problems, errors.Newf(format, args...))
}

func (b *builder) register(doc *modelDoc, spec *typeSpec, enclosing *model.TypeElement) {
	name := spec.Name
	if enclosing != nil {
		name = enclosing.QualifiedName + "." + spec.Name
	}

	if spec.Name == "" {
		b.problemf("type with no name")

		return
	}

	if _, dup := b.m.types[name]; dup {
		b.problemf("duplicate type %s", name)

		return
	}

	kind, ok := parseTypeKind(spec.Kind)
	if !ok {
		b.problemf("type %s: unknown kind %q", name, spec.Kind)
	}

	mods := b.modifiers(name, spec.Modifiers)
	if enclosing != nil && (enclosing.Kind == model.Interface || kind != model.Class) {
		// Member types of interfaces, and nested enums and interfaces, are
		// implicitly static.
		mods |= model.Static
	}

	if enclosing != nil && enclosing.Kind == model.Interface {
		mods |= model.Public
	}

	elem := &model.TypeElement{
		QualifiedName: name,
		Kind:          kind,
		Modifiers:     mods,
		Enclosing:     enclosing,
	}

	for _, tp := range spec.TypeParams {
		elem.TypeParams = append(elem.TypeParams, &model.TypeVariable{Name: tp.Name})
	}

	b.m.types[name] = elem
	b.pending = append(b.pending, pendingType{spec: spec, elem: elem, doc: doc})

	for i := range spec.Nested {
		nested := &spec.Nested[i]
		b.register(doc, nested, elem)

		if inner := b.m.types[name+"."+nested.Name]; inner != nil {
			elem.Members = append(elem.Members, &model.Member{
				Name:      nested.Name,
				Kind:      model.NestedType,
				Declaring: elem,
				Modifiers: inner.Modifiers,
				Type:      &model.DeclaredType{Element: inner},
			})
		}
	}
}

func (b *builder) link(p pendingType) {
	elem := p.elem
	c := b.typeContext(p.doc, elem)

	b.bindTypeParams(c, elem.QualifiedName, p.spec.TypeParams, elem.TypeParams)

	if p.spec.Superclass != "" {
		if elem.Kind == model.Interface {
			b.problemf("interface %s cannot have a superclass", elem.QualifiedName)
		}

		if st := b.declared(c, elem.QualifiedName, p.spec.Superclass); st != nil {
			elem.Superclass = st
		}
	}

	for _, iface := range p.spec.Interfaces {
		if st := b.declared(c, elem.QualifiedName, iface); st != nil {
			elem.Interfaces = append(elem.Interfaces, st)
		}
	}

	nested := elem.Members
	elem.Members = nil

	for i := range p.spec.Members {
		if m := b.member(c, elem, &p.spec.Members[i]); m != nil {
			elem.Members = append(elem.Members, m)
		}
	}

	if elem.Kind == model.Enum {
		elem.Members = append(elem.Members, enumMembers(b.m, elem)...)
	}

	elem.Members = append(elem.Members, nested...)
}

// typeContext is the resolution context of type expressions inside elem.
func (b *builder) typeContext(doc *modelDoc, elem *model.TypeElement) *typeContext {
	return &typeContext{
		m:         b.m,
		pkg:       elem.Package(),
		imports:   doc.Imports,
		enclosing: elem,
		vars:      visibleTypeParams(elem, false),
	}
}

func (b *builder) bindTypeParams(c *typeContext, owner string, specs []typeParamSpec, vars []*model.TypeVariable) {
	for i, tp := range specs {
		if tp.Bound == "" {
			vars[i].Upper = b.m.objectType()

			continue
		}

		t, err := c.resolveText(tp.Bound)
		if err != nil {
			b.problems = append(b.problems, errors.Wrapf(err, "%s: bound of %s", owner, tp.Name))

			continue
		}

		vars[i].Upper = t
	}
}

func (b *builder) declared(c *typeContext, owner, text string) *model.DeclaredType {
	t, err := c.resolveText(text)
	if err != nil {
		b.problems = append(b.problems, errors.Wrapf(err, "%s: supertype", owner))

		return nil
	}

	dt, ok := t.(*model.DeclaredType)
	if !ok {
		b.problemf("%s: supertype %s is not a class or interface", owner, text)

		return nil
	}

	return dt
}

func (b *builder) member(c *typeContext, elem *model.TypeElement, spec *memberSpec) *model.Member {
	owner := elem.QualifiedName + "." + spec.Name

	kind, ok := parseMemberKind(spec.Kind)
	if !ok {
		b.problemf("%s: unknown member kind %q", owner, spec.Kind)

		return nil
	}

	m := &model.Member{
		Name:      spec.Name,
		Kind:      kind,
		Declaring: elem,
		Modifiers: b.modifiers(owner, spec.Modifiers),
	}

	if kind == model.Constructor {
		m.Name = elem.SimpleName()
	}

	if m.Name == "" {
		b.problemf("%s: member with no name", elem.QualifiedName)

		return nil
	}

	if elem.Kind == model.Interface && kind != model.Constructor {
		m.Modifiers = interfaceModifiers(kind, m.Modifiers)
	}

	switch kind {
	case model.Field:
		m.Type = b.typeOf(c, owner, spec.Type)
	case model.Method, model.Constructor:
		sig := &model.Signature{}
		for _, tp := range spec.TypeParams {
			sig.TypeParams = append(sig.TypeParams, &model.TypeVariable{Name: tp.Name})
		}

		mc := c.withVars(m.IsStatic(), sig.TypeParams)
		b.bindTypeParams(mc, owner, spec.TypeParams, sig.TypeParams)

		for _, p := range spec.Params {
			sig.Params = append(sig.Params, b.typeOf(mc, owner, p))
		}

		if kind == model.Method {
			ret := spec.Returns
			if ret == "" {
				ret = "void"
			}

			sig.Return = b.typeOf(mc, owner, ret)
		}

		m.Signature = sig
	default:
		b.problemf("%s: nested types are declared under nested", owner)

		return nil
	}

	return m
}

func (b *builder) typeOf(c *typeContext, owner, text string) model.Type {
	if text == "" {
		b.problemf("%s: missing type", owner)

		return &model.OtherType{Name: "<missing>"}
	}

	t, err := c.resolveText(text)
	if err != nil {
		b.problems = append(b.problems, errors.Wrapf(err, "%s", owner))

		return &model.OtherType{Name: text}
	}

	return t
}

func (b *builder) modifiers(owner string, names []string) model.Modifier {
	var mods model.Modifier

	for _, n := range names {
		mod, ok := model.ParseModifier(n)
		if !ok {
			b.problemf("%s: unknown modifier %q", owner, n)

			continue
		}

		mods |= mod
	}

	return mods
}

func (b *builder) addFile(doc *modelDoc, spec *fileSpec) {
	if spec.Path == "" {
		b.problemf("file with no path")

		return
	}

	f := &fileInfo{
		path:          filepath.ToSlash(spec.Path),
		pkg:           spec.Package,
		imports:       spec.Imports,
		staticImports: spec.StaticImports,
	}

	root := scopeSpec{
		Class:      spec.Class,
		Static:     spec.Static,
		TypeParams: spec.TypeParams,
		Locals:     spec.Locals,
	}

	f.root = b.scope(f, nil, &root)

	for i := range spec.Scopes {
		s := &spec.Scopes[i]
		if s.EndLine < s.StartLine {
			b.problemf("%s: scope ends at line %d before it starts at %d", f.path, s.EndLine, s.StartLine)

			continue
		}

		f.scopes = append(f.scopes, b.scope(f, f.scopes, s))
	}

	for _, imp := range slices.Concat(f.imports, f.staticImports) {
		if strings.HasSuffix(imp, ".*") {
			continue
		}

		if b.m.lookupImport(imp) == nil {
			b.problemf("%s: cannot resolve import %s", f.path, imp)
		}
	}

	b.m.files = append(b.m.files, f)
}

// scope resolves a scope spec in the context of the file-wide scope and the
// enclosing ranges declared before it.
func (b *builder) scope(f *fileInfo, outer []*scopeInfo, spec *scopeSpec) *scopeInfo {
	s := &scopeInfo{
		startLine: spec.StartLine,
		endLine:   spec.EndLine,
		static:    spec.Static,
	}

	if spec.Class != "" {
		s.class = b.m.types[spec.Class]
		if s.class == nil {
			b.problems = append(b.problems, errors.Wrapf(ErrUnknownType, "%s: class %s", f.path, spec.Class))
		}
	}

	for _, tp := range spec.TypeParams {
		s.typeVars = append(s.typeVars, &model.TypeVariable{Name: tp.Name})
	}

	// Resolve against everything visible at the scope's first line.
	layers := append([]*scopeInfo{f.root}, outer...)
	sc := composeScope(f, max(s.startLine-1, 0), append(layers, s)...)
	c := &typeContext{
		m:         b.m,
		pkg:       f.pkg,
		imports:   f.imports,
		enclosing: sc.Enclosing,
		vars:      sc.TypeVars,
	}

	b.bindTypeParams(c, f.path, spec.TypeParams, s.typeVars)

	names := make([]string, 0, len(spec.Locals))
	for name := range spec.Locals {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		s.locals = append(s.locals, &model.Variable{
			Name: name,
			Type: b.typeOf(c, f.path+": local "+name, spec.Locals[name]),
		})
	}

	return s
}

func (m *Model) objectType() model.Type {
	if m.object == nil {
		return &model.OtherType{Name: objectName}
	}

	return &model.DeclaredType{Element: m.object}
}

// lookupImport resolves the type named by a single-type or single-static
// import ("java.util.List", "java.lang.Math.max").
func (m *Model) lookupImport(imp string) *model.TypeElement {
	if t := m.types[imp]; t != nil {
		return t
	}

	if i := strings.LastIndexByte(imp, '.'); i > 0 {
		return m.types[imp[:i]]
	}

	return nil
}

func enumMembers(m *Model, elem *model.TypeElement) []*model.Member {
	self := &model.DeclaredType{Element: elem}

	var str model.Type = &model.OtherType{Name: "String"}
	if s := m.types["java.lang.String"]; s != nil {
		str = &model.DeclaredType{Element: s}
	}

	return []*model.Member{
		{
			Name:      "values",
			Kind:      model.Method,
			Declaring: elem,
			Modifiers: model.Public | model.Static,
			Signature: &model.Signature{Return: &model.ArrayType{Elem: self}},
		},
		{
			Name:      "valueOf",
			Kind:      model.Method,
			Declaring: elem,
			Modifiers: model.Public | model.Static,
			Signature: &model.Signature{Params: []model.Type{str}, Return: self},
		},
	}
}

// interfaceModifiers applies the implicit modifiers of interface members.
func interfaceModifiers(kind model.MemberKind, mods model.Modifier) model.Modifier {
	if !mods.Has(model.Private) {
		mods |= model.Public
	}

	switch kind {
	case model.Field:
		mods |= model.Static | model.Final
	case model.Method:
		if mods&(model.Static|model.Default|model.Private) == 0 {
			mods |= model.Abstract
		}
	}

	return mods
}

func parseTypeKind(s string) (model.TypeKind, bool) {
	switch s {
	case "", "class":
		return model.Class, true
	case "interface":
		return model.Interface, true
	case "enum":
		return model.Enum, true
	case "annotation":
		return model.Annotation, true
	default:
		return model.Class, false
	}
}

func parseMemberKind(s string) (model.MemberKind, bool) {
	switch s {
	case "", "method":
		return model.Method, true
	case "field":
		return model.Field, true
	case "constructor":
		return model.Constructor, true
	case "type":
		return model.NestedType, true
	default:
		return model.OtherMember, false
	}
}
