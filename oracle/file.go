package oracle

import (
	"strings"

	"github.com/rlch/javacomplete/model"
)

// fileInfo is the compilation-unit context of one source file.
type fileInfo struct {
	path          string
	pkg           string
	imports       []string
	staticImports []string
	root          *scopeInfo
	scopes        []*scopeInfo
}

// scopeInfo is a line range of a file with its own class, static context,
// type variables and locals. Lines are 1-based and inclusive; a range with
// no lines covers the whole file.
type scopeInfo struct {
	startLine int
	endLine   int
	class     *model.TypeElement
	static    *bool
	typeVars  []*model.TypeVariable
	locals    []*model.Variable
}

func (s *scopeInfo) contains(line int) bool {
	if s.startLine == 0 && s.endLine == 0 {
		return true
	}

	line++

	return line >= s.startLine && line <= s.endLine
}

// scopeAt returns the scope at a 0-based line.
func (f *fileInfo) scopeAt(line int) *model.Scope {
	layers := make([]*scopeInfo, 0, 1+len(f.scopes))
	layers = append(layers, f.root)

	return composeScope(f, line, append(layers, f.scopes...)...)
}

// composeScope layers every scope covering line in order: later layers
// replace the class and static context and add locals and type variables.
func composeScope(f *fileInfo, line int, layers ...*scopeInfo) *model.Scope {
	sc := &model.Scope{File: f.path, Package: f.pkg}

	var vars []*model.TypeVariable

	for _, s := range layers {
		if s == nil || !s.contains(line) {
			continue
		}

		if s.class != nil {
			sc.Enclosing = s.class
		}

		if s.static != nil {
			sc.Static = *s.static
		}

		sc.Locals = append(sc.Locals, s.locals...)
		vars = append(vars, s.typeVars...)
	}

	sc.TypeVars = append(visibleTypeParams(sc.Enclosing, sc.Static), vars...)

	return sc
}

// parseHeader derives a file context from the package and import
// declarations of Java source text.
func parseHeader(path, text string) *fileInfo {
	f := &fileInfo{path: path}

	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "package "):
			f.pkg = declName(line, "package ")
		case strings.HasPrefix(line, "import static "):
			f.staticImports = append(f.staticImports, declName(line, "import static "))
		case strings.HasPrefix(line, "import "):
			f.imports = append(f.imports, declName(line, "import "))
		}
	}

	return f
}

func declName(line, keyword string) string {
	name := strings.TrimPrefix(line, keyword)
	if i := strings.IndexByte(name, ';'); i >= 0 {
		name = name[:i]
	}

	return strings.Join(strings.Fields(name), "")
}
