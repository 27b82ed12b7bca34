package oracle

// The YAML form of a type model. Type expressions are Java source syntax
// ("java.util.Map<K, V>", "int[]") resolved against the declaring context.

type modelDoc struct {
	// JDK includes the embedded JDK subset; it defaults to true.
	JDK *bool `yaml:"jdk,omitempty"`

	// Imports apply to type expressions in Types, in addition to the
	// declaring package and java.lang.
	Imports []string   `yaml:"imports,omitempty"`
	Types   []typeSpec `yaml:"types,omitempty"`
	Files   []fileSpec `yaml:"files,omitempty"`
}

type typeSpec struct {
	Name       string          `yaml:"name"`
	Kind       string          `yaml:"kind,omitempty"`
	Modifiers  []string        `yaml:"modifiers,omitempty"`
	TypeParams []typeParamSpec `yaml:"typeParams,omitempty"`
	Superclass string          `yaml:"superclass,omitempty"`
	Interfaces []string        `yaml:"interfaces,omitempty"`
	Members    []memberSpec    `yaml:"members,omitempty"`
	Nested     []typeSpec      `yaml:"nested,omitempty"`
}

type typeParamSpec struct {
	Name  string `yaml:"name"`
	Bound string `yaml:"bound,omitempty"`
}

type memberSpec struct {
	Name       string          `yaml:"name"`
	Kind       string          `yaml:"kind,omitempty"`
	Modifiers  []string        `yaml:"modifiers,omitempty"`
	TypeParams []typeParamSpec `yaml:"typeParams,omitempty"`
	Params     []string        `yaml:"params,omitempty"`
	Returns    string          `yaml:"returns,omitempty"`
	Type       string          `yaml:"type,omitempty"`
}

type fileSpec struct {
	Path          string   `yaml:"path"`
	Package       string   `yaml:"package,omitempty"`
	Imports       []string `yaml:"imports,omitempty"`
	StaticImports []string `yaml:"staticImports,omitempty"`

	// File-wide scope; Scopes narrow it by line range.
	Class      string            `yaml:"class,omitempty"`
	Static     *bool             `yaml:"static,omitempty"`
	TypeParams []typeParamSpec   `yaml:"typeParams,omitempty"`
	Locals     map[string]string `yaml:"locals,omitempty"`
	Scopes     []scopeSpec       `yaml:"scopes,omitempty"`
}

type scopeSpec struct {
	StartLine  int               `yaml:"startLine,omitempty"`
	EndLine    int               `yaml:"endLine,omitempty"`
	Class      string            `yaml:"class,omitempty"`
	Static     *bool             `yaml:"static,omitempty"`
	TypeParams []typeParamSpec   `yaml:"typeParams,omitempty"`
	Locals     map[string]string `yaml:"locals,omitempty"`
}
