package entity

// Kind discriminates the entity union.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
	KindSymbol    Kind = "symbol"
)

// SymbolKind classifies a symbol declaration.
type SymbolKind string

const (
	SymbolFunction  SymbolKind = "function"
	SymbolClass     SymbolKind = "class"
	SymbolInterface SymbolKind = "interface"
	SymbolTypeAlias SymbolKind = "typeAlias"
	SymbolProperty  SymbolKind = "property"
	SymbolVariable  SymbolKind = "variable"
)

// Entity is a node in the code graph: a File, a Directory, or a Symbol.
// The set of implementations is closed.
type Entity interface {
	EntityID() string
	EntityKind() Kind
}

// File is the entity for a single parsed source file.
type File struct {
	ID           string   `json:"id"`
	Path         string   `json:"path"` // project-relative, slash-separated
	Hash         string   `json:"hash"` // SHA-256 of content
	Language     string   `json:"language"`
	Size         int      `json:"size"`
	Lines        int      `json:"lines"`
	IsTest       bool     `json:"is_test"`
	IsConfig     bool     `json:"is_config"`
	Dependencies []string `json:"dependencies,omitempty"` // module specifiers imported by the file
}

func (f File) EntityID() string { return f.ID }
func (f File) EntityKind() Kind { return KindFile }

// Directory is the entity for a directory containing parsed files.
type Directory struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Depth int    `json:"depth"`
}

func (d Directory) EntityID() string { return d.ID }
func (d Directory) EntityKind() Kind { return KindDirectory }

// Range is the source extent of a symbol, in bytes and lines.
type Range struct {
	StartByte int `json:"start_byte"`
	EndByte   int `json:"end_byte"`
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Overlaps reports whether the byte extent intersects [start, end).
func (r Range) Overlaps(start, end int) bool {
	return r.StartByte < end && r.EndByte > start
}

// Param is a single declared parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Symbol is the entity for a declared function, class, interface, type
// alias, property, or variable.
//
// Path is always "<fileRelPath>:<name>" and serves as the lookup key in
// the per-file symbol map and the global name index.
type Symbol struct {
	ID           string     `json:"id"`
	Path         string     `json:"path"`
	File         string     `json:"file"`
	Name         string     `json:"name"`
	Kind         SymbolKind `json:"kind"`
	Signature    string     `json:"signature,omitempty"`
	Docstring    string     `json:"docstring,omitempty"`
	Visibility   string     `json:"visibility,omitempty"` // public, private, protected
	IsExported   bool       `json:"is_exported"`
	IsDeprecated bool       `json:"is_deprecated"`
	IsDefault    bool       `json:"is_default,omitempty"` // default export

	// Function/method fields.
	Parameters  []Param `json:"parameters,omitempty"`
	ReturnType  string  `json:"return_type,omitempty"`
	IsAsync     bool    `json:"is_async,omitempty"`
	IsGenerator bool    `json:"is_generator,omitempty"`
	Complexity  int     `json:"complexity,omitempty"`

	// Class/interface fields.
	Extends    []string `json:"extends,omitempty"`
	Implements []string `json:"implements,omitempty"`
	IsAbstract bool     `json:"is_abstract,omitempty"`

	// Parent is the symbol path of the enclosing class, if any.
	Parent string `json:"parent,omitempty"`

	Range Range `json:"range"`
}

func (s Symbol) EntityID() string { return s.ID }
func (s Symbol) EntityKind() Kind { return KindSymbol }
