package ast

import (
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

// FunctionParameter is one `name in 'ty` clause of a function's parameter
// list.
type FunctionParameter struct {
	Name symtab.Identifier
	Ty   Ty
}

// FunctionDecl is `function name(params) returns 'ty body`. Exported is set
// when the declaration carries the `export` modifier.
type FunctionDecl struct {
	span       source.Span
	Name       symtab.Identifier
	Params     []FunctionParameter
	ReturnType Ty
	Body       Expression
	Exported   bool
}

func NewFunctionDecl(span source.Span, name symtab.Identifier, params []FunctionParameter, ret Ty, body Expression, exported bool) *FunctionDecl {
	return &FunctionDecl{span: span, Name: name, Params: params, ReturnType: ret, Body: body, Exported: exported}
}

func (f *FunctionDecl) Span() source.Span { return f.span }

// Variant is one `Name 'ty1 'ty2 ...` alternative of a `type` declaration,
// or a bare literal alternative. Exactly one of Name/Literal is
// meaningful: a named variant has a nil Literal, a
// literal alternative (as in `type OneOrTwo = 1 | 2`) has Literal set and a
// zero Name.
type Variant struct {
	Span    source.Span
	Name    symtab.Identifier
	Fields  []Ty
	Literal *Literal
}

// IsLiteral reports whether this alternative is a bare literal refinement
// rather than a named constructor.
func (v Variant) IsLiteral() bool { return v.Literal != nil }

// TypeDecl is `type Name = Variant1 | Variant2 | ...`. Like FunctionDecl,
// Exported reflects the `export` modifier.
type TypeDecl struct {
	span     source.Span
	Name     symtab.Identifier
	Variants []Variant
	Exported bool
}

func NewTypeDecl(span source.Span, name symtab.Identifier, variants []Variant, exported bool) *TypeDecl {
	return &TypeDecl{span: span, Name: name, Variants: variants, Exported: exported}
}

func (t *TypeDecl) Span() source.Span { return t.span }

// Import is `import module as alias` (alias optional; when absent the binder
// binds it under the last path segment). The parser reads a single
// identifier as the module, so Path has one segment.
type Import struct {
	span  source.Span
	Path  []symtab.Identifier
	Alias *symtab.Identifier
}

func NewImport(span source.Span, path []symtab.Identifier, alias *symtab.Identifier) *Import {
	return &Import{span: span, Path: path, Alias: alias}
}

func (i *Import) Span() source.Span { return i.span }

// AstNode is one of FunctionDecl, TypeDecl, or Import -- the three things
// that can appear at the top level of a module.
type AstNode interface {
	Span() source.Span
	isAstNode()
}

func (*FunctionDecl) isAstNode() {}
func (*TypeDecl) isAstNode()     {}
func (*Import) isAstNode()       {}

// Commented wraps a top-level node together with the comments scanned
// between the previous top-level declaration and this one.
type Commented[T any] struct {
	Comments []string
	Node     T
}

// Module is one source file's worth of top-level declarations, in source
// order, along with the dotted path it was declared or imported under.
type Module struct {
	Path  []symtab.Identifier
	Nodes []Commented[AstNode]
}

// Ast is a parsed program: one module per parsed source file, keyed by the
// module's path. Import declarations are recorded in the modules but not
// followed by the parser.
type Ast struct {
	Modules map[string]*Module
	// EntryPath is the dotted path of the module containing the program's
	// `main` function, if any.
	EntryPath string
}
