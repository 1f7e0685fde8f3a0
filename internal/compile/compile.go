// Package compile orchestrates the fixed pipeline: lex → parse → bind →
// resolve → type-check, each stage a synchronous function consuming the
// previous stage's output. It owns nothing the stages do not: it only
// sequences, wires shared state (source map, interner, type context)
// through the stages, and assembles the final output tuple.
package compile

import (
	"strings"
	"unicode"

	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/binder"
	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/lexer"
	"github.com/sunholo/petrc/internal/parser"
	"github.com/sunholo/petrc/internal/resolve"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
	"github.com/sunholo/petrc/internal/typecheck"
	"github.com/sunholo/petrc/internal/types"
)

// Dependency is one pre-parsed dependency package. Its Ast must have been parsed with the same interner this
// compilation uses; Parse arranges that when the dependency arrives as
// source text.
type Dependency struct {
	Key            string
	Name           string
	TransitiveDeps []string
	Ast            *ast.Ast
	// ModuleOrder lists the dependency's module paths in declaration
	// order, matching the order its Ast was parsed in.
	ModuleOrder []string
}

// Result is the full output of one compilation.
type Result struct {
	TypedFunctions map[ids.FunctionID]*typecheck.Function
	Monomorphized  *typecheck.MonoTable
	TypeMap        *typecheck.TypeMap
	Types          *types.Context
	Reports        []*diag.Report

	Interner *symtab.Interner
	Sources  *source.Map
	Binder   *binder.Binder
	Resolved *resolve.Items
}

// HasErrors reports whether any stage collected a diagnostic.
func (r *Result) HasErrors() bool { return len(r.Reports) > 0 }

// Session carries the state shared between parsing user code and parsing
// dependencies: one source map and one interner per compilation, so every
// SymbolID is comparable across package boundaries.
type Session struct {
	Sources  *source.Map
	Interner *symtab.Interner
}

// NewSession creates an empty compilation session.
func NewSession() *Session {
	return &Session{Sources: source.NewMap(), Interner: symtab.NewInterner()}
}

// moduleName derives the module path for a source file from its display
// name: everything up to and including the last slash is dropped, the
// extension is stripped, and hyphens fold to underscores. A name that still is not a valid identifier is
// rejected with PAR006 (InvalidIdentifier).
func moduleName(name string) (string, bool) {
	base := name
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	base = strings.ReplaceAll(base, "-", "_")
	if base == "" {
		return "", false
	}
	for i, r := range base {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return base, false
	}
	return base, true
}

// Parse normalizes, registers, lexes, and parses an ordered list of source
// files into one Ast, sharing the session's interner. All files feed a
// single lexer so the parser can patch up spans that cross file boundaries.
func Parse(s *Session, files []source.File) (*ast.Ast, []string, []*diag.Report) {
	var reports []*diag.Report
	sourceIDs := make([]source.ID, 0, len(files))
	texts := make([]string, 0, len(files))
	names := make([]parser.ModuleName, 0, len(files))

	for _, f := range files {
		text := string(lexer.Normalize([]byte(f.Text)))
		id := s.Sources.Add(f.Name, text)
		path, ok := moduleName(f.Name)
		if !ok {
			reports = append(reports, diag.New(diag.PhaseParser, diag.PAR006,
				"source name "+f.Name+" is not a valid module identifier",
				source.NewSpan(id, 0, 0)).
				WithHelp("module names must begin with a letter or underscore and contain only letters, digits, and underscores"))
			continue
		}
		sourceIDs = append(sourceIDs, id)
		texts = append(texts, text)
		names = append(names, parser.ModuleName{Source: id, Path: path})
	}

	l := lexer.New(sourceIDs, texts)
	p := parser.New(l, s.Interner)
	tree, order := parser.ParseProgram(p, names)
	reports = append(reports, p.Errors()...)
	return tree, order, reports
}

// Run compiles user sources plus optional pre-parsed dependencies into the
// output tuple. Dependency modules are bound first so their exports exist
// when the resolver splices imports; user modules follow in input order.
func Run(files []source.File, deps []Dependency) *Result {
	s := NewSession()
	return RunWith(s, files, deps)
}

// RunWith is Run against a caller-owned session, letting a REPL re-parse
// into the same interner across inputs.
func RunWith(s *Session, files []source.File, deps []Dependency) *Result {
	tree, order, reports := Parse(s, files)

	merged := &ast.Ast{Modules: map[string]*ast.Module{}}
	var bindOrder []string
	for _, dep := range deps {
		if dep.Ast == nil {
			continue
		}
		for _, path := range dep.ModuleOrder {
			if mod, ok := dep.Ast.Modules[path]; ok {
				merged.Modules[path] = mod
				bindOrder = append(bindOrder, path)
			}
		}
	}
	mainSym := s.Interner.Insert("main")
	for _, path := range order {
		mod := tree.Modules[path]
		merged.Modules[path] = mod
		bindOrder = append(bindOrder, path)
		for _, node := range mod.Nodes {
			if fn, ok := node.Node.(*ast.FunctionDecl); ok && fn.Name.Name == mainSym {
				merged.EntryPath = path
			}
		}
	}

	b := binder.FromAst(merged, bindOrder, s.Interner)
	reports = append(reports, b.Reports...)
	resolved := resolve.Resolve(b, s.Interner, bindOrder)
	reports = append(reports, resolved.Reports...)

	ctx := types.NewContext(s.Interner)
	checked := typecheck.NewChecker(resolved, ctx).Check()
	reports = append(reports, checked.Reports...)

	return &Result{
		TypedFunctions: checked.TypedFunctions,
		Monomorphized:  checked.Monomorphized,
		TypeMap:        checked.TypeMap,
		Types:          ctx,
		Reports:        reports,
		Interner:       s.Interner,
		Sources:        s.Sources,
		Binder:         b,
		Resolved:       resolved,
	}
}
