package binder

import (
	"fmt"

	"github.com/sunholo/petrc/internal/arena"
	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/symtab"
)

// Re-exported id types so callers only need to import this package.
type (
	ScopeID    = ids.ScopeID
	FunctionID = ids.FunctionID
	TypeID     = ids.TypeID
	BindingID  = ids.BindingID
	ModuleID   = ids.ModuleID
)

// Binder is the result of binding a whole Ast: every scope, function,
// type, binding, and module declared anywhere in it, addressable by id.
type Binder struct {
	scopes        *arena.Arena[ScopeID, *Scope]
	scopeChain    []ScopeID
	bindings      *arena.Arena[BindingID, ast.Expression]
	functions     *arena.Arena[FunctionID, *ast.FunctionDecl]
	types         *arena.Arena[TypeID, *ast.TypeDecl]
	modules       *arena.Arena[ModuleID, *Module]
	modulesByPath map[string]ModuleID
	fnScopes      map[FunctionID]ScopeID
	interner      *symtab.Interner

	// Reports collects binding-time diagnostics (currently only duplicate
	// exports); the pipeline folds them into the compilation's list.
	Reports []*diag.Report
}

func newBinder(interner *symtab.Interner) *Binder {
	return &Binder{
		scopes:        arena.New[ScopeID, *Scope](),
		bindings:      arena.New[BindingID, ast.Expression](),
		functions:     arena.New[FunctionID, *ast.FunctionDecl](),
		types:         arena.New[TypeID, *ast.TypeDecl](),
		modules:       arena.New[ModuleID, *Module](),
		modulesByPath: make(map[string]ModuleID),
		fnScopes:      make(map[FunctionID]ScopeID),
		interner:      interner,
	}
}

// ModuleByPath returns the id of the bound module declared under path, if
// any module in this compilation was bound under that dotted path.
func (b *Binder) ModuleByPath(path string) (ModuleID, bool) {
	id, ok := b.modulesByPath[path]
	return id, ok
}

func (b *Binder) GetFunction(id FunctionID) *ast.FunctionDecl { return b.functions.Get(id) }
func (b *Binder) GetType(id TypeID) *ast.TypeDecl             { return b.types.Get(id) }
func (b *Binder) GetBinding(id BindingID) ast.Expression      { return b.bindings.Get(id) }
func (b *Binder) GetModule(id ModuleID) *Module               { return b.modules.Get(id) }
func (b *Binder) GetScope(id ScopeID) *Scope                  { return b.scopes.Get(id) }

// FunctionBodyScope returns the scope a function's parameters were bound in.
func (b *Binder) FunctionBodyScope(id FunctionID) ScopeID { return b.fnScopes[id] }

// EachFunction visits every bound function declaration (user-written and
// synthesized constructors alike) in binding order.
func (b *Binder) EachFunction(f func(FunctionID, *ast.FunctionDecl)) {
	b.functions.Each(f)
}

// EachType visits every bound type declaration in binding order.
func (b *Binder) EachType(f func(TypeID, *ast.TypeDecl)) {
	b.types.Each(f)
}

// InsertIntoScope binds name to item directly in the given scope. The
// resolver uses this to splice a dependency's exports into the scope of the
// module importing them.
func (b *Binder) InsertIntoScope(scope ScopeID, name symtab.ID, item Item) {
	b.scopes.Get(scope).insert(name, item)
}

// FindSymbolInScope climbs the scope chain from scopeID looking for name,
// returning the first Item found and ok == false if no scope in the chain
// binds it.
func (b *Binder) FindSymbolInScope(name symtab.ID, scopeID ScopeID) (Item, bool) {
	for {
		scope := b.scopes.Get(scopeID)
		if item, ok := scope.items[name]; ok {
			return item, true
		}
		if scope.parent == nil {
			return nil, false
		}
		scopeID = *scope.parent
	}
}

func (b *Binder) insertIntoCurrentScope(name symtab.ID, item Item) {
	current := b.scopeChain[len(b.scopeChain)-1]
	b.scopes.Get(current).insert(name, item)
}

func (b *Binder) pushScope() ScopeID {
	var parent *ScopeID
	if len(b.scopeChain) > 0 {
		p := b.scopeChain[len(b.scopeChain)-1]
		parent = &p
	}
	id := b.scopes.Insert(newScope(parent))
	b.scopeChain = append(b.scopeChain, id)
	return id
}

func (b *Binder) popScope() {
	b.scopeChain = b.scopeChain[:len(b.scopeChain)-1]
}

// withScope pushes a fresh scope, runs f with its id, then pops it.
func (b *Binder) withScope(f func(scope ScopeID)) ScopeID {
	id := b.pushScope()
	f(id)
	b.popScope()
	return id
}

// insertType records a type declaration and synthesizes one constructor
// function per named variant, whose body is an ExprTypeConstructor
// referencing the variant's fields as bound parameters. Literal alternatives
// get no per-variant constructor; instead, if any are present, one
// constructor under the type's
// own name is synthesized whose single parameter is constrained to the sum
// of those literals, so `~OneOrTwo 1` type-checks as an ordinary call. The
// constructors inherit the type's visibility, but only the type itself
// appears in the export table.
func (b *Binder) insertType(decl *ast.TypeDecl) (symtab.Identifier, Item, bool) {
	typeID := b.types.Insert(decl)

	var literals []ast.Ty
	for _, variant := range decl.Variants {
		if variant.IsLiteral() {
			literals = append(literals, ast.NewTyLiteral(variant.Span, *variant.Literal))
			continue
		}
		params := make([]ast.FunctionParameter, len(variant.Fields))
		for i, field := range variant.Fields {
			// The variant's name is the placeholder parameter name; when the
			// variant has more than one field, every field gets an index
			// suffix (_0, _1, ...) so the names stay distinct in the body
			// scope.
			name := variant.Name
			if len(variant.Fields) > 1 {
				text := fmt.Sprintf("%s_%d", b.interner.Get(variant.Name.Name), i)
				name = symtab.Identifier{Name: b.interner.Insert(text), Span: variant.Name.Span}
			}
			params[i] = ast.FunctionParameter{Name: name, Ty: field}
		}
		args := make([]ast.Expression, len(variant.Fields))
		bodyScope := b.withScope(func(scope ScopeID) {
			for i, param := range params {
				b.insertIntoCurrentScope(param.Name.Name, ItemFunctionParameter{Ty: param.Ty})
				args[i] = ast.NewExprVariable(param.Name.Span, param.Name)
			}
		})

		fn := ast.NewFunctionDecl(
			variant.Span,
			variant.Name,
			params,
			ast.NewTyNamed(decl.Name.Span, decl.Name),
			ast.NewExprTypeConstructor(variant.Span, typeID, args),
			decl.Exported,
		)
		functionID := b.functions.Insert(fn)
		b.fnScopes[functionID] = bodyScope
		b.insertIntoCurrentScope(variant.Name.Name, ItemFunction{Function: functionID, BodyScope: bodyScope})
	}

	typeItem := ItemType{Type: typeID}
	if len(literals) > 0 {
		param := ast.FunctionParameter{
			Name: decl.Name,
			Ty:   ast.NewTySum(decl.Span(), literals),
		}
		var arg ast.Expression
		bodyScope := b.withScope(func(scope ScopeID) {
			b.insertIntoCurrentScope(param.Name.Name, ItemFunctionParameter{Ty: param.Ty})
			arg = ast.NewExprVariable(param.Name.Span, param.Name)
		})
		fn := ast.NewFunctionDecl(
			decl.Span(),
			decl.Name,
			[]ast.FunctionParameter{param},
			ast.NewTyNamed(decl.Name.Span, decl.Name),
			ast.NewExprTypeConstructor(decl.Span(), typeID, []ast.Expression{arg}),
			decl.Exported,
		)
		functionID := b.functions.Insert(fn)
		b.fnScopes[functionID] = bodyScope
		typeItem.Constructor = functionID
		typeItem.HasConstructor = true
	}
	b.insertIntoCurrentScope(decl.Name.Name, typeItem)

	if decl.Exported {
		return decl.Name, typeItem, true
	}
	return symtab.Identifier{}, nil, false
}

// insertFunction records a function declaration, opening a new scope for
// its body populated with its parameters.
func (b *Binder) insertFunction(decl *ast.FunctionDecl) (symtab.Identifier, Item, bool) {
	functionID := b.functions.Insert(decl)
	bodyScope := b.withScope(func(scope ScopeID) {
		for _, param := range decl.Params {
			b.insertIntoCurrentScope(param.Name.Name, ItemFunctionParameter{Ty: param.Ty})
		}
	})
	b.fnScopes[functionID] = bodyScope
	item := ItemFunction{Function: functionID, BodyScope: bodyScope}
	b.insertIntoCurrentScope(decl.Name.Name, item)
	if decl.Exported {
		return decl.Name, item, true
	}
	return symtab.Identifier{}, nil, false
}

// insertImport records a pending import under its alias, or its last path
// segment if no alias was given.
func (b *Binder) insertImport(imp *ast.Import) {
	name := imp.Path[len(imp.Path)-1]
	if imp.Alias != nil {
		name = *imp.Alias
	}
	b.insertIntoCurrentScope(name.Name, ItemImport{Path: imp.Path, Alias: imp.Alias})
}

// InsertBinding records a let-binding's right-hand side expression,
// returning the id the resolver/checker will use to retrieve it back.
func (b *Binder) InsertBinding(expr ast.Expression) BindingID {
	return b.bindings.Insert(expr)
}

// FromAst binds every module of ast, in the order they appear, each in its
// own top-level scope. The interner is the compilation's shared one; the
// binder needs it to mint placeholder parameter names for synthesized
// constructors.
func FromAst(tree *ast.Ast, order []string, interner *symtab.Interner) *Binder {
	b := newBinder(interner)
	for _, path := range order {
		mod := tree.Modules[path]
		if mod == nil {
			continue
		}
		b.withScope(func(scopeID ScopeID) {
			exports := make(map[symtab.ID]Item)
			addExport := func(name symtab.Identifier, item Item) {
				if _, dup := exports[name.Name]; dup {
					b.Reports = append(b.Reports, diag.New(diag.PhaseResolver, diag.RES003,
						"duplicate export in module "+path, name.Span))
					return
				}
				exports[name.Name] = item
			}
			for _, node := range mod.Nodes {
				switch n := node.Node.(type) {
				case *ast.FunctionDecl:
					if name, item, ok := b.insertFunction(n); ok {
						addExport(name, item)
					}
				case *ast.TypeDecl:
					if name, item, ok := b.insertType(n); ok {
						addExport(name, item)
					}
				case *ast.Import:
					b.insertImport(n)
				}
			}
			moduleID := b.modules.Insert(&Module{RootScope: scopeID, Exports: exports})
			b.modulesByPath[path] = moduleID
		})
	}
	return b
}
