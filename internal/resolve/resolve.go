// Package resolve turns the binder's scope tree into a queryable table of
// resolved items: every Path and Identifier in every function body is looked
// up by climbing the enclosing scope chain, producing arenas of
// ResolvedFunction and ResolvedType plus resolved expression trees. Unresolved names become ErrorRecovery expressions and RES###
// diagnostics; nothing stops the walk.
package resolve

import (
	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/binder"
	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/symtab"
)

// Param is one resolved function parameter: its name and declared type.
type Param struct {
	Name symtab.Identifier
	Ty   ast.Ty
}

// Function is a fully resolved function: declaration plus resolved body.
// Ids are shared with the binder's function arena.
type Function struct {
	Name     symtab.Identifier
	Params   []Param
	ReturnTy ast.Ty
	Body     Expr
}

// Variant is one named alternative of a resolved type.
type Variant struct {
	Name   symtab.Identifier
	Fields []ast.Ty
}

// Type is a resolved user-defined type: its named variants and the literal
// refinements declared for it.
type Type struct {
	Name                 symtab.Identifier
	Variants             []Variant
	ConstantLiteralTypes []ast.Literal
}

// Items is the resolver's output: dense tables indexed by the same
// FunctionID/TypeID spaces the binder issued, plus collected diagnostics.
type Items struct {
	functions []*Function
	types     []*Type
	Reports   []*diag.Report
}

// GetFunction returns the resolved function for id.
func (it *Items) GetFunction(id ids.FunctionID) *Function { return it.functions[int(id)] }

// GetType returns the resolved type for id.
func (it *Items) GetType(id ids.TypeID) *Type { return it.types[int(id)] }

// EachFunction visits every resolved function in binding order.
func (it *Items) EachFunction(f func(ids.FunctionID, *Function)) {
	for i, fn := range it.functions {
		f(ids.FunctionID(i), fn)
	}
}

// EachType visits every resolved type in binding order.
func (it *Items) EachType(f func(ids.TypeID, *Type)) {
	for i, ty := range it.types {
		f(ids.TypeID(i), ty)
	}
}

type resolver struct {
	b        *binder.Binder
	interner *symtab.Interner
	out      *Items
}

// Resolve resolves every module bound under the given paths, in order.
// Dependency modules must already be bound into the same Binder (sharing the
// compilation's interner); their exports are spliced into each
// importing module's scope before any body is resolved, so imported names
// resolve through the ordinary scope climb.
func Resolve(b *binder.Binder, interner *symtab.Interner, order []string) *Items {
	r := &resolver{b: b, interner: interner, out: &Items{}}

	for _, path := range order {
		modID, ok := b.ModuleByPath(path)
		if !ok {
			continue
		}
		r.spliceImports(b.GetModule(modID))
	}

	b.EachType(func(id ids.TypeID, decl *ast.TypeDecl) {
		r.out.types = append(r.out.types, resolveTypeDecl(decl))
	})
	b.EachFunction(func(id ids.FunctionID, decl *ast.FunctionDecl) {
		r.out.functions = append(r.out.functions, r.resolveFunction(id, decl))
	})
	return r.out
}

// spliceImports rewires every ItemImport in a module's root scope: the
// target module's exports are inserted directly into the importing scope so
// later lookups find them by name. Unknown modules produce RES002.
func (r *resolver) spliceImports(mod *binder.Module) {
	type pending struct {
		name symtab.ID
		imp  binder.ItemImport
	}
	var imports []pending
	r.b.GetScope(mod.RootScope).Each(func(name symtab.ID, item binder.Item) {
		if imp, ok := item.(binder.ItemImport); ok {
			imports = append(imports, pending{name: name, imp: imp})
		}
	})
	for _, p := range imports {
		target := p.imp.Path[len(p.imp.Path)-1]
		targetID, ok := r.b.ModuleByPath(r.interner.Get(target.Name))
		if !ok {
			r.out.Reports = append(r.out.Reports, diag.New(diag.PhaseResolver, diag.RES002,
				"cannot resolve import "+r.interner.Get(target.Name), target.Span))
			continue
		}
		exported := r.b.GetModule(targetID)
		r.b.InsertIntoScope(mod.RootScope, p.name, binder.ItemModule{Module: targetID})
		for exportName, exportItem := range exported.Exports {
			r.b.InsertIntoScope(mod.RootScope, exportName, exportItem)
		}
	}
}

func resolveTypeDecl(decl *ast.TypeDecl) *Type {
	out := &Type{Name: decl.Name}
	for _, v := range decl.Variants {
		if v.IsLiteral() {
			out.ConstantLiteralTypes = append(out.ConstantLiteralTypes, *v.Literal)
			continue
		}
		out.Variants = append(out.Variants, Variant{Name: v.Name, Fields: v.Fields})
	}
	return out
}

func (r *resolver) resolveFunction(id ids.FunctionID, decl *ast.FunctionDecl) *Function {
	params := make([]Param, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = Param{Name: p.Name, Ty: p.Ty}
	}
	scope := r.b.FunctionBodyScope(id)
	body := r.resolveExpr(decl.Body, scope, newLocals())
	return &Function{
		Name:     decl.Name,
		Params:   params,
		ReturnTy: decl.ReturnType,
		Body:     body,
	}
}

// locals tracks let-bound names during one body walk. Let bindings never
// reach the binder's scope arena; they are purely expression-local.
type locals struct {
	frames []map[symtab.ID]struct{}
}

func newLocals() *locals { return &locals{} }

func (l *locals) push() { l.frames = append(l.frames, map[symtab.ID]struct{}{}) }
func (l *locals) pop()  { l.frames = l.frames[:len(l.frames)-1] }

func (l *locals) add(name symtab.ID) { l.frames[len(l.frames)-1][name] = struct{}{} }

func (l *locals) has(name symtab.ID) bool {
	for i := len(l.frames) - 1; i >= 0; i-- {
		if _, ok := l.frames[i][name]; ok {
			return true
		}
	}
	return false
}

func (r *resolver) unresolved(name symtab.Identifier) Expr {
	r.out.Reports = append(r.out.Reports, diag.New(diag.PhaseResolver, diag.RES001,
		"unresolved identifier "+r.interner.Get(name.Name), name.Span))
	return NewExprErrorRecovery(name.Span)
}

func (r *resolver) resolveExpr(e ast.Expression, scope ids.ScopeID, loc *locals) Expr {
	switch e := e.(type) {
	case ast.ExprLiteral:
		return NewExprLiteral(e.Span(), e.Value)

	case ast.ExprList:
		elems := make([]Expr, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = r.resolveExpr(el, scope, loc)
		}
		return NewExprList(e.Span(), elems)

	case ast.ExprOperator:
		// Surface operators are sugar for the arithmetic intrinsics; the
		// checker only ever sees intrinsic calls.
		kind := map[ast.Operator]ast.IntrinsicKind{
			ast.OpAdd:      ast.IntrinsicAdd,
			ast.OpSubtract: ast.IntrinsicSubtract,
			ast.OpMultiply: ast.IntrinsicMultiply,
			ast.OpDivide:   ast.IntrinsicDivide,
		}[e.Operator]
		lhs := r.resolveExpr(e.Lhs, scope, loc)
		rhs := r.resolveExpr(e.Rhs, scope, loc)
		return NewExprIntrinsic(e.Span(), kind, []Expr{lhs, rhs})

	case ast.ExprVariable:
		if loc.has(e.Name.Name) {
			return NewExprVariable(e.Span(), e.Name, nil)
		}
		item, ok := r.b.FindSymbolInScope(e.Name.Name, scope)
		if !ok {
			return r.unresolved(e.Name)
		}
		if param, ok := item.(binder.ItemFunctionParameter); ok {
			return NewExprVariable(e.Span(), e.Name, param.Ty)
		}
		return r.unresolved(e.Name)

	case ast.ExprFunctionCall:
		name := e.Path[len(e.Path)-1]
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = r.resolveExpr(a, scope, loc)
		}
		item, ok := r.b.FindSymbolInScope(name.Name, scope)
		if !ok {
			return r.unresolved(name)
		}
		switch item := item.(type) {
		case binder.ItemFunction:
			return NewExprFunctionCall(e.Span(), item.Function, args)
		case binder.ItemType:
			if item.HasConstructor {
				return NewExprFunctionCall(e.Span(), item.Constructor, args)
			}
			return r.unresolved(name)
		default:
			return r.unresolved(name)
		}

	case ast.ExprIntrinsicCall:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = r.resolveExpr(a, scope, loc)
		}
		return NewExprIntrinsic(e.Span(), e.Kind, args)

	case ast.ExprTypeConstructor:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = r.resolveExpr(a, scope, loc)
		}
		return NewExprTypeConstructor(e.Span(), e.Type, args)

	case ast.ExprWithBindings:
		loc.push()
		defer loc.pop()
		bindings := make([]Binding, len(e.Bindings))
		for i, b := range e.Bindings {
			// The RHS is resolved before the name becomes visible, so
			// `let x = x` refers to an outer x, not itself.
			rhs := r.resolveExpr(b.Expr, scope, loc)
			loc.add(b.Name.Name)
			bindings[i] = Binding{Name: b.Name, Binding: r.b.InsertBinding(b.Expr), Expr: rhs}
		}
		body := r.resolveExpr(e.Body, scope, loc)
		return NewExprWithBindings(e.Span(), bindings, body)

	case ast.ExprIf:
		cond := r.resolveExpr(e.Cond, scope, loc)
		then := r.resolveExpr(e.Then, scope, loc)
		var els Expr
		if e.Else != nil {
			els = r.resolveExpr(e.Else, scope, loc)
		}
		return NewExprIf(e.Span(), cond, then, els)

	default:
		r.out.Reports = append(r.out.Reports, diag.New(diag.PhaseResolver, diag.RES001,
			"internal error: unknown expression form", e.Span()))
		return NewExprErrorRecovery(e.Span())
	}
}
