// Package typecheck implements the three-pass Hindley-Milner-style checker:
// slots are introduced for every user type and function signature, every
// function body is walked collecting Unify and
// Satisfies constraints, and the constraint list is then solved in insertion
// order by structural rewriting, monomorphizing polymorphic call sites on
// demand along the way.
package typecheck

import (
	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/resolve"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
	"github.com/sunholo/petrc/internal/types"
)

// TypeMap records the slot assigned to every user type and every function
// signature.
type TypeMap struct {
	Functions map[ids.FunctionID]types.TypeVariable
	Types     map[ids.TypeID]types.TypeVariable
}

// Result is the checker's output tuple.
type Result struct {
	TypedFunctions map[ids.FunctionID]*Function
	Monomorphized  *MonoTable
	TypeMap        *TypeMap
	Reports        []*diag.Report
}

// signature is a function's declared type, introduced before its body is
// walked so recursive and forward calls can reference it.
type signature struct {
	params   []types.TypeVariable
	ret      types.TypeVariable
	generics map[symtab.ID]types.TypeVariable
}

// pendingSpec defers a specialization whose callee body was still being
// checked when the call site was reached (direct or mutual recursion). It is
// completed once every body exists.
type pendingSpec struct {
	callee   ids.FunctionID
	key      MonoKey
	concrete []types.Type
	span     source.Span
}

// Checker owns the type context and every intermediate table for one
// compilation's check pass.
type Checker struct {
	ctx        *types.Context
	items      *resolve.Items
	typeMap    *TypeMap
	typeByName map[symtab.ID]ids.TypeID

	signatures map[ids.FunctionID]*signature
	typed      map[ids.FunctionID]*Function
	inProgress map[ids.FunctionID]bool
	mono       *MonoTable
	pending    []pendingSpec

	// scopes is the stack of variable scopes for the body currently being
	// walked: parameters at the bottom, one frame per let block above.
	scopes  []map[symtab.ID]types.TypeVariable
	reports []*diag.Report
}

// NewChecker creates a Checker over resolved items and a fresh or shared
// type context.
func NewChecker(items *resolve.Items, ctx *types.Context) *Checker {
	return &Checker{
		ctx:        ctx,
		items:      items,
		typeMap:    &TypeMap{Functions: map[ids.FunctionID]types.TypeVariable{}, Types: map[ids.TypeID]types.TypeVariable{}},
		typeByName: map[symtab.ID]ids.TypeID{},
		signatures: map[ids.FunctionID]*signature{},
		typed:      map[ids.FunctionID]*Function{},
		inProgress: map[ids.FunctionID]bool{},
		mono:       NewMonoTable(),
	}
}

// Check runs all three passes and returns the output tuple. Constraint
// collection follows declaration order -- types first, then functions, then
// a synthesized zero-argument call to main if one exists -- and the solver
// processes constraints in exactly that order.
func (c *Checker) Check() *Result {
	c.items.EachType(func(id ids.TypeID, ty *resolve.Type) {
		c.introduceType(id, ty)
	})
	c.items.EachFunction(func(id ids.FunctionID, fn *resolve.Function) {
		c.ensureFunction(id)
	})
	c.resolvePending()
	c.callMain()
	c.solve()
	return &Result{
		TypedFunctions: c.typed,
		Monomorphized:  c.mono,
		TypeMap:        c.typeMap,
		Reports:        c.reports,
	}
}

// introduceType allocates the shared slot for a user-defined type, the
// checker's first pass. Variant fields get their own slots immediately; they
// are referenced by the synthesized constructor signatures later.
func (c *Checker) introduceType(id ids.TypeID, ty *resolve.Type) {
	variants := make([]types.TypeVariant, len(ty.Variants))
	for i, v := range ty.Variants {
		fields := make([]types.TypeVariable, len(v.Fields))
		generics := map[symtab.ID]types.TypeVariable{}
		for j, f := range v.Fields {
			fields[j] = c.toPetrType(f, generics)
		}
		variants[i] = types.TypeVariant{Fields: fields}
	}
	slot := c.ctx.NewVariable(types.TUserDefined{
		Name:                 ty.Name.Name,
		Decl:                 id,
		Variants:             variants,
		ConstantLiteralTypes: ty.ConstantLiteralTypes,
	})
	c.typeMap.Types[id] = slot
	c.typeByName[ty.Name.Name] = id
}

// ensureFunction type-checks a function once; re-entry while its own body is
// still being walked (recursion) is a no-op, the signature having already
// been introduced.
func (c *Checker) ensureFunction(id ids.FunctionID) {
	if c.typed[id] != nil || c.inProgress[id] {
		return
	}
	c.checkFunction(id)
}

func (c *Checker) checkFunction(id ids.FunctionID) {
	c.inProgress[id] = true
	defer delete(c.inProgress, id)

	fn := c.items.GetFunction(id)
	sig := c.buildSignature(id, fn)

	// The body is walked in a fresh variable scope holding only the
	// parameters; the surrounding scope stack (if a call arrived here
	// mid-walk of another body) is set aside, not inherited.
	saved := c.scopes
	c.scopes = []map[symtab.ID]types.TypeVariable{{}}
	for i, p := range fn.Params {
		c.scopes[0][p.Name.Name] = sig.params[i]
	}
	body := c.checkExpr(fn.Body, sig)
	c.scopes = saved

	params := make([]Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = Param{Name: p.Name, Ty: sig.params[i]}
	}
	c.typed[id] = &Function{Name: fn.Name, Params: params, ReturnTy: sig.ret, Body: body}
}

// buildSignature introduces slots for a function's parameters and return
// type. Generic names share one Infer slot per function, remembered in the
// signature's generic map.
func (c *Checker) buildSignature(id ids.FunctionID, fn *resolve.Function) *signature {
	if sig, ok := c.signatures[id]; ok {
		return sig
	}
	sig := &signature{generics: map[symtab.ID]types.TypeVariable{}}
	for _, p := range fn.Params {
		sig.params = append(sig.params, c.toPetrType(p.Ty, sig.generics))
	}
	sig.ret = c.toPetrType(fn.ReturnTy, sig.generics)
	c.signatures[id] = sig

	// The function's own slot in the type map is its arrow type; a
	// zero-parameter arrow collapses to its return element.
	if len(sig.params) == 0 {
		c.typeMap.Functions[id] = sig.ret
	} else {
		arrow := make([]types.TypeVariable, 0, len(sig.params)+1)
		arrow = append(arrow, sig.params...)
		arrow = append(arrow, sig.ret)
		c.typeMap.Functions[id] = c.ctx.NewVariable(types.TArrow{Tys: arrow})
	}
	return sig
}

// toPetrType converts a declared surface type into a slot. Concrete types
// always get a fresh slot rather than a shared sentinel because the solver
// rewrites constraint endpoints in place.
func (c *Checker) toPetrType(t ast.Ty, generics map[symtab.ID]types.TypeVariable) types.TypeVariable {
	switch t := t.(type) {
	case nil:
		return c.ctx.FreshInfer(source.Span{})
	case ast.TyInt:
		return c.ctx.NewVariable(types.TInt{})
	case ast.TyBool:
		return c.ctx.NewVariable(types.TBool{})
	case ast.TyString:
		return c.ctx.NewVariable(types.TString{})
	case ast.TyUnit:
		return c.ctx.NewVariable(types.TUnit{})
	case ast.TyNamed:
		id, ok := c.typeByName[t.Name.Name]
		if !ok {
			c.reportf(t.Span(), diag.TYP004, "unknown type "+c.ctx.Interner().Get(t.Name.Name))
			return c.ctx.ErrorRecovery()
		}
		return c.typeMap.Types[id]
	case ast.TyGeneric:
		if tv, ok := generics[t.Name.Name]; ok {
			return tv
		}
		tv := c.ctx.FreshInfer(t.Span())
		generics[t.Name.Name] = tv
		return tv
	case ast.TyLiteral:
		return c.ctx.NewVariable(types.TLiteral{Value: t.Value})
	case ast.TySum:
		members := make([]types.Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = c.typeValue(m)
		}
		return c.ctx.NewVariable(types.TSum{Members: members})
	default:
		c.reportf(t.Span(), diag.TYP004, "internal error: unknown surface type form")
		return c.ctx.ErrorRecovery()
	}
}

// typeValue converts a surface type into a type value for use as a sum
// member. Only forms that denote a closed type make sense here; the grammar
// only produces literal members, so anything else is an internal error.
func (c *Checker) typeValue(t ast.Ty) types.Type {
	switch t := t.(type) {
	case ast.TyInt:
		return types.TInt{}
	case ast.TyBool:
		return types.TBool{}
	case ast.TyString:
		return types.TString{}
	case ast.TyUnit:
		return types.TUnit{}
	case ast.TyLiteral:
		return types.TLiteral{Value: t.Value}
	case ast.TyNamed:
		if id, ok := c.typeByName[t.Name.Name]; ok {
			_, v := c.ctx.Resolve(c.typeMap.Types[id])
			return v
		}
		c.reportf(t.Span(), diag.TYP004, "unknown type "+c.ctx.Interner().Get(t.Name.Name))
		return types.TErrorRecovery{}
	case ast.TySum:
		members := make([]types.Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = c.typeValue(m)
		}
		return types.TSum{Members: members}
	default:
		c.reportf(t.Span(), diag.TYP004, "internal error: type form not allowed in a sum")
		return types.TErrorRecovery{}
	}
}

func (c *Checker) reportf(span source.Span, code, message string) {
	c.reports = append(c.reports, diag.New(diag.PhaseTypecheck, code, message, span))
}

func (c *Checker) pushScope() { c.scopes = append(c.scopes, map[symtab.ID]types.TypeVariable{}) }
func (c *Checker) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) bindVariable(name symtab.ID, tv types.TypeVariable) {
	c.scopes[len(c.scopes)-1][name] = tv
}

func (c *Checker) lookupVariable(name symtab.ID) (types.TypeVariable, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if tv, ok := c.scopes[i][name]; ok {
			return tv, true
		}
	}
	return 0, false
}

// checkExpr walks one resolved expression, allocating its slot and emitting
// its constraints.
func (c *Checker) checkExpr(e resolve.Expr, sig *signature) Expr {
	switch e := e.(type) {
	case resolve.ExprLiteral:
		tv := c.ctx.NewVariable(types.TLiteral{Value: e.Value})
		return Literal{span: e.Span(), Value: e.Value, ty: tv}

	case resolve.ExprList:
		if len(e.Elements) == 0 {
			// Empty-list sentinel: unit until something constrains it.
			tv := c.ctx.NewVariable(types.TUnit{})
			return List{span: e.Span(), ty: tv}
		}
		elems := make([]Expr, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = c.checkExpr(el, sig)
			if i > 0 {
				c.ctx.Unify(elems[0].Ty(), elems[i].Ty(), elems[i].Span())
			}
		}
		tv := c.ctx.NewVariable(types.TList{Elem: elems[0].Ty()})
		return List{span: e.Span(), Elements: elems, ty: tv}

	case resolve.ExprUnit:
		return Unit{span: e.Span(), ty: c.ctx.NewVariable(types.TUnit{})}

	case resolve.ExprErrorRecovery:
		return ErrorRecovery{span: e.Span(), ty: c.ctx.ErrorRecovery()}

	case resolve.ExprVariable:
		tv, ok := c.lookupVariable(e.Name.Name)
		if !ok {
			// The resolver only produces variables it bound.
			c.reportf(e.Span(), diag.TYP004, "internal error: variable not in scope at check time")
			return ErrorRecovery{span: e.Span(), ty: c.ctx.ErrorRecovery()}
		}
		if e.Ty != nil {
			declared := c.toPetrType(e.Ty, sig.generics)
			c.ctx.Unify(tv, declared, e.Name.Span)
		}
		return Variable{span: e.Span(), Name: e.Name, ty: tv}

	case resolve.ExprIntrinsic:
		return c.checkIntrinsic(e, sig)

	case resolve.ExprFunctionCall:
		return c.checkCall(e, sig)

	case resolve.ExprTypeConstructor:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = c.checkExpr(a, sig)
		}
		return TypeConstructor{span: e.Span(), Type: e.Type, Args: args, ty: c.typeMap.Types[e.Type]}

	case resolve.ExprWithBindings:
		c.pushScope()
		defer c.popScope()
		bindings := make([]Binding, len(e.Bindings))
		for i, b := range e.Bindings {
			rhs := c.checkExpr(b.Expr, sig)
			c.bindVariable(b.Name.Name, rhs.Ty())
			bindings[i] = Binding{Name: b.Name, Expr: rhs}
		}
		body := c.checkExpr(e.Body, sig)
		return WithBindings{span: e.Span(), Bindings: bindings, Body: body}

	case resolve.ExprIf:
		cond := c.checkExpr(e.Cond, sig)
		then := c.checkExpr(e.Then, sig)
		var els Expr
		if e.Else != nil {
			els = c.checkExpr(e.Else, sig)
		} else {
			// A missing else branch is unit.
			els = Unit{span: e.Span().ZeroLength(), ty: c.ctx.NewVariable(types.TUnit{})}
		}
		c.ctx.Unify(cond.Ty(), c.ctx.NewVariable(types.TBool{}), cond.Span())
		c.ctx.Unify(then.Ty(), els.Ty(), e.Span())
		return If{span: e.Span(), Cond: cond, Then: then, Else: els, ty: then.Ty()}

	default:
		c.reportf(e.Span(), diag.TYP004, "internal error: unknown resolved expression form")
		return ErrorRecovery{span: e.Span(), ty: c.ctx.ErrorRecovery()}
	}
}

// intrinsicArity gives the required argument count per intrinsic.
var intrinsicArity = map[ast.IntrinsicKind]int{
	ast.IntrinsicPuts:     1,
	ast.IntrinsicAdd:      2,
	ast.IntrinsicSubtract: 2,
	ast.IntrinsicMultiply: 2,
	ast.IntrinsicDivide:   2,
	ast.IntrinsicMalloc:   1,
	ast.IntrinsicSizeOf:   1,
	ast.IntrinsicEquals:   2,
}

func (c *Checker) checkIntrinsic(e resolve.ExprIntrinsic, sig *signature) Expr {
	args := make([]Expr, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.checkExpr(a, sig)
	}
	if want := intrinsicArity[e.Kind]; len(args) != want {
		c.reports = append(c.reports, diag.New(diag.PhaseTypecheck, diag.TYP003,
			"intrinsic "+e.Kind.String()+" expects its fixed argument count", e.Span()).
			WithData("expected", want).WithData("got", len(args)).WithData("function", e.Kind.String()))
		return ErrorRecovery{span: e.Span(), ty: c.ctx.ErrorRecovery()}
	}

	var result types.TypeVariable
	switch e.Kind {
	case ast.IntrinsicPuts:
		c.ctx.Unify(args[0].Ty(), c.ctx.NewVariable(types.TString{}), args[0].Span())
		result = c.ctx.NewVariable(types.TUnit{})
	case ast.IntrinsicAdd, ast.IntrinsicSubtract, ast.IntrinsicMultiply, ast.IntrinsicDivide:
		c.ctx.Unify(args[0].Ty(), c.ctx.NewVariable(types.TInt{}), args[0].Span())
		c.ctx.Unify(args[1].Ty(), c.ctx.NewVariable(types.TInt{}), args[1].Span())
		result = c.ctx.NewVariable(types.TInt{})
	case ast.IntrinsicMalloc:
		// The argument is a byte count; the result is a raw address,
		// both integers at this level.
		c.ctx.Unify(args[0].Ty(), c.ctx.NewVariable(types.TInt{}), args[0].Span())
		result = c.ctx.NewVariable(types.TInt{})
	case ast.IntrinsicSizeOf:
		// The operand is deliberately unconstrained.
		result = c.ctx.NewVariable(types.TInt{})
	case ast.IntrinsicEquals:
		c.ctx.Unify(args[0].Ty(), args[1].Ty(), e.Span())
		result = c.ctx.NewVariable(types.TBool{})
	default:
		c.reportf(e.Span(), diag.TYP004, "internal error: unknown intrinsic")
		result = c.ctx.ErrorRecovery()
	}
	return Intrinsic{span: e.Span(), Kind: e.Kind, Args: args, ty: result}
}

// callMain synthesizes a zero-argument call to main if a zero-parameter
// function of that name exists, purely to force type-checking of its body
// against its declared return type.
func (c *Checker) callMain() {
	mainSym, ok := c.ctx.Interner().Lookup("main")
	if !ok {
		return
	}
	c.items.EachFunction(func(id ids.FunctionID, fn *resolve.Function) {
		if fn.Name.Name != mainSym || len(fn.Params) != 0 {
			return
		}
		c.specializeCall(id, nil, fn.Name.Span)
	})
}
