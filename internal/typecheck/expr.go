package typecheck

import (
	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
	"github.com/sunholo/petrc/internal/types"
)

// Expr is a type-checked expression: the resolved tree annotated with the
// type variable assigned to every node.
type Expr interface {
	Span() source.Span
	Ty() types.TypeVariable
	isExpr()
}

// Literal is a typed constant; its slot holds the singleton Literal type.
type Literal struct {
	span  source.Span
	Value ast.Literal
	ty    types.TypeVariable
}

// List is a typed list literal. An empty list's slot is Unit (the
// empty-list sentinel); otherwise it is List of the first element's type.
type List struct {
	span     source.Span
	Elements []Expr
	ty       types.TypeVariable
}

// Unit is the unit value.
type Unit struct {
	span source.Span
	ty   types.TypeVariable
}

// Variable is a typed reference to a parameter or let binding.
type Variable struct {
	span source.Span
	Name symtab.Identifier
	ty   types.TypeVariable
}

// Intrinsic is a typed intrinsic invocation.
type Intrinsic struct {
	span source.Span
	Kind ast.IntrinsicKind
	Args []Expr
	ty   types.TypeVariable
}

// FunctionCall is a typed call. Its slot is the callee's declared return
// slot, shared by every call site of the function.
type FunctionCall struct {
	span     source.Span
	Function ids.FunctionID
	Args     []Expr
	ty       types.TypeVariable
}

// TypeConstructor builds a user-defined value; its slot is the type-map
// slot of the constructed type.
type TypeConstructor struct {
	span source.Span
	Type ids.TypeID
	Args []Expr
	ty   types.TypeVariable
}

// Binding is one typed `name = expr` clause.
type Binding struct {
	Name symtab.Identifier
	Expr Expr
}

// WithBindings is a typed let block; its type is its body's type.
type WithBindings struct {
	span     source.Span
	Bindings []Binding
	Body     Expr
}

// If is a typed conditional; its type is the then-branch's type.
type If struct {
	span             source.Span
	Cond, Then, Else Expr
	ty               types.TypeVariable
}

// ErrorRecovery is the typed error sentinel; its slot is the context's
// absorbing error slot.
type ErrorRecovery struct {
	span source.Span
	ty   types.TypeVariable
}

func (e Literal) Span() source.Span         { return e.span }
func (e List) Span() source.Span            { return e.span }
func (e Unit) Span() source.Span            { return e.span }
func (e Variable) Span() source.Span        { return e.span }
func (e Intrinsic) Span() source.Span       { return e.span }
func (e FunctionCall) Span() source.Span    { return e.span }
func (e TypeConstructor) Span() source.Span { return e.span }
func (e WithBindings) Span() source.Span    { return e.span }
func (e If) Span() source.Span              { return e.span }
func (e ErrorRecovery) Span() source.Span   { return e.span }

func (e Literal) Ty() types.TypeVariable         { return e.ty }
func (e List) Ty() types.TypeVariable            { return e.ty }
func (e Unit) Ty() types.TypeVariable            { return e.ty }
func (e Variable) Ty() types.TypeVariable        { return e.ty }
func (e Intrinsic) Ty() types.TypeVariable       { return e.ty }
func (e FunctionCall) Ty() types.TypeVariable    { return e.ty }
func (e TypeConstructor) Ty() types.TypeVariable { return e.ty }
func (e WithBindings) Ty() types.TypeVariable    { return e.Body.Ty() }
func (e If) Ty() types.TypeVariable              { return e.ty }
func (e ErrorRecovery) Ty() types.TypeVariable   { return e.ty }

func (Literal) isExpr()         {}
func (List) isExpr()            {}
func (Unit) isExpr()            {}
func (Variable) isExpr()        {}
func (Intrinsic) isExpr()       {}
func (FunctionCall) isExpr()    {}
func (TypeConstructor) isExpr() {}
func (WithBindings) isExpr()    {}
func (If) isExpr()              {}
func (ErrorRecovery) isExpr()   {}

// Param is one typed function parameter.
type Param struct {
	Name symtab.Identifier
	Ty   types.TypeVariable
}

// Function is a fully type-checked function.
type Function struct {
	Name     symtab.Identifier
	Params   []Param
	ReturnTy types.TypeVariable
	Body     Expr
}

// substituteParams rebuilds a typed body, replacing every Variable whose
// name is in subst with a copy pointing at the substituted slot. This is
// how monomorphization retargets a cloned body at the concrete argument
// types without re-collecting constraints.
func substituteParams(e Expr, subst map[symtab.ID]types.TypeVariable) Expr {
	switch e := e.(type) {
	case Variable:
		if tv, ok := subst[e.Name.Name]; ok {
			return Variable{span: e.span, Name: e.Name, ty: tv}
		}
		return e
	case List:
		elems := make([]Expr, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = substituteParams(el, subst)
		}
		return List{span: e.span, Elements: elems, ty: e.ty}
	case Intrinsic:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substituteParams(a, subst)
		}
		return Intrinsic{span: e.span, Kind: e.Kind, Args: args, ty: e.ty}
	case FunctionCall:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substituteParams(a, subst)
		}
		return FunctionCall{span: e.span, Function: e.Function, Args: args, ty: e.ty}
	case TypeConstructor:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substituteParams(a, subst)
		}
		return TypeConstructor{span: e.span, Type: e.Type, Args: args, ty: e.ty}
	case WithBindings:
		bindings := make([]Binding, len(e.Bindings))
		for i, b := range e.Bindings {
			bindings[i] = Binding{Name: b.Name, Expr: substituteParams(b.Expr, subst)}
		}
		return WithBindings{span: e.span, Bindings: bindings, Body: substituteParams(e.Body, subst)}
	case If:
		return If{
			span: e.span,
			Cond: substituteParams(e.Cond, subst),
			Then: substituteParams(e.Then, subst),
			Else: substituteParams(e.Else, subst),
			ty:   e.ty,
		}
	default:
		// Literal, Unit, ErrorRecovery carry no variable references.
		return e
	}
}
