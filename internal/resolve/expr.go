package resolve

import (
	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

// Expr is a resolved expression: every name reference has been replaced by
// the id of the item it resolves to, and surface operators have been
// desugared into intrinsic calls.
type Expr interface {
	Span() source.Span
	isExpr()
}

// ExprLiteral is a constant.
type ExprLiteral struct {
	span  source.Span
	Value ast.Literal
}

// ExprList is a list literal with resolved elements.
type ExprList struct {
	span     source.Span
	Elements []Expr
}

// ExprUnit is the unit value, produced where a construct has no payload.
type ExprUnit struct {
	span source.Span
}

// ExprErrorRecovery replaces any expression that failed to resolve. It
// type-checks against everything silently so one bad name does not cascade.
type ExprErrorRecovery struct {
	span source.Span
}

// ExprVariable references a bound identifier. Ty is the declared type when
// the binding is a function parameter, nil for a let-bound name (whose type
// comes from its right-hand side at check time).
type ExprVariable struct {
	span source.Span
	Name symtab.Identifier
	Ty   ast.Ty
}

// ExprIntrinsic invokes a compiler intrinsic with resolved arguments.
// Surface operator expressions also land here: `+ a b` resolves to the same
// form as `@add a b`.
type ExprIntrinsic struct {
	span source.Span
	Kind ast.IntrinsicKind
	Args []Expr
}

// ExprFunctionCall invokes a function by its resolved id.
type ExprFunctionCall struct {
	span     source.Span
	Function ids.FunctionID
	Args     []Expr
}

// ExprTypeConstructor builds a value of a user-defined type; only ever
// reached through the binder-synthesized constructor bodies.
type ExprTypeConstructor struct {
	span source.Span
	Type ids.TypeID
	Args []Expr
}

// Binding is one resolved `name = expr` clause. Binding is the id the
// binder's bindings arena recorded the surface right-hand side under,
// letting later stages get back to the original expression.
type Binding struct {
	Name    symtab.Identifier
	Binding ids.BindingID
	Expr    Expr
}

// ExprWithBindings is a let block: bindings in order, each visible to the
// ones after it and to the body.
type ExprWithBindings struct {
	span     source.Span
	Bindings []Binding
	Body     Expr
}

// ExprIf is a conditional. Else may be nil; the checker treats a missing
// else branch as unit.
type ExprIf struct {
	span             source.Span
	Cond, Then, Else Expr
}

func NewExprLiteral(span source.Span, v ast.Literal) ExprLiteral {
	return ExprLiteral{span: span, Value: v}
}
func NewExprList(span source.Span, elems []Expr) ExprList {
	return ExprList{span: span, Elements: elems}
}
func NewExprUnit(span source.Span) ExprUnit                   { return ExprUnit{span: span} }
func NewExprErrorRecovery(span source.Span) ExprErrorRecovery { return ExprErrorRecovery{span: span} }
func NewExprVariable(span source.Span, name symtab.Identifier, ty ast.Ty) ExprVariable {
	return ExprVariable{span: span, Name: name, Ty: ty}
}
func NewExprIntrinsic(span source.Span, kind ast.IntrinsicKind, args []Expr) ExprIntrinsic {
	return ExprIntrinsic{span: span, Kind: kind, Args: args}
}
func NewExprFunctionCall(span source.Span, fn ids.FunctionID, args []Expr) ExprFunctionCall {
	return ExprFunctionCall{span: span, Function: fn, Args: args}
}
func NewExprTypeConstructor(span source.Span, ty ids.TypeID, args []Expr) ExprTypeConstructor {
	return ExprTypeConstructor{span: span, Type: ty, Args: args}
}
func NewExprWithBindings(span source.Span, bindings []Binding, body Expr) ExprWithBindings {
	return ExprWithBindings{span: span, Bindings: bindings, Body: body}
}
func NewExprIf(span source.Span, cond, then, els Expr) ExprIf {
	return ExprIf{span: span, Cond: cond, Then: then, Else: els}
}

func (e ExprLiteral) Span() source.Span         { return e.span }
func (e ExprList) Span() source.Span            { return e.span }
func (e ExprUnit) Span() source.Span            { return e.span }
func (e ExprErrorRecovery) Span() source.Span   { return e.span }
func (e ExprVariable) Span() source.Span        { return e.span }
func (e ExprIntrinsic) Span() source.Span       { return e.span }
func (e ExprFunctionCall) Span() source.Span    { return e.span }
func (e ExprTypeConstructor) Span() source.Span { return e.span }
func (e ExprWithBindings) Span() source.Span    { return e.span }
func (e ExprIf) Span() source.Span              { return e.span }

func (ExprLiteral) isExpr()         {}
func (ExprList) isExpr()            {}
func (ExprUnit) isExpr()            {}
func (ExprErrorRecovery) isExpr()   {}
func (ExprVariable) isExpr()        {}
func (ExprIntrinsic) isExpr()       {}
func (ExprFunctionCall) isExpr()    {}
func (ExprTypeConstructor) isExpr() {}
func (ExprWithBindings) isExpr()    {}
func (ExprIf) isExpr()              {}
