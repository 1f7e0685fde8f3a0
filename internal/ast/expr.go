package ast

import (
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

// Operator is an infix arithmetic or comparison operator, also parseable in
// prefix form (`+ a b`).
type Operator int

const (
	OpAdd Operator = iota
	OpSubtract
	OpMultiply
	OpDivide
)

func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	default:
		return "?"
	}
}

// IntrinsicKind enumerates the '@'-prefixed compiler intrinsics.
type IntrinsicKind int

const (
	IntrinsicPuts IntrinsicKind = iota
	IntrinsicAdd
	IntrinsicSubtract
	IntrinsicMultiply
	IntrinsicDivide
	IntrinsicMalloc
	IntrinsicSizeOf
	IntrinsicEquals
)

var intrinsicNames = map[string]IntrinsicKind{
	"puts":     IntrinsicPuts,
	"add":      IntrinsicAdd,
	"subtract": IntrinsicSubtract,
	"multiply": IntrinsicMultiply,
	"divide":   IntrinsicDivide,
	"malloc":   IntrinsicMalloc,
	"size_of":  IntrinsicSizeOf,
	"equal":    IntrinsicEquals,
}

// LookupIntrinsic maps the bare name following '@' (e.g. "puts" in "@puts")
// to its IntrinsicKind.
func LookupIntrinsic(name string) (IntrinsicKind, bool) {
	k, ok := intrinsicNames[name]
	return k, ok
}

func (k IntrinsicKind) String() string {
	for name, kind := range intrinsicNames {
		if kind == k {
			return "@" + name
		}
	}
	return "@?"
}

// Expression is a node of the surface expression language. It
// embeds a source.Span and dispatches through a Go type switch downstream,
// the same style the binder, resolver, and type checker use throughout.
type Expression interface {
	Span() source.Span
	isExpression()
}

// ExprLiteral is a literal constant used as an expression.
type ExprLiteral struct {
	span  source.Span
	Value Literal
}

// ExprList is a fixed-size list literal, e.g. [1, 2, 3].
type ExprList struct {
	span     source.Span
	Elements []Expression
}

// ExprOperator is an infix or prefix arithmetic application.
type ExprOperator struct {
	span     source.Span
	Operator Operator
	Lhs, Rhs Expression
}

// ExprFunctionCall invokes a user-defined function by path, e.g.
// `~greet "world"`. The parser reads a single identifier after `~`, so the
// path it builds always has exactly one segment.
type ExprFunctionCall struct {
	span source.Span
	Path []symtab.Identifier
	Args []Expression
}

// ExprVariable references a bound identifier (a function parameter or a
// let-binding introduced earlier in the enclosing ExprWithBindings).
type ExprVariable struct {
	span source.Span
	Name symtab.Identifier
}

// ExprIntrinsicCall invokes a compiler intrinsic, e.g. `@add 1 2`.
type ExprIntrinsicCall struct {
	span source.Span
	Kind IntrinsicKind
	Args []Expression
}

// ExprTypeConstructor builds a value of a user-defined sum type's variant.
// The parser never produces this node directly -- it is synthesized by the
// binder as the body of a per-variant constructor function -- but it is
// part of the Expression sum because that synthesized body is itself an
// ordinary AST node living in an ordinary FunctionDecl.
type ExprTypeConstructor struct {
	span source.Span
	Type ids.TypeID
	Args []Expression
}

// Binding is one `name = expr` clause inside a `let` block.
type Binding struct {
	Name symtab.Identifier
	Expr Expression
}

// ExprWithBindings is a `let a = 1, b = 2, <body>` expression: a sequence
// of bindings, each visible to the ones after it and to the body, followed
// by a single body expression whose value the whole thing evaluates to.
// ID is assigned by the parser because the expression opens its own scope.
type ExprWithBindings struct {
	span     source.Span
	ID       ids.ExprID
	Bindings []Binding
	Body     Expression
}

// ExprIf is `if cond then a else b`. Else is optional in source; a missing
// else is left nil and the binder/checker treat the whole expression as
// having type Unit when taken.
type ExprIf struct {
	span            source.Span
	Cond, Then, Else Expression
}

func NewExprLiteral(span source.Span, v Literal) ExprLiteral { return ExprLiteral{span: span, Value: v} }
func NewExprList(span source.Span, elems []Expression) ExprList {
	return ExprList{span: span, Elements: elems}
}
func NewExprOperator(span source.Span, op Operator, lhs, rhs Expression) ExprOperator {
	return ExprOperator{span: span, Operator: op, Lhs: lhs, Rhs: rhs}
}
func NewExprFunctionCall(span source.Span, path []symtab.Identifier, args []Expression) ExprFunctionCall {
	return ExprFunctionCall{span: span, Path: path, Args: args}
}
func NewExprVariable(span source.Span, name symtab.Identifier) ExprVariable {
	return ExprVariable{span: span, Name: name}
}
func NewExprIntrinsicCall(span source.Span, kind IntrinsicKind, args []Expression) ExprIntrinsicCall {
	return ExprIntrinsicCall{span: span, Kind: kind, Args: args}
}
func NewExprTypeConstructor(span source.Span, ty ids.TypeID, args []Expression) ExprTypeConstructor {
	return ExprTypeConstructor{span: span, Type: ty, Args: args}
}
func NewExprWithBindings(span source.Span, id ids.ExprID, bindings []Binding, body Expression) ExprWithBindings {
	return ExprWithBindings{span: span, ID: id, Bindings: bindings, Body: body}
}
func NewExprIf(span source.Span, cond, then, els Expression) ExprIf {
	return ExprIf{span: span, Cond: cond, Then: then, Else: els}
}

func (e ExprLiteral) Span() source.Span         { return e.span }
func (e ExprList) Span() source.Span            { return e.span }
func (e ExprOperator) Span() source.Span        { return e.span }
func (e ExprFunctionCall) Span() source.Span    { return e.span }
func (e ExprVariable) Span() source.Span        { return e.span }
func (e ExprIntrinsicCall) Span() source.Span   { return e.span }
func (e ExprTypeConstructor) Span() source.Span { return e.span }
func (e ExprWithBindings) Span() source.Span    { return e.span }
func (e ExprIf) Span() source.Span              { return e.span }

func (ExprLiteral) isExpression()         {}
func (ExprList) isExpression()            {}
func (ExprOperator) isExpression()        {}
func (ExprFunctionCall) isExpression()    {}
func (ExprVariable) isExpression()        {}
func (ExprIntrinsicCall) isExpression()   {}
func (ExprTypeConstructor) isExpression() {}
func (ExprWithBindings) isExpression()    {}
func (ExprIf) isExpression()              {}
