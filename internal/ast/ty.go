package ast

import (
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

// Ty is a type as written in source: a declared parameter type, return
// type, or a variant field in a `type` declaration. The binder and resolver
// convert Ty into their own resolved type representations; Ty itself never
// changes after parsing.
type Ty interface {
	Span() source.Span
	isTy()
}

type TyInt struct{ span source.Span }
type TyBool struct{ span source.Span }
type TyString struct{ span source.Span }
type TyUnit struct{ span source.Span }

// TyNamed refers to a previously declared user type by name, e.g. 'MyType.
type TyNamed struct {
	span source.Span
	Name symtab.Identifier
}

// TyGeneric refers to a generic/type-variable name introduced by a
// function's own signature, e.g. 'a in `function id(x in 'a) returns 'a x`.
type TyGeneric struct {
	span source.Span
	Name symtab.Identifier
}

// TyLiteral pins a type to one specific constant, e.g. 'true or '1.
type TyLiteral struct {
	span  source.Span
	Value Literal
}

// TySum is a closed union of member types. It has no surface syntax; the
// binder builds it from a type declaration's literal alternatives.
type TySum struct {
	span    source.Span
	Members []Ty
}

func NewTyInt(span source.Span) TyInt       { return TyInt{span: span} }
func NewTyBool(span source.Span) TyBool     { return TyBool{span: span} }
func NewTyString(span source.Span) TyString { return TyString{span: span} }
func NewTyUnit(span source.Span) TyUnit     { return TyUnit{span: span} }

func NewTyNamed(span source.Span, name symtab.Identifier) TyNamed {
	return TyNamed{span: span, Name: name}
}

func NewTyGeneric(span source.Span, name symtab.Identifier) TyGeneric {
	return TyGeneric{span: span, Name: name}
}

func NewTyLiteral(span source.Span, value Literal) TyLiteral {
	return TyLiteral{span: span, Value: value}
}

func NewTySum(span source.Span, members []Ty) TySum {
	return TySum{span: span, Members: members}
}

func (t TyInt) Span() source.Span    { return t.span }
func (t TyBool) Span() source.Span   { return t.span }
func (t TyString) Span() source.Span { return t.span }
func (t TyUnit) Span() source.Span   { return t.span }
func (t TyNamed) Span() source.Span  { return t.span }
func (t TyGeneric) Span() source.Span { return t.span }
func (t TyLiteral) Span() source.Span { return t.span }
func (t TySum) Span() source.Span    { return t.span }

func (TyInt) isTy()     {}
func (TyBool) isTy()    {}
func (TyString) isTy()  {}
func (TyUnit) isTy()    {}
func (TyNamed) isTy()   {}
func (TyGeneric) isTy() {}
func (TyLiteral) isTy() {}
func (TySum) isTy()     {}
