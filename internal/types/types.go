// Package types defines the canonical type representation used after name
// resolution, and the TypeContext that owns the type slot arena and the
// constraint list the solver consumes: a Type interface with one small
// struct per variant, each carrying an Equals method, dispatched by type
// switch downstream.
package types

import (
	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

// TypeVariable indexes one slot of the Context's type arena. Every
// expression, parameter, and declared return type is assigned exactly one.
type TypeVariable = ids.TypeVariable

// Type is the canonical type form after resolution. Variants: TUnit, TInt,
// TBool, TString, TRef, TUserDefined, TArrow, TList, TInfer, TSum, TLiteral,
// TErrorRecovery.
type Type interface {
	Equals(other Type) bool
	isType()
}

// TUnit is the unit type, also the type of an empty list literal.
type TUnit struct{}

// TInt is the primitive integer type.
type TInt struct{}

// TBool is the primitive boolean type.
type TBool struct{}

// TString is the primitive string type.
type TString struct{}

// TRef is a forwarding pointer to another slot. The solver writes these when
// it identifies two slots; following refs must always terminate.
type TRef struct {
	Var TypeVariable
}

// TypeVariant is one alternative of a user-defined sum type, its fields
// already assigned slots.
type TypeVariant struct {
	Fields []TypeVariable
}

// TUserDefined is a declared nominal type: named variants plus any literal
// alternatives declared for it (the `1 | 2` of `type OneOrTwo = 1 | 2`).
// Decl identifies the declaration; two user-defined types are equal iff they
// are the same declaration.
type TUserDefined struct {
	Name                 symtab.ID
	Decl                 ids.TypeID
	Variants             []TypeVariant
	ConstantLiteralTypes []ast.Literal
}

// TArrow is a function type: parameter slots followed by the return slot. A
// single-element arrow collapses to its element at construction sites, so a
// TArrow always has at least two entries.
type TArrow struct {
	Tys []TypeVariable
}

// TList is a homogeneous list of its element slot's type.
type TList struct {
	Elem TypeVariable
}

// TInfer is an unsolved inference slot: a generic parameter or an
// as-yet-unconstrained expression. Only the solver ever rewrites one.
type TInfer struct {
	ID   int
	Span source.Span
}

// TSum is a structural union of member types, in first-seen order. Members
// are type values rather than slots because sums are built and compared
// wholesale by the solver.
type TSum struct {
	Members []Type
}

// TLiteral is a singleton type inhabited by exactly one constant.
type TLiteral struct {
	Value ast.Literal
}

// TErrorRecovery is the absorbing error sentinel: it unifies and satisfies
// with anything silently so one upstream failure cannot cascade.
type TErrorRecovery struct{}

func (TUnit) isType()          {}
func (TInt) isType()           {}
func (TBool) isType()          {}
func (TString) isType()        {}
func (TRef) isType()           {}
func (TUserDefined) isType()   {}
func (TArrow) isType()         {}
func (TList) isType()          {}
func (TInfer) isType()         {}
func (TSum) isType()           {}
func (TLiteral) isType()       {}
func (TErrorRecovery) isType() {}

func (TUnit) Equals(other Type) bool   { _, ok := other.(TUnit); return ok }
func (TInt) Equals(other Type) bool    { _, ok := other.(TInt); return ok }
func (TBool) Equals(other Type) bool   { _, ok := other.(TBool); return ok }
func (TString) Equals(other Type) bool { _, ok := other.(TString); return ok }

func (t TRef) Equals(other Type) bool {
	o, ok := other.(TRef)
	return ok && t.Var == o.Var
}

func (t TUserDefined) Equals(other Type) bool {
	o, ok := other.(TUserDefined)
	return ok && t.Decl == o.Decl
}

func (t TArrow) Equals(other Type) bool {
	o, ok := other.(TArrow)
	if !ok || len(t.Tys) != len(o.Tys) {
		return false
	}
	for i, v := range t.Tys {
		if v != o.Tys[i] {
			return false
		}
	}
	return true
}

func (t TList) Equals(other Type) bool {
	o, ok := other.(TList)
	return ok && t.Elem == o.Elem
}

func (t TInfer) Equals(other Type) bool {
	o, ok := other.(TInfer)
	return ok && t.ID == o.ID
}

func (t TSum) Equals(other Type) bool {
	o, ok := other.(TSum)
	if !ok || len(t.Members) != len(o.Members) {
		return false
	}
	for i, m := range t.Members {
		if !m.Equals(o.Members[i]) {
			return false
		}
	}
	return true
}

func (t TLiteral) Equals(other Type) bool {
	o, ok := other.(TLiteral)
	return ok && t.Value.Equal(o.Value)
}

func (TErrorRecovery) Equals(other Type) bool {
	_, ok := other.(TErrorRecovery)
	return ok
}

// IsPrimitive reports whether t is one of the three literal-carrier
// primitives of the generalization lattice.
func IsPrimitive(t Type) bool {
	switch t.(type) {
	case TInt, TBool, TString:
		return true
	default:
		return false
	}
}

// CarrierMatches reports whether literal l belongs to primitive prim: an
// integer literal to TInt, and so on.
func CarrierMatches(prim Type, l ast.Literal) bool {
	switch prim.(type) {
	case TInt:
		return l.Kind == ast.LiteralInteger
	case TBool:
		return l.Kind == ast.LiteralBoolean
	case TString:
		return l.Kind == ast.LiteralString
	default:
		return false
	}
}

// Generalizes reports whether general subsumes every member of members: a
// primitive generalizes any multiset of its own literals, and a sum
// generalizes a member set contained in it.
func Generalizes(general Type, members []Type) bool {
	switch g := general.(type) {
	case TInt, TBool, TString:
		for _, m := range members {
			lit, ok := m.(TLiteral)
			if !ok || !CarrierMatches(general, lit.Value) {
				return false
			}
		}
		return true
	case TSum:
		for _, m := range members {
			found := false
			for _, a := range g.Members {
				if a.Equals(m) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return false
	}
}
