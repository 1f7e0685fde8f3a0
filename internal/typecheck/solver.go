package typecheck

import (
	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/types"
)

// solve runs the single solving pass: the constraint list is snapshotted
// (rules allocate slots but never append constraints) and each
// constraint is applied in insertion order. Every rewrite updates both
// endpoints at once, which is why no fixpoint iteration is needed.
func (c *Checker) solve() {
	for _, ct := range c.ctx.Constraints() {
		switch ct.Kind {
		case types.KindUnify:
			c.applyUnify(ct.A, ct.B, ct.Span)
		case types.KindSatisfies:
			c.applySatisfies(ct.A, ct.B, ct.Span)
		}
	}
}

func (c *Checker) unificationFailure(a, b types.Type, span source.Span) {
	c.reports = append(c.reports, diag.New(diag.PhaseTypecheck, diag.TYP001,
		"failed to unify "+c.ctx.Pretty(a)+" with "+c.ctx.Pretty(b), span).
		WithData("lhs", c.ctx.Pretty(a)).
		WithData("rhs", c.ctx.Pretty(b)))
}

func (c *Checker) failedToSatisfy(provided, required types.Type, span source.Span) {
	c.reports = append(c.reports, diag.New(diag.PhaseTypecheck, diag.TYP002,
		c.ctx.Pretty(provided)+" does not satisfy "+c.ctx.Pretty(required), span).
		WithData("provided", c.ctx.Pretty(provided)).
		WithData("required", c.ctx.Pretty(required)))
}

// applyUnify implements the Unify rewrite table. v1/v2 are the ref-chased
// endpoints; t1/t2 their current contents.
func (c *Checker) applyUnify(a, b types.TypeVariable, span source.Span) {
	v1, t1 := c.ctx.Resolve(a)
	v2, t2 := c.ctx.Resolve(b)
	if v1 == v2 || t1.Equals(t2) {
		return
	}
	if isErrorRecovery(t1) || isErrorRecovery(t2) {
		return
	}

	i1, infer1 := t1.(types.TInfer)
	i2, infer2 := t2.(types.TInfer)
	s1, sum1 := t1.(types.TSum)
	s2, sum2 := t2.(types.TSum)
	l1, lit1 := t1.(types.TLiteral)
	l2, lit2 := t2.(types.TLiteral)

	switch {
	case infer1 && infer2:
		if i1.ID != i2.ID {
			c.ctx.Set(v2, types.TRef{Var: v1})
		}

	case sum1 && sum2:
		// First-occurrence order, duplicates permitted (DESIGN.md records
		// the no-dedup decision).
		c.ctx.Set(v1, types.TSum{Members: append(append([]types.Type{}, s1.Members...), s2.Members...)})
		c.ctx.Set(v2, types.TRef{Var: v1})

	case sum1:
		c.ctx.Set(v1, types.TSum{Members: append(append([]types.Type{}, s1.Members...), t2)})
		c.ctx.Set(v2, types.TRef{Var: v1})

	case lit1 && lit2:
		// Different constants widen into a two-member sum.
		c.ctx.Set(v1, types.TSum{Members: []types.Type{l1, l2}})
		c.ctx.Set(v2, types.TRef{Var: v1})

	case lit1 && sum2:
		c.ctx.Set(v1, types.TSum{Members: append([]types.Type{l1}, s2.Members...)})
		c.ctx.Set(v2, types.TRef{Var: v1})

	case types.IsPrimitive(t1) && lit2 && types.CarrierMatches(t1, l2.Value):
		// Specialization direction: the literal refines the primitive.
		c.ctx.Set(v1, l2)

	case lit1 && types.IsPrimitive(t2) && types.CarrierMatches(t2, l1.Value):
		c.ctx.Set(v2, l1)

	case infer1:
		c.ctx.Set(v1, t2)

	case infer2:
		c.ctx.Set(v2, t1)

	case sum2:
		// other ⊕ Sum: only allowed when the other side is already a
		// member of the sum; the sum then collapses to it.
		for _, m := range s2.Members {
			if m.Equals(t1) {
				c.ctx.Set(v2, t1)
				return
			}
		}
		c.unificationFailure(t1, t2, span)

	default:
		c.unificationFailure(t1, t2, span)
	}
}

// applySatisfies implements the Satisfies rewrite table: b may be used
// where a is required.
func (c *Checker) applySatisfies(a, b types.TypeVariable, span source.Span) {
	v1, t1 := c.ctx.Resolve(a)
	v2, t2 := c.ctx.Resolve(b)
	if v1 == v2 || t1.Equals(t2) {
		return
	}
	if isErrorRecovery(t1) || isErrorRecovery(t2) {
		return
	}

	_, infer1 := t1.(types.TInfer)
	_, infer2 := t2.(types.TInfer)
	s1, sum1 := t1.(types.TSum)
	s2, sum2 := t2.(types.TSum)
	l1, lit1 := t1.(types.TLiteral)
	l2, lit2 := t2.(types.TLiteral)

	switch {
	case !infer1 && infer2:
		// The required side is fully instantiated; the provided side
		// adopts it.
		c.ctx.Set(v2, types.TRef{Var: v1})

	case infer1:
		// A generic requirement is satisfied by anything; the parent
		// stays general and monomorphization picks up the concrete type.

	case sum1 && sum2:
		var intersection []types.Type
		for _, m := range s1.Members {
			for _, o := range s2.Members {
				if m.Equals(o) {
					intersection = append(intersection, m)
					break
				}
			}
		}
		c.ctx.Set(v2, types.TSum{Members: intersection})

	case sum1:
		// Sum required, concrete provided: fine when the provided type
		// generalizes the whole sum or is one of its members.
		if types.Generalizes(t2, s1.Members) {
			return
		}
		for _, m := range s1.Members {
			if m.Equals(t2) {
				return
			}
		}
		c.failedToSatisfy(t2, t1, span)

	case sum2:
		// Concrete required, sum provided: every member must be covered
		// by the requirement.
		if types.Generalizes(t1, s2.Members) {
			return
		}
		c.failedToSatisfy(t2, t1, span)

	case lit1 && lit2:
		if !l1.Value.Equal(l2.Value) {
			c.failedToSatisfy(t2, t1, span)
		}

	case types.IsPrimitive(t1) && lit2 && types.CarrierMatches(t1, l2.Value):
		// Satisfaction without rewrite: an int literal is usable where an
		// int is required, and the literal keeps its refined type.

	default:
		c.failedToSatisfy(t2, t1, span)
	}
}

func isErrorRecovery(t types.Type) bool {
	_, ok := t.(types.TErrorRecovery)
	return ok
}
