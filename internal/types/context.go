package types

import (
	"github.com/sunholo/petrc/internal/arena"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

// ConstraintKind distinguishes the two constraint forms.
type ConstraintKind int

const (
	// KindUnify is intended type equality, symmetric in meaning but solved
	// with a bias toward the more specific side.
	KindUnify ConstraintKind = iota
	// KindSatisfies is the asymmetric "B can be used where A is required".
	KindSatisfies
)

func (k ConstraintKind) String() string {
	if k == KindUnify {
		return "unify"
	}
	return "satisfies"
}

// Constraint relates two slots, remembering the source position that
// generated it so solver failures point somewhere useful.
type Constraint struct {
	Kind ConstraintKind
	A, B TypeVariable
	Span source.Span
}

// Context owns the dense slot arena, the ordered constraint list, and the
// sentinel variables. It grows monotonically for the lifetime of one
// compilation.
type Context struct {
	slots       *arena.Arena[TypeVariable, Type]
	constraints []Constraint
	interner    *symtab.Interner

	unit, str, integer, boolean, errorRecovery TypeVariable

	nextInfer int
}

// NewContext creates a Context with its sentinel slots pre-allocated. The
// interner is kept for pretty-printing user-defined type names into
// diagnostics.
func NewContext(interner *symtab.Interner) *Context {
	c := &Context{
		slots:    arena.New[TypeVariable, Type](),
		interner: interner,
	}
	c.unit = c.slots.Insert(TUnit{})
	c.str = c.slots.Insert(TString{})
	c.integer = c.slots.Insert(TInt{})
	c.boolean = c.slots.Insert(TBool{})
	c.errorRecovery = c.slots.Insert(TErrorRecovery{})
	return c
}

// Interner returns the compilation's shared symbol interner.
func (c *Context) Interner() *symtab.Interner { return c.interner }

// NewVariable allocates a fresh slot holding t.
func (c *Context) NewVariable(t Type) TypeVariable { return c.slots.Insert(t) }

// FreshInfer allocates a fresh unsolved inference slot anchored at span.
func (c *Context) FreshInfer(span source.Span) TypeVariable {
	c.nextInfer++
	return c.slots.Insert(TInfer{ID: c.nextInfer, Span: span})
}

// Get reads the type currently stored at v, without following refs.
func (c *Context) Get(v TypeVariable) Type { return c.slots.Get(v) }

// Set rewrites the slot at v in place.
func (c *Context) Set(v TypeVariable, t Type) { c.slots.Set(v, t) }

// Len returns the number of slots allocated so far.
func (c *Context) Len() int { return c.slots.Len() }

// ErrorRecovery returns the shared absorbing error slot.
func (c *Context) ErrorRecovery() TypeVariable { return c.errorRecovery }

// Unit returns the shared unit sentinel. It is safe to hand out because the
// checker only ever uses it as a source of truth to copy from, never as a
// constraint endpoint the solver might rewrite.
func (c *Context) Unit() TypeVariable { return c.unit }

// Unify appends a Unify(a, b) constraint.
func (c *Context) Unify(a, b TypeVariable, span source.Span) {
	c.constraints = append(c.constraints, Constraint{Kind: KindUnify, A: a, B: b, Span: span})
}

// Satisfies appends a Satisfies(a, b) constraint: b may be used where a is
// required.
func (c *Context) Satisfies(a, b TypeVariable, span source.Span) {
	c.constraints = append(c.constraints, Constraint{Kind: KindSatisfies, A: a, B: b, Span: span})
}

// Constraints returns a snapshot copy of the constraint list in insertion
// order. The solver iterates the snapshot because applying rules allocates
// slots but must never observe new constraints.
func (c *Context) Constraints() []Constraint {
	out := make([]Constraint, len(c.constraints))
	copy(out, c.constraints)
	return out
}

// Resolve follows Ref forwarding from v, returning the terminal slot and its
// type. Following is bounded by the slot count: the solver never creates
// ref cycles, but a bug there must not hang the compiler, so a cycle
// degrades to ErrorRecovery.
func (c *Context) Resolve(v TypeVariable) (TypeVariable, Type) {
	for i := 0; i <= c.slots.Len(); i++ {
		t := c.slots.Get(v)
		ref, ok := t.(TRef)
		if !ok {
			return v, t
		}
		v = ref.Var
	}
	return v, TErrorRecovery{}
}
