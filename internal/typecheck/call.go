package typecheck

import (
	"strings"

	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/resolve"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
	"github.com/sunholo/petrc/internal/types"
)

// MonoKey identifies one specialization: the callee plus its concrete
// argument types, rendered to a stable string so the pair is usable as a
// map key.
type MonoKey struct {
	Function ids.FunctionID
	Args     string
}

// MonoEntry is one monomorphized specialization.
type MonoEntry struct {
	Key      MonoKey
	ArgTypes []types.Type
	Function *Function
}

// MonoTable holds every specialization produced during checking, in
// first-insertion order. For each key there is at most one entry.
type MonoTable struct {
	entries map[MonoKey]*MonoEntry
	order   []MonoKey
}

// NewMonoTable creates an empty table.
func NewMonoTable() *MonoTable {
	return &MonoTable{entries: map[MonoKey]*MonoEntry{}}
}

// Has reports whether key already has a specialization.
func (m *MonoTable) Has(key MonoKey) bool {
	_, ok := m.entries[key]
	return ok
}

// Get returns the specialization for key, if present.
func (m *MonoTable) Get(key MonoKey) (*MonoEntry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

// Len returns the number of specializations.
func (m *MonoTable) Len() int { return len(m.order) }

// Each visits every entry in insertion order.
func (m *MonoTable) Each(f func(*MonoEntry)) {
	for _, key := range m.order {
		f(m.entries[key])
	}
}

func (m *MonoTable) insert(e *MonoEntry) {
	if _, ok := m.entries[e.Key]; ok {
		return
	}
	m.entries[e.Key] = e
	m.order = append(m.order, e.Key)
}

// renderArgs produces the stable key string for a concrete argument type
// vector.
func (c *Checker) renderArgs(concrete []types.Type) string {
	parts := make([]string, len(concrete))
	for i, t := range concrete {
		parts[i] = c.ctx.Pretty(t)
	}
	return strings.Join(parts, ", ")
}

// checkCall type-checks `f(a0...an)`: arity check,
// Satisfies(param, arg) per argument, then on-demand monomorphization keyed
// by the concrete argument types. The call expression's own type is the
// callee's shared declared-return slot, so polymorphic call sites share the
// same outer type plumbing.
func (c *Checker) checkCall(e resolve.ExprFunctionCall, sig *signature) Expr {
	callee := c.items.GetFunction(e.Function)
	c.ensureFunction(e.Function)
	calleeSig := c.signatures[e.Function]

	if len(e.Args) != len(callee.Params) {
		name := c.ctx.Interner().Get(callee.Name.Name)
		c.reports = append(c.reports, diag.New(diag.PhaseTypecheck, diag.TYP003,
			"function "+name+" takes a different number of arguments than it was given", e.Span()).
			WithData("expected", len(callee.Params)).
			WithData("got", len(e.Args)).
			WithData("function", name))
		return ErrorRecovery{span: e.Span(), ty: c.ctx.ErrorRecovery()}
	}

	args := make([]Expr, len(e.Args))
	concrete := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.checkExpr(a, sig)
		c.ctx.Satisfies(calleeSig.params[i], args[i].Ty(), args[i].Span())
		_, concrete[i] = c.ctx.Resolve(args[i].Ty())
	}

	c.specializeCall(e.Function, concrete, e.Span())
	return FunctionCall{span: e.Span(), Function: e.Function, Args: args, ty: calleeSig.ret}
}

// specializeCall inserts the specialization for (callee, concrete) unless
// one already exists. If the callee's body is still mid-walk (recursion),
// the work is parked on the pending list and completed after every body has
// been checked.
func (c *Checker) specializeCall(callee ids.FunctionID, concrete []types.Type, span source.Span) {
	key := MonoKey{Function: callee, Args: c.renderArgs(concrete)}
	if c.mono.Has(key) {
		return
	}
	typed := c.typed[callee]
	if typed == nil {
		c.pending = append(c.pending, pendingSpec{callee: callee, key: key, concrete: concrete, span: span})
		return
	}
	c.insertSpecialization(key, typed, concrete)
}

// insertSpecialization performs step 6: constrain the
// declared return by the body's type, then clone the declaration with each
// parameter's slot overwritten by a fresh slot holding the concrete
// argument type, rewriting parameter references in the cloned body.
func (c *Checker) insertSpecialization(key MonoKey, typed *Function, concrete []types.Type) {
	sig := c.signatures[key.Function]
	c.ctx.Satisfies(sig.ret, typed.Body.Ty(), typed.Body.Span())

	subst := map[symtab.ID]types.TypeVariable{}
	params := make([]Param, len(typed.Params))
	for i, p := range typed.Params {
		fresh := c.ctx.NewVariable(concrete[i])
		subst[p.Name.Name] = fresh
		params[i] = Param{Name: p.Name, Ty: fresh}
	}
	c.mono.insert(&MonoEntry{
		Key:      key,
		ArgTypes: concrete,
		Function: &Function{
			Name:     typed.Name,
			Params:   params,
			ReturnTy: typed.ReturnTy,
			Body:     substituteParams(typed.Body, subst),
		},
	})
}

// resolvePending completes specializations that were parked because their
// callee was recursive. By the time this runs every function has a typed
// body.
func (c *Checker) resolvePending() {
	for _, p := range c.pending {
		if c.mono.Has(p.key) {
			continue
		}
		typed := c.typed[p.callee]
		if typed == nil {
			c.reportf(p.span, diag.TYP004, "internal error: specialization target was never type-checked")
			continue
		}
		c.insertSpecialization(p.key, typed, p.concrete)
	}
	c.pending = nil
}
