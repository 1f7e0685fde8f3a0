// Package ids defines the nominal index types shared by the AST, binder,
// resolver, and type checker. They live in their own package so that ast,
// binder, resolve, and types can all reference each other's ids without an
// import cycle.
package ids

// FunctionID indexes the function arena (both binder-recorded declarations
// and resolver-produced ResolvedFunctions share this id space).
type FunctionID int

// TypeID indexes the user-defined type declaration arena.
type TypeID int

// ScopeID indexes the binder's scope tree.
type ScopeID int

// BindingID indexes a let-binding's right-hand-side expression.
type BindingID int

// ModuleID indexes the per-module record (root scope + export table).
type ModuleID int

// ExprID is assigned by the parser to every expression that opens its own
// scope.
type ExprID int

// TypeVariable indexes a slot in the type checker's TypeContext.
type TypeVariable int
