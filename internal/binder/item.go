// Package binder builds the scope tree: it walks a parsed ast.Ast top to
// bottom, recording every declaration into the scope it belongs to and
// synthesizing a constructor function for every named variant of every
// declared sum type (literal alternatives share one constructor under the
// type's own name).
// It does not resolve identifier references -- that is internal/resolve's
// job, walking the scope chain this package builds.
package binder

import (
	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/symtab"
)

// Item is whatever a name can be bound to in a scope.
type Item interface {
	isItem()
}

// ItemBinding is a let-binding's right-hand side.
type ItemBinding struct{ Binding ids.BindingID }

// ItemFunction names a function declaration together with the scope its
// body was bound in (so callers can look up its parameters).
type ItemFunction struct {
	Function ids.FunctionID
	BodyScope ids.ScopeID
}

// ItemType names a user-defined type declaration. Its named variant
// constructors are separately bound as ItemFunctions under their own variant
// names. When the declaration carries literal alternatives (`type OneOrTwo =
// 1 | 2`), the binder additionally synthesizes a constructor under the type's
// own name taking one argument constrained to the sum of those literals;
// Constructor points at it and HasConstructor is set.
type ItemType struct {
	Type           ids.TypeID
	Constructor    ids.FunctionID
	HasConstructor bool
}

// ItemFunctionParameter is a function parameter, holding its declared type
// as written in source.
type ItemFunctionParameter struct{ Ty ast.Ty }

// ItemModule names an entire bound module (used when a dependency's public
// exports are inserted into the root scope under its module name).
type ItemModule struct{ Module ids.ModuleID }

// ItemImport records an import statement pending resolution: the resolver
// looks up Path in the set of known modules and rebinds Alias (or the last
// path segment) to that module's export table.
type ItemImport struct {
	Path  []symtab.Identifier
	Alias *symtab.Identifier
}

func (ItemBinding) isItem()           {}
func (ItemFunction) isItem()          {}
func (ItemType) isItem()              {}
func (ItemFunctionParameter) isItem() {}
func (ItemModule) isItem()            {}
func (ItemImport) isItem()            {}
