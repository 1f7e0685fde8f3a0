package binder_test

import (
	"testing"

	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/binder"
	"github.com/sunholo/petrc/internal/lexer"
	"github.com/sunholo/petrc/internal/parser"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

func parseSingle(t *testing.T, text string) (*ast.Ast, *symtab.Interner) {
	t.Helper()
	m := source.NewMap()
	id := m.Add("test", text)
	interner := symtab.NewInterner()
	l := lexer.New([]source.ID{id}, []string{text})
	p := parser.New(l, interner)
	mod := parser.ParseModule(p, nil)
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	return &ast.Ast{Modules: map[string]*ast.Module{"test": mod}}, interner
}

func TestBindFunctionDeclCreatesParamScope(t *testing.T) {
	tree, interner := parseSingle(t, "function add(a in 'int, b in 'int) returns 'int + a b")
	b := binder.FromAst(tree, []string{"test"}, interner)

	moduleID, ok := b.ModuleByPath("test")
	if !ok {
		t.Fatalf("expected module 'test' to be bound")
	}
	mod := b.GetModule(moduleID)

	addSym, ok := interner.Lookup("add")
	if !ok {
		t.Fatalf("expected 'add' to be interned")
	}
	item, ok := b.FindSymbolInScope(addSym, mod.RootScope)
	if !ok {
		t.Fatalf("expected 'add' to resolve in root scope")
	}
	fnItem, ok := item.(binder.ItemFunction)
	if !ok {
		t.Fatalf("expected ItemFunction, got %T", item)
	}

	aSym, _ := interner.Lookup("a")
	paramItem, ok := b.FindSymbolInScope(aSym, fnItem.BodyScope)
	if !ok {
		t.Fatalf("expected parameter 'a' to resolve in function body scope")
	}
	if _, ok := paramItem.(binder.ItemFunctionParameter); !ok {
		t.Fatalf("expected ItemFunctionParameter, got %T", paramItem)
	}
}

func TestBindTypeDeclSynthesizesConstructors(t *testing.T) {
	tree, interner := parseSingle(t, "type Bool2 = True, False")
	b := binder.FromAst(tree, []string{"test"}, interner)
	moduleID, _ := b.ModuleByPath("test")
	mod := b.GetModule(moduleID)

	trueSym, ok := interner.Lookup("True")
	if !ok {
		t.Fatalf("expected 'True' to be interned")
	}
	item, ok := b.FindSymbolInScope(trueSym, mod.RootScope)
	if !ok {
		t.Fatalf("expected 'True' to resolve as a constructor function")
	}
	fnItem, ok := item.(binder.ItemFunction)
	if !ok {
		t.Fatalf("expected ItemFunction for variant constructor, got %T", item)
	}
	decl := b.GetFunction(fnItem.Function)
	if _, ok := decl.Body.(ast.ExprTypeConstructor); !ok {
		t.Fatalf("expected synthesized body to be ExprTypeConstructor, got %T", decl.Body)
	}
}

func TestBindLiteralRefinedTypeSynthesizesConstructor(t *testing.T) {
	tree, interner := parseSingle(t, "type OneOrTwo = 1 | 2")
	b := binder.FromAst(tree, []string{"test"}, interner)
	moduleID, _ := b.ModuleByPath("test")
	mod := b.GetModule(moduleID)

	sym, ok := interner.Lookup("OneOrTwo")
	if !ok {
		t.Fatalf("expected 'OneOrTwo' to be interned")
	}
	item, ok := b.FindSymbolInScope(sym, mod.RootScope)
	if !ok {
		t.Fatalf("expected 'OneOrTwo' to resolve")
	}
	tyItem, ok := item.(binder.ItemType)
	if !ok {
		t.Fatalf("expected ItemType, got %T", item)
	}
	if !tyItem.HasConstructor {
		t.Fatalf("literal-refined type must carry a constructor")
	}
	ctor := b.GetFunction(tyItem.Constructor)
	if len(ctor.Params) != 1 {
		t.Fatalf("constructor params = %d, want 1", len(ctor.Params))
	}
	if _, ok := ctor.Params[0].Ty.(ast.TySum); !ok {
		t.Fatalf("constructor param type = %T, want TySum", ctor.Params[0].Ty)
	}
}

func TestBindFunctionBodyScopeRecorded(t *testing.T) {
	tree, interner := parseSingle(t, "function f(x in 'int) returns 'int x")
	b := binder.FromAst(tree, []string{"test"}, interner)
	moduleID, _ := b.ModuleByPath("test")
	mod := b.GetModule(moduleID)

	sym, _ := interner.Lookup("f")
	item, _ := b.FindSymbolInScope(sym, mod.RootScope)
	fnItem := item.(binder.ItemFunction)
	if b.FunctionBodyScope(fnItem.Function) != fnItem.BodyScope {
		t.Fatalf("FunctionBodyScope disagrees with the scope item")
	}
}

func TestBindUnexportedDeclNotInExports(t *testing.T) {
	tree, interner := parseSingle(t, "function helper() returns 'unit 1")
	b := binder.FromAst(tree, []string{"test"}, interner)
	moduleID, _ := b.ModuleByPath("test")
	mod := b.GetModule(moduleID)
	if len(mod.Exports) != 0 {
		t.Fatalf("expected no exports, got %d", len(mod.Exports))
	}
}

func TestBindExportedDeclInExports(t *testing.T) {
	tree, interner := parseSingle(t, "export function helper() returns 'unit 1")
	b := binder.FromAst(tree, []string{"test"}, interner)
	moduleID, _ := b.ModuleByPath("test")
	mod := b.GetModule(moduleID)
	sym, _ := interner.Lookup("helper")
	if _, ok := mod.Exports[sym]; !ok {
		t.Fatalf("expected 'helper' to be exported")
	}
}
