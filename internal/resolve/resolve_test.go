package resolve_test

import (
	"testing"

	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/binder"
	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/lexer"
	"github.com/sunholo/petrc/internal/parser"
	"github.com/sunholo/petrc/internal/resolve"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

func resolveSource(t *testing.T, text string) (*resolve.Items, *symtab.Interner) {
	t.Helper()
	m := source.NewMap()
	id := m.Add("test", text)
	interner := symtab.NewInterner()
	l := lexer.New([]source.ID{id}, []string{text})
	p := parser.New(l, interner)
	tree, order := parser.ParseProgram(p, []parser.ModuleName{{Source: id, Path: "test"}})
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	b := binder.FromAst(tree, order, interner)
	return resolve.Resolve(b, interner, order), interner
}

func findFunction(t *testing.T, items *resolve.Items, interner *symtab.Interner, name string) (ids.FunctionID, *resolve.Function) {
	t.Helper()
	sym, ok := interner.Lookup(name)
	if !ok {
		t.Fatalf("%q was never interned", name)
	}
	var found *resolve.Function
	var foundID ids.FunctionID
	items.EachFunction(func(id ids.FunctionID, fn *resolve.Function) {
		if fn.Name.Name == sym {
			found, foundID = fn, id
		}
	})
	if found == nil {
		t.Fatalf("function %q not resolved", name)
	}
	return foundID, found
}

func TestResolveParameterReference(t *testing.T) {
	items, interner := resolveSource(t, "function id(x in 'int) returns 'int x")
	if len(items.Reports) != 0 {
		t.Fatalf("unexpected reports: %v", items.Reports)
	}
	_, fn := findFunction(t, items, interner, "id")
	v, ok := fn.Body.(resolve.ExprVariable)
	if !ok {
		t.Fatalf("body = %T, want ExprVariable", fn.Body)
	}
	if v.Ty == nil {
		t.Fatalf("parameter reference should carry its declared type")
	}
}

func TestResolveUnresolvedIdentifier(t *testing.T) {
	items, _ := resolveSource(t, "function broken() returns 'int nope")
	if len(items.Reports) != 1 || items.Reports[0].Code != diag.RES001 {
		t.Fatalf("reports = %v, want one RES001", items.Reports)
	}
	var body resolve.Expr
	items.EachFunction(func(id ids.FunctionID, fn *resolve.Function) { body = fn.Body })
	if _, ok := body.(resolve.ExprErrorRecovery); !ok {
		t.Fatalf("body = %T, want ExprErrorRecovery", body)
	}
}

func TestResolveOperatorDesugarsToIntrinsic(t *testing.T) {
	items, interner := resolveSource(t, "function add(a in 'int, b in 'int) returns 'int + a b")
	_, fn := findFunction(t, items, interner, "add")
	intr, ok := fn.Body.(resolve.ExprIntrinsic)
	if !ok {
		t.Fatalf("body = %T, want ExprIntrinsic", fn.Body)
	}
	if intr.Kind != ast.IntrinsicAdd {
		t.Fatalf("kind = %v, want IntrinsicAdd", intr.Kind)
	}
	if len(intr.Args) != 2 {
		t.Fatalf("args = %d, want 2", len(intr.Args))
	}
}

func TestResolveFunctionCall(t *testing.T) {
	items, interner := resolveSource(t, `function id(x in 'int) returns 'int x
function caller() returns 'int ~id 5`)
	if len(items.Reports) != 0 {
		t.Fatalf("unexpected reports: %v", items.Reports)
	}
	idID, _ := findFunction(t, items, interner, "id")
	_, caller := findFunction(t, items, interner, "caller")
	call, ok := caller.Body.(resolve.ExprFunctionCall)
	if !ok {
		t.Fatalf("body = %T, want ExprFunctionCall", caller.Body)
	}
	if call.Function != idID {
		t.Fatalf("call resolved to %d, want %d", call.Function, idID)
	}
}

func TestResolveVariantConstructorCall(t *testing.T) {
	items, interner := resolveSource(t, `type Shape = Circle 'int | Square 'int
function c() returns 'Shape ~Circle 3`)
	if len(items.Reports) != 0 {
		t.Fatalf("unexpected reports: %v", items.Reports)
	}
	_, c := findFunction(t, items, interner, "c")
	call, ok := c.Body.(resolve.ExprFunctionCall)
	if !ok {
		t.Fatalf("body = %T, want ExprFunctionCall", c.Body)
	}
	ctor := items.GetFunction(call.Function)
	if _, ok := ctor.Body.(resolve.ExprTypeConstructor); !ok {
		t.Fatalf("constructor body = %T, want ExprTypeConstructor", ctor.Body)
	}
}

func TestResolveLiteralRefinedConstructorCall(t *testing.T) {
	items, interner := resolveSource(t, `type OneOrTwo = 1 | 2
function main() returns 'OneOrTwo ~OneOrTwo 1`)
	if len(items.Reports) != 0 {
		t.Fatalf("unexpected reports: %v", items.Reports)
	}
	_, mainFn := findFunction(t, items, interner, "main")
	call, ok := mainFn.Body.(resolve.ExprFunctionCall)
	if !ok {
		t.Fatalf("body = %T, want ExprFunctionCall", mainFn.Body)
	}
	ctor := items.GetFunction(call.Function)
	if len(ctor.Params) != 1 {
		t.Fatalf("literal-refined constructor should take one argument, got %d", len(ctor.Params))
	}
	if _, ok := ctor.Params[0].Ty.(ast.TySum); !ok {
		t.Fatalf("constructor parameter should be a sum of the literals, got %T", ctor.Params[0].Ty)
	}
}

func TestResolveConstantLiteralTypes(t *testing.T) {
	items, _ := resolveSource(t, "type OneOrTwo = 1 | 2")
	var ty *resolve.Type
	items.EachType(func(id ids.TypeID, t2 *resolve.Type) { ty = t2 })
	if ty == nil {
		t.Fatalf("type not resolved")
	}
	if len(ty.ConstantLiteralTypes) != 2 {
		t.Fatalf("ConstantLiteralTypes = %d, want 2", len(ty.ConstantLiteralTypes))
	}
	if len(ty.Variants) != 0 {
		t.Fatalf("literal alternatives must not appear as named variants")
	}
}

func TestResolveLetBindingsShadowInOrder(t *testing.T) {
	items, interner := resolveSource(t, "function f(x in 'int) returns 'int let a = x, b = a, b")
	if len(items.Reports) != 0 {
		t.Fatalf("unexpected reports: %v", items.Reports)
	}
	_, fn := findFunction(t, items, interner, "f")
	let, ok := fn.Body.(resolve.ExprWithBindings)
	if !ok {
		t.Fatalf("body = %T, want ExprWithBindings", fn.Body)
	}
	if len(let.Bindings) != 2 {
		t.Fatalf("bindings = %d, want 2", len(let.Bindings))
	}
	// b's RHS must be a local reference to a (no declared type).
	rhs, ok := let.Bindings[1].Expr.(resolve.ExprVariable)
	if !ok {
		t.Fatalf("second binding RHS = %T, want ExprVariable", let.Bindings[1].Expr)
	}
	if rhs.Ty != nil {
		t.Fatalf("let-bound reference must carry no declared type")
	}
}

func TestResolveImportSplicesExports(t *testing.T) {
	m := source.NewMap()
	textLib := "export function helper() returns 'int 1"
	textApp := "import lib\nfunction main() returns 'int ~helper()"
	idLib := m.Add("lib.petr", textLib)
	idApp := m.Add("app.petr", textApp)
	interner := symtab.NewInterner()
	l := lexer.New([]source.ID{idLib, idApp}, []string{textLib, textApp})
	p := parser.New(l, interner)
	tree, order := parser.ParseProgram(p, []parser.ModuleName{
		{Source: idLib, Path: "lib"},
		{Source: idApp, Path: "app"},
	})
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	b := binder.FromAst(tree, order, interner)
	items := resolve.Resolve(b, interner, order)
	if len(items.Reports) != 0 {
		t.Fatalf("unexpected reports: %v", items.Reports)
	}
	_, mainFn := findFunction(t, items, interner, "main")
	if _, ok := mainFn.Body.(resolve.ExprFunctionCall); !ok {
		t.Fatalf("imported helper did not resolve: body = %T", mainFn.Body)
	}
}
