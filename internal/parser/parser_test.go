package parser

import (
	"testing"

	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/lexer"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

func newParser(t *testing.T, text string) *Parser {
	t.Helper()
	m := source.NewMap()
	id := m.Add("test", text)
	l := lexer.New([]source.ID{id}, []string{text})
	return New(l, symtab.NewInterner())
}

func TestParseSimpleFunctionDecl(t *testing.T) {
	p := newParser(t, "function add(x in 'int, y in 'int) returns 'int + x y")
	decl, ok := parseFunctionDecl(p, false)
	if !ok {
		t.Fatalf("parseFunctionDecl failed, errors: %v", p.Errors())
	}
	if len(decl.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(decl.Params))
	}
	if _, ok := decl.Body.(ast.ExprOperator); !ok {
		t.Fatalf("expected body to be an operator expression, got %T", decl.Body)
	}
}

func TestParseExportedFunctionDecl(t *testing.T) {
	p := newParser(t, "export function id(x in 'a) returns 'a x")
	node, ok := parseTopLevel(p)
	if !ok {
		t.Fatalf("parseTopLevel failed: %v", p.Errors())
	}
	decl, ok := node.Node.(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", node.Node)
	}
	if !decl.Exported {
		t.Fatalf("expected Exported to be true")
	}
}

func TestParseTypeDecl(t *testing.T) {
	p := newParser(t, "type Bool2 = True, False")
	decl, ok := parseTypeDecl(p, false)
	if !ok {
		t.Fatalf("parseTypeDecl failed: %v", p.Errors())
	}
	if len(decl.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(decl.Variants))
	}
}

func TestParseImportWithAlias(t *testing.T) {
	p := newParser(t, "import mathlib as m")
	imp, ok := parseImport(p)
	if !ok {
		t.Fatalf("parseImport failed: %v", p.Errors())
	}
	if imp.Alias == nil {
		t.Fatalf("expected an alias")
	}
}

func TestParseLetBindingsAndIf(t *testing.T) {
	p := newParser(t, "let a = 1, b = 2 in if true then a else b")
	expr, ok := parseExpression(p)
	if !ok {
		t.Fatalf("parseExpression failed: %v", p.Errors())
	}
	withBindings, ok := expr.(ast.ExprWithBindings)
	if !ok {
		t.Fatalf("expected ExprWithBindings, got %T", expr)
	}
	if len(withBindings.Bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(withBindings.Bindings))
	}
	if _, ok := withBindings.Body.(ast.ExprIf); !ok {
		t.Fatalf("expected body to be an if expression, got %T", withBindings.Body)
	}
}

func TestParseFunctionCallJuxtaposedArgs(t *testing.T) {
	p := newParser(t, "~add 1 2")
	expr, ok := parseExpression(p)
	if !ok {
		t.Fatalf("parseExpression failed: %v", p.Errors())
	}
	call, ok := expr.(ast.ExprFunctionCall)
	if !ok {
		t.Fatalf("expected ExprFunctionCall, got %T", expr)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
}

func TestParseIntrinsicCall(t *testing.T) {
	p := newParser(t, `@puts "hi"`)
	expr, ok := parseExpression(p)
	if !ok {
		t.Fatalf("parseExpression failed: %v", p.Errors())
	}
	call, ok := expr.(ast.ExprIntrinsicCall)
	if !ok {
		t.Fatalf("expected ExprIntrinsicCall, got %T", expr)
	}
	if call.Kind != ast.IntrinsicPuts {
		t.Fatalf("expected IntrinsicPuts, got %v", call.Kind)
	}
}

func TestParseIntrinsicCallParenthesized(t *testing.T) {
	p := newParser(t, "@add(1, 2)")
	expr, ok := parseExpression(p)
	if !ok {
		t.Fatalf("parseExpression failed: %v", p.Errors())
	}
	call, ok := expr.(ast.ExprIntrinsicCall)
	if !ok {
		t.Fatalf("expected ExprIntrinsicCall, got %T", expr)
	}
	if call.Kind != ast.IntrinsicAdd {
		t.Fatalf("expected IntrinsicAdd, got %v", call.Kind)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	p := newParser(t, "1 + 2 * 3")
	expr, ok := parseExpression(p)
	if !ok {
		t.Fatalf("parseExpression failed: %v", p.Errors())
	}
	op, ok := expr.(ast.ExprOperator)
	if !ok {
		t.Fatalf("expected ExprOperator, got %T", expr)
	}
	if op.Operator != ast.OpAdd {
		t.Fatalf("expected top-level operator to be +, got %v", op.Operator)
	}
	rhs, ok := op.Rhs.(ast.ExprOperator)
	if !ok || rhs.Operator != ast.OpMultiply {
		t.Fatalf("expected rhs to be a multiplication, got %#v", op.Rhs)
	}
}

func TestParseUnmatchedParenReportsError(t *testing.T) {
	p := newParser(t, "(1 + 2")
	_, ok := parseExpression(p)
	if ok {
		t.Fatalf("expected parse failure on unmatched parenthesis")
	}
	if len(p.Errors()) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
}

func TestParseCapitalFunctionKeywordExports(t *testing.T) {
	p := newParser(t, "Function id(x in 'a) returns 'a x")
	node, ok := parseTopLevel(p)
	if !ok {
		t.Fatalf("parseTopLevel failed: %v", p.Errors())
	}
	decl := node.Node.(*ast.FunctionDecl)
	if !decl.Exported {
		t.Fatalf("capitalized Function must imply export")
	}
}

func TestParseTypeDeclPipeSeparator(t *testing.T) {
	p := newParser(t, "type Shape = Circle 'int | Square 'int 'int")
	decl, ok := parseTypeDecl(p, false)
	if !ok {
		t.Fatalf("parseTypeDecl failed: %v", p.Errors())
	}
	if len(decl.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(decl.Variants))
	}
	if len(decl.Variants[1].Fields) != 2 {
		t.Fatalf("expected 2 fields on Square, got %d", len(decl.Variants[1].Fields))
	}
}

func TestParseTypeDeclLiteralAlternatives(t *testing.T) {
	p := newParser(t, "type OneOrTwo = 1 | 2")
	decl, ok := parseTypeDecl(p, false)
	if !ok {
		t.Fatalf("parseTypeDecl failed: %v", p.Errors())
	}
	if len(decl.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(decl.Variants))
	}
	for i, v := range decl.Variants {
		if !v.IsLiteral() {
			t.Fatalf("variant %d should be a literal alternative", i)
		}
	}
	if decl.Variants[0].Literal.Integer != 1 || decl.Variants[1].Literal.Integer != 2 {
		t.Fatalf("literal values wrong: %v", decl.Variants)
	}
}

func TestParseLetBodyAfterTrailingComma(t *testing.T) {
	p := newParser(t, "let a = 1, b = 2, a")
	expr, ok := parseExpression(p)
	if !ok {
		t.Fatalf("parseExpression failed: %v", p.Errors())
	}
	withBindings := expr.(ast.ExprWithBindings)
	if len(withBindings.Bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(withBindings.Bindings))
	}
	if _, ok := withBindings.Body.(ast.ExprVariable); !ok {
		t.Fatalf("expected body to be the trailing variable, got %T", withBindings.Body)
	}
	if len(p.Errors()) != 0 {
		t.Fatalf("backtracked body probe must leave no errors, got %v", p.Errors())
	}
}

func TestParseElementOfParameter(t *testing.T) {
	p := newParser(t, "function f(x ∈ 'int) returns 'int x")
	decl, ok := parseFunctionDecl(p, false)
	if !ok {
		t.Fatalf("parseFunctionDecl failed: %v", p.Errors())
	}
	if len(decl.Params) != 1 {
		t.Fatalf("expected 1 param, got %d", len(decl.Params))
	}
}

func TestParseSingleUppercaseLetterIsGeneric(t *testing.T) {
	p := newParser(t, "function id(x in 'A) returns 'A x")
	decl, ok := parseFunctionDecl(p, false)
	if !ok {
		t.Fatalf("parseFunctionDecl failed: %v", p.Errors())
	}
	if _, ok := decl.Params[0].Ty.(ast.TyGeneric); !ok {
		t.Fatalf("'A should parse as a generic, got %T", decl.Params[0].Ty)
	}
	if _, ok := decl.ReturnType.(ast.TyGeneric); !ok {
		t.Fatalf("'A return should parse as a generic, got %T", decl.ReturnType)
	}
}

func TestParseNamedTypeReference(t *testing.T) {
	p := newParser(t, "function f(x in 'Shape) returns 'Shape x")
	decl, ok := parseFunctionDecl(p, false)
	if !ok {
		t.Fatalf("parseFunctionDecl failed: %v", p.Errors())
	}
	if _, ok := decl.Params[0].Ty.(ast.TyNamed); !ok {
		t.Fatalf("'Shape should parse as a named type, got %T", decl.Params[0].Ty)
	}
}

func TestParseProgramAssignsNodesToModules(t *testing.T) {
	m := source.NewMap()
	textA := "function one() returns 'int 1"
	textB := "function two() returns 'int 2"
	idA := m.Add("a.petr", textA)
	idB := m.Add("b.petr", textB)
	l := lexer.New([]source.ID{idA, idB}, []string{textA, textB})
	p := New(l, symtab.NewInterner())

	tree, order := ParseProgram(p, []ModuleName{{Source: idA, Path: "a"}, {Source: idB, Path: "b"}})
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("order = %v", order)
	}
	if len(tree.Modules["a"].Nodes) != 1 || len(tree.Modules["b"].Nodes) != 1 {
		t.Fatalf("nodes not assigned to their source modules: a=%d b=%d",
			len(tree.Modules["a"].Nodes), len(tree.Modules["b"].Nodes))
	}
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
}

func TestWithBacktrackRestoresErrors(t *testing.T) {
	p := newParser(t, "if")
	before := len(p.Errors())
	_, ok := WithBacktrack(p, func(p *Parser) (*ast.FunctionDecl, bool) {
		return parseFunctionDecl(p, false)
	})
	if ok {
		t.Fatalf("expected speculative parse to fail")
	}
	if len(p.Errors()) != before {
		t.Fatalf("backtrack leaked %d errors", len(p.Errors())-before)
	}
	if p.Peek().Item().Type != lexer.IF {
		t.Fatalf("backtrack did not restore the token position")
	}
}

func TestManyStopsAtEof(t *testing.T) {
	p := newParser(t, "function f() returns 'unit 1")
	mod := ParseModule(p, nil)
	if len(mod.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(mod.Nodes))
	}
}
