package ast

import (
	"testing"

	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

func TestLiteralEqual(t *testing.T) {
	a := Int(5)
	b := Int(5)
	c := Int(6)
	if !a.Equal(b) {
		t.Fatalf("expected %v to equal %v", a, b)
	}
	if a.Equal(c) {
		t.Fatalf("did not expect %v to equal %v", a, c)
	}
	if Int(5).Equal(Bool(true)) {
		t.Fatalf("literals of different kinds must never be equal")
	}
}

func TestLiteralString(t *testing.T) {
	if Int(42).String() != "42" {
		t.Errorf("Int(42).String() = %q", Int(42).String())
	}
	if Bool(true).String() != "true" {
		t.Errorf("Bool(true).String() = %q", Bool(true).String())
	}
	if Str("hi").String() != `"hi"` {
		t.Errorf("Str(%q).String() = %q", "hi", Str("hi").String())
	}
}

func TestIntrinsicLookupRoundTrips(t *testing.T) {
	for _, name := range []string{"puts", "add", "subtract", "multiply", "divide", "malloc", "size_of", "equal"} {
		kind, ok := LookupIntrinsic(name)
		if !ok {
			t.Fatalf("LookupIntrinsic(%q) not found", name)
		}
		if kind.String() != "@"+name {
			t.Errorf("IntrinsicKind(%q).String() = %q", name, kind.String())
		}
	}
	if _, ok := LookupIntrinsic("nope"); ok {
		t.Fatalf("LookupIntrinsic(%q) unexpectedly found", "nope")
	}
}

func TestExpressionSpansAndTagging(t *testing.T) {
	m := source.NewMap()
	id := m.Add("test", "x")
	sp := source.NewSpan(id, 0, 1)
	interner := symtab.NewInterner()
	name := symtab.Identifier{Name: interner.Insert("x"), Span: sp}

	var exprs []Expression = []Expression{
		NewExprLiteral(sp, Int(1)),
		NewExprVariable(sp, name),
		NewExprOperator(sp, OpAdd, NewExprLiteral(sp, Int(1)), NewExprLiteral(sp, Int(2))),
	}
	for _, e := range exprs {
		if e.Span() != sp {
			t.Errorf("expression span mismatch: got %v, want %v", e.Span(), sp)
		}
	}
}

func TestFunctionDeclAndTypeDeclAreAstNodes(t *testing.T) {
	m := source.NewMap()
	id := m.Add("test", "function f() returns 'int 1")
	sp := source.NewSpan(id, 0, 1)
	interner := symtab.NewInterner()
	name := symtab.Identifier{Name: interner.Insert("f"), Span: sp}

	fd := NewFunctionDecl(sp, name, nil, NewTyInt(sp), NewExprLiteral(sp, Int(1)), true)
	td := NewTypeDecl(sp, name, nil, false)

	var nodes []AstNode = []AstNode{fd, td}
	for _, n := range nodes {
		if n.Span() != sp {
			t.Errorf("node span mismatch")
		}
	}
}
