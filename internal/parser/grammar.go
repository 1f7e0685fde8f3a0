package parser

import (
	"strconv"

	"github.com/sunholo/petrc/internal/ast"
	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/lexer"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

// ModuleName pairs a registered source file with the dotted module path it
// declares. compile derives these from the source file names.
type ModuleName struct {
	Source source.ID
	Path   string
}

// ParseModule parses every top-level declaration in one source file into a
// single ast.Module.
func ParseModule(p *Parser, path []symtab.Identifier) *ast.Module {
	nodes := Many(p, parseTopLevel)
	return &ast.Module{Path: path, Nodes: nodes}
}

// ParseProgram parses the whole token stream -- which may span several source
// files -- into one Ast, assigning each top-level declaration to the module of
// the source file its first token came from. Every named source gets a module
// even if no declaration landed in it. Returns the Ast together with module
// paths in input order, which is the order the binder must process them in.
func ParseProgram(p *Parser, names []ModuleName) (*ast.Ast, []string) {
	tree := &ast.Ast{Modules: make(map[string]*ast.Module)}
	var order []string
	byID := make(map[source.ID]string, len(names))
	for _, n := range names {
		byID[n.Source] = n.Path
		pathIdent := symtab.Identifier{Name: p.Intern(n.Path)}
		tree.Modules[n.Path] = &ast.Module{Path: []symtab.Identifier{pathIdent}}
		order = append(order, n.Path)
	}
	nodes := Many(p, parseTopLevel)
	for _, node := range nodes {
		path, ok := byID[node.Node.Span().Source()]
		if !ok {
			continue
		}
		mod := tree.Modules[path]
		mod.Nodes = append(mod.Nodes, node)
	}
	if tok := p.Peek(); tok.Item().Type != lexer.EOF {
		p.pushReport(p.Span(), diag.PAR002,
			"expected a declaration, found "+tok.Item().Type.String())
	}
	return tree, order
}

func parseTopLevel(p *Parser) (ast.Commented[ast.AstNode], bool) {
	comments := commentTexts(p.Comments())
	exported := false
	if _, ok := p.TryToken(lexer.EXPORT); ok {
		exported = true
	}
	switch p.Peek().Item().Type {
	case lexer.FUNCTION_LOWER, lexer.FUNCTION_UPPER:
		decl, ok := parseFunctionDecl(p, exported)
		if !ok {
			return ast.Commented[ast.AstNode]{}, false
		}
		return ast.Commented[ast.AstNode]{Comments: comments, Node: decl}, true
	case lexer.TYPE:
		decl, ok := parseTypeDecl(p, exported)
		if !ok {
			return ast.Commented[ast.AstNode]{}, false
		}
		return ast.Commented[ast.AstNode]{Comments: comments, Node: decl}, true
	case lexer.IMPORT:
		decl, ok := parseImport(p)
		if !ok {
			return ast.Commented[ast.AstNode]{}, false
		}
		return ast.Commented[ast.AstNode]{Comments: comments, Node: decl}, true
	default:
		return ast.Commented[ast.AstNode]{}, false
	}
}

func commentTexts(items []source.SpannedItem[string]) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Item()
	}
	return out
}

// parseIdentifier requires an IDENT token next, interning its text.
func parseIdentifier(p *Parser) (symtab.Identifier, bool) {
	tok := p.Peek()
	if tok.Item().Type != lexer.IDENT {
		p.pushReport(p.Span(), diag.PAR002, "expected identifier, found "+tok.Item().Type.String())
		return symtab.Identifier{}, false
	}
	tok = p.Advance()
	return symtab.Identifier{Name: p.Intern(tok.Item().Literal), Span: tok.Span()}, true
}

// parseFunctionDecl parses `function name(params) returns 'ty body`. A
// capitalized `Function` keyword is equivalent to prefixing the declaration
// with `export`.
func parseFunctionDecl(p *Parser, exported bool) (*ast.FunctionDecl, bool) {
	return WithHelp2(p, "function declaration", func(p *Parser) (*ast.FunctionDecl, bool) {
		start, ok := p.OneOf(lexer.FUNCTION_LOWER, lexer.FUNCTION_UPPER)
		if !ok {
			return nil, false
		}
		if start.Item().Type == lexer.FUNCTION_UPPER {
			exported = true
		}
		name, ok := parseIdentifier(p)
		if !ok {
			return nil, false
		}
		if _, ok := p.Token(lexer.LPAREN); !ok {
			return nil, false
		}
		params := SequenceZeroOrMore(p, lexer.COMMA, parseFunctionParameter)
		if _, ok := p.Token(lexer.RPAREN); !ok {
			return nil, false
		}
		if _, ok := p.Token(lexer.RETURNS); !ok {
			return nil, false
		}
		retTy, ok := parseTy(p)
		if !ok {
			return nil, false
		}
		body, ok := parseExpression(p)
		if !ok {
			return nil, false
		}
		span := p.joinSpans(start.Span(), body.Span())
		return ast.NewFunctionDecl(span, name, params, retTy, body, exported), true
	})
}

func parseFunctionParameter(p *Parser) (ast.FunctionParameter, bool) {
	name, ok := parseIdentifier(p)
	if !ok {
		return ast.FunctionParameter{}, false
	}
	if _, ok := p.OneOf(lexer.IN, lexer.ELEMENTOF); !ok {
		return ast.FunctionParameter{}, false
	}
	ty, ok := parseTy(p)
	if !ok {
		return ast.FunctionParameter{}, false
	}
	return ast.FunctionParameter{Name: name, Ty: ty}, true
}

// parseTy parses a quoted type reference: 'int, 'bool, 'string, 'unit, a
// generic name, a named user type, or a literal-pinned type. Sum types are
// never written directly in source; they only ever arise from literal
// type-declaration alternatives or from the type checker widening several
// types together, so there is no surface grammar for TySum here.
func parseTy(p *Parser) (ast.Ty, bool) {
	return WithHelp2(p, "type annotation", func(p *Parser) (ast.Ty, bool) {
		quote, ok := p.Token(lexer.QUOTE)
		if !ok {
			return nil, false
		}
		return parseTyAtom(p, quote.Span())
	})
}

func parseTyAtom(p *Parser, quoteSpan source.Span) (ast.Ty, bool) {
	tok := p.Peek()
	switch tok.Item().Type {
	case lexer.IDENT:
		tok = p.Advance()
		span := p.joinSpans(quoteSpan, tok.Span())
		switch tok.Item().Literal {
		case "int":
			return ast.NewTyInt(span), true
		case "bool":
			return ast.NewTyBool(span), true
		case "string":
			return ast.NewTyString(span), true
		case "unit":
			return ast.NewTyUnit(span), true
		default:
			id := symtab.Identifier{Name: p.Intern(tok.Item().Literal), Span: tok.Span()}
			// A single uppercase letter ('A) is a free generic; longer
			// capitalized names refer to declared types.
			if isUpperFirst(tok.Item().Literal) && len(tok.Item().Literal) > 1 {
				return ast.NewTyNamed(span, id), true
			}
			return ast.NewTyGeneric(span, id), true
		}
	case lexer.INT:
		tok = p.Advance()
		n, _ := strconv.ParseInt(tok.Item().Literal, 10, 64)
		return ast.NewTyLiteral(p.joinSpans(quoteSpan, tok.Span()), ast.Int(n)), true
	case lexer.TRUE:
		tok = p.Advance()
		return ast.NewTyLiteral(p.joinSpans(quoteSpan, tok.Span()), ast.Bool(true)), true
	case lexer.FALSE:
		tok = p.Advance()
		return ast.NewTyLiteral(p.joinSpans(quoteSpan, tok.Span()), ast.Bool(false)), true
	default:
		p.pushReport(p.Span(), diag.PAR002, "expected type, found "+tok.Item().Type.String())
		return nil, false
	}
}

func isUpperFirst(s string) bool {
	if s == "" {
		return false
	}
	r := s[0]
	return r >= 'A' && r <= 'Z'
}

// parseTypeDecl parses `type Name = Variant1 | Variant2 | ...`. Variants may
// also be separated by commas; both separators appear in the wild and the
// parser accepts either.
func parseTypeDecl(p *Parser, exported bool) (*ast.TypeDecl, bool) {
	return WithHelp2(p, "type declaration", func(p *Parser) (*ast.TypeDecl, bool) {
		start, ok := p.Token(lexer.TYPE)
		if !ok {
			return nil, false
		}
		name, ok := parseIdentifier(p)
		if !ok {
			return nil, false
		}
		if _, ok := p.Token(lexer.ASSIGN); !ok {
			return nil, false
		}
		var variants []ast.Variant
		for {
			v, ok := WithBacktrack(p, parseVariant)
			if !ok {
				break
			}
			variants = append(variants, v)
			if _, ok := p.TryTokens(lexer.PIPE, lexer.COMMA); !ok {
				break
			}
		}
		if len(variants) == 0 {
			p.pushReport(p.Span(), diag.PAR002, "expected at least one variant in type declaration")
			return nil, false
		}
		span := p.joinSpans(start.Span(), variants[len(variants)-1].Span)
		return ast.NewTypeDecl(span, name, variants, exported), true
	})
}

// parseVariant parses one type-declaration alternative: either a named
// constructor `Name 'ty1 'ty2 ...` or a bare literal (the singleton
// refinement form, e.g. the `1` in `type OneOrTwo = 1 | 2`).
func parseVariant(p *Parser) (ast.Variant, bool) {
	tok := p.Peek()
	switch tok.Item().Type {
	case lexer.INT:
		tok = p.Advance()
		n, _ := strconv.ParseInt(tok.Item().Literal, 10, 64)
		lit := ast.Int(n)
		return ast.Variant{Span: tok.Span(), Literal: &lit}, true
	case lexer.STRING:
		tok = p.Advance()
		lit := ast.Str(tok.Item().Literal)
		return ast.Variant{Span: tok.Span(), Literal: &lit}, true
	case lexer.TRUE:
		tok = p.Advance()
		lit := ast.Bool(true)
		return ast.Variant{Span: tok.Span(), Literal: &lit}, true
	case lexer.FALSE:
		tok = p.Advance()
		lit := ast.Bool(false)
		return ast.Variant{Span: tok.Span(), Literal: &lit}, true
	}
	name, ok := parseIdentifier(p)
	if !ok {
		return ast.Variant{}, false
	}
	var fields []ast.Ty
	last := name.Span
	for p.Peek().Item().Type == lexer.QUOTE {
		ty, ok := parseTy(p)
		if !ok {
			break
		}
		fields = append(fields, ty)
		last = ty.Span()
	}
	return ast.Variant{Span: p.joinSpans(name.Span, last), Name: name, Fields: fields}, true
}

// parseImport parses `import name [as alias]`. The token set has no
// path-separator token, so an import names exactly one module by a single
// identifier; Path is kept as a slice for symmetry with FunctionCall's path
// but the parser always produces a one-element slice.
func parseImport(p *Parser) (*ast.Import, bool) {
	return WithHelp2(p, "import statement", func(p *Parser) (*ast.Import, bool) {
		start, ok := p.Token(lexer.IMPORT)
		if !ok {
			return nil, false
		}
		name, ok := parseIdentifier(p)
		if !ok {
			return nil, false
		}
		last := name.Span
		var alias *symtab.Identifier
		if _, ok := p.TryToken(lexer.AS); ok {
			a, ok := parseIdentifier(p)
			if !ok {
				return nil, false
			}
			alias = &a
			last = a.Span
		}
		span := p.joinSpans(start.Span(), last)
		return ast.NewImport(span, []symtab.Identifier{name}, alias), true
	})
}

// parseExpression is the entry point for any expression context: let
// bindings and if take priority (they are never operands of an arithmetic
// expression), then arithmetic, then atoms.
func parseExpression(p *Parser) (ast.Expression, bool) {
	switch p.Peek().Item().Type {
	case lexer.LET:
		return parseLetBindings(p)
	case lexer.IF:
		return parseIf(p)
	default:
		return parseAdditive(p)
	}
}

func parseLetBindings(p *Parser) (ast.Expression, bool) {
	return WithHelp2(p, "let-binding expression", func(p *Parser) (ast.Expression, bool) {
		start, ok := p.Token(lexer.LET)
		if !ok {
			return nil, false
		}
		exprID := p.NewExprID()
		bindings, ok := Sequence(p, lexer.COMMA, parseBinding)
		if !ok {
			return nil, false
		}
		// In the primary form the body follows the last binding after a
		// comma: `let a = 1, b = 2, body`. Sequence has already consumed
		// that comma and backtracked out of parsing the body as a binding,
		// so the parser now sits on the body itself. An explicit `in`
		// between bindings and body is accepted as well.
		p.TryToken(lexer.IN)
		body, ok := parseExpression(p)
		if !ok {
			return nil, false
		}
		span := p.joinSpans(start.Span(), body.Span())
		return ast.NewExprWithBindings(span, exprID, bindings, body), true
	})
}

func parseBinding(p *Parser) (ast.Binding, bool) {
	name, ok := parseIdentifier(p)
	if !ok {
		return ast.Binding{}, false
	}
	if _, ok := p.Token(lexer.ASSIGN); !ok {
		return ast.Binding{}, false
	}
	expr, ok := parseExpression(p)
	if !ok {
		return ast.Binding{}, false
	}
	return ast.Binding{Name: name, Expr: expr}, true
}

func parseIf(p *Parser) (ast.Expression, bool) {
	return WithHelp2(p, "if expression", func(p *Parser) (ast.Expression, bool) {
		start, ok := p.Token(lexer.IF)
		if !ok {
			return nil, false
		}
		cond, ok := parseExpression(p)
		if !ok {
			return nil, false
		}
		if _, ok := p.Token(lexer.THEN); !ok {
			return nil, false
		}
		then, ok := parseExpression(p)
		if !ok {
			return nil, false
		}
		last := then.Span()
		var els ast.Expression
		if _, ok := p.TryToken(lexer.ELSE); ok {
			e, ok := parseExpression(p)
			if !ok {
				return nil, false
			}
			els = e
			last = e.Span()
		}
		span := p.joinSpans(start.Span(), last)
		return ast.NewExprIf(span, cond, then, els), true
	})
}

var additiveOps = map[lexer.TokenType]ast.Operator{lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSubtract}
var multiplicativeOps = map[lexer.TokenType]ast.Operator{lexer.STAR: ast.OpMultiply, lexer.SLASH: ast.OpDivide}

func parseAdditive(p *Parser) (ast.Expression, bool) {
	lhs, ok := parseMultiplicative(p)
	if !ok {
		return nil, false
	}
	for {
		tok := p.Peek()
		op, ok := additiveOps[tok.Item().Type]
		if !ok {
			break
		}
		p.Advance()
		rhs, ok := parseMultiplicative(p)
		if !ok {
			p.pushReport(p.Span(), diag.PAR005, "expected expression after operator "+tok.Item().Type.String())
			return nil, false
		}
		lhs = ast.NewExprOperator(p.joinSpans(lhs.Span(), rhs.Span()), op, lhs, rhs)
	}
	return lhs, true
}

func parseMultiplicative(p *Parser) (ast.Expression, bool) {
	lhs, ok := parsePrefixOrAtom(p)
	if !ok {
		return nil, false
	}
	for {
		tok := p.Peek()
		op, ok := multiplicativeOps[tok.Item().Type]
		if !ok {
			break
		}
		p.Advance()
		rhs, ok := parsePrefixOrAtom(p)
		if !ok {
			p.pushReport(p.Span(), diag.PAR005, "expected expression after operator "+tok.Item().Type.String())
			return nil, false
		}
		lhs = ast.NewExprOperator(p.joinSpans(lhs.Span(), rhs.Span()), op, lhs, rhs)
	}
	return lhs, true
}

// parsePrefixOrAtom handles the prefix operator form `+ a b` before falling back to a single atom.
func parsePrefixOrAtom(p *Parser) (ast.Expression, bool) {
	tok := p.Peek()
	var op ast.Operator
	var isOp bool
	switch tok.Item().Type {
	case lexer.PLUS:
		op, isOp = ast.OpAdd, true
	case lexer.MINUS:
		op, isOp = ast.OpSubtract, true
	case lexer.STAR:
		op, isOp = ast.OpMultiply, true
	case lexer.SLASH:
		op, isOp = ast.OpDivide, true
	}
	if !isOp {
		return parseAtom(p)
	}
	start := p.Advance()
	lhs, ok := parseAtom(p)
	if !ok {
		return nil, false
	}
	rhs, ok := parseAtom(p)
	if !ok {
		return nil, false
	}
	return ast.NewExprOperator(p.joinSpans(start.Span(), rhs.Span()), op, lhs, rhs), true
}

func parseAtom(p *Parser) (ast.Expression, bool) {
	tok := p.Peek()
	switch tok.Item().Type {
	case lexer.INT:
		tok = p.Advance()
		n, _ := strconv.ParseInt(tok.Item().Literal, 10, 64)
		return ast.NewExprLiteral(tok.Span(), ast.Int(n)), true
	case lexer.STRING:
		tok = p.Advance()
		return ast.NewExprLiteral(tok.Span(), ast.Str(tok.Item().Literal)), true
	case lexer.TRUE:
		tok = p.Advance()
		return ast.NewExprLiteral(tok.Span(), ast.Bool(true)), true
	case lexer.FALSE:
		tok = p.Advance()
		return ast.NewExprLiteral(tok.Span(), ast.Bool(false)), true
	case lexer.LBRACKET:
		return parseList(p)
	case lexer.TILDE:
		return parseFunctionCall(p)
	case lexer.AT:
		return parseIntrinsicCall(p)
	case lexer.LPAREN:
		p.Advance()
		inner, ok := parseExpression(p)
		if !ok {
			return nil, false
		}
		if _, ok := p.Token(lexer.RPAREN); !ok {
			p.pushReport(p.Span(), diag.PAR001, "unmatched parenthesis")
			return nil, false
		}
		return inner, true
	case lexer.IDENT:
		name, ok := parseIdentifier(p)
		if !ok {
			return nil, false
		}
		return ast.NewExprVariable(name.Span, name), true
	default:
		p.pushReport(p.Span(), diag.PAR002, "expected expression, found "+tok.Item().Type.String())
		return nil, false
	}
}

func parseList(p *Parser) (ast.Expression, bool) {
	return WithHelp2(p, "list expression", func(p *Parser) (ast.Expression, bool) {
		start, ok := p.Token(lexer.LBRACKET)
		if !ok {
			return nil, false
		}
		elements := SequenceZeroOrMore(p, lexer.COMMA, parseExpression)
		end, ok := p.Token(lexer.RBRACKET)
		if !ok {
			return nil, false
		}
		return ast.NewExprList(p.joinSpans(start.Span(), end.Span()), elements), true
	})
}

// parseFunctionCall parses `~name arg1 arg2` (juxtaposed args) or
// `~name(arg1, arg2)` (parenthesized, comma-separated).
func parseFunctionCall(p *Parser) (ast.Expression, bool) {
	return WithHelp2(p, "function call", func(p *Parser) (ast.Expression, bool) {
		start, ok := p.Token(lexer.TILDE)
		if !ok {
			return nil, false
		}
		name, ok := parseIdentifier(p)
		if !ok {
			return nil, false
		}
		last := name.Span
		var args []ast.Expression
		if _, ok := p.TryToken(lexer.LPAREN); ok {
			args = SequenceZeroOrMore(p, lexer.COMMA, parseExpression)
			end, ok := p.Token(lexer.RPAREN)
			if !ok {
				return nil, false
			}
			last = end.Span()
		} else {
			for canStartAtom(p.Peek().Item().Type) {
				arg, ok := WithBacktrack(p, parseAtom)
				if !ok {
					break
				}
				args = append(args, arg)
				last = arg.Span()
			}
		}
		span := p.joinSpans(start.Span(), last)
		return ast.NewExprFunctionCall(span, []symtab.Identifier{name}, args), true
	})
}

// parseIntrinsicCall parses `@name arg1 arg2` (juxtaposed args) or
// `@name(arg1, arg2)` (parenthesized, comma-separated), the same two forms
// function calls accept.
func parseIntrinsicCall(p *Parser) (ast.Expression, bool) {
	return WithHelp2(p, "intrinsic call", func(p *Parser) (ast.Expression, bool) {
		start, ok := p.Token(lexer.AT)
		if !ok {
			return nil, false
		}
		nameTok := p.Peek()
		if nameTok.Item().Type != lexer.IDENT {
			p.pushReport(p.Span(), diag.PAR002, "expected intrinsic name, found "+nameTok.Item().Type.String())
			return nil, false
		}
		nameTok = p.Advance()
		kind, ok := ast.LookupIntrinsic(nameTok.Item().Literal)
		if !ok {
			p.pushReport(nameTok.Span(), diag.PAR002, "unknown intrinsic @"+nameTok.Item().Literal)
			return nil, false
		}
		last := nameTok.Span()
		var args []ast.Expression
		if _, ok := p.TryToken(lexer.LPAREN); ok {
			args = SequenceZeroOrMore(p, lexer.COMMA, parseExpression)
			end, ok := p.Token(lexer.RPAREN)
			if !ok {
				return nil, false
			}
			last = end.Span()
		} else {
			for canStartAtom(p.Peek().Item().Type) {
				arg, ok := WithBacktrack(p, parseAtom)
				if !ok {
					break
				}
				args = append(args, arg)
				last = arg.Span()
			}
		}
		span := p.joinSpans(start.Span(), last)
		return ast.NewExprIntrinsicCall(span, kind, args), true
	})
}

func canStartAtom(t lexer.TokenType) bool {
	switch t {
	case lexer.INT, lexer.STRING, lexer.TRUE, lexer.FALSE, lexer.LBRACKET, lexer.TILDE, lexer.AT, lexer.LPAREN, lexer.IDENT:
		return true
	default:
		return false
	}
}
