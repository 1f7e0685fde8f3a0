// Package parser implements the recursive-descent, backtracking parser: a
// Parser wraps a Lexer with one token of lookahead, a stack of "help"
// strings rendered into diagnostics as a "while parsing X ↪ expected Y"
// chain, and cheap checkpoint/restore for backtracking.
package parser

import (
	"strings"

	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/ids"
	"github.com/sunholo/petrc/internal/lexer"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/symtab"
)

// Parser turns a token stream into an AST, collecting diag.Reports as it
// goes rather than stopping at the first error.
type Parser struct {
	lexer     *lexer.Lexer
	interner  *symtab.Interner
	peeked    *source.SpannedItem[lexer.Token]
	errors    []*diag.Report
	comments  []source.SpannedItem[string]
	help      []string
	nextExprID ids.ExprID
}

// New creates a Parser over the given lexer, interning identifiers into
// interner (shared across a whole compilation).
func New(l *lexer.Lexer, interner *symtab.Interner) *Parser {
	return &Parser{lexer: l, interner: interner}
}

// NewExprID hands out the next ExprId, used to tag expressions that open
// their own scope in the binder.
func (p *Parser) NewExprID() ids.ExprID {
	id := p.nextExprID
	p.nextExprID++
	return id
}

// Errors returns every diagnostic collected so far.
func (p *Parser) Errors() []*diag.Report { return p.errors }

// Comments drains and returns every comment token scanned so far, in source
// order.
func (p *Parser) Comments() []source.SpannedItem[string] {
	c := p.comments
	p.comments = nil
	return c
}

func (p *Parser) lexerReport(span source.Span, message string) {
	p.errors = append(p.errors, diag.New(diag.PhaseLexer, diag.LEX001, message, span))
}

// Peek returns the next significant token without consuming it.
func (p *Parser) Peek() source.SpannedItem[lexer.Token] {
	if p.peeked != nil {
		return *p.peeked
	}
	item := p.rawAdvance()
	p.peeked = &item
	return item
}

// Advance consumes and returns the next significant token, skipping
// newlines and harvesting comments along the way.
func (p *Parser) Advance() source.SpannedItem[lexer.Token] {
	if p.peeked != nil {
		item := *p.peeked
		p.peeked = nil
		return item
	}
	return p.rawAdvance()
}

func (p *Parser) rawAdvance() source.SpannedItem[lexer.Token] {
	for {
		item := p.lexer.Next(p.lexerReport)
		switch item.Item().Type {
		case lexer.NEWLINE:
			continue
		case lexer.COMMENT:
			p.comments = append(p.comments, source.With(item.Span(), item.Item().Literal))
			continue
		default:
			return item
		}
	}
}

// Span returns the span the lexer is currently positioned at (zero-length),
// used to anchor diagnostics when no token has been consumed yet.
func (p *Parser) Span() source.Span {
	return p.lexer.Span()
}

// joinSpans combines two spans produced while parsing one construct. Within
// a single source this is Span.Join; when a parse has advanced into the next
// source file and landed at its very start (the trailing-whitespace-consumed-
// into-the-next-file case), the combined span is pinned to the end of the
// file the construct started in. Any other cross-file combination is a
// parser bug and is reported as PAR007.
func (p *Parser) joinSpans(a, b source.Span) source.Span {
	if a.Source() == b.Source() {
		return a.Join(b)
	}
	if b.Offset() == 0 {
		if n, ok := p.lexer.TextLen(a.Source()); ok {
			return a.Extend(n)
		}
	}
	p.errors = append(p.errors, diag.New(diag.PhaseParser, diag.PAR007,
		"internal error: span crosses source files", a).WithSpan2(b))
	return a
}

// Intern interns an identifier's text, returning its symbol id.
func (p *Parser) Intern(text string) symtab.ID {
	return p.interner.Insert(text)
}

// pushReport records a diagnostic, rendering the current help stack into its
// Help field exactly like push_error in petr-parse/src/parser.rs: each level
// reads "while parsing X", the innermost reads "expected Y".
func (p *Parser) pushReport(span source.Span, code, message string) {
	if len(p.help) == 0 {
		p.errors = append(p.errors, diag.New(diag.PhaseParser, code, message, span))
		return
	}
	lines := make([]string, len(p.help))
	for i, h := range p.help {
		indent := strings.Repeat("  ", i)
		arrow := ""
		if i > 0 {
			arrow = "↪ "
		}
		verb := "while parsing "
		if i == len(p.help)-1 {
			verb = "expected "
		}
		lines[i] = indent + arrow + verb + h
	}
	p.errors = append(p.errors, diag.New(diag.PhaseParser, code, message, span).WithHelp(strings.Join(lines, "\n")))
}

// WithHelp pushes help text for the duration of f, rendering a help chain
// into any diagnostic raised while f runs.
func WithHelp[T any](p *Parser, helpText string, f func(*Parser) T) T {
	p.help = append(p.help, helpText)
	res := f(p)
	p.help = p.help[:len(p.help)-1]
	return res
}

// WithHelp2 is WithHelp for the common (value, ok) parse-result shape.
func WithHelp2[T any](p *Parser, helpText string, f func(*Parser) (T, bool)) (T, bool) {
	p.help = append(p.help, helpText)
	res, ok := f(p)
	p.help = p.help[:len(p.help)-1]
	return res, ok
}

// checkpoint captures enough state to undo a failed speculative parse.
type checkpoint struct {
	lexer      *lexer.Lexer
	peeked     *source.SpannedItem[lexer.Token]
	errorCount int
	commentCount int
	nextExprID ids.ExprID
}

func (p *Parser) checkpointState() checkpoint {
	return checkpoint{
		lexer:        p.lexer.Clone(),
		peeked:       p.peeked,
		errorCount:   len(p.errors),
		commentCount: len(p.comments),
		nextExprID:   p.nextExprID,
	}
}

func (p *Parser) restore(cp checkpoint) {
	p.lexer = cp.lexer
	p.peeked = cp.peeked
	p.errors = p.errors[:cp.errorCount]
	p.comments = p.comments[:cp.commentCount]
	p.nextExprID = cp.nextExprID
}

// WithBacktrack runs f speculatively: if it returns ok == false, the parser
// state (lexer position, peeked token, errors, comments, expr id counter) is
// rewound as if f had never run: the lexer is a lightweight cursor over
// immutable text, so the checkpoint is O(1).
func WithBacktrack[T any](p *Parser, f func(*Parser) (T, bool)) (T, bool) {
	cp := p.checkpointState()
	res, ok := f(p)
	if !ok {
		p.restore(cp)
	}
	return res, ok
}

// TryToken consumes and returns tok if it is next, without recording an
// error or advancing otherwise.
func (p *Parser) TryToken(tok lexer.TokenType) (source.SpannedItem[lexer.Token], bool) {
	if p.Peek().Item().Type == tok {
		return p.Advance(), true
	}
	return source.SpannedItem[lexer.Token]{}, false
}

// TryTokens is TryToken for a set of acceptable token types.
func (p *Parser) TryTokens(toks ...lexer.TokenType) (source.SpannedItem[lexer.Token], bool) {
	peeked := p.Peek()
	for _, t := range toks {
		if peeked.Item().Type == t {
			return p.Advance(), true
		}
	}
	return source.SpannedItem[lexer.Token]{}, false
}

// Token requires tok to be next, recording PAR003 and returning false
// otherwise.
func (p *Parser) Token(tok lexer.TokenType) (source.SpannedItem[lexer.Token], bool) {
	return WithHelp2(p, "token "+tok.String(), func(p *Parser) (source.SpannedItem[lexer.Token], bool) {
		peeked := p.Peek()
		if peeked.Item().Type == tok {
			return p.Advance(), true
		}
		p.pushReport(p.Span(), diag.PAR003, "expected token "+tok.String()+", found "+peeked.Item().Type.String())
		return source.SpannedItem[lexer.Token]{}, false
	})
}

// OneOf requires the next token to be one of toks, recording PAR004 (or
// PAR003 for a single candidate) otherwise.
func (p *Parser) OneOf(toks ...lexer.TokenType) (source.SpannedItem[lexer.Token], bool) {
	peeked := p.Peek()
	for _, t := range toks {
		if peeked.Item().Type == t {
			return p.Advance(), true
		}
	}
	if len(toks) == 1 {
		p.pushReport(p.Span(), diag.PAR003, "expected token "+toks[0].String()+", found "+peeked.Item().Type.String())
	} else {
		names := make([]string, len(toks))
		for i, t := range toks {
			names[i] = t.String()
		}
		p.pushReport(p.Span(), diag.PAR004, "expected one of "+strings.Join(names, ", ")+"; found "+peeked.Item().Type.String())
	}
	return source.SpannedItem[lexer.Token]{}, false
}

// Sequence parses one or more P separated by sep, rejecting a zero-length
// result.
func Sequence[T any](p *Parser, sep lexer.TokenType, one func(*Parser) (T, bool)) ([]T, bool) {
	var buf []T
	for {
		item, ok := WithBacktrack(p, one)
		if !ok {
			break
		}
		buf = append(buf, item)
		if _, ok := p.TryToken(sep); !ok {
			break
		}
	}
	return buf, len(buf) > 0
}

// SequenceZeroOrMore is Sequence but accepts a zero-length result: the
// first item is attempted as a backtracking parse (so a genuinely empty
// sequence produces no error), but once one item has been parsed, subsequent
// parse failures are reported for real.
func SequenceZeroOrMore[T any](p *Parser, sep lexer.TokenType, one func(*Parser) (T, bool)) []T {
	return WithHelp(p, sep.String()+"-separated sequence", func(p *Parser) []T {
		var buf []T
		for {
			var item T
			var ok bool
			if len(buf) == 0 {
				item, ok = WithBacktrack(p, one)
			} else {
				item, ok = one(p)
			}
			if !ok {
				break
			}
			buf = append(buf, item)
			if _, ok := p.TryToken(sep); !ok {
				break
			}
		}
		return buf
	})
}

// Many repeatedly applies one until it fails or the token stream is
// exhausted, matching Parser::many in petr-parse/src/parser.rs.
func Many[T any](p *Parser, one func(*Parser) (T, bool)) []T {
	var buf []T
	for {
		if p.Peek().Item().Type == lexer.EOF {
			break
		}
		item, ok := one(p)
		if !ok {
			break
		}
		buf = append(buf, item)
	}
	return buf
}
