package ast

import "fmt"

// LiteralKind tags the primitive literal forms.
type LiteralKind int

const (
	LiteralInteger LiteralKind = iota
	LiteralBoolean
	LiteralString
)

// Literal is a constant value appearing directly in source: an integer, a
// boolean, or a string. It is shared between the AST (as an expression) and
// the type system (as the payload of a singleton Literal type).
type Literal struct {
	Kind    LiteralKind
	Integer int64
	Boolean bool
	Text    string
}

func Int(v int64) Literal     { return Literal{Kind: LiteralInteger, Integer: v} }
func Bool(v bool) Literal     { return Literal{Kind: LiteralBoolean, Boolean: v} }
func Str(v string) Literal    { return Literal{Kind: LiteralString, Text: v} }

func (l Literal) String() string {
	switch l.Kind {
	case LiteralInteger:
		return fmt.Sprintf("%d", l.Integer)
	case LiteralBoolean:
		if l.Boolean {
			return "true"
		}
		return "false"
	case LiteralString:
		return fmt.Sprintf("%q", l.Text)
	default:
		return "<invalid literal>"
	}
}

// Equal reports whether two literals are the same constant, used when
// comparing singleton types and sum members.
func (l Literal) Equal(other Literal) bool {
	if l.Kind != other.Kind {
		return false
	}
	switch l.Kind {
	case LiteralInteger:
		return l.Integer == other.Integer
	case LiteralBoolean:
		return l.Boolean == other.Boolean
	case LiteralString:
		return l.Text == other.Text
	default:
		return false
	}
}
