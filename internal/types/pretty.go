package types

import (
	"fmt"
	"strings"

	"github.com/sunholo/petrc/internal/ast"
)

// Pretty renders a type for diagnostics: primitives by their keyword, arrows
// as `(a → b → c)`, sums as `(A | B)`, literals as `Literal Integer(1)`, and
// unsolved slots as `infer t3` (grounded on petr-typecheck's pretty_printing
// module). Slot-carrying variants are rendered through the context so refs
// are followed first.
func (c *Context) Pretty(t Type) string {
	switch t := t.(type) {
	case TUnit:
		return "unit"
	case TInt:
		return "int"
	case TBool:
		return "bool"
	case TString:
		return "string"
	case TRef:
		return c.PrettyVar(t.Var)
	case TUserDefined:
		return c.interner.Get(t.Name)
	case TArrow:
		parts := make([]string, len(t.Tys))
		for i, v := range t.Tys {
			parts[i] = c.PrettyVar(v)
		}
		return "(" + strings.Join(parts, " → ") + ")"
	case TList:
		return "[" + c.PrettyVar(t.Elem) + "]"
	case TInfer:
		return fmt.Sprintf("infer t%d", t.ID)
	case TSum:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = c.Pretty(m)
		}
		return "(" + strings.Join(parts, " | ") + ")"
	case TLiteral:
		return PrettyLiteral(t.Value)
	case TErrorRecovery:
		return "error recovery"
	default:
		return "<unknown type>"
	}
}

// PrettyVar renders the type stored at v, following refs.
func (c *Context) PrettyVar(v TypeVariable) string {
	_, t := c.Resolve(v)
	return c.Pretty(t)
}

// PrettyLiteral renders a literal the way type diagnostics name singleton
// types, e.g. `Literal Integer(2)`.
func PrettyLiteral(l ast.Literal) string {
	switch l.Kind {
	case ast.LiteralInteger:
		return fmt.Sprintf("Literal Integer(%d)", l.Integer)
	case ast.LiteralBoolean:
		return fmt.Sprintf("Literal Boolean(%t)", l.Boolean)
	case ast.LiteralString:
		return fmt.Sprintf("Literal String(%q)", l.Text)
	default:
		return "Literal <invalid>"
	}
}
