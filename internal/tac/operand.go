package tac

import (
	"fmt"

	"github.com/iley/minic/internal/util"
)

// Operand is a value used by an op: either a variable reference or a literal.
// Exactly one of the fields is set.
type Operand struct {
	Variable      string
	LiteralInt    *int64
	LiteralFloat  *float64
	LiteralBool   *bool
	LiteralChar   *rune
	LiteralString *string
}

func Var(name string) Operand {
	return Operand{Variable: name}
}

func IntOperand(value int64) Operand {
	return Operand{LiteralInt: &value}
}

func FloatOperand(value float64) Operand {
	return Operand{LiteralFloat: &value}
}

func BoolOperand(value bool) Operand {
	return Operand{LiteralBool: &value}
}

func CharOperand(value rune) Operand {
	return Operand{LiteralChar: &value}
}

func StringOperand(value string) Operand {
	return Operand{LiteralString: &value}
}

// IsLiteral reports whether the operand is a compile-time constant.
func (o Operand) IsLiteral() bool {
	return o.Variable == ""
}

func (o Operand) String() string {
	if o.Variable != "" {
		return o.Variable
	} else if o.LiteralInt != nil {
		return fmt.Sprintf("%d", *o.LiteralInt)
	} else if o.LiteralFloat != nil {
		return fmt.Sprintf("%g", *o.LiteralFloat)
	} else if o.LiteralBool != nil {
		return fmt.Sprintf("%t", *o.LiteralBool)
	} else if o.LiteralChar != nil {
		return fmt.Sprintf("'%c'", *o.LiteralChar)
	} else if o.LiteralString != nil {
		return fmt.Sprintf("\"%s\"", util.EscapeString(*o.LiteralString))
	}
	panic(fmt.Sprintf("invalid operand value: %#v", o))
}
