package tac

import (
	"fmt"
	"io"
)

// Alternative textual renderings of the code: quadruples, triples and
// postfix notation. The default rendering is Program.Print.

// PrintQuadruples writes the program as numbered (op, arg1, arg2, result)
// tuples, with "-" standing for an unused field.
func PrintQuadruples(writer io.Writer, program Program) {
	for _, fn := range program.Functions {
		fmt.Fprintf(writer, "Function %s:\n", fn.Name)
		for i, op := range fn.Ops {
			o, a1, a2, res := quadruple(op)
			fmt.Fprintf(writer, "(%d) (%s, %s, %s, %s)\n", i+1, o, a1, a2, res)
		}
		fmt.Fprintf(writer, "\n")
	}
}

func quadruple(op Op) (string, string, string, string) {
	switch o := op.(type) {
	case Assign:
		return "assign", o.Value.String(), "-", o.Target
	case BinaryOp:
		return o.Operation, o.Left.String(), o.Right.String(), o.Result
	case UnaryOp:
		return o.Operation, o.Value.String(), "-", o.Result
	case Jump:
		return "goto", "-", "-", o.Goto
	case JumpUnless:
		return "ifFalse", o.Condition.String(), "-", o.Goto
	case JumpIf:
		return "if", o.Condition.String(), "-", o.Goto
	case Anchor:
		return "label", "-", "-", o.Label
	case Param:
		return "param", o.Value.String(), "-", "-"
	case Call:
		result := o.Result
		if result == "" {
			result = "-"
		}
		return "call", o.Function, fmt.Sprintf("%d", o.Arity), result
	case Return:
		if o.Value != nil {
			return "return", o.Value.String(), "-", "-"
		}
		return "return", "-", "-", "-"
	case Print:
		return "print", o.Value.String(), "-", "-"
	case Read:
		return "read", "-", "-", o.Target
	default:
		panic(fmt.Sprintf("unknown op type: %v", op))
	}
}

// PrintTriples writes the program as numbered (op, arg1, arg2) tuples.
// References to temporaries become references to the defining instruction,
// written as (n).
func PrintTriples(writer io.Writer, program Program) {
	for _, fn := range program.Functions {
		fmt.Fprintf(writer, "Function %s:\n", fn.Name)
		// Maps a temporary to the index of the instruction that defined it.
		defs := make(map[string]int)
		render := func(operand Operand) string {
			if operand.Variable != "" && IsTemp(operand.Variable) {
				if idx, ok := defs[operand.Variable]; ok {
					return fmt.Sprintf("(%d)", idx)
				}
			}
			return operand.String()
		}
		for i, op := range fn.Ops {
			switch o := op.(type) {
			case Assign:
				fmt.Fprintf(writer, "(%d) (assign, %s, %s)\n", i+1, render(o.Value), o.Target)
			case BinaryOp:
				fmt.Fprintf(writer, "(%d) (%s, %s, %s)\n", i+1, o.Operation, render(o.Left), render(o.Right))
			case UnaryOp:
				fmt.Fprintf(writer, "(%d) (%s, %s, -)\n", i+1, o.Operation, render(o.Value))
			case Jump:
				fmt.Fprintf(writer, "(%d) (goto, -, %s)\n", i+1, o.Goto)
			case JumpUnless:
				fmt.Fprintf(writer, "(%d) (ifFalse, %s, %s)\n", i+1, render(o.Condition), o.Goto)
			case JumpIf:
				fmt.Fprintf(writer, "(%d) (if, %s, %s)\n", i+1, render(o.Condition), o.Goto)
			case Anchor:
				fmt.Fprintf(writer, "(%d) (label, -, %s)\n", i+1, o.Label)
			case Param:
				fmt.Fprintf(writer, "(%d) (param, %s, -)\n", i+1, render(o.Value))
			case Call:
				fmt.Fprintf(writer, "(%d) (call, %s, %d)\n", i+1, o.Function, o.Arity)
			case Return:
				if o.Value != nil {
					fmt.Fprintf(writer, "(%d) (return, %s, -)\n", i+1, render(*o.Value))
				} else {
					fmt.Fprintf(writer, "(%d) (return, -, -)\n", i+1)
				}
			case Print:
				fmt.Fprintf(writer, "(%d) (print, %s, -)\n", i+1, render(o.Value))
			case Read:
				fmt.Fprintf(writer, "(%d) (read, -, %s)\n", i+1, o.Target)
			default:
				panic(fmt.Sprintf("unknown op type: %v", op))
			}
			if target := op.GetTarget(); target != "" && IsTemp(target) {
				defs[target] = i + 1
			}
		}
		fmt.Fprintf(writer, "\n")
	}
}

// PrintPostfix writes the program in reverse Polish notation, one op per line.
func PrintPostfix(writer io.Writer, program Program) {
	for _, fn := range program.Functions {
		fmt.Fprintf(writer, "Function %s:\n", fn.Name)
		for _, op := range fn.Ops {
			switch o := op.(type) {
			case Assign:
				fmt.Fprintf(writer, "%s %s =\n", o.Value, o.Target)
			case BinaryOp:
				fmt.Fprintf(writer, "%s %s %s %s =\n", o.Left, o.Right, o.Operation, o.Result)
			case UnaryOp:
				fmt.Fprintf(writer, "%s %s %s =\n", o.Value, o.Operation, o.Result)
			case Jump:
				fmt.Fprintf(writer, "goto %s\n", o.Goto)
			case JumpUnless:
				fmt.Fprintf(writer, "%s ifFalse goto %s\n", o.Condition, o.Goto)
			case JumpIf:
				fmt.Fprintf(writer, "%s if goto %s\n", o.Condition, o.Goto)
			case Anchor:
				fmt.Fprintf(writer, "%s:\n", o.Label)
			case Param:
				fmt.Fprintf(writer, "%s param\n", o.Value)
			case Call:
				if o.Result == "" {
					fmt.Fprintf(writer, "%s call\n", o.Function)
				} else {
					fmt.Fprintf(writer, "%s call %s =\n", o.Function, o.Result)
				}
			case Return:
				if o.Value != nil {
					fmt.Fprintf(writer, "%s return\n", o.Value)
				} else {
					fmt.Fprintf(writer, "return\n")
				}
			case Print:
				fmt.Fprintf(writer, "%s print\n", o.Value)
			case Read:
				fmt.Fprintf(writer, "%s read\n", o.Target)
			default:
				panic(fmt.Sprintf("unknown op type: %v", op))
			}
		}
		fmt.Fprintf(writer, "\n")
	}
}
