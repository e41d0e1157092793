package codegen

import (
	"fmt"
	"io"

	"github.com/iley/minic/internal/codegen/asm"
	"github.com/iley/minic/internal/tac"
)

// Generate lowers a program to pseudo-assembly and writes it out.
func Generate(out io.Writer, program tac.Program) error {
	asmProgram, err := Lower(program)
	if err != nil {
		return err
	}
	Format(out, asmProgram)
	return nil
}

// Lower translates three-address code into stack-machine instructions.
func Lower(program tac.Program) (asm.Program, error) {
	result := asm.Program{}
	for _, fn := range program.Functions {
		asmFn, err := lowerFunction(fn)
		if err != nil {
			return asm.Program{}, err
		}
		result.Functions = append(result.Functions, asmFn)
	}
	return result, nil
}

func lowerFunction(fn tac.Function) (asm.Function, error) {
	labels := make(map[string]bool)
	for _, op := range fn.Ops {
		if anchor, ok := op.(tac.Anchor); ok {
			labels[anchor.Label] = true
		}
	}

	// Labels get the function name as a prefix so that they stay unique
	// in the flat output file.
	qualify := func(label string) (string, error) {
		if !labels[label] {
			return "", fmt.Errorf("function %s: jump to undefined label %s", fn.Name, label)
		}
		return fn.Name + "_" + label, nil
	}

	lines := []asm.Line{}
	for _, op := range fn.Ops {
		switch o := op.(type) {
		case tac.Assign:
			lines = append(lines,
				asm.Op1("LOAD", o.Value.String()),
				asm.Op1("STORE", o.Target))
		case tac.BinaryOp:
			lines = append(lines,
				asm.Op1("LOAD", o.Left.String()),
				asm.Op1("LOAD", o.Right.String()),
				asm.Op0(binaryInstruction(o.Operation)),
				asm.Op1("STORE", o.Result))
		case tac.UnaryOp:
			lines = append(lines,
				asm.Op1("LOAD", o.Value.String()),
				asm.Op0(unaryInstruction(o.Operation)),
				asm.Op1("STORE", o.Result))
		case tac.Jump:
			label, err := qualify(o.Goto)
			if err != nil {
				return asm.Function{}, err
			}
			lines = append(lines, asm.Op1("JMP", label))
		case tac.JumpUnless:
			label, err := qualify(o.Goto)
			if err != nil {
				return asm.Function{}, err
			}
			lines = append(lines,
				asm.Op1("LOAD", o.Condition.String()),
				asm.Op1("JFALSE", label))
		case tac.JumpIf:
			label, err := qualify(o.Goto)
			if err != nil {
				return asm.Function{}, err
			}
			lines = append(lines,
				asm.Op1("LOAD", o.Condition.String()),
				asm.Op1("JTRUE", label))
		case tac.Anchor:
			lines = append(lines, asm.Label(fn.Name+"_"+o.Label))
		case tac.Param:
			lines = append(lines, asm.Op1("PUSH", o.Value.String()))
		case tac.Call:
			lines = append(lines, asm.Op1("CALL", o.Function))
			// Void calls leave nothing on the stack.
			if o.Result != "" {
				lines = append(lines, asm.Op1("STORE", o.Result))
			}
		case tac.Return:
			if o.Value != nil {
				lines = append(lines, asm.Op1("LOAD", o.Value.String()))
			}
			lines = append(lines, asm.Op0("RET"))
		case tac.Print:
			lines = append(lines,
				asm.Op1("LOAD", o.Value.String()),
				asm.Op0("PRINT"))
		case tac.Read:
			lines = append(lines,
				asm.Op0("READ"),
				asm.Op1("STORE", o.Target))
		default:
			panic(fmt.Sprintf("unknown op type: %v", op))
		}
	}

	return asm.Function{Name: fn.Name, Lines: lines}, nil
}

func binaryInstruction(operation string) string {
	switch operation {
	case "+":
		return "ADD"
	case "-":
		return "SUB"
	case "*":
		return "MUL"
	case "/":
		return "DIV"
	case "%":
		return "MOD"
	case "&&":
		return "AND"
	case "||":
		return "OR"
	case "<":
		return "LT"
	case "<=":
		return "LE"
	case ">":
		return "GT"
	case ">=":
		return "GE"
	case "==":
		return "EQ"
	case "!=":
		return "NE"
	default:
		panic(fmt.Sprintf("unknown binary operation %s", operation))
	}
}

func unaryInstruction(operation string) string {
	switch operation {
	case "-":
		return "NEG"
	case "+":
		return "NOP"
	case "!":
		return "NOT"
	case "(float)":
		return "TOFLOAT"
	case "(int)":
		return "TOINT"
	case "(char)":
		return "TOCHAR"
	default:
		panic(fmt.Sprintf("unknown unary operation %s", operation))
	}
}
