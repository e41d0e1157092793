package tac

import "fmt"

// Validate runs basic sanity checks on a generated program: every temporary
// must be written before it is read, and every jump target must exist.
func Validate(program Program) error {
	for _, fn := range program.Functions {
		if err := ValidateFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

func ValidateFunction(fn Function) error {
	labels := make(map[string]bool)
	for _, op := range fn.Ops {
		if anchor, ok := op.(Anchor); ok {
			labels[anchor.Label] = true
		}
	}

	defined := make(map[string]bool)
	for _, param := range fn.Params {
		defined[param] = true
	}

	for i, op := range fn.Ops {
		for _, operand := range op.GetArgs() {
			if operand.Variable == "" || !IsTemp(operand.Variable) {
				continue
			}
			if !defined[operand.Variable] {
				return fmt.Errorf("function %s: op %d (%s) reads temporary %s before it is written", fn.Name, i, op, operand.Variable)
			}
		}
		if target := op.GetTarget(); target != "" {
			defined[target] = true
		}
		var target string
		switch o := op.(type) {
		case Jump:
			target = o.Goto
		case JumpUnless:
			target = o.Goto
		case JumpIf:
			target = o.Goto
		}
		if target != "" && !labels[target] {
			return fmt.Errorf("function %s: op %d (%s) jumps to undefined label %s", fn.Name, i, op, target)
		}
	}

	return nil
}
