package tac

import (
	"fmt"
	"reflect"
)

// maxOptimizeIterations caps the fixpoint loop. Each pass either shrinks the
// program or rewrites ops into simpler forms, so in practice the loop
// converges in a handful of iterations; the cap guards against a rewrite
// cycle turning into an infinite loop.
const maxOptimizeIterations = 100

// Optimize runs constant folding, constant propagation and dead code
// elimination to a fixpoint on every function.
func Optimize(program Program) (Program, error) {
	result := Program{
		Functions: make([]Function, len(program.Functions)),
	}
	for i, fn := range program.Functions {
		optFn, err := optimizeFunction(fn)
		if err != nil {
			return Program{}, err
		}
		result.Functions[i] = optFn
	}
	return result, nil
}

func optimizeFunction(fn Function) (Function, error) {
	ops := fn.Ops
	for i := 0; ; i++ {
		if i >= maxOptimizeIterations {
			return Function{}, fmt.Errorf("optimizer did not converge for function %s after %d iterations", fn.Name, maxOptimizeIterations)
		}
		next := propagateAndFold(ops)
		next = removeUnreachableCode(next)
		next = removeDeadCode(next)
		if reflect.DeepEqual(next, ops) {
			break
		}
		ops = next
	}
	result := fn
	result.Ops = ops
	return result, nil
}

type optimizationContext struct {
	// Values known at compile time.
	knownValues map[string]Operand
}

func newOptimizationContext() *optimizationContext {
	return &optimizationContext{
		knownValues: make(map[string]Operand),
	}
}

func (oc *optimizationContext) reset() {
	oc.knownValues = make(map[string]Operand)
}

// evalOperand resolves an operand to a compile-time constant if possible.
func (oc *optimizationContext) evalOperand(operand Operand) (Operand, bool) {
	if operand.Variable != "" {
		value, ok := oc.knownValues[operand.Variable]
		return value, ok
	}
	return operand, true
}

// substitute replaces an operand with its known constant value, if any.
func (oc *optimizationContext) substitute(operand Operand) Operand {
	if value, ok := oc.evalOperand(operand); ok {
		return value
	}
	return operand
}

func propagateAndFold(body []Op) []Op {
	oc := newOptimizationContext()

	result := []Op{}
	for _, op := range body {
		switch o := op.(type) {
		case Anchor:
			// Reset on encountering a label because the program can
			// potentially jump here with different variable values.
			oc.reset()
		case Assign:
			o.Value = oc.substitute(o.Value)
			op = o
			if o.Value.IsLiteral() {
				oc.knownValues[o.Target] = o.Value
			} else {
				delete(oc.knownValues, o.Target)
			}
		case BinaryOp:
			o.Left = oc.substitute(o.Left)
			o.Right = oc.substitute(o.Right)
			op = o
			if value, ok := foldBinaryOp(o.Operation, o.Left, o.Right); ok {
				op = Assign{Target: o.Result, Value: value}
				oc.knownValues[o.Result] = value
			} else {
				delete(oc.knownValues, o.Result)
			}
		case UnaryOp:
			o.Value = oc.substitute(o.Value)
			op = o
			if value, ok := foldUnaryOp(o.Operation, o.Value); ok {
				op = Assign{Target: o.Result, Value: value}
				oc.knownValues[o.Result] = value
			} else {
				delete(oc.knownValues, o.Result)
			}
		case JumpUnless:
			o.Condition = oc.substitute(o.Condition)
			op = o
			if o.Condition.LiteralBool != nil {
				if *o.Condition.LiteralBool {
					// The jump is never taken.
					continue
				}
				op = Jump{Goto: o.Goto}
			}
		case JumpIf:
			o.Condition = oc.substitute(o.Condition)
			op = o
			if o.Condition.LiteralBool != nil {
				if !*o.Condition.LiteralBool {
					continue
				}
				op = Jump{Goto: o.Goto}
			}
		case Param:
			o.Value = oc.substitute(o.Value)
			op = o
		case Print:
			o.Value = oc.substitute(o.Value)
			op = o
		case Return:
			if o.Value != nil {
				value := oc.substitute(*o.Value)
				o.Value = &value
				op = o
			}
		case Call:
			delete(oc.knownValues, o.Result)
		case Read:
			delete(oc.knownValues, o.Target)
		}

		result = append(result, op)
	}

	return result
}

// removeUnreachableCode drops ops between an unconditional control transfer
// and the next label.
func removeUnreachableCode(body []Op) []Op {
	result := []Op{}
	reachable := true
	for _, op := range body {
		if _, ok := op.(Anchor); ok {
			reachable = true
		}
		if !reachable {
			continue
		}
		result = append(result, op)
		switch op.(type) {
		case Jump, Return:
			reachable = false
		}
	}
	return result
}

func removeDeadCode(body []Op) []Op {
	refCount := make(map[string]int)
	jumpTargets := make(map[string]bool)

	for _, op := range body {
		for _, operand := range op.GetArgs() {
			if operand.Variable != "" {
				refCount[operand.Variable] += 1
			}
		}
		switch o := op.(type) {
		case Jump:
			jumpTargets[o.Goto] = true
		case JumpUnless:
			jumpTargets[o.Goto] = true
		case JumpIf:
			jumpTargets[o.Goto] = true
		}
	}

	result := []Op{}
	for _, op := range body {
		switch o := op.(type) {
		case Assign:
			if refCount[o.Target] == 0 {
				continue
			}
		case BinaryOp:
			// A division or modulo that could fault at runtime is kept even
			// when its result is unused.
			if refCount[o.Result] == 0 && !mayFault(o) {
				continue
			}
		case UnaryOp:
			if refCount[o.Result] == 0 {
				continue
			}
		case Anchor:
			if !jumpTargets[o.Label] {
				continue
			}
		}
		result = append(result, op)
	}

	return result
}

func mayFault(op BinaryOp) bool {
	if op.Operation != "/" && op.Operation != "%" {
		return false
	}
	if op.Right.Variable != "" {
		return true
	}
	if op.Right.LiteralInt != nil {
		return *op.Right.LiteralInt == 0
	}
	return false
}

func foldBinaryOp(operation string, left, right Operand) (Operand, bool) {
	if !left.IsLiteral() || !right.IsLiteral() {
		return Operand{}, false
	}

	// Boolean equality.
	if left.LiteralBool != nil && right.LiteralBool != nil {
		switch operation {
		case "==":
			return BoolOperand(*left.LiteralBool == *right.LiteralBool), true
		case "!=":
			return BoolOperand(*left.LiteralBool != *right.LiteralBool), true
		}
		return Operand{}, false
	}

	// Float arithmetic applies when either side is a float literal.
	if left.LiteralFloat != nil || right.LiteralFloat != nil {
		lf, lok := floatValue(left)
		rf, rok := floatValue(right)
		if !lok || !rok {
			return Operand{}, false
		}
		switch operation {
		case "+":
			return FloatOperand(lf + rf), true
		case "-":
			return FloatOperand(lf - rf), true
		case "*":
			return FloatOperand(lf * rf), true
		case "/":
			// Division by a constant zero is left for runtime to report.
			if rf == 0 {
				return Operand{}, false
			}
			return FloatOperand(lf / rf), true
		case "<":
			return BoolOperand(lf < rf), true
		case "<=":
			return BoolOperand(lf <= rf), true
		case ">":
			return BoolOperand(lf > rf), true
		case ">=":
			return BoolOperand(lf >= rf), true
		case "==":
			return BoolOperand(lf == rf), true
		case "!=":
			return BoolOperand(lf != rf), true
		}
		return Operand{}, false
	}

	li, lok := intValue(left)
	ri, rok := intValue(right)
	if !lok || !rok {
		return Operand{}, false
	}
	switch operation {
	case "+":
		return IntOperand(li + ri), true
	case "-":
		return IntOperand(li - ri), true
	case "*":
		return IntOperand(li * ri), true
	case "/":
		if ri == 0 {
			return Operand{}, false
		}
		return IntOperand(li / ri), true
	case "%":
		if ri == 0 {
			return Operand{}, false
		}
		return IntOperand(li % ri), true
	case "<":
		return BoolOperand(li < ri), true
	case "<=":
		return BoolOperand(li <= ri), true
	case ">":
		return BoolOperand(li > ri), true
	case ">=":
		return BoolOperand(li >= ri), true
	case "==":
		return BoolOperand(li == ri), true
	case "!=":
		return BoolOperand(li != ri), true
	}
	return Operand{}, false
}

func foldUnaryOp(operation string, value Operand) (Operand, bool) {
	if !value.IsLiteral() {
		return Operand{}, false
	}
	switch operation {
	case "-":
		if value.LiteralInt != nil {
			return IntOperand(-*value.LiteralInt), true
		}
		if value.LiteralFloat != nil {
			return FloatOperand(-*value.LiteralFloat), true
		}
	case "+":
		if value.LiteralInt != nil || value.LiteralFloat != nil {
			return value, true
		}
	case "!":
		if value.LiteralBool != nil {
			return BoolOperand(!*value.LiteralBool), true
		}
	case "(float)":
		if f, ok := floatValue(value); ok {
			return FloatOperand(f), true
		}
	case "(int)":
		if i, ok := intValue(value); ok {
			return IntOperand(i), true
		}
	case "(char)":
		if i, ok := intValue(value); ok {
			return CharOperand(rune(i)), true
		}
	}
	return Operand{}, false
}

// intValue extracts an integral literal value. Chars count as integers.
func intValue(operand Operand) (int64, bool) {
	if operand.LiteralInt != nil {
		return *operand.LiteralInt, true
	}
	if operand.LiteralChar != nil {
		return int64(*operand.LiteralChar), true
	}
	return 0, false
}

func floatValue(operand Operand) (float64, bool) {
	if operand.LiteralFloat != nil {
		return *operand.LiteralFloat, true
	}
	if i, ok := intValue(operand); ok {
		return float64(i), true
	}
	return 0, false
}
