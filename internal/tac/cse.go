package tac

import "fmt"

// Common subexpression elimination via value numbering.
//
// Within a basic block every operand gets a value number. A binary or unary
// op whose operands' numbers were already seen under the same operation is
// replaced with a copy from the temporary holding the earlier result.
// Calls and reads always produce fresh numbers: they are not pure, so two
// textually identical ones must both execute.

func ApplyCSE(program Program) Program {
	result := Program{Functions: make([]Function, len(program.Functions))}
	for i, fn := range program.Functions {
		result.Functions[i] = applyCSEToFunction(fn)
	}
	return result
}

func applyCSEToFunction(fn Function) Function {
	ops := make([]Op, len(fn.Ops))
	copy(ops, fn.Ops)
	for _, b := range splitBlocks(ops) {
		applyCSEToBlock(ops, b)
	}
	result := fn
	result.Ops = ops
	return result
}

type exprEntry struct {
	vn   int
	repr string // temporary holding the value, "" if none
}

type numbering struct {
	next     int
	vars     map[string]int
	literals map[string]int
	exprs    map[string]exprEntry
}

func newNumbering() *numbering {
	return &numbering{
		vars:     make(map[string]int),
		literals: make(map[string]int),
		exprs:    make(map[string]exprEntry),
	}
}

func (n *numbering) fresh() int {
	n.next++
	return n.next
}

func (n *numbering) operand(o Operand) int {
	if o.Variable != "" {
		vn, ok := n.vars[o.Variable]
		if !ok {
			vn = n.fresh()
			n.vars[o.Variable] = vn
		}
		return vn
	}
	key := literalKey(o)
	vn, ok := n.literals[key]
	if !ok {
		vn = n.fresh()
		n.literals[key] = vn
	}
	return vn
}

// literalKey is type-tagged so that e.g. int 1 and bool true don't collide.
func literalKey(o Operand) string {
	if o.LiteralInt != nil {
		return fmt.Sprintf("i:%d", *o.LiteralInt)
	} else if o.LiteralFloat != nil {
		return fmt.Sprintf("f:%g", *o.LiteralFloat)
	} else if o.LiteralBool != nil {
		return fmt.Sprintf("b:%t", *o.LiteralBool)
	} else if o.LiteralChar != nil {
		return fmt.Sprintf("c:%d", *o.LiteralChar)
	} else if o.LiteralString != nil {
		return fmt.Sprintf("s:%s", *o.LiteralString)
	}
	panic(fmt.Sprintf("invalid operand value: %#v", o))
}

func isCommutative(operation string) bool {
	switch operation {
	case "+", "*", "==", "!=":
		return true
	}
	return false
}

func applyCSEToBlock(ops []Op, b block) {
	n := newNumbering()
	for i := b.start; i < b.end; i++ {
		switch op := ops[i].(type) {
		case Assign:
			n.vars[op.Target] = n.operand(op.Value)
		case BinaryOp:
			left := n.operand(op.Left)
			right := n.operand(op.Right)
			if isCommutative(op.Operation) && right < left {
				left, right = right, left
			}
			key := fmt.Sprintf("%s:%d:%d", op.Operation, left, right)
			if entry, ok := n.exprs[key]; ok {
				ops[i] = Assign{Target: op.Result, Value: Var(entry.repr)}
				n.vars[op.Result] = entry.vn
				continue
			}
			vn := n.fresh()
			n.vars[op.Result] = vn
			if IsTemp(op.Result) {
				n.exprs[key] = exprEntry{vn: vn, repr: op.Result}
			}
		case UnaryOp:
			value := n.operand(op.Value)
			key := fmt.Sprintf("%s:u:%d", op.Operation, value)
			if entry, ok := n.exprs[key]; ok {
				ops[i] = Assign{Target: op.Result, Value: Var(entry.repr)}
				n.vars[op.Result] = entry.vn
				continue
			}
			vn := n.fresh()
			n.vars[op.Result] = vn
			if IsTemp(op.Result) {
				n.exprs[key] = exprEntry{vn: vn, repr: op.Result}
			}
		case Call:
			if op.Result != "" {
				n.vars[op.Result] = n.fresh()
			}
		case Read:
			n.vars[op.Target] = n.fresh()
		}
	}
}
