package tac

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/iley/minic/internal/ast"
)

// Exec runs a program directly, without lowering it to assembly.
// Execution starts at main; input is read word by word from stdin.

type ValueKind int

const (
	IntValue ValueKind = iota
	FloatValue
	BoolValue
	CharValue
	StringValue
)

type Value struct {
	Kind ValueKind
	I    int64
	F    float64
	B    bool
	C    rune
	S    string
}

func (v Value) String() string {
	switch v.Kind {
	case IntValue:
		return strconv.FormatInt(v.I, 10)
	case FloatValue:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case BoolValue:
		return strconv.FormatBool(v.B)
	case CharValue:
		return string(v.C)
	case StringValue:
		return v.S
	default:
		panic(fmt.Sprintf("unknown value kind: %d", v.Kind))
	}
}

func Exec(program Program, stdin io.Reader, stdout io.Writer) error {
	funcs := make(map[string]Function)
	for _, fn := range program.Functions {
		funcs[fn.Name] = fn
	}
	if _, ok := funcs["main"]; !ok {
		return fmt.Errorf("program has no main function")
	}

	scanner := bufio.NewScanner(stdin)
	scanner.Split(bufio.ScanWords)

	ex := &executor{
		funcs:   funcs,
		scanner: scanner,
		out:     stdout,
	}
	_, err := ex.call("main", nil)
	return err
}

type executor struct {
	funcs   map[string]Function
	scanner *bufio.Scanner
	out     io.Writer
}

func (ex *executor) call(name string, args []Value) (Value, error) {
	fn, ok := ex.funcs[name]
	if !ok {
		return Value{}, fmt.Errorf("call to undefined function %s", name)
	}
	if len(args) != len(fn.Params) {
		return Value{}, fmt.Errorf("function %s expects %d arguments, got %d", name, len(fn.Params), len(args))
	}

	env := make(map[string]Value)
	for i, param := range fn.Params {
		env[param] = args[i]
	}

	labels := make(map[string]int)
	for i, op := range fn.Ops {
		if anchor, ok := op.(Anchor); ok {
			labels[anchor.Label] = i
		}
	}

	params := []Value{}
	pc := 0
	for pc < len(fn.Ops) {
		switch op := fn.Ops[pc].(type) {
		case Assign:
			env[op.Target] = eval(op.Value, env)
		case BinaryOp:
			result, err := evalBinary(op.Operation, eval(op.Left, env), eval(op.Right, env))
			if err != nil {
				return Value{}, err
			}
			env[op.Result] = result
		case UnaryOp:
			result, err := evalUnary(op.Operation, eval(op.Value, env))
			if err != nil {
				return Value{}, err
			}
			env[op.Result] = result
		case Jump:
			pc = labels[op.Goto]
			continue
		case JumpUnless:
			if !eval(op.Condition, env).B {
				pc = labels[op.Goto]
				continue
			}
		case JumpIf:
			if eval(op.Condition, env).B {
				pc = labels[op.Goto]
				continue
			}
		case Anchor:
			// Nothing to do.
		case Param:
			params = append(params, eval(op.Value, env))
		case Call:
			if len(params) < op.Arity {
				return Value{}, fmt.Errorf("call to %s needs %d params but only %d were queued", op.Function, op.Arity, len(params))
			}
			callArgs := params[len(params)-op.Arity:]
			params = params[:len(params)-op.Arity]
			result, err := ex.call(op.Function, callArgs)
			if err != nil {
				return Value{}, err
			}
			if op.Result != "" {
				env[op.Result] = result
			}
		case Return:
			if op.Value != nil {
				return eval(*op.Value, env), nil
			}
			return Value{}, nil
		case Print:
			fmt.Fprintln(ex.out, eval(op.Value, env))
		case Read:
			value, err := ex.read(op.Type)
			if err != nil {
				return Value{}, err
			}
			env[op.Target] = value
		default:
			panic(fmt.Sprintf("unknown op type: %v", fn.Ops[pc]))
		}
		pc++
	}

	return Value{}, nil
}

// read parses the next input word as the declared type of the Read target.
func (ex *executor) read(typ ast.Type) (Value, error) {
	if !ex.scanner.Scan() {
		if err := ex.scanner.Err(); err != nil {
			return Value{}, err
		}
		return Value{}, fmt.Errorf("unexpected end of input")
	}
	word := ex.scanner.Text()
	switch typ {
	case ast.Int:
		i, err := strconv.ParseInt(word, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as int", word)
		}
		return Value{Kind: IntValue, I: i}, nil
	case ast.Float:
		f, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as float", word)
		}
		return Value{Kind: FloatValue, F: f}, nil
	case ast.Bool:
		b, err := strconv.ParseBool(word)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as bool", word)
		}
		return Value{Kind: BoolValue, B: b}, nil
	case ast.Char:
		runes := []rune(word)
		if len(runes) != 1 {
			return Value{}, fmt.Errorf("cannot parse %q as char", word)
		}
		return Value{Kind: CharValue, C: runes[0]}, nil
	default:
		return Value{}, fmt.Errorf("cannot read a value of type %s", typ)
	}
}

func eval(operand Operand, env map[string]Value) Value {
	if operand.Variable != "" {
		return env[operand.Variable]
	} else if operand.LiteralInt != nil {
		return Value{Kind: IntValue, I: *operand.LiteralInt}
	} else if operand.LiteralFloat != nil {
		return Value{Kind: FloatValue, F: *operand.LiteralFloat}
	} else if operand.LiteralBool != nil {
		return Value{Kind: BoolValue, B: *operand.LiteralBool}
	} else if operand.LiteralChar != nil {
		return Value{Kind: CharValue, C: *operand.LiteralChar}
	} else if operand.LiteralString != nil {
		return Value{Kind: StringValue, S: *operand.LiteralString}
	}
	panic(fmt.Sprintf("invalid operand value: %#v", operand))
}

func evalBinary(operation string, left, right Value) (Value, error) {
	// Float arithmetic applies when either side is a float.
	if left.Kind == FloatValue || right.Kind == FloatValue {
		lf := asFloat(left)
		rf := asFloat(right)
		switch operation {
		case "+":
			return Value{Kind: FloatValue, F: lf + rf}, nil
		case "-":
			return Value{Kind: FloatValue, F: lf - rf}, nil
		case "*":
			return Value{Kind: FloatValue, F: lf * rf}, nil
		case "/":
			if rf == 0 {
				return Value{}, fmt.Errorf("division by zero")
			}
			return Value{Kind: FloatValue, F: lf / rf}, nil
		case "<":
			return Value{Kind: BoolValue, B: lf < rf}, nil
		case "<=":
			return Value{Kind: BoolValue, B: lf <= rf}, nil
		case ">":
			return Value{Kind: BoolValue, B: lf > rf}, nil
		case ">=":
			return Value{Kind: BoolValue, B: lf >= rf}, nil
		case "==":
			return Value{Kind: BoolValue, B: lf == rf}, nil
		case "!=":
			return Value{Kind: BoolValue, B: lf != rf}, nil
		}
		return Value{}, fmt.Errorf("invalid float operation %s", operation)
	}

	if left.Kind == BoolValue && right.Kind == BoolValue {
		switch operation {
		case "==":
			return Value{Kind: BoolValue, B: left.B == right.B}, nil
		case "!=":
			return Value{Kind: BoolValue, B: left.B != right.B}, nil
		}
		return Value{}, fmt.Errorf("invalid bool operation %s", operation)
	}

	li := asInt(left)
	ri := asInt(right)
	switch operation {
	case "+":
		return Value{Kind: IntValue, I: li + ri}, nil
	case "-":
		return Value{Kind: IntValue, I: li - ri}, nil
	case "*":
		return Value{Kind: IntValue, I: li * ri}, nil
	case "/":
		if ri == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return Value{Kind: IntValue, I: li / ri}, nil
	case "%":
		if ri == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return Value{Kind: IntValue, I: li % ri}, nil
	case "<":
		return Value{Kind: BoolValue, B: li < ri}, nil
	case "<=":
		return Value{Kind: BoolValue, B: li <= ri}, nil
	case ">":
		return Value{Kind: BoolValue, B: li > ri}, nil
	case ">=":
		return Value{Kind: BoolValue, B: li >= ri}, nil
	case "==":
		return Value{Kind: BoolValue, B: li == ri}, nil
	case "!=":
		return Value{Kind: BoolValue, B: li != ri}, nil
	}
	return Value{}, fmt.Errorf("invalid int operation %s", operation)
}

func evalUnary(operation string, value Value) (Value, error) {
	switch operation {
	case "-":
		if value.Kind == FloatValue {
			return Value{Kind: FloatValue, F: -value.F}, nil
		}
		return Value{Kind: IntValue, I: -asInt(value)}, nil
	case "+":
		return value, nil
	case "!":
		return Value{Kind: BoolValue, B: !value.B}, nil
	case "(float)":
		return Value{Kind: FloatValue, F: asFloat(value)}, nil
	case "(int)":
		return Value{Kind: IntValue, I: asInt(value)}, nil
	case "(char)":
		return Value{Kind: CharValue, C: rune(asInt(value))}, nil
	}
	return Value{}, fmt.Errorf("invalid unary operation %s", operation)
}

func asInt(v Value) int64 {
	switch v.Kind {
	case IntValue:
		return v.I
	case CharValue:
		return int64(v.C)
	case BoolValue:
		if v.B {
			return 1
		}
		return 0
	default:
		return v.I
	}
}

func asFloat(v Value) float64 {
	if v.Kind == FloatValue {
		return v.F
	}
	return float64(asInt(v))
}
