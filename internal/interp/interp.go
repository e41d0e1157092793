package interp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/iley/minic/internal/ast"
)

// Tree-walking interpreter. Runs the typechecked AST directly, without going
// through three-address code. Because the typechecker gives every variable a
// name unique within its function, a flat map per call works as the
// environment.

func Run(program *ast.Program, stdin io.Reader, stdout io.Writer) error {
	funcs := make(map[string]*ast.Function)
	for i := range program.Functions {
		funcs[program.Functions[i].Name] = &program.Functions[i]
	}
	mainFn, ok := funcs["main"]
	if !ok {
		return fmt.Errorf("program has no main function")
	}

	scanner := bufio.NewScanner(stdin)
	scanner.Split(bufio.ScanWords)

	in := &interpreter{
		funcs:   funcs,
		scanner: scanner,
		out:     stdout,
	}
	_, err := in.call(mainFn, nil)
	return err
}

type interpreter struct {
	funcs   map[string]*ast.Function
	scanner *bufio.Scanner
	out     io.Writer
}

type value struct {
	typ ast.Type
	i   int64
	f   float64
	b   bool
	c   rune
	s   string
}

func (v value) String() string {
	switch v.typ {
	case ast.Int:
		return strconv.FormatInt(v.i, 10)
	case ast.Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ast.Bool:
		return strconv.FormatBool(v.b)
	case ast.Char:
		return string(v.c)
	case ast.String:
		return v.s
	default:
		panic(fmt.Sprintf("invalid value type: %s", v.typ))
	}
}

func zeroValue(typ ast.Type) value {
	return value{typ: typ}
}

// convert adjusts a value to the type of the location it is stored into.
func convert(v value, typ ast.Type) value {
	if v.typ == typ {
		return v
	}
	switch {
	case typ == ast.Float && v.typ == ast.Int:
		return value{typ: ast.Float, f: float64(v.i)}
	case typ == ast.Int && v.typ == ast.Char:
		return value{typ: ast.Int, i: int64(v.c)}
	case typ == ast.Char && v.typ == ast.Int:
		return value{typ: ast.Char, c: rune(v.i)}
	}
	return v
}

func (in *interpreter) call(fn *ast.Function, args []value) (value, error) {
	env := make(map[string]value)
	for i, arg := range fn.Args {
		env[arg.Name] = convert(args[i], arg.Type)
	}

	returned, ret, err := in.execBlock(env, fn.Body)
	if err != nil {
		return value{}, err
	}
	if returned {
		return convert(ret, fn.ReturnType), nil
	}
	return zeroValue(fn.ReturnType), nil
}

// execBlock runs the statements of a block. Returns early when a return
// statement fires; the first result reports whether that happened.
func (in *interpreter) execBlock(env map[string]value, block *ast.Block) (bool, value, error) {
	for _, stmt := range block.Statements {
		returned, ret, err := in.execStatement(env, stmt)
		if err != nil || returned {
			return returned, ret, err
		}
	}
	return false, value{}, nil
}

func (in *interpreter) execStatement(env map[string]value, node ast.Statement) (bool, value, error) {
	switch stmt := node.(type) {
	case *ast.VariableDeclaration:
		v := zeroValue(stmt.Type)
		if stmt.Initializer != nil {
			init, err := in.evalExpression(env, stmt.Initializer)
			if err != nil {
				return false, value{}, err
			}
			v = convert(init, stmt.Type)
		}
		env[stmt.Name] = v
		return false, value{}, nil
	case *ast.ExpressionStatement:
		_, err := in.evalExpression(env, stmt.Expression)
		return false, value{}, err
	case *ast.ReturnStatement:
		if stmt.Value == nil {
			return true, value{}, nil
		}
		v, err := in.evalExpression(env, stmt.Value)
		return true, v, err
	case *ast.IfStatement:
		cond, err := in.evalExpression(env, stmt.Condition)
		if err != nil {
			return false, value{}, err
		}
		if cond.b {
			return in.execBlock(env, &stmt.ThenBlock)
		}
		if stmt.ElseBlock != nil {
			return in.execBlock(env, stmt.ElseBlock)
		}
		return false, value{}, nil
	case *ast.WhileStatement:
		for {
			cond, err := in.evalExpression(env, stmt.Condition)
			if err != nil {
				return false, value{}, err
			}
			if !cond.b {
				return false, value{}, nil
			}
			returned, ret, err := in.execBlock(env, &stmt.Body)
			if err != nil || returned {
				return returned, ret, err
			}
		}
	case *ast.ForStatement:
		return in.execForStatement(env, stmt)
	case *ast.PrintStatement:
		v, err := in.evalExpression(env, stmt.Value)
		if err != nil {
			return false, value{}, err
		}
		fmt.Fprintln(in.out, v)
		return false, value{}, nil
	case *ast.ReadStatement:
		v, err := in.read(env[stmt.Name].typ)
		if err != nil {
			return false, value{}, err
		}
		env[stmt.Name] = v
		return false, value{}, nil
	case *ast.BlockStatement:
		return in.execBlock(env, &stmt.Block)
	default:
		panic(fmt.Sprintf("unknown statement type %v", node))
	}
}

func (in *interpreter) execForStatement(env map[string]value, stmt *ast.ForStatement) (bool, value, error) {
	if stmt.Init != nil {
		returned, ret, err := in.execStatement(env, stmt.Init)
		if err != nil || returned {
			return returned, ret, err
		}
	}
	for {
		if stmt.Condition != nil {
			cond, err := in.evalExpression(env, stmt.Condition)
			if err != nil {
				return false, value{}, err
			}
			if !cond.b {
				return false, value{}, nil
			}
		}
		returned, ret, err := in.execBlock(env, &stmt.Body)
		if err != nil || returned {
			return returned, ret, err
		}
		if stmt.Update != nil {
			if _, err := in.evalExpression(env, stmt.Update); err != nil {
				return false, value{}, err
			}
		}
	}
}

func (in *interpreter) evalExpression(env map[string]value, node ast.Expression) (value, error) {
	switch expr := node.(type) {
	case *ast.Literal:
		return literalValue(expr), nil
	case *ast.VariableReference:
		return env[expr.Name], nil
	case *ast.Assignment:
		v, err := in.evalExpression(env, expr.Value)
		if err != nil {
			return value{}, err
		}
		converted := convert(v, expr.Type)
		env[expr.Target] = converted
		return converted, nil
	case *ast.BinaryOperation:
		return in.evalBinaryOperation(env, expr)
	case *ast.UnaryOperation:
		operand, err := in.evalExpression(env, expr.Operand)
		if err != nil {
			return value{}, err
		}
		return evalUnary(expr.Operator, operand)
	case *ast.FunctionCall:
		fn, ok := in.funcs[expr.FunctionName]
		if !ok {
			return value{}, fmt.Errorf("call to undefined function %s", expr.FunctionName)
		}
		args := make([]value, len(expr.Args))
		for i, argNode := range expr.Args {
			arg, err := in.evalExpression(env, argNode)
			if err != nil {
				return value{}, err
			}
			args[i] = arg
		}
		return in.call(fn, args)
	case *ast.ReadExpression:
		v, err := in.read(expr.Type)
		if err != nil {
			return value{}, err
		}
		env[expr.Name] = v
		return v, nil
	default:
		panic(fmt.Sprintf("unknown expression type: %v", node))
	}
}

func (in *interpreter) evalBinaryOperation(env map[string]value, expr *ast.BinaryOperation) (value, error) {
	left, err := in.evalExpression(env, expr.Left)
	if err != nil {
		return value{}, err
	}

	// Logical operations short-circuit: the right side only runs if needed.
	switch expr.Operator {
	case "&&":
		if !left.b {
			return value{typ: ast.Bool, b: false}, nil
		}
		return in.evalExpression(env, expr.Right)
	case "||":
		if left.b {
			return value{typ: ast.Bool, b: true}, nil
		}
		return in.evalExpression(env, expr.Right)
	}

	right, err := in.evalExpression(env, expr.Right)
	if err != nil {
		return value{}, err
	}
	return evalBinary(expr.Operator, left, right)
}

func evalBinary(operator string, left, right value) (value, error) {
	if left.typ == ast.Float || right.typ == ast.Float {
		lf := asFloat(left)
		rf := asFloat(right)
		switch operator {
		case "+":
			return value{typ: ast.Float, f: lf + rf}, nil
		case "-":
			return value{typ: ast.Float, f: lf - rf}, nil
		case "*":
			return value{typ: ast.Float, f: lf * rf}, nil
		case "/":
			if rf == 0 {
				return value{}, fmt.Errorf("division by zero")
			}
			return value{typ: ast.Float, f: lf / rf}, nil
		case "<":
			return value{typ: ast.Bool, b: lf < rf}, nil
		case "<=":
			return value{typ: ast.Bool, b: lf <= rf}, nil
		case ">":
			return value{typ: ast.Bool, b: lf > rf}, nil
		case ">=":
			return value{typ: ast.Bool, b: lf >= rf}, nil
		case "==":
			return value{typ: ast.Bool, b: lf == rf}, nil
		case "!=":
			return value{typ: ast.Bool, b: lf != rf}, nil
		}
		return value{}, fmt.Errorf("invalid float operation %s", operator)
	}

	if left.typ == ast.Bool && right.typ == ast.Bool {
		switch operator {
		case "==":
			return value{typ: ast.Bool, b: left.b == right.b}, nil
		case "!=":
			return value{typ: ast.Bool, b: left.b != right.b}, nil
		}
		return value{}, fmt.Errorf("invalid bool operation %s", operator)
	}

	li := asInt(left)
	ri := asInt(right)
	switch operator {
	case "+":
		return value{typ: ast.Int, i: li + ri}, nil
	case "-":
		return value{typ: ast.Int, i: li - ri}, nil
	case "*":
		return value{typ: ast.Int, i: li * ri}, nil
	case "/":
		if ri == 0 {
			return value{}, fmt.Errorf("division by zero")
		}
		return value{typ: ast.Int, i: li / ri}, nil
	case "%":
		if ri == 0 {
			return value{}, fmt.Errorf("division by zero")
		}
		return value{typ: ast.Int, i: li % ri}, nil
	case "<":
		return value{typ: ast.Bool, b: li < ri}, nil
	case "<=":
		return value{typ: ast.Bool, b: li <= ri}, nil
	case ">":
		return value{typ: ast.Bool, b: li > ri}, nil
	case ">=":
		return value{typ: ast.Bool, b: li >= ri}, nil
	case "==":
		return value{typ: ast.Bool, b: li == ri}, nil
	case "!=":
		return value{typ: ast.Bool, b: li != ri}, nil
	}
	return value{}, fmt.Errorf("invalid int operation %s", operator)
}

func evalUnary(operator string, operand value) (value, error) {
	switch operator {
	case "-":
		if operand.typ == ast.Float {
			return value{typ: ast.Float, f: -operand.f}, nil
		}
		return value{typ: ast.Int, i: -asInt(operand)}, nil
	case "+":
		return operand, nil
	case "!":
		return value{typ: ast.Bool, b: !operand.b}, nil
	}
	return value{}, fmt.Errorf("invalid unary operation %s", operator)
}

func (in *interpreter) read(typ ast.Type) (value, error) {
	if !in.scanner.Scan() {
		if err := in.scanner.Err(); err != nil {
			return value{}, err
		}
		return value{}, fmt.Errorf("unexpected end of input")
	}
	word := in.scanner.Text()
	switch typ {
	case ast.Int:
		i, err := strconv.ParseInt(word, 10, 64)
		if err != nil {
			return value{}, fmt.Errorf("cannot parse %q as int", word)
		}
		return value{typ: ast.Int, i: i}, nil
	case ast.Float:
		f, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return value{}, fmt.Errorf("cannot parse %q as float", word)
		}
		return value{typ: ast.Float, f: f}, nil
	case ast.Bool:
		b, err := strconv.ParseBool(word)
		if err != nil {
			return value{}, fmt.Errorf("cannot parse %q as bool", word)
		}
		return value{typ: ast.Bool, b: b}, nil
	case ast.Char:
		runes := []rune(word)
		if len(runes) != 1 {
			return value{}, fmt.Errorf("cannot parse %q as char", word)
		}
		return value{typ: ast.Char, c: runes[0]}, nil
	default:
		return value{}, fmt.Errorf("cannot read a value of type %s", typ)
	}
}

func literalValue(lit *ast.Literal) value {
	if lit.IntValue != nil {
		return value{typ: ast.Int, i: *lit.IntValue}
	} else if lit.FloatValue != nil {
		return value{typ: ast.Float, f: *lit.FloatValue}
	} else if lit.BoolValue != nil {
		return value{typ: ast.Bool, b: *lit.BoolValue}
	} else if lit.CharValue != nil {
		return value{typ: ast.Char, c: *lit.CharValue}
	} else if lit.StringValue != nil {
		return value{typ: ast.String, s: *lit.StringValue}
	}
	panic(fmt.Sprintf("invalid literal: %#v", lit))
}

func asInt(v value) int64 {
	switch v.typ {
	case ast.Int:
		return v.i
	case ast.Char:
		return int64(v.c)
	case ast.Bool:
		if v.b {
			return 1
		}
		return 0
	default:
		return v.i
	}
}

func asFloat(v value) float64 {
	if v.typ == ast.Float {
		return v.f
	}
	return float64(asInt(v))
}
