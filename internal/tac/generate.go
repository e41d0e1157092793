package tac

import (
	"fmt"

	"github.com/iley/minic/internal/ast"
	"github.com/iley/minic/internal/types"
)

// Generator translates a typechecked, desugared AST into three-address code.
// Temporaries ($1, $2, ...) and labels (L1, L2, ...) are numbered per function.
type Generator struct {
	errors         []error
	nextTempIndex  int
	nextLabelIndex int
	protos         []types.FuncProto
	returnType     ast.Type
}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) allocTemp() string {
	g.nextTempIndex++
	return fmt.Sprintf("$%d", g.nextTempIndex)
}

func (g *Generator) allocLabel() string {
	g.nextLabelIndex++
	return fmt.Sprintf("L%d", g.nextLabelIndex)
}

func (g *Generator) errorf(format string, args ...any) {
	g.errors = append(g.errors, fmt.Errorf(format, args...))
}

func (g *Generator) Generate(node *ast.Program) (Program, []error) {
	g.protos = types.GetFunctionTable(node)
	program := Program{}
	for _, function := range node.Functions {
		if function.Body == nil {
			continue
		}
		program.Functions = append(program.Functions, g.generateFunction(function))
	}
	if len(g.errors) > 0 {
		return Program{}, g.errors
	}
	return program, nil
}

func (g *Generator) generateFunction(node ast.Function) Function {
	fn := Function{
		Name:   node.Name,
		Params: []string{},
		Ops:    []Op{},
	}

	g.nextTempIndex = 0
	g.nextLabelIndex = 0
	g.returnType = node.ReturnType

	for _, arg := range node.Args {
		fn.Params = append(fn.Params, arg.Name)
	}

	fn.Ops = g.generateBlockOps(*node.Body)

	// Add an implicit return in case the function doesn't end with one.
	// Presence of a return with the right type is checked upstream; non-void
	// functions fall back to the zero value of their return type.
	if needsImplicitReturn(fn.Ops) {
		if node.ReturnType == ast.Void {
			fn.Ops = append(fn.Ops, Return{Value: nil})
		} else {
			zero := zeroOperand(node.ReturnType)
			fn.Ops = append(fn.Ops, Return{Value: &zero})
		}
	}

	return fn
}

func needsImplicitReturn(ops []Op) bool {
	if len(ops) == 0 {
		return true
	}
	_, isReturn := ops[len(ops)-1].(Return)
	return !isReturn
}

func (g *Generator) generateBlockOps(block ast.Block) []Op {
	ops := []Op{}
	for _, stmt := range block.Statements {
		ops = append(ops, g.generateStatementOps(stmt)...)
	}
	return ops
}

func (g *Generator) generateStatementOps(node ast.Statement) []Op {
	ops := []Op{}
	switch stmt := node.(type) {
	case *ast.VariableDeclaration:
		initOperand := zeroOperand(stmt.Type)
		if stmt.Initializer != nil {
			var initOps []Op
			initOps, initOperand = g.generateExpressionOps(stmt.Initializer)
			ops = append(ops, initOps...)
			var convOps []Op
			convOps, initOperand = g.convertOps(initOperand, stmt.Initializer.GetType(), stmt.Type)
			ops = append(ops, convOps...)
		}
		ops = append(ops, Assign{Target: stmt.Name, Value: initOperand})
	case *ast.ExpressionStatement:
		// The result of the expression is ignored.
		exprOps, _ := g.generateExpressionOps(stmt.Expression)
		ops = append(ops, exprOps...)
	case *ast.ReturnStatement:
		if stmt.Value != nil {
			exprOps, result := g.generateExpressionOps(stmt.Value)
			ops = append(ops, exprOps...)
			convOps, converted := g.convertOps(result, stmt.Value.GetType(), g.returnType)
			ops = append(ops, convOps...)
			ops = append(ops, Return{Value: &converted})
		} else {
			ops = append(ops, Return{Value: nil})
		}
	case *ast.IfStatement:
		ops = g.generateIfOps(*stmt)
	case *ast.WhileStatement:
		ops = g.generateWhileOps(*stmt)
	case *ast.PrintStatement:
		exprOps, value := g.generateExpressionOps(stmt.Value)
		ops = append(ops, exprOps...)
		ops = append(ops, Print{Value: value})
	case *ast.ReadStatement:
		ops = append(ops, Read{Target: stmt.Name, Type: stmt.Type})
	case *ast.BlockStatement:
		ops = append(ops, g.generateBlockOps(stmt.Block)...)
	default:
		// For loops are rewritten into while loops before codegen.
		panic(fmt.Sprintf("unknown statement type %v", node))
	}
	return ops
}

// generateExpressionOps generates a sequence of ops for a given expression.
// Returns the ops and an operand holding the value (typically a temporary).
func (g *Generator) generateExpressionOps(node ast.Expression) ([]Op, Operand) {
	switch expr := node.(type) {
	case *ast.Literal:
		return []Op{}, literalOperand(expr)
	case *ast.VariableReference:
		return []Op{}, Var(expr.Name)
	case *ast.Assignment:
		ops, value := g.generateExpressionOps(expr.Value)
		convOps, converted := g.convertOps(value, expr.Value.GetType(), expr.Type)
		ops = append(ops, convOps...)
		ops = append(ops, Assign{Target: expr.Target, Value: converted})
		return ops, Var(expr.Target)
	case *ast.BinaryOperation:
		return g.generateBinaryOperationOps(expr)
	case *ast.UnaryOperation:
		ops, value := g.generateExpressionOps(expr.Operand)
		temp := g.allocTemp()
		ops = append(ops, UnaryOp{Result: temp, Operation: expr.Operator, Value: value})
		return ops, Var(temp)
	case *ast.FunctionCall:
		return g.generateFunctionCallOps(expr)
	case *ast.ReadExpression:
		return []Op{Read{Target: expr.Name, Type: expr.Type}}, Var(expr.Name)
	default:
		panic(fmt.Sprintf("unknown expression type: %v", node))
	}
}

func (g *Generator) generateBinaryOperationOps(binOp *ast.BinaryOperation) ([]Op, Operand) {
	// Logical operations short-circuit, so they get jumps instead of a BinaryOp.
	switch binOp.Operator {
	case "&&":
		return g.generateLogicalAndOps(binOp)
	case "||":
		return g.generateLogicalOrOps(binOp)
	}

	leftOps, left := g.generateExpressionOps(binOp.Left)
	rightOps, right := g.generateExpressionOps(binOp.Right)
	ops := append(leftOps, rightOps...)
	temp := g.allocTemp()
	ops = append(ops, BinaryOp{
		Result:    temp,
		Operation: binOp.Operator,
		Left:      left,
		Right:     right,
	})
	return ops, Var(temp)
}

// generateLogicalAndOps lowers `left && right` so that the right side is only
// evaluated when the left side is true.
func (g *Generator) generateLogicalAndOps(binOp *ast.BinaryOperation) ([]Op, Operand) {
	falseLabel := g.allocLabel()
	endLabel := g.allocLabel()
	temp := g.allocTemp()

	ops, left := g.generateExpressionOps(binOp.Left)
	ops = append(ops, JumpUnless{Condition: left, Goto: falseLabel})
	rightOps, right := g.generateExpressionOps(binOp.Right)
	ops = append(ops, rightOps...)
	ops = append(ops, Assign{Target: temp, Value: right})
	ops = append(ops, Jump{Goto: endLabel})
	ops = append(ops, Anchor{Label: falseLabel})
	ops = append(ops, Assign{Target: temp, Value: BoolOperand(false)})
	ops = append(ops, Anchor{Label: endLabel})
	return ops, Var(temp)
}

// generateLogicalOrOps lowers `left || right` so that the right side is only
// evaluated when the left side is false.
func (g *Generator) generateLogicalOrOps(binOp *ast.BinaryOperation) ([]Op, Operand) {
	trueLabel := g.allocLabel()
	endLabel := g.allocLabel()
	temp := g.allocTemp()

	ops, left := g.generateExpressionOps(binOp.Left)
	ops = append(ops, JumpIf{Condition: left, Goto: trueLabel})
	rightOps, right := g.generateExpressionOps(binOp.Right)
	ops = append(ops, rightOps...)
	ops = append(ops, Assign{Target: temp, Value: right})
	ops = append(ops, Jump{Goto: endLabel})
	ops = append(ops, Anchor{Label: trueLabel})
	ops = append(ops, Assign{Target: temp, Value: BoolOperand(true)})
	ops = append(ops, Anchor{Label: endLabel})
	return ops, Var(temp)
}

func (g *Generator) generateFunctionCallOps(call *ast.FunctionCall) ([]Op, Operand) {
	proto, declared := types.FindFunction(g.protos, call.FunctionName)

	ops := []Op{}
	args := []Operand{}
	for i, argNode := range call.Args {
		argOps, arg := g.generateExpressionOps(argNode)
		ops = append(ops, argOps...)
		if declared && i < len(proto.Params) {
			var convOps []Op
			convOps, arg = g.convertOps(arg, argNode.GetType(), proto.Params[i].Typ)
			ops = append(ops, convOps...)
		}
		args = append(args, arg)
	}
	// Params are queued only after all argument expressions are evaluated
	// so that nested calls don't clobber the queue.
	for _, arg := range args {
		ops = append(ops, Param{Value: arg})
	}

	// Void functions leave no value behind, so the call gets no result.
	if call.Type == ast.Void {
		ops = append(ops, Call{Function: call.FunctionName, Arity: len(args)})
		return ops, Operand{}
	}
	temp := g.allocTemp()
	ops = append(ops, Call{Result: temp, Function: call.FunctionName, Arity: len(args)})
	return ops, Var(temp)
}

func (g *Generator) generateIfOps(stmt ast.IfStatement) []Op {
	ops := []Op{}

	if stmt.ElseBlock == nil {
		endLabel := g.allocLabel()
		condOps, cond := g.generateExpressionOps(stmt.Condition)
		ops = append(ops, condOps...)
		ops = append(ops, JumpUnless{Condition: cond, Goto: endLabel})
		ops = append(ops, g.generateBlockOps(stmt.ThenBlock)...)
		ops = append(ops, Anchor{Label: endLabel})
	} else {
		elseLabel := g.allocLabel()
		endLabel := g.allocLabel()
		condOps, cond := g.generateExpressionOps(stmt.Condition)
		ops = append(ops, condOps...)
		ops = append(ops, JumpUnless{Condition: cond, Goto: elseLabel})
		ops = append(ops, g.generateBlockOps(stmt.ThenBlock)...)
		ops = append(ops, Jump{Goto: endLabel})
		ops = append(ops, Anchor{Label: elseLabel})
		ops = append(ops, g.generateBlockOps(*stmt.ElseBlock)...)
		ops = append(ops, Anchor{Label: endLabel})
	}

	return ops
}

func (g *Generator) generateWhileOps(stmt ast.WhileStatement) []Op {
	startLabel := g.allocLabel()
	endLabel := g.allocLabel()

	ops := []Op{}
	ops = append(ops, Anchor{Label: startLabel})
	condOps, cond := g.generateExpressionOps(stmt.Condition)
	ops = append(ops, condOps...)
	ops = append(ops, JumpUnless{Condition: cond, Goto: endLabel})
	ops = append(ops, g.generateBlockOps(stmt.Body)...)
	ops = append(ops, Jump{Goto: startLabel})
	ops = append(ops, Anchor{Label: endLabel})

	return ops
}

// convertOps inserts a conversion for a value crossing a typed boundary:
// a declaration, an assignment, a call argument or a return value.
// Values of matching types pass through untouched. The executors keep
// runtime values untyped otherwise, so without these ops an int stored
// into a float variable would keep int division semantics.
func (g *Generator) convertOps(value Operand, from, to ast.Type) ([]Op, Operand) {
	operation, ok := conversionOperation(from, to)
	if !ok {
		return nil, value
	}
	temp := g.allocTemp()
	return []Op{UnaryOp{Result: temp, Operation: operation, Value: value}}, Var(temp)
}

// conversionOperation mirrors ast.AreCompatibleTypes.
func conversionOperation(from, to ast.Type) (string, bool) {
	switch {
	case to == ast.Float && from == ast.Int:
		return "(float)", true
	case to == ast.Int && from == ast.Char:
		return "(int)", true
	case to == ast.Char && from == ast.Int:
		return "(char)", true
	}
	return "", false
}

func literalOperand(lit *ast.Literal) Operand {
	if lit.IntValue != nil {
		return Operand{LiteralInt: lit.IntValue}
	} else if lit.FloatValue != nil {
		return Operand{LiteralFloat: lit.FloatValue}
	} else if lit.BoolValue != nil {
		return Operand{LiteralBool: lit.BoolValue}
	} else if lit.CharValue != nil {
		return Operand{LiteralChar: lit.CharValue}
	} else if lit.StringValue != nil {
		return Operand{LiteralString: lit.StringValue}
	}
	panic(fmt.Sprintf("invalid literal: %#v", lit))
}

// zeroOperand is the default value for a declared but uninitialized variable.
func zeroOperand(typ ast.Type) Operand {
	switch typ {
	case ast.Int:
		return IntOperand(0)
	case ast.Float:
		return FloatOperand(0)
	case ast.Bool:
		return BoolOperand(false)
	case ast.Char:
		return CharOperand(0)
	default:
		return IntOperand(0)
	}
}
