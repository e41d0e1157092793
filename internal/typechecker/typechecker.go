package typechecker

import (
	"fmt"

	"github.com/iley/minic/internal/ast"
	"github.com/iley/minic/internal/types"
)

// TypeChecker checks and fills in types in a program.
// It treats the input AST as effectively immutable and creates a full copy of the AST with the types filled in.
// Additionally it flattens nested variable scopes by giving each variable a name unique within the function.
type TypeChecker struct {
	program       *ast.Program
	vars          *varStack
	declaredFuncs map[string]types.FuncProto
	errors        []error
	currentFunc   types.FuncProto
	hasReturn     bool
}

func NewTypeChecker(program *ast.Program) *TypeChecker {
	return &TypeChecker{
		program:       program,
		declaredFuncs: make(map[string]types.FuncProto),
		errors:        []error{},
	}
}

func (c *TypeChecker) Errors() []error {
	return c.errors
}

func (c *TypeChecker) Check() *ast.Program {
	// Gather function prototypes so we can check arguments and types later.
	protos := types.GetFunctionTable(c.program)
	for _, proto := range protos {
		if _, exists := c.declaredFuncs[proto.Name]; exists {
			c.errors = append(c.errors, fmt.Errorf("duplicate function declaration: %s", proto.Name))
			continue
		}
		c.declaredFuncs[proto.Name] = proto
	}

	if _, hasMain := c.declaredFuncs["main"]; !hasMain {
		c.errors = append(c.errors, fmt.Errorf("program must declare a main function"))
	}

	checkedFunctions := make([]ast.Function, len(c.program.Functions))
	for i, fn := range c.program.Functions {
		checkedFunctions[i] = c.checkFunction(fn)
	}

	return &ast.Program{
		Loc:       c.program.Loc,
		Functions: checkedFunctions,
	}
}

func (c *TypeChecker) checkFunction(fn ast.Function) ast.Function {
	c.currentFunc = c.declaredFuncs[fn.Name]
	c.hasReturn = false
	c.vars = newVarStack()

	// Create the root scope for the function.
	c.vars.startScope()

	for _, arg := range fn.Args {
		if arg.Type == ast.Void {
			c.errors = append(c.errors, fmt.Errorf("%s: parameter %s of function %s cannot have type void", fn.Loc, arg.Name, fn.Name))
		}
		ok := c.vars.declare(arg.Name, arg.Type)
		if !ok {
			c.errors = append(c.errors, fmt.Errorf("%s: duplicate function parameter: %s", fn.Loc, arg.Name))
		}
	}

	var checkedBody *ast.Block
	if fn.Body != nil {
		checkedBody = c.checkBlock(fn.Body)
	}

	if c.currentFunc.ReturnType != ast.Void && !c.hasReturn {
		c.errors = append(c.errors, fmt.Errorf("%s: function %s with return type %s must contain a return statement", fn.Loc, c.currentFunc.Name, c.currentFunc.ReturnType))
	}

	args := make([]ast.Arg, len(fn.Args))
	copy(args, fn.Args)

	return ast.Function{
		Loc:        fn.Loc,
		Name:       fn.Name,
		Args:       args,
		Body:       checkedBody,
		ReturnType: fn.ReturnType,
	}
}

func (c *TypeChecker) checkBlock(block *ast.Block) *ast.Block {
	checkedStatements := make([]ast.Statement, len(block.Statements))

	c.vars.startScope()
	for i, stmt := range block.Statements {
		checkedStatements[i] = c.checkStatement(stmt)
	}
	c.vars.endScope()

	return &ast.Block{
		Loc:        block.Loc,
		Statements: checkedStatements,
	}
}

func (c *TypeChecker) checkStatement(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return c.checkVariableDeclaration(s)
	case *ast.ExpressionStatement:
		return c.checkExpressionStatement(s)
	case *ast.ReturnStatement:
		return c.checkReturnStatement(s)
	case *ast.IfStatement:
		return c.checkIfStatement(s)
	case *ast.WhileStatement:
		return c.checkWhileStatement(s)
	case *ast.ForStatement:
		return c.checkForStatement(s)
	case *ast.PrintStatement:
		return c.checkPrintStatement(s)
	case *ast.ReadStatement:
		return c.checkReadStatement(s)
	case *ast.BlockStatement:
		return c.checkBlockStatement(s)
	default:
		panic(fmt.Sprintf("unsupported statement type: %v", stmt))
	}
}

func (c *TypeChecker) checkExpression(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.Literal:
		return c.checkLiteral(e)
	case *ast.Assignment:
		return c.checkAssignment(e)
	case *ast.FunctionCall:
		return c.checkFunctionCall(e)
	case *ast.VariableReference:
		return c.checkVariableReference(e)
	case *ast.BinaryOperation:
		return c.checkBinaryOperation(e)
	case *ast.UnaryOperation:
		return c.checkUnaryOperation(e)
	case *ast.ReadExpression:
		return c.checkReadExpression(e)
	default:
		panic(fmt.Sprintf("invalid expression type: %v", expr))
	}
}

func (c *TypeChecker) checkLiteral(lit *ast.Literal) *ast.Literal {
	var t ast.Type
	if lit.IntValue != nil {
		t = ast.Int
	} else if lit.FloatValue != nil {
		t = ast.Float
	} else if lit.BoolValue != nil {
		t = ast.Bool
	} else if lit.CharValue != nil {
		t = ast.Char
	} else if lit.StringValue != nil {
		t = ast.String
	} else {
		panic(fmt.Sprintf("unknown literal type: %v", *lit))
	}

	result := *lit
	result.Type = t
	return &result
}

func (c *TypeChecker) checkVariableDeclaration(decl *ast.VariableDeclaration) *ast.VariableDeclaration {
	if decl.Type == ast.Void {
		c.errors = append(c.errors, fmt.Errorf("%s: variable %s cannot have type void", decl.Loc, decl.Name))
	}

	var checkedInitializer ast.Expression
	if decl.Initializer != nil {
		checkedInitializer = c.checkExpression(decl.Initializer)
		initType := checkedInitializer.GetType()
		if initType != "" && !ast.AreCompatibleTypes(decl.Type, initType) {
			c.errors = append(c.errors, fmt.Errorf("%s: cannot initialize variable %s of type %s with expression of type %s",
				decl.Loc, decl.Name, decl.Type, initType))
		}
	}

	ok := c.vars.declare(decl.Name, decl.Type)
	if !ok {
		c.errors = append(c.errors, fmt.Errorf("%s: variable %s is already declared", decl.Loc, decl.Name))
	}

	_, uniqueName, _ := c.vars.lookup(decl.Name)

	result := *decl
	result.Initializer = checkedInitializer
	result.Name = uniqueName
	return &result
}

func (c *TypeChecker) checkFunctionCall(call *ast.FunctionCall) *ast.FunctionCall {
	proto, declared := c.declaredFuncs[call.FunctionName]
	if !declared {
		c.errors = append(c.errors, fmt.Errorf("%s: function %s is not declared", call.Loc, call.FunctionName))
		// Use a default proto to avoid cascading errors.
		proto.ReturnType = ast.Int
	}

	if declared && len(proto.Params) != len(call.Args) {
		c.errors = append(c.errors, fmt.Errorf("%s: function %s has %d parameters but %d arguments were provided",
			call.Loc, call.FunctionName, len(proto.Params), len(call.Args)))
	}

	checkedArgs := make([]ast.Expression, len(call.Args))
	for i, expr := range call.Args {
		checkedArgs[i] = c.checkExpression(expr)
		if !declared || i >= len(proto.Params) {
			continue
		}
		actualType := checkedArgs[i].GetType()
		expectedType := proto.Params[i].Typ
		if actualType != "" && !ast.AreCompatibleTypes(expectedType, actualType) {
			c.errors = append(c.errors, fmt.Errorf("%s: argument #%d of function %s has wrong type: expected %s but got %s",
				call.Loc, i+1, call.FunctionName, expectedType, actualType))
		}
	}

	return &ast.FunctionCall{
		Loc:          call.Loc,
		FunctionName: call.FunctionName,
		Args:         checkedArgs,
		Type:         proto.ReturnType,
	}
}

func (c *TypeChecker) checkExpressionStatement(e *ast.ExpressionStatement) *ast.ExpressionStatement {
	result := *e
	result.Expression = c.checkExpression(e.Expression)
	return &result
}

func (c *TypeChecker) checkAssignment(assignment *ast.Assignment) *ast.Assignment {
	targetType, uniqueName, declared := c.vars.lookup(assignment.Target)
	if !declared {
		c.errors = append(c.errors, fmt.Errorf("%s: variable %s is not declared before assignment", assignment.Loc, assignment.Target))
		uniqueName = assignment.Target
		targetType = ast.Int
	}

	checkedValue := c.checkExpression(assignment.Value)
	valueType := checkedValue.GetType()

	if valueType != "" && !ast.AreCompatibleTypes(targetType, valueType) {
		c.errors = append(c.errors, fmt.Errorf("%s: cannot assign value of type %s to variable %s of type %s",
			assignment.Loc, valueType, assignment.Target, targetType))
	}

	result := *assignment
	result.Target = uniqueName
	result.Value = checkedValue
	result.Type = targetType
	return &result
}

func (c *TypeChecker) checkVariableReference(ref *ast.VariableReference) *ast.VariableReference {
	typ, uniqueName, declared := c.vars.lookup(ref.Name)
	if !declared {
		c.errors = append(c.errors, fmt.Errorf("%s: variable %s is not declared before reference", ref.Loc, ref.Name))
		uniqueName = ref.Name
		typ = ast.Int
	}

	result := *ref
	result.Name = uniqueName
	result.Type = typ
	return &result
}

func (c *TypeChecker) checkReadExpression(read *ast.ReadExpression) *ast.ReadExpression {
	typ, uniqueName, declared := c.vars.lookup(read.Name)
	if !declared {
		c.errors = append(c.errors, fmt.Errorf("%s: variable %s is not declared before read", read.Loc, read.Name))
		uniqueName = read.Name
		typ = ast.Int
	}

	result := *read
	result.Name = uniqueName
	result.Type = typ
	return &result
}

func (c *TypeChecker) checkReturnStatement(stmt *ast.ReturnStatement) *ast.ReturnStatement {
	c.hasReturn = true

	if stmt.Value == nil && c.currentFunc.ReturnType != ast.Void {
		c.errors = append(c.errors, fmt.Errorf("%s: function %s should return a value of type %s but no value was provided",
			stmt.Loc, c.currentFunc.Name, c.currentFunc.ReturnType,
		))
	}

	var checkedValue ast.Expression
	if stmt.Value != nil {
		checkedValue = c.checkExpression(stmt.Value)
		typ := checkedValue.GetType()
		if c.currentFunc.ReturnType == ast.Void {
			c.errors = append(c.errors, fmt.Errorf("%s: function %s does not return a value but one was provided",
				stmt.Loc, c.currentFunc.Name,
			))
		} else if typ != "" && !ast.AreCompatibleTypes(c.currentFunc.ReturnType, typ) {
			c.errors = append(c.errors, fmt.Errorf("%s: function %s has return type %s but a value of type %s was provided",
				stmt.Loc, c.currentFunc.Name, c.currentFunc.ReturnType, typ,
			))
		}
	}

	result := *stmt
	result.Value = checkedValue
	return &result
}

func (c *TypeChecker) checkBinaryOperation(binOp *ast.BinaryOperation) *ast.BinaryOperation {
	leftExpr := c.checkExpression(binOp.Left)
	rightExpr := c.checkExpression(binOp.Right)
	leftType := leftExpr.GetType()
	rightType := rightExpr.GetType()
	resultType, ok := binaryOperationResult(binOp.Operator, leftType, rightType)
	if !ok {
		c.errors = append(c.errors, fmt.Errorf("%s: binary operation %s cannot be applied to values of types %s and %s",
			binOp.Loc,
			binOp.Operator,
			leftType,
			rightType,
		))
		resultType = ast.Int // Use a default type to avoid cascading errors.
	}
	result := *binOp
	result.Left = leftExpr
	result.Right = rightExpr
	result.Type = resultType
	return &result
}

func (c *TypeChecker) checkUnaryOperation(unaryOp *ast.UnaryOperation) *ast.UnaryOperation {
	operandExpr := c.checkExpression(unaryOp.Operand)
	operandType := operandExpr.GetType()
	resultType, ok := unaryOperationResult(unaryOp.Operator, operandType)
	if !ok {
		c.errors = append(c.errors, fmt.Errorf("%s: unary operation %s cannot be applied to a value of type %s",
			unaryOp.Loc,
			unaryOp.Operator,
			operandType,
		))
		resultType = ast.Int // Use a default type to avoid cascading errors.
	}
	result := *unaryOp
	result.Operand = operandExpr
	result.Type = resultType
	return &result
}

func (c *TypeChecker) checkCondition(cond ast.Expression, context string) ast.Expression {
	checked := c.checkExpression(cond)
	if typ := checked.GetType(); typ != ast.Bool {
		c.errors = append(c.errors, fmt.Errorf("%s: expected an expression of type bool in %s condition, got type %s",
			cond.GetLocation(), context, typ))
	}
	return checked
}

func (c *TypeChecker) checkIfStatement(stmt *ast.IfStatement) *ast.IfStatement {
	checkedCondition := c.checkCondition(stmt.Condition, "if")
	checkedThenBlock := c.checkBlock(&stmt.ThenBlock)
	var checkedElseBlock *ast.Block
	if stmt.ElseBlock != nil {
		checkedElseBlock = c.checkBlock(stmt.ElseBlock)
	}
	return &ast.IfStatement{
		Loc:       stmt.Loc,
		Condition: checkedCondition,
		ThenBlock: *checkedThenBlock,
		ElseBlock: checkedElseBlock,
	}
}

func (c *TypeChecker) checkWhileStatement(stmt *ast.WhileStatement) *ast.WhileStatement {
	checkedCondition := c.checkCondition(stmt.Condition, "while")
	checkedBody := c.checkBlock(&stmt.Body)
	return &ast.WhileStatement{
		Loc:       stmt.Loc,
		Condition: checkedCondition,
		Body:      *checkedBody,
	}
}

func (c *TypeChecker) checkForStatement(stmt *ast.ForStatement) *ast.ForStatement {
	// The init clause gets its own scope enclosing the body.
	c.vars.startScope()

	var checkedInit ast.Statement
	if stmt.Init != nil {
		checkedInit = c.checkStatement(stmt.Init)
	}
	var checkedCondition ast.Expression
	if stmt.Condition != nil {
		checkedCondition = c.checkCondition(stmt.Condition, "for")
	}
	var checkedUpdate ast.Expression
	if stmt.Update != nil {
		checkedUpdate = c.checkExpression(stmt.Update)
	}
	checkedBody := c.checkBlock(&stmt.Body)

	c.vars.endScope()

	return &ast.ForStatement{
		Loc:       stmt.Loc,
		Init:      checkedInit,
		Condition: checkedCondition,
		Update:    checkedUpdate,
		Body:      *checkedBody,
	}
}

func (c *TypeChecker) checkPrintStatement(stmt *ast.PrintStatement) *ast.PrintStatement {
	checkedValue := c.checkExpression(stmt.Value)
	if typ := checkedValue.GetType(); typ == ast.Void {
		c.errors = append(c.errors, fmt.Errorf("%s: cannot print a value of type void", stmt.Loc))
	}
	return &ast.PrintStatement{
		Loc:   stmt.Loc,
		Value: checkedValue,
	}
}

func (c *TypeChecker) checkReadStatement(stmt *ast.ReadStatement) *ast.ReadStatement {
	typ, uniqueName, declared := c.vars.lookup(stmt.Name)
	if !declared {
		c.errors = append(c.errors, fmt.Errorf("%s: variable %s is not declared before read", stmt.Loc, stmt.Name))
		uniqueName = stmt.Name
		typ = ast.Int
	}
	return &ast.ReadStatement{
		Loc:  stmt.Loc,
		Name: uniqueName,
		Type: typ,
	}
}

func (c *TypeChecker) checkBlockStatement(stmt *ast.BlockStatement) *ast.BlockStatement {
	checkedBlock := c.checkBlock(&stmt.Block)
	return &ast.BlockStatement{
		Loc:   stmt.Loc,
		Block: *checkedBlock,
	}
}

func unaryOperationResult(op string, val ast.Type) (ast.Type, bool) {
	switch op {
	case "!":
		return ast.Bool, val == ast.Bool
	case "-", "+":
		return val, val.IsNumeric()
	}
	panic(fmt.Sprintf("unknown unary operation %s", op))
}

func binaryOperationResult(op string, left, right ast.Type) (ast.Type, bool) {
	switch op {
	case "+", "-", "*", "/":
		if !left.IsNumeric() || !right.IsNumeric() {
			return "", false
		}
		return arithmeticResult(left, right), true
	case "%":
		// Modulo only makes sense for integral operands.
		ok := (left == ast.Int || left == ast.Char) && (right == ast.Int || right == ast.Char)
		return ast.Int, ok
	case "<", ">", "<=", ">=":
		return ast.Bool, left.IsNumeric() && right.IsNumeric()
	case "==", "!=":
		if left.IsNumeric() && right.IsNumeric() {
			return ast.Bool, true
		}
		return ast.Bool, left == right && left != ast.Void && left != ""
	case "&&", "||":
		return ast.Bool, left == ast.Bool && right == ast.Bool
	}
	panic(fmt.Sprintf("unknown binary operation %s", op))
}

// arithmeticResult picks the result type of an arithmetic operation on
// numeric operands. Floats are contagious; chars promote to int.
func arithmeticResult(left, right ast.Type) ast.Type {
	if left == ast.Float || right == ast.Float {
		return ast.Float
	}
	return ast.Int
}
