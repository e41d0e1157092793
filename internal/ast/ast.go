package ast

import (
	"fmt"
	"strings"

	"github.com/iley/minic/internal/lexer"
	"github.com/iley/minic/internal/util"
)

type Location = lexer.Location

type AstNode interface {
	fmt.Stringer
	GetLocation() Location
}

type Program struct {
	Loc       Location
	Functions []Function
}

func (p *Program) GetLocation() Location {
	return p.Loc
}

func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString("(program")
	for _, fn := range p.Functions {
		sb.WriteString(" ")
		sb.WriteString(fn.String())
	}
	sb.WriteString(")")
	return sb.String()
}

type Function struct {
	Loc        Location
	Name       string
	Args       []Arg
	ReturnType Type
	Body       *Block
}

func (f *Function) GetLocation() Location {
	return f.Loc
}

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("(func %s (", f.Name))
	for i, arg := range f.Args {
		sb.WriteString(arg.String())
		if i != len(f.Args)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString(") ")
	sb.WriteString(f.ReturnType.String() + " ")
	sb.WriteString(f.Body.String())
	sb.WriteString(")")
	return sb.String()
}

type Arg struct {
	Loc  Location
	Name string
	Type Type
}

func (a Arg) GetLocation() Location {
	return a.Loc
}

func (a Arg) String() string {
	return fmt.Sprintf("(%s %s)", a.Name, a.Type.String())
}

type Block struct {
	Loc        Location
	Statements []Statement
}

func (b *Block) GetLocation() Location {
	return b.Loc
}

func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("(block")
	for _, stmt := range b.Statements {
		sb.WriteString(" ")
		sb.WriteString(stmt.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Statement types.

type Statement interface {
	AstNode
	isStatement()
}

type VariableDeclaration struct {
	Loc         Location
	Name        string
	Type        Type
	Initializer Expression // optional
}

func (d *VariableDeclaration) GetLocation() Location {
	return d.Loc
}

func (d *VariableDeclaration) isStatement() {}

func (d *VariableDeclaration) String() string {
	if d.Initializer != nil {
		return fmt.Sprintf("(decl %s %s %s)", d.Name, d.Type.String(), d.Initializer.String())
	}
	return fmt.Sprintf("(decl %s %s)", d.Name, d.Type.String())
}

type ExpressionStatement struct {
	Loc        Location
	Expression Expression
}

func (s *ExpressionStatement) GetLocation() Location {
	return s.Loc
}

func (s *ExpressionStatement) isStatement() {}

func (s *ExpressionStatement) String() string {
	return s.Expression.String()
}

type ReturnStatement struct {
	Loc   Location
	Value Expression // optional return value
}

func (s *ReturnStatement) GetLocation() Location {
	return s.Loc
}

func (s *ReturnStatement) isStatement() {}

func (s *ReturnStatement) String() string {
	if s.Value != nil {
		return fmt.Sprintf("(return %s)", s.Value.String())
	}
	return "(return)"
}

type IfStatement struct {
	Loc       Location
	Condition Expression
	ThenBlock Block
	ElseBlock *Block // optional
}

func (s *IfStatement) GetLocation() Location {
	return s.Loc
}

func (s *IfStatement) isStatement() {}

func (s *IfStatement) String() string {
	if s.ElseBlock != nil {
		return fmt.Sprintf("(if %s %s %s)", s.Condition.String(), s.ThenBlock.String(), s.ElseBlock.String())
	}
	return fmt.Sprintf("(if %s %s)", s.Condition.String(), s.ThenBlock.String())
}

type WhileStatement struct {
	Loc       Location
	Condition Expression
	Body      Block
}

func (s *WhileStatement) GetLocation() Location {
	return s.Loc
}

func (s *WhileStatement) isStatement() {}

func (s *WhileStatement) String() string {
	return fmt.Sprintf("(while %s %s)", s.Condition.String(), s.Body.String())
}

type ForStatement struct {
	Loc       Location
	Init      Statement  // optional
	Condition Expression // optional, defaults to true
	Update    Expression // optional
	Body      Block
}

func (s *ForStatement) GetLocation() Location {
	return s.Loc
}

func (s *ForStatement) isStatement() {}

func (s *ForStatement) String() string {
	init := "()"
	if s.Init != nil {
		init = s.Init.String()
	}
	cond := "()"
	if s.Condition != nil {
		cond = s.Condition.String()
	}
	update := "()"
	if s.Update != nil {
		update = s.Update.String()
	}
	return fmt.Sprintf("(for %s %s %s %s)", init, cond, update, s.Body.String())
}

type PrintStatement struct {
	Loc   Location
	Value Expression
}

func (s *PrintStatement) GetLocation() Location {
	return s.Loc
}

func (s *PrintStatement) isStatement() {}

func (s *PrintStatement) String() string {
	return fmt.Sprintf("(print %s)", s.Value.String())
}

type ReadStatement struct {
	Loc  Location
	Name string
	Type Type // type of the variable being read, filled in by the typechecker
}

func (s *ReadStatement) GetLocation() Location {
	return s.Loc
}

func (s *ReadStatement) isStatement() {}

func (s *ReadStatement) String() string {
	return fmt.Sprintf("(read %s)", s.Name)
}

type BlockStatement struct {
	Loc   Location
	Block Block
}

func (s *BlockStatement) GetLocation() Location {
	return s.Loc
}

func (s *BlockStatement) isStatement() {}

func (s *BlockStatement) String() string {
	return s.Block.String()
}

// Expression types.

type Expression interface {
	AstNode
	isExpression()
	// GetType returns the type of the expression.
	// Returns the zero Type for expressions that have not been typechecked.
	GetType() Type
}

type Literal struct {
	Loc         Location
	IntValue    *int64
	FloatValue  *float64
	BoolValue   *bool
	CharValue   *rune
	StringValue *string
	Type        Type
}

func (l *Literal) GetLocation() Location {
	return l.Loc
}

func (l *Literal) isExpression() {}

func (l *Literal) GetType() Type {
	return l.Type
}

func (l *Literal) String() string {
	if l.IntValue != nil {
		return fmt.Sprintf("%d", *l.IntValue)
	} else if l.FloatValue != nil {
		return fmt.Sprintf("%g", *l.FloatValue)
	} else if l.BoolValue != nil {
		return fmt.Sprintf("%t", *l.BoolValue)
	} else if l.CharValue != nil {
		return fmt.Sprintf("'%c'", *l.CharValue)
	} else if l.StringValue != nil {
		return fmt.Sprintf("\"%s\"", util.EscapeString(*l.StringValue))
	}
	panic(fmt.Sprintf("invalid literal: %#v", l))
}

type VariableReference struct {
	Loc  Location
	Name string
	Type Type
}

func (r *VariableReference) GetLocation() Location {
	return r.Loc
}

func (r *VariableReference) isExpression() {}

func (r *VariableReference) GetType() Type {
	return r.Type
}

func (r *VariableReference) String() string {
	return r.Name
}

type Assignment struct {
	Loc    Location
	Target string
	Value  Expression
	Type   Type
}

func (a *Assignment) GetLocation() Location {
	return a.Loc
}

func (a *Assignment) isExpression() {}

func (a *Assignment) GetType() Type {
	return a.Type
}

func (a *Assignment) String() string {
	return fmt.Sprintf("(= %s %s)", a.Target, a.Value.String())
}

type BinaryOperation struct {
	Loc      Location
	Operator string
	Left     Expression
	Right    Expression
	Type     Type
}

func (o *BinaryOperation) GetLocation() Location {
	return o.Loc
}

func (o *BinaryOperation) isExpression() {}

func (o *BinaryOperation) GetType() Type {
	return o.Type
}

func (o *BinaryOperation) String() string {
	return fmt.Sprintf("(%s %s %s)", o.Operator, o.Left.String(), o.Right.String())
}

type UnaryOperation struct {
	Loc      Location
	Operator string
	Operand  Expression
	Type     Type
}

func (o *UnaryOperation) GetLocation() Location {
	return o.Loc
}

func (o *UnaryOperation) isExpression() {}

func (o *UnaryOperation) GetType() Type {
	return o.Type
}

func (o *UnaryOperation) String() string {
	return fmt.Sprintf("(%s %s)", o.Operator, o.Operand.String())
}

type FunctionCall struct {
	Loc          Location
	FunctionName string
	Args         []Expression
	Type         Type
}

func (c *FunctionCall) GetLocation() Location {
	return c.Loc
}

func (c *FunctionCall) isExpression() {}

func (c *FunctionCall) GetType() Type {
	return c.Type
}

func (c *FunctionCall) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("(call %s", c.FunctionName))
	for _, arg := range c.Args {
		sb.WriteString(" ")
		sb.WriteString(arg.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// ReadExpression is `read(x)` used in expression position: it reads a value
// into x and yields it. The statement form is ReadStatement.
type ReadExpression struct {
	Loc  Location
	Name string
	Type Type
}

func (r *ReadExpression) GetLocation() Location {
	return r.Loc
}

func (r *ReadExpression) isExpression() {}

func (r *ReadExpression) GetType() Type {
	return r.Type
}

func (r *ReadExpression) String() string {
	return fmt.Sprintf("(read %s)", r.Name)
}
