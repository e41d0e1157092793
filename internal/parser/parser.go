package parser

import (
	"fmt"
	"strconv"

	"github.com/iley/minic/internal/ast"
	"github.com/iley/minic/internal/lexer"
	"github.com/iley/minic/internal/util"
)

type Parser struct {
	lexer   *lexer.Lexer
	lexemes []lexer.Lexeme
	pos     int
}

func New(lex *lexer.Lexer) *Parser {
	return &Parser{lexer: lex}
}

func (p *Parser) consume() (lexer.Lexeme, error) {
	if p.pos >= len(p.lexemes) {
		lex, err := p.lexer.Next()
		if err != nil {
			return lexer.Lexeme{}, err
		}
		p.lexemes = append(p.lexemes, lex)
	}
	lex := p.lexemes[p.pos]
	p.pos++
	return lex, nil
}

func (p *Parser) peek() (lexer.Lexeme, error) {
	if p.pos >= len(p.lexemes) {
		lex, err := p.lexer.Next()
		if err != nil {
			return lexer.Lexeme{}, err
		}
		p.lexemes = append(p.lexemes, lex)
	}
	return p.lexemes[p.pos], nil
}

func (p *Parser) expectPunctuation(str string) (lexer.Lexeme, error) {
	lex, err := p.consume()
	if err != nil {
		return lexer.Lexeme{}, err
	}
	if !lex.IsPunctuation(str) {
		return lexer.Lexeme{}, fmt.Errorf("%s: expected %q, got %v", lex.Loc, str, lex)
	}
	return lex, nil
}

func (p *Parser) expectKeyword(str string) (lexer.Lexeme, error) {
	lex, err := p.consume()
	if err != nil {
		return lexer.Lexeme{}, err
	}
	if !lex.IsKeyword(str) {
		return lexer.Lexeme{}, fmt.Errorf("%s: expected %q, got %v", lex.Loc, str, lex)
	}
	return lex, nil
}

func (p *Parser) expectIdent() (lexer.Lexeme, error) {
	lex, err := p.consume()
	if err != nil {
		return lexer.Lexeme{}, err
	}
	if lex.Type != lexer.LEX_IDENT {
		return lexer.Lexeme{}, fmt.Errorf("%s: expected identifier, got %v", lex.Loc, lex)
	}
	return lex, nil
}

// isTypeKeyword reports whether the lexeme starts a declaration or a
// function signature. void is only valid as a function return type and is
// checked separately.
func isTypeKeyword(lex lexer.Lexeme) bool {
	if lex.Type != lexer.LEX_KEYWORD {
		return false
	}
	switch lex.Str {
	case "int", "float", "char", "bool":
		return true
	}
	return false
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	first, err := p.peek()
	if err != nil {
		return nil, err
	}
	program := &ast.Program{Loc: first.Loc}
	for {
		lex, err := p.peek()
		if err != nil {
			return nil, err
		}
		if lex.Type == lexer.LEX_EOF {
			break
		}
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		program.Functions = append(program.Functions, *fn)
	}
	return program, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	retLex, err := p.consume()
	if err != nil {
		return nil, err
	}
	if !isTypeKeyword(retLex) && !retLex.IsKeyword("void") {
		return nil, fmt.Errorf("%s: function must start with a return type, got %v", retLex.Loc, retLex)
	}
	retType, _ := ast.TypeFromName(retLex.Str)

	nameLex, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunctuation("("); err != nil {
		return nil, err
	}
	args, err := p.parseFunctionArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation(")"); err != nil {
		return nil, err
	}

	if _, err := p.expectPunctuation("{"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(retLex.Loc)
	if err != nil {
		return nil, err
	}

	return &ast.Function{
		Loc:        retLex.Loc,
		Name:       nameLex.Str,
		Args:       args,
		ReturnType: retType,
		Body:       body,
	}, nil
}

func (p *Parser) parseFunctionArgs() ([]ast.Arg, error) {
	args := []ast.Arg{}
	lex, err := p.peek()
	if err != nil {
		return nil, err
	}
	if lex.IsPunctuation(")") {
		return args, nil
	}
	for {
		typeLex, err := p.consume()
		if err != nil {
			return nil, err
		}
		if !isTypeKeyword(typeLex) {
			return nil, fmt.Errorf("%s: expected parameter type, got %v", typeLex.Loc, typeLex)
		}
		typ, _ := ast.TypeFromName(typeLex.Str)

		nameLex, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		args = append(args, ast.Arg{Loc: typeLex.Loc, Name: nameLex.Str, Type: typ})

		lex, err = p.peek()
		if err != nil {
			return nil, err
		}
		if !lex.IsPunctuation(",") {
			break
		}
		if _, err := p.consume(); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// parseBlock parses statements up to and including the closing brace.
// The opening brace must already be consumed.
func (p *Parser) parseBlock(loc ast.Location) (*ast.Block, error) {
	statements := []ast.Statement{}
	for {
		lex, err := p.peek()
		if err != nil {
			return nil, err
		}
		if lex.IsPunctuation("}") {
			break
		}
		if lex.Type == lexer.LEX_EOF {
			return nil, fmt.Errorf("%s: unexpected end of file, expected '}'", lex.Loc)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	if _, err := p.consume(); err != nil {
		return nil, err
	}
	return &ast.Block{Loc: loc, Statements: statements}, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	lex, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch {
	case isTypeKeyword(lex):
		return p.parseVariableDeclaration()
	case lex.IsKeyword("if"):
		return p.parseIfStatement()
	case lex.IsKeyword("while"):
		return p.parseWhileStatement()
	case lex.IsKeyword("for"):
		return p.parseForStatement()
	case lex.IsKeyword("return"):
		return p.parseReturnStatement()
	case lex.IsKeyword("print"):
		return p.parsePrintStatement()
	case lex.IsKeyword("read"):
		return p.parseReadStatement()
	case lex.IsPunctuation("{"):
		if _, err := p.consume(); err != nil {
			return nil, err
		}
		block, err := p.parseBlock(lex.Loc)
		if err != nil {
			return nil, err
		}
		return &ast.BlockStatement{Loc: lex.Loc, Block: *block}, nil
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseVariableDeclaration() (*ast.VariableDeclaration, error) {
	typeLex, err := p.consume()
	if err != nil {
		return nil, err
	}
	typ, _ := ast.TypeFromName(typeLex.Str)

	nameLex, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var init ast.Expression
	lex, err := p.peek()
	if err != nil {
		return nil, err
	}
	if lex.IsOperator("=") {
		if _, err := p.consume(); err != nil {
			return nil, err
		}
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expectPunctuation(";"); err != nil {
		return nil, err
	}

	return &ast.VariableDeclaration{
		Loc:         typeLex.Loc,
		Name:        nameLex.Str,
		Type:        typ,
		Initializer: init,
	}, nil
}

func (p *Parser) parseExpressionStatement() (*ast.ExpressionStatement, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation(";"); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Loc: expr.GetLocation(), Expression: expr}, nil
}

// parseStatementBody parses the body of an if/while/for: either a braced
// block or a single statement, which gets wrapped into a one-element block.
func (p *Parser) parseStatementBody() (*ast.Block, error) {
	lex, err := p.peek()
	if err != nil {
		return nil, err
	}
	if lex.IsPunctuation("{") {
		if _, err := p.consume(); err != nil {
			return nil, err
		}
		return p.parseBlock(lex.Loc)
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.Block{Loc: lex.Loc, Statements: []ast.Statement{stmt}}, nil
}

func (p *Parser) parseIfStatement() (*ast.IfStatement, error) {
	ifLex, err := p.expectKeyword("if")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation(")"); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseStatementBody()
	if err != nil {
		return nil, err
	}

	var elseBlock *ast.Block
	lex, err := p.peek()
	if err != nil {
		return nil, err
	}
	if lex.IsKeyword("else") {
		if _, err := p.consume(); err != nil {
			return nil, err
		}
		elseBlock, err = p.parseStatementBody()
		if err != nil {
			return nil, err
		}
	}

	return &ast.IfStatement{
		Loc:       ifLex.Loc,
		Condition: cond,
		ThenBlock: *thenBlock,
		ElseBlock: elseBlock,
	}, nil
}

func (p *Parser) parseWhileStatement() (*ast.WhileStatement, error) {
	whileLex, err := p.expectKeyword("while")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementBody()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Loc: whileLex.Loc, Condition: cond, Body: *body}, nil
}

func (p *Parser) parseForStatement() (*ast.ForStatement, error) {
	forLex, err := p.expectKeyword("for")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation("("); err != nil {
		return nil, err
	}

	// Init: declaration, expression or empty.
	var init ast.Statement
	lex, err := p.peek()
	if err != nil {
		return nil, err
	}
	if isTypeKeyword(lex) {
		init, err = p.parseVariableDeclaration()
		if err != nil {
			return nil, err
		}
	} else if !lex.IsPunctuation(";") {
		init, err = p.parseExpressionStatement()
		if err != nil {
			return nil, err
		}
	} else {
		if _, err := p.consume(); err != nil {
			return nil, err
		}
	}

	// Condition: expression or empty.
	var cond ast.Expression
	lex, err = p.peek()
	if err != nil {
		return nil, err
	}
	if !lex.IsPunctuation(";") {
		cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectPunctuation(";"); err != nil {
		return nil, err
	}

	// Update: expression or empty.
	var update ast.Expression
	lex, err = p.peek()
	if err != nil {
		return nil, err
	}
	if !lex.IsPunctuation(")") {
		update, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectPunctuation(")"); err != nil {
		return nil, err
	}

	body, err := p.parseStatementBody()
	if err != nil {
		return nil, err
	}

	return &ast.ForStatement{
		Loc:       forLex.Loc,
		Init:      init,
		Condition: cond,
		Update:    update,
		Body:      *body,
	}, nil
}

func (p *Parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	retLex, err := p.expectKeyword("return")
	if err != nil {
		return nil, err
	}
	lex, err := p.peek()
	if err != nil {
		return nil, err
	}
	var value ast.Expression
	if !lex.IsPunctuation(";") {
		value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectPunctuation(";"); err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Loc: retLex.Loc, Value: value}, nil
}

func (p *Parser) parsePrintStatement() (*ast.PrintStatement, error) {
	printLex, err := p.expectKeyword("print")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation("("); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation(";"); err != nil {
		return nil, err
	}
	return &ast.PrintStatement{Loc: printLex.Loc, Value: value}, nil
}

func (p *Parser) parseReadStatement() (*ast.ReadStatement, error) {
	readLex, err := p.expectKeyword("read")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation("("); err != nil {
		return nil, err
	}
	nameLex, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunctuation(";"); err != nil {
		return nil, err
	}
	return &ast.ReadStatement{Loc: readLex.Loc, Name: nameLex.Str}, nil
}

// Expressions, from lowest to highest precedence:
// assignment < || < && < relational < additive < multiplicative < unary.

func (p *Parser) parseExpression() (ast.Expression, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	lex, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !lex.IsOperator("=") {
		return left, nil
	}
	ref, ok := left.(*ast.VariableReference)
	if !ok {
		return nil, fmt.Errorf("%s: left side of assignment must be a variable", lex.Loc)
	}
	if _, err := p.consume(); err != nil {
		return nil, err
	}
	// Assignment is right-associative.
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Loc: ref.Loc, Target: ref.Name, Value: value}, nil
}

func (p *Parser) parseBinaryLevel(operators []string, next func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		lex, err := p.peek()
		if err != nil {
			return nil, err
		}
		matched := false
		for _, op := range operators {
			if lex.IsOperator(op) {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		if _, err := p.consume(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOperation{
			Loc:      left.GetLocation(),
			Operator: lex.Str,
			Left:     left,
			Right:    right,
		}
	}
}

func (p *Parser) parseOr() (ast.Expression, error) {
	return p.parseBinaryLevel([]string{"||"}, p.parseAnd)
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	return p.parseBinaryLevel([]string{"&&"}, p.parseRelational)
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	return p.parseBinaryLevel([]string{"<", "<=", ">", ">=", "==", "!="}, p.parseAdditive)
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseBinaryLevel([]string{"+", "-"}, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseBinaryLevel([]string{"*", "/", "%"}, p.parseUnary)
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	lex, err := p.peek()
	if err != nil {
		return nil, err
	}
	if lex.IsOperator("-") || lex.IsOperator("+") || lex.IsOperator("!") {
		if _, err := p.consume(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOperation{Loc: lex.Loc, Operator: lex.Str, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	lex, err := p.consume()
	if err != nil {
		return nil, err
	}
	switch {
	case lex.Type == lexer.LEX_INT:
		value, err := strconv.ParseInt(lex.Str, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer literal %q", lex.Loc, lex.Str)
		}
		return &ast.Literal{Loc: lex.Loc, IntValue: &value}, nil
	case lex.Type == lexer.LEX_FLOAT:
		value, err := strconv.ParseFloat(lex.Str, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid float literal %q", lex.Loc, lex.Str)
		}
		return &ast.Literal{Loc: lex.Loc, FloatValue: &value}, nil
	case lex.Type == lexer.LEX_CHAR:
		runes := []rune(lex.Str)
		return &ast.Literal{Loc: lex.Loc, CharValue: &runes[0]}, nil
	case lex.Type == lexer.LEX_STRING:
		return &ast.Literal{Loc: lex.Loc, StringValue: util.StringPtr(lex.Str)}, nil
	case lex.IsKeyword("true"):
		return &ast.Literal{Loc: lex.Loc, BoolValue: util.BoolPtr(true)}, nil
	case lex.IsKeyword("false"):
		return &ast.Literal{Loc: lex.Loc, BoolValue: util.BoolPtr(false)}, nil
	case lex.IsKeyword("read"):
		if _, err := p.expectPunctuation("("); err != nil {
			return nil, err
		}
		nameLex, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunctuation(")"); err != nil {
			return nil, err
		}
		return &ast.ReadExpression{Loc: lex.Loc, Name: nameLex.Str}, nil
	case lex.Type == lexer.LEX_IDENT:
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		if next.IsPunctuation("(") {
			return p.parseCallArgs(lex)
		}
		return &ast.VariableReference{Loc: lex.Loc, Name: lex.Str}, nil
	case lex.IsPunctuation("("):
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunctuation(")"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, fmt.Errorf("%s: unexpected token %v in expression", lex.Loc, lex)
}

func (p *Parser) parseCallArgs(nameLex lexer.Lexeme) (ast.Expression, error) {
	if _, err := p.expectPunctuation("("); err != nil {
		return nil, err
	}
	args := []ast.Expression{}
	lex, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !lex.IsPunctuation(")") {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			lex, err = p.peek()
			if err != nil {
				return nil, err
			}
			if !lex.IsPunctuation(",") {
				break
			}
			if _, err := p.consume(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expectPunctuation(")"); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Loc: nameLex.Loc, FunctionName: nameLex.Str, Args: args}, nil
}
