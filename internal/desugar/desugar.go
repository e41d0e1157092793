package desugar

import (
	"github.com/iley/minic/internal/ast"
	"github.com/iley/minic/internal/util"
)

func Run(program *ast.Program) *ast.Program {
	return desugarProgram(program)
}

func desugarProgram(program *ast.Program) *ast.Program {
	result := *program
	result.Functions = make([]ast.Function, len(program.Functions))
	for i := range program.Functions {
		result.Functions[i] = *desugarFunction(&program.Functions[i])
	}
	return &result
}

func desugarFunction(function *ast.Function) *ast.Function {
	result := *function
	result.Body = desugarBlock(function.Body)
	return &result
}

func desugarBlock(block *ast.Block) *ast.Block {
	if block == nil {
		return nil
	}

	result := *block
	result.Statements = make([]ast.Statement, len(block.Statements))
	for i := range block.Statements {
		result.Statements[i] = desugarStatement(block.Statements[i])
	}

	return &result
}

func desugarStatement(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.ForStatement:
		return desugarForStatement(s)
	case *ast.IfStatement:
		result := *s
		result.ThenBlock = *desugarBlock(&s.ThenBlock)
		result.ElseBlock = desugarBlock(s.ElseBlock)
		return &result
	case *ast.WhileStatement:
		result := *s
		result.Body = *desugarBlock(&s.Body)
		return &result
	case *ast.BlockStatement:
		result := *s
		result.Block = *desugarBlock(&s.Block)
		return &result
	}
	return stmt
}

// Desugar a `for (init; cond; update) { block }` into `{ init; while (cond) { block; update } }`.
// A missing condition becomes a `true` literal.
func desugarForStatement(forStmt *ast.ForStatement) ast.Statement {
	statements := []ast.Statement{}

	if forStmt.Init != nil {
		statements = append(statements, desugarStatement(forStmt.Init))
	}

	body := desugarBlock(&forStmt.Body)
	whileStatements := make([]ast.Statement, 0, len(body.Statements)+1)
	whileStatements = append(whileStatements, body.Statements...)
	if forStmt.Update != nil {
		whileStatements = append(whileStatements, &ast.ExpressionStatement{
			Loc:        forStmt.Update.GetLocation(),
			Expression: forStmt.Update,
		})
	}

	condition := forStmt.Condition
	if condition == nil {
		condition = &ast.Literal{
			Loc:       forStmt.Loc,
			BoolValue: util.BoolPtr(true),
			Type:      ast.Bool,
		}
	}

	whileStmt := &ast.WhileStatement{
		Loc:       forStmt.Loc,
		Condition: condition,
		Body: ast.Block{
			Loc:        forStmt.Loc,
			Statements: whileStatements,
		},
	}

	statements = append(statements, whileStmt)

	return &ast.BlockStatement{
		Loc: forStmt.Loc,
		Block: ast.Block{
			Loc:        forStmt.Loc,
			Statements: statements,
		},
	}
}
