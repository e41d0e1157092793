package types

import (
	"fmt"

	"github.com/iley/minic/internal/ast"
)

type SymbolKind int

const (
	SymbolFunc SymbolKind = iota
	SymbolParam
	SymbolVar
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunc:
		return "func"
	case SymbolParam:
		return "param"
	case SymbolVar:
		return "var"
	default:
		return "unknown"
	}
}

// Symbol is a single entry of the symbol table listing. Depth is the block
// nesting level within the function: parameters sit at depth 0, top-level
// locals at depth 1.
type Symbol struct {
	Name     string
	Type     ast.Type
	Kind     SymbolKind
	Function string
	Depth    int
}

func (s Symbol) String() string {
	if s.Kind == SymbolFunc {
		return fmt.Sprintf("%-6s %s: %s", s.Kind, s.Name, s.Type)
	}
	return fmt.Sprintf("%-6s %s.%s: %s (depth %d)", s.Kind, s.Function, s.Name, s.Type, s.Depth)
}

// CollectSymbols walks the program and gathers every declared name. It works
// on the untyped AST, so it can run even when typechecking would fail.
func CollectSymbols(program *ast.Program) []Symbol {
	symbols := []Symbol{}
	for i := range program.Functions {
		fn := &program.Functions[i]
		symbols = append(symbols, Symbol{
			Name: fn.Name,
			Type: fn.ReturnType,
			Kind: SymbolFunc,
		})
		for _, arg := range fn.Args {
			symbols = append(symbols, Symbol{
				Name:     arg.Name,
				Type:     arg.Type,
				Kind:     SymbolParam,
				Function: fn.Name,
			})
		}
		symbols = append(symbols, collectBlockSymbols(fn.Body, fn.Name, 1)...)
	}
	return symbols
}

func collectBlockSymbols(block *ast.Block, function string, depth int) []Symbol {
	symbols := []Symbol{}
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			symbols = append(symbols, Symbol{
				Name:     s.Name,
				Type:     s.Type,
				Kind:     SymbolVar,
				Function: function,
				Depth:    depth,
			})
		case *ast.IfStatement:
			symbols = append(symbols, collectBlockSymbols(&s.ThenBlock, function, depth+1)...)
			if s.ElseBlock != nil {
				symbols = append(symbols, collectBlockSymbols(s.ElseBlock, function, depth+1)...)
			}
		case *ast.WhileStatement:
			symbols = append(symbols, collectBlockSymbols(&s.Body, function, depth+1)...)
		case *ast.ForStatement:
			if decl, ok := s.Init.(*ast.VariableDeclaration); ok {
				symbols = append(symbols, Symbol{
					Name:     decl.Name,
					Type:     decl.Type,
					Kind:     SymbolVar,
					Function: function,
					Depth:    depth + 1,
				})
			}
			symbols = append(symbols, collectBlockSymbols(&s.Body, function, depth+1)...)
		case *ast.BlockStatement:
			symbols = append(symbols, collectBlockSymbols(&s.Block, function, depth+1)...)
		}
	}
	return symbols
}
