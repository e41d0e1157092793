package types

import (
	"reflect"
	"strings"
	"testing"

	"github.com/iley/minic/internal/ast"
	"github.com/iley/minic/internal/lexer"
	"github.com/iley/minic/internal/parser"
)

func parseSource(t *testing.T, source string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(strings.NewReader(source), "test.mc"))
	program, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return program
}

func TestGetFunctionTable(t *testing.T) {
	program := parseSource(t, `
		int add(int a, int b) { return a + b; }
		void report(float x) { print(x); }
		int main() { return 0; }
	`)

	expected := []FuncProto{
		{Name: "add", Params: []Param{{"a", ast.Int}, {"b", ast.Int}}, ReturnType: ast.Int},
		{Name: "report", Params: []Param{{"x", ast.Float}}, ReturnType: ast.Void},
		{Name: "main", Params: []Param{}, ReturnType: ast.Int},
	}
	actual := GetFunctionTable(program)
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("got %v, want %v", actual, expected)
	}
}

func TestFuncProtoString(t *testing.T) {
	proto := FuncProto{
		Name:       "add",
		Params:     []Param{{"a", ast.Int}, {"b", ast.Float}},
		ReturnType: ast.Int,
	}
	expected := "int add(int a, float b)"
	if actual := proto.String(); actual != expected {
		t.Errorf("got %q, want %q", actual, expected)
	}
}

func TestFindFunction(t *testing.T) {
	protos := []FuncProto{
		{Name: "f", ReturnType: ast.Int},
		{Name: "g", ReturnType: ast.Void},
	}
	if proto, ok := FindFunction(protos, "g"); !ok || proto.ReturnType != ast.Void {
		t.Errorf("FindFunction(g) = %v, %t", proto, ok)
	}
	if _, ok := FindFunction(protos, "h"); ok {
		t.Error("expected h not to be found")
	}
}

func TestCollectSymbols(t *testing.T) {
	program := parseSource(t, `
		int add(int a, int b) {
			int s = a + b;
			return s;
		}
		int main() {
			for (int i = 0; i < 1; i = i + 1) {
				int x = 0;
			}
			if (true) {
				int y = 0;
			}
			return 0;
		}
	`)

	expected := []Symbol{
		{Name: "add", Type: ast.Int, Kind: SymbolFunc},
		{Name: "a", Type: ast.Int, Kind: SymbolParam, Function: "add"},
		{Name: "b", Type: ast.Int, Kind: SymbolParam, Function: "add"},
		{Name: "s", Type: ast.Int, Kind: SymbolVar, Function: "add", Depth: 1},
		{Name: "main", Type: ast.Int, Kind: SymbolFunc},
		{Name: "i", Type: ast.Int, Kind: SymbolVar, Function: "main", Depth: 2},
		{Name: "x", Type: ast.Int, Kind: SymbolVar, Function: "main", Depth: 2},
		{Name: "y", Type: ast.Int, Kind: SymbolVar, Function: "main", Depth: 2},
	}
	actual := CollectSymbols(program)
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("got %v, want %v", actual, expected)
	}
}

func TestSymbolString(t *testing.T) {
	fn := Symbol{Name: "main", Type: ast.Int, Kind: SymbolFunc}
	if actual := fn.String(); actual != "func   main: int" {
		t.Errorf("got %q", actual)
	}
	v := Symbol{Name: "x", Type: ast.Float, Kind: SymbolVar, Function: "main", Depth: 1}
	if actual := v.String(); actual != "var    main.x: float (depth 1)" {
		t.Errorf("got %q", actual)
	}
}
