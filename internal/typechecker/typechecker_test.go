package typechecker

import (
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

func checkSource(t *testing.T, source string) (*ast.Program, []error) {
	t.Helper()
	tc := NewTypeChecker(parseSource(t, source))
	typed := tc.Check()
	return typed, tc.Errors()
}

func TestTypeCheckerValidPrograms(t *testing.T) {
	testCases := []struct {
		name   string
		source string
	}{
		{
			name:   "minimal program",
			source: "int main() { return 0; }",
		},
		{
			name: "arithmetic and calls",
			source: `
				int add(int a, int b) { return a + b; }
				int main() { return add(1, 2); }
			`,
		},
		{
			name:   "int widens to float",
			source: "int main() { float x = 1; x = 2 + 3; return 0; }",
		},
		{
			name:   "char converts to int",
			source: "int main() { int x = 'a'; char c = 65; return x; }",
		},
		{
			name:   "mixed arithmetic is float",
			source: "int main() { float x = 1.5 + 2; return 0; }",
		},
		{
			name:   "logical operators on bools",
			source: "int main() { bool b = true && false || !true; return 0; }",
		},
		{
			name:   "conditions and loops",
			source: "int main() { for (int i = 0; i < 3; i = i + 1) { while (i > 0) { i = i - 1; } } return 0; }",
		},
		{
			name:   "read and print",
			source: "int main() { int x; read(x); print(x + 1); print(\"done\"); return 0; }",
		},
		{
			name:   "void function without return",
			source: "void report(int x) { print(x); } int main() { report(1); return 0; }",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := checkSource(t, tc.source)
			if len(errs) > 0 {
				t.Errorf("unexpected errors: %v", errs)
			}
		})
	}
}

func TestTypeCheckerErrors(t *testing.T) {
	testCases := []struct {
		name          string
		source        string
		expectedError string
	}{
		{
			name:          "missing main",
			source:        "int f() { return 0; }",
			expectedError: "main",
		},
		{
			name:          "duplicate function",
			source:        "int main() { return 0; } int main() { return 1; }",
			expectedError: "duplicate function",
		},
		{
			name:          "undeclared variable",
			source:        "int main() { return x; }",
			expectedError: "not declared",
		},
		{
			name:          "undeclared assignment target",
			source:        "int main() { x = 1; return 0; }",
			expectedError: "not declared",
		},
		{
			name:          "duplicate variable in scope",
			source:        "int main() { int x; int x; return 0; }",
			expectedError: "already declared",
		},
		{
			name:          "non-bool if condition",
			source:        "int main() { if (1) { return 0; } return 1; }",
			expectedError: "expected an expression of type bool",
		},
		{
			name:          "non-bool while condition",
			source:        "int main() { while (1 + 2) { } return 0; }",
			expectedError: "expected an expression of type bool",
		},
		{
			name:          "modulo on floats",
			source:        "int main() { float x = 1.5 % 2.0; return 0; }",
			expectedError: "cannot be applied",
		},
		{
			name:          "logical and on ints",
			source:        "int main() { bool b = 1 && 2; return 0; }",
			expectedError: "cannot be applied",
		},
		{
			name:          "wrong argument count",
			source:        "int f(int x) { return x; } int main() { return f(1, 2); }",
			expectedError: "arguments were provided",
		},
		{
			name:          "wrong argument type",
			source:        "int f(bool b) { return 0; } int main() { return f(1); }",
			expectedError: "wrong type",
		},
		{
			name:          "call to undeclared function",
			source:        "int main() { return g(); }",
			expectedError: "is not declared",
		},
		{
			name:          "missing return",
			source:        "int main() { print(1); }",
			expectedError: "must contain a return",
		},
		{
			name:          "return value from void function",
			source:        "void f() { return 1; } int main() { return 0; }",
			expectedError: "does not return a value",
		},
		{
			name:          "bare return from int function",
			source:        "int main() { return; }",
			expectedError: "no value was provided",
		},
		{
			name:          "void variable",
			source:        "int main() { void x; return 0; }",
			expectedError: "cannot have type void",
		},
		{
			name:          "float does not narrow to int",
			source:        "int main() { int x = 1.5; return 0; }",
			expectedError: "cannot initialize",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := checkSource(t, tc.source)
			if len(errs) == 0 {
				t.Fatalf("expected an error containing %q, got none", tc.expectedError)
			}
			for _, err := range errs {
				if strings.Contains(err.Error(), tc.expectedError) {
					return
				}
			}
			t.Errorf("expected an error containing %q, got %v", tc.expectedError, errs)
		})
	}
}

func TestTypeCheckerScopeFlattening(t *testing.T) {
	source := `
		int main() {
			int x = 1;
			{
				int x = 2;
				print(x);
			}
			return x;
		}
	`
	typed, errs := checkSource(t, source)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	rendered := typed.String()
	if !strings.Contains(rendered, "x@1") {
		t.Errorf("expected shadowed variable to be renamed, got %s", rendered)
	}
	if !strings.Contains(rendered, "(return x)") {
		t.Errorf("expected outer variable to keep its name, got %s", rendered)
	}
}

func TestTypeCheckerFillsTypes(t *testing.T) {
	source := "int main() { int x = 1; return x + 2; }"
	typed, errs := checkSource(t, source)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	body := typed.Functions[0].Body
	ret, ok := body.Statements[1].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected a return statement, got %v", body.Statements[1])
	}
	if ret.Value.GetType() != ast.Int {
		t.Errorf("expected return expression type int, got %s", ret.Value.GetType())
	}
}
