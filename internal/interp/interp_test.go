package interp

import (
	"strings"
	"testing"

	"github.com/iley/minic/internal/ast"
	"github.com/iley/minic/internal/lexer"
	"github.com/iley/minic/internal/parser"
	"github.com/iley/minic/internal/typechecker"
)

func analyzeSource(t *testing.T, source string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(strings.NewReader(source), "test.mc"))
	program, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	tc := typechecker.NewTypeChecker(program)
	typed := tc.Check()
	if errs := tc.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected typechecker errors: %v", errs)
	}
	return typed
}

func runSource(t *testing.T, source, input string) (string, error) {
	t.Helper()
	var out strings.Builder
	err := Run(analyzeSource(t, source), strings.NewReader(input), &out)
	return out.String(), err
}

func TestRun(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		input    string
		expected string
	}{
		{
			name: "print literals",
			source: `
				int main() {
					print(42);
					print(3.5);
					print(true);
					print('x');
					print("hello world");
					return 0;
				}
			`,
			expected: "42\n3.5\ntrue\nx\nhello world\n",
		},
		{
			name:     "integer division truncates",
			source:   "int main() { print(7 / 2); return 0; }",
			expected: "3\n",
		},
		{
			name:     "mixed arithmetic is float",
			source:   "int main() { print(7.0 / 2); return 0; }",
			expected: "3.5\n",
		},
		{
			name:     "int widens on assignment to float",
			source:   "int main() { float x = 1; print(x); return 0; }",
			expected: "1\n",
		},
		{
			name:     "char arithmetic",
			source:   "int main() { char c = 'a' + 1; print(c); print('a' + 1); return 0; }",
			expected: "b\n98\n",
		},
		{
			name: "while loop",
			source: `
				int main() {
					int n = 3;
					while (n > 0) {
						print(n);
						n = n - 1;
					}
					return 0;
				}
			`,
			expected: "3\n2\n1\n",
		},
		{
			name: "for loop",
			source: `
				int main() {
					for (int i = 0; i < 3; i = i + 1) {
						print(i);
					}
					return 0;
				}
			`,
			expected: "0\n1\n2\n",
		},
		{
			name: "early return from a loop",
			source: `
				int firstOver(int limit) {
					for (int i = 0;; i = i + 1) {
						if (i * i > limit) {
							return i;
						}
					}
				}
				int main() {
					print(firstOver(10));
					return 0;
				}
			`,
			expected: "4\n",
		},
		{
			name: "recursive fibonacci",
			source: `
				int fib(int n) {
					if (n < 2) {
						return n;
					}
					return fib(n - 1) + fib(n - 2);
				}
				int main() {
					print(fib(10));
					return 0;
				}
			`,
			expected: "55\n",
		},
		{
			name: "read by declared type",
			source: `
				int main() {
					int i;
					float f;
					bool b;
					char c;
					read(i);
					read(f);
					read(b);
					read(c);
					print(i);
					print(f);
					print(b);
					print(c);
					return 0;
				}
			`,
			input:    "7 2.5 true z",
			expected: "7\n2.5\ntrue\nz\n",
		},
		{
			name: "short circuit guards division",
			source: `
				int main() {
					int x = 0;
					print(x != 0 && 10 / x > 1);
					print(x == 0 || 10 / x > 1);
					return 0;
				}
			`,
			expected: "false\ntrue\n",
		},
		{
			name: "variable shadowing",
			source: `
				int main() {
					int x = 1;
					{
						int x = 2;
						print(x);
					}
					print(x);
					return 0;
				}
			`,
			expected: "2\n1\n",
		},
		{
			name: "assignment is an expression",
			source: `
				int main() {
					int a;
					int b;
					a = b = 5;
					print(a + b);
					return 0;
				}
			`,
			expected: "10\n",
		},
		{
			name: "read as expression",
			source: `
				int main() {
					int x;
					print(read(x) + 1);
					return 0;
				}
			`,
			input:    "9",
			expected: "10\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := runSource(t, tc.source, tc.input)
			if err != nil {
				t.Fatalf("unexpected interpreter error: %v", err)
			}
			if actual != tc.expected {
				t.Errorf("got output %q, want %q", actual, tc.expected)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	testCases := []struct {
		name          string
		source        string
		input         string
		expectedError string
	}{
		{
			name:          "division by zero",
			source:        "int main() { int x = 0; print(10 / x); return 0; }",
			expectedError: "division by zero",
		},
		{
			name:          "modulo by zero",
			source:        "int main() { int x = 0; print(10 % x); return 0; }",
			expectedError: "division by zero",
		},
		{
			name:          "end of input",
			source:        "int main() { int x; read(x); return 0; }",
			expectedError: "unexpected end of input",
		},
		{
			name:          "input type mismatch",
			source:        "int main() { int x; read(x); return 0; }",
			input:         "abc",
			expectedError: "cannot parse",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runSource(t, tc.source, tc.input)
			if err == nil {
				t.Fatalf("expected an error containing %q, got none", tc.expectedError)
			}
			if !strings.Contains(err.Error(), tc.expectedError) {
				t.Errorf("expected an error containing %q, got %v", tc.expectedError, err)
			}
		})
	}
}
