package desugar

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

func TestDesugarForStatement(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "full for loop",
			source:   "void f() { for (int i = 0; i < 2; i = i + 1) { print(i); } }",
			expected: "(program (func f () void (block (block (decl i int 0) (while (< i 2) (block (print i) (= i (+ i 1))))))))",
		},
		{
			name:     "for loop without init",
			source:   "void f(int i) { for (; i < 2; i = i + 1) print(i); }",
			expected: "(program (func f ((i int)) void (block (block (while (< i 2) (block (print i) (= i (+ i 1))))))))",
		},
		{
			name:     "for loop without condition",
			source:   "void f() { for (;;) print(1); }",
			expected: "(program (func f () void (block (block (while true (block (print 1)))))))",
		},
		{
			name:     "nested for loop",
			source:   "void f() { if (true) { for (;;) print(1); } }",
			expected: "(program (func f () void (block (if true (block (block (while true (block (print 1)))))))))",
		},
		{
			name:     "while loop is untouched",
			source:   "void f(int n) { while (n > 0) { n = n - 1; } }",
			expected: "(program (func f ((n int)) void (block (while (> n 0) (block (= n (- n 1)))))))",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			desugared := Run(parseSource(t, tc.source))
			actual := desugared.String()
			if actual != tc.expected {
				t.Errorf("got:\n%s\nwant:\n%s", actual, tc.expected)
			}
		})
	}
}

func TestDesugarDoesNotModifyInput(t *testing.T) {
	program := parseSource(t, "void f() { for (int i = 0; i < 2; i = i + 1) { print(i); } }")
	before := program.String()
	Run(program)
	if after := program.String(); after != before {
		t.Errorf("input program was modified:\nbefore: %s\nafter: %s", before, after)
	}
}
