package tac

import (
	"reflect"
	"strings"
	"testing"
)

func mustOptimize(t *testing.T, program Program) Program {
	t.Helper()
	result, err := Optimize(program)
	if err != nil {
		t.Fatalf("unexpected optimizer error: %v", err)
	}
	return result
}

func TestOptimize(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		expected []string
	}{
		{
			name:   "constant folding",
			source: "int main() { print(2 + 3 * 4); return 0; }",
			expected: []string{
				"Print(14)",
				"Return(0)",
			},
		},
		{
			name:   "constant propagation through variables",
			source: "int main() { int x = 5; int y = x + 1; print(y); return 0; }",
			expected: []string{
				"Print(6)",
				"Return(0)",
			},
		},
		{
			name:   "float folding",
			source: "int main() { print(1.5 + 2); return 0; }",
			expected: []string{
				"Print(3.5)",
				"Return(0)",
			},
		},
		{
			name:   "unary folding",
			source: "int main() { return -(3); }",
			expected: []string{
				"Return(-3)",
			},
		},
		{
			name:   "dead assignment removal",
			source: "int main() { int x = 1; int y = 2; return x; }",
			expected: []string{
				"Return(1)",
			},
		},
		{
			name:   "constant division by zero is never folded",
			source: "int main() { int x = 1 / 0; return 0; }",
			expected: []string{
				"BinaryOp($1 = 1 / 0)",
				"Return(0)",
			},
		},
		{
			name:   "true branch is taken statically",
			source: "int main() { if (true) { print(1); } else { print(2); } return 0; }",
			expected: []string{
				"Print(1)",
				"Jump(L2)",
				"Anchor(L2)",
				"Return(0)",
			},
		},
		{
			name:   "loop that never runs",
			source: "int main() { while (false) { print(1); } return 0; }",
			expected: []string{
				"Jump(L2)",
				"Anchor(L2)",
				"Return(0)",
			},
		},
		{
			name:   "float conversion folding",
			source: "int main() { float f = 1; print(f / 2); return 0; }",
			expected: []string{
				"Print(0.5)",
				"Return(0)",
			},
		},
		{
			name:   "char conversion folding",
			source: "int main() { char c = 65; print(c); return 0; }",
			expected: []string{
				"Print('A')",
				"Return(0)",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			optimized := mustOptimize(t, mustGenerate(t, tc.source))
			actual := opStrings(findFunction(t, optimized, "main"))
			if !reflect.DeepEqual(actual, tc.expected) {
				t.Errorf("got:\n%s\nwant:\n%s", strings.Join(actual, "\n"), strings.Join(tc.expected, "\n"))
			}
		})
	}
}

func TestOptimizeDoesNotPropagateAcrossLabels(t *testing.T) {
	// The value of x at L1 depends on how control got there, so x + 1 must
	// not be folded.
	ops := []Op{
		Assign{Target: "x", Value: IntOperand(1)},
		Anchor{Label: "L1"},
		BinaryOp{Result: "$1", Operation: "+", Left: Var("x"), Right: IntOperand(1)},
		Print{Value: Var("$1")},
		JumpIf{Condition: Var("c"), Goto: "L1"},
		Return{},
	}
	program := Program{Functions: []Function{{Name: "f", Ops: ops}}}

	expected := []string{
		"Assign(x, 1)",
		"Anchor(L1)",
		"BinaryOp($1 = x + 1)",
		"Print($1)",
		"JumpIf(c, L1)",
		"Return()",
	}
	actual := opStrings(mustOptimize(t, program).Functions[0])
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("got:\n%s\nwant:\n%s", strings.Join(actual, "\n"), strings.Join(expected, "\n"))
	}
}

func TestOptimizeKeepsFaultingDeadCode(t *testing.T) {
	// The result is unused but the modulo can fault, so it must stay.
	ops := []Op{
		BinaryOp{Result: "$1", Operation: "%", Left: IntOperand(1), Right: Var("d")},
		Return{},
	}
	program := Program{Functions: []Function{{Name: "f", Ops: ops}}}

	expected := []string{
		"BinaryOp($1 = 1 % d)",
		"Return()",
	}
	actual := opStrings(mustOptimize(t, program).Functions[0])
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("got %v, want %v", actual, expected)
	}
}

func TestOptimizeRemovesShortCircuitedRead(t *testing.T) {
	// `false && read(x)` never evaluates the right side, so no path in the
	// optimized program may read input.
	code := mustGenerate(t, `
		int main() {
			bool x;
			if (false && read(x)) {
				print(1);
			}
			return 0;
		}
	`)
	optimized := mustOptimize(t, ApplyCSE(code))
	mainFn := findFunction(t, optimized, "main")
	for _, op := range mainFn.Ops {
		if _, ok := op.(Read); ok {
			t.Fatalf("optimized code still reads input:\n%s", strings.Join(opStrings(mainFn), "\n"))
		}
	}

	// An empty input stream must not cause an error.
	var out strings.Builder
	if err := Exec(optimized, strings.NewReader(""), &out); err != nil {
		t.Errorf("unexpected execution error: %v", err)
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	code := mustGenerate(t, `
		int main() {
			int sum = 0;
			for (int i = 0; i < 10; i = i + 1) {
				sum = sum + i * 2;
			}
			print(sum);
			return 0;
		}
	`)
	once := mustOptimize(t, code)
	twice := mustOptimize(t, once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("optimizing twice changed the program:\nonce: %v\ntwice: %v", opStrings(once.Functions[0]), opStrings(twice.Functions[0]))
	}
}

func TestOptimizedCodeValidates(t *testing.T) {
	code := mustGenerate(t, `
		int fact(int n) { if (n <= 1) { return 1; } return n * fact(n - 1); }
		int main() {
			int x;
			read(x);
			print(fact(x));
			return 0;
		}
	`)
	optimized := mustOptimize(t, ApplyCSE(code))
	if err := Validate(optimized); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}
