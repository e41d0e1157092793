package tac

import (
	"strings"
	"testing"
)

func execSource(t *testing.T, source, input string, optimize bool) (string, error) {
	t.Helper()
	code := mustGenerate(t, source)
	if optimize {
		var err error
		code, err = Optimize(ApplyCSE(code))
		if err != nil {
			t.Fatalf("unexpected optimizer error: %v", err)
		}
	}
	var out strings.Builder
	err := Exec(code, strings.NewReader(input), &out)
	return out.String(), err
}

func TestExec(t *testing.T) {
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
					print(1 < 2);
					print('x');
					print("hello world");
					return 0;
				}
			`,
			expected: "42\ntrue\nx\nhello world\n",
		},
		{
			name:     "integer division truncates",
			source:   "int main() { print(7 / 2); return 0; }",
			expected: "3\n",
		},
		{
			name:     "float division",
			source:   "int main() { print(7.0 / 2); return 0; }",
			expected: "3.5\n",
		},
		{
			name: "loop sum",
			source: `
				int main() {
					int sum = 0;
					for (int i = 0; i < 5; i = i + 1) {
						sum = sum + i;
					}
					print(sum);
					return 0;
				}
			`,
			expected: "10\n",
		},
		{
			name: "recursive factorial",
			source: `
				int fact(int n) {
					if (n <= 1) {
						return 1;
					}
					return n * fact(n - 1);
				}
				int main() {
					print(fact(5));
					return 0;
				}
			`,
			expected: "120\n",
		},
		{
			name: "read input",
			source: `
				int main() {
					int x;
					read(x);
					print(x * 2);
					return 0;
				}
			`,
			input:    "7",
			expected: "14\n",
		},
		{
			name: "short circuit guards division",
			source: `
				int main() {
					int x;
					read(x);
					print(x != 0 && 10 / x > 1);
					return 0;
				}
			`,
			input:    "0",
			expected: "false\n",
		},
		{
			name: "void function call",
			source: `
				void greet(int n) {
					while (n > 0) {
						print("hi");
						n = n - 1;
					}
				}
				int main() {
					greet(2);
					return 0;
				}
			`,
			expected: "hi\nhi\n",
		},
	}

	for _, tc := range testCases {
		for _, optimize := range []bool{false, true} {
			name := tc.name
			if optimize {
				name += " optimized"
			}
			t.Run(name, func(t *testing.T) {
				actual, err := execSource(t, tc.source, tc.input, optimize)
				if err != nil {
					t.Fatalf("unexpected execution error: %v", err)
				}
				if actual != tc.expected {
					t.Errorf("got output %q, want %q", actual, tc.expected)
				}
			})
		}
	}
}

func TestExecErrors(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		input  string
	}{
		{
			name:   "division by zero",
			source: "int main() { int d; read(d); print(10 / d); return 0; }",
			input:  "0",
		},
		{
			name:   "modulo by zero",
			source: "int main() { int d; read(d); print(10 % d); return 0; }",
			input:  "0",
		},
		{
			name:   "end of input",
			source: "int main() { int x; read(x); return 0; }",
			input:  "",
		},
		{
			name:   "unparseable input",
			source: "int main() { int x; read(x); return 0; }",
			input:  "not-a-number",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := execSource(t, tc.source, tc.input, false); err == nil {
				t.Errorf("expected an execution error for %q", tc.source)
			}
		})
	}
}

func TestExecRequiresMain(t *testing.T) {
	program := Program{Functions: []Function{{Name: "f"}}}
	var out strings.Builder
	if err := Exec(program, strings.NewReader(""), &out); err == nil {
		t.Error("expected an error for a program without main")
	}
}
