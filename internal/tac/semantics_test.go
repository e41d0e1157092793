package tac

import (
	"strings"
	"testing"

	"github.com/iley/minic/internal/interp"
)

// The tree-walking interpreter and the TAC executor must print the same
// output for the same program and input, whether the code is raw, after
// CSE, or fully optimized.
func TestExecutionEnginesAgree(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		input    string
		expected string
	}{
		{
			name: "int widens to float on assignment",
			source: `
				int main() {
					float f;
					f = 1;
					print(f / 2);
					return 0;
				}
			`,
			expected: "0.5\n",
		},
		{
			name: "int stored into a char prints as a character",
			source: `
				int main() {
					char c;
					c = 65;
					print(c);
					return 0;
				}
			`,
			expected: "A\n",
		},
		{
			name: "float parameter widens its argument",
			source: `
				void half(float x) {
					print(x / 2);
				}
				int main() {
					half(1);
					return 0;
				}
			`,
			expected: "0.5\n",
		},
		{
			name: "float return widens its value",
			source: `
				float one() {
					return 1;
				}
				int main() {
					print(one() / 2);
					return 0;
				}
			`,
			expected: "0.5\n",
		},
		{
			name: "char arithmetic narrows back on declaration",
			source: `
				int main() {
					char c = 'a' + 1;
					print(c);
					print('a' + 1);
					return 0;
				}
			`,
			expected: "b\n98\n",
		},
		{
			name: "reads parse by the declared type",
			source: `
				int main() {
					int i;
					float f;
					bool b;
					read(i);
					read(f);
					read(b);
					print(i);
					print(f);
					print(b);
					return 0;
				}
			`,
			input:    "7 2 1",
			expected: "7\n2\ntrue\n",
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
			name: "short circuit guards the division",
			source: `
				int main() {
					int x = 0;
					print(x != 0 && 10 / x > 1);
					return 0;
				}
			`,
			expected: "false\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var treeOut strings.Builder
			if err := interp.Run(mustAnalyze(t, tc.source), strings.NewReader(tc.input), &treeOut); err != nil {
				t.Fatalf("interpreter error: %v", err)
			}
			if treeOut.String() != tc.expected {
				t.Errorf("interpreter printed %q, want %q", treeOut.String(), tc.expected)
			}

			code := mustGenerate(t, tc.source)
			variants := []struct {
				name string
				code Program
			}{
				{"raw", code},
				{"cse", ApplyCSE(code)},
				{"optimized", mustOptimize(t, ApplyCSE(code))},
			}
			for _, variant := range variants {
				var out strings.Builder
				if err := Exec(variant.code, strings.NewReader(tc.input), &out); err != nil {
					t.Fatalf("%s execution error: %v", variant.name, err)
				}
				if out.String() != tc.expected {
					t.Errorf("%s execution printed %q, want %q", variant.name, out.String(), tc.expected)
				}
			}
		})
	}
}
