package tac

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name          string
		fn            Function
		expectedError string
	}{
		{
			name: "valid function",
			fn: Function{
				Name: "f",
				Ops: []Op{
					BinaryOp{Result: "$1", Operation: "+", Left: IntOperand(1), Right: IntOperand(2)},
					Print{Value: Var("$1")},
					Jump{Goto: "L1"},
					Anchor{Label: "L1"},
					Return{},
				},
			},
		},
		{
			name: "parameters count as defined",
			fn: Function{
				Name:   "f",
				Params: []string{"$1"},
				Ops: []Op{
					Print{Value: Var("$1")},
					Return{},
				},
			},
		},
		{
			name: "temporary read before write",
			fn: Function{
				Name: "f",
				Ops: []Op{
					Print{Value: Var("$1")},
					Return{},
				},
			},
			expectedError: "before it is written",
		},
		{
			name: "jump to undefined label",
			fn: Function{
				Name: "f",
				Ops: []Op{
					Jump{Goto: "L9"},
					Return{},
				},
			},
			expectedError: "undefined label",
		},
		{
			name: "conditional jump to undefined label",
			fn: Function{
				Name: "f",
				Ops: []Op{
					JumpUnless{Condition: Var("c"), Goto: "L9"},
					Return{},
				},
			},
			expectedError: "undefined label",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(Program{Functions: []Function{tc.fn}})
			if tc.expectedError == "" {
				if err != nil {
					t.Errorf("unexpected validation error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected an error containing %q, got none", tc.expectedError)
			}
			if !strings.Contains(err.Error(), tc.expectedError) {
				t.Errorf("expected an error containing %q, got %v", tc.expectedError, err)
			}
		})
	}
}
