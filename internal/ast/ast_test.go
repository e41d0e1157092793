package ast

import (
	"testing"

	"github.com/iley/minic/internal/util"
)

func TestLiteralString(t *testing.T) {
	testCases := []struct {
		name     string
		literal  Literal
		expected string
	}{
		{"int", Literal{IntValue: util.Int64Ptr(42)}, "42"},
		{"negative int", Literal{IntValue: util.Int64Ptr(-1)}, "-1"},
		{"float", Literal{FloatValue: util.Float64Ptr(1.5)}, "1.5"},
		{"whole float", Literal{FloatValue: util.Float64Ptr(2.0)}, "2"},
		{"bool", Literal{BoolValue: util.BoolPtr(true)}, "true"},
		{"char", Literal{CharValue: util.RunePtr('x')}, "'x'"},
		{"string", Literal{StringValue: util.StringPtr("hi")}, `"hi"`},
		{"string with escapes", Literal{StringValue: util.StringPtr("a\nb")}, `"a\x0Ab"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if actual := tc.literal.String(); actual != tc.expected {
				t.Errorf("got %q, want %q", actual, tc.expected)
			}
		})
	}
}

func TestTypeFromName(t *testing.T) {
	for _, name := range []string{"void", "int", "float", "char", "bool"} {
		typ, ok := TypeFromName(name)
		if !ok || typ.String() != name {
			t.Errorf("TypeFromName(%q) = %v, %t", name, typ, ok)
		}
	}
	if _, ok := TypeFromName("string"); ok {
		t.Error("string must not be a declarable type")
	}
}

func TestAreCompatibleTypes(t *testing.T) {
	testCases := []struct {
		dst, src   Type
		compatible bool
	}{
		{Int, Int, true},
		{Float, Int, true},
		{Int, Float, false},
		{Int, Char, true},
		{Char, Int, true},
		{Float, Char, false},
		{Bool, Int, false},
		{Void, Void, true},
	}

	for _, tc := range testCases {
		if actual := AreCompatibleTypes(tc.dst, tc.src); actual != tc.compatible {
			t.Errorf("AreCompatibleTypes(%s, %s) = %t, want %t", tc.dst, tc.src, actual, tc.compatible)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	for _, typ := range []Type{Int, Float, Char} {
		if !typ.IsNumeric() {
			t.Errorf("expected %s to be numeric", typ)
		}
	}
	for _, typ := range []Type{Bool, Void, String} {
		if typ.IsNumeric() {
			t.Errorf("expected %s not to be numeric", typ)
		}
	}
}
