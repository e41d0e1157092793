package ast

// Type represents a MiniC type. MiniC only has scalar types, so a simple
// named type is enough; the zero value means "not yet typed".
type Type string

const (
	Void   Type = "void"
	Int    Type = "int"
	Float  Type = "float"
	Char   Type = "char"
	Bool   Type = "bool"
	String Type = "string"
)

func (t Type) String() string {
	return string(t)
}

// TypeFromName translates a type keyword into a Type.
func TypeFromName(name string) (Type, bool) {
	switch name {
	case "void":
		return Void, true
	case "int":
		return Int, true
	case "float":
		return Float, true
	case "char":
		return Char, true
	case "bool":
		return Bool, true
	}
	return "", false
}

// IsNumeric reports whether values of the type participate in arithmetic.
// Chars count: they behave as small integers, like in C.
func (t Type) IsNumeric() bool {
	return t == Int || t == Float || t == Char
}

// AreCompatibleTypes reports whether a value of type src can be assigned to
// a location of type dst. Int widens to float; int and char convert freely.
func AreCompatibleTypes(dst, src Type) bool {
	if dst == src {
		return true
	}
	if dst == Float && src == Int {
		return true
	}
	if dst == Int && src == Char {
		return true
	}
	if dst == Char && src == Int {
		return true
	}
	return false
}
