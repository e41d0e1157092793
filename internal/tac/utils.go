package tac

import "strings"

// IsTemp reports whether a variable is a compiler-generated temporary.
func IsTemp(name string) bool {
	return strings.HasPrefix(name, "$")
}
