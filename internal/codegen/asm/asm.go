package asm

// Model of the stack-machine pseudo-assembly the compiler targets.
// Values move through an operand stack: LOAD pushes, STORE pops,
// arithmetic ops pop two and push one. TOFLOAT, TOINT and TOCHAR
// convert the value on top of the stack.

type Program struct {
	Functions []Function
}

type Function struct {
	Name  string
	Lines []Line
}

type Line struct {
	Label   string
	Op      string
	Arg     string
	Comment string
}

func Op0(op string) Line {
	return Line{Op: op}
}

func Op1(op, arg string) Line {
	return Line{Op: op, Arg: arg}
}

func Label(text string) Line {
	return Line{Label: text}
}

func Comment(text string) Line {
	return Line{Comment: text}
}
