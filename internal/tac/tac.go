package tac

import (
	"fmt"
	"io"

	"github.com/iley/minic/internal/ast"
)

/*
Three-address code for MiniC. This sits between the AST and pseudo-assembly.

Here are the supported operations:
 * Assign(Target, Value) - assign a value to a variable given its name.
 * BinaryOp(Result, Operation, Left, Right) - perform a binary operation (e.g. add or multiply).
 * UnaryOp(Result, Operation, Value) - perform a unary operation (e.g. unary minus).
 * Jump(Label) - unconditional jump to a label defined via an Anchor operation.
 * JumpUnless(Condition, Label) - jump unless the condition is true.
 * JumpIf(Condition, Label) - jump if the condition is true.
 * Anchor(Label) - define a label for jumps.
 * Param(Value) - queue an argument for the next Call.
 * Call(Result, Function, Arity) - call a function consuming Arity queued params.
   Result is empty for calls to void functions.
 * Return(Value) - return from a function, with an optional value.
 * Print(Value) - write a value to standard output.
 * Read(Target, Type) - read a value of the given type from standard input into a variable.
*/

type Program struct {
	Functions []Function
}

func (p Program) Print(writer io.Writer) {
	for _, fn := range p.Functions {
		fn.Print(writer)
		fmt.Fprintf(writer, "\n")
	}
}

type Function struct {
	Name   string
	Params []string
	Ops    []Op
}

func (f Function) Print(writer io.Writer) {
	fmt.Fprintf(writer, "Function %s:\n", f.Name)
	for i, op := range f.Ops {
		fmt.Fprintf(writer, "%4d  %s\n", i, op)
	}
}

type Op interface {
	fmt.Stringer
	// Returns the variable being modified by the Op or empty string.
	GetTarget() string
	// GetArgs returns all operands read by the op.
	GetArgs() []Operand
}

type Assign struct {
	Target string
	Value  Operand
}

func (a Assign) String() string {
	return fmt.Sprintf("Assign(%s, %s)", a.Target, a.Value)
}

func (a Assign) GetTarget() string {
	return a.Target
}

func (a Assign) GetArgs() []Operand {
	return []Operand{a.Value}
}

type BinaryOp struct {
	Result    string
	Operation string
	Left      Operand
	Right     Operand
}

func (o BinaryOp) String() string {
	return fmt.Sprintf("BinaryOp(%s = %s %s %s)", o.Result, o.Left, o.Operation, o.Right)
}

func (o BinaryOp) GetTarget() string {
	return o.Result
}

func (o BinaryOp) GetArgs() []Operand {
	return []Operand{o.Left, o.Right}
}

type UnaryOp struct {
	Result    string
	Operation string
	Value     Operand
}

func (o UnaryOp) String() string {
	return fmt.Sprintf("UnaryOp(%s = %s %s)", o.Result, o.Operation, o.Value)
}

func (o UnaryOp) GetTarget() string {
	return o.Result
}

func (o UnaryOp) GetArgs() []Operand {
	return []Operand{o.Value}
}

type Jump struct {
	Goto string
}

func (j Jump) String() string {
	return fmt.Sprintf("Jump(%s)", j.Goto)
}

func (j Jump) GetTarget() string {
	return ""
}

func (j Jump) GetArgs() []Operand {
	return []Operand{}
}

type JumpUnless struct {
	Condition Operand
	Goto      string
}

func (j JumpUnless) String() string {
	return fmt.Sprintf("JumpUnless(%s, %s)", j.Condition, j.Goto)
}

func (j JumpUnless) GetTarget() string {
	return ""
}

func (j JumpUnless) GetArgs() []Operand {
	return []Operand{j.Condition}
}

type JumpIf struct {
	Condition Operand
	Goto      string
}

func (j JumpIf) String() string {
	return fmt.Sprintf("JumpIf(%s, %s)", j.Condition, j.Goto)
}

func (j JumpIf) GetTarget() string {
	return ""
}

func (j JumpIf) GetArgs() []Operand {
	return []Operand{j.Condition}
}

type Anchor struct {
	Label string
}

func (a Anchor) String() string {
	return fmt.Sprintf("Anchor(%s)", a.Label)
}

func (a Anchor) GetTarget() string {
	return ""
}

func (a Anchor) GetArgs() []Operand {
	return []Operand{}
}

type Param struct {
	Value Operand
}

func (p Param) String() string {
	return fmt.Sprintf("Param(%s)", p.Value)
}

func (p Param) GetTarget() string {
	return ""
}

func (p Param) GetArgs() []Operand {
	return []Operand{p.Value}
}

type Call struct {
	Result   string
	Function string
	Arity    int
}

func (c Call) String() string {
	if c.Result == "" {
		return fmt.Sprintf("Call(%s, %d)", c.Function, c.Arity)
	}
	return fmt.Sprintf("Call(%s = %s, %d)", c.Result, c.Function, c.Arity)
}

func (c Call) GetTarget() string {
	return c.Result
}

func (c Call) GetArgs() []Operand {
	return []Operand{}
}

type Return struct {
	Value *Operand // nil for bare returns
}

func (r Return) String() string {
	if r.Value != nil {
		return fmt.Sprintf("Return(%s)", r.Value)
	}
	return "Return()"
}

func (r Return) GetTarget() string {
	return ""
}

func (r Return) GetArgs() []Operand {
	if r.Value == nil {
		return []Operand{}
	}
	return []Operand{*r.Value}
}

type Print struct {
	Value Operand
}

func (p Print) String() string {
	return fmt.Sprintf("Print(%s)", p.Value)
}

func (p Print) GetTarget() string {
	return ""
}

func (p Print) GetArgs() []Operand {
	return []Operand{p.Value}
}

type Read struct {
	Target string
	Type   ast.Type
}

func (r Read) String() string {
	return fmt.Sprintf("Read(%s, %s)", r.Target, r.Type)
}

func (r Read) GetTarget() string {
	return r.Target
}

func (r Read) GetArgs() []Operand {
	return []Operand{}
}
