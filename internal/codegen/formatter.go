package codegen

import (
	"fmt"
	"io"

	"github.com/iley/minic/internal/codegen/asm"
)

func Format(out io.Writer, p asm.Program) {
	for _, fn := range p.Functions {
		formatFunction(out, fn)
	}
}

func formatFunction(out io.Writer, fn asm.Function) {
	fmt.Fprintf(out, "%s:\n", fn.Name)
	for _, line := range fn.Lines {
		formatLine(out, line)
	}
	fmt.Fprintf(out, "\n")
}

func formatLine(out io.Writer, line asm.Line) {
	if line.Label != "" {
		fmt.Fprintf(out, "%s:", line.Label)
	} else if line.Op != "" {
		if line.Arg != "" {
			fmt.Fprintf(out, "  %s %s", line.Op, line.Arg)
		} else {
			fmt.Fprintf(out, "  %s", line.Op)
		}
	}
	if line.Comment != "" {
		fmt.Fprintf(out, "  ; %s", line.Comment)
	}
	fmt.Fprintf(out, "\n")
}
