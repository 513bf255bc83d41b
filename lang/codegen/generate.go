package codegen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-hackvm/hackvmc/lang/assemble"
)

// Generate writes the Hack assembly translation of prog to w: the VM-init
// bootstrap when initVM is true (directory mode, spec §6), followed by
// every function prog.FunctionOrder() returns — reachable from
// assemble.EntryPoint when one is declared, every declared function
// otherwise (spec §6's bootstrap-free single-file mode) — each framed by
// "// Begin: <name>" / "// End: <name> / N lines" comments with every
// emitted instruction followed by its program-wide line number (spec
// §4.4, §6 output format).
//
// Labels (lines already wrapped in parentheses) carry no line number, since
// they do not occupy a ROM word of their own once assembled.
func Generate(w io.Writer, prog *assemble.Program, programName string, initVM bool) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Program: %s\n", programName)

	e := &emitter{}
	line := 0

	if initVM {
		line = emit(&buf, e.initVM(), line)
	}

	order, err := prog.FunctionOrder()
	if err != nil {
		return err
	}

	for _, name := range order {
		fn, _ := prog.Lookup(name)
		e.filename, e.functionName = fn.Filename, fn.Name

		fmt.Fprintf(&buf, "// Begin: %s\n", fn.Name)
		funcLines := 0
		for _, cmd := range fn.Commands {
			fmt.Fprintf(&buf, "// %s\n", cmd.Symbolic())
			instrs, err := e.lower(cmd)
			if err != nil {
				return fmt.Errorf("codegen: %s: %s: %w", fn.Name, cmd.Symbolic(), err)
			}
			before := line
			line = emit(&buf, instrs, line)
			funcLines += line - before
		}
		fmt.Fprintf(&buf, "// End: %s / %d lines\n", fn.Name, funcLines)
	}

	_, err = w.Write(buf.Bytes())
	return err
}

// emit writes instrs to buf, numbering every non-label line starting from
// line, and returns the updated counter.
func emit(buf *bytes.Buffer, instrs []string, line int) int {
	for _, instr := range instrs {
		buf.WriteString(instr)
		if !strings.HasPrefix(instr, "(") {
			fmt.Fprintf(buf, " // %d", line)
			line++
		}
		buf.WriteByte('\n')
	}
	return line
}
