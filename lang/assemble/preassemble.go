package assemble

import (
	"fmt"

	"github.com/go-hackvm/hackvmc/lang/ir"
)

// SourceFile is one parsed VM source file: its stem (base name minus
// extension, used to form static-segment addresses) and its Commands in
// source order.
type SourceFile struct {
	Stem     string
	Commands []ir.Command
}

// Build runs the Preassembler over files (already parsed, in the order
// they should be concatenated) and returns the resulting function table.
// It owns a single piece of mutable state, current, exactly as the
// original Preassembler does: the Function currently being appended to.
func Build(files []SourceFile) (*Program, error) {
	prog := newProgram()

	for _, file := range files {
		var current *Function
		for _, cmd := range file.Commands {
			if cmd.IsFunctionDecl() {
				if prog.Has(cmd.Name) {
					return nil, fmt.Errorf("assemble: %s: duplicate function %q", file.Stem, cmd.Name)
				}
				current = newFunction(file.Stem, cmd.Name)
				prog.declare(current)
			}
			if current == nil {
				return nil, fmt.Errorf("assemble: %s: command %s precedes the first function declaration", file.Stem, cmd.Symbolic())
			}
			current.append(cmd)
		}
	}
	return prog, nil
}
