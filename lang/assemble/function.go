// Package assemble implements the Preassembler: it groups the parsed
// Command stream into Function records, builds the call graph, and computes
// reachability from Sys.init (spec §4.2, §3).
package assemble

import "github.com/go-hackvm/hackvmc/lang/ir"

// Function is a named sequence of Commands plus the bookkeeping the
// optimizer and code generator need: the source file stem it was declared
// in (for static-segment addressing) and the set of callee names it
// currently reaches (the call graph's out-edges).
//
// A Function's Commands slice is replaced wholesale by each optimizer pass
// (first inlining, then peephole); it is never mutated in place once
// frozen for lowering.
type Function struct {
	Filename string
	Name     string
	Commands []ir.Command
	NVars    int

	callees map[string]struct{}
}

func newFunction(filename, name string) *Function {
	return &Function{Filename: filename, Name: name, callees: make(map[string]struct{})}
}

// append adds command to the function body, recording a call-graph edge if
// it is a call or call-ext.
func (f *Function) append(cmd ir.Command) {
	if cmd.IsFunctionDecl() {
		f.NVars = cmd.NVars
	}
	if cmd.IsCall() {
		f.callees[cmd.CalleeName()] = struct{}{}
	}
	f.Commands = append(f.Commands, cmd)
}

// Callees returns the current call-graph out-edges of f, in no particular
// order.
func (f *Function) Callees() []string {
	out := make([]string, 0, len(f.callees))
	for name := range f.callees {
		out = append(out, name)
	}
	return out
}

// SetCallees replaces f's call-graph out-edges, as recomputed by an
// optimizer pass that rewrote f.Commands (e.g. inlining removes edges for
// calls it inlined away).
func (f *Function) SetCallees(names []string) {
	f.callees = make(map[string]struct{}, len(names))
	for _, n := range names {
		f.callees[n] = struct{}{}
	}
}
