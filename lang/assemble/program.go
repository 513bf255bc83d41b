package assemble

import (
	"fmt"
	"sort"

	"github.com/dolthub/swiss"
	"github.com/go-hackvm/hackvmc/lang/ir"
)

// EntryPoint is the name of the program's single required entry function;
// reachability is always computed from it.
const EntryPoint = "Sys.init"

// Program is the function table built by the Preassembler: every Function
// declared across all parsed source files, keyed by its unique name, plus
// the entry point name.
type Program struct {
	functions *swiss.Map[string, *Function]
	order     []string // declaration order, for deterministic traversal
}

func newProgram() *Program {
	return &Program{functions: swiss.NewMap[string, *Function](64)}
}

// Lookup returns the Function named name and true, or false if no such
// function was declared.
func (p *Program) Lookup(name string) (*Function, bool) {
	return p.functions.Get(name)
}

// Has reports whether a function named name was declared.
func (p *Program) Has(name string) bool {
	_, ok := p.functions.Get(name)
	return ok
}

func (p *Program) declare(f *Function) {
	p.functions.Put(f.Name, f)
	p.order = append(p.order, f.Name)
}

// Reachable computes the transitive closure of the call graph starting at
// EntryPoint by worklist traversal, per spec §4.2. It returns the reachable
// function names in a deterministic order (first-seen, i.e. breadth-first
// from the entry point, each function's callees taken in name order) and
// an error if a reachable
// function calls a name absent from the function table — spec §3's
// invariant that every call/call-ext target of a reachable function must
// resolve, violated only by malformed input.
func (p *Program) Reachable() ([]string, error) {
	if !p.Has(EntryPoint) {
		return nil, fmt.Errorf("assemble: entry point %s is not declared", EntryPoint)
	}

	seen := make(map[string]bool)
	var order []string
	frontier := []string{EntryPoint}
	for len(frontier) > 0 {
		name := frontier[0]
		frontier = frontier[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		order = append(order, name)

		fn, ok := p.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("assemble: unresolved callee %q: no such function", name)
		}
		callees := fn.Callees()
		sort.Strings(callees)
		frontier = append(frontier, callees...)
	}
	return order, nil
}

// Declared returns every function name in declaration order, with no
// reachability filtering. Used when the program has no EntryPoint to
// traverse from — spec §6's single-file mode, for unit-test files that
// supply their own bootstrap and may not declare one at all.
func (p *Program) Declared() []string {
	return append([]string(nil), p.order...)
}

// FunctionOrder returns the functions a translation pass should visit: the
// reachable set from EntryPoint when one is declared, or every declared
// function otherwise. This, not the CLI's directory/single-file
// distinction, is what decides whether unreachable functions get dropped —
// a single .vm file that does declare Sys.init is reachability-filtered
// exactly like a directory program is.
func (p *Program) FunctionOrder() ([]string, error) {
	if p.Has(EntryPoint) {
		return p.Reachable()
	}
	return p.Declared(), nil
}
