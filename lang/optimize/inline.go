// Package optimize implements the two optimizer passes of spec §4.3: an
// inlining pass for trivial accessors, and a sliding-window peephole
// rewrite pass.
package optimize

import (
	"fmt"

	"github.com/go-hackvm/hackvmc/lang/assemble"
	"github.com/go-hackvm/hackvmc/lang/ir"
)

// Inline rewrites fn's body, replacing every call/call-ext to a recognized
// trivial accessor with its inlined body, wrapped in inline-call/
// inline-return markers that re-establish the code generator's naming
// context as execution conceptually enters and leaves the callee (spec
// §4.3.1). Calls that are not inlined are copied through unchanged and
// their target recorded as a dependency via fn.SetCallees.
//
// A call whose target is not in prog is reported as an error. When prog
// declares the entry point, the reachability check in FunctionOrder has
// already rejected such calls; without one, no earlier check runs and the
// error here is the first report of the unresolved callee.
func Inline(fn *assemble.Function, prog *assemble.Program) error {
	commands := make([]ir.Command, 0, len(fn.Commands))
	deps := make([]string, 0, len(fn.Commands))

	for _, cmd := range fn.Commands {
		if cmd.IsCall() {
			callee, ok := prog.Lookup(cmd.CalleeName())
			if !ok {
				return fmt.Errorf("optimize: inline: %s: unresolved callee %q", fn.Name, cmd.CalleeName())
			}
			if body, ok := tryInline(callee); ok {
				commands = append(commands, ir.InlineCall(callee.Filename, callee.Name))
				commands = append(commands, body...)
				commands = append(commands, ir.InlineReturn(fn.Filename, fn.Name))
				continue
			}
			deps = append(deps, cmd.CalleeName())
		}
		commands = append(commands, cmd)
	}

	fn.Commands = commands
	fn.SetCallees(deps)
	return nil
}

// tryInline returns the inlined body for fn if it matches one of the three
// trivial accessor shapes, or false if fn is not a trivial accessor.
func tryInline(fn *assemble.Function) ([]ir.Command, bool) {
	if body, ok := constantAccessorBody(fn); ok {
		return body, true
	}
	if body, ok := staticAccessorBody(fn); ok {
		return body, true
	}
	if body, ok := memberAccessorBody(fn); ok {
		return body, true
	}
	return nil, false
}

// constantAccessorBody matches `function … ; push constant K ; return`.
func constantAccessorBody(fn *assemble.Function) ([]ir.Command, bool) {
	if !isShape(fn, 3) {
		return nil, false
	}
	c := fn.Commands
	if c[1].Op == ir.PUSH && c[1].Seg == ir.Constant && c[2].Op == ir.RETURN {
		return []ir.Command{c[1]}, true
	}
	return nil, false
}

// staticAccessorBody matches `function … ; push static I ; return`.
func staticAccessorBody(fn *assemble.Function) ([]ir.Command, bool) {
	if !isShape(fn, 3) {
		return nil, false
	}
	c := fn.Commands
	if c[1].Op == ir.PUSH && c[1].Seg == ir.Static && c[2].Op == ir.RETURN {
		return []ir.Command{c[1]}, true
	}
	return nil, false
}

// memberAccessorBody matches
// `function … ; push argument 0 ; pop pointer 0 ; push this I ; return`
// and inlines it as `pop pointer 1 ; push that I`.
func memberAccessorBody(fn *assemble.Function) ([]ir.Command, bool) {
	if !isShape(fn, 5) {
		return nil, false
	}
	c := fn.Commands
	if c[1].Op == ir.PUSH && c[1].Seg == ir.Argument && c[1].Index == 0 &&
		c[2].Op == ir.POP && c[2].Seg == ir.Pointer && c[2].Index == 0 &&
		c[3].Op == ir.PUSH && c[3].Seg == ir.This &&
		c[4].Op == ir.RETURN {
		return []ir.Command{
			ir.Pop(ir.Pointer, 1),
			ir.Push(ir.That, c[3].Index),
		}, true
	}
	return nil, false
}

func isShape(fn *assemble.Function, n int) bool {
	return len(fn.Commands) == n && fn.Commands[0].IsFunctionDecl()
}
