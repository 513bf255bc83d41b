package optimize

import (
	"github.com/go-hackvm/hackvmc/lang/assemble"
	"github.com/go-hackvm/hackvmc/lang/ir"
)

// Peephole runs the fixed sequence of eleven windowed rewrites from spec
// §4.3.2 over fn's body (already processed by Inline), each applied to the
// output of the previous, and replaces fn.Commands with the result. A
// single pass over the eleven rules is sufficient because the rule set was
// designed to be confluent on well-formed input.
func Peephole(fn *assemble.Function) {
	commands := fn.Commands
	commands = windowReplace(commands, 2, matchPushConstantNot, replacePushConstantNot)
	commands = windowReplace(commands, 2, matchPushConstantNeg, replacePushConstantNeg)
	commands = windowReplace(commands, 2, matchPushConstant0Add, replaceNothing)
	commands = windowReplace(commands, 2, matchPushConstant0Not, replacePushConstant0Not)
	commands = windowReplace(commands, 2, matchLtNot, replaceGte)
	commands = windowReplace(commands, 2, matchGtNot, replaceLte)
	commands = windowReplace(commands, 3, matchPushCmpIfGoto, replacePushCmpIfGoto)
	commands = windowReplace(commands, 2, matchPushPop, replacePushPop)
	commands = windowReplace(commands, 3, matchPushInlineCallPop, replacePushInlineCallPop)
	commands = windowReplace(commands, 2, matchPopPushSame, replaceTee)
	commands = windowReplace(commands, 3, matchIfGotoGotoLabel, replaceIfGotoNot)
	fn.Commands = commands
}

// windowReplace is the sliding-window rewrite engine of spec §9: it scans
// with a window of width w, and on each position either replaces a
// matching window with the rewriter's output (advancing by w) or emits the
// window's head unchanged and advances by one.
func windowReplace(cmds []ir.Command, w int, match func([]ir.Command) bool, replace func([]ir.Command) []ir.Command) []ir.Command {
	out := make([]ir.Command, 0, len(cmds))
	i := 0
	for i+w <= len(cmds) {
		window := cmds[i : i+w]
		if match(window) {
			out = append(out, replace(window)...)
			i += w
			continue
		}
		out = append(out, cmds[i])
		i++
	}
	return append(out, cmds[i:]...)
}

// Rule 1: push constant K; not -> push constant~ K
func matchPushConstantNot(w []ir.Command) bool {
	return w[0].Op == ir.PUSH && w[0].Seg == ir.Constant && w[1].Op == ir.NOT
}
func replacePushConstantNot(w []ir.Command) []ir.Command {
	return []ir.Command{ir.Push(ir.ConstantNot, w[0].Index)}
}

// Rule 2: push constant K; neg -> push constant- K
func matchPushConstantNeg(w []ir.Command) bool {
	return w[0].Op == ir.PUSH && w[0].Seg == ir.Constant && w[1].Op == ir.NEG
}
func replacePushConstantNeg(w []ir.Command) []ir.Command {
	return []ir.Command{ir.Push(ir.ConstantNeg, w[0].Index)}
}

// Rule 3: push constant 0; add -> (nothing)
func matchPushConstant0Add(w []ir.Command) bool {
	return w[0].Op == ir.PUSH && w[0].Seg == ir.Constant && w[0].Index == 0 && w[1].Op == ir.ADD
}
func replaceNothing([]ir.Command) []ir.Command { return nil }

// Rule 4: push constant 0; not -> push constant~ 0
func matchPushConstant0Not(w []ir.Command) bool {
	return w[0].Op == ir.PUSH && w[0].Seg == ir.Constant && w[0].Index == 0 && w[1].Op == ir.NOT
}
func replacePushConstant0Not([]ir.Command) []ir.Command {
	return []ir.Command{ir.Push(ir.ConstantNot, 0)}
}

// Rule 5: lt; not -> gte
func matchLtNot(w []ir.Command) bool { return w[0].Op == ir.LT && w[1].Op == ir.NOT }
func replaceGte([]ir.Command) []ir.Command { return []ir.Command{ir.Gte()} }

// Rule 6: gt; not -> lte
func matchGtNot(w []ir.Command) bool { return w[0].Op == ir.GT && w[1].Op == ir.NOT }
func replaceLte([]ir.Command) []ir.Command { return []ir.Command{ir.Lte()} }

// Rule 7: push X; CMP; if-goto L -> if-CMP-goto X L
func matchPushCmpIfGoto(w []ir.Command) bool {
	return w[0].Op == ir.PUSH && ir.IsComparison(w[1].Op) && w[2].Op == ir.IFGOTO
}
func replacePushCmpIfGoto(w []ir.Command) []ir.Command {
	op, _ := ir.IfGotoOpcode(w[1].Op)
	return []ir.Command{ir.IfCmpGoto(op, w[0].Seg, w[0].Index, w[2].Name)}
}

// Rule 8: push X; pop Y -> ldd X; sdd Y
func matchPushPop(w []ir.Command) bool { return w[0].Op == ir.PUSH && w[1].Op == ir.POP }
func replacePushPop(w []ir.Command) []ir.Command {
	return []ir.Command{ir.Ldd(w[0].Seg, w[0].Index), ir.Sdd(w[1].Seg, w[1].Index)}
}

// Rule 9: push X; inline-call …; pop Y -> ldd X; inline-call …; sdd Y
func matchPushInlineCallPop(w []ir.Command) bool {
	return w[0].Op == ir.PUSH && w[1].Op == ir.INLINECALL && w[2].Op == ir.POP
}
func replacePushInlineCallPop(w []ir.Command) []ir.Command {
	return []ir.Command{ir.Ldd(w[0].Seg, w[0].Index), w[1], ir.Sdd(w[2].Seg, w[2].Index)}
}

// Rule 10: pop X; push X (same segment and index) -> tee X. The fusion
// must exclude differing operands: see SPEC_FULL.md §0 for why this is the
// opposite of spec.md's literal "X ≠ X'" prose.
func matchPopPushSame(w []ir.Command) bool {
	return w[0].Op == ir.POP && w[1].Op == ir.PUSH &&
		w[0].Seg == w[1].Seg && w[0].Index == w[1].Index
}
func replaceTee(w []ir.Command) []ir.Command {
	return []ir.Command{ir.Tee(w[0].Seg, w[0].Index)}
}

// Rule 11: if-goto A; goto B; label A (same label name) -> if-goto-not B,
// consuming the label.
func matchIfGotoGotoLabel(w []ir.Command) bool {
	return w[0].Op == ir.IFGOTO && w[1].Op == ir.GOTO && w[2].Op == ir.LABEL &&
		w[0].Name == w[2].Name
}
func replaceIfGotoNot(w []ir.Command) []ir.Command {
	return []ir.Command{ir.IfGotoNot(w[1].Name)}
}
