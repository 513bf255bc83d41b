// Package codegen implements the Code Generator: per-opcode lowering of
// ir.Commands to Hack assembly, the shared save_stack/pop_stack call/return
// runtime, the VM-init bootstrap, and the line-numbered, Begin:/End:-framed
// textual output of spec §4.4/§5/§6.
package codegen

import "fmt"

// emitter holds the translator's mutable naming state (spec §4.4): the
// current source file and function name (for static-segment and label
// addressing) and two monotonic counters that make call-site return labels
// and generated branch labels unique across the whole program. It is never
// reset between functions — uniqueness depends on that.
type emitter struct {
	filename     string
	functionName string
	callIndex    int
	labelIndex   int
}

func (e *emitter) staticAddress(i int) string {
	return fmt.Sprintf("@%s.%d", e.filename, i)
}

func (e *emitter) labelAddress(label string) string {
	return fmt.Sprintf("@%s$%s", e.functionName, label)
}

func (e *emitter) labelLabel(label string) string {
	return fmt.Sprintf("(%s$%s)", e.functionName, label)
}

func (e *emitter) functionCallAddress(name string) string {
	return fmt.Sprintf("@%s", name)
}

func (e *emitter) functionDeclarationLabel() string {
	return fmt.Sprintf("(%s)", e.functionName)
}

// nextReturnAddressLabel allocates a unique return-site label for a call,
// scoped to the calling function: "FuncName$ret.N".
func (e *emitter) nextReturnAddressLabel() (address, label string) {
	name := fmt.Sprintf("%s$ret.%d", e.functionName, e.callIndex)
	e.callIndex++
	return "@" + name, "(" + name + ")"
}

// nextAddressLabel allocates a unique generated-branch label scoped to the
// current file: "File.name.N".
func (e *emitter) nextAddressLabel(name string) (address, label string) {
	full := fmt.Sprintf("%s.%s.%d", e.filename, name, e.labelIndex)
	e.labelIndex++
	return "@" + full, "(" + full + ")"
}

const tempBase = 5

func tempRegister(i int) string {
	return fmt.Sprintf("@%d", tempBase+i)
}

func pointerRegister(i int) string {
	if i == 0 {
		return "@THIS"
	}
	return "@THAT"
}
