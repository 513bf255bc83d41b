package codegen

import (
	"testing"

	"github.com/go-hackvm/hackvmc/lang/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowerPushConstantSmall(t *testing.T) {
	e := &emitter{}
	got, err := e.lower(ir.Push(ir.Constant, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"@SP", "AM=M+1", "A=A-1", "M=0"}, got)
}

func TestLowerPushConstantLarge(t *testing.T) {
	e := &emitter{}
	got, err := e.lower(ir.Push(ir.Constant, 42))
	require.NoError(t, err)
	assert.Equal(t, []string{"@42", "D=A", "@SP", "AM=M+1", "A=A-1", "M=D"}, got)
}

func TestLowerPushLocalIndexed(t *testing.T) {
	e := &emitter{}
	got, err := e.lower(ir.Push(ir.Local, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"@LCL", "D=M", "@3", "A=D+A", "D=M", "@SP", "AM=M+1", "A=A-1", "M=D"}, got)
}

func TestLowerPopArgumentZero(t *testing.T) {
	e := &emitter{}
	got, err := e.lower(ir.Pop(ir.Argument, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"@SP", "AM=M-1", "D=M", "@ARG", "A=M", "M=D"}, got)
}

func TestLowerTeeSameAsPopButKeepsStack(t *testing.T) {
	e := &emitter{}
	got, err := e.lower(ir.Tee(ir.Local, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"@SP", "A=M-1", "D=M", "@LCL", "A=M", "M=D"}, got)
}

func TestLowerLabelHasNoTrailingLineNumberShape(t *testing.T) {
	e := &emitter{functionName: "Main.fib"}
	got, err := e.lower(ir.Label("LOOP"))
	require.NoError(t, err)
	assert.Equal(t, []string{"(Main.fib$LOOP)"}, got)
}

func TestLowerIfCmpGotoConstantOperand(t *testing.T) {
	e := &emitter{functionName: "Main.fib"}
	got, err := e.lower(ir.IfCmpGoto(ir.IFLTGOTO, ir.Constant, 0, "L1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"@SP", "AM=M-1", "D=M", "@Main.fib$L1", "D; JLT"}, got)
}

func TestLowerFunctionExtSysInitSkipsHandshake(t *testing.T) {
	e := &emitter{}
	got, err := e.lower(ir.FunctionExt("Sys.init", 1, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"(Sys.init)", "@SP", "A=M", "M=0", "AD=A+1", "@SP", "M=D"}, got)
}

func TestLowerFunctionExtNonEntryIncludesHandshake(t *testing.T) {
	e := &emitter{functionName: "Main.caller"}
	got, err := e.lower(ir.FunctionExt("Main.helper", 0, 2))
	require.NoError(t, err)
	assert.Contains(t, got, "@save_stack")
	assert.Contains(t, got, "(Main.helper)")
	assert.Contains(t, got, "@7") // 5 + nargs
}

func TestLowerPokeUnimplementedPointerIndexErrors(t *testing.T) {
	e := &emitter{}
	_, err := e.lower(ir.Poke(ir.Local, 1, ir.Constant, 0))
	assert.Error(t, err)
}

func TestLowerPokeConstantDestination(t *testing.T) {
	e := &emitter{}
	got, err := e.lower(ir.Poke(ir.Constant, 5, ir.Constant, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"@3", "D=A", "@5", "M=D"}, got)
}

func TestLowerIllegalOpcodeErrors(t *testing.T) {
	e := &emitter{}
	_, err := e.lower(ir.Command{Op: ir.ILLEGAL})
	assert.Error(t, err)
}

func TestLowerInlineCallSwapsNamingContext(t *testing.T) {
	e := &emitter{filename: "Main", functionName: "Main.caller"}
	_, err := e.lower(ir.InlineCall("Point", "Point.getX"))
	require.NoError(t, err)
	assert.Equal(t, "Point", e.filename)
	assert.Equal(t, "Point.getX", e.functionName)
}

func TestCallAndCallExtAllocateDistinctReturnLabels(t *testing.T) {
	e := &emitter{functionName: "Main.caller"}
	first := e.call("Main.callee", 1)
	second := e.callExt("Main.other")
	assert.NotEqual(t, first[len(first)-1], second[len(second)-1])
}
