package vmsource_test

import (
	"strings"
	"testing"

	"github.com/go-hackvm/hackvmc/lang/ir"
	"github.com/go-hackvm/hackvmc/lang/vmsource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileSkipsBlankAndCommentLines(t *testing.T) {
	src := `// a comment
push constant 1

  push constant 2   // trailing comment
add
`
	cmds, err := vmsource.ParseFile("Main.vm", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []ir.Command{
		ir.Push(ir.Constant, 1),
		ir.Push(ir.Constant, 2),
		ir.Add(),
	}, cmds)
}

func TestParseFileArityClasses(t *testing.T) {
	src := strings.Join([]string{
		"add",
		"label LOOP",
		"push local 3",
		"function-ext Main.fib 2 1",
		"poke this 0 argument 1",
	}, "\n")

	cmds, err := vmsource.ParseFile("Main.vm", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, cmds, 5)

	assert.Equal(t, ir.Add(), cmds[0])
	assert.Equal(t, ir.Label("LOOP"), cmds[1])
	assert.Equal(t, ir.Push(ir.Local, 3), cmds[2])
	assert.Equal(t, ir.FunctionExt("Main.fib", 2, 1), cmds[3])
	assert.Equal(t, ir.Poke(ir.This, 0, ir.Argument, 1), cmds[4])
}

func TestParseFileRejectsTooManyTokens(t *testing.T) {
	_, err := vmsource.ParseFile("Main.vm", strings.NewReader("poke this 0 argument 1 extra"))
	assert.Error(t, err)
}

func TestParseFileRejectsBadInteger(t *testing.T) {
	_, err := vmsource.ParseFile("Main.vm", strings.NewReader("push constant x"))
	assert.Error(t, err)
}

func TestParseFileCallAndFunction(t *testing.T) {
	cmds, err := vmsource.ParseFile("Main.vm", strings.NewReader("function Main.fib 2\ncall Main.fib 1\nreturn"))
	require.NoError(t, err)
	assert.Equal(t, []ir.Command{
		ir.Function("Main.fib", 2),
		ir.Call("Main.fib", 1),
		ir.Return(),
	}, cmds)
}
