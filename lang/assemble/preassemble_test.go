package assemble_test

import (
	"testing"

	"github.com/go-hackvm/hackvmc/lang/assemble"
	"github.com/go-hackvm/hackvmc/lang/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGroupsCommandsByFunction(t *testing.T) {
	files := []assemble.SourceFile{
		{
			Stem: "Sys",
			Commands: []ir.Command{
				ir.Function("Sys.init", 0),
				ir.Call("Main.main", 0),
				ir.Return(),
			},
		},
		{
			Stem: "Main",
			Commands: []ir.Command{
				ir.Function("Main.main", 1),
				ir.Push(ir.Constant, 7),
				ir.Return(),
			},
		},
	}

	prog, err := assemble.Build(files)
	require.NoError(t, err)

	sys, ok := prog.Lookup("Sys.init")
	require.True(t, ok)
	assert.Equal(t, "Sys", sys.Filename)
	assert.Equal(t, []string{"Main.main"}, sys.Callees())

	main, ok := prog.Lookup("Main.main")
	require.True(t, ok)
	assert.Equal(t, 1, main.NVars)
	assert.Len(t, main.Commands, 3)
}

func TestBuildRejectsDuplicateFunction(t *testing.T) {
	files := []assemble.SourceFile{{
		Stem: "Main",
		Commands: []ir.Command{
			ir.Function("Main.main", 0),
			ir.Return(),
			ir.Function("Main.main", 0),
			ir.Return(),
		},
	}}
	_, err := assemble.Build(files)
	assert.Error(t, err)
}

func TestBuildRejectsCommandBeforeFirstFunction(t *testing.T) {
	files := []assemble.SourceFile{{
		Stem:     "Main",
		Commands: []ir.Command{ir.Add()},
	}}
	_, err := assemble.Build(files)
	assert.Error(t, err)
}

func TestReachableTraversesCallGraph(t *testing.T) {
	files := []assemble.SourceFile{{
		Stem: "Main",
		Commands: []ir.Command{
			ir.Function("Sys.init", 0),
			ir.Call("Main.a", 0),
			ir.Return(),
			ir.Function("Main.a", 0),
			ir.Call("Main.b", 0),
			ir.Return(),
			ir.Function("Main.b", 0),
			ir.Return(),
			ir.Function("Main.unused", 0),
			ir.Return(),
		},
	}}
	prog, err := assemble.Build(files)
	require.NoError(t, err)

	order, err := prog.Reachable()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sys.init", "Main.a", "Main.b"}, order)
}

func TestReachableErrorsOnMissingEntryPoint(t *testing.T) {
	files := []assemble.SourceFile{{
		Stem:     "Main",
		Commands: []ir.Command{ir.Function("Main.main", 0), ir.Return()},
	}}
	prog, err := assemble.Build(files)
	require.NoError(t, err)
	_, err = prog.Reachable()
	assert.Error(t, err)
}

func TestReachableErrorsOnUnresolvedCallee(t *testing.T) {
	files := []assemble.SourceFile{{
		Stem: "Main",
		Commands: []ir.Command{
			ir.Function("Sys.init", 0),
			ir.Call("Main.missing", 0),
			ir.Return(),
		},
	}}
	prog, err := assemble.Build(files)
	require.NoError(t, err)
	_, err = prog.Reachable()
	assert.Error(t, err)
}

func TestFunctionOrderFallsBackToDeclaredWithoutEntryPoint(t *testing.T) {
	files := []assemble.SourceFile{{
		Stem: "Main",
		Commands: []ir.Command{
			ir.Function("Main.main", 0),
			ir.Return(),
			ir.Function("Main.helper", 0),
			ir.Return(),
		},
	}}
	prog, err := assemble.Build(files)
	require.NoError(t, err)

	order, err := prog.FunctionOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"Main.main", "Main.helper"}, order)
}

func TestFunctionOrderUsesReachabilityWhenEntryPointDeclared(t *testing.T) {
	files := []assemble.SourceFile{{
		Stem: "Main",
		Commands: []ir.Command{
			ir.Function("Sys.init", 0),
			ir.Return(),
			ir.Function("Main.unused", 0),
			ir.Return(),
		},
	}}
	prog, err := assemble.Build(files)
	require.NoError(t, err)

	order, err := prog.FunctionOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sys.init"}, order)
}
