package maincmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-hackvm/hackvmc/lang/assemble"
	"github.com/go-hackvm/hackvmc/lang/codegen"
	"github.com/go-hackvm/hackvmc/lang/optimize"
	"github.com/go-hackvm/hackvmc/lang/vmsource"
)

// translate runs the whole pipeline named in spec §2 (Parser -> Preassembler
// -> Optimizer -> Code Generator) over path and writes the resulting .asm
// file, returning the path it wrote.
func translate(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("maincmd: %w", err)
	}

	vmFiles, programName, outDir, initVM, err := plan(path, info)
	if err != nil {
		return "", err
	}
	if len(vmFiles) == 0 {
		return "", fmt.Errorf("maincmd: %s: no .vm files found", path)
	}

	files, err := parseAll(vmFiles)
	if err != nil {
		return "", err
	}

	prog, err := assemble.Build(files)
	if err != nil {
		return "", err
	}
	if err := inlineFunctions(prog); err != nil {
		return "", err
	}
	if err := peepholeFunctions(prog); err != nil {
		return "", err
	}

	outPath := filepath.Join(outDir, programName+".asm")
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("maincmd: %w", err)
	}
	defer out.Close()

	if err := codegen.Generate(out, prog, programName, initVM); err != nil {
		return "", err
	}
	return outPath, nil
}

// plan resolves path into the set of .vm files to translate, the program
// name, the directory the .asm output belongs in, and whether the VM-init
// bootstrap is required (directory mode only, spec §6).
func plan(path string, info os.FileInfo) (vmFiles []string, programName, outDir string, initVM bool, err error) {
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, "", "", false, fmt.Errorf("maincmd: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".vm") {
				vmFiles = append(vmFiles, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(vmFiles)
		return vmFiles, filepath.Base(filepath.Clean(path)), path, true, nil
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []string{path}, stem, filepath.Dir(path), false, nil
}

func parseAll(vmFiles []string) ([]assemble.SourceFile, error) {
	files := make([]assemble.SourceFile, 0, len(vmFiles))
	for _, path := range vmFiles {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("maincmd: %w", err)
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cmds, err := vmsource.ParseFile(path, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, assemble.SourceFile{Stem: stem, Commands: cmds})
	}
	return files, nil
}

// inlineFunctions runs the inlining pass over every function prog.FunctionOrder
// visits (spec §4.3.1). That order is computed once up front, before any
// call is inlined: a function that becomes unreachable during the pass
// because its only caller inlined it is still visited here, and
// peepholeFunctions recomputes the order afterwards.
func inlineFunctions(prog *assemble.Program) error {
	order, err := prog.FunctionOrder()
	if err != nil {
		return err
	}
	for _, name := range order {
		fn, _ := prog.Lookup(name)
		if err := optimize.Inline(fn, prog); err != nil {
			return err
		}
	}
	return nil
}

// peepholeFunctions recomputes prog.FunctionOrder after inlining (a
// function whose only caller inlined it away is no longer reachable, spec
// §4.2's "dead code" note) and runs the peephole pass over what remains.
func peepholeFunctions(prog *assemble.Program) error {
	order, err := prog.FunctionOrder()
	if err != nil {
		return err
	}
	for _, name := range order {
		fn, _ := prog.Lookup(name)
		optimize.Peephole(fn)
	}
	return nil
}
