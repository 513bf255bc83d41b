package vmsource

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-hackvm/hackvmc/lang/ir"
)

// ParseFile reads every line of r (the contents of the VM source file named
// filename) and returns the Commands it contains, in source order.
//
// Each line has any "//" comment stripped, runs of whitespace collapsed, and
// is trimmed; empty lines are skipped. The remainder is split on single
// spaces into 1-5 tokens: the first is the opcode mnemonic, the rest are its
// arguments. The parser does not validate opcode mnemonics — that is a
// lexical layer only, dispatch validation happens at lowering time — but it
// does validate token count (1-5) and the per-arity integer/symbolic typing
// of arguments, since those are lexical well-formedness properties.
func ParseFile(filename string, r io.Reader) ([]ir.Command, error) {
	var cmds []ir.Command
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		pos := Position{Filename: filename, Line: line}
		cmd, ok, err := parseLine(pos, s.Text())
		if err != nil {
			return nil, err
		}
		if ok {
			cmds = append(cmds, cmd)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("vmsource: reading %s: %w", filename, err)
	}
	return cmds, nil
}

func parseLine(pos Position, raw string) (ir.Command, bool, error) {
	if i := strings.Index(raw, "//"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(strings.Join(strings.Fields(raw), " "))
	if raw == "" {
		return ir.Command{}, false, nil
	}

	fields := strings.Split(raw, " ")
	if len(fields) == 0 || len(fields) > 5 {
		return ir.Command{}, false, fmt.Errorf("vmsource: %s: expected 1-5 tokens, got %d", pos, len(fields))
	}

	op, _ := ir.LookupOpcode(fields[0])
	args := fields[1:]

	cmd := ir.Command{Op: op}
	switch len(args) {
	case 0:
		// no payload
	case 1:
		cmd.Name = args[0]
	case 2:
		i, err := parseInt(pos, args[1])
		if err != nil {
			return ir.Command{}, false, err
		}
		cmd.Name, cmd.NVars, cmd.NArgs, cmd.Index = args[0], i, i, i
	case 3:
		i2, err := parseInt(pos, args[1])
		if err != nil {
			return ir.Command{}, false, err
		}
		i3, err := parseInt(pos, args[2])
		if err != nil {
			return ir.Command{}, false, err
		}
		cmd.Name, cmd.NVars, cmd.NArgs = args[0], i2, i3
	case 4:
		i2, err := parseInt(pos, args[1])
		if err != nil {
			return ir.Command{}, false, err
		}
		i4, err := parseInt(pos, args[3])
		if err != nil {
			return ir.Command{}, false, err
		}
		cmd.Name, cmd.Index, cmd.Name2, cmd.Index2 = args[0], i2, args[2], i4
	}
	return postProcess(cmd), true, nil
}

func parseInt(pos Position, tok string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("vmsource: %s: %q is not a valid integer: %w", pos, tok, err)
	}
	return n, nil
}

// postProcess reinterprets the generic per-arity fields captured by
// parseLine into the field names lang/ir.Command documents for each opcode,
// so downstream packages never need to know about the parser's raw
// arg-position layout.
func postProcess(cmd ir.Command) ir.Command {
	switch cmd.Op {
	case ir.PUSH, ir.POP:
		seg, _ := ir.LookupSegment(cmd.Name)
		return ir.Command{Op: cmd.Op, Seg: seg, Index: cmd.Index}
	case ir.FUNCTION:
		return ir.Command{Op: cmd.Op, Name: cmd.Name, NVars: cmd.NVars}
	case ir.FUNCTIONEXT:
		return ir.Command{Op: cmd.Op, Name: cmd.Name, NVars: cmd.NVars, NArgs: cmd.NArgs}
	case ir.CALL:
		return ir.Command{Op: cmd.Op, Name: cmd.Name, NArgs: cmd.NArgs}
	case ir.LABEL, ir.GOTO, ir.IFGOTO, ir.CALLEXT:
		return ir.Command{Op: cmd.Op, Name: cmd.Name}
	case ir.POKE:
		to, _ := ir.LookupSegment(cmd.Name)
		from, _ := ir.LookupSegment(cmd.Name2)
		return ir.Command{Op: cmd.Op, Seg: to, Index: cmd.Index, Seg2: from, Index2: cmd.Index2}
	default:
		return cmd
	}
}
