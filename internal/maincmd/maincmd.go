// Package maincmd implements the command-line entry point: a single
// positional <path> argument translated per spec §6, either as a directory
// of .vm files (with the VM-init bootstrap) or as one .vm file.
package maincmd

import (
	"fmt"

	"github.com/mna/mainer"
)

const binName = "hackvmc"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <path>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <path>
       %[1]s -h|--help
       %[1]s -v|--version

Translates Hack VM bytecode (.vm) into Hack assembly (.asm).

<path> may be:
       a directory       every *.vm file in the directory is translated as
                          one program; the VM-init bootstrap is emitted and
                          the output is written to <path>/<dirname>.asm.
       a single .vm file  only that file is translated, without a VM-init
                          bootstrap; the output is written next to it as
                          <name>.asm.

Valid flag options are:
       -h --help          Show this help and exit.
       -v --version       Print version and exit.
`, binName)
)

// Cmd is the maincmd.Cmd contract mainer.Parser fills in from os.Args.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string)      { c.args = args }
func (c *Cmd) SetFlags(_ map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) != 1 {
		return fmt.Errorf("expected exactly one <path> argument, got %d", len(c.args))
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	outPath, err := translate(c.args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}
	fmt.Fprintf(stdio.Stdout, "wrote %s\n", outPath)
	return mainer.Success
}
