package main

import (
	"flag"

	"github.com/gopam/gopam/internal/gopam"
)

const switchShortHelp = `Change or create the current switch`
const switchLongHelp = `
Make alias the current switch. With -clone, create it first (bound to
-compiler) if it doesn't exist yet, reinstalling the current switch's
package set into it.
`

type switchCmd struct {
	clone    bool
	compiler string
}

func (c *switchCmd) Name() string      { return "switch" }
func (c *switchCmd) Args() string      { return "<alias>" }
func (c *switchCmd) ShortHelp() string { return switchShortHelp }
func (c *switchCmd) LongHelp() string  { return switchLongHelp }

func (c *switchCmd) Register(fs *flag.FlagSet) {
	fs.BoolVar(&c.clone, "clone", false, "create the switch if it doesn't exist")
	fs.StringVar(&c.compiler, "compiler", "", "compiler version for a newly created switch")
}

func (c *switchCmd) Writes() bool { return true }

func (c *switchCmd) Run(args []string) error {
	if len(args) != 1 {
		return errWrongArgCount("switch", "<alias>")
	}
	root, err := gopamRoot()
	if err != nil {
		return err
	}
	return gopam.Switch(root, c.clone, gopam.Alias(args[0]), gopam.CompilerVersion(c.compiler), logger, confirmFn())
}
