package main

import (
	"flag"

	"github.com/gopam/gopam/internal/gopam"
)

const installShortHelp = `Install one or more packages`
const installLongHelp = `
Resolve and install the named packages into the current switch, along with
whatever dependency changes the solver decides are necessary.
`

type installCmd struct{}

func (c *installCmd) Name() string            { return "install" }
func (c *installCmd) Args() string            { return "<name> [name...]" }
func (c *installCmd) ShortHelp() string       { return installShortHelp }
func (c *installCmd) LongHelp() string        { return installLongHelp }
func (c *installCmd) Register(*flag.FlagSet) {}
func (c *installCmd) Writes() bool            { return true }

func (c *installCmd) Run(args []string) error {
	if len(args) == 0 {
		return errWrongArgCount("install", "<name> [name...]")
	}
	root, err := gopamRoot()
	if err != nil {
		return err
	}
	s, err := gopam.Load(root)
	if err != nil {
		return err
	}
	names := make([]gopam.PkgName, len(args))
	for i, a := range args {
		names[i] = gopam.PkgName(a)
	}
	sol, err := s.Resolve(gopam.RequestInstall, names)
	if err != nil {
		return err
	}
	if sol == nil {
		return errSolverNoSolution()
	}
	return gopam.Execute(root, sol, logger, confirmFn())
}
