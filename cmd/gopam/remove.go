package main

import (
	"flag"

	"github.com/gopam/gopam/internal/gopam"
)

const removeShortHelp = `Remove one or more packages`
const removeLongHelp = `
Resolve and remove the named packages from the current switch. Every other
installed package stays in place, including the removed packages' own
dependencies; if an installed package depends on one of the named packages,
there is no solution and nothing is removed.
`

type removeCmd struct{}

func (c *removeCmd) Name() string            { return "remove" }
func (c *removeCmd) Args() string            { return "<name> [name...]" }
func (c *removeCmd) ShortHelp() string       { return removeShortHelp }
func (c *removeCmd) LongHelp() string        { return removeLongHelp }
func (c *removeCmd) Register(*flag.FlagSet) {}
func (c *removeCmd) Writes() bool            { return true }

func (c *removeCmd) Run(args []string) error {
	if len(args) == 0 {
		return errWrongArgCount("remove", "<name> [name...]")
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
	sol, err := s.Resolve(gopam.RequestRemove, names)
	if err != nil {
		return err
	}
	if sol == nil {
		return errSolverNoSolution()
	}
	return gopam.Execute(root, sol, logger, confirmFn())
}
