package main

import (
	"flag"

	"github.com/gopam/gopam/internal/gopam"
)

const upgradeShortHelp = `Upgrade installed packages to their latest available version`
const upgradeLongHelp = `
Resolve and apply the newest available version of every installed package,
and rebuild installed packages that are marked for reinstall.
`

type upgradeCmd struct{}

func (c *upgradeCmd) Name() string            { return "upgrade" }
func (c *upgradeCmd) Args() string            { return "" }
func (c *upgradeCmd) ShortHelp() string       { return upgradeShortHelp }
func (c *upgradeCmd) LongHelp() string        { return upgradeLongHelp }
func (c *upgradeCmd) Register(*flag.FlagSet) {}
func (c *upgradeCmd) Writes() bool            { return true }

func (c *upgradeCmd) Run(args []string) error {
	root, err := gopamRoot()
	if err != nil {
		return err
	}
	s, err := gopam.Load(root)
	if err != nil {
		return err
	}
	sol, err := s.Resolve(gopam.RequestUpgrade, nil)
	if err != nil {
		return err
	}
	if sol == nil {
		return errSolverNoSolution()
	}
	return gopam.Execute(root, sol, logger, confirmFn())
}
