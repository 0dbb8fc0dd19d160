package main

import (
	"flag"

	"github.com/gopam/gopam/internal/gopam"
)

const updateShortHelp = `Synchronize with the configured repositories`
const updateLongHelp = `
Pull every configured repository, rebuild the global package views, and mark
upstream-changed packages for reinstall in every switch.
`

type updateCmd struct{}

func (c *updateCmd) Name() string            { return "update" }
func (c *updateCmd) Args() string            { return "" }
func (c *updateCmd) ShortHelp() string       { return updateShortHelp }
func (c *updateCmd) LongHelp() string        { return updateLongHelp }
func (c *updateCmd) Register(*flag.FlagSet) {}
func (c *updateCmd) Writes() bool            { return true }

func (c *updateCmd) Run(args []string) error {
	root, err := gopamRoot()
	if err != nil {
		return err
	}
	_, err = gopam.Update(root, logger)
	return err
}
