package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gopam/gopam/internal/gopam"
)

const listShortHelp = `List available and installed packages`
const listLongHelp = `
List every package known to the current switch, marking which ones are
installed.
`

type listCmd struct{}

func (c *listCmd) Name() string            { return "list" }
func (c *listCmd) Args() string            { return "" }
func (c *listCmd) ShortHelp() string       { return listShortHelp }
func (c *listCmd) LongHelp() string        { return listLongHelp }
func (c *listCmd) Register(*flag.FlagSet) {}
func (c *listCmd) Writes() bool            { return false }

func (c *listCmd) Run(args []string) error {
	root, err := gopamRoot()
	if err != nil {
		return err
	}
	s, err := gopam.Load(root)
	if err != nil {
		return err
	}
	entries, err := s.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Version, e.Synopsis)
	}
	return w.Flush()
}
