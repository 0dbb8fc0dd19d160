package main

import (
	"flag"
	"fmt"

	"github.com/gopam/gopam/internal/gopam"
)

const compilerListShortHelp = `List known compiler versions`
const compilerListLongHelp = `
Print every compiler version published by the configured repositories.
`

type compilerListCmd struct{}

func (c *compilerListCmd) Name() string            { return "compiler-list" }
func (c *compilerListCmd) Args() string            { return "" }
func (c *compilerListCmd) ShortHelp() string       { return compilerListShortHelp }
func (c *compilerListCmd) LongHelp() string        { return compilerListLongHelp }
func (c *compilerListCmd) Register(*flag.FlagSet) {}
func (c *compilerListCmd) Writes() bool            { return false }

func (c *compilerListCmd) Run(args []string) error {
	root, err := gopamRoot()
	if err != nil {
		return err
	}
	s, err := gopam.Load(root)
	if err != nil {
		return err
	}
	versions, err := s.CompilerList()
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Println(v)
	}
	return nil
}
