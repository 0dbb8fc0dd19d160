package main

import (
	"flag"
	"fmt"

	"github.com/gopam/gopam/internal/gopam"
)

const infoShortHelp = `Show details about one package`
const infoLongHelp = `
Print the resolved version, installedness, and declared dependency
relationships of a package.
`

type infoCmd struct{}

func (c *infoCmd) Name() string            { return "info" }
func (c *infoCmd) Args() string            { return "<name>" }
func (c *infoCmd) ShortHelp() string       { return infoShortHelp }
func (c *infoCmd) LongHelp() string        { return infoLongHelp }
func (c *infoCmd) Register(*flag.FlagSet) {}
func (c *infoCmd) Writes() bool            { return false }

func (c *infoCmd) Run(args []string) error {
	if len(args) != 1 {
		return errWrongArgCount("info", "<name>")
	}
	root, err := gopamRoot()
	if err != nil {
		return err
	}
	s, err := gopam.Load(root)
	if err != nil {
		return err
	}
	info, err := s.Info(gopam.PkgName(args[0]))
	if err != nil {
		return err
	}
	fmt.Printf("name:         %s\n", info.NV.Name)
	if info.Installed {
		fmt.Printf("installed:    %s\n", info.NV.Version)
	} else {
		fmt.Printf("installed:    --\n")
	}
	fmt.Printf("available:    %s\n", formatVersions(info.NV, info.Installed, info.OtherVersion))
	fmt.Printf("libraries:    %v\n", info.Libraries)
	fmt.Printf("syntax:       %v\n", info.Syntax)
	fmt.Printf("depends:      %v\n", info.Depends)
	fmt.Printf("depopts:      %v\n", info.Depopts)
	fmt.Printf("conflicts:    %v\n", info.Conflicts)
	if info.Synopsis != "" {
		fmt.Println()
		fmt.Println(info.Synopsis)
	}
	if info.Description != "" {
		fmt.Println()
		fmt.Println(info.Description)
	}
	return nil
}

// formatVersions renders every Available version of a package other than
// its installed one (info never repeats the installed version under
// "available").
func formatVersions(nv gopam.NV, installed bool, others []gopam.PkgVersion) string {
	var vs []string
	if !installed {
		vs = append(vs, string(nv.Version))
	}
	for _, v := range others {
		vs = append(vs, string(v))
	}
	if len(vs) == 0 {
		return "--"
	}
	out := vs[0]
	for _, v := range vs[1:] {
		out += ", " + v
	}
	return out
}
