package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/gopam/gopam/internal/gopam"
)

const configShortHelp = `Query variables, environment, and build flags`
const configLongHelp = `
gopam config env                     print the current switch's environment
gopam config list-vars [prefix]      list every pkg[:section]:var=value pair
gopam config variable <pkg[:sec]:var> print one variable's value
gopam config subst <file> [file...]  apply %{...}% substitution in place
gopam config includes [-r] <name...> print the sections names export (-r: and their dependencies')
gopam config compil <pkg:section...> print compile/link flags for sections
`

type configCmd struct {
	recursive bool
}

func (c *configCmd) Name() string      { return "config" }
func (c *configCmd) Args() string      { return "<subcommand> [args...]" }
func (c *configCmd) ShortHelp() string { return configShortHelp }
func (c *configCmd) LongHelp() string  { return configLongHelp }

func (c *configCmd) Register(fs *flag.FlagSet) {
	fs.BoolVar(&c.recursive, "r", false, "recurse into dependencies (includes)")
}

func (c *configCmd) Writes() bool { return false }

func (c *configCmd) Run(args []string) error {
	if len(args) == 0 {
		return errWrongArgCount("config", "<subcommand> [args...]")
	}
	root, err := gopamRoot()
	if err != nil {
		return err
	}
	s, err := gopam.Load(root)
	if err != nil {
		return err
	}

	switch args[0] {
	case "env":
		env, err := s.Env()
		if err != nil {
			return err
		}
		for _, kv := range env {
			fmt.Println(kv)
		}
		return nil

	case "list-vars":
		prefix := ""
		if len(args) > 1 {
			prefix = args[1]
		}
		keys, vals, err := s.ListVars(prefix)
		if err != nil {
			return err
		}
		for i, k := range keys {
			fmt.Printf("%s=%s\n", k, vals[i].String())
		}
		return nil

	case "variable":
		if len(args) != 2 {
			return errWrongArgCount("config variable", "<pkg[:section]:var>")
		}
		v, err := s.Variable(args[1])
		if err != nil {
			return err
		}
		fmt.Println(v.String())
		return nil

	case "subst":
		if len(args) < 2 {
			return errWrongArgCount("config subst", "<file> [file...]")
		}
		return s.SubstFiles(args[1:])

	case "includes":
		rest := args[1:]
		recursive := c.recursive
		if len(rest) > 0 && rest[0] == "-r" {
			recursive = true
			rest = rest[1:]
		}
		if len(rest) < 1 {
			return errWrongArgCount("config includes", "[-r] <name...>")
		}
		names := make([]gopam.PkgName, len(rest))
		for i, a := range rest {
			names[i] = gopam.PkgName(a)
		}
		secs, err := s.Includes(names, recursive)
		if err != nil {
			return err
		}
		strs := make([]string, len(secs))
		for i, sec := range secs {
			strs[i] = string(sec)
		}
		fmt.Println(strings.Join(strs, " "))
		return nil

	case "compil":
		if len(args) < 2 {
			return errWrongArgCount("config compil", "<pkg:section...>")
		}
		sections := make([]gopam.FullSection, len(args)-1)
		for i, a := range args[1:] {
			fs, err := gopam.ParseFullSection(a)
			if err != nil {
				return err
			}
			sections[i] = fs
		}
		flags, err := s.CompilFlags(sections)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(flags, " "))
		return nil

	default:
		return errWrongArgCount("config", "<env|list-vars|variable|subst|includes|compil>")
	}
}
