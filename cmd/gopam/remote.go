package main

import (
	"flag"
	"fmt"

	"github.com/gopam/gopam/internal/gopam"
)

const remoteShortHelp = `List, add, or remove configured repositories`
const remoteLongHelp = `
gopam remote list
gopam remote add <name> <address> <git|http|local>
gopam remote rm <name>
`

type remoteCmd struct{}

func (c *remoteCmd) Name() string            { return "remote" }
func (c *remoteCmd) Args() string            { return "<list|add|rm> [args...]" }
func (c *remoteCmd) ShortHelp() string       { return remoteShortHelp }
func (c *remoteCmd) LongHelp() string        { return remoteLongHelp }
func (c *remoteCmd) Register(*flag.FlagSet) {}
func (c *remoteCmd) Writes() bool            { return true }

func (c *remoteCmd) Run(args []string) error {
	if len(args) == 0 {
		return errWrongArgCount("remote", "<list|add|rm> [args...]")
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
	case "list":
		for _, r := range s.RemoteList() {
			fmt.Printf("%s\t%s\t%s\n", r.Name, r.Kind, r.Address)
		}
		return nil
	case "add":
		if len(args) != 4 {
			return errWrongArgCount("remote add", "<name> <address> <git|http|local>")
		}
		repo := gopam.Repository{
			Name:    gopam.RepoName(args[1]),
			Address: gopam.RepoAddress(args[2]),
			Kind:    gopam.RepoKind(args[3]),
		}
		return s.RemoteAdd(repo, logger)
	case "rm":
		if len(args) != 2 {
			return errWrongArgCount("remote rm", "<name>")
		}
		return s.RemoteRemove(gopam.RepoName(args[1]))
	default:
		return errWrongArgCount("remote", "<list|add|rm> [args...]")
	}
}
