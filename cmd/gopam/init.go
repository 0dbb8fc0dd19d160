package main

import (
	"flag"

	"github.com/gopam/gopam/internal/gopam"
)

const initShortHelp = `Create a new root and its first switch`
const initLongHelp = `
Initialize a fresh gopam root at $GOPAM_ROOT (or ~/.gopam), register one
repository, create its first switch bound to the given compiler version,
and make it current.
`

type initCmd struct {
	alias       string
	repoName    string
	repoAddress string
	repoKind    string
}

func (c *initCmd) Name() string      { return "init" }
func (c *initCmd) Args() string      { return "[-alias name] [-repo-name name] [-repo-address addr] [-repo-kind git|http|local] <compiler-version>" }
func (c *initCmd) ShortHelp() string { return initShortHelp }
func (c *initCmd) LongHelp() string  { return initLongHelp }

func (c *initCmd) Register(fs *flag.FlagSet) {
	fs.StringVar(&c.alias, "alias", "default", "alias to give the first switch")
	fs.StringVar(&c.repoName, "repo-name", "default", "name of the initial repository")
	fs.StringVar(&c.repoAddress, "repo-address", "", "address of the initial repository")
	fs.StringVar(&c.repoKind, "repo-kind", "local", "kind of the initial repository (git|http|local)")
}

func (c *initCmd) Writes() bool { return true }

func (c *initCmd) Run(args []string) error {
	if len(args) != 1 {
		return errWrongArgCount("init", "<compiler-version>")
	}
	root, err := gopamRoot()
	if err != nil {
		return err
	}
	var repo gopam.Repository
	if c.repoAddress != "" {
		repo = gopam.Repository{
			Name:    gopam.RepoName(c.repoName),
			Address: gopam.RepoAddress(c.repoAddress),
			Kind:    gopam.RepoKind(c.repoKind),
		}
	}
	return gopam.Init(root, gopam.Alias(c.alias), gopam.CompilerVersion(args[0]), repo, logger, confirmFn())
}
