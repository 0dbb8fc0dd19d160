package main

import (
	"flag"

	"github.com/gopam/gopam/internal/gopam"
)

const uploadShortHelp = `Publish a built package into a repository`
const uploadLongHelp = `
gopam upload --opam F --descr F --archive F [repo]

Publish a locally-built package's manifest, description, and source
archive into the named repository (or nv's owning repo, if omitted).
`

type uploadCmd struct {
	opam    string
	descr   string
	archive string
}

func (c *uploadCmd) Name() string      { return "upload" }
func (c *uploadCmd) Args() string      { return "--opam F --descr F --archive F [repo]" }
func (c *uploadCmd) ShortHelp() string { return uploadShortHelp }
func (c *uploadCmd) LongHelp() string  { return uploadLongHelp }

func (c *uploadCmd) Register(fs *flag.FlagSet) {
	fs.StringVar(&c.opam, "opam", "", "path to the package's manifest file")
	fs.StringVar(&c.descr, "descr", "", "path to the package's description file")
	fs.StringVar(&c.archive, "archive", "", "path to the package's source archive")
}

func (c *uploadCmd) Writes() bool { return true }

func (c *uploadCmd) Run(args []string) error {
	if c.opam == "" || c.archive == "" {
		return errWrongArgCount("upload", "--opam F --descr F --archive F [repo]")
	}
	if len(args) > 1 {
		return errWrongArgCount("upload", "--opam F --descr F --archive F [repo]")
	}
	var repoName gopam.RepoName
	if len(args) == 1 {
		repoName = gopam.RepoName(args[0])
	}

	root, err := gopamRoot()
	if err != nil {
		return err
	}
	s, err := gopam.Load(root)
	if err != nil {
		return err
	}
	nv, err := gopam.ReadManifestNV(c.opam)
	if err != nil {
		return err
	}
	return s.Upload(repoName, c.opam, c.descr, c.archive, nv)
}
