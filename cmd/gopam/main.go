package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/gopam/gopam/internal/gopam"
	"github.com/gopam/gopam/log"
)

var (
	verbose = flag.Bool("v", false, "enable verbose logging")
	yes     = flag.Bool("y", false, "answer yes to every confirmation prompt")
	logger  = log.New(os.Stderr)
)

// command is the subcommand contract every gopam verb implements: a name,
// argument usage string, short/long help text, flag registration, and a
// run function.
type command interface {
	Name() string
	Args() string
	ShortHelp() string
	LongHelp() string
	Register(*flag.FlagSet)
	Run(args []string) error
	// Writes reports whether this command mutates root, and therefore must
	// hold the process-wide lock for its whole Run.
	Writes() bool
}

func main() {
	commands := []command{
		&initCmd{},
		&listCmd{},
		&infoCmd{},
		&installCmd{},
		&removeCmd{},
		&upgradeCmd{},
		&updateCmd{},
		&switchCmd{},
		&remoteCmd{},
		&configCmd{},
		&compilerListCmd{},
		&uploadCmd{},
	}

	usage := func() {
		fmt.Fprintln(os.Stderr, "Usage: gopam <command> [args...]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr)
		w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
		for _, c := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", c.Name(), c.ShortHelp())
		}
		w.Flush()
		fmt.Fprintln(os.Stderr)
	}

	if len(os.Args) <= 1 || strings.ToLower(os.Args[1]) == "-h" || strings.ToLower(os.Args[1]) == "--help" {
		usage()
		os.Exit(1)
	}

	for _, c := range commands {
		if c.Name() != os.Args[1] {
			continue
		}

		fs := flag.NewFlagSet(c.Name(), flag.ExitOnError)
		fs.BoolVar(verbose, "v", false, "enable verbose logging")
		fs.BoolVar(yes, "y", false, "answer yes to every confirmation prompt")
		c.Register(fs)
		resetUsage(fs, c.Name(), c.Args(), c.LongHelp())

		if err := fs.Parse(os.Args[2:]); err != nil {
			fs.Usage()
			os.Exit(1)
		}
		logger.Verbose = *verbose

		if c.Writes() {
			root, err := gopamRoot()
			if err == nil {
				if lock, lerr := gopam.AcquireLock(root); lerr == nil {
					defer lock.Release()
				} else if c.Name() != "init" {
					fmt.Fprintf(os.Stderr, "gopam %s: %v\n", c.Name(), lerr)
					os.Exit(1)
				}
			}
		}

		if err := c.Run(fs.Args()); err != nil {
			fmt.Fprintf(os.Stderr, "gopam %s: %v\n", c.Name(), err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "gopam: no such command %q\n", os.Args[1])
	usage()
	os.Exit(1)
}

func resetUsage(fs *flag.FlagSet, name, args, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		fmt.Fprintf(flagWriter, "\t-%s\t%s\n", f.Name, f.Usage)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gopam %s %s\n", name, args)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, strings.TrimSpace(longHelp))
		fmt.Fprintln(os.Stderr)
		if hasFlags {
			fmt.Fprintln(os.Stderr, "Flags:")
			fmt.Fprintln(os.Stderr)
			fmt.Fprint(os.Stderr, flagBlock.String())
		}
	}
}

// gopamRoot resolves $GOPAM_ROOT, defaulting to ~/.gopam.
func gopamRoot() (string, error) {
	if r := os.Getenv("GOPAM_ROOT"); r != "" {
		return r, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gopam"), nil
}

// confirmFn builds the gopam.Confirm callback: always-yes under -y,
// otherwise an interactive stdin y/n prompt.
func confirmFn() func(string) bool {
	if *yes {
		return func(string) bool { return true }
	}
	return func(prompt string) bool {
		fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
		r := bufio.NewReader(os.Stdin)
		line, _ := r.ReadString('\n')
		line = strings.TrimSpace(strings.ToLower(line))
		return line == "y" || line == "yes"
	}
}
