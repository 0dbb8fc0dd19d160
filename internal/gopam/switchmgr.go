package gopam

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/gopam/gopam/log"
)

// Init bootstraps a fresh root: creates the global directory layout,
// registers the first repository, writes an empty config/alias map, then
// calls InitSwitch for the first switch.
func Init(root string, alias Alias, compiler CompilerVersion, repo Repository, logger *log.Logger, confirm Confirm) error {
	if ok, _ := isDir(root); ok {
		if ok, _ := isRegular(NewPaths(root).ConfigFile()); ok {
			return errAlreadyInitialized(root)
		}
	}

	p := NewPaths(root)
	for _, d := range p.GlobalDirs() {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}

	if repo.Name != "" {
		b, err := NewBackend(repo.Kind, p)
		if err != nil {
			return err
		}
		if err := b.Init(repo); err != nil {
			return errors.Wrapf(err, "initializing repository %s", repo.Name)
		}
	}

	cfg := &GlobalConfig{FormatVersion: FormatVersion, Workers: 1}
	if repo.Name != "" {
		cfg.Repos = []Repository{repo}
	}
	if err := writeGlobalConfig(p.ConfigFile(), cfg); err != nil {
		return err
	}
	if err := writeAliasMap(p.AliasesFile(), AliasMap{}); err != nil {
		return err
	}

	return InitSwitch(root, alias, compiler, logger, confirm)
}

// InitSwitch creates a new switch bound to compiler and makes it current:
// it lays out the switch's directory tree, installs the synthetic
// compiler-config "base" package, syncs the configured repositories so the
// compiler description and its required packages are visible, bootstraps the compiler distribution if it isn't marked preinstalled,
// installs the compiler's declared Packages, and rolls the whole tree
// back if any of that fails, so a half-built switch is never left
// registered. If the switch directory already exists and is non-empty,
// this is a no-op, per the switch manager's idempotent-retry contract.
func InitSwitch(root string, alias Alias, compiler CompilerVersion, logger *log.Logger, confirm Confirm) error {
	s, err := Load(root)
	if err != nil {
		return err
	}
	p := s.Paths
	if empty, err := isEmptyDirOrNotExist(p.SwitchDir(alias)); err != nil {
		return err
	} else if !empty {
		return nil
	}
	for _, d := range p.SwitchSubdirs(alias) {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	if err := writeNVSet(p.InstalledFile(alias), NVSet{}); err != nil {
		os.RemoveAll(p.SwitchDir(alias))
		return err
	}
	if err := writeNVSet(p.ReinstallFile(alias), NVSet{}); err != nil {
		os.RemoveAll(p.SwitchDir(alias))
		return err
	}

	s.Aliases = append(s.Aliases, AliasEntry{Alias: alias, Compiler: compiler})
	if err := writeAliasMap(p.AliasesFile(), s.Aliases); err != nil {
		os.RemoveAll(p.SwitchDir(alias))
		return err
	}

	s.Config.CurrentAlias = alias
	if err := writeGlobalConfig(p.ConfigFile(), &s.Config); err != nil {
		rollbackSwitch(p, alias, s.Aliases)
		return err
	}

	if err := s.installBaseConfig(alias, compiler); err != nil {
		rollbackSwitch(p, alias, s.Aliases)
		return errors.Wrap(err, "installing compiler-config package")
	}

	if len(s.Config.Repos) > 0 {
		if _, err := Update(root, logger); err != nil {
			rollbackSwitch(p, alias, s.Aliases)
			return errors.Wrap(err, "syncing repositories for new switch")
		}
	}

	cd, err := readCompilerDescr(p.GlobalCompilerFile(compiler))
	if err != nil {
		rollbackSwitch(p, alias, s.Aliases)
		return errors.Wrapf(err, "reading compiler description for %s", compiler)
	}

	if !cd.Preinstalled {
		cur, err := Load(root)
		if err != nil {
			rollbackSwitch(p, alias, s.Aliases)
			return err
		}
		if err := cur.bootstrapCompiler(cd, logger); err != nil {
			rollbackSwitch(p, alias, s.Aliases)
			return errors.Wrapf(err, "bootstrapping compiler %s", compiler)
		}
	}

	if len(cd.Packages) == 0 {
		return nil
	}

	cur, err := Load(root)
	if err != nil {
		rollbackSwitch(p, alias, s.Aliases)
		return err
	}
	sol, err := cur.Resolve(RequestSwitch, cd.Packages)
	if err != nil {
		rollbackSwitch(p, alias, s.Aliases)
		return err
	}
	if sol == nil {
		rollbackSwitch(p, alias, s.Aliases)
		return errSolverNoSolution()
	}
	if err := Execute(root, sol, logger, confirm); err != nil {
		rollbackSwitch(p, alias, s.Aliases)
		return err
	}
	return nil
}

// installBaseConfig writes the synthetic compiler-config package
// (BaseName) directly: a manifest carrying no build/remove steps, a
// BuildConfig exposing the switch's prefix/bin/lib/doc variables, and an
// empty InstallDescriptor (the switch tree itself is its payload). It is
// added straight to Installed, bypassing the solver — it is never
// Available from any repository.
func (s *State) installBaseConfig(alias Alias, compiler CompilerVersion) error {
	nv := NV{Name: BaseName, Version: PkgVersion(compiler)}

	m := &Manifest{Name: BaseName, Version: nv.Version}
	if err := writeManifest(s.Paths.GlobalOpamFile(nv), m); err != nil {
		return err
	}

	bc := &BuildConfig{Variables: map[string]string{
		"prefix": s.Paths.SwitchDir(alias),
		"bin":    s.Paths.BinDir(alias),
		"lib":    filepath.Join(s.Paths.SwitchDir(alias), "lib"),
		"doc":    s.Paths.DocDir(alias),
	}}
	if err := writeBuildConfig(s.Paths.PkgConfigFile(alias, BaseName), bc); err != nil {
		return err
	}
	if err := writeInstallDescriptor(s.Paths.PkgInstallFile(alias, BaseName), &InstallDescriptor{}); err != nil {
		return err
	}

	installed, err := readNVSet(s.Paths.InstalledFile(alias))
	if err != nil {
		return err
	}
	installed.Add(nv)
	return writeNVSet(s.Paths.InstalledFile(alias), installed)
}

// bootstrapCompiler builds and installs a non-preinstalled compiler
// distribution into the switch prefix: download the source tarball,
// apply patches, then run configure/make/make-install with the switch's
// composed environment, the same sequence installOne runs for a regular
// package's build commands.
func (s *State) bootstrapCompiler(cd *CompilerDescr, logger *log.Logger) error {
	if cd.SourceURL == "" {
		return nil
	}
	buildDir := s.Paths.BuildDir(s.CurrentAlias, NV{Name: "compiler", Version: PkgVersion(cd.Version)})
	archivePath := filepath.Join(buildDir, "..", "compiler-"+string(cd.Version)+".tar.gz")

	logger.Vlogf("downloading compiler source from %s", cd.SourceURL)
	if err := downloadFile(cd.SourceURL, archivePath); err != nil {
		return errors.Wrapf(err, "fetching compiler source %s", cd.SourceURL)
	}
	if err := extractArchive(archivePath, buildDir); err != nil {
		return err
	}

	env, err := s.buildEnv(cd)
	if err != nil {
		return err
	}
	prefix := s.Paths.SwitchDir(s.CurrentAlias)

	for _, patch := range cd.Patches {
		if err := runIn(buildDir, env, []string{"patch", "-p1", "-i", patch}); err != nil {
			return errors.Wrapf(err, "applying patch %s", patch)
		}
	}

	configureArgs := append([]string{"./configure", "--prefix=" + prefix}, cd.ConfigureArgs...)
	if err := runIn(buildDir, env, configureArgs); err != nil {
		return errors.Wrap(err, "configuring compiler")
	}
	makeArgs := append([]string{"make"}, cd.MakeArgs...)
	if err := runIn(buildDir, env, makeArgs); err != nil {
		return errors.Wrap(err, "building compiler")
	}
	if err := runIn(buildDir, env, []string{"make", "install"}); err != nil {
		return errors.Wrap(err, "installing compiler")
	}
	return nil
}

// downloadFile fetches url's body into dst, creating dst's parent dir.
func downloadFile(url, dst string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

// rollbackSwitch undoes a partially created switch: removes its directory
// tree and restores the alias map to exclude it.
func rollbackSwitch(p Paths, alias Alias, before AliasMap) {
	os.RemoveAll(p.SwitchDir(alias))
	kept := make(AliasMap, 0, len(before))
	for _, e := range before {
		if e.Alias != alias {
			kept = append(kept, e)
		}
	}
	writeAliasMap(p.AliasesFile(), kept)
}

// Switch changes the current alias. If clone is true and alias doesn't
// exist yet, it is created first via InitSwitch bound to
// compiler and the currently-installed package set is reinstalled into it;
// otherwise alias must already exist.
func Switch(root string, clone bool, alias Alias, compiler CompilerVersion, logger *log.Logger, confirm Confirm) error {
	s, err := Load(root)
	if err != nil {
		return err
	}

	if !s.Aliases.Has(alias) {
		if !clone {
			return errors.Errorf("switch %q does not exist; pass clone to create it", alias)
		}
		installed := s.Installed.Sorted()
		if err := InitSwitch(root, alias, compiler, logger, confirm); err != nil {
			return err
		}
		var names []PkgName
		for _, nv := range installed {
			if nv.Name == BaseName {
				continue
			}
			names = append(names, nv.Name)
		}
		if len(names) == 0 {
			return nil
		}
		cur, err := Load(root)
		if err != nil {
			return err
		}
		sol, err := cur.Resolve(RequestSwitch, names)
		if err != nil {
			return err
		}
		if sol == nil {
			return errSolverNoSolution()
		}
		return Execute(root, sol, logger, confirm)
	}

	s.Config.CurrentAlias = alias
	return writeGlobalConfig(s.Paths.ConfigFile(), &s.Config)
}
