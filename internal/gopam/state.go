package gopam

import (
	"github.com/pkg/errors"
)

// State is the immutable in-memory view of the on-disk world at the start
// of a command. All mutations go through the File layer and require a
// fresh Load to be observed — nothing here is a live pointer into the
// filesystem.
type State struct {
	Paths        Paths
	Config       GlobalConfig
	Aliases      AliasMap
	CurrentAlias Alias
	Compiler     CompilerVersion
	Repos        []Repository // ordered by priority, == Config.Repos
	Available    NVSet
	Installed    NVSet
	Reinstall    NVSet
	RepoIndex    RepoIndex
}

// Load reads the global config, resolves the current switch, and
// materializes the repository list, Available/Installed/Reinstall sets and
// the repo index. It performs no network I/O and no writes; missing
// optional files read as empty.
func Load(root string) (*State, error) {
	p := NewPaths(root)

	if ok, _ := isDir(root); !ok {
		return nil, errUninitialized(root)
	}
	if ok, _ := isRegular(p.ConfigFile()); !ok {
		return nil, errUninitialized(root)
	}

	cfg, err := readGlobalConfig(p.ConfigFile())
	if err != nil {
		return nil, errors.Wrap(err, "reading global config")
	}

	aliases, err := readAliasMap(p.AliasesFile())
	if err != nil {
		return nil, errors.Wrap(err, "reading alias map")
	}

	compiler, ok := aliases.Lookup(cfg.CurrentAlias)
	if !ok && cfg.CurrentAlias != "" {
		return nil, errors.Errorf("current alias %q is not in the alias map", cfg.CurrentAlias)
	}

	available, err := scanAvailable(p)
	if err != nil {
		return nil, errors.Wrap(err, "scanning available packages")
	}

	installed := NVSet{}
	reinstall := NVSet{}
	if cfg.CurrentAlias != "" {
		installed, err = readNVSet(p.InstalledFile(cfg.CurrentAlias))
		if err != nil {
			return nil, errors.Wrap(err, "reading installed set")
		}
		reinstall, err = readNVSet(p.ReinstallFile(cfg.CurrentAlias))
		if err != nil {
			return nil, errors.Wrap(err, "reading reinstall set")
		}
	}

	idx, err := readRepoIndex(p.RepoIndexFile())
	if err != nil {
		return nil, errors.Wrap(err, "reading repo index")
	}

	return &State{
		Paths:        p,
		Config:       *cfg,
		Aliases:      aliases,
		CurrentAlias: cfg.CurrentAlias,
		Compiler:     compiler,
		Repos:        cfg.Repos,
		Available:    available,
		Installed:    installed,
		Reinstall:    reinstall,
		RepoIndex:    idx,
	}, nil
}

// Manifest loads the manifest for nv from the global opam/ view and checks
// that the name and version it declares match nv.
func (s *State) Manifest(nv NV) (*Manifest, error) {
	path := s.Paths.GlobalOpamFile(nv)
	m, err := readManifest(path)
	if err != nil {
		return nil, err
	}
	if err := validateManifestLocation(m, nv.String()); err != nil {
		return nil, err
	}
	return m, nil
}

// InstalledManifest returns the manifest for the installed version of
// name, or NotInstalled.
func (s *State) InstalledManifest(name PkgName) (*Manifest, error) {
	nv, ok := s.Installed.ByName(name)
	if !ok {
		return nil, errNotInstalled(name)
	}
	return s.Manifest(nv)
}

// LatestAvailable returns the highest-versioned NV of name in Available.
func (s *State) LatestAvailable(name PkgName) (NV, bool) {
	var best NV
	found := false
	for nv := range s.Available {
		if nv.Name != name {
			continue
		}
		if !found || nv.Version.Compare(best.Version) > 0 {
			best, found = nv, true
		}
	}
	return best, found
}

// AvailableVersions returns every available version of name, sorted
// ascending.
func (s *State) AvailableVersions(name PkgName) []PkgVersion {
	var out []PkgVersion
	for nv := range s.Available {
		if nv.Name == name {
			out = append(out, nv.Version)
		}
	}
	sortVersions(out)
	return out
}

func sortVersions(vs []PkgVersion) {
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && vs[j-1].Compare(vs[j]) > 0; j-- {
			vs[j-1], vs[j] = vs[j], vs[j-1]
		}
	}
}

func (s *State) buildConfigPath(name PkgName) string {
	return s.Paths.PkgConfigFile(s.CurrentAlias, name)
}

func (s *State) installDescrPath(name PkgName) string {
	return s.Paths.PkgInstallFile(s.CurrentAlias, name)
}
