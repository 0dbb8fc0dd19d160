package gopam

import (
	"io/ioutil"
	"os"
	"sort"
	"strings"

	"github.com/armon/go-radix"
	"github.com/pkg/errors"
)

// PackageInfo is the answer to `gopam info`: everything known about one NV
// without requiring a second round-trip through Manifest/BuildConfig.
type PackageInfo struct {
	NV           NV
	Installed    bool
	OtherVersion []PkgVersion // Available versions other than NV
	Depends      []PkgName
	Depopts      []PkgName
	Conflicts    []PkgName
	Libraries    []Section
	Syntax       []Section
	Synopsis     string
	Description  string
}

// ListEntry is one row of `gopam list`: a known package name, its
// installed version (or "--"), and its one-line synopsis.
type ListEntry struct {
	Name     PkgName
	Version  string
	Synopsis string
}

// List returns one entry per known PkgName, sorted by name: the installed
// version if any (else the literal "--"), and the synopsis of whichever
// manifest that version (or, lacking one, the latest Available) names.
func (s *State) List() ([]ListEntry, error) {
	names := map[PkgName]bool{}
	for nv := range s.Available {
		names[nv.Name] = true
	}
	sorted := make([]PkgName, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make([]ListEntry, 0, len(sorted))
	for _, name := range sorted {
		version := "--"
		nv, ok := s.Installed.ByName(name)
		if ok {
			version = string(nv.Version)
		} else {
			nv, ok = s.LatestAvailable(name)
		}
		synopsis := ""
		if ok {
			synopsis, _ = readSynopsis(s.Paths.GlobalDescrFile(nv))
		}
		out = append(out, ListEntry{Name: name, Version: version, Synopsis: synopsis})
	}
	return out, nil
}

// Info resolves name to its installed version if any, else its latest
// Available version, and reports the manifest's declared relationships,
// library/syntax sections, and description body (`gopam info`).
func (s *State) Info(name PkgName) (PackageInfo, error) {
	nv, ok := s.Installed.ByName(name)
	installed := ok
	if !ok {
		nv, ok = s.LatestAvailable(name)
		if !ok {
			return PackageInfo{}, errUnknownPackage(name)
		}
	}
	m, err := s.Manifest(nv)
	if err != nil {
		return PackageInfo{}, err
	}

	var others []PkgVersion
	for _, v := range s.AvailableVersions(name) {
		if v != nv.Version {
			others = append(others, v)
		}
	}

	synopsis, desc, err := readDescr(s.Paths.GlobalDescrFile(nv))
	if err != nil {
		return PackageInfo{}, err
	}

	return PackageInfo{
		NV:           nv,
		Installed:    installed,
		OtherVersion: others,
		Depends:      m.Depends,
		Depopts:      m.Depopts,
		Conflicts:    m.Conflicts,
		Libraries:    m.Libraries,
		Syntax:       m.Syntax,
		Synopsis:     synopsis,
		Description:  desc,
	}, nil
}

// readDescr splits a descr file into its one-line synopsis and the
// remaining body, tolerating a missing file as an empty pair.
func readDescr(path string) (synopsis, body string, err error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", err
	}
	raw := string(b)
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+1:]), nil
	}
	return strings.TrimSpace(raw), "", nil
}

func readSynopsis(path string) (string, error) {
	s, _, err := readDescr(path)
	return s, err
}

// CompilerList returns every compiler version known to the global
// compiler/ view, sorted ascending (`gopam compiler-list`).
func (s *State) CompilerList() ([]CompilerVersion, error) {
	entries, err := readDirNames(s.Paths.GlobalCompilerDir())
	if err != nil {
		return nil, err
	}
	var out []CompilerVersion
	for _, name := range entries {
		if !strings.HasSuffix(name, ".comp") {
			continue
		}
		out = append(out, CompilerVersion(strings.TrimSuffix(name, ".comp")))
	}
	sort.Slice(out, func(i, j int) bool {
		return PkgVersion(out[i]).Compare(PkgVersion(out[j])) < 0
	})
	return out, nil
}

// Upload publishes a locally-built package's opam/descr/archive files into
// repoName's mirror via its Backend (`gopam upload`). If repoName is
// empty, nv's owning repo from the current RepoIndex is used.
func (s *State) Upload(repoName RepoName, opamFile, descrFile, archiveFile string, nv NV) error {
	if repoName == "" {
		owner, ok := s.RepoIndex[nv.Name]
		if !ok {
			return errUnknownPackage(nv.Name)
		}
		repoName = owner
	}
	repo, ok := s.Config.RepoByName(repoName)
	if !ok {
		return errUnknownRepo(repoName)
	}
	b, err := NewBackend(repo.Kind, s.Paths)
	if err != nil {
		return err
	}
	if err := b.Upload(repo, opamFile, descrFile, archiveFile, nv); err != nil {
		return errors.Wrapf(err, "uploading %s to %s", nv, repoName)
	}
	return nil
}

// Env renders the exported environment of the current switch as a sorted
// "NAME=value" list, suitable for `eval $(gopam config env)`.
func (s *State) Env() ([]string, error) {
	cd, err := readCompilerDescr(s.Paths.GlobalCompilerFile(s.Compiler))
	if err != nil {
		return nil, err
	}
	env, err := s.buildEnv(cd)
	if err != nil {
		return nil, err
	}
	sort.Strings(env)
	return env, nil
}

// variableIndex is a radix tree over every "pkg:var" and "pkg:section:var"
// string this State can currently resolve, built fresh per query. A radix
// tree buys ordered, prefix-bounded traversal for list-vars's optional
// prefix filter without a second sort pass.
func (s *State) variableIndex() (*radix.Tree, error) {
	t := radix.New()
	for nv := range s.Installed {
		t.Insert(FullVariable{Pkg: nv.Name, Var: "enable"}.String(), StringValue("enable"))
		t.Insert(FullVariable{Pkg: nv.Name, Var: "installed"}.String(), BoolValue(true))

		bc, err := readBuildConfig(s.buildConfigPath(nv.Name))
		if err != nil {
			return nil, err
		}
		for k, v := range bc.Variables {
			t.Insert(FullVariable{Pkg: nv.Name, Var: k}.String(), StringValue(v))
		}
		for _, sec := range bc.sections() {
			for k, v := range sec.Variables {
				t.Insert(FullVariable{Pkg: nv.Name, Section: sec.Name, Var: k}.String(), StringValue(v))
			}
		}
	}
	return t, nil
}

// ListVars returns every known (variable, value) pair whose rendered key
// has prefix, in lexical order. An empty prefix lists everything.
func (s *State) ListVars(prefix string) ([]string, []VariableValue, error) {
	t, err := s.variableIndex()
	if err != nil {
		return nil, nil, err
	}
	var keys []string
	var vals []VariableValue
	t.WalkPrefix(prefix, func(k string, v interface{}) bool {
		keys = append(keys, k)
		vals = append(vals, v.(VariableValue))
		return false
	})
	return keys, vals, nil
}

// Variable evaluates one pkg:var or pkg:section:var string (`config
// variable`).
func (s *State) Variable(raw string) (VariableValue, error) {
	f, err := ParseFullVariable(raw)
	if err != nil {
		return VariableValue{}, err
	}
	return s.EvalVariable(f)
}

// SubstFiles applies SubstFile to every base name given (`config subst`).
func (s *State) SubstFiles(bases []string) error {
	for _, b := range bases {
		if err := s.SubstFile(b); err != nil {
			return err
		}
	}
	return nil
}

// Includes returns the section names declared by names' build configs and,
// with recursive=true, by the build configs of their installed manifests'
// Depends, transitively. Sections' own Requires are not followed. The same
// section name exported by more than one visited package is a
// NameCollision (`config includes`).
func (s *State) Includes(names []PkgName, recursive bool) ([]Section, error) {
	providers := map[Section]PkgName{}
	var order []Section
	visited := map[PkgName]bool{}

	var visit func(name PkgName) error
	visit = func(name PkgName) error {
		if visited[name] {
			return nil
		}
		visited[name] = true
		bc, err := readBuildConfig(s.buildConfigPath(name))
		if err != nil {
			return err
		}
		for _, sec := range bc.sections() {
			if owner, ok := providers[sec.Name]; ok && owner != name {
				return errNameCollision(sec.Name)
			}
			providers[sec.Name] = name
			order = append(order, sec.Name)
		}
		if !recursive {
			return nil
		}
		m, err := s.InstalledManifest(name)
		if err != nil {
			return err
		}
		for _, dep := range m.Depends {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// CompilFlags returns the byte/asm/compile/link flags needed to build
// against sections and their transitive Requires closure, plus the
// compiler's own required sections: the compiler description's flags
// first, then each closure section's matching flags, in topological order
// (a section is emitted only after every section it Requires). Two
// packages exporting a section of the same name anywhere in the closure is
// a NameCollision (`config compil`).
func (s *State) CompilFlags(sections []FullSection) ([]string, error) {
	cd, err := readCompilerDescr(s.Paths.GlobalCompilerFile(s.Compiler))
	if err != nil {
		return nil, err
	}

	seeds := append([]FullSection{}, sections...)
	for _, sect := range cd.RequiredSect {
		fs, ok := s.findSectionProvider(sect)
		if !ok {
			return nil, errUnresolvedRequire(sect)
		}
		seeds = append(seeds, fs)
	}

	owners := map[Section]PkgName{}
	data := map[Section]BuildConfigSection{}
	var order []Section

	var visit func(fs FullSection) error
	visit = func(fs FullSection) error {
		if owner, seen := owners[fs.Section]; seen {
			if owner != fs.Pkg {
				return errNameCollision(fs.Section)
			}
			return nil
		}
		bc, err := readBuildConfig(s.buildConfigPath(fs.Pkg))
		if err != nil {
			return err
		}
		sec, ok := bc.section(fs.Section)
		if !ok {
			return errUnresolvedRequire(fs.Section)
		}
		owners[fs.Section] = fs.Pkg
		for _, req := range sec.Requires {
			provider, ok := s.findSectionProvider(req)
			if !ok {
				return errUnresolvedRequire(req)
			}
			if err := visit(provider); err != nil {
				return err
			}
		}
		data[fs.Section] = sec
		order = append(order, fs.Section)
		return nil
	}

	for _, fs := range seeds {
		if err := visit(fs); err != nil {
			return nil, err
		}
	}

	flags := append([]string{}, cd.ByteFlags...)
	flags = append(flags, cd.AsmFlags...)
	flags = append(flags, cd.CompileFlags...)
	flags = append(flags, cd.LinkFlags...)
	for _, name := range order {
		flags = append(flags, sectionFlags(data[name])...)
	}
	return flags, nil
}

// sectionFlags extracts a section's own byte/asm/compile/link flags from
// its Variables map, keyed the same way CompilerDescr's TOML fields are.
func sectionFlags(sec BuildConfigSection) []string {
	var out []string
	for _, key := range []string{"byte-flags", "asm-flags", "compile-flags", "link-flags"} {
		if v, ok := sec.Variables[key]; ok && v != "" {
			out = append(out, v)
		}
	}
	return out
}

// findSectionProvider searches every installed package's BuildConfig for a
// section named want, in sorted-NV order for determinism. Two distinct
// packages both exporting want is only an error if both are reachable in
// the same closure walk; visit's owners check is what catches that.
func (s *State) findSectionProvider(want Section) (FullSection, bool) {
	for _, nv := range s.Installed.Sorted() {
		bc, err := readBuildConfig(s.buildConfigPath(nv.Name))
		if err != nil {
			continue
		}
		if _, ok := bc.section(want); ok {
			return FullSection{Pkg: nv.Name, Section: want}, true
		}
	}
	return FullSection{}, false
}
