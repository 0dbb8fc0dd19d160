package gopam

import (
	"io/ioutil"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Manifest is the per-NV metadata document (the opam-equivalent),
// encoded as TOML.
type Manifest struct {
	Name      PkgName    `toml:"name"`
	Version   PkgVersion `toml:"version"`
	Depends   []PkgName  `toml:"depends"`
	Depopts   []PkgName  `toml:"depopts"`
	Conflicts []PkgName  `toml:"conflicts"`
	Build     [][]string `toml:"build"`
	Remove    [][]string `toml:"remove"`
	Substs    []string   `toml:"substs"`
	Libraries []Section  `toml:"libraries"`
	Syntax    []Section  `toml:"syntax"`
}

// NV is the (name, version) this manifest describes.
func (m *Manifest) NV() NV { return NV{Name: m.Name, Version: m.Version} }

func readManifest(path string) (*Manifest, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	return &m, nil
}

// ReadManifestNV reads an arbitrary manifest file (not necessarily under
// the global opam/ view) and returns the NV it declares, for commands like
// `gopam upload` that take a manifest path directly from the user.
func ReadManifestNV(path string) (NV, error) {
	m, err := readManifest(path)
	if err != nil {
		return NV{}, err
	}
	return m.NV(), nil
}

func writeManifest(path string, m *Manifest) error {
	b, err := toml.Marshal(*m)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}

// validateManifestLocation enforces the invariant that a manifest's own
// name.version must match the file location it was read from. file is the
// base name the manifest was read from (without the .opam extension).
func validateManifestLocation(m *Manifest, file string) error {
	want, err := ParseNV(file)
	if err != nil {
		return err
	}
	got := m.NV()
	if got != want {
		return errInconsistentManifest(file, got)
	}
	return nil
}

// InstallDescriptor lists the artifacts to copy after a successful build:
// lib files, bin files (renamed to a declared destination basename), and
// misc src->dst pairs.
type InstallDescriptor struct {
	Lib  []FilePair `toml:"lib"`
	Bin  []FilePair `toml:"bin"`
	Misc []FilePair `toml:"misc"`
}

// FilePair is one src (relative to the build dir) -> dst (basename, or
// absolute path for Misc) artifact mapping.
type FilePair struct {
	Src string `toml:"src"`
	Dst string `toml:"dst"`
}

func readInstallDescriptor(path string) (*InstallDescriptor, error) {
	if ok, _ := isRegular(path); !ok {
		return &InstallDescriptor{}, nil
	}
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d InstallDescriptor
	if err := toml.Unmarshal(b, &d); err != nil {
		return nil, errors.Wrapf(err, "parsing install descriptor %s", path)
	}
	return &d, nil
}

func writeInstallDescriptor(path string, d *InstallDescriptor) error {
	b, err := toml.Marshal(*d)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}

// BuildConfigSection is one declared section's runtime-queryable facts: the
// sections it requires, and any section-scoped variables.
type BuildConfigSection struct {
	Name      Section           `toml:"name"`
	Requires  []Section         `toml:"requires"`
	Variables map[string]string `toml:"variables"`
}

// BuildConfig is the per-package runtime-queryable variable/section set
// installed alongside a package after a successful build.
type BuildConfig struct {
	Variables map[string]string    `toml:"variables"`
	Libraries []BuildConfigSection `toml:"library"`
	Syntax    []BuildConfigSection `toml:"syntax"`
}

func (bc *BuildConfig) sections() []BuildConfigSection {
	all := make([]BuildConfigSection, 0, len(bc.Libraries)+len(bc.Syntax))
	all = append(all, bc.Libraries...)
	all = append(all, bc.Syntax...)
	return all
}

// section looks up one section by name among both Libraries and Syntax.
func (bc *BuildConfig) section(name Section) (BuildConfigSection, bool) {
	for _, sec := range bc.sections() {
		if sec.Name == name {
			return sec, true
		}
	}
	return BuildConfigSection{}, false
}

func readBuildConfig(path string) (*BuildConfig, error) {
	if ok, _ := isRegular(path); !ok {
		return &BuildConfig{Variables: map[string]string{}}, nil
	}
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bc BuildConfig
	if err := toml.Unmarshal(b, &bc); err != nil {
		return nil, errors.Wrapf(err, "parsing build config %s", path)
	}
	if bc.Variables == nil {
		bc.Variables = map[string]string{}
	}
	return &bc, nil
}

func writeBuildConfig(path string, bc *BuildConfig) error {
	b, err := toml.Marshal(*bc)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}

// CompilerDescr is the per-compiler-version description: source, patches,
// build recipe, environment, and the packages a fresh switch must pull in.
type CompilerDescr struct {
	Version        CompilerVersion `toml:"version"`
	SourceURL      string          `toml:"source-url"`
	Patches        []string        `toml:"patches"`
	ConfigureArgs  []string        `toml:"configure-args"`
	MakeArgs       []string        `toml:"make-args"`
	Env            []EnvOp         `toml:"env"`
	RequiredSect   []Section       `toml:"required-sections"`
	Packages       []PkgName       `toml:"packages"`
	Preinstalled   bool            `toml:"preinstalled"`
	ByteFlags      []string        `toml:"byte-flags"`
	AsmFlags       []string        `toml:"asm-flags"`
	CompileFlags   []string        `toml:"compile-flags"`
	LinkFlags      []string        `toml:"link-flags"`
}

// EnvOp is one "NAME op VALUE" environment composition step, op being one
// of "=", "+=" (prepend, colon-joined) or "=+" (append, colon-joined).
type EnvOp struct {
	Name  string `toml:"name"`
	Op    string `toml:"op"`
	Value string `toml:"value"`
}

func readCompilerDescr(path string) (*CompilerDescr, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cd CompilerDescr
	if err := toml.Unmarshal(b, &cd); err != nil {
		return nil, errors.Wrapf(err, "parsing compiler description %s", path)
	}
	return &cd, nil
}

func writeCompilerDescr(path string, cd *CompilerDescr) error {
	b, err := toml.Marshal(*cd)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, b)
}
