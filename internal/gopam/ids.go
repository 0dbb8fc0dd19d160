// Package gopam implements the client state machine and transaction engine
// of a source-based package manager: loading on-disk state, reconciling it
// against one or more remote repositories, resolving install/remove/upgrade
// requests into a partial order of package actions, and executing those
// actions with build-time variable substitution and compiler-provided
// environment.
package gopam

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// PkgName is a package name, matching [A-Za-z0-9_-]+.
type PkgName string

// PkgVersion is a version string ordered by the ecosystem's version
// comparison. Comparisons delegate to semver where the string parses as
// one; non-semver strings fall back to a lexical comparison so that
// arbitrary repository-supplied version strings still round-trip.
type PkgVersion string

// Compare returns -1, 0 or 1 as v is less than, equal to, or greater than
// other, per semver ordering when both parse, else lexical ordering.
func (v PkgVersion) Compare(other PkgVersion) int {
	sv, err1 := semver.NewVersion(string(v))
	so, err2 := semver.NewVersion(string(other))
	if err1 == nil && err2 == nil {
		return sv.Compare(so)
	}
	return strings.Compare(string(v), string(other))
}

// NV is a (name, version) pair, the identifier of one installable package.
type NV struct {
	Name    PkgName
	Version PkgVersion
}

// String prints the canonical "name.version" form.
func (nv NV) String() string {
	return string(nv.Name) + "." + string(nv.Version)
}

// ParseNV splits s into name and version at the first dot that is followed
// by a digit, so a dotted name keeps its dots and a dotted version stays
// whole: "foo.bar.1.2" is name "foo.bar", version "1.2". A string with no
// such dot is split on its last dot.
func ParseNV(s string) (NV, error) {
	i := -1
	for j := 0; j+1 < len(s); j++ {
		if s[j] == '.' && s[j+1] >= '0' && s[j+1] <= '9' {
			i = j
			break
		}
	}
	if i < 0 {
		i = strings.LastIndex(s, ".")
	}
	if i < 0 {
		return NV{}, errors.Errorf("%q is not a valid name.version", s)
	}
	name, version := s[:i], s[i+1:]
	if name == "" || version == "" {
		return NV{}, errors.Errorf("%q is not a valid name.version", s)
	}
	return NV{Name: PkgName(name), Version: PkgVersion(version)}, nil
}

// BaseName is the reserved PkgName of the synthetic compiler-config
// package every switch installs at creation time. It carries the switch's
// prefix/bin/lib/doc variables and cannot be removed directly.
const BaseName PkgName = "base"

// RepoKind names the repository backend protocol.
type RepoKind string

const (
	RepoKindGit   RepoKind = "git"
	RepoKindHTTP  RepoKind = "http"
	RepoKindLocal RepoKind = "local"
)

// RepoName identifies a repository within a GlobalConfig's repo list.
type RepoName string

// RepoAddress is the backend-specific location of a repository (a URL, a
// git remote, or a local path).
type RepoAddress string

// Repository is one configured remote metadata/archive source.
type Repository struct {
	Name    RepoName    `toml:"name"`
	Address RepoAddress `toml:"address"`
	Kind    RepoKind    `toml:"kind"`
}

// CompilerVersion identifies a compiler release a switch is pinned to.
type CompilerVersion string

// Alias is the user-facing name of a switch.
type Alias string

// AliasEntry is one (alias -> compiler) binding, order-significant.
type AliasEntry struct {
	Alias    Alias
	Compiler CompilerVersion
}

// AliasMap is the ordered list of known switches. Lookup order follows
// insertion order; keys are unique.
type AliasMap []AliasEntry

// Lookup returns the compiler bound to alias, if any.
func (m AliasMap) Lookup(a Alias) (CompilerVersion, bool) {
	for _, e := range m {
		if e.Alias == a {
			return e.Compiler, true
		}
	}
	return "", false
}

// Has reports whether alias is already bound.
func (m AliasMap) Has(a Alias) bool {
	_, ok := m.Lookup(a)
	return ok
}

// Section is a library/syntax-extension name scoped to one package.
type Section string

// FullVariable is either "pkg:var" (global) or "pkg:section:var" (scoped to
// a section within pkg).
type FullVariable struct {
	Pkg     PkgName
	Section Section // empty for a global variable
	Var     string
}

// String renders the canonical pkg:var or pkg:section:var form.
func (f FullVariable) String() string {
	if f.Section == "" {
		return fmt.Sprintf("%s:%s", f.Pkg, f.Var)
	}
	return fmt.Sprintf("%s:%s:%s", f.Pkg, f.Section, f.Var)
}

// ParseFullVariable parses "pkg:var" or "pkg:section:var".
func ParseFullVariable(s string) (FullVariable, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		return FullVariable{Pkg: PkgName(parts[0]), Var: parts[1]}, nil
	case 3:
		return FullVariable{Pkg: PkgName(parts[0]), Section: Section(parts[1]), Var: parts[2]}, nil
	default:
		return FullVariable{}, errors.Errorf("%q is not a valid pkg:var or pkg:section:var", s)
	}
}

// FullSection identifies one library/syntax section by its owning package,
// "pkg:section" — the identifier `config compil` and the section-closure
// walk take as a seed, distinct from FullVariable's "pkg:var" (which always
// names a value, never a section on its own).
type FullSection struct {
	Pkg     PkgName
	Section Section
}

// String renders the canonical pkg:section form.
func (f FullSection) String() string {
	return fmt.Sprintf("%s:%s", f.Pkg, f.Section)
}

// ParseFullSection parses "pkg:section".
func ParseFullSection(s string) (FullSection, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return FullSection{}, errors.Errorf("%q is not a valid pkg:section", s)
	}
	return FullSection{Pkg: PkgName(parts[0]), Section: Section(parts[1])}, nil
}

// VariableValue is a tagged boolean-or-string value.
type VariableValue struct {
	isBool bool
	b      bool
	s      string
}

// BoolValue constructs a Bool-tagged VariableValue.
func BoolValue(b bool) VariableValue { return VariableValue{isBool: true, b: b} }

// StringValue constructs a String-tagged VariableValue.
func StringValue(s string) VariableValue { return VariableValue{s: s} }

// IsBool reports whether the value is the Bool variant.
func (v VariableValue) IsBool() bool { return v.isBool }

// Bool returns the boolean payload; valid only when IsBool is true.
func (v VariableValue) Bool() bool { return v.b }

// String renders "true"/"false" for booleans, or the raw string otherwise.
func (v VariableValue) String() string {
	if v.isBool {
		if v.b {
			return "true"
		}
		return "false"
	}
	return v.s
}
