// Package solver is an embedded dependency solver: given a universe of
// named, versioned packages with declared dependency and conflict edges,
// it resolves install/remove/upgrade requests into an ordered removal list
// plus a DAG of install actions, and answers forward/backward dependency
// closure queries. gopam's Solver adapter (see
// internal/gopam/solveradapter.go) talks to this package through
// NewUniverse, Resolve and Solution.DepIndices.
package solver

// PkgDesc is one candidate package in the solver's universe: a name,
// version, and its declared relationships to other names.
type PkgDesc struct {
	Name      string
	Version   string
	Depends   []string
	Depopts   []string
	Conflicts []string
}

// key identifies one PkgDesc by name+version.
func (d PkgDesc) key() nv { return nv{d.Name, d.Version} }

type nv struct{ name, version string }

// Universe is the full candidate set the solver may choose from, keyed by
// name with candidates ordered ascending by version.
type Universe struct {
	byName map[string][]PkgDesc
}

// NewUniverse indexes descs by name. Within a name, candidates are sorted
// ascending by Less (the caller-supplied version comparator) so "prefer
// newest" can walk from the tail.
func NewUniverse(descs []PkgDesc, less func(a, b string) bool) *Universe {
	u := &Universe{byName: map[string][]PkgDesc{}}
	for _, d := range descs {
		u.byName[d.Name] = append(u.byName[d.Name], d)
	}
	for name, ds := range u.byName {
		sortDescs(ds, less)
		u.byName[name] = ds
	}
	return u
}

func sortDescs(ds []PkgDesc, less func(a, b string) bool) {
	for i := 1; i < len(ds); i++ {
		for j := i; j > 0 && less(ds[j].Version, ds[j-1].Version); j-- {
			ds[j-1], ds[j] = ds[j], ds[j-1]
		}
	}
}

func (u *Universe) Candidates(name string) []PkgDesc { return u.byName[name] }

func (u *Universe) Get(name, version string) (PkgDesc, bool) {
	for _, d := range u.byName[name] {
		if d.Version == version {
			return d, true
		}
	}
	return PkgDesc{}, false
}

// VConstraint is one named wish: a package a request wants installed,
// removed, or upgraded, with an optional version constraint: "=1.2" or a
// bare "1.2" for that exact version, or "" for "any". Range operators such
// as ">=1.0" are not supported.
type VConstraint struct {
	Name       string
	Constraint string
}

// Request is the shape the solver adapter submits: a mixed wish list of
// packages to install, remove, or upgrade, resolved together.
type Request struct {
	Install []VConstraint
	Remove  []string
	Upgrade []VConstraint
}

// ActionKind distinguishes the two node shapes a Solution's DAG may
// contain. Removal is never expressed as a ToAdd node.
type ActionKind int

const (
	ActionChange ActionKind = iota
	ActionRecompile
)

// Action is one node of the to-add DAG.
type Action struct {
	Kind ActionKind
	From *nvPair // nil for a fresh install
	To   nvPair
	deps []int // indices into Solution.ToAdd this node depends on
}

type nvPair struct{ Name, Version string }

// NV constructs the (name, version) pair type Action.To/From expect.
func NV(name, version string) nvPair { return nvPair{name, version} }

func (p nvPair) Name_() string    { return p.Name }
func (p nvPair) Version_() string { return p.Version }

// Solution is the solver's reply: an ordered removal list (leaves-first)
// and a DAG of install/recompile actions.
type Solution struct {
	ToRemove []nvPair
	ToAdd    []Action // sorted by name; Action.deps indexes this slice
}

// DepIndices returns the raw ToAdd indices that ToAdd[i] depends on.
func (s *Solution) DepIndices(i int) []int {
	return s.ToAdd[i].deps
}
