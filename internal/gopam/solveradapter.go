package gopam

import (
	"github.com/gopam/gopam/internal/solver"
)

// RequestKind distinguishes the four shapes of resolution request.
type RequestKind int

const (
	RequestInstall RequestKind = iota
	RequestRemove
	RequestUpgrade
	RequestSwitch
)

// Solution mirrors solver.Solution in gopam's own NV vocabulary, so callers
// outside this package never import internal/solver directly.
type Solution struct {
	ToRemove []NV
	ToAdd    []ResolvedAction
}

// ResolvedAction is one to-add DAG node plus its resolved predecessors.
type ResolvedAction struct {
	Kind         ActionKind
	From         *NV
	To           NV
	predecessors []int
}

// Predecessors returns the ToAdd indices that must complete before this
// node is runnable.
func (s *Solution) Predecessors(i int) []int {
	return s.ToAdd[i].predecessors
}

type ActionKind int

const (
	ActionChange ActionKind = iota
	ActionRecompile
)

// Resolve converts Available plus the requested kind/targets into a solver
// universe, submits the corresponding request, and parses the reply back
// into gopam's vocabulary. A nil Solution means "no solution"; callers
// should treat that as an informational exit, not an error.
func (s *State) Resolve(kind RequestKind, targets []PkgName) (*Solution, error) {
	descs, err := s.universeDescs()
	if err != nil {
		return nil, err
	}
	u := solver.NewUniverse(descs, func(a, b string) bool {
		return PkgVersion(a).Compare(PkgVersion(b)) < 0
	})

	installedMap := map[string]string{}
	for nv := range s.Installed {
		installedMap[string(nv.Name)] = string(nv.Version)
	}

	var req solver.Request
	switch kind {
	case RequestInstall:
		for _, name := range targets {
			if s.Installed.ByNameInstalled(name) {
				nv, _ := s.Installed.ByName(name)
				return nil, errAlreadyInstalled(nv)
			}
			nv, ok := s.LatestAvailable(name)
			if !ok {
				return nil, errUnknownPackage(name)
			}
			req.Install = append(req.Install, solver.VConstraint{Name: string(name), Constraint: "=" + string(nv.Version)})
		}

	case RequestRemove:
		for _, name := range targets {
			if name == BaseName {
				return nil, errUnknownPackage(name)
			}
			if !s.Installed.ByNameInstalled(name) {
				return nil, errNotInstalled(name)
			}
			req.Remove = append(req.Remove, string(name))
		}

	case RequestUpgrade:
		// Per the solver contract, wish_upgrade covers every installed NV
		// whose latest available version is >= current: a strictly newer
		// version is a real upgrade, while an unchanged version for a
		// package flagged Reinstall is a forced recompile (its repository
		// metadata changed since install even though the version didn't).
		// Packages with neither condition stay implicitly pinned and never
		// enter the request, so they produce no action.
		for nv := range s.Installed {
			latest, ok := s.LatestAvailable(nv.Name)
			if !ok {
				continue
			}
			switch {
			case latest.Version.Compare(nv.Version) > 0:
				req.Upgrade = append(req.Upgrade, solver.VConstraint{Name: string(nv.Name), Constraint: "=" + string(latest.Version)})
			case s.Reinstall.Has(nv):
				req.Upgrade = append(req.Upgrade, solver.VConstraint{Name: string(nv.Name), Constraint: "=" + string(nv.Version)})
			}
		}

	case RequestSwitch:
		// switchmgr.go's callers pass the package names; each is pinned to
		// its latest available version in an Install request.
		for _, name := range targets {
			nv, ok := s.LatestAvailable(name)
			if !ok {
				return nil, errUnknownPackage(name)
			}
			req.Install = append(req.Install, solver.VConstraint{Name: string(name), Constraint: "=" + string(nv.Version)})
		}
	}

	sol := solver.Resolve(u, req, installedMap)
	if sol == nil {
		return nil, nil
	}
	return fromSolverSolution(sol), nil
}

func (s *State) universeDescs() ([]solver.PkgDesc, error) {
	var descs []solver.PkgDesc
	for nv := range s.Available {
		m, err := s.Manifest(nv)
		if err != nil {
			return nil, err
		}
		descs = append(descs, solver.PkgDesc{
			Name:      string(m.Name),
			Version:   string(m.Version),
			Depends:   namesToStrings(m.Depends),
			Depopts:   namesToStrings(m.Depopts),
			Conflicts: namesToStrings(m.Conflicts),
		})
	}
	return descs, nil
}

func namesToStrings(names []PkgName) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

func fromSolverSolution(sol *solver.Solution) *Solution {
	out := &Solution{}
	for _, r := range sol.ToRemove {
		out.ToRemove = append(out.ToRemove, NV{Name: PkgName(r.Name_()), Version: PkgVersion(r.Version_())})
	}
	for _, a := range sol.ToAdd {
		ra := ResolvedAction{
			Kind: ActionKind(a.Kind),
			To:   NV{Name: PkgName(a.To.Name_()), Version: PkgVersion(a.To.Version_())},
		}
		if a.From != nil {
			nv := NV{Name: PkgName(a.From.Name_()), Version: PkgVersion(a.From.Version_())}
			ra.From = &nv
		}
		out.ToAdd = append(out.ToAdd, ra)
	}
	// solver.Solution's Action.deps indexes ToAdd directly, and
	// fromSolverSolution preserves order, so the indices carry over as-is.
	for i := range sol.ToAdd {
		out.ToAdd[i].predecessors = sol.DepIndices(i)
	}
	return out
}
