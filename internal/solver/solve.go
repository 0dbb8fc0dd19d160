package solver

import "sort"

// Resolve is the solver's entry point: given a universe, a request, and the
// presently installed set, it performs a deterministic DFS/backtracking
// search that always prefers the newest version of a name that doesn't
// conflict with choices already made, and returns nil (not an error) when
// the search space is exhausted — the adapter turns that into an
// informational "no solution" exit.
func Resolve(u *Universe, req Request, installed map[string]string) *Solution {
	constraints := map[string]string{}
	explicit := map[string]bool{}
	var wishNames []string
	for _, w := range req.Install {
		constraints[w.Name] = w.Constraint
		wishNames = append(wishNames, w.Name)
		explicit[w.Name] = true
	}
	for _, w := range req.Upgrade {
		constraints[w.Name] = w.Constraint
		wishNames = append(wishNames, w.Name)
		explicit[w.Name] = true
	}
	// Installed packages not otherwise mentioned stay pinned to their
	// current version.
	removed := map[string]bool{}
	for _, r := range req.Remove {
		removed[r] = true
	}
	for name, version := range installed {
		if removed[name] {
			continue
		}
		if _, already := constraints[name]; already {
			continue
		}
		constraints[name] = "=" + version
		wishNames = append(wishNames, name)
	}

	sort.Strings(wishNames)
	chosen := map[string]string{}
	if !solveQueue(u, wishNames, constraints, chosen, removed) {
		return nil
	}

	sol := &Solution{}
	sol.ToRemove = forwardClosureRemovals(u, installed, removed, chosen)
	sol.ToAdd = buildActionDAG(u, installed, chosen, explicit)
	return sol
}

// solveQueue never chooses a removed name: a dependent that can only be
// satisfied by a removed package's forward edge is therefore unsatisfiable,
// which backtracks the search and ultimately yields SolverNoSolution rather
// than silently re-pinning the removal target back in.
func solveQueue(u *Universe, queue []string, constraints map[string]string, chosen map[string]string, removed map[string]bool) bool {
	if len(queue) == 0 {
		return true
	}
	name, rest := queue[0], queue[1:]
	if removed[name] {
		return false
	}
	if _, ok := chosen[name]; ok {
		return solveQueue(u, rest, constraints, chosen, removed)
	}

	candidates := u.Candidates(name)
	for i := len(candidates) - 1; i >= 0; i-- {
		d := candidates[i]
		if !satisfies(d.Version, constraints[name]) {
			continue
		}
		if conflicts(u, d, chosen) {
			continue
		}
		chosen[name] = d.Version
		next := append(append([]string{}, rest...), d.Depends...)
		if solveQueue(u, next, constraints, chosen, removed) {
			return true
		}
		delete(chosen, name)
	}
	return false
}

// satisfies is a minimal constraint matcher: "" (any), "=V", or a bare
// version treated as an exact match. Range operators are delegated to the
// adapter's semver-aware wish construction (upgrade's ">=current") by
// pre-resolving to the single newest candidate before calling Resolve in
// that case; Resolve itself only needs to special-case "=".
func satisfies(version, constraint string) bool {
	if constraint == "" {
		return true
	}
	if constraint[0] == '=' {
		return version == constraint[1:]
	}
	return version == constraint
}

func conflicts(u *Universe, d PkgDesc, chosen map[string]string) bool {
	for _, c := range d.Conflicts {
		if _, ok := chosen[c]; ok {
			return true
		}
	}
	for name, version := range chosen {
		if name == d.Name {
			continue
		}
		other, ok := u.Get(name, version)
		if !ok {
			continue
		}
		for _, c := range other.Conflicts {
			if c == d.Name {
				return true
			}
		}
	}
	return false
}

// forwardClosureRemovals returns, leaves-first, every installed NV that the
// resolved chosen set drops. Resolve pins every other installed package in
// place, so this is the removal targets; the packages they depended on stay
// installed.
func forwardClosureRemovals(u *Universe, installed map[string]string, removed map[string]bool, chosen map[string]string) []nvPair {
	var toRemove []string
	for name := range installed {
		if removed[name] {
			toRemove = append(toRemove, name)
			continue
		}
		if _, keep := chosen[name]; !keep {
			toRemove = append(toRemove, name)
		}
	}
	sort.Strings(toRemove)

	// Order leaves-first: a name comes before anything that (still being
	// removed) depends on it.
	order := topoSortRemovals(u, installed, toRemove)
	out := make([]nvPair, 0, len(order))
	for _, name := range order {
		out = append(out, nv{name, installed[name]}.pair())
	}
	return out
}

func (k nv) pair() nvPair { return nvPair{k.name, k.version} }

func topoSortRemovals(u *Universe, installed map[string]string, names []string) []string {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	var out []string
	visited := map[string]bool{}
	var visit func(string)
	visit = func(n string) {
		if visited[n] || !set[n] {
			return
		}
		visited[n] = true
		if d, ok := u.Get(n, installed[n]); ok {
			for _, dep := range d.Depends {
				if set[dep] {
					visit(dep)
				}
			}
		}
		out = append(out, n)
	}
	for _, n := range names {
		visit(n)
	}
	return out
}

// buildActionDAG derives install/recompile nodes from the edges actually
// walked by the search: a node depends on each of its chosen non-optional
// dependencies' nodes. Nodes for names whose chosen version matches the
// already-installed version are omitted, UNLESS the name was an explicit
// wish (an install/upgrade target, not just a pinned-in-place dependent):
// those still get a node, as an ActionRecompile rather than ActionChange,
// so a request to rebuild a package already at its latest version (e.g.
// because it was flagged for reinstall) actually produces an action.
func buildActionDAG(u *Universe, installed map[string]string, chosen map[string]string, explicit map[string]bool) []Action {
	names := make([]string, 0, len(chosen))
	for name := range chosen {
		if installed[name] == chosen[name] && !explicit[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	index := map[string]int{}
	actions := make([]Action, len(names))
	for i, name := range names {
		index[name] = i
	}
	for i, name := range names {
		from, hadOld := installed[name]
		kind := ActionChange
		if hadOld && from == chosen[name] {
			kind = ActionRecompile
		}
		a := Action{Kind: kind, To: nvPair{name, chosen[name]}}
		if hadOld {
			p := nvPair{name, from}
			a.From = &p
		}
		if d, ok := u.Get(name, chosen[name]); ok {
			for _, dep := range d.Depends {
				if depIdx, ok := index[dep]; ok {
					a.deps = append(a.deps, depIdx)
				}
			}
			sort.Ints(a.deps)
		}
		actions[i] = a
	}
	return actions
}
