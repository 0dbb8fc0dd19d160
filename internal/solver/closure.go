package solver

// ForwardDependencies returns the installed PkgDescs of seeds and of every
// installed package reachable from them by following Depends edges.
func ForwardDependencies(u *Universe, installed map[string]string, seeds []string) []PkgDesc {
	return closure(u, installed, seeds, func(d PkgDesc) []string { return d.Depends })
}

// BackwardDependencies returns the installed PkgDescs of seeds and of every
// installed package that depends (transitively) on one of them.
func BackwardDependencies(u *Universe, installed map[string]string, seeds []string) []PkgDesc {
	reverse := map[string][]string{}
	for name, version := range installed {
		d, ok := u.Get(name, version)
		if !ok {
			continue
		}
		for _, dep := range d.Depends {
			reverse[dep] = append(reverse[dep], name)
		}
	}
	return closure(u, installed, seeds, func(d PkgDesc) []string { return reverse[d.Name] })
}

func closure(u *Universe, installed map[string]string, seeds []string, edges func(PkgDesc) []string) []PkgDesc {
	visited := map[string]bool{}
	var out []PkgDesc
	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		version, ok := installed[name]
		if !ok {
			return
		}
		d, ok := u.Get(name, version)
		if !ok {
			return
		}
		out = append(out, d)
		for _, next := range edges(d) {
			visit(next)
		}
	}
	for _, s := range seeds {
		visit(s)
	}
	return out
}
