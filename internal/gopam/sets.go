package gopam

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"sort"
	"strings"
)

// NVSet is an unordered set of NVs, persisted as a sorted JSON array so
// round-trips (L1) are byte-stable.
type NVSet map[NV]struct{}

func newNVSet(nvs ...NV) NVSet {
	s := make(NVSet, len(nvs))
	for _, nv := range nvs {
		s[nv] = struct{}{}
	}
	return s
}

func (s NVSet) Has(nv NV) bool { _, ok := s[nv]; return ok }
func (s NVSet) Add(nv NV)      { s[nv] = struct{}{} }
func (s NVSet) Remove(nv NV)   { delete(s, nv) }

// ByName returns the installed NV with the given PkgName, if any. Since no
// two installed NVs ever share a PkgName, this is unambiguous.
func (s NVSet) ByName(name PkgName) (NV, bool) {
	for nv := range s {
		if nv.Name == name {
			return nv, true
		}
	}
	return NV{}, false
}

func (s NVSet) Sorted() []NV {
	out := make([]NV, 0, len(s))
	for nv := range s {
		out = append(out, nv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version < out[j].Version
	})
	return out
}

func (s NVSet) Clone() NVSet {
	out := make(NVSet, len(s))
	for nv := range s {
		out[nv] = struct{}{}
	}
	return out
}

func (s NVSet) MarshalJSON() ([]byte, error) {
	strs := make([]string, 0, len(s))
	for nv := range s {
		strs = append(strs, nv.String())
	}
	sort.Strings(strs)
	return json.Marshal(strs)
}

func (s *NVSet) UnmarshalJSON(b []byte) error {
	var strs []string
	if err := json.Unmarshal(b, &strs); err != nil {
		return err
	}
	out := make(NVSet, len(strs))
	for _, str := range strs {
		nv, err := ParseNV(str)
		if err != nil {
			return err
		}
		out[nv] = struct{}{}
	}
	*s = out
	return nil
}

func readNVSet(path string) (NVSet, error) {
	set := NVSet{}
	if ok, _ := isRegular(path); !ok {
		return set, nil
	}
	if err := readJSON(path, &set); err != nil {
		if os.IsNotExist(err) {
			return NVSet{}, nil
		}
		return nil, err
	}
	return set, nil
}

func writeNVSet(path string, s NVSet) error {
	return writeJSONAtomic(path, s)
}

// RepoIndex maps each available PkgName to the RepoName that won
// precedence for it.
type RepoIndex map[PkgName]RepoName

func readRepoIndex(path string) (RepoIndex, error) {
	idx := RepoIndex{}
	if ok, _ := isRegular(path); !ok {
		return idx, nil
	}
	raw := map[string]string{}
	if err := readJSON(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return RepoIndex{}, nil
		}
		return nil, err
	}
	for k, v := range raw {
		idx[PkgName(k)] = RepoName(v)
	}
	return idx, nil
}

func writeRepoIndex(path string, idx RepoIndex) error {
	raw := make(map[string]string, len(idx))
	for k, v := range idx {
		raw[string(k)] = string(v)
	}
	return writeJSONAtomic(path, raw)
}

// scanAvailable enumerates the global opam/ directory, returning the set
// of NVs for which a manifest is present.
func scanAvailable(p Paths) (NVSet, error) {
	set := NVSet{}
	entries, err := ioutil.ReadDir(p.GlobalOpamDir())
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".opam") {
			continue
		}
		nv, err := ParseNV(strings.TrimSuffix(name, ".opam"))
		if err != nil {
			continue
		}
		set.Add(nv)
	}
	return set, nil
}

// listSwitches enumerates the existing switch directories by reading the
// alias map, which is the authoritative record of known switches.
func listSwitches(aliases AliasMap) []Alias {
	out := make([]Alias, 0, len(aliases))
	for _, e := range aliases {
		out = append(out, e.Alias)
	}
	return out
}

