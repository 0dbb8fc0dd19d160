package gopam

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/gopam/gopam/log"
)

// Update runs the repository synchronizer: pulls every configured
// repository, recomputes the repo index with deterministic first-bind-wins
// precedence, unions newly-updated packages into every switch's Reinstall
// set, rebuilds the derived global opam/descr/archive/compiler views, and
// finally reloads and verifies consistency.
func Update(root string, logger *log.Logger) (*State, error) {
	st, err := Load(root)
	if err != nil {
		return nil, err
	}

	// Step 1: pull every repository, in priority order.
	for _, repo := range st.Repos {
		b, err := NewBackend(repo.Kind, st.Paths)
		if err != nil {
			return nil, err
		}
		logger.Vlogf("updating repository %s", repo.Name)
		if err := b.Update(repo); err != nil {
			return nil, errors.Wrapf(err, "updating repository %s", repo.Name)
		}
	}

	// Mirrors are updated on disk; re-scan Available before recomputing
	// the index (mirrors may have introduced new packages).
	if err := relinkAll(st); err != nil {
		return nil, errors.Wrap(err, "relinking global views")
	}
	available, err := scanAvailable(st.Paths)
	if err != nil {
		return nil, err
	}
	st.Available = available

	// Step 2: recompute the repo index, first repo to publish a name wins.
	idx := RepoIndex{}
	for _, repo := range st.Repos {
		for nv := range st.Available {
			if _, bound := idx[nv.Name]; bound {
				continue
			}
			if ownsPackage(st.Paths, repo, nv) {
				idx[nv.Name] = repo.Name
			}
		}
	}
	if err := writeRepoIndex(st.Paths.RepoIndexFile(), idx); err != nil {
		return nil, err
	}
	st.RepoIndex = idx

	// Step 3: union each repo's "updated" NVs into every switch's
	// Reinstall set.
	updatedTotal := NVSet{}
	for _, repo := range st.Repos {
		updated, err := readNVSet(st.Paths.RepoUpdatedFile(repo.Name))
		if err != nil {
			return nil, err
		}
		for nv := range updated {
			updatedTotal.Add(nv)
		}
	}
	for _, alias := range listSwitches(st.Aliases) {
		reinstall, err := readNVSet(st.Paths.ReinstallFile(alias))
		if err != nil {
			return nil, err
		}
		installed, err := readNVSet(st.Paths.InstalledFile(alias))
		if err != nil {
			return nil, err
		}
		for nv := range updatedTotal {
			if installed.Has(nv) {
				logger.Logf("[%s] %s is installed and has been updated upstream", alias, nv)
			} else {
				logger.Logf("%s is available", nv)
			}
			reinstall.Add(nv)
		}
		if err := writeNVSet(st.Paths.ReinstallFile(alias), reinstall); err != nil {
			return nil, err
		}
		if alias == st.CurrentAlias {
			st.Reinstall = reinstall
		}
	}

	// Step 5: relink every repository's compiler descriptions into the
	// shared global compiler/ namespace. Unlike opam/descr/archive, a
	// compiler description has no per-name owner to arbitrate: any repo
	// may publish any version, last one in priority order wins.
	if err := relinkCompilers(st); err != nil {
		return nil, errors.Wrap(err, "relinking compiler descriptions")
	}

	// Step 6: reload and verify consistency (I1's manifest-location
	// invariant, plus the depends/depopts-reference-Available invariant).
	final, err := Load(root)
	if err != nil {
		return nil, err
	}
	if err := verifyConsistency(final); err != nil {
		return nil, err
	}
	return final, nil
}

// mirrorRoot is the directory each Backend actually reads/writes packages
// under: a local repo's mirror IS its configured address (no local copy is
// ever made), while git/http mirrors live under the repo's own directory
// in $ROOT/repo/<name>.
func mirrorRoot(p Paths, repo Repository) string {
	if repo.Kind == RepoKindLocal {
		return string(repo.Address)
	}
	return p.RepoDir(repo.Name)
}

// ownsPackage reports whether repo's mirror actually contributes nv, by
// checking for its manifest inside the mirror (git/local layout share the
// packages/<nv>/opam convention).
func ownsPackage(p Paths, repo Repository, nv NV) bool {
	candidate := filepath.Join(mirrorRoot(p, repo), "packages", nv.String(), "opam")
	ok, _ := isRegular(candidate)
	return ok
}

// relinkAll refreshes the global opam/, descr/ and archive/ directories as
// derived views over each repository's mirror (relinkCompilers handles
// compiler/). Every package a mirror holds is linked again on each update;
// an archive is taken from the repo's archives/ dir, or else from the
// mirror's packages/<nv>/files/. Entries whose package no mirror holds any
// more are not removed.
func relinkAll(st *State) error {
	for _, repo := range st.Repos {
		dir := mirrorRoot(st.Paths, repo)
		entries, err := readDirNames(dir + "/packages")
		if err != nil {
			return err
		}
		for _, nvName := range entries {
			nv, err := ParseNV(nvName)
			if err != nil {
				continue
			}
			pkgDir := filepath.Join(dir, "packages", nv.String())
			if err := linkOrCopy(pkgDir+"/opam", st.Paths.GlobalOpamFile(nv)); err != nil {
				return err
			}
			if ok, _ := isRegular(pkgDir + "/descr"); ok {
				if err := linkOrCopy(pkgDir+"/descr", st.Paths.GlobalDescrFile(nv)); err != nil {
					return err
				}
			}
			archive := st.Paths.RepoArchiveFile(repo.Name, nv)
			if ok, _ := isRegular(archive); !ok {
				archive = filepath.Join(pkgDir, "files", nv.String()+".tar.gz")
			}
			if ok, _ := isRegular(archive); ok {
				if err := linkOrCopy(archive, st.Paths.GlobalArchiveFile(nv)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// relinkCompilers rebuilds the global compiler/ directory from each
// repository's mirror "compilers/<version>.comp" files, in priority
// order, so a later repo silently shadows an earlier one's description
// for the same version.
func relinkCompilers(st *State) error {
	for _, repo := range st.Repos {
		dir := filepath.Join(mirrorRoot(st.Paths, repo), "compilers")
		entries, err := readDirNames(dir)
		if err != nil {
			return err
		}
		for _, name := range entries {
			if filepath.Ext(name) != ".comp" {
				continue
			}
			version := CompilerVersion(strings.TrimSuffix(name, ".comp"))
			if err := linkOrCopy(filepath.Join(dir, name), st.Paths.GlobalCompilerFile(version)); err != nil {
				return err
			}
		}
	}
	return nil
}

// verifyConsistency checks that every available NV's manifest
// name.version equals its file location, and that every dependency it
// declares is itself available.
func verifyConsistency(st *State) error {
	for nv := range st.Available {
		m, err := st.Manifest(nv)
		if err != nil {
			return err
		}
		for _, dep := range append(append([]PkgName{}, m.Depends...), m.Depopts...) {
			if !availableHasName(st.Available, dep) {
				return errInconsistentRepo(nv, dep)
			}
		}
	}
	return nil
}

func availableHasName(set NVSet, name PkgName) bool {
	for nv := range set {
		if nv.Name == name {
			return true
		}
	}
	return false
}
