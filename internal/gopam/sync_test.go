package gopam

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopam/gopam/log"
)

// seedLocalRepo lays out a minimal local-repository mirror directly at dir
// (the convention a RepoKindLocal repository uses: its mirror is its own
// configured address, with no intermediate repo/<name> copy).
func seedLocalRepo(t *testing.T, dir string, nv NV, deps []PkgName) {
	t.Helper()
	pkgDir := filepath.Join(dir, "packages", nv.String())
	if err := os.MkdirAll(filepath.Join(pkgDir, "files"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := writeManifest(filepath.Join(pkgDir, "opam"), &Manifest{Name: nv.Name, Version: nv.Version, Depends: deps}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "descr"), []byte("a package"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "files", nv.String()+".tar.gz"), []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func seedLocalCompiler(t *testing.T, dir string, v CompilerVersion) {
	t.Helper()
	compDir := filepath.Join(dir, "compilers")
	if err := os.MkdirAll(compDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := writeCompilerDescr(filepath.Join(compDir, string(v)+".comp"), &CompilerDescr{Version: v, Preinstalled: true}); err != nil {
		t.Fatal(err)
	}
}

func initTestRoot(t *testing.T, repos []Repository) string {
	t.Helper()
	root := t.TempDir()
	p := NewPaths(root)
	for _, d := range p.GlobalDirs() {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := writeGlobalConfig(p.ConfigFile(), &GlobalConfig{FormatVersion: FormatVersion, Repos: repos, Workers: 1}); err != nil {
		t.Fatal(err)
	}
	if err := writeAliasMap(p.AliasesFile(), AliasMap{}); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestUpdateRelinksLocalRepoPackagesAndCompilers(t *testing.T) {
	repoDir := t.TempDir()
	foo := NV{Name: "foo", Version: "1.0"}
	seedLocalRepo(t, repoDir, foo, nil)
	seedLocalCompiler(t, repoDir, "1.21")

	repo := Repository{Name: "main", Address: RepoAddress(repoDir), Kind: RepoKindLocal}
	root := initTestRoot(t, []Repository{repo})

	logger := log.New(os.Stderr)
	st, err := Update(root, logger)
	if err != nil {
		t.Fatal(err)
	}

	if !st.Available.Has(foo) {
		t.Fatalf("expected %v to be Available after Update, got %v", foo, st.Available)
	}
	if owner := st.RepoIndex[foo.Name]; owner != "main" {
		t.Fatalf("RepoIndex[foo] = %q, want %q", owner, "main")
	}
	if ok, _ := isRegular(st.Paths.GlobalOpamFile(foo)); !ok {
		t.Fatal("expected the manifest to be relinked into the global opam/ view")
	}
	if ok, _ := isRegular(st.Paths.GlobalDescrFile(foo)); !ok {
		t.Fatal("expected the descr file to be relinked into the global descr/ view")
	}
	if ok, _ := isRegular(st.Paths.GlobalArchiveFile(foo)); !ok {
		t.Fatal("expected the archive to be relinked into the global archive/ view")
	}
	if ok, _ := isRegular(st.Paths.GlobalCompilerFile("1.21")); !ok {
		t.Fatal("expected the compiler description to be relinked into the global compiler/ view")
	}
}

func TestUpdateFirstBindWinsAcrossRepos(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	nv := NV{Name: "foo", Version: "1.0"}
	seedLocalRepo(t, dirA, nv, nil)
	seedLocalRepo(t, dirB, nv, nil)

	repoA := Repository{Name: "a", Address: RepoAddress(dirA), Kind: RepoKindLocal}
	repoB := Repository{Name: "b", Address: RepoAddress(dirB), Kind: RepoKindLocal}
	root := initTestRoot(t, []Repository{repoA, repoB})

	st, err := Update(root, log.New(os.Stderr))
	if err != nil {
		t.Fatal(err)
	}
	if owner := st.RepoIndex[nv.Name]; owner != "a" {
		t.Fatalf("RepoIndex[foo] = %q, want the first-priority repo %q", owner, "a")
	}
}

func TestVerifyConsistencyRejectsUnavailableDependency(t *testing.T) {
	repoDir := t.TempDir()
	nv := NV{Name: "foo", Version: "1.0"}
	seedLocalRepo(t, repoDir, nv, []PkgName{"ghost"})

	repo := Repository{Name: "main", Address: RepoAddress(repoDir), Kind: RepoKindLocal}
	root := initTestRoot(t, []Repository{repo})

	_, err := Update(root, log.New(os.Stderr))
	if !IsKind(err, KindInconsistentRepo) {
		t.Fatalf("expected InconsistentRepo, got %v", err)
	}
}
