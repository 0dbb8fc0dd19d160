package gopam

import (
	"os"
	"path/filepath"
	"testing"
)

func newQueryTestState(t *testing.T) (*State, Paths) {
	t.Helper()
	root := t.TempDir()
	p := NewPaths(root)
	for _, d := range p.GlobalDirs() {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return &State{
		Paths:     p,
		Available: NVSet{},
		Installed: NVSet{},
		Reinstall: NVSet{},
		RepoIndex: RepoIndex{},
	}, p
}

func writeTestManifest(t *testing.T, p Paths, m *Manifest) {
	t.Helper()
	if err := writeManifest(p.GlobalOpamFile(m.NV()), m); err != nil {
		t.Fatal(err)
	}
}

func writeTestDescr(t *testing.T, p Paths, nv NV, synopsis, body string) {
	t.Helper()
	content := synopsis
	if body != "" {
		content += "\n" + body
	}
	if err := os.WriteFile(p.GlobalDescrFile(nv), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListGroupsByNameAndShowsInstalledVersion(t *testing.T) {
	s, p := newQueryTestState(t)
	foo10 := NV{Name: "foo", Version: "1.0"}
	foo20 := NV{Name: "foo", Version: "2.0"}
	bar10 := NV{Name: "bar", Version: "1.0"}

	writeTestManifest(t, p, &Manifest{Name: foo10.Name, Version: foo10.Version})
	writeTestManifest(t, p, &Manifest{Name: foo20.Name, Version: foo20.Version})
	writeTestManifest(t, p, &Manifest{Name: bar10.Name, Version: bar10.Version})
	writeTestDescr(t, p, foo10, "foo synopsis", "")
	writeTestDescr(t, p, bar10, "bar synopsis", "")

	s.Available.Add(foo10)
	s.Available.Add(foo20)
	s.Available.Add(bar10)
	s.Installed.Add(foo10)

	entries, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected one row per PkgName, got %d: %+v", len(entries), entries)
	}
	if entries[0].Name != "bar" || entries[0].Version != "--" || entries[0].Synopsis != "bar synopsis" {
		t.Errorf("bar entry = %+v", entries[0])
	}
	if entries[1].Name != "foo" || entries[1].Version != "1.0" {
		t.Errorf("foo entry = %+v, want installed version 1.0", entries[1])
	}
}

func TestInfoReportsOtherVersionsExcludingResolved(t *testing.T) {
	s, p := newQueryTestState(t)
	foo10 := NV{Name: "foo", Version: "1.0"}
	foo20 := NV{Name: "foo", Version: "2.0"}
	writeTestManifest(t, p, &Manifest{Name: foo10.Name, Version: foo10.Version, Depends: []PkgName{"bar"}})
	writeTestManifest(t, p, &Manifest{Name: foo20.Name, Version: foo20.Version})
	writeTestDescr(t, p, foo20, "foo, the second version", "a longer description")

	s.Available.Add(foo10)
	s.Available.Add(foo20)
	s.Installed.Add(foo10)

	info, err := s.Info("foo")
	if err != nil {
		t.Fatal(err)
	}
	if !info.Installed || info.NV != foo10 {
		t.Fatalf("expected installed foo10 to be resolved, got %+v", info)
	}
	if len(info.OtherVersion) != 1 || info.OtherVersion[0] != "2.0" {
		t.Fatalf("OtherVersion = %v, want [2.0]", info.OtherVersion)
	}
	if len(info.Depends) != 1 || info.Depends[0] != "bar" {
		t.Fatalf("Depends = %v", info.Depends)
	}
}

func TestInfoUnknownPackage(t *testing.T) {
	s, _ := newQueryTestState(t)
	if _, err := s.Info("missing"); !IsKind(err, KindUnknownPackage) {
		t.Fatalf("expected UnknownPackage, got %v", err)
	}
}

func TestCompilerListSortsByVersion(t *testing.T) {
	s, p := newQueryTestState(t)
	for _, v := range []CompilerVersion{"1.10", "1.2", "1.21"} {
		if err := writeCompilerDescr(p.GlobalCompilerFile(v), &CompilerDescr{Version: v}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.CompilerList()
	if err != nil {
		t.Fatal(err)
	}
	want := []CompilerVersion{"1.2", "1.10", "1.21"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestUploadResolvesOwningRepoWhenNameOmitted(t *testing.T) {
	s, _ := newQueryTestState(t)
	repoDir := t.TempDir()
	repo := Repository{Name: "main", Address: RepoAddress(repoDir), Kind: RepoKindLocal}
	s.Config = GlobalConfig{Repos: []Repository{repo}}
	s.RepoIndex = RepoIndex{"foo": "main"}

	opamPath := filepath.Join(t.TempDir(), "foo.1.0.opam")
	if err := writeManifest(opamPath, &Manifest{Name: "foo", Version: "1.0"}); err != nil {
		t.Fatal(err)
	}
	archivePath := filepath.Join(t.TempDir(), "foo.1.0.tar.gz")
	if err := os.WriteFile(archivePath, []byte("fake archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	nv := NV{Name: "foo", Version: "1.0"}
	if err := s.Upload("", opamPath, "", archivePath, nv); err != nil {
		t.Fatal(err)
	}
	if ok, _ := isRegular(filepath.Join(repoDir, "packages", "foo.1.0", "opam")); !ok {
		t.Fatal("expected uploaded manifest to land in the repository's packages/ tree")
	}
	if ok, _ := isRegular(filepath.Join(repoDir, "packages", "foo.1.0", "files", "foo.1.0.tar.gz")); !ok {
		t.Fatal("expected uploaded archive to land in the repository's packages/ tree")
	}
}

func TestUploadUnknownRepo(t *testing.T) {
	s, _ := newQueryTestState(t)
	nv := NV{Name: "foo", Version: "1.0"}
	if err := s.Upload("ghost", "", "", "", nv); !IsKind(err, KindUnknownRepo) {
		t.Fatalf("expected UnknownRepo, got %v", err)
	}
}

func TestCompilFlagsWalksRequiresClosureInOrder(t *testing.T) {
	s := newTestState(t, newNVSet(
		NV{Name: "foo", Version: "1.0"},
		NV{Name: "bar", Version: "1.0"},
	))
	if err := writeCompilerDescr(s.Paths.GlobalCompilerFile(s.Compiler), &CompilerDescr{
		ByteFlags:    []string{"-byte"},
		CompileFlags: []string{"-compile"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := writeBuildConfig(s.buildConfigPath("bar"), &BuildConfig{
		Libraries: []BuildConfigSection{
			{Name: "base", Variables: map[string]string{"compile-flags": "-I/bar"}},
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := writeBuildConfig(s.buildConfigPath("foo"), &BuildConfig{
		Libraries: []BuildConfigSection{
			{Name: "main", Requires: []Section{"base"}, Variables: map[string]string{"link-flags": "-lfoo"}},
		},
	}); err != nil {
		t.Fatal(err)
	}

	flags, err := s.CompilFlags([]FullSection{{Pkg: "foo", Section: "main"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"-byte", "-compile", "-I/bar", "-lfoo"}
	if len(flags) != len(want) {
		t.Fatalf("flags = %v, want %v", flags, want)
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Fatalf("flags = %v, want %v", flags, want)
		}
	}
}

func TestCompilFlagsNameCollision(t *testing.T) {
	s := newTestState(t, newNVSet(
		NV{Name: "foo", Version: "1.0"},
		NV{Name: "bar", Version: "1.0"},
	))
	if err := writeCompilerDescr(s.Paths.GlobalCompilerFile(s.Compiler), &CompilerDescr{}); err != nil {
		t.Fatal(err)
	}
	if err := writeBuildConfig(s.buildConfigPath("foo"), &BuildConfig{
		Libraries: []BuildConfigSection{{Name: "shared"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := writeBuildConfig(s.buildConfigPath("bar"), &BuildConfig{
		Libraries: []BuildConfigSection{{Name: "shared"}},
	}); err != nil {
		t.Fatal(err)
	}

	_, err := s.CompilFlags([]FullSection{{Pkg: "foo", Section: "shared"}, {Pkg: "bar", Section: "shared"}})
	if !IsKind(err, KindNameCollision) {
		t.Fatalf("expected NameCollision, got %v", err)
	}
}

func TestCompilFlagsUnresolvedRequire(t *testing.T) {
	s := newTestState(t, newNVSet(NV{Name: "foo", Version: "1.0"}))
	if err := writeCompilerDescr(s.Paths.GlobalCompilerFile(s.Compiler), &CompilerDescr{}); err != nil {
		t.Fatal(err)
	}
	if err := writeBuildConfig(s.buildConfigPath("foo"), &BuildConfig{
		Libraries: []BuildConfigSection{{Name: "main", Requires: []Section{"missing"}}},
	}); err != nil {
		t.Fatal(err)
	}

	_, err := s.CompilFlags([]FullSection{{Pkg: "foo", Section: "main"}})
	if !IsKind(err, KindUnresolvedRequire) {
		t.Fatalf("expected UnresolvedRequire, got %v", err)
	}
}
