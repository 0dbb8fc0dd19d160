package gopam

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopam/gopam/log"
)

func TestInitCreatesBaseConfigAndCurrentSwitch(t *testing.T) {
	repoDir := t.TempDir()
	seedLocalCompiler(t, repoDir, "1.21")

	root := filepath.Join(t.TempDir(), "gopam-root")
	repo := Repository{Name: "main", Address: RepoAddress(repoDir), Kind: RepoKindLocal}
	logger := log.New(os.Stderr)

	err := Init(root, "default", "1.21", repo, logger, func(string) bool { return true })
	if err != nil {
		t.Fatal(err)
	}

	s, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if s.CurrentAlias != "default" {
		t.Fatalf("CurrentAlias = %q, want %q", s.CurrentAlias, "default")
	}
	if s.Compiler != "1.21" {
		t.Fatalf("Compiler = %q, want %q", s.Compiler, "1.21")
	}

	base := NV{Name: BaseName, Version: "1.21"}
	if !s.Installed.Has(base) {
		t.Fatalf("expected the base sentinel package to be Installed, got %v", s.Installed)
	}
	if ok, _ := isRegular(s.Paths.PkgConfigFile("default", BaseName)); !ok {
		t.Fatal("expected the base package's build config to be written")
	}
	bc, err := readBuildConfig(s.Paths.PkgConfigFile("default", BaseName))
	if err != nil {
		t.Fatal(err)
	}
	if bc.Variables["bin"] != s.Paths.BinDir("default") {
		t.Fatalf("base bin variable = %q, want %q", bc.Variables["bin"], s.Paths.BinDir("default"))
	}
}

func TestInitRejectsAlreadyInitializedRoot(t *testing.T) {
	repoDir := t.TempDir()
	seedLocalCompiler(t, repoDir, "1.21")
	root := filepath.Join(t.TempDir(), "gopam-root")
	repo := Repository{Name: "main", Address: RepoAddress(repoDir), Kind: RepoKindLocal}
	logger := log.New(os.Stderr)
	confirm := func(string) bool { return true }

	if err := Init(root, "default", "1.21", repo, logger, confirm); err != nil {
		t.Fatal(err)
	}
	err := Init(root, "other", "1.21", repo, logger, confirm)
	if !IsKind(err, KindAlreadyInitialized) {
		t.Fatalf("expected AlreadyInitialized, got %v", err)
	}
}

func TestRemoveCannotTargetBaseSentinel(t *testing.T) {
	repoDir := t.TempDir()
	seedLocalCompiler(t, repoDir, "1.21")
	root := filepath.Join(t.TempDir(), "gopam-root")
	repo := Repository{Name: "main", Address: RepoAddress(repoDir), Kind: RepoKindLocal}
	logger := log.New(os.Stderr)

	if err := Init(root, "default", "1.21", repo, logger, func(string) bool { return true }); err != nil {
		t.Fatal(err)
	}
	s, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Resolve(RequestRemove, []PkgName{BaseName}); !IsKind(err, KindUnknownPackage) {
		t.Fatalf("expected UnknownPackage when removing base, got %v", err)
	}
}
