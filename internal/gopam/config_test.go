package gopam

import (
	"path/filepath"
	"testing"
)

func TestGlobalConfigRoundTrip(t *testing.T) {
	cfg := &GlobalConfig{
		FormatVersion: FormatVersion,
		Repos: []Repository{
			{Name: "main", Address: "https://example.org/repo", Kind: RepoKindGit},
		},
		CurrentAlias: "default",
		Workers:      4,
	}
	path := filepath.Join(t.TempDir(), "config")
	if err := writeGlobalConfig(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := readGlobalConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentAlias != cfg.CurrentAlias || got.Workers != cfg.Workers {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Repos) != 1 || got.Repos[0].Name != "main" {
		t.Fatalf("repos mismatch: %+v", got.Repos)
	}
}

func TestReadGlobalConfigDefaultsWorkers(t *testing.T) {
	cfg := &GlobalConfig{FormatVersion: FormatVersion, Workers: 0}
	path := filepath.Join(t.TempDir(), "config")
	if err := writeGlobalConfig(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := readGlobalConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Workers != 1 {
		t.Fatalf("Workers = %d, want 1", got.Workers)
	}
}

func TestGlobalConfigRepoByName(t *testing.T) {
	cfg := &GlobalConfig{Repos: []Repository{
		{Name: "main", Kind: RepoKindGit},
		{Name: "contrib", Kind: RepoKindLocal},
	}}
	r, ok := cfg.RepoByName("contrib")
	if !ok || r.Kind != RepoKindLocal {
		t.Fatalf("RepoByName(contrib) = %+v, %v", r, ok)
	}
	if _, ok := cfg.RepoByName("missing"); ok {
		t.Fatal("expected RepoByName(missing) to report false")
	}
}

func TestGlobalConfigRemoveRepo(t *testing.T) {
	cfg := &GlobalConfig{Repos: []Repository{
		{Name: "main"}, {Name: "contrib"},
	}}
	cfg.removeRepo("main")
	if len(cfg.Repos) != 1 || cfg.Repos[0].Name != "contrib" {
		t.Fatalf("Repos after removeRepo = %+v", cfg.Repos)
	}
}

func TestAliasMapRoundTrip(t *testing.T) {
	m := AliasMap{
		{Alias: "default", Compiler: "1.21"},
		{Alias: "other", Compiler: "1.20"},
	}
	path := filepath.Join(t.TempDir(), "aliases")
	if err := writeAliasMap(path, m); err != nil {
		t.Fatal(err)
	}
	got, err := readAliasMap(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Alias != "default" || got[1].Compiler != "1.20" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestReadAliasMapMissingFileIsEmpty(t *testing.T) {
	got, err := readAliasMap(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected an empty AliasMap, got %+v", got)
	}
}
