package gopam

import (
	"path/filepath"
	"testing"
)

func TestManifestRoundTrip(t *testing.T) {
	m := &Manifest{
		Name:    "foo",
		Version: "1.0",
		Depends: []PkgName{"bar"},
		Build:   [][]string{{"make"}},
		Remove:  [][]string{{"make", "uninstall"}},
		Substs:  []string{"pkgconfig"},
		Libraries: []Section{"main"},
	}
	path := filepath.Join(t.TempDir(), "foo.1.0.opam")
	if err := writeManifest(path, m); err != nil {
		t.Fatal(err)
	}
	got, err := readManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.NV() != m.NV() {
		t.Fatalf("NV mismatch: %v vs %v", got.NV(), m.NV())
	}
	if len(got.Depends) != 1 || got.Depends[0] != "bar" {
		t.Fatalf("Depends mismatch: %+v", got.Depends)
	}
}

func TestValidateManifestLocation(t *testing.T) {
	m := &Manifest{Name: "foo", Version: "1.0"}
	if err := validateManifestLocation(m, "foo.1.0"); err != nil {
		t.Fatal(err)
	}
	if err := validateManifestLocation(m, "foo.2.0"); err == nil {
		t.Fatal("expected a location mismatch error")
	}
}

func TestInstallDescriptorRoundTrip(t *testing.T) {
	d := &InstallDescriptor{
		Lib: []FilePair{{Src: "foo.cmi", Dst: "foo.cmi"}},
		Bin: []FilePair{{Src: "fooctl", Dst: "fooctl"}},
	}
	path := filepath.Join(t.TempDir(), "foo.install")
	if err := writeInstallDescriptor(path, d); err != nil {
		t.Fatal(err)
	}
	got, err := readInstallDescriptor(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Lib) != 1 || len(got.Bin) != 1 {
		t.Fatalf("unexpected descriptor: %+v", got)
	}
}

func TestReadInstallDescriptorMissingIsEmpty(t *testing.T) {
	got, err := readInstallDescriptor(filepath.Join(t.TempDir(), "missing.install"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Lib) != 0 || len(got.Bin) != 0 || len(got.Misc) != 0 {
		t.Fatalf("expected an empty descriptor, got %+v", got)
	}
}

func TestBuildConfigRoundTrip(t *testing.T) {
	bc := &BuildConfig{
		Variables: map[string]string{"version": "1.0"},
		Libraries: []BuildConfigSection{
			{Name: "main", Requires: []Section{"base"}, Variables: map[string]string{"include": "/inc"}},
		},
	}
	path := filepath.Join(t.TempDir(), "foo.config")
	if err := writeBuildConfig(path, bc); err != nil {
		t.Fatal(err)
	}
	got, err := readBuildConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Variables["version"] != "1.0" {
		t.Fatalf("Variables mismatch: %+v", got.Variables)
	}
	if len(got.sections()) != 1 || got.sections()[0].Name != "main" {
		t.Fatalf("sections mismatch: %+v", got.sections())
	}
}

func TestReadBuildConfigMissingIsEmpty(t *testing.T) {
	got, err := readBuildConfig(filepath.Join(t.TempDir(), "missing.config"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Variables == nil || len(got.Variables) != 0 {
		t.Fatalf("expected an empty but non-nil Variables map, got %+v", got.Variables)
	}
}

func TestCompilerDescrRoundTrip(t *testing.T) {
	cd := &CompilerDescr{
		Version:       "1.21",
		SourceURL:     "https://example.org/go1.21.tar.gz",
		ConfigureArgs: []string{"--prefix=/opt"},
		Env: []EnvOp{
			{Name: "PATH", Op: "+=", Value: "/opt/bin"},
		},
		Packages: []PkgName{"base"},
	}
	path := filepath.Join(t.TempDir(), "1.21.compiler")
	if err := writeCompilerDescr(path, cd); err != nil {
		t.Fatal(err)
	}
	got, err := readCompilerDescr(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != cd.Version || got.SourceURL != cd.SourceURL {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Env) != 1 || got.Env[0].Op != "+=" {
		t.Fatalf("Env mismatch: %+v", got.Env)
	}
}
