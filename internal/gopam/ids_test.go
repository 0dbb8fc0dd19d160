package gopam

import "testing"

func TestParseNV(t *testing.T) {
	cases := []struct {
		in      string
		want    NV
		wantErr bool
	}{
		{"foo.1.2.3", NV{Name: "foo", Version: "1.2.3"}, false},
		{"foo.bar.1.2", NV{Name: "foo.bar", Version: "1.2"}, false},
		{"noversion", NV{}, true},
		{".1.2", NV{}, true},
		{"foo.", NV{}, true},
	}
	for _, c := range cases {
		got, err := ParseNV(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseNV(%q): expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseNV(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseNV(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNVStringRoundTrip(t *testing.T) {
	nv := NV{Name: "foo.bar", Version: "1.2"}
	got, err := ParseNV(nv.String())
	if err != nil {
		t.Fatal(err)
	}
	if got != nv {
		t.Fatalf("round trip = %v, want %v", got, nv)
	}
}

func TestPkgVersionCompareSemver(t *testing.T) {
	if PkgVersion("1.2.0").Compare("1.10.0") >= 0 {
		t.Fatal("expected 1.2.0 < 1.10.0 under semver ordering")
	}
	if PkgVersion("2.0.0").Compare("1.9.9") <= 0 {
		t.Fatal("expected 2.0.0 > 1.9.9")
	}
	if PkgVersion("1.0.0").Compare("1.0.0") != 0 {
		t.Fatal("expected equal versions to compare as 0")
	}
}

func TestPkgVersionCompareFallsBackToLexical(t *testing.T) {
	if PkgVersion("alpha").Compare("beta") >= 0 {
		t.Fatal("expected non-semver strings to fall back to lexical order")
	}
}

func TestParseFullVariable(t *testing.T) {
	f, err := ParseFullVariable("foo:enable")
	if err != nil {
		t.Fatal(err)
	}
	if f.Pkg != "foo" || f.Section != "" || f.Var != "enable" {
		t.Fatalf("unexpected parse: %+v", f)
	}
	if f.String() != "foo:enable" {
		t.Fatalf("String() = %q", f.String())
	}

	f2, err := ParseFullVariable("foo:lib:include")
	if err != nil {
		t.Fatal(err)
	}
	if f2.Pkg != "foo" || f2.Section != "lib" || f2.Var != "include" {
		t.Fatalf("unexpected parse: %+v", f2)
	}
	if f2.String() != "foo:lib:include" {
		t.Fatalf("String() = %q", f2.String())
	}

	if _, err := ParseFullVariable("justonepart"); err == nil {
		t.Fatal("expected error for a variable with no colon")
	}
}

func TestAliasMapLookup(t *testing.T) {
	m := AliasMap{
		{Alias: "default", Compiler: "1.20"},
		{Alias: "other", Compiler: "1.21"},
	}
	if c, ok := m.Lookup("default"); !ok || c != "1.20" {
		t.Fatalf("Lookup(default) = %v, %v", c, ok)
	}
	if m.Has("missing") {
		t.Fatal("expected Has(missing) to be false")
	}
}
