package gopam

import "testing"

func TestEvalVariableBuildConfigScoped(t *testing.T) {
	s := newTestState(t, newNVSet(NV{Name: "foo", Version: "1.0"}))
	bc := &BuildConfig{
		Variables: map[string]string{"global-var": "g"},
		Libraries: []BuildConfigSection{
			{Name: "main", Variables: map[string]string{"include": "/inc"}},
		},
	}
	if err := writeBuildConfig(s.buildConfigPath("foo"), bc); err != nil {
		t.Fatal(err)
	}

	v, err := s.EvalVariable(FullVariable{Pkg: "foo", Var: "global-var"})
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "g" {
		t.Fatalf("global-var = %q", v.String())
	}

	v2, err := s.EvalVariable(FullVariable{Pkg: "foo", Section: "main", Var: "include"})
	if err != nil {
		t.Fatal(err)
	}
	if v2.String() != "/inc" {
		t.Fatalf("main:include = %q", v2.String())
	}

	if _, err := s.EvalVariable(FullVariable{Pkg: "foo", Section: "missing", Var: "x"}); err == nil {
		t.Fatal("expected UnknownVariable for a missing section")
	}
}

func TestEvalVariableNotInstalled(t *testing.T) {
	s := newTestState(t, NVSet{})
	if _, err := s.EvalVariable(FullVariable{Pkg: "foo", Var: "whatever"}); !IsKind(err, KindNotInstalled) {
		t.Fatalf("expected NotInstalled, got %v", err)
	}
}
