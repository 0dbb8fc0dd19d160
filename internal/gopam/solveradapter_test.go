package gopam

import "testing"

func TestResolveRemoveRejectsBaseSentinel(t *testing.T) {
	s, p := newQueryTestState(t)
	base := NV{Name: BaseName, Version: "1.21"}
	writeTestManifest(t, p, &Manifest{Name: base.Name, Version: base.Version})
	s.Installed.Add(base)

	_, err := s.Resolve(RequestRemove, []PkgName{BaseName})
	if !IsKind(err, KindUnknownPackage) {
		t.Fatalf("expected UnknownPackage for removing the base sentinel, got %v", err)
	}
}

func TestResolveRemoveRejectsNotInstalled(t *testing.T) {
	s, _ := newQueryTestState(t)
	_, err := s.Resolve(RequestRemove, []PkgName{"foo"})
	if !IsKind(err, KindNotInstalled) {
		t.Fatalf("expected NotInstalled, got %v", err)
	}
}

func TestResolveInstallRejectsAlreadyInstalled(t *testing.T) {
	s, p := newQueryTestState(t)
	nv := NV{Name: "foo", Version: "1.0"}
	writeTestManifest(t, p, &Manifest{Name: nv.Name, Version: nv.Version})
	s.Available.Add(nv)
	s.Installed.Add(nv)

	_, err := s.Resolve(RequestInstall, []PkgName{"foo"})
	if !IsKind(err, KindAlreadyInstalled) {
		t.Fatalf("expected AlreadyInstalled, got %v", err)
	}
}

func TestResolveInstallRejectsUnknownPackage(t *testing.T) {
	s, _ := newQueryTestState(t)
	if _, err := s.Resolve(RequestInstall, []PkgName{"ghost"}); !IsKind(err, KindUnknownPackage) {
		t.Fatalf("expected UnknownPackage, got %v", err)
	}
}

func TestResolveUpgradeRecompilesReinstallFlaggedPackageWithNoNewerVersion(t *testing.T) {
	s, p := newQueryTestState(t)
	nv := NV{Name: "foo", Version: "1.0"}
	writeTestManifest(t, p, &Manifest{Name: nv.Name, Version: nv.Version})
	s.Available.Add(nv)
	s.Installed.Add(nv)
	s.Reinstall.Add(nv)

	sol, err := s.Resolve(RequestUpgrade, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sol == nil || len(sol.ToAdd) != 1 {
		t.Fatalf("expected one recompile action, got %+v", sol)
	}
	a := sol.ToAdd[0]
	if a.Kind != ActionRecompile || a.To != nv {
		t.Fatalf("unexpected action: %+v", a)
	}
}

func TestResolveUpgradeLeavesUnflaggedPackageAtLatestUntouched(t *testing.T) {
	s, p := newQueryTestState(t)
	nv := NV{Name: "foo", Version: "1.0"}
	writeTestManifest(t, p, &Manifest{Name: nv.Name, Version: nv.Version})
	s.Available.Add(nv)
	s.Installed.Add(nv)

	sol, err := s.Resolve(RequestUpgrade, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sol == nil {
		t.Fatal("expected a solution")
	}
	if len(sol.ToAdd) != 0 {
		t.Fatalf("expected no actions for an up-to-date, non-reinstall-flagged package, got %+v", sol.ToAdd)
	}
}
